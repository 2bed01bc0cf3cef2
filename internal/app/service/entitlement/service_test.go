package entitlement

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vendahub/billing/internal/models"
	"github.com/vendahub/billing/pkg/types"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Student{}))
	return NewService(db, zap.NewNop().Sugar())
}

func TestGrant_CreatesEnrollment(t *testing.T) {
	svc := newTestService(t)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	id, err := svc.Grant(context.Background(), "sale-1", "ana@example.com", "Ana Buyer", "prod-1")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	var student models.Student
	require.NoError(t, svc.db.Where("sale_id = ?", "sale-1").First(&student).Error)
	assert.Equal(t, types.EnrollmentStatusActive, student.Status)
	assert.Equal(t, "ana@example.com", student.Email)
	assert.True(t, now.Equal(student.EnrolledAt))
}

func TestGrant_IdempotentOnRedelivery(t *testing.T) {
	svc := newTestService(t)

	first, err := svc.Grant(context.Background(), "sale-1", "ana@example.com", "Ana", "prod-1")
	require.NoError(t, err)
	second, err := svc.Grant(context.Background(), "sale-1", "ana@example.com", "Ana", "prod-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var count int64
	require.NoError(t, svc.db.Model(&models.Student{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGrant_ReactivatesCancelledEnrollment(t *testing.T) {
	svc := newTestService(t)

	id, err := svc.Grant(context.Background(), "sale-1", "ana@example.com", "Ana", "prod-1")
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(context.Background(), "sale-1", "subscription canceled"))

	again, err := svc.Grant(context.Background(), "sale-1", "ana@example.com", "Ana", "prod-1")
	require.NoError(t, err)
	assert.Equal(t, id, again)

	var student models.Student
	require.NoError(t, svc.db.Where("sale_id = ?", "sale-1").First(&student).Error)
	assert.Equal(t, types.EnrollmentStatusActive, student.Status)
	assert.Nil(t, student.AccessRevokedAt)
	assert.Nil(t, student.RevokeReason)
}

func TestGrant_RequiredFields(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Grant(context.Background(), "", "ana@example.com", "Ana", "prod-1")
	assert.Error(t, err)
	_, err = svc.Grant(context.Background(), "sale-1", "", "Ana", "prod-1")
	assert.Error(t, err)
}

func TestRevoke_StampsReasonAndTime(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Grant(context.Background(), "sale-1", "ana@example.com", "Ana", "prod-1")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(context.Background(), "sale-1", "subscription canceled"))

	var student models.Student
	require.NoError(t, svc.db.Where("sale_id = ?", "sale-1").First(&student).Error)
	assert.Equal(t, types.EnrollmentStatusCancelled, student.Status)
	require.NotNil(t, student.RevokeReason)
	assert.Equal(t, "subscription canceled", *student.RevokeReason)
	assert.NotNil(t, student.AccessRevokedAt)
}

func TestRevoke_MissingEnrollmentIsNotAnError(t *testing.T) {
	svc := newTestService(t)
	assert.NoError(t, svc.Revoke(context.Background(), "sale-unknown", "subscription canceled"))
}

func TestRevokeByLookup(t *testing.T) {
	svc := newTestService(t)
	// enrollment without sale correlation
	require.NoError(t, svc.db.Create(&models.Student{
		ID:         "student-1",
		Email:      "ana@example.com",
		ProductID:  "prod-1",
		Status:     types.EnrollmentStatusActive,
		EnrolledAt: time.Now(),
	}).Error)

	require.NoError(t, svc.RevokeByLookup(context.Background(), "ana@example.com", "prod-1", "subscription canceled"))

	var student models.Student
	require.NoError(t, svc.db.First(&student, "id = ?", "student-1").Error)
	assert.Equal(t, types.EnrollmentStatusCancelled, student.Status)
}

func TestRevokeByLookup_NoMatch(t *testing.T) {
	svc := newTestService(t)
	assert.NoError(t, svc.RevokeByLookup(context.Background(), "none@example.com", "prod-1", "reason"))
}

func TestRevoke_AlreadyCancelledIsNoop(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Grant(context.Background(), "sale-1", "ana@example.com", "Ana", "prod-1")
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(context.Background(), "sale-1", "first"))
	require.NoError(t, svc.Revoke(context.Background(), "sale-1", "second"))

	var student models.Student
	require.NoError(t, svc.db.Where("sale_id = ?", "sale-1").First(&student).Error)
	require.NotNil(t, student.RevokeReason)
	assert.Equal(t, "first", *student.RevokeReason, "revoke is idempotent, first reason wins")
}
