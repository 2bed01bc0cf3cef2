package entitlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vendahub/billing/internal/models"
	"github.com/vendahub/billing/pkg/logctx"
	"github.com/vendahub/billing/pkg/tool"
	"github.com/vendahub/billing/pkg/types"
)

// Service synchronizes member-area enrollment with subscription billing
// state. It is a thin wrapper over the student store: the lifecycle
// service decides when to grant or revoke, this service only applies it.
//
// Grant and Revoke are keyed by the originating sale; RevokeByLookup is
// the compatibility fallback for records without sale correlation and is
// not a pattern to generalize further.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger

	now func() time.Time
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log, now: time.Now}
}

// Grant enrolls a student for the sale, or reactivates an existing
// enrollment for the same sale. Returns the enrollment id. Idempotent:
// redelivered activations find the existing row.
func (s *Service) Grant(ctx context.Context, saleID, email, name, productID string) (string, error) {
	if saleID == "" || email == "" || productID == "" {
		return "", fmt.Errorf("sale_id, email and product_id are required")
	}

	var existing models.Student
	err := s.db.WithContext(ctx).Where("sale_id = ?", saleID).First(&existing).Error
	if err == nil {
		if existing.Status != types.EnrollmentStatusActive {
			existing.Status = types.EnrollmentStatusActive
			existing.AccessRevokedAt = nil
			existing.RevokeReason = nil
			if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
				return "", fmt.Errorf("failed to reactivate enrollment: %w", err)
			}
			logctx.FromCtx(ctx, s.log).Infow("enrollment reactivated",
				"enrollment_id", existing.ID, "sale_id", saleID)
		}
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("failed to look up enrollment: %w", err)
	}

	student := &models.Student{
		ID:         tool.GenerateUUIDV7(),
		SaleID:     &saleID,
		Email:      email,
		Name:       name,
		ProductID:  productID,
		Status:     types.EnrollmentStatusActive,
		EnrolledAt: s.now(),
	}
	if err := s.db.WithContext(ctx).Create(student).Error; err != nil {
		return "", fmt.Errorf("failed to create enrollment: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("enrollment granted",
		"enrollment_id", student.ID, "sale_id", saleID, "product_id", productID)
	return student.ID, nil
}

// Revoke cancels the enrollment linked to a sale, stamping the revoke
// reason and time. A missing enrollment is not an error: the subscription
// may predate member-area delivery for the product.
func (s *Service) Revoke(ctx context.Context, saleID, reason string) error {
	if saleID == "" {
		return fmt.Errorf("sale_id is required")
	}
	var student models.Student
	if err := s.db.WithContext(ctx).Where("sale_id = ?", saleID).First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logctx.FromCtx(ctx, s.log).Warnw("no enrollment for sale, nothing to revoke", "sale_id", saleID)
			return nil
		}
		return fmt.Errorf("failed to look up enrollment: %w", err)
	}
	return s.revoke(ctx, &student, reason)
}

// RevokeByLookup locates the enrollment by (email, product) when no sale
// correlation exists.
func (s *Service) RevokeByLookup(ctx context.Context, email, productID, reason string) error {
	if email == "" || productID == "" {
		return fmt.Errorf("email and product_id are required")
	}
	var student models.Student
	if err := s.db.WithContext(ctx).
		Where("email = ? AND product_id = ?", email, productID).
		First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logctx.FromCtx(ctx, s.log).Warnw("no enrollment for email/product, nothing to revoke",
				"email", email, "product_id", productID)
			return nil
		}
		return fmt.Errorf("failed to look up enrollment: %w", err)
	}
	return s.revoke(ctx, &student, reason)
}

func (s *Service) revoke(ctx context.Context, student *models.Student, reason string) error {
	if student.Status == types.EnrollmentStatusCancelled {
		return nil
	}
	now := s.now()
	student.Status = types.EnrollmentStatusCancelled
	student.AccessRevokedAt = &now
	student.RevokeReason = &reason
	if err := s.db.WithContext(ctx).Save(student).Error; err != nil {
		return fmt.Errorf("failed to revoke enrollment: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("enrollment revoked",
		"enrollment_id", student.ID, "reason", reason)
	return nil
}
