package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vendahub/billing/internal/app/service/eventlog"
	subsvc "github.com/vendahub/billing/internal/app/service/subscription"
	"github.com/vendahub/billing/internal/models"
	cfgpkg "github.com/vendahub/billing/pkg/config"
	"github.com/vendahub/billing/pkg/tool"
	"github.com/vendahub/billing/pkg/types"
)

type noopEntitlement struct{}

func (noopEntitlement) Grant(context.Context, string, string, string, string) (string, error) {
	return "", nil
}
func (noopEntitlement) Revoke(context.Context, string, string) error         { return nil }
func (noopEntitlement) RevokeByLookup(context.Context, string, string, string) error { return nil }

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, string, string, string, types.NotificationSeverity, *string) error {
	return nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Subscription{},
		&models.SubscriptionLog{},
		&models.Product{},
		&models.Profile{},
		&models.Student{},
		&models.Notification{},
		&models.WebhookEventLog{},
	))

	log := zap.NewNop().Sugar()
	svc := subsvc.NewService(db, log, &cfgpkg.Config{AccessCacheTTL: time.Minute}, nil, noopEntitlement{}, noopNotifier{})
	events := eventlog.New(db, log)

	r := gin.New()
	RegisterSubscriptionRoutes(r.Group("/api/v1"), svc, events, log)
	return r, db
}

func seedSubscriptionProduct(t *testing.T, db *gorm.DB) *models.Product {
	t.Helper()
	p := &models.Product{
		ID:             tool.GenerateUUIDV7(),
		UserID:         "seller-1",
		Name:           "Pro Course",
		PaymentType:    types.PaymentTypeSubscription,
		DeliveryMethod: types.DeliveryMethodDownload,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func doRPC(t *testing.T, r *gin.Engine, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestApiLifecycle_CreateReturnsPendingSubscription(t *testing.T) {
	r, db := newTestRouter(t)
	product := seedSubscriptionProduct(t, db)

	w := doRPC(t, r, map[string]any{
		"action":        "create",
		"user_id":       "user-1",
		"product_id":    product.ID,
		"amount":        29.90,
		"plan_interval": "monthly",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success      bool                 `json:"success"`
		Subscription *models.Subscription `json:"subscription"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Subscription)
	assert.Equal(t, types.SubscriptionStatusPending, resp.Subscription.Status)
}

func TestApiLifecycle_DuplicateCreateIsConflict(t *testing.T) {
	r, db := newTestRouter(t)
	product := seedSubscriptionProduct(t, db)

	body := map[string]any{
		"action": "create", "user_id": "user-1", "product_id": product.ID,
		"amount": 29.90, "plan_interval": "monthly",
	}
	first := doRPC(t, r, body)
	require.Equal(t, http.StatusOK, first.Code)

	second := doRPC(t, r, body)
	require.Equal(t, http.StatusConflict, second.Code)
	var resp struct {
		Error          string `json:"error"`
		SubscriptionID string `json:"subscription_id"`
	}
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
	assert.NotEmpty(t, resp.SubscriptionID, "conflict carries the existing id for reconciliation")
}

func TestApiLifecycle_ActivateUnknownSubscription(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doRPC(t, r, map[string]any{"action": "activate", "subscription_id": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestApiLifecycle_UnknownAction(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doRPC(t, r, map[string]any{"action": "refund"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown action")
}

func TestApiLifecycle_InvalidInterval(t *testing.T) {
	r, db := newTestRouter(t)
	product := seedSubscriptionProduct(t, db)
	w := doRPC(t, r, map[string]any{
		"action": "create", "user_id": "user-1", "product_id": product.ID,
		"amount": 29.90, "plan_interval": "daily",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApiLifecycle_CancelDefaultsToScheduled(t *testing.T) {
	r, db := newTestRouter(t)
	product := seedSubscriptionProduct(t, db)

	created := doRPC(t, r, map[string]any{
		"action": "create", "user_id": "user-1", "product_id": product.ID,
		"amount": 29.90, "plan_interval": "monthly",
	})
	var createResp struct {
		Subscription *models.Subscription `json:"subscription"`
	}
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &createResp))

	w := doRPC(t, r, map[string]any{"action": "cancel", "subscription_id": createResp.Subscription.ID})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Subscription *models.Subscription `json:"subscription"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Subscription.CancelAtPeriodEnd)
	assert.Equal(t, types.SubscriptionStatusPending, resp.Subscription.Status, "scheduled cancel keeps status")
}

func TestApiLifecycle_CheckAccessAndList(t *testing.T) {
	r, db := newTestRouter(t)
	product := seedSubscriptionProduct(t, db)

	doRPC(t, r, map[string]any{
		"action": "create", "user_id": "user-1", "product_id": product.ID,
		"amount": 29.90, "plan_interval": "monthly",
	})

	access := doRPC(t, r, map[string]any{"action": "check_access", "user_id": "user-1", "product_id": product.ID})
	require.Equal(t, http.StatusOK, access.Code)
	var accessResp struct {
		Success   bool `json:"success"`
		HasAccess bool `json:"has_access"`
	}
	require.NoError(t, json.Unmarshal(access.Body.Bytes(), &accessResp))
	assert.True(t, accessResp.Success)
	assert.False(t, accessResp.HasAccess, "pending subscription does not grant access")

	list := doRPC(t, r, map[string]any{"action": "list", "user_id": "user-1"})
	require.Equal(t, http.StatusOK, list.Code)
	var listResp struct {
		Subscriptions []json.RawMessage `json:"subscriptions"`
	}
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &listResp))
	assert.Len(t, listResp.Subscriptions, 1)
}
