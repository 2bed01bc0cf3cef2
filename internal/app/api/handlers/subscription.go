package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vendahub/billing/internal/app/service/eventlog"
	subsvc "github.com/vendahub/billing/internal/app/service/subscription"
	"github.com/vendahub/billing/pkg/logctx"
	"github.com/vendahub/billing/pkg/metrics"
	"github.com/vendahub/billing/pkg/response"
	"github.com/vendahub/billing/pkg/types"
)

// The lifecycle endpoint is RPC-style: a single POST whose body carries an
// "action" discriminator. The free-form string is parsed once, here, into
// a closed set of typed request variants; everything past this switch is
// strongly typed and exhaustive.

type Action string

const (
	ActionCreate        Action = "create"
	ActionActivate      Action = "activate"
	ActionRenew         Action = "renew"
	ActionCancel        Action = "cancel"
	ActionCheckAccess   Action = "check_access"
	ActionList          Action = "list"
	ActionPaymentFailed Action = "payment_failed"
)

type createRequest struct {
	UserID                 string          `json:"user_id"`
	ProductID              string          `json:"product_id"`
	Amount                 decimal.Decimal `json:"amount"`
	PlanInterval           string          `json:"plan_interval"`
	PaymentMethod          string          `json:"payment_method"`
	ExternalSubscriptionID string          `json:"external_subscription_id"`
	ExternalCustomerID     string          `json:"external_customer_id"`
	Metadata               map[string]any  `json:"metadata"`
}

type refRequest struct {
	SubscriptionID         string `json:"subscription_id"`
	ExternalSubscriptionID string `json:"external_subscription_id"`
}

type cancelRequest struct {
	SubscriptionID string `json:"subscription_id"`
	// CancelAtPeriodEnd defaults to true: scheduled cancellation is the
	// safe mode for user-initiated cancels.
	CancelAtPeriodEnd *bool `json:"cancel_at_period_end"`
}

type pairRequest struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
}

type listRequest struct {
	UserID string `json:"user_id"`
}

// @Summary      Subscription lifecycle RPC
// @Description  Dispatches one lifecycle operation selected by the "action" field: create | activate | renew | cancel | check_access | list | payment_failed.
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        request body map[string]any true "Lifecycle request with action discriminator"
// @Success      200  {object}  map[string]any
// @Router       /api/v1/subscriptions [post]
func ApiSubscriptionLifecycle(svc *subsvc.Service, events *eventlog.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.GetRawData()
		if err != nil {
			response.Error(c, http.StatusBadRequest, "failed to read request body", nil)
			return
		}

		var head struct {
			Action Action `json:"action"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			response.Error(c, http.StatusBadRequest, "invalid JSON body", nil)
			return
		}

		events.Save(c.Request.Context(), string(head.Action), raw)
		logctx.FromGin(c, log).Infow("lifecycle action received", "action", head.Action)

		switch head.Action {
		case ActionCreate:
			handleCreate(c, svc, raw)
		case ActionActivate:
			handleByRef(c, raw, func(ref subsvc.Ref) (any, error) {
				return svc.Activate(c.Request.Context(), ref)
			})
		case ActionRenew:
			handleByRef(c, raw, func(ref subsvc.Ref) (any, error) {
				return svc.Renew(c.Request.Context(), ref)
			})
		case ActionPaymentFailed:
			handleByRef(c, raw, func(ref subsvc.Ref) (any, error) {
				return svc.ReportPaymentFailure(c.Request.Context(), ref)
			})
		case ActionCancel:
			handleCancel(c, svc, raw)
		case ActionCheckAccess:
			handleCheckAccess(c, svc, raw)
		case ActionList:
			handleList(c, svc, raw)
		default:
			response.Error(c, http.StatusBadRequest, "unknown action", gin.H{"action": head.Action})
		}
		metrics.ObserveLifecycleAction(string(head.Action), c.Writer.Status())
	}
}

func handleCreate(c *gin.Context, svc *subsvc.Service, raw []byte) {
	var req createRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid create request", nil)
		return
	}
	interval, err := types.ParsePlanInterval(req.PlanInterval)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	sub, err := svc.Create(c.Request.Context(), subsvc.CreateParams{
		UserID:                 req.UserID,
		ProductID:              req.ProductID,
		Amount:                 req.Amount,
		PlanInterval:           interval,
		PaymentMethod:          req.PaymentMethod,
		ExternalSubscriptionID: req.ExternalSubscriptionID,
		ExternalCustomerID:     req.ExternalCustomerID,
		Metadata:               req.Metadata,
	})
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	response.OK(c, gin.H{"subscription": sub})
}

func handleByRef(c *gin.Context, raw []byte, op func(subsvc.Ref) (any, error)) {
	var req refRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	sub, err := op(subsvc.Ref{ID: req.SubscriptionID, ExternalID: req.ExternalSubscriptionID})
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	response.OK(c, gin.H{"subscription": sub})
}

func handleCancel(c *gin.Context, svc *subsvc.Service, raw []byte) {
	var req cancelRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid cancel request", nil)
		return
	}
	atPeriodEnd := true
	if req.CancelAtPeriodEnd != nil {
		atPeriodEnd = *req.CancelAtPeriodEnd
	}
	sub, err := svc.Cancel(c.Request.Context(), req.SubscriptionID, atPeriodEnd)
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	response.OK(c, gin.H{"subscription": sub})
}

func handleCheckAccess(c *gin.Context, svc *subsvc.Service, raw []byte) {
	var req pairRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid check_access request", nil)
		return
	}
	res, err := svc.CheckAccess(c.Request.Context(), req.UserID, req.ProductID)
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	response.OK(c, gin.H{"has_access": res.HasAccess, "subscription": res.Subscription})
}

func handleList(c *gin.Context, svc *subsvc.Service, raw []byte) {
	var req listRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid list request", nil)
		return
	}
	items, err := svc.List(c.Request.Context(), req.UserID)
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	response.OK(c, gin.H{"subscriptions": items})
}

// writeLifecycleError maps the service error taxonomy onto HTTP statuses.
// Side-effect failures never reach here; they are swallowed by the effect
// dispatcher and only logged.
func writeLifecycleError(c *gin.Context, err error) {
	var conflict *subsvc.ConflictError
	switch {
	case errors.As(err, &conflict):
		response.Error(c, http.StatusConflict, "subscription already exists",
			gin.H{"subscription_id": conflict.ExistingSubscriptionID})
	case errors.Is(err, subsvc.ErrNotFound):
		response.Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, subsvc.ErrValidation),
		errors.Is(err, subsvc.ErrInvalidState),
		errors.Is(err, subsvc.ErrInvalidTransition):
		response.Error(c, http.StatusBadRequest, err.Error(), nil)
	default:
		response.Error(c, http.StatusInternalServerError, "internal error", nil)
	}
}

func RegisterSubscriptionRoutes(r gin.IRouter, svc *subsvc.Service, events *eventlog.Service, log *zap.SugaredLogger) {
	r.POST("/subscriptions", ApiSubscriptionLifecycle(svc, events, log))
}
