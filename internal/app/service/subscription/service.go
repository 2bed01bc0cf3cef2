package subscription

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vendahub/billing/internal/models"
	cfgpkg "github.com/vendahub/billing/pkg/config"
	"github.com/vendahub/billing/pkg/logctx"
	"github.com/vendahub/billing/pkg/tool"
	"github.com/vendahub/billing/pkg/types"
)

// Service orchestrates the subscription lifecycle: it enforces transition
// legality, computes billing periods, persists the subscription record and
// dispatches entitlement/notification side effects best-effort.
//
// Operations are invoked from stateless webhook deliveries with no session
// affinity; duplicate redelivery of the same event is expected and handled
// by the lookup-then-conditional-update shape of each operation.
type Service struct {
	db          *gorm.DB
	log         *zap.SugaredLogger
	cfg         *cfgpkg.Config
	rdb         *redis.Client
	entitlement EntitlementSyncer
	notifier    Notifier

	now func() time.Time
}

func NewService(db *gorm.DB, log *zap.SugaredLogger, cfg *cfgpkg.Config, rdb *redis.Client, ent EntitlementSyncer, notif Notifier) *Service {
	return &Service{
		db:          db,
		log:         log,
		cfg:         cfg,
		rdb:         rdb,
		entitlement: ent,
		notifier:    notif,
		now:         time.Now,
	}
}

// Ref addresses a subscription by internal id or by the payment provider's
// external id. Callers supply exactly one; the internal id wins if both are
// set.
type Ref struct {
	ID         string
	ExternalID string
}

type CreateParams struct {
	UserID                 string
	ProductID              string
	Amount                 decimal.Decimal
	PlanInterval           types.PlanInterval
	PaymentMethod          string
	ExternalSubscriptionID string
	ExternalCustomerID     string
	// Metadata may carry "sale_id" from the originating checkout sale.
	Metadata map[string]any
}

// Create registers a new subscription in pending status. It rejects
// products that do not exist or are not subscription-billed, and rejects a
// second billable subscription for the same (user, product) pair with a
// ConflictError carrying the existing id.
func (s *Service) Create(ctx context.Context, p CreateParams) (*models.Subscription, error) {
	if p.UserID == "" || p.ProductID == "" || p.Amount.IsZero() {
		return nil, fmt.Errorf("%w: user_id, product_id and amount are required", ErrValidation)
	}

	product, err := s.loadProduct(ctx, p.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsSubscription() {
		return nil, fmt.Errorf("%w: product %s is not subscription-billed", ErrInvalidState, product.ID)
	}

	// Duplicate check. Read-check-then-insert: the store-level partial
	// unique index narrows the remaining race window, the check here stays
	// authoritative for the error contract.
	var existing models.Subscription
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ? AND status IN ?",
			p.UserID, p.ProductID, billableStatuses()).
		First(&existing).Error
	if err == nil {
		return nil, &ConflictError{ExistingSubscriptionID: existing.ID}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing subscription: %w", err)
	}

	now := s.now()
	metadata := datatypes.JSONMap{}
	for k, v := range p.Metadata {
		metadata[k] = v
	}
	sub := &models.Subscription{
		ID:                     tool.GenerateUUIDV7(),
		UserID:                 p.UserID,
		ProductID:              p.ProductID,
		Status:                 types.SubscriptionStatusPending,
		PlanInterval:           p.PlanInterval,
		Amount:                 p.Amount,
		PaymentMethod:          p.PaymentMethod,
		CurrentPeriodStart:     now,
		CurrentPeriodEnd:       PeriodEnd(now, p.PlanInterval),
		ExternalSubscriptionID: sanitizeExternalRef(p.ExternalSubscriptionID),
		ExternalCustomerID:     sanitizeExternalRef(p.ExternalCustomerID),
		Metadata:               metadata,
	}

	if err := s.saveTransition(ctx, nil, sub, types.SubscriptionChangeReasonCreate); err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("subscription created",
		"subscription_id", sub.ID, "user_id", sub.UserID, "product_id", sub.ProductID)
	return sub, nil
}

// Activate moves a subscription to active and opens a fresh billing period
// from now. Re-activating an already-active subscription refreshes the
// period: the operation does not distinguish first activation from webhook
// redelivery. Activating a canceled subscription is rejected.
func (s *Service) Activate(ctx context.Context, ref Ref) (*models.Subscription, error) {
	sub, err := s.findByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if _, err := nextStatus(sub.Status, types.SubscriptionChangeReasonActivate); err != nil {
		return nil, err
	}

	before := *sub
	now := s.now()
	sub.Status = types.SubscriptionStatusActive
	sub.StartedAt = &now
	sub.CurrentPeriodStart = now
	sub.CurrentPeriodEnd = PeriodEnd(now, sub.PlanInterval)

	if err := s.saveTransition(ctx, &before, sub, types.SubscriptionChangeReasonActivate); err != nil {
		return nil, err
	}

	effects := []effect{&notifyEffect{
		userID:   sub.UserID,
		title:    "Subscription activated",
		message:  "Your subscription is active. Enjoy your content!",
		severity: types.NotificationSeveritySuccess,
	}}
	effects = append(effects, s.enrollmentGrantEffects(ctx, sub)...)
	s.dispatchEffects(ctx, sub.ID, effects)
	return sub, nil
}

// Renew refreshes the billing period after a successful recurring charge.
// The new period opens at max(now, current_period_end) so an early charge
// never compresses the window the subscriber already paid for. started_at
// is untouched and no enrollment sync runs: the subscriber was enrolled at
// initial activation.
func (s *Service) Renew(ctx context.Context, ref Ref) (*models.Subscription, error) {
	sub, err := s.findByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if _, err := nextStatus(sub.Status, types.SubscriptionChangeReasonRenew); err != nil {
		return nil, err
	}

	before := *sub
	newStart := s.now()
	if sub.CurrentPeriodEnd.After(newStart) {
		newStart = sub.CurrentPeriodEnd
	}
	sub.Status = types.SubscriptionStatusActive
	sub.CurrentPeriodStart = newStart
	sub.CurrentPeriodEnd = PeriodEnd(newStart, sub.PlanInterval)

	if err := s.saveTransition(ctx, &before, sub, types.SubscriptionChangeReasonRenew); err != nil {
		return nil, err
	}
	return sub, nil
}

// Cancel ends a subscription. With atPeriodEnd the status is left untouched
// and only the flag plus canceled_at are set; the external expiry sweep
// enforces the period boundary later. Immediate cancellation moves status
// to canceled and revokes member-area enrollment, preferring the sale-keyed
// path and falling back to an (email, product) lookup.
func (s *Service) Cancel(ctx context.Context, id string, atPeriodEnd bool) (*models.Subscription, error) {
	sub, err := s.findByRef(ctx, Ref{ID: id})
	if err != nil {
		return nil, err
	}

	reason := types.SubscriptionChangeReasonCancel
	if atPeriodEnd {
		reason = types.SubscriptionChangeReasonScheduleCancel
	}
	to, err := nextStatus(sub.Status, reason)
	if err != nil {
		return nil, err
	}

	before := *sub
	now := s.now()
	sub.CanceledAt = &now
	var effects []effect
	if atPeriodEnd {
		sub.CancelAtPeriodEnd = true
		effects = append(effects, &notifyEffect{
			userID:   sub.UserID,
			title:    "Cancellation scheduled",
			message:  "Your subscription will end when the current period expires on " + sub.CurrentPeriodEnd.Format("2006-01-02") + ".",
			severity: types.NotificationSeverityInfo,
		})
	} else {
		sub.Status = to
		effects = append(effects, &notifyEffect{
			userID:   sub.UserID,
			title:    "Subscription canceled",
			message:  "Your subscription has been canceled and access has ended.",
			severity: types.NotificationSeverityWarning,
		})
		effects = append(effects, s.enrollmentRevokeEffects(ctx, sub)...)
	}

	if err := s.saveTransition(ctx, &before, sub, reason); err != nil {
		return nil, err
	}
	s.dispatchEffects(ctx, sub.ID, effects)
	return sub, nil
}

// ReportPaymentFailure marks the subscription past_due. Period boundaries
// are untouched; the subscriber is nudged to update payment details.
func (s *Service) ReportPaymentFailure(ctx context.Context, ref Ref) (*models.Subscription, error) {
	sub, err := s.findByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	to, err := nextStatus(sub.Status, types.SubscriptionChangeReasonPaymentFailure)
	if err != nil {
		return nil, err
	}

	before := *sub
	sub.Status = to

	if err := s.saveTransition(ctx, &before, sub, types.SubscriptionChangeReasonPaymentFailure); err != nil {
		return nil, err
	}
	s.dispatchEffects(ctx, sub.ID, []effect{&notifyEffect{
		userID:   sub.UserID,
		title:    "Payment failed",
		message:  "We could not charge your subscription. Please update your payment details to keep access.",
		severity: types.NotificationSeverityError,
	}})
	return sub, nil
}

// enrollmentGrantEffects builds the member-area grant effect for an
// activation. Subscriptions without a sale correlation skip enrollment
// sync; that gap is accepted until sale linkage is backfilled.
func (s *Service) enrollmentGrantEffects(ctx context.Context, sub *models.Subscription) []effect {
	product, err := s.loadProduct(ctx, sub.ProductID)
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("product lookup failed for enrollment sync",
			"subscription_id", sub.ID, "err", err)
		return nil
	}
	if !product.IsMemberArea() {
		return nil
	}
	saleID := sub.SaleID()
	if saleID == "" {
		logctx.FromCtx(ctx, s.log).Warnw("no sale_id in metadata, skipping enrollment grant",
			"subscription_id", sub.ID)
		return nil
	}
	profile, err := s.loadProfile(ctx, sub.UserID)
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("profile lookup failed for enrollment sync",
			"subscription_id", sub.ID, "err", err)
		return nil
	}
	return []effect{&grantEffect{
		saleID:      saleID,
		email:       profile.Email,
		fullName:    profile.FullName,
		productID:   product.ID,
		productName: product.Name,
		sellerID:    product.UserID,
	}}
}

// enrollmentRevokeEffects builds the revoke effect for an immediate cancel:
// sale-keyed when correlated, otherwise the (email, product) fallback.
func (s *Service) enrollmentRevokeEffects(ctx context.Context, sub *models.Subscription) []effect {
	product, err := s.loadProduct(ctx, sub.ProductID)
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("product lookup failed for enrollment revoke",
			"subscription_id", sub.ID, "err", err)
		return nil
	}
	if !product.IsMemberArea() {
		return nil
	}

	const reason = "subscription canceled"
	if saleID := sub.SaleID(); saleID != "" {
		return []effect{&revokeEffect{saleID: saleID, reason: reason}}
	}
	profile, err := s.loadProfile(ctx, sub.UserID)
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("profile lookup failed for enrollment revoke",
			"subscription_id", sub.ID, "err", err)
		return nil
	}
	return []effect{&revokeLookupEffect{
		email:     profile.Email,
		productID: sub.ProductID,
		reason:    reason,
	}}
}

func (s *Service) findByRef(ctx context.Context, ref Ref) (*models.Subscription, error) {
	q := s.db.WithContext(ctx)
	switch {
	case ref.ID != "":
		q = q.Where("id = ?", ref.ID)
	case ref.ExternalID != "":
		q = q.Where("external_subscription_id = ?", ref.ExternalID)
	default:
		return nil, fmt.Errorf("%w: subscription reference is required", ErrValidation)
	}

	var sub models.Subscription
	if err := q.First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: subscription", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return &sub, nil
}

func (s *Service) loadProduct(ctx context.Context, productID string) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).Where("id = ?", productID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, productID)
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return &product, nil
}

func (s *Service) loadProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: profile %s", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return &profile, nil
}

// saveTransition persists the subscription, writes the audit log entry
// asynchronously and invalidates the cached access check for the pair.
func (s *Service) saveTransition(ctx context.Context, before, after *models.Subscription, reason types.SubscriptionChangeReason) error {
	if err := s.db.WithContext(ctx).Save(after).Error; err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}

	// Audit log failures are logged only; the transition already committed.
	snapshot := *after
	go func(b *models.Subscription, a *models.Subscription) {
		entry := &models.SubscriptionLog{
			ID:             tool.GenerateUUIDV7(),
			SubscriptionID: a.ID,
			UserID:         a.UserID,
			Reason:         reason,
			Before:         datatypes.NewJSONType(b),
			After:          datatypes.NewJSONType(a),
			Extra:          datatypes.JSONMap{},
		}
		if err := s.db.Save(entry).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to save subscription log: %v", err)
		}
	}(before, &snapshot)

	s.invalidateAccess(ctx, after.UserID, after.ProductID)
	return nil
}

func billableStatuses() []types.SubscriptionStatus {
	return []types.SubscriptionStatus{
		types.SubscriptionStatusActive,
		types.SubscriptionStatusPending,
		types.SubscriptionStatusPastDue,
	}
}

// sanitizeExternalRef trims, caps at 100 chars and strips angle brackets.
// These values arrive from attacker-controlled webhook payloads and are
// rendered back in admin UIs.
func sanitizeExternalRef(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	v = strings.NewReplacer("<", "", ">", "").Replace(v)
	if len(v) > 100 {
		v = v[:100]
	}
	return &v
}
