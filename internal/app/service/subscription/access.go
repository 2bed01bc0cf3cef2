package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/vendahub/billing/internal/models"
	"github.com/vendahub/billing/pkg/logctx"
)

// AccessResult answers the storefront access gate.
type AccessResult struct {
	HasAccess    bool                 `json:"has_access"`
	Subscription *models.Subscription `json:"subscription,omitempty"`
}

// CheckAccess reports whether the user holds an active, unexpired
// subscription for the product. Results are cached in redis for a short
// TTL; every lifecycle transition on the pair invalidates the entry. Cache
// errors degrade to a direct store read.
func (s *Service) CheckAccess(ctx context.Context, userID, productID string) (*AccessResult, error) {
	if userID == "" || productID == "" {
		return nil, ErrValidation
	}

	key := accessCacheKey(userID, productID)
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, key).Result(); err == nil {
			var cached AccessResult
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			logctx.FromCtx(ctx, s.log).Warnw("access cache read failed", "key", key, "err", err)
		}
	}

	var sub models.Subscription
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ? AND status IN ?", userID, productID, billableStatuses()).
		Order("created_at desc").
		First(&sub).Error
	res := &AccessResult{}
	switch {
	case err == nil:
		res.Subscription = &sub
		res.HasAccess = sub.AccessValid(s.now())
	case errors.Is(err, gorm.ErrRecordNotFound):
		// no billable subscription, no access
	default:
		return nil, err
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(res); err == nil {
			ttl := s.cfg.AccessCacheTTL
			if ttl <= 0 {
				ttl = 30 * time.Second
			}
			if err := s.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
				logctx.FromCtx(ctx, s.log).Warnw("access cache write failed", "key", key, "err", err)
			}
		}
	}
	return res, nil
}

func (s *Service) invalidateAccess(ctx context.Context, userID, productID string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, accessCacheKey(userID, productID)).Err(); err != nil {
		logctx.FromCtx(ctx, s.log).Warnw("access cache invalidation failed",
			"user_id", userID, "product_id", productID, "err", err)
	}
}

func accessCacheKey(userID, productID string) string {
	return "access:" + userID + ":" + productID
}
