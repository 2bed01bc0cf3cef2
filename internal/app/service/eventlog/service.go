package eventlog

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vendahub/billing/internal/models"
	"github.com/vendahub/billing/pkg/logctx"
	"github.com/vendahub/billing/pkg/tool"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Save asynchronously persists the raw body of a lifecycle RPC call.
// Empty payloads are still recorded: a malformed webhook delivery is
// exactly the case the trail exists for.
func (s *Service) Save(ctx context.Context, action string, payload []byte) {
	go func() {
		entry := &models.WebhookEventLog{
			ID:      tool.GenerateUUIDV7(),
			Action:  action,
			Payload: datatypes.JSON(payload),
			Extra:   datatypes.JSONMap{},
		}
		if err := s.db.Save(entry).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to save webhook event log: %v", err)
		}
	}()
}

var Module = fx.Options(
	fx.Provide(New),
)
