package notification

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vendahub/billing/internal/models"
	"github.com/vendahub/billing/pkg/tool"
	"github.com/vendahub/billing/pkg/types"
)

// Service writes user-facing notifications. Callers treat it as a
// fire-and-forget side channel: a failed write never rolls back the state
// transition that produced it.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

func (s *Service) Notify(ctx context.Context, userID, title, message string, severity types.NotificationSeverity, link *string) error {
	if userID == "" || title == "" {
		return fmt.Errorf("user_id and title are required")
	}
	n := &models.Notification{
		ID:        tool.GenerateUUIDV7(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      severity,
		Link:      link,
		CreatedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}
