package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/vendahub/billing/internal/app/api/server"
	"github.com/vendahub/billing/internal/app/service/entitlement"
	"github.com/vendahub/billing/internal/app/service/eventlog"
	"github.com/vendahub/billing/internal/app/service/notification"
	"github.com/vendahub/billing/internal/app/service/statistics"
	"github.com/vendahub/billing/internal/app/service/subscription"
	"github.com/vendahub/billing/internal/platform/cache"
	"github.com/vendahub/billing/internal/platform/db"
	"github.com/vendahub/billing/pkg/config"
	"github.com/vendahub/billing/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	cache.Module,
	server.Module,
	subscription.Module,
	entitlement.Module,
	notification.Module,
	eventlog.Module,
	statistics.Module,
)
