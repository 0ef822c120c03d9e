package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/fatflowers/sitecraft/internal/app/api/server"
	"github.com/fatflowers/sitecraft/internal/app/service/auth"
	"github.com/fatflowers/sitecraft/internal/app/service/checkout"
	"github.com/fatflowers/sitecraft/internal/app/service/eventlog"
	"github.com/fatflowers/sitecraft/internal/app/service/files"
	"github.com/fatflowers/sitecraft/internal/app/service/notifier"
	"github.com/fatflowers/sitecraft/internal/app/service/reconciler"
	"github.com/fatflowers/sitecraft/internal/app/service/statistics"
	"github.com/fatflowers/sitecraft/internal/app/service/submission"
	"github.com/fatflowers/sitecraft/internal/platform/db"
	"github.com/fatflowers/sitecraft/internal/platform/objectstore"
	"github.com/fatflowers/sitecraft/internal/platform/redisclient"
	"github.com/fatflowers/sitecraft/internal/platform/stripeapi"
	"github.com/fatflowers/sitecraft/pkg/config"
	"github.com/fatflowers/sitecraft/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	redisclient.Module,
	objectstore.Module,
	stripeapi.Module,
	server.Module,
	submission.Module,
	eventlog.Module,
	reconciler.Module,
	checkout.Module,
	auth.Module,
	files.Module,
	notifier.Module,
	statistics.Module,
)
