package reconciler

import (
	"go.uber.org/fx"

	"github.com/fatflowers/sitecraft/internal/app/service/eventlog"
	"github.com/fatflowers/sitecraft/internal/app/service/submission"
)

var Module = fx.Options(
	fx.Provide(
		NewVerifier,
		func(s *submission.Service) SubmissionStore { return s },
		func(s *eventlog.Service) EventLog { return s },
		NewService,
	),
)
