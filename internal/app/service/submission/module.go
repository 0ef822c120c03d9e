package submission

import "go.uber.org/fx"

// Module exposes the submission service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
