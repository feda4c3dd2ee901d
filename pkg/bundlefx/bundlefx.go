// bundlefx/bundlefx.go
package bundlefx

import (
	"go.uber.org/fx"

	"github.com/joeydtaylor/steeze-webhooks/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-webhooks/pkg/middleware/logger"
	"github.com/joeydtaylor/steeze-webhooks/pkg/middleware/metrics"
)

// Module provides the auth, logging and metrics middleware.
var Module = fx.Options(
	auth.Module,
	logger.Module,
	metrics.Module,
)
