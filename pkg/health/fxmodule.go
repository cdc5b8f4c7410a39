package health

import (
	"go.uber.org/fx"

	echofx "github.com/jaye773/summarizer-core/pkg/fx/echo"
)

// BuildVersion is the version string reported by /healthz and /livez,
// supplied via fx.Supply by cmd/summarizerd.
type BuildVersion string

// CheckerParams defines the parameters for NewChecker with an optional
// injected build version.
type CheckerParams struct {
	fx.In

	Version BuildVersion `optional:"true"`
}

// NewCheckerFromParams creates a new Checker from fx parameters
func NewCheckerFromParams(params CheckerParams) *Checker {
	version := string(params.Version)
	if version == "" {
		version = "dev"
	}
	return NewChecker(version)
}

// Module provides health check functionality
var Module = fx.Module("health",
	fx.Provide(
		NewCheckerFromParams,
		fx.Annotate(
			NewHandler,
			fx.As(new(echofx.RouteRegistrar)),
			fx.ResultTags(`group:"route_registrar"`),
		),
	),
)
