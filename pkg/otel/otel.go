package otel

import (
	"context"
	"maps"
	"net/http"
	"os"

	"gitlab.com/pala-software/livelist/pkg/livelist"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var name = "gitlab.com/pala-software/livelist/pkg/otel"
var logger = otelslog.NewLogger(name)

type OTel struct {
	TracesEnabled  bool
	MetricsEnabled bool
	LogsEnabled    bool
}

func OTelFromEnv() *OTel {
	feature := OTel{}
	feature.TracesEnabled = os.Getenv("LIVELIST_OTEL_TRACES_ENABLE") == "1"
	feature.MetricsEnabled = os.Getenv("LIVELIST_OTEL_METRICS_ENABLE") == "1"
	feature.LogsEnabled = os.Getenv("LIVELIST_OTEL_LOGS_ENABLE") == "1"
	return &feature
}

func (feature OTel) Middleware() func(http.Handler) http.Handler {
	return otelhttp.NewMiddleware("server")
}

func (feature *OTel) Provider() any {
	return func() (self *OTel) {
		self = feature
		return
	}
}

func (feature *OTel) Invoker() any {
	return func(
		lifecycle *livelist.Lifecycle,
		core *livelist.Core,
	) (err error) {
		err = feature.RegisterHooks(lifecycle, core)
		if err != nil {
			return
		}

		return
	}
}

// RegisterHooks attaches a log line to every registered operation and to
// the lifecycle edges. It must run after every other feature has
// registered its operations.
func (feature OTel) RegisterHooks(
	lifecycle *livelist.Lifecycle,
	core *livelist.Core,
) (err error) {
	otelShutdown, err := feature.setup(context.Background())
	if err != nil {
		return
	}

	lifecycle.Start.Register(func() error {
		logger.Info("Start")
		return nil
	})

	lifecycle.Shutdown.Register(func() error {
		logger.Info("Shutdown")
		return otelShutdown(context.Background())
	})

	for _, op := range core.Operations().Value() {
		op.OnBefore(func(
			ctx livelist.OperationContext,
			params livelist.OperationParams,
		) error {
			detailsMap := op.Details()
			maps.Copy(detailsMap, ctx.Details())
			maps.Copy(detailsMap, params.Details())

			detailsSlice := make([]any, len(detailsMap)*2)
			index := 0
			for key, val := range detailsMap {
				detailsSlice[index+0] = key
				detailsSlice[index+1] = val
				index += 2
			}

			logger.Info("Before"+op.Name(), detailsSlice...)
			return nil
		})

		op.OnAfter(func(
			ctx livelist.OperationContext,
			params livelist.OperationParams,
			res livelist.OperationResult,
		) error {
			detailsMap := op.Details()
			maps.Copy(detailsMap, ctx.Details())
			maps.Copy(detailsMap, params.Details())
			maps.Copy(detailsMap, res.Details())

			detailsSlice := make([]any, len(detailsMap)*2)
			index := 0
			for key, val := range detailsMap {
				detailsSlice[index+0] = key
				detailsSlice[index+1] = val
				index += 2
			}

			logger.Info("After"+op.Name(), detailsSlice...)
			return nil
		})
	}

	return
}
