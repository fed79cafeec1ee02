package otel

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// setup bootstraps OTLP pipelines for the enabled signals. Exporter
// endpoints come from the standard OTEL_EXPORTER_OTLP_* environment
// variables. The returned function flushes and shuts the pipelines down.
func (feature OTel) setup(
	ctx context.Context,
) (shutdown func(context.Context) error, err error) {
	var shutdownFuncs []func(context.Context) error

	shutdown = func(ctx context.Context) error {
		var err error
		for _, fn := range shutdownFuncs {
			err = errors.Join(err, fn(ctx))
		}
		shutdownFuncs = nil
		return err
	}

	handleErr := func(inErr error) {
		err = errors.Join(inErr, shutdown(ctx))
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if feature.TracesEnabled {
		traceExporter, exporterErr := otlptracehttp.New(ctx)
		if exporterErr != nil {
			handleErr(exporterErr)
			return
		}

		tracerProvider := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(
				traceExporter,
				sdktrace.WithBatchTimeout(time.Second),
			),
		)
		shutdownFuncs = append(shutdownFuncs, tracerProvider.Shutdown)
		otel.SetTracerProvider(tracerProvider)
	}

	if feature.MetricsEnabled {
		metricExporter, exporterErr := otlpmetrichttp.New(ctx)
		if exporterErr != nil {
			handleErr(exporterErr)
			return
		}

		meterProvider := sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		)
		shutdownFuncs = append(shutdownFuncs, meterProvider.Shutdown)
		otel.SetMeterProvider(meterProvider)
	}

	if feature.LogsEnabled {
		logExporter, exporterErr := otlploghttp.New(ctx)
		if exporterErr != nil {
			handleErr(exporterErr)
			return
		}

		loggerProvider := sdklog.NewLoggerProvider(
			sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		)
		shutdownFuncs = append(shutdownFuncs, loggerProvider.Shutdown)
		global.SetLoggerProvider(loggerProvider)
	}

	return
}
