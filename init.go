package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"

	"github.com/tournevent/emc/internal/config"
	"github.com/tournevent/emc/internal/graphql"
	"github.com/tournevent/emc/internal/telemetry"
	"github.com/tournevent/emc/pkg/envoimoinscher"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level, output string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level, output)
}

func initTracer(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return func(context.Context) error { return nil }, nil
	}

	_, shutdown, err := telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version, cfg.Attributes()...)
	return shutdown, err
}

// initClient builds the adapter client. The tracer comes from the global
// provider, which is a no-op until initTracer installs one.
func initClient(cfg *config.Config, logger *otelzap.Logger) *envoimoinscher.Client {
	tracer := otel.Tracer(cfg.ServiceName)
	return envoimoinscher.New(cfg.EnvoiMoinsCher(), logger, tracer)
}

// initResolver wires a resolver for one-shot CLI commands. Metrics go to a
// throwaway registry.
func initResolver(cfg *config.Config, logger *otelzap.Logger) *graphql.Resolver {
	metrics := telemetry.NewMetrics(prometheus.NewRegistry())
	return graphql.NewResolver(initClient(cfg, logger), logger, metrics)
}

// readInput decodes a JSON document from path ("-" for stdin) into out.
func readInput(path string, stdin io.Reader, out any) error {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var raw map[string]any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return graphql.Decode(raw, out)
}

func writeOutput(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
