package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/tournevent/emc/internal/config"
	"github.com/tournevent/emc/internal/graphql"
	"github.com/tournevent/emc/internal/server"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "emc",
	Short:   "EnvoiMoinsCher adapter - shipping quotations and orders",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the GraphQL server",
	RunE:  runServe,
}

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Request shipping offers for the shipment described in --input",
	RunE:  runQuote,
}

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Order the offer described in --input",
	RunE:  runOrder,
}

var reasonsCmd = &cobra.Command{
	Use:   "reasons",
	Short: "List shipment reason codes",
	RunE:  runReasons,
}

var palletsCmd = &cobra.Command{
	Use:   "pallets",
	Short: "List accepted pallet footprints",
	RunE:  runPallets,
}

func init() {
	for _, cmd := range []*cobra.Command{quoteCmd, orderCmd} {
		cmd.Flags().StringP("input", "i", "", "JSON shipment file, - for stdin")
		cmd.MarkFlagRequired("input")
	}
	quoteCmd.Flags().Bool("only-com", false, "only keep offers orderable through the API")
	orderCmd.Flags().Bool("details", false, "include the confirmed offer")
	orderCmd.Flags().Bool("double", false, "also place the return order")
	reasonsCmd.Flags().StringToString("label", nil, "reason labels, e.g. --label repair=Réparation")

	rootCmd.AddCommand(serveCmd, quoteCmd, orderCmd, reasonsCmd, palletsCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Initialize telemetry
	logger, err := initLogger(cfg.LogLevel, "stdout")
	if err != nil {
		return err
	}
	defer logger.Sync()

	tracerShutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
	} else {
		defer tracerShutdown(context.Background())
	}

	client := initClient(cfg, logger)

	logger.Info("Starting EnvoiMoinsCher adapter",
		zap.Int("port", cfg.Port),
		zap.String("version", cfg.Version),
		zap.Bool("production", cfg.EMCProduction),
		zap.Bool("mock", cfg.EMCUseMock),
	)

	// Start HTTP server
	srv := server.New(server.Config{Port: cfg.Port}, client, logger)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// setupCLI loads configuration and a logger writing to stderr, so that
// stdout only carries the command result.
func setupCLI() (*config.Config, *otelzap.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := initLogger(cfg.LogLevel, "stderr")
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func runQuote(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setupCLI()
	if err != nil {
		return err
	}
	defer logger.Sync()

	path, _ := cmd.Flags().GetString("input")
	var input graphql.QuotationInput
	if err := readInput(path, cmd.InOrStdin(), &input); err != nil {
		return err
	}
	if cmd.Flags().Changed("only-com") {
		input.OnlyCom, _ = cmd.Flags().GetBool("only-com")
	}

	result, err := initResolver(cfg, logger).Quotation(cmd.Context(), input)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), result)
}

func runOrder(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setupCLI()
	if err != nil {
		return err
	}
	defer logger.Sync()

	path, _ := cmd.Flags().GetString("input")
	var input graphql.OrderInput
	if err := readInput(path, cmd.InOrStdin(), &input); err != nil {
		return err
	}
	if cmd.Flags().Changed("details") {
		input.WithDetails, _ = cmd.Flags().GetBool("details")
	}
	if cmd.Flags().Changed("double") {
		input.Double, _ = cmd.Flags().GetBool("double")
	}

	result, err := initResolver(cfg, logger).Order(cmd.Context(), input)
	if result != nil {
		if werr := writeOutput(cmd.OutOrStdout(), result); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

func runReasons(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setupCLI()
	if err != nil {
		return err
	}
	defer logger.Sync()

	labels, _ := cmd.Flags().GetStringToString("label")
	return writeOutput(cmd.OutOrStdout(), initResolver(cfg, logger).Reasons(cmd.Context(), labels))
}

func runPallets(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setupCLI()
	if err != nil {
		return err
	}
	defer logger.Sync()

	return writeOutput(cmd.OutOrStdout(), initResolver(cfg, logger).Pallets(cmd.Context()))
}
