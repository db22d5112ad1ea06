package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/brfinance/finsim/internal/config"
	"github.com/brfinance/finsim/internal/indexes"
	"github.com/brfinance/finsim/internal/server"
	"github.com/brfinance/finsim/internal/simulation"
	"github.com/brfinance/finsim/pkg/constants"
	"github.com/brfinance/finsim/pkg/output"
	"github.com/brfinance/finsim/pkg/schedule"
	"github.com/brfinance/finsim/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	serve := flag.Bool("serve", false, "run the HTTP API instead of the configured simulations")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Build the index provider with the configured cache backend.
	var cache indexes.Cache
	settings := server.LoadSettings()
	redisAddr := conf.Indexes.RedisAddr
	if redisAddr == "" {
		redisAddr = settings.RedisAddr
	}
	if redisAddr != "" {
		cache = indexes.NewRedisCache(redisAddr)
	}
	provider := indexes.NewProvider(logger, conf.Indexes.BaseURL, cache)

	if *serve {
		handler := server.NewHandler(logger, provider, settings.MaxRequestSize, version)
		logger.Info("serving simulation API",
			zap.String("op", "main"),
			zap.String("address", settings.Address),
		)
		if err := http.ListenAndServe(settings.Address, handler); err != nil {
			logger.Fatal("server stopped",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		return
	}

	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Validate configuration and display any warnings
	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	var results []*simulation.Result
	for i := range conf.Simulations {
		sim := &conf.Simulations[i]

		// Resolve the correction series up front; a fetch failure degrades
		// to an uncorrected schedule.
		correction := resolveCorrection(logger, provider, sim)

		params, err := sim.ToParameters(correction)
		if err != nil {
			logger.Fatal("failed to prepare simulation",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}

		for _, warning := range simulation.Warnings(params) {
			logger.Warn("Simulation warning: "+warning,
				zap.String("op", "main"),
			)
		}

		result, err := simulation.Run(logger, params)
		if err != nil {
			logger.Fatal("failed to compute simulation",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		results = append(results, result)
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(results)
	case constants.OutputFormatCSV:
		output.CsvFormat(results)
	}
}

func resolveCorrection(logger *zap.Logger, provider *indexes.Provider, sim *config.Simulation) schedule.IndexSeries {
	if sim.CorrectionIndex == "" || sim.StartDate == "" {
		return nil
	}
	series, err := provider.Series(context.Background(), sim.CorrectionIndex, sim.StartDate, sim.TermMonths)
	if err != nil {
		logger.Warn("index fetch failed; computing schedule without correction",
			zap.String("op", "main"),
			zap.String("simulation", sim.Name),
			zap.String("series", sim.CorrectionIndex),
			zap.Error(err),
		)
		return nil
	}
	return series
}
