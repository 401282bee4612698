package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/iwvelando/water-builder/internal/builder"
	"github.com/iwvelando/water-builder/internal/config"
	"github.com/iwvelando/water-builder/internal/logging"
	"github.com/iwvelando/water-builder/pkg/constants"
	"github.com/iwvelando/water-builder/pkg/output"
	"github.com/iwvelando/water-builder/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	modeFlag := flag.String("mode", "", "run mode override: solve, bestfit")
	flag.Parse()

	os.Exit(run(*configLocation, *outputFormatFlag, *logLevel, *modeFlag))
}

func run(configLocation, outputFormatFlag, logLevel, modeFlag string) int {
	conf, err := config.LoadConfiguration(configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", configLocation, err)
		return 1
	}

	logger, err := logging.New(conf.Logging, logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI overrides take precedence over config
	if outputFormatFlag != "" {
		conf.Output.Format = outputFormatFlag
	}
	if modeFlag != "" {
		conf.Water.Mode = modeFlag
	}

	if err := validation.ValidateOutputFormat(conf.Output.Format); err != nil {
		logger.Error(err.Error(), zap.String("op", "main"))
		return 2
	}
	if err := conf.Validate(); err != nil {
		logger.Error("invalid configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return 2
	}

	// Validate configuration and display any warnings
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	solver, err := builder.NewSolver(logger, nil, conf.ToOptions())
	if err != nil {
		logger.Error("failed to create solver",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return 2
	}

	if conf.Water.Mode == constants.ModeBestFit {
		return runBestFit(logger, solver, conf)
	}
	return runSolve(logger, solver, conf)
}

func runSolve(logger *zap.Logger, solver *builder.Solver, conf *config.Configuration) int {
	in, err := conf.ToInput(solver.Catalog())
	if err != nil {
		logger.Error("invalid water configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return 2
	}

	result, err := solver.Solve(in)
	if err != nil {
		return reportSolveError(logger, err)
	}

	switch conf.Output.Format {
	case constants.OutputFormatPretty:
		output.PrettyFormat(result)
	case constants.OutputFormatCSV:
		output.CsvFormat(result)
	case constants.OutputFormatJSON:
		output.JSONFormat(result)
	}

	if !result.Feasible {
		return 3
	}
	return 0
}

func runBestFit(logger *zap.Logger, solver *builder.Solver, conf *config.Configuration) int {
	out, err := solver.BestFit(conf.ToBestFitInput(solver.Catalog()))
	if err != nil {
		return reportSolveError(logger, err)
	}

	switch conf.Output.Format {
	case constants.OutputFormatPretty:
		output.PrettyBestFitFormat(out)
	case constants.OutputFormatCSV:
		if out.Found {
			output.CsvFormat(out.Result)
		} else {
			fmt.Println(out.Reason)
		}
	case constants.OutputFormatJSON:
		output.JSONBestFitFormat(out)
	}

	if !out.Found {
		return 3
	}
	return 0
}

func reportSolveError(logger *zap.Logger, err error) int {
	logger.Error("failed to solve water profile",
		zap.String("op", "main"),
		zap.Error(err),
	)
	if errors.Is(err, builder.ErrInvalidInput) {
		return 2
	}
	return 1
}
