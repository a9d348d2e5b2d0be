package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/iwvelando/rural-credit/internal/analysis"
	"github.com/iwvelando/rural-credit/internal/config"
	"github.com/iwvelando/rural-credit/internal/logging"
	"github.com/iwvelando/rural-credit/pkg/constants"
	"github.com/iwvelando/rural-credit/pkg/output"
	"github.com/iwvelando/rural-credit/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to case file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	if err := validation.ValidateLogLevel(*logLevel); err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"invalid -log-level\", \"error\": \"%v\"}\n", err)
		os.Exit(2)
	}

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		hint := ""
		if errors.Is(err, fs.ErrNotExist) {
			hint = fmt.Sprintf(", start from %s", constants.ExampleConfigFile)
		}
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s%s\", \"error\": \"%v\"}\n", *configLocation, hint, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over the case file
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

	if err := conf.Validate(); err != nil {
		logger.Fatal("invalid case file",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	results, err := analysis.Run(logger, *conf)
	if err != nil {
		logger.Fatal("failed to analyze cases",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(os.Stdout, results)
	case constants.OutputFormatCSV:
		if err := output.CsvFormat(os.Stdout, results); err != nil {
			logger.Fatal("failed to write csv output",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}
}
