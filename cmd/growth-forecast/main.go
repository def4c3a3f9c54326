package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/iwvelando/growth-forecast/internal/config"
	"github.com/iwvelando/growth-forecast/internal/forecast"
	"github.com/iwvelando/growth-forecast/internal/logging"
	"github.com/iwvelando/growth-forecast/pkg/constants"
	"github.com/iwvelando/growth-forecast/pkg/format"
	"github.com/iwvelando/growth-forecast/pkg/output"
	"github.com/iwvelando/growth-forecast/pkg/validation"
	"go.uber.org/zap"
)

// resolveOutputFormat applies the CLI override over the config value.
func resolveOutputFormat(configured, override string) (string, error) {
	outputFormat := configured
	if override != "" {
		outputFormat = override
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	return outputFormat, validation.ValidateOutputFormat(outputFormat)
}

func newPrinter(conf config.OutputConfig) (*format.Printer, error) {
	locale := conf.Locale
	if locale == "" {
		locale = constants.DefaultLocale
	}
	code := conf.Currency
	if code == "" {
		code = constants.DefaultCurrency
	}
	return format.NewPrinter(locale, code)
}

// run computes every active scenario and mortgage and writes the report to w.
func run(logger *zap.Logger, conf *config.Configuration, outputFormat string, w io.Writer) error {
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.run"),
		)
	}

	results, err := forecast.GetForecast(logger, *conf)
	if err != nil {
		return fmt.Errorf("failed to compute forecast: %w", err)
	}
	mortgages := forecast.GetMortgages(logger, *conf)

	switch outputFormat {
	case constants.OutputFormatCSV:
		if err := output.CsvFormat(w, results); err != nil {
			return err
		}
		if len(mortgages) > 0 {
			fmt.Fprintln(w)
			return output.MortgageCsvFormat(w, mortgages)
		}
	default:
		printer, err := newPrinter(conf.Output)
		if err != nil {
			return err
		}
		output.PrettyFormat(w, printer, results, mortgages)
	}
	return nil
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	envFile := flag.String("env-file", ".env", "optional file of GROWTH_* environment overrides")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load env file\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
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

	outputFormat, err := resolveOutputFormat(conf.Output.Format, *outputFormatFlag)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	if err := run(logger, conf, outputFormat, os.Stdout); err != nil {
		logger.Fatal("failed to produce forecast",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
