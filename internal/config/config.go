// Package config defines the data structures related to configuration and
// includes functions for loading and interpreting the config.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/iwvelando/growth-forecast/pkg/compounding"
	"github.com/iwvelando/growth-forecast/pkg/constants"
	"github.com/iwvelando/growth-forecast/pkg/datetime"
	"github.com/iwvelando/growth-forecast/pkg/format"
	"github.com/iwvelando/growth-forecast/pkg/growth"
	"github.com/iwvelando/growth-forecast/pkg/loans"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DateTimeLayout is the format expected in config files and is also the output
// date format.
const DateTimeLayout = constants.DateTimeLayout

// Configuration holds all configuration for growth-forecast.
type Configuration struct {
	StartDate string             `yaml:"startDate,omitempty"`
	Logging   LoggingConfig      `yaml:"logging,omitempty"`
	Output    OutputConfig       `yaml:"output,omitempty"`
	Scenarios []Scenario         `yaml:"scenarios,omitempty"`
	Mortgages []loans.LoanConfig `yaml:"mortgages,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format   string `yaml:"format,omitempty"`   // pretty, csv
	Locale   string `yaml:"locale,omitempty"`   // BCP 47, e.g. en-US
	Currency string `yaml:"currency,omitempty"` // ISO 4217, e.g. USD
}

// Scenario is one named projection, optionally with a savings goal and
// balance milestones to locate.
type Scenario struct {
	Name              string    `yaml:"name"`
	Active            bool      `yaml:"active"`
	Principal         float64   `yaml:"principal,omitempty"`
	Contribution      float64   `yaml:"contribution,omitempty"`
	Timing            string    `yaml:"timing,omitempty"`
	EscalationPercent float64   `yaml:"escalationPercent,omitempty"`
	AnnualLumpSum     float64   `yaml:"annualLumpSum,omitempty"`
	RatePercent       float64   `yaml:"ratePercent,omitempty"`
	Frequency         string    `yaml:"frequency,omitempty"`
	Months            int       `yaml:"months,omitempty"`
	Years             int       `yaml:"years,omitempty"`
	TaxPercent        float64   `yaml:"taxPercent,omitempty"`
	InflationPercent  float64   `yaml:"inflationPercent,omitempty"`
	Goal              *Goal     `yaml:"goal,omitempty"`
	Milestones        []float64 `yaml:"milestones,omitempty"`
}

// Goal asks how much the scenario must contribute monthly to reach Target.
// Months defaults to the scenario duration.
type Goal struct {
	Target float64 `yaml:"target"`
	Months int     `yaml:"months,omitempty"`
}

// LoadEnvFile loads KEY=value pairs from path into the environment when the
// file exists so they can override configuration keys.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error reading env file %s: %w", path, err)
	}
	return nil
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	v := newViper()
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// DurationMonths returns the scenario horizon, preferring Months over Years.
func (s Scenario) DurationMonths() int {
	if s.Months != 0 {
		return s.Months
	}
	return s.Years * constants.MonthsPerYear
}

// ScheduleInput converts the scenario into an engine input.
func (s Scenario) ScheduleInput() (growth.ScheduleInput, error) {
	frequency, err := compounding.ParseFrequency(s.Frequency)
	if err != nil {
		return growth.ScheduleInput{}, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	timing, err := growth.ParseTiming(s.Timing)
	if err != nil {
		return growth.ScheduleInput{}, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	return growth.ScheduleInput{
		Principal:         s.Principal,
		Contribution:      s.Contribution,
		Timing:            timing,
		EscalationPercent: s.EscalationPercent,
		AnnualLumpSum:     s.AnnualLumpSum,
		RatePercent:       s.RatePercent,
		Frequency:         frequency,
		Months:            s.DurationMonths(),
		TaxPercent:        s.TaxPercent,
		InflationPercent:  s.InflationPercent,
	}, nil
}

// GoalQuery converts the scenario's goal block into an engine query. The
// second return is false when the scenario has no goal.
func (s Scenario) GoalQuery() (growth.GoalQuery, bool, error) {
	if s.Goal == nil {
		return growth.GoalQuery{}, false, nil
	}
	input, err := s.ScheduleInput()
	if err != nil {
		return growth.GoalQuery{}, true, err
	}
	months := s.Goal.Months
	if months == 0 {
		months = input.Months
	}
	return growth.GoalQuery{
		Target:         s.Goal.Target,
		Months:         months,
		RatePercent:    input.RatePercent,
		Frequency:      input.Frequency,
		InitialBalance: input.Principal,
		Timing:         input.Timing,
	}, true, nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.StartDate != "" {
		if _, err := datetime.OffsetDate(c.StartDate, DateTimeLayout, 0); err != nil {
			warnings = append(warnings, fmt.Sprintf("startDate %q is not in YYYY-MM format; months will be numbered instead", c.StartDate))
		}
	}

	active := 0
	seen := make(map[string]bool)
	for _, scenario := range c.Scenarios {
		if seen[scenario.Name] {
			warnings = append(warnings, fmt.Sprintf("Scenario name '%s' is used more than once", scenario.Name))
		}
		seen[scenario.Name] = true
		if !scenario.Active {
			continue
		}
		active++

		input, err := scenario.ScheduleInput()
		if err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		for _, problem := range input.Validate() {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s': %s", scenario.Name, problem))
		}
		if scenario.Months != 0 && scenario.Years != 0 && scenario.Months != scenario.Years*constants.MonthsPerYear {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' sets both months (%d) and years (%d); months wins",
				scenario.Name, scenario.Months, scenario.Years))
		}
		if scenario.Goal != nil && scenario.Goal.Months > input.Months {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' goal horizon (%d months) is longer than the projection (%d months)",
				scenario.Name, scenario.Goal.Months, input.Months))
		}
		for _, milestone := range scenario.Milestones {
			if milestone <= scenario.Principal {
				warnings = append(warnings, fmt.Sprintf("Scenario '%s' milestone %s is already met by the principal",
					scenario.Name, format.Currency(milestone)))
			}
		}
	}

	if len(c.Scenarios) > 0 && active == 0 {
		warnings = append(warnings, "No active scenarios; nothing will be projected")
	}

	for i := range c.Mortgages {
		for _, problem := range c.Mortgages[i].Validate() {
			warnings = append(warnings, fmt.Sprintf("Mortgage '%s': %s", c.Mortgages[i].Name, problem))
		}
	}

	return warnings
}
