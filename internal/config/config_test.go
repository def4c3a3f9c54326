package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/growth-forecast/pkg/compounding"
	"github.com/iwvelando/growth-forecast/pkg/constants"
	"github.com/iwvelando/growth-forecast/pkg/growth"
)

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Example config",
			configPath: filepath.Join("..", "..", constants.ExampleConfigFile),
			wantError:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfigurationExample(t *testing.T) {
	conf, err := LoadConfiguration(filepath.Join("..", "..", constants.ExampleConfigFile))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if conf.StartDate != "2026-01" {
		t.Errorf("StartDate = %q, expected 2026-01", conf.StartDate)
	}
	if conf.Output.Format != constants.OutputFormatPretty || conf.Output.Currency != "USD" {
		t.Errorf("Output = %+v", conf.Output)
	}
	if len(conf.Scenarios) != 4 {
		t.Fatalf("len(Scenarios) = %d, expected 4", len(conf.Scenarios))
	}

	saver := conf.Scenarios[1]
	if saver.Name != "steady saver" || !saver.Active || saver.Contribution != 200 {
		t.Errorf("unexpected scenario %+v", saver)
	}
	if len(saver.Milestones) != 2 || saver.Milestones[1] != 100000 {
		t.Errorf("Milestones = %v", saver.Milestones)
	}

	deposit := conf.Scenarios[2]
	if deposit.Goal == nil || deposit.Goal.Target != 20000 {
		t.Fatalf("Goal = %+v", deposit.Goal)
	}

	retirement := conf.Scenarios[3]
	if retirement.Active || retirement.EscalationPercent != 3 || retirement.InflationPercent != 2.5 {
		t.Errorf("unexpected retirement scenario %+v", retirement)
	}

	if len(conf.Mortgages) != 1 {
		t.Fatalf("len(Mortgages) = %d, expected 1", len(conf.Mortgages))
	}
	if conf.Mortgages[0].Term != 360 || conf.Mortgages[0].ExtraPrincipal != 200 {
		t.Errorf("unexpected mortgage %+v", conf.Mortgages[0])
	}

	if warnings := conf.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("example config should validate cleanly, got %v", warnings)
	}
}

func TestLoadConfigurationFromReader(t *testing.T) {
	yaml := `
scenarios:
  - name: reader
    active: true
    principal: 1000
    contribution: 100
    ratePercent: 0
    months: 12
`
	conf, err := LoadConfigurationFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	if len(conf.Scenarios) != 1 || conf.Scenarios[0].Months != 12 {
		t.Fatalf("unexpected scenarios %+v", conf.Scenarios)
	}

	if _, err := LoadConfigurationFromReader(strings.NewReader("scenarios: [unterminated")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestScenarioScheduleInput(t *testing.T) {
	scenario := Scenario{
		Name: "test", Principal: 5000, Contribution: 200, Timing: "start",
		RatePercent: 7, Frequency: "quarterly", Years: 20, TaxPercent: 10,
	}

	input, err := scenario.ScheduleInput()
	if err != nil {
		t.Fatalf("ScheduleInput() error = %v", err)
	}
	if input.Months != 240 {
		t.Errorf("Months = %d, expected 240", input.Months)
	}
	if input.Frequency != compounding.Quarterly || input.Timing != growth.TimingBeginning {
		t.Errorf("unexpected input %+v", input)
	}

	scenario.Months = 18
	if scenario.DurationMonths() != 18 {
		t.Errorf("Months should take precedence over Years")
	}

	scenario.Frequency = "hourly"
	if _, err := scenario.ScheduleInput(); err == nil {
		t.Error("expected error for unknown frequency")
	}
}

func TestScenarioGoalQuery(t *testing.T) {
	scenario := Scenario{Name: "goal", Principal: 2000, RatePercent: 4.5, Months: 36, Goal: &Goal{Target: 20000}}

	query, ok, err := scenario.GoalQuery()
	if err != nil || !ok {
		t.Fatalf("GoalQuery() = %v, %v", ok, err)
	}
	if query.Months != 36 || query.InitialBalance != 2000 || query.Target != 20000 {
		t.Errorf("unexpected query %+v", query)
	}

	result := growth.NewEngine(nil).SolveRequiredContribution(query)
	if math.Abs(result.Contribution-460.44) > 0.01 {
		t.Errorf("Contribution = %.2f, expected 460.44", result.Contribution)
	}

	scenario.Goal = nil
	if _, ok, _ := scenario.GoalQuery(); ok {
		t.Error("scenario without goal should report ok=false")
	}
}

func TestValidateConfiguration(t *testing.T) {
	conf := Configuration{
		StartDate: "January",
		Scenarios: []Scenario{
			{Name: "dup", Active: true, Principal: 100, Months: 12},
			{Name: "dup", Active: true, Months: 0},
			{Name: "both", Active: true, Principal: 100, Months: 10, Years: 2, Milestones: []float64{50}},
			{Name: "goal", Active: true, Principal: 100, Months: 12, Goal: &Goal{Target: 1000, Months: 24}},
		},
	}

	warnings := conf.ValidateConfiguration()
	expectedFragments := []string{
		"startDate",
		"used more than once",
		"nothing to project",
		"months wins",
		"milestone $50.00 is already met by the principal",
		"goal horizon",
	}
	joined := strings.Join(warnings, "\n")
	for _, fragment := range expectedFragments {
		if !strings.Contains(joined, fragment) {
			t.Errorf("expected a warning containing %q, got:\n%s", fragment, joined)
		}
	}

	inactive := Configuration{Scenarios: []Scenario{{Name: "off"}}}
	if warnings := inactive.ValidateConfiguration(); len(warnings) != 1 {
		t.Errorf("expected a single no-active-scenarios warning, got %v", warnings)
	}
}

func TestLoadEnvFile(t *testing.T) {
	if err := LoadEnvFile(""); err != nil {
		t.Errorf("empty path should be ignored, got %v", err)
	}
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing file should be ignored, got %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("GROWTH_TEST_ENV_VALUE=loaded\n"), 0600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("GROWTH_TEST_ENV_VALUE") })

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}
	if os.Getenv("GROWTH_TEST_ENV_VALUE") != "loaded" {
		t.Error("expected env file value to be loaded")
	}
}
