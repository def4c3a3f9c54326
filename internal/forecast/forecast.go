// Package forecast defines the data structures related to a given forecast and
// includes functions for computing the forecasts.
package forecast

import (
	"fmt"

	"github.com/iwvelando/growth-forecast/internal/config"
	"github.com/iwvelando/growth-forecast/pkg/datetime"
	"github.com/iwvelando/growth-forecast/pkg/growth"
	"github.com/iwvelando/growth-forecast/pkg/loans"
	"go.uber.org/zap"
)

// Forecast holds all information related to a specific forecast.
type Forecast struct {
	Name       string                `json:"name"`
	Labels     []string              `json:"labels"`
	Output     growth.ScheduleOutput `json:"output"`
	Goal       *growth.GoalResult    `json:"goal,omitempty"`
	Milestones []MilestoneHit        `json:"milestones,omitempty"`
}

// MilestoneHit records when a scenario's balance first reaches Target.
type MilestoneHit struct {
	Target  float64 `json:"target"`
	Reached bool    `json:"reached"`
	Month   int     `json:"month,omitempty"`
	Label   string  `json:"label,omitempty"`
}

// GetForecast processes the Forecasts for all active Scenarios. Scenarios
// whose inputs the engine rejects are still returned so their problems can be
// reported alongside the valid ones.
func GetForecast(logger *zap.Logger, conf config.Configuration) ([]Forecast, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := growth.NewEngine(logger)
	var results []Forecast
	for _, scenario := range conf.Scenarios {
		if !scenario.Active {
			logger.Debug(fmt.Sprintf("skipping scenario %s because it is inactive", scenario.Name),
				zap.String("op", "forecast.GetForecast"),
			)
			continue
		}

		input, err := scenario.ScheduleInput()
		if err != nil {
			return results, err
		}

		result := Forecast{Name: scenario.Name}
		result.Output = engine.Project(input)
		if !result.Output.Valid {
			logger.Warn(fmt.Sprintf("scenario %s cannot be projected", scenario.Name),
				zap.String("op", "forecast.GetForecast"),
				zap.Strings("problems", result.Output.Problems),
			)
			results = append(results, result)
			continue
		}

		result.Labels = labels(logger, conf.StartDate, input.Months)

		query, ok, err := scenario.GoalQuery()
		if err != nil {
			return results, err
		}
		if ok {
			goal := engine.SolveRequiredContribution(query)
			if !goal.Valid {
				logger.Warn(fmt.Sprintf("goal for scenario %s cannot be solved", scenario.Name),
					zap.String("op", "forecast.GetForecast"),
					zap.Strings("problems", goal.Problems),
				)
			}
			result.Goal = &goal
		}

		for _, target := range scenario.Milestones {
			hit := MilestoneHit{Target: target}
			if month, reached := result.Output.MilestoneMonth(target); reached {
				hit.Reached = true
				hit.Month = month
				hit.Label = result.Labels[month]
			}
			result.Milestones = append(result.Milestones, hit)
		}

		results = append(results, result)
	}

	return results, nil
}

// GetMortgages builds an amortization schedule for every configured mortgage.
func GetMortgages(logger *zap.Logger, conf config.Configuration) []loans.Schedule {
	if logger == nil {
		logger = zap.NewNop()
	}

	generator := loans.NewAmortizationScheduleGenerator(logger)
	schedules := make([]loans.Schedule, 0, len(conf.Mortgages))
	for i := range conf.Mortgages {
		schedule := generator.GenerateSchedule(&conf.Mortgages[i])
		if !schedule.Valid {
			logger.Warn(fmt.Sprintf("mortgage %s cannot be amortized", conf.Mortgages[i].Name),
				zap.String("op", "forecast.GetMortgages"),
				zap.Strings("problems", schedule.Problems),
			)
		}
		schedules = append(schedules, schedule)
	}
	return schedules
}

// labels falls back to numbered months when the start date is unusable.
func labels(logger *zap.Logger, startDate string, months int) []string {
	result, err := datetime.MonthLabels(startDate, months)
	if err == nil {
		return result
	}
	logger.Warn("falling back to numbered months",
		zap.String("op", "forecast.labels"),
		zap.Error(err),
	)
	result, _ = datetime.MonthLabels("", months)
	return result
}
