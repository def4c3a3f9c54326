// Package growth projects compounding balances month by month and solves for
// the level contribution required to reach a savings goal.
package growth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iwvelando/growth-forecast/pkg/compounding"
)

// ErrInvalidInput is wrapped by Err on results that failed validation.
var ErrInvalidInput = errors.New("invalid input")

// Timing says whether a periodic contribution lands before or after the
// month's interest is credited.
type Timing string

const (
	// TimingEnd deposits after interest is credited (ordinary annuity).
	TimingEnd Timing = "end"
	// TimingBeginning deposits before interest is credited (annuity due).
	TimingBeginning Timing = "beginning"
)

// ParseTiming resolves a timing name. An empty string means end of period.
func ParseTiming(name string) (Timing, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "end", "end-of-period", "arrears":
		return TimingEnd, nil
	case "beginning", "begin", "start", "start-of-period", "advance":
		return TimingBeginning, nil
	}
	return "", fmt.Errorf("unknown contribution timing %q", name)
}

// Valid reports whether t is a known timing.
func (t Timing) Valid() bool {
	return t == TimingEnd || t == TimingBeginning
}

// ScheduleInput holds every scalar a projection needs.
type ScheduleInput struct {
	Principal         float64               `json:"principal" yaml:"principal"`
	Contribution      float64               `json:"contribution" yaml:"contribution"`
	Timing            Timing                `json:"timing" yaml:"timing"`
	EscalationPercent float64               `json:"escalationPercent" yaml:"escalationPercent"`
	AnnualLumpSum     float64               `json:"annualLumpSum" yaml:"annualLumpSum"`
	RatePercent       float64               `json:"ratePercent" yaml:"ratePercent"`
	Frequency         compounding.Frequency `json:"frequency" yaml:"frequency"`
	Months            int                   `json:"months" yaml:"months"`
	TaxPercent        float64               `json:"taxPercent" yaml:"taxPercent"`
	InflationPercent  float64               `json:"inflationPercent" yaml:"inflationPercent"`
}

// ChartPoint is one year-end sample of the trajectory. Year 0 is the
// starting principal.
type ChartPoint struct {
	Year          int     `json:"year"`
	Contributions float64 `json:"contributions"`
	Interest      float64 `json:"interest"`
	Balance       float64 `json:"balance"`
}

// YearRow summarizes one projection year. The final row may cover a partial
// year when Months is not a multiple of twelve.
type YearRow struct {
	Year          int     `json:"year"`
	Months        int     `json:"months"`
	Deposits      float64 `json:"deposits"`
	Interest      float64 `json:"interest"`
	Tax           float64 `json:"tax"`
	TotalDeposits float64 `json:"totalDeposits"`
	TotalInterest float64 `json:"totalInterest"`
	Balance       float64 `json:"balance"`
	RealBalance   float64 `json:"realBalance"`
}

// ScheduleOutput is the result of a projection. When Valid is false every
// numeric field is zero and Problems explains why.
type ScheduleOutput struct {
	Valid               bool         `json:"valid"`
	Problems            []string     `json:"problems,omitempty"`
	EndingBalance       float64      `json:"endingBalance"`
	TotalContributed    float64      `json:"totalContributed"`
	TotalInterest       float64      `json:"totalInterest"`
	TotalTax            float64      `json:"totalTax"`
	EffectiveAnnualRate float64      `json:"effectiveAnnualRate"`
	MonthlyRate         float64      `json:"monthlyRate"`
	RealEndingBalance   float64      `json:"realEndingBalance"`
	Trajectory          []float64    `json:"trajectory,omitempty"`
	ChartSeries         []ChartPoint `json:"chartSeries,omitempty"`
	YearlyTable         []YearRow    `json:"yearlyTable,omitempty"`
}

// Err returns nil for a valid output and an error wrapping ErrInvalidInput
// otherwise.
func (o ScheduleOutput) Err() error {
	return problemsErr(o.Valid, o.Problems)
}

// MilestoneMonth scans the output's trajectory for the first month whose
// balance reaches target.
func (o ScheduleOutput) MilestoneMonth(target float64) (int, bool) {
	return MilestoneMonth(o.Trajectory, target)
}

// GoalQuery asks for the level monthly contribution that grows
// InitialBalance into Target after Months.
type GoalQuery struct {
	Target         float64               `json:"target" yaml:"target"`
	Months         int                   `json:"months" yaml:"months"`
	RatePercent    float64               `json:"ratePercent" yaml:"ratePercent"`
	Frequency      compounding.Frequency `json:"frequency" yaml:"frequency"`
	InitialBalance float64               `json:"initialBalance" yaml:"initialBalance"`
	Timing         Timing                `json:"timing" yaml:"timing"`
}

// GoalResult is the answer to a GoalQuery.
type GoalResult struct {
	Valid             bool     `json:"valid"`
	Problems          []string `json:"problems,omitempty"`
	Contribution      float64  `json:"contribution"`
	NaiveContribution float64  `json:"naiveContribution"`
	InitialGrowth     float64  `json:"initialGrowth"`
	TotalContributed  float64  `json:"totalContributed"`
	TotalInterest     float64  `json:"totalInterest"`
}

// Err returns nil for a valid result and an error wrapping ErrInvalidInput
// otherwise.
func (r GoalResult) Err() error {
	return problemsErr(r.Valid, r.Problems)
}

func problemsErr(valid bool, problems []string) error {
	if valid {
		return nil
	}
	if len(problems) == 0 {
		return ErrInvalidInput
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
}
