package growth

import (
	"math"

	"github.com/iwvelando/growth-forecast/pkg/compounding"
	"github.com/iwvelando/growth-forecast/pkg/constants"
	"github.com/iwvelando/growth-forecast/pkg/mathutil"
	"go.uber.org/zap"
)

// Engine runs projections and goal solves. It holds no state besides its
// logger and is safe for concurrent use.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a new engine instance
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Project simulates the balance month by month. Non-monthly compounding is
// expressed through the equivalent per-month growth factor so that
// contribution timing and annual escalation stay exact.
func (e *Engine) Project(input ScheduleInput) ScheduleOutput {
	input = input.normalize()
	if p := input.Validate(); len(p) > 0 {
		e.logger.Debug("rejecting projection input",
			zap.String("op", "growth.Project"),
			zap.Strings("problems", p),
		)
		return ScheduleOutput{Problems: p}
	}

	monthlyRate := compounding.MonthlyRate(input.RatePercent, input.Frequency)
	escalation := mathutil.PercentToDecimal(input.EscalationPercent)
	inflation := mathutil.PercentToDecimal(input.InflationPercent)
	beginning := input.Timing == TimingBeginning

	out := ScheduleOutput{
		Valid:               true,
		EffectiveAnnualRate: compounding.EffectiveAnnualRate(input.RatePercent, input.Frequency),
		MonthlyRate:         monthlyRate,
		Trajectory:          make([]float64, 0, input.Months+1),
		ChartSeries:         []ChartPoint{{Year: 0, Contributions: input.Principal, Balance: input.Principal}},
	}

	balance := input.Principal
	totalDeposits := input.Principal
	totalInterest := 0.0
	totalTax := 0.0
	contribution := input.Contribution
	var row YearRow

	out.Trajectory = append(out.Trajectory, balance)
	for month := 1; month <= input.Months; month++ {
		yearIndex := (month - 1) / constants.MonthsPerYear
		if (month-1)%constants.MonthsPerYear == 0 {
			row = YearRow{Year: yearIndex + 1}
			contribution = input.Contribution * mathutil.Compound(escalation, float64(yearIndex))
			if beginning && input.AnnualLumpSum > 0 {
				balance += input.AnnualLumpSum
				totalDeposits += input.AnnualLumpSum
				row.Deposits += input.AnnualLumpSum
			}
		}

		if beginning {
			balance += contribution
			totalDeposits += contribution
			row.Deposits += contribution
		}

		interest := balance * monthlyRate
		if interest > 0 && input.TaxPercent > 0 {
			tax := mathutil.ApplyPercentage(interest, input.TaxPercent)
			interest -= tax
			totalTax += tax
			row.Tax += tax
		}
		balance += interest
		totalInterest += interest
		row.Interest += interest

		if !beginning {
			balance += contribution
			totalDeposits += contribution
			row.Deposits += contribution
		}

		if month%constants.MonthsPerYear == 0 && !beginning && input.AnnualLumpSum > 0 {
			balance += input.AnnualLumpSum
			totalDeposits += input.AnnualLumpSum
			row.Deposits += input.AnnualLumpSum
		}

		out.Trajectory = append(out.Trajectory, balance)
		row.Months++

		if month%constants.MonthsPerYear == 0 || month == input.Months {
			row.TotalDeposits = totalDeposits
			row.TotalInterest = totalInterest
			row.Balance = balance
			row.RealBalance = deflate(balance, inflation, month)
			out.YearlyTable = append(out.YearlyTable, row)
			out.ChartSeries = append(out.ChartSeries, ChartPoint{
				Year:          row.Year,
				Contributions: totalDeposits,
				Interest:      totalInterest,
				Balance:       balance,
			})
		}
	}

	if overflowed(balance, totalDeposits, totalTax, out.EffectiveAnnualRate) {
		e.logger.Debug("rejecting projection input",
			zap.String("op", "growth.Project"),
			zap.Float64("ratePercent", input.RatePercent),
			zap.Int("months", input.Months),
		)
		return ScheduleOutput{Problems: []string{overflowProblem}}
	}

	out.EndingBalance = balance
	out.TotalContributed = totalDeposits
	out.TotalInterest = balance - totalDeposits
	out.TotalTax = totalTax
	out.RealEndingBalance = deflate(balance, inflation, input.Months)

	e.logger.Debug("projection complete",
		zap.String("op", "growth.Project"),
		zap.Int("months", input.Months),
		zap.String("frequency", string(input.Frequency)),
		zap.Float64("endingBalance", mathutil.Round(out.EndingBalance)),
	)
	return out
}

// deflate expresses balance in money of month zero.
func deflate(balance, inflation float64, month int) float64 {
	if inflation == 0 {
		return balance
	}
	return balance / math.Pow(1+inflation, float64(month)/constants.MonthsPerYear)
}

// MilestoneMonth returns the first month whose balance is at least target.
// The scan is linear because escalating contributions have no closed form.
// The second return is false when the horizon ends first.
func MilestoneMonth(trajectory []float64, target float64) (int, bool) {
	for month, balance := range trajectory {
		if balance >= target {
			return month, true
		}
	}
	return 0, false
}
