package growth

import (
	"github.com/iwvelando/growth-forecast/pkg/compounding"
	"github.com/iwvelando/growth-forecast/pkg/mathutil"
	"go.uber.org/zap"
)

// SolveRequiredContribution inverts the future value of an annuity:
//
//	PMT = (FV - PV*(1+i)^N) * i / ((1+i)^N - 1)
//
// where i is the per-month growth implied by the rate and compounding
// frequency and N is the number of months. Start-of-period contributions
// divide the result by (1+i). A zero rate degrades to (FV - PV) / N. When the
// initial balance alone reaches the target the contribution is zero.
func (e *Engine) SolveRequiredContribution(query GoalQuery) GoalResult {
	query = query.normalize()
	if p := query.Validate(); len(p) > 0 {
		e.logger.Debug("rejecting goal query",
			zap.String("op", "growth.SolveRequiredContribution"),
			zap.Strings("problems", p),
		)
		return GoalResult{Problems: p}
	}

	periods := float64(query.Months)
	rate := compounding.MonthlyRate(query.RatePercent, query.Frequency)
	result := GoalResult{
		Valid:             true,
		NaiveContribution: (query.Target - query.InitialBalance) / periods,
	}

	if rate == 0 {
		result.InitialGrowth = query.InitialBalance
		result.Contribution = result.NaiveContribution
	} else {
		growthFactor := mathutil.Compound(rate, periods)
		if overflowed(growthFactor) {
			return e.rejectOverflow(query)
		}
		result.InitialGrowth = query.InitialBalance * growthFactor
		if result.InitialGrowth < query.Target {
			payment := (query.Target - result.InitialGrowth) * rate / (growthFactor - 1)
			if query.Timing == TimingBeginning {
				payment /= 1 + rate
			}
			result.Contribution = payment
		}
	}

	result.TotalContributed = query.InitialBalance + result.Contribution*periods
	result.TotalInterest = query.Target - result.TotalContributed
	if result.Contribution == 0 {
		result.TotalInterest = result.InitialGrowth - query.InitialBalance
	}

	if overflowed(result.Contribution, result.InitialGrowth, result.TotalContributed, result.TotalInterest) {
		return e.rejectOverflow(query)
	}

	e.logger.Debug("goal solved",
		zap.String("op", "growth.SolveRequiredContribution"),
		zap.Float64("target", query.Target),
		zap.Int("months", query.Months),
		zap.Float64("contribution", mathutil.Round(result.Contribution)),
	)
	return result
}

func (e *Engine) rejectOverflow(query GoalQuery) GoalResult {
	e.logger.Debug("rejecting goal query",
		zap.String("op", "growth.SolveRequiredContribution"),
		zap.Float64("ratePercent", query.RatePercent),
		zap.Int("months", query.Months),
	)
	return GoalResult{Problems: []string{overflowProblem}}
}

// ProjectionFor builds the projection that realizes a solved goal, suitable
// for charting the path to the target.
func (q GoalQuery) ProjectionFor(result GoalResult) ScheduleInput {
	q = q.normalize()
	return ScheduleInput{
		Principal:    q.InitialBalance,
		Contribution: result.Contribution,
		Timing:       q.Timing,
		RatePercent:  q.RatePercent,
		Frequency:    q.Frequency,
		Months:       q.Months,
	}
}
