package growth

import (
	"fmt"
	"math"

	"github.com/iwvelando/growth-forecast/pkg/compounding"
	"github.com/iwvelando/growth-forecast/pkg/constants"
)

type problems []string

func (p *problems) addf(format string, args ...interface{}) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

func (p *problems) finite(name string, v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		p.addf("%s must be a finite number", name)
		return false
	}
	return true
}

// overflowed reports whether any of values left the finite range.
func overflowed(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}

const overflowProblem = "rate and duration grow the balance past the representable range; lower the rate or the number of months"

func (p *problems) nonNegative(name string, v float64) {
	if p.finite(name, v) && v < 0 {
		p.addf("%s must not be negative, got %g", name, v)
	}
}

func (p *problems) months(v int) {
	if v <= 0 {
		p.addf("duration must be a positive number of months, got %d", v)
	} else if v > constants.MaxProjectionMonths {
		p.addf("duration must not exceed %d months, got %d", constants.MaxProjectionMonths, v)
	}
}

func (p *problems) rateAndSchedule(rate float64, f compounding.Frequency, t Timing) {
	p.nonNegative("rate", rate)
	if !f.Valid() {
		p.addf("unknown compounding frequency %q", f)
	}
	if !t.Valid() {
		p.addf("unknown contribution timing %q", t)
	}
}

// normalize fills the defaults an empty form field implies.
func (in ScheduleInput) normalize() ScheduleInput {
	if in.Timing == "" {
		in.Timing = TimingEnd
	}
	if in.Frequency == "" {
		in.Frequency = compounding.Monthly
	}
	return in
}

// Validate returns the reasons in is not a usable projection input.
func (in ScheduleInput) Validate() []string {
	in = in.normalize()
	var p problems
	p.months(in.Months)
	p.nonNegative("principal", in.Principal)
	p.nonNegative("contribution", in.Contribution)
	p.nonNegative("annual lump sum", in.AnnualLumpSum)
	p.nonNegative("escalation", in.EscalationPercent)
	p.nonNegative("inflation", in.InflationPercent)
	p.nonNegative("tax", in.TaxPercent)
	if in.TaxPercent > constants.PercentageMultiplier {
		p.addf("tax must not exceed 100%%, got %g", in.TaxPercent)
	}
	p.rateAndSchedule(in.RatePercent, in.Frequency, in.Timing)
	if in.Principal == 0 && in.Contribution == 0 && in.AnnualLumpSum == 0 {
		p.addf("principal, contribution and annual lump sum are all zero; nothing to project")
	}
	return p
}

func (q GoalQuery) normalize() GoalQuery {
	if q.Timing == "" {
		q.Timing = TimingEnd
	}
	if q.Frequency == "" {
		q.Frequency = compounding.Monthly
	}
	return q
}

// Validate returns the reasons q is not a usable goal query.
func (q GoalQuery) Validate() []string {
	q = q.normalize()
	var p problems
	p.months(q.Months)
	p.nonNegative("initial balance", q.InitialBalance)
	if p.finite("target", q.Target) && q.Target <= q.InitialBalance {
		p.addf("target %g must exceed the initial balance %g", q.Target, q.InitialBalance)
	}
	p.rateAndSchedule(q.RatePercent, q.Frequency, q.Timing)
	return p
}
