// Package compounding maps compounding frequencies to period counts and
// converts nominal annual rates into per-month and effective annual rates.
package compounding

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/growth-forecast/pkg/constants"
	"github.com/iwvelando/growth-forecast/pkg/mathutil"
)

// Frequency is how often interest is calculated and added to the balance.
type Frequency string

// Supported compounding frequencies.
const (
	Daily        Frequency = "daily"
	Weekly       Frequency = "weekly"
	Biweekly     Frequency = "biweekly"
	Semimonthly  Frequency = "semimonthly"
	Monthly      Frequency = "monthly"
	Quarterly    Frequency = "quarterly"
	Semiannually Frequency = "semiannually"
	Annually     Frequency = "annually"
	Continuous   Frequency = "continuous"
)

var periodsPerYear = map[Frequency]int{
	Daily:        365,
	Weekly:       52,
	Biweekly:     26,
	Semimonthly:  24,
	Monthly:      12,
	Quarterly:    4,
	Semiannually: 2,
	Annually:     1,
}

var aliases = map[string]Frequency{
	"day":          Daily,
	"week":         Weekly,
	"fortnightly":  Biweekly,
	"month":        Monthly,
	"quarter":      Quarterly,
	"semiannual":   Semiannually,
	"semi-annual":  Semiannually,
	"semi-monthly": Semimonthly,
	"bi-weekly":    Biweekly,
	"annual":       Annually,
	"yearly":       Annually,
	"year":         Annually,
}

// All returns every supported frequency ordered from coarsest to finest.
func All() []Frequency {
	return []Frequency{Annually, Semiannually, Quarterly, Monthly, Semimonthly, Biweekly, Weekly, Daily, Continuous}
}

// ParseFrequency resolves a user supplied name. An empty string means monthly.
func ParseFrequency(name string) (Frequency, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return Monthly, nil
	}
	f := Frequency(normalized)
	if f.Valid() {
		return f, nil
	}
	if alias, ok := aliases[normalized]; ok {
		return alias, nil
	}
	return "", fmt.Errorf("unknown compounding frequency %q", name)
}

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	if f == Continuous {
		return true
	}
	_, ok := periodsPerYear[f]
	return ok
}

// PeriodsPerYear returns the number of compounding periods in a year. The
// second return is false for continuous compounding and unknown frequencies.
func (f Frequency) PeriodsPerYear() (int, bool) {
	n, ok := periodsPerYear[f]
	return n, ok
}

// MonthlyRate converts a nominal annual rate in percent into the equivalent
// growth per month: (1 + r/n)^(n/12) - 1, or e^(r/12) - 1 when continuous.
func MonthlyRate(ratePercent float64, f Frequency) float64 {
	r := mathutil.PercentToDecimal(ratePercent)
	if r == 0 {
		return 0
	}
	if f == Continuous {
		return math.Exp(r/constants.MonthsPerYear) - 1
	}
	n, ok := periodsPerYear[f]
	if !ok {
		n = constants.MonthsPerYear
	}
	return mathutil.Compound(r/float64(n), float64(n)/constants.MonthsPerYear) - 1
}

// EffectiveAnnualRate returns the APY as a decimal fraction: (1 + r/n)^n - 1,
// or e^r - 1 when continuous.
func EffectiveAnnualRate(ratePercent float64, f Frequency) float64 {
	r := mathutil.PercentToDecimal(ratePercent)
	if f == Continuous {
		return math.Exp(r) - 1
	}
	n, ok := periodsPerYear[f]
	if !ok {
		n = constants.MonthsPerYear
	}
	return mathutil.Compound(r/float64(n), float64(n)) - 1
}
