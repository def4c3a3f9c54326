// Package loans builds mortgage-style amortization schedules.
package loans

import (
	"fmt"
	"math"

	"github.com/iwvelando/growth-forecast/pkg/compounding"
	"github.com/iwvelando/growth-forecast/pkg/constants"
	"github.com/iwvelando/growth-forecast/pkg/mathutil"
	"go.uber.org/zap"
)

// Payment holds the values for a given payment.
type Payment struct {
	Month              int     `json:"month"`
	Payment            float64 `json:"payment"`
	Principal          float64 `json:"principal"`
	ExtraPrincipal     float64 `json:"extraPrincipal"`
	Interest           float64 `json:"interest"`
	Escrow             float64 `json:"escrow"`
	MortgageInsurance  float64 `json:"mortgageInsurance"`
	RemainingPrincipal float64 `json:"remainingPrincipal"`
}

// YearSummary aggregates the payments of one loan year.
type YearSummary struct {
	Year               int     `json:"year"`
	Principal          float64 `json:"principal"`
	Interest           float64 `json:"interest"`
	Escrow             float64 `json:"escrow"`
	MortgageInsurance  float64 `json:"mortgageInsurance"`
	RemainingPrincipal float64 `json:"remainingPrincipal"`
}

// LoanConfig represents loan configuration parameters
type LoanConfig struct {
	Name                    string                `json:"name" yaml:"name"`
	Principal               float64               `json:"principal" yaml:"principal"`
	DownPayment             float64               `json:"downPayment" yaml:"downPayment"`
	InterestRate            float64               `json:"interestRate" yaml:"interestRate"`
	Frequency               compounding.Frequency `json:"frequency" yaml:"frequency"`
	Term                    int                   `json:"term" yaml:"term"` // months
	ExtraPrincipal          float64               `json:"extraPrincipal" yaml:"extraPrincipal"`
	Escrow                  float64               `json:"escrow" yaml:"escrow"`
	MortgageInsurance       float64               `json:"mortgageInsurance" yaml:"mortgageInsurance"`
	MortgageInsuranceCutoff float64               `json:"mortgageInsuranceCutoff" yaml:"mortgageInsuranceCutoff"`
}

// Schedule is a complete amortization schedule. When Valid is false only
// Problems is populated.
type Schedule struct {
	Name           string        `json:"name,omitempty"`
	Valid          bool          `json:"valid"`
	Problems       []string      `json:"problems,omitempty"`
	Financed       float64       `json:"financed"`
	MonthlyPayment float64       `json:"monthlyPayment"`
	TotalInterest  float64       `json:"totalInterest"`
	TotalPaid      float64       `json:"totalPaid"`
	PayoffMonth    int           `json:"payoffMonth"`
	InterestSaved  float64       `json:"interestSaved"`
	MonthsSaved    int           `json:"monthsSaved"`
	Payments       []Payment     `json:"payments,omitempty"`
	Years          []YearSummary `json:"years,omitempty"`
}

// CalculateMonthlyPayment calculates the monthly payment for a loan using the standard amortization formula.
func CalculateMonthlyPayment(principal, downPayment, annualInterestRate float64, termMonths int) float64 {
	return CalculatePayment(principal-downPayment, compounding.MonthlyRate(annualInterestRate, compounding.Monthly), termMonths)
}

// CalculatePayment returns the level payment that retires financed over
// termMonths at the given per-month rate.
func CalculatePayment(financed, monthlyRate float64, termMonths int) float64 {
	if termMonths <= 0 {
		return 0
	}
	if monthlyRate == 0 {
		// For zero interest, simply divide the principal by term
		return financed / float64(termMonths)
	}
	power := mathutil.Compound(monthlyRate, float64(termMonths))
	discountFactor := (power - 1.00) / power
	return financed * monthlyRate / discountFactor
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingPrincipal, monthlyRate float64) float64 {
	return remainingPrincipal * monthlyRate
}

// Validate returns the reasons loan cannot be amortized.
func (loan *LoanConfig) Validate() []string {
	var problems []string
	if loan.Term <= 0 {
		problems = append(problems, fmt.Sprintf("term must be a positive number of months, got %d", loan.Term))
	} else if loan.Term > constants.MaxProjectionMonths {
		problems = append(problems, fmt.Sprintf("term must not exceed %d months, got %d", constants.MaxProjectionMonths, loan.Term))
	}
	if loan.Principal <= 0 || math.IsNaN(loan.Principal) || math.IsInf(loan.Principal, 0) {
		problems = append(problems, fmt.Sprintf("principal must be positive, got %g", loan.Principal))
	}
	if loan.DownPayment < 0 {
		problems = append(problems, fmt.Sprintf("down payment must not be negative, got %g", loan.DownPayment))
	} else if loan.Principal > 0 && loan.DownPayment >= loan.Principal {
		problems = append(problems, "down payment covers the whole principal; nothing is financed")
	}
	if loan.InterestRate < 0 {
		problems = append(problems, fmt.Sprintf("interest rate must not be negative, got %g", loan.InterestRate))
	}
	if loan.Frequency != "" && !loan.Frequency.Valid() {
		problems = append(problems, fmt.Sprintf("unknown compounding frequency %q", loan.Frequency))
	}
	for name, v := range map[string]float64{
		"extra principal":    loan.ExtraPrincipal,
		"escrow":             loan.Escrow,
		"mortgage insurance": loan.MortgageInsurance,
	} {
		if v < 0 {
			problems = append(problems, fmt.Sprintf("%s must not be negative, got %g", name, v))
		}
	}
	if loan.MortgageInsuranceCutoff < 0 || loan.MortgageInsuranceCutoff > constants.PercentageMultiplier {
		problems = append(problems, fmt.Sprintf("mortgage insurance cutoff must be between 0 and 100, got %g", loan.MortgageInsuranceCutoff))
	}
	return problems
}

// AmortizationScheduleGenerator provides utilities for generating loan amortization schedules
type AmortizationScheduleGenerator struct {
	logger *zap.Logger
}

// NewAmortizationScheduleGenerator creates a new generator instance
func NewAmortizationScheduleGenerator(logger *zap.Logger) *AmortizationScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmortizationScheduleGenerator{logger: logger}
}

// GenerateSchedule creates a complete amortization schedule for a loan and
// compares it against the same loan without extra principal payments.
func (g *AmortizationScheduleGenerator) GenerateSchedule(loan *LoanConfig) Schedule {
	if loan == nil {
		return Schedule{Problems: []string{"loan cannot be nil"}}
	}
	if problems := loan.Validate(); len(problems) > 0 {
		g.logger.Debug(fmt.Sprintf("rejecting loan %s", loan.Name),
			zap.String("op", "loans.GenerateSchedule"),
			zap.Strings("problems", problems),
		)
		return Schedule{Name: loan.Name, Problems: problems}
	}

	schedule := g.amortize(loan, loan.ExtraPrincipal)
	if loan.ExtraPrincipal > 0 {
		baseline := g.amortize(loan, 0)
		schedule.InterestSaved = baseline.TotalInterest - schedule.TotalInterest
		schedule.MonthsSaved = baseline.PayoffMonth - schedule.PayoffMonth
		g.logger.Debug(fmt.Sprintf("loan %s: extra principal saves %.2f interest over %d months",
			loan.Name, schedule.InterestSaved, schedule.MonthsSaved),
			zap.String("op", "loans.GenerateSchedule"),
		)
	}
	return schedule
}

func (g *AmortizationScheduleGenerator) amortize(loan *LoanConfig, extraPrincipal float64) Schedule {
	frequency := loan.Frequency
	if frequency == "" {
		frequency = compounding.Monthly
	}
	cutoff := loan.MortgageInsuranceCutoff
	if cutoff == 0 {
		cutoff = constants.DefaultMortgageInsuranceCutoff
	}

	monthlyRate := compounding.MonthlyRate(loan.InterestRate, frequency)
	financed := loan.Principal - loan.DownPayment
	monthlyPayment := CalculatePayment(financed, monthlyRate, loan.Term)

	schedule := Schedule{
		Name:           loan.Name,
		Valid:          true,
		Financed:       financed,
		MonthlyPayment: monthlyPayment,
		Payments:       make([]Payment, 0, loan.Term),
	}

	remaining := financed
	var year YearSummary
	for month := 1; month <= loan.Term && remaining > 0; month++ {
		if (month-1)%constants.MonthsPerYear == 0 {
			year = YearSummary{Year: (month-1)/constants.MonthsPerYear + 1}
		}

		var current Payment
		current.Month = month
		current.Interest = CalculateInterestPayment(remaining, monthlyRate)
		current.Principal = monthlyPayment - current.Interest
		if month == loan.Term || current.Principal > remaining {
			current.Principal = remaining
		}
		current.ExtraPrincipal = CalculateExtraPrincipalWithOverpaymentPrevention(
			g.logger, extraPrincipal, remaining-current.Principal, month, loan.Name)

		// Insurance is owed until the loan-to-value ratio drops to the cutoff.
		if loan.MortgageInsurance > 0 && remaining/loan.Principal > cutoff/constants.PercentageMultiplier {
			current.MortgageInsurance = loan.MortgageInsurance
		}
		current.Escrow = loan.Escrow

		remaining -= current.Principal + current.ExtraPrincipal
		if mathutil.IsZero(remaining) {
			// We will get machine error otherwise so just set to 0.
			current.Principal += remaining
			remaining = 0
		}
		current.RemainingPrincipal = remaining
		current.Payment = current.Principal + current.ExtraPrincipal + current.Interest + current.Escrow + current.MortgageInsurance

		schedule.Payments = append(schedule.Payments, current)
		schedule.TotalInterest += current.Interest
		schedule.TotalPaid += current.Payment
		schedule.PayoffMonth = month

		year.Principal += current.Principal + current.ExtraPrincipal
		year.Interest += current.Interest
		year.Escrow += current.Escrow
		year.MortgageInsurance += current.MortgageInsurance
		year.RemainingPrincipal = remaining
		if month%constants.MonthsPerYear == 0 || remaining == 0 || month == loan.Term {
			schedule.Years = append(schedule.Years, year)
		}
	}

	return schedule
}

// CalculateExtraPrincipalWithOverpaymentPrevention caps an extra principal
// payment to the balance left after the scheduled principal.
func CalculateExtraPrincipalWithOverpaymentPrevention(logger *zap.Logger, requested, currentBalance float64, month int, loanName string) float64 {
	if requested <= 0 {
		return 0
	}
	if currentBalance < 0 {
		currentBalance = 0
	}
	if requested > currentBalance {
		logger.Debug("Capping extra principal payment to prevent overpayment",
			zap.Int("month", month),
			zap.String("loan", loanName),
			zap.Float64("requested", requested),
			zap.Float64("capped_to_balance", currentBalance))
		return currentBalance
	}
	return requested
}
