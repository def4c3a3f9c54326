// Package output provides utilities for formatting and displaying forecast results.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/growth-forecast/internal/forecast"
	"github.com/iwvelando/growth-forecast/pkg/format"
	"github.com/iwvelando/growth-forecast/pkg/growth"
	"github.com/iwvelando/growth-forecast/pkg/loans"
)

// PrettyFormat writes a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, p *format.Printer, results []forecast.Forecast, mortgages []loans.Schedule) {
	for i, result := range results {
		if i > 0 {
			fmt.Fprintf(w, "\n")
		}
		fmt.Fprintf(w, "--- Results for scenario %s ---\n", result.Name)
		if !result.Output.Valid {
			for _, problem := range result.Output.Problems {
				fmt.Fprintf(w, "  problem: %s\n", problem)
			}
			continue
		}

		out := result.Output
		fmt.Fprintf(w, "Ending balance    | %s\n", p.Money(out.EndingBalance))
		fmt.Fprintf(w, "Total contributed | %s\n", p.Money(out.TotalContributed))
		fmt.Fprintf(w, "Total interest    | %s\n", p.Money(out.TotalInterest))
		if out.TotalTax > 0 {
			fmt.Fprintf(w, "Tax on interest   | %s\n", p.Money(out.TotalTax))
		}
		if out.RealEndingBalance != out.EndingBalance {
			fmt.Fprintf(w, "Today's money     | %s\n", p.Money(out.RealEndingBalance))
		}
		fmt.Fprintf(w, "APY               | %s\n", format.Percent(out.EffectiveAnnualRate))

		if result.Goal != nil {
			writeGoal(w, p, result.Goal)
		}
		for _, hit := range result.Milestones {
			if hit.Reached {
				fmt.Fprintf(w, "Milestone %s reached in month %d (%s)\n", p.Money(hit.Target), hit.Month, hit.Label)
			} else {
				fmt.Fprintf(w, "Milestone %s not reached\n", p.Money(hit.Target))
			}
		}

		fmt.Fprintf(w, "Year | Deposits | Interest | Balance\n")
		fmt.Fprintf(w, "____ | ________ | ________ | _______\n")
		for _, row := range out.YearlyTable {
			fmt.Fprintf(w, "%d | %s | %s | %s\n", row.Year, p.Money(row.Deposits), p.Money(row.Interest), p.Money(row.Balance))
		}
	}

	for _, schedule := range mortgages {
		fmt.Fprintf(w, "\n--- Mortgage %s ---\n", schedule.Name)
		if !schedule.Valid {
			for _, problem := range schedule.Problems {
				fmt.Fprintf(w, "  problem: %s\n", problem)
			}
			continue
		}
		fmt.Fprintf(w, "Monthly payment | %s\n", p.Money(schedule.MonthlyPayment))
		fmt.Fprintf(w, "Total interest  | %s\n", p.Money(schedule.TotalInterest))
		fmt.Fprintf(w, "Paid off        | month %d\n", schedule.PayoffMonth)
		if schedule.MonthsSaved > 0 {
			fmt.Fprintf(w, "Extra principal | saves %s and %d months\n", p.Money(schedule.InterestSaved), schedule.MonthsSaved)
		}
	}
}

func writeGoal(w io.Writer, p *format.Printer, goal *growth.GoalResult) {
	if !goal.Valid {
		for _, problem := range goal.Problems {
			fmt.Fprintf(w, "  goal problem: %s\n", problem)
		}
		return
	}
	fmt.Fprintf(w, "Goal contribution | %s per month (naive estimate %s)\n",
		p.Money(goal.Contribution), p.Money(goal.NaiveContribution))
}

// CsvFormat writes one row per scenario year in comma-separated value format.
func CsvFormat(w io.Writer, results []forecast.Forecast) error {
	cw := csv.NewWriter(w)
	header := []string{"scenario", "year", "months", "deposits", "interest", "tax",
		"total deposits", "total interest", "balance", "real balance"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, result := range results {
		for _, row := range result.Output.YearlyTable {
			record := []string{
				result.Name,
				strconv.Itoa(row.Year),
				strconv.Itoa(row.Months),
				format.Cents(row.Deposits),
				format.Cents(row.Interest),
				format.Cents(row.Tax),
				format.Cents(row.TotalDeposits),
				format.Cents(row.TotalInterest),
				format.Cents(row.Balance),
				format.Cents(row.RealBalance),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// MortgageCsvFormat writes one row per mortgage year.
func MortgageCsvFormat(w io.Writer, mortgages []loans.Schedule) error {
	cw := csv.NewWriter(w)
	header := []string{"mortgage", "year", "principal", "interest", "escrow", "mortgage insurance", "remaining principal"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, schedule := range mortgages {
		for _, year := range schedule.Years {
			record := []string{
				schedule.Name,
				strconv.Itoa(year.Year),
				format.Cents(year.Principal),
				format.Cents(year.Interest),
				format.Cents(year.Escrow),
				format.Cents(year.MortgageInsurance),
				format.Cents(year.RemainingPrincipal),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
