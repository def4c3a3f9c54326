// Package format renders engine amounts for people: dollar strings, locale
// aware currency strings and fixed two-decimal values for CSV.
package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 {
		return "-$" + formatted
	}
	return "$" + formatted
}

// Cents rounds half away from zero to two decimals and returns the plain
// decimal string (e.g., "1234.57"). Rounding is done in decimal so values
// like 1.005 round up as written.
func Cents(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

// Percent renders a decimal fraction such as 0.0512 as "5.12%".
func Percent(fraction float64) string {
	return decimal.NewFromFloat(fraction * 100).StringFixed(2) + "%"
}

func formatPositiveCurrency(value float64) string {
	formatted := Cents(value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}

// Printer formats amounts for one locale and currency.
type Printer struct {
	printer *message.Printer
	unit    currency.Unit
}

// NewPrinter resolves a BCP 47 locale and an ISO 4217 currency code.
func NewPrinter(locale, code string) (*Printer, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("invalid currency %q: %w", code, err)
	}
	return &Printer{printer: message.NewPrinter(tag), unit: unit}, nil
}

// Money renders amount with locale grouping and the currency code, e.g.
// "USD 1,234.50" for en-US.
func (p *Printer) Money(amount float64) string {
	return p.printer.Sprintf("%s %.2f", p.unit.String(), amount)
}

// Sprintf formats according to the printer's locale.
func (p *Printer) Sprintf(format string, args ...interface{}) string {
	return p.printer.Sprintf(format, args...)
}
