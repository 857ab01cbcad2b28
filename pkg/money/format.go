// Package money renders colón amounts for customer facing text.
package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Symbol is the Costa Rican colón sign.
const Symbol = "₡"

var printer = message.NewPrinter(language.MustParse("es-CR"))

// Format renders amount with the colón sign and locale digit grouping.
func Format(amount int64) string {
	if amount < 0 {
		return "-" + Symbol + printer.Sprintf("%d", -amount)
	}
	return Symbol + printer.Sprintf("%d", amount)
}
