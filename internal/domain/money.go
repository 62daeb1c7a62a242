package domain

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

// FormatNaira renders a whole-naira amount with en-US digit grouping, e.g. ₦12,500.
func FormatNaira(amount int64) string {
	return "₦" + amountPrinter.Sprintf("%d", amount)
}
