package utils

import (
	"fmt"
	"math"
)

// RoundMoney rounds to whole paise/cents.
func RoundMoney(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// FormatMoney keeps consistent decimal formatting for currency fields.
func FormatMoney(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// FormatRupees renders an amount the way printed slips show it, e.g. "Rs. 402.50".
func FormatRupees(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%sRs. %s", sign, FormatMoney(amount))
}
