package exporter

import (
	"strconv"
)

// formatFloat formats a value with exactly 2 decimal places
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// formatPrice formats a currency amount without decimals
func formatPrice(f float64) string {
	return strconv.FormatFloat(f, 'f', 0, 64)
}

func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatOptional renders an optional quartile or mode value, empty when absent
func formatOptional(f *float64) string {
	if f == nil {
		return ""
	}
	return formatPrice(*f)
}
