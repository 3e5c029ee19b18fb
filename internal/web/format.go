package web

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ruPrinter = message.NewPrinter(language.Russian)

// formatNumber groups digits the way the Russian locale does
func formatNumber(n int) string {
	return ruPrinter.Sprintf("%d", n)
}

// formatGrowth renders a week-over-week change such as "↑ 12.5%"
func formatGrowth(growth float64) string {
	arrow := "↑"
	if growth < 0 {
		arrow = "↓"
		growth = -growth
	}
	return fmt.Sprintf("%s %.1f%%", arrow, growth)
}

// profileLabel strips the scheme from the profile link for display
func profileLabel(url string) string {
	label := strings.TrimPrefix(url, "https://")
	label = strings.TrimPrefix(label, "http://")
	return strings.TrimSuffix(label, "/")
}
