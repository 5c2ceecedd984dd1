package match

import (
	"fmt"
	"math"
)

// FormatAmount renders a dollar amount the way the dashboard displays it:
// "$1.5M" at a million and above, "$45K" at a thousand and above, "$999"
// below that. Every formatted amount in the engine goes through this one
// function; amounts stay numeric until this boundary.
func FormatAmount(amount float64) string {
	if amount >= 1_000_000 {
		return fmt.Sprintf("$%.1fM", amount/1_000_000)
	}
	if amount >= 1_000 {
		return fmt.Sprintf("$%dK", int(math.Round(amount/1_000)))
	}
	return fmt.Sprintf("$%d", int(math.Round(amount)))
}
