// Package format renders numbers for chart labels and summary panels.
package format

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Compact abbreviates magnitudes above 999 as thousands rounded to one
// decimal with a "k" suffix, e.g. 12512 -> "12.5k". Smaller values print
// unchanged.
func Compact(v float64) string {
	if math.Abs(v) > 999 {
		k := math.Round(math.Abs(v)/100) / 10
		return strconv.FormatFloat(math.Copysign(k, v), 'f', -1, 64) + "k"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Commas prints v rounded down to an integer with thousands separators.
func Commas(v float64) string {
	return printer.Sprintf("%d", int64(math.Floor(v)))
}
