package catalog

import (
	"regexp"
	"strconv"
)

// ratePattern matches the first percentage token in a rate expression,
// e.g. "2.5%" in "2.5% on the value of the frame".
var ratePattern = regexp.MustCompile(`(\d+(\.\d+)?)\s*%`)

// ExtractRate parses the numeric ad-valorem rate from a statutory rate
// expression. Expressions without a percentage token ("Free",
// "See 9903.88.03", compound or conditional text) degrade to 0 rather
// than failing the query.
func ExtractRate(text string) float64 {
	m := ratePattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	rate, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return rate
}
