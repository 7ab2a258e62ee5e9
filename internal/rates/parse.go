package rates

import (
	"fmt"
	"strconv"
	"strings"
)

// parseRate parses a percentage number, tolerating a trailing % sign.
func parseRate(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	rate, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unparsable rate %q", s)
	}
	return rate, nil
}
