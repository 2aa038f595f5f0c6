package aggregate

import (
	"fmt"
	"strings"
)

// ParsePeriods parses a comma-separated period list from config.
func ParsePeriods(list string) ([]Period, error) {
	parts := strings.Split(list, ",")
	periods := make([]Period, 0, len(parts))
	for _, part := range parts {
		period, err := ParsePeriod(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		periods = append(periods, period)
	}
	if len(periods) == 0 {
		return nil, fmt.Errorf("no aggregation periods configured")
	}
	return periods, nil
}
