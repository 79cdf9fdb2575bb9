package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"InsightsDashboard/internal/domain"
)

// ParseYear reads a date-like value and reduces it to its UTC calendar year.
func ParseYear(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("%w: empty value", domain.ErrInvalidDateFilter)
	}

	if len(s) == 4 {
		if year, err := strconv.Atoi(s); err == nil && year > 0 {
			return year, nil
		}
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidDateFilter, raw)
	}
	return t.UTC().Year(), nil
}
