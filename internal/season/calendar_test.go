package season

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestYear(t *testing.T) {
	cal := Default()

	assert.Equal(t, 2025, cal.Year(date(2025, time.October, 1)))
	assert.Equal(t, 2025, cal.Year(date(2026, time.January, 15)))
	assert.Equal(t, 2025, cal.Year(date(2026, time.June, 10)))
	// September precedes the rollover, so it still belongs to the prior year
	assert.Equal(t, 2024, cal.Year(date(2025, time.September, 30)))
	assert.Equal(t, 2026, cal.Year(date(2026, time.October, 21)))
}

func TestYearCustomRollover(t *testing.T) {
	cal := Calendar{Rollover: time.September}
	assert.Equal(t, 2025, cal.Year(date(2025, time.September, 5)))
	assert.Equal(t, 2024, cal.Year(date(2025, time.August, 30)))
}

func TestLabel(t *testing.T) {
	cal := Default()
	assert.Equal(t, "2025-26", cal.Label(2025))
	assert.Equal(t, "1999-00", cal.Label(1999))
	assert.Equal(t, "2009-10", cal.Label(2009))
}
