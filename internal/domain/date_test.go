package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateIDRoundTrip(t *testing.T) {
	day := time.Date(2026, 8, 30, 15, 4, 5, 0, time.Local)
	id := DateID(day)
	assert.Equal(t, 20260830, id)

	parsed, err := ParseDateID(id)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), parsed)
}

func TestParseDateIDInvalid(t *testing.T) {
	_, err := ParseDateID(20261345)
	assert.Error(t, err)
	_, err = ParseDateID(20260231)
	assert.Error(t, err)
}

func TestShiftDateID(t *testing.T) {
	id, err := ShiftDateID(20260830, -29)
	require.NoError(t, err)
	assert.Equal(t, 20260801, id)

	// Month and year boundaries.
	id, err = ShiftDateID(20260301, -30)
	require.NoError(t, err)
	assert.Equal(t, 20260130, id)

	id, err = ShiftDateID(20260101, -6)
	require.NoError(t, err)
	assert.Equal(t, 20251226, id)

	_, err = ShiftDateID(99999999, -1)
	assert.Error(t, err)
}
