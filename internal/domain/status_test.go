package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusPriorities(t *testing.T) {
	seen := make(map[int]InventoryStatus, len(AllStatuses))
	for i, s := range AllStatuses {
		p := s.Priority()
		assert.Equal(t, i+1, p, "status %s", s)
		_, dup := seen[p]
		require.False(t, dup, "priority %d assigned twice", p)
		seen[p] = s
	}

	assert.Equal(t, 1, StatusUrgentShortage.Priority())
	assert.Equal(t, 6, StatusDiscontinued.Priority())
	assert.Equal(t, 7, InventoryStatus("bogus").Priority(), "unknown statuses sort last")
}

func TestParseInventoryStatus(t *testing.T) {
	s, ok := ParseInventoryStatus("dead_stock")
	require.True(t, ok)
	assert.Equal(t, StatusDeadStock, s)

	s, ok = ParseInventoryStatus("  Dead Stock ")
	require.True(t, ok)
	assert.Equal(t, StatusDeadStock, s)

	_, ok = ParseInventoryStatus("vaporware")
	assert.False(t, ok)
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Urgent shortage", StatusUrgentShortage.Label())
	assert.Equal(t, "weird", InventoryStatus("weird").Label())
}
