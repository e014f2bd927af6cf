package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexToRowLabel(t *testing.T) {
	cases := map[int]string{
		0:  "A",
		1:  "B",
		25: "Z",
		26: "AA",
		27: "AB",
		51: "AZ",
		52: "BA",
	}
	for idx, want := range cases {
		assert.Equal(t, want, indexToRowLabel(idx), "index %d", idx)
	}
	assert.Equal(t, "", indexToRowLabel(-1))
}

func TestBuildSeatGrid(t *testing.T) {
	seats := buildSeatGrid(3, 4)
	require.Len(t, seats, 12)

	assert.Equal(t, "A1", seats[0].Label)
	assert.Equal(t, "A", seats[0].Row)
	assert.EqualValues(t, 1, seats[0].Column)

	assert.Equal(t, "A4", seats[3].Label)
	assert.Equal(t, "B1", seats[4].Label)
	assert.Equal(t, "C4", seats[11].Label)

	// Labels must be unique; the reservation ledger keys claims on them.
	seen := make(map[string]struct{}, len(seats))
	for _, s := range seats {
		_, dup := seen[s.Label]
		assert.False(t, dup, "duplicate label %s", s.Label)
		seen[s.Label] = struct{}{}
	}
}

func TestBuildSeatGridWideRoom(t *testing.T) {
	seats := buildSeatGrid(28, 2)
	require.Len(t, seats, 56)
	assert.Equal(t, "AA1", seats[52].Label)
	assert.Equal(t, "AB2", seats[55].Label)
}
