package daily

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDateKey(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	require.Equal(t, "2026-10-17", DateKey(time.Date(2026, 10, 18, 5, 0, 0, 0, loc)))
}

func TestSeedWord(t *testing.T) {
	day := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	later := time.Date(2026, 10, 18, 23, 59, 0, 0, time.UTC)
	candidates := []string{"AGENT", "CRANE", "STEAM", "TABLE"}

	w := SeedWord(day, "salt", candidates)
	require.Contains(t, candidates, w)
	require.Equal(t, w, SeedWord(later, "salt", candidates), "same date, same word")

	idx := WordIndex(day, "salt", len(candidates))
	require.GreaterOrEqual(t, idx, 0)
	require.Less(t, idx, len(candidates))

	require.Empty(t, SeedWord(day, "salt", nil))
	require.Zero(t, WordIndex(day, "salt", 0))
}
