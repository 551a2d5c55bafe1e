package words

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestNew(t *testing.T) {
	d, err := New([]string{"team", " Steam ", "ab1", "", "TEAM", "re"}, DefaultMinLength)
	require.NoError(t, err)
	require.Equal(t, 3, d.Len(), "duplicates and non-alphabetic entries are dropped")

	require.True(t, d.IsAcceptableWord("TEAM"))
	require.True(t, d.IsAcceptableWord("team"))
	require.True(t, d.IsAcceptableWord("Steam"))
	require.False(t, d.IsAcceptableWord("RE"), "shorter than the minimum length")
	require.False(t, d.IsAcceptableWord("MEAT"))

	_, err = New([]string{"1", ""}, 3)
	require.ErrorIs(t, err, ErrEmptyList)
}

func TestOpenEmbedded(t *testing.T) {
	d, err := Open("", DefaultMinLength)
	require.NoError(t, err)
	require.Greater(t, d.Len(), 100)
	for _, w := range []string{"TEAM", "STEAM", "AGENT", "RAGE", "DENT", "TENT"} {
		require.True(t, d.IsAcceptableWord(w), w)
	}
	require.False(t, d.IsAcceptableWord("TS"))
	require.False(t, d.IsAcceptableWord("RE"))
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("# comment\ncat\n\n dog \nno-go\n"), 0o644))

	d, err := Open(path, 2)
	require.NoError(t, err)
	require.Equal(t, 2, d.Len())
	require.True(t, d.IsAcceptableWord("DOG"))
	require.Equal(t, 2, d.MinLength())

	_, err = Open(filepath.Join(t.TempDir(), "missing.txt"), 2)
	require.Error(t, err)
}

func TestRandomWord(t *testing.T) {
	d, err := New([]string{"team", "tent", "rage", "agent", "cat"}, DefaultMinLength)
	require.NoError(t, err)
	require.Equal(t, []string{"RAGE", "TEAM", "TENT"}, d.WordsOfLength(4))

	w1, ok := d.RandomWord(rand.New(rand.NewSource(42)), 4)
	require.True(t, ok)
	require.Len(t, w1, 4)
	w2, _ := d.RandomWord(rand.New(rand.NewSource(42)), 4)
	require.Equal(t, w1, w2, "same seed gives the same word")

	_, ok = d.RandomWord(rand.New(rand.NewSource(1)), 9)
	require.False(t, ok)
}
