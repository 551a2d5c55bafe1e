package board

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("rejects non-positive dimensions", func(t *testing.T) {
		_, err := New(0, 4)
		require.ErrorIs(t, err, ErrInvalidSize)
		_, err = New(3, -1)
		require.ErrorIs(t, err, ErrInvalidSize)
	})

	t.Run("starts empty", func(t *testing.T) {
		b, err := New(3, 4)
		require.NoError(t, err)
		require.Equal(t, 12, b.EmptyCellCount())
		require.Equal(t, []string{"....", "....", "...."}, b.Rows())
	})
}

func TestPlace(t *testing.T) {
	b, err := New(3, 4)
	require.NoError(t, err)

	require.NoError(t, b.Place(Position{Row: 0, Col: 0}, 's'))
	got, err := b.CellAt(Position{Row: 0, Col: 0})
	require.NoError(t, err)
	require.Equal(t, 'S', got, "letters are stored upper-cased")
	require.False(t, b.IsEmpty(Position{Row: 0, Col: 0}))
	require.Equal(t, 11, b.EmptyCellCount())

	t.Run("occupied cell is never overwritten", func(t *testing.T) {
		err := b.Place(Position{Row: 0, Col: 0}, 'X')
		require.ErrorIs(t, err, ErrCellOccupied)
		got, _ := b.CellAt(Position{Row: 0, Col: 0})
		require.Equal(t, 'S', got)
	})

	t.Run("out of bounds", func(t *testing.T) {
		require.ErrorIs(t, b.Place(Position{Row: 3, Col: 0}, 'A'), ErrOutOfBounds)
		_, err := b.CellAt(Position{Row: -1, Col: 0})
		require.ErrorIs(t, err, ErrOutOfBounds)
		require.False(t, b.IsEmpty(Position{Row: 0, Col: 9}))
	})

	t.Run("non letters are rejected", func(t *testing.T) {
		require.ErrorIs(t, b.Place(Position{Row: 1, Col: 1}, '1'), ErrInvalidLetter)
		require.True(t, b.IsEmpty(Position{Row: 1, Col: 1}))
	})
}

func TestPlaceWord(t *testing.T) {
	b, err := New(3, 4)
	require.NoError(t, err)
	require.NoError(t, b.PlaceWord(1, 0, "team"))
	require.Equal(t, []string{"....", "TEAM", "...."}, b.Rows())
	require.Equal(t, 8, b.EmptyCellCount())

	require.ErrorIs(t, b.PlaceWord(0, 1, "TEAM"), ErrSeedDoesNotFit)
	require.ErrorIs(t, b.PlaceWord(1, 0, "AB"), ErrCellOccupied)
	require.Equal(t, []string{"....", "TEAM", "...."}, b.Rows(), "failed placement writes nothing")
}

func TestFromRows(t *testing.T) {
	b, err := FromRows([]string{"....", "team", "...."})
	require.NoError(t, err)
	rows, cols := b.Size()
	require.Equal(t, 3, rows)
	require.Equal(t, 4, cols)
	require.Equal(t, []string{"....", "TEAM", "...."}, b.Rows())

	_, err = FromRows([]string{"...", "...."})
	require.ErrorIs(t, err, ErrRaggedRows)
	_, err = FromRows([]string{"..1."})
	require.ErrorIs(t, err, ErrInvalidLetter)
	_, err = FromRows(nil)
	require.ErrorIs(t, err, ErrInvalidSize)
}

func TestCloneAndEqual(t *testing.T) {
	b, _ := FromRows([]string{"....", "TEAM"})
	c := b.Clone()
	require.True(t, b.Equal(c))

	require.NoError(t, c.Place(Position{Row: 0, Col: 0}, 'S'))
	require.False(t, b.Equal(c))
	require.True(t, b.IsEmpty(Position{Row: 0, Col: 0}), "clone must not share cells")
}

func TestEmptyCells(t *testing.T) {
	b, _ := FromRows([]string{"A.", ".B"})
	require.Equal(t, []Position{{Row: 0, Col: 1}, {Row: 1, Col: 0}}, b.EmptyCells())
}

func TestAdjacent(t *testing.T) {
	p := Position{Row: 1, Col: 1}
	require.True(t, Adjacent(p, Position{Row: 0, Col: 1}))
	require.True(t, Adjacent(p, Position{Row: 1, Col: 2}))
	require.False(t, Adjacent(p, Position{Row: 0, Col: 0}), "diagonal")
	require.False(t, Adjacent(p, p))
	require.False(t, Adjacent(p, Position{Row: 1, Col: 3}))
}

func TestPath(t *testing.T) {
	p := Path{{Row: 1, Col: 0}, {Row: 0, Col: 0}, {Row: 0, Col: 1}}
	require.Equal(t, "(1;0)->(0;0)->(0;1)", p.String())
	require.True(t, p.Contains(Position{Row: 0, Col: 0}))
	require.Equal(t, 2, p.Index(Position{Row: 0, Col: 1}))
	_, repeated := p.FirstRepeat()
	require.False(t, repeated)

	q := append(Path{}, p...)
	q = append(q, Position{Row: 0, Col: 0})
	pos, repeated := q.FirstRepeat()
	require.True(t, repeated)
	require.Equal(t, Position{Row: 0, Col: 0}, pos)
}

func TestString(t *testing.T) {
	b, _ := FromRows([]string{"..", "AB"})
	require.Equal(t, "    0 1\n 0 | . . |\n 1 | A B |\n", b.String())
}
