package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrid(t *testing.T) {
	tests := []struct {
		name         string
		files, ranks int
		wantErr      bool
	}{
		{"3x3", 3, 3, false},
		{"4x4", 4, 4, false},
		{"max", MaxFiles, MaxRanks, false},
		{"one file", 1, 3, true},
		{"too few ranks", 3, 2, true},
		{"too many files", MaxFiles + 1, 4, true},
		{"too many ranks", 4, MaxRanks + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGrid(tt.files, tt.ranks)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidGrid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.files*tt.ranks, g.Size())
		})
	}
}

func TestGrid_Contains(t *testing.T) {
	g := Grid{Files: 3, Ranks: 3}

	tests := []struct {
		name     string
		cell     Cell
		expected bool
	}{
		{"a1", NewCell(0, 1), true},
		{"c3", NewCell(2, 3), true},
		{"rank zero", NewCell(0, 0), false},
		{"rank past top", NewCell(0, 4), false},
		{"negative file", NewCell(-1, 2), false},
		{"file past edge", NewCell(3, 2), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, g.Contains(tt.cell))
		})
	}
}

func TestParseCell(t *testing.T) {
	c, err := ParseCell("b3")
	require.NoError(t, err)
	assert.Equal(t, NewCell(1, 3), c)
	assert.Equal(t, "b3", c.String())

	for _, bad := range []string{"", "a", "3b", "a0", "A1", "a-1"} {
		_, err := ParseCell(bad)
		assert.ErrorIs(t, err, ErrInvalidCell, "input %q", bad)
	}
}

func TestCell_Ordering(t *testing.T) {
	assert.True(t, NewCell(0, 3).Less(NewCell(1, 1)))
	assert.True(t, NewCell(1, 1).Less(NewCell(1, 2)))
	assert.False(t, NewCell(1, 2).Less(NewCell(1, 2)))
	assert.Equal(t, 0, NewCell(2, 2).Compare(NewCell(2, 2)))
	assert.Equal(t, 1, NewCell(2, 2).Compare(NewCell(2, 1)))
}

func TestParseMove(t *testing.T) {
	m, err := ParseMove("a1b2")
	require.NoError(t, err)
	assert.Equal(t, NewMove(NewCell(0, 1), NewCell(1, 2)), m)
	assert.True(t, m.IsDiagonal())
	assert.Equal(t, "a1b2", m.String())

	slide, err := ParseMove("c3c2")
	require.NoError(t, err)
	assert.False(t, slide.IsDiagonal())

	_, err = ParseMove("a1")
	assert.Error(t, err)
	_, err = ParseMove("zz")
	assert.Error(t, err)
}

func TestSide(t *testing.T) {
	g := Grid{Files: 4, Ranks: 4}

	assert.Equal(t, Black, White.Opponent())
	assert.Equal(t, White, Black.Opponent())
	assert.Equal(t, NoSide, NoSide.Opponent())

	assert.Equal(t, 1, White.Forward())
	assert.Equal(t, -1, Black.Forward())

	assert.Equal(t, 1, White.HomeRank(g))
	assert.Equal(t, 4, Black.HomeRank(g))
	assert.Equal(t, 4, White.WinningRank(g))
	assert.Equal(t, 1, Black.WinningRank(g))

	s, err := ParseSide("black")
	require.NoError(t, err)
	assert.Equal(t, Black, s)
	_, err = ParseSide("red")
	assert.ErrorIs(t, err, ErrInvalidSide)
}
