package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/core"
)

// MustGrid builds a validated grid
func MustGrid(t testing.TB, files, ranks int) core.Grid {
	t.Helper()
	g, err := core.NewGrid(files, ranks)
	require.NoError(t, err)
	return g
}

// MustCell parses a cell such as "b2"
func MustCell(t testing.TB, s string) core.Cell {
	t.Helper()
	c, err := core.ParseCell(s)
	require.NoError(t, err)
	return c
}

// MustMove parses a move such as "a1b2"
func MustMove(t testing.TB, s string) core.Move {
	t.Helper()
	m, err := core.ParseMove(s)
	require.NoError(t, err)
	return m
}

// Board places white and black pawns on the named cells
func Board(t testing.TB, g core.Grid, white, black []string) *core.Board {
	t.Helper()
	ps := make([]core.Placement, 0, len(white)+len(black))
	for _, s := range white {
		ps = append(ps, core.Placement{Cell: MustCell(t, s), Side: core.White})
	}
	for _, s := range black {
		ps = append(ps, core.Placement{Cell: MustCell(t, s), Side: core.Black})
	}
	b, err := core.NewBoardFromPlacements(g, ps...)
	require.NoError(t, err)
	return b
}
