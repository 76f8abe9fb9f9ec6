package game

import (
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"

	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/core"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/qtable"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/testutil"
)

func TestRender(t *testing.T) {
	start := core.NewStartingBoard(testutil.MustGrid(t, 3, 3))
	assert.Equal(t, "3 B B B\n2 · · ·\n1 W W W\n  a b c\n", Render(start, termenv.Ascii))

	g := testutil.MustGrid(t, 4, 3)
	mid := testutil.Board(t, g, []string{"b2", "d1"}, []string{"a3", "c2"})
	assert.Equal(t, "3 B · · ·\n2 · W B ·\n1 · · · W\n  a b c d\n", Render(mid, termenv.Ascii))
}

func TestRender_Colour(t *testing.T) {
	out := Render(core.NewStartingBoard(testutil.MustGrid(t, 3, 3)), termenv.TrueColor)
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "W")
}

func TestRenderValues(t *testing.T) {
	values := []qtable.ActionValue{
		{Action: "a1a2", Value: 19},
		{Action: "b1b2", Value: 21},
		{Action: "c1c2", Value: 19},
	}
	want := "white values:\n" +
		"  b1b2   21.00\n" +
		"  a1a2   19.00\n" +
		"  c1c2   19.00\n"
	assert.Equal(t, want, RenderValues(core.White, values, termenv.Ascii))
	assert.Empty(t, RenderValues(core.White, nil, termenv.Ascii))
}
