package game

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/muesli/termenv"

	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/core"
	"github.com/mitchelldurbincs/PawnCaptureRL/internal/qtable"
)

const (
	emptySymbol = "·"
	whiteColor  = "#F5F5F5"
	blackColor  = "#E06C75"
	gridColor   = "#5C6370"
)

// Render draws the board with the highest rank on top. Pieces are shown by side tag and
// coloured according to profile; termenv.Ascii yields plain text.
func Render(b *core.Board, profile termenv.Profile) string {
	g := b.Grid()

	var sb strings.Builder
	sb.Grow((g.Files*2 + 3) * (g.Ranks + 1))

	for rank := g.Ranks; rank >= 1; rank-- {
		sb.WriteString(profile.String(fmt.Sprintf("%d", rank)).Foreground(profile.Color(gridColor)).String())
		for file := 0; file < g.Files; file++ {
			sb.WriteByte(' ')
			sb.WriteString(cellSymbol(b, core.NewCell(file, rank), profile))
		}
		sb.WriteByte('\n')
	}

	sb.WriteByte(' ')
	for file := 0; file < g.Files; file++ {
		sb.WriteByte(' ')
		sb.WriteString(profile.String(string(rune('a' + file))).Foreground(profile.Color(gridColor)).String())
	}
	sb.WriteByte('\n')
	return sb.String()
}

func cellSymbol(b *core.Board, c core.Cell, profile termenv.Profile) string {
	side, ok := b.At(c)
	if !ok {
		return profile.String(emptySymbol).Foreground(profile.Color(gridColor)).String()
	}
	color := whiteColor
	if side == core.Black {
		color = blackColor
	}
	return profile.String(side.String()).Foreground(profile.Color(color)).Bold().String()
}

// RenderValues lists action values one per line, highest first
func RenderValues(side core.Side, values []qtable.ActionValue, profile termenv.Profile) string {
	if len(values) == 0 {
		return ""
	}
	sorted := make([]qtable.ActionValue, len(values))
	copy(sorted, values)
	slices.SortStableFunc(sorted, func(a, b qtable.ActionValue) int {
		return cmp.Compare(b.Value, a.Value)
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s values:\n", side.Name())
	for _, av := range sorted {
		fmt.Fprintf(&sb, "  %s %s\n", av.Action, profile.String(fmt.Sprintf("%7.2f", av.Value)).Faint().String())
	}
	return sb.String()
}
