package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jask/pacfrag/internal/overlap"
)

func sample() *App {
	frags := overlap.OverlapReport{
		1: {
			{Text: "AMERICANS", Length: 1, Names: []string{"A", "B", "C"}},
			{Text: "FOR", Length: 1, Names: []string{"A", "B"}},
		},
		2: {{Text: "AMERICANS FOR", Length: 2, Names: []string{"A", "B"}}},
	}
	receipts := overlap.ReceiptTable{
		"A": decimal.NewFromInt(1500000),
		"B": decimal.RequireFromString("50.5"),
		"C": decimal.Zero,
	}
	return New("20120601", frags, receipts)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNavigation(t *testing.T) {
	t.Parallel()

	a := sample()
	f, ok := a.Selected()
	require.True(t, ok)
	require.Equal(t, "AMERICANS", f.Text)

	a.Update(key("down"))
	f, _ = a.Selected()
	require.Equal(t, "FOR", f.Text)

	a.Update(key("down"))
	f, _ = a.Selected()
	require.Equal(t, "FOR", f.Text, "cursor stays on last row")

	a.Update(key("right"))
	f, _ = a.Selected()
	require.Equal(t, "AMERICANS FOR", f.Text)

	a.Update(key("right"))
	a.Update(key("left"))
	a.Update(key("G"))
	f, _ = a.Selected()
	require.Equal(t, "FOR", f.Text)

	_, cmd := a.Update(key("q"))
	require.NotNil(t, cmd)
}

func TestViewShowsReceipts(t *testing.T) {
	t.Parallel()

	a := sample()
	a.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	out := a.View()
	require.Contains(t, out, "20120601")
	require.Contains(t, out, "AMERICANS")
	require.Contains(t, out, "$1,500,000.00")
	require.Contains(t, out, "$1,500,050.50")
}

func TestEmptyReport(t *testing.T) {
	t.Parallel()

	a := New("20120601", overlap.OverlapReport{}, overlap.ReceiptTable{})
	_, ok := a.Selected()
	require.False(t, ok)
	require.Contains(t, a.View(), "no fragments")
	a.Update(key("down"))
	a.Update(key("right"))
}

func TestFormatMoney(t *testing.T) {
	t.Parallel()

	require.Equal(t, "$0.00", formatMoney(decimal.Zero))
	require.Equal(t, "$999.10", formatMoney(decimal.RequireFromString("999.1")))
	require.Equal(t, "$1,234,567.89", formatMoney(decimal.RequireFromString("1234567.891")))
	require.Equal(t, "-$1,000.00", formatMoney(decimal.NewFromInt(-1000)))
}
