package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/jask/pacfrag/internal/overlap"
)

const barWidth = 24

// App browses one published overlap report.
type App struct {
	day      string
	frags    overlap.OverlapReport
	receipts overlap.ReceiptTable
	lengths  []int
	lenIdx   int
	cursor   int
	width    int
	height   int
}

func New(day string, frags overlap.OverlapReport, receipts overlap.ReceiptTable) *App {
	return &App{
		day:      day,
		frags:    frags,
		receipts: receipts,
		lengths:  frags.Lengths(),
		width:    100,
		height:   30,
	}
}

func (a *App) Init() tea.Cmd { return nil }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
	case tea.KeyMsg:
		switch m.String() {
		case "q", "ctrl+c", "esc":
			return a, tea.Quit
		case "left", "h":
			if a.lenIdx > 0 {
				a.lenIdx--
				a.cursor = 0
			}
		case "right", "l", "tab":
			if a.lenIdx < len(a.lengths)-1 {
				a.lenIdx++
				a.cursor = 0
			}
		case "up", "k":
			if a.cursor > 0 {
				a.cursor--
			}
		case "down", "j":
			if a.cursor < len(a.current())-1 {
				a.cursor++
			}
		case "g", "home":
			a.cursor = 0
		case "G", "end":
			a.cursor = max(len(a.current())-1, 0)
		}
	}
	return a, nil
}

// Selected returns the fragment under the cursor.
func (a *App) Selected() (overlap.Fragment, bool) {
	frags := a.current()
	if len(frags) == 0 {
		return overlap.Fragment{}, false
	}
	return frags[a.cursor], true
}

func (a *App) current() []overlap.Fragment {
	if len(a.lengths) == 0 {
		return nil
	}
	return a.frags[a.lengths[a.lenIdx]]
}

func (a *App) View() string {
	header := titleStyle.Render("pacfrag") + dimStyle.Render("  shared name fragments · "+a.day)
	if len(a.lengths) == 0 {
		return header + "\n\n" + errorStyle.Render("no fragments are shared by two or more committees") + "\n"
	}

	tabs := make([]string, 0, len(a.lengths))
	for i, n := range a.lengths {
		label := strconv.Itoa(n) + pluralize(n, " word")
		if i == a.lenIdx {
			tabs = append(tabs, activeTab.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}

	listWidth := max(a.width/2-4, 20)
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		paneStyle.Width(listWidth).Render(a.renderList()),
		paneStyle.Width(max(a.width-listWidth-6, 20)).Render(a.renderDetail()),
	)
	footer := dimStyle.Render("←/→ length  ↑/↓ fragment  g/G top/bottom  q quit")
	return strings.Join([]string{header, lipgloss.JoinHorizontal(lipgloss.Top, tabs...), body, footer}, "\n")
}

func (a *App) visibleRows() int {
	return max(a.height-8, 3)
}

func (a *App) renderList() string {
	frags := a.current()
	rows := a.visibleRows()
	start := 0
	if a.cursor >= rows {
		start = a.cursor - rows + 1
	}
	end := min(start+rows, len(frags))

	var b strings.Builder
	for i := start; i < end; i++ {
		f := frags[i]
		count := countStyle.Render(fmt.Sprintf("%3d", len(f.Names)))
		if i == a.cursor {
			b.WriteString(cursorStyle.Render("> "+f.Text) + " " + count)
		} else {
			b.WriteString(rowStyle.Render("  "+f.Text) + " " + count)
		}
		if i < end-1 {
			b.WriteByte('\n')
		}
	}
	if end < len(frags) {
		b.WriteString("\n" + dimStyle.Render(fmt.Sprintf("  … %d more", len(frags)-end)))
	}
	return b.String()
}

func (a *App) renderDetail() string {
	f, ok := a.Selected()
	if !ok {
		return ""
	}
	var b strings.Builder
	b.WriteString(detailHeading.Render(f.Text))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %d committees", len(f.Names))))
	b.WriteByte('\n')

	sum := decimal.Zero
	chart := barChart{Rows: make([]bar, 0, len(f.Names))}
	for _, name := range f.Names {
		total := a.receipts[name]
		sum = sum.Add(total)
		chart.Rows = append(chart.Rows, bar{Label: name, Value: total})
	}
	bars := chart.Render(barWidth)
	for i, name := range f.Names {
		b.WriteString("\n" + rowStyle.Render(name) + "  " + moneyStyle.Render(formatMoney(chart.Rows[i].Value)))
		b.WriteString("\n" + dimStyle.Render(bars[i]))
	}
	b.WriteString("\n\n" + infoStyle.Render("combined receipts "+formatMoney(sum)))
	return b.String()
}

func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := "$" + b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

func pluralize(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
