package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/chatstack/pkg/config"
	"github.com/matzehuels/chatstack/pkg/errors"
	"github.com/matzehuels/chatstack/pkg/pipeline"
	"github.com/matzehuels/chatstack/pkg/render/styles"
	"github.com/matzehuels/chatstack/pkg/view"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	minChartWidth  = 20
	minChartHeight = 6
	legendWidth    = 28
	cellFull       = "█"
)

// tuiCommand creates the tui command: the interactive chart in the terminal.
func (c *CLI) tuiCommand() *cobra.Command {
	var opts chartFlags

	cmd := &cobra.Command{
		Use:   "tui [dataset]",
		Short: "Explore the chart in the terminal",
		Long: `Explore the chart in the terminal.

Keys:
  ←/→  move the hover cursor across dates
  ↑/↓  select a series
  space  hide or show the selected series
  r      show every series again
  q      quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return c.runTUI(cmd.Context(), args[0], cfg, opts.options(cmd, cfg), opts.noCache)
		},
	}
	opts.register(cmd)
	return cmd
}

func (c *CLI) runTUI(ctx context.Context, input string, cfg config.Config, opts pipeline.Options, noCache bool) error {
	ds, err := c.loadDataset(ctx, input, cfg, noCache)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	defer runner.Close()

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	model, err := runner.Preprocess(ctx, ds, opts)
	if err != nil {
		return err
	}

	m := newChartModel(model.NewController(opts.ViewOptions()), opts.Title)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// =============================================================================
// chartModel - interactive stacked chart
// =============================================================================

// chartModel is the bubbletea model for the terminal chart.
type chartModel struct {
	ctrl  *view.Controller
	title string

	// legend lists series in rank order (largest total first).
	legend []int

	cursor   int // hovered date index
	selected int // index into legend
	width    int
	height   int

	status string // last toggle error, cleared on the next key
}

func newChartModel(ctrl *view.Controller, title string) chartModel {
	bands := ctrl.Bands()
	legend := make([]int, len(bands))
	for _, b := range bands {
		legend[b.Rank] = b.Series
	}
	return chartModel{
		ctrl:   ctrl,
		title:  title,
		legend: legend,
		width:  80,
		height: 24,
	}
}

func (m chartModel) Init() tea.Cmd {
	return nil
}

func (m chartModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.status = ""
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			if m.cursor > 0 {
				m.cursor--
			}
		case "right", "l":
			if m.cursor < m.dates()-1 {
				m.cursor++
			}
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < len(m.legend)-1 {
				m.selected++
			}
		case " ", "enter":
			if len(m.legend) > 0 {
				if _, err := m.ctrl.OnSeriesToggle(m.legend[m.selected]); err != nil {
					m.status = errors.UserMessage(err)
				}
			}
		case "r":
			m.ctrl.ShowAll()
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	}
	return m, nil
}

func (m chartModel) dates() int {
	return m.ctrl.Model().Dataset().NumDates()
}

func (m chartModel) View() string {
	var b strings.Builder

	title := m.title
	if title == "" {
		title = "chatstack"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ date  ↑/↓ series  space toggle  r reset  q quit"))
	b.WriteString("\n\n")

	chartW := max(m.width-legendWidth-4, minChartWidth)
	chartH := max(m.height-12, minChartHeight)

	plot := m.renderPlot(chartW, chartH)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, plot, "  ", m.renderLegend()))
	b.WriteString("\n")
	b.WriteString(m.renderHover())
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render(m.status))
	}
	return b.String()
}

// renderPlot draws the visible bands on a chartW × chartH cell grid with the
// hover cursor as a highlighted column.
func (m chartModel) renderPlot(chartW, chartH int) string {
	bands := m.ctrl.Bands()
	top := m.ctrl.Scales().Y[1]
	n := m.dates()
	cursorCol := -1
	if n > 0 {
		cursorCol = columnOf(m.cursor, n, chartW)
	}

	rows := make([]string, chartH)
	for r := 0; r < chartH; r++ {
		// centre of this row in data units, counted from the bottom
		level := (float64(chartH-r) - 0.5) / float64(chartH) * top
		var line strings.Builder
		for col := 0; col < chartW; col++ {
			x := dateOf(col, n, chartW)
			cell := " "
			style := lipgloss.NewStyle()
			for _, band := range bands {
				if band.Hidden || x >= len(band.Points) {
					continue
				}
				p := band.Points[x]
				if level >= p.Y0 && level < p.Top() {
					cell = cellFull
					style = style.Foreground(lipgloss.Color(styles.Color(band.Rank)))
					break
				}
			}
			if col == cursorCol {
				if cell == " " {
					cell = "│"
				}
				style = style.Background(colorDim)
			}
			line.WriteString(style.Render(cell))
		}
		rows[r] = line.String()
	}

	ds := m.ctrl.Model().Dataset()
	axis := ""
	if n > 0 {
		first, last := ds.Dates[0], ds.Dates[n-1]
		pad := max(chartW-len(first)-len(last), 1)
		axis = listDimStyle.Render(first + strings.Repeat(" ", pad) + last)
	}
	return strings.Join(rows, "\n") + "\n" + axis
}

func (m chartModel) renderLegend() string {
	bands := m.ctrl.Bands()
	var b strings.Builder
	for i, series := range m.legend {
		band := bands.BySeries(series)
		if band == nil {
			continue
		}
		cursor := "  "
		if i == m.selected {
			cursor = "▸ "
		}
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(styles.Color(band.Rank))).Render(cellFull)
		name := truncateName(band.Name, legendWidth-6)

		var line string
		switch {
		case band.Hidden:
			line = cursor + listDimStyle.Render("· "+name)
		case i == m.selected:
			line = cursor + swatch + " " + listSelectedStyle.Render(name)
		default:
			line = cursor + swatch + " " + listNormalStyle.Render(name)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m chartModel) renderHover() string {
	infos := m.ctrl.OnHoverAt(m.cursor)
	if len(infos) == 0 {
		return listDimStyle.Render("nothing shown")
	}
	var b strings.Builder
	b.WriteString(StyleHighlight.Render(infos[0].Date))
	b.WriteString("\n")
	for _, info := range infos {
		line := fmt.Sprintf("  %-20s %s", truncateName(info.Name, 20), info.Label)
		if len(info.Words) > 0 {
			words := make([]string, 0, len(info.Words))
			for _, w := range info.Words {
				words = append(words, w.Word)
			}
			line += "  " + listDimStyle.Render(strings.Join(words, " "))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// columnOf maps date x onto one of width columns.
func columnOf(x, dates, width int) int {
	if dates <= 1 {
		return 0
	}
	return x * (width - 1) / (dates - 1)
}

// dateOf maps a column back to the nearest date index.
func dateOf(col, dates, width int) int {
	if dates <= 1 || width <= 1 {
		return 0
	}
	return (col*(dates-1) + (width-1)/2) / (width - 1)
}

func truncateName(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
