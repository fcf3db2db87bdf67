package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/matzehuels/chatstack/pkg/config"
	"github.com/matzehuels/chatstack/pkg/dataset"
	"github.com/matzehuels/chatstack/pkg/numeric"
	"github.com/matzehuels/chatstack/pkg/render/styles"
)

// inspectCommand creates the inspect command that prints the series ranking.
func (c *CLI) inspectCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "inspect [dataset]",
		Short: "Print series totals in stacking order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return c.runInspect(cmd.Context(), args[0], cfg, noCache)
		},
	}
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the fetch cache")
	return cmd
}

func (c *CLI) runInspect(ctx context.Context, input string, cfg config.Config, noCache bool) error {
	ds, err := c.loadDataset(ctx, input, cfg, noCache)
	if err != nil {
		return err
	}

	printInfo("%s", input)
	printStats(ds.NumSeries(), ds.NumDates(), ds.NumSeries(), false)
	printKeyValue("Range", ds.Dates[0]+" → "+ds.Dates[ds.NumDates()-1])
	printNewline()
	fmt.Println(rankingTable(ds).Render())
	return nil
}

// rankingRow is one line of the inspect table.
type rankingRow struct {
	rank   int
	series int
	name   string
	total  float64
	share  float64
	peak   string
}

// ranking orders series by total words, largest first, the same order the
// chart stacks them bottom to top.
func ranking(ds *dataset.Dataset) []rankingRow {
	totals := ds.Totals()
	sum := floats.Sum(totals)
	rows := make([]rankingRow, 0, len(totals))
	for rank, i := range numeric.ArgsortDesc(totals) {
		row := rankingRow{rank: rank, series: i, name: ds.Names[i], total: totals[i]}
		if sum > 0 {
			row.share = totals[i] / sum
		}
		if len(ds.Counts[i]) > 0 {
			row.peak = ds.Dates[floats.MaxIdx(ds.Counts[i])]
		}
		rows = append(rows, row)
	}
	return rows
}

func rankingTable(ds *dataset.Dataset) *table.Table {
	rows := ranking(ds)
	cells := make([][]string, len(rows))
	for k, r := range rows {
		cells[k] = []string{
			strconv.Itoa(r.rank + 1),
			cellFull,
			r.name,
			strconv.FormatFloat(r.total, 'f', 0, 64),
			fmt.Sprintf("%.1f%%", r.share*100),
			r.peak,
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "", "Series", "Words", "Share", "Peak").
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			switch col {
			case 1:
				return base.Foreground(lipgloss.Color(styles.Color(rows[row].rank)))
			case 0, 5:
				return base.Foreground(colorDim)
			case 3, 4:
				return base.Foreground(colorCyan).Align(lipgloss.Right)
			}
			return base.Foreground(colorWhite)
		})
}
