package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintTable writes tabular data. On a TTY it renders aligned, borderless
// columns with a header; otherwise it writes tab-separated values for piping.
func PrintTable(w io.Writer, headers []string, rows [][]string, isTTY bool) {
	if !isTTY {
		printTSV(w, headers, rows)
		return
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					BetweenColumns: tw.Off,
					BetweenRows:    tw.Off,
				},
			},
		})),
	)

	table.Header(toAny(headers)...)
	for _, row := range rows {
		table.Append(toAny(row)...)
	}
	table.Render()
}

// PrintKeyValues renders pairs as a two-column KEY/VALUE table.
func PrintKeyValues(w io.Writer, pairs [][2]string, isTTY bool) {
	rows := make([][]string, len(pairs))
	for i, p := range pairs {
		rows[i] = []string{p[0], p[1]}
	}
	PrintTable(w, []string{"KEY", "VALUE"}, rows, isTTY)
}

func printTSV(w io.Writer, headers []string, rows [][]string) {
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
}

func toAny(ss []string) []any {
	result := make([]any, len(ss))
	for i, s := range ss {
		result[i] = s
	}
	return result
}
