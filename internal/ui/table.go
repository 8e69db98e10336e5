package ui

import (
	"strings"

	"github.com/olekukonko/tablewriter"
)

// tableIndent lines tables up with the content of result boxes
const tableIndent = "  "

// RenderTable renders rows as borderless left-aligned columns under bold headers
func RenderTable(headers []string, rows [][]string) string {
	styled := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = TableHeaderStyle.Render(h)
	}

	var b strings.Builder
	table := tablewriter.NewWriter(&b)
	table.SetHeader(styled)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("  ")
	table.AppendBulk(rows)
	table.Render()

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	for i, line := range lines {
		lines[i] = tableIndent + strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
