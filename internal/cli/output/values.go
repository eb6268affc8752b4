package output

import (
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/glyph/pkg/value"
)

// Values renders a value stack, one value per entry, in the effective mode.
//
// Table mode draws rank-2 arrays as grids and falls back to the display
// form for everything else.
func (r *Renderer) Values(vals []value.Value) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		if vals == nil {
			vals = []value.Value{}
		}
		return r.JSON(vals)
	case ModeMarkdown:
		if len(vals) == 0 {
			return nil
		}
		r.Println(FormatCodeBlock("", displayLines(vals)))
	case ModeTable:
		for _, v := range vals {
			if v.Rank() == 2 && !v.Array().IsChars() {
				r.grid(v.Array())
				continue
			}
			r.Println(v.String())
		}
	default:
		for _, v := range vals {
			r.Println(v.String())
		}
	}
	return nil
}

func displayLines(vals []value.Value) string {
	lines := make([]string, len(vals))
	for i, v := range vals {
		lines[i] = v.String()
	}
	return strings.Join(lines, "\n")
}

// grid renders a rank-2 array with column indices as the header.
func (r *Renderer) grid(a *value.Array) {
	s := a.Shape()
	rows, cols := s[0], s[1]

	t := r.newTable()
	header := make(table.Row, cols)
	for j := range header {
		header[j] = strconv.Itoa(j)
	}
	t.AppendHeader(header)

	for i := 0; i < rows; i++ {
		row := make(table.Row, cols)
		for j := range row {
			row[j] = a.Element(i*cols + j).String()
		}
		t.AppendRow(row)
	}
	t.Render()
}
