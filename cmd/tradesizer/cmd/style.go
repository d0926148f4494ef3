package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/rustyeddy/tradesizer/form"
	"github.com/rustyeddy/tradesizer/input"
	"github.com/rustyeddy/tradesizer/numfmt"
	"github.com/rustyeddy/tradesizer/table"
)

var (
	subtle = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	profitStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#43BF6D"))
	lossStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E06C75"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// classStyle maps the CSS classes used by the HTML views to terminal styles.
func classStyle(class string) lipgloss.Style {
	switch class {
	case "text-success":
		return profitStyle
	case "text-danger":
		return lossStyle
	case "text-secondary":
		return mutedStyle
	default:
		return lipgloss.NewStyle()
	}
}

// renderRows draws the trade table for a terminal.
func renderRows(w io.Writer, rows []table.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No trades")
		return
	}

	headers := append([]string{"ID"}, table.Columns...)
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		line := []string{shortID(r.ID)}
		for _, c := range r.Cells {
			line = append(line, c.Text)
		}
		data = append(data, line)
	}

	t := ltable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(subtle)).
		Headers(headers...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return headerStyle
			}
			if col == 0 || row < 0 || row >= len(rows) {
				return cellStyle
			}
			return classStyle(rows[row].Cells[col-1].Class).Padding(0, 1)
		})
	fmt.Fprintln(w, t.Render())
}

// plStyle colours a profit or loss amount.
func plStyle(x float64) lipgloss.Style {
	return classStyle(numfmt.ProfitLossClass(x))
}

func shortID(id string) string {
	if len(id) > 10 {
		return id[len(id)-10:]
	}
	return id
}

// prompt asks for every empty or invalid field of f in order. Each answer goes through
// the field's input controller, so formatting and validation match what
// the flags get.
func prompt(f *form.Form, v *form.Validator) error {
	ctrls := input.BindAll(f, v)

	var fields []huh.Field
	for _, fld := range f.Fields() {
		if fld.Value != "" && fld.State != form.Invalid {
			continue
		}
		c := ctrls[fld.ID]
		value := new(string)
		var hf huh.Field
		if len(fld.Options) > 0 {
			opts := make([]huh.Option[string], 0, len(fld.Options))
			for _, o := range fld.Options {
				opts = append(opts, huh.NewOption(o, o))
			}
			hf = huh.NewSelect[string]().Title(fld.Label).Options(opts...).Value(value).
				Validate(func(s string) error { return apply(c, s) })
		} else {
			hf = huh.NewInput().Title(fld.Label).Value(value).
				Validate(func(s string) error { return apply(c, s) })
		}
		fields = append(fields, hf)
	}
	if len(fields) == 0 {
		return nil
	}
	return huh.NewForm(huh.NewGroup(fields...)).Run()
}

func apply(c *input.Controller, s string) error {
	c.Paste(s, 0, len([]rune(c.Field().Value)))
	if !c.Blur() {
		return errors.New(c.Field().Err)
	}
	return nil
}
