package web

import (
	"bytes"
	"embed"
	"html/template"
	"io"

	"github.com/rustyeddy/tradesizer/numfmt"
	"github.com/rustyeddy/tradesizer/table"
	"github.com/rustyeddy/tradesizer/trade"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

func parseTemplates(d numfmt.Display) (*template.Template, error) {
	funcMap := template.FuncMap{
		"money":   d.Money,
		"percent": d.Percent,
		"number":  d.Number,
		"units":   d.Units,
		"plClass": numfmt.ProfitLossClass,
	}
	return template.New("summary").Funcs(funcMap).ParseFS(templateFS, "templates/*.gohtml")
}

type summaryPage struct {
	Summary trade.Summary
	Trades  template.HTML
}

// renderSummary writes the summary fragment, including the trade table.
func (s *Server) renderSummary(w io.Writer, sum trade.Summary, trades []trade.Trade) error {
	tbl := table.New(s.display)
	tbl.Replace(trades)

	var rows bytes.Buffer
	if err := table.WriteHTML(&rows, tbl.Render("", table.SortState{Column: table.ColDate, Direction: table.Desc})); err != nil {
		return err
	}
	return s.tmpl.ExecuteTemplate(w, "summary.gohtml", summaryPage{
		Summary: sum,
		Trades:  template.HTML(rows.String()),
	})
}
