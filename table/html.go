package table

import (
	"html/template"
	"io"
)

var rowsTmpl = template.Must(template.New("rows").Parse(`<table class="table table-striped" id="trades-table">
<thead><tr>{{range .Columns}}<th data-column="{{.}}">{{.}}</th>{{end}}<th></th></tr></thead>
<tbody>
{{- range $row := .Rows}}
<tr data-trade-id="{{$row.ID}}">
{{- range $row.Cells}}<td{{if .Class}} class="{{.Class}}"{{end}}>{{.Text}}</td>{{end -}}
<td>
{{- range $row.Actions}}<button type="button" class="btn btn-sm" data-action="{{.}}" data-trade-id="{{$row.ID}}">{{.}}</button>{{end -}}
</td>
</tr>
{{- else}}
<tr><td colspan="{{len .Columns}}">No trades</td></tr>
{{- end}}
</tbody>
</table>
`))

// WriteHTML renders rows as a table.
func WriteHTML(w io.Writer, rows []Row) error {
	return rowsTmpl.Execute(w, struct {
		Columns []string
		Rows    []Row
	}{Columns, rows})
}
