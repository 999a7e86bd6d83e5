package output

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vyfood/storefront/internal/cmd/table"
)

// Formatter writes a value in one format.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(io.Writer, any) error

// Format calls f.
func (f FormatterFunc) Format(w io.Writer, data any) error { return f(w, data) }

// NewFormatter returns the formatter for format. Table formats accept
// table.Data or a struct; anything else falls back to JSON.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return FormatterFunc(writeJSON)
	case FormatYAML:
		return FormatterFunc(writeYAML)
	}
	return FormatterFunc(writeTable)
}

func writeJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func writeYAML(w io.Writer, data any) error {
	b, err := yaml.MarshalWithOptions(data, yaml.Indent(2), yaml.IndentSequence(false))
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func writeTable(w io.Writer, data any) error {
	switch v := data.(type) {
	case table.Data:
		return render(w, v)
	case *table.Data:
		return render(w, *v)
	}
	if props, ok := properties(data); ok {
		return render(w, props)
	}
	return writeJSON(w, data)
}

var alignments = map[table.Align]tw.Align{
	table.AlignLeft:   tw.AlignLeft,
	table.AlignCenter: tw.AlignCenter,
	table.AlignRight:  tw.AlignRight,
}

func render(w io.Writer, data table.Data) error {
	var cfg tablewriter.Config
	if len(data.ColumnAlignment) > 0 {
		cols := make([]tw.Align, len(data.ColumnAlignment))
		for i, a := range data.ColumnAlignment {
			align, ok := alignments[a]
			if !ok {
				align = tw.Skip
			}
			cols[i] = align
		}
		cfg.Header.Alignment = tw.CellAlignment{PerColumn: cols}
		cfg.Row.Alignment = tw.CellAlignment{PerColumn: cols}
	}

	t := tablewriter.NewTable(w, tablewriter.WithConfig(cfg))
	if len(data.Headers) > 0 {
		t.Header(cells(data.Headers)...)
	}
	for _, row := range data.Rows {
		if err := t.Append(cells(row)...); err != nil {
			return err
		}
	}
	return t.Render()
}

func cells(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

// properties lays a struct out as Property/Value rows, titling JSON names:
// "carts_changed" becomes "Carts Changed".
func properties(data any) (table.Data, bool) {
	v := reflect.Indirect(reflect.ValueOf(data))
	if !v.IsValid() || v.Kind() != reflect.Struct {
		return table.Data{}, false
	}

	title := cases.Title(language.English)
	props := table.Data{Headers: []string{"Property", "Value"}}
	for i := range v.NumField() {
		f := v.Type().Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		default:
			name = title.String(strings.ReplaceAll(name, "_", " "))
		}
		props.Rows = append(props.Rows, []string{name, fmt.Sprint(v.Field(i).Interface())})
	}
	return props, true
}
