package export

import (
	"fmt"
	"io"
	"strconv"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/celltypes/cellbuild/cell"
	"github.com/celltypes/cellbuild/cell/mech"
)

// hocTemplate recreates a built cell at top level in a hoc interpreter.
// Geometry comes first so that nseg is set after pt3d points are in place.
// A single traced point has no length, so such sections get L and diam.
const hocTemplate = `// {{ .Name }} (template {{ default "unnamed" .Template }})
// generated by cellbuild; sections: {{ .Count }}

create {{ join ", " .Creates }}
{{ range .Sections }}
{{ .Name }} {
{{- if gt (len .Points) 1 }}
  pt3dclear()
{{- range .Points }}
  pt3dadd({{ num (index . 0) }}, {{ num (index . 1) }}, {{ num (index . 2) }}, {{ num (index . 3) }})
{{- end }}
{{- else }}
  L = {{ num .L }}
  diam = {{ num .Diam }}
{{- end }}
}
{{- end }}
{{ range .Connects }}
connect {{ . }}
{{- end }}
{{ range .Sections }}
{{ .Name }} {
  nseg = {{ .Nseg }}
  Ra = {{ num .Ra }}
  cm = {{ num .Cm }}
{{- range .Mechanisms }}
  insert {{ .Name }}
{{- end }}
{{- range .Assigns }}
  {{ .Name }} = {{ num .Value }}
{{- end }}
}
{{- end }}
`

type hocAssign struct {
	Name  string
	Value float64
}

type hocSection struct {
	Section
	Assigns []hocAssign
}

type hocData struct {
	Name     string
	Template string
	Count    int
	Creates  []string
	Connects []string
	Sections []hocSection
}

func hocFuncMap() template.FuncMap {
	funcMap := sprig.TxtFuncMap()
	funcMap["num"] = func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return funcMap
}

var hocTmpl = template.Must(template.New("hoc").Funcs(hocFuncMap()).Parse(hocTemplate))

func newHocData(c *cell.Cell) hocData {
	model := NewModel(c)
	d := hocData{Name: model.Name, Template: model.Template, Count: len(model.Sections)}
	for _, list := range []struct {
		name string
		n    int
	}{
		{string(cell.RegionSoma), len(c.Soma)},
		{string(cell.RegionDend), len(c.Dend)},
		{string(cell.RegionAxon), len(c.Axon)},
	} {
		if list.n > 0 {
			d.Creates = append(d.Creates, fmt.Sprintf("%s[%d]", list.name, list.n))
		}
	}
	for _, s := range model.Sections {
		if s.Parent != "" {
			d.Connects = append(d.Connects, fmt.Sprintf("%s(0), %s(%s)", s.Name, s.Parent, strconv.FormatFloat(s.ParentX, 'g', -1, 64)))
		}
		hs := hocSection{Section: s}
		for _, m := range s.Mechanisms {
			for _, p := range sortedKeys(m.Params) {
				hs.Assigns = append(hs.Assigns, hocAssign{Name: mech.RangeVar(p, m.Name), Value: m.Params[p]})
			}
		}
		for _, e := range sortedKeys(s.Ions) {
			hs.Assigns = append(hs.Assigns, hocAssign{Name: e, Value: s.Ions[e]})
		}
		d.Sections = append(d.Sections, hs)
	}
	return d
}

// WriteHoc writes a hoc script that recreates the cell: section creation,
// traced geometry, connections, then nseg, cable properties, mechanism
// insertions and every parameter value.
func WriteHoc(w io.Writer, c *cell.Cell) error {
	if err := hocTmpl.Execute(w, newHocData(c)); err != nil {
		return fmt.Errorf("rendering hoc: %w", err)
	}
	return nil
}
