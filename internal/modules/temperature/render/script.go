package render

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/kubakubakuba/templogger/internal/modules/temperature/series"
)

var scriptTmpl = template.Must(template.New("gnuplot").Parse(`set terminal {{.Terminal}}
set title "Temperature for {{.Room}} on {{.Date}}"
set xlabel "Time (hours)"
set ylabel "Temperature (°C)"
set xtics rotate by -45
{{- if .Inverse}}
set object 1 rectangle from screen 0,0 to screen 1,1 fillcolor rgb 'black' behind
set border lc rgb 'white'
set tics textcolor rgb 'white'
set title textcolor rgb 'white'
set xlabel textcolor rgb 'white'
set ylabel textcolor rgb 'white'
set key textcolor rgb 'white'
{{- end}}
set xrange [0:24]
{{- if .FixedYRange}}
set yrange [0:40]
{{- end}}
set output '{{.Output}}'
plot '-' using 1:2 with linespoints title "Temperature"{{if .Inverse}} lc rgb 'white'{{end}}
{{.Data}}e
`))

type scriptData struct {
	Terminal    string
	Room        string
	Date        string
	Inverse     bool
	FixedYRange bool
	Output      string
	Data        string
}

func terminal(s Style) string {
	if s.Mode == ModeText {
		return "dumb"
	}
	return fmt.Sprintf("pngcairo size %d,%d enhanced", s.Width, s.Height)
}

// quote escapes a value for a single-quoted gnuplot string.
func quote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// Script renders the gnuplot program for the job. The output only depends on
// the job fields, so identical jobs produce byte-identical scripts.
func (j *Job) Script() ([]byte, error) {
	var buf bytes.Buffer
	err := scriptTmpl.Execute(&buf, scriptData{
		Terminal:    terminal(j.Style),
		Room:        j.Room,
		Date:        j.Date.Format("2006-01-02"),
		Inverse:     j.Style.inverse(),
		FixedYRange: j.Style.FixedYRange,
		Output:      quote(j.OutputPath),
		Data:        series.DataBlock(j.Points),
	})
	if err != nil {
		return nil, fmt.Errorf("render script for %s: %w", j.Room, err)
	}
	return buf.Bytes(), nil
}
