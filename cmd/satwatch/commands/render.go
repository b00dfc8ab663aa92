package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/RMahshie/satscan/internal/spectrum"
	"github.com/RMahshie/satscan/internal/watch"
	"github.com/RMahshie/satscan/pkg/models"
)

var stateColors = map[watch.State]*color.Color{
	watch.StateIdle:            color.New(color.FgWhite),
	watch.StateWaitingForInput: color.New(color.FgYellow),
	watch.StateSearching:       color.New(color.FgCyan),
	watch.StateFound:           color.New(color.FgGreen, color.Bold),
	watch.StateError:           color.New(color.FgRed, color.Bold),
}

func stateLabel(s watch.State) string {
	c, ok := stateColors[s]
	if !ok {
		return string(s)
	}
	return c.Sprint(string(s))
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false
	return tbl
}

func yesNo(v bool) string {
	if v {
		return color.GreenString("yes")
	}
	return color.YellowString("no")
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func renderStatus(w io.Writer, status *models.OutputStatusResponseBody) {
	tbl := newTable()
	tbl.AppendRow(table.Row{"scan", status.ScanID})
	tbl.AppendRow(table.Row{"folder", status.FolderPath})
	tbl.AppendRow(table.Row{"folder exists", yesNo(status.FolderExists)})
	tbl.AppendRow(table.Row{"spectrum", orDash(status.SpectrumPath)})
	tbl.AppendRow(table.Row{"completed", yesNo(status.Completed)})
	fmt.Fprintln(w, tbl.Render())
}

func renderSpectrum(w io.Writer, spec *models.SpectrumResponseBody, now time.Time) {
	sum := spectrum.Summarize(spec.Points)

	tbl := newTable()
	tbl.AppendRow(table.Row{"scan", spec.ScanID})
	tbl.AppendRow(table.Row{"source", spec.Source})
	tbl.AppendRow(table.Row{"updated", humanize.RelTime(spec.UpdatedAt, now, "ago", "from now")})
	tbl.AppendRow(table.Row{"parse mode", spec.ParseMode})
	tbl.AppendRow(table.Row{"points", humanize.Comma(int64(sum.Count))})
	if sum.Count > 0 {
		tbl.AppendRow(table.Row{"frequency", fmt.Sprintf("%.3f - %.3f %s", sum.MinFrequency, sum.MaxFrequency, spec.Unit)})
		tbl.AppendRow(table.Row{"power", fmt.Sprintf("%.2f - %.2f", sum.MinPower, sum.MaxPower)})
		tbl.AppendRow(table.Row{"peak", fmt.Sprintf("%.3f %s", sum.PeakFrequency, spec.Unit)})
	}
	if spec.Meta != nil {
		tbl.AppendRow(table.Row{"start", humanize.SIWithDigits(spec.Meta.StartHz, 3, "Hz")})
		tbl.AppendRow(table.Row{"step", humanize.SIWithDigits(spec.Meta.DeltaHz, 3, "Hz")})
	}
	fmt.Fprintln(w, tbl.Render())
}

func renderTable(w io.Writer, body *models.TableResponseBody) {
	if len(body.Headers) == 0 {
		color.New(color.FgYellow).Fprintf(w, "No matching columns in %s\n", body.Source)
		return
	}

	tbl := newTable()
	header := make(table.Row, len(body.Headers))
	for i, h := range body.Headers {
		header[i] = h
	}
	tbl.AppendHeader(header)

	for _, r := range body.Rows {
		row := make(table.Row, len(r))
		for i, cell := range r {
			row[i] = cell
		}
		tbl.AppendRow(row)
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d rows", len(body.Rows))})
	fmt.Fprintln(w, tbl.Render())
}

// eventPrinter writes watch events as they arrive. The elapsed line is
// rewritten in place.
type eventPrinter struct {
	w          io.Writer
	onProgress bool
}

func (p *eventPrinter) line(format string, args ...any) {
	if p.onProgress {
		fmt.Fprintln(p.w)
		p.onProgress = false
	}
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *eventPrinter) print(ev watch.Event) {
	s := ev.Session
	switch ev.Type {
	case watch.EventState:
		switch {
		case s.State == watch.StateWaitingForInput:
			p.line("Scan %d: %s, searching in %s", s.ScanID, stateLabel(s.State), watch.FormatElapsed(ev.Remaining))
		case ev.Err != nil:
			p.line("Scan %d: %s: %v", s.ScanID, stateLabel(s.State), ev.Err)
		default:
			p.line("Scan %d: %s", s.ScanID, stateLabel(s.State))
		}
	case watch.EventElapsed:
		fmt.Fprintf(p.w, "\r  %s %s", stateLabel(s.State), watch.FormatElapsed(s.Elapsed))
		p.onProgress = true
	case watch.EventCountdown:
		fmt.Fprintf(p.w, "\r  no input yet, searching in %s", watch.FormatElapsed(ev.Remaining))
		p.onProgress = true
	case watch.EventPollError:
		p.line("  %s %v", color.RedString("poll failed:"), ev.Err)
	case watch.EventNotReady:
		p.line("  spectrum file present but still empty")
	case watch.EventFound:
		p.line("Scan %d: %s after %s", s.ScanID, stateLabel(s.State), watch.FormatElapsed(s.Elapsed))
	}
}
