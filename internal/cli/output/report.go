package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CaseOutput is one test case in a report or a recorded run.
type CaseOutput struct {
	File       string `json:"file"`
	Name       string `json:"name"`
	Passed     bool   `json:"passed"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Status returns "passed" or "failed".
func (c CaseOutput) Status() string {
	if c.Passed {
		return "passed"
	}
	return "failed"
}

// ReportOutput is the result of a test command.
type ReportOutput struct {
	RunID      string       `json:"run_id,omitempty"`
	Cases      []CaseOutput `json:"cases"`
	Passed     int          `json:"passed"`
	Failed     int          `json:"failed"`
	DurationMs int64        `json:"duration_ms"`
}

// RunOutput is a recorded test run.
type RunOutput struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// RunDetailOutput is a recorded run with its cases.
type RunDetailOutput struct {
	Run   RunOutput    `json:"run"`
	Cases []CaseOutput `json:"cases"`
}

// Report renders a test report.
func (r *Renderer) Report(rep *ReportOutput) error {
	mode := r.EffectiveMode()
	if mode == ModeJSON {
		return r.JSON(rep)
	}

	if mode == ModeMarkdown {
		r.Println(FormatHeader(1, "Test Results"))
		r.Println("")
	}
	r.caseTable(rep.Cases, true)

	total := rep.Passed + rep.Failed
	summary := fmt.Sprintf("%d passed, %d failed, %d total in %s",
		rep.Passed, rep.Failed, total, formatMs(rep.DurationMs))

	switch {
	case mode == ModeMarkdown:
		r.Println("")
		r.Println(FormatKeyValue("Summary", summary))
		if rep.RunID != "" {
			r.Println(FormatKeyValue("Run", rep.RunID))
		}
	case rep.Failed > 0:
		r.Println(r.styles.StatusFailed.Render(summary))
	default:
		r.Println(r.styles.StatusSuccess.Render(summary))
	}
	if mode != ModeMarkdown && rep.RunID != "" {
		r.Println(r.styles.Muted.Render("run " + rep.RunID))
	}
	return nil
}

// Runs renders a list of recorded runs, newest first.
func (r *Renderer) Runs(runs []RunOutput) error {
	mode := r.EffectiveMode()
	if mode == ModeJSON {
		if runs == nil {
			runs = []RunOutput{}
		}
		return r.JSON(runs)
	}
	if len(runs) == 0 {
		r.Println("No test runs recorded")
		return nil
	}

	if mode == ModeMarkdown {
		r.Println(FormatHeader(1, "Test Runs"))
		r.Println("")
	}
	t := r.newTable()
	t.AppendHeader(table.Row{"Run", "Status", "Started", "Duration", "Error"})
	for _, run := range runs {
		duration := "-"
		if run.CompletedAt != nil {
			duration = run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
		}
		t.AppendRow(table.Row{
			run.ID,
			r.status(mode, run.Status),
			run.StartedAt.Local().Format(time.DateTime),
			duration,
			run.Error,
		})
	}
	r.renderTable(t, mode)
	return nil
}

// RunDetail renders one recorded run and its cases.
func (r *Renderer) RunDetail(d *RunDetailOutput) error {
	mode := r.EffectiveMode()
	if mode == ModeJSON {
		if d.Cases == nil {
			d.Cases = []CaseOutput{}
		}
		return r.JSON(d)
	}

	if mode == ModeMarkdown {
		r.Println(FormatHeader(1, "Run "+d.Run.ID))
		r.Println("")
		r.Println(FormatKeyValue("Status", statusLabel(d.Run.Status)))
		r.Println(FormatKeyValue("Started", d.Run.StartedAt.Local().Format(time.DateTime)))
		if d.Run.Error != "" {
			r.Println(FormatKeyValue("Error", d.Run.Error))
		}
		r.Println("")
	} else {
		r.Header(1, "Run "+d.Run.ID)
		r.Printf("%s %s\n", r.styles.Bold.Render("Status:"), r.status(mode, d.Run.Status))
		r.Printf("%s %s\n", r.styles.Bold.Render("Started:"), d.Run.StartedAt.Local().Format(time.DateTime))
		if d.Run.Error != "" {
			r.Printf("%s %s\n", r.styles.Bold.Render("Error:"), d.Run.Error)
		}
	}
	if len(d.Cases) == 0 {
		r.Println("No cases recorded")
		return nil
	}
	r.caseTable(d.Cases, false)
	return nil
}

func (r *Renderer) caseTable(cs []CaseOutput, withTime bool) {
	mode := r.EffectiveMode()
	t := r.newTable()
	header := table.Row{"File", "Case", "Status"}
	if withTime {
		header = append(header, "Time")
	}
	t.AppendHeader(append(header, "Message"))
	for _, c := range cs {
		row := table.Row{c.File, c.Name, r.status(mode, c.Status())}
		if withTime {
			row = append(row, formatMs(c.DurationMs))
		}
		t.AppendRow(append(row, firstLine(c.Message)))
	}
	r.renderTable(t, mode)
}

func (r *Renderer) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	return t
}

func (r *Renderer) renderTable(t table.Writer, mode Mode) {
	if mode == ModeMarkdown {
		t.RenderMarkdown()
		return
	}
	t.Render()
}

// status returns the title-cased status, styled outside markdown.
func (r *Renderer) status(mode Mode, status string) string {
	label := statusLabel(status)
	if mode == ModeMarkdown {
		return label
	}
	return r.styles.StatusStyle(status).Render(label)
}

func statusLabel(status string) string {
	return cases.Title(language.English).String(status)
}

func formatMs(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
