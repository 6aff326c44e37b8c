// Package report renders field trial reports as Markdown and HTML.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"agrodesk/internal/statistics"
	"agrodesk/models"
)

// VariableSection is the statistics block for one measured variable.
// Error is set instead of Result when the data could not be analyzed.
type VariableSection struct {
	Variable *models.TrialVariable
	Result   *statistics.Report
	Skipped  int
	Error    string
}

// TrialReport is everything a trial report shows
type TrialReport struct {
	Trial       *models.TrialDetails
	Sections    []VariableSection
	GeneratedAt time.Time
}

// Title is used for the HTML document title and the top heading
func (r *TrialReport) Title() string {
	if r.Trial.TrialCode != "" {
		return fmt.Sprintf("%s: %s", r.Trial.TrialCode, r.Trial.Name)
	}
	return r.Trial.Name
}

// Markdown renders the report as GitHub-flavoured Markdown
func Markdown(r *TrialReport) []byte {
	var b strings.Builder
	t := r.Trial

	fmt.Fprintf(&b, "# %s\n\n", r.Title())
	if !r.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "_Generated %s_\n\n", r.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))
	}

	b.WriteString("## Overview\n\n")
	table(&b, []string{"Field", "Value"}, [][]string{
		{"Crop", t.Crop + optional(t.VarietyHybrid, " (%s)")},
		{"Type", t.TrialType},
		{"Season", t.Season},
		{"Status", string(t.Status)},
		{"Farm", t.FarmName},
		{"Location", t.FieldLocation},
		{"Dates", fmt.Sprintf("%s to %s", t.StartDate, t.EndDate)},
		{"Completion", fmt.Sprintf("%.0f%%", t.CompletionPercentage)},
		{"Budget", budget(t.Budget, t.Spent)},
	})
	if strings.TrimSpace(t.Objective) != "" {
		fmt.Fprintf(&b, "**Objective.** %s\n\n", t.Objective)
	}

	if len(t.Treatments) > 0 {
		b.WriteString("## Treatments\n\n")
		rows := make([][]string, 0, len(t.Treatments))
		for _, tr := range t.Treatments {
			rows = append(rows, []string{tr.Name, deref(tr.ApplicationMethod), deref(tr.Rate), deref(tr.Timing)})
		}
		table(&b, []string{"Treatment", "Method", "Rate", "Timing"}, rows)
	}

	if len(t.Plots) > 0 {
		b.WriteString("## Plots\n\n")
		rows := make([][]string, 0, len(t.Plots))
		for _, p := range t.Plots {
			area := ""
			if p.Area != nil {
				area = num(*p.Area)
			}
			rows = append(rows, []string{p.PlotNumber, deref(p.Treatment), deref(p.Repetition), area})
		}
		table(&b, []string{"Plot", "Treatment", "Repetition", "Area"}, rows)
	}

	for _, s := range r.Sections {
		writeSection(&b, s)
	}

	if len(t.Tasks) > 0 {
		b.WriteString("## Tasks\n\n")
		tasks := append([]*models.TrialTask(nil), t.Tasks...)
		sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].DueDate.Before(tasks[j].DueDate.Time) })
		for _, task := range tasks {
			box := "[ ]"
			if task.Status == models.TaskStatusCompleted {
				box = "[x]"
			}
			fmt.Fprintf(&b, "- %s %s (due %s, %s)\n", box, task.Title, task.DueDate, task.Priority)
		}
		b.WriteString("\n")
	}
	return []byte(b.String())
}

func writeSection(b *strings.Builder, s VariableSection) {
	name := s.Variable.Name
	if s.Variable.Unit != nil && *s.Variable.Unit != "" {
		name += " (" + *s.Variable.Unit + ")"
	}
	fmt.Fprintf(b, "## %s\n\n", name)
	if s.Skipped > 0 {
		fmt.Fprintf(b, "%d non-numeric or unassigned measurements were skipped.\n\n", s.Skipped)
	}
	if s.Result == nil {
		msg := s.Error
		if msg == "" {
			msg = "no data"
		}
		fmt.Fprintf(b, "Statistics unavailable: %s.\n\n", msg)
		return
	}

	rows := make([][]string, 0, len(s.Result.Summaries))
	for _, sum := range s.Result.Summaries {
		cv := "n/a"
		if sum.CVDefined {
			cv = num(sum.CV) + "%"
		}
		rows = append(rows, []string{sum.Label, fmt.Sprint(sum.Count), num(sum.Mean), num(sum.StdDev), num(sum.StdErr), cv, num(sum.Min), num(sum.Max)})
	}
	table(b, []string{"Treatment", "n", "Mean", "SD", "SE", "CV", "Min", "Max"}, rows)

	if a := s.Result.ANOVA; a != nil {
		b.WriteString("### ANOVA\n\n")
		table(b, []string{"Source", "df", "SS", "MS", "F", "p"}, [][]string{
			{"Between", fmt.Sprint(a.DFBetween), num(a.SSBetween), num(a.MSBetween), num(a.F), pval(a.PValue)},
			{"Within", fmt.Sprint(a.DFWithin), num(a.SSWithin), num(a.MSWithin), "", ""},
			{"Total", fmt.Sprint(a.DFBetween + a.DFWithin), num(a.SSTotal), "", "", ""},
		})
		verdict := "not significant"
		if a.Significant {
			verdict = "significant"
		}
		fmt.Fprintf(b, "Treatment effect is **%s** at alpha = %s.\n\n", verdict, num(a.Alpha))
	}

	if tk := s.Result.Tukey; tk != nil && len(tk.Comparisons) > 0 {
		b.WriteString("### Tukey HSD\n\n")
		rows := make([][]string, 0, len(tk.Comparisons))
		for _, c := range tk.Comparisons {
			reject := "no"
			if c.Reject {
				reject = "yes"
			}
			rows = append(rows, []string{c.Group1, c.Group2, num(c.MeanDiff), pval(c.PAdj), num(c.Lower), num(c.Upper), reject})
		}
		table(b, []string{"Group 1", "Group 2", "Diff", "p-adj", "Lower", "Upper", "Reject"}, rows)
	}

	for _, n := range s.Result.Notes {
		fmt.Fprintf(b, "> %s\n\n", n)
	}
}

// HTML renders the report as a standalone HTML page
func HTML(r *TrialReport) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: r.Title(),
	})
	return markdown.ToHTML(Markdown(r), p, renderer)
}

// StatisticsMarkdown renders a standalone analysis, as printed by the
// admin CLI for ad-hoc data files
func StatisticsMarkdown(title string, skipped int, result *statistics.Report) []byte {
	var b strings.Builder
	writeSection(&b, VariableSection{
		Variable: &models.TrialVariable{Name: title},
		Result:   result,
		Skipped:  skipped,
	})
	return []byte(b.String())
}

func table(b *strings.Builder, header []string, rows [][]string) {
	b.WriteString("| " + strings.Join(escapeAll(header), " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")
	for _, row := range rows {
		b.WriteString("| " + strings.Join(escapeAll(row), " | ") + " |\n")
	}
	b.WriteString("\n")
}

func escapeAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ReplaceAll(strings.ReplaceAll(c, "|", `\|`), "\n", " ")
	}
	return out
}

func num(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsNaN(v):
		return "n/a"
	}
	return fmt.Sprintf("%.4g", v)
}

func pval(p float64) string {
	if p < 0.0001 {
		return "<0.0001"
	}
	return fmt.Sprintf("%.4f", p)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s *string, format string) string {
	if s == nil || *s == "" {
		return ""
	}
	return fmt.Sprintf(format, *s)
}

func budget(total *float64, spent float64) string {
	if total == nil {
		return fmt.Sprintf("%.2f spent", spent)
	}
	return fmt.Sprintf("%.2f of %.2f spent", spent, *total)
}
