// Package excel reads observation sheets and writes trial workbooks with
// excelize.
package excel

import (
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"

	"agrodesk/internal/report"
	"agrodesk/models"
)

const (
	sheetOverview   = "Overview"
	sheetTreatments = "Treatments"
	sheetPlots      = "Plots"
	sheetData       = "Data"
	sheetStatistics = "Statistics"
)

type sheetWriter struct {
	f      *excelize.File
	header int
	err    error
}

// row writes values starting at column A of the given 1-based row
func (w *sheetWriter) row(sheet string, n int, values ...any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(sheet, cell, &values)
}

func (w *sheetWriter) headerRow(sheet string, n int, values ...any) {
	w.row(sheet, n, values...)
	if w.err != nil {
		return
	}
	first, _ := excelize.CoordinatesToCellName(1, n)
	last, _ := excelize.CoordinatesToCellName(len(values), n)
	w.err = w.f.SetCellStyle(sheet, first, last, w.header)
}

func (w *sheetWriter) sheet(name string) {
	if w.err != nil {
		return
	}
	_, w.err = w.f.NewSheet(name)
	if w.err == nil {
		w.err = w.f.SetColWidth(name, "A", "H", 16)
	}
}

// WriteTrialWorkbook writes the trial, its raw data and the statistics
// sections as an .xlsx workbook
func WriteTrialWorkbook(out io.Writer, r *report.TrialReport) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBD3"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	w := &sheetWriter{f: f, header: header}
	if err := f.SetSheetName("Sheet1", sheetOverview); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := f.SetColWidth(sheetOverview, "A", "B", 24); err != nil {
		return fmt.Errorf("failed to size overview: %w", err)
	}

	t := r.Trial
	w.headerRow(sheetOverview, 1, "Field", "Value")
	overview := [][]any{
		{"Name", t.Name},
		{"Code", t.TrialCode},
		{"Crop", t.Crop},
		{"Type", t.TrialType},
		{"Season", t.Season},
		{"Status", string(t.Status)},
		{"Farm", t.FarmName},
		{"Location", t.FieldLocation},
		{"Start", t.StartDate.String()},
		{"End", t.EndDate.String()},
		{"Completion %", t.CompletionPercentage},
		{"Spent", t.Spent},
	}
	if t.Budget != nil {
		overview = append(overview, []any{"Budget", *t.Budget})
	}
	for i, row := range overview {
		w.row(sheetOverview, i+2, row...)
	}

	w.sheet(sheetTreatments)
	w.headerRow(sheetTreatments, 1, "Treatment", "Description", "Method", "Rate", "Timing")
	for i, tr := range t.Treatments {
		w.row(sheetTreatments, i+2, tr.Name, str(tr.Description), str(tr.ApplicationMethod), str(tr.Rate), str(tr.Timing))
	}

	w.sheet(sheetPlots)
	w.headerRow(sheetPlots, 1, "Plot", "Treatment", "Repetition", "Area")
	for i, p := range t.Plots {
		var area any
		if p.Area != nil {
			area = *p.Area
		}
		w.row(sheetPlots, i+2, p.PlotNumber, str(p.Treatment), str(p.Repetition), area)
	}

	writeData(w, t)
	writeStatistics(w, r.Sections)

	if w.err != nil {
		return fmt.Errorf("failed to build workbook: %w", w.err)
	}
	f.SetActiveSheet(0)
	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeData(w *sheetWriter, t *models.TrialDetails) {
	plots := make(map[string]*models.TrialPlot, len(t.Plots))
	for _, p := range t.Plots {
		plots[p.ID.String()] = p
	}
	variables := make(map[string]string, len(t.Variables))
	for _, v := range t.Variables {
		variables[v.ID.String()] = v.Name
	}

	w.sheet(sheetData)
	w.headerRow(sheetData, 1, "Plot", "Treatment", "Variable", "Value", "Date", "Recorded by")
	for i, d := range t.Data {
		plotNumber, treatment := d.PlotID.String(), ""
		if p, ok := plots[d.PlotID.String()]; ok {
			plotNumber, treatment = p.PlotNumber, str(p.Treatment)
		}
		var value any = d.Value
		if n, ok := d.Numeric(); ok {
			value = n
		}
		w.row(sheetData, i+2, plotNumber, treatment, variables[d.VariableID.String()], value, d.MeasurementDate.String(), d.RecordedBy)
	}
}

func writeStatistics(w *sheetWriter, sections []report.VariableSection) {
	w.sheet(sheetStatistics)
	n := 1
	for _, s := range sections {
		w.headerRow(sheetStatistics, n, s.Variable.Name)
		n++
		if s.Result == nil {
			w.row(sheetStatistics, n, "unavailable", s.Error)
			n += 2
			continue
		}
		w.headerRow(sheetStatistics, n, "Treatment", "n", "Mean", "SD", "SE", "CV %", "Min", "Max")
		n++
		for _, sum := range s.Result.Summaries {
			var cv any = "n/a"
			if sum.CVDefined {
				cv = sum.CV
			}
			w.row(sheetStatistics, n, sum.Label, sum.Count, sum.Mean, sum.StdDev, sum.StdErr, cv, sum.Min, sum.Max)
			n++
		}
		if a := s.Result.ANOVA; a != nil {
			w.row(sheetStatistics, n, "F", finite(a.F), "p", a.PValue, "significant", a.Significant)
			n++
		}
		if tk := s.Result.Tukey; tk != nil {
			w.headerRow(sheetStatistics, n, "Group 1", "Group 2", "Diff", "p-adj", "Lower", "Upper", "Reject")
			n++
			for _, c := range tk.Comparisons {
				w.row(sheetStatistics, n, c.Group1, c.Group2, c.MeanDiff, c.PAdj, c.Lower, c.Upper, c.Reject)
				n++
			}
		}
		n++
	}
}

// finite keeps +Inf out of numeric cells
func finite(v float64) any {
	if math.IsInf(v, 0) {
		return "inf"
	}
	return v
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
