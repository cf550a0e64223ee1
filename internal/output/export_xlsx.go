// Package output renders optimizer results as text and as xlsx workbooks.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/cory-johannsen/evspread/internal/game/optimizer"
	"github.com/cory-johannsen/evspread/internal/game/stats"
)

const (
	// SpreadSheet holds one row per request.
	SpreadSheet = "Spreads"
	// GoalSheet holds one row per goal outcome.
	GoalSheet = "Goals"
)

var spreadHeader = []string{
	"Request", "Species", "Run",
	"HP EV", "Atk EV", "Def EV", "SpA EV", "SpD EV", "Spe EV", "Remaining",
	"HP", "Atk", "Def", "SpA", "SpD", "Spe",
	"Satisfied", "Partial", "Infeasible", "Skipped",
}

var goalHeader = []string{
	"Request", "Order", "Goal", "Kind", "Priority", "Status", "Already", "Cost", "Reason",
}

// ExportXLSX writes results to dir/<date>_<name>.xlsx and returns the path.
//
// Precondition: dir must be non-empty.
// Postcondition: Returns the written path or an error; dir is created when missing.
func ExportXLSX(dir, name string, results []*optimizer.Result, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("output dir must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	outPath := filepath.Join(dir, fmt.Sprintf("%s_%s.xlsx", now.Format("20060102"), sanitizeFilenamePart(name)))

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SpreadSheet); err != nil {
		return "", err
	}
	if _, err := f.NewSheet(GoalSheet); err != nil {
		return "", err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return "", err
	}
	if err := writeHeader(f, SpreadSheet, spreadHeader, headerStyle); err != nil {
		return "", err
	}
	if err := writeHeader(f, GoalSheet, goalHeader, headerStyle); err != nil {
		return "", err
	}

	spreadRowN, goalRow := 2, 2
	for _, res := range results {
		if res == nil {
			continue
		}
		if err := f.SetSheetRow(SpreadSheet, cell(1, spreadRowN), spreadRow(res)); err != nil {
			return "", err
		}
		spreadRowN++
		for order, o := range res.Outcomes {
			if err := f.SetSheetRow(GoalSheet, cell(1, goalRow), outcomeRow(res, order, o)); err != nil {
				return "", err
			}
			goalRow++
		}
	}

	if err := f.SetColWidth(SpreadSheet, "A", "C", 24); err != nil {
		return "", err
	}
	if err := f.SetColWidth(GoalSheet, "A", "A", 24); err != nil {
		return "", err
	}
	if err := f.SetColWidth(GoalSheet, "C", "C", 40); err != nil {
		return "", err
	}
	if err := f.SetColWidth(GoalSheet, "I", "I", 60); err != nil {
		return "", err
	}
	if err := f.SetPanes(SpreadSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return "", err
	}

	if err := f.SaveAs(outPath); err != nil {
		return "", err
	}
	return outPath, nil
}

func writeHeader(f *excelize.File, sheet string, header []string, style int) error {
	row := make([]any, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", cell(len(header), 1), style)
}

func spreadRow(res *optimizer.Result) *[]any {
	row := []any{requestName(res), res.Species, res.RunID.String()}
	for _, s := range stats.All {
		row = append(row, res.Spread.Get(s))
	}
	row = append(row, res.Remaining)
	for _, s := range stats.All {
		row = append(row, res.Final.Get(s))
	}
	row = append(row,
		res.Count(optimizer.Satisfied),
		res.Count(optimizer.Partial),
		res.Count(optimizer.Infeasible),
		res.Count(optimizer.Skipped),
	)
	return &row
}

func outcomeRow(res *optimizer.Result, order int, o optimizer.Outcome) *[]any {
	row := []any{
		requestName(res),
		order + 1,
		o.Goal.Name(),
		o.Goal.Kind.String(),
		o.Goal.Priority,
		o.Status.String(),
		o.Already,
		o.Cost.String(),
		o.Reason,
	}
	return &row
}

func requestName(res *optimizer.Result) string {
	if res.Name != "" {
		return res.Name
	}
	return res.Species
}

func cell(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		panic(err)
	}
	return name
}

func sanitizeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "_"
	}
	repl := strings.NewReplacer(
		"<", "_", ">", "_", ":", "_", "\"", "_",
		"/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_",
	)
	return repl.Replace(s)
}
