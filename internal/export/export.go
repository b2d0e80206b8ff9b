// Package export writes plans to CSV, Excel and PDF files.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/theirongolddev/goalplan/internal/model"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want .csv, .xlsx or .pdf)", ext)
	}
}

// Row is one month of the contribution schedule.
type Row struct {
	Month int
	// Rate is the forecast monthly->goal rate used for this month.
	Rate             float64
	Contribution     float64
	ContributionGoal float64
	BalanceGoal      float64
	BalanceMonthly   float64
}

// Schedule expands a plan into per-month rows.
func Schedule(p *model.Plan) []Row {
	res := p.Result
	curve := p.FX.MonthlyToGoal.Curve
	n := len(res.TrajectoryGoal)

	rows := make([]Row, n)
	for i := 0; i < n; i++ {
		rate := 1.0
		if i < len(curve) {
			rate = curve[i]
		}
		rows[i] = Row{
			Month:            i + 1,
			Rate:             rate,
			Contribution:     res.MonthlyContribution,
			ContributionGoal: res.MonthlyContribution * rate,
			BalanceGoal:      res.TrajectoryGoal[i],
		}
		if i < len(res.TrajectoryMonthly) {
			rows[i].BalanceMonthly = res.TrajectoryMonthly[i]
		}
	}
	return rows
}

// Write encodes p to w in the given format.
func Write(w io.Writer, p *model.Plan, f Format) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, p)
	case FormatXLSX:
		return WriteExcel(w, p)
	case FormatPDF:
		return WritePDF(w, p)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

// ToFile writes p to path, choosing the format from the extension.
func ToFile(p *model.Plan, path string) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := Write(out, p, f); err != nil {
		_ = out.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return out.Close()
}
