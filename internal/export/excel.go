package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/goalplan/internal/model"
)

const (
	summarySheet  = "Summary"
	scheduleSheet = "Schedule"
	moneyFormat   = "#,##0.00"
	rateFormat    = "0.000000"
)

// WriteExcel writes a workbook with a summary sheet and a monthly schedule sheet.
func WriteExcel(w io.Writer, p *model.Plan) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(scheduleSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"3AA99F"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(moneyFormat)})
	if err != nil {
		return fmt.Errorf("failed to create money style: %w", err)
	}
	rate, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(rateFormat)})
	if err != nil {
		return fmt.Errorf("failed to create rate style: %w", err)
	}

	if err := writeSummarySheet(f, p, header); err != nil {
		return err
	}
	if err := writeScheduleSheet(f, p, header, money, rate); err != nil {
		return err
	}

	return f.Write(w)
}

func strPtr(s string) *string { return &s }

func writeSummarySheet(f *excelize.File, p *model.Plan, header int) error {
	in, res := p.Inputs, p.Result
	rows := [][]any{
		{"Field", "Value", "Currency"},
		{"Plan ID", p.ID, ""},
		{"Created", p.CreatedAt.Format("2006-01-02 15:04:05"), ""},
		{"Goal amount", in.GoalAmount, string(in.GoalCurrency)},
		{"Horizon (months)", in.HorizonMonths, ""},
		{"Annual return (%)", in.AnnualRatePercent, ""},
		{"Initial investment", in.InitialInvestment, string(in.InitialCurrency)},
		{"Monthly investment", res.MonthlyContribution, string(in.MonthlyCurrency)},
		{"Monthly investment (goal)", res.MonthlyContributionGoal, string(in.GoalCurrency)},
		{"Total contributed", res.TotalContributed, string(in.MonthlyCurrency)},
		{"Projected value", res.FinalProjectedValue, string(in.GoalCurrency)},
		{"Rate confidence", p.FX.MonthlyToGoal.Confidence, ""},
	}
	for i, s := range p.Suggestions {
		label := ""
		if i == 0 {
			label = "Suggestions"
		}
		rows = append(rows, []any{label, s.Message, ""})
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	if err := f.SetCellStyle(summarySheet, "A1", "C1", header); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 28); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "B", "B", 40)
}

func writeScheduleSheet(f *excelize.File, p *model.Plan, header, money, rate int) error {
	for i, col := range ScheduleColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(scheduleSheet, cell, col); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(ScheduleColumns), 1)
	if err := f.SetCellStyle(scheduleSheet, "A1", last, header); err != nil {
		return err
	}

	schedule := Schedule(p)
	for i, r := range schedule {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{r.Month, r.Rate, r.Contribution, r.ContributionGoal, r.BalanceGoal, r.BalanceMonthly}
		if err := f.SetSheetRow(scheduleSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write schedule row: %w", err)
		}
	}

	if n := len(schedule); n > 0 {
		end, _ := excelize.CoordinatesToCellName(len(ScheduleColumns), n+1)
		if err := f.SetCellStyle(scheduleSheet, "C2", end, money); err != nil {
			return err
		}
		rateEnd, _ := excelize.CoordinatesToCellName(2, n+1)
		if err := f.SetCellStyle(scheduleSheet, "B2", rateEnd, rate); err != nil {
			return err
		}
	}

	if err := f.SetPanes(scheduleSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	return f.SetColWidth(scheduleSheet, "A", "F", 18)
}
