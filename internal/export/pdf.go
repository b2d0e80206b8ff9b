package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/theirongolddev/goalplan/internal/cli"
	"github.com/theirongolddev/goalplan/internal/model"
)

const (
	pdfFont   = "Arial"
	pdfMargin = 15.0
)

// amount formats money with the ISO code; core PDF fonts lack most currency glyphs.
func amount(v float64, c model.Currency) string {
	return string(c) + " " + cli.FormatAmount(v)
}

// WritePDF writes a printable plan report.
func WritePDF(w io.Writer, p *model.Plan) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, 20, pdfMargin)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(pdfFont, "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	in, res := p.Inputs, p.Result

	pdf.SetFont(pdfFont, "B", 16)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 10, "Investment plan: "+amount(in.GoalAmount, in.GoalCurrency), "", 1, "C", false, 0, "")
	pdf.SetFont(pdfFont, "", 9)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 6, "Generated: "+p.CreatedAt.Format("2006-01-02 15:04"), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	summary := [][2]string{
		{"Horizon", cli.FormatHorizon(in.HorizonMonths)},
		{"Annual return", fmt.Sprintf("%.2f%%", in.AnnualRatePercent)},
		{"Initial investment", amount(in.InitialInvestment, in.InitialCurrency)},
		{"Monthly investment", amount(res.MonthlyContribution, in.MonthlyCurrency)},
		{"Monthly investment (goal currency)", amount(res.MonthlyContributionGoal, in.GoalCurrency)},
		{"Total contributed", amount(res.TotalContributed, in.MonthlyCurrency)},
		{"Projected value", amount(res.FinalProjectedValue, in.GoalCurrency)},
	}
	if !in.SingleCurrency() {
		s := p.FX.MonthlyToGoal
		summary = append(summary,
			[2]string{string(s.Base) + "/" + string(s.Target) + " now", cli.FormatRate(s.CurrentRate)},
			[2]string{string(s.Base) + "/" + string(s.Target) + " predicted", cli.FormatRate(s.PredictedRate)},
			[2]string{"Rate confidence", cli.FormatPercent(s.Confidence)},
		)
	}

	pdf.SetTextColor(0, 0, 0)
	for _, kv := range summary {
		pdf.SetFont(pdfFont, "B", 10)
		pdf.CellFormat(75, 7, kv[0], "B", 0, "L", false, 0, "")
		pdf.SetFont(pdfFont, "", 10)
		pdf.CellFormat(0, 7, kv[1], "B", 1, "R", false, 0, "")
	}

	if len(p.Suggestions) > 0 {
		pdf.Ln(6)
		pdf.SetFont(pdfFont, "B", 12)
		pdf.CellFormat(0, 8, "Suggestions", "", 1, "L", false, 0, "")
		pdf.SetFont(pdfFont, "", 10)
		for _, s := range p.Suggestions {
			pdf.MultiCell(0, 5, "- "+s.Message, "", "L", false)
			pdf.Ln(1)
		}
	}

	pdf.Ln(6)
	writeScheduleTable(pdf, p)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return pdf.Output(w)
}

func writeScheduleTable(pdf *gofpdf.Fpdf, p *model.Plan) {
	labels := []string{"Month", "FX rate", "Contribution", "In goal ccy", "Balance"}
	widths := []float64{20, 30, 45, 40, 45}

	header := func() {
		pdf.SetFont(pdfFont, "B", 10)
		pdf.SetFillColor(58, 169, 159)
		pdf.SetTextColor(255, 255, 255)
		for i, l := range labels {
			pdf.CellFormat(widths[i], 7, l, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(pdfFont, "", 9)
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.SetFont(pdfFont, "B", 12)
	pdf.CellFormat(0, 8, "Monthly schedule", "", 1, "L", false, 0, "")
	header()

	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	in := p.Inputs

	for i, r := range Schedule(p) {
		if pdf.GetY()+6 > pageH-bottom {
			pdf.AddPage()
			header()
		}
		fill := i%2 == 1
		pdf.SetFillColor(242, 242, 242)
		cells := []string{
			strconv.Itoa(r.Month),
			cli.FormatRate(r.Rate),
			amount(r.Contribution, in.MonthlyCurrency),
			amount(r.ContributionGoal, in.GoalCurrency),
			amount(r.BalanceGoal, in.GoalCurrency),
		}
		for j, c := range cells {
			align := "R"
			if j == 0 {
				align = "C"
			}
			pdf.CellFormat(widths[j], 6, c, "1", 0, align, fill, 0, "")
		}
		pdf.Ln(-1)
	}
}
