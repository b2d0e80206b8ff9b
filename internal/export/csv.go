package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/theirongolddev/goalplan/internal/cli"
	"github.com/theirongolddev/goalplan/internal/model"
)

// ScheduleColumns are the CSV and Excel schedule headers.
var ScheduleColumns = []string{
	"month", "fx_rate", "contribution", "contribution_goal", "balance_goal", "balance_monthly",
}

// WriteCSV writes the monthly schedule. Money columns are fixed to cents.
func WriteCSV(w io.Writer, p *model.Plan) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(ScheduleColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range Schedule(p) {
		record := []string{
			strconv.Itoa(r.Month),
			strconv.FormatFloat(r.Rate, 'f', 6, 64),
			cli.Money(r.Contribution).StringFixed(2),
			cli.Money(r.ContributionGoal).StringFixed(2),
			cli.Money(r.BalanceGoal).StringFixed(2),
			cli.Money(r.BalanceMonthly).StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
