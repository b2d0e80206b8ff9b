package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/goalplan/internal/cli"
	"github.com/theirongolddev/goalplan/internal/config"
)

var currenciesCmd = &cobra.Command{
	Use:   "currencies",
	Short: "List supported currencies",
	Args:  cobra.NoArgs,
	RunE:  runCurrencies,
}

func init() {
	rootCmd.AddCommand(currenciesCmd)
}

func runCurrencies(_ *cobra.Command, _ []string) error {
	rows := make([][]string, len(config.Currencies))
	for i, c := range config.Currencies {
		rows[i] = []string{string(c.Code), c.Symbol, c.Name}
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Supported currencies",
		Headers: []string{"Code", "Symbol", "Name"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}
