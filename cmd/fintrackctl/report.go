package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fintrack/internal/report"
)

func reportCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the user's dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.dashboards.Dashboard(cmd.Context(), a.sess)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd, d)
			}
			return printDashboard(cmd, d)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the dashboard as JSON")
	return cmd
}

func printDashboard(cmd *cobra.Command, d report.Dashboard) error {
	if d.Empty {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No data yet")
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "As of\t%s\n", d.AsOf)
	fmt.Fprintf(tw, "Income\t%s\n", d.TotalIncome)
	fmt.Fprintf(tw, "Expenses\t%s\n", d.TotalExpense)
	fmt.Fprintf(tw, "Net worth\t%s\n", d.NetWorth)
	fmt.Fprintf(tw, "Savings rate\t%.1f%%\n", d.SavingsRate)

	if len(d.ExpenseCategories) > 0 {
		fmt.Fprintln(tw, "\nExpenses by category\t")
		for _, c := range d.ExpenseCategories {
			fmt.Fprintf(tw, "  %s\t%s\t%.1f%%\n", c.Category, c.Amount, c.Percentage)
		}
	}
	if len(d.Goals) > 0 {
		fmt.Fprintln(tw, "\nGoals\t")
		for _, g := range d.Goals {
			fmt.Fprintf(tw, "  %s\t%s / %s\t%.1f%%\n", g.Title, g.Current, g.Target, g.Progress)
		}
	}
	fmt.Fprintf(tw, "\nPortfolio\t%s invested, %s value\n", d.Portfolio.Invested, d.Portfolio.Value)
	fmt.Fprintf(tw, "Bills\t%d paid, %d pending, %d overdue\n",
		d.Bills.Paid.Count, d.Bills.Pending.Count, d.Bills.Overdue.Count)
	return tw.Flush()
}
