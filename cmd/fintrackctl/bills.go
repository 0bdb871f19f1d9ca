package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func billsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bills",
		Short: "Pay bills and roll recurring bills forward",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "pay <id>",
		Short: "Mark a bill paid; recurring bills get their next occurrence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paid, next, err := a.records.MarkPaid(cmd.Context(), a.sess, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "paid %s (%s) due %s\n", paid.Name, paid.Amount, paid.DueDate)
			if next != nil {
				fmt.Fprintf(out, "next %s due %s\n", next.ID, next.DueDate)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rollover",
		Short: "Create missing next occurrences for paid recurring bills",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := a.records.RolloverPaidBills(cmd.Context(), a.sess)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d bills\n", n)
			return nil
		},
	})
	return cmd
}
