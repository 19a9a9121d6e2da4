package cli

import (
	"fmt"
	"text/tabwriter"

	"banksantri/internal/service"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reconcileCmd)
	reconcileCmd.Flags().StringP("account", "a", "", "Reconcile a single account number")
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare cached balances with the movement ledger",
	Long: `Fold every account's movements in ledger order and compare the result with
the cached balance and each row's balance snapshot. Exits non-zero when any
account is out of balance.`,
	RunE: runReconcile,
}

func runReconcile(cmd *cobra.Command, args []string) error {
	account, _ := cmd.Flags().GetString("account")

	_, db, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	reconciler := service.NewReconcileService(db)
	ctx := cmd.Context()

	var reports []*service.ReconcileReport
	if account != "" {
		report, err := reconciler.ReconcileAccount(ctx, account)
		if err != nil {
			return err
		}
		reports = append(reports, report)
	} else {
		mismatched, err := reconciler.ReconcileAll(ctx)
		if err != nil {
			return err
		}
		reports = mismatched
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ACCOUNT\tCACHED\tLEDGER\tMOVEMENTS\tSNAPSHOT MISMATCHES\tCONSISTENT")
	bad := 0
	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%t\n",
			r.AccountNumber, r.CachedBalance.StringFixed(2), r.LedgerBalance.StringFixed(2),
			r.MovementCount, len(r.SnapshotMismatches), r.Consistent)
		if !r.Consistent {
			bad++
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if bad > 0 {
		return fmt.Errorf("%d account(s) out of balance", bad)
	}
	return nil
}
