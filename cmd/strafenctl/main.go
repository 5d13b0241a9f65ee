// strafenctl is a small operator CLI for the penalty fund service.
package main

import (
	"fmt"
	"net/url"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"strafenkasse-service/internal/domain"
	"strafenkasse-service/internal/reconcile"
)

var (
	flagAddr  string
	flagToken string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "strafenctl",
		Short:         "Manage the team penalty fund",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagAddr, "addr", "http://localhost:4000", "service base URL")
	root.PersistentFlags().StringVar(&flagToken, "token", os.Getenv("ADMIN_TOKEN"), "admin token for mutating commands")

	root.AddCommand(
		newBalancesCmd(),
		newCatalogCmd(),
		newPenaltyCmd(),
		newPaidCmd(),
		newSyncCmd(),
		newExportCmd(),
		newGroupsCmd(),
	)
	return root
}

func client() *apiClient {
	return newAPIClient(flagAddr, flagToken)
}

func newBalancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balances",
		Short: "Show every player's open total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Balances  []domain.PlayerBalance `json:"balances"`
				TotalOpen domain.Cents           `json:"totalOpen"`
			}
			if err := client().do(cmd.Context(), "GET", "/penalties/balances", nil, &out); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SPIELER\tANZAHL\tOFFEN")
			for _, b := range out.Balances {
				fmt.Fprintf(w, "%s\t%d\t%s\n", b.Player, b.Count, b.Total.Euro())
			}
			fmt.Fprintf(w, "GESAMT\t\t%s\n", out.TotalOpen.Euro())
			return w.Flush()
		},
	}
}

func newCatalogCmd() *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the penalty catalog",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List penalty types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Types []domain.PenaltyType `json:"types"`
			}
			if err := client().do(cmd.Context(), "GET", "/catalog", nil, &out); err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STRAFE\tBETRAG")
			for _, t := range out.Types {
				fmt.Fprintf(w, "%s\t%s\n", t.Name, t.Amount.Euro())
			}
			return w.Flush()
		},
	}

	add := &cobra.Command{
		Use:   "add NAME AMOUNT",
		Short: "Add a penalty type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var entry domain.PenaltyType
			body := map[string]string{"name": args[0], "amount": args[1]}
			if err := client().do(cmd.Context(), "POST", "/catalog", body, &entry); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %q (%s)\n", entry.Name, entry.Amount.Euro())
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a penalty type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client().do(cmd.Context(), "DELETE", "/catalog/"+url.PathEscape(args[0]), nil, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %q\n", args[0])
			return nil
		},
	}

	catalogCmd.AddCommand(list, add, remove)
	return catalogCmd
}

func newPenaltyCmd() *cobra.Command {
	var amount string
	cmd := &cobra.Command{
		Use:   "penalty PLAYER REASON",
		Short: "Assess a manual penalty",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rec domain.PenaltyRecord
			body := map[string]string{"player": args[0], "reason": args[1], "amount": amount}
			if err := client().do(cmd.Context(), "POST", "/penalties", body, &rec); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "assessed %s against %s for %q\n", rec.Amount.Euro(), rec.Player, rec.Reason)
			return nil
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "amount (e.g. 2,50); defaults to the catalog amount for the reason")
	return cmd
}

func newPaidCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paid PLAYER",
		Short: "Settle all open penalties for a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Player string `json:"player"`
				Marked int    `json:"marked"`
			}
			if err := client().do(cmd.Context(), "POST", playerPath(args[0], "/paid"), nil, &out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "settled %d penalties for %s\n", out.Marked, out.Player)
			return nil
		},
	}
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reconcile the attendance feed now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var summary reconcile.Summary
			if err := client().do(cmd.Context(), "POST", "/sync", nil, &summary); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "events checked: %d, new: %d, already assessed: %d, upcoming skipped: %d\n",
				summary.EventsChecked, summary.NewPenalties, summary.AlreadyAssessed, summary.SkippedUpcoming)
			for _, d := range summary.Details {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s (%s)\n", d.Player, d.Event, d.Amount.Euro())
			}
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	var outFile string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the ledger as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if outFile != "" {
				f, err := os.Create(outFile)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			if err := client().download(cmd.Context(), "/penalties/export", out); err != nil {
				return err
			}
			if outFile != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", outFile)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "write the CSV to a file instead of stdout")
	return cmd
}

func newGroupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List scheduling groups visible to the service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Groups []domain.Group `json:"groups"`
			}
			if err := client().do(cmd.Context(), "GET", "/spond/groups", nil, &out); err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME")
			for _, g := range out.Groups {
				fmt.Fprintf(w, "%s\t%s\n", g.ID, g.Name)
			}
			return w.Flush()
		},
	}
}
