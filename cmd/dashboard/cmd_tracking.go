package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"brokerops/client/internal/api"
	"brokerops/client/internal/guard"
	txdomain "brokerops/client/internal/transaction/domain"
	"brokerops/client/internal/transaction/registry"
)

var (
	trackType   string
	trackStatus string
	trackSearch string
	trackPage   int

	cancelReason string
)

var trackingCmd = &cobra.Command{
	Use:   "tracking",
	Short: "Operational tracking dashboard",
	RunE:  runTrackingList,
}

var trackingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions",
	RunE:  runTrackingList,
}

var trackingCancelCmd = &cobra.Command{
	Use:   "cancel <import|export> <id>",
	Short: "Cancel a transaction with a reason",
	Long: `Cancel a pending or in-progress transaction. The reason is required and is
recorded verbatim in the audit trail. Available to the transaction's own
assignee and to administrators.`,
	Args: cobra.ExactArgs(2),
	RunE: runCancel,
}

func init() {
	for _, c := range []*cobra.Command{trackingCmd, trackingListCmd} {
		c.Flags().StringVar(&trackType, "type", "", "filter by type (import|export)")
		c.Flags().StringVar(&trackStatus, "status", "", "filter by status (pending|in_progress|completed|cancelled)")
		c.Flags().StringVar(&trackSearch, "search", "", "match reference, B/L, client, or assignee")
		c.Flags().IntVar(&trackPage, "page", 1, "page number")
	}
	trackingCancelCmd.Flags().StringVar(&cancelReason, "reason", "", "cancellation reason (required)")

	trackingCmd.AddCommand(trackingListCmd, trackingCancelCmd)
	rootCmd.AddCommand(trackingCmd)
}

func parseTypeArg(s string) (txdomain.Type, error) {
	if s == "" {
		return "", nil
	}
	return txdomain.ParseType(s)
}

func parseStatusArg(s string) (txdomain.Status, error) {
	if s == "" {
		return "", nil
	}
	return txdomain.ParseStatus(s)
}

func runTrackingList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := dash.enter(ctx, guard.RouteOperationalHome); err != nil {
		return err
	}

	t, err := parseTypeArg(trackType)
	if err != nil {
		return err
	}
	st, err := parseStatusArg(trackStatus)
	if err != nil {
		return err
	}

	page, err := dash.control.ListFiltered(ctx, t, st, trackSearch, trackPage)
	if err != nil {
		return err
	}
	printTransactionPage(page, st, trackSearch)
	return nil
}

func runCancel(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := dash.enter(ctx, guard.RouteOperationalHome); err != nil {
		// Admins reach cancel through their own area.
		if adminErr := dash.enter(ctx, guard.RouteAdminHome); adminErr != nil {
			return err
		}
	}

	t, id, err := parseRecordArgs(args)
	if err != nil {
		return err
	}
	tx, err := findTransaction(ctx, t, id)
	if err != nil {
		return err
	}
	if err := dash.control.Cancel(ctx, tx, cancelReason); err != nil {
		return err
	}
	fmt.Printf("Transaction %s %d cancelled.\n", t, id)
	return nil
}

func parseRecordArgs(args []string) (txdomain.Type, int, error) {
	t, err := txdomain.ParseType(args[0])
	if err != nil {
		return "", 0, err
	}
	id, err := strconv.Atoi(args[1])
	if err != nil || id <= 0 {
		return "", 0, fmt.Errorf("invalid transaction id %q", args[1])
	}
	return t, id, nil
}

// findTransaction locates the record in the first listing page for its type.
// Mutations need the current cached copy so optimistic updates and rollbacks
// operate on real server state.
func findTransaction(ctx context.Context, t txdomain.Type, id int) (*txdomain.Transaction, error) {
	for page := 1; ; page++ {
		listing, err := dash.control.ListFiltered(ctx, t, "", "", page)
		if err != nil {
			return nil, err
		}
		for i := range listing.Data {
			if listing.Data[i].ID == id {
				return &listing.Data[i], nil
			}
		}
		if len(listing.Data) == 0 || page*len(listing.Data) >= listing.Total {
			return nil, fmt.Errorf("transaction %s %d not found", t, id)
		}
	}
}

func printTransactionPage(page *api.TransactionPage, st txdomain.Status, search string) {
	rows := page.Data
	if st != "" || search != "" {
		rows = registry.Narrow(page, st, search)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tREFERENCE\tB/L\tCLIENT\tSTATUS\tASSIGNED TO")
	for i := range rows {
		tx := &rows[i]
		assigned := tx.AssignedTo
		if tx.AssignedUserID == 0 {
			assigned = "(unassigned)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			tx.ID, tx.Type, tx.ReferenceNumber, tx.BLNumber, tx.ClientName, tx.Status, assigned)
	}
	w.Flush()
	// Totals always come from the server, not the narrowed subset.
	fmt.Printf("%d of %d transactions (%d imports, %d exports)\n",
		len(rows), page.Total, page.ImportsCount, page.ExportsCount)
}
