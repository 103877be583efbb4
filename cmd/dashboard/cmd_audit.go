package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"brokerops/client/internal/audit"
	"brokerops/client/internal/guard"
)

var (
	auditSearch string
	auditAction string
	auditFrom   string
	auditTo     string
	auditPage   int
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Review the server-recorded audit trail",
	Long: `List audit entries recorded by the server for logins, status changes,
reassignments, and cancellations. Entries are append-only; this command
only reads them.`,
	RunE: runAuditList,
}

func init() {
	auditCmd.Flags().StringVar(&auditSearch, "search", "", "free-text search")
	auditCmd.Flags().StringVar(&auditAction, "action", "", "filter by action kind (e.g. status_changed)")
	auditCmd.Flags().StringVar(&auditFrom, "from", "", "start date (YYYY-MM-DD)")
	auditCmd.Flags().StringVar(&auditTo, "to", "", "end date (YYYY-MM-DD)")
	auditCmd.Flags().IntVar(&auditPage, "page", 1, "page number")
	rootCmd.AddCommand(auditCmd)
}

func parseDateFlag(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s date %q (want YYYY-MM-DD)", name, value)
	}
	return t, nil
}

func runAuditList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := dash.enter(ctx, guard.RouteAuditLog); err != nil {
		return err
	}

	from, err := parseDateFlag("from", auditFrom)
	if err != nil {
		return err
	}
	to, err := parseDateFlag("to", auditTo)
	if err != nil {
		return err
	}

	r := dash.audit
	r.SetSearch(auditSearch)
	r.SetAction(auditAction)
	r.SetDateRange(from, to)
	r.SetPage(auditPage)

	page, err := r.Load(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tWHO\tACTION\tSUBJECT\tDESCRIPTION")
	for i := range page.Entries {
		e := &page.Entries[i]
		who := e.UserName
		if e.System() {
			who = "(system)"
		}
		subject := ""
		if e.SubjectType != "" {
			subject = fmt.Sprintf("%s %d", e.SubjectType, e.SubjectID)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			who, audit.ActionLabel(e.Action), subject, e.Description)
	}
	w.Flush()
	fmt.Printf("page %d of %d (%d entries)\n", page.Meta.CurrentPage, page.Meta.LastPage, page.Meta.Total)
	return nil
}
