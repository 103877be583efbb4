package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"brokerops/client/internal/api"
	clientdomain "brokerops/client/internal/client/domain"
	"brokerops/client/internal/guard"
	txdomain "brokerops/client/internal/transaction/domain"
	userdomain "brokerops/client/internal/user/domain"
)

var (
	overrideStatusFlag string

	userSearch   string
	userRoleFlag string
	userPage     int
	newUserEmail string
	newUserName  string
	newUserRole  string
	newUserPass  string

	clientSearch string
	clientType   string
	clientPage   int
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative oversight",
	RunE:  runAdminList,
}

var adminListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions for oversight",
	RunE:  runAdminList,
}

var adminAssignCmd = &cobra.Command{
	Use:   "assign <import|export> <id> <user-id>",
	Short: "Reassign a transaction to another encoder",
	Args:  cobra.ExactArgs(3),
	RunE:  runAssign,
}

var adminOverrideCmd = &cobra.Command{
	Use:   "override <import|export> <id>",
	Short: "Force-set a transaction's status",
	Long: `Set a transaction to any status regardless of its current one, bypassing
the normal forward-only flow. Setting the current status is a no-op.`,
	Args: cobra.ExactArgs(2),
	RunE: runOverride,
}

var adminEncodersCmd = &cobra.Command{
	Use:   "encoders",
	Short: "List users that can be assigned transactions",
	RunE:  runEncoders,
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage staff accounts",
	RunE:  runUsersList,
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List staff accounts",
	RunE:  runUsersList,
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a staff account",
	RunE:  runUsersCreate,
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a staff account",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersUpdate,
}

var usersActivateCmd = &cobra.Command{
	Use:   "activate <id>",
	Short: "Reactivate a staff account",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setUserActive(cmd, args, true) },
}

var usersDeactivateCmd = &cobra.Command{
	Use:   "deactivate <id>",
	Short: "Deactivate a staff account",
	Long: `Deactivate a staff account. Accounts are never deleted; a deactivated user
disappears from the assignee list but keeps their history and audit entries.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error { return setUserActive(cmd, args, false) },
}

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "List shipper/importer parties",
	RunE:  runClientsList,
}

func init() {
	for _, c := range []*cobra.Command{adminCmd, adminListCmd} {
		c.Flags().StringVar(&trackType, "type", "", "filter by type (import|export)")
		c.Flags().StringVar(&trackStatus, "status", "", "filter by status")
		c.Flags().StringVar(&trackSearch, "search", "", "match reference, B/L, client, or assignee")
		c.Flags().IntVar(&trackPage, "page", 1, "page number")
	}
	adminOverrideCmd.Flags().StringVar(&overrideStatusFlag, "to", "", "new status (required)")

	for _, c := range []*cobra.Command{usersCmd, usersListCmd} {
		c.Flags().StringVar(&userSearch, "search", "", "match name or email")
		c.Flags().StringVar(&userRoleFlag, "role", "", "filter by role")
		c.Flags().IntVar(&userPage, "page", 1, "page number")
	}
	usersCreateCmd.Flags().StringVar(&newUserEmail, "email", "", "account email (required)")
	usersCreateCmd.Flags().StringVar(&newUserName, "name", "", "display name (required)")
	usersCreateCmd.Flags().StringVar(&newUserRole, "role", "", "role: encoder|broker|supervisor|manager|admin (required)")
	usersCreateCmd.Flags().StringVar(&newUserPass, "password", "", "initial password (server generates one when omitted)")
	usersUpdateCmd.Flags().StringVar(&newUserEmail, "email", "", "account email (required)")
	usersUpdateCmd.Flags().StringVar(&newUserName, "name", "", "display name (required)")
	usersUpdateCmd.Flags().StringVar(&newUserRole, "role", "", "role (required)")
	usersUpdateCmd.Flags().StringVar(&newUserPass, "password", "", "new password (unchanged when omitted)")

	clientsCmd.Flags().StringVar(&clientSearch, "search", "", "match client name")
	clientsCmd.Flags().StringVar(&clientType, "type", "", "filter by party type (importer|exporter|both)")
	clientsCmd.Flags().IntVar(&clientPage, "page", 1, "page number")

	usersCmd.AddCommand(usersListCmd, usersCreateCmd, usersUpdateCmd, usersActivateCmd, usersDeactivateCmd)
	adminCmd.AddCommand(adminListCmd, adminAssignCmd, adminOverrideCmd, adminEncodersCmd, usersCmd, clientsCmd)
	rootCmd.AddCommand(adminCmd)
}

func runAdminList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := dash.enter(ctx, guard.RouteAdminHome); err != nil {
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

func runAssign(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := dash.enter(ctx, guard.RouteAdminHome); err != nil {
		return err
	}

	t, id, err := parseRecordArgs(args[:2])
	if err != nil {
		return err
	}
	userID, err := strconv.Atoi(args[2])
	if err != nil || userID <= 0 {
		return fmt.Errorf("invalid user id %q", args[2])
	}

	tx, err := findTransaction(ctx, t, id)
	if err != nil {
		return err
	}
	if err := dash.control.Reassign(ctx, tx, userID); err != nil {
		return err
	}
	fmt.Printf("Transaction %s %d assigned to %s.\n", t, id, tx.AssignedTo)
	return nil
}

func runOverride(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := dash.enter(ctx, guard.RouteAdminHome); err != nil {
		return err
	}

	t, id, err := parseRecordArgs(args)
	if err != nil {
		return err
	}
	st, err := txdomain.ParseStatus(overrideStatusFlag)
	if err != nil {
		return err
	}

	tx, err := findTransaction(ctx, t, id)
	if err != nil {
		return err
	}
	if err := dash.control.OverrideStatus(ctx, tx, st); err != nil {
		return err
	}
	fmt.Printf("Transaction %s %d is now %s.\n", t, id, tx.Status)
	return nil
}

func runEncoders(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := dash.enter(ctx, guard.RouteAdminHome); err != nil {
		return err
	}

	users, err := dash.control.Assignees(ctx)
	if err != nil {
		return err
	}
	printUsers(users)
	return nil
}

func runUsersList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := dash.enter(ctx, guard.RouteAdminUsers); err != nil {
		return err
	}

	page, err := dash.api.ListUsers(ctx, api.UserQuery{
		Search: userSearch,
		Role:   userdomain.Role(userRoleFlag),
		Page:   userPage,
	})
	if err != nil {
		return err
	}
	printUsers(page.Data)
	fmt.Printf("%d of %d users\n", len(page.Data), page.Total)
	return nil
}

func runUsersCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := dash.enter(ctx, guard.RouteAdminUsers); err != nil {
		return err
	}

	role := userdomain.Role(newUserRole)
	if !role.Known() {
		return fmt.Errorf("unknown role %q", newUserRole)
	}
	created, err := dash.api.CreateUser(ctx, api.NewUser{
		Email:    newUserEmail,
		Name:     newUserName,
		Role:     role,
		Password: newUserPass,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created user %d: %s <%s> (%s)\n", created.ID, created.Name, created.Email, created.Role)
	return nil
}

func runUsersUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := dash.enter(ctx, guard.RouteAdminUsers); err != nil {
		return err
	}

	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid user id %q", args[0])
	}
	// The edit payload replaces the whole account record, so every field
	// must be supplied.
	if newUserEmail == "" || newUserName == "" {
		return fmt.Errorf("--email and --name are required")
	}
	if !userdomain.Role(newUserRole).Known() {
		return fmt.Errorf("unknown role %q", newUserRole)
	}
	updated, err := dash.api.UpdateUser(ctx, id, api.NewUser{
		Email:    newUserEmail,
		Name:     newUserName,
		Role:     userdomain.Role(newUserRole),
		Password: newUserPass,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Updated user %d: %s <%s> (%s)\n", updated.ID, updated.Name, updated.Email, updated.Role)
	return nil
}

func setUserActive(cmd *cobra.Command, args []string, active bool) error {
	ctx := cmd.Context()
	if err := dash.enter(ctx, guard.RouteAdminUsers); err != nil {
		return err
	}

	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid user id %q", args[0])
	}
	if err := dash.api.SetUserActive(ctx, id, active); err != nil {
		return err
	}
	if active {
		fmt.Printf("User %d activated.\n", id)
	} else {
		fmt.Printf("User %d deactivated.\n", id)
	}
	return nil
}

func runClientsList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := dash.enter(ctx, guard.RouteAdminClients); err != nil {
		return err
	}

	page, err := dash.api.ListClients(ctx, api.ClientQuery{
		Search: clientSearch,
		Type:   clientdomain.PartyType(clientType),
		Page:   clientPage,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tCOUNTRY\tACTIVE")
	for i := range page.Data {
		c := &page.Data[i]
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n", c.ID, c.Name, c.Type, c.Country, c.Active)
	}
	w.Flush()
	fmt.Printf("%d of %d clients\n", len(page.Data), page.Total)
	return nil
}

func printUsers(users []userdomain.User) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tACTIVE")
	for i := range users {
		u := &users[i]
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n", u.ID, u.Name, u.Email, u.Role, u.Active)
	}
	w.Flush()
}
