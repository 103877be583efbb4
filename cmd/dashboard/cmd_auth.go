package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"brokerops/client/internal/guard"
	"brokerops/client/internal/session"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and persist the session locally",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Invalidate the session and clear local state",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current identity",
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email (prompted when omitted)")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Guest-only: an authenticated user goes to their home, not back to
	// the sign-in form.
	status, ident := dash.store.Snapshot()
	if d := dash.guard.GuestOnly(ctx, status, ident); d.Outcome == guard.OutcomeRedirect {
		fmt.Printf("Already signed in as %s. Your home area is %s.\n", ident.Email, d.Target)
		return nil
	}

	email := strings.TrimSpace(loginEmail)
	if email == "" {
		fmt.Print("Email: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return err
		}
		email = strings.TrimSpace(line)
	}
	password := loginPassword
	if password == "" {
		fmt.Print("Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return err
		}
		password = string(raw)
	}

	who, err := dash.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	dash.store.SetAuthenticated(who)

	home := dash.guard.Home(ctx, who.Role)
	fmt.Printf("Signed in as %s (%s).\n", who.Name, who.Role)
	if home == guard.RouteAdminHome {
		fmt.Println("Continue with `dashboard admin`.")
	} else {
		fmt.Println("Continue with `dashboard tracking`.")
	}
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	// Local state is cleared even when the server call fails; the session
	// cookie may already be dead.
	err := dash.api.Logout(cmd.Context())
	dash.store.Clear()
	if err != nil {
		fmt.Println("Signed out locally; the server could not be reached to invalidate the session.")
		return nil
	}
	fmt.Println("Signed out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	status, ident := dash.store.Snapshot()
	if status != session.StatusAuthenticated {
		fmt.Println("Not signed in.")
		return nil
	}
	fmt.Printf("%s <%s> (%s)\n", ident.Name, ident.Email, ident.Role)
	return nil
}
