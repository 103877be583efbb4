// Command dashboard is the operations dashboard client for the brokerage
// API: staff track import/export transactions through their lifecycle and
// administrators reassign, override, and audit them. Command groups map to
// the application areas, and the same guards that gated screen navigation
// gate command execution.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"brokerops/client/internal/api"
	"brokerops/client/internal/audit"
	"brokerops/client/internal/config"
	"brokerops/client/internal/guard"
	"brokerops/client/internal/policy"
	"brokerops/client/internal/session"
	"brokerops/client/internal/telemetry/otel"
	"brokerops/client/internal/transaction/lifecycle"
	"brokerops/client/internal/transaction/registry"
)

// app holds the wired components shared by every command.
type app struct {
	cfg      *config.Config
	store    *session.Store
	api      *api.Client
	guard    *guard.Guard
	control  *lifecycle.Controller
	audit    *audit.Reader
	shutdown func(context.Context) error
}

var dash *app

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "brokerops-dashboard")
	if err != nil {
		return nil, fmt.Errorf("telemetry setup: %w", err)
	}

	stateDir, err := cfg.ResolveStateDir()
	if err != nil {
		return nil, err
	}
	mirror := session.NewMirror(stateDir, cfg.MirrorLifetime())
	store := session.NewStore(mirror)

	client, err := api.New(cfg.APIBaseURL, cfg.Timeout(),
		api.WithUnauthorizedHook(store.Clear),
		api.WithTelemetry(providers.TracerProvider, providers.MeterProvider),
	)
	if err != nil {
		return nil, err
	}
	store.Restore()

	pol, err := policy.NewOPAEvaluator()
	if err != nil {
		return nil, fmt.Errorf("policy setup: %w", err)
	}

	reg := registry.New(client)
	emitter := otel.NewEventEmitter(providers.LoggerProvider)

	auditReader := audit.NewReader(client, store, pol)
	auditReader.SetPerPage(cfg.PageSize)

	return &app{
		cfg:      cfg,
		store:    store,
		api:      client,
		guard:    guard.New(pol),
		control:  lifecycle.New(client, reg, store, pol, emitter),
		audit:    auditReader,
		shutdown: providers.Shutdown,
	}, nil
}

// enter runs the protected guard for an area. A redirect to login becomes a
// sign-in prompt that names the area the user tried to reach; a redirect
// anywhere else is the silent downgrade to the role's home.
func (a *app) enter(ctx context.Context, area guard.Route) error {
	status, ident := a.store.Snapshot()
	d := a.guard.Protected(ctx, status, ident, area, guard.AllowedRoles[area])
	switch d.Outcome {
	case guard.OutcomeRender:
		return nil
	case guard.OutcomeWait:
		return fmt.Errorf("session is still resolving; try again")
	default:
		if d.Target == guard.RouteLogin {
			return fmt.Errorf("not signed in; run `dashboard login` to continue to %s", d.Attempted)
		}
		return fmt.Errorf("%s is not available to your role; your home area is %s", area, d.Target)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Customs brokerage operations dashboard",
	Long: `dashboard is the terminal client for the brokerage operations API.

Operational staff track import/export transactions; administrators manage
users and clients, reassign encoders, override statuses, and review the
audit trail.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		dash, err = newApp(cmd.Context())
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if dash == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := dash.shutdown(ctx); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	},
	// The bare command behaves like the application root: send the user
	// wherever their session entitles them to go.
	RunE: func(cmd *cobra.Command, args []string) error {
		status, ident := dash.store.Snapshot()
		d := dash.guard.Root(cmd.Context(), status, ident)
		switch d.Target {
		case guard.RouteLogin:
			fmt.Println("Not signed in. Run `dashboard login` to get started.")
		case guard.RouteAdminHome:
			fmt.Printf("Signed in as %s (%s). Your home area is `dashboard admin`.\n", ident.Name, ident.Role)
		default:
			fmt.Printf("Signed in as %s (%s). Your home area is `dashboard tracking`.\n", ident.Name, ident.Role)
		}
		return nil
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
