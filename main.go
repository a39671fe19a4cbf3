package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"trainload/internal/analysis"
	"trainload/internal/auth"
	"trainload/internal/coachapi"
	"trainload/internal/config"
	"trainload/internal/logging"
	"trainload/internal/service"
	"trainload/internal/store"
	"trainload/internal/tui"
)

var (
	configPath string
	dbPath     string
	verbose    bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "trainload",
		Short:         "Weekly training load, monotony and strain from your coaching sessions",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTUICmd,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", config.DefaultDBPath(), "SQLite database file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "also write logs to stdout (not in the TUI)")

	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newWeekCmd())
	rootCmd.AddCommand(newLogCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// appEnv is what every command needs: configuration, logging and the local store
type appEnv struct {
	cfg     *config.Config
	offline bool // no usable API credentials
	db      *store.DB
	logs    io.Closer
}

func openEnv(ctx context.Context, logToStdout bool) (*appEnv, error) {
	cfg, err := config.LoadFrom(configPath)
	if errors.Is(err, config.ErrNoConfig) {
		defaults := config.DefaultConfig()
		cfg = &defaults
	} else if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logs := logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.Log.File,
		LogToStdout:   logToStdout,
		LogLevel:      cfg.Log.Level,
		LogFormatJSON: cfg.Log.JSON,
	})

	env := &appEnv{cfg: cfg, logs: logs}
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Info("running offline")
		env.offline = true
	}

	db, err := store.Open(ctx, dbPath)
	if err != nil {
		logs.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	env.db = db

	return env, nil
}

func (e *appEnv) Close() {
	if e.db != nil {
		e.db.Close()
	}
	e.logs.Close()
}

func (e *appEnv) oauthConfig() *oauth2.Config {
	return auth.NewOAuthConfig(auth.Config{
		ClientID:     e.cfg.API.ClientID,
		ClientSecret: e.cfg.API.ClientSecret,
		AuthURL:      e.cfg.API.AuthURL,
		TokenURL:     e.cfg.API.TokenURL,
		RedirectURL:  auth.RedirectURL(auth.CallbackPort),
	})
}

// client returns an authenticated API client, running the OAuth flow when no
// usable token is stored and interactive is set
func (e *appEnv) client(ctx context.Context, interactive bool) (*coachapi.Client, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("API access needs credentials in %s: %w", configPath, err)
	}

	storedAuth, err := e.db.GetAuth(ctx)
	if errors.Is(err, store.ErrNoAuth) {
		if !interactive {
			return nil, errors.New("not logged in; run 'trainload login'")
		}
		fmt.Println("No authentication found. Starting OAuth flow...")
		if storedAuth, err = e.authenticate(ctx); err != nil {
			return nil, fmt.Errorf("authentication: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("checking auth: %w", err)
	}

	tokenSource := e.tokenSource(storedAuth)

	// Test token is valid by getting a fresh one
	if _, err := tokenSource.Token(); err != nil {
		if !interactive {
			return nil, fmt.Errorf("stored token is no longer valid, run 'trainload login': %w", err)
		}
		fmt.Println("Stored token is invalid or expired. Re-authenticating...")
		if storedAuth, err = e.authenticate(ctx); err != nil {
			return nil, fmt.Errorf("re-authentication: %w", err)
		}
		tokenSource = e.tokenSource(storedAuth)
	}

	return coachapi.NewClient(e.cfg.API.BaseURL, tokenSource), nil
}

// tokenSource refreshes the stored token as needed and writes refreshed tokens back
func (e *appEnv) tokenSource(a *store.Auth) *auth.TokenSource {
	token := &oauth2.Token{
		AccessToken:  a.AccessToken,
		RefreshToken: a.RefreshToken,
		Expiry:       a.ExpiresAt,
	}
	return auth.NewTokenSource(e.oauthConfig(), token, func(newToken *oauth2.Token) error {
		return e.db.UpdateTokens(context.Background(), newToken.AccessToken, newToken.RefreshToken, newToken.Expiry)
	})
}

func (e *appEnv) authenticate(ctx context.Context) (*store.Auth, error) {
	result, err := auth.Authenticate(ctx, e.oauthConfig(), os.Stdout)
	if err != nil {
		return nil, err
	}

	storedAuth := &store.Auth{
		AthleteID:    result.AthleteID,
		AccessToken:  result.Token.AccessToken,
		RefreshToken: result.Token.RefreshToken,
		ExpiresAt:    result.Token.Expiry,
	}
	if err := e.db.SaveAuth(ctx, storedAuth); err != nil {
		return nil, fmt.Errorf("saving auth: %w", err)
	}

	fmt.Println()
	fmt.Printf("Successfully authenticated as athlete %d!\n", result.AthleteID)
	return storedAuth, nil
}

func runTUICmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	env, err := openEnv(ctx, false)
	if err != nil {
		return err
	}
	defer env.Close()

	clock := analysis.SystemClock{}
	querySvc := service.NewQueryService(env.db, clock)

	var syncSvc *service.SyncService
	if !env.offline {
		client, err := env.client(ctx, true)
		if err != nil {
			return err
		}
		syncSvc = service.NewSyncService(client, env.db, env.cfg.Athlete, clock)
	}

	app := tui.NewApp(querySvc, syncSvc, env.cfg.Display)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
