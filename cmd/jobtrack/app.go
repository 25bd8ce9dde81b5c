package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-tracker/internal/client"
	"github.com/jonathan/job-tracker/internal/config"
	"github.com/jonathan/job-tracker/internal/types"
)

var errNotSignedIn = errors.New("not signed in; run `jobtrack login` first")

// cliApp carries the resolved settings for one command run.
type cliApp struct {
	cfg   config.Config
	store client.SessionStore
	out   io.Writer
	now   func() time.Time
}

// loadSettings resolves configuration with precedence flags > environment >
// config file > defaults.
func loadSettings(cmd *cobra.Command) (config.Config, error) {
	var fileCfg config.Config

	path := rootConfigPath
	explicit := path != ""
	if !explicit {
		if p, err := config.DefaultConfigPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil || explicit {
			loaded, err := config.LoadConfig(path)
			if err != nil {
				return config.Config{}, fmt.Errorf("failed to load config: %w", err)
			}
			if err := loaded.Validate(); err != nil {
				return config.Config{}, err
			}
			fileCfg = *loaded
		}
	}

	if v := os.Getenv("JOBTRACK_API_URL"); v != "" {
		fileCfg.APIURL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" && fileCfg.DatabaseURL == "" {
		fileCfg.DatabaseURL = v
	}
	if cmd.Flags().Changed("api-url") {
		fileCfg.APIURL = rootAPIURL
	}
	if cmd.Flags().Changed("output") {
		fileCfg.Output = rootOutput
	}

	cfg := fileCfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newApp(cmd *cobra.Command) (*cliApp, error) {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	store, err := client.NewSessionStore(cfg)
	if err != nil {
		return nil, err
	}
	return &cliApp{cfg: cfg, store: store, out: cmd.OutOrStdout(), now: time.Now}, nil
}

func (a *cliApp) apiClient() (*client.Client, error) {
	return client.New(a.cfg.APIURL, nil)
}

// signedIn returns a client carrying the stored session's token.
func (a *cliApp) signedIn() (*client.Client, *client.Session, error) {
	route, session := client.Bootstrap(a.store, a.now())
	if route != client.RouteHome {
		return nil, nil, errNotSignedIn
	}
	c, err := a.apiClient()
	if err != nil {
		return nil, nil, err
	}
	c.SetToken(session.Token)
	return c, session, nil
}

// checkAuth drops the stored session when the server no longer accepts it.
func (a *cliApp) checkAuth(err error) error {
	if err == nil || !client.IsUnauthorized(err) {
		return err
	}
	if clearErr := a.store.Clear(); clearErr != nil {
		return fmt.Errorf("session rejected and could not be cleared: %w", clearErr)
	}
	return errors.New("session is no longer valid; run `jobtrack login` again")
}

func (a *cliApp) saveLogin(resp *types.LoginResponse) error {
	err := a.store.Save(&client.Session{
		Token:   resp.Token,
		User:    resp.User,
		SavedAt: a.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (a *cliApp) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}
