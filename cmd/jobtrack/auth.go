package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-tracker/internal/analytics"
	"github.com/jonathan/job-tracker/internal/client"
	"github.com/jonathan/job-tracker/internal/config"
	"github.com/jonathan/job-tracker/internal/render"
	"github.com/jonathan/job-tracker/internal/types"
)

var (
	authName     string
	authEmail    string
	authPassword string
	authConfirm  string
	authCode     string
	logoutPurge  bool

	pwCurrent string
	pwNew     string
	pwConfirm string
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account",
	Long:  "Creates a pending account and sends a verification code. Finish with `jobtrack verify`.",
	Args:  cobra.NoArgs,
	RunE:  runSignup,
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Confirm a pending account with its verification code and sign in",
	Args:  cobra.NoArgs,
	RunE:  runVerify,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the home screen: totals, recent and upcoming applications",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change your password",
	Args:  cobra.NoArgs,
	RunE:  runPassword,
}

func init() {
	signupCmd.Flags().StringVar(&authName, "name", "", "Full name")
	signupCmd.Flags().StringVar(&authEmail, "email", "", "Email address")
	signupCmd.Flags().StringVar(&authPassword, "password", "", "Password (prompted when omitted)")
	signupCmd.Flags().StringVar(&authConfirm, "confirm-password", "", "Password again (prompted when omitted)")

	verifyCmd.Flags().StringVar(&authEmail, "email", "", "Email address used at signup")
	verifyCmd.Flags().StringVar(&authCode, "code", "", "Verification code")

	loginCmd.Flags().StringVar(&authEmail, "email", "", "Email address")
	loginCmd.Flags().StringVar(&authPassword, "password", "", "Password (prompted when omitted)")

	logoutCmd.Flags().BoolVar(&logoutPurge, "purge", false, "Also remove session files and keychain entries for every session store")

	passwordCmd.Flags().StringVar(&pwCurrent, "current", "", "Current password (prompted when omitted)")
	passwordCmd.Flags().StringVar(&pwNew, "new", "", "New password (prompted when omitted)")
	passwordCmd.Flags().StringVar(&pwConfirm, "confirm", "", "New password again (prompted when omitted)")

	rootCmd.AddCommand(signupCmd, verifyCmd, loginCmd, logoutCmd, statusCmd, passwordCmd)
}

func runSignup(cmd *cobra.Command, _ []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	p := newPrompter(cmd)
	req := types.SignupRequest{}
	if req.Name, err = p.valueOr(authName, "Name"); err != nil {
		return err
	}
	if req.Email, err = p.valueOr(authEmail, "Email"); err != nil {
		return err
	}
	if req.Password, err = p.valueOr(authPassword, "Password"); err != nil {
		return err
	}
	if req.ConfirmPassword, err = p.valueOr(authConfirm, "Confirm password"); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%s", types.ValidationMessage(err))
	}

	c, err := app.apiClient()
	if err != nil {
		return err
	}
	resp, err := c.Signup(cmd.Context(), req)
	if err != nil {
		return err
	}
	app.printf("%s\nVerification code sent to %s; it expires %s.\nRun `jobtrack verify --email %s --code <code>` to finish.\n",
		resp.Message, resp.Email, resp.ExpiresAt.Local().Format("2006-01-02 15:04"), resp.Email)
	return nil
}

func runVerify(cmd *cobra.Command, _ []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	p := newPrompter(cmd)
	req := types.VerifyRequest{}
	if req.Email, err = p.valueOr(authEmail, "Email"); err != nil {
		return err
	}
	if req.Code, err = p.valueOr(authCode, "Verification code"); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%s", types.ValidationMessage(err))
	}

	c, err := app.apiClient()
	if err != nil {
		return err
	}
	resp, err := c.Verify(cmd.Context(), req)
	if err != nil {
		return err
	}
	if err := app.saveLogin(resp); err != nil {
		return err
	}
	app.printf("Account verified. Signed in as %s.\n", resp.User.Email)
	return nil
}

func runLogin(cmd *cobra.Command, _ []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	p := newPrompter(cmd)
	req := types.LoginRequest{}
	if req.Email, err = p.valueOr(authEmail, "Email"); err != nil {
		return err
	}
	if req.Password, err = p.valueOr(authPassword, "Password"); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%s", types.ValidationMessage(err))
	}

	c, err := app.apiClient()
	if err != nil {
		return err
	}
	resp, err := c.Login(cmd.Context(), req)
	if err != nil {
		return err
	}
	if err := app.saveLogin(resp); err != nil {
		return err
	}
	app.printf("Signed in as %s.\n", resp.User.Email)
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	stores := []client.SessionStore{app.store}
	if logoutPurge {
		stores = purgeTargets(app.cfg)
	}
	if err := client.SignOut(logoutPurge, stores...); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	app.printf("Signed out.\n")
	return nil
}

// purgeTargets lists every session store the configuration could point at.
func purgeTargets(cfg config.Config) []client.SessionStore {
	var stores []client.SessionStore
	if cfg.SessionFile != "" {
		stores = append(stores, client.NewFileStore(cfg.SessionFile))
	}
	if kr, err := client.NewKeyringStore(cfg.KeyringAccount); err == nil {
		stores = append(stores, kr)
	}
	return stores
}

// homeScreen is the data behind `jobtrack status`.
type homeScreen struct {
	User      *types.User          `json:"user"`
	Dashboard *analytics.Dashboard `json:"dashboard"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	c, _, err := app.signedIn()
	if errors.Is(err, errNotSignedIn) {
		app.printf("Not signed in. Run `jobtrack login` or `jobtrack signup`.\n")
		return nil
	}
	if err != nil {
		return err
	}

	home, err := loadHome(cmd.Context(), c)
	if err != nil {
		return app.checkAuth(err)
	}
	return writeOutput(app.out, app.cfg.Output, home, func() string {
		return render.Dashboard(home.Dashboard, home.User)
	})
}

func loadHome(ctx context.Context, c *client.Client) (*homeScreen, error) {
	home := &homeScreen{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		user, err := c.Me(gctx)
		if err != nil {
			return err
		}
		home.User = user
		return nil
	})
	g.Go(func() error {
		dashboard, err := c.Dashboard(gctx)
		if err != nil {
			return err
		}
		home.Dashboard = dashboard
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return home, nil
}

func runPassword(cmd *cobra.Command, _ []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	c, _, err := app.signedIn()
	if err != nil {
		return err
	}
	p := newPrompter(cmd)
	req := types.UpdatePasswordRequest{}
	if req.CurrentPassword, err = p.valueOr(pwCurrent, "Current password"); err != nil {
		return err
	}
	if req.NewPassword, err = p.valueOr(pwNew, "New password"); err != nil {
		return err
	}
	if req.ConfirmPassword, err = p.valueOr(pwConfirm, "Confirm new password"); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%s", types.ValidationMessage(err))
	}

	if err := c.ChangePassword(cmd.Context(), req); err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Message == "current password is incorrect" {
			return errors.New(apiErr.Message)
		}
		return app.checkAuth(err)
	}
	app.printf("Password updated.\n")
	return nil
}
