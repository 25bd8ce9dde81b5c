package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/job-tracker/internal/analytics"
	"github.com/jonathan/job-tracker/internal/render"
)

var analyticsLocal bool

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Summarise your applications: trend, funnel, top companies, roles, tech and CTC",
	Long: `Summarise your applications. By default the server computes the aggregates;
with --local the job list is downloaded and aggregated on this machine.`,
	Args: cobra.NoArgs,
	RunE: runAnalytics,
}

func init() {
	analyticsCmd.Flags().BoolVar(&analyticsLocal, "local", false, "Aggregate on this machine instead of the server")
	rootCmd.AddCommand(analyticsCmd)
}

func runAnalytics(cmd *cobra.Command, _ []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	c, session, err := app.signedIn()
	if err != nil {
		return err
	}

	var result *analytics.Result
	if analyticsLocal {
		user := analytics.Identity{}
		if session.User != nil {
			user = analytics.Identity{ID: session.User.ID, Email: session.User.Email}
		}
		result, err = analytics.Fetch(cmd.Context(), c.RecordSource(), user, app.now())
	} else {
		result, err = c.Analytics(cmd.Context())
	}
	if err != nil {
		return app.checkAuth(err)
	}

	return writeOutput(app.out, app.cfg.Output, result, func() string {
		return render.Analytics(result, app.cfg.Width)
	})
}
