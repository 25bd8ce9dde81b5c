package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-tracker/internal/render"
	"github.com/jonathan/job-tracker/internal/types"
)

var (
	profileName       string
	profileJobTitle   string
	profileLocation   string
	profileExperience int
	profileSkills     string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update your profile",
	Args:  cobra.NoArgs,
	RunE:  runProfileShow,
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	Args:  cobra.NoArgs,
	RunE:  runProfileShow,
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile fields; fields without a flag keep their value",
	Args:  cobra.NoArgs,
	RunE:  runProfileUpdate,
}

func init() {
	f := profileUpdateCmd.Flags()
	f.StringVar(&profileName, "name", "", "Full name")
	f.StringVar(&profileJobTitle, "job-title", "", "Current or target job title")
	f.StringVar(&profileLocation, "location", "", "Location")
	f.IntVar(&profileExperience, "experience", 0, "Years of experience")
	f.StringVar(&profileSkills, "skills", "", "Comma-separated skills")

	profileCmd.AddCommand(profileShowCmd, profileUpdateCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileShow(cmd *cobra.Command, _ []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	c, _, err := app.signedIn()
	if err != nil {
		return err
	}
	user, err := c.Me(cmd.Context())
	if err != nil {
		return app.checkAuth(err)
	}
	return writeOutput(app.out, app.cfg.Output, user, func() string { return render.Profile(user) })
}

func runProfileUpdate(cmd *cobra.Command, _ []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	c, _, err := app.signedIn()
	if err != nil {
		return err
	}
	current, err := c.Me(cmd.Context())
	if err != nil {
		return app.checkAuth(err)
	}

	req := profileRequest(current)
	flags := cmd.Flags()
	if flags.Changed("name") {
		req.Name = profileName
	}
	if flags.Changed("job-title") {
		req.JobTitle = profileJobTitle
	}
	if flags.Changed("location") {
		req.Location = profileLocation
	}
	if flags.Changed("experience") {
		years := profileExperience
		req.Experience = &years
	}
	if flags.Changed("skills") {
		req.Skills = types.ParseList(profileSkills)
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%s", types.ValidationMessage(err))
	}

	user, err := c.UpdateProfile(cmd.Context(), req)
	if err != nil {
		return app.checkAuth(err)
	}
	return writeOutput(app.out, app.cfg.Output, user, func() string { return render.Profile(user) })
}

func profileRequest(u *types.User) types.UpdateProfileRequest {
	return types.UpdateProfileRequest{
		Name:       u.Name,
		JobTitle:   u.JobTitle,
		Location:   u.Location,
		Experience: u.Experience,
		Skills:     u.Skills,
	}
}
