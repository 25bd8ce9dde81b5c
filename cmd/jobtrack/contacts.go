package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/job-tracker/internal/client"
	"github.com/jonathan/job-tracker/internal/render"
	"github.com/jonathan/job-tracker/internal/types"
)

var (
	contactsQuery string

	contactName    string
	contactEmail   string
	contactPhone   string
	contactCompany string
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "List and manage networking contacts",
	Args:  cobra.NoArgs,
	RunE:  runContactsList,
}

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contacts, optionally matching search text",
	Args:  cobra.NoArgs,
	RunE:  runContactsList,
}

var contactsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a contact",
	Args:  cobra.NoArgs,
	RunE:  runContactsAdd,
}

var contactsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a contact; fields without a flag keep their value",
	Args:  cobra.ExactArgs(1),
	RunE:  runContactsUpdate,
}

var contactsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a contact",
	Args:  cobra.ExactArgs(1),
	RunE:  runContactsDelete,
}

func init() {
	for _, c := range []*cobra.Command{contactsCmd, contactsListCmd} {
		c.Flags().StringVarP(&contactsQuery, "query", "q", "", "Search name, email, company or phone")
	}
	for _, c := range []*cobra.Command{contactsAddCmd, contactsUpdateCmd} {
		c.Flags().StringVar(&contactName, "name", "", "Full name")
		c.Flags().StringVar(&contactEmail, "email", "", "Email address")
		c.Flags().StringVar(&contactPhone, "phone", "", "10-digit phone number")
		c.Flags().StringVar(&contactCompany, "company", "", "Company")
	}

	contactsCmd.AddCommand(contactsListCmd, contactsAddCmd, contactsUpdateCmd, contactsDeleteCmd)
	rootCmd.AddCommand(contactsCmd)
}

func runContactsList(cmd *cobra.Command, _ []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	c, _, err := app.signedIn()
	if err != nil {
		return err
	}
	contacts, err := c.ListContacts(cmd.Context(), contactsQuery)
	if err != nil {
		return app.checkAuth(err)
	}
	return writeOutput(app.out, app.cfg.Output, contacts, func() string { return render.Contacts(contacts) })
}

func applyContactFlags(cmd *cobra.Command, req *types.ContactRequest) {
	changed := cmd.Flags().Changed
	if changed("name") {
		req.Name = contactName
	}
	if changed("email") {
		req.Email = contactEmail
	}
	if changed("phone") {
		req.PhoneNumber = contactPhone
	}
	if changed("company") {
		req.Company = contactCompany
	}
}

func runContactsAdd(cmd *cobra.Command, _ []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	var req types.ContactRequest
	applyContactFlags(cmd, &req)
	req.Normalize()
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%s", types.ValidationMessage(err))
	}

	c, _, err := app.signedIn()
	if err != nil {
		return err
	}
	contact, err := c.CreateContact(cmd.Context(), req)
	if err != nil {
		return app.checkAuth(err)
	}
	return writeOutput(app.out, app.cfg.Output, contact, func() string {
		return render.Contacts([]types.Contact{*contact})
	})
}

func runContactsUpdate(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	c, _, err := app.signedIn()
	if err != nil {
		return err
	}
	id, err := resolveContactID(cmd.Context(), c, args[0])
	if err != nil {
		return app.checkAuth(err)
	}
	current, err := c.GetContact(cmd.Context(), id)
	if err != nil {
		return app.checkAuth(err)
	}

	req := types.ContactRequest{
		Name:        current.Name,
		Email:       current.Email,
		PhoneNumber: current.PhoneNumber,
		Company:     current.Company,
	}
	applyContactFlags(cmd, &req)
	req.Normalize()
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%s", types.ValidationMessage(err))
	}

	contact, err := c.UpdateContact(cmd.Context(), id, req)
	if err != nil {
		return app.checkAuth(err)
	}
	return writeOutput(app.out, app.cfg.Output, contact, func() string {
		return render.Contacts([]types.Contact{*contact})
	})
}

func runContactsDelete(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	c, _, err := app.signedIn()
	if err != nil {
		return err
	}
	id, err := resolveContactID(cmd.Context(), c, args[0])
	if err != nil {
		return app.checkAuth(err)
	}
	if err := c.DeleteContact(cmd.Context(), id); err != nil {
		return app.checkAuth(err)
	}
	app.printf("Deleted contact %s.\n", id)
	return nil
}

func resolveContactID(ctx context.Context, c *client.Client, arg string) (uuid.UUID, error) {
	if id, err := uuid.Parse(arg); err == nil {
		return id, nil
	}
	contacts, err := c.ListContacts(ctx, "")
	if err != nil {
		return uuid.Nil, err
	}
	ids := make([]uuid.UUID, 0, len(contacts))
	for _, ct := range contacts {
		ids = append(ids, ct.ID)
	}
	return matchPrefix("contact", arg, ids)
}
