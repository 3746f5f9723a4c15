package main

import (
	"fmt"

	identityapp "github.com/scholarly/backcontent/internal/application/identity"
	"github.com/scholarly/backcontent/internal/domain/identity"
	"github.com/spf13/cobra"
)

func newAccountCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts and journal roles",
	}
	cmd.AddCommand(newAccountCreateCommand(ctx))
	cmd.AddCommand(newAccountGrantCommand(ctx))
	return cmd
}

func newAccountCreateCommand(ctx *commandContext) *cobra.Command {
	var req identityapp.CreateAccountRequest

	cmd := &cobra.Command{
		Use:   "create <email>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureServices(cmd.Context())
			if err != nil {
				return err
			}
			req.Email = args[0]
			account, err := svc.accounts.CreateAccount(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeJSON(cmd, account)
		},
	}

	cmd.Flags().StringVar(&req.Password, "password", "", "Login password (min 8 characters)")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&req.MiddleName, "middle-name", "", "Middle name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&req.Institution, "institution", "", "Institution")
	cmd.Flags().StringVar(&req.Department, "department", "", "Department")
	cmd.Flags().StringVar(&req.Country, "country", "", "Country")
	cmd.Flags().StringVar(&req.ORCID, "orcid", "", "ORCID iD")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newAccountGrantCommand(ctx *commandContext) *cobra.Command {
	var journalRef string
	var role string

	cmd := &cobra.Command{
		Use:   "grant <email|account-id>",
		Short: "Grant a journal role to an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := identity.Role(role)
			if r != identity.RoleEditor && r != identity.RoleAuthor {
				return fmt.Errorf("unknown role %q (want %s or %s)", role, identity.RoleEditor, identity.RoleAuthor)
			}

			svc, err := ctx.ensureServices(cmd.Context())
			if err != nil {
				return err
			}
			journalID, err := ctx.journalID(cmd.Context(), svc, journalRef)
			if err != nil {
				return err
			}
			accountID, err := ctx.accountID(cmd.Context(), svc, args[0])
			if err != nil {
				return err
			}
			account, err := svc.accounts.GrantRole(cmd.Context(), *accountID, journalID, r)
			if err != nil {
				return err
			}
			return writeJSON(cmd, account)
		},
	}

	cmd.Flags().StringVarP(&journalRef, "journal", "j", "", "Journal code or ID")
	cmd.Flags().StringVar(&role, "role", string(identity.RoleEditor), "Role to grant")
	_ = cmd.MarkFlagRequired("journal")
	return cmd
}
