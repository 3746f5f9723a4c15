package main

import (
	"context"

	journalapp "github.com/scholarly/backcontent/internal/application/journal"
	"github.com/scholarly/backcontent/internal/domain/journal"
	"github.com/spf13/cobra"
)

func newJournalCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Manage journals",
	}
	cmd.AddCommand(newJournalCreateCommand(ctx))
	cmd.AddCommand(newJournalListCommand(ctx))
	return cmd
}

func newJournalCreateCommand(ctx *commandContext) *cobra.Command {
	var req journalapp.CreateJournalRequest

	cmd := &cobra.Command{
		Use:   "create <code> <name>",
		Short: "Create a journal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			svc, err := ctx.ensureServices(runCtx)
			if err != nil {
				return err
			}
			req.Code, req.Name = args[0], args[1]
			j, err := svc.journals.CreateJournal(runCtx, req)
			if err != nil {
				return err
			}
			return writeJSON(cmd, j)
		},
	}

	cmd.Flags().StringVar(&req.ISSN, "issn", "", "ISSN (NNNN-NNNC)")
	cmd.Flags().StringVar(&req.DOIPrefix, "doi-prefix", "", "Registrant DOI prefix, e.g. 10.1234")
	cmd.Flags().StringVar(&req.DOIPattern, "doi-pattern", "", "DOI suffix pattern (default: "+journal.DefaultDOIPattern+")")
	return cmd
}

func newJournalListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List journals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureServices(cmd.Context())
			if err != nil {
				return err
			}
			journals, err := svc.journals.ListJournals(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd, journals)
		},
	}
}
