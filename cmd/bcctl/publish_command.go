package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newPublishCommand(ctx *commandContext) *cobra.Command {
	var journalRef string

	cmd := &cobra.Command{
		Use:   "publish <article-id>",
		Short: "Publish an article, minting its DOI from the journal pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			articleID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid article id %q", args[0])
			}

			runCtx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			svc, err := ctx.ensureServices(runCtx)
			if err != nil {
				return err
			}
			journalID, err := ctx.journalID(runCtx, svc, journalRef)
			if err != nil {
				return err
			}
			result, err := svc.publication.Publish(runCtx, journalID, articleID)
			if err != nil {
				return err
			}
			return writeJSON(cmd, result)
		},
	}

	cmd.Flags().StringVarP(&journalRef, "journal", "j", "", "Journal code or ID")
	_ = cmd.MarkFlagRequired("journal")
	return cmd
}
