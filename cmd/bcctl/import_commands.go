package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/application/backcontent"
	"github.com/spf13/cobra"
)

type importFlags struct {
	journal string
	as      string
}

func (f *importFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.journal, "journal", "j", "", "Journal code or ID")
	cmd.Flags().StringVar(&f.as, "as", "", "Email or ID recorded as the creating editor")
	_ = cmd.MarkFlagRequired("journal")
}

type importFunc func(ctx context.Context, svc *services, f *importFlags, arg string) (*backcontent.ImportResult, error)

func newImportCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create back content articles from external metadata",
	}
	cmd.AddCommand(newImportSubcommand(ctx, "doi <doi>", "Import an article registered with Crossref", importDOI(ctx)))
	cmd.AddCommand(newImportSubcommand(ctx, "url <url>", "Import an article from a page's citation meta tags", importURL(ctx)))
	cmd.AddCommand(newImportSubcommand(ctx, "jats <file.xml>", "Import an article from a JATS XML file", importJATS(ctx)))
	return cmd
}

func newImportSubcommand(ctx *commandContext, use, short string, run importFunc) *cobra.Command {
	var flags importFlags

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			svc, err := ctx.ensureServices(runCtx)
			if err != nil {
				return err
			}
			result, err := run(runCtx, svc, &flags, args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd, result)
		},
	}
	flags.register(cmd)
	return cmd
}

func importDOI(c *commandContext) importFunc {
	return func(ctx context.Context, svc *services, f *importFlags, doi string) (*backcontent.ImportResult, error) {
		journalID, createdBy, err := c.importTarget(ctx, svc, f)
		if err != nil {
			return nil, err
		}
		return svc.imports.ImportDOI(ctx, journalID, createdBy, doi)
	}
}

func importURL(c *commandContext) importFunc {
	return func(ctx context.Context, svc *services, f *importFlags, pageURL string) (*backcontent.ImportResult, error) {
		journalID, createdBy, err := c.importTarget(ctx, svc, f)
		if err != nil {
			return nil, err
		}
		return svc.imports.ImportURL(ctx, journalID, createdBy, pageURL)
	}
}

func importJATS(c *commandContext) importFunc {
	return func(ctx context.Context, svc *services, f *importFlags, path string) (*backcontent.ImportResult, error) {
		journalID, createdBy, err := c.importTarget(ctx, svc, f)
		if err != nil {
			return nil, err
		}

		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		info, err := file.Stat()
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", path)
		}

		return svc.imports.ImportJATS(ctx, journalID, createdBy, backcontent.GalleyFile{
			Name:        filepath.Base(path),
			ContentType: "application/xml",
			Size:        info.Size(),
			Body:        file,
		})
	}
}

func (c *commandContext) importTarget(ctx context.Context, svc *services, f *importFlags) (uuid.UUID, *uuid.UUID, error) {
	journalID, err := c.journalID(ctx, svc, f.journal)
	if err != nil {
		return uuid.Nil, nil, err
	}
	createdBy, err := c.accountID(ctx, svc, f.as)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return journalID, createdBy, nil
}
