package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/phaseflow/phaseflow/internal/report"
	"github.com/phaseflow/phaseflow/internal/store"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Dir      string
	Database string
}

// ImportResult summarizes one import run.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"` // already present in the database
	Failed   []string `json:"failed,omitempty"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import artifact files into a report database",
		Long: `Import loose report artifact files into a SQLite database for
cross-compilation queries.

Importing is idempotent: events already present in the database are
skipped, the first stored report always wins.

Examples:
  phaseflow import --dir ./phaseflow-reports --db ./phaseflow.db`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", "", "report artifact directory (required)")
	_ = cmd.MarkFlagRequired("dir")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite report database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runImport(opts *ImportOptions, cmd *cobra.Command) error {
	entries, err := os.ReadDir(opts.Dir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read report directory", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := context.Background()
	var result ImportResult
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		event, ok := report.EventFromFileName(entry.Name())
		if !ok {
			continue
		}

		if err := importOne(ctx, st, filepath.Join(opts.Dir, entry.Name()), event, &result); err != nil {
			// Log and continue: one corrupt artifact must not abort the
			// rest of the import.
			fmt.Fprintf(cmd.ErrOrStderr(), "import %s: %v\n", entry.Name(), err)
			result.Failed = append(result.Failed, event)
		}
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if opts.Format == "json" {
		if err := out.JSON(result); err != nil {
			return err
		}
	} else {
		out.Textf("imported %d, skipped %d, failed %d\n", result.Imported, result.Skipped, len(result.Failed))
	}

	if len(result.Failed) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d artifacts failed to import", len(result.Failed)))
	}
	return nil
}

// importOne parses and stores a single artifact file.
func importOne(ctx context.Context, st *store.Store, path, event string, result *ImportResult) error {
	artifact, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	rep, err := report.Parse(artifact)
	if err != nil {
		return err
	}
	rep.Event = event

	inserted, err := st.WriteReport(ctx, rep)
	if err != nil {
		return err
	}
	if inserted {
		result.Imported++
	} else {
		result.Skipped++
	}
	return nil
}
