package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/phaseflow/phaseflow/internal/report"
	"github.com/phaseflow/phaseflow/internal/store"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Dir      string
	Database string
}

// ShownReport is the JSON payload of show output.
type ShownReport struct {
	Event  string      `json:"event"`
	Phases []string    `json:"phases"`
	Cells  []ShownCell `json:"cells"`
}

// ShownCell is one nonzero matrix cell in JSON output.
type ShownCell struct {
	Row               string `json:"row"`
	Col               string `json:"col"`
	SeenNodes         uint64 `json:"seen_nodes"`
	TotalNodesInPhase uint64 `json:"total_nodes_in_phase"`
	PhaseInvocations  uint64 `json:"phase_invocations"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <event>",
		Short: "Print the dependency matrix of one compilation event",
		Long: `Print the dependency-matrix report of one finished compilation event.

Text output is the raw artifact (the serialization contract consumers
depend on); JSON output is the parsed matrix with zero cells elided.

Examples:
  phaseflow show --dir ./phaseflow-reports evt-42
  phaseflow show --db ./phaseflow.db evt-42 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", "", "report artifact directory")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite report database")

	return cmd
}

func runShow(opts *ShowOptions, cmd *cobra.Command, event string) error {
	artifact, err := loadArtifact(opts, event)
	if err != nil {
		return err
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if opts.Format != "json" {
		out.Textf("%s", artifact)
		return nil
	}

	rep, err := report.Parse(artifact)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to parse artifact", err)
	}

	shown := ShownReport{Event: event}
	for _, k := range rep.Phases {
		shown.Phases = append(shown.Phases, string(k))
	}
	for _, c := range rep.Cells {
		if c.SeenNodes == 0 && c.TotalNodesInPhase == 0 && c.PhaseInvocations == 0 {
			continue
		}
		shown.Cells = append(shown.Cells, ShownCell{
			Row:               string(c.Row),
			Col:               string(c.Col),
			SeenNodes:         c.SeenNodes,
			TotalNodesInPhase: c.TotalNodesInPhase,
			PhaseInvocations:  c.PhaseInvocations,
		})
	}
	return out.JSON(shown)
}

// loadArtifact fetches the raw artifact from the directory or database,
// preferring the directory when both are given.
func loadArtifact(opts *ShowOptions, event string) ([]byte, error) {
	switch {
	case opts.Dir != "":
		path := filepath.Join(opts.Dir, report.ArtifactFileName(event))
		artifact, err := os.ReadFile(path)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to read artifact", err)
		}
		return artifact, nil

	case opts.Database != "":
		st, err := store.Open(opts.Database)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()

		artifact, err := st.ReadArtifact(context.Background(), event)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to read artifact", err)
		}
		return artifact, nil

	default:
		return nil, NewExitError(ExitCommandError, "one of --dir or --db is required")
	}
}
