package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/phaseflow/phaseflow/internal/report"
	"github.com/phaseflow/phaseflow/internal/store"
)

// SummaryOptions holds flags for the summary command.
type SummaryOptions struct {
	*RootOptions
	Database string
	Event    string
}

// RowSummary aggregates one consuming phase's creators.
type RowSummary struct {
	Phase       string        `json:"phase"`
	Invocations uint64        `json:"invocations"`
	Creators    []CreatorStat `json:"creators"`
}

// CreatorStat describes one creating phase's contribution to a consumer.
type CreatorStat struct {
	Phase     string  `json:"phase"`
	SeenNodes uint64  `json:"seen_nodes"`
	Share     float64 `json:"share"` // seen / total, the fraction of the consumer's summed graph size
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SummaryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize which phases feed which",
		Long: `Summarize a compilation event's dependency matrix: for each phase
that ran, the phases whose nodes it consumed, in phase-index order.

Share is seenNodes / totalNodesInPhase for the (creator, consumer) cell:
the fraction of the consumer's summed entry graph size that the creator
contributed across all its runs.

Examples:
  phaseflow summary --db ./phaseflow.db --event evt-42
  phaseflow summary --db ./phaseflow.db --event evt-42 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite report database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Event, "event", "", "compilation event to summarize (required)")
	_ = cmd.MarkFlagRequired("event")

	return cmd
}

func runSummary(opts *SummaryOptions, cmd *cobra.Command) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	rep, err := st.ReadReport(context.Background(), opts.Event)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read report", err)
	}

	rows := Summarize(rep)

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if opts.Format == "json" {
		return out.JSON(rows)
	}
	for _, row := range rows {
		out.Textf("%s (%d invocations)\n", row.Phase, row.Invocations)
		for _, c := range row.Creators {
			out.Textf("  %-40s %8d nodes  %5.1f%%\n", c.Phase, c.SeenNodes, c.Share*100)
		}
	}
	return nil
}

// Summarize folds a report into per-consumer creator statistics. Rows and
// creators follow the phase-index order, so output is stable; rows that
// never ran (sentinel rows, usually) are omitted.
func Summarize(rep report.Report) []RowSummary {
	type key struct{ row, col string }
	cells := make(map[key]report.Cell, len(rep.Cells))
	for _, c := range rep.Cells {
		cells[key{string(c.Row), string(c.Col)}] = c
	}

	var rows []RowSummary
	for _, rk := range rep.Phases {
		row := RowSummary{Phase: string(rk)}
		for _, ck := range rep.Phases {
			c, ok := cells[key{string(rk), string(ck)}]
			if !ok || c.PhaseInvocations == 0 {
				continue
			}
			if c.PhaseInvocations > row.Invocations {
				row.Invocations = c.PhaseInvocations
			}
			stat := CreatorStat{
				Phase:     string(ck),
				SeenNodes: c.SeenNodes,
			}
			if c.TotalNodesInPhase > 0 {
				stat.Share = float64(c.SeenNodes) / float64(c.TotalNodesInPhase)
			}
			row.Creators = append(row.Creators, stat)
		}
		if len(row.Creators) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}
