package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/phaseflow/phaseflow/internal/report"
	"github.com/phaseflow/phaseflow/internal/store"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Dir      string
	Database string
}

// ListedEvent is one row of list output.
type ListedEvent struct {
	Event      string `json:"event"`
	PhaseCount int    `json:"phase_count,omitempty"`
	Source     string `json:"source"` // "file" or "db"
	ImportedAt string `json:"imported_at,omitempty"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List finished compilation events",
		Long: `List compilation events with a finished dependency-matrix report.

Reads artifact files from a report directory, a query database, or both.

Examples:
  phaseflow list --dir ./phaseflow-reports
  phaseflow list --db ./phaseflow.db
  phaseflow list --dir ./phaseflow-reports --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", "", "report artifact directory")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite report database")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	if opts.Dir == "" && opts.Database == "" {
		return NewExitError(ExitCommandError, "one of --dir or --db is required")
	}

	var events []ListedEvent

	if opts.Dir != "" {
		fromDir, err := listDir(opts.Dir)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read report directory", err)
		}
		events = append(events, fromDir...)
	}

	if opts.Database != "" {
		fromDB, err := listDatabase(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read report database", err)
		}
		events = append(events, fromDB...)
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].Event != events[j].Event {
			return events[i].Event < events[j].Event
		}
		return events[i].Source < events[j].Source
	})

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if opts.Format == "json" {
		return out.JSON(events)
	}
	if len(events) == 0 {
		out.Textf("no reports found\n")
		return nil
	}
	for _, e := range events {
		if e.PhaseCount > 0 {
			out.Textf("%s\t%s\t%d phases\n", e.Event, e.Source, e.PhaseCount)
		} else {
			out.Textf("%s\t%s\n", e.Event, e.Source)
		}
	}
	return nil
}

// listDir enumerates artifact files following the depmat-<event>.txt
// naming scheme. Other files are ignored.
func listDir(dir string) ([]ListedEvent, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var events []ListedEvent
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		event, ok := report.EventFromFileName(entry.Name())
		if !ok {
			continue
		}
		events = append(events, ListedEvent{Event: event, Source: "file"})
	}
	return events, nil
}

// listDatabase enumerates events stored in a report database.
func listDatabase(path string) ([]ListedEvent, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	summaries, err := st.ListEvents(context.Background())
	if err != nil {
		return nil, err
	}

	events := make([]ListedEvent, 0, len(summaries))
	for _, s := range summaries {
		events = append(events, ListedEvent{
			Event:      s.Event,
			PhaseCount: s.PhaseCount,
			Source:     "db",
			ImportedAt: time.Unix(s.ImportedAt, 0).UTC().Format(time.RFC3339),
		})
	}
	return events, nil
}
