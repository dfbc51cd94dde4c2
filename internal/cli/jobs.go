package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"syncline/internal/model"
	"syncline/internal/mutate"

	"github.com/spf13/cobra"
)

func newJobsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Data job commands",
	}
	cmd.AddCommand(newJobsCreateCmd(app))
	cmd.AddCommand(newJobsListCmd(app))
	cmd.AddCommand(newJobsUseCmd(app))
	cmd.AddCommand(newJobsRemoveCmd(app))
	cmd.AddCommand(newJobsRebaseCmd(app))
	cmd.AddCommand(newJobsSyncPositionsCmd(app))
	cmd.AddCommand(newJobsExportCmd(app))
	cmd.AddCommand(newJobsImportCmd(app))
	return cmd
}

func parseSyncMode(s string) (model.SyncMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full":
		return model.SyncModeFull, nil
	case "incremental":
		return model.SyncModeIncremental, nil
	default:
		return "", fmt.Errorf("invalid sync mode %q (expected full|incremental)", s)
	}
}

func newJobsCreateCmd(app *App) *cobra.Command {
	var name, mode, start string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a data job and make it active",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			m, err := parseSyncMode(mode)
			if err != nil {
				return writeErr(cmd, err)
			}
			startTime := time.Now().UTC()
			if start != "" {
				t, err := time.Parse(time.RFC3339, start)
				if err != nil {
					return writeErr(cmd, fmt.Errorf("invalid --start (expected RFC3339): %w", err))
				}
				startTime = t.UTC()
			}

			job := mutate.CreateJob(db, strings.TrimSpace(name), m, startTime)
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": job})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Job name")
	cmd.Flags().StringVar(&mode, "mode", "full", "Sync mode (full|incremental)")
	cmd.Flags().StringVar(&start, "start", "", "Timeline epoch (RFC3339, default now)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newJobsListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List data jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			type row struct {
				ID       string         `json:"id"`
				Name     string         `json:"name"`
				SyncMode model.SyncMode `json:"syncMode"`
				Start    time.Time      `json:"startTime"`
				Active   bool           `json:"active"`
			}
			rows := make([]row, 0, len(db.Jobs))
			for _, j := range db.Jobs {
				rows = append(rows, row{ID: j.ID, Name: j.Name, SyncMode: j.SyncMode, Start: j.StartTime, Active: j.ID == db.ActiveJobID})
			}
			return writeOut(cmd, app, map[string]any{"data": rows})
		},
	}
	return cmd
}

func newJobsUseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use <job-id>",
		Short: "Set the active job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !mutate.SetActiveJob(db, args[0]) {
				return writeErr(cmd, errNotFound("job", args[0]))
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"activeJobId": db.ActiveJobID}})
		},
	}
	return cmd
}

func newJobsRemoveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <job-id>",
		Short: "Remove a data job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !mutate.RemoveJob(db, args[0]) {
				return writeErr(cmd, errNotFound("job", args[0]))
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"removed": args[0]}})
		},
	}
	return cmd
}

func newJobsRebaseCmd(app *App) *cobra.Command {
	var jobID, start string

	cmd := &cobra.Command{
		Use:   "rebase",
		Short: "Move the timeline epoch, keeping clips fixed in real time",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := activeJobID(db, jobID)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := time.Parse(time.RFC3339, start)
			if err != nil {
				return writeErr(cmd, fmt.Errorf("invalid --start (expected RFC3339): %w", err))
			}
			if !mutate.RebaseStartTime(db, id, t.UTC()) {
				return writeErr(cmd, errNotFound("job", id))
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			job, _ := db.FindJob(id)
			return writeOut(cmd, app, map[string]any{"data": job})
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Job id (default: active job)")
	cmd.Flags().StringVar(&start, "start", "", "New timeline epoch (RFC3339)")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func newJobsSyncPositionsCmd(app *App) *cobra.Command {
	var jobID string
	var on bool

	cmd := &cobra.Command{
		Use:   "sync-positions",
		Short: "Toggle re-alignment of linked clips when one of them moves",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := activeJobID(db, jobID)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !mutate.SetSyncLinkedClipPositions(db, id, on) {
				return writeErr(cmd, errNotFound("job", id))
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"jobId": id, "syncLinkedClipPositions": on}})
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Job id (default: active job)")
	cmd.Flags().BoolVar(&on, "on", true, "Enable (true) or disable (false)")
	return cmd
}

func newJobsExportCmd(app *App) *cobra.Command {
	var jobID, to string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a job tree as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := activeJobID(db, jobID)
			if err != nil {
				return writeErr(cmd, err)
			}
			job, ok := db.FindJob(id)
			if !ok {
				return writeErr(cmd, errNotFound("job", id))
			}
			if to == "" {
				return writeOut(cmd, app, map[string]any{"data": job})
			}
			b, err := json.MarshalIndent(job, "", "  ")
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := os.WriteFile(to, b, 0o644); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"written": to}})
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Job id (default: active job)")
	cmd.Flags().StringVar(&to, "to", "", "Output file (default: stdout)")
	return cmd
}

func newJobsImportCmd(app *App) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a job tree from JSON; ids are reassigned",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			b, err := os.ReadFile(from)
			if err != nil {
				return writeErr(cmd, err)
			}
			var job model.Job
			if err := json.Unmarshal(b, &job); err != nil {
				return writeErr(cmd, fmt.Errorf("parsing %s: %w", from, err))
			}
			imported := mutate.ImportJob(db, job)
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": imported})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Input file")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}
