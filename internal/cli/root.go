package cli

import (
	"fmt"
	"os"
	"strings"

	"syncline/internal/format"
	"syncline/internal/store"
	"syncline/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	Workspace  string
	PrettyJSON bool
	Format     string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "syncline",
		Short:        "Timeline editor for IoT data-sync windows (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive timeline TUI
  syncline

  # Scriptable commands
  syncline jobs list
  syncline clips add --job <job-id> --track <track-id> --name inlet --start 0 --end 3600

  # Run the asset-discovery proxy
  syncline proxy serve --addr :8085
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("SYNCLINE_DIR", ""), "Path to workspace dir (overrides workspace resolution; mainly for fixtures/tests)")
	cmd.PersistentFlags().StringVar(&app.Workspace, "workspace", envOr("SYNCLINE_WORKSPACE", ""), "Named workspace under ~/.syncline/workspaces")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("SYNCLINE_FORMAT", "json"), "Output format (json)")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newJobsCmd(app))
	cmd.AddCommand(newTreeCmd(app))
	cmd.AddCommand(newClipsCmd(app))
	cmd.AddCommand(newTenantsCmd(app))
	cmd.AddCommand(newAssetsCmd(app))
	cmd.AddCommand(newProxyCmd(app))

	return cmd
}

func runTUI(app *App) error {
	db, s, err := loadDB(app)
	if err != nil {
		return err
	}
	return tui.Run(s, db)
}

// loadDB resolves the workspace: --dir wins, then --workspace, then upward
// discovery from cwd.
func loadDB(app *App) (*store.DB, store.Store, error) {
	dir := app.Dir
	if dir == "" {
		if app.Workspace != "" {
			d, err := store.WorkspaceDir(app.Workspace)
			if err != nil {
				return nil, store.Store{}, err
			}
			dir = d
		} else {
			d, err := store.DefaultDir()
			if err != nil {
				return nil, store.Store{}, err
			}
			dir = d
		}
		app.Dir = dir
	}

	s := store.Store{Dir: dir}
	db, err := s.Load()
	if err != nil {
		return nil, s, err
	}
	return db, s, nil
}

// activeJobID resolves the job a command acts on: --job flag, else the
// workspace's active job.
func activeJobID(db *store.DB, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if job, ok := db.ActiveJob(); ok {
		return job.ID, nil
	}
	return "", fmt.Errorf("no active job; pass --job or run `syncline jobs use <job-id>`")
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
