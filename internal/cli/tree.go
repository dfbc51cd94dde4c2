package cli

import (
	"strings"

	"syncline/internal/model"
	"syncline/internal/mutate"

	"github.com/spf13/cobra"
)

// newTreeCmd groups the hierarchy commands: groups, aspects, tracks.
func newTreeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Group/aspect/track hierarchy commands",
	}
	cmd.AddCommand(newTreeShowCmd(app))
	cmd.AddCommand(newGroupAddCmd(app))
	cmd.AddCommand(newAspectAddCmd(app))
	cmd.AddCommand(newTrackAddCmd(app))
	cmd.AddCommand(newTreeRemoveCmd(app))
	cmd.AddCommand(newTreeToggleCmd(app))
	cmd.AddCommand(newTrackSetCmd(app))
	return cmd
}

func newTreeShowCmd(app *App) *cobra.Command {
	var jobID string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the job tree",
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
			job.SortSiblings()
			return writeOut(cmd, app, map[string]any{"data": job})
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Job id (default: active job)")
	return cmd
}

func newGroupAddCmd(app *App) *cobra.Command {
	var jobID, name, tenantID string

	cmd := &cobra.Command{
		Use:   "add-group",
		Short: "Add a group (one physical asset)",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := activeJobID(db, jobID)
			if err != nil {
				return writeErr(cmd, err)
			}
			g, ok := mutate.AddGroup(db, id, name, tenantID)
			if !ok {
				return writeErr(cmd, errNotFound("job", id))
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": g})
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Job id (default: active job)")
	cmd.Flags().StringVar(&name, "name", "", "Group name")
	cmd.Flags().StringVar(&tenantID, "tenant", "", "Owning tenant id")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newAspectAddCmd(app *App) *cobra.Command {
	var jobID, groupID, name string

	cmd := &cobra.Command{
		Use:   "add-aspect",
		Short: "Add an aspect under a group",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := activeJobID(db, jobID)
			if err != nil {
				return writeErr(cmd, err)
			}
			a, ok := mutate.AddAspect(db, id, groupID, name)
			if !ok {
				return writeErr(cmd, errNotFound("group", groupID))
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": a})
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Job id (default: active job)")
	cmd.Flags().StringVar(&groupID, "group", "", "Parent group id")
	cmd.Flags().StringVar(&name, "name", "", "Aspect name")
	_ = cmd.MarkFlagRequired("group")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newTrackAddCmd(app *App) *cobra.Command {
	var jobID, aspectID, name, unit, dataType string

	cmd := &cobra.Command{
		Use:   "add-track",
		Short: "Add a track (one variable) under an aspect",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := activeJobID(db, jobID)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, ok := mutate.AddTrack(db, id, aspectID, name, unit, model.DataType(dataType))
			if !ok {
				return writeErr(cmd, errNotFound("aspect", aspectID))
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": t})
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Job id (default: active job)")
	cmd.Flags().StringVar(&aspectID, "aspect", "", "Parent aspect id")
	cmd.Flags().StringVar(&name, "name", "", "Track name")
	cmd.Flags().StringVar(&unit, "unit", "", "Unit of measure (e.g. °C)")
	cmd.Flags().StringVar(&dataType, "data-type", "", "Data type (Boolean|Int|Long|Double|String|Big_string|Timestamp)")
	_ = cmd.MarkFlagRequired("aspect")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newTreeRemoveCmd(app *App) *cobra.Command {
	var jobID string

	cmd := &cobra.Command{
		Use:   "remove <node-id>",
		Short: "Remove a group, aspect or track; siblings reindex",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := activeJobID(db, jobID)
			if err != nil {
				return writeErr(cmd, err)
			}
			nodeID := args[0]
			removed := mutate.RemoveGroup(db, id, nodeID) ||
				mutate.RemoveAspect(db, id, nodeID) ||
				mutate.RemoveTrack(db, id, nodeID)
			if !removed {
				return writeErr(cmd, errNotFound("node", nodeID))
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"removed": nodeID}})
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Job id (default: active job)")
	return cmd
}

func newTreeToggleCmd(app *App) *cobra.Command {
	var jobID, what string

	cmd := &cobra.Command{
		Use:   "toggle <node-id>",
		Short: "Toggle visibility or expansion of a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := activeJobID(db, jobID)
			if err != nil {
				return writeErr(cmd, err)
			}
			var changed bool
			switch strings.ToLower(what) {
			case "visible":
				changed = mutate.ToggleVisible(db, id, args[0])
			case "expanded":
				changed = mutate.ToggleExpanded(db, id, args[0])
			default:
				return writeErr(cmd, errNotFound("toggle kind", what))
			}
			if !changed {
				return writeErr(cmd, errNotFound("node", args[0]))
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"toggled": args[0], "what": what}})
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Job id (default: active job)")
	cmd.Flags().StringVar(&what, "what", "visible", "What to toggle (visible|expanded)")
	return cmd
}

func newTrackSetCmd(app *App) *cobra.Command {
	var jobID string
	var muted, locked bool

	cmd := &cobra.Command{
		Use:   "set-track <track-id>",
		Short: "Set track flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := activeJobID(db, jobID)
			if err != nil {
				return writeErr(cmd, err)
			}
			changed := false
			if cmd.Flags().Changed("muted") {
				changed = mutate.SetTrackMuted(db, id, args[0], muted) || changed
			}
			if cmd.Flags().Changed("locked") {
				changed = mutate.SetTrackLocked(db, id, args[0], locked) || changed
			}
			if !changed {
				return writeErr(cmd, errNotFound("track", args[0]))
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"trackId": args[0], "muted": muted, "locked": locked}})
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Job id (default: active job)")
	cmd.Flags().BoolVar(&muted, "muted", false, "Mute the track")
	cmd.Flags().BoolVar(&locked, "locked", false, "Lock the track")
	return cmd
}
