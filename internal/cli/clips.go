package cli

import (
	"fmt"
	"strings"
	"time"

	"syncline/internal/model"
	"syncline/internal/mutate"
	"syncline/internal/store"
	"syncline/internal/timeutil"

	"github.com/spf13/cobra"
)

func newClipsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clips",
		Short: "Clip commands",
	}
	cmd.AddCommand(newClipsAddCmd(app))
	cmd.AddCommand(newClipsAddMasterCmd(app))
	cmd.AddCommand(newClipsShowCmd(app))
	cmd.AddCommand(newClipsListCmd(app))
	cmd.AddCommand(newClipsRemoveCmd(app))
	cmd.AddCommand(newClipsMoveCmd(app))
	cmd.AddCommand(newClipsResizeCmd(app))
	cmd.AddCommand(newClipsLinkCmd(app))
	cmd.AddCommand(newClipsUnlinkCmd(app))
	cmd.AddCommand(newClipsSetSourceCmd(app))
	cmd.AddCommand(newClipsDuplicateCmd(app))
	return cmd
}

// nowSeconds is the current time on a job's relative timeline.
func nowSeconds(job *model.Job) float64 {
	return timeutil.ToRelativeSeconds(time.Now().UTC(), job.StartTime)
}

func jobFor(db *store.DB, flagValue string) (*model.Job, error) {
	id, err := activeJobID(db, flagValue)
	if err != nil {
		return nil, err
	}
	job, ok := db.FindJob(id)
	if !ok {
		return nil, errNotFound("job", id)
	}
	return job, nil
}

func newClipsAddCmd(app *App) *cobra.Command {
	var jobID, trackID, name string
	var start, end float64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a clip to a track",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			job, err := jobFor(db, jobID)
			if err != nil {
				return writeErr(cmd, err)
			}
			tr := model.TimeRange{Start: start}
			if cmd.Flags().Changed("end") {
				tr.End = model.EndAt(end)
			}
			c, ok := mutate.AddClip(db, job.ID, trackID, name, tr)
			if !ok {
				return writeErr(cmd, errNotFound("track", trackID))
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": c})
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Job id (default: active job)")
	cmd.Flags().StringVar(&trackID, "track", "", "Track id")
	cmd.Flags().StringVar(&name, "name", "", "Clip name")
	cmd.Flags().Float64Var(&start, "start", 0, "Start (seconds from job epoch)")
	cmd.Flags().Float64Var(&end, "end", 0, "End (seconds; omit for a live clip)")
	_ = cmd.MarkFlagRequired("track")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newClipsAddMasterCmd(app *App) *cobra.Command {
	var jobID, role string
	var start, end float64

	cmd := &cobra.Command{
		Use:   "add-master",
		Short: "Add a master lane clip",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			job, err := jobFor(db, jobID)
			if err != nil {
				return writeErr(cmd, err)
			}
			var r model.LinkType
			switch strings.ToLower(role) {
			case "source":
				r = model.LinkTypeSource
			case "destination":
				r = model.LinkTypeDestination
			default:
				return writeErr(cmd, fmt.Errorf("invalid --role %q (expected source|destination)", role))
			}
			tr := model.TimeRange{Start: start}
			if cmd.Flags().Changed("end") {
				tr.End = model.EndAt(end)
			}
			c, err := mutate.AddMasterClip(db, job.ID, r, tr)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": c})
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Job id (default: active job)")
	cmd.Flags().StringVar(&role, "role", "source", "Master role (source|destination)")
	cmd.Flags().Float64Var(&start, "start", 0, "Start (seconds from job epoch)")
	cmd.Flags().Float64Var(&end, "end", 0, "End (seconds; omit for a live clip)")
	return cmd
}

func newClipsShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <clip-id>",
		Short: "Show one clip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			// Clip ids are unique across jobs, so search all of them; direct
			// lookup should work without knowing which job holds the clip.
			for i := range db.Jobs {
				if c, ok := db.Jobs[i].FindClip(args[0]); ok {
					return writeOut(cmd, app, map[string]any{"data": map[string]any{
						"jobId": db.Jobs[i].ID,
						"clip":  c,
					}})
				}
			}
			return writeErr(cmd, errNotFound("clip", args[0]))
		},
	}
	return cmd
}

func newClipsListCmd(app *App) *cobra.Command {
	var jobID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clips in display order, master lane first",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			job, err := jobFor(db, jobID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": job.ClipsInDisplayOrder()})
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Job id (default: active job)")
	return cmd
}

func newClipsRemoveCmd(app *App) *cobra.Command {
	var jobID string

	cmd := &cobra.Command{
		Use:   "remove <clip-id>",
		Short: "Remove a clip; removing a master unlinks its dependents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			job, err := jobFor(db, jobID)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !mutate.RemoveClip(db, job.ID, args[0]) {
				return writeErr(cmd, errNotFound("clip", args[0]))
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"removed": args[0]}})
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Job id (default: active job)")
	return cmd
}

func newClipsMoveCmd(app *App) *cobra.Command {
	var jobID, targetTrack string
	var delta float64

	cmd := &cobra.Command{
		Use:   "move <clip-id>",
		Short: "Move a clip by a delta, optionally to another track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			job, err := jobFor(db, jobID)
			if err != nil {
				return writeErr(cmd, err)
			}
			c, ok := job.FindClip(args[0])
			if !ok {
				return writeErr(cmd, errNotFound("clip", args[0]))
			}
			moves := []mutate.ClipMove{{ClipID: c.ID, Original: c.TimeRange}}
			changed, err := mutate.MoveClips(db, job.ID, moves, delta, targetTrack, nowSeconds(job))
			if err != nil {
				return writeErr(cmd, err)
			}
			if !changed {
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"moved": false}})
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			c, _ = job.FindClip(args[0])
			return writeOut(cmd, app, map[string]any{"data": c})
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Job id (default: active job)")
	cmd.Flags().Float64Var(&delta, "delta", 0, "Seconds to move by (negative = earlier)")
	cmd.Flags().StringVar(&targetTrack, "to-track", "", "Move to another track (unit/dataType must match)")
	return cmd
}

func newClipsResizeCmd(app *App) *cobra.Command {
	var jobID, edge string
	var to float64

	cmd := &cobra.Command{
		Use:   "resize <clip-id>",
		Short: "Move one edge of a clip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			job, err := jobFor(db, jobID)
			if err != nil {
				return writeErr(cmd, err)
			}
			var e mutate.Edge
			switch strings.ToLower(edge) {
			case "left":
				e = mutate.EdgeLeft
			case "right":
				e = mutate.EdgeRight
			default:
				return writeErr(cmd, fmt.Errorf("invalid --edge %q (expected left|right)", edge))
			}
			changed, err := mutate.ResizeClip(db, job.ID, args[0], e, to, nowSeconds(job))
			if err != nil {
				return writeErr(cmd, err)
			}
			if !changed {
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"resized": false}})
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			c, _ := job.FindClip(args[0])
			return writeOut(cmd, app, map[string]any{"data": c})
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Job id (default: active job)")
	cmd.Flags().StringVar(&edge, "edge", "", "Edge to move (left|right)")
	cmd.Flags().Float64Var(&to, "to", 0, "New edge position (seconds from job epoch)")
	_ = cmd.MarkFlagRequired("edge")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newClipsLinkCmd(app *App) *cobra.Command {
	var jobID, linkType, masterID string

	cmd := &cobra.Command{
		Use:   "link <clip-id>",
		Short: "Link a clip to a master clip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			job, err := jobFor(db, jobID)
			if err != nil {
				return writeErr(cmd, err)
			}
			switch strings.ToLower(linkType) {
			case "source":
				err = mutate.SetClipAsSource(db, job.ID, args[0])
			case "destination":
				err = mutate.SetClipAsDestination(db, job.ID, args[0])
			case "flexible":
				if masterID == "" {
					return writeErr(cmd, fmt.Errorf("--master is required for --type flexible"))
				}
				err = mutate.SetClipAsFlexible(db, job.ID, args[0], masterID, nowSeconds(job))
			default:
				return writeErr(cmd, fmt.Errorf("invalid --type %q (expected source|destination|flexible)", linkType))
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			c, _ := job.FindClip(args[0])
			return writeOut(cmd, app, map[string]any{"data": c})
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Job id (default: active job)")
	cmd.Flags().StringVar(&linkType, "type", "", "Link type (source|destination|flexible)")
	cmd.Flags().StringVar(&masterID, "master", "", "Master clip id (flexible links only)")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newClipsUnlinkCmd(app *App) *cobra.Command {
	var jobID string

	cmd := &cobra.Command{
		Use:   "unlink <clip-id>",
		Short: "Detach a clip from its master",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			job, err := jobFor(db, jobID)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !mutate.SetClipAsNone(db, job.ID, args[0]) {
				return writeErr(cmd, errNotFound("clip", args[0]))
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			c, _ := job.FindClip(args[0])
			return writeOut(cmd, app, map[string]any{"data": c})
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Job id (default: active job)")
	return cmd
}

func newClipsSetSourceCmd(app *App) *cobra.Command {
	var jobID, sourceID string

	cmd := &cobra.Command{
		Use:   "set-source <destination-clip-id>",
		Short: "Point a destination clip at the source clip whose data it receives",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			job, err := jobFor(db, jobID)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := mutate.SetDestinationSourceClip(db, job.ID, args[0], sourceID); err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			c, _ := job.FindClip(args[0])
			return writeOut(cmd, app, map[string]any{"data": c})
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Job id (default: active job)")
	cmd.Flags().StringVar(&sourceID, "source", "", "Source clip id")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}

func newClipsDuplicateCmd(app *App) *cobra.Command {
	var jobID, toTrack string
	var at float64

	cmd := &cobra.Command{
		Use:   "duplicate <clip-id>",
		Short: "Duplicate a clip (new id, new color, name suffixed)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			job, err := jobFor(db, jobID)
			if err != nil {
				return writeErr(cmd, err)
			}
			src, ok := job.FindClip(args[0])
			if !ok {
				return writeErr(cmd, errNotFound("clip", args[0]))
			}
			tr := src.TimeRange
			if cmd.Flags().Changed("at") {
				d := tr.Duration(nowSeconds(job))
				tr.Start = at
				if tr.End != nil {
					tr.End = model.EndAt(at + d)
				}
			}
			dup, err := mutate.DuplicateClip(db, job.ID, args[0], toTrack, tr)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": dup})
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Job id (default: active job)")
	cmd.Flags().StringVar(&toTrack, "to-track", "", "Target track (default: same track)")
	cmd.Flags().Float64Var(&at, "at", 0, "Place the copy at this start (seconds)")
	return cmd
}
