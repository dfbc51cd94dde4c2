// Package drag computes live clip geometry during pointer gestures: move,
// resize-left, resize-right and copy-drag, with snapping and track
// compatibility checks. It is pure against the data model; nothing here
// touches a rendering surface, so every rule is unit-testable.
package drag

import "syncline/internal/model"

// Row is one horizontal lane: the master lane first, then every visible
// track of every expanded, visible aspect of every expanded, visible group.
// Offsets are computed analytically from the filtered, ordered track list.
type Row struct {
	TrackID string // model.MasterTrackID for the master lane
	Y       int
	Height  int
}

const masterLaneHeight = 1

// Rows lays out the visible lanes of a job top to bottom.
func Rows(job *model.Job) []Row {
	job.SortSiblings()
	rows := []Row{{TrackID: model.MasterTrackID, Y: 0, Height: masterLaneHeight}}
	y := masterLaneHeight
	for gi := range job.Groups {
		g := &job.Groups[gi]
		if !g.Visible || !g.Expanded {
			continue
		}
		for ai := range g.Aspects {
			a := &g.Aspects[ai]
			if !a.Visible || !a.Expanded {
				continue
			}
			for ti := range a.Tracks {
				t := &a.Tracks[ti]
				if !t.Visible {
					continue
				}
				h := t.Height
				if h <= 0 {
					h = 1
				}
				rows = append(rows, Row{TrackID: t.ID, Y: y, Height: h})
				y += h
			}
		}
	}
	return rows
}

// TrackAt maps a vertical position to the lane under it.
func TrackAt(rows []Row, y int) (string, bool) {
	for _, r := range rows {
		if y >= r.Y && y < r.Y+r.Height {
			return r.TrackID, true
		}
	}
	return "", false
}
