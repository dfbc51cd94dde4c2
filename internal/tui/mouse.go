package tui

import (
	"math"

	"syncline/internal/drag"
	"syncline/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

// Cells this close to a clip edge grab a resize handle instead of a move.
const resizeHandleCells = 1

func (m *appModel) xToSeconds(x int) float64 {
	return m.viewStart + float64(x-sidebarWidth)/m.pxPerSec
}

func (m *appModel) secondsToX(s float64) int {
	return sidebarWidth + int(math.Round((s-m.viewStart)*m.pxPerSec))
}

// laneY maps a screen row to drag.Rows space.
func (m *appModel) laneY(screenY int) int {
	return screenY - chromeRows + m.scrollRow
}

func (m appModel) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	job, ok := m.job()
	if !ok {
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if msg.Ctrl {
			m.setZoom(m.pxPerSec * 1.25)
		} else if m.scrollRow > 0 {
			m.scrollRow--
		}
		return m, nil
	case tea.MouseButtonWheelDown:
		if msg.Ctrl {
			m.setZoom(m.pxPerSec / 1.25)
		} else {
			m.scrollRow++
		}
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		m.beginGesture(job, msg)
		return m, nil

	case tea.MouseActionMotion:
		if m.ctrl != nil {
			m.preview = m.ctrl.Update(msg.X, m.laneY(msg.Y), msg.Alt)
			if m.preview.Active {
				m.auto.MarkDirty()
			}
		}
		return m, nil

	case tea.MouseActionRelease:
		if m.ctrl != nil {
			if err := m.ctrl.End(); err != nil {
				m.noteErr(err)
			} else {
				m.auto.MarkDirty()
			}
			m.ctrl = nil
			m.preview = drag.Preview{}
		}
		return m, nil
	}
	return m, nil
}

func (m *appModel) beginGesture(job *model.Job, msg tea.MouseMsg) {
	clip, typ, ok := m.hitTest(job, msg.X, msg.Y)
	if !ok {
		if !msg.Ctrl && !msg.Shift {
			m.sel.Clear(job)
		}
		return
	}

	// Selection happens on press, before any drag: ctrl toggles, shift
	// extends in display order.
	switch {
	case msg.Shift:
		m.sel.Select(job, clip.ID, false, true)
	case msg.Ctrl:
		m.sel.Select(job, clip.ID, true, false)
	default:
		if !m.sel.IsSelected(clip.ID) {
			m.sel.Select(job, clip.ID, false, false)
		}
	}

	cfg := drag.Config{
		PxPerSecond:     m.pxPerSec,
		SnapThresholdPx: drag.DefaultSnapThresholdPx,
		MoveThresholdPx: drag.DefaultMoveThresholdPx,
		PlayheadSeconds: m.nowSeconds(job),
		NowSeconds:      m.nowSeconds(job),
	}
	c := drag.NewController(cfg, m.db, job.ID)
	if c.Begin(clip.ID, typ, msg.X, m.laneY(msg.Y), m.sel) {
		m.ctrl = c
		m.status = ""
	}
}

// hitTest resolves the clip and gesture under a screen position.
func (m *appModel) hitTest(job *model.Job, x, y int) (*model.Clip, drag.Type, bool) {
	if x < sidebarWidth || y < chromeRows || y >= m.height-footerRows {
		return nil, drag.None, false
	}
	rows := drag.Rows(job)
	trackID, ok := drag.TrackAt(rows, m.laneY(y))
	if !ok {
		return nil, drag.None, false
	}

	var clips []*model.Clip
	if trackID == model.MasterTrackID {
		for i := range job.MasterClips {
			clips = append(clips, &job.MasterClips[i])
		}
	} else if t, ok := job.FindTrack(trackID); ok {
		for i := range t.Clips {
			clips = append(clips, &t.Clips[i])
		}
	}

	now := m.nowSeconds(job)
	// Later clips draw on top, so hit test in reverse display order.
	for i := len(clips) - 1; i >= 0; i-- {
		c := clips[i]
		x0 := m.secondsToX(c.TimeRange.Start)
		end := now
		if c.TimeRange.End != nil {
			end = *c.TimeRange.End
		}
		x1 := m.secondsToX(end)
		if x < x0 || x > x1 {
			continue
		}
		switch {
		case x-x0 <= resizeHandleCells && x1-x0 > 2*resizeHandleCells:
			return c, drag.ResizeLeft, true
		case x1-x <= resizeHandleCells && x1-x0 > 2*resizeHandleCells && !c.TimeRange.Live():
			return c, drag.ResizeRight, true
		default:
			return c, drag.Move, true
		}
	}
	return nil, drag.None, false
}
