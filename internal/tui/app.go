package tui

import (
	"fmt"
	"time"

	"syncline/internal/drag"
	"syncline/internal/model"
	"syncline/internal/mutate"
	"syncline/internal/selection"
	"syncline/internal/sim"
	"syncline/internal/store"
	"syncline/internal/timeutil"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

type view int

const (
	viewJobs view = iota
	viewTimeline
)

type tickMsg struct{}

const (
	sidebarWidth = 26
	chromeRows   = 2 // header + ruler
	footerRows   = 1

	defaultPxPerSec = 2.0
	minPxPerSec     = 0.05
	maxPxPerSec     = 40.0
)

type appModel struct {
	store store.Store
	db    *store.DB
	auto  *store.Autosaver

	width  int
	height int

	view     view
	jobsList list.Model
	jobID    string

	th  theme
	sel *selection.Selection
	sim *sim.Runner

	// Horizontal viewport: leftmost visible second and cells per second.
	viewStart float64
	pxPerSec  float64
	scrollRow int

	ctrl    *drag.Controller
	preview drag.Preview

	status    string
	statusErr bool
}

func newAppModel(s store.Store, db *store.DB) appModel {
	m := appModel{
		store:    s,
		db:       db,
		auto:     store.NewAutosaver(s),
		view:     viewJobs,
		th:       newTheme(detectDarkBackground()),
		sel:      selection.New(),
		pxPerSec: defaultPxPerSec,
	}
	m.jobsList = newJobsList()
	m.refreshJobs()
	if job, ok := db.ActiveJob(); ok {
		m.openJob(job.ID)
	}
	return m
}

func newJobsList() list.Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Data Jobs"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	return l
}

type jobItem struct{ job model.Job }

func (i jobItem) Title() string { return i.job.Name }
func (i jobItem) Description() string {
	return fmt.Sprintf("%s • epoch %s", i.job.SyncMode, i.job.StartTime.Format(time.RFC3339))
}
func (i jobItem) FilterValue() string { return i.job.Name }

func (m *appModel) refreshJobs() {
	items := make([]list.Item, 0, len(m.db.Jobs))
	for _, j := range m.db.Jobs {
		items = append(items, jobItem{job: j})
	}
	m.jobsList.SetItems(items)
}

func (m *appModel) openJob(jobID string) {
	if _, ok := m.db.FindJob(jobID); !ok {
		return
	}
	mutate.SetActiveJob(m.db, jobID)
	m.jobID = jobID
	m.view = viewTimeline
	m.sel = selection.New()
	m.sim = sim.NewRunner(m.db, jobID)
	m.ctrl = nil
	m.preview = drag.Preview{}
	m.viewStart = 0
	m.scrollRow = 0
	m.auto.MarkDirty()
}

func (m *appModel) job() (*model.Job, bool) { return m.db.FindJob(m.jobID) }

// nowSeconds is the wall clock on the job's relative timeline.
func (m *appModel) nowSeconds(job *model.Job) float64 {
	return timeutil.ToRelativeSeconds(time.Now().UTC(), job.StartTime)
}

func (m *appModel) note(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusErr = false
}

func (m *appModel) noteErr(err error) {
	if err == nil {
		return
	}
	m.status = err.Error()
	m.statusErr = true
}

func (m appModel) Init() tea.Cmd { return tick() }

func tick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.jobsList.SetSize(msg.Width, msg.Height-1)
		return m, nil

	case tickMsg:
		if m.sim != nil && m.sim.Tick() {
			m.auto.MarkDirty()
		}
		m.auto.MaybeFlush(m.db)
		return m, tick()

	case tea.KeyMsg:
		return m.updateKey(msg)

	case tea.MouseMsg:
		if m.view == viewTimeline {
			return m.updateMouse(msg)
		}
	}

	if m.view == viewJobs {
		var cmd tea.Cmd
		m.jobsList, cmd = m.jobsList.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.view == viewJobs {
		switch msg.String() {
		case "ctrl+c", "q":
			m.auto.Flush(m.db)
			return m, tea.Quit
		case "enter":
			if it, ok := m.jobsList.SelectedItem().(jobItem); ok {
				m.openJob(it.job.ID)
			}
			return m, nil
		case "n":
			job := mutate.CreateJob(m.db, "", model.SyncModeFull, time.Now().UTC())
			m.refreshJobs()
			m.openJob(job.ID)
			return m, nil
		}
		var cmd tea.Cmd
		m.jobsList, cmd = m.jobsList.Update(msg)
		return m, cmd
	}

	job, ok := m.job()
	if !ok {
		m.view = viewJobs
		return m, nil
	}

	// A drag in flight claims Escape; everything else waits.
	if m.ctrl != nil && m.ctrl.Active() {
		if msg.String() == "esc" {
			m.ctrl.Cancel()
			m.ctrl = nil
			m.preview = drag.Preview{}
			m.note("drag cancelled")
			m.auto.MarkDirty()
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.auto.Flush(m.db)
		return m, tea.Quit

	case "esc":
		if m.sel.Count() > 0 {
			m.sel.Clear(job)
			return m, nil
		}
		m.view = viewJobs
		m.refreshJobs()
		return m, nil

	case "r":
		// Pick up CLI edits made in another terminal.
		if db, err := m.store.Load(); err == nil {
			*m.db = *db
			m.sel.Prune(job)
			m.note("reloaded")
		}
		return m, nil

	case "tab", "shift+tab":
		m.cycleSelection(job, msg.String() == "tab")
		return m, nil

	case "left", "right", "shift+left", "shift+right":
		delta := 1.0
		if msg.String() == "shift+left" || msg.String() == "shift+right" {
			delta = 10
		}
		if msg.String() == "left" || msg.String() == "shift+left" {
			delta = -delta
		}
		m.nudgeSelection(job, delta)
		return m, nil

	case "+", "=":
		m.setZoom(m.pxPerSec * 1.5)
		return m, nil
	case "-":
		m.setZoom(m.pxPerSec / 1.5)
		return m, nil
	case "h":
		m.viewStart -= 10 / m.pxPerSec
		return m, nil
	case "l":
		m.viewStart += 10 / m.pxPerSec
		return m, nil
	case "0":
		m.viewStart = 0
		return m, nil

	case "up":
		if m.scrollRow > 0 {
			m.scrollRow--
		}
		return m, nil
	case "down":
		m.scrollRow++
		return m, nil

	case "x":
		m.deleteSelection(job)
		return m, nil
	case "d":
		m.duplicateSelection(job)
		return m, nil
	case "c":
		if mutate.CopyClips(m.db, job.ID, m.sel.IDs(job)) {
			m.note("%d clip(s) copied", m.sel.Count())
		}
		return m, nil
	case "p":
		pasted, err := mutate.PasteClipboard(m.db, job.ID, "", m.nowSeconds(job))
		if err != nil {
			m.noteErr(err)
		} else if len(pasted) > 0 {
			m.note("%d clip(s) pasted", len(pasted))
			m.auto.MarkDirty()
		}
		return m, nil

	case "1", "2", "3", "u":
		m.linkSelection(job, msg.String())
		return m, nil

	case "s":
		for _, c := range m.sel.SelectedClips(job) {
			if !job.IsMasterClip(c.ID) {
				m.sim.Start(c.ID)
			}
		}
		return m, nil

	case "v":
		for _, c := range m.sel.SelectedClips(job) {
			mutate.ToggleVisible(m.db, job.ID, c.TrackID)
		}
		m.auto.MarkDirty()
		return m, nil
	}
	return m, nil
}

func (m *appModel) setZoom(px float64) {
	if px < minPxPerSec {
		px = minPxPerSec
	}
	if px > maxPxPerSec {
		px = maxPxPerSec
	}
	m.pxPerSec = px
}

func (m *appModel) cycleSelection(job *model.Job, forward bool) {
	clips := job.ClipsInDisplayOrder()
	if len(clips) == 0 {
		return
	}
	idx := -1
	for i, c := range clips {
		if c.ID == m.sel.Anchor() {
			idx = i
			break
		}
	}
	if forward {
		idx = (idx + 1) % len(clips)
	} else {
		idx--
		if idx < 0 {
			idx = len(clips) - 1
		}
	}
	m.sel.SelectOnly(job, clips[idx].ID)
}

func (m *appModel) nudgeSelection(job *model.Job, delta float64) {
	clips := m.sel.SelectedClips(job)
	if len(clips) == 0 {
		return
	}
	moves := make([]mutate.ClipMove, 0, len(clips))
	for _, c := range clips {
		moves = append(moves, mutate.ClipMove{ClipID: c.ID, Original: c.TimeRange})
	}
	changed, err := mutate.MoveClips(m.db, job.ID, moves, delta, "", m.nowSeconds(job))
	if err != nil {
		m.noteErr(err)
		return
	}
	if changed {
		m.auto.MarkDirty()
	}
}

func (m *appModel) deleteSelection(job *model.Job) {
	n := 0
	for _, id := range m.sel.IDs(job) {
		if mutate.RemoveClip(m.db, job.ID, id) {
			n++
		}
	}
	if n > 0 {
		m.sel.Prune(job)
		m.note("%d clip(s) removed", n)
		m.auto.MarkDirty()
	}
}

func (m *appModel) duplicateSelection(job *model.Job) {
	for _, c := range m.sel.SelectedClips(job) {
		tr := c.TimeRange
		tr.Start += 5
		if tr.End != nil {
			tr.End = model.EndAt(*tr.End + 5)
		}
		if _, err := mutate.DuplicateClip(m.db, job.ID, c.ID, "", tr); err != nil {
			m.noteErr(err)
			return
		}
	}
	m.auto.MarkDirty()
}

func (m *appModel) linkSelection(job *model.Job, key string) {
	for _, c := range m.sel.SelectedClips(job) {
		if job.IsMasterClip(c.ID) {
			continue
		}
		var err error
		switch key {
		case "1":
			err = mutate.SetClipAsSource(m.db, job.ID, c.ID)
		case "2":
			err = mutate.SetClipAsDestination(m.db, job.ID, c.ID)
		case "3":
			if len(job.MasterClips) > 0 {
				err = mutate.SetClipAsFlexible(m.db, job.ID, c.ID, job.MasterClips[0].ID, m.nowSeconds(job))
			}
		case "u":
			mutate.SetClipAsNone(m.db, job.ID, c.ID)
		}
		if err != nil {
			m.noteErr(err)
			return
		}
	}
	m.auto.MarkDirty()
}

func (m appModel) View() string {
	if m.view == viewJobs {
		return m.jobsList.View() + "\n" + m.th.statusBar.Render(" enter: open  n: new job  q: quit")
	}
	return m.renderTimeline()
}
