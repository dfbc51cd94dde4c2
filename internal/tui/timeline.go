package tui

import (
	"fmt"
	"math"
	"strings"

	"syncline/internal/drag"
	"syncline/internal/model"

	"github.com/charmbracelet/lipgloss"
)

// laneBuf is one lane's cell buffer: a rune plus a style id per cell.
// Style id 0 is the empty lane; runs of equal ids render as one styled
// segment.
type laneBuf struct {
	runes  []rune
	ids    []int
	styles map[int]lipgloss.Style
	next   int
}

func newLaneBuf(width int, empty lipgloss.Style) *laneBuf {
	b := &laneBuf{
		runes:  make([]rune, width),
		ids:    make([]int, width),
		styles: map[int]lipgloss.Style{0: empty},
		next:   1,
	}
	for i := range b.runes {
		b.runes[i] = '·'
	}
	return b
}

func (b *laneBuf) style(s lipgloss.Style) int {
	id := b.next
	b.next++
	b.styles[id] = s
	return id
}

func (b *laneBuf) put(x int, ch rune, id int) {
	if x < 0 || x >= len(b.runes) {
		return
	}
	b.runes[x] = ch
	b.ids[x] = id
}

// block fills [x0,x1] with a label, clipped to the buffer.
func (b *laneBuf) block(x0, x1 int, label string, id int) {
	if x1 < x0 {
		x1 = x0
	}
	lr := []rune(label)
	for x := x0; x <= x1; x++ {
		ch := ' '
		if li := x - x0 - 1; li >= 0 && li < len(lr) && x < x1 {
			ch = lr[li]
		}
		b.put(x, ch, id)
	}
}

func (b *laneBuf) render() string {
	var sb strings.Builder
	start := 0
	for i := 1; i <= len(b.ids); i++ {
		if i == len(b.ids) || b.ids[i] != b.ids[start] {
			sb.WriteString(b.styles[b.ids[start]].Render(string(b.runes[start:i])))
			start = i
		}
	}
	return sb.String()
}

func (m appModel) renderTimeline() string {
	job, ok := m.job()
	if !ok {
		return "no job"
	}
	job.SortSiblings()

	tw := m.width - sidebarWidth
	if tw < 10 || m.height < chromeRows+footerRows+1 {
		return "terminal too small"
	}
	now := m.nowSeconds(job)

	var out []string
	out = append(out, m.renderHeader(job))
	out = append(out, m.renderRuler(tw))

	rows := drag.Rows(job)
	laneCount := m.height - chromeRows - footerRows
	drawn := 0
	for _, r := range rows {
		if r.Y < m.scrollRow {
			continue
		}
		if drawn >= laneCount {
			break
		}
		out = append(out, m.renderLane(job, r, tw, now))
		drawn++
		// Tall lanes occupy extra screen rows so mouse Y stays aligned
		// with the row layout.
		for pad := 1; pad < r.Height && drawn < laneCount; pad++ {
			out = append(out, "")
			drawn++
		}
	}
	for drawn < laneCount {
		out = append(out, "")
		drawn++
	}

	out = append(out, m.renderStatusBar())
	return strings.Join(out, "\n")
}

func (m appModel) renderHeader(job *model.Job) string {
	left := fmt.Sprintf(" %s  [%s]", job.Name, job.SyncMode)
	right := fmt.Sprintf("zoom %.2f c/s  epoch %s ", m.pxPerSec, job.StartTime.Format("2006-01-02 15:04"))
	pad := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		pad = 1
	}
	return m.th.header.Render(left) + strings.Repeat(" ", pad) + m.th.statusBar.Render(right)
}

// niceTickStep picks a round second interval that keeps ruler labels apart.
func niceTickStep(pxPerSec float64) float64 {
	steps := []float64{1, 5, 10, 30, 60, 300, 600, 1800, 3600, 21600, 86400}
	for _, s := range steps {
		if s*pxPerSec >= 8 {
			return s
		}
	}
	return 86400
}

func (m appModel) renderRuler(tw int) string {
	step := niceTickStep(m.pxPerSec)
	buf := make([]rune, tw)
	for i := range buf {
		buf[i] = ' '
	}
	first := math.Ceil(m.viewStart/step) * step
	for s := first; ; s += step {
		x := m.secondsToX(s) - sidebarWidth
		if x >= tw {
			break
		}
		if x < 0 {
			continue
		}
		label := []rune(formatSeconds(s))
		buf[x] = '|'
		for i, ch := range label {
			if x+1+i < tw {
				buf[x+1+i] = ch
			}
		}
	}
	return strings.Repeat(" ", sidebarWidth) + m.th.ruler.Render(string(buf))
}

func formatSeconds(s float64) string {
	neg := s < 0
	if neg {
		s = -s
	}
	d := int(s)
	out := ""
	switch {
	case d >= 3600:
		out = fmt.Sprintf("%dh%02dm", d/3600, (d%3600)/60)
	case d >= 60:
		out = fmt.Sprintf("%dm%02ds", d/60, d%60)
	default:
		out = fmt.Sprintf("%ds", d)
	}
	if neg {
		return "-" + out
	}
	return out
}

func (m appModel) renderLane(job *model.Job, row drag.Row, tw int, now float64) string {
	buf := newLaneBuf(tw, m.th.laneEmpty)

	var clips []*model.Clip
	label := ""
	if row.TrackID == model.MasterTrackID {
		label = m.th.masterLabel.Render(padLabel("MASTER", sidebarWidth))
		for i := range job.MasterClips {
			clips = append(clips, &job.MasterClips[i])
		}
	} else {
		t, ok := job.FindTrack(row.TrackID)
		if !ok {
			return ""
		}
		labelStyle := m.th.laneLabel
		if implicitAncestry(job, t) {
			// The lane is visible only as a side effect of a descendant
			// toggle; render its path dimmed.
			labelStyle = m.th.hiddenHint
		}
		label = labelStyle.Render(padLabel(trackLabel(job, t), sidebarWidth))
		for i := range t.Clips {
			clips = append(clips, &t.Clips[i])
		}
	}

	for _, c := range clips {
		m.drawClip(buf, c, now)
	}

	// Ghost previews ride on top of committed state.
	if m.preview.Active && m.preview.Ghosts != nil {
		ghostHere := m.preview.TargetTrackID == row.TrackID ||
			(m.preview.TargetTrackID == "" && m.ghostOriginRow(job, row.TrackID))
		if ghostHere {
			st := m.th.clipGhost
			if m.preview.Incompatible {
				st = m.th.clipRefused
			}
			id := buf.style(st)
			for _, tr := range m.preview.Ghosts {
				x0 := m.secondsToX(tr.Start) - sidebarWidth
				x1 := m.secondsToX(tr.EndOr(now)) - sidebarWidth
				for x := x0; x <= x1; x++ {
					buf.put(x, '░', id)
				}
			}
		}
	}

	// Playhead and snap indicator overlay everything.
	if px := m.secondsToX(now) - sidebarWidth; px >= 0 && px < tw {
		buf.put(px, '│', buf.style(m.th.playhead))
	}
	if m.preview.Active && m.preview.SnapTarget != nil {
		if sx := m.secondsToX(*m.preview.SnapTarget) - sidebarWidth; sx >= 0 && sx < tw {
			buf.put(sx, '┊', buf.style(m.th.snapMark))
		}
	}

	return label + buf.render()
}

func (m appModel) ghostOriginRow(job *model.Job, trackID string) bool {
	for id := range m.preview.Ghosts {
		if c, ok := job.FindClip(id); ok && c.TrackID == trackID {
			return true
		}
	}
	return false
}

func (m appModel) drawClip(buf *laneBuf, c *model.Clip, now float64) {
	x0 := m.secondsToX(c.TimeRange.Start) - sidebarWidth
	x1 := m.secondsToX(c.TimeRange.EndOr(now)) - sidebarWidth
	if x1 < 0 || x0 >= len(buf.runes) {
		return
	}

	st := lipgloss.NewStyle().Background(lipgloss.Color(c.Color)).Foreground(lipgloss.Color("0"))
	if c.Selected {
		st = m.th.clipSelected
	} else if c.LinkType == model.LinkTypeSource || c.LinkType == model.LinkTypeDestination {
		st = m.th.clipPinned.Background(lipgloss.Color(c.Color)).Foreground(lipgloss.Color("0"))
	}

	label := clipLabel(c, now)
	buf.block(x0, x1, label, buf.style(st))
	if c.TimeRange.Live() {
		buf.put(x1, '›', buf.style(st))
	}
}

func clipLabel(c *model.Clip, now float64) string {
	name := c.Name
	switch c.State {
	case model.ClipStateUploading, model.ClipStateProcessing:
		name = fmt.Sprintf("%s %s %.0f%%", name, c.State, c.Progress)
	case model.ClipStateError:
		name += " !"
	case model.ClipStateComplete:
		name += " ✓"
	}
	switch c.LinkType {
	case model.LinkTypeSource:
		name = "S " + name
	case model.LinkTypeDestination:
		name = "D " + name
	case model.LinkTypeFlexible:
		name = "~ " + name
	}
	return name
}

func implicitAncestry(job *model.Job, t *model.Track) bool {
	a, ok := job.FindAspect(t.AspectID)
	if !ok {
		return false
	}
	if a.VisibilityMode == model.VisibilityImplicit {
		return true
	}
	g, ok := job.FindGroup(a.GroupID)
	return ok && g.VisibilityMode == model.VisibilityImplicit
}

func trackLabel(job *model.Job, t *model.Track) string {
	parts := t.Name
	if a, ok := job.FindAspect(t.AspectID); ok {
		parts = a.Name + "/" + parts
		if g, ok := job.FindGroup(a.GroupID); ok {
			parts = g.Name + "/" + parts
		}
	}
	flags := ""
	if t.Muted {
		flags += " M"
	}
	if t.Locked {
		flags += " L"
	}
	if t.Unit != "" {
		flags += " (" + t.Unit + ")"
	}
	return parts + flags
}

func padLabel(s string, w int) string {
	r := []rune(s)
	if len(r) > w-1 {
		r = r[:w-1]
	}
	return " " + string(r) + strings.Repeat(" ", w-1-len(r))
}

func (m appModel) renderStatusBar() string {
	if m.status != "" {
		st := m.th.statusBar
		if m.statusErr {
			st = m.th.errText
		}
		return st.Render(" " + m.status)
	}
	if m.preview.Active {
		what := "move"
		switch m.preview.Type {
		case drag.ResizeLeft, drag.ResizeRight:
			what = "resize"
		}
		if m.preview.Copying {
			what = "copy"
		}
		extra := ""
		if m.preview.Incompatible {
			extra = "  incompatible target"
		}
		return m.th.statusBar.Render(fmt.Sprintf(" %s Δ%+.1fs%s", what, m.preview.Delta, extra))
	}
	hint := " tab: cycle  drag: move/resize  alt+drag: copy  ctrl/shift+click: select  1/2/3: link  u: unlink  s: sync  x: del  d: dup  q: quit"
	if n := m.sel.Count(); n > 0 {
		hint = fmt.Sprintf(" %d selected %s", n, hint)
	}
	return m.th.statusBar.Render(hint)
}
