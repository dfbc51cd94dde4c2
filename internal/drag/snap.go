package drag

import (
	"math"

	"syncline/internal/model"
)

// CollectSnapPoints gathers candidate times a dragged edge may lock onto:
// the playhead, every master-lane clip boundary, and every regular clip's
// start and end on any track. Clips in exclude contribute nothing; in copy
// mode the caller passes no exclusions so a copy may snap to its own
// original.
func CollectSnapPoints(job *model.Job, playhead float64, now float64, exclude map[string]bool) []float64 {
	points := []float64{playhead}
	add := func(c *model.Clip) {
		if exclude[c.ID] {
			return
		}
		points = append(points, c.TimeRange.Start)
		if c.TimeRange.End != nil {
			points = append(points, *c.TimeRange.End)
		} else {
			points = append(points, now)
		}
	}
	for i := range job.MasterClips {
		add(&job.MasterClips[i])
	}
	for _, c := range job.AllClips() {
		add(c)
	}
	return points
}

// EdgeSnap finds the candidate nearest to a single edge. Returns the
// adjustment to apply and whether anything was within threshold.
func EdgeSnap(edge float64, points []float64, threshold float64) (float64, bool) {
	best := math.Inf(1)
	adjust := 0.0
	for _, p := range points {
		d := p - edge
		if math.Abs(d) < math.Abs(best) {
			best = d
			adjust = d
		}
	}
	if math.Abs(best) <= threshold {
		return adjust, true
	}
	return 0, false
}

// RangeSnap adjusts a moving range so whichever edge has the nearest
// candidate within threshold locks onto it; the other edge follows at fixed
// duration. When both edges have candidates at exactly the same distance,
// the start edge wins.
func RangeSnap(start float64, end *float64, points []float64, threshold float64) (float64, bool) {
	dStart, okStart := EdgeSnap(start, points, threshold)
	if end == nil {
		return dStart, okStart
	}
	dEnd, okEnd := EdgeSnap(*end, points, threshold)
	switch {
	case okStart && okEnd:
		if math.Abs(dEnd) < math.Abs(dStart) {
			return dEnd, true
		}
		return dStart, true
	case okStart:
		return dStart, true
	case okEnd:
		return dEnd, true
	default:
		return 0, false
	}
}
