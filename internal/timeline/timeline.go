// timeline.go — Functional edits of a tab's event timeline.
// Every operation takes a Timeline and returns a new one; inputs are never
// mutated. Derived fields (deltaTime, eventRecordIndex) are restamped from
// the mutation point so the invariants hold on every returned value.
package timeline

import (
	"math"

	"github.com/ozdemirkulaoglu/dakka/internal/types"
)

// Timeline is the ordered entry list of one browser tab.
type Timeline []types.Entry

// Outcome describes what Append did with an event.
type Outcome int

const (
	Appended Outcome = iota
	Merged
	Duplicate
)

func (o Outcome) String() string {
	switch o {
	case Appended:
		return "appended"
	case Merged:
		return "merged"
	case Duplicate:
		return "duplicate"
	}
	return "unknown"
}

// Clone deep-copies a timeline.
func Clone(tl Timeline) Timeline {
	if tl == nil {
		return nil
	}
	out := make(Timeline, len(tl))
	for i := range tl {
		out[i] = tl[i].Clone()
	}
	return out
}

// Delta returns cur - prev, or 0 when either stamp is non-finite.
func Delta(prev, cur float64) float64 {
	d := cur - prev
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0
	}
	return d
}

// Recompute restamps deltaTime and eventRecordIndex on tl[from:] in place.
// The first entry always gets deltaTime 0.
func Recompute(tl Timeline, from int) {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(tl); i++ {
		delta := 0.0
		if i > 0 {
			delta = Delta(tl[i-1].TriggeredAt(), tl[i].TriggeredAt())
		}
		tl[i].SetTiming(delta, i)
	}
}

// IsDuplicate reports whether ev repeats a member of the most recent entry.
func IsDuplicate(tl Timeline, ev types.InteractionEvent) bool {
	if len(tl) == 0 {
		return false
	}
	for _, m := range tl[len(tl)-1].Members() {
		if m.SameAs(ev) {
			return true
		}
	}
	return false
}

// Append adds ev at the tail, merging it into the last entry when the
// timestamps match exactly. Duplicates leave the timeline unchanged.
func Append(tl Timeline, ev types.InteractionEvent) (Timeline, Outcome) {
	if IsDuplicate(tl, ev) {
		return tl, Duplicate
	}
	out := Clone(tl)
	if n := len(out); n > 0 {
		last := out[n-1]
		if last.Kind() != types.KindBlock && last.TriggeredAt() == ev.TriggeredAt {
			members := append(last.Members(), ev)
			out[n-1] = types.GroupEntry(members...)
			Recompute(out, n-1)
			return out, Merged
		}
	}
	out = append(out, types.EventEntry(ev))
	Recompute(out, len(out)-1)
	return out, Appended
}

// InsertBlock places b right after index after (-1 inserts at the head).
// A stamp colliding with an existing entry is bumped by the smallest float
// increment until unique, staying within the neighbours' range when possible.
// Returns the new timeline, the block's index, and false when after is out of range.
func InsertBlock(tl Timeline, b types.EventBlock, after int) (Timeline, int, bool) {
	idx := after + 1
	if idx < 0 || idx > len(tl) {
		return tl, -1, false
	}

	lo, hi := math.Inf(-1), math.Inf(1)
	if idx > 0 {
		lo = tl[idx-1].TriggeredAt()
	}
	if idx < len(tl) {
		hi = tl[idx].TriggeredAt()
	}
	b.TriggeredAt = placeStamp(tl, b.TriggeredAt, lo, hi)

	out := make(Timeline, 0, len(tl)+1)
	for _, e := range tl[:idx] {
		out = append(out, e.Clone())
	}
	out = append(out, types.BlockEntry(b.Clone()))
	for _, e := range tl[idx:] {
		out = append(out, e.Clone())
	}
	Recompute(out, idx)
	return out, idx, true
}

func placeStamp(tl Timeline, want, lo, hi float64) float64 {
	used := make(map[float64]bool, len(tl))
	for _, e := range tl {
		used[e.TriggeredAt()] = true
	}

	t := want
	if math.IsNaN(t) || math.IsInf(t, 0) {
		t = lo
		if math.IsInf(t, 0) {
			t = 0
		}
	}
	if t < lo {
		t = lo
	}
	if t > hi {
		t = hi
	}

	up := t
	for used[up] {
		up = math.Nextafter(up, math.Inf(1))
	}
	if up <= hi {
		return up
	}

	down := t
	for used[down] {
		down = math.Nextafter(down, math.Inf(-1))
	}
	if down >= lo {
		return down
	}
	// No free stamp between equal neighbours: keep ordering.
	return lo
}

// Remove deletes the entry at index, or one member of a coalesced group when
// member is given. A group left with one member collapses to a single event.
// Returns false, with tl unchanged, when the path does not resolve.
func Remove(tl Timeline, index int, member ...int) (Timeline, bool) {
	if index < 0 || index >= len(tl) {
		return tl, false
	}
	target := tl[index]

	out := Clone(tl)
	switch {
	case len(member) > 0 && target.Kind() == types.KindGroup:
		m := member[0]
		if m < 0 || m >= len(target.Group) {
			return tl, false
		}
		rest := make([]types.InteractionEvent, 0, len(target.Group)-1)
		rest = append(rest, out[index].Group[:m]...)
		rest = append(rest, out[index].Group[m+1:]...)
		if len(rest) == 0 {
			out = append(out[:index], out[index+1:]...)
		} else {
			out[index] = types.GroupEntry(rest...)
		}
	case len(member) > 0 && member[0] != 0:
		return tl, false
	default:
		out = append(out[:index], out[index+1:]...)
	}

	Recompute(out, 0)
	return out, true
}

// SelectSelector sets sel on every event whose raw selector is matchKey and on
// every block whose bound element's selector is matchKey.
// Returns the new timeline and the number of targets updated.
func SelectSelector(tl Timeline, matchKey string, sel types.Selector) (Timeline, int) {
	out := Clone(tl)
	n := 0
	choose := func(ev *types.InteractionEvent) {
		s := sel
		ev.SelectedSelector = &s
		n++
	}
	for i := range out {
		switch out[i].Kind() {
		case types.KindEvent:
			if out[i].Event.Selector == matchKey {
				choose(out[i].Event)
			}
		case types.KindGroup:
			for j := range out[i].Group {
				if out[i].Group[j].Selector == matchKey {
					choose(&out[i].Group[j])
				}
			}
		case types.KindBlock:
			if el := out[i].Block.Element; el != nil && el.Selector == matchKey {
				choose(el)
			}
		}
	}
	return out, n
}

// BindElement attaches el to the block with blockID.
func BindElement(tl Timeline, blockID string, el types.InteractionEvent) (Timeline, bool) {
	idx := IndexOf(tl, blockID)
	if idx < 0 || tl[idx].Kind() != types.KindBlock {
		return tl, false
	}
	out := Clone(tl)
	bound := el.Clone()
	out[idx].Block.Element = &bound
	if bound.IsInIframe {
		out[idx].Block.IsInIframe = true
	}
	return out, true
}

// IndexOf returns the position of the entry (or group member) with id, or -1.
func IndexOf(tl Timeline, id string) int {
	for i := range tl {
		if tl[i].Kind() == types.KindBlock {
			if tl[i].Block.ID == id {
				return i
			}
			continue
		}
		for _, m := range tl[i].Members() {
			if m.ID == id {
				return i
			}
		}
	}
	return -1
}
