// invariants.go — Structural checks over a timeline.
package timeline

import (
	"fmt"
	"math"

	"github.com/ozdemirkulaoglu/dakka/internal/types"
)

// Validate returns the first invariant violation found in tl, or nil.
func Validate(tl Timeline) error {
	for i, e := range tl {
		kind := e.Kind()
		if kind == types.KindInvalid {
			return fmt.Errorf("entry %d: empty entry", i)
		}
		if kind == types.KindGroup {
			if len(e.Group) < 2 {
				return fmt.Errorf("entry %d: group has %d members", i, len(e.Group))
			}
			for j, m := range e.Group {
				if m.TriggeredAt != e.Group[0].TriggeredAt {
					return fmt.Errorf("entry %d: member %d stamp %v differs from %v", i, j, m.TriggeredAt, e.Group[0].TriggeredAt)
				}
			}
		}
		if e.Index() != i {
			return fmt.Errorf("entry %d: eventRecordIndex is %d", i, e.Index())
		}

		want := 0.0
		if i > 0 {
			prev := tl[i-1].TriggeredAt()
			if cur := e.TriggeredAt(); !math.IsNaN(prev) && !math.IsNaN(cur) && cur < prev {
				return fmt.Errorf("entry %d: stamp %v precedes %v", i, cur, prev)
			}
			want = Delta(prev, e.TriggeredAt())
		}
		if e.DeltaTime() != want {
			return fmt.Errorf("entry %d: deltaTime %v, want %v", i, e.DeltaTime(), want)
		}
	}
	return nil
}
