package recorder

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ozdemirkulaoglu/dakka/internal/timeline"
	"github.com/ozdemirkulaoglu/dakka/internal/types"
)

func record(id string, typ types.EventType, at float64, sel string) types.Record {
	return types.Record{
		ID:      id,
		Type:    types.MessageEventRecorded,
		Payload: types.InteractionEvent{ID: id, Type: typ, TriggeredAt: at, Selector: sel},
	}
}

func selection(sel string) types.Record {
	return types.Record{
		ID:      "sel-" + sel,
		Type:    types.MessageElementSelected,
		Payload: types.InteractionEvent{Type: types.EventMouseClick, Selector: sel},
	}
}

func newEnabled(t *testing.T) *Composer {
	t.Helper()
	n := 0
	c := NewComposer(
		WithLogger(zaptest.NewLogger(t)),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	)
	c.SetEnabled(true)
	return c
}

func TestIngestRebasesOnFirstRecord(t *testing.T) {
	t.Parallel()
	c := newEnabled(t)

	res := c.Ingest(1, record("a", types.EventRedirect, 1000, ""))
	assert.Equal(t, ActionAppended, res.Action)
	res = c.Ingest(1, record("b", types.EventMouseClick, 1250, "#go"))
	assert.Equal(t, ActionAppended, res.Action)
	assert.Equal(t, 1, res.Index)

	tl := c.Snapshot(1)
	require.Len(t, tl, 2)
	assert.Equal(t, 0.0, tl[0].TriggeredAt())
	assert.Equal(t, 250.0, tl[1].TriggeredAt())
	assert.Equal(t, 250.0, tl[1].DeltaTime())
	assert.Equal(t, 1000.0, c.Epoch(1))
	assert.Equal(t, 2, c.RecordIndex(1))
	require.NoError(t, timeline.Validate(tl))
}

func TestIngestAbsoluteStamps(t *testing.T) {
	t.Parallel()
	s := DefaultSettings()
	s.Enabled = true
	s.RelativeTimestamps = false
	c := NewComposer(WithSettings(s))

	c.Ingest(1, record("a", types.EventMouseClick, 1000, "#a"))
	assert.Equal(t, 1000.0, c.Snapshot(1)[0].TriggeredAt())
}

func TestIngestMergesAndSuppresses(t *testing.T) {
	t.Parallel()
	c := newEnabled(t)

	c.Ingest(1, record("a", types.EventMouseClick, 10, "#a"))
	res := c.Ingest(1, record("b", types.EventKeyboard, 10, "#b"))
	assert.Equal(t, ActionMerged, res.Action)

	res = c.Ingest(1, record("c", types.EventKeyboard, 10, "#b"))
	assert.Equal(t, ActionDropped, res.Action)
	assert.Equal(t, ReasonDuplicate, res.Reason)

	tl := c.Snapshot(1)
	require.Len(t, tl, 1)
	assert.Equal(t, types.KindGroup, tl[0].Kind())
}

func TestIngestGates(t *testing.T) {
	t.Parallel()
	c := NewComposer()

	res := c.Ingest(1, record("a", types.EventMouseClick, 0, "#a"))
	assert.Equal(t, ReasonDisabled, res.Reason)

	c.SetEnabled(true)
	res = c.Ingest(1, record("k", types.EventKeyUp, 0, "#a"))
	assert.Equal(t, ReasonUntracked, res.Reason, "keyup is off by default")

	c.TrackEvent(types.EventKeyUp, true)
	res = c.Ingest(1, record("k", types.EventKeyUp, 0, "#a"))
	assert.Equal(t, ActionAppended, res.Action)

	res = c.Ingest(-1, record("z", types.EventMouseClick, 0, "#a"))
	assert.Equal(t, ReasonInvalidTab, res.Reason)

	c.TrackAll(false)
	assert.False(t, c.Tracked(types.EventMouseClick))
	assert.Empty(t, c.Settings().TrackedTypes())
}

func TestElementSelectionBindsWhileDisabled(t *testing.T) {
	t.Parallel()
	c := newEnabled(t)

	c.Ingest(1, record("a", types.EventRedirect, 0, ""))
	id, ok := c.InsertBlock(1, types.EventMouseClick, 0, 5)
	require.True(t, ok)
	require.True(t, c.SetActiveBlock(1, id))

	c.SetEnabled(false)
	res := c.Ingest(1, selection("#picked"))
	assert.Equal(t, ActionBound, res.Action)
	assert.Equal(t, 1, res.Index)
	assert.Empty(t, c.ActiveBlock(1), "binding consumes the active block")

	tl := c.Snapshot(1)
	require.NotNil(t, tl[1].Block.Element)
	assert.Equal(t, "#picked", tl[1].Block.Element.Selector)

	// Without an active block the selection is an ordinary record and the
	// recorder switch applies.
	res = c.Ingest(1, selection("#again"))
	assert.Equal(t, ReasonDisabled, res.Reason)
}

func TestElementSelectionStaleBlock(t *testing.T) {
	t.Parallel()
	c := newEnabled(t)

	id, ok := c.InsertBlock(1, types.EventAssertion, -1, 0)
	require.True(t, ok)
	require.True(t, c.SetActiveBlock(1, id))
	require.True(t, c.RemoveEvent(1, 0))
	assert.Empty(t, c.ActiveBlock(1), "removing the block clears the pointer")

	assert.False(t, c.SetActiveBlock(1, "missing"))
	assert.True(t, c.SetActiveBlock(1, ""))
}

func TestInsertBlockManualFlag(t *testing.T) {
	t.Parallel()
	c := newEnabled(t)

	c.Ingest(1, record("a", types.EventRedirect, 0, ""))
	c.Ingest(1, record("b", types.EventMouseClick, 10, "#b"))

	_, ok := c.InsertBlock(1, types.EventAssertion, 0, 5,
		WithAssertion(types.AssertEquals, "Hi", ""))
	require.True(t, ok)
	assert.True(t, c.ManualInsert(1))

	tl := c.Snapshot(1)
	require.Len(t, tl, 3)
	assert.Equal(t, types.AssertEquals, tl[1].Block.AssertionType)
	assert.Equal(t, types.VariantInteractiveElement, tl[1].Block.Variant)
	require.NoError(t, timeline.Validate(tl))

	_, ok = c.InsertBlock(1, types.EventMouseClick, 2, 50,
		WithElement(types.InteractionEvent{Selector: "#f", IsInIframe: true}))
	require.True(t, ok)
	assert.False(t, c.ManualInsert(1), "insert at the tail is not manual")
	assert.True(t, c.Snapshot(1)[3].Block.IsInIframe)

	c.Ingest(1, record("c", types.EventMouseClick, 60, "#c"))
	assert.False(t, c.ManualInsert(1))

	_, ok = c.InsertBlock(1, types.EventMouseClick, 99, 0)
	assert.False(t, ok)
}

func TestInsertBlockFailureLeavesNoTab(t *testing.T) {
	t.Parallel()
	c := newEnabled(t)

	_, ok := c.InsertBlock(5, types.EventAssertion, 3, 0)
	assert.False(t, ok)
	assert.Empty(t, c.Tabs(), "a rejected insert must not create tab state")

	id, ok := c.InsertBlock(5, types.EventAssertion, -1, 0)
	require.True(t, ok)
	assert.Equal(t, "id-2", id)
	assert.Equal(t, []int{5}, c.Tabs())
	assert.Equal(t, 1, c.RecordIndex(5))
}

func TestInsertBlockWithFixedID(t *testing.T) {
	t.Parallel()
	c := newEnabled(t)
	c.Ingest(1, record("a", types.EventMouseClick, 0, "#a"))

	id, ok := c.InsertBlock(1, types.EventAssertion, 0, 5, WithBlockID("pinned"))
	require.True(t, ok)
	assert.Equal(t, "pinned", id)
	assert.True(t, c.SetActiveBlock(1, "pinned"))

	_, ok = c.InsertBlock(1, types.EventAssertion, 1, 6, WithBlockID("pinned"))
	assert.False(t, ok, "duplicate block id")
	_, ok = c.InsertBlock(1, types.EventAssertion, 1, 6, WithBlockID("a"))
	assert.False(t, ok, "id already used by an event")
	assert.Len(t, c.Snapshot(1), 2)
}

func TestRemoveEventPaths(t *testing.T) {
	t.Parallel()
	c := newEnabled(t)

	c.Ingest(1, record("a", types.EventMouseClick, 0, "#a"))
	c.Ingest(1, record("b", types.EventMouseClick, 0, "#b"))
	c.Ingest(1, record("c", types.EventMouseClick, 30, "#c"))

	assert.False(t, c.RemoveEvent(1))
	assert.False(t, c.RemoveEvent(2, 0))
	assert.False(t, c.RemoveEvent(1, 0, 7))

	require.True(t, c.RemoveEvent(1, 0, 1))
	tl := c.Snapshot(1)
	require.Len(t, tl, 2)
	assert.Equal(t, types.KindEvent, tl[0].Kind())
	assert.Equal(t, 2, c.RecordIndex(1))

	require.True(t, c.RemoveEvent(1, 0))
	assert.Equal(t, 1, c.RecordIndex(1))
	assert.Equal(t, 0.0, c.Snapshot(1)[0].DeltaTime())
}

func TestSelectSelectorAndClear(t *testing.T) {
	t.Parallel()
	c := newEnabled(t)

	c.Ingest(3, record("a", types.EventMouseClick, 0, "#dup"))
	c.Ingest(3, record("b", types.EventMouseClick, 5, "#dup"))
	n := c.SelectSelector(3, "#dup", types.Selector{Name: types.SelectorTestID, Value: "[data-testid=\"x\"]"})
	assert.Equal(t, 2, n)
	assert.Equal(t, 0, c.SelectSelector(9, "#dup", types.Selector{}))

	assert.Equal(t, []int{3}, c.Tabs())
	c.Clear(3)
	assert.Empty(t, c.Tabs())
	assert.Empty(t, c.Snapshot(3))

	// A cleared tab takes a new epoch from its next record.
	c.Ingest(3, record("c", types.EventMouseClick, 900, "#c"))
	assert.Equal(t, 900.0, c.Epoch(3))
}

func TestSnapshotIsolation(t *testing.T) {
	t.Parallel()
	c := newEnabled(t)

	c.Ingest(1, record("a", types.EventMouseClick, 0, "#a"))
	snap := c.Snapshot(1)
	snap[0].Event.Selector = "#mutated"
	assert.Equal(t, "#a", c.Snapshot(1)[0].Event.Selector)

	s := c.Settings()
	s.Tracked[types.EventMouseClick] = false
	assert.True(t, c.Tracked(types.EventMouseClick))
}

func TestTabsAreIndependent(t *testing.T) {
	t.Parallel()
	c := newEnabled(t)

	c.Ingest(1, record("a", types.EventMouseClick, 100, "#a"))
	c.Ingest(2, record("b", types.EventMouseClick, 500, "#b"))
	c.Ingest(1, record("c", types.EventMouseClick, 150, "#c"))

	assert.Len(t, c.Snapshot(1), 2)
	assert.Len(t, c.Snapshot(2), 1)
	assert.Equal(t, 50.0, c.Snapshot(1)[1].TriggeredAt())
}

func TestConcurrentIngest(t *testing.T) {
	t.Parallel()
	c := newEnabled(t)

	var wg sync.WaitGroup
	for tab := 0; tab < 4; tab++ {
		wg.Add(1)
		go func(tab int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				c.Ingest(tab, record(fmt.Sprintf("%d-%d", tab, i), types.EventMouseClick, float64(i*10), fmt.Sprintf("#e%d", i)))
			}
		}(tab)
	}
	wg.Wait()

	for tab := 0; tab < 4; tab++ {
		tl := c.Snapshot(tab)
		assert.Len(t, tl, 50)
		assert.NoError(t, timeline.Validate(tl))
	}
}
