// composer.go — Tab-keyed event composition state.
// Owns one timeline per browser tab plus its epoch, running index, active
// block pointer and manual-insert flag. All mutations go through Composer
// methods under a single mutex, so no caller observes a partial update.
package recorder

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ozdemirkulaoglu/dakka/internal/timeline"
	"github.com/ozdemirkulaoglu/dakka/internal/types"
)

// Action is what Ingest did with a record.
type Action string

const (
	ActionAppended Action = "appended"
	ActionMerged   Action = "merged"
	ActionBound    Action = "bound"
	ActionDropped  Action = "dropped"
)

// Drop reasons reported in Result.Reason.
const (
	ReasonInvalidTab   = "invalid_tab"
	ReasonDisabled     = "recorder_disabled"
	ReasonUntracked    = "untracked_type"
	ReasonDuplicate    = "duplicate"
	ReasonBlockMissing = "active_block_missing"
)

// Result reports the effect of one Ingest call.
type Result struct {
	Action Action `json:"action"`
	Reason string `json:"reason,omitempty"`
	Index  int    `json:"index"`
}

type tabState struct {
	events        timeline.Timeline
	epoch         float64
	recordIndex   int
	activeBlockID string
	manualInsert  bool
}

// Composer is the per-tab event composition store.
type Composer struct {
	mu       sync.Mutex
	tabs     map[int]*tabState
	settings Settings
	log      *zap.Logger
	newID    func() string
}

// Option configures a Composer.
type Option func(*Composer)

// WithLogger sets the logger used for drop and mutation traces.
func WithLogger(l *zap.Logger) Option {
	return func(c *Composer) {
		if l != nil {
			c.log = l
		}
	}
}

// WithSettings replaces the default settings.
func WithSettings(s Settings) Option {
	return func(c *Composer) { c.settings = s.clone() }
}

// WithIDGenerator overrides uuid-based block ids.
func WithIDGenerator(fn func() string) Option {
	return func(c *Composer) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// NewComposer creates an empty store.
func NewComposer(opts ...Option) *Composer {
	c := &Composer{
		tabs:     make(map[int]*tabState),
		settings: DefaultSettings(),
		log:      zap.NewNop(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Composer) tab(tabID int) *tabState {
	st := c.tabs[tabID]
	if st == nil {
		st = &tabState{}
		c.tabs[tabID] = st
	}
	return st
}

func (c *Composer) drop(tabID int, reason string, rec types.Record) Result {
	c.log.Debug("record dropped",
		zap.Int("tab", tabID),
		zap.String("reason", reason),
		zap.String("type", string(rec.Payload.Type)))
	return Result{Action: ActionDropped, Reason: reason, Index: -1}
}

// ============================================
// Ingest
// ============================================

// Ingest applies one inbound record to the tab's timeline.
// An ELEMENT_SELECTED record binds into the tab's active block when one is
// set, independent of the recorder switch. Everything else requires the
// recorder to be enabled and the event type to be tracked. Records that are
// not applied are reported as dropped, never as errors.
func (c *Composer) Ingest(tabID int, rec types.Record) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tabID < 0 {
		return c.drop(tabID, ReasonInvalidTab, rec)
	}

	if st := c.tabs[tabID]; st != nil && st.activeBlockID != "" && rec.IsElementSelection() {
		blockID := st.activeBlockID
		st.activeBlockID = ""
		tl, ok := timeline.BindElement(st.events, blockID, rec.Payload)
		if !ok {
			return c.drop(tabID, ReasonBlockMissing, rec)
		}
		st.events = tl
		idx := timeline.IndexOf(tl, blockID)
		c.log.Debug("element bound", zap.Int("tab", tabID), zap.String("block", blockID), zap.Int("index", idx))
		return Result{Action: ActionBound, Index: idx}
	}

	if !c.settings.Enabled {
		return c.drop(tabID, ReasonDisabled, rec)
	}
	if !c.settings.Tracked[rec.Payload.Type] {
		return c.drop(tabID, ReasonUntracked, rec)
	}

	ev := rec.Payload.Clone()
	if ev.ID == "" {
		ev.ID = rec.ID
	}
	if ev.ID == "" {
		ev.ID = c.newID()
	}

	st := c.tab(tabID)
	if len(st.events) == 0 {
		st.events = timeline.Timeline{}
		st.recordIndex = 0
		st.epoch = 0
		if c.settings.RelativeTimestamps {
			st.epoch = ev.TriggeredAt
		}
	}
	ev.TriggeredAt -= st.epoch

	tl, outcome := timeline.Append(st.events, ev)
	if outcome == timeline.Duplicate {
		return c.drop(tabID, ReasonDuplicate, rec)
	}
	st.events = tl
	st.recordIndex = len(tl)
	st.manualInsert = false

	action := ActionAppended
	if outcome == timeline.Merged {
		action = ActionMerged
	}
	return Result{Action: action, Index: len(tl) - 1}
}

// ============================================
// Timeline edits
// ============================================

// BlockOption customizes a block before insertion.
type BlockOption func(*types.EventBlock)

// WithAssertion attaches assertion metadata to the block.
func WithAssertion(kind types.AssertionType, value, attribute string) BlockOption {
	return func(b *types.EventBlock) {
		b.AssertionType = kind
		b.AssertionValue = value
		b.AssertionAttribute = attribute
	}
}

// WithElement binds an element at insertion time.
func WithElement(el types.InteractionEvent) BlockOption {
	return func(b *types.EventBlock) {
		e := el.Clone()
		b.Element = &e
		b.IsInIframe = b.IsInIframe || e.IsInIframe
	}
}

// WithBlockID pins the block id instead of generating one. Replayed
// journals use it so later messages naming the block still resolve.
func WithBlockID(id string) BlockOption {
	return func(b *types.EventBlock) {
		if id != "" {
			b.ID = id
		}
	}
}

// InsertBlock inserts a new block right after afterIndex (-1 for the head).
// Returns the block id, or false when afterIndex does not resolve or the
// id is already taken. A failed insert leaves no state behind.
func (c *Composer) InsertBlock(tabID int, typ types.EventType, afterIndex int, triggeredAt float64, opts ...BlockOption) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tabID < 0 {
		return "", false
	}
	block := types.EventBlock{
		ID:          c.newID(),
		Type:        typ,
		Variant:     types.VariantInteractiveElement,
		TriggeredAt: triggeredAt,
	}
	for _, opt := range opts {
		opt(&block)
	}

	var events timeline.Timeline
	if st := c.tabs[tabID]; st != nil {
		events = st.events
	}
	if timeline.IndexOf(events, block.ID) >= 0 {
		return "", false
	}
	tl, idx, ok := timeline.InsertBlock(events, block, afterIndex)
	if !ok {
		return "", false
	}
	st := c.tab(tabID)
	st.events = tl
	st.recordIndex = len(tl)
	st.manualInsert = idx != len(tl)-1

	c.log.Debug("block inserted",
		zap.Int("tab", tabID),
		zap.String("block", block.ID),
		zap.Int("index", idx),
		zap.Bool("manual_insert", st.manualInsert))
	return block.ID, true
}

// RemoveEvent removes the entry at path[0], or member path[1] of a group.
// Unresolved paths are a no-op and return false.
func (c *Composer) RemoveEvent(tabID int, path ...int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.tabs[tabID]
	if st == nil || len(path) == 0 {
		return false
	}
	before := len(st.events)
	tl, ok := timeline.Remove(st.events, path[0], path[1:]...)
	if !ok {
		return false
	}
	st.events = tl
	if len(tl) < before {
		st.recordIndex--
	}
	if st.activeBlockID != "" && timeline.IndexOf(tl, st.activeBlockID) < 0 {
		st.activeBlockID = ""
	}
	return true
}

// SelectSelector applies sel to every occurrence of matchKey in the tab.
// Returns the number of targets updated.
func (c *Composer) SelectSelector(tabID int, matchKey string, sel types.Selector) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.tabs[tabID]
	if st == nil {
		return 0
	}
	tl, n := timeline.SelectSelector(st.events, matchKey, sel)
	st.events = tl
	return n
}

// Clear drops the tab's timeline, epoch and counters.
func (c *Composer) Clear(tabID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tabs, tabID)
}

// SetActiveBlock marks blockID as awaiting an element. An empty id clears it.
func (c *Composer) SetActiveBlock(tabID int, blockID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.tabs[tabID]
	if blockID == "" {
		if st != nil {
			st.activeBlockID = ""
		}
		return true
	}
	if st == nil {
		return false
	}
	idx := timeline.IndexOf(st.events, blockID)
	if idx < 0 || st.events[idx].Kind() != types.KindBlock {
		return false
	}
	st.activeBlockID = blockID
	return true
}

// ============================================
// Read access
// ============================================

// Snapshot returns a deep copy of the tab's timeline; unknown tabs are empty.
func (c *Composer) Snapshot(tabID int) timeline.Timeline {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.tabs[tabID]
	if st == nil {
		return timeline.Timeline{}
	}
	out := timeline.Clone(st.events)
	if out == nil {
		out = timeline.Timeline{}
	}
	return out
}

// ActiveBlock returns the id of the block awaiting an element, if any.
func (c *Composer) ActiveBlock(tabID int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if st := c.tabs[tabID]; st != nil {
		return st.activeBlockID
	}
	return ""
}

// ManualInsert reports whether the last edit inserted before the tail.
func (c *Composer) ManualInsert(tabID int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if st := c.tabs[tabID]; st != nil {
		return st.manualInsert
	}
	return false
}

// RecordIndex returns the index the tab's next appended entry will take,
// which equals the number of top-level entries. Appends and inserts set
// it; removals that drop an entry lower it.
func (c *Composer) RecordIndex(tabID int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if st := c.tabs[tabID]; st != nil {
		return st.recordIndex
	}
	return 0
}

// Epoch returns the absolute stamp the tab's timeline is relative to.
func (c *Composer) Epoch(tabID int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if st := c.tabs[tabID]; st != nil {
		return st.epoch
	}
	return 0
}

// Tabs returns the ids of tabs with state, sorted.
func (c *Composer) Tabs() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]int, 0, len(c.tabs))
	for id := range c.tabs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ============================================
// Settings
// ============================================

// Settings returns a copy of the current settings.
func (c *Composer) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings.clone()
}

// ApplySettings replaces the settings wholesale.
func (c *Composer) ApplySettings(s Settings) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = s.clone()
	if c.settings.Tracked == nil {
		c.settings.Tracked = map[types.EventType]bool{}
	}
}

// SetEnabled turns recording on or off. Existing timelines are kept.
func (c *Composer) SetEnabled(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.Enabled = on
	c.log.Info("recorder toggled", zap.Bool("enabled", on))
}

// Enabled reports whether recording is on.
func (c *Composer) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings.Enabled
}

// TrackEvent adds or removes one event type from the allow-list.
func (c *Composer) TrackEvent(t types.EventType, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.Tracked[t] = on
}

// TrackAll sets every known event type to on.
func (c *Composer) TrackAll(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range types.EventTypes() {
		c.settings.Tracked[t] = on
	}
	for t := range c.settings.Tracked {
		c.settings.Tracked[t] = on
	}
}

// Tracked reports whether t is on the allow-list.
func (c *Composer) Tracked(t types.EventType) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings.Tracked[t]
}
