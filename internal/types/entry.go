// entry.go — Timeline entries: a single event, a coalesced group, or a block.
package types

// EntryKind discriminates the three entry shapes.
type EntryKind int

const (
	KindInvalid EntryKind = iota
	KindEvent
	KindGroup
	KindBlock
)

func (k EntryKind) String() string {
	switch k {
	case KindEvent:
		return "event"
	case KindGroup:
		return "group"
	case KindBlock:
		return "block"
	default:
		return "invalid"
	}
}

// Entry is one timeline position. Exactly one field is set.
type Entry struct {
	Event *InteractionEvent  `json:"event,omitempty"`
	Group []InteractionEvent `json:"group,omitempty"`
	Block *EventBlock        `json:"block,omitempty"`
}

// EventEntry wraps a single event.
func EventEntry(ev InteractionEvent) Entry {
	return Entry{Event: &ev}
}

// GroupEntry wraps events sharing one timestamp. One member degrades to EventEntry.
func GroupEntry(members ...InteractionEvent) Entry {
	switch len(members) {
	case 0:
		return Entry{}
	case 1:
		return EventEntry(members[0])
	}
	return Entry{Group: append([]InteractionEvent(nil), members...)}
}

// BlockEntry wraps an inserted block.
func BlockEntry(b EventBlock) Entry {
	return Entry{Block: &b}
}

// Kind reports which shape the entry has.
func (e Entry) Kind() EntryKind {
	switch {
	case e.Event != nil:
		return KindEvent
	case len(e.Group) > 0:
		return KindGroup
	case e.Block != nil:
		return KindBlock
	}
	return KindInvalid
}

// TriggeredAt returns the representative timestamp (first member for groups).
func (e Entry) TriggeredAt() float64 {
	switch e.Kind() {
	case KindEvent:
		return e.Event.TriggeredAt
	case KindGroup:
		return e.Group[0].TriggeredAt
	case KindBlock:
		return e.Block.TriggeredAt
	}
	return 0
}

// DeltaTime returns the entry's delta from the previous entry.
func (e Entry) DeltaTime() float64 {
	switch e.Kind() {
	case KindEvent:
		return e.Event.DeltaTime
	case KindGroup:
		return e.Group[0].DeltaTime
	case KindBlock:
		return e.Block.DeltaTime
	}
	return 0
}

// Index returns the entry's eventRecordIndex.
func (e Entry) Index() int {
	switch e.Kind() {
	case KindEvent:
		return e.Event.EventRecordIndex
	case KindGroup:
		return e.Group[0].EventRecordIndex
	case KindBlock:
		return e.Block.EventRecordIndex
	}
	return -1
}

// ID returns the entry's identifier (first member for groups).
func (e Entry) ID() string {
	switch e.Kind() {
	case KindEvent:
		return e.Event.ID
	case KindGroup:
		return e.Group[0].ID
	case KindBlock:
		return e.Block.ID
	}
	return ""
}

// Members returns the captured events of the entry; nil for blocks.
func (e Entry) Members() []InteractionEvent {
	switch e.Kind() {
	case KindEvent:
		return []InteractionEvent{*e.Event}
	case KindGroup:
		return e.Group
	}
	return nil
}

// SetTiming stamps delta and index on the entry and every group member.
func (e *Entry) SetTiming(delta float64, index int) {
	switch e.Kind() {
	case KindEvent:
		e.Event.DeltaTime = delta
		e.Event.EventRecordIndex = index
	case KindGroup:
		for i := range e.Group {
			e.Group[i].DeltaTime = delta
			e.Group[i].EventRecordIndex = index
		}
	case KindBlock:
		e.Block.DeltaTime = delta
		e.Block.EventRecordIndex = index
	}
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	switch e.Kind() {
	case KindEvent:
		ev := e.Event.Clone()
		return Entry{Event: &ev}
	case KindGroup:
		group := make([]InteractionEvent, len(e.Group))
		for i := range e.Group {
			group[i] = e.Group[i].Clone()
		}
		return Entry{Group: group}
	case KindBlock:
		b := e.Block.Clone()
		return Entry{Block: &b}
	}
	return Entry{}
}
