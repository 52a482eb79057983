// event.go — Wire types for interaction events delivered by the extension.
// Field names follow the extension's camelCase payloads.
// Changes here MUST be mirrored in the extension's event recorder types.
package types

// EventType identifies the kind of captured user action.
type EventType string

const (
	EventMouseClick  EventType = "mouseClick"
	EventDoubleClick EventType = "dblclick"
	EventKeyDown     EventType = "keydown"
	EventKeyUp       EventType = "keyup"
	EventKeyboard    EventType = "keyboard"
	EventRedirect    EventType = "redirect"
	EventResize      EventType = "resize"
	EventAssertion   EventType = "ASSERTION"
)

// EventTypes lists every event type the recorder knows about, in display order.
func EventTypes() []EventType {
	return []EventType{
		EventRedirect,
		EventResize,
		EventMouseClick,
		EventDoubleClick,
		EventKeyboard,
		EventKeyDown,
		EventKeyUp,
		EventAssertion,
	}
}

// VariantInteractiveElement marks a manually inserted block awaiting an element.
const VariantInteractiveElement = "INTERACTIVE_ELEMENT"

// MessageType is the envelope type of an inbound record.
type MessageType string

const (
	MessageEventRecorded   MessageType = "EVENT_RECORDED"
	MessageElementSelected MessageType = "ELEMENT_SELECTED"
)

// Record is one inbound message from the DOM observer.
type Record struct {
	ID      string           `json:"id,omitempty"`
	Type    MessageType      `json:"type"`
	Payload InteractionEvent `json:"payload"`
}

// IsElementSelection reports whether the record answers an element-pick request.
func (r Record) IsElementSelection() bool {
	return r.Type == MessageElementSelected
}

// InteractionEvent is one observed user action.
type InteractionEvent struct {
	ID                     string        `json:"id"`
	Type                   EventType     `json:"type"`
	Variant                string        `json:"variant,omitempty"`
	TriggeredAt            float64       `json:"triggeredAt"`
	DeltaTime              float64       `json:"deltaTime"`
	EventRecordIndex       int           `json:"eventRecordIndex"`
	Selector               string        `json:"selector,omitempty"`
	ValidSelectors         []Selector    `json:"validSelectors,omitempty"`
	SelectedSelector       *Selector     `json:"selectedSelector,omitempty"`
	SelectedIframeSelector *Selector     `json:"selectedIframeSelector,omitempty"`
	IsInIframe             bool          `json:"isInIframe,omitempty"`
	URL                    string        `json:"url,omitempty"`
	Key                    string        `json:"key,omitempty"`
	Data                   string        `json:"data,omitempty"`
	InnerWidth             int           `json:"innerWidth,omitempty"`
	InnerHeight            int           `json:"innerHeight,omitempty"`
	AssertionType          AssertionType `json:"assertionType,omitempty"`
	AssertionValue         string        `json:"assertionValue,omitempty"`
	AssertionAttribute     string        `json:"assertionAttribute,omitempty"`
}

// Clone returns a deep copy of the event.
func (e InteractionEvent) Clone() InteractionEvent {
	out := e
	if e.ValidSelectors != nil {
		out.ValidSelectors = append([]Selector(nil), e.ValidSelectors...)
	}
	if e.SelectedSelector != nil {
		s := *e.SelectedSelector
		out.SelectedSelector = &s
	}
	if e.SelectedIframeSelector != nil {
		s := *e.SelectedIframeSelector
		out.SelectedIframeSelector = &s
	}
	return out
}

// SameAs reports whether two events are duplicates: same stamp, selector and type.
func (e InteractionEvent) SameAs(o InteractionEvent) bool {
	return e.TriggeredAt == o.TriggeredAt && e.Selector == o.Selector && e.Type == o.Type
}
