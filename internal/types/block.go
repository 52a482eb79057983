// block.go — Manually inserted timeline markers.
package types

// EventBlock is a step inserted by the user rather than captured from the DOM.
// Element stays nil until an ELEMENT_SELECTED record binds it.
type EventBlock struct {
	ID                 string            `json:"id"`
	Type               EventType         `json:"type"`
	Variant            string            `json:"variant"`
	EventRecordIndex   int               `json:"eventRecordIndex"`
	TriggeredAt        float64           `json:"triggeredAt"`
	DeltaTime          float64           `json:"deltaTime"`
	Element            *InteractionEvent `json:"element"`
	IsInIframe         bool              `json:"isInIframe,omitempty"`
	AssertionType      AssertionType     `json:"assertionType,omitempty"`
	AssertionValue     string            `json:"assertionValue,omitempty"`
	AssertionAttribute string            `json:"assertionAttribute,omitempty"`
}

// Clone returns a deep copy of the block.
func (b EventBlock) Clone() EventBlock {
	out := b
	if b.Element != nil {
		el := b.Element.Clone()
		out.Element = &el
	}
	return out
}

// Bound reports whether an element has been attached to the block.
func (b EventBlock) Bound() bool {
	return b.Element != nil
}
