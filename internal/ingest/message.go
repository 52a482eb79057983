// message.go — Collaborator messages and their application to a Composer.
// The browser extension and the HTTP server speak the same envelope: a kind,
// a tab id and the operands of one composer operation.
package ingest

import (
	"errors"
	"fmt"

	"github.com/ozdemirkulaoglu/dakka/internal/recorder"
	"github.com/ozdemirkulaoglu/dakka/internal/types"
)

// Kind names the composer operation a message invokes.
type Kind string

const (
	KindRecord         Kind = "record"
	KindInsertBlock    Kind = "insertBlock"
	KindRemoveEvent    Kind = "removeEvent"
	KindSelectSelector Kind = "selectSelector"
	KindClear          Kind = "clear"
	KindSetActiveBlock Kind = "setActiveBlock"
	KindSetRecorder    Kind = "setRecorder"
	KindTrackEvent     Kind = "trackEvent"
	KindTrackAll       Kind = "trackAll"
	KindApplySettings  Kind = "applySettings"
)

// ErrUnknownKind is returned by Apply for unrecognized message kinds.
var ErrUnknownKind = errors.New("unknown message kind")

// Message is one inbound operation.
type Message struct {
	Kind  Kind `json:"kind"`
	TabID int  `json:"tabId"`

	// record
	Record *types.Record `json:"record,omitempty"`

	// insertBlock
	EventType          types.EventType     `json:"eventType,omitempty"`
	AfterIndex         int                 `json:"afterIndex"`
	TriggeredAt        float64             `json:"triggeredAt,omitempty"`
	AssertionType      types.AssertionType `json:"assertionType,omitempty"`
	AssertionValue     string              `json:"assertionValue,omitempty"`
	AssertionAttribute string              `json:"assertionAttribute,omitempty"`

	// removeEvent
	Path []int `json:"path,omitempty"`

	// selectSelector
	MatchKey string          `json:"matchKey,omitempty"`
	Selector *types.Selector `json:"selector,omitempty"`

	// insertBlock (optional), setActiveBlock
	BlockID string `json:"blockId,omitempty"`

	// setRecorder, trackEvent, trackAll
	Enabled bool `json:"enabled,omitempty"`

	// applySettings
	Settings *recorder.Settings `json:"settings,omitempty"`
}

// Reply reports what a message did.
type Reply struct {
	Kind    Kind             `json:"kind"`
	OK      bool             `json:"ok"`
	Result  *recorder.Result `json:"result,omitempty"`
	BlockID string           `json:"blockId,omitempty"`
	Updated int              `json:"updated,omitempty"`
}

// Apply runs m against c. Only an unknown kind or a missing operand is an
// error; composer no-ops are reported with OK false.
func Apply(c *recorder.Composer, m Message) (Reply, error) {
	reply := Reply{Kind: m.Kind}
	switch m.Kind {
	case KindRecord:
		if m.Record == nil {
			return reply, fmt.Errorf("ingest %s: missing record", m.Kind)
		}
		res := c.Ingest(m.TabID, *m.Record)
		reply.Result = &res
		reply.OK = res.Action != recorder.ActionDropped

	case KindInsertBlock:
		opts := []recorder.BlockOption{recorder.WithBlockID(m.BlockID)}
		if m.AssertionType != "" {
			opts = append(opts, recorder.WithAssertion(m.AssertionType, m.AssertionValue, m.AssertionAttribute))
		}
		typ := m.EventType
		if typ == "" {
			typ = types.EventAssertion
		}
		reply.BlockID, reply.OK = c.InsertBlock(m.TabID, typ, m.AfterIndex, m.TriggeredAt, opts...)

	case KindRemoveEvent:
		reply.OK = c.RemoveEvent(m.TabID, m.Path...)

	case KindSelectSelector:
		if m.Selector == nil {
			return reply, fmt.Errorf("ingest %s: missing selector", m.Kind)
		}
		reply.Updated = c.SelectSelector(m.TabID, m.MatchKey, *m.Selector)
		reply.OK = reply.Updated > 0

	case KindClear:
		c.Clear(m.TabID)
		reply.OK = true

	case KindSetActiveBlock:
		reply.OK = c.SetActiveBlock(m.TabID, m.BlockID)
		reply.BlockID = m.BlockID

	case KindSetRecorder:
		c.SetEnabled(m.Enabled)
		reply.OK = true

	case KindTrackEvent:
		if m.EventType == "" {
			return reply, fmt.Errorf("ingest %s: missing eventType", m.Kind)
		}
		c.TrackEvent(m.EventType, m.Enabled)
		reply.OK = true

	case KindTrackAll:
		c.TrackAll(m.Enabled)
		reply.OK = true

	case KindApplySettings:
		if m.Settings == nil {
			return reply, fmt.Errorf("ingest %s: missing settings", m.Kind)
		}
		c.ApplySettings(*m.Settings)
		reply.OK = true

	default:
		return reply, fmt.Errorf("ingest %q: %w", m.Kind, ErrUnknownKind)
	}
	return reply, nil
}
