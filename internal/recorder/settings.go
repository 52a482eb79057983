// settings.go — Recorder switches read by Ingest on every call.
package recorder

import (
	"sort"

	"github.com/ozdemirkulaoglu/dakka/internal/types"
)

// Settings are the UI-controlled recorder switches.
type Settings struct {
	Enabled bool `json:"enabled"`
	// RelativeTimestamps rebases each tab's stamps on its first record.
	RelativeTimestamps bool                     `json:"relativeTimestamps"`
	Tracked            map[types.EventType]bool `json:"tracked"`
}

// DefaultSettings tracks every event type except keyup, with recording off.
func DefaultSettings() Settings {
	tracked := make(map[types.EventType]bool, len(types.EventTypes()))
	for _, t := range types.EventTypes() {
		tracked[t] = t != types.EventKeyUp
	}
	return Settings{
		RelativeTimestamps: true,
		Tracked:            tracked,
	}
}

// TrackedTypes returns the allow-listed event types in sorted order.
func (s Settings) TrackedTypes() []types.EventType {
	var out []types.EventType
	for t, on := range s.Tracked {
		if on {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s Settings) clone() Settings {
	out := s
	out.Tracked = make(map[types.EventType]bool, len(s.Tracked))
	for k, v := range s.Tracked {
		out.Tracked[k] = v
	}
	return out
}
