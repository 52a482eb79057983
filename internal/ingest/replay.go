// replay.go — NDJSON message stream replay.
package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/ozdemirkulaoglu/dakka/internal/recorder"
)

// maxLineBytes bounds one message line; element snapshots can be large.
const maxLineBytes = 10 * 1024 * 1024

// Stats counts what a replay did.
type Stats struct {
	Lines   int `json:"lines"`
	Applied int `json:"applied"`
	Skipped int `json:"skipped"`
}

// Replay applies every message in r, one JSON object per line, to c.
// Malformed lines and unknown kinds are logged and skipped. Only read
// failures and context cancellation stop the replay.
func Replay(ctx context.Context, r io.Reader, c *recorder.Composer, log *zap.Logger) (Stats, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var st Stats
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		st.Lines++

		var m Message
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			st.Skipped++
			log.Warn("skipping malformed message", zap.Int("line", st.Lines), zap.Error(err))
			continue
		}
		if _, err := Apply(c, m); err != nil {
			st.Skipped++
			log.Warn("skipping message", zap.Int("line", st.Lines), zap.Error(err))
			continue
		}
		st.Applied++
	}
	return st, scanner.Err()
}
