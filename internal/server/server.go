// server.go — HTTP front end for the recorder and the export compiler.
// The browser extension posts messages here; tools read timelines and
// compiled scripts back.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ozdemirkulaoglu/dakka/internal/export"
	"github.com/ozdemirkulaoglu/dakka/internal/ingest"
	"github.com/ozdemirkulaoglu/dakka/internal/recorder"
	"github.com/ozdemirkulaoglu/dakka/internal/store"
	"github.com/ozdemirkulaoglu/dakka/internal/timeline"
	"github.com/ozdemirkulaoglu/dakka/internal/types"
)

const maxPostBodySize = 10 * 1024 * 1024 // 10MB

const shutdownTimeout = 5 * time.Second

// Server holds the HTTP routes over one composer.
type Server struct {
	composer  *recorder.Composer
	store     *store.Store
	journal   *Journal
	framework types.Framework
	log       *zap.Logger
	mux       *http.ServeMux
}

// Option configures a Server.
type Option func(*Server)

// WithStore enables the /sessions routes.
func WithStore(st *store.Store) Option {
	return func(s *Server) { s.store = st }
}

// WithJournal appends every applied message to j.
func WithJournal(j *Journal) Option {
	return func(s *Server) { s.journal = j }
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithDefaultFramework sets the backend used when /export names none.
func WithDefaultFramework(f types.Framework) Option {
	return func(s *Server) { s.framework = f }
}

// NewServer creates a server over c.
func NewServer(c *recorder.Composer, opts ...Option) *Server {
	s := &Server{
		composer:  c,
		framework: types.FrameworkPlaywright,
		log:       zap.NewNop(),
		mux:       http.NewServeMux(),
	}
	for _, o := range opts {
		o(s)
	}
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /messages", s.handleMessages)
	s.mux.HandleFunc("GET /tabs", s.handleTabs)
	s.mux.HandleFunc("GET /timeline", s.handleTimeline)
	s.mux.HandleFunc("GET /settings", s.handleGetSettings)
	s.mux.HandleFunc("PUT /settings", s.handlePutSettings)
	s.mux.HandleFunc("GET /export", s.handleExport)
	s.mux.HandleFunc("GET /sessions", s.handleListSessions)
	s.mux.HandleFunc("POST /sessions", s.handleSaveSession)
	s.mux.HandleFunc("GET /sessions/{ref}", s.handleGetSession)
	s.mux.HandleFunc("DELETE /sessions/{ref}", s.handleDeleteSession)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.log.Debug("request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", rec.status),
		zap.Duration("elapsed", time.Since(start)))
}

// Run listens on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", ln.Addr().String()))
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		_ = httpServer.Close()
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("server stopped")
	return nil
}

// ============================================
// Handlers
// ============================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"recording": s.composer.Enabled(),
		"tabs":      len(s.composer.Tabs()),
	})
}

// messageResult is one entry of a batch reply.
type messageResult struct {
	ingest.Reply
	Error string `json:"error,omitempty"`
}

// handleMessages accepts one message object or an array of them.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPostBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		jsonError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	body = []byte(strings.TrimSpace(string(body)))

	if len(body) > 0 && body[0] == '[' {
		var batch []ingest.Message
		if err := json.Unmarshal(body, &batch); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		out := make([]messageResult, 0, len(batch))
		for _, m := range batch {
			reply, err := s.apply(m)
			res := messageResult{Reply: reply}
			if err != nil {
				res.Kind = m.Kind
				res.Error = err.Error()
			}
			out = append(out, res)
		}
		jsonResponse(w, http.StatusOK, out)
		return
	}

	var m ingest.Message
	if err := json.Unmarshal(body, &m); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	reply, err := s.apply(m)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, reply)
}

func (s *Server) apply(m ingest.Message) (ingest.Reply, error) {
	reply, err := ingest.Apply(s.composer, m)
	if err != nil {
		s.log.Warn("rejected message", zap.String("kind", string(m.Kind)), zap.Error(err))
		return reply, err
	}
	dropped := reply.Result != nil && reply.Result.Action == recorder.ActionDropped
	if m.Kind == ingest.KindInsertBlock && reply.OK {
		// Generated ids must survive replay for later setActiveBlock messages.
		m.BlockID = reply.BlockID
	}
	if s.journal != nil && !dropped {
		if err := s.journal.Append(m); err != nil {
			s.log.Error("journal append failed", zap.Error(err))
		}
	}
	return reply, nil
}

func (s *Server) handleTabs(w http.ResponseWriter, _ *http.Request) {
	jsonResponse(w, http.StatusOK, s.composer.Tabs())
}

// timelineView is the GET /timeline body.
type timelineView struct {
	TabID         int               `json:"tabId"`
	Entries       timeline.Timeline `json:"entries"`
	ActiveBlockID string            `json:"activeBlockId,omitempty"`
	ManualInsert  bool              `json:"manualInsert"`
	RecordIndex   int               `json:"recordIndex"`
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	tabID, ok := tabParam(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, timelineView{
		TabID:         tabID,
		Entries:       s.composer.Snapshot(tabID),
		ActiveBlockID: s.composer.ActiveBlock(tabID),
		ManualInsert:  s.composer.ManualInsert(tabID),
		RecordIndex:   s.composer.RecordIndex(tabID),
	})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	jsonResponse(w, http.StatusOK, s.composer.Settings())
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPostBodySize)
	settings := s.composer.Settings()
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if _, err := s.apply(ingest.Message{Kind: ingest.KindApplySettings, Settings: &settings}); err != nil {
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, s.composer.Settings())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	tabID, ok := tabParam(w, r)
	if !ok {
		return
	}
	f := s.framework
	if raw := r.URL.Query().Get("framework"); raw != "" {
		parsed, err := types.ParseFramework(raw)
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		f = parsed
	}
	art, err := export.Compile(f, s.composer.Snapshot(tabID))
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, art)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	if !s.hasStore(w) {
		return
	}
	list, err := s.store.List(r.Context())
	if err != nil {
		s.log.Error("list sessions", zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	if list == nil {
		list = []store.Session{}
	}
	jsonResponse(w, http.StatusOK, list)
}

func (s *Server) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	if !s.hasStore(w) {
		return
	}
	tabID, ok := tabParam(w, r)
	if !ok {
		return
	}
	sess, err := s.store.Save(r.Context(), r.URL.Query().Get("name"), tabID, s.composer.Snapshot(tabID))
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.log.Info("session saved", zap.String("id", sess.ID), zap.String("name", sess.Name), zap.Int("entries", sess.EntryCount))
	jsonResponse(w, http.StatusCreated, sess)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	if !s.hasStore(w) {
		return
	}
	sess, err := s.store.Get(r.Context(), r.PathValue("ref"))
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.log.Error("get session", zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	jsonResponse(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.hasStore(w) {
		return
	}
	err := s.store.Delete(r.Context(), r.PathValue("ref"))
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.log.Error("delete session", zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ============================================
// Helpers
// ============================================

func (s *Server) hasStore(w http.ResponseWriter) bool {
	if s.store == nil {
		jsonError(w, http.StatusServiceUnavailable, "session store disabled")
		return false
	}
	return true
}

func tabParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("tab")
	if raw == "" {
		jsonError(w, http.StatusBadRequest, "missing tab parameter")
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "tab must be an integer")
		return 0, false
	}
	return id, true
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	jsonResponse(w, status, map[string]string{"error": msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
