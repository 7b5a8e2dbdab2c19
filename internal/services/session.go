package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Lllllllleong/pdfsplitflow/internal/codec"
	"github.com/Lllllllleong/pdfsplitflow/internal/guard"
	"github.com/Lllllllleong/pdfsplitflow/internal/handoff"
	"github.com/Lllllllleong/pdfsplitflow/internal/models"
	"github.com/Lllllllleong/pdfsplitflow/internal/pdf"
	"github.com/Lllllllleong/pdfsplitflow/internal/splitter"
	"github.com/Lllllllleong/pdfsplitflow/internal/store"
	"github.com/Lllllllleong/pdfsplitflow/internal/workflow"
)

// session is one open split workflow and its collaborators.
type session struct {
	id       string
	files    *store.FileStore
	workflow *workflow.Workflow
	window   *guard.Window
	guard    *guard.Guard
	lastSeen time.Time
}

// refreshGuard keeps the guard on while a split runs or pages are excluded.
func (s *session) refreshGuard() {
	s.guard.SetEnabled(s.workflow.Busy() || s.workflow.HasUnsavedSelection())
}

// SessionFunction holds the dependencies for the split session logic.
type SessionFunction struct {
	config   Config
	newKV    func(sessionID string) store.KV
	engine   pdf.Engine
	splitter *splitter.Splitter
	carrier  *handoff.Carrier
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewSessionFunction creates a SessionFunction from the environment.
func NewSessionFunction(ctx context.Context) (*SessionFunction, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	newKV, err := newKVFactory(ctx, config)
	if err != nil {
		return nil, err
	}
	handoffStore, err := newHandoffStore(ctx, config)
	if err != nil {
		return nil, err
	}
	f := NewSessionFunctionWith(*config, newKV, handoffStore)
	slog.Info("Split session logic initialized.", "successUrl", config.SuccessURL, "maxInlineBytes", config.MaxInlineBytes)
	return f, nil
}

// NewSessionFunctionWith wires a SessionFunction from explicit collaborators.
func NewSessionFunctionWith(config Config, newKV func(sessionID string) store.KV, handoffStore handoff.Store) *SessionFunction {
	engine := pdf.NewPDFCPU()
	return &SessionFunction{
		config:   config,
		newKV:    newKV,
		engine:   engine,
		splitter: splitter.New(engine),
		carrier:  handoff.NewCarrier(handoffStore, config.MaxInlineBytes),
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

func (f *SessionFunction) openSession(ctx context.Context) *session {
	id := uuid.New().String()
	files := store.NewFileStore(f.newKV(id))
	s := &session{
		id:       id,
		files:    files,
		workflow: workflow.New(f.engine, f.splitter, files),
		window:   guard.NewWindow(),
		guard:    guard.New(f.config.GuardMessage),
		lastSeen: f.now(),
	}
	s.guard.Attach(s.window)
	s.workflow.OnBusyChange(func(bool) { s.refreshGuard() })

	f.mu.Lock()
	evicted := f.evictIdleLocked()
	f.sessions[id] = s
	f.mu.Unlock()

	for _, old := range evicted {
		old.discard(ctx)
	}
	return s
}

// evictIdleLocked removes sessions nobody has touched for SessionIdleTTL and
// returns them. Busy sessions are kept.
func (f *SessionFunction) evictIdleLocked() []*session {
	if f.config.SessionIdleTTL <= 0 {
		return nil
	}
	cutoff := f.now().Add(-f.config.SessionIdleTTL)
	var evicted []*session
	for id, s := range f.sessions {
		if s.lastSeen.Before(cutoff) && !s.workflow.Busy() {
			delete(f.sessions, id)
			evicted = append(evicted, s)
			slog.Info("Evicted idle split session.", "sessionId", id)
		}
	}
	return evicted
}

// discard detaches the guard and deletes everything the session stored.
func (s *session) discard(ctx context.Context) {
	s.guard.Close()
	if err := s.files.Discard(ctx); err != nil {
		slog.Warn("Could not discard session storage.", "sessionId", s.id, "error", err)
	}
}

func (f *SessionFunction) lookup(id string) (*session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	s.lastSeen = f.now()
	return s, nil
}

func (f *SessionFunction) closeSession(ctx context.Context, s *session) {
	f.mu.Lock()
	delete(f.sessions, s.id)
	f.mu.Unlock()
	s.discard(ctx)
}

// Process applies one action to a session and reports its state. The
// response is non-nil whenever the session exists, even if err is set.
func (f *SessionFunction) Process(ctx context.Context, req *models.SessionRequest) (*models.SessionResponse, error) {
	var upload *codec.Blob
	if req.Action == models.ActionLoad {
		blob, err := codec.Decode(req.FileBase64, codec.ContentTypePDF)
		if err != nil {
			return nil, fmt.Errorf("%w: fileBase64: %v", ErrBadRequest, err)
		}
		upload = blob
	}

	var s *session
	if req.SessionID == "" {
		if req.Action != models.ActionLoad {
			return nil, fmt.Errorf("%w: sessionId is required for %q", ErrBadRequest, req.Action)
		}
		s = f.openSession(ctx)
	} else {
		var err error
		if s, err = f.lookup(req.SessionID); err != nil {
			return nil, err
		}
	}

	logCtx := slog.With("sessionId", s.id, "action", req.Action)
	var handoffQuery string
	var closed bool
	var err error

	switch req.Action {
	case models.ActionLoad:
		err = s.workflow.LoadFile(ctx, models.NewUploadedFile(req.FileName, upload.Bytes))
	case models.ActionToggle:
		err = s.workflow.TogglePage(req.Index)
	case models.ActionSelectAll:
		err = s.workflow.SelectAll()
	case models.ActionSelectNone:
		err = s.workflow.SelectNone()
	case models.ActionInvert:
		err = s.workflow.Invert()
	case models.ActionSplit:
		if err = s.workflow.Split(ctx); err == nil {
			handoffQuery, err = f.handoff(ctx, s)
		}
	case models.ActionReset:
		err = s.workflow.Reset(ctx)
	case models.ActionStatus:
	case models.ActionClose:
		ok, message := s.window.RequestClose(func(string) bool { return req.Force })
		if !ok {
			err = fmt.Errorf("%w: %s", ErrCloseBlocked, message)
			break
		}
		f.closeSession(ctx, s)
		closed = true
	default:
		err = fmt.Errorf("%w: unknown action %q", ErrBadRequest, req.Action)
	}

	if !closed {
		s.refreshGuard()
	}
	resp := f.response(ctx, s)
	resp.Closed = closed
	if handoffQuery != "" {
		resp.Handoff = handoffQuery
		resp.SuccessURL = f.config.SuccessURL + "?" + handoffQuery
	}
	if err != nil {
		logCtx.Warn("Session action did not complete.", "error", err)
	}
	return resp, err
}

// handoff publishes the result of a finished split.
func (f *SessionFunction) handoff(ctx context.Context, s *session) (string, error) {
	result := s.workflow.Result()
	if result == nil {
		return "", errors.New("split finished without a result")
	}
	q, err := f.carrier.Put(ctx, *result)
	if err != nil {
		return "", err
	}
	return q.Encode(), nil
}

func (f *SessionFunction) response(ctx context.Context, s *session) *models.SessionResponse {
	state := s.workflow.Snapshot()
	resp := &models.SessionResponse{
		SessionID: s.id,
		Phase:     state.Phase.String(),
		PageCount: state.PageCount,
		Pages:     state.Pages,
		Busy:      state.Busy,
		Error:     state.Error,
		Guarded:   s.guard.Enabled(),
	}
	if resp.Pages == nil {
		resp.Pages = []models.PageEntry{}
	}
	if state.File != nil {
		meta := state.File.Metadata()
		resp.File = &meta
	}
	if resp.Guarded {
		resp.GuardMessage = s.guard.Message()
	}
	meta, err := s.files.StoredMetadata(ctx)
	if err != nil {
		slog.Warn("Could not read session file metadata.", "sessionId", s.id, "error", err)
	}
	resp.StoredFiles = meta
	return resp
}

// HandleSession is the HTTP entry point of the split-session function.
func (f *SessionFunction) HandleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	var req models.SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Could not decode request body", "error", err)
		http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
		return
	}

	resp, err := f.Process(r.Context(), &req)
	code := HTTPStatus(err)
	if resp == nil {
		http.Error(w, err.Error(), code)
		return
	}
	if err != nil && resp.Error == "" {
		resp.Error = err.Error()
	}
	writeJSON(w, code, resp)
}
