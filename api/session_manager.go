package api

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/lookbusy1344/arm-emulator/codegen"
	"github.com/lookbusy1344/arm-emulator/config"
	"github.com/lookbusy1344/arm-emulator/service"
)

var (
	// ErrSessionNotFound is returned when a session is not found.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionAlreadyExists is returned when trying to create a session with an existing ID.
	ErrSessionAlreadyExists = errors.New("session already exists")
	// ErrNoProgramLoaded is returned when an operation needs compiled source
	// but the session hasn't loaded any yet.
	ErrNoProgramLoaded = errors.New("no program loaded for this session")
)

// Session is one client's compile-and-run state: a DebuggerService once
// source has been loaded, nil until then.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu      sync.Mutex
	Service *service.DebuggerService
}

// SessionManager holds every active session, the way the ARM emulator's
// SessionManager held one vm.VM per connected client -- this one holds one
// compiled program (or none yet) per client instead.
type SessionManager struct {
	sessions    map[string]*Session
	broadcaster *Broadcaster
	cfg         *config.Config
	mu          sync.RWMutex
}

// NewSessionManager creates a new session manager.
func NewSessionManager(broadcaster *Broadcaster, cfg *config.Config) *SessionManager {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &SessionManager{
		sessions:    make(map[string]*Session),
		broadcaster: broadcaster,
		cfg:         cfg,
	}
}

// CreateSession creates a new, empty session with a unique ID. Source is
// loaded into it afterward via LoadSource.
func (sm *SessionManager) CreateSession() (*Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:        sessionID,
		CreatedAt: time.Now(),
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.sessions[sessionID]; exists {
		return nil, ErrSessionAlreadyExists
	}

	sm.sessions[sessionID] = session
	return session, nil
}

// LoadSource compiles source and, on success, installs it as the
// session's program, replacing any program loaded previously. It returns
// the compile result either way so the caller can report diagnostics.
func (sm *SessionManager) LoadSource(sessionID string, source string) (service.CompileResult, error) {
	session, err := sm.GetSession(sessionID)
	if err != nil {
		return service.CompileResult{}, err
	}

	opts := codegen.DefaultOptions()
	opts.StackSize = sm.cfg.Compile.StackSize
	opts.HeapSize = sm.cfg.Compile.HeapSize

	result := service.Compile(sessionID, []byte(source), opts)
	if !result.Success {
		return result, nil
	}

	svc, err := service.NewDebuggerService(sessionID, []byte(source), opts, sm.cfg.Compile.MaxSteps)
	if err != nil {
		return result, err
	}

	if sm.broadcaster != nil {
		svc.SetOutputTee(NewEventWriter(sm.broadcaster, sessionID, "stdout"))
		debugLog("session %s: output broadcasting wired up", sessionID)
	}

	session.mu.Lock()
	session.Service = svc
	session.mu.Unlock()

	return result, nil
}

// GetSession retrieves a session by ID.
func (sm *SessionManager) GetSession(sessionID string) (*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}

	return session, nil
}

// RequireProgram is GetSession plus a check that a program has been
// loaded, for every handler that operates on a running program.
func (sm *SessionManager) RequireProgram(sessionID string) (*Session, *service.DebuggerService, error) {
	session, err := sm.GetSession(sessionID)
	if err != nil {
		return nil, nil, err
	}

	session.mu.Lock()
	svc := session.Service
	session.mu.Unlock()

	if svc == nil {
		return session, nil, ErrNoProgramLoaded
	}
	return session, svc, nil
}

// DestroySession removes a session by ID.
func (sm *SessionManager) DestroySession(sessionID string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.sessions[sessionID]; !exists {
		return ErrSessionNotFound
	}

	delete(sm.sessions, sessionID)
	return nil
}

// ListSessions returns a list of all session IDs.
func (sm *SessionManager) ListSessions() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	ids := make([]string, 0, len(sm.sessions))
	for id := range sm.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of active sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return len(sm.sessions)
}

// generateSessionID generates a unique session ID.
func generateSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
