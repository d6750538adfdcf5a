package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"codexmcp/pkg/codex"
)

// Store manages session records with file-backed persistence. All mutating
// access to the shared table happens under one process-wide lock.
type Store struct {
	dir string
	mu  sync.Mutex
	// sessions is keyed by thread id.
	sessions map[string]*Session
	log      *zap.SugaredLogger
}

// NewStore creates a Store rooted at dir, creating the directory if needed
// and eagerly loading every persisted record. Corrupt files are skipped with
// a warning. A nil logger is replaced with a no-op logger.
func NewStore(dir string, log *zap.SugaredLogger) (*Store, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log = log.Named("session")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir %s: %w", dir, err)
	}

	s := &Store{
		dir:      dir,
		sessions: make(map[string]*Session),
		log:      log,
	}
	s.loadAll()
	return s, nil
}

// Dir returns the storage directory (watched by the dashboard).
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) loadAll() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.log.Warnw("read session dir", "dir", s.dir, "err", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		data, err := os.ReadFile(path) //nolint:gosec // path is within the store dir
		if err != nil {
			s.log.Warnw("read session file", "path", path, "err", err)
			continue
		}
		var sess Session
		if err := json.Unmarshal(data, &sess); err != nil {
			s.log.Warnw("skipping corrupt session file", "path", path, "err", err)
			continue
		}
		if sess.ThreadID == "" {
			s.log.Warnw("skipping session file without thread id", "path", path)
			continue
		}
		s.sessions[sess.ThreadID] = &sess
	}
	s.log.Debugw("sessions loaded", "count", len(s.sessions))
}

// filePath returns the record path for a thread id, with a filesystem-safe
// transform of the id.
func (s *Store) filePath(threadID string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_").Replace(threadID)
	return filepath.Join(s.dir, safe+".json")
}

// persist writes one record. Caller holds the lock.
func (s *Store) persist(sess *Session) {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		s.log.Warnw("marshal session", "thread_id", sess.ThreadID, "err", err)
		return
	}
	path := s.filePath(sess.ThreadID)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		s.log.Warnw("write session file", "path", path, "err", err)
	}
}

// Has reports whether a session exists for the thread id.
func (s *Store) Has(threadID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[threadID]
	return ok
}

// Get returns the session for the thread id, or SessionNotFoundError.
func (s *Store) Get(threadID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[threadID]
	if !ok {
		return nil, &codex.SessionNotFoundError{ThreadID: threadID}
	}
	return sess, nil
}

// Create registers and persists a new session record.
func (s *Store) Create(threadID, workDir string, sandbox codex.SandboxMode, model string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	sess := &Session{
		ThreadID:   threadID,
		CreatedAt:  now,
		LastActive: now,
		WorkDir:    workDir,
		Sandbox:    sandbox,
		Model:      model,
	}
	s.sessions[threadID] = sess
	s.persist(sess)
	s.log.Infow("session created", "thread_id", threadID)
	return sess
}

// Update persists the session and bumps LastActive.
func (s *Store) Update(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.LastActive = time.Now()
	s.sessions[sess.ThreadID] = sess
	s.persist(sess)
}

// AppendTurns performs a read-modify-write of one record under the lock:
// fetch, append the given turns, persist. This is what concurrent callers
// acting on the same thread id must use to avoid lost updates.
func (s *Store) AppendTurns(threadID string, turns ...Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[threadID]
	if !ok {
		return &codex.SessionNotFoundError{ThreadID: threadID}
	}
	for _, t := range turns {
		sess.AddTurn(t.Role, t.Content)
	}
	sess.LastActive = time.Now()
	s.persist(sess)
	return nil
}

// Delete removes the session record and its file. Unknown ids are a no-op.
func (s *Store) Delete(threadID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[threadID]; !ok {
		return
	}
	delete(s.sessions, threadID)
	if err := os.Remove(s.filePath(threadID)); err != nil && !os.IsNotExist(err) {
		s.log.Warnw("remove session file", "thread_id", threadID, "err", err)
	}
	s.log.Infow("session deleted", "thread_id", threadID)
}

// List returns all sessions, most recently active first.
func (s *Store) List() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	sortByLastActive(out)
	return out
}

// Sweep removes sessions whose LastActive is older than maxAge and returns
// the number removed. maxAge of zero removes everything.
func (s *Store) Sweep(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for threadID, sess := range s.sessions {
		if now.Sub(sess.LastActive) > maxAge {
			delete(s.sessions, threadID)
			if err := os.Remove(s.filePath(threadID)); err != nil && !os.IsNotExist(err) {
				s.log.Warnw("remove swept session file", "thread_id", threadID, "err", err)
			}
			removed++
		}
	}
	if removed > 0 {
		s.log.Infow("swept old sessions", "removed", removed, "max_age", maxAge)
	}
	return removed
}

func sortByLastActive(sessions []*Session) {
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].LastActive.After(sessions[j].LastActive)
	})
}
