package triptych

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultPlaceholderLabel is the label every artifact carries until the
// descriptive labels resolve. A consumer observing it alongside partial
// content is a valid intermediate state.
const DefaultPlaceholderLabel = "Generating..."

// Store is the authoritative owner of all session and artifact state. Every
// mutation is keyed by (sessionID, artifactIndex) and executes atomically
// under a single mutex, so updates from stale or superseded tasks can never
// corrupt an unrelated session: they either land on their own target or are
// silently dropped. Sessions are append-only and never removed or reordered.
type Store struct {
	mu       sync.Mutex
	sessions []*Session
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{}
}

// CreateSession appends a new session with count placeholder artifacts, all
// in streaming status with empty content, and returns its identifier.
func (s *Store) CreateSession(prompt string, count int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := &Session{
		ID:        uuid.NewString(),
		Prompt:    prompt,
		CreatedAt: time.Now(),
		Artifacts: make([]Artifact, count),
	}
	for i := range session.Artifacts {
		session.Artifacts[i] = Artifact{
			ID:     uuid.NewString(),
			Label:  DefaultPlaceholderLabel,
			Status: StatusStreaming,
		}
	}
	s.sessions = append(s.sessions, session)
	return session.ID
}

// SetArtifactLabels assigns labels positionally. Extra labels are ignored and
// artifacts beyond the provided labels keep their current label. A miss on
// the session is a silent no-op: the session may have been superseded.
func (s *Store) SetArtifactLabels(sessionID string, labels []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.find(sessionID)
	if session == nil {
		return
	}
	for i := range session.Artifacts {
		if i < len(labels) {
			session.Artifacts[i].Label = labels[i]
		}
	}
}

// AppendArtifactContent appends a delta fragment to a streaming artifact.
// Dropped silently if the target is missing or already complete, which guards
// against straggling updates after finalization.
func (s *Store) AppendArtifactContent(sessionID string, index int, delta string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	artifact := s.artifact(sessionID, index)
	if artifact == nil || artifact.Status != StatusStreaming {
		return
	}
	artifact.Content += delta
}

// FinalizeArtifact sets the artifact's terminal content and flips it to
// complete. Idempotent: finalizing an already-complete artifact is a no-op.
func (s *Store) FinalizeArtifact(sessionID string, index int, finalContent string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	artifact := s.artifact(sessionID, index)
	if artifact == nil || artifact.Status == StatusComplete {
		return
	}
	artifact.Content = finalContent
	artifact.Status = StatusComplete
}

// ReplaceArtifact overwrites an artifact wholesale with chosen content,
// marking it complete. Used when a variant is applied; allowed regardless of
// the artifact's prior status.
func (s *Store) ReplaceArtifact(sessionID string, index int, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	artifact := s.artifact(sessionID, index)
	if artifact == nil {
		return
	}
	artifact.Content = content
	artifact.Status = StatusComplete
}

// Snapshot returns a deep copy of all sessions in creation order. Callers may
// retain and mutate the result freely; it shares no memory with the Store.
func (s *Store) Snapshot() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Session, len(s.sessions))
	for i, session := range s.sessions {
		out[i] = *session
		out[i].Artifacts = make([]Artifact, len(session.Artifacts))
		copy(out[i].Artifacts, session.Artifacts)
	}
	return out
}

// Session returns a deep copy of one session, reporting whether it exists.
func (s *Store) Session(sessionID string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.find(sessionID)
	if session == nil {
		return Session{}, false
	}
	out := *session
	out.Artifacts = make([]Artifact, len(session.Artifacts))
	copy(out.Artifacts, session.Artifacts)
	return out, true
}

func (s *Store) find(sessionID string) *Session {
	for _, session := range s.sessions {
		if session.ID == sessionID {
			return session
		}
	}
	return nil
}

func (s *Store) artifact(sessionID string, index int) *Artifact {
	session := s.find(sessionID)
	if session == nil || index < 0 || index >= len(session.Artifacts) {
		return nil
	}
	return &session.Artifacts[index]
}
