package triptych

import "time"

// ArtifactStatus tracks an artifact through its lifetime. The only legal
// transition is StatusStreaming -> StatusComplete, exactly once.
type ArtifactStatus string

const (
	StatusStreaming ArtifactStatus = "streaming"
	StatusComplete  ArtifactStatus = "complete"
)

// Artifact is one generated result belonging to a session. While streaming,
// Content only grows by appended delta fragments; the single terminal rewrite
// happens in the same transition that flips Status to complete.
type Artifact struct {
	ID      string         `json:"id"`
	Label   string         `json:"label"`
	Content string         `json:"content"`
	Status  ArtifactStatus `json:"status"`
}

// Session is one user prompt submission and its ordered artifacts. The
// artifact count is fixed at creation; artifact order is the generation task
// order and is never changed.
type Session struct {
	ID        string     `json:"id"`
	Prompt    string     `json:"prompt"`
	CreatedAt time.Time  `json:"created_at"`
	Artifacts []Artifact `json:"artifacts"`
}

// Variant is one alternate candidate produced during the variation flow.
type Variant struct {
	Label   string `json:"label"`
	Content string `json:"content"`
}
