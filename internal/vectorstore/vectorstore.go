package vectorstore

import (
	"context"
)

const (
	// SkillsNamespace holds one vector per (user, skill) pair.
	SkillsNamespace = "user_skills"
	// TasksNamespace holds one vector per task.
	TasksNamespace = "tasks"
)

// ScoreConvention describes how a provider reports raw query scores.
type ScoreConvention string

const (
	// ConventionSimilarity means higher is better, typically in [0,1].
	ConventionSimilarity ScoreConvention = "similarity"
	// ConventionCosineDistance means lower is better, normalized cosine distance in [0,1].
	ConventionCosineDistance ScoreConvention = "cosine-distance"
)

// Document is a single indexable entry. Content is the text to embed. Vector
// may be pre-computed by the caller for providers that do not embed server-side.
type Document struct {
	ID       string
	Content  string
	Vector   []float32
	Metadata map[string]any
}

// Candidate is a single nearest-neighbor result with the provider's raw score.
type Candidate struct {
	ID       string
	Score    float64
	Metadata map[string]any
}

// Filter restricts queries to a project scope and, optionally, to an
// allow-list of user ids.
type Filter struct {
	ProjectID string
	ManagerID string
	UserIDs   []string
}

// Store is the vector-search collaborator. Namespaces are isolated partitions
// and are never cross-queried.
type Store interface {
	// Convention reports the provider's raw score convention.
	Convention() ScoreConvention

	Upsert(ctx context.Context, namespace string, docs []Document) error
	Query(ctx context.Context, namespace, content string, k int, filter Filter) ([]Candidate, error)
	DeleteByIDs(ctx context.Context, namespace string, ids []string) error
}
