package matching

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/optiplan-ai/internal/vectorstore"
	"go.uber.org/zap"
)

const defaultTopK = 5

// Engine matches users to tasks and tasks to users on top of the vector
// store collaborator. It is constructed once with its dependencies and holds
// no mutable state, so concurrent use needs no coordination.
type Engine struct {
	skills vectorstore.Store
	tasks  vectorstore.Store
	logger *zap.Logger
	topK   int
}

// EngineOptions configures a new Engine. Skills and Tasks may point to the
// same store instance; namespaces keep the spaces disjoint.
type EngineOptions struct {
	Skills vectorstore.Store
	Tasks  vectorstore.Store
	Logger *zap.Logger
	TopK   int
}

func NewEngine(opts EngineOptions) (*Engine, error) {
	if opts.Skills == nil || opts.Tasks == nil {
		return nil, fmt.Errorf("both skills and tasks stores are required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	return &Engine{
		skills: opts.Skills,
		tasks:  opts.Tasks,
		logger: logger,
		topK:   topK,
	}, nil
}

// TopK returns the default result count used when a caller does not specify one.
func (e *Engine) TopK() int { return e.topK }

// IndexUsers upserts one document per (user, skill) pair into the skills
// space. Upserts are batched; a failed batch is reported and does not block
// or roll back the others.
func (e *Engine) IndexUsers(ctx context.Context, users []User, scope ProjectScope) (*IndexReport, error) {
	var docs []vectorstore.Document

	for _, user := range users {
		if strings.TrimSpace(user.ID) == "" {
			return nil, missingField("user id")
		}
		for _, skill := range user.Skills {
			doc, err := ComposeSkillDocument(skill, user, scope)
			if err != nil {
				return nil, fmt.Errorf("user %s: %w", user.ID, err)
			}
			docs = append(docs, doc)
		}
	}

	return e.upsert(ctx, e.skills, vectorstore.SkillsNamespace, docs)
}

// IndexTasks upserts one document per task into the tasks space.
func (e *Engine) IndexTasks(ctx context.Context, tasks []Task, scope ProjectScope) (*IndexReport, error) {
	docs := make([]vectorstore.Document, 0, len(tasks))

	for _, task := range tasks {
		if strings.TrimSpace(task.TaskID) == "" {
			return nil, missingField("task id")
		}
		doc, err := ComposeTaskDocument(task, scope)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", task.TaskID, err)
		}
		docs = append(docs, doc)
	}

	return e.upsert(ctx, e.tasks, vectorstore.TasksNamespace, docs)
}

func (e *Engine) upsert(ctx context.Context, store vectorstore.Store, namespace string, docs []vectorstore.Document) (*IndexReport, error) {
	report := &IndexReport{Documents: len(docs)}
	if len(docs) == 0 {
		return report, nil
	}

	for _, failure := range vectorstore.UpsertBatches(ctx, store, namespace, docs, vectorstore.DefaultBatchSize) {
		e.logger.Warn("upsert batch failed",
			zap.String("namespace", namespace),
			zap.Int("batch", failure.Batch),
			zap.Int("size", failure.Size),
			zap.Error(failure.Err),
		)
		report.FailedBatches = append(report.FailedBatches, BatchFailure{
			Batch: failure.Batch,
			Size:  failure.Size,
			Error: failure.Err.Error(),
		})
	}

	e.logger.Info("indexed documents",
		zap.String("namespace", namespace),
		zap.Int("documents", report.Documents),
		zap.Int("failed_batches", len(report.FailedBatches)),
	)

	return report, nil
}

// UserDeletion identifies the vectors of one user. The store cannot delete by
// metadata filter, so vector ids are recomputed from the identity scheme over
// the user's skill names. A user with no skill names cannot be resolved and
// is reported instead of being silently ignored.
type UserDeletion struct {
	UserID     string   `json:"user_id"`
	SkillNames []string `json:"skill_names"`
}

// DeleteUsers removes all indexed skills of the given users from the skills space.
func (e *Engine) DeleteUsers(ctx context.Context, users []UserDeletion) (*DeleteReport, error) {
	report := &DeleteReport{}
	var ids []string

	for _, user := range users {
		if len(user.SkillNames) == 0 {
			report.Unresolved = append(report.Unresolved, user.UserID)
			continue
		}
		for _, name := range user.SkillNames {
			ids = append(ids, UserSkillID(user.UserID, name))
		}
	}

	if len(report.Unresolved) > 0 {
		e.logger.Warn("users without skill names cannot be resolved to vector ids",
			zap.Strings("user_ids", report.Unresolved),
		)
	}

	if len(ids) > 0 {
		if err := e.skills.DeleteByIDs(ctx, vectorstore.SkillsNamespace, ids); err != nil {
			return report, fmt.Errorf("delete user skills: %w", err)
		}
		report.Deleted = len(ids)
	}

	return report, nil
}

// DeleteTasks removes the given tasks from the tasks space.
func (e *Engine) DeleteTasks(ctx context.Context, taskIDs []string) (*DeleteReport, error) {
	report := &DeleteReport{}
	if len(taskIDs) == 0 {
		return report, nil
	}

	ids := make([]string, 0, len(taskIDs))
	for _, taskID := range taskIDs {
		ids = append(ids, TaskID(taskID))
	}

	if err := e.tasks.DeleteByIDs(ctx, vectorstore.TasksNamespace, ids); err != nil {
		return report, fmt.Errorf("delete tasks: %w", err)
	}

	report.Deleted = len(ids)
	return report, nil
}
