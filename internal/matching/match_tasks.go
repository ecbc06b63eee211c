package matching

import (
	"context"
	"strings"

	"github.com/spigell/optiplan-ai/internal/vectorstore"
	"go.uber.org/zap"
)

// MatchTasksForUser ranks candidate tasks for a user. The user's skill
// documents are concatenated into one composite query against the tasks
// space; this is deliberately a single combined query, not per-skill queries.
//
// The score is multiplicative (normalizedScore * coverage): a task sharing no
// skills with the user always scores exactly 0, whatever its raw similarity.
func (e *Engine) MatchTasksForUser(ctx context.Context, user User, scope ProjectScope, topK int) ([]TaskMatch, error) {
	if topK <= 0 {
		topK = e.topK
	}

	userSkills := make(map[string]struct{}, len(user.Skills))
	contents := make([]string, 0, len(user.Skills))

	for _, skill := range user.Skills {
		doc, err := ComposeSkillDocument(skill, user, scope)
		if err != nil {
			return nil, err
		}
		userSkills[skill.Name] = struct{}{}
		contents = append(contents, doc.Content)
	}

	query := strings.Join(contents, "\n\n")

	filter := vectorstore.Filter{
		ProjectID: scope.ProjectID,
		ManagerID: scope.ManagerID,
	}

	candidates, err := e.tasks.Query(ctx, vectorstore.TasksNamespace, query, topK, filter)
	if err != nil {
		e.logger.Warn("tasks space query failed",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
		return []TaskMatch{}, nil
	}

	matches := make([]TaskMatch, 0, len(candidates))
	for _, candidate := range candidates {
		meta, err := DecodeTaskMetadata(candidate.Metadata)
		if err != nil {
			e.logger.Warn("skipping candidate with undecodable metadata",
				zap.String("candidate_id", candidate.ID),
				zap.Error(err),
			)
			continue
		}

		overlap := 0
		for _, name := range meta.RequiredSkills {
			if _, ok := userSkills[name]; ok {
				overlap++
			}
		}

		coverage := 0.0
		if len(meta.RequiredSkills) > 0 {
			coverage = float64(overlap) / float64(len(meta.RequiredSkills))
		}

		matches = append(matches, TaskMatch{
			TaskID:        meta.TaskID,
			Name:          meta.TaskName,
			MatchScore:    NormalizeScore(candidate.Score, e.tasks.Convention()) * coverage,
			MinComplexity: meta.MinComplexity,
			TimeEstimate:  meta.TimeEstimate,
			SkillCoverage: coverage,
		})
	}

	return RankTop(matches, topK), nil
}
