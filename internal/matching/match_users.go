package matching

import (
	"context"

	"github.com/spigell/optiplan-ai/internal/vectorstore"
	"go.uber.org/zap"
)

type userAccumulator struct {
	userID  string
	name    string
	scores  []float64
	weights []float64
	matched map[string]struct{}
}

// MatchUsersForTask ranks candidate users for a task by querying the skills
// space with the task's composed document. allowUsers, when non-empty,
// restricts candidates to those user ids.
//
// The final score blends vector similarity, skill coverage and skill weight:
// 0.4*avgScore + 0.4*coverage + 0.2*avgWeight.
func (e *Engine) MatchUsersForTask(ctx context.Context, task Task, allowUsers []string, scope ProjectScope, topK int) ([]UserMatch, error) {
	if topK <= 0 {
		topK = e.topK
	}

	required := make(map[string]struct{}, len(task.RequiredSkills))
	for _, skill := range task.RequiredSkills {
		required[skill.Name] = struct{}{}
	}

	doc, err := ComposeTaskDocument(task, scope)
	if err != nil {
		return nil, err
	}

	// Over-fetch to compensate for multiple hits per user.
	fetch := topK
	if len(required) > 1 {
		fetch = topK * len(required)
	}

	filter := vectorstore.Filter{
		ProjectID: scope.ProjectID,
		ManagerID: scope.ManagerID,
		UserIDs:   allowUsers,
	}

	candidates, err := e.skills.Query(ctx, vectorstore.SkillsNamespace, doc.Content, fetch, filter)
	if err != nil {
		// A degraded search yields an empty ranking instead of failing the
		// whole request when multiple tasks are matched in one call.
		e.logger.Warn("skills space query failed",
			zap.String("task_id", task.TaskID),
			zap.Error(err),
		)
		return []UserMatch{}, nil
	}

	byUser := make(map[string]*userAccumulator)
	var order []string

	for _, candidate := range candidates {
		meta, err := DecodeSkillMetadata(candidate.Metadata)
		if err != nil {
			e.logger.Warn("skipping candidate with undecodable metadata",
				zap.String("candidate_id", candidate.ID),
				zap.Error(err),
			)
			continue
		}
		if meta.UserID == "" || meta.SkillName == "" {
			continue
		}

		acc, ok := byUser[meta.UserID]
		if !ok {
			acc = &userAccumulator{
				userID:  meta.UserID,
				name:    meta.UserName,
				matched: make(map[string]struct{}),
			}
			byUser[meta.UserID] = acc
			order = append(order, meta.UserID)
		}

		weight := SkillWeight(Skill{
			Name:             meta.SkillName,
			Category:         meta.SkillCategory,
			ExperienceYears:  meta.Experience,
			ProficiencyScore: meta.Proficiency,
		})

		acc.scores = append(acc.scores, NormalizeScore(candidate.Score, e.skills.Convention()))
		acc.weights = append(acc.weights, weight)

		// Coverage counts required skills only; the query is not filtered by
		// skill name, so hits on skills the task does not need are expected.
		if _, ok := required[meta.SkillName]; ok {
			acc.matched[meta.SkillName] = struct{}{}
		}
	}

	matches := make([]UserMatch, 0, len(byUser))
	for _, userID := range order {
		acc := byUser[userID]

		coverage := 0.0
		if len(required) > 0 {
			coverage = float64(len(acc.matched)) / float64(len(required))
		}

		matches = append(matches, UserMatch{
			UserID:        acc.userID,
			Name:          acc.name,
			MatchScore:    0.4*mean(acc.scores) + 0.4*coverage + 0.2*mean(acc.weights),
			SkillCoverage: coverage,
		})
	}

	return RankTop(matches, topK), nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
