package ai

import (
	"context"
	"fmt"
)

// Generator produces a text completion for a prompt.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Embedder turns text into a fixed-dimension vector. Dimension reports the
// vector length so callers can substitute a zero vector when embedding is
// degraded.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// GeneratedSkill is a skill requirement produced by the roadmap generator.
type GeneratedSkill struct {
	Name                string  `json:"name"`
	Category            string  `json:"category"`
	PreferredExperience float64 `json:"preferred_experience"`
	RequiredProficiency int     `json:"required_proficiency"`
}

// GeneratedTask is one roadmap entry as emitted by the LLM, before project
// scoping is applied.
type GeneratedTask struct {
	TaskID         int              `json:"task_id"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Complexity     int              `json:"complexity"`
	EstimatedHours float64          `json:"estimated_hours"`
	RequiredSkills []GeneratedSkill `json:"required_skills"`
	DependsOn      []int            `json:"depends_on"`
}

// RoadmapTask is a generated task bound to a project: ids are prefixed with
// the project id so tasks from different projects never collide.
type RoadmapTask struct {
	TaskID         string           `json:"task_id"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Complexity     int              `json:"complexity"`
	EstimatedHours float64          `json:"estimated_hours"`
	RequiredSkills []GeneratedSkill `json:"required_skills"`
	DependsOn      []string         `json:"depends_on"`
	ProjectID      string           `json:"project_id"`
	ManagerID      string           `json:"manager_id"`
}

// ScopeRoadmap binds generated tasks to a project: task ids and dependency
// references are rewritten as "{projectID}_{taskID}".
func ScopeRoadmap(tasks []GeneratedTask, projectID, managerID string) []RoadmapTask {
	scoped := make([]RoadmapTask, 0, len(tasks))

	for _, task := range tasks {
		depends := make([]string, 0, len(task.DependsOn))
		for _, dep := range task.DependsOn {
			depends = append(depends, scopedTaskID(projectID, dep))
		}

		scoped = append(scoped, RoadmapTask{
			TaskID:         scopedTaskID(projectID, task.TaskID),
			Name:           task.Name,
			Description:    task.Description,
			Complexity:     task.Complexity,
			EstimatedHours: task.EstimatedHours,
			RequiredSkills: task.RequiredSkills,
			DependsOn:      depends,
			ProjectID:      projectID,
			ManagerID:      managerID,
		})
	}

	return scoped
}

func scopedTaskID(projectID string, taskID int) string {
	return fmt.Sprintf("%s_%d", projectID, taskID)
}
