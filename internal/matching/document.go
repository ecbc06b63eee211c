package matching

import (
	"fmt"
	"strings"

	"github.com/spigell/optiplan-ai/internal/vectorstore"
)

// Canonical metadata keys. All downstream components consume only these
// names, regardless of the provider that stored them.
const (
	MetaSkillName     = "skill_name"
	MetaSkillCategory = "skill_category"
	MetaExperience    = "experience"
	MetaProficiency   = "proficiency"
	MetaUserID        = "user_id"
	MetaUserName      = "user_name"
	MetaPrimaryDomain = "primary_domain"

	MetaTaskID         = "task_id"
	MetaTaskName       = "task_name"
	MetaRequiredSkills = "required_skills"
	MetaMinComplexity  = "min_complexity"
	MetaTimeEstimate   = "time_estimate"

	MetaProjectID = "project_id"
	MetaManagerID = "manager_id"
)

// ComposeSkillDocument builds the canonical (content, metadata) pair for a
// single user skill. The skill name is the only fatal field; everything else
// defaults.
func ComposeSkillDocument(skill Skill, user User, scope ProjectScope) (vectorstore.Document, error) {
	if strings.TrimSpace(skill.Name) == "" {
		return vectorstore.Document{}, missingField("skill name")
	}

	content := fmt.Sprintf(
		"Skill: %s\nCategory: %s\nExperience: %gy\nProficiency: %g",
		skill.Name, skill.Category, skill.ExperienceYears, skill.ProficiencyScore,
	)

	return vectorstore.Document{
		ID:      UserSkillID(user.ID, skill.Name),
		Content: content,
		Metadata: map[string]any{
			MetaSkillName:     skill.Name,
			MetaSkillCategory: skill.Category,
			MetaExperience:    skill.ExperienceYears,
			MetaProficiency:   skill.ProficiencyScore,
			MetaUserID:        user.ID,
			MetaUserName:      user.Name,
			MetaPrimaryDomain: user.PrimaryDomain,
			MetaProjectID:     scope.ProjectID,
			MetaManagerID:     scope.ManagerID,
		},
	}, nil
}

// ComposeTaskDocument builds the canonical (content, metadata) pair for a
// task. Required skills are name-deduplicated in the metadata.
func ComposeTaskDocument(task Task, scope ProjectScope) (vectorstore.Document, error) {
	if strings.TrimSpace(task.Name) == "" {
		return vectorstore.Document{}, missingField("task name")
	}

	names := make([]string, 0, len(task.RequiredSkills))
	seen := make(map[string]struct{}, len(task.RequiredSkills))
	for _, skill := range task.RequiredSkills {
		if _, ok := seen[skill.Name]; ok {
			continue
		}
		seen[skill.Name] = struct{}{}
		names = append(names, skill.Name)
	}

	content := fmt.Sprintf("Task: %s\nRequired Skills: %s", task.Name, strings.Join(names, ", "))

	return vectorstore.Document{
		ID:      TaskID(task.TaskID),
		Content: content,
		Metadata: map[string]any{
			MetaTaskID:         task.TaskID,
			MetaTaskName:       task.Name,
			MetaRequiredSkills: names,
			MetaMinComplexity:  task.Complexity,
			MetaTimeEstimate:   task.EstimatedHours,
			MetaProjectID:      scope.ProjectID,
			MetaManagerID:      scope.ManagerID,
		},
	}, nil
}
