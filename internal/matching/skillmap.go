package matching

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// skillCategories maps well-known skill names to the fixed category
// vocabulary consumed by SkillWeight.
var skillCategories = map[string]string{
	// Frontend
	"react": "frontend", "vue": "frontend", "vue.js": "frontend",
	"angular": "frontend", "javascript": "frontend", "typescript": "frontend",
	"html": "frontend", "css": "frontend", "tailwind css": "frontend",
	"next.js": "frontend", "nuxt.js": "frontend", "svelte": "frontend",
	"webassembly": "frontend",

	// Backend
	"node.js": "backend", "nodejs": "backend", "python": "backend",
	"django": "backend", "flask": "backend", "fastapi": "backend",
	"java": "backend", "spring boot": "backend", "express": "backend",
	"nest.js": "backend", "php": "backend", "laravel": "backend",
	"ruby": "backend", "ruby on rails": "backend", "go": "backend",
	"golang": "backend", "rust": "backend", "c#": "backend",
	".net": "backend", "kotlin": "backend", "scala": "backend",
	"elixir": "backend", "machine learning": "backend",
	"tensorflow": "backend", "pytorch": "backend", "nlp": "backend",
	"blockchain": "backend",

	// Database
	"mysql": "database", "postgresql": "database", "mongodb": "database",
	"redis": "database", "sqlite": "database", "oracle": "database",
	"sql server": "database", "cassandra": "database", "dynamodb": "database",
	"firebase": "database",

	// Cloud
	"aws": "cloud", "azure": "cloud", "gcp": "cloud", "google cloud": "cloud",
	"docker": "cloud", "kubernetes": "cloud", "terraform": "cloud",
	"ansible": "cloud", "jenkins": "cloud", "ci/cd": "cloud",
	"linux": "cloud", "system administration": "cloud",

	// Design
	"figma": "design", "sketch": "design", "adobe xd": "design",
	"ui/ux": "design", "ui design": "design", "ux design": "design",

	// Management
	"project management": "management", "agile": "management",
	"scrum": "management", "kanban": "management",
	"product management": "management", "team leadership": "management",
}

var categoryHints = []struct {
	category string
	words    []string
}{
	{"frontend", []string{"react", "vue", "angular", "html", "css", "javascript", "typescript"}},
	{"backend", []string{"python", "java", "node", "django", "flask", "express", "api", "server"}},
	{"database", []string{"sql", "database", "db", "mysql", "postgres", "mongo"}},
	{"cloud", []string{"aws", "azure", "cloud", "docker", "kubernetes", "devops"}},
	{"design", []string{"design", "ui", "ux", "figma", "sketch"}},
	{"management", []string{"management", "agile", "scrum", "leadership"}},
}

// CategoryForSkill maps a free-form skill name to the category vocabulary.
// Unknown names fall back to "backend".
func CategoryForSkill(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))

	if category, ok := skillCategories[lower]; ok {
		return category
	}

	for key, category := range skillCategories {
		if strings.Contains(lower, key) || strings.Contains(key, lower) {
			return category
		}
	}

	for _, hint := range categoryHints {
		for _, word := range hint.words {
			if strings.Contains(lower, word) {
				return hint.category
			}
		}
	}

	return "backend"
}

// RescaleProficiency converts a 0-10 producer scale onto the canonical 0-100
// scale. Values outside the producer range are clamped.
func RescaleProficiency(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 10 {
		score = 10
	}
	return score * 10
}

// RawProfile is the shape of an unnormalized user profile, as produced by
// external profile exports: plain skill names plus overall aptitude hints.
// IDs arrive as numbers in those exports, hence json.Number.
type RawProfile struct {
	ID              json.Number `json:"id"`
	Name            string      `json:"name"`
	Skills          []string    `json:"skills"`
	Experience      float64     `json:"experience"`
	LearningSpeed   int         `json:"learning_speed"`
	ComplexityGrasp int         `json:"complexity_grasp"`
}

// TransformProfile normalizes a raw profile into a User: categories are
// derived from skill names, per-skill experience from total experience, and
// proficiency is estimated on a 1-10 scale then rescaled to the canonical
// 0-100 scale.
func TransformProfile(profile RawProfile) User {
	skills := make([]Skill, 0, len(profile.Skills))

	for _, name := range profile.Skills {
		experience := profile.Experience
		if experience > 1 {
			experience = math.Min(experience*0.8, experience-1)
		}
		experience = math.Round(experience*10) / 10

		proficiency := estimateProficiency(experience, profile.LearningSpeed, profile.ComplexityGrasp)

		skills = append(skills, Skill{
			Name:             name,
			Category:         CategoryForSkill(name),
			ExperienceYears:  experience,
			ProficiencyScore: RescaleProficiency(proficiency),
		})
	}

	userID := profile.ID.String()
	name := profile.Name
	if name == "" {
		name = fmt.Sprintf("User %s", userID)
	}

	return User{
		ID:     userID,
		Name:   name,
		Skills: skills,
	}
}

// estimateProficiency blends experience with learning speed and complexity
// grasp (both 1-10) into a 1-10 proficiency estimate.
func estimateProficiency(experienceYears float64, learningSpeed, complexityGrasp int) float64 {
	experienceScore := math.Min(experienceYears/2, 5)
	learningScore := float64(learningSpeed) / 10 * 5
	complexityScore := float64(complexityGrasp) / 10 * 5

	proficiency := experienceScore*0.4 + learningScore*0.3 + complexityScore*0.3

	scaled := math.Round(proficiency * 2)
	if scaled < 1 {
		scaled = 1
	}
	if scaled > 10 {
		scaled = 10
	}

	return scaled
}
