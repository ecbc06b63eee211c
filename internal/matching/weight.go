package matching

import "strings"

// categoryMultipliers biases ranking toward categories where well-evidenced
// expertise matters most. Unknown categories get a neutral 1.0.
var categoryMultipliers = map[string]float64{
	"frontend":   1.10,
	"backend":    1.10,
	"database":   1.15,
	"cloud":      1.15,
	"design":     1.10,
	"management": 1.00,
}

// SkillWeight converts a skill's attributes into a single importance weight.
// Experience saturates at 10 years; proficiency uses the canonical 0-100
// scale. The result is bounded by the highest category multiplier (1.15).
func SkillWeight(skill Skill) float64 {
	experienceWeight := skill.ExperienceYears / 10
	if experienceWeight > 1 {
		experienceWeight = 1
	}

	proficiencyWeight := skill.ProficiencyScore / 100

	multiplier, ok := categoryMultipliers[strings.ToLower(skill.Category)]
	if !ok {
		multiplier = 1.0
	}

	return (0.4*experienceWeight + 0.6*proficiencyWeight) * multiplier
}
