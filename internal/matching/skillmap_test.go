package matching

import (
	"encoding/json"
	"testing"
)

func TestCategoryForSkill(t *testing.T) {
	tests := []struct {
		name   string
		expect string
	}{
		{name: "React", expect: "frontend"},
		{name: "PostgreSQL", expect: "database"},
		{name: "Docker", expect: "cloud"},
		{name: "Figma", expect: "design"},
		{name: "Scrum", expect: "management"},
		{name: "  go  ", expect: "backend"},
		// Substring match against the known vocabulary.
		{name: "AWS Lambda", expect: "cloud"},
		// Hint-word fallback.
		{name: "Database Tuning", expect: "database"},
		// Unknown names land in backend.
		{name: "Haskell", expect: "backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CategoryForSkill(tt.name); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestRescaleProficiency(t *testing.T) {
	tests := []struct {
		in     float64
		expect float64
	}{
		{in: 0, expect: 0},
		{in: 8, expect: 80},
		{in: 10, expect: 100},
		{in: -3, expect: 0},
		{in: 14, expect: 100},
	}

	for _, tt := range tests {
		if got := RescaleProficiency(tt.in); got != tt.expect {
			t.Fatalf("RescaleProficiency(%v): expected %v, got %v", tt.in, tt.expect, got)
		}
	}
}

func TestTransformProfile(t *testing.T) {
	user := TransformProfile(RawProfile{
		ID:              json.Number("7"),
		Skills:          []string{"React", "PostgreSQL"},
		Experience:      5,
		LearningSpeed:   8,
		ComplexityGrasp: 7,
	})

	if user.ID != "7" {
		t.Fatalf("numeric ids must become strings, got %q", user.ID)
	}
	if user.Name != "User 7" {
		t.Fatalf("a missing name must be synthesized, got %q", user.Name)
	}
	if len(user.Skills) != 2 {
		t.Fatalf("expected 2 skills, got %d", len(user.Skills))
	}

	react := user.Skills[0]
	if react.Category != "frontend" {
		t.Fatalf("expected derived category frontend, got %q", react.Category)
	}

	// min(5*0.8, 5-1) = 4
	if react.ExperienceYears != 4 {
		t.Fatalf("expected per-skill experience 4, got %v", react.ExperienceYears)
	}

	// estimate 6 on the 1-10 scale, rescaled to the canonical 0-100 scale
	if react.ProficiencyScore != 60 {
		t.Fatalf("expected proficiency 60, got %v", react.ProficiencyScore)
	}
}

func TestTransformProfileKeepsShortExperience(t *testing.T) {
	user := TransformProfile(RawProfile{
		ID:         json.Number("1"),
		Name:       "Junior",
		Skills:     []string{"Go"},
		Experience: 0.5,
	})

	if user.Skills[0].ExperienceYears != 0.5 {
		t.Fatalf("experience of at most a year must not be discounted, got %v", user.Skills[0].ExperienceYears)
	}
}

func TestEstimateProficiencyBounds(t *testing.T) {
	if got := estimateProficiency(0, 0, 0); got != 1 {
		t.Fatalf("proficiency must floor at 1, got %v", got)
	}
	if got := estimateProficiency(40, 10, 10); got != 10 {
		t.Fatalf("proficiency must cap at 10, got %v", got)
	}
}
