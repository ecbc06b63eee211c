package matching

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// SkillMetadata is the canonical, typed view of a skills-space candidate's
// metadata. Providers return loosely typed maps (json numbers, strings);
// decoding is weakly typed on purpose.
type SkillMetadata struct {
	SkillName     string  `mapstructure:"skill_name"`
	SkillCategory string  `mapstructure:"skill_category"`
	Experience    float64 `mapstructure:"experience"`
	Proficiency   float64 `mapstructure:"proficiency"`
	UserID        string  `mapstructure:"user_id"`
	UserName      string  `mapstructure:"user_name"`
	PrimaryDomain string  `mapstructure:"primary_domain"`
	ProjectID     string  `mapstructure:"project_id"`
	ManagerID     string  `mapstructure:"manager_id"`
}

// TaskMetadata is the canonical, typed view of a tasks-space candidate's
// metadata.
type TaskMetadata struct {
	TaskID         string   `mapstructure:"task_id"`
	TaskName       string   `mapstructure:"task_name"`
	RequiredSkills []string `mapstructure:"required_skills"`
	MinComplexity  int      `mapstructure:"min_complexity"`
	TimeEstimate   float64  `mapstructure:"time_estimate"`
	ProjectID      string   `mapstructure:"project_id"`
	ManagerID      string   `mapstructure:"manager_id"`
}

// DecodeSkillMetadata converts a provider metadata map into the canonical schema.
func DecodeSkillMetadata(raw map[string]any) (*SkillMetadata, error) {
	var meta SkillMetadata
	if err := decodeMetadata(raw, &meta); err != nil {
		return nil, fmt.Errorf("decode skill metadata: %w", err)
	}
	return &meta, nil
}

// DecodeTaskMetadata converts a provider metadata map into the canonical schema.
func DecodeTaskMetadata(raw map[string]any) (*TaskMetadata, error) {
	var meta TaskMetadata
	if err := decodeMetadata(raw, &meta); err != nil {
		return nil, fmt.Errorf("decode task metadata: %w", err)
	}
	return &meta, nil
}

func decodeMetadata(raw map[string]any, target any) error {
	cfg := &mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
	}

	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}

	return decoder.Decode(raw)
}
