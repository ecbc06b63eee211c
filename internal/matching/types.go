package matching

// Skill is a single named capability, owned by a user or required by a task.
// ProficiencyScore uses the canonical 0-100 scale. Producers with 0-10 data
// must rescale before indexing (see RescaleProficiency).
type Skill struct {
	Name             string  `json:"name"`
	Category         string  `json:"category"`
	ExperienceYears  float64 `json:"experience_years"`
	ProficiencyScore float64 `json:"proficiency_score"`
}

// User holds a set of skills inside a project.
type User struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	PrimaryDomain string  `json:"primary_domain,omitempty"`
	Skills        []Skill `json:"skills"`
}

// Task is a unit of work requiring a set of skills.
type Task struct {
	TaskID         string  `json:"task_id"`
	Name           string  `json:"name"`
	RequiredSkills []Skill `json:"required_skills"`
	Complexity     int     `json:"complexity"`
	EstimatedHours float64 `json:"estimated_hours"`
}

// ProjectScope is the tenancy boundary. Every indexed document and every
// query carries this pair; a query never returns entities outside its scope.
type ProjectScope struct {
	ProjectID string `json:"project_id"`
	ManagerID string `json:"manager_id"`
}

// UserMatch is one ranked candidate user for a task.
type UserMatch struct {
	UserID        string  `json:"user_id"`
	Name          string  `json:"name"`
	MatchScore    float64 `json:"match_score"`
	SkillCoverage float64 `json:"skill_coverage"`
}

// Key and Score make UserMatch rankable.
func (m UserMatch) Key() string    { return m.UserID }
func (m UserMatch) Score() float64 { return m.MatchScore }

// TaskMatch is one ranked candidate task for a user.
type TaskMatch struct {
	TaskID        string  `json:"task_id"`
	Name          string  `json:"name"`
	MatchScore    float64 `json:"match_score"`
	MinComplexity int     `json:"min_complexity"`
	TimeEstimate  float64 `json:"time_estimate"`
	SkillCoverage float64 `json:"skill_coverage"`
}

func (m TaskMatch) Key() string    { return m.TaskID }
func (m TaskMatch) Score() float64 { return m.MatchScore }

// IndexReport summarizes an indexing call. Failed batches do not roll back
// batches already committed.
type IndexReport struct {
	Documents     int            `json:"documents"`
	FailedBatches []BatchFailure `json:"failed_batches,omitempty"`
}

// BatchFailure describes one upsert batch that did not commit.
type BatchFailure struct {
	Batch int    `json:"batch"`
	Size  int    `json:"size"`
	Error string `json:"error"`
}

// DeleteReport summarizes a deletion call. Unresolved lists user ids whose
// vector ids could not be derived because no skill names were provided.
type DeleteReport struct {
	Deleted    int      `json:"deleted"`
	Unresolved []string `json:"unresolved,omitempty"`
}
