package matching

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/spigell/optiplan-ai/internal/vectorstore"
	"go.uber.org/zap"
)

type stubStore struct {
	convention vectorstore.ScoreConvention
	candidates []vectorstore.Candidate
	queryErr   error
	upsertErr  error
	failBatch  int

	upsertCalls int
	upserts     [][]vectorstore.Document
	deleted     map[string][]string

	lastNamespace string
	lastContent   string
	lastK         int
	lastFilter    vectorstore.Filter
}

func (s *stubStore) Convention() vectorstore.ScoreConvention {
	if s.convention == "" {
		return vectorstore.ConventionSimilarity
	}
	return s.convention
}

func (s *stubStore) Upsert(_ context.Context, _ string, docs []vectorstore.Document) error {
	s.upsertCalls++
	if s.upsertErr != nil && (s.failBatch == 0 || s.failBatch == s.upsertCalls) {
		return s.upsertErr
	}
	s.upserts = append(s.upserts, docs)
	return nil
}

func (s *stubStore) Query(_ context.Context, namespace, content string, k int, filter vectorstore.Filter) ([]vectorstore.Candidate, error) {
	s.lastNamespace = namespace
	s.lastContent = content
	s.lastK = k
	s.lastFilter = filter
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.candidates, nil
}

func (s *stubStore) DeleteByIDs(_ context.Context, namespace string, ids []string) error {
	if s.deleted == nil {
		s.deleted = map[string][]string{}
	}
	s.deleted[namespace] = append(s.deleted[namespace], ids...)
	return nil
}

func newTestEngine(t *testing.T, skills, tasks *stubStore) *Engine {
	t.Helper()

	engine, err := NewEngine(EngineOptions{
		Skills: skills,
		Tasks:  tasks,
		Logger: zap.NewNop(),
		TopK:   5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return engine
}

func skillCandidate(userID, userName, skillName string, score, experience, proficiency float64, category string) vectorstore.Candidate {
	return vectorstore.Candidate{
		ID:    UserSkillID(userID, skillName),
		Score: score,
		Metadata: map[string]any{
			"skill_name":     skillName,
			"skill_category": category,
			"experience":     experience,
			"proficiency":    proficiency,
			"user_id":        userID,
			"user_name":      userName,
			"project_id":     "p1",
			"manager_id":     "m1",
		},
	}
}

func TestMatchUsersForTask(t *testing.T) {
	// User X hits only Docker with a strong score and a perfect weight; user
	// Y covers both required skills with weaker scores. Coverage must win.
	skills := &stubStore{candidates: []vectorstore.Candidate{
		skillCandidate("x", "Xenia", "Docker", 0.8, 10, 100, "management"),
		skillCandidate("y", "Yuri", "Docker", 0.6, 2.5, 50, "management"),
		skillCandidate("y", "Yuri", "AWS", 0.7, 2.5, 50, "management"),
	}}
	engine := newTestEngine(t, skills, &stubStore{})

	task := Task{
		TaskID: "t1",
		Name:   "Ship containers",
		RequiredSkills: []Skill{
			{Name: "Docker"},
			{Name: "AWS"},
		},
	}
	scope := ProjectScope{ProjectID: "p1", ManagerID: "m1"}

	matches, err := engine.MatchUsersForTask(context.Background(), task, nil, scope, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}

	if matches[0].UserID != "y" || matches[1].UserID != "x" {
		t.Fatalf("expected full coverage to rank first, got %v", matches)
	}

	// y: 0.4*mean(0.6,0.7) + 0.4*1.0 + 0.2*0.4 = 0.74
	if math.Abs(matches[0].MatchScore-0.74) > 1e-9 {
		t.Fatalf("expected y score 0.74, got %v", matches[0].MatchScore)
	}
	if matches[0].SkillCoverage != 1.0 {
		t.Fatalf("expected y coverage 1.0, got %v", matches[0].SkillCoverage)
	}

	// x: 0.4*0.8 + 0.4*0.5 + 0.2*1.0 = 0.72
	if math.Abs(matches[1].MatchScore-0.72) > 1e-9 {
		t.Fatalf("expected x score 0.72, got %v", matches[1].MatchScore)
	}
	if matches[1].SkillCoverage != 0.5 {
		t.Fatalf("expected x coverage 0.5, got %v", matches[1].SkillCoverage)
	}

	if matches[0].Name != "Yuri" {
		t.Fatalf("user name must come from candidate metadata, got %q", matches[0].Name)
	}
}

func TestMatchUsersForTaskOverFetchesAndFilters(t *testing.T) {
	skills := &stubStore{}
	engine := newTestEngine(t, skills, &stubStore{})

	task := Task{
		TaskID: "t1",
		Name:   "Ship containers",
		RequiredSkills: []Skill{
			{Name: "Docker"},
			{Name: "AWS"},
		},
	}
	scope := ProjectScope{ProjectID: "p1", ManagerID: "m1"}

	if _, err := engine.MatchUsersForTask(context.Background(), task, []string{"x", "y"}, scope, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if skills.lastNamespace != vectorstore.SkillsNamespace {
		t.Fatalf("user matching must query the skills space, got %q", skills.lastNamespace)
	}

	// top_k * |requiredSkills| to compensate for multiple hits per user.
	if skills.lastK != 10 {
		t.Fatalf("expected over-fetch of 10, got %d", skills.lastK)
	}

	if skills.lastFilter.ProjectID != "p1" || skills.lastFilter.ManagerID != "m1" {
		t.Fatalf("project scope missing from query filter: %+v", skills.lastFilter)
	}

	if len(skills.lastFilter.UserIDs) != 2 {
		t.Fatalf("allow-list must reach the store filter: %+v", skills.lastFilter)
	}
}

func TestMatchUsersForTaskCoverageCountsRequiredSkillsOnly(t *testing.T) {
	// The skills-space query is not filtered by skill name, so a user's hits
	// regularly include skills the task never asked for. Those must not
	// inflate coverage past 1.
	skills := &stubStore{candidates: []vectorstore.Candidate{
		skillCandidate("x", "Xenia", "Docker", 0.8, 10, 100, "management"),
		skillCandidate("x", "Xenia", "Kubernetes", 0.9, 10, 100, "management"),
	}}
	engine := newTestEngine(t, skills, &stubStore{})

	task := Task{
		TaskID:         "t1",
		Name:           "Ship containers",
		RequiredSkills: []Skill{{Name: "Docker"}},
	}

	matches, err := engine.MatchUsersForTask(context.Background(), task, nil, ProjectScope{}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}

	if matches[0].SkillCoverage != 1.0 {
		t.Fatalf("coverage must stay in [0,1], got %v", matches[0].SkillCoverage)
	}

	// 0.4*mean(0.8,0.9) + 0.4*1.0 + 0.2*1.0
	if math.Abs(matches[0].MatchScore-0.94) > 1e-9 {
		t.Fatalf("expected score 0.94, got %v", matches[0].MatchScore)
	}
	if matches[0].MatchScore < 0 || matches[0].MatchScore > 1 {
		t.Fatalf("score out of [0,1]: %v", matches[0].MatchScore)
	}
}

func TestMatchUsersForTaskSkipsCandidatesWithoutSkillName(t *testing.T) {
	skills := &stubStore{candidates: []vectorstore.Candidate{
		skillCandidate("y", "Yuri", "Docker", 0.6, 2.5, 50, "management"),
		skillCandidate("y", "Yuri", "", 1.0, 10, 100, "management"),
	}}
	engine := newTestEngine(t, skills, &stubStore{})

	task := Task{
		TaskID:         "t1",
		Name:           "Ship containers",
		RequiredSkills: []Skill{{Name: "Docker"}},
	}

	matches, err := engine.MatchUsersForTask(context.Background(), task, nil, ProjectScope{}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}

	// Only the Docker hit counts: 0.4*0.6 + 0.4*1.0 + 0.2*0.4. A nameless
	// candidate cannot be attributed to a skill and must not shift the means.
	if math.Abs(matches[0].MatchScore-0.72) > 1e-9 {
		t.Fatalf("expected score 0.72, got %v", matches[0].MatchScore)
	}
	if matches[0].SkillCoverage != 1.0 {
		t.Fatalf("expected coverage 1.0, got %v", matches[0].SkillCoverage)
	}
}

func TestMatchUsersForTaskEmptyRequiredSkills(t *testing.T) {
	skills := &stubStore{candidates: []vectorstore.Candidate{
		skillCandidate("x", "Xenia", "Docker", 0.8, 10, 100, "management"),
	}}
	engine := newTestEngine(t, skills, &stubStore{})

	task := Task{TaskID: "t1", Name: "Open ended"}
	scope := ProjectScope{ProjectID: "p1", ManagerID: "m1"}

	matches, err := engine.MatchUsersForTask(context.Background(), task, nil, scope, 5)
	if err != nil {
		t.Fatalf("an empty required_skills list is legal: %v", err)
	}

	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}

	if matches[0].SkillCoverage != 0 {
		t.Fatalf("coverage must be 0 when no skills are required, got %v", matches[0].SkillCoverage)
	}
}

func TestMatchUsersForTaskRequiresTaskName(t *testing.T) {
	engine := newTestEngine(t, &stubStore{}, &stubStore{})

	_, err := engine.MatchUsersForTask(context.Background(), Task{TaskID: "t1"}, nil, ProjectScope{}, 5)

	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestMatchUsersForTaskDegradesOnQueryFailure(t *testing.T) {
	skills := &stubStore{queryErr: errors.New("index unavailable")}
	engine := newTestEngine(t, skills, &stubStore{})

	task := Task{TaskID: "t1", Name: "Ship containers"}

	matches, err := engine.MatchUsersForTask(context.Background(), task, nil, ProjectScope{}, 5)
	if err != nil {
		t.Fatalf("a collaborator outage must degrade, not fail: %v", err)
	}

	if len(matches) != 0 {
		t.Fatalf("expected an empty candidate set, got %v", matches)
	}
}

func taskCandidate(taskID, taskName string, score float64, requiredSkills []any) vectorstore.Candidate {
	return vectorstore.Candidate{
		ID:    TaskID(taskID),
		Score: score,
		Metadata: map[string]any{
			"task_id":         taskID,
			"task_name":       taskName,
			"required_skills": requiredSkills,
			"min_complexity":  float64(5),
			"time_estimate":   float64(8),
			"project_id":      "p1",
			"manager_id":      "m1",
		},
	}
}

func TestMatchTasksForUser(t *testing.T) {
	tasks := &stubStore{candidates: []vectorstore.Candidate{
		taskCandidate("b", "Add GraphQL layer", 0.95, []any{"React", "GraphQL"}),
		taskCandidate("a", "Build dashboard", 0.9, []any{"React", "Node.js"}),
	}}
	engine := newTestEngine(t, &stubStore{}, tasks)

	user := User{
		ID:   "u1",
		Name: "Alice",
		Skills: []Skill{
			{Name: "React", Category: "frontend", ExperienceYears: 5, ProficiencyScore: 95},
			{Name: "Node.js", Category: "backend", ExperienceYears: 3, ProficiencyScore: 85},
		},
	}
	scope := ProjectScope{ProjectID: "p1", ManagerID: "m1"}

	matches, err := engine.MatchTasksForUser(context.Background(), user, scope, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}

	// a: 0.9 * 1.0, b: 0.95 * 0.5. Full coverage wins despite the weaker score.
	if matches[0].TaskID != "a" || matches[1].TaskID != "b" {
		t.Fatalf("unexpected order: %v", matches)
	}

	if math.Abs(matches[0].MatchScore-0.9) > 1e-9 {
		t.Fatalf("expected score 0.9, got %v", matches[0].MatchScore)
	}
	if math.Abs(matches[1].MatchScore-0.475) > 1e-9 {
		t.Fatalf("expected score 0.475, got %v", matches[1].MatchScore)
	}

	if matches[0].MinComplexity != 5 || matches[0].TimeEstimate != 8 {
		t.Fatalf("task attributes must come from metadata: %+v", matches[0])
	}
}

func TestMatchTasksForUserBuildsCompositeQuery(t *testing.T) {
	tasks := &stubStore{}
	engine := newTestEngine(t, &stubStore{}, tasks)

	user := User{
		ID: "u1",
		Skills: []Skill{
			{Name: "React"},
			{Name: "Node.js"},
		},
	}

	if _, err := engine.MatchTasksForUser(context.Background(), user, ProjectScope{}, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tasks.lastNamespace != vectorstore.TasksNamespace {
		t.Fatalf("task matching must query the tasks space, got %q", tasks.lastNamespace)
	}

	// One combined query with blank-line separated skill documents, not
	// per-skill queries.
	expected := "Skill: React\nCategory: \nExperience: 0y\nProficiency: 0\n\nSkill: Node.js\nCategory: \nExperience: 0y\nProficiency: 0"
	if tasks.lastContent != expected {
		t.Fatalf("unexpected composite query:\n%q", tasks.lastContent)
	}

	if tasks.lastK != 3 {
		t.Fatalf("task matching must not over-fetch, got k=%d", tasks.lastK)
	}
}

func TestMatchTasksForUserZeroOverlapScoresZero(t *testing.T) {
	tasks := &stubStore{candidates: []vectorstore.Candidate{
		taskCandidate("t9", "Train a model", 0.99, []any{"PyTorch"}),
	}}
	engine := newTestEngine(t, &stubStore{}, tasks)

	user := User{ID: "u1", Skills: []Skill{{Name: "React"}}}

	matches, err := engine.MatchTasksForUser(context.Background(), user, ProjectScope{}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if matches[0].MatchScore != 0 {
		t.Fatalf("zero skill overlap must score exactly 0 regardless of similarity, got %v", matches[0].MatchScore)
	}
}

func TestMatchTasksForUserEmptyRequiredSkillsCoverage(t *testing.T) {
	tasks := &stubStore{candidates: []vectorstore.Candidate{
		taskCandidate("t1", "Free for all", 0.9, []any{}),
	}}
	engine := newTestEngine(t, &stubStore{}, tasks)

	user := User{ID: "u1", Skills: []Skill{{Name: "React"}}}

	matches, err := engine.MatchTasksForUser(context.Background(), user, ProjectScope{}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if matches[0].SkillCoverage != 0 || matches[0].MatchScore != 0 {
		t.Fatalf("empty required skills must yield coverage 0, got %+v", matches[0])
	}
}

func TestMatchTasksForUserDegradesOnQueryFailure(t *testing.T) {
	tasks := &stubStore{queryErr: errors.New("index unavailable")}
	engine := newTestEngine(t, &stubStore{}, tasks)

	matches, err := engine.MatchTasksForUser(context.Background(), User{ID: "u1"}, ProjectScope{}, 5)
	if err != nil {
		t.Fatalf("a collaborator outage must degrade, not fail: %v", err)
	}

	if len(matches) != 0 {
		t.Fatalf("expected an empty candidate set, got %v", matches)
	}
}

func TestMatchNormalizesDistanceConvention(t *testing.T) {
	tasks := &stubStore{
		convention: vectorstore.ConventionCosineDistance,
		candidates: []vectorstore.Candidate{
			taskCandidate("t1", "Build dashboard", 0.1, []any{"React"}),
		},
	}
	engine := newTestEngine(t, &stubStore{}, tasks)

	user := User{ID: "u1", Skills: []Skill{{Name: "React"}}}

	matches, err := engine.MatchTasksForUser(context.Background(), user, ProjectScope{}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(matches[0].MatchScore-0.9) > 1e-9 {
		t.Fatalf("distance 0.1 must normalize to 0.9, got %v", matches[0].MatchScore)
	}
}
