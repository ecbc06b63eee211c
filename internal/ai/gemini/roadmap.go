package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/optiplan-ai/internal/ai"
	"github.com/spigell/optiplan-ai/internal/logger"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

// Roadmap turns a free-text project description into a structured task list.
type Roadmap struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewRoadmap(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Roadmap {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Roadmap{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Generate asks the model for a roadmap and parses the returned JSON array.
// Malformed tasks are repaired rather than rejected: numeric or blank names
// and too-short descriptions are replaced with synthesized ones.
func (r *Roadmap) Generate(ctx context.Context, projectDescription string) ([]ai.GeneratedTask, error) {
	projectDescription = strings.TrimSpace(projectDescription)
	if projectDescription == "" {
		return nil, fmt.Errorf("project description is required")
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{PROJECT_DESCRIPTION}}", projectDescription)

	r.logger.Debug("roadmap generation request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, r.maxLogLen)),
	)

	raw, err := r.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("roadmap generation response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, r.maxLogLen)),
	)

	tasks, err := parseRoadmap(raw)
	if err != nil {
		return nil, err
	}

	r.logger.Info("roadmap generated", zap.Int("tasks", len(tasks)))

	return tasks, nil
}

func parseRoadmap(raw string) ([]ai.GeneratedTask, error) {
	cleaned := extractJSONArray(raw)

	var entries []map[string]any
	if err := json.Unmarshal([]byte(cleaned), &entries); err != nil {
		return nil, fmt.Errorf("parse roadmap response: %w", err)
	}

	tasks := make([]ai.GeneratedTask, 0, len(entries))
	for _, entry := range entries {
		tasks = append(tasks, sanitizeTask(entry))
	}

	return tasks, nil
}

func sanitizeTask(entry map[string]any) ai.GeneratedTask {
	task := ai.GeneratedTask{
		TaskID:         int(coerceFloat(entry["task_id"], 0)),
		Name:           coerceString(entry["name"]),
		Description:    coerceString(entry["description"]),
		Complexity:     int(coerceFloat(entry["complexity"], 5)),
		EstimatedHours: coerceFloat(entry["estimated_hours"], 8),
		RequiredSkills: coerceSkills(entry["required_skills"]),
		DependsOn:      coerceInts(entry["depends_on"]),
	}

	task.Name = sanitizeName(task.Name, task.TaskID)

	if utf8.RuneCountInString(strings.TrimSpace(task.Description)) < 20 {
		task.Description = fmt.Sprintf(
			"Complete %s. This task has a complexity rating of %d/10 and is estimated to take approximately %g hours. The work involves implementing the necessary components and ensuring proper integration with the overall system.",
			strings.ToLower(task.Name), task.Complexity, task.EstimatedHours,
		)
	}

	if task.RequiredSkills == nil {
		task.RequiredSkills = []ai.GeneratedSkill{}
	}
	if task.DependsOn == nil {
		task.DependsOn = []int{}
	}

	return task
}

// sanitizeName replaces names that are blank, purely numeric, or serial-number
// noise with a synthesized "Task N" label.
func sanitizeName(name string, taskID int) string {
	name = strings.TrimSpace(name)
	stripped := strings.TrimSuffix(name, ",")
	digitsOnly := strings.ReplaceAll(stripped, ",", "")

	if stripped == "" || isNumeric(digitsOnly) {
		return fmt.Sprintf("Task %d", taskID)
	}

	return strings.TrimSpace(stripped)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// extractJSONArray strips code fences and surrounding prose, keeping the
// outermost JSON array.
func extractJSONArray(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}

	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start != -1 && end > start {
		raw = raw[start : end+1]
	}

	return strings.TrimSpace(raw)
}

func coerceSkills(v any) []ai.GeneratedSkill {
	entries, ok := v.([]any)
	if !ok {
		return nil
	}

	skills := make([]ai.GeneratedSkill, 0, len(entries))
	for _, entry := range entries {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		skills = append(skills, ai.GeneratedSkill{
			Name:                coerceString(m["name"]),
			Category:            coerceString(m["category"]),
			PreferredExperience: coerceFloat(m["preferred_experience"], 0),
			RequiredProficiency: int(coerceFloat(m["required_proficiency"], 0)),
		})
	}

	return skills
}

func coerceInts(v any) []int {
	entries, ok := v.([]any)
	if !ok {
		return nil
	}

	ints := make([]int, 0, len(entries))
	for _, entry := range entries {
		f := coerceFloat(entry, math.NaN())
		if math.IsNaN(f) {
			continue
		}
		ints = append(ints, int(f))
	}

	return ints
}

func coerceFloat(v any, fallback float64) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return fallback
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return fallback
		}
		return f
	default:
		return fallback
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		if v == nil {
			return ""
		}
		return fmt.Sprintf("%v", v)
	}
}
