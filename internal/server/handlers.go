package server

import (
	"net/http"

	"github.com/spigell/optiplan-ai/internal/ai"
	"github.com/spigell/optiplan-ai/internal/matching"
)

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": "OptiPlan AI Service - Powered by Gemini AI Embeddings",
		"status":  "healthy",
	})
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Service is up and running",
	})
}

type generateTasksRequest struct {
	scoped
	ProjectDescription string `json:"project_description"`
}

func (s *Server) handleGenerateTasks(w http.ResponseWriter, r *http.Request) {
	var req generateTasksRequest
	if !s.decodeScoped(w, r, &req) {
		return
	}

	if s.roadmap == nil {
		s.writeError(w, http.StatusServiceUnavailable, "roadmap generator is not configured")
		return
	}

	tasks, err := s.roadmap.Generate(r.Context(), req.ProjectDescription)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"tasks": ai.ScopeRoadmap(tasks, req.ProjectID, req.ManagerID),
	})
}

type indexUsersRequest struct {
	scoped
	Users []matching.User `json:"users"`
}

func (s *Server) handleIndexUsers(w http.ResponseWriter, r *http.Request) {
	var req indexUsersRequest
	if !s.decodeScoped(w, r, &req) {
		return
	}

	report, err := s.engine.IndexUsers(r.Context(), req.Users, req.scope())
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Users indexed successfully",
		"report":  report,
	})
}

type indexTasksRequest struct {
	scoped
	Tasks []matching.Task `json:"tasks"`
}

func (s *Server) handleIndexTasks(w http.ResponseWriter, r *http.Request) {
	var req indexTasksRequest
	if !s.decodeScoped(w, r, &req) {
		return
	}

	report, err := s.engine.IndexTasks(r.Context(), req.Tasks, req.scope())
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Tasks indexed successfully",
		"report":  report,
	})
}

type matchedTask struct {
	matching.Task
	MatchedUsers []matching.UserMatch `json:"matched_users"`
}

func (s *Server) handleMatchUsersForTasks(w http.ResponseWriter, r *http.Request) {
	var req indexTasksRequest
	if !s.decodeScoped(w, r, &req) {
		return
	}

	annotated := make([]matchedTask, 0, len(req.Tasks))
	for _, task := range req.Tasks {
		matches, err := s.engine.MatchUsersForTask(r.Context(), task, nil, req.scope(), 0)
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		annotated = append(annotated, matchedTask{Task: task, MatchedUsers: matches})
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"tasks": annotated})
}

type singleTaskRequest struct {
	scoped
	Task matching.Task `json:"task"`
}

func (s *Server) handleMatchUserForTask(w http.ResponseWriter, r *http.Request) {
	var req singleTaskRequest
	if !s.decodeScoped(w, r, &req) {
		return
	}

	matches, err := s.engine.MatchUsersForTask(r.Context(), req.Task, nil, req.scope(), 0)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"task":          req.Task,
		"matched_users": matches,
	})
}

type matchedUser struct {
	matching.User
	MatchedTasks []matching.TaskMatch `json:"matched_tasks"`
}

type matchUsersRequest struct {
	scoped
	Users []matching.User `json:"users"`
}

func (s *Server) handleMatchTasksForUsers(w http.ResponseWriter, r *http.Request) {
	var req matchUsersRequest
	if !s.decodeScoped(w, r, &req) {
		return
	}

	annotated := make([]matchedUser, 0, len(req.Users))
	for _, user := range req.Users {
		matches, err := s.engine.MatchTasksForUser(r.Context(), user, req.scope(), 0)
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		annotated = append(annotated, matchedUser{User: user, MatchedTasks: matches})
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"users": annotated})
}

type singleUserRequest struct {
	scoped
	User matching.User `json:"user"`
}

func (s *Server) handleMatchTasksForUser(w http.ResponseWriter, r *http.Request) {
	var req singleUserRequest
	if !s.decodeScoped(w, r, &req) {
		return
	}

	matches, err := s.engine.MatchTasksForUser(r.Context(), req.User, req.scope(), 0)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"user":          req.User,
		"matched_tasks": matches,
	})
}

type deleteUsersRequest struct {
	scoped
	Users   []matching.UserDeletion `json:"users"`
	UserIDs []string                `json:"user_ids"`
}

// deletions merges the two accepted shapes: full entries with skill names and
// bare user ids. Bare ids carry no skill names and come back as unresolved in
// the report rather than being dropped.
func (req deleteUsersRequest) deletions() []matching.UserDeletion {
	users := req.Users
	for _, id := range req.UserIDs {
		users = append(users, matching.UserDeletion{UserID: id})
	}
	return users
}

func (s *Server) handleDeleteUsers(w http.ResponseWriter, r *http.Request) {
	var req deleteUsersRequest
	if !s.decodeScoped(w, r, &req) {
		return
	}

	report, err := s.engine.DeleteUsers(r.Context(), req.deletions())
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Users index deleted successfully",
		"report":  report,
	})
}

type deleteTasksRequest struct {
	scoped
	TaskIDs []string `json:"task_ids"`
}

func (s *Server) handleDeleteTasks(w http.ResponseWriter, r *http.Request) {
	var req deleteTasksRequest
	if !s.decodeScoped(w, r, &req) {
		return
	}

	report, err := s.engine.DeleteTasks(r.Context(), req.TaskIDs)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Tasks index deleted successfully",
		"report":  report,
	})
}
