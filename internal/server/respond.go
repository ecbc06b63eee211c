package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/spigell/optiplan-ai/internal/matching"
	"go.uber.org/zap"
)

// errorEnvelope is the error body shape for every non-2xx response.
type errorEnvelope struct {
	Detail string `json:"detail"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("writing response failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, errorEnvelope{Detail: detail})
}

// writeFailure maps an operation error onto the right status: validation
// errors are the caller's fault, everything else is a collaborator failure.
func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	var validation *matching.ValidationError
	if errors.As(err, &validation) {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.writeError(w, http.StatusInternalServerError, err.Error())
}

// scoped is embedded in every request body; both ids are required.
type scoped struct {
	ProjectID string `json:"project_id"`
	ManagerID string `json:"manager_id"`
}

func (sc scoped) validate() error {
	if strings.TrimSpace(sc.ProjectID) == "" {
		return errors.New("project_id is required")
	}
	if strings.TrimSpace(sc.ManagerID) == "" {
		return errors.New("manager_id is required")
	}
	return nil
}

func (sc scoped) scope() matching.ProjectScope {
	return matching.ProjectScope{ProjectID: sc.ProjectID, ManagerID: sc.ManagerID}
}

// decodeScoped decodes the body and validates the project scope. It writes
// the error response itself and reports success via the boolean.
func (s *Server) decodeScoped(w http.ResponseWriter, r *http.Request, target interface{ validate() error }) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}

	if err := target.validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return false
	}

	return true
}
