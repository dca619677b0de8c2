package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/vmweaver/vmweaver/pkg/engine"
)

var validate = validator.New()

// listResponse wraps a sequence of VM records with counts over that
// sequence.
type listResponse struct {
	TotalVMs      int                         `json:"total_vms"`
	VMsByProvider map[engine.ProviderType]int `json:"vms_by_provider"`
	VMs           []*engine.VMRecord          `json:"vms"`
}

// providerVMsResponse wraps the records of a single provider.
type providerVMsResponse struct {
	ProviderType engine.ProviderType `json:"provider_type"`
	TotalVMs     int                 `json:"total_vms"`
	VMs          []*engine.VMRecord  `json:"vms"`
}

// statusUpdateRequest is the body of PUT /api/v1/vms/{id}/status.
type statusUpdateRequest struct {
	NewStatus engine.VMStatus `json:"new_status" validate:"required"`
}

func newListResponse(vms []*engine.VMRecord) listResponse {
	byProvider := make(map[engine.ProviderType]int)
	for _, vm := range vms {
		byProvider[vm.Provider]++
	}
	return listResponse{
		TotalVMs:      len(vms),
		VMsByProvider: byProvider,
		VMs:           vms,
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service":     "vmweaver",
		"description": "unified multi-cloud VM provisioning API",
		"endpoints": map[string]string{
			"provision":       "POST /api/v1/vm/provision",
			"providers":       "GET /api/v1/providers",
			"all_vms":         "GET /api/v1/vms",
			"vms_by_provider": "GET /api/v1/vms/provider/{type}",
			"vms_by_status":   "GET /api/v1/vms/status/{status}",
			"vm_by_id":        "GET /api/v1/vms/{id}",
			"vms_summary":     "GET /api/v1/vms-summary",
			"update_status":   "PUT /api/v1/vms/{id}/status",
			"health":          "GET /health",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.orch.HealthCheck(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "vmweaver",
	})
}

func (s *Server) handleProvision(w http.ResponseWriter, r *http.Request) {
	var req engine.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "provider_type and parameters are required")
		return
	}

	result, err := s.orch.Provision(r.Context(), req)
	if err != nil {
		// Storage failure is the only path that reaches here; the
		// envelope already carries the generic message.
		writeJSON(w, http.StatusInternalServerError, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListVMs(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.DefaultPageSize
	offset := 0

	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, s.cfg.MaxPageSize)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		offset = n
	}

	vms, err := s.orch.ListVMs(r.Context(), limit, offset)
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(vms))
}

func (s *Server) handleVMsByProvider(w http.ResponseWriter, r *http.Request) {
	ptype := engine.ProviderType(r.PathValue("type"))

	var status *engine.VMStatus
	if v := r.URL.Query().Get("status"); v != "" {
		st := engine.VMStatus(v)
		if !st.Valid() {
			writeError(w, http.StatusBadRequest, "unknown status: "+v)
			return
		}
		status = &st
	}

	vms, err := s.orch.VMsByProvider(r.Context(), ptype, status)
	if err != nil {
		if engine.CodeOf(err) == engine.ErrCodeUnsupportedProvider {
			writeError(w, http.StatusNotFound, errMessage(err))
			return
		}
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, providerVMsResponse{
		ProviderType: ptype,
		TotalVMs:     len(vms),
		VMs:          vms,
	})
}

func (s *Server) handleVMsByStatus(w http.ResponseWriter, r *http.Request) {
	status := engine.VMStatus(r.PathValue("status"))
	if !status.Valid() {
		writeError(w, http.StatusBadRequest, "unknown status: "+string(status))
		return
	}

	vms, err := s.orch.VMsByStatus(r.Context(), status)
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(vms))
}

func (s *Server) handleGetVM(w http.ResponseWriter, r *http.Request) {
	vm, err := s.orch.GetVM(r.Context(), r.PathValue("id"))
	if err != nil {
		if engine.IsNotFound(err) {
			writeError(w, http.StatusNotFound, errMessage(err))
			return
		}
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vm)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "new_status is required")
		return
	}
	if !req.NewStatus.Valid() {
		writeError(w, http.StatusBadRequest, "unknown status: "+string(req.NewStatus))
		return
	}

	vm, err := s.orch.UpdateVMStatus(r.Context(), r.PathValue("id"), req.NewStatus)
	if err != nil {
		switch {
		case engine.IsNotFound(err):
			writeError(w, http.StatusNotFound, errMessage(err))
		case engine.IsInvalidTransition(err):
			writeError(w, http.StatusConflict, errMessage(err))
		default:
			s.internalError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, vm)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.orch.Summary(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleProviders(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.orch.Providers())
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.WithError(err).Error("internal error")
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// errMessage surfaces only the human-readable text of classified errors.
func errMessage(err error) string {
	var e *engine.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
