package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/qbridge-labs/qbridge/internal/state"
	"github.com/qbridge-labs/qbridge/pkg/core"
)

// submitRequest is the job submission body. The program field is the parsed
// operation list; decoding it is the boundary with the parser collaborator.
type submitRequest struct {
	JobID   string         `json:"job_id,omitempty"`
	Shots   int            `json:"shots"`
	Program core.Program   `json:"program"`
	Mapping map[string]int `json:"mapping,omitempty"`
}

// jobResponse is the submission result, completed or failed.
type jobResponse struct {
	JobID   string         `json:"job_id"`
	Status  core.JobState  `json:"status"`
	Counts  core.Histogram `json:"counts,omitempty"`
	Message string         `json:"message,omitempty"`
	Error   *errorBody     `json:"error,omitempty"`
}

type errorBody struct {
	Kind    core.ErrorKind `json:"kind"`
	Message string         `json:"message"`
}

type statusBody struct {
	Status core.DeviceStatus `json:"status"`
}

const successMessage = "job is succeeded"

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("undecodable request body: %v", err))
		return
	}

	jobID := req.JobID
	if jobID == "" {
		jobID = uuid.New().String()
	}

	explicit, err := parseMapping(req.Mapping)
	if err != nil {
		writeJSON(w, http.StatusOK, failedResponse(jobID, err))
		return
	}
	if err := validateProgram(req.Program); err != nil {
		writeJSON(w, http.StatusOK, failedResponse(jobID, err))
		return
	}

	job := core.NewJob(jobID, req.Shots, req.Program)
	s.pipeline.Run(r.Context(), job, explicit)

	if job.Err != nil {
		writeJSON(w, http.StatusOK, failedResponse(jobID, job.Err))
		return
	}
	writeJSON(w, http.StatusOK, jobResponse{
		JobID:   job.ID,
		Status:  job.State,
		Counts:  job.Histogram,
		Message: successMessage,
	})
}

func (s *Server) handleDeviceInfo(w http.ResponseWriter, _ *http.Request) {
	snap := s.pipeline.Snapshot()
	info := snap.Info(s.pipeline.Status().Get(), s.pipeline.Backend().Simulator())

	couplings := snap.Topology.Couplings()
	edges := make([][2]int, 0, len(couplings))
	edges = append(edges, couplings...)

	writeJSON(w, http.StatusOK, struct {
		core.DeviceInfo
		Qubits    []int    `json:"qubits"`
		Couplings [][2]int `json:"couplings"`
	}{
		DeviceInfo: info,
		Qubits:     snap.Topology.PhysicalQubits(),
		Couplings:  edges,
	})
}

func (s *Server) handleGetStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusBody{Status: s.pipeline.Status().Get()})
}

// handleSetStatus is the administrative surface: idempotent, always
// succeeds for a recognized status, and affects subsequently admitted jobs
// only.
func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var body statusBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("undecodable request body: %v", err))
		return
	}
	if !body.Status.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported device status %q", body.Status))
		return
	}

	s.pipeline.Status().Set(body.Status)
	s.logger.Info("device status set", "status", body.Status)
	writeJSON(w, http.StatusOK, statusBody{Status: body.Status})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.store.GetJob(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("job %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	records, err := s.store.ListRecent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []*state.JobRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// parseMapping converts the wire mapping (JSON object keys are strings)
// into the virtual->physical table the mapper takes.
func parseMapping(m map[string]int) (map[int]int, error) {
	if len(m) == 0 {
		return nil, nil
	}
	out := make(map[int]int, len(m))
	for k, p := range m {
		v, err := strconv.Atoi(k)
		if err != nil || v < 0 {
			return nil, &core.ProgramError{Reason: fmt.Sprintf("mapping key %q is not a virtual qubit index", k)}
		}
		out[v] = p
	}
	return out, nil
}

// validateProgram performs the structural checks the parser collaborator
// guarantees; anything that fails here is an invalid_program.
func validateProgram(p core.Program) error {
	if len(p) == 0 {
		return &core.ProgramError{Reason: "program is empty"}
	}
	for i, op := range p {
		if !op.Gate.Supported() {
			return &core.ProgramError{Reason: fmt.Sprintf("operation %d: unsupported gate %q", i, op.Gate)}
		}
		for _, q := range op.Qubits {
			if q < 0 {
				return &core.ProgramError{Reason: fmt.Sprintf("operation %d: negative qubit index %d", i, q)}
			}
		}
		if op.Gate == core.GateMeasure && op.Bit < 0 {
			return &core.ProgramError{Reason: fmt.Sprintf("operation %d: negative classical bit index %d", i, op.Bit)}
		}
	}
	return nil
}

func failedResponse(jobID string, err error) jobResponse {
	return jobResponse{
		JobID:  jobID,
		Status: core.JobFailed,
		Error:  &errorBody{Kind: core.KindOf(err), Message: err.Error()},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
