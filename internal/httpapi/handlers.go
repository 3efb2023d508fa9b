package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/anvil-platform/autoconfig/internal/condition"
	"github.com/anvil-platform/autoconfig/internal/failureanalysis"
	"github.com/anvil-platform/autoconfig/internal/metadata"
	"github.com/anvil-platform/autoconfig/internal/metrics"
	"github.com/anvil-platform/autoconfig/internal/selector"
	"github.com/anvil-platform/autoconfig/internal/sorter"
)

const maxBodyBytes = 1 << 20

type SortRequest struct {
	Candidates []string `json:"candidates"`
}

type SortResponse struct {
	Order []string `json:"order"`
}

type SelectRequest struct {
	Candidates []string `json:"candidates,omitempty"`
	Exclusions []string `json:"exclusions,omitempty"`
	// Environment falls back to the router's default when omitted.
	Environment *condition.Environment `json:"environment,omitempty"`
}

type SelectResponse struct {
	Imports    []string          `json:"imports"`
	Exclusions []string          `json:"exclusions"`
	Report     condition.Summary `json:"report"`
}

// ErrorResponse carries the failure analysis when one applies.
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"description,omitempty"`
	Action      string `json:"action,omitempty"`
}

type handler struct {
	source     metadata.Snapshotter
	recorder   *metrics.Recorder
	defaultEnv condition.Environment
}

// sort handles POST /v1/sort
func (h *handler) sort(w http.ResponseWriter, r *http.Request) {
	var req SortRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	order, err := sorter.New(h.source.Snapshot()).Sort(req.Candidates)
	h.recorder.ObserveSort(time.Since(start), err)
	if err != nil {
		log.FromContext(r.Context()).Info("sort rejected", "error", err.Error())
		respondError(w, statusFor(err), err)
		return
	}
	if order == nil {
		order = []string{}
	}
	respondJSON(w, http.StatusOK, SortResponse{Order: order})
}

// selectImports handles POST /v1/select
func (h *handler) selectImports(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	env := h.defaultEnv
	if req.Environment != nil {
		env = *req.Environment
	}

	sel := selector.New(h.source.Snapshot(), selector.WithRecorder(h.recorder))
	result, err := sel.Select(r.Context(), selector.Request{
		Candidates: req.Candidates,
		Exclusions: req.Exclusions,
	}, env)
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}

	resp := SelectResponse{
		Imports:    result.Imports,
		Exclusions: result.Exclusions,
		Report:     result.Report.Summary(),
	}
	if resp.Imports == nil {
		resp.Imports = []string{}
	}
	if resp.Exclusions == nil {
		resp.Exclusions = []string{}
	}
	respondJSON(w, http.StatusOK, resp)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func statusFor(err error) int {
	var invalid *selector.InvalidExclusionsError
	switch {
	case errors.Is(err, sorter.ErrCycle), errors.As(err, &invalid):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, err error) {
	resp := ErrorResponse{Error: err.Error()}
	if a, ok := failureanalysis.Analyze(err); ok {
		resp.Description = a.Description
		resp.Action = a.Action
	}
	respondJSON(w, status, resp)
}
