// Package explorer serves the loop lowering pipeline over HTTP so that a
// client can post a program and inspect the MIR, LIR and loop decisions.
package explorer

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/orizon-lang/rangeopt/internal/build"
	"github.com/orizon-lang/rangeopt/internal/cli"
	"github.com/orizon-lang/rangeopt/internal/codegen"
	"github.com/orizon-lang/rangeopt/internal/mir/interp"
	"github.com/orizon-lang/rangeopt/internal/rangeloop"
)

// maxBodyBytes bounds a request body.
const maxBodyBytes = 1 << 20

// runTimeout bounds a single interpreted run.
const runTimeout = 5 * time.Second

// LowerRequest is the body of POST /v1/lower.
type LowerRequest struct {
	Filename string `json:"filename,omitempty"`
	Source   string `json:"source"`
	// Specialize overrides the server setting when present.
	Specialize *bool   `json:"specialize,omitempty"`
	Run        bool    `json:"run,omitempty"`
	Function   string  `json:"function,omitempty"`
	Args       []int64 `json:"args,omitempty"`
}

// Decision is one loop decision in a response.
type Decision struct {
	Function string `json:"function"`
	Variable string `json:"variable"`
	Position string `json:"position"`
	Strategy string `json:"strategy"`
	Reason   string `json:"reason"`
}

// LowerResponse is the body returned by POST /v1/lower.
type LowerResponse struct {
	MIR       string     `json:"mir,omitempty"`
	LIR       string     `json:"lir,omitempty"`
	Decisions []Decision `json:"decisions,omitempty"`
	Trace     []string   `json:"trace,omitempty"`
	Return    *int64     `json:"return,omitempty"`
	Steps     int64      `json:"steps,omitempty"`
	Errors    []string   `json:"errors,omitempty"`
}

// Handler implements the explorer API.
type Handler struct {
	cache    *build.Cache
	log      *cli.Logger
	opts     codegen.Options
	maxSteps int64
	mux      *http.ServeMux
}

// NewHandler creates a handler lowering with opts. Runs are bounded by
// maxSteps interpreted instructions.
func NewHandler(cache *build.Cache, log *cli.Logger, opts codegen.Options, maxSteps int64) *Handler {
	if cache == nil {
		cache = build.NewCache(0)
	}
	if log == nil {
		log = cli.NewLogger(nil, false, false)
	}
	h := &Handler{cache: cache, log: log, opts: opts, maxSteps: maxSteps, mux: http.NewServeMux()}
	h.mux.HandleFunc("/healthz", h.healthz)
	h.mux.HandleFunc("/v1/lower", h.lower)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	stats := h.cache.Stats()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"version":      cli.Version,
		"cache_hits":   stats.Hits,
		"cache_misses": stats.Misses,
	})
}

func (h *Handler) lower(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, LowerResponse{Errors: []string{"method not allowed"}})
		return
	}

	var req LowerRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, LowerResponse{Errors: []string{"invalid request: " + err.Error()}})
		return
	}
	if req.Filename == "" {
		req.Filename = "main.kt"
	}

	opts := h.opts
	if req.Specialize != nil && !*req.Specialize {
		opts.Loops = rangeloop.Options{}
	}

	unit, err := h.cache.Compile(req.Filename, req.Source, opts)
	if err != nil {
		h.log.Debug("lower %s: %v", req.Filename, err)
		writeJSON(w, http.StatusUnprocessableEntity, LowerResponse{Errors: splitErrors(err)})
		return
	}

	resp := LowerResponse{
		MIR: unit.MIR.String(),
		LIR: unit.LIR().String(),
	}
	for _, d := range unit.Report.Decisions {
		resp.Decisions = append(resp.Decisions, Decision{
			Function: d.Function,
			Variable: d.Variable,
			Position: d.Span.Start.String(),
			Strategy: d.Strategy.String(),
			Reason:   d.Reason,
		})
	}
	h.log.Info("lowered %s: %d loops", req.Filename, len(resp.Decisions))

	if req.Run {
		fn := req.Function
		if fn == "" {
			fn = "main"
		}
		ctx, cancel := context.WithTimeout(r.Context(), runTimeout)
		defer cancel()

		res, err := interp.Run(ctx, unit.MIR, fn, req.Args, interp.Options{MaxSteps: h.maxSteps})
		if res != nil {
			resp.Trace = res.Trace
			resp.Return = res.Return
			resp.Steps = res.Steps
		}
		if err != nil {
			resp.Errors = append(resp.Errors, err.Error())
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// splitErrors flattens joined front-end diagnostics into one message each.
func splitErrors(err error) []string {
	var list build.ErrorList
	if stderrors.As(err, &list) {
		msgs := make([]string, 0, len(list))
		for _, e := range list {
			msgs = append(msgs, e.Error())
		}
		return msgs
	}
	return strings.Split(err.Error(), "\n")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
