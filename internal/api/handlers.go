package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dgallion1/guidetools/internal/guide"
	"github.com/dgallion1/guidetools/internal/pipeline"
)

type chainPage struct {
	Path   string `json:"path"`
	Dir    string `json:"dir"`
	Title  string `json:"title,omitempty"`
	Target string `json:"target"`
}

// handleCombined renders the combined guide as HTML. The start, end and
// cover query parameters override the configured defaults.
func (s *Server) handleCombined(w http.ResponseWriter, r *http.Request) {
	s.writeCombined(w, r, guide.FormatHTML, "text/html; charset=utf-8")
}

func (s *Server) handleCombinedMarkdown(w http.ResponseWriter, r *http.Request) {
	s.writeCombined(w, r, guide.FormatMarkdown, "text/markdown; charset=utf-8")
}

func (s *Server) writeCombined(w http.ResponseWriter, r *http.Request, format guide.Format, contentType string) {
	opts := s.combineOptions(r)
	opts.Format = format

	// Buffer so that a failed walk still produces a clean error response.
	var buf bytes.Buffer
	res, err := s.orchestrator.Combine(r.Context(), &buf, opts)
	if err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Guide-Pages", strconv.Itoa(res.Pages))
	w.Header().Set("X-Guide-Stop", res.Stop)
	w.Write(buf.Bytes())
}

// handleChain lists the pages a walk visits.
func (s *Server) handleChain(w http.ResponseWriter, r *http.Request) {
	opts := s.combineOptions(r)
	chain, err := s.orchestrator.Chain(r.Context(), opts.Start, opts.End)
	resp := map[string]any{}
	if err != nil {
		resp["error"] = err.Error()
	} else {
		resp["stop"] = chain.Stop.String()
	}
	pages := make([]chainPage, 0)
	if chain != nil {
		for _, p := range chain.Pages {
			pages = append(pages, chainPage{
				Path:   p.Path(),
				Dir:    p.Dir,
				Title:  p.Title(),
				Target: guide.MakeTarget(p.Path(), ""),
			})
		}
	}
	resp["pages"] = pages

	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
	}
	writeJSON(w, status, resp)
}

// handleCheck runs every check and reports the findings.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	report, err := s.orchestrator.Check(r.Context())
	if err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":     report.OK(),
		"report": report,
	})
}

func (s *Server) combineOptions(r *http.Request) pipeline.CombineOptions {
	opts := s.orchestrator.DefaultCombineOptions()
	q := r.URL.Query()
	if v := q.Get("start"); v != "" {
		opts.Start = v
	}
	if v := q.Get("end"); v != "" {
		opts.End = v
	}
	opts.Cover = q.Get("cover") == "1" || q.Get("cover") == "true"
	return opts
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, guide.ErrPageNotFound):
		return http.StatusNotFound
	case errors.Is(err, guide.ErrCycle), errors.Is(err, guide.ErrHopLimit):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
