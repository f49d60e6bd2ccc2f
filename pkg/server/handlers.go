package server

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/knitstack/pkg/buildinfo"
	kerrors "github.com/matzehuels/knitstack/pkg/errors"
	"github.com/matzehuels/knitstack/pkg/pipeline"
	"github.com/matzehuels/knitstack/pkg/playback"
	"github.com/matzehuels/knitstack/pkg/render/sink"
)

type stepSummary struct {
	Index  int      `json:"index"`
	Line   int      `json:"line"`
	Label  string   `json:"label"`
	Active []string `json:"active,omitempty"`
	// Passes paces a viewer's transfer animation.
	Passes []playback.Pass `json:"passes,omitempty"`
}

type stepsResponse struct {
	HistoryHash string        `json:"history_hash,omitempty"`
	Unwinds     bool          `json:"unwinds,omitempty"`
	Steps       []stepSummary `json:"steps"`
	Error       *errorBody    `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleSteps(w http.ResponseWriter, r *http.Request) {
	sess, err := s.simulate(r)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := stepsResponse{
		HistoryHash: sess.hash,
		Unwinds:     sess.opts.UnwindRacking && lastRacked(sess.history),
		Steps:       make([]stepSummary, 0, sess.history.Len()),
	}
	for _, st := range sess.history.Steps() {
		resp.Steps = append(resp.Steps, stepSummary{
			Index:  st.Index,
			Line:   st.Line,
			Label:  st.Label,
			Active: st.Active,
			Passes: st.Passes,
		})
	}
	if sess.simErr != nil {
		resp.Error = newErrorBody(sess.simErr)
	}
	writeJSON(w, http.StatusOK, resp)
}

func lastRacked(h *playback.History) bool {
	st, ok := h.Last()
	return ok && st.Snapshot.Racking != 0
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	_, st, err := s.step(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	sess, st, err := s.step(r)
	if err != nil {
		writeError(w, err)
		return
	}
	f, err := pipeline.Frame(st, sess.opts.Params)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := sink.RenderJSON(f, sink.WithJSONSnapshot(st.Snapshot), sink.WithJSONStyle(sess.opts.Style), sink.WithJSONCompact())
	if err != nil {
		writeError(w, kerrors.Wrap(kerrors.ErrCodeInternal, err, "encode frame"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, pipeline.FormatSVG, "image/svg+xml")
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, pipeline.FormatDOT, "text/vnd.graphviz; charset=utf-8")
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, format, contentType string) {
	sess, st, err := s.step(r)
	if err != nil {
		writeError(w, err)
		return
	}
	f, err := pipeline.Frame(st, sess.opts.Params)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := pipeline.RenderFrame(r.Context(), f, st, format, sess.opts)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}

// session is one simulated request. When simErr is set it stopped the
// simulation and history holds the steps before it.
type session struct {
	opts    pipeline.Options
	history *playback.History
	hash    string
	simErr  error
}

// simulate reads the script body and runs it through the cached runner.
func (s *Server) simulate(r *http.Request) (*session, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, kerrors.MaxScriptSize+1))
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeInvalidInput, err, "read body")
	}
	opts, err := s.requestOptions(r)
	if err != nil {
		return nil, err
	}
	opts.Script = string(body)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	h, hash, _, err := s.runner.SimulateWithCacheInfo(r.Context(), opts)
	if h == nil {
		return nil, err
	}
	return &session{opts: opts, history: h, hash: hash, simErr: err}, nil
}

// step resolves the {n} URL parameter against the simulated history.
func (s *Server) step(r *http.Request) (*session, playback.Step, error) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		return nil, playback.Step{}, kerrors.New(kerrors.ErrCodeInvalidInput, "step index %q is not a number", chi.URLParam(r, "n"))
	}
	sess, err := s.simulate(r)
	if err != nil {
		return nil, playback.Step{}, err
	}
	idx, err := pipeline.SelectSteps(sess.history, pipeline.Options{Steps: []int{n}})
	if err != nil {
		return nil, playback.Step{}, err
	}
	st, _ := sess.history.Step(idx[0])
	return sess, st, nil
}

// requestOptions applies query parameters to the server defaults.
func (s *Server) requestOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.defaults.Clone()
	opts.Logger = s.logger
	q := r.URL.Query()
	if v := q.Get("style"); v != "" {
		opts.Style = v
	}
	for name, dst := range map[string]*bool{
		"labels":   &opts.NeedleLabels,
		"title":    &opts.Title,
		"detailed": &opts.Detailed,
		"unwind":   &opts.UnwindRacking,
	} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, kerrors.New(kerrors.ErrCodeInvalidOptions, "%s: %q is not a boolean", name, v)
		}
		*dst = b
	}
	return opts, nil
}
