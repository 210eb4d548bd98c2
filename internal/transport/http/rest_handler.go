package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"quiz-report-service/internal/app"
	"quiz-report-service/internal/domain"
)

// RESTHandler exposes the quiz use cases as plain request/response endpoints
// for clients that poll snapshots instead of holding a socket.
type RESTHandler struct {
	quizzes *app.QuizService
	reports *app.ReportService
	opts    Options
}

func NewRESTHandler(quizzes *app.QuizService, reports *app.ReportService, opts Options) *RESTHandler {
	return &RESTHandler{quizzes: quizzes, reports: reports, opts: opts}
}

// Routes mounts the session endpoints on r.
func (h *RESTHandler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Route("/{sessionID}", func(sr chi.Router) {
		sr.Get("/", h.state)
		sr.Delete("/", h.close)
		sr.Post("/start", h.start)
		sr.Post("/select", h.selectChoice)
		sr.Post("/reveal", h.reveal)
		sr.Post("/advance", h.advance)
		sr.Post("/reset", h.reset)
		sr.Get("/score", h.score)
		sr.Get("/report", h.report)
		sr.Post("/report/send", h.sendReport)
	})
}

func (h *RESTHandler) create(w http.ResponseWriter, r *http.Request) {
	var payload createSessionPayload
	// An empty body selects the default bank.
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "bad json", Kind: "validation"})
		return
	}
	if payload.BankID == "" {
		payload.BankID = h.opts.DefaultBankID
	}
	snap, err := h.quizzes.CreateSession(r.Context(), payload.BankID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *RESTHandler) state(w http.ResponseWriter, r *http.Request) {
	snap, err := h.quizzes.State(r.Context(), sessionID(r))
	writeSnapshot(w, snap, err)
}

func (h *RESTHandler) close(w http.ResponseWriter, r *http.Request) {
	if err := h.quizzes.Close(r.Context(), sessionID(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RESTHandler) start(w http.ResponseWriter, r *http.Request) {
	snap, err := h.quizzes.Start(r.Context(), sessionID(r))
	writeSnapshot(w, snap, err)
}

func (h *RESTHandler) selectChoice(w http.ResponseWriter, r *http.Request) {
	var payload selectPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Choice == nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "choice is required", Kind: "validation"})
		return
	}
	snap, err := h.quizzes.Select(r.Context(), sessionID(r), *payload.Choice)
	writeSnapshot(w, snap, err)
}

func (h *RESTHandler) reveal(w http.ResponseWriter, r *http.Request) {
	reveal, err := h.quizzes.Reveal(r.Context(), sessionID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reveal)
}

func (h *RESTHandler) advance(w http.ResponseWriter, r *http.Request) {
	snap, err := h.quizzes.Advance(r.Context(), sessionID(r))
	writeSnapshot(w, snap, err)
}

func (h *RESTHandler) reset(w http.ResponseWriter, r *http.Request) {
	snap, err := h.quizzes.Reset(r.Context(), sessionID(r))
	writeSnapshot(w, snap, err)
}

func (h *RESTHandler) score(w http.ResponseWriter, r *http.Request) {
	snap, err := h.quizzes.State(r.Context(), sessionID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scorePayload{Score: snap.Score, Total: snap.Total})
}

func (h *RESTHandler) report(w http.ResponseWriter, r *http.Request) {
	report, err := h.quizzes.Report(r.Context(), sessionID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// sendReport waits for the dispatch outcome; resetting afterwards is left to
// the client, which may call /reset once it has shown the result.
func (h *RESTHandler) sendReport(w http.ResponseWriter, r *http.Request) {
	var payload sendPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "bad json", Kind: "validation"})
		return
	}
	report, err := h.quizzes.Report(r.Context(), sessionID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.reports.Send(r.Context(), domain.Recipient{Name: payload.Name, Email: payload.Email}, report); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusPayload{Message: "Sent!"})
}

func sessionID(r *http.Request) string {
	return chi.URLParam(r, "sessionID")
}

func writeSnapshot(w http.ResponseWriter, snap domain.Snapshot, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
