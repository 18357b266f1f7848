// Package api provides the HTTP handlers for crop recommendations, capacity
// selection, and visitor sessions.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/HerbHall/cropadvisor/internal/advisor"
	"github.com/HerbHall/cropadvisor/internal/knapsack"
	"github.com/HerbHall/cropadvisor/internal/server"
	"github.com/HerbHall/cropadvisor/internal/session"
	"github.com/HerbHall/cropadvisor/internal/sorter"
	"github.com/HerbHall/cropadvisor/pkg/crop"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// profileRequiredDetail is shown when a visitor asks for recommendations
// before saving personal details.
const profileRequiredDetail = "Please provide your personal details first."

// CropsResponse is the response for GET /api/v1/crops.
type CropsResponse struct {
	Source  string        `json:"source"`
	RankKey string        `json:"rank_key"`
	Count   int           `json:"count"`
	Crops   []crop.Record `json:"crops"`
}

// RecommendationResponse is the response for POST /api/v1/recommendations.
type RecommendationResponse struct {
	Labels   []string `json:"labels"`
	Matches  int      `json:"matches"`
	Fallback bool     `json:"fallback"`
	Greeting string   `json:"greeting,omitempty"`
}

// SelectionRequest is the body for POST /api/v1/selections. When Items is
// omitted the selection runs over the reference dataset.
type SelectionRequest struct {
	Capacity *int            `json:"capacity"`
	Items    []knapsack.Item `json:"items,omitempty"`
}

// FeedbackRequest is the body for POST /api/v1/sessions/{id}/feedback.
type FeedbackRequest struct {
	Text string `json:"text"`
}

// FeedbackResponse acknowledges stored feedback.
type FeedbackResponse struct {
	Message  string           `json:"message"`
	Feedback session.Feedback `json:"feedback"`
}

// Handler serves the cropadvisor API.
type Handler struct {
	advisor  *advisor.Advisor
	sessions *session.Store
	logger   *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(adv *advisor.Advisor, sessions *session.Store, logger *zap.Logger) *Handler {
	return &Handler{advisor: adv, sessions: sessions, logger: logger}
}

// RegisterRoutes implements server.RouteRegistrar.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/crops", h.handleListCrops)
	mux.HandleFunc("POST /api/v1/recommendations", h.handleRecommend)
	mux.HandleFunc("POST /api/v1/selections", h.handleSelect)
	mux.HandleFunc("POST /api/v1/sessions", h.handleCreateSession)
	mux.HandleFunc("GET /api/v1/sessions/{id}/profile", h.handleGetProfile)
	mux.HandleFunc("PUT /api/v1/sessions/{id}/profile", h.handleSaveProfile)
	mux.HandleFunc("POST /api/v1/sessions/{id}/feedback", h.handleFeedback)
	mux.HandleFunc("GET /api/v1/about", h.handleAbout)
}

// handleListCrops returns the reference dataset.
//
//	@Summary		List reference crops
//	@Description	Returns every record of the loaded reference dataset in table order. With format=csv the table is returned as CSV.
//	@Tags			crops
//	@Produce		json,text/csv
//	@Param			format query string false "Response format (json or csv)"
//	@Success		200 {object} CropsResponse
//	@Failure		400 {object} server.Problem
//	@Router			/crops [get]
func (h *Handler) handleListCrops(w http.ResponseWriter, r *http.Request) {
	ds := h.advisor.Dataset()

	switch r.URL.Query().Get("format") {
	case "", "json":
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="crops.csv"`)
		if err := crop.WriteCSV(w, ds); err != nil {
			h.logger.Error("csv export failed", zap.Error(err))
		}
		return
	default:
		server.BadRequest(w, "format must be json or csv", r.URL.Path)
		return
	}

	records := ds.Records()
	if records == nil {
		records = []crop.Record{}
	}
	writeJSON(w, http.StatusOK, CropsResponse{
		Source:  ds.Source(),
		RankKey: ds.RankKey(),
		Count:   len(records),
		Crops:   records,
	})
}

// handleRecommend returns ranked crop labels for a set of measurements.
//
//	@Summary		Recommend crops
//	@Description	Matches soil and climate measurements against the reference dataset and returns labels ordered by rank key ascending. All seven measurements are required; a missing one is rejected with 400. When nothing matches, a fixed fallback label is returned. Personal details are only enforced when a session_id is sent: with one, the visitor must have saved a profile first; without one, recommendations are anonymous and carry no greeting.
//	@Tags			recommendations
//	@Accept			json
//	@Produce		json
//	@Param			request body crop.Query true "Measurements (optional session_id)"
//	@Success		200 {object} RecommendationResponse
//	@Failure		400 {object} server.Problem
//	@Failure		404 {object} server.Problem
//	@Failure		500 {object} server.Problem
//	@Router			/recommendations [post]
func (h *Handler) handleRecommend(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		server.BadRequest(w, "could not read request body", r.URL.Path)
		return
	}

	var meta struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(body, &meta); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}

	var name string
	if meta.SessionID != "" {
		p, err := h.sessions.Profile(meta.SessionID)
		if err != nil {
			h.writeSessionError(w, r, err)
			return
		}
		name = p.Name
	}

	var q crop.Query
	if err := json.Unmarshal(body, &q); err != nil {
		if errors.Is(err, crop.ErrMissingAttribute) {
			server.BadRequest(w, err.Error(), r.URL.Path)
			return
		}
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}

	rec, err := h.advisor.Recommend(q)
	if err != nil {
		h.writeAdvisorError(w, r, err)
		return
	}

	resp := RecommendationResponse{
		Labels:   rec.Labels,
		Matches:  rec.Matches,
		Fallback: rec.Fallback,
	}
	if name != "" {
		resp.Greeting = advisor.Greeting(name, rec)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSelect runs the capacity selector.
//
//	@Summary		Select crops under a capacity
//	@Description	Chooses the subset of items with maximal total value whose total weight fits the capacity. Without items, selects from the reference dataset's weight and value columns.
//	@Tags			selections
//	@Accept			json
//	@Produce		json
//	@Param			request body SelectionRequest true "Capacity and optional items"
//	@Success		200 {object} knapsack.Result
//	@Failure		400 {object} server.Problem
//	@Failure		500 {object} server.Problem
//	@Router			/selections [post]
func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	if req.Capacity == nil {
		server.BadRequest(w, "capacity is required", r.URL.Path)
		return
	}

	var (
		res knapsack.Result
		err error
	)
	if req.Items == nil {
		res, err = h.advisor.Plan(*req.Capacity)
	} else {
		res, err = h.advisor.Select(req.Items, *req.Capacity)
	}
	if err != nil {
		h.writeAdvisorError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleCreateSession starts a visitor session.
//
//	@Summary		Create session
//	@Tags			sessions
//	@Produce		json
//	@Success		201 {object} session.Session
//	@Router			/sessions [post]
func (h *Handler) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	sess := h.sessions.Create()
	h.logger.Debug("session created", zap.String("session_id", sess.ID))
	writeJSON(w, http.StatusCreated, sess)
}

// handleGetProfile returns a session's saved personal details.
//
//	@Summary		Get profile
//	@Tags			sessions
//	@Produce		json
//	@Param			id path string true "Session ID"
//	@Success		200 {object} session.Profile
//	@Failure		404 {object} server.Problem
//	@Router			/sessions/{id}/profile [get]
func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.sessions.Profile(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, session.ErrProfileRequired) {
			server.NotFound(w, "no personal details saved", r.URL.Path)
			return
		}
		h.writeSessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleSaveProfile stores a session's personal details.
//
//	@Summary		Save profile
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			id path string true "Session ID"
//	@Param			request body session.Profile true "Personal details"
//	@Success		200 {object} session.Profile
//	@Failure		400 {object} server.Problem
//	@Failure		404 {object} server.Problem
//	@Router			/sessions/{id}/profile [put]
func (h *Handler) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var p session.Profile
	if err := decodeJSON(w, r, &p); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	id := r.PathValue("id")
	if err := h.sessions.SaveProfile(id, p); err != nil {
		h.writeSessionError(w, r, err)
		return
	}
	saved, err := h.sessions.Profile(id)
	if err != nil {
		h.writeSessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// handleFeedback records visitor feedback.
//
//	@Summary		Leave feedback
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			id path string true "Session ID"
//	@Param			request body FeedbackRequest true "Feedback"
//	@Success		201 {object} FeedbackResponse
//	@Failure		400 {object} server.Problem
//	@Failure		404 {object} server.Problem
//	@Router			/sessions/{id}/feedback [post]
func (h *Handler) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	fb, err := h.sessions.AddFeedback(r.PathValue("id"), req.Text)
	if err != nil {
		h.writeSessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, FeedbackResponse{
		Message:  "Thank you for your feedback!",
		Feedback: fb,
	})
}

// handleAbout returns static information about the service.
//
//	@Summary		About
//	@Tags			info
//	@Produce		json
//	@Success		200 {object} About
//	@Router			/about [get]
func (h *Handler) handleAbout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, aboutContent)
}

// writeAdvisorError maps engine and selector errors onto problem responses.
func (h *Handler) writeAdvisorError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, knapsack.ErrInvalidInput), errors.Is(err, knapsack.ErrTableTooLarge):
		server.BadRequest(w, err.Error(), r.URL.Path)
	case errors.Is(err, crop.ErrMissingAttribute), errors.Is(err, crop.ErrNotInteger),
		errors.Is(err, sorter.ErrKey):
		h.logger.Error("reference dataset is malformed", zap.Error(err))
		server.DataIntegrity(w, err.Error(), r.URL.Path)
	default:
		h.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		server.InternalError(w, "internal error", r.URL.Path)
	}
}

func (h *Handler) writeSessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		server.NotFound(w, "session not found", r.URL.Path)
	case errors.Is(err, session.ErrProfileRequired):
		server.BadRequest(w, profileRequiredDetail, r.URL.Path)
	case errors.Is(err, session.ErrInvalidProfile), errors.Is(err, session.ErrEmptyFeedback):
		server.BadRequest(w, err.Error(), r.URL.Path)
	default:
		h.logger.Error("session operation failed", zap.Error(err))
		server.InternalError(w, "internal error", r.URL.Path)
	}
}

// -- helpers --

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
