package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"immodash/internal/app"
	"immodash/internal/auth"
	"immodash/internal/domain"
)

type Handlers struct {
	Dashboard *app.DashboardService
	Chat      *app.ChatService
	Pipeline  *app.PipelineService
	Map       *app.MapService
	Auth      *app.AuthService
	// Health reports whether the data store answers; nil means always healthy.
	Health func(ctx context.Context) error

	val *validator.Validate
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type moveRequest struct {
	Stage string `json:"stage" validate:"required,oneof=leads scheduled negotiation closed"`
}

type chatRequest struct {
	Message string `json:"message" validate:"required,max=1000"`
}

type meResponse struct {
	User        domain.User      `json:"user"`
	Permissions auth.Permissions `json:"permissions"`
}

func (s *Server) MountHandlers(h *Handlers) {
	if h.val == nil {
		h.val = validator.New()
	}
	s.mux.Get("/healthz", h.health)
	s.mux.Post("/v1/auth/login", h.login)

	s.mux.Group(func(r chi.Router) {
		r.Use(RequireAuth(h.Auth))
		r.Get("/v1/me", h.me)
		r.Get("/v1/stats", h.stats)
		r.Get("/v1/properties", h.properties)
		r.Get("/v1/properties/{ref}", h.propertyByRef)
		r.Get("/v1/images", h.images)
		r.Get("/v1/visits", h.visits)
		r.Get("/v1/clients", h.clients)
		r.Get("/v1/requests", h.requests)
		r.Get("/v1/pipeline", h.pipeline)
		r.With(RequirePermission(auth.ActionPipeline)).Put("/v1/pipeline/{id}", h.movePipeline)
		r.Post("/v1/chat", h.chat)
		r.Get("/v1/map", h.mapView)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps service errors onto problem responses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeProblem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUnknownCard):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrInvalidStage):
		writeProblem(w, http.StatusBadRequest, "Invalid stage", err.Error())
	case errors.Is(err, domain.ErrCardBusy), errors.Is(err, app.ErrMoveNotSaved):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusBadGateway, "Data store unavailable", "the data store could not be reached")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCached answers 304 when the client already holds this version.
func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "response encoding failed")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// decode reads a JSON body into dst and validates it.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "request body must be JSON")
		return false
	}
	if err := h.val.Struct(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return false
	}
	return true
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	if h.Health != nil {
		if err := h.Health(r.Context()); err != nil {
			writeProblem(w, http.StatusServiceUnavailable, "Unavailable", "data store unreachable")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	res, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, res)
	case err != nil:
		writeError(w, err)
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *Handlers) me(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())
	writeCached(w, r, meResponse{User: u, Permissions: auth.PermissionsFor(u.Role)})
}

func (h *Handlers) stats(w http.ResponseWriter, r *http.Request) {
	out, err := h.Dashboard.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, out)
}

func (h *Handlers) properties(w http.ResponseWriter, r *http.Request) {
	f, err := propertyFilter(r.URL.Query())
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	}
	out, err := h.Dashboard.Properties(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, out)
}

func (h *Handlers) propertyByRef(w http.ResponseWriter, r *http.Request) {
	out, err := h.Dashboard.PropertyByRef(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, out)
}

func (h *Handlers) images(w http.ResponseWriter, r *http.Request) {
	out, err := h.Dashboard.Images(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, out)
}

func (h *Handlers) visits(w http.ResponseWriter, r *http.Request) {
	out, err := h.Dashboard.Visits(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, out)
}

func (h *Handlers) clients(w http.ResponseWriter, r *http.Request) {
	out, err := h.Dashboard.Clients(r.Context(), r.URL.Query().Get("statut"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, out)
}

func (h *Handlers) requests(w http.ResponseWriter, r *http.Request) {
	out, err := h.Dashboard.Requests(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, out)
}

func (h *Handlers) pipeline(w http.ResponseWriter, r *http.Request) {
	out, err := h.Pipeline.Columns(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, out)
}

func (h *Handlers) movePipeline(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !h.decode(w, r, &req) {
		return
	}
	item, err := h.Pipeline.Move(r.Context(), chi.URLParam(r, "id"), domain.Stage(req.Stage))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handlers) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.Chat.Ask(r.Context(), req.Message))
}

func (h *Handlers) mapView(w http.ResponseWriter, r *http.Request) {
	f, err := propertyFilter(r.URL.Query())
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	}
	out, err := h.Map.Map(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	// warming views change under the client; never let them be cached
	if out.Warming {
		writeJSON(w, http.StatusOK, out)
		return
	}
	writeCached(w, r, out)
}

type filterError string

func (e filterError) Error() string { return string(e) }

func propertyFilter(q url.Values) (app.PropertyFilter, error) {
	f := app.PropertyFilter{
		Type:    q.Get("type"),
		Status:  q.Get("status"),
		Commune: q.Get("commune"),
		Zone:    q.Get("zone"),
		Query:   q.Get("q"),
	}
	if v := q.Get("meuble"); v != "" {
		switch strings.ToLower(v) {
		case "true", "oui", "1":
			yes := true
			f.Meuble = &yes
		case "false", "non", "0":
			no := false
			f.Meuble = &no
		default:
			return f, filterError("meuble must be true or false")
		}
	}
	ints := []struct {
		key string
		dst func(int64)
	}{
		{"chambres", func(n int64) { f.Chambres = int(n) }},
		{"min_price", func(n int64) { f.MinPrice = n }},
		{"max_price", func(n int64) { f.MaxPrice = n }},
	}
	for _, it := range ints {
		v := q.Get(it.key)
		if v == "" {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return f, filterError(it.key + " must be a non-negative integer")
		}
		it.dst(n)
	}
	return f, nil
}
