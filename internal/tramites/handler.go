package tramites

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/novagadgets/novadesk/internal/observability"
)

const maxTramiteBodyBytes = 64 << 10

// Repository is the persistence used by Handler
type Repository interface {
	Create(ctx context.Context, in NewTramite) (int64, error)
	Get(ctx context.Context, id int64) (*Tramite, error)
	List(ctx context.Context) ([]Tramite, error)
	Update(ctx context.Context, id int64, upd TramiteUpdate) (*Tramite, error)
	Delete(ctx context.Context, id int64) error
}

// Handler serves the /api/tramites resource
type Handler struct {
	repo Repository
}

// NewHandler creates a tramites handler
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// Register mounts the CRUD routes on mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/tramites", h.create)
	mux.HandleFunc("GET /api/tramites", h.list)
	mux.HandleFunc("GET /api/tramites/{id}", h.get)
	mux.HandleFunc("PUT /api/tramites/{id}", h.update)
	mux.HandleFunc("DELETE /api/tramites/{id}", h.delete)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in NewTramite
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTramiteBodyBytes)).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido: "+err.Error())
		return
	}

	id, err := h.repo.Create(r.Context(), in)
	if errors.Is(err, ErrNameRequired) {
		writeError(w, http.StatusBadRequest, "El campo 'nombre' es obligatorio")
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":    true,
		"mensaje":    "Trámite creado exitosamente",
		"tramite_id": id,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	t, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "tramite": t})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"tramites": list,
		"total":    len(list),
	})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var upd TramiteUpdate
	if err := decodeStrict(w, r, &upd); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido: "+err.Error())
		return
	}

	t, err := h.repo.Update(r.Context(), id, upd)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "tramite": t})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"mensaje": "Trámite eliminado exitosamente",
	})
}

// fail maps store errors to responses
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "Trámite no encontrado")
	case errors.Is(err, ErrNoFields):
		writeError(w, http.StatusBadRequest, "No hay campos para actualizar")
	default:
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Tramite operation failed")
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "ID de trámite inválido")
		return 0, false
	}
	return id, true
}

// decodeStrict rejects keys that are not fields of v
func decodeStrict(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTramiteBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"success": false, "error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
