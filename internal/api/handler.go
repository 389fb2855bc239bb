// Package api serves the HTTP surface of the editor: named saves, the item
// palette, material lists, PNG export and the editing websocket.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/festmap/festmap/backend-go/internal/document"
	"github.com/festmap/festmap/backend-go/internal/export"
	"github.com/festmap/festmap/backend-go/internal/item"
	"github.com/festmap/festmap/backend-go/internal/saves"
	"github.com/festmap/festmap/backend-go/internal/session"
)

const maxBodySize = 8 << 20 // 8MB

type Handler struct {
	saves     *saves.Service
	hub       *session.Hub
	view      document.Viewport
	exportDir string
	origins   []string
}

type Options struct {
	Saves *saves.Service
	Hub   *session.Hub
	// View is used for PNG exports of envelopes without a viewport.
	View document.Viewport
	// ExportDir, when set, keeps a copy of every PNG export.
	ExportDir string
	// Origins are the websocket origin patterns.
	Origins []string
}

func NewHandler(opts Options) *Handler {
	return &Handler{
		saves:     opts.Saves,
		hub:       opts.Hub,
		view:      opts.View,
		exportDir: opts.ExportDir,
		origins:   opts.Origins,
	}
}

// Routes registers every endpoint on r.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/palette", h.Palette).Methods("GET")
	api.HandleFunc("/saves", h.ListSaves).Methods("GET")
	api.HandleFunc("/saves/{name}", h.GetSave).Methods("GET")
	api.HandleFunc("/saves/{name}", h.PutSave).Methods("PUT")
	api.HandleFunc("/saves/{name}", h.DeleteSave).Methods("DELETE")
	api.HandleFunc("/materials", h.Materials).Methods("POST")
	api.HandleFunc("/export/png", h.ExportPNG).Methods("POST")

	if h.exportDir != "" {
		r.PathPrefix("/exports/").Handler(h.ServeExports()).Methods("GET")
	}

	if h.hub != nil {
		r.HandleFunc("/ws", h.WebSocket)
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Palette(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, document.Palette())
}

func (h *Handler) ListSaves(w http.ResponseWriter, r *http.Request) {
	names, err := h.saves.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

// GetSave returns the stored payload as is, corrupt or not.
func (h *Handler) GetSave(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	raw, err := h.saves.Raw(r.Context(), name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(raw))
}

func (h *Handler) PutSave(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "request too large"})
		return
	}

	if err := h.saves.Save(r.Context(), name, body); err != nil {
		handleServiceError(w, err)
		return
	}

	slog.Info("layout saved", "name", name, "bytes", len(body))
	writeJSON(w, http.StatusCreated, map[string]string{"name": name})
}

func (h *Handler) DeleteSave(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := h.saves.Delete(r.Context(), name); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type materialsResponse struct {
	Counts []export.MaterialCount `json:"counts"`
	Text   string                 `json:"text"`
}

// Materials returns the bill of materials of the posted layout.
func (h *Handler) Materials(w http.ResponseWriter, r *http.Request) {
	env, ok := decodeEnvelope(w, r)
	if !ok {
		return
	}

	lists := make([][]string, len(env.Items))
	for i, rec := range env.Items {
		lists[i] = export.RecordMaterials(rec)
	}
	counts := export.CountMaterials(lists)
	writeJSON(w, http.StatusOK, materialsResponse{
		Counts: counts,
		Text:   export.FormatMaterials(counts),
	})
}

func decodeEnvelope(w http.ResponseWriter, r *http.Request) (*document.Envelope, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "request too large"})
		return nil, false
	}
	env, err := document.Decode("request", body)
	if err != nil {
		handleServiceError(w, err)
		return nil, false
	}
	return env, true
}

type errorResponse struct {
	Error   string `json:"error"`
	Payload string   `json:"payload,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

func handleServiceError(w http.ResponseWriter, err error) {
	var de *document.DeserializationError
	var ve *item.ValidationError
	switch {
	case errors.Is(err, saves.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, saves.ErrInvalidName):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.As(err, &de):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: de.Err.Error(), Payload: de.Payload})
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Error(), Fields: ve.Fields})
	case errors.Is(err, item.ErrInvalidItem):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, export.ErrNothingToExport):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
