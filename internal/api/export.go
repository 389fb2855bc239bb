package api

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/festmap/festmap/backend-go/internal/engine"
	"github.com/festmap/festmap/backend-go/internal/export"
	"github.com/festmap/festmap/backend-go/internal/render"
	"github.com/festmap/festmap/backend-go/internal/typeid"
)

const maxExportWidth = 8000

// ExportPNG renders the posted layout as a plan image.
//
// Query parameters: name (file name, default "festmap"), width (pixels) and
// labels ("false" hides item names).
func (h *Handler) ExportPNG(w http.ResponseWriter, r *http.Request) {
	env, ok := decodeEnvelope(w, r)
	if !ok {
		return
	}

	opts := export.DefaultPNGOptions()
	if width, err := strconv.Atoi(r.URL.Query().Get("width")); err == nil && width > 0 && width <= maxExportWidth {
		opts.Width = width
	}
	if r.URL.Query().Get("labels") == "false" {
		opts.Labels = false
	}

	name := sanitizeName(r.URL.Query().Get("name"))

	view := h.view
	if env.Map != nil {
		view = *env.Map
	}
	scene := render.NewScene(view)
	manager := engine.New(scene)
	if err := manager.ImportEnvelope(env); err != nil {
		handleServiceError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.RenderPNG(&buf, scene.Compile(), opts); err != nil {
		handleServiceError(w, err)
		return
	}

	exportID := typeid.NewExportID()
	if h.exportDir != "" {
		filename, err := h.keep(exportID, name, buf.Bytes())
		if err != nil {
			slog.Error("keep export", "error", err, "dir", h.exportDir)
		} else {
			w.Header().Set("X-Export-URL", "/exports/"+filename)
		}
	}

	slog.Info("export finished", "id", exportID, "items", len(env.Items), "bytes", buf.Len())

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.png"`, name))
	w.Header().Set("X-Export-ID", exportID)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *Handler) keep(exportID, name string, data []byte) (string, error) {
	if err := os.MkdirAll(h.exportDir, 0755); err != nil {
		return "", err
	}
	filename := name + "-" + exportID + ".png"
	return filename, os.WriteFile(filepath.Join(h.exportDir, filename), data, 0644)
}

// ServeExports serves kept PNG exports. Export IDs are unique, so files
// never change.
func (h *Handler) ServeExports() http.Handler {
	fs := http.FileServer(http.Dir(h.exportDir))
	return http.StripPrefix("/exports/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		fs.ServeHTTP(w, r)
	}))
}

func sanitizeName(name string) string {
	if name == "" {
		return "festmap"
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}
