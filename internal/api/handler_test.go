package api

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/festmap/festmap/backend-go/internal/document"
	"github.com/festmap/festmap/backend-go/internal/saves"
	"github.com/festmap/festmap/backend-go/internal/store"
)

const layout = `{
	"items": [
		{"type": "Rectangle", "name": "Bühne", "category": "Bühne", "color": "#222222",
		 "lat": 49.02, "lng": 8.42317, "xSize": 8, "ySize": 6, "rotation": 0, "material": ["Podest", "Podest"]},
		{"type": "Socket", "name": "Verteiler", "category": "Strom", "color": "#ffd700",
		 "lat": 49.0201, "lng": 8.4232, "material": ["Podest", "Kabeltrommel"]}
	],
	"map": {"lat": 49.02, "lng": 8.42317, "zoom": 18}
}`

func newTestRouter(t *testing.T, exportDir string) *mux.Router {
	t.Helper()
	h := NewHandler(Options{
		Saves:     saves.NewService(store.NewMemory()),
		View:      document.Viewport{Lat: 49.02, Lng: 8.42317, Zoom: 17},
		ExportDir: exportDir,
	})
	r := mux.NewRouter()
	h.Routes(r)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(newTestRouter(t, ""), http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Fatalf("expected ok status, got %s", rec.Body.String())
	}
}

func TestPalette(t *testing.T) {
	rec := do(newTestRouter(t, ""), http.MethodGet, "/api/palette", "")
	var got []document.Template
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode palette: %v", err)
	}
	if len(got) != len(document.Palette()) {
		t.Fatalf("expected %d templates, got %d", len(document.Palette()), len(got))
	}
}

func TestSaves(t *testing.T) {
	r := newTestRouter(t, "")

	rec := do(r, http.MethodGet, "/api/saves", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty list, got %d %s", rec.Code, rec.Body.String())
	}

	rec = do(r, http.MethodPut, "/api/saves/sommerfest", layout)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", rec.Code, rec.Body.String())
	}

	rec = do(r, http.MethodGet, "/api/saves/sommerfest", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != layout {
		t.Fatalf("expected stored payload back, got %s", rec.Body.String())
	}

	rec = do(r, http.MethodGet, "/api/saves", "")
	var names []string
	json.Unmarshal(rec.Body.Bytes(), &names)
	if len(names) != 1 || names[0] != "sommerfest" {
		t.Fatalf("expected [sommerfest], got %v", names)
	}

	t.Run("corrupt payload is rejected", func(t *testing.T) {
		rec := do(r, http.MethodPut, "/api/saves/kaputt", "{nope")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		var e errorResponse
		json.Unmarshal(rec.Body.Bytes(), &e)
		if e.Payload != "{nope" {
			t.Fatalf("expected raw payload in error, got %q", e.Payload)
		}
	})

	t.Run("missing save", func(t *testing.T) {
		rec := do(r, http.MethodGet, "/api/saves/missing", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("delete", func(t *testing.T) {
		rec := do(r, http.MethodDelete, "/api/saves/sommerfest", "")
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		rec = do(r, http.MethodGet, "/api/saves/sommerfest", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 after delete, got %d", rec.Code)
		}
	})
}

func TestMaterials(t *testing.T) {
	rec := do(newTestRouter(t, ""), http.MethodPost, "/api/materials", layout)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	var got materialsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Counts) != 2 {
		t.Fatalf("expected 2 materials, got %+v", got.Counts)
	}
	if got.Counts[0].Name != "Podest" || got.Counts[0].Count != 3 {
		t.Fatalf("expected 3x Podest first, got %+v", got.Counts[0])
	}
}

func TestExportPNG(t *testing.T) {
	dir := t.TempDir()
	r := newTestRouter(t, dir)

	rec := do(r, http.MethodPost, "/api/export/png?name=Sommer%20Fest&width=400", layout)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected image/png, got %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "Sommer-Fest.png") {
		t.Fatalf("expected sanitized file name, got %q", cd)
	}
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if img.Bounds().Dx() != 400 {
		t.Fatalf("expected width 400, got %d", img.Bounds().Dx())
	}

	files, _ := filepath.Glob(filepath.Join(dir, "Sommer-Fest-exp_*.png"))
	if len(files) != 1 {
		t.Fatalf("expected one kept export, got %v", files)
	}
	if info, err := os.Stat(files[0]); err != nil || info.Size() == 0 {
		t.Fatalf("expected non-empty export file, got %v", err)
	}

	t.Run("kept export is served", func(t *testing.T) {
		url := rec.Header().Get("X-Export-URL")
		if url != "/exports/"+filepath.Base(files[0]) {
			t.Fatalf("expected export url for %s, got %q", files[0], url)
		}
		got := do(r, http.MethodGet, url, "")
		if got.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", got.Code)
		}
		if !strings.Contains(got.Header().Get("Cache-Control"), "immutable") {
			t.Fatalf("expected immutable caching, got %q", got.Header().Get("Cache-Control"))
		}
		if !bytes.Equal(got.Body.Bytes(), rec.Body.Bytes()) {
			t.Fatalf("expected served file to match the response")
		}
	})

	t.Run("empty layout", func(t *testing.T) {
		rec := do(r, http.MethodPost, "/api/export/png", `{"items": []}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("invalid item", func(t *testing.T) {
		body := `{"items": [{"type": "Circle", "category": "Strom", "color": "#ff0000", "lat": 49.02, "lng": 8.42, "material": []}]}`
		rec := do(r, http.MethodPost, "/api/export/png", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d %s", rec.Code, rec.Body.String())
		}
		var resp errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode error response: %v", err)
		}
		if !slices.Contains(resp.Fields, "name") || !slices.Contains(resp.Fields, "radius") {
			t.Fatalf("expected name and radius reported, got %+v", resp)
		}
	})
}

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"":            "festmap",
		"plan":        "plan",
		"a b/c":       "a-b-c",
		"Zelt_12x6-2": "Zelt_12x6-2",
	}
	for in, want := range tests {
		if got := sanitizeName(in); got != want {
			t.Fatalf("expected %q for %q, got %q", want, in, got)
		}
	}
}

func TestOriginPatterns(t *testing.T) {
	got := originPatterns([]string{"http://localhost:5173", "*"})
	if len(got) != 2 || got[0] != "localhost:5173" || got[1] != "*" {
		t.Fatalf("expected [localhost:5173 *], got %v", got)
	}
}
