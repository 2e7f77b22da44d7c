package server_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"songvault/internal/catalog"
	"songvault/internal/server"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(store *catalog.Store) *gin.Engine {
	return server.New(store, slog.New(slog.DiscardHandler)).Router()
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeRecord(t *testing.T, body []byte) catalog.Record {
	t.Helper()
	var rec catalog.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		t.Fatalf("decode record: %v (body %s)", err, body)
	}
	return rec
}

func TestSongLifecycle(t *testing.T) {
	store := catalog.NewStore()
	router := newRouter(store)

	// Create.
	w := doJSON(t, router, http.MethodPost, "/songs/new",
		`{"title":"Rocket Man","artist":"Elton John","genre":"Rock"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want %d (body %s)", w.Code, http.StatusCreated, w.Body)
	}
	rec := decodeRecord(t, w.Body.Bytes())
	if rec.ID != 1 || rec.PlayCount != 0 {
		t.Fatalf("created record = %+v, want id 1 and play_count 0", rec)
	}

	// Play it once.
	w = doJSON(t, router, http.MethodPost, "/songs/play/1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("play status = %d, want %d", w.Code, http.StatusOK)
	}
	rec = decodeRecord(t, w.Body.Bytes())
	if rec.PlayCount != 1 {
		t.Errorf("play_count after play = %d, want 1", rec.PlayCount)
	}

	// Case-insensitive genre search finds it.
	w = doJSON(t, router, http.MethodGet, "/songs/search?genre=rock", "")
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d, want %d", w.Code, http.StatusOK)
	}
	var results []catalog.Record
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatalf("decode search results: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Rocket Man" {
		t.Errorf("search results = %+v, want just Rocket Man", results)
	}

	// Playing an unknown id is a modeled error, not a crash.
	w = doJSON(t, router, http.MethodPost, "/songs/play/999", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("play unknown status = %d, want %d", w.Code, http.StatusNotFound)
	}
	var errResp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	if errResp["error"] != "Song not found" {
		t.Errorf(`error payload = %q, want "Song not found"`, errResp["error"])
	}
}

func TestCreate_RejectsMissingTitle(t *testing.T) {
	router := newRouter(catalog.NewStore())

	w := doJSON(t, router, http.MethodPost, "/songs/new", `{"artist":"Elton John"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestPlay_RejectsNonNumericID(t *testing.T) {
	router := newRouter(catalog.NewStore())

	w := doJSON(t, router, http.MethodPost, "/songs/play/abc", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestSearch_NoFiltersReturnsEverything(t *testing.T) {
	store := catalog.NewStore()
	store.Insert("one", "a", "", "g")
	store.Insert("two", "b", "", "g")
	router := newRouter(store)

	w := doJSON(t, router, http.MethodGet, "/songs/search", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var results []catalog.Record
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want 2", len(results))
	}
}

func TestSearch_EmptyCatalogReturnsEmptyArray(t *testing.T) {
	router := newRouter(catalog.NewStore())

	w := doJSON(t, router, http.MethodGet, "/songs/search", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}
}

func TestMutationsMarkTheCatalogDirty(t *testing.T) {
	store := catalog.NewStore()
	router := newRouter(store)

	doJSON(t, router, http.MethodPost, "/songs/new", `{"title":"t","artist":"a","genre":"g"}`)
	if !store.Dirty() {
		t.Error("create should mark the catalog dirty")
	}

	store.ClearDirty()
	doJSON(t, router, http.MethodPost, "/songs/play/1", "")
	if !store.Dirty() {
		t.Error("play should mark the catalog dirty")
	}

	store.ClearDirty()
	doJSON(t, router, http.MethodGet, "/songs/search", "")
	if store.Dirty() {
		t.Error("search must not mark the catalog dirty")
	}
}
