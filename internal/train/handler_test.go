package train

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	sdb "aoa/internal/database"
	datasetDB "aoa/internal/dataset/database"
)

func newTestHandler(t *testing.T, cfg *Config) (http.Handler, *datasetDB.DB) {
	t.Helper()
	dir, err := ioutil.TempDir("", "aoa-train-test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	db, err := bolt.Open(filepath.Join(dir, "test.db"), 0600, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := datasetDB.New(&sdb.DB{DB: db})
	h, err := NewHandler(cfg, store)
	require.NoError(t, err)
	return h, store
}

func doRequest(t *testing.T, h http.Handler, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	r := httptest.NewRequest("POST", "/reference", bytes.NewReader(raw))
	r.Header.Set("content-type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestTrainStoresDataset(t *testing.T) {
	cfg := &Config{RequestTimeout: 5 * time.Second, MaxRows: 100}
	h, store := newTestHandler(t, cfg)

	w := doRequest(t, h, request{
		Name: "meuse",
		Columns: []column{
			{Name: "dist", Kind: "numeric", Numeric: []float64{0.1, 0.5, 0.9}},
			{Name: "soil", Kind: "categorical", Levels: []string{"a", "b", "a"}},
		},
		Folds:      []string{"f1", "f2", "f1"},
		Importance: map[string]float64{"dist": 2, "soil": 1},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "meuse", resp.Name)
	require.Equal(t, 3, resp.Rows)
	require.NotEmpty(t, resp.ID)
	require.NotEmpty(t, resp.Hash)

	stored, err := store.Find(context.Background(), "meuse")
	require.NoError(t, err)
	require.Equal(t, []string{"f1", "f2", "f1"}, stored.FoldLabels)
	require.Len(t, stored.Columns, 2)
}

func TestTrainValidation(t *testing.T) {
	cfg := &Config{RequestTimeout: 5 * time.Second, MaxRows: 2}
	h, _ := newTestHandler(t, cfg)

	// Missing name.
	w := doRequest(t, h, request{
		Columns: []column{{Name: "x", Kind: "numeric", Numeric: []float64{1}}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown column kind.
	w = doRequest(t, h, request{
		Name:    "bad",
		Columns: []column{{Name: "x", Kind: "ordinal", Numeric: []float64{1}}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Ragged columns.
	w = doRequest(t, h, request{
		Name: "ragged",
		Columns: []column{
			{Name: "x", Kind: "numeric", Numeric: []float64{1, 2}},
			{Name: "y", Kind: "numeric", Numeric: []float64{1}},
		},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Over the row limit.
	w = doRequest(t, h, request{
		Name:    "big",
		Columns: []column{{Name: "x", Kind: "numeric", Numeric: []float64{1, 2, 3}}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Fold labels do not cover the rows.
	w = doRequest(t, h, request{
		Name:    "folds",
		Columns: []column{{Name: "x", Kind: "numeric", Numeric: []float64{1, 2}}},
		Folds:   []string{"f1"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrainRejectsNonPost(t *testing.T) {
	cfg := &Config{RequestTimeout: 5 * time.Second, MaxRows: 100}
	h, _ := newTestHandler(t, cfg)

	r := httptest.NewRequest("GET", "/reference", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestTrainRejectsWrongContentType(t *testing.T) {
	cfg := &Config{RequestTimeout: 5 * time.Second, MaxRows: 100}
	h, _ := newTestHandler(t, cfg)

	r := httptest.NewRequest("POST", "/reference", bytes.NewReader([]byte("x=1")))
	r.Header.Set("content-type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	require.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}
