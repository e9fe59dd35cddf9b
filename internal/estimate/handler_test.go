package estimate

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
	"aoa/internal/dataset/model"
	"aoa/internal/table"
)

func testConfig() *Config {
	return &Config{RequestTimeout: 5 * time.Second, MaxQueryRows: 1000}
}

func newDatasetStore(t *testing.T) *datasetDB.DB {
	t.Helper()
	dir, err := ioutil.TempDir("", "aoa-estimate-test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	db, err := bolt.Open(filepath.Join(dir, "test.db"), 0600, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return datasetDB.New(&sdb.DB{DB: db})
}

func doRequest(t *testing.T, h http.Handler, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	r := httptest.NewRequest("POST", "/estimate", bytes.NewReader(raw))
	r.Header.Set("content-type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func inlineTraining() *inlineTable {
	return &inlineTable{
		Columns: []column{{Name: "x", Kind: "numeric", Numeric: []float64{0, 1, 10}}},
	}
}

func TestEstimateInlineTraining(t *testing.T) {
	h, err := NewHandler(testConfig(), nil, nil)
	require.NoError(t, err)

	w := doRequest(t, h, request{
		Training: inlineTraining(),
		Query:    inlineTable{Columns: []column{{Name: "x", Kind: "numeric", Numeric: []float64{0.5, 100}}}},
		Options:  options{Probs: []float64{1.0}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.DI, 2)
	require.Less(t, resp.DI[0], resp.DI[1])
	require.True(t, resp.AOA[0][0])
	require.False(t, resp.AOA[0][1])
	require.Equal(t, []float64{1.0}, resp.Probs)
}

func TestEstimateStoredDataset(t *testing.T) {
	store := newDatasetStore(t)
	dataset := model.New(
		"meuse",
		[]model.Column{{Name: "x", Kind: uint8(table.KindNumeric), Numeric: []float64{0, 1, 10}}},
		nil,
		map[string]float64{"x": 2},
	)
	require.NoError(t, store.Save(context.Background(), dataset))

	h, err := NewHandler(testConfig(), store, nil)
	require.NoError(t, err)

	w := doRequest(t, h, request{
		Dataset: "meuse",
		Query:   inlineTable{Columns: []column{{Name: "x", Kind: "numeric", Numeric: []float64{0.5}}}},
		Options: options{UseImportance: true},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "meuse", resp.Dataset)
	require.Len(t, resp.DI, 1)
}

func TestEstimateConfigurationConflicts(t *testing.T) {
	h, err := NewHandler(testConfig(), nil, nil)
	require.NoError(t, err)

	// Neither dataset nor training.
	w := doRequest(t, h, request{
		Query: inlineTable{Columns: []column{{Name: "x", Kind: "numeric", Numeric: []float64{1}}}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Both dataset and training.
	w = doRequest(t, h, request{
		Dataset:  "meuse",
		Training: inlineTraining(),
		Query:    inlineTable{Columns: []column{{Name: "x", Kind: "numeric", Numeric: []float64{1}}}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Explicit weights and importance together.
	store := newDatasetStore(t)
	dataset := model.New(
		"meuse",
		[]model.Column{{Name: "x", Kind: uint8(table.KindNumeric), Numeric: []float64{0, 1, 10}}},
		nil,
		map[string]float64{"x": 2},
	)
	require.NoError(t, store.Save(context.Background(), dataset))
	h, err = NewHandler(testConfig(), store, nil)
	require.NoError(t, err)
	w = doRequest(t, h, request{
		Dataset: "meuse",
		Query:   inlineTable{Columns: []column{{Name: "x", Kind: "numeric", Numeric: []float64{1}}}},
		Options: options{Weights: map[string]float64{"x": 1}, UseImportance: true},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEstimateBadInputs(t *testing.T) {
	h, err := NewHandler(testConfig(), nil, nil)
	require.NoError(t, err)

	// Schema mismatch between training and query.
	w := doRequest(t, h, request{
		Training: inlineTraining(),
		Query:    inlineTable{Columns: []column{{Name: "y", Kind: "numeric", Numeric: []float64{1}}}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown dataset.
	store := newDatasetStore(t)
	h, err = NewHandler(testConfig(), store, nil)
	require.NoError(t, err)
	w = doRequest(t, h, request{
		Dataset: "missing",
		Query:   inlineTable{Columns: []column{{Name: "x", Kind: "numeric", Numeric: []float64{1}}}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Single shared fold: threshold is undefined.
	w = doRequest(t, h, request{
		Training: &inlineTable{
			Columns: []column{{Name: "x", Kind: "numeric", Numeric: []float64{0, 1, 10}}},
			Folds:   []string{"f", "f", "f"},
		},
		Query: inlineTable{Columns: []column{{Name: "x", Kind: "numeric", Numeric: []float64{1}}}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEstimateRejectsNonPost(t *testing.T) {
	h, err := NewHandler(testConfig(), nil, nil)
	require.NoError(t, err)
	r := httptest.NewRequest("GET", "/estimate", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
