package train

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	datasetDB "aoa/internal/dataset/database"
	"aoa/internal/dataset/model"
	"aoa/internal/httputil"
	"aoa/internal/logging"
	"aoa/internal/table"
)

const maxBodyBytes = 64 * 1024 * 1024

type column struct {
	Name    string    `json:"name"`
	Kind    string    `json:"kind"`
	Numeric []float64 `json:"numeric,omitempty"`
	Levels  []string  `json:"levels,omitempty"`
}

type request struct {
	Name       string             `json:"name"`
	Columns    []column           `json:"columns"`
	Folds      []string           `json:"folds,omitempty"`
	Importance map[string]float64 `json:"importance,omitempty"`
}

type response struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Hash string `json:"hash"`
	Rows int    `json:"rows"`
}

func NewHandler(cfg *Config, datasets *datasetDB.DB) (http.Handler, error) {
	if datasets == nil {
		return nil, fmt.Errorf("dataset store is not created")
	}
	return &handler{cfg: cfg, datasets: datasets}, nil
}

type handler struct {
	cfg      *Config
	datasets *datasetDB.DB
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()
	logger := logging.FromContext(ctx)

	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = fmt.Fprintf(w, `{"error": "method %v is not allowed"}`, r.Method)
		return
	}
	if t := r.Header.Get("content-type"); len(t) < 16 || t[:16] != "application/json" {
		w.WriteHeader(http.StatusUnsupportedMediaType)
		_, _ = fmt.Fprintf(w, `{"error": "%v"}`, "content-type is not application/json")
		return
	}

	defer r.Body.Close()

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	d := json.NewDecoder(r.Body)
	if err := d.Decode(&req); err != nil {
		httputil.DecodeErr(ctx, w, err)
		return
	}

	if req.Name == "" {
		httputil.RespBadRequest(ctx, w, `{"error": "dataset name is required"}`)
		return
	}
	dataset, err := Dataset(req)
	if err != nil {
		httputil.RespBadRequest(ctx, w, `{"error": "%v"}`, err)
		return
	}
	tbl, err := dataset.Table()
	if err != nil {
		httputil.RespBadRequest(ctx, w, `{"error": "%v"}`, err)
		return
	}
	if tbl.Rows() > h.cfg.MaxRows {
		httputil.RespBadRequest(ctx, w, `{"error": "dataset is too large, max allowed rows is %d"}`, h.cfg.MaxRows)
		return
	}
	if len(req.Folds) > 0 && len(req.Folds) != tbl.Rows() {
		httputil.RespBadRequest(ctx, w, `{"error": "fold labels cover %d rows, dataset has %d"}`, len(req.Folds), tbl.Rows())
		return
	}

	if err := h.datasets.Save(ctx, dataset); err != nil {
		httputil.RespInternalError(ctx, w, `{"error": "failed to store dataset, %v"}`, err)
		return
	}
	hash := dataset.ContentHash()
	logger.Infof("stored reference dataset %q (%d rows)", dataset.Name, tbl.Rows())

	httputil.RespJSON(ctx, w, http.StatusOK, response{
		ID:   dataset.ID.String(),
		Name: dataset.Name,
		Hash: hex.EncodeToString(hash[:]),
		Rows: tbl.Rows(),
	})
}

// Dataset converts an upload request into the stored model.
func Dataset(req request) (model.Dataset, error) {
	cols := make([]model.Column, len(req.Columns))
	for i, col := range req.Columns {
		switch col.Kind {
		case "numeric":
			cols[i] = model.Column{Name: col.Name, Kind: uint8(table.KindNumeric), Numeric: col.Numeric}
		case "categorical":
			cols[i] = model.Column{Name: col.Name, Kind: uint8(table.KindCategorical), Levels: col.Levels}
		default:
			return model.Dataset{}, fmt.Errorf("column %q has unknown kind %q", col.Name, col.Kind)
		}
	}
	return model.New(req.Name, cols, req.Folds, req.Importance), nil
}
