package estimate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"go.opencensus.io/stats"

	"aoa/internal/applicability"
	"aoa/internal/cache"
	datasetDB "aoa/internal/dataset/database"
	"aoa/internal/dataset/model"
	"aoa/internal/encode"
	"aoa/internal/httputil"
	"aoa/internal/logging"
	"aoa/internal/metrics"
	"aoa/internal/table"
	"aoa/internal/threshold"
	"aoa/internal/weights"
)

const maxBodyBytes = 64 * 1024 * 1024

type column struct {
	Name    string    `json:"name"`
	Kind    string    `json:"kind"`
	Numeric []float64 `json:"numeric,omitempty"`
	Levels  []string  `json:"levels,omitempty"`
}

type inlineTable struct {
	Columns []column `json:"columns"`
	Folds   []string `json:"folds,omitempty"`
}

type options struct {
	Variables     []string           `json:"variables,omitempty"`
	Probs         []float64          `json:"probs,omitempty"`
	Weights       map[string]float64 `json:"weights,omitempty"`
	UseImportance bool               `json:"useImportance,omitempty"`
	Workers       int                `json:"workers,omitempty"`
}

type request struct {
	Dataset  string       `json:"dataset,omitempty"`
	Training *inlineTable `json:"training,omitempty"`
	Query    inlineTable  `json:"query"`
	Options  options      `json:"options"`
}

type response struct {
	Dataset     string    `json:"dataset,omitempty"`
	DI          []float64 `json:"di"`
	AOA         [][]bool  `json:"aoa"`
	Probs       []float64 `json:"probs"`
	Thresholds  []float64 `json:"thresholds"`
	MeanMin     float64   `json:"meanTrainDist"`
	TrainDIMean float64   `json:"trainDiMean"`
	TrainDIIQR  float64   `json:"trainDiIqr"`
	Columns     []string  `json:"columns"`
}

func NewHandler(cfg *Config, datasets *datasetDB.DB, respCache *cache.Cache) (http.Handler, error) {
	return &handler{cfg: cfg, datasets: datasets, cache: respCache}, nil
}

type handler struct {
	cfg      *Config
	datasets *datasetDB.DB
	cache    *cache.Cache
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
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
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		httputil.DecodeErr(ctx, w, err)
		return
	}
	var req request
	if err := json.Unmarshal(body, &req); err != nil {
		httputil.DecodeErr(ctx, w, err)
		return
	}

	stats.Record(ctx, metrics.MEstimateRequests.M(1))

	if (req.Dataset == "") == (req.Training == nil) {
		httputil.RespBadRequest(ctx, w, `{"error": "exactly one of dataset or training must be supplied"}`)
		return
	}

	train, folds, importance, dsHash, err := h.resolveTraining(ctx, req)
	if err != nil {
		if errors.Is(err, datasetDB.ErrNotFound) {
			httputil.RespBadRequest(ctx, w, `{"error": "unknown dataset %q"}`, req.Dataset)
			return
		}
		httputil.RespBadRequest(ctx, w, `{"error": "%v"}`, err)
		return
	}

	key := cache.Key(body, dsHash)
	if cached, ok := h.cache.Get(ctx, key); ok {
		stats.Record(ctx, metrics.MCacheHits.M(1))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(cached)
		return
	}

	query, err := toTable(req.Query.Columns)
	if err != nil {
		httputil.RespBadRequest(ctx, w, `{"error": "%v"}`, err)
		return
	}
	if query.Rows() > h.cfg.MaxQueryRows {
		httputil.RespBadRequest(ctx, w, `{"error": "query is too large, max allowed rows is %d"}`, h.cfg.MaxQueryRows)
		return
	}

	opts := []applicability.Option{
		applicability.WithVariables(req.Options.Variables),
		applicability.WithFolds(folds),
	}
	if req.Options.Probs != nil {
		opts = append(opts, applicability.WithProbs(req.Options.Probs))
	}
	if req.Options.Weights != nil {
		opts = append(opts, applicability.WithWeights(req.Options.Weights))
	}
	if req.Options.UseImportance {
		if len(importance) == 0 {
			httputil.RespBadRequest(ctx, w, `{"error": "dataset carries no importance scores"}`)
			return
		}
		opts = append(opts, applicability.WithImportance(importance))
	}
	if workers := req.Options.Workers; workers > 0 {
		opts = append(opts, applicability.WithWorkers(workers))
	} else if h.cfg.Workers > 0 {
		opts = append(opts, applicability.WithWorkers(h.cfg.Workers))
	}

	estimator, err := applicability.New(opts...)
	if err != nil {
		httputil.RespBadRequest(ctx, w, `{"error": "%v"}`, err)
		return
	}
	result, err := estimator.Estimate(train, query)
	if err != nil {
		respEstimateErr(ctx, w, err)
		return
	}

	resp := response{
		Dataset:     req.Dataset,
		DI:          result.DI,
		AOA:         result.AOA,
		Probs:       result.Probs,
		Thresholds:  result.Thresholds,
		MeanMin:     result.MeanMin,
		TrainDIMean: result.TrainMean,
		TrainDIIQR:  result.TrainIQR,
		Columns:     result.Columns,
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		httputil.RespInternalError(ctx, w, `{"error": "failed to encode output json %v"}`, err)
		return
	}
	h.cache.Set(ctx, key, raw)

	stats.Record(ctx,
		metrics.MEstimateLatency.M(float64(time.Since(started))/float64(time.Millisecond)),
		metrics.MQueryRows.M(int64(query.Rows())),
	)
	logger.Infof("estimated %d query rows against %d training rows", query.Rows(), train.Rows())

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(raw)
}

// resolveTraining returns the training table, folds and importance either
// from the stored dataset or from the inline request table.
func (h *handler) resolveTraining(ctx context.Context, req request) (*table.Table, table.Folds, map[string]float64, []byte, error) {
	if req.Dataset != "" {
		if h.datasets == nil {
			return nil, nil, nil, nil, fmt.Errorf("no dataset store configured")
		}
		dataset, err := h.datasets.Find(ctx, req.Dataset)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		tbl, err := dataset.Table()
		if err != nil {
			return nil, nil, nil, nil, err
		}
		hash := dataset.ContentHash()
		return tbl, dataset.Folds(), dataset.Importance, hash[:], nil
	}

	tbl, err := toTable(req.Training.Columns)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	var folds table.Folds
	if len(req.Training.Folds) > 0 {
		folds = table.FoldsFromLabels(req.Training.Folds)
	}
	return tbl, folds, nil, nil, nil
}

func toTable(cols []column) (*table.Table, error) {
	converted := make([]model.Column, len(cols))
	for i, col := range cols {
		switch col.Kind {
		case "numeric":
			converted[i] = model.Column{Name: col.Name, Kind: uint8(table.KindNumeric), Numeric: col.Numeric}
		case "categorical":
			converted[i] = model.Column{Name: col.Name, Kind: uint8(table.KindCategorical), Levels: col.Levels}
		default:
			return nil, fmt.Errorf("column %q has unknown kind %q", col.Name, col.Kind)
		}
	}
	dataset := model.Dataset{Columns: converted}
	return dataset.Table()
}

func respEstimateErr(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, applicability.ErrConfigurationConflict),
		errors.Is(err, encode.ErrSchemaMismatch),
		errors.Is(err, weights.ErrInvalidWeight),
		errors.Is(err, threshold.ErrInsufficientTrainingDiversity):
		httputil.RespBadRequest(ctx, w, `{"error": "%v"}`, err)
	default:
		httputil.RespInternalError(ctx, w, `{"error": "estimate processing error, %v"}`, err)
	}
}
