package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/sethvargo/go-envconfig"
	"golang.org/x/sync/errgroup"

	"aoa/internal/applicability"
	"aoa/internal/logging"
	"aoa/internal/shutdown"
	"aoa/internal/table"
)

type cliConfig struct {
	Runfile string `env:"AOA_RUNFILE"`
}

type runfile struct {
	Input struct {
		Training       string `toml:"training"`
		Query          string `toml:"query"`
		FoldColumn     string `toml:"fold_column"`
		ResponseColumn string `toml:"response_column"`
	} `toml:"input"`
	Options struct {
		Variables []string           `toml:"variables"`
		Probs     []float64          `toml:"probs"`
		Weights   map[string]float64 `toml:"weights"`
		Workers   int                `toml:"workers"`
		ChunkSize int                `toml:"chunk_size"`
	} `toml:"options"`
	Output struct {
		File string `toml:"file"`
	} `toml:"output"`
}

func main() {
	ctx, done := shutdown.New()
	logger := logging.FromContext(ctx)
	if err := run(ctx); err != nil {
		logger.Fatal(err)
	}
	done()
}

func run(ctx context.Context) error {
	logger := logging.FromContext(ctx)

	var config cliConfig
	if err := envconfig.Process(ctx, &config); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}
	path := flag.String("f", config.Runfile, "path to the run file")
	flag.Parse()
	if *path == "" {
		return fmt.Errorf("no run file given, pass -f or set AOA_RUNFILE")
	}

	var rf runfile
	if _, err := toml.DecodeFile(*path, &rf); err != nil {
		return fmt.Errorf("decode run file %s: %w", *path, err)
	}
	if rf.Input.Training == "" || rf.Input.Query == "" {
		return fmt.Errorf("run file must name both a training and a query csv")
	}

	var train, query *table.Table
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		train, err = readCSV(rf.Input.Training)
		return err
	})
	g.Go(func() error {
		var err error
		query, err = readCSV(rf.Input.Query)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Infof("loaded %d training and %d query rows", train.Rows(), query.Rows())

	var folds table.Folds
	drop := []string{}
	if rf.Input.FoldColumn != "" {
		col, ok := train.Column(rf.Input.FoldColumn)
		if !ok {
			return fmt.Errorf("fold column %q is not in the training csv", rf.Input.FoldColumn)
		}
		folds = table.FoldsFromLabels(foldLabels(col))
		drop = append(drop, rf.Input.FoldColumn)
	}
	if rf.Input.ResponseColumn != "" {
		drop = append(drop, rf.Input.ResponseColumn)
	}
	if len(drop) > 0 {
		var err error
		if train, err = train.Drop(drop...); err != nil {
			return err
		}
		if query, err = query.Drop(drop...); err != nil {
			return err
		}
	}

	opts := []applicability.Option{
		applicability.WithVariables(rf.Options.Variables),
		applicability.WithFolds(folds),
		applicability.WithChunkSize(rf.Options.ChunkSize),
	}
	if rf.Options.Probs != nil {
		opts = append(opts, applicability.WithProbs(rf.Options.Probs))
	}
	if rf.Options.Weights != nil {
		opts = append(opts, applicability.WithWeights(rf.Options.Weights))
	}
	if rf.Options.Workers > 0 {
		opts = append(opts, applicability.WithWorkers(rf.Options.Workers))
	}

	estimator, err := applicability.New(opts...)
	if err != nil {
		return err
	}
	result, err := estimator.Estimate(train, query)
	if err != nil {
		return err
	}
	for i, p := range result.Probs {
		logger.Infof("threshold at %g: %g", p, result.Thresholds[i])
	}

	out := os.Stdout
	if rf.Output.File != "" {
		f, err := os.Create(rf.Output.File)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := writeResult(out, result); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if rf.Output.File != "" {
		logger.Infof("wrote %d rows to %s", len(result.DI), rf.Output.File)
	}
	return nil
}

func readCSV(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	t, err := table.ReadCSV(f, table.CSVOptions{})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}

// foldLabels flattens a fold column of either kind into string labels.
func foldLabels(col table.Column) []string {
	if col.Kind == table.KindCategorical {
		return col.Levels
	}
	labels := make([]string, len(col.Numeric))
	for i, v := range col.Numeric {
		labels[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return labels
}

func writeResult(out *os.File, result *applicability.Result) error {
	if _, err := fmt.Fprint(out, "row,di"); err != nil {
		return err
	}
	for _, p := range result.Probs {
		if _, err := fmt.Fprintf(out, ",aoa_%g", p); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return err
	}
	for i, di := range result.DI {
		if _, err := fmt.Fprintf(out, "%d,%g", i, di); err != nil {
			return err
		}
		for pi := range result.Probs {
			if _, err := fmt.Fprintf(out, ",%t", result.AOA[pi][i]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(out); err != nil {
			return err
		}
	}
	return nil
}
