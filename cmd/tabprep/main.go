// Command tabprep splits a labeled CSV into training and validation
// partitions, fits the preprocessing pipeline on the training partition and
// writes both transformed matrices together with the fitted state.
//
// Usage:
//
//	tabprep -config spaceship.yaml [-out dir] [-log-level debug] [-log-format console]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tabprep/config"
	"github.com/YuminosukeSato/tabprep/dataset"
	"github.com/YuminosukeSato/tabprep/features"
	"github.com/YuminosukeSato/tabprep/pkg/errors"
	"github.com/YuminosukeSato/tabprep/pkg/log"
	"github.com/YuminosukeSato/tabprep/report"
	"github.com/YuminosukeSato/tabprep/sklearn/compose"
	"github.com/YuminosukeSato/tabprep/sklearn/model_selection"
	"github.com/YuminosukeSato/tabprep/sklearn/pipeline"
	"github.com/YuminosukeSato/tabprep/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "tabprep: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("tabprep", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to the YAML or JSON run configuration")
	outDir := fs.String("out", "", "output directory (overrides output.dir)")
	logLevel := fs.String("log-level", "", "debug, info, warn or error (overrides log.level)")
	logFormat := fs.String("log-format", "", "json, console or slog (overrides log.format)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" {
		fs.Usage()
		return errors.New("-config is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := setupLogging(cfg.Log, stderr); err != nil {
		return err
	}
	logger := log.GetLoggerWithName("tabprep")
	start := time.Now()

	X, y, err := loadFeatures(cfg)
	if err != nil {
		return err
	}

	split, err := model_selection.TrainTestSplit(X, y, cfg.Split.TestSize,
		model_selection.WithRandomState(cfg.Split.RandomState),
		model_selection.WithShuffle(cfg.ShuffleEnabled()),
	)
	if err != nil {
		return err
	}
	logger.Info("Split dataset",
		log.OperationKey, log.OperationSplit,
		log.TrainSamplesKey, split.XTrain.NRows(),
		log.ValSamplesKey, split.XVal.NRows(),
		log.RandomSeedKey, cfg.Split.RandomState,
	)

	pipe := pipeline.New(compose.NewColumnTransformer(compose.WithNumericScaler(cfg.ScalerKind())))
	XTrain, err := pipe.FitTransform(split.XTrain)
	if err != nil {
		return err
	}
	XVal, err := pipe.Transform(split.XVal)
	if err != nil {
		return err
	}
	names, err := pipe.FeatureNamesOut()
	if err != nil {
		return err
	}

	rt, ct := XTrain.Dims()
	rv, cv := XVal.Dims()
	fmt.Fprintf(stdout, "Training data shape: (%d, %d)\n", rt, ct)
	fmt.Fprintf(stdout, "Validation data shape: (%d, %d)\n", rv, cv)

	if err := writeOutputs(cfg.Output.Dir, names, XTrain, XVal, split); err != nil {
		return err
	}
	if err := saveState(ctx, cfg, pipe, split.XVal, XVal); err != nil {
		return err
	}

	if cfg.Output.Plot != "" {
		cmp, err := report.CompareMeans(names, XTrain, XVal)
		if err != nil {
			return err
		}
		if err := cmp.Plot(filepath.Join(cfg.Output.Dir, cfg.Output.Plot)); err != nil {
			return err
		}
		col, delta := cmp.MaxShift()
		logger.Info("Wrote mean comparison plot", "file", cfg.Output.Plot, "max_shift_column", col, "max_shift", delta)
	}

	logger.Info("Preprocessing finished",
		log.OutputFeaturesKey, ct,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

func setupLogging(cfg config.LogConfig, w io.Writer) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	switch cfg.Format {
	case "slog":
		log.SetupLoggerWithWriter(w, cfg.Level)
		errors.SetZerologWarnFunc(nil)
		errors.SetWarningHandler(func(warn error) {
			slog.Warn(warn.Error(), log.ErrorTypeKey, fmt.Sprintf("%T", warn))
		})
	case "console":
		p := log.NewConsoleProvider(w, level)
		log.SetProvider(p)
		p.InstallWarnings()
	default:
		p := log.NewZerologProviderWithWriter(w, level)
		log.SetProvider(p)
		p.InstallWarnings()
	}
	return nil
}

// loadFeatures reads the CSV, derives the configured columns, drops the
// configured ones and separates the label.
func loadFeatures(cfg *config.Config) (*dataset.Dataset, *dataset.Column, error) {
	f, err := os.Open(cfg.Input)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open input")
	}
	defer f.Close()

	raw, err := dataset.ReadCSV(f, cfg.CSVOptions())
	if err != nil {
		return nil, nil, err
	}

	derived := raw
	if len(cfg.Derive) > 0 {
		d, err := features.NewDeriver(raw.Schema(), cfg.Derivations()...)
		if err != nil {
			return nil, nil, err
		}
		if derived, err = d.Apply(raw); err != nil {
			return nil, nil, err
		}
	}

	X, y, err := derived.Pop(cfg.Label)
	if err != nil {
		return nil, nil, err
	}
	if len(cfg.Drop) > 0 {
		if X, err = X.Drop(cfg.Drop...); err != nil {
			return nil, nil, err
		}
	}
	log.GetLoggerWithName("tabprep").Info("Loaded dataset",
		"file", cfg.Input,
		log.SamplesKey, X.NRows(),
		log.FeaturesKey, X.NCols(),
	)
	return X, y, nil
}

func writeOutputs(dir string, names []string, XTrain, XVal *mat.Dense, split *model_selection.Split) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}
	files := []struct {
		name string
		ds   *dataset.Dataset
	}{
		{"X_train.csv", matrixDataset(names, XTrain)},
		{"X_val.csv", matrixDataset(names, XVal)},
		{"y_train.csv", dataset.MustNew(split.YTrain)},
		{"y_val.csv", dataset.MustNew(split.YVal)},
	}
	for _, f := range files {
		if err := writeCSVFile(filepath.Join(dir, f.name), f.ds); err != nil {
			return err
		}
	}
	return nil
}

func matrixDataset(names []string, m *mat.Dense) *dataset.Dataset {
	cols := make([]*dataset.Column, len(names))
	for j, name := range names {
		cols[j] = dataset.NewFloatColumn(name, mat.Col(nil, j, m))
	}
	return dataset.MustNew(cols...)
}

func writeCSVFile(path string, ds *dataset.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := dataset.WriteCSV(f, ds); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// saveState stores the fitted pipeline and reloads it to check that the
// stored copy reproduces the validation matrix exactly.
func saveState(ctx context.Context, cfg *config.Config, pipe *pipeline.Pipeline, val *dataset.Dataset, want *mat.Dense) error {
	store, key, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	data, err := pipe.Marshal(cfg.Compression())
	if err != nil {
		return err
	}
	if err := store.Put(ctx, key, data); err != nil {
		return err
	}

	stored, err := store.Get(ctx, key)
	if err != nil {
		return err
	}
	reloaded, err := pipeline.Unmarshal(stored)
	if err != nil {
		return err
	}
	got, err := reloaded.Transform(val)
	if err != nil {
		return err
	}
	if !identical(want, got) {
		return errors.New("reloaded pipeline does not reproduce the validation matrix")
	}

	log.GetLoggerWithName("tabprep").Info("Stored fitted pipeline",
		"store", store.Name(),
		"key", key,
		log.DataSizeKey, len(data),
		log.CompressionKey, cfg.Compression().String(),
	)
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, string, error) {
	if cfg.Store.Kind == config.StoreRedis {
		r := cfg.Store.Redis
		s, err := storage.NewRedisStore(ctx, storage.RedisOptions{
			Addr:     r.Addr,
			Password: r.Password,
			DB:       r.DB,
			TTL:      time.Duration(r.TTLSeconds) * time.Second,
		})
		if err != nil {
			return nil, "", err
		}
		return s, r.Key, nil
	}
	s, err := storage.NewFileStore(cfg.Output.Dir)
	if err != nil {
		return nil, "", err
	}
	return s, cfg.Output.State, nil
}

func identical(a, b *mat.Dense) bool {
	ra, ca := a.Dims()
	rb, cb := b.Dims()
	if ra != rb || ca != cb {
		return false
	}
	for i := 0; i < ra; i++ {
		for j := 0; j < ca; j++ {
			if math.Float64bits(a.At(i, j)) != math.Float64bits(b.At(i, j)) {
				return false
			}
		}
	}
	return true
}
