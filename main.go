package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/banachtech/finsims/config"
	"github.com/banachtech/finsims/data"
	"github.com/banachtech/finsims/db"
	"github.com/banachtech/finsims/mc"
	"github.com/banachtech/finsims/util"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

const usage = `usage: finsims <command> [flags]

commands:
  gbm, mjd, heston   simulate the parameter file given with -c
  real               cut the log returns of a price CSV into windows
  bootstrap          resample a price CSV into synthetic paths
  estimate           estimate gbm or mjd parameters from a price CSV
  trainconfig        write Diffusion-TS training configs
`

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		logrus.Fatal(err)
	}
}

// common holds the flags every command accepts.
type common struct {
	settings *config.Settings
	logger   *logrus.Logger
}

func (c *common) register(fs *flag.FlagSet, s *config.Settings) {
	c.settings = s
	fs.StringVar(&s.DataDir, "d", s.DataDir, "directory to write datasets to")
	fs.StringVar(&s.Format, "f", s.Format, "dataset format: diffusionts or tsdiff")
	fs.Uint64Var(&s.Seed, "seed", s.Seed, "random seed")
	fs.IntVar(&s.Workers, "workers", s.Workers, "parallel workers")
	fs.StringVar(&s.ManifestPath, "manifest", s.ManifestPath, "SQLite manifest path, empty to disable")
	fs.BoolVar(&s.Progress, "progress", s.Progress, "show a progress bar")
}

func (c *common) setup() (data.Format, db.Store, error) {
	if err := c.settings.Validate(); err != nil {
		return "", nil, err
	}
	c.logger = config.NewLogger(c.settings.LogLevel, c.settings.LogFormat)
	format, err := data.ParseFormat(c.settings.Format)
	if err != nil {
		return "", nil, err
	}
	store, err := db.Open(c.settings.ManifestPath)
	if err != nil {
		return "", nil, err
	}
	return format, store, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	settings, err := config.Load()
	if err != nil {
		return err
	}
	cmd, args := args[0], args[1:]
	switch cmd {
	case data.ModelGBM, data.ModelMJD, data.ModelHeston:
		return runSimulate(ctx, cmd, args, settings)
	case "real":
		return runReal(ctx, args, settings)
	case "bootstrap":
		return runBootstrap(ctx, args, settings)
	case "estimate":
		return runEstimate(args, stdout)
	case "trainconfig":
		return runTrainConfig(args, stdout)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

func runSimulate(ctx context.Context, model string, args []string, settings *config.Settings) error {
	fs := flag.NewFlagSet(model, flag.ContinueOnError)
	var c common
	c.register(fs, settings)
	paramsPath := fs.String("c", "", "parameter file (JSON)")
	transformations := fs.String("t", "", "comma separated transformations: cosine, log-return or a wavelet name")
	normalization := fs.String("n", "", "normalization of the cosine output: zscore")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *paramsPath == "" {
		return fmt.Errorf("%w: -c is required", errUsage)
	}

	format, store, err := c.setup()
	if err != nil {
		return err
	}
	defer store.Close()

	f, err := data.LoadParams(*paramsPath)
	if err != nil {
		return err
	}
	if f.Model() != model {
		return fmt.Errorf("%w: %s holds %s parameters", util.ErrInvalidParameter, *paramsPath, f.Model())
	}
	ts, err := data.ParseTransformations(*transformations)
	if err != nil {
		return err
	}

	b := &data.Builder{
		DataDir:         settings.DataDir,
		Format:          format,
		Transformations: ts,
		Normalization:   *normalization,
		Source:          util.NewSource(settings.Seed),
		Seed:            settings.Seed,
		Workers:         settings.Workers,
		Logger:          c.logger,
		Store:           store,
		ShowProgress:    settings.Progress,
	}
	runID, written, err := b.Build(ctx, f)
	if err != nil {
		return err
	}
	c.logger.WithFields(logrus.Fields{"run": runID, "datasets": len(written), "dir": settings.DataDir}).Info("done")
	return nil
}

func baseName(csvPath string) string {
	return strings.TrimSuffix(filepath.Base(csvPath), filepath.Ext(csvPath))
}

func runReal(ctx context.Context, args []string, settings *config.Settings) error {
	fs := flag.NewFlagSet("real", flag.ContinueOnError)
	var c common
	c.register(fs, settings)
	csvPath := fs.String("csv", "", "price CSV with a close column")
	n := fs.Int("n", 200, "window length")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *csvPath == "" {
		return fmt.Errorf("%w: -csv is required", errUsage)
	}
	format, store, err := c.setup()
	if err != nil {
		return err
	}
	defer store.Close()

	closes, err := data.LoadCloses(*csvPath)
	if err != nil {
		return err
	}
	x, err := data.RealDataset(closes, *n)
	if err != nil {
		return err
	}
	return save(ctx, &c, store, "real", x, baseName(*csvPath)+"_log_return", format)
}

func runBootstrap(ctx context.Context, args []string, settings *config.Settings) error {
	fs := flag.NewFlagSet("bootstrap", flag.ContinueOnError)
	var c common
	c.register(fs, settings)
	csvPath := fs.String("csv", "", "price CSV with a close column")
	n := fs.Int("n", 200, "steps per path")
	m := fs.Int("M", 1000, "number of paths")
	block := fs.Float64("block", 20, "expected block length")
	s0 := fs.Float64("s0", 0, "initial price, the last close when 0")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *csvPath == "" {
		return fmt.Errorf("%w: -csv is required", errUsage)
	}
	format, store, err := c.setup()
	if err != nil {
		return err
	}
	defer store.Close()

	closes, err := data.LoadCloses(*csvPath)
	if err != nil {
		return err
	}
	x, err := data.BootstrapDataset(ctx, util.NewSource(settings.Seed), closes, *n, *m, *block, *s0, settings.Workers)
	if err != nil {
		return err
	}
	return save(ctx, &c, store, "bootstrap", x, baseName(*csvPath)+"_bootstrap", format)
}

// save writes one dataset and records it as its own run.
func save(ctx context.Context, c *common, store db.Store, command string, x mat.Matrix, name string, format data.Format) error {
	if err := os.MkdirAll(c.settings.DataDir, 0755); err != nil {
		return err
	}
	path, err := data.SaveDataset(filepath.Join(c.settings.DataDir, name), x, format)
	if err != nil {
		return err
	}
	r, cols := x.Dims()
	run := db.Run{ID: db.NewRunID(), Command: command, Seed: c.settings.Seed}
	ds := db.Dataset{Kind: command, Path: path, Format: string(format), Rows: r, Cols: cols}
	if err := store.SaveRun(ctx, run, []db.Dataset{ds}); err != nil {
		return err
	}
	c.logger.WithFields(logrus.Fields{"run": run.ID, "path": path, "rows": r, "cols": cols}).Info("dataset written")
	return nil
}

func runEstimate(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("estimate", flag.ContinueOnError)
	csvPath := fs.String("csv", "", "price CSV with a close column")
	model := fs.String("model", data.ModelGBM, "gbm or mjd")
	dt := fs.Float64("dt", 1.0/252, "sampling interval in years")
	threshold := fs.Float64("threshold", mc.DefaultJumpThreshold, "jump threshold in standard deviations (mjd)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *csvPath == "" {
		return fmt.Errorf("%w: -csv is required", errUsage)
	}
	closes, err := data.LoadCloses(*csvPath)
	if err != nil {
		return err
	}

	var out any
	switch *model {
	case data.ModelGBM:
		series := mat.NewDense(len(closes), 1, closes)
		out = mc.EstimateGBM(series, *dt, mc.Endpoint).Mean()
	case data.ModelMJD:
		out = mc.EstimateMJD(closes, *dt, *threshold)
	default:
		return fmt.Errorf("%w: no estimator for %q", util.ErrUnsupported, *model)
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "    ")
	return enc.Encode(out)
}

func runTrainConfig(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("trainconfig", flag.ContinueOnError)
	dir := fs.String("d", ".", "directory to write configs to")
	count := fs.Int("count", 18, "number of datasets")
	seq := fs.Int("seq", data.DefaultSeqLength, "training window length")
	if err := fs.Parse(args); err != nil {
		return err
	}
	files, err := data.WriteTrainingConfigs(*dir, *count, *seq)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Fprintln(stdout, f)
	}
	return nil
}
