package data

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/banachtech/finsims/db"
	"github.com/banachtech/finsims/mc"
	"github.com/banachtech/finsims/transform"
	"github.com/banachtech/finsims/util"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// Transformation names accepted besides wavelet family names.
const (
	Cosine    = "cosine"
	LogReturn = "log-return"
	ZScore    = "zscore"
)

// ParseTransformations splits a comma separated list and checks every name.
// "cos" is accepted as an alias of cosine.
func ParseTransformations(s string) ([]string, error) {
	var out []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		switch {
		case t == "":
			continue
		case t == "cos" || t == Cosine:
			out = append(out, Cosine)
		case t == LogReturn || t == "log-returns":
			out = append(out, LogReturn)
		case transform.IsWavelet(t):
			out = append(out, t)
		default:
			return nil, fmt.Errorf("%w: unknown transformation %q", util.ErrInvalidParameter, t)
		}
	}
	return out, nil
}

// Builder simulates every job of a parameter file and writes the paths, the
// requested transformations and their side channels to DataDir.
type Builder struct {
	DataDir         string
	Format          Format
	Transformations []string
	// Normalization is "" or ZScore and applies to the cosine output.
	Normalization string
	Source        *util.Source
	Seed          uint64
	Workers       int
	Logger        *logrus.Logger
	Store         db.Store
	ShowProgress  bool
}

// Build runs all jobs of f and records them under a new run in the store.
// It returns the run ID and the datasets written.
func (b *Builder) Build(ctx context.Context, f *ParamFile) (string, []db.Dataset, error) {
	if err := os.MkdirAll(b.DataDir, 0755); err != nil {
		return "", nil, err
	}
	if b.Normalization != "" && b.Normalization != ZScore {
		return "", nil, fmt.Errorf("%w: unknown normalization %q", util.ErrInvalidParameter, b.Normalization)
	}
	jobs := f.Jobs()
	bar := progressBar(len(jobs), b.ShowProgress)
	defer bar.Finish()

	var written []db.Dataset
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}
		bar.Describe(fmt.Sprintf("Simulating %s-%d\t", job.Model, job.Index))
		ds, err := b.runJob(ctx, job)
		if err != nil {
			return "", nil, fmt.Errorf("%s-%d: %w", job.Model, job.Index, err)
		}
		written = append(written, ds...)
		bar.Add(1)
	}

	params, err := json.Marshal(f)
	if err != nil {
		return "", nil, err
	}
	run := db.Run{ID: db.NewRunID(), Command: f.Model(), Seed: b.Seed, Params: string(params)}
	if err := b.store().SaveRun(ctx, run, written); err != nil {
		return "", nil, fmt.Errorf("save manifest: %w", err)
	}
	b.logger().WithFields(logrus.Fields{"run": run.ID, "datasets": len(written)}).Info("run recorded")
	return run.ID, written, nil
}

func (b *Builder) runJob(ctx context.Context, job Job) ([]db.Dataset, error) {
	x, err := mc.SimulateParallel(ctx, job.Process, b.Source, job.Sim.N, job.Sim.M, job.Sim.Step(), b.Workers)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("%s-%d", job.Model, job.Index)

	var out []db.Dataset
	save := func(kind, prefix string, m mat.Matrix) error {
		path, err := SaveDataset(filepath.Join(b.DataDir, prefix+name), m, b.Format)
		if err != nil {
			return err
		}
		r, c := m.Dims()
		out = append(out, db.Dataset{Model: job.Model, Index: job.Index, Kind: kind, Path: path, Format: string(b.Format), Rows: r, Cols: c})
		b.logger().WithFields(logrus.Fields{"kind": kind, "path": path, "rows": r, "cols": c}).Debug("dataset written")
		return nil
	}

	if err := save("paths", "", x); err != nil {
		return nil, err
	}
	for _, t := range b.Transformations {
		switch t {
		case Cosine:
			c := transform.Cosine(x)
			if b.Normalization == ZScore {
				var zp transform.ZScoreParams
				c, zp = transform.ZScore(c)
				if err := SaveZScoreParams(filepath.Join(b.DataDir, fmt.Sprintf("zscore-%s-params.json", name)), zp); err != nil {
					return nil, err
				}
			}
			if err := save(Cosine, "cos-", c); err != nil {
				return nil, err
			}
		case LogReturn:
			if err := save(LogReturn, "log-return-", transform.LogReturns(x)); err != nil {
				return nil, err
			}
		default:
			wc, err := transform.Wavelet(x, t, 0)
			if err != nil {
				return nil, err
			}
			if err := save(t, t+"-", wc.Matrix()); err != nil {
				return nil, err
			}
			if err := SaveWaveletParams(filepath.Join(b.DataDir, fmt.Sprintf("%s-%s-params.json", t, name)), wc); err != nil {
				return nil, err
			}
		}
	}

	if err := writeJSON(filepath.Join(b.DataDir, name+"-params.json"), job.Record()); err != nil {
		return nil, err
	}
	b.logger().WithFields(logrus.Fields{"model": job.Model, "index": job.Index, "n": job.Sim.N, "M": job.Sim.M}).Info("simulation written")
	return out, nil
}

func (b *Builder) logger() *logrus.Logger {
	if b.Logger == nil {
		b.Logger = logrus.New()
	}
	return b.Logger
}

func (b *Builder) store() db.Store {
	if b.Store == nil {
		return db.NoopStore{}
	}
	return b.Store
}
