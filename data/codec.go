package data

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/banachtech/finsims/util"
	"gonum.org/v1/gonum/mat"
)

// Format selects the on-disk dataset layout.
type Format string

const (
	// DiffusionTS is a headerless CSV with one row per time step.
	DiffusionTS Format = "diffusionts"
	// TSDiff is JSON lines with one {"start", "target"} object per path.
	TSDiff Format = "tsdiff"
)

// StartDate is the nominal start written into every tsdiff record.
const StartDate = "2000-01-01"

// Ext returns the file extension of the format.
func (f Format) Ext() string {
	if f == TSDiff {
		return ".jsonl"
	}
	return ".csv"
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case DiffusionTS, TSDiff:
		return Format(s), nil
	}
	return "", fmt.Errorf("%w: unknown format %q", util.ErrInvalidParameter, s)
}

type tsRecord struct {
	Start  string    `json:"start"`
	Target []float64 `json:"target"`
}

// SaveDataset writes x to filename plus the format's extension and returns
// the full path.
func SaveDataset(filename string, x mat.Matrix, format Format) (string, error) {
	path := filename + format.Ext()
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	switch format {
	case DiffusionTS:
		err = writeCSV(w, x)
	case TSDiff:
		err = writeJSONL(w, x)
	default:
		err = fmt.Errorf("%w: unknown format %q", util.ErrInvalidParameter, format)
	}
	if err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return path, f.Close()
}

func writeCSV(w *bufio.Writer, x mat.Matrix) error {
	r, c := x.Dims()
	cw := csv.NewWriter(w)
	record := make([]string, c)
	for i := 0; i < r; i++ {
		for j := range record {
			record[j] = strconv.FormatFloat(x.At(i, j), 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSONL(w *bufio.Writer, x mat.Matrix) error {
	_, c := x.Dims()
	enc := json.NewEncoder(w)
	for j := 0; j < c; j++ {
		if err := enc.Encode(tsRecord{Start: StartDate, Target: mat.Col(nil, j, x)}); err != nil {
			return err
		}
	}
	return nil
}

// LoadDataset reads a dataset written by SaveDataset back as a time by path
// matrix. filename includes the extension.
func LoadDataset(filename string, format Format) (*mat.Dense, error) {
	switch format {
	case DiffusionTS:
		return ReadCSV(filename)
	case TSDiff:
		return ReadTargets(filename)
	}
	return nil, fmt.Errorf("%w: unknown format %q", util.ErrInvalidParameter, format)
}

// ReadCSV reads a headerless numeric CSV matrix.
func ReadCSV(filename string) (*mat.Dense, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, util.ErrEmptySource)
	}
	c := len(records[0])
	data := make([]float64, 0, len(records)*c)
	for i, rec := range records {
		for j, s := range rec {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d column %d: %w", filename, i+1, j+1, err)
			}
			data = append(data, v)
		}
	}
	return mat.NewDense(len(records), c, data), nil
}

// ReadTargets reads the target arrays of a tsdiff file into a matrix with
// one column per record.
func ReadTargets(filename string) (*mat.Dense, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var targets [][]float64
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec tsRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", filename, len(targets)+1, err)
		}
		if len(targets) > 0 && len(rec.Target) != len(targets[0]) {
			return nil, fmt.Errorf("%w: %s record %d has %d values, want %d", util.ErrShapeMismatch, filename, len(targets)+1, len(rec.Target), len(targets[0]))
		}
		targets = append(targets, rec.Target)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(targets) == 0 || len(targets[0]) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, util.ErrEmptySource)
	}

	out := mat.NewDense(len(targets[0]), len(targets), nil)
	for j, t := range targets {
		out.SetCol(j, t)
	}
	return out, nil
}
