// Package data builds training datasets from simulated and historical price
// paths and reads and writes them in the diffusionts and tsdiff formats.
package data

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/banachtech/finsims/mc"
	"github.com/banachtech/finsims/util"
	"github.com/go-playground/validator/v10"
)

// Model names as they appear in parameter files and dataset file names.
const (
	ModelGBM    = "gbm"
	ModelMJD    = "mjd"
	ModelHeston = "heston"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// SimParams is one entry of simulation_parameters.
type SimParams struct {
	N  int      `json:"n" validate:"gte=1"`
	M  int      `json:"M" validate:"gte=1"`
	T  *float64 `json:"T,omitempty" validate:"omitempty,gt=0"`
	Dt *float64 `json:"dt,omitempty" validate:"omitempty,gt=0"`
	S0 *float64 `json:"s0,omitempty" validate:"omitempty,gt=0"`
}

// Step returns the time increment: dt if given, else T/n, else 1/n.
func (p SimParams) Step() float64 {
	switch {
	case p.Dt != nil:
		return *p.Dt
	case p.T != nil:
		return *p.T / float64(p.N)
	default:
		return 1 / float64(p.N)
	}
}

// ParamFile is the JSON parameter file driving the dataset builder. Exactly
// one of the model parameter lists must be present.
type ParamFile struct {
	SimulationParameters []SimParams `json:"simulation_parameters" validate:"required,min=1,dive"`
	GBMParameters        []mc.GBM    `json:"gbm_parameters,omitempty" validate:"dive"`
	MJDParameters        []mc.MJD    `json:"mjd_parameters,omitempty" validate:"dive"`
	HestonParameters     []mc.Heston `json:"heston_parameters,omitempty" validate:"dive"`
}

// LoadParams reads and validates a parameter file.
func LoadParams(filename string) (*ParamFile, error) {
	f, err := Open(filename, ParamFile{})
	if err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return &f, nil
}

// Validate checks field ranges and that exactly one model is configured.
func (f *ParamFile) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("%w: %v", util.ErrInvalidParameter, err)
	}
	models := 0
	for _, n := range []int{len(f.GBMParameters), len(f.MJDParameters), len(f.HestonParameters)} {
		if n > 0 {
			models++
		}
	}
	if models != 1 {
		return fmt.Errorf("%w: exactly one of gbm_parameters, mjd_parameters and heston_parameters must be given", util.ErrInvalidParameter)
	}
	return nil
}

// Model returns the name of the configured model.
func (f *ParamFile) Model() string {
	switch {
	case len(f.GBMParameters) > 0:
		return ModelGBM
	case len(f.MJDParameters) > 0:
		return ModelMJD
	case len(f.HestonParameters) > 0:
		return ModelHeston
	}
	return ""
}

// Job is one simulation of the parameter cross product.
type Job struct {
	Index   int
	Model   string
	Sim     SimParams
	Process mc.Process
}

// Jobs expands the cross product of simulation and model parameters in file
// order, simulation parameters outermost. A simulation s0 overrides the
// model's initial value.
func (f *ParamFile) Jobs() []Job {
	var procs []mc.Process
	for _, p := range f.GBMParameters {
		procs = append(procs, p)
	}
	for _, p := range f.MJDParameters {
		procs = append(procs, p)
	}
	for _, p := range f.HestonParameters {
		procs = append(procs, p)
	}

	var jobs []Job
	for _, sim := range f.SimulationParameters {
		for _, p := range procs {
			if sim.S0 != nil {
				p = withS0(p, *sim.S0)
			}
			jobs = append(jobs, Job{Index: len(jobs), Model: f.Model(), Sim: sim, Process: p})
		}
	}
	return jobs
}

func withS0(p mc.Process, s0 float64) mc.Process {
	switch v := p.(type) {
	case mc.GBM:
		v.S0 = s0
		return v
	case mc.MJD:
		v.S0 = s0
		return v
	case mc.Heston:
		v.S0 = s0
		return v
	}
	return p
}

// Record is the per-dataset parameter file written next to the paths.
func (j Job) Record() map[string]any {
	return map[string]any{
		"simulation_parameters":  j.Sim,
		j.Model + "_parameters": j.Process,
	}
}
