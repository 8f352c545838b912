package transform

import (
	"fmt"
	"math"
	"sort"

	"github.com/banachtech/finsims/util"
)

// Filter is an orthogonal wavelet filter bank.
type Filter struct {
	Name  string
	DecLo []float64
	DecHi []float64
	RecLo []float64
	RecHi []float64
}

// Len returns the filter length.
func (f Filter) Len() int { return len(f.DecLo) }

var (
	sqrt2 = math.Sqrt2
	sqrt3 = math.Sqrt(3)
)

// Reconstruction low-pass filters; the other three follow from orthogonality.
var recLo = map[string][]float64{
	"haar": {1 / sqrt2, 1 / sqrt2},
	"db1":  {1 / sqrt2, 1 / sqrt2},
	"db2": {
		(1 + sqrt3) / (4 * sqrt2), (3 + sqrt3) / (4 * sqrt2),
		(3 - sqrt3) / (4 * sqrt2), (1 - sqrt3) / (4 * sqrt2),
	},
	"db3": {
		0.3326705529509569, 0.8068915093133388, 0.4598775021193313,
		-0.13501102001039084, -0.08544127388224149, 0.035226291882100656,
	},
	"db4": {
		0.23037781330885523, 0.7148465705525415, 0.6308807679295904, -0.02798376941698385,
		-0.18703481171888114, 0.030841381835986965, 0.032883011666982945, -0.010597401784997278,
	},
	"sym4": {
		0.0322231006040427, -0.012603967262037833, -0.09921954357684722, 0.29785779560527736,
		0.8037387518059161, 0.49761866763201545, -0.02963552764599851, -0.07576571478927333,
	},
	"coif1": {
		-0.01565572813546454, -0.0727326195128539, 0.38486484686420286,
		0.8525720202122554, 0.3378976624578092, -0.0727326195128539,
	},
}

func init() {
	// The least asymmetric filters of order 2 and 3 coincide with Daubechies
	recLo["sym2"] = recLo["db2"]
	recLo["sym3"] = recLo["db3"]
}

// LookupWavelet returns the filter bank for name.
func LookupWavelet(name string) (Filter, error) {
	rl, ok := recLo[name]
	if !ok {
		return Filter{}, fmt.Errorf("%w: unknown wavelet %q", util.ErrInvalidParameter, name)
	}
	n := len(rl)
	f := Filter{
		Name:  name,
		DecLo: make([]float64, n),
		DecHi: make([]float64, n),
		RecLo: append([]float64(nil), rl...),
		RecHi: make([]float64, n),
	}
	for i := range rl {
		f.DecLo[i] = rl[n-1-i]
	}
	for i := range rl {
		f.RecHi[i] = f.DecLo[i]
		if i%2 == 1 {
			f.RecHi[i] = -f.RecHi[i]
		}
	}
	for i := range rl {
		f.DecHi[i] = f.RecHi[n-1-i]
	}
	return f, nil
}

// IsWavelet reports whether name is a supported wavelet family.
func IsWavelet(name string) bool {
	_, ok := recLo[name]
	return ok
}

// Wavelets lists the supported wavelet names in sorted order.
func Wavelets() []string {
	out := make([]string, 0, len(recLo))
	for k := range recLo {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
