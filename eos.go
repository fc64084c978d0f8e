package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
)

// eV/A^3 to GPa
const evA3ToGPa = 160.21766208

// EOS holds a Birch-Murnaghan fit of an energy-volume curve. The
// polynomial is cubic in x = V^(-2/3)
type EOS struct {
	E0     float64 // minimum energy, eV
	V0     float64 // equilibrium volume, A^3
	B0     float64 // bulk modulus, GPa
	Coeffs [4]float64
}

func (e *EOS) eval(x float64) float64 {
	c := e.Coeffs
	return c[0] + x*(c[1]+x*(c[2]+x*c[3]))
}

// FitEOS fits the Birch-Murnaghan form to an E(V) data set by linear
// least squares over powers of V^(-2/3) and locates the minimum
func FitEOS(vols, energies []float64) (*EOS, error) {
	if len(vols) != len(energies) {
		return nil, fmt.Errorf("FitEOS: %d volumes but %d energies",
			len(vols), len(energies))
	}
	if len(vols) < 4 {
		return nil, fmt.Errorf("FitEOS: need at least 4 points, got %d", len(vols))
	}
	n := len(vols)
	data := make([]float64, 0, 4*n)
	for _, v := range vols {
		if v <= 0 {
			return nil, fmt.Errorf("FitEOS: nonpositive volume %g", v)
		}
		x := math.Pow(v, -2.0/3.0)
		data = append(data, 1, x, x*x, x*x*x)
	}
	A := mat.NewDense(n, 4, data)
	b := mat.NewVecDense(n, energies)
	var coef mat.VecDense
	if err := coef.SolveVec(A, b); err != nil {
		return nil, fmt.Errorf("FitEOS: singular fit: %w", err)
	}
	var e EOS
	for i := 0; i < 4; i++ {
		e.Coeffs[i] = coef.AtVec(i)
	}
	c1, c2, c3 := e.Coeffs[1], e.Coeffs[2], e.Coeffs[3]
	// stationary points of c1 + 2 c2 x + 3 c3 x^2
	var x0 float64
	if math.Abs(c3) < 1e-12 {
		if c2 <= 0 {
			return nil, fmt.Errorf("FitEOS: no minimum in fitted range")
		}
		x0 = -c1 / (2 * c2)
	} else {
		disc := 4*c2*c2 - 12*c3*c1
		if disc < 0 {
			return nil, fmt.Errorf("FitEOS: no minimum in fitted range")
		}
		r1 := (-2*c2 + math.Sqrt(disc)) / (6 * c3)
		r2 := (-2*c2 - math.Sqrt(disc)) / (6 * c3)
		// keep the root with positive curvature
		switch {
		case r1 > 0 && 2*c2+6*c3*r1 > 0:
			x0 = r1
		case r2 > 0 && 2*c2+6*c3*r2 > 0:
			x0 = r2
		default:
			return nil, fmt.Errorf("FitEOS: no minimum in fitted range")
		}
	}
	if x0 <= 0 {
		return nil, fmt.Errorf("FitEOS: no minimum in fitted range")
	}
	e.V0 = math.Pow(x0, -1.5)
	e.E0 = e.eval(x0)
	// B0 = V d2E/dV2 at V0; with x = V^(-2/3) this collapses to
	// (4/9) x0^(7/2) E_xx
	exx := 2*c2 + 6*c3*x0
	e.B0 = 4.0 / 9.0 * math.Pow(x0, 3.5) * exx * evA3ToGPa
	return &e, nil
}

// ScaleAt returns the lattice scaling factor that turns a cell of
// volume vref into the equilibrium volume
func (e *EOS) ScaleAt(vref float64) float64 {
	return math.Cbrt(e.V0 / vref)
}

// WriteEOS reports a fit to eos.dat in root
func WriteEOS(root string, e *EOS, vref float64) error {
	out := fmt.Sprintf(
		"E0  = %14.8f eV\nV0  = %12.6f A^3\nB0  = %10.4f GPa\nscale = %8.6f\n",
		e.E0, e.V0, e.B0, e.ScaleAt(vref))
	return os.WriteFile(filepath.Join(root, "eos.dat"), []byte(out), 0644)
}
