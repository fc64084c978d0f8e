package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ParseVector parses a vector in [X,Y,Z] form
func ParseVector(str string) ([3]float64, error) {
	var vec [3]float64
	str = strings.TrimSpace(str)
	if !strings.HasPrefix(str, "[") || !strings.HasSuffix(str, "]") {
		return vec, fmt.Errorf("vector must be in [X,Y,Z] form, got %q", str)
	}
	parts := strings.Split(str[1:len(str)-1], ",")
	if len(parts) != 3 {
		return vec, fmt.Errorf("vector must have exactly 3 components, got %q", str)
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return vec, fmt.Errorf("vector components must be numbers, got %q", str)
		}
		vec[i] = v
	}
	return vec, nil
}

// ParseAtomSelection turns a selection string into a per-atom mask.
// The selection is "all", a list of 1-based indices, or a list of
// element symbols
func ParseAtomSelection(sel string, elems []string) ([]bool, error) {
	mask := make([]bool, len(elems))
	fields := strings.Fields(sel)
	if len(fields) == 0 || strings.EqualFold(sel, "all") {
		for i := range mask {
			mask[i] = true
		}
		return mask, nil
	}
	digits := true
	for _, f := range fields {
		if _, err := strconv.Atoi(f); err != nil {
			digits = false
			break
		}
	}
	if digits {
		for _, f := range fields {
			idx, _ := strconv.Atoi(f)
			if idx < 1 || idx > len(elems) {
				return nil, fmt.Errorf("atom index %d out of range 1..%d",
					idx, len(elems))
			}
			mask[idx-1] = true
		}
		return mask, nil
	}
	keep := make(map[string]bool)
	for _, f := range fields {
		keep[f] = true
	}
	any := false
	for i, e := range elems {
		if keep[e] {
			mask[i] = true
			any = true
		}
	}
	if !any {
		return nil, fmt.Errorf("selection %q matches no atoms", sel)
	}
	return mask, nil
}

// plane is a group of coplanar atoms keyed by the projection of its
// first member
type plane struct {
	ref   float64
	atoms []int
}

// GroupPlanes buckets the selected atoms into planes whose
// projections agree within tol, ordered by projection
func GroupPlanes(proj []float64, mask []bool, tol float64) []plane {
	var planes []plane
	for i, p := range proj {
		if !mask[i] {
			continue
		}
		found := -1
		for j := range planes {
			if math.Abs(p-planes[j].ref) < tol {
				found = j
				break
			}
		}
		if found < 0 {
			planes = append(planes, plane{ref: p})
			found = len(planes) - 1
		}
		planes[found].atoms = append(planes[found].atoms, i)
	}
	sort.Slice(planes, func(i, j int) bool {
		return planes[i].ref < planes[j].ref
	})
	return planes
}

// Magmoms assigns +-moment to the masked atoms in blocks of layers
// planes, leaving unselected atoms at zero. The returned table
// lists one line per assigned atom
func Magmoms(p *Poscar, proj []float64, mask []bool, tol float64,
	layers int, moment float64) (moms []float64, table []string, nplanes int) {
	elems := p.Elements()
	frac := p.FracCoords()
	planes := GroupPlanes(proj, mask, tol)
	moms = make([]float64, p.Natoms())
	for pid, pl := range planes {
		sign := 1.0
		if (pid/layers)%2 == 1 {
			sign = -1.0
		}
		for _, idx := range pl.atoms {
			moms[idx] = sign * moment
			table = append(table, fmt.Sprintf(
				"%-10d %-7s %-8d %+d   %.3f %.3f %.3f",
				idx+1, elems[idx], pid, int(sign),
				frac[idx][0], frac[idx][1], frac[idx][2]))
		}
	}
	return moms, table, len(planes)
}

// MagmomLine formats the INCAR MAGMOM assignment
func MagmomLine(moms []float64) string {
	parts := make([]string, len(moms))
	for i, m := range moms {
		parts[i] = fmt.Sprintf("%+g", m)
	}
	return "MAGMOM = " + strings.Join(parts, "  ")
}

// RunMagmom reads the POSCAR in the working directory, groups the
// selected atoms into coplanar blocks along the MagAxis direction,
// and writes MAGMOM, coplanar_atoms.txt, and run_parameters.txt
func RunMagmom() error {
	p, err := LoadPoscar("POSCAR")
	if err != nil {
		return err
	}
	vec, err := ParseVector(Conf.Str(MagAxis))
	if err != nil {
		return err
	}
	mask, err := ParseAtomSelection(Conf.Str(MagAtoms), p.Elements())
	if err != nil {
		return err
	}
	// fractional axis vectors go through the lattice, Cartesian
	// ones are used as given
	ncart := vec
	if math.Abs(vec[0]) <= 1 && math.Abs(vec[1]) <= 1 && math.Abs(vec[2]) <= 1 {
		row := mat.NewDense(1, 3, []float64{vec[0], vec[1], vec[2]})
		var out mat.Dense
		out.Mul(row, p.latMat())
		ncart = [3]float64{out.At(0, 0), out.At(0, 1), out.At(0, 2)}
	}
	norm := math.Sqrt(ncart[0]*ncart[0] + ncart[1]*ncart[1] + ncart[2]*ncart[2])
	if norm == 0 {
		return fmt.Errorf("RunMagmom: zero projection axis")
	}
	cart := p.CartCoords()
	proj := make([]float64, len(cart))
	for i, c := range cart {
		proj[i] = (c[0]*ncart[0] + c[1]*ncart[1] + c[2]*ncart[2]) / norm
	}
	tol := Conf.Float(MagTol)
	layers := Conf.Int(MagLayers)
	moment := Conf.Float(MagMoment)
	moms, table, nplanes := Magmoms(p, proj, mask, tol, layers, moment)
	if err := os.WriteFile("MAGMOM",
		[]byte(MagmomLine(moms)+"\n"), 0644); err != nil {
		return err
	}
	fmt.Printf("created MAGMOM file with %d entries\n", len(moms))
	var buf strings.Builder
	buf.WriteString("atom_index element plane_ID sign frac_coords\n")
	buf.WriteString("---------------------------------------------\n")
	buf.WriteString(strings.Join(table, "\n") + "\n")
	if err := os.WriteFile("coplanar_atoms.txt",
		[]byte(buf.String()), 0644); err != nil {
		return err
	}
	nsel := 0
	for _, m := range mask {
		if m {
			nsel++
		}
	}
	params := fmt.Sprintf(`# vaspflow -magmom run parameters
magaxis=%s
magatoms=%s
magtol=%g
maglayers=%d
magmoment=%g
# atoms processed: %d/%d
# planes found: %d
`,
		Conf.Str(MagAxis), Conf.Str(MagAtoms), tol, layers, moment,
		nsel, p.Natoms(), nplanes)
	if err := os.WriteFile("run_parameters.txt", []byte(params), 0644); err != nil {
		return err
	}
	fmt.Printf("%d planes found (tol=%g A), sign repeats every %d plane(s)\n",
		nplanes, tol, layers)
	return nil
}
