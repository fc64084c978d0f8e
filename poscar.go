package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Poscar holds the contents of a VASP POSCAR/CONTCAR file. Lattice
// rows are the lattice vectors as written, without the universal
// scaling constant applied
type Poscar struct {
	Comment   string
	Scale     float64
	Lattice   [3][3]float64
	Symbols   []string
	Counts    []int
	Selective bool
	Cartesian bool
	Coords    [][3]float64
	Flags     []string
}

// Natoms returns the total number of atoms
func (p *Poscar) Natoms() (n int) {
	for _, c := range p.Counts {
		n += c
	}
	return
}

// Elements expands the symbol/count header into a per-atom symbol
// list
func (p *Poscar) Elements() (elems []string) {
	for i, s := range p.Symbols {
		for j := 0; j < p.Counts[i]; j++ {
			elems = append(elems, s)
		}
	}
	return
}

// latMat returns the scaled lattice as a gonum matrix with lattice
// vectors as rows
func (p *Poscar) latMat() *mat.Dense {
	data := make([]float64, 0, 9)
	for _, row := range p.Lattice {
		for _, v := range row {
			data = append(data, v*p.Scale)
		}
	}
	return mat.NewDense(3, 3, data)
}

// Volume returns the scaled cell volume in cubic Angstroms
func (p *Poscar) Volume() float64 {
	v := mat.Det(p.latMat())
	if v < 0 {
		v = -v
	}
	return v
}

// FracCoords returns the atomic positions in fractional coordinates,
// converting through the inverse lattice if the file was Cartesian
func (p *Poscar) FracCoords() [][3]float64 {
	if !p.Cartesian {
		return p.Coords
	}
	var inv mat.Dense
	if err := inv.Inverse(p.latMat()); err != nil {
		panic(fmt.Sprintf("singular lattice: %v", err))
	}
	frac := make([][3]float64, len(p.Coords))
	for i, c := range p.Coords {
		// Cartesian positions carry the scaling constant too
		row := mat.NewDense(1, 3, []float64{
			c[0] * p.Scale, c[1] * p.Scale, c[2] * p.Scale,
		})
		var out mat.Dense
		out.Mul(row, &inv)
		frac[i] = [3]float64{out.At(0, 0), out.At(0, 1), out.At(0, 2)}
	}
	return frac
}

// CartCoords returns the atomic positions in Cartesian Angstroms
func (p *Poscar) CartCoords() [][3]float64 {
	if p.Cartesian {
		cart := make([][3]float64, len(p.Coords))
		for i, c := range p.Coords {
			cart[i] = [3]float64{
				c[0] * p.Scale, c[1] * p.Scale, c[2] * p.Scale,
			}
		}
		return cart
	}
	lat := p.latMat()
	cart := make([][3]float64, len(p.Coords))
	for i, c := range p.Coords {
		row := mat.NewDense(1, 3, []float64{c[0], c[1], c[2]})
		var out mat.Dense
		out.Mul(row, lat)
		cart[i] = [3]float64{out.At(0, 0), out.At(0, 1), out.At(0, 2)}
	}
	return cart
}

// ApplyScale multiplies the universal scaling constant by f
func (p *Poscar) ApplyScale(f float64) {
	p.Scale *= f
}

// ApplyStrain stretches one lattice vector by 1+eps. axis is 0, 1,
// or 2 for a, b, or c
func (p *Poscar) ApplyStrain(axis int, eps float64) {
	for i := range p.Lattice[axis] {
		p.Lattice[axis][i] *= 1 + eps
	}
}

// AxisIndex maps a lattice vector name to its row index
func AxisIndex(ax string) int {
	switch ax {
	case "a":
		return 0
	case "b":
		return 1
	case "c":
		return 2
	}
	panic("bad lattice axis " + ax)
}

// LoadPoscar reads a POSCAR or CONTCAR file. VASP 4 files without an
// element symbol line are an error
func LoadPoscar(filename string) (*Poscar, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) < 8 {
		return nil, fmt.Errorf("LoadPoscar: %s: truncated file", filename)
	}
	var p Poscar
	p.Comment = strings.TrimSpace(lines[0])
	p.Scale, err = strconv.ParseFloat(strings.TrimSpace(lines[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("LoadPoscar: %s: bad scale line: %v", filename, err)
	}
	for i := 0; i < 3; i++ {
		fields := strings.Fields(lines[2+i])
		if len(fields) < 3 {
			return nil, fmt.Errorf("LoadPoscar: %s: bad lattice line %q",
				filename, lines[2+i])
		}
		for j := 0; j < 3; j++ {
			p.Lattice[i][j], err = strconv.ParseFloat(fields[j], 64)
			if err != nil {
				return nil, fmt.Errorf("LoadPoscar: %s: bad lattice line %q",
					filename, lines[2+i])
			}
		}
	}
	p.Symbols = strings.Fields(lines[5])
	if len(p.Symbols) == 0 {
		return nil, fmt.Errorf("LoadPoscar: %s: empty symbol line", filename)
	}
	if _, err := strconv.Atoi(p.Symbols[0]); err == nil {
		return nil, fmt.Errorf(
			"LoadPoscar: %s: VASP 4 file without element symbols", filename)
	}
	for _, f := range strings.Fields(lines[6]) {
		c, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("LoadPoscar: %s: bad count line %q",
				filename, lines[6])
		}
		p.Counts = append(p.Counts, c)
	}
	if len(p.Counts) != len(p.Symbols) {
		return nil, fmt.Errorf(
			"LoadPoscar: %s: %d symbols but %d counts",
			filename, len(p.Symbols), len(p.Counts))
	}
	ptr := 7
	if len(lines[ptr]) > 0 {
		switch lines[ptr][0] {
		case 's', 'S':
			p.Selective = true
			ptr++
		}
	}
	if len(lines) <= ptr {
		return nil, fmt.Errorf("LoadPoscar: %s: truncated file", filename)
	}
	mode := strings.TrimSpace(lines[ptr])
	if mode == "" {
		return nil, fmt.Errorf("LoadPoscar: %s: bad coordinate mode %q",
			filename, lines[ptr])
	}
	switch mode[0] {
	case 'c', 'C', 'k', 'K':
		p.Cartesian = true
	case 'd', 'D':
	default:
		return nil, fmt.Errorf("LoadPoscar: %s: bad coordinate mode %q",
			filename, lines[ptr])
	}
	ptr++
	natoms := p.Natoms()
	if len(lines) < ptr+natoms {
		return nil, fmt.Errorf("LoadPoscar: %s: want %d atoms, file ends early",
			filename, natoms)
	}
	for i := 0; i < natoms; i++ {
		fields := strings.Fields(lines[ptr+i])
		if len(fields) < 3 {
			return nil, fmt.Errorf("LoadPoscar: %s: bad coordinate line %q",
				filename, lines[ptr+i])
		}
		var c [3]float64
		for j := 0; j < 3; j++ {
			c[j], err = strconv.ParseFloat(fields[j], 64)
			if err != nil {
				return nil, fmt.Errorf("LoadPoscar: %s: bad coordinate line %q",
					filename, lines[ptr+i])
			}
		}
		p.Coords = append(p.Coords, c)
		if p.Selective && len(fields) >= 6 {
			p.Flags = append(p.Flags, strings.Join(fields[3:6], " "))
		} else if p.Selective {
			p.Flags = append(p.Flags, "T T T")
		}
	}
	return &p, nil
}

func (p *Poscar) String() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%s\n", p.Comment)
	fmt.Fprintf(&buf, "%20.14f\n", p.Scale)
	for _, row := range p.Lattice {
		fmt.Fprintf(&buf, " %21.16f %21.16f %21.16f\n", row[0], row[1], row[2])
	}
	fmt.Fprintf(&buf, "  %s\n", strings.Join(p.Symbols, "  "))
	for i, c := range p.Counts {
		if i > 0 {
			fmt.Fprintf(&buf, " ")
		}
		fmt.Fprintf(&buf, "  %d", c)
	}
	fmt.Fprintf(&buf, "\n")
	if p.Selective {
		fmt.Fprintf(&buf, "Selective dynamics\n")
	}
	if p.Cartesian {
		fmt.Fprintf(&buf, "Cartesian\n")
	} else {
		fmt.Fprintf(&buf, "Direct\n")
	}
	for i, c := range p.Coords {
		fmt.Fprintf(&buf, " %19.16f %19.16f %19.16f", c[0], c[1], c[2])
		if p.Selective {
			fmt.Fprintf(&buf, "   %s", p.Flags[i])
		}
		fmt.Fprintf(&buf, "\n")
	}
	return buf.String()
}

// Write writes p in the fixed POSCAR layout
func (p *Poscar) Write(filename string) error {
	return os.WriteFile(filename, []byte(p.String()), 0644)
}
