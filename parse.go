package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/floats"
)

// Row is one parsed sweep directory in a summary table
type Row struct {
	Dir    string
	Volume float64
	Energy float64
	Mag    float64
	Gap    float64
	HasGap bool
}

// sweepVals parses the numeric components out of a sweep directory
// name, so strain-a+0.010_c-0.010 yields [0.010, -0.010]
func sweepVals(dir, prefix string) []float64 {
	rest := strings.TrimPrefix(filepath.Base(dir), prefix+"-")
	var vals []float64
	for _, part := range strings.Split(rest, "_") {
		part = strings.TrimLeftFunc(part, unicode.IsLetter)
		if v, err := strconv.ParseFloat(part, 64); err == nil {
			vals = append(vals, v)
		}
	}
	return vals
}

// sortSweep orders sweep directories by their parsed values, not
// their names; lexical order puts + before - and misorders negative
// strains
func sortSweep(dirs []string, prefix string) {
	sort.Slice(dirs, func(i, j int) bool {
		vi := sweepVals(dirs[i], prefix)
		vj := sweepVals(dirs[j], prefix)
		for k := 0; k < len(vi) && k < len(vj); k++ {
			if vi[k] != vj[k] {
				return vi[k] < vj[k]
			}
		}
		return dirs[i] < dirs[j]
	})
}

// ParseSweep walks the sweep directories matching prefix-* under
// root in value order and scrapes each OUTCAR, plus BAND_GAP when
// vaspkit left one. Unreadable directories go to failed_dirs.txt and
// are skipped
func ParseSweep(root, prefix string) ([]Row, error) {
	pat := filepath.Join(root, prefix+"-*")
	matches, err := filepath.Glob(pat)
	if err != nil {
		return nil, err
	}
	dirs := make([]string, 0, len(matches))
	for _, m := range matches {
		if fi, err := os.Stat(m); err == nil && fi.IsDir() {
			dirs = append(dirs, m)
		}
	}
	if len(dirs) == 0 {
		return nil, fmt.Errorf("ParseSweep: no directories match %s", pat)
	}
	sortSweep(dirs, prefix)
	rows := make([]Row, 0, len(dirs))
	for _, dir := range dirs {
		oc, err := ReadOutcar(filepath.Join(dir, "OUTCAR"))
		if err != nil {
			Warn("skipping %s: %v", dir, err)
			AppendFailed(dir, err)
			continue
		}
		row := Row{Dir: filepath.Base(dir), Energy: oc.Energy, Mag: oc.Mag}
		if p, err := LoadPoscar(filepath.Join(dir, "POSCAR")); err == nil {
			row.Volume = p.Volume()
		}
		if bg, err := ReadBandGap(filepath.Join(dir, "BAND_GAP")); err == nil {
			row.Gap = bg.Gap
			row.HasGap = true
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("ParseSweep: nothing readable under %s", pat)
	}
	return rows, nil
}

// SummaryTable formats rows with energies relative to the sweep
// minimum in the fourth column
func SummaryTable(rows []Row) string {
	energies := make([]float64, len(rows))
	for i, r := range rows {
		energies[i] = r.Energy
	}
	min := floats.Min(energies)
	var buf strings.Builder
	fmt.Fprintf(&buf, "#%19s%15s%18s%15s%10s%10s\n",
		"dir", "vol(A^3)", "energy(eV)", "rel(eV)", "gap(eV)", "mag")
	for _, r := range rows {
		gap := "-"
		if r.HasGap {
			gap = fmt.Sprintf("%.4f", r.Gap)
		}
		fmt.Fprintf(&buf, "%20s%15.4f%18.8f%15.8f%10s%10.3f\n",
			r.Dir, r.Volume, r.Energy, r.Energy-min, gap, r.Mag)
	}
	return buf.String()
}

// WriteSummary writes the summary table for a parsed sweep to
// summary.dat in root
func WriteSummary(root string, rows []Row) error {
	return os.WriteFile(filepath.Join(root, "summary.dat"),
		[]byte(SummaryTable(rows)), 0644)
}
