package main

import (
	"strconv"
	"strings"
)

// BandGap holds the summary table vaspkit writes to BAND_GAP
type BandGap struct {
	Character string  // Direct, Indirect, or Metallic
	Gap       float64 // eV
	VBM       float64 // eV
	CBM       float64 // eV
	Fermi     float64 // eV
	HOMO      int
	LUMO      int
	VBMLoc    [3]float64
	CBMLoc    [3]float64
}

func lastFloat(fields []string) float64 {
	v, _ := strconv.ParseFloat(fields[len(fields)-1], 64)
	return v
}

func lastKpoint(fields []string) (k [3]float64) {
	if len(fields) < 3 {
		return
	}
	for i := 0; i < 3; i++ {
		k[i], _ = strconv.ParseFloat(fields[len(fields)-3+i], 64)
	}
	return
}

// ReadBandGap scrapes a vaspkit BAND_GAP file
func ReadBandGap(filename string) (*BandGap, error) {
	lines, err := ReadFile(filename)
	if err != nil {
		return nil, ErrFileNotFound
	}
	if len(lines) == 0 {
		return nil, ErrBlankOutput
	}
	var (
		bg    BandGap
		found bool
	)
	for _, line := range lines {
		sp := strings.SplitN(line, ":", 2)
		if len(sp) != 2 {
			continue
		}
		key := strings.TrimSpace(sp[0])
		fields := strings.Fields(sp[1])
		if len(fields) == 0 {
			continue
		}
		switch {
		case strings.Contains(key, "Band Character"):
			bg.Character = fields[0]
		case strings.Contains(key, "Band Gap"):
			bg.Gap = lastFloat(fields)
			found = true
		case strings.Contains(key, "Eigenvalue of VBM"):
			bg.VBM = lastFloat(fields)
		case strings.Contains(key, "Eigenvalue of CBM"):
			bg.CBM = lastFloat(fields)
		case strings.Contains(key, "Fermi Energy"):
			bg.Fermi = lastFloat(fields)
		case strings.Contains(key, "HOMO & LUMO"):
			if len(fields) >= 2 {
				bg.HOMO, _ = strconv.Atoi(fields[0])
				bg.LUMO, _ = strconv.Atoi(fields[1])
			}
		case strings.Contains(key, "Location of VBM"):
			bg.VBMLoc = lastKpoint(fields)
		case strings.Contains(key, "Location of CBM"):
			bg.CBMLoc = lastKpoint(fields)
		}
	}
	if !found {
		return nil, ErrEnergyNotFound
	}
	return &bg, nil
}
