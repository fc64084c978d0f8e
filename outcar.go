package main

import (
	"bufio"
	"errors"
	"os"
	"strconv"
	"strings"
)

// Errors used throughout
var (
	ErrFileNotFound      = errors.New("output file not found")
	ErrBlankOutput       = errors.New("output file exists but is blank")
	ErrFileContainsError = errors.New("output file contains an error")
	ErrNotFinished       = errors.New("output file is not finished")
	ErrEnergyNotFound    = errors.New("energy not found in output file")
	ErrNotConverged      = errors.New("relaxation did not reach required accuracy")
	ErrTimeout           = errors.New("timeout waiting for file")
)

// fatal VASP messages that mean the run will not recover
var vaspErrors = []string{
	"ZBRENT: fatal error",
	"EDDDAV: Call to ZHEGV failed",
	"ERROR FEXCP: supplied Exchange-correlation table",
	"TOO FEW BANDS",
	"I REFUSE TO CONTINUE",
	"Fatal error",
	"LAPACK: Routine ZPOTRF failed",
}

// Outcar holds the quantities scraped from one OUTCAR
type Outcar struct {
	Energy    float64 // final free  energy   TOTAL, eV
	Fermi     float64 // E-fermi, eV
	Mag       float64 // total magnetization, mu_B
	Pressure  float64 // external pressure, kB
	Steps     int     // ionic steps taken
	Converged bool    // reached required accuracy
	Finished  bool    // timing block written
}

// ReadOutcar scrapes an OUTCAR file and returns an error describing
// the status of the output. The returned Outcar is valid whenever
// the error is nil
func ReadOutcar(filename string) (*Outcar, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, ErrFileNotFound
	}
	defer f.Close()
	var (
		oc        Outcar
		gotEnergy bool
		lines     int
	)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		lines++
		switch {
		case strings.Contains(line, "free  energy   TOTAL"):
			fields := strings.Fields(line)
			if len(fields) < 2 {
				continue
			}
			v, err := strconv.ParseFloat(fields[len(fields)-2], 64)
			if err == nil {
				oc.Energy = v
				gotEnergy = true
				oc.Steps++
			}
		case strings.Contains(line, "E-fermi :"):
			fields := strings.Fields(line)
			if len(fields) > 2 {
				oc.Fermi, _ = strconv.ParseFloat(fields[2], 64)
			}
		case strings.Contains(line, "number of electron") &&
			strings.Contains(line, "magnetization"):
			fields := strings.Fields(line)
			oc.Mag, _ = strconv.ParseFloat(fields[len(fields)-1], 64)
		case strings.Contains(line, "external pressure ="):
			fields := strings.Fields(line)
			if len(fields) > 3 {
				oc.Pressure, _ = strconv.ParseFloat(fields[3], 64)
			}
		case strings.Contains(line, "reached required accuracy"):
			oc.Converged = true
		case strings.Contains(line, "General timing and accounting"):
			oc.Finished = true
		default:
			for _, e := range vaspErrors {
				if strings.Contains(line, e) {
					return &oc, ErrFileContainsError
				}
			}
		}
	}
	switch {
	case lines == 0:
		return &oc, ErrBlankOutput
	case !oc.Finished:
		return &oc, ErrNotFinished
	case !gotEnergy:
		return &oc, ErrEnergyNotFound
	}
	return &oc, nil
}
