package main

import (
	"path/filepath"
	"strings"
)

// vaspkit numeric menu codes
const (
	taskKPath   = "302" // generate KPATH.in for band structures
	taskBand    = "303" // process band structure data
	taskBandGap = "911" // band gap summary from EIGENVAL
)

// RunVaspkit drives vaspkit in dir by feeding menu codes on its
// standard input, one per line, capturing output in vaspkit.log
func RunVaspkit(dir string, codes ...string) error {
	stdin := strings.Join(codes, "\n") + "\n"
	return RunCommand(dir, Conf.Str(VaspkitCmd), nil, stdin, "vaspkit.log")
}

// MakeKpath generates a band-structure KPOINTS file in dir by asking
// vaspkit for a k-path and promoting KPATH.in
func MakeKpath(dir string) error {
	if err := RunVaspkit(dir, taskKPath); err != nil {
		return err
	}
	return CopyFile(filepath.Join(dir, "KPATH.in"),
		filepath.Join(dir, "KPOINTS"))
}

// GapReport post-processes a finished band run in dir and returns
// the scraped gap summary
func GapReport(dir string) (*BandGap, error) {
	if err := RunVaspkit(dir, taskBandGap); err != nil {
		return nil, err
	}
	return ReadBandGap(filepath.Join(dir, "BAND_GAP"))
}

// BandData runs the vaspkit band-structure task, leaving BAND.dat
// and friends in dir for plotting
func BandData(dir string) error {
	return RunVaspkit(dir, taskBand)
}
