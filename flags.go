package main

import (
	"flag"
	"fmt"
	"os"
)

const (
	help = `Requirements:
- vasp, vaspkit, and phonopy executables somewhere in PATH on the
  compute nodes (or override with the vasp=, vaspkit=, and phonopy=
  keywords)
- INCAR, KPOINTS, POTCAR, and POSCAR files in the working directory;
  sweeps copy the first three into every generated directory and
  write their own POSCAR
- an input file (default vaspflow.in) with key=value keywords;
  scales= and strains= accept either a space-separated list or a
  min:max:step range
Flags:
`
)

var (
	checkpoint = flag.Bool("c", false, "resume a sweep from its checkpoint file")
	count      = flag.Bool("count", false, "print the number of jobs a sweep would run and exit")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
	local      = flag.Bool("local", false, "run jobs directly instead of through sbatch")
	nosub      = flag.Bool("nosub", false, "stage sweep directories but do not submit anything")
	overwrite  = flag.Bool("o", false, "overwrite existing sweep directories")
	version    = flag.Bool("version", false, "print the version and exit")

	doRelax  = flag.Bool("relax", false, "run the iterative relaxation loop only")
	doStatic = flag.Bool("static", false, "run a static calculation only")
	doBands  = flag.Bool("bands", false, "run the band-structure step (vaspkit) only")
	doScale  = flag.Bool("scale", false, "run a lattice-scaling sweep")
	doStrain = flag.Bool("strain", false, "run a strain sweep")
	doDisp   = flag.Bool("disp", false, "generate phonopy displacement directories")
	doForces = flag.Bool("forces", false, "collect phonopy forces into FORCE_SETS")
	doParse  = flag.Bool("parse", false, "parse sweep results into summary.dat")
	doEos    = flag.Bool("eos", false, "fit an equation of state to a finished scale sweep")
	doMagmom = flag.Bool("magmom", false, "assign coplanar magnetic moments and write MAGMOM")
)

// ParseFlags parses command line flags and returns a slice of the
// remaining arguments
func ParseFlags() []string {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), help)
		flag.PrintDefaults()
	}
	flag.Parse()
	if *version {
		fmt.Printf("vaspflow version: %s\ncompiled at %s\n", VERSION, COMP_TIME)
		os.Exit(0)
	}
	return flag.Args()
}
