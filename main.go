/*
Push-button VASP workflows
--------------------------
The goal of this program is to streamline the cluster chores around
VASP: staging and submitting parameter sweeps (lattice scaling,
strain, phonopy displacements), babysitting relaxations, and scraping
OUTCAR, BAND_GAP, and vasprun.xml into summary tables.
*/

package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"
)

// RunStatic stages and runs a static calculation in root/static,
// starting from the relaxed geometry in root
func RunStatic(q Queue, root string) (*Outcar, error) {
	dir := filepath.Join(root, "static")
	if Completed(dir) {
		fmt.Printf("%s already completed, skipping static run\n", dir)
		return ReadOutcar(filepath.Join(dir, "OUTCAR"))
	}
	if err := StageDir(dir, root); err != nil {
		return nil, err
	}
	src := filepath.Join(root, "CONTCAR")
	if _, err := os.Stat(src); err != nil {
		src = filepath.Join(root, "POSCAR")
	}
	if err := CopyFile(src, filepath.Join(dir, "POSCAR")); err != nil {
		return nil, err
	}
	incar := filepath.Join(dir, "INCAR")
	if err := SetIncarTag(incar, "IBRION", "-1"); err != nil {
		return nil, err
	}
	if err := SetIncarTag(incar, "NSW", "0"); err != nil {
		return nil, err
	}
	r := RunDir{Dir: dir, Val: "static"}
	q.WriteSub(r.SubFile(), VaspJob(dir))
	r.JobID = q.Submit(r.SubFile())
	Global.Submitted++
	oc, err := waitOutcar(q, &r)
	if err != nil {
		return oc, err
	}
	MarkCompleted(dir)
	return oc, nil
}

// RunBands stages root/bands from the static run, generates the
// band-structure k-path with vaspkit, runs VASP, and scrapes the gap
func RunBands(q Queue, root string) (*BandGap, error) {
	dir := filepath.Join(root, "bands")
	static := filepath.Join(root, "static")
	src := root
	if _, err := os.Stat(static); err == nil {
		src = static
	}
	if !Completed(dir) {
		if err := StageDir(dir, root); err != nil {
			return nil, err
		}
		if err := CopyFile(filepath.Join(src, "POSCAR"),
			filepath.Join(dir, "POSCAR")); err != nil {
			return nil, err
		}
		// band runs read the converged charge density
		if err := CopyFile(filepath.Join(src, "CHGCAR"),
			filepath.Join(dir, "CHGCAR")); err == nil {
			if err := SetIncarTag(filepath.Join(dir, "INCAR"),
				"ICHARG", "11"); err != nil {
				return nil, err
			}
		} else {
			Warn("no CHGCAR in %s, band run will be self-consistent", src)
		}
		if err := MakeKpath(dir); err != nil {
			return nil, err
		}
		r := RunDir{Dir: dir, Val: "bands"}
		q.WriteSub(r.SubFile(), VaspJob(dir))
		r.JobID = q.Submit(r.SubFile())
		Global.Submitted++
		if _, err := waitOutcar(q, &r); err != nil {
			return nil, err
		}
		MarkCompleted(dir)
	}
	if err := BandData(dir); err != nil {
		Warn("vaspkit band task failed in %s: %v", dir, err)
	}
	return GapReport(dir)
}

// sweepChk builds or resumes the checkpoint for a sweep
func sweepChk(kind string) *Checkpoint {
	if *checkpoint {
		return LoadCheckpoint(kind)
	}
	return NewCheckpoint(kind)
}

// finishSweep waits out a staged sweep and writes its summary table
func finishSweep(q Queue, kind string, dirs []RunDir) {
	if *count {
		fmt.Printf("%s sweep: %d jobs\n", kind, len(dirs))
		return
	}
	if *nosub {
		fmt.Printf("staged %d %s directories\n", len(dirs), kind)
		return
	}
	failed := RunDirs(q, dirs, sweepChk(kind))
	if len(failed) > 0 {
		Warn("%d %s directories failed, see failed_dirs.txt",
			len(failed), kind)
	}
	rows, err := ParseSweep(".", kind)
	if err != nil {
		errExit(err, "parsing "+kind+" sweep")
	}
	if err := WriteSummary(".", rows); err != nil {
		errExit(err, "writing summary.dat")
	}
	fmt.Print(SummaryTable(rows))
}

// RunScale stages and runs a lattice-scaling sweep in the working
// directory
func RunScale(q Queue) {
	p, err := LoadPoscar("POSCAR")
	if err != nil {
		errExit(err, "loading POSCAR")
	}
	scales := Conf.FlSlice(Scales)
	if len(scales) == 0 {
		log.Fatal("vaspflow: -scale requires the scales= keyword")
	}
	dirs := BuildScale(q, p, scales, ".", !*count)
	finishSweep(q, "scale", dirs)
}

// RunStrain stages and runs a strain sweep in the working directory
func RunStrain(q Queue) {
	p, err := LoadPoscar("POSCAR")
	if err != nil {
		errExit(err, "loading POSCAR")
	}
	strains := Conf.FlSlice(Strains)
	if len(strains) == 0 {
		log.Fatal("vaspflow: -strain requires the strains= keyword")
	}
	dirs := BuildStrain(q, p, strains, Conf.StrSlice(StrainAxes), ".", !*count)
	finishSweep(q, "strain", dirs)
}

// RunDisp generates phonopy displacements, runs them, and collects
// FORCE_SETS when every displacement finishes
func RunDisp(q Queue) {
	dirs, err := Displace(".")
	if err != nil {
		errExit(err, "generating displacements")
	}
	for i := range dirs {
		q.WriteSub(dirs[i].SubFile(), VaspJob(dirs[i].Dir))
	}
	if *count {
		fmt.Printf("disp sweep: %d jobs\n", len(dirs))
		return
	}
	if *nosub {
		fmt.Printf("staged %d displacement directories\n", len(dirs))
		return
	}
	failed := RunDirs(q, dirs, sweepChk("disp"))
	if len(failed) > 0 {
		Warn("%d displacements failed, see failed_dirs.txt", len(failed))
		return
	}
	if err := CollectForces("."); err != nil {
		errExit(err, "collecting forces")
	}
	fmt.Println("wrote FORCE_SETS")
}

// RunEos fits an equation of state to a finished scale sweep
func RunEos() {
	rows, err := ParseSweep(".", "scale")
	if err != nil {
		errExit(err, "parsing scale sweep")
	}
	vols := make([]float64, 0, len(rows))
	energies := make([]float64, 0, len(rows))
	for _, r := range rows {
		if r.Volume > 0 {
			vols = append(vols, r.Volume)
			energies = append(energies, r.Energy)
		}
	}
	eos, err := FitEOS(vols, energies)
	if err != nil {
		errExit(err, "fitting equation of state")
	}
	p, err := LoadPoscar("POSCAR")
	if err != nil {
		errExit(err, "loading POSCAR")
	}
	if err := WriteEOS(".", eos, p.Volume()); err != nil {
		errExit(err, "writing eos.dat")
	}
	fmt.Printf("E0 = %.8f eV, V0 = %.6f A^3, B0 = %.4f GPa, scale = %.6f\n",
		eos.E0, eos.V0, eos.B0, eos.ScaleAt(p.Volume()))
}

// RunParse scrapes whichever sweeps are present in the working
// directory
func RunParse() {
	found := false
	for _, kind := range []string{"scale", "strain", "disp"} {
		rows, err := ParseSweep(".", kind)
		if err != nil {
			continue
		}
		found = true
		if err := WriteSummary(".", rows); err != nil {
			errExit(err, "writing summary.dat")
		}
		fmt.Print(SummaryTable(rows))
	}
	if !found {
		log.Fatal("vaspflow: no sweep directories to parse")
	}
}

func main() {
	args := ParseFlags()
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}
	infile := "vaspflow.in"
	if len(args) > 0 {
		infile = args[0]
		ParseInfile(infile)
	} else if _, err := os.Stat(infile); err == nil {
		ParseInfile(infile)
	} else {
		// acceptable for keyword-light modes like -parse; the
		// post-parse hooks still have to run
		Conf.WhichCluster()
		Conf.ProcessSweeps()
	}
	var q Queue = NewSlurm()
	if *local {
		q = NewLocal()
	}
	switch {
	case *doMagmom:
		if err := RunMagmom(); err != nil {
			errExit(err, "assigning magnetic moments")
		}
	case *doParse:
		RunParse()
	case *doEos:
		RunEos()
	case *doScale:
		RunScale(q)
	case *doStrain:
		RunStrain(q)
	case *doDisp:
		RunDisp(q)
	case *doForces:
		if err := CollectForces("."); err != nil {
			errExit(err, "collecting forces")
		}
		fmt.Println("wrote FORCE_SETS")
	case *doRelax:
		if _, err := Relax(q, "."); err != nil {
			errExit(err, "relaxing structure")
		}
	case *doStatic:
		if _, err := RunStatic(q, "."); err != nil {
			errExit(err, "running static calculation")
		}
	case *doBands:
		bg, err := RunBands(q, ".")
		if err != nil {
			errExit(err, "running band structure")
		}
		fmt.Printf("%s gap of %.4f eV (VBM %.4f, CBM %.4f)\n",
			bg.Character, bg.Gap, bg.VBM, bg.CBM)
	default:
		// the whole pipeline: relax, static, bands, report
		oc, err := Relax(q, ".")
		if err != nil {
			errExit(err, "relaxing structure")
		}
		fmt.Printf("relaxed energy %.8f eV after %d steps\n",
			oc.Energy, oc.Steps)
		soc, err := RunStatic(q, ".")
		if err != nil {
			errExit(err, "running static calculation")
		}
		fmt.Printf("static energy %.8f eV, E-fermi %.4f eV, mag %.3f\n",
			soc.Energy, soc.Fermi, soc.Mag)
		bg, err := RunBands(q, ".")
		if err != nil {
			errExit(err, "running band structure")
		}
		fmt.Printf("%s gap of %.4f eV (VBM %.4f, CBM %.4f)\n",
			bg.Character, bg.Gap, bg.VBM, bg.CBM)
	}
	if Global.Warnings > 0 {
		fmt.Printf("%d warnings\n", Global.Warnings)
	}
	fmt.Printf("%d jobs submitted\n", Global.Submitted)
}
