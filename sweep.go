package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/stat/combin"
)

// files copied from the sweep root into every generated directory
var vaspInputs = []string{"INCAR", "KPOINTS", "POTCAR"}

// StageDir creates dir and copies the VASP input files from src into
// it. A directory already marked COMPLETED is left untouched; any
// other existing directory requires -o
func StageDir(dir, src string) error {
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		if Completed(dir) {
			return nil
		}
		if !*overwrite {
			log.Fatalf("StageDir: directory %q already exists, "+
				"overwrite with -o\n", dir)
		}
		os.RemoveAll(dir)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("StageDir: %w", err)
	}
	for _, f := range vaspInputs {
		if err := CopyFile(filepath.Join(src, f),
			filepath.Join(dir, f)); err != nil {
			return fmt.Errorf("StageDir: copying %s: %w", f, err)
		}
	}
	return nil
}

// BuildScale stages one directory per lattice scaling factor. With
// write false nothing touches the disk and only the job list is
// returned
func BuildScale(q Queue, p *Poscar, scales []float64, root string,
	write bool) []RunDir {
	dirs := make([]RunDir, 0, len(scales))
	for _, s := range scales {
		name := fmt.Sprintf("scale-%.4f", s)
		dir := filepath.Join(root, name)
		if write {
			if err := StageDir(dir, root); err != nil {
				errExit(err, "staging "+dir)
			}
			cp := *p
			cp.ApplyScale(s)
			if err := cp.Write(filepath.Join(dir, "POSCAR")); err != nil {
				errExit(err, "writing POSCAR in "+dir)
			}
			q.WriteSub(filepath.Join(dir, "sub.sh"), VaspJob(dir))
		}
		dirs = append(dirs, RunDir{Dir: dir, Val: name})
	}
	return dirs
}

// strainName formats the directory name for one strain combination,
// e.g. strain-a+0.010_c-0.010
func strainName(axes []string, eps []float64) string {
	parts := make([]string, len(axes))
	for i, ax := range axes {
		parts[i] = fmt.Sprintf("%s%+.3f", ax, eps[i])
	}
	return "strain-" + strings.Join(parts, "_")
}

// BuildStrain stages one directory per strain combination over the
// configured axes. Multi-axis grids take the Cartesian product of
// the strain list with itself
func BuildStrain(q Queue, p *Poscar, strains []float64, axes []string,
	root string, write bool) []RunDir {
	lens := make([]int, len(axes))
	for i := range lens {
		lens[i] = len(strains)
	}
	combos := combin.Cartesian(lens)
	dirs := make([]RunDir, 0, len(combos))
	for _, combo := range combos {
		eps := make([]float64, len(axes))
		for i, ci := range combo {
			eps[i] = strains[ci]
		}
		name := strainName(axes, eps)
		dir := filepath.Join(root, name)
		if write {
			if err := StageDir(dir, root); err != nil {
				errExit(err, "staging "+dir)
			}
			cp := *p
			for i, ax := range axes {
				cp.ApplyStrain(AxisIndex(ax), eps[i])
			}
			if err := cp.Write(filepath.Join(dir, "POSCAR")); err != nil {
				errExit(err, "writing POSCAR in "+dir)
			}
			q.WriteSub(filepath.Join(dir, "sub.sh"), VaspJob(dir))
		}
		dirs = append(dirs, RunDir{Dir: dir, Val: name})
	}
	return dirs
}

// RunDirs pushes the staged directories through the queue in chunks
// of at most JobLimit and waits out each chunk before submitting the
// next. Directories already recorded in the checkpoint are skipped
func RunDirs(q Queue, dirs []RunDir, chk *Checkpoint) (failed []string) {
	todo := make([]RunDir, 0, len(dirs))
	for _, d := range dirs {
		if chk.Done[d.Val] {
			continue
		}
		todo = append(todo, d)
	}
	limit := Conf.Int(JobLimit)
	for len(todo) > 0 {
		end := limit
		if end > len(todo) {
			end = len(todo)
		}
		chunk := SubmitDirs(q, todo[:end])
		failed = append(failed, WaitJobs(q, chunk, chk)...)
		todo = todo[end:]
	}
	return
}
