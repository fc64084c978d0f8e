package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Displace runs phonopy displacement generation in dir and stages
// one job directory per generated POSCAR-NNN
func Displace(dir string) ([]RunDir, error) {
	dim := Conf.Str(PhonopyDim)
	err := RunCommand(dir, Conf.Str(PhonopyCmd),
		[]string{"-d", "--dim=" + dim}, "", "phonopy.log")
	if err != nil {
		return nil, err
	}
	disps, err := filepath.Glob(filepath.Join(dir, "POSCAR-[0-9]*"))
	if err != nil {
		return nil, err
	}
	if len(disps) == 0 {
		return nil, fmt.Errorf("Displace: phonopy generated no displacements in %s", dir)
	}
	sort.Strings(disps)
	dirs := make([]RunDir, 0, len(disps))
	for _, d := range disps {
		num := strings.TrimPrefix(filepath.Base(d), "POSCAR-")
		sub := filepath.Join(dir, "disp-"+num)
		if err := StageDir(sub, dir); err != nil {
			return nil, err
		}
		if err := os.Rename(d, filepath.Join(sub, "POSCAR")); err != nil {
			return nil, err
		}
		dirs = append(dirs, RunDir{Dir: sub, Val: "disp-" + num})
	}
	return dirs, nil
}

// CollectForces gathers the vasprun.xml files of finished
// displacement runs into FORCE_SETS
func CollectForces(dir string) error {
	runs, err := filepath.Glob(filepath.Join(dir, "disp-*", "vasprun.xml"))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return fmt.Errorf("CollectForces: no finished displacements in %s", dir)
	}
	sort.Strings(runs)
	// phonopy runs in dir, hand it relative paths
	args := []string{"-f"}
	for _, r := range runs {
		rel, err := filepath.Rel(dir, r)
		if err != nil {
			rel = r
		}
		args = append(args, rel)
	}
	if err := RunCommand(dir, Conf.Str(PhonopyCmd), args, "", "phonopy.log"); err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Join(dir, "FORCE_SETS")); err != nil {
		return fmt.Errorf("CollectForces: phonopy wrote no FORCE_SETS in %s", dir)
	}
	return nil
}
