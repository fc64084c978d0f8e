package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// relaxScript is a SubTmpl override whose "VASP" copies a canned
// OUTCAR into place and promotes POSCAR to CONTCAR. The round file
// counts submissions so early rounds can come back unconverged
const relaxScript = `#!/bin/sh
cd {{.Dir}}
n=0
test -f round && n=$(cat round)
n=$(expr $n + 1)
echo $n > round
if [ $n -lt 2 ]; then
	cp OUTCAR.unconverged OUTCAR
else
	cp OUTCAR.converged OUTCAR
fi
cp POSCAR CONTCAR
`

func stageRelaxDir(t *testing.T, tmpl string) (string, *Local) {
	t.Helper()
	good, err := os.ReadFile("testfiles/OUTCAR")
	if err != nil {
		t.Fatal(err)
	}
	unconv := strings.Replace(string(good),
		"reached required accuracy", "still relaxing", 1)
	dir := t.TempDir()
	if err := CopyFile("testfiles/POSCAR",
		filepath.Join(dir, "POSCAR")); err != nil {
		t.Fatal(err)
	}
	writeTestFile(t, filepath.Join(dir, "OUTCAR.converged"), string(good))
	writeTestFile(t, filepath.Join(dir, "OUTCAR.unconverged"), unconv)
	tf := filepath.Join(t.TempDir(), "sub.tmpl")
	writeTestFile(t, tf, tmpl)
	old := Conf.Str(SubTmpl)
	Conf.Set(SubTmpl, tf)
	t.Cleanup(func() { Conf.Set(SubTmpl, old) })
	return dir, NewLocal()
}

func TestRelax(t *testing.T) {
	dir, q := stageRelaxDir(t, relaxScript)
	oc, err := Relax(q, dir)
	if err != nil {
		t.Fatal(err)
	}
	if !oc.Converged {
		t.Errorf("got unconverged, wanted converged\n")
	}
	if !Completed(dir) {
		t.Errorf("converged directory not marked COMPLETED\n")
	}
	rounds, err := os.ReadFile(filepath.Join(dir, "round"))
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(rounds)); got != "2" {
		t.Errorf("got %s rounds, wanted 2\n", got)
	}
	// the unconverged geometry was promoted between rounds
	if _, err := os.Stat(filepath.Join(dir, "CONTCAR")); err != nil {
		t.Errorf("missing CONTCAR: %v\n", err)
	}
}

func TestRelaxNotConverged(t *testing.T) {
	dir, q := stageRelaxDir(t, `#!/bin/sh
cd {{.Dir}}
cp OUTCAR.unconverged OUTCAR
cp POSCAR CONTCAR
`)
	old := Conf.Int(MaxRelax)
	Conf.Set(MaxRelax, 2)
	defer Conf.Set(MaxRelax, old)
	if _, err := Relax(q, dir); err != ErrNotConverged {
		t.Errorf("got %v, wanted %v\n", err, ErrNotConverged)
	}
	if Completed(dir) {
		t.Errorf("unconverged directory marked COMPLETED\n")
	}
}
