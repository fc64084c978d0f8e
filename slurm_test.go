package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteSub(t *testing.T) {
	job := &Job{
		Name:     "run.scale-1.0000",
		Dir:      "/tmp/sweep/scale-1.0000",
		Queue:    "skylake",
		NumCPUs:  8,
		Mem:      "16gb",
		Walltime: "24:00:00",
		Modules:  []string{"intel", "impi", "vasp"},
		Cmd:      "vasp_std",
	}
	s := NewSlurm()
	sub := filepath.Join(t.TempDir(), "sub.sh")
	s.WriteSub(sub, job)
	b, err := os.ReadFile(sub)
	if err != nil {
		t.Fatal(err)
	}
	got := string(b)
	for _, want := range []string{
		"#SBATCH --job-name=run.scale-1.0000",
		"#SBATCH --ntasks=8",
		"#SBATCH --mem=16gb",
		"#SBATCH --time=24:00:00",
		"#SBATCH --partition=skylake",
		"module load intel",
		"module load vasp",
		"cd /tmp/sweep/scale-1.0000",
		"mpirun -np 8 vasp_std > vasp.out",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("script missing %q:\n%s", want, got)
		}
	}
	// no partition directive without a queue
	job.Queue = ""
	s.WriteSub(sub, job)
	b, err = os.ReadFile(sub)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(b), "--partition") {
		t.Errorf("script has a partition directive for an empty queue\n")
	}
}

func TestStat(t *testing.T) {
	// squeue is absent on the test machine, so every watched job
	// reads as dead
	qstat := map[string]bool{"12345": true}
	s := NewSlurm()
	s.Stat(&qstat)
	if qstat["12345"] {
		t.Errorf("got alive, wanted dead\n")
	}
}
