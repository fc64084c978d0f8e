package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// waitOutcar blocks until dir/OUTCAR reaches a terminal state,
// resubmitting the job on transient errors up to MaxResub times
func waitOutcar(q Queue, r *RunDir) (*Outcar, error) {
	outfile := filepath.Join(r.Dir, "OUTCAR")
	sleep := time.Duration(Conf.Int(SleepInt)) * time.Second
	for {
		oc, err := ReadOutcar(outfile)
		switch err {
		case nil:
			return oc, nil
		case ErrFileNotFound:
			WaitFile(r.Dir, "OUTCAR", sleep)
		case ErrNotFinished:
			time.Sleep(sleep)
		case ErrFileContainsError, ErrBlankOutput, ErrEnergyNotFound:
			if r.Resubs >= Conf.Int(MaxResub) {
				return oc, err
			}
			fmt.Fprintln(os.Stderr, "resubmitting for", err)
			os.Remove(outfile)
			r.JobID = q.Submit(r.SubFile())
			r.Resubs++
		default:
			return oc, err
		}
	}
}

// Relax runs the iterative relaxation loop in dir: submit, wait for
// OUTCAR, and if the run finished without reaching the required
// accuracy, promote CONTCAR to POSCAR and go again, up to MaxRelax
// rounds. A converged directory is marked COMPLETED
func Relax(q Queue, dir string) (*Outcar, error) {
	if Completed(dir) {
		oc, err := ReadOutcar(filepath.Join(dir, "OUTCAR"))
		if err == nil {
			fmt.Printf("%s already completed, skipping relaxation\n", dir)
			return oc, nil
		}
		// sentinel without a readable OUTCAR, run it again
		os.Remove(filepath.Join(dir, "COMPLETED"))
	}
	r := RunDir{Dir: dir, Val: filepath.Base(dir)}
	q.WriteSub(r.SubFile(), VaspJob(dir))
	for iter := 1; iter <= Conf.Int(MaxRelax); iter++ {
		fmt.Printf("relaxation round %d in %s\n", iter, dir)
		r.JobID = q.Submit(r.SubFile())
		Global.Submitted++
		oc, err := waitOutcar(q, &r)
		if err != nil {
			return oc, err
		}
		if oc.Converged {
			MarkCompleted(dir)
			// leave the converged geometry as the POSCAR for
			// whatever runs next
			if err := CopyFile(filepath.Join(dir, "CONTCAR"),
				filepath.Join(dir, "POSCAR")); err != nil {
				Warn("cannot promote CONTCAR in %s: %v", dir, err)
			}
			return oc, nil
		}
		if err := CopyFile(filepath.Join(dir, "CONTCAR"),
			filepath.Join(dir, "POSCAR")); err != nil {
			return oc, fmt.Errorf("Relax: no CONTCAR to continue from: %w", err)
		}
		os.Remove(filepath.Join(dir, "OUTCAR"))
	}
	return nil, ErrNotConverged
}
