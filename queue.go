package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// Queue is an interface over batch schedulers so the pipeline can
// also run without one
type Queue interface {
	WriteSub(string, *Job)
	Submit(string) string
	Stat(*map[string]bool)
}

// Local runs submission scripts synchronously in the current
// process, for machines without a scheduler and for tests
type Local struct {
	*Slurm
}

func NewLocal() *Local {
	return &Local{NewSlurm()}
}

// Submit runs the script directly instead of handing it to sbatch
func (l *Local) Submit(filename string) string {
	cmd := exec.Command("bash", filename)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Local.Submit: %s failed with %v\n",
			filename, err)
	}
	return ""
}

// Stat is a no-op for a local queue; by the time Submit returns the
// job has already run
func (l *Local) Stat(qstat *map[string]bool) {}

// RunDir is one staged calculation directory being watched
type RunDir struct {
	Dir    string
	Val    string // formatted sweep value, used as the summary key
	JobID  string
	Resubs int
}

// SubFile returns the submission script path inside r.Dir
func (r *RunDir) SubFile() string {
	return filepath.Join(r.Dir, "sub.sh")
}

// SubmitDirs submits every staged directory that is not already
// marked COMPLETED and records the jobids
func SubmitDirs(q Queue, dirs []RunDir) []RunDir {
	run := make([]RunDir, 0, len(dirs))
	for _, d := range dirs {
		if Completed(d.Dir) {
			continue
		}
		d.JobID = q.Submit(d.SubFile())
		Global.Submitted++
		run = append(run, d)
	}
	return run
}

// WaitJobs polls the outstanding directories until every one has a
// finished OUTCAR or runs out of resubmissions. Finished results are
// stored in the checkpoint as they arrive; unrecoverable directories
// are appended to failed_dirs.txt and skipped
func WaitJobs(q Queue, dirs []RunDir, chk *Checkpoint) (failed []string) {
	var (
		nJobs  = len(dirs)
		round  int
		qstat  = make(map[string]bool)
		maxRes = Conf.Int(MaxResub)
	)
	for _, d := range dirs {
		if d.JobID != "" {
			qstat[d.JobID] = true
		}
	}
	for nJobs > 0 {
		shortenBy := 0
		for i := 0; i < nJobs; i++ {
			job := &dirs[i]
			outfile := filepath.Join(job.Dir, "OUTCAR")
			oc, err := ReadOutcar(outfile)
			switch err {
			case nil:
				chk.Finish(job.Val, oc)
				MarkCompleted(job.Dir)
				dirs[nJobs-1], dirs[i] = dirs[i], dirs[nJobs-1]
				nJobs--
				dirs = dirs[:nJobs]
				i--
				shortenBy++
			case ErrFileContainsError, ErrBlankOutput, ErrEnergyNotFound:
				if job.Resubs >= maxRes {
					fmt.Fprintf(os.Stderr,
						"giving up on %s after %d resubmissions\n",
						job.Dir, job.Resubs)
					failed = append(failed, job.Dir)
					AppendFailed(job.Dir, err)
					dirs[nJobs-1], dirs[i] = dirs[i], dirs[nJobs-1]
					nJobs--
					dirs = dirs[:nJobs]
					i--
					continue
				}
				fmt.Fprintf(os.Stderr,
					"resubmitting %s for %v, with %d jobs remaining\n",
					job.Dir, err, nJobs)
				// delete the stale output to prevent rereading it
				os.Remove(outfile)
				delete(qstat, job.JobID)
				job.JobID = q.Submit(job.SubFile())
				job.Resubs++
				if job.JobID != "" {
					qstat[job.JobID] = true
				}
			}
		}
		if nJobs == 0 {
			break
		}
		round++
		if round%Conf.Int(CheckInt) == 0 {
			// catch jobs that vanished from the queue without
			// writing a finished OUTCAR
			q.Stat(&qstat)
			for i := 0; i < nJobs; i++ {
				job := &dirs[i]
				if job.JobID == "" || qstat[job.JobID] {
					continue
				}
				fmt.Fprintf(os.Stderr,
					"job for %s left the queue, resubmitting\n", job.Dir)
				job.JobID = q.Submit(job.SubFile())
				job.Resubs++
				if job.JobID != "" {
					qstat[job.JobID] = true
				}
			}
		}
		if shortenBy == 0 {
			time.Sleep(time.Duration(Conf.Int(SleepInt)) * time.Second)
		}
	}
	return
}
