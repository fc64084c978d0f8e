package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"
	"time"
)

// Job holds the information for one SLURM submission script
type Job struct {
	Name     string
	Dir      string
	Queue    string
	NumCPUs  int
	Mem      string
	Walltime string
	Modules  []string
	Cmd      string
}

const subVasp = `#!/bin/sh
#SBATCH --job-name={{.Name}}
#SBATCH --output={{.Dir}}/slurm.out
#SBATCH --ntasks={{.NumCPUs}}
#SBATCH --mem={{.Mem}}
#SBATCH --time={{.Walltime}}
{{- if .Queue}}
#SBATCH --partition={{.Queue}}
{{- end}}

{{range .Modules -}}
module load {{.}}
{{end -}}
cd {{.Dir}}

date
mpirun -np {{.NumCPUs}} {{.Cmd}} > vasp.out
date
`

// VaspJob fills a Job for running VASP in dir from the global Conf
func VaspJob(dir string) *Job {
	name := Conf.Str(Prefix) + "." + filepath.Base(dir)
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	return &Job{
		Name:     name,
		Dir:      abs,
		Queue:    Conf.Str(WorkQueue),
		NumCPUs:  Conf.Int(NumCPUs),
		Mem:      Conf.Str(JobMem),
		Walltime: Conf.Str(Walltime),
		Modules:  Conf.StrSlice(Modules),
		Cmd:      Conf.Str(VaspCmd),
	}
}

// Slurm submits jobs with sbatch and checks them with squeue
type Slurm struct {
	Tmpl *template.Template
}

// NewSlurm builds a Slurm queue, preferring a template file named by
// the SubTmpl keyword over the built-in script
func NewSlurm() *Slurm {
	if tf := Conf.Str(SubTmpl); tf != "" {
		t, err := template.ParseFiles(tf)
		if err != nil {
			errExit(err, fmt.Sprintf("parsing submission template %q", tf))
		}
		return &Slurm{Tmpl: t}
	}
	return &Slurm{Tmpl: template.Must(template.New("sub").Parse(subVasp))}
}

// WriteSub writes a submission script for job to filename
func (s *Slurm) WriteSub(filename string, job *Job) {
	f, err := os.Create(filename)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := s.Tmpl.Execute(f, job); err != nil {
		panic(err)
	}
}

// Submit submits the script defined by filename to the queue and
// returns the jobid. Submission failures are retried with
// exponential backoff
func (s *Slurm) Submit(filename string) (jobid string) {
	var (
		maxRetries = 15
		maxTime    = 1 << maxRetries
	)
	cmd := exec.Command("sbatch", filename)
	cmd.Stderr = os.Stderr
	out, err := cmd.Output()
	for i := maxRetries; i >= 0 && err != nil; i-- {
		fmt.Printf("Submit: having trouble submitting %s with %v\n",
			filename, err)
		time.Sleep(time.Second * time.Duration(maxTime>>i))
		cmd := exec.Command("sbatch", filename)
		cmd.Stderr = os.Stderr
		out, err = cmd.Output()
	}
	return strings.TrimSpace(
		strings.ReplaceAll(string(out), "Submitted batch job ", ""))
}

// Stat fills qstat with whether each watched jobid is still alive in
// the queue. Jobs are alive while pending (PD), running (R), or
// completing (CG)
func (s *Slurm) Stat(qstat *map[string]bool) {
	status, _ := exec.Command("squeue", "-u", os.Getenv("USER")).CombinedOutput()
	scanner := bufio.NewScanner(strings.NewReader(string(status)))
	var (
		line   string
		fields []string
		header = true
	)
	// initialize them all to false and set true if seen
	for key := range *qstat {
		(*qstat)[key] = false
	}
	for scanner.Scan() {
		line = scanner.Text()
		if strings.Contains(line, "JOBID") {
			header = false
			continue
		} else if header {
			continue
		}
		fields = strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		if _, ok := (*qstat)[fields[0]]; ok {
			if strings.Contains("PDRCG", fields[4]) {
				(*qstat)[fields[0]] = true
			}
		}
	}
}
