package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSubmitDirs(t *testing.T) {
	root := t.TempDir()
	var dirs []RunDir
	for _, name := range []string{"scale-0.9800", "scale-1.0000"} {
		dir := filepath.Join(root, name)
		if err := os.Mkdir(dir, 0755); err != nil {
			t.Fatal(err)
		}
		writeTestFile(t, filepath.Join(dir, "sub.sh"), "#!/bin/sh\ntrue\n")
		dirs = append(dirs, RunDir{Dir: dir, Val: name})
	}
	MarkCompleted(dirs[1].Dir)
	run := SubmitDirs(NewLocal(), dirs)
	if len(run) != 1 {
		t.Fatalf("got %d submissions, wanted 1\n", len(run))
	}
	if run[0].Val != "scale-0.9800" {
		t.Errorf("got %q, wanted scale-0.9800\n", run[0].Val)
	}
}

func TestWaitJobs(t *testing.T) {
	good, err := os.ReadFile("testfiles/OUTCAR")
	if err != nil {
		t.Fatal(err)
	}
	bad, err := os.ReadFile("testfiles/OUTCAR.err")
	if err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)
	for _, d := range []struct {
		name     string
		contents []byte
	}{
		{"scale-0.9800", good},
		{"scale-1.0000", bad},
	} {
		if err := os.Mkdir(d.name, 0755); err != nil {
			t.Fatal(err)
		}
		writeTestFile(t, filepath.Join(d.name, "OUTCAR"), string(d.contents))
	}
	dirs := []RunDir{
		{Dir: "scale-0.9800", Val: "scale-0.9800"},
		// already out of resubmissions, so the crashed job is
		// abandoned on the first look
		{Dir: "scale-1.0000", Val: "scale-1.0000", Resubs: Conf.Int(MaxResub)},
	}
	chk := NewCheckpoint("scale")
	failed := WaitJobs(NewLocal(), dirs, chk)
	if len(failed) != 1 || failed[0] != "scale-1.0000" {
		t.Errorf("got failed %v, wanted [scale-1.0000]\n", failed)
	}
	if !chk.Done["scale-0.9800"] {
		t.Errorf("finished job missing from checkpoint\n")
	}
	if !Completed("scale-0.9800") {
		t.Errorf("finished directory not marked COMPLETED\n")
	}
	if _, err := os.Stat("failed_dirs.txt"); err != nil {
		t.Errorf("missing failed_dirs.txt: %v\n", err)
	}
}

func TestWaitJobsResubmit(t *testing.T) {
	good, err := os.ReadFile("testfiles/OUTCAR")
	if err != nil {
		t.Fatal(err)
	}
	bad, err := os.ReadFile("testfiles/OUTCAR.err")
	if err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)
	oldSleep := Conf.Int(SleepInt)
	Conf.Set(SleepInt, 0)
	defer Conf.Set(SleepInt, oldSleep)
	if err := os.Mkdir("scale-0.9800", 0755); err != nil {
		t.Fatal(err)
	}
	writeTestFile(t, "scale-0.9800/OUTCAR", string(bad))
	writeTestFile(t, "scale-0.9800/OUTCAR.good", string(good))
	// the resubmitted "job" writes a healthy OUTCAR
	writeTestFile(t, "scale-0.9800/sub.sh",
		"#!/bin/sh\ncp scale-0.9800/OUTCAR.good scale-0.9800/OUTCAR\n")
	dirs := []RunDir{{Dir: "scale-0.9800", Val: "scale-0.9800"}}
	chk := NewCheckpoint("scale")
	failed := WaitJobs(NewLocal(), dirs, chk)
	if len(failed) != 0 {
		t.Errorf("got failed %v, wanted none\n", failed)
	}
	if !chk.Done["scale-0.9800"] {
		t.Errorf("resubmitted job missing from checkpoint\n")
	}
	if dirs[0].Resubs != 1 {
		t.Errorf("got %d resubmissions, wanted 1\n", dirs[0].Resubs)
	}
}

func TestRunDirs(t *testing.T) {
	good, err := os.ReadFile("testfiles/OUTCAR")
	if err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)
	oldLimit := Conf.Int(JobLimit)
	Conf.Set(JobLimit, 1)
	defer Conf.Set(JobLimit, oldLimit)
	var dirs []RunDir
	for _, name := range []string{"scale-0.9800", "scale-1.0000", "scale-1.0200"} {
		if err := os.Mkdir(name, 0755); err != nil {
			t.Fatal(err)
		}
		writeTestFile(t, filepath.Join(name, "sub.sh"),
			"#!/bin/sh\ntouch "+filepath.Join(name, "ran")+"\n")
		dirs = append(dirs, RunDir{Dir: name, Val: name})
	}
	// the middle dir is already checkpointed and has no OUTCAR, so
	// submitting it would hang the wait loop
	writeTestFile(t, filepath.Join("scale-0.9800", "OUTCAR"), string(good))
	writeTestFile(t, filepath.Join("scale-1.0200", "OUTCAR"), string(good))
	chk := NewCheckpoint("scale")
	chk.Done["scale-1.0000"] = true
	before := Global.Submitted
	failed := RunDirs(NewLocal(), dirs, chk)
	if len(failed) != 0 {
		t.Errorf("got failed %v, wanted none\n", failed)
	}
	if got := Global.Submitted - before; got != 2 {
		t.Errorf("got %d submissions, wanted 2\n", got)
	}
	if _, err := os.Stat(filepath.Join("scale-1.0000", "ran")); err == nil {
		t.Errorf("checkpointed directory was submitted\n")
	}
	for _, name := range []string{"scale-0.9800", "scale-1.0200"} {
		if !chk.Done[name] {
			t.Errorf("%s missing from checkpoint\n", name)
		}
		if _, err := os.Stat(filepath.Join(name, "ran")); err != nil {
			t.Errorf("%s never submitted: %v\n", name, err)
		}
	}
}
