package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Global state accumulated over a run
var Global struct {
	Warnings  int
	Submitted int
}

// CleanSplit splits a line using strings.Split and then removes
// empty entries
func CleanSplit(str, sep string) []string {
	lines := strings.Split(str, sep)
	clean := make([]string, 0, len(lines))
	for s := range lines {
		if lines[s] != "" {
			clean = append(clean, lines[s])
		}
	}
	return clean
}

// ReadFile reads a file and returns a slice of strings of the
// nonblank lines
func ReadFile(filename string) (lines []string, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// CopyFile copies src to dst, preserving nothing but the bytes
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}

// RunCommand runs name with args in dir, feeding stdin on standard
// input and capturing combined output into logname inside dir
func RunCommand(dir, name string, args []string, stdin, logname string) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	logf, err := os.Create(filepath.Join(dir, logname))
	if err != nil {
		return err
	}
	defer logf.Close()
	cmd.Stdout = logf
	cmd.Stderr = logf
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("RunCommand: %s in %s: %w", name, dir, err)
	}
	return nil
}

// Completed reports whether dir carries the COMPLETED sentinel
func Completed(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, "COMPLETED"))
	return err == nil
}

// MarkCompleted drops the COMPLETED sentinel in dir so re-runs skip
// it
func MarkCompleted(dir string) {
	f, err := os.Create(filepath.Join(dir, "COMPLETED"))
	if err != nil {
		Warn("cannot mark %s completed: %v", dir, err)
		return
	}
	f.Close()
}

// AppendFailed records a directory the sweep gave up on
func AppendFailed(dir string, reason error) {
	f, err := os.OpenFile("failed_dirs.txt",
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		Warn("cannot record failure of %s: %v", dir, err)
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "%s\t%v\n", dir, reason)
}

func errExit(err error, msg string) {
	fmt.Fprintf(os.Stderr, "vaspflow: %v %s\n", err, msg)
	os.Exit(1)
}

// TrimExt takes a file name and returns it with the extension
// removed using filepath.Ext
func TrimExt(filename string) string {
	lext := len(filepath.Ext(filename))
	return filename[:len(filename)-lext]
}

// Warn prints a warning message to stdout and increments the global
// warning counter
func Warn(format string, a ...interface{}) {
	fmt.Printf("warning: "+format+"\n", a...)
	Global.Warnings++
}
