package main

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseSweep(t *testing.T) {
	root := t.TempDir()
	base, err := os.ReadFile("testfiles/OUTCAR")
	if err != nil {
		t.Fatal(err)
	}
	outcars := map[string]string{
		"scale-0.9800": string(base),
		"scale-1.0000": strings.ReplaceAll(string(base),
			"-27.81493389", "-27.90000000"),
	}
	for name, contents := range outcars {
		dir := filepath.Join(root, name)
		if err := os.Mkdir(dir, 0755); err != nil {
			t.Fatal(err)
		}
		writeTestFile(t, filepath.Join(dir, "OUTCAR"), contents)
		if err := CopyFile("testfiles/POSCAR",
			filepath.Join(dir, "POSCAR")); err != nil {
			t.Fatal(err)
		}
	}
	rows, err := ParseSweep(root, "scale")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, wanted 2\n", len(rows))
	}
	if rows[0].Dir != "scale-0.9800" || rows[1].Dir != "scale-1.0000" {
		t.Errorf("got dirs %q %q, wanted sorted scale dirs\n",
			rows[0].Dir, rows[1].Dir)
	}
	if math.Abs(rows[0].Energy - -27.81493389) > 1e-10 {
		t.Errorf("got energy %v, wanted -27.81493389\n", rows[0].Energy)
	}
	if math.Abs(rows[0].Volume-96.0) > 1e-8 {
		t.Errorf("got volume %v, wanted 96\n", rows[0].Volume)
	}
	if rows[0].HasGap {
		t.Errorf("got a gap without a BAND_GAP file\n")
	}
	table := SummaryTable(rows)
	if !strings.Contains(table, "0.08506611") {
		t.Errorf("missing relative energy in table:\n%s", table)
	}
	if !strings.Contains(table, "0.00000000") {
		t.Errorf("missing zero relative energy in table:\n%s", table)
	}
	if err := WriteSummary(root, rows); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, "summary.dat")); err != nil {
		t.Errorf("missing summary.dat: %v\n", err)
	}
}

func TestParseSweepStrainOrder(t *testing.T) {
	root := t.TempDir()
	base, err := os.ReadFile("testfiles/OUTCAR")
	if err != nil {
		t.Fatal(err)
	}
	// staged out of value order on purpose
	for _, name := range []string{
		"strain-c+0.010", "strain-c-0.010", "strain-c+0.000",
	} {
		dir := filepath.Join(root, name)
		if err := os.Mkdir(dir, 0755); err != nil {
			t.Fatal(err)
		}
		writeTestFile(t, filepath.Join(dir, "OUTCAR"), string(base))
	}
	rows, err := ParseSweep(root, "strain")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"strain-c-0.010", "strain-c+0.000", "strain-c+0.010"}
	for i, w := range want {
		if rows[i].Dir != w {
			t.Errorf("row %d: got %q, wanted %q\n", i, rows[i].Dir, w)
		}
	}
}

func TestSortSweep(t *testing.T) {
	dirs := []string{
		"strain-a+0.010_c-0.010",
		"strain-a-0.010_c+0.010",
		"strain-a-0.010_c-0.010",
		"strain-a+0.010_c+0.010",
	}
	sortSweep(dirs, "strain")
	want := []string{
		"strain-a-0.010_c-0.010",
		"strain-a-0.010_c+0.010",
		"strain-a+0.010_c-0.010",
		"strain-a+0.010_c+0.010",
	}
	for i, w := range want {
		if dirs[i] != w {
			t.Errorf("got %v, wanted %v\n", dirs, want)
			break
		}
	}
}

func TestParseSweepEmpty(t *testing.T) {
	if _, err := ParseSweep(t.TempDir(), "scale"); err == nil {
		t.Errorf("got nil, wanted an error\n")
	}
}
