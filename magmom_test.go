package main

import (
	"reflect"
	"testing"
)

func TestParseVector(t *testing.T) {
	tests := []struct {
		in   string
		want [3]float64
		ok   bool
	}{
		{"[0,0,1]", [3]float64{0, 0, 1}, true},
		{"[1.0, -2.5, 3]", [3]float64{1.0, -2.5, 3}, true},
		{"0,0,1", [3]float64{}, false},
		{"[0,1]", [3]float64{}, false},
		{"[a,b,c]", [3]float64{}, false},
	}
	for _, test := range tests {
		got, err := ParseVector(test.in)
		if (err == nil) != test.ok {
			t.Errorf("ParseVector(%q): got error %v\n", test.in, err)
			continue
		}
		if test.ok && got != test.want {
			t.Errorf("ParseVector(%q): got %v, wanted %v\n",
				test.in, got, test.want)
		}
	}
}

func TestParseAtomSelection(t *testing.T) {
	elems := []string{"Fe", "Fe", "O", "O"}
	tests := []struct {
		sel  string
		want []bool
		ok   bool
	}{
		{"all", []bool{true, true, true, true}, true},
		{"Fe", []bool{true, true, false, false}, true},
		{"2 3", []bool{false, true, true, false}, true},
		{"5", nil, false},
		{"Cu", nil, false},
	}
	for _, test := range tests {
		got, err := ParseAtomSelection(test.sel, elems)
		if (err == nil) != test.ok {
			t.Errorf("ParseAtomSelection(%q): got error %v\n", test.sel, err)
			continue
		}
		if test.ok && !reflect.DeepEqual(got, test.want) {
			t.Errorf("ParseAtomSelection(%q): got %v, wanted %v\n",
				test.sel, got, test.want)
		}
	}
}

func TestGroupPlanes(t *testing.T) {
	proj := []float64{0.0, 3.0, 1.5, 4.5}
	mask := []bool{true, true, true, true}
	planes := GroupPlanes(proj, mask, 0.02)
	wantRefs := []float64{0.0, 1.5, 3.0, 4.5}
	wantAtoms := [][]int{{0}, {2}, {1}, {3}}
	if len(planes) != 4 {
		t.Fatalf("got %d planes, wanted 4\n", len(planes))
	}
	for i, pl := range planes {
		if pl.ref != wantRefs[i] {
			t.Errorf("plane %d: got ref %v, wanted %v\n", i, pl.ref, wantRefs[i])
		}
		if !reflect.DeepEqual(pl.atoms, wantAtoms[i]) {
			t.Errorf("plane %d: got atoms %v, wanted %v\n",
				i, pl.atoms, wantAtoms[i])
		}
	}
	// atoms at 1.5 and 1.51 merge into one plane
	planes = GroupPlanes([]float64{1.5, 1.51}, []bool{true, true}, 0.02)
	if len(planes) != 1 {
		t.Errorf("got %d planes, wanted 1\n", len(planes))
	}
}

func TestMagmoms(t *testing.T) {
	p := loadTestPoscar(t, "testfiles/POSCAR")
	// projections of the cart coordinates onto c
	proj := []float64{0.0, 3.0, 1.5, 4.5}
	mask := []bool{true, true, true, true}
	tests := []struct {
		layers int
		want   []float64
	}{
		{layers: 1, want: []float64{1, 1, -1, -1}},
		{layers: 2, want: []float64{1, -1, 1, -1}},
	}
	for _, test := range tests {
		moms, table, nplanes := Magmoms(p, proj, mask, 0.02, test.layers, 1.0)
		if !reflect.DeepEqual(moms, test.want) {
			t.Errorf("layers=%d: got %v, wanted %v\n",
				test.layers, moms, test.want)
		}
		if nplanes != 4 {
			t.Errorf("got %d planes, wanted 4\n", nplanes)
		}
		if len(table) != 4 {
			t.Errorf("got %d table lines, wanted 4\n", len(table))
		}
	}
}

func TestMagmomLine(t *testing.T) {
	got := MagmomLine([]float64{1, 1, -1, -1})
	want := "MAGMOM = +1  +1  -1  -1"
	if got != want {
		t.Errorf("got %q, wanted %q\n", got, want)
	}
}
