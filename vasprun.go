package main

import (
	"encoding/xml"
	"io"
	"os"
	"strconv"
	"strings"
)

// Vasprun holds the final ionic step scraped from a vasprun.xml
type Vasprun struct {
	Energy float64      // final e_fr_energy, eV
	Fermi  float64      // efermi, eV
	Forces [][3]float64 // final forces, eV/A
}

// ReadVasprun token-scans a vasprun.xml for the final energy, Fermi
// level, and forces. The schema is owned by VASP; only the trailing
// quantities of the last calculation block are kept
func ReadVasprun(filename string) (*Vasprun, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, ErrFileNotFound
	}
	defer f.Close()
	dec := xml.NewDecoder(f)
	var (
		vr      Vasprun
		name    string
		inForce bool
		got     bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, ErrFileContainsError
		}
		switch t := tok.(type) {
		case xml.StartElement:
			name = ""
			for _, a := range t.Attr {
				if a.Name.Local == "name" {
					name = a.Value
				}
			}
			switch t.Name.Local {
			case "varray":
				if name == "forces" {
					inForce = true
					vr.Forces = vr.Forces[:0]
				}
			case "v":
				if inForce {
					var raw string
					if err := dec.DecodeElement(&raw, &t); err != nil {
						return nil, ErrFileContainsError
					}
					fields := strings.Fields(raw)
					if len(fields) == 3 {
						var fc [3]float64
						for i, fl := range fields {
							fc[i], _ = strconv.ParseFloat(fl, 64)
						}
						vr.Forces = append(vr.Forces, fc)
					}
				}
			case "i":
				switch name {
				case "e_fr_energy", "efermi":
					var raw string
					if err := dec.DecodeElement(&raw, &t); err != nil {
						return nil, ErrFileContainsError
					}
					v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
					if err != nil {
						continue
					}
					if name == "efermi" {
						vr.Fermi = v
					} else {
						vr.Energy = v
						got = true
					}
				}
			}
		case xml.EndElement:
			if t.Name.Local == "varray" {
				inForce = false
			}
		}
	}
	if !got {
		return &vr, ErrEnergyNotFound
	}
	return &vr, nil
}
