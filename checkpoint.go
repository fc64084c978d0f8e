package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const chkName = "chk.yaml"

// Checkpoint records finished sweep points so interrupted runs can
// resume with -c
type Checkpoint struct {
	Sweep    string             `yaml:"sweep"`
	Done     map[string]bool    `yaml:"done"`
	Energies map[string]float64 `yaml:"energies"`
}

// NewCheckpoint makes an empty checkpoint for the named sweep
func NewCheckpoint(sweep string) *Checkpoint {
	return &Checkpoint{
		Sweep:    sweep,
		Done:     make(map[string]bool),
		Energies: make(map[string]float64),
	}
}

// LoadCheckpoint restores a checkpoint written by a previous run. A
// sweep mismatch is fatal to keep stale state from poisoning a new
// sweep
func LoadCheckpoint(sweep string) *Checkpoint {
	lines, err := os.ReadFile(chkName)
	if err != nil {
		errExit(err, "loading checkpoint")
	}
	var c Checkpoint
	if err := yaml.Unmarshal(lines, &c); err != nil {
		errExit(err, fmt.Sprintf("parsing %s", chkName))
	}
	if c.Sweep != sweep {
		errExit(fmt.Errorf("checkpoint is for sweep %q, not %q", c.Sweep, sweep),
			"refusing to resume")
	}
	if c.Done == nil {
		c.Done = make(map[string]bool)
	}
	if c.Energies == nil {
		c.Energies = make(map[string]float64)
	}
	return &c
}

// Finish records one finished sweep point and saves
func (c *Checkpoint) Finish(val string, oc *Outcar) {
	c.Done[val] = true
	c.Energies[val] = oc.Energy
	c.Save()
}

// Save writes the checkpoint file
func (c *Checkpoint) Save() {
	out, err := yaml.Marshal(c)
	if err != nil {
		panic(err)
	}
	if err := os.WriteFile(chkName, out, 0644); err != nil {
		Warn("cannot save checkpoint: %v", err)
	}
}
