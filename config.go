package main

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Key is a type for input keyword indices
type Key int

// Keys in the configuration array. To add a new keyword, add a Key
// here and to the String method below, then add its Keyword to Conf.
// If it requires other keywords to fully process, add a method on
// Config and call it at the end of ParseInfile in input.go.
const (
	Cluster Key = iota
	WorkQueue
	VaspCmd
	VaspkitCmd
	PhonopyCmd
	Prefix
	NumCPUs
	JobMem
	Walltime
	Modules
	SleepInt
	CheckInt
	JobLimit
	MaxRelax
	MaxResub
	Scales
	Strains
	StrainAxes
	PhonopyDim
	MagAxis
	MagAtoms
	MagTol
	MagLayers
	MagMoment
	SubTmpl
	NumKeys
)

func (k Key) String() string {
	return []string{
		"Cluster",
		"WorkQueue",
		"VaspCmd",
		"VaspkitCmd",
		"PhonopyCmd",
		"Prefix",
		"NumCPUs",
		"JobMem",
		"Walltime",
		"Modules",
		"SleepInt",
		"CheckInt",
		"JobLimit",
		"MaxRelax",
		"MaxResub",
		"Scales",
		"Strains",
		"StrainAxes",
		"PhonopyDim",
		"MagAxis",
		"MagAtoms",
		"MagTol",
		"MagLayers",
		"MagMoment",
		"SubTmpl",
	}[k]
}

// A Keyword pairs the regexp recognizing an input line with the
// function extracting its value
type Keyword struct {
	Re      *regexp.Regexp
	Extract func(string) interface{}
	Value   interface{}
}

type Config [NumKeys]Keyword

// At returns the Value of c at k
func (c *Config) At(k Key) interface{} {
	return (*c)[k].Value
}

// Set sets the Value of c at k
func (c *Config) Set(k Key, val interface{}) {
	(*c)[k].Value = val
}

func (c *Config) Str(k Key) string {
	return (*c)[k].Value.(string)
}

func (c *Config) Float(k Key) float64 {
	return (*c)[k].Value.(float64)
}

func (c *Config) Int(k Key) int {
	return (*c)[k].Value.(int)
}

func (c *Config) FlSlice(k Key) []float64 {
	return (*c)[k].Value.([]float64)
}

func (c *Config) StrSlice(k Key) []string {
	return (*c)[k].Value.([]string)
}

func (c Config) String() string {
	var buf strings.Builder
	for i, kw := range c {
		fmt.Fprintf(&buf, "%s: %v\n", Key(i), kw.Value)
	}
	return buf.String()
}

// WhichCluster is a helper function for setting Config.Modules based
// on the selected Cluster
func (c *Config) WhichCluster() {
	if c.At(Modules) != nil {
		// modules given explicitly, nothing to choose
		return
	}
	cluster := c.Str(Cluster)
	hazel := regexp.MustCompile(`(?i)hazel`)
	bridges := regexp.MustCompile(`(?i)bridges`)
	switch {
	case cluster == "", hazel.MatchString(cluster):
		c.Set(Modules, []string{"intel", "impi", "vasp"})
	case bridges.MatchString(cluster):
		c.Set(Modules, []string{"intelmpi", "vasp/5.4.4"})
	default:
		panic("unsupported option for keyword cluster")
	}
}

// ParseSteps parses a sweep specification as a string into a slice
// of floats. The input is either a space-separated list of values
// or a min:max:step range. For example, 0.98:1.02:0.02 yields
// [0.98, 1.00, 1.02]
func ParseSteps(str string) []float64 {
	if strings.Contains(str, ":") {
		sp := strings.Split(str, ":")
		if len(sp) != 3 {
			panic("malformed range, want min:max:step")
		}
		min, e1 := strconv.ParseFloat(strings.TrimSpace(sp[0]), 64)
		max, e2 := strconv.ParseFloat(strings.TrimSpace(sp[1]), 64)
		step, e3 := strconv.ParseFloat(strings.TrimSpace(sp[2]), 64)
		if e1 != nil || e2 != nil || e3 != nil || step <= 0 || max < min {
			panic("malformed range, want min:max:step")
		}
		ret := make([]float64, 0)
		// half a step of slack on the upper bound to absorb
		// accumulated float error
		for v := min; v <= max+step/2; v += step {
			ret = append(ret, v)
		}
		return ret
	}
	ret := make([]float64, 0)
	for _, f := range strings.Fields(str) {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			kwpanic(str, err)
		}
		ret = append(ret, v)
	}
	return ret
}

// ProcessSweeps expands the Scales and Strains keywords from their
// string forms into float slices and validates the strain axes
func (c *Config) ProcessSweeps() {
	if s, ok := c.At(Scales).(string); ok {
		c.Set(Scales, ParseSteps(s))
	}
	if s, ok := c.At(Strains).(string); ok {
		c.Set(Strains, ParseSteps(s))
	}
	for _, ax := range c.StrSlice(StrainAxes) {
		switch ax {
		case "a", "b", "c":
		default:
			panic("unsupported option for keyword strainaxes")
		}
	}
}

func kwpanic(str string, err error) {
	panic(
		fmt.Sprintf(
			"%v parsing input line %q\n",
			err, str),
	)
}

func StringKeyword(str string) interface{} {
	return str
}

func FloatKeyword(str string) interface{} {
	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		kwpanic(str, err)
	}
	return f
}

func IntKeyword(str string) interface{} {
	v, err := strconv.Atoi(str)
	if err != nil {
		kwpanic(str, err)
	}
	return v
}

func FieldsKeyword(str string) interface{} {
	return strings.Fields(str)
}

var Conf = Config{
	Cluster: {
		Re:      regexp.MustCompile(`(?i)cluster=`),
		Extract: StringKeyword,
		Value:   "hazel",
	},
	WorkQueue: {
		Re:      regexp.MustCompile(`(?i)queue=`),
		Extract: StringKeyword,
		Value:   "",
	},
	VaspCmd: {
		Re:      regexp.MustCompile(`(?i)vasp=`),
		Extract: StringKeyword,
		Value:   "vasp_std",
	},
	VaspkitCmd: {
		Re:      regexp.MustCompile(`(?i)vaspkit=`),
		Extract: StringKeyword,
		Value:   "vaspkit",
	},
	PhonopyCmd: {
		Re:      regexp.MustCompile(`(?i)phonopy=`),
		Extract: StringKeyword,
		Value:   "phonopy",
	},
	Prefix: {
		Re:      regexp.MustCompile(`(?i)prefix=`),
		Extract: StringKeyword,
		Value:   "run",
	},
	NumCPUs: {
		Re:      regexp.MustCompile(`(?i)numcpus=`),
		Extract: IntKeyword,
		Value:   16,
	},
	JobMem: {
		Re:      regexp.MustCompile(`(?i)mem=`),
		Extract: StringKeyword,
		Value:   "32gb",
	},
	Walltime: {
		Re:      regexp.MustCompile(`(?i)walltime=`),
		Extract: StringKeyword,
		Value:   "48:00:00",
	},
	Modules: {
		Re:      regexp.MustCompile(`(?i)modules=`),
		Extract: FieldsKeyword,
	},
	SleepInt: {
		Re:      regexp.MustCompile(`(?i)sleepint=`),
		Extract: IntKeyword,
		Value:   60,
	},
	CheckInt: {
		Re:      regexp.MustCompile(`(?i)checkint=`),
		Extract: IntKeyword,
		Value:   100,
	},
	JobLimit: {
		Re:      regexp.MustCompile(`(?i)joblimit=`),
		Extract: IntKeyword,
		Value:   128,
	},
	MaxRelax: {
		Re:      regexp.MustCompile(`(?i)maxrelax=`),
		Extract: IntKeyword,
		Value:   5,
	},
	MaxResub: {
		Re:      regexp.MustCompile(`(?i)maxresub=`),
		Extract: IntKeyword,
		Value:   3,
	},
	Scales: {
		Re:      regexp.MustCompile(`(?i)scales=`),
		Extract: StringKeyword,
		Value:   []float64{},
	},
	Strains: {
		Re:      regexp.MustCompile(`(?i)strains=`),
		Extract: StringKeyword,
		Value:   []float64{},
	},
	StrainAxes: {
		Re:      regexp.MustCompile(`(?i)strainaxes=`),
		Extract: FieldsKeyword,
		Value:   []string{"c"},
	},
	PhonopyDim: {
		Re:      regexp.MustCompile(`(?i)dim=`),
		Extract: StringKeyword,
		Value:   "2 2 2",
	},
	MagAxis: {
		Re:      regexp.MustCompile(`(?i)magaxis=`),
		Extract: StringKeyword,
		Value:   "[0,0,1]",
	},
	MagAtoms: {
		Re:      regexp.MustCompile(`(?i)magatoms=`),
		Extract: StringKeyword,
		Value:   "all",
	},
	MagTol: {
		Re:      regexp.MustCompile(`(?i)magtol=`),
		Extract: FloatKeyword,
		Value:   0.02,
	},
	MagLayers: {
		Re:      regexp.MustCompile(`(?i)maglayers=`),
		Extract: IntKeyword,
		Value:   1,
	},
	MagMoment: {
		Re:      regexp.MustCompile(`(?i)magmoment=`),
		Extract: FloatKeyword,
		Value:   1.0,
	},
	SubTmpl: {
		Re:      regexp.MustCompile(`(?i)subtmpl=`),
		Extract: StringKeyword,
		Value:   "",
	},
}
