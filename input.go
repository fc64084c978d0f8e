package main

import (
	"bufio"
	"os"
	"strings"
)

// ProcessInput extracts a keyword from a line of input and stores
// its value in Conf. Lines with unrecognized keywords are warned
// about and skipped
func ProcessInput(line string) {
	split := strings.SplitN(line, "=", 2)
	if len(split) < 2 {
		Warn("skipping malformed input line %q", line)
		return
	}
	key := strings.ToLower(strings.TrimSpace(split[0])) + "="
	val := strings.TrimSpace(split[1])
	for k := range Conf {
		kw := &Conf[k]
		if kw.Re != nil && kw.Re.MatchString(key) {
			kw.Value = kw.Extract(val)
			return
		}
	}
	Warn("skipping unrecognized keyword in line %q", line)
}

// ParseInfile parses an input file specified by filename and stores
// the results in Conf. Values spanning multiple lines are enclosed
// in braces after the keyword
func ParseInfile(filename string) {
	f, err := os.Open(filename)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	var (
		block   strings.Builder
		inblock bool
		line    string
	)
	for scanner.Scan() {
		line = scanner.Text()
		switch {
		case strings.HasPrefix(strings.TrimSpace(line), "#"):
			// comment
		case inblock && strings.Contains(line, "}"):
			inblock = false
			ProcessInput(block.String())
			block.Reset()
		case strings.Contains(line, "{"):
			keyword := strings.SplitN(line, "{", 2)[0]
			block.WriteString(keyword)
			inblock = true
		case inblock:
			block.WriteString(line + "\n")
		case strings.TrimSpace(line) == "":
		default:
			ProcessInput(line)
		}
	}
	// post-parse processing on some of the keywords
	Conf.WhichCluster()
	Conf.ProcessSweeps()
}
