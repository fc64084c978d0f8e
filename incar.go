package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// SetIncarTag sets tag = value in the INCAR at filename, replacing
// an existing assignment or appending one. Comment lines are left
// alone
func SetIncarTag(filename, tag, value string) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	var (
		lines []string
		done  bool
	)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		trim := strings.TrimSpace(line)
		if !strings.HasPrefix(trim, "#") && !strings.HasPrefix(trim, "!") {
			fields := strings.FieldsFunc(trim, func(r rune) bool {
				return r == '=' || r == ' ' || r == '\t'
			})
			if len(fields) > 0 && strings.EqualFold(fields[0], tag) {
				line = fmt.Sprintf("%s = %s", tag, value)
				done = true
			}
		}
		lines = append(lines, line)
	}
	f.Close()
	if !done {
		lines = append(lines, fmt.Sprintf("%s = %s", tag, value))
	}
	return os.WriteFile(filename,
		[]byte(strings.Join(lines, "\n")+"\n"), 0644)
}

// GetIncarTag returns the value assigned to tag in the INCAR, or ""
func GetIncarTag(filename, tag string) string {
	lines, err := ReadFile(filename)
	if err != nil {
		return ""
	}
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if strings.HasPrefix(trim, "#") || strings.HasPrefix(trim, "!") {
			continue
		}
		sp := strings.SplitN(trim, "=", 2)
		if len(sp) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(sp[0]), tag) {
			val := sp[1]
			// strip a trailing comment
			if i := strings.IndexAny(val, "!#"); i >= 0 {
				val = val[:i]
			}
			return strings.TrimSpace(val)
		}
	}
	return ""
}
