// Package tabular parses the loosely formatted measurement tables written next
// to scan results (.tmptxt files).
package tabular

import (
	"regexp"
	"strings"
)

// Dataset is a parsed table. Every row has len(Headers) cells.
type Dataset struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Sample sizes used when sniffing the delimiter
const (
	spacedSampleLines = 19
	commaSampleLines  = 9
)

var (
	lineBreak    = regexp.MustCompile(`\r?\n`)
	spacedColumn = regexp.MustCompile(`\s{2,}`)
	anySpace     = regexp.MustCompile(`\s+`)
)

type splitter func(line string) []string

func literal(sep string) splitter {
	return func(line string) []string { return strings.Split(line, sep) }
}

// pattern splits on re and drops empty cells, so leading padding does not
// produce a phantom column.
func pattern(re *regexp.Regexp) splitter {
	return func(line string) []string {
		parts := re.Split(line, -1)
		out := parts[:0]
		for _, p := range parts {
			if p != "" {
				out = append(out, p)
			}
		}
		return out
	}
}

// Parse reads text into a dataset. The first non-blank line is the header;
// blank lines are skipped and every data row is padded or truncated to the
// header width.
func Parse(text string) Dataset {
	lines := nonBlankLines(text)
	if len(lines) == 0 {
		return Dataset{Headers: []string{}, Rows: [][]string{}}
	}

	split := detectDelimiter(lines)

	headers := make([]string, 0)
	for _, h := range split(lines[0]) {
		if h = strings.TrimSpace(h); h != "" {
			headers = append(headers, h)
		}
	}

	rows := make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		parts := split(line)
		row := make([]string, len(headers))
		for c := range row {
			if c < len(parts) {
				row[c] = strings.TrimSpace(parts[c])
			}
		}
		rows = append(rows, row)
	}

	return Dataset{Headers: headers, Rows: rows}
}

func nonBlankLines(text string) []string {
	raw := lineBreak.Split(text, -1)
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.ReplaceAll(l, "\r", "")
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// detectDelimiter picks, in order: tab, runs of two or more spaces, a
// consistent comma, or any whitespace run. Column-aligned dumps pad with
// several spaces while values such as "Evolution RL" hold single ones.
func detectDelimiter(lines []string) splitter {
	header, data := lines[0], lines[1:]

	if strings.Contains(header, "\t") {
		return literal("\t")
	}

	if spacedColumn.MatchString(header) {
		return pattern(spacedColumn)
	}
	for _, l := range head(data, spacedSampleLines) {
		if spacedColumn.MatchString(l) {
			return pattern(spacedColumn)
		}
	}

	if expected := strings.Count(header, ",") + 1; expected > 1 {
		consistent := true
		for _, l := range head(data, commaSampleLines) {
			if strings.Count(l, ",")+1 != expected {
				consistent = false
				break
			}
		}
		if consistent {
			return literal(",")
		}
	}

	return pattern(anySpace)
}

func head(lines []string, n int) []string {
	if len(lines) > n {
		return lines[:n]
	}
	return lines
}
