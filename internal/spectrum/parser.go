package spectrum

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/RMahshie/satscan/pkg/models"
)

// Mode tags how a spectrum file was interpreted
type Mode string

const (
	ModeStructured           Mode = "structured"
	ModePowerOnly            Mode = "power-only"
	ModePowerOnlyMissingMeta Mode = "power-only-missing-meta"
	ModeLines                Mode = "lines"
	ModeEmpty                Mode = "empty"
	ModeUnparsed             Mode = "unparsed"
)

// DefaultUnit is reported unless a structured file names its own unit
const DefaultUnit = "MHz"

// Result is the outcome of parsing a spectrum file. Points is never nil.
type Result struct {
	Points []models.SpectrumPoint
	Mode   Mode
	Unit   string
}

// A classifier either claims the input and returns its result, or
// reports false so the next classifier is tried.
type classifier func(text string, lines []string, meta *FilenameMeta) (Result, bool)

// Order matters: the first classifier that claims the input wins.
var classifiers = []classifier{
	parseStructured,
	parsePowerOnly,
	parseLines,
}

// Parse interprets the contents of a spectrum file. Malformed content never
// produces an error; it yields an empty point set tagged with the mode that
// explains why.
func Parse(raw string, meta *FilenameMeta) Result {
	text := strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff"))
	if text == "" {
		return emptyResult(ModeEmpty)
	}

	lines := splitLines(text)
	for _, classify := range classifiers {
		if result, ok := classify(text, lines, meta); ok {
			return result
		}
	}
	return emptyResult(ModeUnparsed)
}

func emptyResult(mode Mode) Result {
	return Result{Points: []models.SpectrumPoint{}, Mode: mode, Unit: DefaultUnit}
}

// parseStructured accepts a JSON array of points or an object with a points array.
func parseStructured(text string, _ []string, _ *FilenameMeta) (Result, bool) {
	if text[0] != '[' && text[0] != '{' {
		return Result{}, false
	}

	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return Result{}, false
	}

	switch v := doc.(type) {
	case []any:
		return Result{Points: normalizePoints(v), Mode: ModeStructured, Unit: DefaultUnit}, true
	case map[string]any:
		items, ok := v["points"].([]any)
		if !ok {
			return Result{}, false
		}
		unit := DefaultUnit
		if u, ok := v["unit"].(string); ok && strings.TrimSpace(u) != "" {
			unit = u
		}
		return Result{Points: normalizePoints(items), Mode: ModeStructured, Unit: unit}, true
	}
	return Result{}, false
}

var (
	frequencyKeys = []string{"f", "freq", "frequency"}
	powerKeys     = []string{"p", "power", "db"}
)

func normalizePoints(items []any) []models.SpectrumPoint {
	points := make([]models.SpectrumPoint, 0, len(items))
	for _, item := range items {
		var f, p float64
		var okF, okP bool

		switch v := item.(type) {
		case []any:
			if len(v) < 2 {
				continue
			}
			f, okF = jsonNumber(v[0])
			p, okP = jsonNumber(v[1])
		case map[string]any:
			f, okF = jsonNumber(firstPresent(v, frequencyKeys))
			p, okP = jsonNumber(firstPresent(v, powerKeys))
		default:
			continue
		}

		if okF && okP {
			points = append(points, models.SpectrumPoint{Frequency: f, Power: p})
		}
	}
	return points
}

func firstPresent(obj map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func jsonNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsInf(n, 0) && !math.IsNaN(n)
	case string:
		return parseNumber(strings.TrimSpace(n))
	}
	return 0, false
}

// parsePowerOnly claims files where most lines hold a single number. Line i
// is the power reading at StartHz + i*DeltaHz.
func parsePowerOnly(_ string, lines []string, meta *FilenameMeta) (Result, bool) {
	singles := 0
	for _, line := range lines {
		tokens := splitTokens(line)
		if len(tokens) != 1 {
			continue
		}
		if _, ok := parseNumber(tokens[0]); ok {
			singles++
		}
	}
	if singles < powerOnlyThreshold(len(lines)) {
		return Result{}, false
	}

	if meta == nil || meta.StartHz <= 0 || meta.DeltaHz <= 0 {
		return emptyResult(ModePowerOnlyMissingMeta), true
	}

	points := make([]models.SpectrumPoint, 0, len(lines))
	for i, line := range lines {
		tokens := splitTokens(line)
		if len(tokens) == 0 {
			continue
		}
		power, ok := parseNumber(tokens[0])
		if !ok {
			continue
		}
		hz := meta.StartHz + float64(i)*meta.DeltaHz
		points = append(points, models.SpectrumPoint{Frequency: hz / 1e6, Power: power})
	}
	return Result{Points: points, Mode: ModePowerOnly, Unit: DefaultUnit}, true
}

// powerOnlyThreshold is the number of single-number lines needed before a
// file is read as power-only. The 70% ratio is empirical.
func powerOnlyThreshold(lineCount int) int {
	return max(3, int(math.Floor(0.7*float64(lineCount))))
}

// parseLines reads "freq power" pairs separated by whitespace, commas or semicolons.
func parseLines(_ string, lines []string, _ *FilenameMeta) (Result, bool) {
	points := make([]models.SpectrumPoint, 0, len(lines))
	for _, line := range lines {
		tokens := splitTokens(line)
		if len(tokens) < 2 {
			continue
		}
		f, okF := parseNumber(tokens[0])
		p, okP := parseNumber(tokens[1])
		if !okF || !okP {
			continue
		}
		points = append(points, models.SpectrumPoint{Frequency: f, Power: p})
	}
	if len(points) == 0 {
		return Result{}, false
	}
	return Result{Points: points, Mode: ModeLines, Unit: DefaultUnit}, true
}

func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func splitTokens(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
