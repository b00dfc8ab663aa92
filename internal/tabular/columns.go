package tabular

import "strings"

// DefaultColumns are the measurement columns shown when no selection is given
var DefaultColumns = []string{
	"frequency (mhz)",
	"symbolrate (ks/s)",
	"bw (khz)",
	"code rate",
	"system",
	"vendor & system",
	"snr (db)",
	"modulation",
	"signal level",
	"crc ok",
	"nr uws",
	"FECtype",
	"Inverted",
	"Blocksize",
}

// NormalizeHeader lowercases h and collapses whitespace runs
func NormalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

// SelectColumns projects ds onto the preferred headers, in preferred order.
// Headers match after normalization; preferred names missing from ds and
// repeated names are skipped.
func SelectColumns(ds Dataset, preferred []string) Dataset {
	index := make(map[string]int, len(ds.Headers))
	for i, h := range ds.Headers {
		key := NormalizeHeader(h)
		if _, ok := index[key]; !ok {
			index[key] = i
		}
	}

	picked := make([]int, 0, len(preferred))
	seen := make(map[int]bool, len(preferred))
	for _, p := range preferred {
		i, ok := index[NormalizeHeader(p)]
		if !ok || seen[i] {
			continue
		}
		seen[i] = true
		picked = append(picked, i)
	}

	out := Dataset{
		Headers: make([]string, len(picked)),
		Rows:    make([][]string, len(ds.Rows)),
	}
	for c, i := range picked {
		out.Headers[c] = ds.Headers[i]
	}
	for r, row := range ds.Rows {
		projected := make([]string, len(picked))
		for c, i := range picked {
			projected[c] = row[i]
		}
		out.Rows[r] = projected
	}
	return out
}
