package spectrum

import (
	"math"
	"regexp"
	"strconv"

	"github.com/RMahshie/satscan/pkg/models"
)

// FilenameMeta holds the frequency axis encoded in a spectrum filename such as
// Scan_27_PSD_1230000000_delta_f_3333.333.spectrum.
type FilenameMeta struct {
	StartHz float64
	DeltaHz float64
}

var (
	startPattern = regexp.MustCompile(`(?i)PSD_(\d+)`)
	deltaPattern = regexp.MustCompile(`(?i)delta[_-]?f[_-](\d+(?:\.\d+)?)`)
)

// DecodeFilename extracts the start frequency and step from a spectrum filename.
// It returns nil when either token is missing, not finite or not positive.
func DecodeFilename(fileName string) *FilenameMeta {
	start := startPattern.FindStringSubmatch(fileName)
	delta := deltaPattern.FindStringSubmatch(fileName)
	if start == nil || delta == nil {
		return nil
	}

	startHz, ok := positive(start[1])
	if !ok {
		return nil
	}
	deltaHz, ok := positive(delta[1])
	if !ok {
		return nil
	}

	return &FilenameMeta{StartHz: startHz, DeltaHz: deltaHz}
}

func positive(token string) (float64, bool) {
	v, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) || v <= 0 {
		return 0, false
	}
	return v, true
}

// Model converts the metadata to its API representation
func (m *FilenameMeta) Model() *models.SpectrumMeta {
	if m == nil {
		return nil
	}
	return &models.SpectrumMeta{StartHz: m.StartHz, DeltaHz: m.DeltaHz}
}
