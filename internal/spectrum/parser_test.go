package spectrum

import (
	"fmt"
	"strings"
	"testing"

	"github.com/RMahshie/satscan/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scan27Meta = &FilenameMeta{StartHz: 1230000000, DeltaHz: 3333.333}

func TestDecodeFilename(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		want     *FilenameMeta
	}{
		{
			name:     "reference filename",
			fileName: "Scan_27_PSD_1230000000_delta_f_3333.333.spectrum",
			want:     &FilenameMeta{StartHz: 1230000000, DeltaHz: 3333.333},
		},
		{
			name:     "markers are case-insensitive",
			fileName: "scan_3_psd_100_DELTA_F_2.5.SPECTRUM",
			want:     &FilenameMeta{StartHz: 100, DeltaHz: 2.5},
		},
		{
			name:     "hyphenated delta marker",
			fileName: "Scan_3_PSD_100_delta-f-25.spectrum",
			want:     &FilenameMeta{StartHz: 100, DeltaHz: 25},
		},
		{
			name:     "first occurrence wins",
			fileName: "PSD_100_delta_f_2_PSD_300_delta_f_5.spectrum",
			want:     &FilenameMeta{StartHz: 100, DeltaHz: 2},
		},
		{name: "missing delta", fileName: "Scan_3_PSD_100.spectrum"},
		{name: "missing start", fileName: "Scan_3_delta_f_10.spectrum"},
		{name: "zero start", fileName: "Scan_3_PSD_0_delta_f_10.spectrum"},
		{name: "zero delta", fileName: "Scan_3_PSD_100_delta_f_0.000.spectrum"},
		{name: "overflowing start", fileName: "Scan_3_PSD_" + strings.Repeat("9", 400) + "_delta_f_1.spectrum"},
		{name: "empty", fileName: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeFilename(tt.fileName))
		})
	}
}

func TestParse_Structured(t *testing.T) {
	result := Parse("[[100,-30],[101,-31]]", nil)

	assert.Equal(t, ModeStructured, result.Mode)
	assert.Equal(t, DefaultUnit, result.Unit)
	assert.Equal(t, []models.SpectrumPoint{
		{Frequency: 100, Power: -30},
		{Frequency: 101, Power: -31},
	}, result.Points)
}

func TestParse_StructuredObject(t *testing.T) {
	raw := `{
		"unit": "GHz",
		"points": [
			{"f": 1, "p": 2},
			{"freq": "3", "power": 4},
			{"frequency": 5, "db": 6},
			{"x": 7},
			[8],
			"junk"
		]
	}`

	result := Parse(raw, nil)

	assert.Equal(t, ModeStructured, result.Mode)
	assert.Equal(t, "GHz", result.Unit)
	assert.Equal(t, []models.SpectrumPoint{
		{Frequency: 1, Power: 2},
		{Frequency: 3, Power: 4},
		{Frequency: 5, Power: 6},
	}, result.Points)
}

func TestParse_PowerOnly(t *testing.T) {
	powers := []float64{-80.5, -79.25, -81, -60, -82.125}
	var b strings.Builder
	for _, p := range powers {
		fmt.Fprintf(&b, "%v\r\n", p)
	}

	result := Parse(b.String(), scan27Meta)

	require.Equal(t, ModePowerOnly, result.Mode)
	require.Len(t, result.Points, len(powers))
	for i, p := range result.Points {
		want := (1230000000 + float64(i)*3333.333) / 1e6
		assert.InDelta(t, want, p.Frequency, 1e-9)
		assert.Equal(t, powers[i], p.Power)
		if i > 0 {
			assert.Greater(t, p.Frequency, result.Points[i-1].Frequency)
		}
	}
}

func TestParse_PowerOnlyKeepsLineIndex(t *testing.T) {
	result := Parse("-1\n-2\nnoise\n-4\n", &FilenameMeta{StartHz: 1e6, DeltaHz: 1e6})

	require.Equal(t, ModePowerOnly, result.Mode)
	assert.Equal(t, []models.SpectrumPoint{
		{Frequency: 1, Power: -1},
		{Frequency: 2, Power: -2},
		{Frequency: 4, Power: -4},
	}, result.Points)
}

func TestParse_PowerOnlyMissingMeta(t *testing.T) {
	result := Parse("-1\n-2\n-3\n-4\n", nil)

	assert.Equal(t, ModePowerOnlyMissingMeta, result.Mode)
	assert.NotNil(t, result.Points)
	assert.Empty(t, result.Points)
	assert.Equal(t, DefaultUnit, result.Unit)
}

func TestParse_PowerOnlyThreshold(t *testing.T) {
	build := func(singles, pairs int) string {
		var lines []string
		for i := 0; i < singles; i++ {
			lines = append(lines, fmt.Sprintf("-%d", i+1))
		}
		for i := 0; i < pairs; i++ {
			lines = append(lines, fmt.Sprintf("%d -%d", 100+i, i+1))
		}
		return strings.Join(lines, "\n")
	}

	// 7 of 10 lines meets floor(0.7*10)
	result := Parse(build(7, 3), scan27Meta)
	assert.Equal(t, ModePowerOnly, result.Mode)
	assert.Len(t, result.Points, 10)

	// 6 of 10 does not, so only the pairs are read
	result = Parse(build(6, 4), scan27Meta)
	assert.Equal(t, ModeLines, result.Mode)
	assert.Len(t, result.Points, 4)

	// Fewer than 3 single-number lines never count as power-only
	result = Parse("-1\n-2", scan27Meta)
	assert.Equal(t, ModeUnparsed, result.Mode)
	assert.Empty(t, result.Points)
}

func TestParse_Lines(t *testing.T) {
	raw := "freq power\n100,-30\n101;-31\n102 -32 extra\nbad line\n103\n"

	result := Parse(raw, scan27Meta)

	assert.Equal(t, ModeLines, result.Mode)
	assert.Equal(t, []models.SpectrumPoint{
		{Frequency: 100, Power: -30},
		{Frequency: 101, Power: -31},
		{Frequency: 102, Power: -32},
	}, result.Points)
}

func TestParse_EmptyAndUnparsed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Mode
	}{
		{name: "no content", raw: "", want: ModeEmpty},
		{name: "whitespace only", raw: "  \n\t\n", want: ModeEmpty},
		{name: "text", raw: "waiting for data\nstill waiting", want: ModeUnparsed},
		{name: "json scalar", raw: "5", want: ModeUnparsed},
		{name: "json object without points", raw: `{"status":"busy"}`, want: ModeUnparsed},
		{name: "truncated json", raw: `[[100,-30],[101`, want: ModeUnparsed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Parse(tt.raw, scan27Meta)
			assert.Equal(t, tt.want, result.Mode)
			assert.NotNil(t, result.Points)
			assert.Empty(t, result.Points)
			assert.Equal(t, DefaultUnit, result.Unit)
		})
	}
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))

	s := Summarize([]models.SpectrumPoint{
		{Frequency: 1230, Power: -80},
		{Frequency: 1231, Power: -40},
		{Frequency: 1232, Power: -90},
		{Frequency: 1233, Power: -40},
	})
	assert.Equal(t, Summary{
		Count:         4,
		MinFrequency:  1230,
		MaxFrequency:  1233,
		MinPower:      -90,
		MaxPower:      -40,
		PeakFrequency: 1231,
	}, s)
}
