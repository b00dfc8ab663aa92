package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Dataset
	}{
		{
			name: "tab separated rows are padded and truncated",
			text: "a\tb\tc\n1\t2\n1\t2\t3\t4\n",
			want: Dataset{
				Headers: []string{"a", "b", "c"},
				Rows:    [][]string{{"1", "2", ""}, {"1", "2", "3"}},
			},
		},
		{
			name: "multi-space keeps single spaces inside values",
			text: "Frequency (MHz)   System        Vendor & System\n" +
				"11720.5           DVB-S2        Evolution RL\n",
			want: Dataset{
				Headers: []string{"Frequency (MHz)", "System", "Vendor & System"},
				Rows:    [][]string{{"11720.5", "DVB-S2", "Evolution RL"}},
			},
		},
		{
			name: "consistent comma count",
			text: "freq,snr,system\n100,5.1,DVB-S\n101,6.2,DVB-S2\n",
			want: Dataset{
				Headers: []string{"freq", "snr", "system"},
				Rows:    [][]string{{"100", "5.1", "DVB-S"}, {"101", "6.2", "DVB-S2"}},
			},
		},
		{
			name: "inconsistent comma count falls back to whitespace",
			text: "freq,snr system\n100,5.1 DVB-S\n101 DVB-S2\n",
			want: Dataset{
				Headers: []string{"freq,snr", "system"},
				Rows:    [][]string{{"100,5.1", "DVB-S"}, {"101", "DVB-S2"}},
			},
		},
		{
			name: "blank lines and CRLF are ignored",
			text: "\r\n\r\nfreq snr\r\n100 5\r\n\r\n101 6\r\n\r\n",
			want: Dataset{
				Headers: []string{"freq", "snr"},
				Rows:    [][]string{{"100", "5"}, {"101", "6"}},
			},
		},
		{
			name: "header only",
			text: "freq\tsnr",
			want: Dataset{
				Headers: []string{"freq", "snr"},
				Rows:    [][]string{},
			},
		},
		{
			name: "empty",
			text: " \n\n ",
			want: Dataset{Headers: []string{}, Rows: [][]string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.text))
		})
	}
}

func TestParse_SpacedDataDetectedBelowHeader(t *testing.T) {
	text := "freq snr\n100  5\n"

	ds := Parse(text)

	// The header has single spaces only, so it stays one column
	assert.Equal(t, []string{"freq snr"}, ds.Headers)
	assert.Equal(t, [][]string{{"100"}}, ds.Rows)
}

func TestParse_RowWidthMatchesHeader(t *testing.T) {
	ds := Parse("a  b  c  d\n1\n1  2  3  4  5  6\n\n1  2\n")

	for _, row := range ds.Rows {
		assert.Len(t, row, len(ds.Headers))
	}
}
