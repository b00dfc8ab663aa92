package satscan

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/RMahshie/satscan/internal/artifacts"
	"github.com/RMahshie/satscan/internal/metrics"
	"github.com/RMahshie/satscan/internal/repository"
	"github.com/RMahshie/satscan/internal/spectrum"
	"github.com/RMahshie/satscan/pkg/models"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const spectrumName = "Scan_27_PSD_1230000000_delta_f_3333.333.spectrum"

// MockDiscoveryRepository is a mock implementation of DiscoveryRepository
type MockDiscoveryRepository struct {
	mock.Mock
}

func (m *MockDiscoveryRepository) RecordDiscovery(ctx context.Context, d *models.Discovery) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDiscoveryRepository) GetDiscovery(ctx context.Context, scanID int64) (*models.Discovery, error) {
	args := m.Called(ctx, scanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Discovery), args.Error(1)
}

// MockArchive is a mock implementation of SpectrumArchive
type MockArchive struct {
	mock.Mock
}

func (m *MockArchive) PutSnapshot(ctx context.Context, key string, body []byte, contentType string) error {
	args := m.Called(ctx, key, body, contentType)
	return args.Error(0)
}

func (m *MockArchive) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockArchive) DownloadExpiry() time.Duration {
	return time.Hour
}

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func writeFiles(t *testing.T, fs billy.Filesystem, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, util.WriteFile(fs, name, []byte(content), 0644))
	}
}

func newTestService(t *testing.T, files map[string]string, cfg Config) Service {
	t.Helper()
	fs := memfs.New()
	writeFiles(t, fs, files)

	cfg.Filesystem = fs
	cfg.InputDir = "/in"
	cfg.OutputDir = "/out"
	cfg.Clock = clockwork.NewFakeClockAt(testNow)
	return NewService(cfg)
}

func TestService_InputCount(t *testing.T) {
	svc := newTestService(t, map[string]string{
		"/in/Scan_27.xml":      "<scan/>",
		"/in/notes.txt":        "x",
		"/in/archive/old.xml":  "<scan/>",
		"/out/Scan_1/a.result": "x",
	}, Config{})

	count, err := svc.InputCount(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "/in", count.Dir)
	assert.Equal(t, 2, count.Count)
	assert.ElementsMatch(t, []string{"Scan_27.xml", "notes.txt"}, count.Names)
}

func TestService_InputCountMissingDir(t *testing.T) {
	svc := newTestService(t, nil, Config{})

	count, err := svc.InputCount(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, count.Count)
	assert.NotNil(t, count.Names)
}

func TestService_OutputStatus(t *testing.T) {
	tests := []struct {
		name         string
		files        map[string]string
		wantExists   bool
		wantFound    bool
		wantPath     string
		wantFileName string
	}{
		{
			name: "no folder",
		},
		{
			name:       "folder without spectrum",
			files:      map[string]string{"/out/Scan_27/log.txt": "x"},
			wantExists: true,
		},
		{
			name:         "nested spectrum",
			files:        map[string]string{"/out/Scan_27/run/" + spectrumName: "-80\n"},
			wantExists:   true,
			wantFound:    true,
			wantPath:     "/out/Scan_27/run/" + spectrumName,
			wantFileName: spectrumName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, tt.files, Config{})

			status, err := svc.OutputStatus(context.Background(), 27)

			require.NoError(t, err)
			assert.Equal(t, int64(27), status.ScanID)
			assert.Equal(t, "Scan_27", status.FolderName)
			assert.Equal(t, "/out/Scan_27", status.FolderPath)
			assert.Equal(t, tt.wantExists, status.FolderExists)
			assert.Equal(t, tt.wantFound, status.SpectrumFound)
			assert.Equal(t, tt.wantFound, status.Completed)
			if tt.wantFound {
				require.NotNil(t, status.SpectrumPath)
				assert.Equal(t, tt.wantPath, *status.SpectrumPath)
				assert.Equal(t, tt.wantFileName, *status.SpectrumFileName)
			} else {
				assert.Nil(t, status.SpectrumPath)
				assert.Nil(t, status.SpectrumFileName)
			}
		})
	}
}

func TestService_OutputStatusInvalidID(t *testing.T) {
	svc := newTestService(t, nil, Config{})

	_, err := svc.OutputStatus(context.Background(), 0)

	assert.ErrorIs(t, err, artifacts.ErrInvalidScanID)
}

func TestService_ReadSpectrumPowerOnly(t *testing.T) {
	repo := new(MockDiscoveryRepository)
	repo.On("RecordDiscovery", mock.Anything, mock.MatchedBy(func(d *models.Discovery) bool {
		return d.ScanID == 27 && d.PointCount == 3 && d.ParseMode == "power-only" && d.FirstSeenAt.Equal(testNow)
	})).Return(nil)

	svc := newTestService(t, map[string]string{
		"/out/Scan_27/" + spectrumName: "-80\n-79\n-78\n",
	}, Config{Discoveries: repo, Metrics: metrics.New()})

	body, err := svc.ReadSpectrum(context.Background(), 27)

	require.NoError(t, err)
	assert.Equal(t, "/out/Scan_27/"+spectrumName, body.Source)
	assert.Equal(t, string(spectrum.ModePowerOnly), body.ParseMode)
	assert.Equal(t, spectrum.DefaultUnit, body.Unit)
	require.Len(t, body.Points, 3)
	assert.InDelta(t, 1230.0, body.Points[0].Frequency, 1e-9)
	assert.InDelta(t, 1230.006666666, body.Points[2].Frequency, 1e-6)
	assert.Equal(t, &models.SpectrumMeta{StartHz: 1230000000, DeltaHz: 3333.333}, body.Meta)
	assert.False(t, body.UpdatedAt.IsZero())
	repo.AssertExpectations(t)
}

func TestService_LookupDurationUsesClock(t *testing.T) {
	m := metrics.New()
	svc := newTestService(t, map[string]string{
		"/out/Scan_27/" + spectrumName: "-80\n-79\n-78\n",
	}, Config{Metrics: m})

	_, err := svc.ReadSpectrum(context.Background(), 27)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	// The fake clock never advances, so every lookup takes zero time
	assert.Contains(t, string(body), `satscan_artifact_lookup_duration_seconds_sum{kind="spectrum"} 0`)
	assert.Contains(t, string(body), `satscan_artifact_lookups_total{kind="spectrum",result="found"} 1`)
}

func TestService_ReadSpectrumEmptyFileNotRecorded(t *testing.T) {
	repo := new(MockDiscoveryRepository)

	svc := newTestService(t, map[string]string{
		"/out/Scan_27/scan.spectrum": "",
	}, Config{Discoveries: repo})

	body, err := svc.ReadSpectrum(context.Background(), 27)

	require.NoError(t, err)
	assert.Equal(t, string(spectrum.ModeEmpty), body.ParseMode)
	assert.Empty(t, body.Points)
	assert.Nil(t, body.Meta)
	repo.AssertNotCalled(t, "RecordDiscovery", mock.Anything, mock.Anything)
}

func TestService_ReadSpectrumRecordFailureIsNotFatal(t *testing.T) {
	repo := new(MockDiscoveryRepository)
	repo.On("RecordDiscovery", mock.Anything, mock.Anything).Return(assert.AnError)

	svc := newTestService(t, map[string]string{
		"/out/Scan_27/scan.spectrum": "[[100,-30]]",
	}, Config{Discoveries: repo})

	body, err := svc.ReadSpectrum(context.Background(), 27)

	require.NoError(t, err)
	assert.Len(t, body.Points, 1)
	repo.AssertExpectations(t)
}

func TestService_ReadSpectrumNotFound(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{name: "no folder"},
		{name: "no spectrum yet", files: map[string]string{"/out/Scan_27/partial.tmp": "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, tt.files, Config{})

			_, err := svc.ReadSpectrum(context.Background(), 27)

			assert.ErrorIs(t, err, artifacts.ErrNotFound)
		})
	}
}

func TestService_ReadTabularText(t *testing.T) {
	tests := []struct {
		name       string
		files      map[string]string
		wantSource string
		wantText   string
	}{
		{
			name: "output root wins over folder",
			files: map[string]string{
				"/out/Scan_27.tmptxt":         "root",
				"/out/Scan_27/Scan_27.tmptxt": "folder",
			},
			wantSource: "/out/Scan_27.tmptxt",
			wantText:   "root",
		},
		{
			name: "exact name preferred inside folder",
			files: map[string]string{
				"/out/Scan_27/other.tmptxt":   "other",
				"/out/Scan_27/Scan_27.tmptxt": "exact",
			},
			wantSource: "/out/Scan_27/Scan_27.tmptxt",
			wantText:   "exact",
		},
		{
			name:       "any tmptxt in a subfolder",
			files:      map[string]string{"/out/Scan_27/a/b/table.TMPTXT": "nested"},
			wantSource: "/out/Scan_27/a/b/table.TMPTXT",
			wantText:   "nested",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, tt.files, Config{})

			body, err := svc.ReadTabularText(context.Background(), 27)

			require.NoError(t, err)
			assert.Equal(t, tt.wantSource, body.Source)
			assert.Equal(t, tt.wantText, body.Text)
			assert.Equal(t, testNow, body.UpdatedAt)
		})
	}
}

func TestService_ReadTabularTextNotFound(t *testing.T) {
	svc := newTestService(t, map[string]string{
		"/out/Scan_28.tmptxt":       "other scan",
		"/out/Scan_27/a/b/c/x.tmptxt": "too deep",
	}, Config{})

	_, err := svc.ReadTabularText(context.Background(), 27)

	assert.ErrorIs(t, err, artifacts.ErrNotFound)
}

func TestService_ReadTable(t *testing.T) {
	svc := newTestService(t, map[string]string{
		"/out/Scan_27.tmptxt": "Frequency (MHz)\tSNR (dB)\tExtra\n11720\t7.5\tx\n",
	}, Config{})

	full, err := svc.ReadTable(context.Background(), 27, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Frequency (MHz)", "SNR (dB)", "Extra"}, full.Headers)

	picked, err := svc.ReadTable(context.Background(), 27, []string{"snr (db)", "frequency (mhz)"})
	require.NoError(t, err)
	assert.Equal(t, []string{"SNR (dB)", "Frequency (MHz)"}, picked.Headers)
	assert.Equal(t, [][]string{{"7.5", "11720"}}, picked.Rows)
}

func TestService_ReadResultXML(t *testing.T) {
	svc := newTestService(t, map[string]string{
		"/out/Scan_27/config.xml": "<config/>",
		"/out/Scan_27/result.xml": "<result/>",
	}, Config{})

	doc, err := svc.ReadResultXML(context.Background(), 27)

	require.NoError(t, err)
	assert.Equal(t, "result.xml", doc.FileName)
	assert.Equal(t, []byte("<result/>"), doc.Data)

	_, err = svc.ReadResultXML(context.Background(), 28)
	assert.ErrorIs(t, err, artifacts.ErrNotFound)
}

func TestService_ArchiveSpectrum(t *testing.T) {
	archive := new(MockArchive)
	archive.On("PutSnapshot", mock.Anything, mock.MatchedBy(func(key string) bool {
		return len(key) > len("spectra/Scan_27/")
	}), mock.Anything, "application/json").Return(nil)
	archive.On("GenerateDownloadURL", mock.Anything, mock.Anything).Return("https://example.com/snapshot", nil)

	svc := newTestService(t, map[string]string{
		"/out/Scan_27/scan.spectrum": "[[100,-30]]",
	}, Config{Archive: archive})

	archived, err := svc.ArchiveSpectrum(context.Background(), 27)

	require.NoError(t, err)
	assert.Contains(t, archived.Key, "spectra/Scan_27/")
	assert.Equal(t, "https://example.com/snapshot", archived.DownloadURL)
	assert.Equal(t, time.Hour, archived.ExpiresIn)
	archive.AssertExpectations(t)
}

func TestService_UnconfiguredStores(t *testing.T) {
	svc := newTestService(t, nil, Config{})

	_, err := svc.ArchiveSpectrum(context.Background(), 27)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = svc.Discovery(context.Background(), 27)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestService_Discovery(t *testing.T) {
	repo := new(MockDiscoveryRepository)
	repo.On("GetDiscovery", mock.Anything, int64(27)).Return(&models.Discovery{ScanID: 27, PointCount: 3}, nil)
	repo.On("GetDiscovery", mock.Anything, int64(28)).Return(nil, repository.ErrNotFound)

	svc := newTestService(t, nil, Config{Discoveries: repo})

	d, err := svc.Discovery(context.Background(), 27)
	require.NoError(t, err)
	assert.Equal(t, 3, d.PointCount)

	_, err = svc.Discovery(context.Background(), 28)
	assert.ErrorIs(t, err, artifacts.ErrNotFound)

	_, err = svc.Discovery(context.Background(), -1)
	assert.ErrorIs(t, err, artifacts.ErrInvalidScanID)
	repo.AssertExpectations(t)
}
