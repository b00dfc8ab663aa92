// Package satscan serves the artifacts written by the acquisition process:
// input counts, result folder status, parsed spectra and scan tables.
package satscan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RMahshie/satscan/internal/artifacts"
	"github.com/RMahshie/satscan/internal/metrics"
	"github.com/RMahshie/satscan/internal/repository"
	"github.com/RMahshie/satscan/internal/spectrum"
	"github.com/RMahshie/satscan/internal/storage"
	"github.com/RMahshie/satscan/internal/tabular"
	"github.com/RMahshie/satscan/pkg/models"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// ErrUnavailable is returned by operations whose backing store is not configured
var ErrUnavailable = errors.New("not configured")

// Artifact kinds used in logs and metrics
const (
	kindSpectrum  = "spectrum"
	kindTabular   = "tmptxt"
	kindResultXML = "resultxml"
)

// Service exposes the acquisition artifacts of a scan
type Service interface {
	InputCount(ctx context.Context) (*models.InputCountResponseBody, error)
	OutputStatus(ctx context.Context, scanID int64) (*models.OutputStatusResponseBody, error)
	ReadSpectrum(ctx context.Context, scanID int64) (*models.SpectrumResponseBody, error)
	ReadTabularText(ctx context.Context, scanID int64) (*models.TabularTextResponseBody, error)
	ReadTable(ctx context.Context, scanID int64, columns []string) (*models.TableResponseBody, error)
	ReadResultXML(ctx context.Context, scanID int64) (*ResultXML, error)
	ArchiveSpectrum(ctx context.Context, scanID int64) (*ArchivedSpectrum, error)
	Discovery(ctx context.Context, scanID int64) (*models.Discovery, error)
}

// ResultXML is the raw result document of a scan
type ResultXML struct {
	Source   string
	FileName string
	Data     []byte
}

// ArchivedSpectrum locates an uploaded spectrum snapshot
type ArchivedSpectrum struct {
	Key         string
	DownloadURL string
	ExpiresIn   time.Duration
}

// Config holds the dependencies of the satscan service. Discoveries,
// Archive and Metrics are optional. A SearchDepth of zero selects
// artifacts.DefaultMaxDepth.
type Config struct {
	Filesystem  billy.Filesystem
	InputDir    string
	OutputDir   string
	SearchDepth int
	Discoveries repository.DiscoveryRepository
	Archive     storage.SpectrumArchive
	Metrics     *metrics.Metrics
	Clock       clockwork.Clock
}

type service struct {
	locator     *artifacts.Locator
	fs          billy.Filesystem
	inputDir    string
	outputDir   string
	depth       int
	discoveries repository.DiscoveryRepository
	archive     storage.SpectrumArchive
	metrics     *metrics.Metrics
	clock       clockwork.Clock
}

// NewService creates a new satscan service
func NewService(cfg Config) Service {
	depth := cfg.SearchDepth
	if depth <= 0 {
		depth = artifacts.DefaultMaxDepth
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &service{
		locator:     artifacts.NewLocator(cfg.Filesystem),
		fs:          cfg.Filesystem,
		inputDir:    cfg.InputDir,
		outputDir:   cfg.OutputDir,
		depth:       depth,
		discoveries: cfg.Discoveries,
		archive:     cfg.Archive,
		metrics:     cfg.Metrics,
		clock:       clock,
	}
}

// InputCount lists the regular files waiting in the input directory
func (s *service) InputCount(ctx context.Context) (*models.InputCountResponseBody, error) {
	names, err := s.locator.ListFiles(s.inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to count input files: %w", err)
	}

	return &models.InputCountResponseBody{
		Dir:   s.inputDir,
		Count: len(names),
		Names: names,
	}, nil
}

// OutputStatus reports whether the result folder and its spectrum exist
func (s *service) OutputStatus(ctx context.Context, scanID int64) (*models.OutputStatusResponseBody, error) {
	folderName, err := artifacts.FolderName(scanID)
	if err != nil {
		return nil, err
	}
	folderPath := s.fs.Join(s.outputDir, folderName)

	status := &models.OutputStatusResponseBody{
		ScanID:     scanID,
		FolderName: folderName,
		FolderPath: folderPath,
	}

	exists, err := s.locator.Exists(folderPath)
	if err != nil {
		return nil, err
	}
	if !exists {
		return status, nil
	}
	status.FolderExists = true

	found, ok, err := s.find(kindSpectrum, folderPath, artifacts.Suffix(artifacts.SpectrumExt))
	if err != nil {
		return nil, err
	}
	if ok {
		status.SpectrumFound = true
		status.SpectrumPath = &found.Path
		status.SpectrumFileName = &found.FileName
		status.Completed = true
	}
	return status, nil
}

// ReadSpectrum parses the spectrum file of a scan
func (s *service) ReadSpectrum(ctx context.Context, scanID int64) (*models.SpectrumResponseBody, error) {
	status, err := s.OutputStatus(ctx, scanID)
	if err != nil {
		return nil, err
	}
	if !status.FolderExists {
		return nil, fmt.Errorf("output folder %s: %w", status.FolderPath, artifacts.ErrNotFound)
	}
	if !status.SpectrumFound {
		return nil, fmt.Errorf(".spectrum in %s: %w", status.FolderPath, artifacts.ErrNotFound)
	}

	path := *status.SpectrumPath
	raw, err := util.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spectrum %s: %w", path, err)
	}

	meta := spectrum.DecodeFilename(*status.SpectrumFileName)
	result := spectrum.Parse(string(raw), meta)
	s.metrics.ObserveParse(string(result.Mode))

	updatedAt := s.clock.Now()
	if info, err := s.fs.Stat(path); err == nil {
		updatedAt = info.ModTime()
	}

	body := &models.SpectrumResponseBody{
		ScanID:    scanID,
		Source:    path,
		UpdatedAt: updatedAt.UTC(),
		Unit:      result.Unit,
		Points:    result.Points,
		ParseMode: string(result.Mode),
		Meta:      meta.Model(),
	}

	if len(result.Points) > 0 {
		s.recordDiscovery(ctx, body)
	}

	log.Debug().
		Int64("scanID", scanID).
		Str("path", path).
		Str("parseMode", body.ParseMode).
		Int("points", len(body.Points)).
		Msg("Spectrum parsed")

	return body, nil
}

func (s *service) recordDiscovery(ctx context.Context, body *models.SpectrumResponseBody) {
	if s.discoveries == nil {
		return
	}

	now := s.clock.Now().UTC()
	err := s.discoveries.RecordDiscovery(ctx, &models.Discovery{
		ScanID:       body.ScanID,
		SpectrumPath: body.Source,
		ParseMode:    body.ParseMode,
		PointCount:   len(body.Points),
		FirstSeenAt:  now,
		LastSeenAt:   now,
	})
	if err != nil {
		log.Warn().Err(err).Int64("scanID", body.ScanID).Msg("Failed to record discovery")
	}
}

// ReadTabularText returns the raw .tmptxt of a scan. Scan_<id>.tmptxt in the
// output root wins; otherwise the result folder is searched.
func (s *service) ReadTabularText(ctx context.Context, scanID int64) (*models.TabularTextResponseBody, error) {
	preferred, err := artifacts.PreferredFileName(scanID, artifacts.TabularExt)
	if err != nil {
		return nil, err
	}
	folderName, _ := artifacts.FolderName(scanID)

	source := s.fs.Join(s.outputDir, preferred)
	exists, err := s.locator.Exists(source)
	if err != nil {
		return nil, err
	}

	if !exists {
		folderPath := s.fs.Join(s.outputDir, folderName)
		found, ok, err := s.find(kindTabular, folderPath, artifacts.ExactOrSuffix(preferred, artifacts.TabularExt))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf(".tmptxt for %s: %w", folderName, artifacts.ErrNotFound)
		}
		source = found.Path
	}

	text, err := util.ReadFile(s.fs, source)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}

	return &models.TabularTextResponseBody{
		ScanID:    scanID,
		Source:    source,
		UpdatedAt: s.clock.Now().UTC(),
		Text:      string(text),
	}, nil
}

// ReadTable parses the .tmptxt of a scan. A non-empty columns list keeps
// only those columns, in that order.
func (s *service) ReadTable(ctx context.Context, scanID int64, columns []string) (*models.TableResponseBody, error) {
	text, err := s.ReadTabularText(ctx, scanID)
	if err != nil {
		return nil, err
	}

	ds := tabular.Parse(text.Text)
	if len(columns) > 0 {
		ds = tabular.SelectColumns(ds, columns)
	}

	return &models.TableResponseBody{
		ScanID:  scanID,
		Source:  text.Source,
		Headers: ds.Headers,
		Rows:    ds.Rows,
	}, nil
}

// ReadResultXML returns the result document of a scan, preferring result.xml
// over any other .xml in the result folder.
func (s *service) ReadResultXML(ctx context.Context, scanID int64) (*ResultXML, error) {
	folderName, err := artifacts.FolderName(scanID)
	if err != nil {
		return nil, err
	}
	folderPath := s.fs.Join(s.outputDir, folderName)

	found, ok, err := s.find(kindResultXML, folderPath, artifacts.ExactOrSuffix(artifacts.ResultXMLName, artifacts.ResultXMLExt))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("result xml in %s: %w", folderPath, artifacts.ErrNotFound)
	}

	data, err := util.ReadFile(s.fs, found.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", found.Path, err)
	}

	return &ResultXML{Source: found.Path, FileName: found.FileName, Data: data}, nil
}

// ArchiveSpectrum uploads the parsed spectrum of a scan as a JSON snapshot
func (s *service) ArchiveSpectrum(ctx context.Context, scanID int64) (*ArchivedSpectrum, error) {
	if s.archive == nil {
		return nil, fmt.Errorf("spectrum archive: %w", ErrUnavailable)
	}

	body, err := s.ReadSpectrum(ctx, scanID)
	if err != nil {
		return nil, err
	}

	snapshot, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	folderName, _ := artifacts.FolderName(scanID)
	key := storage.SnapshotKey(folderName, uuid.New().String())
	if err := s.archive.PutSnapshot(ctx, key, snapshot, "application/json"); err != nil {
		return nil, err
	}

	url, err := s.archive.GenerateDownloadURL(ctx, key)
	if err != nil {
		return nil, err
	}

	log.Info().Int64("scanID", scanID).Str("key", key).Msg("Spectrum archived")

	return &ArchivedSpectrum{
		Key:         key,
		DownloadURL: url,
		ExpiresIn:   s.archive.DownloadExpiry(),
	}, nil
}

// Discovery returns the first/last-seen record of a scan
func (s *service) Discovery(ctx context.Context, scanID int64) (*models.Discovery, error) {
	if err := artifacts.ValidateScanID(scanID); err != nil {
		return nil, err
	}
	if s.discoveries == nil {
		return nil, fmt.Errorf("discovery log: %w", ErrUnavailable)
	}

	d, err := s.discoveries.GetDiscovery(ctx, scanID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("discovery for scan %d: %w", scanID, artifacts.ErrNotFound)
	}
	return d, err
}

func (s *service) find(kind, root string, rule artifacts.MatchRule) (artifacts.Artifact, bool, error) {
	start := s.clock.Now()
	found, ok, err := s.locator.Find(root, rule, s.depth)

	result := metrics.ResultNotFound
	switch {
	case err != nil:
		result = metrics.ResultError
	case ok:
		result = metrics.ResultFound
	}
	s.metrics.ObserveLookup(kind, result, s.clock.Since(start))

	if err != nil {
		return artifacts.Artifact{}, false, fmt.Errorf("failed to search %s: %w", root, err)
	}
	return found, ok, nil
}
