package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/RMahshie/satscan/internal/artifacts"
	"github.com/RMahshie/satscan/internal/satscan"
	"github.com/RMahshie/satscan/pkg/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"
)

// SatscanHandler handles requests for acquisition artifacts
type SatscanHandler struct {
	svc satscan.Service
}

// NewSatscanHandler creates a new satscan handler
func NewSatscanHandler(svc satscan.Service) *SatscanHandler {
	return &SatscanHandler{svc: svc}
}

// InputCount returns the files waiting in the acquisition input directory
func (h *SatscanHandler) InputCount(ctx context.Context, req *models.InputCountRequest) (*models.InputCountResponse, error) {
	count, err := h.svc.InputCount(ctx)
	if err != nil {
		return nil, httpError("Failed to count input files", err)
	}
	return &models.InputCountResponse{Body: *count}, nil
}

// OutputStatus returns whether a scan's result folder and spectrum exist
func (h *SatscanHandler) OutputStatus(ctx context.Context, req *models.ScanRequest) (*models.OutputStatusResponse, error) {
	scanID, err := artifacts.ParseScanID(req.ScanID)
	if err != nil {
		return nil, httpError("", err)
	}

	status, err := h.svc.OutputStatus(ctx, scanID)
	if err != nil {
		return nil, httpError("Failed to read output status", err)
	}

	log.Debug().Int64("scanID", scanID).Bool("completed", status.Completed).Msg("Output status checked")
	return &models.OutputStatusResponse{Body: *status}, nil
}

// Spectrum returns the parsed spectrum of a scan
func (h *SatscanHandler) Spectrum(ctx context.Context, req *models.ScanRequest) (*models.SpectrumResponse, error) {
	scanID, err := artifacts.ParseScanID(req.ScanID)
	if err != nil {
		return nil, httpError("", err)
	}

	body, err := h.svc.ReadSpectrum(ctx, scanID)
	if err != nil {
		return nil, httpError("Failed to read spectrum", err)
	}
	return &models.SpectrumResponse{Body: *body}, nil
}

// TabularText returns the raw .tmptxt of a scan
func (h *SatscanHandler) TabularText(ctx context.Context, req *models.ScanRequest) (*models.TabularTextResponse, error) {
	scanID, err := artifacts.ParseScanID(req.ScanID)
	if err != nil {
		return nil, httpError("", err)
	}

	body, err := h.svc.ReadTabularText(ctx, scanID)
	if err != nil {
		return nil, httpError("Failed to read tmptxt", err)
	}
	return &models.TabularTextResponse{Body: *body}, nil
}

// Table returns the parsed .tmptxt of a scan
func (h *SatscanHandler) Table(ctx context.Context, req *models.TableRequest) (*models.TableResponse, error) {
	scanID, err := artifacts.ParseScanID(req.ScanID)
	if err != nil {
		return nil, httpError("", err)
	}

	body, err := h.svc.ReadTable(ctx, scanID, req.Columns)
	if err != nil {
		return nil, httpError("Failed to read table", err)
	}
	return &models.TableResponse{Body: *body}, nil
}

// ResultXML streams a scan's result XML as an attachment
func (h *SatscanHandler) ResultXML(ctx context.Context, req *models.ScanRequest) (*models.ResultXMLResponse, error) {
	scanID, err := artifacts.ParseScanID(req.ScanID)
	if err != nil {
		return nil, httpError("", err)
	}

	doc, err := h.svc.ReadResultXML(ctx, scanID)
	if err != nil {
		return nil, httpError("Failed to read result xml", err)
	}

	return &models.ResultXMLResponse{
		ContentType:        "application/xml",
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", doc.FileName),
		Body:               doc.Data,
	}, nil
}

// ArchiveSpectrum uploads a snapshot of a scan's spectrum and returns a download URL
func (h *SatscanHandler) ArchiveSpectrum(ctx context.Context, req *models.ScanRequest) (*models.ArchiveSpectrumResponse, error) {
	scanID, err := artifacts.ParseScanID(req.ScanID)
	if err != nil {
		return nil, httpError("", err)
	}

	archived, err := h.svc.ArchiveSpectrum(ctx, scanID)
	if err != nil {
		return nil, httpError("Failed to archive spectrum", err)
	}

	resp := &models.ArchiveSpectrumResponse{}
	resp.Body.Key = archived.Key
	resp.Body.DownloadURL = archived.DownloadURL
	resp.Body.ExpiresIn = int(archived.ExpiresIn.Seconds())
	return resp, nil
}

// Discovery returns when a scan's spectrum was first and last seen with data
func (h *SatscanHandler) Discovery(ctx context.Context, req *models.ScanRequest) (*models.DiscoveryResponse, error) {
	scanID, err := artifacts.ParseScanID(req.ScanID)
	if err != nil {
		return nil, httpError("", err)
	}

	d, err := h.svc.Discovery(ctx, scanID)
	if err != nil {
		return nil, httpError("Failed to read discovery", err)
	}
	return &models.DiscoveryResponse{Body: d}, nil
}

// httpError maps service errors onto HTTP statuses. msg is used for
// unexpected failures; expected ones report the error itself.
func httpError(msg string, err error) error {
	switch {
	case errors.Is(err, artifacts.ErrInvalidScanID):
		return huma.Error400BadRequest(artifacts.ErrInvalidScanID.Error(), err)
	case errors.Is(err, artifacts.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, satscan.ErrUnavailable):
		return huma.Error503ServiceUnavailable(err.Error())
	default:
		log.Error().Err(err).Msg(msg)
		return huma.Error500InternalServerError(msg, err)
	}
}
