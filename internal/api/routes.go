package api

import (
	"net/http"

	"github.com/RMahshie/satscan/internal/api/handlers"
	"github.com/RMahshie/satscan/internal/metrics"
	"github.com/RMahshie/satscan/internal/satscan"
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(router chi.Router, api huma.API, svc satscan.Service, m *metrics.Metrics) {
	satscanHandler := handlers.NewSatscanHandler(svc)

	router.Handle("/metrics", m.Handler())

	huma.Register(api, huma.Operation{
		OperationID: "getInputCount",
		Method:      http.MethodGet,
		Path:        "/satscan/input/count",
		Summary:     "Count input files",
		Description: "Returns the files waiting in the acquisition input directory",
		Tags:        []string{"Satscan"},
	}, satscanHandler.InputCount)

	huma.Register(api, huma.Operation{
		OperationID: "getOutputStatus",
		Method:      http.MethodGet,
		Path:        "/satscan/output/{scanId}/status",
		Summary:     "Get output status",
		Description: "Reports whether the Scan_<id> result folder and its spectrum file exist",
		Tags:        []string{"Satscan"},
	}, satscanHandler.OutputStatus)

	huma.Register(api, huma.Operation{
		OperationID: "getSpectrum",
		Method:      http.MethodGet,
		Path:        "/satscan/output/{scanId}/spectrum",
		Summary:     "Get parsed spectrum",
		Description: "Parses the scan's .spectrum file into frequency/power points",
		Tags:        []string{"Satscan"},
	}, satscanHandler.Spectrum)

	huma.Register(api, huma.Operation{
		OperationID: "getTabularText",
		Method:      http.MethodGet,
		Path:        "/satscan/output/{scanId}/tmptxt",
		Summary:     "Get tmptxt",
		Description: "Returns the raw .tmptxt measurement table of a scan",
		Tags:        []string{"Satscan"},
	}, satscanHandler.TabularText)

	huma.Register(api, huma.Operation{
		OperationID: "getTable",
		Method:      http.MethodGet,
		Path:        "/satscan/output/{scanId}/table",
		Summary:     "Get parsed table",
		Description: "Parses the .tmptxt of a scan into headers and rows",
		Tags:        []string{"Satscan"},
	}, satscanHandler.Table)

	huma.Register(api, huma.Operation{
		OperationID: "downloadResultXML",
		Method:      http.MethodGet,
		Path:        "/satscan/output/{scanId}/resultxml/download",
		Summary:     "Download result XML",
		Description: "Downloads the result XML written into the scan's result folder",
		Tags:        []string{"Satscan"},
	}, satscanHandler.ResultXML)

	huma.Register(api, huma.Operation{
		OperationID: "archiveSpectrum",
		Method:      http.MethodPost,
		Path:        "/satscan/output/{scanId}/spectrum/archive",
		Summary:     "Archive spectrum",
		Description: "Stores a snapshot of the parsed spectrum and returns a download URL",
		Tags:        []string{"Satscan"},
	}, satscanHandler.ArchiveSpectrum)

	huma.Register(api, huma.Operation{
		OperationID: "getDiscovery",
		Method:      http.MethodGet,
		Path:        "/satscan/output/{scanId}/discovery",
		Summary:     "Get discovery record",
		Description: "Returns when the scan's spectrum was first and last seen with data",
		Tags:        []string{"Satscan"},
	}, satscanHandler.Discovery)
}
