package models

import (
	"time"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Body struct {
		Status  string    `json:"status" example:"healthy" doc:"Service health status"`
		Version string    `json:"version" example:"1.0.0" doc:"API version"`
		Time    time.Time `json:"time" doc:"Current server time"`
	}
}

// ScanRequest identifies the scan an output operation refers to
type ScanRequest struct {
	ScanID string `path:"scanId" example:"27" doc:"Scan identifier, a positive integer"`
}

// InputCountRequest represents a request to count acquisition input files
type InputCountRequest struct{}

// InputCountResponseBody is the body of the input count response
type InputCountResponseBody struct {
	Dir   string   `json:"dir" doc:"Input directory that was counted"`
	Count int      `json:"count" minimum:"0" doc:"Number of regular files in the input directory"`
	Names []string `json:"names" doc:"File names found in the input directory"`
}

// InputCountResponse represents the number of files waiting in the input directory
type InputCountResponse struct {
	Body InputCountResponseBody
}

// OutputStatusResponseBody is the body of the output status response
type OutputStatusResponseBody struct {
	ScanID           int64   `json:"scanId" doc:"Scan identifier"`
	FolderName       string  `json:"folderName" doc:"Result folder name, Scan_<id>"`
	FolderPath       string  `json:"folderPath" doc:"Result folder path inside the output tree"`
	FolderExists     bool    `json:"folderExists" doc:"Whether the result folder exists"`
	SpectrumFound    bool    `json:"spectrumFound" doc:"Whether a .spectrum file was found"`
	SpectrumPath     *string `json:"spectrumPath" doc:"Path of the spectrum file when found"`
	SpectrumFileName *string `json:"spectrumFileName" doc:"File name of the spectrum file when found"`
	Completed        bool    `json:"completed" doc:"Whether the scan produced its spectrum"`
}

// OutputStatusResponse represents the discovery status of a scan's result folder
type OutputStatusResponse struct {
	Body OutputStatusResponseBody
}

// SpectrumResponseBody is the body of the spectrum response
type SpectrumResponseBody struct {
	ScanID    int64           `json:"scanId" doc:"Scan identifier"`
	Source    string          `json:"source" doc:"Spectrum file the points were read from"`
	UpdatedAt time.Time       `json:"updatedAt" doc:"Spectrum file modification time"`
	Unit      string          `json:"unit" doc:"Frequency unit of the points"`
	Points    []SpectrumPoint `json:"points" doc:"Parsed spectrum points"`
	ParseMode string          `json:"parseMode" enum:"structured,power-only,power-only-missing-meta,lines,empty,unparsed" doc:"Parser mode that produced the points"`
	Meta      *SpectrumMeta   `json:"meta" doc:"Filename metadata, null when absent"`
}

// SpectrumResponse represents a parsed spectrum file
type SpectrumResponse struct {
	Body SpectrumResponseBody
}

// TabularTextResponseBody is the body of the tabular text response
type TabularTextResponseBody struct {
	ScanID    int64     `json:"scanId" doc:"Scan identifier"`
	Source    string    `json:"source" doc:"File the text was read from"`
	UpdatedAt time.Time `json:"updatedAt" doc:"Read time"`
	Text      string    `json:"text" doc:"Raw tabular text"`
}

// TabularTextResponse represents the raw .tmptxt content of a scan
type TabularTextResponse struct {
	Body TabularTextResponseBody
}

// TableRequest represents a request for the parsed scan table
type TableRequest struct {
	ScanID  string   `path:"scanId" example:"27" doc:"Scan identifier, a positive integer"`
	Columns []string `query:"columns" doc:"Preferred columns to keep, in order"`
}

// TableResponseBody is the body of the parsed table response
type TableResponseBody struct {
	ScanID  int64      `json:"scanId" doc:"Scan identifier"`
	Source  string     `json:"source" doc:"File the table was parsed from"`
	Headers []string   `json:"headers" doc:"Column headers"`
	Rows    [][]string `json:"rows" doc:"Rows padded to the header count"`
}

// TableResponse represents the parsed .tmptxt table of a scan
type TableResponse struct {
	Body TableResponseBody
}

// ResultXMLResponse streams a scan's result XML as a download
type ResultXMLResponse struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

// ArchiveSpectrumResponse represents the location of an archived spectrum snapshot
type ArchiveSpectrumResponse struct {
	Body struct {
		Key         string `json:"key" doc:"Object key of the archived snapshot"`
		DownloadURL string `json:"downloadUrl" doc:"Pre-signed download URL"`
		ExpiresIn   int    `json:"expiresIn" doc:"URL expiration time in seconds"`
	}
}

// Discovery records when a scan's spectrum was first and last observed with data
type Discovery struct {
	ScanID       int64     `json:"scanId" doc:"Scan identifier"`
	SpectrumPath string    `json:"spectrumPath" doc:"Spectrum file path"`
	ParseMode    string    `json:"parseMode" doc:"Parser mode of the last observation"`
	PointCount   int       `json:"pointCount" doc:"Point count of the last observation"`
	FirstSeenAt  time.Time `json:"firstSeenAt" doc:"First time the spectrum was read with data"`
	LastSeenAt   time.Time `json:"lastSeenAt" doc:"Last time the spectrum was read with data"`
}

// DiscoveryResponse represents the discovery record of a scan
type DiscoveryResponse struct {
	Body *Discovery
}
