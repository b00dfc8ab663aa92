package models

// SpectrumPoint represents a single spectrum reading
type SpectrumPoint struct {
	Frequency float64 `json:"frequency" doc:"Frequency in MHz"`
	Power     float64 `json:"power" doc:"Power reading as written by the acquisition process"`
}

// SpectrumMeta is the acquisition metadata encoded in a spectrum filename
type SpectrumMeta struct {
	StartHz float64 `json:"startHz" doc:"Start frequency in Hz"`
	DeltaHz float64 `json:"deltaHz" doc:"Frequency step between samples in Hz"`
}
