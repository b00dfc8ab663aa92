package artifacts

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidScanID is returned for scan identifiers that are not positive integers
	ErrInvalidScanID = errors.New("scanId must be a positive number")
	// ErrNotFound is returned when a result folder or artifact is absent
	ErrNotFound = errors.New("not found")
)

// Extensions of the artifacts written by the acquisition process
const (
	SpectrumExt  = ".spectrum"
	TabularExt   = ".tmptxt"
	ResultXMLExt = ".xml"

	ResultXMLName = "result.xml"
)

// ValidateScanID checks that id can name a result folder
func ValidateScanID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidScanID, id)
	}
	return nil
}

// ParseScanID parses a scan identifier from user input
func ParseScanID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidScanID, s)
	}
	if err := ValidateScanID(id); err != nil {
		return 0, err
	}
	return id, nil
}

// FolderName returns the result folder name for a scan, Scan_<id>
func FolderName(id int64) (string, error) {
	if err := ValidateScanID(id); err != nil {
		return "", err
	}
	return "Scan_" + strconv.FormatInt(id, 10), nil
}

// PreferredFileName returns Scan_<id>.<ext>. ext may be given with or without the dot.
func PreferredFileName(id int64, ext string) (string, error) {
	folder, err := FolderName(id)
	if err != nil {
		return "", err
	}
	return folder + "." + strings.TrimPrefix(ext, "."), nil
}
