package repository

import (
	"context"
	"errors"

	"github.com/RMahshie/satscan/pkg/models"
)

// ErrNotFound is returned when no record exists for a scan
var ErrNotFound = errors.New("record not found")

// DiscoveryRepository records when a scan's spectrum was observed with data
type DiscoveryRepository interface {
	// RecordDiscovery upserts the record for d.ScanID. FirstSeenAt is kept
	// from the first observation; the remaining fields are replaced.
	RecordDiscovery(ctx context.Context, d *models.Discovery) error
	GetDiscovery(ctx context.Context, scanID int64) (*models.Discovery, error)
}
