// ABOUTME: Human-readable outcome reports for sync and delete batches.
// ABOUTME: Partial failures surface as counts, never as aborted operations.
package ledger

import (
	"fmt"

	"github.com/KishParikh13/HealthToCalendar/internal/models"
)

// SyncReport summarizes one sync operation.
type SyncReport struct {
	// AlreadySynced is true when the request matched a prior entry exactly
	// and no new records were created.
	AlreadySynced bool
	Range         *models.SyncedRange
	Created       int
	Failed        int
}

// Summary renders the one-line outcome string for the caller.
func (r *SyncReport) Summary() string {
	if r.AlreadySynced {
		return fmt.Sprintf("Range already synced on %s (%d records)",
			r.Range.SyncedAt.Format("2006-01-02"), r.Range.RecordCount)
	}
	if r.Failed > 0 {
		return fmt.Sprintf("Created %d calendar records (%d failed)", r.Created, r.Failed)
	}
	return fmt.Sprintf("Created %d calendar records", r.Created)
}

// DeleteReport summarizes one delete-range or delete-all operation.
type DeleteReport struct {
	Ranges  int
	Deleted int
	Failed  int
}

// Summary renders the one-line outcome string for the caller.
func (r *DeleteReport) Summary() string {
	if r.Failed > 0 {
		return fmt.Sprintf("Removed %d synced ranges, deleted %d calendar records (%d failed)",
			r.Ranges, r.Deleted, r.Failed)
	}
	return fmt.Sprintf("Removed %d synced ranges, deleted %d calendar records", r.Ranges, r.Deleted)
}
