// ABOUTME: RecordSink contract for external calendar providers.
// ABOUTME: Defines create/delete operations and their error wrappers.
package calendar

import (
	"context"
	"fmt"

	"github.com/KishParikh13/HealthToCalendar/internal/models"
)

// Marker tags every record this system creates so that externally created
// records remain distinguishable from our own output.
const Marker = "healthcal-sync"

// RecordSink creates and deletes one external calendar-like record per sample.
type RecordSink interface {
	// Create materializes one record for the sample, titled from the
	// category's emoji and name with the sample's formatted detail as body,
	// and returns the record's identifier.
	Create(ctx context.Context, sample *models.RawSample, cat models.Category) (string, error)

	// Delete removes a previously created record by identifier.
	Delete(ctx context.Context, recordID string) error
}

// CreationError reports a failed record creation.
type CreationError struct {
	Err error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("create record: %v", e.Err)
}

func (e *CreationError) Unwrap() error { return e.Err }

// DeletionError reports a failed record deletion.
type DeletionError struct {
	RecordID string
	Err      error
}

func (e *DeletionError) Error() string {
	return fmt.Sprintf("delete record %s: %v", e.RecordID, e.Err)
}

func (e *DeletionError) Unwrap() error { return e.Err }
