// ABOUTME: ICS file implementation of the RecordSink contract.
// ABOUTME: One VEVENT per record in a single calendar file, deletable by UID.
package calendar

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/KishParikh13/HealthToCalendar/internal/models"
	"github.com/google/uuid"
)

const (
	markerProperty = "X-HEALTHCAL-MARKER"
	icsHeader      = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//healthcal//health-to-calendar//EN\r\n"
	icsFooter      = "END:VCALENDAR\r\n"
)

// ICSSink writes calendar records as VEVENT blocks in a single .ics file.
// The whole file is rewritten on every mutation.
type ICSSink struct {
	path string
	mu   sync.Mutex
}

// NewICSSink creates a sink backed by the .ics file at path.
func NewICSSink(path string) *ICSSink {
	return &ICSSink{path: path}
}

// Path returns the calendar file location.
func (s *ICSSink) Path() string {
	return s.path
}

// Create appends one VEVENT for the sample and returns its UID.
func (s *ICSSink) Create(ctx context.Context, sample *models.RawSample, cat models.Category) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &CreationError{Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.load()
	if err != nil {
		return "", &CreationError{Err: err}
	}

	uid := uuid.New().String()
	events = append(events, buildEvent(uid, sample, cat))

	if err := s.write(events); err != nil {
		return "", &CreationError{Err: err}
	}
	return uid, nil
}

// Delete removes the VEVENT with the given UID, rewriting the file.
func (s *ICSSink) Delete(ctx context.Context, recordID string) error {
	if err := ctx.Err(); err != nil {
		return &DeletionError{RecordID: recordID, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.load()
	if err != nil {
		return &DeletionError{RecordID: recordID, Err: err}
	}

	needle := "UID:" + recordID + "\r\n"
	kept := events[:0]
	found := false
	for _, ev := range events {
		if strings.Contains(ev, needle) {
			found = true
			continue
		}
		kept = append(kept, ev)
	}
	if !found {
		return &DeletionError{RecordID: recordID, Err: fmt.Errorf("record not found")}
	}

	if err := s.write(kept); err != nil {
		return &DeletionError{RecordID: recordID, Err: err}
	}
	return nil
}

// Count returns the number of events currently in the calendar file.
func (s *ICSSink) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events, err := s.load()
	if err != nil {
		return 0, err
	}
	return len(events), nil
}

// load reads the calendar file and returns its VEVENT blocks.
// A missing file is an empty calendar.
func (s *ICSSink) load() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read calendar: %w", err)
	}

	var events []string
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	for {
		begin := strings.Index(text, "BEGIN:VEVENT")
		if begin < 0 {
			break
		}
		end := strings.Index(text[begin:], "END:VEVENT")
		if end < 0 {
			return nil, fmt.Errorf("read calendar: unterminated VEVENT")
		}
		block := text[begin : begin+end+len("END:VEVENT")]
		events = append(events, strings.ReplaceAll(block, "\n", "\r\n")+"\r\n")
		text = text[begin+end+len("END:VEVENT"):]
	}
	return events, nil
}

// write rewrites the calendar file wholesale with the given events.
func (s *ICSSink) write(events []string) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("create calendar directory: %w", err)
		}
	}

	var b strings.Builder
	b.WriteString(icsHeader)
	for _, ev := range events {
		b.WriteString(ev)
	}
	b.WriteString(icsFooter)

	if err := os.WriteFile(s.path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("write calendar: %w", err)
	}
	return nil
}

// buildEvent renders one VEVENT block for a sample.
func buildEvent(uid string, sample *models.RawSample, cat models.Category) string {
	var b strings.Builder
	b.WriteString("BEGIN:VEVENT\r\n")
	fmt.Fprintf(&b, "UID:%s\r\n", uid)
	fmt.Fprintf(&b, "DTSTAMP:%s\r\n", time.Now().UTC().Format("20060102T150405Z"))
	if sample.AllDay {
		fmt.Fprintf(&b, "DTSTART;VALUE=DATE:%s\r\n", sample.Start.Format("20060102"))
		fmt.Fprintf(&b, "DTEND;VALUE=DATE:%s\r\n", sample.End.Format("20060102"))
	} else {
		fmt.Fprintf(&b, "DTSTART:%s\r\n", sample.Start.UTC().Format("20060102T150405Z"))
		fmt.Fprintf(&b, "DTEND:%s\r\n", sample.End.UTC().Format("20060102T150405Z"))
	}
	fmt.Fprintf(&b, "SUMMARY:%s\r\n", escapeText(cat.Label()))
	if sample.Detail != "" {
		fmt.Fprintf(&b, "DESCRIPTION:%s\r\n", escapeText(sample.Detail))
	}
	fmt.Fprintf(&b, "%s:%s\r\n", markerProperty, Marker)
	b.WriteString("END:VEVENT\r\n")
	return b.String()
}

// escapeText escapes reserved characters per RFC 5545 TEXT rules.
func escapeText(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\n", "\\n",
	)
	return r.Replace(s)
}
