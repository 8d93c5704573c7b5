// Package attendance keeps the in-memory log of saved attendance records.
// Records live for the process lifetime only; there is no durable storage
// behind them.
package attendance

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrMissingCourse is returned when a record is saved without a course label.
var ErrMissingCourse = errors.New("course is required")

// Record is one saved attendance sheet for a course.
type Record struct {
	ID       string    `json:"id"`
	Course   string    `json:"course"`
	Date     string    `json:"date"` // YYYY-MM-DD
	Students []string  `json:"students"`
	SavedAt  time.Time `json:"saved_at"`
}

// Log is the append-only record store. Safe for concurrent use.
type Log struct {
	mu      sync.RWMutex
	records []Record
}

// NewLog creates an empty attendance log.
func NewLog() *Log {
	return &Log{}
}

// Save appends a record for the course with the students marked present. An
// empty student list is valid: a class where nobody was recognized still
// gets a record. The record id is "<course>_<YYYYMMDD>_<HHMMSS>_<uuid8>".
func (l *Log) Save(course string, students []string) (Record, error) {
	course = strings.TrimSpace(course)
	if course == "" {
		return Record{}, ErrMissingCourse
	}

	now := time.Now()
	rec := Record{
		ID:       fmt.Sprintf("%s_%s_%s", course, now.Format("20060102_150405"), uuid.NewString()[:8]),
		Course:   course,
		Date:     now.Format("2006-01-02"),
		Students: append([]string{}, students...),
		SavedAt:  now,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
	return rec, nil
}

// Records returns saved records in insertion order. A non-empty course
// filters to that course only. Returned records are copies.
func (l *Log) Records(course string) []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Record, 0, len(l.records))
	for _, rec := range l.records {
		if course != "" && rec.Course != course {
			continue
		}
		cp := rec
		cp.Students = append([]string{}, rec.Students...)
		out = append(out, cp)
	}
	return out
}

// Count returns the number of saved records.
func (l *Log) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Clear removes all records. Exists for test isolation.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = nil
}
