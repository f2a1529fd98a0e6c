// Package report persists capability reports: the rendered platform and
// device infos of one machine at one point in time.
package report

import (
	"regexp"
	"time"

	"github.com/cwbudde/clut/internal/describe"
)

// Store defines report persistence.
//
// Error handling conventions:
//   - Return ErrNotFound if the report doesn't exist (for Load/Delete)
//   - Wrap underlying errors with context
type Store interface {
	// Save atomically writes a report, replacing any report of the same name.
	Save(name string, r *Report) error

	// Load returns the named report.
	Load(name string) (*Report, error)

	// List returns metadata for every stored report, sorted by name.
	List() ([]Info, error)

	// Delete removes the named report.
	Delete(name string) error
}

// ErrNotFound is returned when a requested report does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing report.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	if e.Name != "" {
		return "report not found: " + e.Name
	}
	return "report not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// Report is a snapshot of every platform and device.
type Report struct {
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"createdAt"`
	Platforms []Platform `json:"platforms"`
}

// Platform holds the infos of one platform and its devices.
type Platform struct {
	Name    string           `json:"name"`
	Infos   []describe.Entry `json:"infos"`
	Devices []Device         `json:"devices"`
}

// Device holds the infos of one device.
type Device struct {
	Name  string           `json:"name"`
	Infos []describe.Entry `json:"infos"`
}

// Info is report metadata without the info entries.
type Info struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Platforms int       `json:"platforms"`
	Devices   int       `json:"devices"`
}

// ToInfo extracts metadata from a report.
func (r *Report) ToInfo() Info {
	info := Info{Name: r.Name, CreatedAt: r.CreatedAt, Platforms: len(r.Platforms)}
	for _, p := range r.Platforms {
		info.Devices += len(p.Devices)
	}
	return info
}

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidName reports whether name can be used as a report name. Names are
// file names, so path separators and leading dots are rejected.
func ValidName(name string) bool {
	return len(name) <= 128 && validName.MatchString(name)
}

// Validate checks that the report is internally consistent.
func (r *Report) Validate() error {
	if !ValidName(r.Name) {
		return &ValidationError{Field: "Name", Reason: "must be a plain file name"}
	}
	if r.CreatedAt.IsZero() {
		return &ValidationError{Field: "CreatedAt", Reason: "cannot be zero"}
	}
	for _, p := range r.Platforms {
		if p.Name == "" {
			return &ValidationError{Field: "Platforms.Name", Reason: "cannot be empty"}
		}
	}
	return nil
}

// ValidationError represents a report validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
