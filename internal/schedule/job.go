package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
)

// Job is the public view of a pending scheduled message.
type Job struct {
	ID          string
	Destination string
	Text        string
	// FireAt is the fire time exactly as the caller supplied it.
	FireAt string
	// At is FireAt parsed.
	At        time.Time
	CreatedAt time.Time
}

// entry is a registered job plus the state only the registry may touch.
type entry struct {
	job    Job
	seq    uint64
	handle Handle
}

// ParseFireAt parses a caller-supplied date-time. Values without an explicit
// offset are read in loc.
func ParseFireAt(s string, loc *time.Location) (t time.Time, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: dateTime is required", ErrInvalidArgument)
	}
	if loc == nil {
		loc = time.Local
	}
	// dateparse panics on a few malformed inputs.
	defer func() {
		if p := recover(); p != nil {
			t, err = time.Time{}, fmt.Errorf("%w %q", ErrInvalidDate, s)
		}
	}()
	t, err = dateparse.ParseIn(s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q, use ISO format (YYYY-MM-DDTHH:mm:ss)", ErrInvalidDate, s)
	}
	return t, nil
}

// NewJobID derives an id from the destination and a UUIDv7, which embeds
// the creation time and stays unique within the same millisecond.
func NewJobID(destination string) string {
	u, err := uuid.NewV7()
	if err != nil {
		u = uuid.New()
	}
	return destination + "-" + u.String()
}
