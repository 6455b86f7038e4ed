package election

import (
	"time"

	"github.com/iliyamo/election-tally/internal/model"
)

// Status is the temporal state of an election relative to an instant.
type Status string

const (
	StatusUpcoming Status = "Upcoming"
	StatusOngoing  Status = "Ongoing"
	StatusFinished Status = "Finished"
)

// StatusAt classifies e at now.  Both boundaries belong to Ongoing.
func StatusAt(e model.Election, now time.Time) Status {
	switch {
	case now.Before(e.StartDate):
		return StatusUpcoming
	case now.After(e.EndDate):
		return StatusFinished
	default:
		return StatusOngoing
	}
}
