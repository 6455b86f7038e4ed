// Package election implements vote casting, per-area results and partylist
// seat apportionment on top of a transactional Store.
package election

import (
	"time"

	"github.com/rs/zerolog"
)

// DefaultSeats is the number of assembly seats the partylist quota is
// computed against.
const DefaultSeats = 500

// PartylistOptions tunes the apportionment policy.
type PartylistOptions struct {
	Seats int
	// ClampNegative floors real seats at zero when area wins exceed the
	// party's quota share.  Off by default.
	ClampNegative bool
}

// Deps bundles the collaborators of a Service.  Store is required; the
// rest default to no-ops.
type Deps struct {
	Store     Store
	Clock     func() time.Time
	Cache     ResultCache
	Events    Publisher
	Metrics   Metrics
	Logger    zerolog.Logger
	Partylist PartylistOptions
}

// Service is the entry point used by the HTTP layer.
type Service struct {
	store     Store
	clock     func() time.Time
	cache     ResultCache
	events    Publisher
	metrics   Metrics
	log       zerolog.Logger
	partylist PartylistOptions
}

// NewService constructs a Service and panics if the store is missing.
func NewService(d Deps) *Service {
	if d.Store == nil {
		panic("nil store passed to NewService")
	}
	if d.Clock == nil {
		d.Clock = func() time.Time { return time.Now().UTC() }
	}
	if d.Metrics == nil {
		d.Metrics = noopMetrics{}
	}
	if d.Partylist.Seats <= 0 {
		d.Partylist.Seats = DefaultSeats
	}
	return &Service{
		store:     d.Store,
		clock:     d.Clock,
		cache:     d.Cache,
		events:    d.Events,
		metrics:   d.Metrics,
		log:       d.Logger.With().Str("component", "election").Logger(),
		partylist: d.Partylist,
	}
}

// Now returns the current time of the injected clock.
func (s *Service) Now() time.Time { return s.clock() }

type noopMetrics struct{}

func (noopMetrics) VoteAccepted()             {}
func (noopMetrics) VoteRejected(string)       {}
func (noopMetrics) ResultServed(string, bool) {}
