package session

import (
	"errors"
	"go-reviewlens/types"
	"sync"
	"time"
)

var ErrNoReview = errors.New("no review text entered")

type State string

const (
	Idle            State = "idle"
	Ready           State = "ready"
	ResultDisplayed State = "result_displayed"
)

// Session is one visitor's interaction cycle. Lock it around any read or
// mutation; actions for one visitor run one at a time.
type Session struct {
	sync.Mutex

	ID       string
	Review   string
	Category types.Category

	Sentiment     string
	Entities      []types.Entity
	EntitiesShown bool

	// Transient per-action notices, cleared when that action runs again
	// or the review text changes.
	SentimentNotice string
	EntitiesNotice  string

	lastSeen time.Time
}

func New(id string, now time.Time) *Session {
	return &Session{ID: id, Category: types.Food, lastSeen: now}
}

func (s *Session) State() State {
	switch {
	case types.IsBlankReview(s.Review):
		return Idle
	case s.Sentiment != "" || s.EntitiesShown:
		return ResultDisplayed
	default:
		return Ready
	}
}

// SetInput applies the form values. A different review text discards both
// outputs; a category change alone keeps them.
func (s *Session) SetInput(review string, category types.Category) {
	if review != s.Review {
		s.Review = review
		s.Sentiment = ""
		s.Entities = nil
		s.EntitiesShown = false
		s.SentimentNotice = ""
		s.EntitiesNotice = ""
	}
	if category.Valid() {
		s.Category = category
	}
}

func (s *Session) touch(now time.Time) {
	s.lastSeen = now
}
