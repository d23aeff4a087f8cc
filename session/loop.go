package session

import (
	"context"
	"errors"
	"go-reviewlens/sentiment"
	"go-reviewlens/types"
	"log"
)

type SentimentAnalyzer interface {
	Analyze(ctx context.Context, review string, category types.Category) (string, error)
}

type EntityExtractor interface {
	Extract(ctx context.Context, text string) ([]types.Entity, error)
}

// Loop runs the two review actions against a session.
type Loop struct {
	sentiment SentimentAnalyzer
	entities  EntityExtractor
}

func NewLoop(analyzer SentimentAnalyzer, extractor EntityExtractor) *Loop {
	return &Loop{sentiment: analyzer, entities: extractor}
}

// RunSentiment analyzes the session's review. On failure the previous
// outputs are left untouched and only the sentiment notice is set.
// The caller must hold the session lock.
func (l *Loop) RunSentiment(ctx context.Context, s *Session) error {
	if s.State() == Idle {
		return ErrNoReview
	}
	s.SentimentNotice = ""

	out, err := l.sentiment.Analyze(ctx, s.Review, s.Category)
	if err != nil {
		log.Printf("Session %s: sentiment failed: %v", s.ID, err)
		s.SentimentNotice = noticeFor(err)
		return err
	}

	s.Sentiment = out
	return nil
}

// RunEntities extracts entities from the session's review with the same
// failure rules as RunSentiment.
func (l *Loop) RunEntities(ctx context.Context, s *Session) error {
	if s.State() == Idle {
		return ErrNoReview
	}
	s.EntitiesNotice = ""

	out, err := l.entities.Extract(ctx, s.Review)
	if err != nil {
		log.Printf("Session %s: entity extraction failed: %v", s.ID, err)
		s.EntitiesNotice = "Could not extract named entities right now. Try again later."
		return err
	}

	s.Entities = out
	s.EntitiesShown = true
	return nil
}

func noticeFor(err error) string {
	var f *sentiment.Failure
	if errors.As(err, &f) {
		return f.Message()
	}
	return "Sentiment analysis failed."
}
