package sentiment

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

var (
	ErrMissingAPIKey   = errors.New("openai api key is not configured")
	ErrEmptyReview     = errors.New("review text is empty")
	ErrUnknownCategory = errors.New("unknown review category")
	ErrEmptyResponse   = errors.New("openai returned empty response or choices")
)

type Kind string

const (
	KindConfig    Kind = "config"
	KindInvalid   Kind = "invalid"
	KindAuth      Kind = "auth"
	KindQuota     Kind = "quota"
	KindTransport Kind = "transport"
	KindEmpty     Kind = "empty"
)

// Failure is a sentiment request that produced no usable narrative.
type Failure struct {
	Kind Kind
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("sentiment %s failure: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Message is the text shown to the user next to the sentiment action.
func (f *Failure) Message() string {
	switch f.Kind {
	case KindConfig:
		return "Sentiment analysis is unavailable: the OpenAI API key is not configured."
	case KindInvalid:
		if errors.Is(f.Err, ErrUnknownCategory) {
			return "Please choose a review category: Food, Product, Place or Other."
		}
		return "Please enter a review to analyze."
	case KindAuth:
		return "The sentiment service rejected our credentials."
	case KindQuota:
		return "The sentiment service is over its quota or rate limit. Try again later."
	case KindEmpty:
		return "The sentiment service returned an empty answer."
	default:
		return "Could not reach the sentiment service."
	}
}

// KindOf returns the failure kind of err, or KindTransport when err is not a *Failure.
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindTransport
}

func classify(err error) *Failure {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &Failure{Kind: KindAuth, Err: err}
	case http.StatusTooManyRequests:
		return &Failure{Kind: KindQuota, Err: err}
	default:
		return &Failure{Kind: KindTransport, Err: err}
	}
}
