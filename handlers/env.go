package handlers

import (
	"go-reviewlens/session"
)

type Analyzer interface {
	session.SentimentAnalyzer
	Enabled() bool
}

type Extractor interface {
	session.EntityExtractor
	Enabled() bool
}

// Env carries the process-wide resources shared by every handler.
type Env struct {
	Sessions  *session.Store
	Loop      *session.Loop
	Analyzer  Analyzer
	Extractor Extractor
	// Warnings are configuration problems found at startup.
	Warnings []string
}

func NewEnv(store *session.Store, analyzer Analyzer, extractor Extractor, warnings []string) *Env {
	return &Env{
		Sessions:  store,
		Loop:      session.NewLoop(analyzer, extractor),
		Analyzer:  analyzer,
		Extractor: extractor,
		Warnings:  warnings,
	}
}
