package client

import (
	"context"
	"sync"

	"github.com/anime-shed/ui-critic-go/pkg/models"

	"github.com/sirupsen/logrus"
)

// GenericError is the only failure message shown to the user
const GenericError = "Failed to analyze image. Please try again."

// Analyzer is implemented by Client
type Analyzer interface {
	Analyze(ctx context.Context, file SelectedFile) (*models.AnalysisResult, error)
}

// Session holds the current State and swaps it wholesale on every action
type Session struct {
	mu       sync.Mutex
	state    State
	analyzer Analyzer
	log      *logrus.Logger
}

// NewSession creates an empty session. log may be nil.
func NewSession(analyzer Analyzer, log *logrus.Logger) *Session {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Session{analyzer: analyzer, log: log}
}

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Select replaces selection, preview, feedback and error
func (s *Session) Select(file SelectedFile) State {
	return s.swap(func(State) State { return Selected(file) })
}

// Remove resets to the empty state
func (s *Session) Remove() State {
	return s.swap(func(State) State { return State{} })
}

// Analyze submits the selected file. It does nothing when no file is selected or a
// request is already running. A selection made while the request runs wins over
// its result.
func (s *Session) Analyze(ctx context.Context) State {
	s.mu.Lock()
	if !s.state.CanAnalyze() {
		st := s.state
		s.mu.Unlock()
		return st
	}
	s.state = s.state.Started()
	started := s.state
	s.mu.Unlock()

	result, err := s.analyzer.Analyze(ctx, *started.File)

	return s.swap(func(cur State) State {
		if cur.File != started.File {
			return cur
		}
		if err != nil {
			s.log.WithError(err).WithField("file", started.File.Name).Error("Analysis request failed")
			return cur.Failed(GenericError)
		}
		return cur.Succeeded(result)
	})
}

func (s *Session) swap(next func(State) State) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = next(s.state)
	return s.state
}
