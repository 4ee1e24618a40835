package competition

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/mcoot/reflextile/internal/dependencies/clock"
	"github.com/mcoot/reflextile/internal/model"
)

// DefaultFile is where the state is kept when no path is configured
const DefaultFile = "competition.json"

// Service tracks whether the competition is open. The state lives in a JSON
// file so it survives restarts; a missing or unreadable file means open.
type Service struct {
	path   string
	clock  clock.Clock
	logger *slog.Logger

	mu    sync.RWMutex
	state model.CompetitionState
}

// New loads the state from path
func New(path string, clock clock.Clock, logger *slog.Logger) *Service {
	if path == "" {
		path = DefaultFile
	}
	s := &Service{
		path:   path,
		clock:  clock,
		logger: logger,
	}
	s.state = s.load()
	return s
}

// State returns a copy of the current state
func (s *Service) State() model.CompetitionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Open starts a new competition period
func (s *Service) Open() (model.CompetitionState, error) {
	now := s.clock.Now()
	return s.set(func(model.CompetitionState) model.CompetitionState {
		return model.CompetitionState{Open: true, StartedAt: &now}
	}, "opened")
}

// Close ends the current period, keeping its start time
func (s *Service) Close() (model.CompetitionState, error) {
	now := s.clock.Now()
	return s.set(func(prev model.CompetitionState) model.CompetitionState {
		return model.CompetitionState{Open: false, StartedAt: prev.StartedAt, EndedAt: &now}
	}, "closed")
}

func (s *Service) set(next func(model.CompetitionState) model.CompetitionState, action string) (model.CompetitionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = next(s.state)
	s.logger.Info("competition "+action, slog.Bool("open", s.state.Open))

	if err := s.save(s.state); err != nil {
		s.logger.Error("failed to save competition state",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
		)
		return s.state.Clone(), err
	}
	return s.state.Clone(), nil
}

func (s *Service) load() model.CompetitionState {
	def := model.CompetitionState{Open: true}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("failed to read competition state",
				slog.String("path", s.path),
				slog.String("error", err.Error()),
			)
		}
		return def
	}

	state := def
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Warn("ignoring corrupt competition state",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
		)
		return def
	}
	return state
}

// save writes through a temp file so a crash never leaves a torn file
func (s *Service) save(state model.CompetitionState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".competition-*.json")
	if err != nil {
		return fmt.Errorf("save competition state: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save competition state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save competition state: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("save competition state: %w", err)
	}
	return nil
}
