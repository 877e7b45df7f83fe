//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rios0rios0/depbot/internal/domain/entities"
	"github.com/rios0rios0/depbot/internal/domain/repositories"
)

// CommandHandler answers one command. Returning handled=false falls back to
// a successful, silent result.
type CommandHandler func(dir string, command entities.Command) (result entities.CommandResult, handled bool, err error)

// RecordedCommand is one call received by ScriptedCommandRepository.
type RecordedCommand struct {
	Dir     string
	Command entities.Command
	Timeout time.Duration
}

// ScriptedCommandRepository implements repositories.CommandRepository by
// recording every command and delegating the answer to Handler.
type ScriptedCommandRepository struct {
	mu      sync.Mutex
	Handler CommandHandler
	Calls   []RecordedCommand
}

var _ repositories.CommandRepository = (*ScriptedCommandRepository)(nil)

func (s *ScriptedCommandRepository) Execute(
	_ context.Context,
	dir string,
	command entities.Command,
	timeout time.Duration,
) (entities.CommandResult, error) {
	s.mu.Lock()
	s.Calls = append(s.Calls, RecordedCommand{Dir: dir, Command: command, Timeout: timeout})
	handler := s.Handler
	s.mu.Unlock()

	if handler != nil {
		if result, handled, err := handler(dir, command); handled {
			return result, err
		}
	}
	return entities.CommandResult{}, nil
}

// Lines returns every received command rendered as a command line.
func (s *ScriptedCommandRepository) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]string, 0, len(s.Calls))
	for _, call := range s.Calls {
		lines = append(lines, call.Command.String())
	}
	return lines
}

// Ran reports whether any received command line starts with prefix.
func (s *ScriptedCommandRepository) Ran(prefix string) bool {
	for _, line := range s.Lines() {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// Find returns the first received call whose command line starts with prefix.
func (s *ScriptedCommandRepository) Find(prefix string) (RecordedCommand, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, call := range s.Calls {
		if strings.HasPrefix(call.Command.String(), prefix) {
			return call, true
		}
	}
	return RecordedCommand{}, false
}
