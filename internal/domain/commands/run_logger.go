package commands

import (
	"sync"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depbot/internal/domain/entities"
)

// reportHook copies every message at Info level or above into the run report.
type reportHook struct {
	mu     sync.Mutex
	report *entities.Report
}

func (h *reportHook) Levels() []logger.Level {
	return []logger.Level{
		logger.PanicLevel,
		logger.FatalLevel,
		logger.ErrorLevel,
		logger.WarnLevel,
		logger.InfoLevel,
	}
}

func (h *reportHook) Fire(entry *logger.Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.report.Messages = append(h.report.Messages, entry.Message)
	return nil
}

// newRunLogger builds a logger private to one run, shaped like the standard
// one, so nothing a run configures leaks into the next.
func newRunLogger(report *entities.Report, verbose bool) *logger.Logger {
	standard := logger.StandardLogger()

	log := logger.New()
	log.SetFormatter(standard.Formatter)
	log.SetOutput(standard.Out)
	log.SetLevel(standard.GetLevel())
	if verbose {
		log.SetLevel(logger.DebugLevel)
	}
	log.AddHook(&reportHook{report: report})
	return log
}
