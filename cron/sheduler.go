package cron

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// cronLogger adapts zap to the cron.Logger interface.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}

// StartCron schedules every registered job and starts the scheduler. A job
// that panics is recovered and logged; overlapping runs are skipped.
func StartCron(logger *zap.Logger) (*cron.Cron, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := cronLogger{s: logger.Named("cron").Sugar()}
	c := cron.New(
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)
	for name, j := range Jobs() {
		run := j.Run
		if _, err := c.AddFunc(j.Schedule, func() { run() }); err != nil {
			return nil, fmt.Errorf("register job %s (%q): %w", name, j.Schedule, err)
		}
		logger.Info("cron job scheduled", zap.String("job", name), zap.String("schedule", j.Schedule))
	}
	c.Start()
	return c, nil
}
