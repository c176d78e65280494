/*
scheduler.go - Cron-driven automatic rollover

PURPOSE:
  Runs the year-end rollover on a cron schedule so nobody has to
  remember to trigger it in January. Disabled unless a cron spec is
  configured; the manual admin endpoint always works regardless.

DESIGN:
  - Each firing rolls the PREVIOUS calendar year into the current one,
    so a spec like "0 2 1 1 *" (02:00 on Jan 1) picks up the year that
    just ended.
  - Rollover is idempotent, so an overlapping manual trigger or a
    restarted scheduler causes no duplicate rows.

SEE ALSO:
  - rollover/rollover.go: The Roller itself
*/
package rollover

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler fires the rollover on a cron schedule.
type Scheduler struct {
	Roller *Roller
	Now    func() time.Time

	cron *cron.Cron
}

// NewScheduler creates a scheduler around the given roller.
func NewScheduler(roller *Roller) *Scheduler {
	return &Scheduler{
		Roller: roller,
		Now:    time.Now,
		cron:   cron.New(),
	}
}

// Start registers the job under spec and starts the cron runner.
// An invalid spec is returned as an error before anything runs.
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		year := s.Now().Year() - 1
		if _, err := s.Roller.Run(context.Background(), year); err != nil {
			s.Roller.Log.Error().Err(err).Int("from_year", year).Msg("scheduled rollover failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid rollover cron spec %q: %w", spec, err)
	}

	s.cron.Start()
	s.Roller.Log.Info().Str("spec", spec).Msg("rollover scheduler started")
	return nil
}

// Stop halts the cron runner and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
