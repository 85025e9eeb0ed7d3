package maintenance

import (
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Sweeper periodically removes stale files from the upload scratch
// directory. Multipart uploads that never completed leave temp files
// behind; anything older than maxAge is garbage.
type Sweeper struct {
	dir      string
	maxAge   time.Duration
	schedule cron.Schedule
	done     chan bool
}

// NewSweeper creates a sweeper for dir. cadence is a standard cron
// expression ("@hourly" works well); files older than maxAge are removed
// on each pass.
func NewSweeper(dir string, maxAge time.Duration, cadence string) (*Sweeper, error) {
	schedule, err := cron.ParseStandard(cadence)
	if err != nil {
		return nil, err
	}
	return &Sweeper{
		dir:      dir,
		maxAge:   maxAge,
		schedule: schedule,
		done:     make(chan bool),
	}, nil
}

// Run starts the sweeping loop. It blocks until Stop is called.
func (s *Sweeper) Run() {
	log.Info().Str("dir", s.dir).Msg("Starting upload sweeper")

	// Run once immediately on start
	s.sweep()

	for {
		timer := time.NewTimer(time.Until(s.schedule.Next(time.Now())))
		select {
		case <-s.done:
			timer.Stop()
			log.Info().Msg("Stopping upload sweeper")
			return
		case <-timer.C:
			s.sweep()
		}
	}
}

// Stop halts the sweeper.
func (s *Sweeper) Stop() {
	s.done <- true
}

// sweep removes every regular file in the directory older than maxAge.
func (s *Sweeper) sweep() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("dir", s.dir).Msg("Sweeper: failed to read upload dir")
		}
		return
	}

	cutoff := time.Now().Add(-s.maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
				log.Warn().Err(err).Str("file", entry.Name()).Msg("Sweeper: failed to remove stale upload")
				continue
			}
			removed++
		}
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Msg("Sweeper: pruned stale uploads")
	}
}
