// Package scheduler triggers the daily riddle generation.
package scheduler

import (
	"context"
	"time"

	"github.com/riddleworks/dailyriddle/internal/riddle"
	"github.com/riddleworks/dailyriddle/internal/settings"
	log "github.com/sirupsen/logrus"
)

// Scheduler fires the unmetered generation path once per day at a fixed
// local wall-clock hour.
type Scheduler struct {
	service *riddle.Service
	hour    int
	now     func() time.Time
}

// New constructs a Scheduler generating at the given local hour (0-23).
func New(service *riddle.Service, hour int) *Scheduler {
	if hour < 0 || hour > 23 {
		hour = 0
	}
	return &Scheduler{service: service, hour: hour, now: time.Now}
}

// Start launches the scheduling loop in a background goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	if s == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	go s.run(ctx)
	log.Infof("scheduler started (daily at %02d:00 local time)", s.scheduleHour())
}

func (s *Scheduler) run(ctx context.Context) {
	for {
		wait := s.untilNextRun(s.now())
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}
			return
		case <-timer.C:
		}

		log.Info("scheduler: generating daily riddle")
		if _, errGenerate := s.service.GenerateScheduled(ctx); errGenerate != nil {
			log.WithError(errGenerate).Error("scheduler: daily riddle generation failed")
			continue
		}
		log.Info("scheduler: daily riddle generated")
	}
}

// scheduleHour resolves the configured hour, letting the DAILY_RIDDLE_HOUR
// setting override the constructor value at runtime.
func (s *Scheduler) scheduleHour() int {
	hour := settings.IntValue(settings.DailyRiddleHourKey, s.hour)
	if hour < 0 || hour > 23 {
		return s.hour
	}
	return hour
}

// untilNextRun computes the duration until the next daily boundary. The
// local clock is used on purpose so the daily riddle and the quota reset
// move together.
func (s *Scheduler) untilNextRun(now time.Time) time.Duration {
	hour := s.scheduleHour()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
