package persist

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
)

// ParseClock parses a 24h "HH:MM" wall-clock time.
func ParseClock(s string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("persist: invalid clock time %q", s)
	}
	hour, err = strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("persist: invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("persist: invalid minute in %q", s)
	}
	return hour, minute, nil
}

// NewSchedule returns a cron (not yet started) that calls trigger once a
// day at each of the given "HH:MM" local times.
func NewSchedule(times []string, trigger func(), logger *slog.Logger) (*cron.Cron, error) {
	c := cron.New()
	for _, t := range times {
		hour, minute, err := ParseClock(t)
		if err != nil {
			return nil, err
		}
		at := t
		spec := fmt.Sprintf("%d %d * * *", minute, hour)
		if _, err := c.AddFunc(spec, func() {
			logger.Info("persist: scheduled save", slog.String("at", at))
			trigger()
		}); err != nil {
			return nil, fmt.Errorf("persist: schedule %q: %w", t, err)
		}
	}
	return c, nil
}
