package scheduler

import "errors"

var (
	// ErrRunnerNotRunning is returned when triggering a sweep on a stopped runner
	ErrRunnerNotRunning = errors.New("sweep runner is not running")

	// ErrInvalidSchedule is returned when a cron expression cannot be parsed
	ErrInvalidSchedule = errors.New("invalid sweep schedule")
)
