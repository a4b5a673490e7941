package scheduler

import "errors"

// ErrSchedulerNotRunning is returned when trying to trigger a stopped scheduler
var ErrSchedulerNotRunning = errors.New("scheduler is not running")
