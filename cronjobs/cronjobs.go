package cronjobs

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Purger is anything that can drop idle in-memory state.
type Purger interface {
	PurgeIdle() int
}

// InitCronJobs schedules the session purge and starts the scheduler.
// Call Stop on the returned cron when shutting down.
func InitCronJobs(spec string, sessions Purger) (*cron.Cron, error) {
	log.Println("Starting Cron Jobs")
	c := cron.New()

	_, err := c.AddFunc(spec, func() {
		removed := sessions.PurgeIdle()
		log.Printf("CronJob: session purge removed %d sessions", removed)
	})
	if err != nil {
		return nil, fmt.Errorf("schedule session purge %q: %w", spec, err)
	}

	c.Start()
	return c, nil
}
