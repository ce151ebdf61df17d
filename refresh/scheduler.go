package refresh

import (
	"context"

	"github.com/golang/glog"
	"github.com/robfig/cron"
)

// Scheduler refreshes every expired key of a target on a cron schedule,
// independently of reads.
type Scheduler struct {
	cron *cron.Cron
}

// Schedule starts a periodic sweep of target. expr is a robfig/cron
// expression with a seconds field, e.g. "@every 30s" or "0 */5 * * * *".
// Call Stop to end it.
func Schedule(expr string, target Target) (*Scheduler, error) {
	c := cron.New()
	err := c.AddFunc(expr, func() {
		n, err := Expired(context.Background(), target, 0)
		if err != nil {
			glog.Warningf("refresh: scheduled sweep: %v", err)
			return
		}
		if glog.V(2) {
			glog.Infof("refresh: scheduled sweep regenerated %d keys", n)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return &Scheduler{cron: c}, nil
}

// Stop ends the schedule. A sweep already running finishes on its own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
