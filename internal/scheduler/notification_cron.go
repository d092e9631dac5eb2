package scheduler

import (
	"context"

	"github.com/campusshare/backend/internal/jobs"
	"github.com/campusshare/backend/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartNotificationCronJobs registers the background maintenance jobs and
// starts the scheduler.
func StartNotificationCronJobs(notificationService *services.NotificationService, deadlineNotifier *jobs.DeadlineNotifier) *cron.Cron {
	c := cron.New()

	// Deadline reminders for open resource requests
	c.AddFunc("0 8 * * *", func() {
		if err := deadlineNotifier.RunDailyScan(context.Background()); err != nil {
			logrus.WithError(err).Error("Deadline reminder scan failed")
		}
	})

	// Sweep notifications past their expiry
	c.AddFunc("@hourly", func() {
		if err := notificationService.DeleteExpiredNotifications(context.Background()); err != nil {
			logrus.WithError(err).Error("Expired notification sweep failed")
		}
	})

	c.Start()
	return c
}
