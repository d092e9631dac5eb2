package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/campusshare/backend/internal/repository"
	"github.com/campusshare/backend/internal/services"
	"github.com/sirupsen/logrus"
)

// DeadlineNotifier scans open resource requests and reminds their owners
// about deadlines arriving within the next 24 hours.
type DeadlineNotifier struct {
	RequestRepo         *repository.ResourceRequestRepository
	NotificationService *services.NotificationService
}

// NewDeadlineNotifier creates a new instance of DeadlineNotifier.
func NewDeadlineNotifier(requestRepo *repository.ResourceRequestRepository, notifService *services.NotificationService) *DeadlineNotifier {
	return &DeadlineNotifier{
		RequestRepo:         requestRepo,
		NotificationService: notifService,
	}
}

// RunDailyScan sends at most one reminder per request per day.
func (d *DeadlineNotifier) RunDailyScan(ctx context.Context) error {
	now := time.Now()
	cutoff := now.Add(24 * time.Hour)

	requests, err := d.RequestRepo.GetOpenRequestsWithDeadlineBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to fetch requests with upcoming deadlines: %v", err)
	}

	sent := 0
	for _, req := range requests {
		last := d.NotificationService.LatestReminderFor(ctx, req.RequesterID, req.ID)
		if last != nil && now.Sub(last.CreatedAt) < 24*time.Hour {
			continue
		}
		if err := d.NotificationService.NotifyDeadlineReminder(ctx, req.RequesterID, req.Title, req.ID, req.Deadline); err != nil {
			logrus.WithError(err).WithField("requestID", req.ID.Hex()).Warn("Failed to send deadline reminder")
			continue
		}
		sent++
	}

	logrus.WithFields(logrus.Fields{
		"scanned": len(requests),
		"sent":    sent,
	}).Info("Deadline scan completed")
	return nil
}
