package push

import (
	"context"
	"log"
	"strconv"
	"studio/models"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// StartExpiryReminders notifies gallery owners once when a gallery gets within
// days of its expiry date. The returned cron must be stopped on shutdown
func StartExpiryReminders(db *gorm.DB, schedule string, days int) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
		defer cancel()
		sent, err := sendExpiryReminders(ctx, db, time.Now().UTC(), days)
		if err != nil {
			log.Printf("Expiry reminders error: %v", err)
			return
		}
		if sent > 0 {
			log.Printf("Expiry reminders sent: %d", sent)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

// sendExpiryReminders marks every reminded gallery so it is reminded only once
func sendExpiryReminders(ctx context.Context, db *gorm.DB, now time.Time, days int) (int, error) {
	galleries := []models.Gallery{}
	err := db.WithContext(ctx).
		Preload("User").
		Where("is_active = ? AND reminder_sent_at IS NULL AND expiry_date > ? AND expiry_date <= ?", true, now, now.AddDate(0, 0, days)).
		Find(&galleries).Error
	if err != nil {
		return 0, err
	}
	sent := 0
	for i := range galleries {
		g := &galleries[i]
		if g.User.PushToken != "" {
			left := g.DaysUntilExpiry(now)
			when := "in " + strconv.Itoa(left) + " days"
			if left == 0 {
				when = "today"
			} else if left == 1 {
				when = "tomorrow"
			}
			notification := Notification{
				Type:       NotificationTypeGalleryExpiry,
				UserTokens: []string{g.User.PushToken},
				Title:      "Gallery \"" + g.Name + "\"",
				Body:       "Expires " + when,
				Data: map[string]string{
					"type":    NotificationTypeGalleryExpiry,
					"gallery": strconv.FormatUint(g.ID, 10),
				},
			}
			if err = notification.Send(); err != nil {
				continue
			}
			sent++
		}
		if err = db.WithContext(ctx).Model(g).Update("reminder_sent_at", now).Error; err != nil {
			log.Printf("Expiry reminder update error for gallery %d: %v", g.ID, err)
		}
	}
	return sent, nil
}
