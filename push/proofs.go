package push

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"studio/config"
	"studio/gallery"
	"studio/models"
	"time"

	"gorm.io/gorm"
)

type proofKey struct {
	ownerID   uint64
	galleryID uint64
	sessionID string
}

type proofBatch struct {
	galleryName string
	clientID    *uint64
	favorites   int
	edits       int
}

// ProofNotifier tells studio owners about client proofing activity. Events are
// collected per session and sent as one notification every flush interval
type ProofNotifier struct {
	DB      *gorm.DB
	Every   time.Duration
	events  chan gallery.Event
	pending map[proofKey]*proofBatch
}

func NewProofNotifier(db *gorm.DB, every time.Duration) *ProofNotifier {
	return &ProofNotifier{
		DB:      db,
		Every:   every,
		events:  make(chan gallery.Event, 1000),
		pending: map[proofKey]*proofBatch{},
	}
}

// Publish never blocks, events are dropped when the queue is full
func (n *ProofNotifier) Publish(e gallery.Event) {
	if e.Type != gallery.EventProofRecorded || config.PUSH_SERVER == "" {
		return
	}
	select {
	case n.events <- e:
	default:
		log.Printf("Push queue full, dropping proof event for gallery %d", e.GalleryID)
	}
}

func (n *ProofNotifier) Start(ctx context.Context) {
	ticker := time.NewTicker(n.Every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			n.flush()
			return
		case e := <-n.events:
			n.add(e)
		case <-ticker.C:
			n.flush()
		}
	}
}

func (n *ProofNotifier) add(e gallery.Event) {
	key := proofKey{ownerID: e.OwnerID, galleryID: e.GalleryID, sessionID: e.SessionID}
	batch, ok := n.pending[key]
	if !ok {
		batch = &proofBatch{galleryName: e.GalleryName, clientID: e.ClientProfileID}
		n.pending[key] = batch
	}
	if e.IsFavorite {
		batch.favorites++
	}
	if e.IsMarkedForEditing {
		batch.edits++
	}
}

func (n *ProofNotifier) flush() {
	for key, batch := range n.pending {
		delete(n.pending, key)
		notification, err := n.notificationFor(key, batch)
		if err != nil {
			log.Printf("Proof notification error for gallery %d: %v", key.galleryID, err)
			continue
		}
		if notification != nil {
			notification.Send()
		}
	}
}

// notificationFor returns nil when the owner has no push token or there is nothing to say
func (n *ProofNotifier) notificationFor(key proofKey, batch *proofBatch) (*Notification, error) {
	if batch.favorites == 0 && batch.edits == 0 {
		return nil, nil
	}
	owner := models.User{}
	if err := n.DB.First(&owner, key.ownerID).Error; err != nil {
		return nil, err
	}
	if owner.PushToken == "" {
		return nil, nil
	}
	who := "A visitor"
	if batch.clientID != nil {
		client := models.ClientProfile{}
		if err := n.DB.First(&client, *batch.clientID).Error; err == nil && client.Name != "" {
			who = client.Name
		}
	}
	return &Notification{
		Type:       NotificationTypeProofs,
		UserTokens: []string{owner.PushToken},
		Title:      "Gallery \"" + batch.galleryName + "\"",
		Body:       who + " " + describe(batch),
		Data: map[string]string{
			"type":    NotificationTypeProofs,
			"gallery": strconv.FormatUint(key.galleryID, 10),
		},
	}, nil
}

func describe(batch *proofBatch) string {
	parts := []string{}
	if batch.favorites > 0 {
		parts = append(parts, fmt.Sprintf("favorited %s", photos(batch.favorites)))
	}
	if batch.edits > 0 {
		parts = append(parts, fmt.Sprintf("asked for edits on %s", photos(batch.edits)))
	}
	if len(parts) == 2 {
		return parts[0] + " and " + parts[1]
	}
	return parts[0]
}

func photos(count int) string {
	if count == 1 {
		return "1 photo"
	}
	return strconv.Itoa(count) + " photos"
}
