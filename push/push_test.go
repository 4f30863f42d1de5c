package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"studio/config"
	"studio/db"
	"studio/gallery"
	"studio/models"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type pushServer struct {
	sync.Mutex
	received []Notification
	status   int
}

func startPushServer(t *testing.T) *pushServer {
	s := &pushServer{status: http.StatusOK}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/send", r.URL.Path)
		n := Notification{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&n))
		s.Lock()
		s.received = append(s.received, n)
		status := s.status
		s.Unlock()
		w.WriteHeader(status)
	}))
	previous := config.PUSH_SERVER
	config.PUSH_SERVER = server.URL
	t.Cleanup(func() {
		server.Close()
		config.PUSH_SERVER = previous
	})
	return s
}

func openDB(t *testing.T, name string) *gorm.DB {
	conn, err := db.Open(sqlite.Open("file:" + name + "?mode=memory&cache=shared"))
	require.NoError(t, err)
	require.NoError(t, models.Migrate(conn))
	return conn
}

func TestNotification_Send(t *testing.T) {
	server := startPushServer(t)
	n := Notification{Type: NotificationTypeProofs, Title: "t", Body: "b"}
	require.NoError(t, n.SendTo([]string{"token"}))
	require.Len(t, server.received, 1)
	assert.Equal(t, []string{"token"}, server.received[0].UserTokens)

	server.status = http.StatusBadGateway
	assert.Error(t, n.Send())
}

func TestProofNotifier_BatchesPerSession(t *testing.T) {
	server := startPushServer(t)
	conn := openDB(t, "proofnotifier")
	owner := models.User{Name: "Studio", Email: "owner@example.com", PushToken: "owner-token"}
	require.NoError(t, conn.Create(&owner).Error)
	client := models.ClientProfile{StudioID: owner.ID, Name: "Anna"}
	require.NoError(t, conn.Create(&client).Error)

	n := NewProofNotifier(conn, time.Minute)
	for _, e := range []gallery.Event{
		{Type: gallery.EventProofRecorded, OwnerID: owner.ID, GalleryID: 3, GalleryName: "Wedding", SessionID: "s1", ClientProfileID: &client.ID, IsFavorite: true},
		{Type: gallery.EventProofRecorded, OwnerID: owner.ID, GalleryID: 3, GalleryName: "Wedding", SessionID: "s1", ClientProfileID: &client.ID, IsFavorite: true, IsMarkedForEditing: true},
		{Type: gallery.EventDownload, OwnerID: owner.ID, GalleryID: 3, SessionID: "s1", Count: 2},
	} {
		n.Publish(e)
	}
	require.Len(t, n.events, 2)
	for len(n.events) > 0 {
		n.add(<-n.events)
	}
	n.flush()

	require.Len(t, server.received, 1)
	got := server.received[0]
	assert.Equal(t, []string{"owner-token"}, got.UserTokens)
	assert.Equal(t, "Gallery \"Wedding\"", got.Title)
	assert.Equal(t, "Anna favorited 2 photos and asked for edits on 1 photo", got.Body)
	assert.Equal(t, "3", got.Data["gallery"])
	assert.Empty(t, n.pending)
}

func TestProofNotifier_Start(t *testing.T) {
	server := startPushServer(t)
	conn := openDB(t, "proofnotifierstart")
	owner := models.User{Name: "Studio", Email: "owner@example.com", PushToken: "owner-token"}
	require.NoError(t, conn.Create(&owner).Error)

	n := NewProofNotifier(conn, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		n.Start(ctx)
		close(done)
	}()
	n.Publish(gallery.Event{Type: gallery.EventProofRecorded, OwnerID: owner.ID, GalleryID: 1, GalleryName: "Family", SessionID: "s", IsMarkedForEditing: true})
	require.Eventually(t, func() bool { return len(n.events) == 0 }, time.Second, 10*time.Millisecond)
	// let the loop pick the event up before stopping
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	server.Lock()
	defer server.Unlock()
	require.Len(t, server.received, 1)
	assert.Equal(t, "A visitor asked for edits on 1 photo", server.received[0].Body)
}

func TestSendExpiryReminders(t *testing.T) {
	server := startPushServer(t)
	conn := openDB(t, "reminders")
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	owner := models.User{Name: "Studio", Email: "owner@example.com", PushToken: "owner-token"}
	require.NoError(t, conn.Create(&owner).Error)
	quiet := models.User{Name: "Quiet", Email: "quiet@example.com"}
	require.NoError(t, conn.Create(&quiet).Error)

	galleries := []models.Gallery{
		{UserID: owner.ID, Name: "Soon", IsActive: true, ExpiryDate: now.Add(3*24*time.Hour + time.Hour)},
		{UserID: owner.ID, Name: "Later", IsActive: true, ExpiryDate: now.AddDate(0, 1, 0)},
		{UserID: owner.ID, Name: "Gone", IsActive: true, ExpiryDate: now.Add(-time.Hour)},
		{UserID: owner.ID, Name: "Hidden", IsActive: false, ExpiryDate: now.Add(time.Hour)},
		{UserID: quiet.ID, Name: "No token", IsActive: true, ExpiryDate: now.Add(time.Hour)},
	}
	require.NoError(t, conn.Create(&galleries).Error)

	sent, err := sendExpiryReminders(context.Background(), conn, now, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, server.received, 1)
	assert.Equal(t, "Gallery \"Soon\"", server.received[0].Title)
	assert.Equal(t, "Expires in 3 days", server.received[0].Body)

	sent, err = sendExpiryReminders(context.Background(), conn, now, 7)
	require.NoError(t, err)
	assert.Zero(t, sent)

	var reminded int64
	require.NoError(t, conn.Model(&models.Gallery{}).Where("reminder_sent_at IS NOT NULL").Count(&reminded).Error)
	assert.Equal(t, int64(2), reminded)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "favorited 1 photo", describe(&proofBatch{favorites: 1}))
	assert.Equal(t, "asked for edits on 4 photos", describe(&proofBatch{edits: 4}))
}
