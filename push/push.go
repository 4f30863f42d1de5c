package push

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"studio/config"
	"time"
)

const (
	NotificationTypeProofs        = "proofs"
	NotificationTypeGalleryExpiry = "gallery_expiry"
)

var httpClient = http.Client{Timeout: 10 * time.Second}

type Notification struct {
	Type       string            `json:"type"`
	UserTokens []string          `json:"user_tokens" binding:"required"`
	Title      string            `json:"title"`
	Body       string            `json:"body"`
	Data       map[string]string `json:"data"`
}

func (notification *Notification) SendTo(UserTokens []string) error {
	notification.UserTokens = UserTokens
	return notification.Send()
}

func (notification *Notification) Send() error {
	if config.PUSH_SERVER == "" {
		return nil
	}
	buf := bytes.Buffer{}
	if err := json.NewEncoder(&buf).Encode(*notification); err != nil {
		return err
	}
	resp, err := httpClient.Post(config.PUSH_SERVER+"/send", "application/json", &buf)
	if err != nil {
		log.Printf("SendPushNotification, error: %v", err)
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		buf.Reset()
		io.Copy(&buf, resp.Body)
		log.Printf("SendPushNotification error, status: %d, %s", resp.StatusCode, buf.String())
		return fmt.Errorf("status: %d", resp.StatusCode)
	}
	return nil
}
