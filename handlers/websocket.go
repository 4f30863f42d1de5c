package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"studio/gallery"
	"studio/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	cmap "github.com/orcaman/concurrent-map/v2"
)

const clientQueueSize = 64

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ConnectedClient receives the studio owner's gallery events. Messages are dropped
// when the client falls behind
type ConnectedClient struct {
	send chan []byte
}

// ConnectedClients is needed as a user may be connected more than once
type ConnectedClients []*ConnectedClient

// LiveFeed pushes proofing activity to the websockets of the gallery owner
type LiveFeed struct {
	clients cmap.ConcurrentMap[string, ConnectedClients]
}

func NewLiveFeed() *LiveFeed {
	return &LiveFeed{clients: cmap.New[ConnectedClients]()}
}

func socketID(userID uint64) string {
	return "user-" + strconv.FormatUint(userID, 10)
}

func (f *LiveFeed) addClient(id string, c *ConnectedClient) {
	f.clients.Upsert(id, ConnectedClients{c}, func(exist bool, valueInMap, newValue ConnectedClients) ConnectedClients {
		if exist {
			return append(valueInMap, c)
		}
		return newValue
	})
}

func (f *LiveFeed) removeClient(id string, c *ConnectedClient) {
	f.clients.Upsert(id, ConnectedClients{}, func(exist bool, valueInMap, newValue ConnectedClients) ConnectedClients {
		if !exist {
			return newValue
		}
		for _, oc := range valueInMap {
			if oc == c {
				continue
			}
			newValue = append(newValue, oc)
		}
		return newValue
	})
	f.clients.RemoveCb(id, func(key string, v ConnectedClients, exists bool) bool {
		return exists && len(v) == 0
	})
}

// Publish never blocks
func (f *LiveFeed) Publish(e gallery.Event) {
	clients, ok := f.clients.Get(socketID(e.OwnerID))
	if !ok || len(clients) == 0 {
		return
	}
	data, err := json.Marshal(e)
	if err != nil {
		log.Printf("Live feed marshal error: %v", err)
		return
	}
	for _, client := range clients {
		select {
		case client.send <- data:
		default:
		}
	}
}

// Handler upgrades the request of a studio user and streams their gallery events
func (f *LiveFeed) Handler(c *gin.Context, user *models.User) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Print("upgrade:", err)
		return
	}
	defer conn.Close()

	id := socketID(user.ID)
	client := &ConnectedClient{send: make(chan []byte, clientQueueSize)}
	f.addClient(id, client)
	defer f.removeClient(id, client)

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			case data := <-client.send:
				if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
					log.Println("write err:", err)
					conn.Close()
					return
				}
			}
		}
	}()
	// Main read cycle
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if string(message) == "ping" {
			select {
			case client.send <- []byte("pong"):
			default:
			}
		}
	}
}
