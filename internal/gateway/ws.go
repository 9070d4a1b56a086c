package gateway

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin checking is handled by the CORS layer in front of the
	// router; the gateway accepts whatever reached it.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades an HTTP request to a websocket connection and starts
// its pumps. Each connection gets its own message rate limiter.
func ServeWS(hub *Hub, actions Actions, limit rate.Limit, burst int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("❌ Websocket upgrade failed: %v", err)
			return
		}

		client := newClient(uuid.NewString(), hub, conn, actions, rate.NewLimiter(limit, burst))
		hub.register(client)
		log.Printf("🟢 Connection %s established", client.ID)

		go client.writePump()
		go client.readPump()
	}
}
