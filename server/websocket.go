package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/civiclab/councilsim/broadcast"
	"github.com/civiclab/councilsim/logging"
	"github.com/civiclab/councilsim/simulation"
)

const (
	writeTimeout = 10 * time.Second

	// closeSimulationNotFound is sent when the requested session id is
	// unknown.
	closeSimulationNotFound = 4004
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The API is same-origin agnostic; event delivery carries no
	// credentials and sessions are addressed by unguessable ids.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsObserver adapts one WebSocket connection to the hub's Observer
// interface. Writes are serialized; a failed or timed-out write reports an
// error so the hub prunes the connection.
type wsObserver struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (o *wsObserver) Send(data []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return o.conn.WriteMessage(websocket.TextMessage, data)
}

// handleSimulationSocket upgrades the connection, attaches it as an observer
// and starts the simulation run if it has not run yet. Later connections
// join the live stream of the existing run.
func handleSimulationSocket(mgr *simulation.Manager, hub *broadcast.Hub, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", "session_id", id, "error", err)
			return
		}

		if _, err := mgr.Get(id); err != nil {
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(closeSimulationNotFound, "simulation not found"),
				time.Now().Add(writeTimeout))
			conn.Close()
			return
		}

		obs := &wsObserver{conn: conn}
		hub.Connect(id, obs)
		logger.Info("observer connected", "session_id", id)

		if started, err := mgr.StartRun(id); err == nil && started {
			logger.Info("run started by observer", "session_id", id)
		}

		// Drain client frames until the connection drops. Clients send
		// nothing meaningful; the read loop exists to detect disconnect.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		hub.Disconnect(id, obs)
		conn.Close()
		logger.Info("observer disconnected", "session_id", id)
	}
}
