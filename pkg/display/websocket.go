package display

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/dougsko/spectrowave/pkg/logging"
	"github.com/dougsko/spectrowave/pkg/spectrum"
)

// wireMessage is the JSON envelope streamed to connected browser clients.
type wireMessage struct {
	Type string    `json:"type"`
	Row  []uint32  `json:"row,omitempty"`
	HUD  *HUDState `json:"hud,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WebSocket is the realtime Display backed by a gin HTTP server exposing
// a gorilla/websocket streaming endpoint. Any number of browser clients
// may connect; each is sent the broadcast rows and HUD updates, except
// that a message is dropped for a client whose 32-message outgoing buffer
// is full.
type WebSocket struct {
	server *http.Server
	events chan InputEvent
	log    *logging.FieldLogger

	mu      sync.Mutex
	clients map[*websocket.Conn]chan wireMessage
}

// NewWebSocket starts listening on addr (host:port) and serving the
// streaming endpoint at /ws/spectrum.
func NewWebSocket(bindAddress string, port int) (*WebSocket, error) {
	d := &WebSocket{
		events:  make(chan InputEvent, 64),
		log:     logging.GetGlobalLogger().WithFields(map[string]interface{}{"worker": "display"}),
		clients: make(map[*websocket.Conn]chan wireMessage),
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/ws/spectrum", d.handleWebSocket)
	router.POST("/api/v1/input", d.handleInput)
	router.GET("/api/v1/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	addr := bindAddress + ":" + strconv.Itoa(port)
	d.server = &http.Server{Addr: addr, Handler: router}

	go func() {
		if err := d.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			d.log.Errorf("display", "listen on %s failed: %v", addr, err)
		}
	}()

	return d, nil
}

func (d *WebSocket) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		d.log.Errorf("display", "websocket upgrade failed: %v", err)
		return
	}

	out := make(chan wireMessage, 32)
	d.mu.Lock()
	d.clients[conn] = out
	d.mu.Unlock()

	go func() {
		defer func() {
			d.mu.Lock()
			delete(d.clients, conn)
			d.mu.Unlock()
			conn.Close()
		}()
		for msg := range out {
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}()

	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var evt InputEvent
			if json.Unmarshal(data, &evt) == nil {
				select {
				case d.events <- evt:
				default:
				}
			}
		}
	}()
}

func (d *WebSocket) handleInput(c *gin.Context) {
	var evt InputEvent
	if err := c.BindJSON(&evt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	select {
	case d.events <- evt:
	default:
	}
	c.Status(http.StatusAccepted)
}

func (d *WebSocket) broadcast(msg wireMessage) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for conn, ch := range d.clients {
		select {
		case ch <- msg:
		default:
			d.log.Warnf("display", "dropping message to slow client %s", conn.RemoteAddr())
		}
	}
}

func (d *WebSocket) PushRow(row []spectrum.Pixel) {
	packed := make([]uint32, len(row))
	for i, p := range row {
		packed[i] = uint32(p)
	}
	d.broadcast(wireMessage{Type: "row", Row: packed})
}

func (d *WebSocket) PushHUD(state HUDState) {
	d.broadcast(wireMessage{Type: "hud", HUD: &state})
}

func (d *WebSocket) Events() <-chan InputEvent {
	return d.events
}

func (d *WebSocket) ToggleFullscreen() {
	d.broadcast(wireMessage{Type: "toggle_fullscreen"})
}

func (d *WebSocket) Close() error {
	d.mu.Lock()
	for conn, ch := range d.clients {
		close(ch)
		conn.Close()
	}
	d.clients = nil
	d.mu.Unlock()
	close(d.events)
	return d.server.Close()
}
