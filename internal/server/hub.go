package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/tripleset/server/internal/config"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 512
)

// Hub owns the websocket boundary: it upgrades connections, runs the
// per-connection read/write pumps and maps inbound frames to coordinator
// calls.
type Hub struct {
	state      *State
	upgrader   websocket.Upgrader
	limit      rate.Limit
	burst      int
	sendBuffer int
}

func NewHub(state *State, cfg config.Config) *Hub {
	return &Hub{
		state: state,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The transient per-connection name is the only identity, so
			// cross-origin pages get no more than anyone else.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		limit:      rate.Limit(cfg.MsgRate),
		burst:      cfg.MsgBurst,
		sendBuffer: cfg.SendBuffer,
	}
}

// Mount attaches the websocket endpoint to the given Gin engine.
func (h *Hub) Mount(r *gin.Engine) {
	r.GET("/ws", h.serveWS)
}

func (h *Hub) serveWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	client := h.state.Register(h.sendBuffer)
	log.Info().Str("client", client.ID).Msg("websocket connected")

	go h.writePump(conn, client)
	h.readPump(conn, client)
}

func (h *Hub) readPump(conn *websocket.Conn, client *Client) {
	defer func() {
		h.state.Disconnect(client.ID, time.Now())
		conn.Close()
		log.Info().Str("client", client.ID).Msg("websocket disconnected")
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	limiter := h.newLimiter()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Str("client", client.ID).Err(err).Msg("read failed")
			}
			return
		}
		if !limiter.Allow() {
			log.Warn().Str("client", client.ID).Msg("rate limit exceeded, dropping frame")
			continue
		}
		h.dispatch(client, data)
	}
}

// newLimiter builds the per-connection inbound frame limiter.
func (h *Hub) newLimiter() *rate.Limiter {
	return rate.NewLimiter(h.limit, h.burst)
}

func (h *Hub) writePump(conn *websocket.Conn, client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case frame, ok := <-client.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// dispatch maps one inbound frame to a coordinator call. Malformed and
// unrecognized frames are logged and ignored; the connection stays up.
func (h *Hub) dispatch(client *Client, data []byte) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Warn().Str("client", client.ID).Err(err).Msg("malformed message")
		return
	}

	now := time.Now()
	switch msg.Type {
	case msgViewRoom:
		h.state.ViewRoom(client.ID, msg.ID, now)
	case msgJoinRoom:
		if err := h.state.JoinRoom(client.ID, msg.Name, now); err != nil {
			log.Info().Str("client", client.ID).Str("name", msg.Name).Err(err).Msg("join rejected")
		}
	case msgLeaveRoom:
		h.state.LeaveRoom(client.ID, now)
	case msgPickCards:
		if len(msg.Cards) != 3 {
			log.Warn().Str("client", client.ID).Ints("cards", msg.Cards).Msg("pick needs exactly three slots")
			return
		}
		var slots [3]int
		copy(slots[:], msg.Cards)
		if err := h.state.PickCards(client.ID, slots, now); err != nil {
			log.Info().Str("client", client.ID).Err(err).Msg("pick rejected")
		}
	case msgStartGame:
		if err := h.state.StartGame(client.ID, now); err != nil {
			log.Info().Str("client", client.ID).Err(err).Msg("start rejected")
		}
	case msgHeartbeat:
		// liveness no-op
	default:
		log.Warn().Str("client", client.ID).Str("type", msg.Type).Msg("unrecognized message type")
	}
}
