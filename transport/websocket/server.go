package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 512
	sendBuffer     = 16
)

// Message is the frame pushed to subscribers of a game.
type Message struct {
	Type string       `json:"type"`
	Game *entity.Game `json:"game"`
}

const MessageTypeGame = "game"

type client struct {
	gameID string
	conn   *ws.Conn
	send   chan []byte
}

// Hub pushes every published game state to the sockets watching that game.
type Hub struct {
	logger   *zap.SugaredLogger
	upgrader ws.Upgrader

	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
}

func NewHub(logger *zap.SugaredLogger) *Hub {
	return &Hub{
		logger: logger.With("component", "websocket"),
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[string]map[*client]struct{}),
	}
}

// Serve upgrades the request and subscribes the socket to the game. The current state is sent first.
func (that *Hub) Serve(w http.ResponseWriter, r *http.Request, game *entity.Game) {
	log := that.logger.With("method", "Serve", "game_id", game.ID)

	conn, err := that.upgrader.Upgrade(w, r, w.Header())
	if err != nil {
		log.Errorw("failed to upgrade connection", "error", err)
		return
	}

	c := &client{
		gameID: game.ID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}

	if payload, err := encode(game); err == nil {
		c.send <- payload
	}

	that.mu.Lock()
	if that.clients[game.ID] == nil {
		that.clients[game.ID] = make(map[*client]struct{})
	}
	that.clients[game.ID][c] = struct{}{}
	that.mu.Unlock()

	log.Debugw("websocket connection established")

	go that.writePump(c)
	go that.readPump(c)
}

// Publish sends the game to its subscribers. Slow subscribers miss the update.
func (that *Hub) Publish(game *entity.Game) {
	payload, err := encode(game)
	if err != nil {
		that.logger.Errorw("failed to encode game", "error", err, "game_id", game.ID)
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	for c := range that.clients[game.ID] {
		select {
		case c.send <- payload:
		default:
		}
	}
}

// Subscribers returns how many sockets watch the game.
func (that *Hub) Subscribers(gameID string) int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.clients[gameID])
}

// Close disconnects every subscriber.
func (that *Hub) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	for gameID, set := range that.clients {
		for c := range set {
			close(c.send)
		}
		delete(that.clients, gameID)
	}
}

func (that *Hub) remove(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	set, ok := that.clients[c.gameID]
	if !ok {
		return
	}

	if _, ok = set[c]; !ok {
		return
	}

	delete(set, c)
	close(c.send)

	if len(set) == 0 {
		delete(that.clients, c.gameID)
	}
}

// readPump only drains the socket so close frames and pongs are seen.
func (that *Hub) readPump(c *client) {
	defer func() {
		that.remove(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if ws.IsUnexpectedCloseError(err, ws.CloseGoingAway, ws.CloseAbnormalClosure) {
				that.logger.Debugw("websocket read failed", "error", err, "game_id", c.gameID)
			}
			return
		}
	}
}

func (that *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(ws.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(ws.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(ws.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func encode(game *entity.Game) ([]byte, error) {
	return json.Marshal(Message{Type: MessageTypeGame, Game: game})
}
