// Package botserver serves a garage over a websocket so that a browser can
// edit bots and see their figures update live.
package botserver

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/cmlarsen/Robot-Combat-Tools/pkg/bot"
	"github.com/cmlarsen/Robot-Combat-Tools/pkg/chart"
	"github.com/cmlarsen/Robot-Combat-Tools/pkg/garage"
	"github.com/cmlarsen/Robot-Combat-Tools/pkg/report"
)

// isValidOrigin allows non-browser clients, same-origin pages and localhost.
func isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		log.Printf("Invalid origin URL: %s", origin)
		return false
	}
	if r.Host == originURL.Host {
		return true
	}
	host := originURL.Hostname()
	if host == "localhost" || host == "127.0.0.1" {
		return true
	}

	log.Printf("Rejected WebSocket connection from origin: %s", origin)
	return false
}

var upgrader = websocket.Upgrader{
	CheckOrigin:       isValidOrigin,
	EnableCompression: true,
}

// Client message types.
const (
	MsgTypeList      = "list"
	MsgTypeCreate    = "create"
	MsgTypeDuplicate = "duplicate"
	MsgTypeDelete    = "delete"
	MsgTypeSelect    = "select"
	MsgTypeUpdate    = "update"
	MsgTypeRename    = "rename"
	MsgTypeGet       = "get"
)

// Server message types.
const (
	MsgTypeBot   = "bot"
	MsgTypeBots  = "bots"
	MsgTypeError = "error"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	pingInterval = 54 * time.Second
)

type ClientMessage struct {
	Type  string    `json:"type"`
	BotID string    `json:"botId,omitempty"`
	Name  string    `json:"name,omitempty"`
	Patch bot.Patch `json:"patch,omitempty"`
}

type ServerMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// BotView is the payload of a "bot" message.
type BotView struct {
	Bot       bot.Computed      `json:"bot"`
	Headlines []report.Headline `json:"headlines"`
	SpinUp    chart.Series      `json:"spinUp"`
}

// BotsView is the payload of a "bots" message.
type BotsView struct {
	Selected string         `json:"selected"`
	Bots     []bot.Computed `json:"bots"`
}

type ErrorView struct {
	Message string `json:"message"`
}

type Client struct {
	ID     int
	conn   *websocket.Conn
	send   chan ServerMessage
	server *Server
}

type Server struct {
	garage *garage.Garage
	// path is where the garage is saved after every change.  Empty means
	// changes are kept in memory only.
	path string

	mu         sync.RWMutex
	clients    map[int]*Client
	nextID     int
	register   chan *Client
	unregister chan *Client
	broadcast  chan ServerMessage
	// done is closed when Run returns.
	done chan struct{}
}

func NewServer(g *garage.Garage, path string) *Server {
	return &Server{
		garage:     g,
		path:       path,
		clients:    make(map[int]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan ServerMessage, 256),
		done:       make(chan struct{}),
	}
}

// Run dispatches client registrations and broadcasts until ctx is done.
func (s *Server) Run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			for id, client := range s.clients {
				delete(s.clients, id)
				close(client.send)
			}
			s.mu.Unlock()
			return

		case client := <-s.register:
			s.mu.Lock()
			s.clients[client.ID] = client
			s.mu.Unlock()
			log.Printf("Client %d connected", client.ID)

		case client := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.clients[client.ID]; ok {
				delete(s.clients, client.ID)
				close(client.send)
			}
			s.mu.Unlock()
			log.Printf("Client %d disconnected", client.ID)

		case message := <-s.broadcast:
			s.mu.RLock()
			for _, client := range s.clients {
				select {
				case client.send <- message:
				default:
					log.Printf("Warning: Client %d send buffer full, skipping broadcast", client.ID)
				}
			}
			s.mu.RUnlock()
		}
	}
}

// Handler returns the HTTP routes: /ws, /api/bots and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWebSocket)
	mux.HandleFunc("/api/bots", s.HandleBots)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return mux
}

// HandleBots returns every bot with its computed figures.
func (s *Server) HandleBots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(jsonView(s.botsView())); err != nil {
		log.Printf("Failed to encode bots: %v", err)
	}
}

func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	s.mu.Lock()
	clientID := s.nextID
	s.nextID++
	s.mu.Unlock()

	client := &Client{
		ID:     clientID,
		conn:   conn,
		send:   make(chan ServerMessage, 256),
		server: s,
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.server.unregister <- c:
		case <-c.server.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		var msg ClientMessage
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			message.Data = jsonView(message.Data)
			if err := c.conn.WriteJSON(message); err != nil {
				log.Printf("Client %d write failed: %v", c.ID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) reply(msg ServerMessage) {
	select {
	case c.send <- msg:
	default:
		log.Printf("Warning: Client %d send buffer full, dropping %s", c.ID, msg.Type)
	}
}

func (c *Client) replyError(err error) {
	c.reply(ServerMessage{Type: MsgTypeError, Data: ErrorView{Message: err.Error()}})
}

func (c *Client) handleMessage(msg ClientMessage) {
	// The send channel is closed on shutdown while this may still be running.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC in handleMessage for client %d, type %s: %v", c.ID, msg.Type, r)
		}
	}()

	g := c.server.garage
	var err error
	changed := false
	show := ""

	switch msg.Type {
	case MsgTypeList:
		c.reply(ServerMessage{Type: MsgTypeBots, Data: c.server.botsView()})
	case MsgTypeGet:
		show = msg.BotID
		if show == "" {
			show = g.Selected()
		}
	case MsgTypeCreate:
		show = g.Create()
		err = g.Select(show)
		changed = true
	case MsgTypeDuplicate:
		show, err = g.Duplicate(msg.BotID)
		changed = err == nil
	case MsgTypeDelete:
		g.Delete(msg.BotID)
		changed = true
	case MsgTypeSelect:
		err = g.Select(msg.BotID)
		show = msg.BotID
		changed = err == nil
	case MsgTypeUpdate:
		err = g.Update(msg.Patch)
		show = g.Selected()
		changed = err == nil
	case MsgTypeRename:
		err = g.Rename(msg.BotID, msg.Name)
		show = msg.BotID
		changed = err == nil
	default:
		log.Printf("Unknown message type: %s", msg.Type)
		c.replyError(errors.Errorf("unknown message type %q", msg.Type))
		return
	}

	if err != nil {
		log.Printf("Client %d %s failed: %v", c.ID, msg.Type, err)
		c.replyError(err)
		return
	}
	if show != "" {
		view, err := c.server.botView(show)
		if err != nil {
			c.replyError(err)
		} else {
			c.reply(ServerMessage{Type: MsgTypeBot, Data: view})
		}
	}
	if changed {
		c.server.changed()
	}
}

func (s *Server) botView(id string) (BotView, error) {
	computed, err := s.garage.Computed(id)
	if err != nil {
		return BotView{}, err
	}
	return BotView{
		Bot:       computed,
		Headlines: report.Headlines(computed),
		SpinUp:    chart.WeaponSeries(computed.Config),
	}, nil
}

func (s *Server) botsView() BotsView {
	return BotsView{
		Selected: s.garage.Selected(),
		Bots:     s.garage.ComputedAll(),
	}
}

// changed saves the garage and tells every client about the new bot list.
func (s *Server) changed() {
	if s.path != "" {
		if err := s.garage.Save(s.path); err != nil {
			log.Printf("Failed to save garage: %v", err)
		}
	}
	select {
	case s.broadcast <- ServerMessage{Type: MsgTypeBots, Data: s.botsView()}:
	default:
		log.Printf("Warning: broadcast queue full")
	}
}
