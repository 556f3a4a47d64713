package handlers

import (
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/organivo/organivo/internal/apperrors"
	"github.com/organivo/organivo/internal/utils"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = (wsPongWait * 9) / 10
	wsMaxMessageSize = 512
)

// BoardHub tracks websocket subscribers per project so mutations to a
// board (lists, tasks, reorders) can push a refresh signal to every open
// client of that project.
type BoardHub struct {
	mu          sync.RWMutex
	subscribers map[uint]map[*boardClient]bool
}

// boardClient serializes writes to one connection. The connection allows
// only a single concurrent writer, and both broadcasts and the keepalive
// ping write to it.
type boardClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *boardClient) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return err
	}

	return c.conn.WriteJSON(v)
}

func (c *boardClient) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return err
	}

	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

func NewBoardHub() *BoardHub {
	return &BoardHub{subscribers: make(map[uint]map[*boardClient]bool)}
}

func (h *BoardHub) subscribe(projectID uint, conn *websocket.Conn) *boardClient {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subscribers[projectID] == nil {
		h.subscribers[projectID] = make(map[*boardClient]bool)
	}

	client := &boardClient{conn: conn}
	h.subscribers[projectID][client] = true

	return client
}

func (h *BoardHub) unsubscribe(projectID uint, client *boardClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.subscribers[projectID]; ok {
		delete(clients, client)

		if len(clients) == 0 {
			delete(h.subscribers, projectID)
		}
	}
}

// NotifyProject tells every subscriber of the project to refetch the board.
func (h *BoardHub) NotifyProject(projectID uint) {
	h.mu.RLock()
	clients := make([]*boardClient, 0, len(h.subscribers[projectID]))
	for client := range h.subscribers[projectID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		err := client.writeJSON(map[string]string{
			"type":      "refresh",
			"projectId": strconv.FormatUint(uint64(projectID), 10),
		})

		if err != nil {
			h.unsubscribe(projectID, client)
			client.conn.Close()
		}
	}
}

// Board serves the per-project websocket endpoint.
type Board struct {
	Hub     *BoardHub
	Origins []string
}

func (b *Board) Serve(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		fail(ctx, apperrors.Auth("Unauthorized"))
		return
	}

	project, err := findOwnedProject(ctx.Param("project_id"), userID)

	if err != nil {
		fail(ctx, err)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range b.Origins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)

	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	conn.SetReadLimit(wsMaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	client := b.Hub.subscribe(project.ID, conn)

	defer func() {
		b.Hub.unsubscribe(project.ID, client)
		conn.Close()
	}()

	if err := client.writeJSON(map[string]string{
		"type":      "connected",
		"projectId": ctx.Param("project_id"),
	}); err != nil {
		return
	}

	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(wsPingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := client.ping(); err != nil {
					return
				}
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for project %d: %v", project.ID, err)
			}
			return
		}
	}
}
