package notification

import (
	"log"
	"net/http"
	"time"

	"assignportal/internal/middleware"
	"assignportal/internal/pkg/jwt"
	"assignportal/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

type event struct {
	Type string `json:"type"`
}

type Handler struct {
	hub        *Hub
	jwtService *jwt.Service
	users      middleware.UserLookup
	upgrader   websocket.Upgrader
}

// NewHandler accepts websocket upgrades from the given origins; an empty list accepts
// any origin.
func NewHandler(hub *Hub, jwtService *jwt.Service, users middleware.UserLookup, allowedOrigins []string) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Handler{
		hub:        hub,
		jwtService: jwtService,
		users:      users,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws/notifications", h.Connect)
}

// Connect upgrades to a websocket that receives submission events for the caller.
// Browsers authenticate with the session cookie; other clients may pass ?token=.
func (h *Handler) Connect(c *gin.Context) {
	userID := h.resolveUser(c)
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws_upgrade_failed user_id=%d error=%q", userID, err)
		return
	}

	cl := h.hub.Register(userID, conn)
	log.Printf("ws_connected user_id=%d online=%d", userID, h.hub.OnlineCount())
	defer func() {
		h.hub.Unregister(userID, cl)
		log.Printf("ws_disconnected user_id=%d", userID)
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go pingLoop(cl, done)

	for {
		var msg event
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws_read_failed user_id=%d error=%q", userID, err)
			}
			return
		}
		if msg.Type == "ping" {
			_ = cl.writeJSON(event{Type: "pong"})
		}
	}
}

func (h *Handler) resolveUser(c *gin.Context) int64 {
	if p, ok := middleware.CurrentPrincipal(c); ok {
		return p.UserID
	}
	token := c.Query("token")
	if token == "" {
		return 0
	}
	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		return 0
	}
	u, err := h.users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		return 0
	}
	return u.ID
}

func pingLoop(cl *client, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := cl.writeControl(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
