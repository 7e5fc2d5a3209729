package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"menstrualcare-api/internal/auth"
)

const (
	EventJoinChat  = "joinChat"
	EventLeaveChat = "leaveChat"

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxInboundSize = 4096
)

// TokenVerifier resolves a bearer credential to a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Gateway authenticates websocket handshakes and pumps frames between the
// connection and the hub.
type Gateway struct {
	hub      *Hub
	tokens   TokenVerifier
	upgrader websocket.Upgrader
	logger   *logrus.Logger
}

// NewGateway accepts browser handshakes from allowedOrigin only; "*" or an
// empty value accepts any origin.
func NewGateway(hub *Hub, tokens TokenVerifier, allowedOrigin string, logger *logrus.Logger) *Gateway {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Gateway{
		hub:    hub,
		tokens: tokens,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowedOrigin == "" || allowedOrigin == "*" || origin == allowedOrigin
			},
		},
	}
}

func (g *Gateway) ServeWS(c *gin.Context) {
	userID, err := g.tokens.Verify(auth.TokenFromRequest(c.Request, true))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication error"})
		return
	}

	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		g.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := g.hub.Register(userID)
	log := g.logger.WithFields(logrus.Fields{"client": client.ID, "user": userID})
	log.Info("client connected")

	go g.writePump(conn, client, log)
	g.readPump(conn, client, log)
}

func (g *Gateway) readPump(conn *websocket.Conn, client *Client, log *logrus.Entry) {
	defer func() {
		g.hub.Unregister(client)
		_ = conn.Close()
		log.Info("client disconnected")
	}()

	conn.SetReadLimit(maxInboundSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("websocket read error")
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			log.WithError(err).Debug("ignoring malformed frame")
			continue
		}
		var room string
		if err := json.Unmarshal(frame.Data, &room); err != nil || room == "" {
			log.WithField("event", frame.Event).Debug("ignoring frame without room id")
			continue
		}

		switch frame.Event {
		case EventJoinChat:
			g.hub.Join(room, client)
		case EventLeaveChat:
			g.hub.Leave(room, client)
		default:
			log.WithField("event", frame.Event).Debug("unhandled event")
		}
	}
}

func (g *Gateway) writePump(conn *websocket.Conn, client *Client, log *logrus.Entry) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case msg := <-client.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.WithError(err).Debug("websocket write failed")
				g.hub.Unregister(client)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				g.hub.Unregister(client)
				return
			}
		case <-client.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}
