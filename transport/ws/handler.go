package ws

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/openrba/stepgate/rtt"
	transporthttp "github.com/openrba/stepgate/transport/http"
)

// NewHandler creates the websocket endpoint for the timing connection. The
// session middleware has already rejected requests without a session
// cookie; the collector additionally rejects empty keys.
func NewHandler(collector *rtt.Collector, idleTimeout time.Duration, logger zerolog.Logger) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Same-host pages only; the login page serves the client script
			return r.Header.Get("Origin") == "" || r.Host == hostOf(r.Header.Get("Origin"))
		},
	}

	log := logger.With().Str("component", "ws").Logger()

	return func(c *gin.Context) {
		sessionKey := transporthttp.SessionKey(c)

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Debug().Err(err).Msg("websocket upgrade failed")
			return
		}

		collector.Run(c.Request.Context(), sessionKey, &wsConn{
			conn:        conn,
			idleTimeout: idleTimeout,
		})
	}
}

// wsConn adapts a gorilla websocket connection to the collector's Conn
type wsConn struct {
	conn        *websocket.Conn
	idleTimeout time.Duration
}

func (c *wsConn) Send(token string) error {
	return c.conn.WriteMessage(websocket.TextMessage, []byte(token))
}

// Receive blocks for the client's next message. The read deadline reclaims
// connections whose client never echoes.
func (c *wsConn) Receive() (string, error) {
	if c.idleTimeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.idleTimeout)); err != nil {
			return "", err
		}
	}

	_, msg, err := c.conn.ReadMessage()
	if err != nil {
		return "", err
	}

	return string(msg), nil
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

func hostOf(origin string) string {
	u, err := url.Parse(origin)
	if err != nil {
		return ""
	}

	return u.Host
}
