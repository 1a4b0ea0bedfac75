package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/MarcVCE/TrabajoOpcional/internal/auth"
	"github.com/MarcVCE/TrabajoOpcional/internal/bus"
	"github.com/MarcVCE/TrabajoOpcional/internal/chat"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Mensaje 是推送给订阅者的单帧载荷。
type Mensaje struct {
	Mensaje string `json:"mensaje"`
	Email   string `json:"email"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	sub  *bus.Subscription
}

// Serve 处理 join 订阅：解析身份、按需创建房间并把消息流推给连接。
// 连接断开只撤销订阅，成员关系保留到显式 quit。
func Serve(svc *chat.Service, gate *auth.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		nombreSala := c.Query("nombreSala")
		if nombreSala == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "falta nombreSala"})
			return
		}

		// Token via header or query param for WS
		token := c.GetHeader("token")
		if token == "" {
			token = c.Query("token")
		}
		id := gate.Resolve(c.Request.Context(), token)
		if id == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No autorizado"})
			return
		}

		sub, err := svc.Join(c.Request.Context(), id, nombreSala)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No autorizado"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			sub.Close()
			return
		}
		cl := &client{conn: conn, sub: sub}
		go cl.writePump()
		cl.readPump()
	}
}

func (c *client) readPump() {
	defer func() {
		c.sub.Close()
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(1 << 20) // 1MB
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	for {
		// 订阅是单向的，入站帧只用于探测连接关闭
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case evt, ok := <-c.sub.Events():
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			b, err := json.Marshal(Mensaje{Mensaje: evt.Body, Email: evt.Email})
			if err != nil {
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
