package socket

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strings"

	"hostelswap_server/middleware"
	"hostelswap_server/models"
	"hostelswap_server/services"

	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
)

// session is the part of socketio.Conn the handlers use
type session interface {
	ID() string
	Context() interface{}
	SetContext(ctx interface{})
	URL() url.URL
	RemoteHeader() http.Header
	Join(room string)
	Leave(room string)
	Emit(event string, v ...interface{})
	Close() error
}

type roomPayload struct {
	Room string `json:"room"`
}

type typingPayload struct {
	ReceiverID string `json:"receiverId"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// handlers holds the socket event logic, independent of the transport
type handlers struct {
	hub      *Hub
	tokens   middleware.TokenParser
	messages *services.MessageService
}

// NewSocketServer initializes and returns a new Socket.IO server bound to hub.
// allowOrigin decides the cross-origin policy of both transports.
func NewSocketServer(hub *Hub, tokens middleware.TokenParser, messages *services.MessageService, allowOrigin func(r *http.Request) bool) *socketio.Server {
	server := socketio.NewServer(&engineio.Options{
		Transports: []transport.Transport{
			&polling.Transport{CheckOrigin: allowOrigin},
			&websocket.Transport{CheckOrigin: allowOrigin},
		},
	})
	hub.SetBroadcaster(server)

	h := &handlers{hub: hub, tokens: tokens, messages: messages}

	server.OnConnect(Namespace, func(c socketio.Conn) error {
		return h.onConnect(c)
	})
	server.OnEvent(Namespace, "joinCommonChat", func(c socketio.Conn, p roomPayload) {
		h.onJoinCommonChat(c, p)
	})
	server.OnEvent(Namespace, "leaveCommonChat", func(c socketio.Conn, p roomPayload) {
		h.onLeaveCommonChat(c, p)
	})
	server.OnEvent(Namespace, "sendMessage", func(c socketio.Conn, p services.SendMessageInput) {
		h.onSendMessage(c, p)
	})
	server.OnEvent(Namespace, "typing", func(c socketio.Conn, p typingPayload) {
		h.onTyping(c, p)
	})
	server.OnError(Namespace, func(c socketio.Conn, err error) {
		log.Printf("❌ Socket error: %v", err)
	})
	server.OnDisconnect(Namespace, func(c socketio.Conn, reason string) {
		h.onDisconnect(c, reason)
	})

	return server
}

// tokenFrom reads the JWT from ?token= or the Authorization header
func tokenFrom(s session) string {
	u := s.URL()
	if token := strings.TrimSpace(u.Query().Get("token")); token != "" {
		return token
	}
	token, _ := middleware.BearerToken(s.RemoteHeader().Get("Authorization"))
	return token
}

func userOf(s session) string {
	userID, _ := s.Context().(string)
	return userID
}

func (h *handlers) onConnect(s session) error {
	token := tokenFrom(s)
	if token == "" {
		return h.refuse(s, "authentication token is required")
	}
	userID, err := h.tokens.ParseToken(token)
	if err != nil {
		return h.refuse(s, "invalid or expired token")
	}

	s.SetContext(userID)
	h.hub.Register(s.ID(), userID)
	s.Join(UserRoom(userID))
	s.Join(models.TopicEvents)
	s.Emit("connected", map[string]string{"userId": userID})
	return nil
}

func (h *handlers) refuse(s session, reason string) error {
	log.Printf("❌ Refusing socket %s: %s", s.ID(), reason)
	s.Emit("unauthorized", errorPayload{Message: reason})
	s.Close()
	return errUnauthorized(reason)
}

func (h *handlers) onJoinCommonChat(s session, p roomPayload) {
	if userOf(s) == "" {
		return
	}
	room := services.NormalizeRoom(p.Room)
	s.Join(services.CommonChatTopic(room))
	s.Emit("joinedCommonChat", roomPayload{Room: room})
}

func (h *handlers) onLeaveCommonChat(s session, p roomPayload) {
	s.Leave(services.CommonChatTopic(services.NormalizeRoom(p.Room)))
}

func (h *handlers) onSendMessage(s session, p services.SendMessageInput) {
	userID := userOf(s)
	if userID == "" {
		return
	}
	msg, err := h.messages.SendMessage(context.Background(), userID, p)
	if err != nil {
		s.Emit("messageError", errorPayload{Message: clientMessage(err)})
		return
	}
	s.Emit("messageSent", msg)
}

func (h *handlers) onTyping(s session, p typingPayload) {
	userID := userOf(s)
	if userID == "" || p.ReceiverID == "" || p.ReceiverID == userID {
		return
	}
	h.hub.NotifyUser(p.ReceiverID, models.EventTyping, map[string]string{"userId": userID})
}

func (h *handlers) onDisconnect(s session, reason string) {
	h.hub.Unregister(s.ID())
	log.Printf("🔌 Socket %s closed: %s", s.ID(), reason)
}
