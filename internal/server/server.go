package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"ctchen222/tictactoe-engine/internal/api/controller"
	"ctchen222/tictactoe-engine/internal/api/response"
	"ctchen222/tictactoe-engine/internal/api/service"
	"ctchen222/tictactoe-engine/internal/events"
	"ctchen222/tictactoe-engine/internal/player"
	"ctchen222/tictactoe-engine/internal/session"
	"ctchen222/tictactoe-engine/internal/validator"
	"ctchen222/tictactoe-engine/pkg/proto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const pingPeriod = 10 * time.Second

var tracer = otel.Tracer("server")

type Server struct {
	engine     *gin.Engine
	sessions   service.SessionService
	controller *controller.SessionController
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

func NewServer(sessions service.SessionService, sc *controller.SessionController, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine:     gin.New(),
		sessions:   sessions,
		controller: sc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger.With(slog.String("component", "server")),
	}
	s.engine.Use(gin.Recovery())
	s.RegisterHandlers()
	return s
}

// Engine returns the handler to serve.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) RegisterHandlers() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		response.SuccessResponse(c, gin.H{"status": "ok"})
	})
	s.engine.GET("/ws", s.handleWebSocket)

	api := s.engine.Group("/api/sessions")
	api.POST("", s.controller.Create)
	api.GET("/:id", s.controller.Get)
	api.DELETE("/:id", s.controller.Delete)
	api.POST("/:id/moves", s.controller.Move)
	api.POST("/:id/rounds", s.controller.NewRound)
	api.PUT("/:id/mode", s.controller.SetMode)
}

// handleWebSocket attaches a client to an existing session. The client gets
// the current state, then every session event, and may send moves.
func (s *Server) handleWebSocket(c *gin.Context) {
	r := c.Request
	ctx, span := tracer.Start(r.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", r.URL.String()),
		attribute.String("http.method", r.Method),
	))
	defer span.End()

	sessionID := c.Query("sessionId")
	if sessionID == "" {
		span.SetStatus(codes.Error, "Missing session id")
		response.ErrorResponse(c, http.StatusBadRequest, "sessionId is required")
		return
	}
	span.SetAttributes(attribute.String("session.id", sessionID))

	sess, err := s.sessions.Session(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Session lookup failed")
		response.ErrorResponseFrom(c, err)
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, r, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}

	client := player.NewClient(uuid.New().String(), sessionID, conn)
	span.SetAttributes(attribute.String("client.id", client.ID))
	s.logger.InfoContext(ctx, "Client connected", "client.id", client.ID, "session.id", sessionID)

	state := sess.View()
	if err := client.Send(&proto.ServerToClientMessage{Type: proto.TypeState, State: &state}); err != nil {
		s.logger.WarnContext(ctx, "Failed to send initial state", "client.id", client.ID, "error", err)
		conn.Close()
		return
	}

	updates, unsubscribe := sess.Subscribe()
	done := make(chan struct{})
	go s.writePump(client, sess, updates, done)

	// The upgraded connection outlives the request context.
	s.readPump(context.WithoutCancel(ctx), client)

	unsubscribe()
	<-done
	s.logger.InfoContext(ctx, "Client disconnected", "client.id", client.ID, "session.id", sessionID)
}

// writePump forwards session events and keeps the connection alive with pings.
// It closes the connection when the subscription ends.
func (s *Server) writePump(client *player.Client, sess *session.Session, updates <-chan events.Event, done chan<- struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
		close(done)
	}()

	for {
		select {
		case event, ok := <-updates:
			if !ok {
				return
			}
			state := sess.View()
			msg := &proto.ServerToClientMessage{
				Type:    proto.TypeEvent,
				Event:   event.Type,
				Payload: event.Payload,
				State:   &state,
			}
			if err := client.Send(msg); err != nil {
				s.logger.Warn("Failed to forward event", "client.id", client.ID, "event.type", event.Type, "error", err)
				return
			}
		case <-ticker.C:
			if err := client.Ping(); err != nil {
				s.logger.Warn("Ping failed", "client.id", client.ID, "error", err)
				return
			}
		}
	}
}

// readPump reads client frames until the connection fails.
func (s *Server) readPump(ctx context.Context, client *player.Client) {
	for {
		_, msg, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.WarnContext(ctx, "Client connection error", "client.id", client.ID, "error", err)
			}
			return
		}
		s.handleMessage(ctx, client, msg)
	}
}

// handleMessage validates a client frame and dispatches it to the session.
// State changes reach the client as events; only failures are answered directly.
func (s *Server) handleMessage(ctx context.Context, client *player.Client, raw []byte) {
	ctx, span := tracer.Start(ctx, "server.handleMessage", trace.WithAttributes(
		attribute.String("client.id", client.ID),
		attribute.String("session.id", client.SessionID),
	))
	defer span.End()

	var message proto.ClientToServerMessage
	if err := json.Unmarshal(raw, &message); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error unmarshalling message")
		s.sendError(ctx, client, "malformed message")
		return
	}
	if err := validator.GetValidator().Struct(message); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid message format")
		s.sendError(ctx, client, validator.Describe(err))
		return
	}
	span.SetAttributes(attribute.String("message.type", message.Type))

	var err error
	switch message.Type {
	case proto.TypeMove:
		if message.Position == nil {
			err = errors.New("position is required")
			break
		}
		span.SetAttributes(attribute.Int("move.index", *message.Position))
		_, err = s.sessions.Move(ctx, client.SessionID, *message.Position)
	case proto.TypeNewRound:
		_, err = s.sessions.NewRound(ctx, client.SessionID)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Message rejected")
		s.sendError(ctx, client, err.Error())
	}
}

func (s *Server) sendError(ctx context.Context, client *player.Client, reason string) {
	msg := &proto.ServerToClientMessage{Type: proto.TypeError, Reason: reason}
	if sess, err := s.sessions.Session(ctx, client.SessionID); err == nil {
		state := sess.View()
		msg.State = &state
	}
	if err := client.Send(msg); err != nil {
		s.logger.WarnContext(ctx, "Failed to send error", "client.id", client.ID, "error", err)
	}
}
