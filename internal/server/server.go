package server

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"sync"
	"time"

	"dogceo/dashboard/internal/config"
	"dogceo/dashboard/internal/dashboard"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	readLimit  = 4096
)

//go:embed static
var staticFiles embed.FS

var indexTemplate = template.Must(template.ParseFS(staticFiles, "static/index.html"))

// SessionFactory creates the dashboard session of a new connection
type SessionFactory func(id string) *dashboard.Session

type Server struct {
	cfg        config.ServerConfig
	title      string
	newSession SessionFactory
	upgrader   websocket.Upgrader

	mutex    sync.Mutex
	sessions map[string]*dashboard.Session
}

func New(cfg config.ServerConfig, title string, newSession SessionFactory) *Server {
	return &Server{
		cfg:        cfg,
		title:      title,
		newSession: newSession,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sessions: make(map[string]*dashboard.Session),
	}
}

// Handler returns the routes of the dashboard
func (s *Server) Handler() http.Handler {
	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /ws", s.handleWebsocket)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	mux.HandleFunc("GET /healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Errorf("Unable to write healthcheck: %v", err)
		}
	})
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("🚀 Dashboard available at http://%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.ShutdownTimeout)*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		log.Info("Server stopped")
		return nil
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}
}

// Sessions returns the number of connected sessions
func (s *Server) Sessions() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.sessions)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, struct{ Title string }{s.title}); err != nil {
		log.Errorf("Failed to render index: %v", err)
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	session := s.newSession(uuid.NewString())
	s.register(session)
	defer s.unregister(session)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return session.Run(ctx)
	})
	g.Go(func() error {
		return s.writeLoop(ctx, conn, session)
	})

	s.readLoop(ctx, conn, session)
	cancel()

	if err := g.Wait(); err != nil {
		log.Warnf("⚠️ Session %s ended with error: %v", session.ID(), err)
	}
}

func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn, session *dashboard.Session) {
	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg inbound
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Infof("Session %s disconnected", session.ID())
			} else if ctx.Err() == nil {
				log.Warnf("⚠️ Session %s disconnected with error: %v", session.ID(), err)
			}
			return
		}

		if err := dispatch(ctx, session, msg); err != nil {
			log.Warnf("⚠️ Session %s rejected %s: %v", session.ID(), msg.Type, err)
		}
	}
}

func dispatch(ctx context.Context, session *dashboard.Session, msg inbound) error {
	switch msg.Type {
	case msgSelectCategory:
		return session.SelectCategory(ctx, msg.Index)
	case msgSelectSubCategory:
		return session.SelectSubCategory(ctx, msg.Index)
	case msgScroll:
		_, err := session.Scroll(msg.Panel, msg.Metrics)
		return err
	case msgImageLoaded:
		return session.ImageLoaded(msg.Panel, msg.ID)
	case msgImageError:
		return session.ImageFailed(msg.Panel, msg.ID)
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
}

// writeLoop pushes a fresh render after every change. It owns all writes to conn.
func (s *Server) writeLoop(ctx context.Context, conn *websocket.Conn, session *dashboard.Session) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer conn.Close()

	var buf bytes.Buffer
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return nil

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return fmt.Errorf("failed to ping: %w", err)
			}

		case <-session.Changes():
			resets := session.TakeScrollResets()

			buf.Reset()
			if err := dashboard.Render(&buf, session.View()); err != nil {
				return err
			}
			if err := write(conn, outbound{Type: msgRender, HTML: buf.String()}); err != nil {
				return err
			}
			if len(resets) > 0 {
				if err := write(conn, outbound{Type: msgScrollTop, Panels: resets}); err != nil {
					return err
				}
			}
		}
	}
}

func write(conn *websocket.Conn, msg outbound) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to send %s: %w", msg.Type, err)
	}
	return nil
}

func (s *Server) register(session *dashboard.Session) {
	s.mutex.Lock()
	s.sessions[session.ID()] = session
	count := len(s.sessions)
	s.mutex.Unlock()

	log.Infof("✅ Session %s connected (%d active)", session.ID(), count)
}

func (s *Server) unregister(session *dashboard.Session) {
	s.mutex.Lock()
	delete(s.sessions, session.ID())
	s.mutex.Unlock()
}
