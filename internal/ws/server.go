package ws

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/stillpath/journey/internal/journey"
	"github.com/stillpath/journey/internal/metrics"
	"github.com/stillpath/journey/internal/progress"
)

const tokenHeader = "X-Journey-Token"

// Options are the tunables of a Server.
type Options struct {
	AllowedOrigins []string
	AuthToken      string
	// MaxPathLevels bounds the number of levels one /api/journey call returns.
	MaxPathLevels int
	// CacheTTL expires memoised journey levels. Zero keeps them forever.
	CacheTTL time.Duration
}

type Server struct {
	engine      *journey.Engine
	tracker     *progress.Tracker
	broadcaster *Broadcaster
	metrics     *metrics.Metrics
	levels      *gocache.Cache

	allowedOrigins map[string]bool
	allowedHosts   map[string]bool
	originList     []string
	authToken      string
	maxPathLevels  int
	log            *logrus.Entry
}

func NewServer(engine *journey.Engine, tracker *progress.Tracker, broadcaster *Broadcaster, m *metrics.Metrics, opts Options) *Server {
	ttl, cleanup := gocache.NoExpiration, time.Duration(0)
	if opts.CacheTTL > 0 {
		ttl, cleanup = opts.CacheTTL, 2*opts.CacheTTL
	}
	if opts.MaxPathLevels < 1 {
		opts.MaxPathLevels = 100
	}
	s := &Server{
		engine:         engine,
		tracker:        tracker,
		broadcaster:    broadcaster,
		metrics:        m,
		levels:         gocache.New(ttl, cleanup),
		allowedOrigins: make(map[string]bool),
		allowedHosts:   make(map[string]bool),
		authToken:      opts.AuthToken,
		maxPathLevels:  opts.MaxPathLevels,
		log:            logrus.WithField("component", "server"),
	}

	for _, origin := range opts.AllowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		s.allowedOrigins[trimmed] = true
		s.originList = append(s.originList, trimmed)
		if parsed, err := url.Parse(trimmed); err == nil && parsed.Host != "" {
			s.allowedHosts[parsed.Host] = true
		}
	}

	return s
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(s.metrics.Instrument)
	if len(s.originList) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.originList,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", tokenHeader},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())
	r.Get("/ws", s.handleWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/realms", s.handleRealms)
		r.Get("/templates", s.handleTemplates)
		r.Get("/policy", s.handlePolicy)
		r.Get("/xp", s.handleXPProgress)
		r.Get("/journey", s.handleJourney)

		r.Route("/levels/{level}", func(r chi.Router) {
			r.Get("/", s.handleLevel)
			r.Get("/activities", s.handleActivities)
			r.Get("/test", s.handleTest)
			r.Get("/xp", s.handleLevelXP)
		})

		r.Post("/users", s.handleEnroll)
		r.Route("/users/{id}", func(r chi.Router) {
			r.Delete("/", s.handleRemove)
			r.Get("/progress", s.handleProgress)
			r.Get("/plan", s.handlePlan)
			r.Post("/activities", s.handleComplete)
			r.Post("/tests", s.handleSubmitTest)
		})
	})
	return r
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: s.checkOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnf("ws upgrade error: %v", err)
		return
	}

	userID := r.URL.Query().Get("user")
	c, err := s.broadcaster.AddClient(conn, userID)
	if err != nil {
		s.log.Warnf("ws client rejected: %v", err)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(time.Second))
		conn.Close()
		return
	}
	s.log.WithFields(logrus.Fields{"remote": r.RemoteAddr, "user_id": userID}).Info("WebSocket client connected")

	go func() {
		defer func() {
			s.broadcaster.RemoveClient(c)
			s.log.WithField("remote", r.RemoteAddr).Info("WebSocket client disconnected")
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.authorize(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authorize(r *http.Request) bool {
	if s.authToken == "" {
		return true
	}

	if r.URL.Query().Get("token") == s.authToken {
		return true
	}

	if r.Header.Get(tokenHeader) == s.authToken {
		return true
	}

	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.authToken {
		return true
	}

	return false
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if len(s.allowedOrigins) > 0 {
		if s.allowedOrigins[origin] {
			return true
		}
		if parsed, err := url.Parse(origin); err == nil && parsed.Host != "" {
			return s.allowedHosts[parsed.Host]
		}
		return false
	}

	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := parsed.Host
	if host == "" {
		return false
	}

	if host == r.Host {
		return true
	}

	if strings.HasPrefix(host, "localhost:") || host == "localhost" {
		return true
	}
	if strings.HasPrefix(host, "127.0.0.1:") || host == "127.0.0.1" {
		return true
	}
	if strings.HasPrefix(host, "[::1]:") || host == "::1" {
		return true
	}

	return false
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Content-Security-Policy", "default-src 'self'")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("request")
	})
}
