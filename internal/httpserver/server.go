// internal/httpserver/server.go
//
// HTTP server wiring for the mini-games backend.
// Responsibilities:
//   - Router + middleware (CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", the game catalogue under /games.
//   - Session endpoints: create a session, then feed it drag-start / drag-end /
//     unlink / reset / next events and read its view.
//
// Notes:
//   - Sessions live only in the registry (internal/store); a restart loses them.
//   - Each session route requires the bearer token returned when it was created.
//     Tokens carry no expiry; the registry's idle TTL bounds a session's life.
//   - Daily sessions share a shuffle per game and UTC date (internal/daily).

package httpserver

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/minigames/internal/catalog"
	"github.com/robalobadob/minigames/internal/daily"
	"github.com/robalobadob/minigames/internal/session"
	"github.com/robalobadob/minigames/internal/store"
)

// Options configures a Server.
type Options struct {
	ClientOrigin string // single origin allowed by CORS
	Secret       []byte // signs session tokens
	DailySalt    string
	Now          func() time.Time
}

// Server bundles router, game catalogue and session registry.
type Server struct {
	r        *chi.Mux
	games    catalog.Source
	sessions store.Store
	opts     Options
}

// New constructs a Server, installs middleware, and registers routes.
func New(games catalog.Source, sessions store.Store, opts Options) *Server {
	if opts.Now == nil {
		opts.Now = defaultNow
	}
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "http://localhost:5173"
	}
	s := &Server{r: chi.NewRouter(), games: games, sessions: sessions, opts: opts}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(accessLog)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(cors(opts.ClientOrigin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service": "minigames-go",
			"endpoints": []string{
				"/health", "GET /games", "GET /games/{slug}", "POST /sessions",
				"GET /sessions/{id}", "POST /sessions/{id}/drag-start", "POST /sessions/{id}/drag-end",
				"POST /sessions/{id}/unlink", "POST /sessions/{id}/reset", "POST /sessions/{id}/next",
				"DELETE /sessions/{id}",
			},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	s.r.Get("/games", s.handleListGames)
	s.r.Get("/games/{slug}", s.handleGetGame)

	s.r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleNewSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(s.requireSession)
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/drag-start", s.handleDragStart)
			r.Post("/drag-end", s.handleDragEnd)
			r.Post("/unlink", s.handleUnlink)
			r.Post("/reset", s.handleReset)
			r.Post("/next", s.handleNext)
		})
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ------------------------------ GAMES --------------------------------------

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	list, err := s.games.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list games")
		writeError(w, http.StatusInternalServerError, "catalog_failed")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	def, err := s.games.Get(r.Context(), chi.URLParam(r, "slug"))
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("get game")
		writeError(w, http.StatusInternalServerError, "catalog_failed")
		return
	}
	writeJSON(w, http.StatusOK, def.Summary())
}

// ----------------------------- SESSIONS ------------------------------------

// newSessionReq/Res payloads for POST /sessions.
type newSessionReq struct {
	Game  string `json:"game"`
	Daily bool   `json:"daily"` // share today's shuffle with every other daily player
	Seed  *int64 `json:"seed"`  // fixed shuffle seed (testing); ignored for daily sessions
}
type newSessionRes struct {
	SessionID string       `json:"sessionId"`
	Token     string       `json:"token"`
	Daily     string       `json:"daily,omitempty"`
	View      session.View `json:"view"`
}

// handleNewSession builds a session from a catalogue entry and registers it.
func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	var req newSessionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	def, err := s.games.Get(r.Context(), req.Game)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("game", req.Game).Msg("load game")
		writeError(w, http.StatusInternalServerError, "catalog_failed")
		return
	}

	var (
		rng      *rand.Rand
		dailyKey string
	)
	switch {
	case req.Daily:
		now := s.opts.Now()
		dailyKey = daily.DateKey(now)
		if rng, err = daily.Rand(s.opts.DailySalt, def.Slug, now); err != nil {
			log.Error().Err(err).Msg("daily seed")
			writeError(w, http.StatusInternalServerError, "seed_failed")
			return
		}
	case req.Seed != nil:
		rng = rand.New(rand.NewSource(*req.Seed))
	default:
		rng = rand.New(rand.NewSource(s.opts.Now().UnixNano()))
	}

	sess, err := session.NewSeries(def.Configs(), def.RandomStart, rng)
	if err != nil {
		// the catalogue validates on load, so this is a broken source
		log.Error().Err(err).Str("game", def.Slug).Msg("build session")
		writeError(w, http.StatusInternalServerError, "invalid_game")
		return
	}

	view := sess.View()
	id := uuid.NewString()
	if err := s.sessions.Save(r.Context(), id, sess); err != nil {
		log.Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	tok, err := s.signSessionToken(id)
	if err != nil {
		log.Error().Err(err).Msg("sign session token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}

	log.Info().Str("session", id).Str("game", def.Slug).Bool("daily", req.Daily).Msg("session created")
	writeJSON(w, http.StatusCreated, newSessionRes{SessionID: id, Token: tok, Daily: dailyKey, View: view})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	var view session.View
	err := s.sessions.Get(r.Context(), sessionID(r), func(sess *session.Session) error {
		view = sess.View()
		return nil
	})
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), sessionID(r)); err != nil {
		s.storeError(w, err)
		return
	}
	log.Info().Str("session", sessionID(r)).Msg("session deleted")
	w.WriteHeader(http.StatusNoContent)
}

// eventRes is the reply to every session event.
type eventRes struct {
	Changed bool         `json:"changed"`
	View    session.View `json:"view"`
}

type dragStartReq struct {
	Entity string `json:"entity"`
}

type dragEndReq struct {
	Entity string `json:"entity"`
	Target string `json:"target"` // empty: dropped outside every target
}

type unlinkReq struct {
	Source string `json:"source"`
	Sink   string `json:"sink"`
}

func (s *Server) handleDragStart(w http.ResponseWriter, r *http.Request) {
	var req dragStartReq
	if !decode(w, r, &req) {
		return
	}
	s.apply(w, r, "drag-start", func(sess *session.Session) bool { return sess.DragStart(req.Entity) })
}

func (s *Server) handleDragEnd(w http.ResponseWriter, r *http.Request) {
	var req dragEndReq
	if !decode(w, r, &req) {
		return
	}
	s.apply(w, r, "drag-end", func(sess *session.Session) bool { return sess.DragEnd(req.Entity, req.Target) })
}

func (s *Server) handleUnlink(w http.ResponseWriter, r *http.Request) {
	var req unlinkReq
	if !decode(w, r, &req) {
		return
	}
	s.apply(w, r, "unlink", func(sess *session.Session) bool { return sess.Unlink(req.Source, req.Sink) })
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, "reset", func(sess *session.Session) bool {
		sess.Reset()
		return true
	})
}

// handleNext moves on to the following round, like the "next question" button.
func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, "next", func(sess *session.Session) bool {
		sess.Next()
		return true
	})
}

// apply runs one event under the session lock and replies with the new view.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, event string, fn func(*session.Session) bool) {
	id := sessionID(r)
	var res eventRes
	err := s.sessions.Update(r.Context(), id, func(sess *session.Session) error {
		wasSolved := sess.Verdict().Solved
		res.Changed = fn(sess)
		res.View = sess.View()
		if !wasSolved && res.View.Verdict.Solved {
			log.Info().Str("session", id).Str("game", sess.Game()).Int("moves", res.View.Moves).Msg("session solved")
		}
		return nil
	})
	if err != nil {
		s.storeError(w, err)
		return
	}
	log.Debug().Str("session", id).Str("event", event).Bool("changed", res.Changed).Msg("session event")
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	log.Error().Err(err).Msg("session store")
	writeError(w, http.StatusInternalServerError, "store_failed")
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return false
	}
	return true
}
