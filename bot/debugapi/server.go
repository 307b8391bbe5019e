// Package debugapi serves the internal admin and inspection endpoints.
package debugapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"arcade/models"
	"arcade/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// SessionController is the part of the session manager the API exposes
type SessionController interface {
	Active(ctx context.Context) ([]*models.ChannelSession, error)
	ForceStop(ctx context.Context, channelID int64) (bool, error)
}

// Response is the JSON body of every endpoint
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type Server struct {
	sessions SessionController
	ledger   service.LedgerService
	registry service.ModifierRegistry
	server   *http.Server
}

func New(sessions SessionController, ledger service.LedgerService, registry service.ModifierRegistry) *Server {
	return &Server{sessions: sessions, ledger: ledger, registry: registry}
}

// Router builds the HTTP routes
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/debug", func(r chi.Router) {
		r.Get("/sessions", s.listSessions)
		r.Delete("/sessions/{channelID}", s.stopSession)
		r.Get("/guilds/{guildID}/players/{playerID}", s.getPlayer)
	})
	return r
}

// Start listens on localhost in the background
func (s *Server) Start(port int) {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("127.0.0.1:%d", port),
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Infof("Debug API listening on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Debug API server error: %v", err)
		}
	}()
}

// Shutdown stops the listener started by Start
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.sessions.Active(r.Context())
	if err != nil {
		respondWithError(w, fmt.Sprintf("Failed to list sessions: %v", err), http.StatusInternalServerError)
		return
	}
	if sessions == nil {
		sessions = []*models.ChannelSession{}
	}
	respond(w, http.StatusOK, Response{Success: true, Data: sessions})
}

func (s *Server) stopSession(w http.ResponseWriter, r *http.Request) {
	channelID, err := strconv.ParseInt(chi.URLParam(r, "channelID"), 10, 64)
	if err != nil {
		respondWithError(w, "Invalid channel ID", http.StatusBadRequest)
		return
	}

	stopped, err := s.sessions.ForceStop(r.Context(), channelID)
	if err != nil {
		respondWithError(w, fmt.Sprintf("Failed to stop session: %v", err), http.StatusInternalServerError)
		return
	}
	if !stopped {
		respondWithError(w, "No session in this channel", http.StatusNotFound)
		return
	}

	log.WithField("channelID", channelID).Info("Session force-stopped via debug API")
	respond(w, http.StatusOK, Response{Success: true, Message: "Session stopped"})
}

// playerView is a player record with its active boosters
type playerView struct {
	*models.Player
	Modifiers []*models.Modifier `json:"modifiers"`
}

func (s *Server) getPlayer(w http.ResponseWriter, r *http.Request) {
	guildID, err := strconv.ParseInt(chi.URLParam(r, "guildID"), 10, 64)
	if err != nil {
		respondWithError(w, "Invalid guild ID", http.StatusBadRequest)
		return
	}
	playerID, err := strconv.ParseInt(chi.URLParam(r, "playerID"), 10, 64)
	if err != nil {
		respondWithError(w, "Invalid player ID", http.StatusBadRequest)
		return
	}

	player, err := s.ledger.GetAccount(r.Context(), guildID, playerID)
	if err != nil {
		respondWithError(w, fmt.Sprintf("Failed to load player: %v", err), http.StatusInternalServerError)
		return
	}
	modifiers, err := s.registry.ActiveModifiers(r.Context(), guildID, playerID)
	if err != nil {
		respondWithError(w, fmt.Sprintf("Failed to load modifiers: %v", err), http.StatusInternalServerError)
		return
	}
	if modifiers == nil {
		modifiers = []*models.Modifier{}
	}

	respond(w, http.StatusOK, Response{Success: true, Data: playerView{Player: player, Modifiers: modifiers}})
}

func respond(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("Failed to write debug API response")
	}
}

func respondWithError(w http.ResponseWriter, message string, status int) {
	respond(w, status, Response{Success: false, Error: message})
}
