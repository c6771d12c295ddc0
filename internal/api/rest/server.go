// Package rest exposes the playback control surface over HTTP.
package rest

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	zlog "github.com/rs/zerolog/log"

	"github.com/DustyBest/podbox/internal/app/coordinator"
)

// Player is the subset of coordinator operations the API drives.
type Player interface {
	Play()
	Pause()
	SkipForward(coordinator.SkipSource)
	SkipBackward(coordinator.SkipSource)
	NowPlaying() (coordinator.NowPlaying, bool)
}

// Server routes playback control requests into the player.
type Server struct {
	player Player
}

// New creates a server driving the given player.
func New(player Player) *Server {
	return &Server{player: player}
}

// Handler builds the HTTP handler with routing and CORS applied.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/now-playing", s.getNowPlaying).Methods("GET")
	r.HandleFunc("/api/controls/{action}", s.postControl).Methods("POST")

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	return corsHandler.Handler(r)
}

type nowPlayingResponse struct {
	EpisodeID  string  `json:"episode_id"`
	Title      string  `json:"title"`
	ArtworkURL string  `json:"artwork_url,omitempty"`
	State      string  `json:"state"`
	Position   float64 `json:"position"`
}

func (s *Server) getNowPlaying(w http.ResponseWriter, r *http.Request) {
	np, ok := s.player.NowPlaying()
	if !ok {
		http.Error(w, "no episode loaded", http.StatusNotFound)
		return
	}

	resp := nowPlayingResponse{
		EpisodeID:  np.EpisodeID,
		Title:      np.Title,
		ArtworkURL: np.ArtworkURL,
		State:      np.State.String(),
		Position:   np.Position,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		zlog.Error().Msgf("Failed to encode now-playing response: %v", err)
	}
}

func (s *Server) postControl(w http.ResponseWriter, r *http.Request) {
	action := mux.Vars(r)["action"]
	zlog.Debug().Msgf("Control request: action=%s", action)

	switch action {
	case "play":
		s.player.Play()
	case "pause":
		s.player.Pause()
	case "next":
		// External transports behave like hardware buttons: no announcement,
		// just buffer and resume.
		s.player.SkipForward(coordinator.SourceHardware)
	case "previous":
		s.player.SkipBackward(coordinator.SourceHardware)
	default:
		http.Error(w, "unknown action: "+action, http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
