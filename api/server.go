package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/wricardo/escape-room-game/game/config"
	"github.com/wricardo/escape-room-game/game/engine"
	"github.com/wricardo/escape-room-game/game/export"
	"github.com/wricardo/escape-room-game/game/service"
	"github.com/wricardo/escape-room-game/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
	logger  *zap.Logger
}

// NewServer creates a new API server. hub may be nil.
func NewServer(gameService service.GameService, hub *websocket.Hub, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
		logger:  logger.Named("api"),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(s.logRequests)

	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Game operations
	api.HandleFunc("/sessions/{id}/state", s.handleGetGameState).Methods("GET")
	api.HandleFunc("/sessions/{id}/interact", s.handleInteract).Methods("POST")
	api.HandleFunc("/sessions/{id}/puzzles/{pid}", s.handleGetPuzzle).Methods("GET")
	api.HandleFunc("/sessions/{id}/puzzles/{pid}/attempt", s.handleAttemptPuzzle).Methods("POST")
	api.HandleFunc("/sessions/{id}/puzzles/{pid}/hints", s.handleGetHints).Methods("GET")
	api.HandleFunc("/sessions/{id}/puzzles/{pid}/hints", s.handleRevealHint).Methods("POST")
	api.HandleFunc("/sessions/{id}/combine", s.handleCombine).Methods("POST")
	api.HandleFunc("/sessions/{id}/select", s.handleSelect).Methods("POST")
	api.HandleFunc("/sessions/{id}/continue", s.handleContinue).Methods("POST")
	api.HandleFunc("/sessions/{id}/elapsed", s.handleElapsed).Methods("POST")
	api.HandleFunc("/sessions/{id}/dismiss", s.handleDismiss).Methods("POST")
	api.HandleFunc("/sessions/{id}/journal/toggle", s.handleToggleJournal).Methods("POST")
	api.HandleFunc("/sessions/{id}/reset", s.handleReset).Methods("POST")
	api.HandleFunc("/sessions/{id}/journal", s.handleGetJournal).Methods("GET")
	api.HandleFunc("/sessions/{id}/journal/export", s.handleExportJournal).Methods("GET")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/ws", s.handleWebSocket)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "no route for "+r.URL.Path)
	})
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// websocket upgrades need the raw writer
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{"error": message, "code": status})
}

// respondServiceError maps service and engine errors to HTTP statuses
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	respondError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrConfigNotFound),
		errors.Is(err, engine.ErrRoomNotFound),
		errors.Is(err, engine.ErrPuzzleNotFound),
		errors.Is(err, engine.ErrItemNotFound),
		errors.Is(err, engine.ErrHotSpotNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrPuzzleLocked):
		return http.StatusLocked
	case errors.Is(err, engine.ErrRoomNotComplete),
		errors.Is(err, engine.ErrGameNotInProgress),
		errors.Is(err, engine.ErrHintsExhausted),
		errors.Is(err, engine.ErrNoHintsRemaining):
		return http.StatusConflict
	case errors.Is(err, engine.ErrInvalidDifficulty),
		errors.Is(err, engine.ErrInvalidMode),
		errors.Is(err, engine.ErrInvalidElapsed),
		errors.Is(err, engine.ErrHotSpotHidden),
		errors.Is(err, engine.ErrItemNotHeld),
		errors.Is(err, engine.ErrCannotCombine),
		errors.Is(err, export.ErrUnsupportedFormat),
		errors.Is(err, config.ErrInvalidConfig):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// decode reads an optional JSON body into v
func decode(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// broadcast pushes the new state to websocket clients of the session
func (s *Server) broadcast(sessionID string, state *engine.StateView, events []service.GameEvent) {
	if s.hub != nil && state != nil {
		s.hub.BroadcastState(sessionID, state, events)
	}
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req service.CreateSessionRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := s.service.CreateSession(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	total := len(sessions)

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default)
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}
	if campaign := query.Get("campaign"); campaign != "" {
		filtered := sessions[:0]
		for _, session := range sessions {
			if strings.EqualFold(session.CampaignID, campaign) {
				filtered = append(filtered, session)
			}
		}
		sessions = filtered
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}
		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
		sessions = sessions[:l]
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		s.respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(sessionID, "session_deleted", nil)
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Game Operation Handlers

func (s *Server) handleGetGameState(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.GetGameState(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

// respondAction broadcasts and returns the result of a mutating call
func (s *Server) respondAction(w http.ResponseWriter, sessionID string, result *service.ActionResult, err error) {
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.broadcast(sessionID, result.State, result.Events)
	respondJSON(w, http.StatusOK, result)
}

// respondView broadcasts and returns a state-only change
func (s *Server) respondView(w http.ResponseWriter, sessionID string, state *engine.StateView, err error) {
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.broadcast(sessionID, state, nil)
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleInteract(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		HotSpotID string `json:"hotspot_id"`
	}
	if err := decode(r, &req); err != nil || req.HotSpotID == "" {
		respondError(w, http.StatusBadRequest, "hotspot_id is required")
		return
	}

	result, err := s.service.Interact(r.Context(), sessionID, req.HotSpotID)
	s.respondAction(w, sessionID, result, err)
}

func (s *Server) handleGetPuzzle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	puzzle, err := s.service.GetPuzzle(r.Context(), vars["id"], vars["pid"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, puzzle)
}

func (s *Server) handleAttemptPuzzle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	var attempt engine.Attempt
	if err := decode(r, &attempt); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if attempt.Value == "" && len(attempt.Values) == 0 {
		respondError(w, http.StatusBadRequest, "value or values is required")
		return
	}

	result, err := s.service.AttemptPuzzle(r.Context(), sessionID, vars["pid"], attempt)
	if err == nil && result.Attempt != nil {
		s.logger.Info("puzzle attempt",
			zap.String("session_id", sessionID),
			zap.String("puzzle_id", vars["pid"]),
			zap.Bool("correct", result.Attempt.Correct),
			zap.Int("attempts_remaining", result.Attempt.AttemptsRemaining))
	}
	s.respondAction(w, sessionID, result, err)
}

func (s *Server) handleGetHints(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	hints, err := s.service.GetHints(r.Context(), vars["id"], vars["pid"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, hints)
}

func (s *Server) handleRevealHint(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	result, err := s.service.RevealHint(r.Context(), vars["id"], vars["pid"])
	s.respondAction(w, vars["id"], result, err)
}

func (s *Server) handleCombine(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		ItemA string `json:"item_a"`
		ItemB string `json:"item_b"`
	}
	if err := decode(r, &req); err != nil || req.ItemA == "" || req.ItemB == "" {
		respondError(w, http.StatusBadRequest, "item_a and item_b are required")
		return
	}

	result, err := s.service.CombineItems(r.Context(), sessionID, req.ItemA, req.ItemB)
	s.respondAction(w, sessionID, result, err)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	// an empty item_id clears the selection
	var req struct {
		ItemID string `json:"item_id"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.service.SelectItem(r.Context(), sessionID, req.ItemID)
	s.respondAction(w, sessionID, result, err)
}

func (s *Server) handleContinue(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	result, err := s.service.ContinueRoom(r.Context(), sessionID)
	s.respondAction(w, sessionID, result, err)
}

func (s *Server) handleElapsed(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Seconds *int `json:"seconds"`
	}
	if err := decode(r, &req); err != nil || req.Seconds == nil {
		respondError(w, http.StatusBadRequest, "seconds is required")
		return
	}

	state, err := s.service.UpdateElapsed(r.Context(), sessionID, *req.Seconds)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	// the timer ticks often; clients keep their own clock
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.DismissOverlays(r.Context(), sessionID)
	s.respondView(w, sessionID, state, err)
}

func (s *Server) handleToggleJournal(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.ToggleJournal(r.Context(), sessionID)
	s.respondView(w, sessionID, state, err)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var opts service.ResetOptions
	if err := decode(r, &opts); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.service.Reset(r.Context(), sessionID, opts)
	s.respondAction(w, sessionID, result, err)
}

func (s *Server) handleGetJournal(w http.ResponseWriter, r *http.Request) {
	journal, err := s.service.GetJournal(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, journal)
}

func (s *Server) handleExportJournal(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	doc, err := s.service.ExportJournal(r.Context(), mux.Vars(r)["id"], format)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(doc.Data)
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	catalog, err := s.service.LoadConfig(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, catalog)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var catalog engine.Catalog
	if err := json.NewDecoder(r.Body).Decode(&catalog); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// ?id= names the file; otherwise the campaign name does
	configID := r.URL.Query().Get("id")
	if configID == "" {
		configID = catalog.Name
	}
	if configID == "" {
		respondError(w, http.StatusBadRequest, "Config name is required")
		return
	}

	if err := s.service.SaveConfig(r.Context(), configID, &catalog); err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Configuration saved successfully",
		"config_id": configID,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket not available", http.StatusServiceUnavailable)
		return
	}
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
