package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/escape-room-game/game/engine"
	"github.com/wricardo/escape-room-game/game/export"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	logger   *zap.Logger
	now      func() time.Time
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, logger *zap.Logger) GameService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   logger.Named("service"),
		now:      time.Now,
	}
}

// CreateSession creates a session and starts its game
func (s *gameServiceImpl) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	difficulty := engine.Medium
	if req.Difficulty != "" {
		d, err := engine.ParseDifficulty(req.Difficulty)
		if err != nil {
			return nil, err
		}
		difficulty = d
	}
	mode, err := engine.ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}

	campaignID := req.CampaignID
	var catalog *engine.Catalog
	if campaignID != "" {
		catalog, err = s.configs.LoadConfig(campaignID)
		if err != nil {
			return nil, s.campaignError(campaignID, err)
		}
	} else {
		campaignID, catalog = s.configs.GetDefault()
		if catalog == nil {
			return nil, fmt.Errorf("%w: no default campaign", ErrConfigNotFound)
		}
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", campaignID, catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	sess.Lock()
	err = sess.Engine.StartNewGame(difficulty, mode, req.RoomID)
	sess.Unlock()
	if err != nil {
		if delErr := s.sessions.Delete(sess.ID); delErr != nil {
			s.logger.Warn("failed to discard session", zap.String("session_id", sess.ID), zap.Error(delErr))
		}
		return nil, err
	}
	s.save(sess)

	s.logger.Info("game started",
		zap.String("session_id", sess.ID),
		zap.String("campaign_id", campaignID),
		zap.String("difficulty", string(difficulty)),
		zap.String("mode", string(mode)))
	return s.sessionInfo(sess), nil
}

// campaignError lists the available campaigns when the requested one is
// missing
func (s *gameServiceImpl) campaignError(campaignID string, err error) error {
	if !errors.Is(err, ErrConfigNotFound) {
		return fmt.Errorf("failed to load campaign %s: %w", campaignID, err)
	}
	available, listErr := s.configs.ListConfigs()
	if listErr == nil && len(available) > 0 {
		ids := make([]string, 0, len(available))
		for _, cfg := range available {
			ids = append(ids, cfg.ConfigID)
		}
		return fmt.Errorf("%w: campaign '%s' not found. Available campaigns: %v", ErrConfigNotFound, campaignID, ids)
	}
	return fmt.Errorf("%w: campaign '%s' not found. Use /api/configs to list available campaigns", ErrConfigNotFound, campaignID)
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions, oldest first
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
		}
		return sessions[i].ID < sessions[j].ID
	})

	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

// Interact clicks a hotspot in the current room
func (s *gameServiceImpl) Interact(ctx context.Context, sessionID, hotspotID string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	roomID := sess.Engine.GetState().Progress.CurrentRoomID
	sess.Lock()
	res, err := sess.Engine.Interact(hotspotID)
	sess.Unlock()
	if err != nil {
		return nil, err
	}

	var events []GameEvent
	if res.NewlyFound {
		events = append(events, s.event(EventObjectDiscovered, "Discovered "+hotspotID, roomID, "", ""))
	}
	if res.UsedItem != "" {
		events = append(events, s.event(EventItemUsed, "Used "+s.itemName(sess, res.UsedItem), roomID, "", res.UsedItem))
	}
	if res.PickedUpItem != "" {
		events = append(events, s.event(EventItemCollected, res.Message, roomID, "", res.PickedUpItem))
	}
	if res.JournalEntry != nil {
		events = append(events, s.event(EventClueAdded, res.JournalEntry.Text, roomID, "", ""))
	}
	if res.PuzzleID != "" {
		events = append(events, s.event(EventPuzzleOpened, "Opened puzzle "+res.PuzzleID, roomID, res.PuzzleID, ""))
	}

	s.save(sess)
	return &ActionResult{
		Success:     true,
		Message:     res.Message,
		State:       sess.Engine.View(),
		Events:      nonNil(events),
		Interaction: res,
	}, nil
}

// AttemptPuzzle submits an answer. Wrong answers are a result, not an
// error; a locked puzzle is an error.
func (s *gameServiceImpl) AttemptPuzzle(ctx context.Context, sessionID, puzzleID string, attempt engine.Attempt) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	wasComplete := sess.Engine.IsRoomComplete()
	roomID := sess.Engine.GetState().Progress.CurrentRoomID
	sess.Lock()
	res, err := sess.Engine.AttemptPuzzle(puzzleID, attempt)
	sess.Unlock()
	if err != nil {
		return nil, err
	}

	var events []GameEvent
	message := res.Feedback
	switch {
	case res.AlreadySolved:
	case res.Correct:
		events = append(events, s.event(EventPuzzleSolved, "Solved "+puzzleID, roomID, puzzleID, ""))
		if res.RewardClue != "" {
			events = append(events, s.event(EventClueAdded, res.RewardClue, roomID, puzzleID, ""))
			message = res.RewardClue
		}
		for _, id := range res.ConsumedItemIDs {
			events = append(events, s.event(EventItemUsed, "Used "+s.itemName(sess, id), roomID, puzzleID, id))
		}
		if res.ResultItemID != "" {
			events = append(events, s.event(EventItemCollected, "Received "+s.itemName(sess, res.ResultItemID), roomID, puzzleID, res.ResultItemID))
		}
		if res.RewardItemID != "" {
			events = append(events, s.event(EventItemCollected, "Received "+s.itemName(sess, res.RewardItemID), roomID, puzzleID, res.RewardItemID))
		}
		if res.RoomComplete && !wasComplete {
			msg := "Room complete!"
			if res.Narrative != "" {
				msg = res.Narrative
			}
			events = append(events, s.event(EventRoomComplete, msg, roomID, puzzleID, ""))
		}
	default:
		events = append(events, s.event(EventPuzzleFailed, res.Feedback, roomID, puzzleID, ""))
		if res.Locked {
			events = append(events, s.event(EventPuzzleLocked,
				fmt.Sprintf("Too many attempts. %s is locked until %s", puzzleID, res.LockedUntil.Format(time.Kitchen)),
				roomID, puzzleID, ""))
		}
	}

	s.save(sess)
	return &ActionResult{
		Success: res.Correct,
		Message: message,
		State:   sess.Engine.View(),
		Events:  nonNil(events),
		Attempt: res,
	}, nil
}

// RevealHint reveals the next hint tier of a puzzle
func (s *gameServiceImpl) RevealHint(ctx context.Context, sessionID, puzzleID string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	status, err := sess.Engine.RevealHint(puzzleID)
	sess.Unlock()
	if err != nil {
		return nil, err
	}

	message := ""
	if status.Latest != nil {
		message = status.Latest.Text
	}
	roomID := sess.Engine.GetState().Progress.CurrentRoomID
	s.save(sess)
	return &ActionResult{
		Success: true,
		Message: message,
		State:   sess.Engine.View(),
		Events:  []GameEvent{s.event(EventHintRevealed, message, roomID, puzzleID, "")},
		Hint:    status,
	}, nil
}

// CombineItems merges two held items
func (s *gameServiceImpl) CombineItems(ctx context.Context, sessionID, itemA, itemB string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	res, err := sess.Engine.CombineItems(itemA, itemB)
	sess.Unlock()
	if err != nil {
		return nil, err
	}

	s.save(sess)
	return &ActionResult{
		Success: true,
		Message: res.Message,
		State:   sess.Engine.View(),
		Events:  []GameEvent{s.combinedEvent(sess, res)},
		Combine: res,
	}, nil
}

// SelectItem selects an inventory item, combining it with the previous
// selection when possible
func (s *gameServiceImpl) SelectItem(ctx context.Context, sessionID, itemID string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	res, err := sess.Engine.SelectItem(itemID)
	sess.Unlock()
	if err != nil {
		return nil, err
	}

	var events []GameEvent
	if res.Combined != nil {
		events = append(events, s.combinedEvent(sess, res.Combined))
	}
	s.save(sess)
	return &ActionResult{
		Success:   true,
		Message:   res.Message,
		State:     sess.Engine.View(),
		Events:    nonNil(events),
		Selection: res,
	}, nil
}

func (s *gameServiceImpl) combinedEvent(sess *Session, res *engine.CombineResult) GameEvent {
	roomID := sess.Engine.GetState().Progress.CurrentRoomID
	return s.event(EventItemsCombined, res.Message, roomID, "", res.Result.ID)
}

// ContinueRoom leaves a completed room
func (s *gameServiceImpl) ContinueRoom(ctx context.Context, sessionID string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	res, err := sess.Engine.ContinueToNextRoom()
	sess.Unlock()
	if err != nil {
		return nil, err
	}

	var ev GameEvent
	if res.GameCompleted {
		ev = s.event(EventGameCompleted, res.Narrative, res.FromRoomID, "", "")
		s.logger.Info("game completed",
			zap.String("session_id", sess.ID),
			zap.Int("elapsed_seconds", sess.Engine.GetState().Progress.ElapsedSeconds))
	} else {
		ev = s.event(EventRoomEntered, res.Narrative, res.ToRoomID, "", "")
	}

	s.save(sess)
	return &ActionResult{
		Success:     true,
		Message:     res.Narrative,
		State:       sess.Engine.View(),
		Events:      []GameEvent{ev},
		Progression: res,
	}, nil
}

// UpdateElapsed records the client's play timer
func (s *gameServiceImpl) UpdateElapsed(ctx context.Context, sessionID string, seconds int) (*engine.StateView, error) {
	return s.mutateView(sessionID, func(e *engine.GameEngine) error {
		return e.UpdateElapsed(seconds)
	})
}

// DismissOverlays closes the examine view, puzzle and message
func (s *gameServiceImpl) DismissOverlays(ctx context.Context, sessionID string) (*engine.StateView, error) {
	return s.mutateView(sessionID, func(e *engine.GameEngine) error {
		e.DismissOverlays()
		return nil
	})
}

// ToggleJournal opens or closes the journal
func (s *gameServiceImpl) ToggleJournal(ctx context.Context, sessionID string) (*engine.StateView, error) {
	return s.mutateView(sessionID, func(e *engine.GameEngine) error {
		e.ToggleJournal()
		return nil
	})
}

func (s *gameServiceImpl) mutateView(sessionID string, fn func(*engine.GameEngine) error) (*engine.StateView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	err = fn(sess.Engine)
	sess.Unlock()
	if err != nil {
		return nil, err
	}
	s.save(sess)
	return sess.Engine.View(), nil
}

// Reset starts a new game in the same session. Empty options keep the
// current difficulty and mode; a freeplay game replays its room.
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string, opts ResetOptions) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	prev := sess.Engine.GetState().Progress

	difficulty := prev.Difficulty
	if opts.Difficulty != "" {
		if difficulty, err = engine.ParseDifficulty(opts.Difficulty); err != nil {
			return nil, err
		}
	} else if !difficulty.Valid() {
		difficulty = engine.Medium
	}
	mode := prev.Mode
	if opts.Mode != "" || mode == "" {
		if mode, err = engine.ParseMode(opts.Mode); err != nil {
			return nil, err
		}
	}
	roomID := opts.RoomID
	if roomID == "" && mode == engine.ModeFreeplay && opts.Mode == "" {
		roomID = prev.CurrentRoomID
	}

	sess.Lock()
	err = sess.Engine.StartNewGame(difficulty, mode, roomID)
	sess.Unlock()
	if err != nil {
		return nil, err
	}
	state := sess.Engine.GetState()
	s.save(sess)
	return &ActionResult{
		Success: true,
		Message: state.UI.ActiveMessage,
		State:   sess.Engine.View(),
		Events: []GameEvent{
			s.event(EventReset, "Game reset", prev.CurrentRoomID, "", ""),
			s.event(EventGameStarted, fmt.Sprintf("New %s game on %s", mode, difficulty), state.Progress.CurrentRoomID, "", ""),
		},
	}, nil
}

// GetGameState returns the player-facing view of a session
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.StateView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.View(), nil
}

// GetPuzzle returns a redacted puzzle view
func (s *gameServiceImpl) GetPuzzle(ctx context.Context, sessionID, puzzleID string) (*engine.PuzzleView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.PuzzleView(puzzleID)
}

// GetHints reports revealed hints without spending any
func (s *gameServiceImpl) GetHints(ctx context.Context, sessionID, puzzleID string) (*engine.HintStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.HintStatus(puzzleID)
}

// GetJournal lists the journal entries in discovery order
func (s *gameServiceImpl) GetJournal(ctx context.Context, sessionID string) (*JournalResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	entries := append([]engine.JournalEntry{}, sess.Engine.GetState().Journal.Entries...)
	return &JournalResponse{
		SessionID: sess.ID,
		Entries:   entries,
		Count:     len(entries),
	}, nil
}

// ExportJournal renders the journal as a downloadable document
func (s *gameServiceImpl) ExportJournal(ctx context.Context, sessionID string, format export.Format) (*export.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	state := sess.Engine.GetState()
	roomNames := make(map[string]string, len(sess.Catalog.Rooms))
	for _, room := range sess.Catalog.Rooms {
		roomNames[room.ID] = room.Name
	}

	return export.Render(export.Journal{
		SessionID:      sess.ID,
		Campaign:       sess.Catalog.Name,
		Difficulty:     state.Progress.Difficulty,
		Status:         state.Progress.Status,
		ElapsedSeconds: state.Progress.ElapsedSeconds,
		HintsUsed:      state.Progress.HintsUsed,
		Entries:        state.Journal.Entries,
		RoomNames:      roomNames,
	}, format)
}

// ListConfigs returns available campaigns
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific campaign
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.Catalog, error) {
	catalog, err := s.configs.LoadConfig(configName)
	if err != nil {
		return nil, s.campaignError(configName, err)
	}
	return catalog, nil
}

// SaveConfig validates and saves a campaign
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, catalog *engine.Catalog) error {
	return s.configs.SaveConfig(configName, catalog)
}

// session looks up a session and marks it accessed
func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	if err := s.sessions.UpdateLastAccessed(sess.ID); err != nil {
		s.logger.Debug("failed to update last access", zap.String("session_id", sess.ID), zap.Error(err))
	}
	return sess, nil
}

// save persists a session after a mutation. Callers must not hold the
// session lock. Failures are logged only.
func (s *gameServiceImpl) save(sess *Session) {
	if err := s.sessions.Save(sess.ID); err != nil {
		s.logger.Warn("failed to save session", zap.String("session_id", sess.ID), zap.Error(err))
	}
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	progress := sess.Engine.GetState().Progress
	return &SessionInfo{
		ID:             sess.ID,
		CampaignID:     sess.CampaignID,
		CampaignName:   sess.Catalog.Name,
		Difficulty:     progress.Difficulty,
		Mode:           progress.Mode,
		Status:         progress.Status,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessed(),
		State:          sess.Engine.View(),
	}
}

func (s *gameServiceImpl) event(eventType, message, roomID, puzzleID, itemID string) GameEvent {
	return GameEvent{
		Type:      eventType,
		Message:   message,
		Timestamp: s.now(),
		RoomID:    roomID,
		PuzzleID:  puzzleID,
		ItemID:    itemID,
	}
}

func (s *gameServiceImpl) itemName(sess *Session, itemID string) string {
	if item, err := sess.Catalog.FindItem(itemID); err == nil {
		return item.Name
	}
	return itemID
}

// nonNil keeps empty event lists as [] in JSON
func nonNil(events []GameEvent) []GameEvent {
	if events == nil {
		return []GameEvent{}
	}
	return events
}
