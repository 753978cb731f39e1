// Command playtest plays a campaign from start to victory against a running
// game server, using the answers stored in the campaign. It is a smoke test
// for campaign files and for the HTTP API.
//
//	go run ./cmd/playtest --url http://localhost:8080 --campaign classic --difficulty hard
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/escape-room-game/game/engine"
	"github.com/wricardo/escape-room-game/game/service"
)

var errStuck = errors.New("walkthrough is stuck")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "playtest: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "playtest",
		Usage: "Play a campaign to victory through the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "game server URL", Sources: cli.EnvVars("GAME_API_URL")},
			&cli.StringFlag{Name: "campaign", Usage: "campaign to play (server default when empty)"},
			&cli.StringFlag{Name: "difficulty", Value: string(engine.Medium), Usage: "easy, medium or hard"},
			&cli.StringFlag{Name: "session", Usage: "replay an existing session by ID instead of creating one"},
			&cli.IntFlag{Name: "max-steps", Value: 500, Usage: "give up after this many requests"},
			&cli.IntFlag{Name: "delay", Usage: "milliseconds to wait between requests"},
			&cli.BoolFlag{Name: "v", Usage: "log every move"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger := zap.NewNop()
			if cmd.Bool("v") {
				dev, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				logger = dev
			}
			defer logger.Sync()

			opts := options{
				campaign:   cmd.String("campaign"),
				difficulty: cmd.String("difficulty"),
				sessionID:  cmd.String("session"),
				maxSteps:   int(cmd.Int("max-steps")),
				delay:      time.Duration(cmd.Int("delay")) * time.Millisecond,
			}
			report, err := run(ctx, NewClient(cmd.String("url")), opts, logger)
			if report != nil {
				fmt.Printf("Session %s (%s, %s): %d steps, %d rooms, %d puzzles solved\n",
					report.SessionID, report.Campaign, report.Difficulty, report.Steps, report.Rooms, report.Solved)
			}
			if err != nil {
				return err
			}
			fmt.Println("🎉 Campaign completed")
			return nil
		},
	}
}

type options struct {
	campaign   string
	difficulty string
	sessionID  string
	maxSteps   int
	delay      time.Duration
}

// Report summarizes one playthrough
type Report struct {
	SessionID  string
	Campaign   string
	Difficulty engine.Difficulty
	Steps      int
	Rooms      int
	Solved     int
}

// run creates or resets a session and plays it until the game completes
func run(ctx context.Context, c *Client, opts options, logger *zap.Logger) (*Report, error) {
	var info *service.SessionInfo
	var err error
	if opts.sessionID != "" {
		if _, err := c.Reset(ctx, opts.sessionID); err != nil {
			return nil, fmt.Errorf("reset session %s: %w", opts.sessionID, err)
		}
		info, err = c.Session(ctx, opts.sessionID)
	} else {
		info, err = c.CreateSession(ctx, service.CreateSessionRequest{
			CampaignID: opts.campaign,
			Difficulty: opts.difficulty,
			Mode:       string(engine.ModeCampaign),
		})
	}
	if err != nil {
		return nil, err
	}
	logger.Info("session ready",
		zap.String("session_id", info.ID),
		zap.String("campaign", info.CampaignID),
		zap.String("difficulty", string(info.Difficulty)))

	catalog, err := c.Campaign(ctx, info.CampaignID)
	if err != nil {
		return nil, err
	}

	report := &Report{SessionID: info.ID, Campaign: info.CampaignID, Difficulty: info.Difficulty, Rooms: 1}
	w := NewWalkthrough(catalog, info.Difficulty)

	for report.Steps < opts.maxSteps {
		state, err := c.State(ctx, info.ID)
		if err != nil {
			return report, err
		}
		report.Solved = len(state.SolvedPuzzleIDs)
		if state.Status == engine.StatusCompleted {
			return report, nil
		}

		move, ok := w.Next(state)
		if !ok {
			roomID := ""
			if state.Room != nil {
				roomID = state.Room.ID
			}
			return report, fmt.Errorf("%w in room %q", errStuck, roomID)
		}
		logger.Debug("move",
			zap.String("kind", string(move.Kind)),
			zap.String("hotspot_id", move.HotSpotID),
			zap.String("puzzle_id", move.PuzzleID))

		if err := apply(ctx, c, w, info.ID, move, report); err != nil {
			return report, fmt.Errorf("%s: %w", move.Kind, err)
		}

		if opts.delay > 0 {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(opts.delay):
			}
		}
	}
	return report, fmt.Errorf("no victory after %d steps", opts.maxSteps)
}

// apply sends one move. Each request counts as a step.
func apply(ctx context.Context, c *Client, w *Walkthrough, sessionID string, move Move, report *Report) error {
	switch move.Kind {
	case MoveInteract:
		report.Steps++
		res, err := c.Interact(ctx, sessionID, move.HotSpotID)
		if err != nil {
			return err
		}
		// a used item can open a puzzle that no other hotspot reaches
		if res.Interaction != nil && res.Interaction.PuzzleID != "" && res.State != nil {
			if next, ok := w.SolveMove(res.State, "", res.Interaction.PuzzleID); ok {
				return apply(ctx, c, w, sessionID, next, report)
			}
		}
		return nil

	case MoveSolve:
		if move.HotSpotID != "" {
			report.Steps++
			if _, err := c.Interact(ctx, sessionID, move.HotSpotID); err != nil {
				return err
			}
		}
		report.Steps++
		res, err := c.Attempt(ctx, sessionID, move.PuzzleID, move.Attempt)
		if err != nil {
			return err
		}
		if res.Attempt == nil || !res.Attempt.Correct {
			return fmt.Errorf("puzzle %s rejected the stored answer", move.PuzzleID)
		}
		return nil

	case MoveCombine:
		report.Steps++
		res, err := c.Combine(ctx, sessionID, move.ItemA, move.ItemB)
		if err != nil {
			return err
		}
		if res.Combine == nil {
			return fmt.Errorf("%s and %s did not combine", move.ItemA, move.ItemB)
		}
		return nil

	case MoveContinue:
		report.Steps++
		res, err := c.Continue(ctx, sessionID)
		if err != nil {
			return err
		}
		if res.Progression != nil && res.Progression.ToRoomID != "" {
			report.Rooms++
		}
		return nil
	}
	return fmt.Errorf("unknown move %q", move.Kind)
}
