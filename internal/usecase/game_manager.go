package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/sidestacker-backend/internal/bot"
	"github.com/rocketscienceinc/sidestacker-backend/internal/entity"
	"github.com/rocketscienceinc/sidestacker-backend/internal/pkg"
	"github.com/rocketscienceinc/sidestacker-backend/internal/session"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

// GameManager is the entry point layer: it creates games, serves snapshots,
// and hands out the per-session coordinator. Coordinators are created
// lazily, one per game, and evicted once their game is finished.
type GameManager struct {
	logger     *slog.Logger
	gameRepo   gameRepo
	strategies *bot.Selector

	mu           sync.Mutex
	coordinators map[string]*session.Coordinator
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo, strategies *bot.Selector) *GameManager {
	return &GameManager{
		logger:       logger,
		gameRepo:     gameRepo,
		strategies:   strategies,
		coordinators: make(map[string]*session.Coordinator),
	}
}

// CreateGame - a pvp game starts waiting with only player 1 named; a pva
// game is born active with the bot already holding slot 2.
func (that *GameManager) CreateGame(ctx context.Context, mode, difficulty, player1Name, player2Name string) (*entity.Game, error) {
	if mode == "" {
		mode = entity.ModePvP
	}

	if difficulty == "" {
		difficulty = entity.DifficultyEasy
	}

	game := entity.NewGame(pkg.GenerateGameID(), mode, difficulty)
	game.Player1Name = player1Name

	if game.IsWithBot() {
		if player2Name == "" {
			player2Name = "AI"
		}

		game.Player2Name = player2Name
		game.Status = entity.StatusActive
	}

	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	that.logger.Info("game created", "game_id", game.ID, "mode", game.Mode)

	return game, nil
}

// GetGame - the live coordinator's snapshot when the session is loaded,
// otherwise the stored state.
func (that *GameManager) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	that.mu.Lock()
	coordinator, ok := that.coordinators[id]
	that.mu.Unlock()

	if ok {
		return coordinator.Snapshot(), nil
	}

	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// Coordinator - the single coordinator for a session, created on first use
// from the stored state.
func (that *GameManager) Coordinator(ctx context.Context, id string) (*session.Coordinator, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if coordinator, ok := that.coordinators[id]; ok {
		return coordinator, nil
	}

	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	coordinator := session.NewCoordinator(that.logger, that.gameRepo, that.strategies, game)
	that.coordinators[id] = coordinator

	return coordinator, nil
}

// TriggerBotMove - fallback entry point for one bot turn outside the normal
// human-move path.
func (that *GameManager) TriggerBotMove(ctx context.Context, id string) (*entity.Game, error) {
	coordinator, err := that.Coordinator(ctx, id)
	if err != nil {
		return nil, err
	}

	game, err := coordinator.RequestBotMove(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to make bot turn: %w", err)
	}

	if game.IsFinished() {
		that.Release(game.ID)
	}

	return game, nil
}

// Release - drops the in-memory coordinator; the stored game stays
// recoverable. Called by transports when a finished session goes quiet.
func (that *GameManager) Release(id string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.coordinators, id)
}

// DeleteGame - removes a game from the store entirely.
func (that *GameManager) DeleteGame(ctx context.Context, id string) error {
	that.Release(id)

	if err := that.gameRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	return nil
}
