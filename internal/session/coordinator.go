// Package session coordinates one running game: it is the sole authority
// binding identities to player slots, serializes moves, tracks connection
// liveness, and broadcasts every state change to the attached connections.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/sidestacker-backend/internal/apperror"
	"github.com/rocketscienceinc/sidestacker-backend/internal/bot"
	"github.com/rocketscienceinc/sidestacker-backend/internal/entity"
	"github.com/rocketscienceinc/sidestacker-backend/internal/pkg"
	"github.com/rocketscienceinc/sidestacker-backend/internal/sidestacker"
)

type gameStore interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
}

// Conn is the transport side of one attached connection. Implementations
// must tolerate being called from the coordinator's critical section.
type Conn interface {
	SendGameUpdate(game *entity.Game) error
}

type slot struct {
	identity  string
	name      string
	connected bool
}

// Coordinator owns the mutable state of one session. Every operation runs
// under one mutex, so the sequence {validate, apply, bot reply, save,
// broadcast} is atomic to outside observers.
type Coordinator struct {
	logger     *slog.Logger
	store      gameStore
	strategies *bot.Selector

	mu    sync.Mutex
	game  *entity.Game
	slots map[entity.Cell]*slot
	conns map[Conn]entity.Cell
}

func NewCoordinator(logger *slog.Logger, store gameStore, strategies *bot.Selector, game *entity.Game) *Coordinator {
	coordinator := &Coordinator{
		logger:     logger.With("component", "coordinator", "game_id", game.ID),
		store:      store,
		strategies: strategies,
		game:       game,
		slots:      make(map[entity.Cell]*slot),
		conns:      make(map[Conn]entity.Cell),
	}

	// rebuild slot bindings for a game loaded from the store
	if game.Player1Token != "" {
		coordinator.slots[entity.CellPlayer1] = &slot{identity: game.Player1Token, name: game.Player1Name}
	}

	if game.Player2Token != "" {
		coordinator.slots[entity.CellPlayer2] = &slot{identity: game.Player2Token, name: game.Player2Name}
	}

	return coordinator
}

// Join - binds an identity to a player slot. The first identity takes slot 1,
// the next distinct one takes slot 2 and starts the game; a known identity is
// treated as a rejoin. Empty identities get a server-issued token.
func (that *Coordinator) Join(ctx context.Context, identity, name string, asCreator bool, conn Conn) (entity.Cell, string, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if number, ok := that.slotByIdentity(identity); ok {
		that.attach(conn, number)
		return number, identity, nil
	}

	if asCreator {
		return that.bindCreator(ctx, identity, name, conn)
	}

	return that.bindSecondPlayer(ctx, identity, name, conn)
}

// Rejoin - rebinds a previously seen identity to its slot without changing
// game state.
func (that *Coordinator) Rejoin(identity string, conn Conn) (entity.Cell, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	number, ok := that.slotByIdentity(identity)
	if !ok {
		return 0, apperror.ErrUnrecognized
	}

	that.attach(conn, number)
	that.logger.Info("player rejoined", "player", number)

	return number, nil
}

// SubmitMove - resolves the identity to its slot, applies the move, and if
// the bot now holds the turn computes its reply before returning, so the
// broadcast already reflects both moves. Returns the final snapshot.
func (that *Coordinator) SubmitMove(ctx context.Context, identity string, move entity.Move) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	number, ok := that.slotByIdentity(identity)
	if !ok {
		return nil, apperror.ErrUnrecognized
	}

	// the server-held binding is authoritative, not the client's claim
	move.Player = number

	if err := sidestacker.ApplyMove(that.game, move); err != nil {
		return nil, err
	}

	if that.game.IsBotTurn() {
		if err := that.applyBotMove(); err != nil {
			return nil, fmt.Errorf("bot failed to make turn: %w", err)
		}
	}

	if err := that.saveGame(ctx); err != nil {
		return nil, err
	}

	snapshot := that.snapshot()
	that.broadcast(snapshot)

	return snapshot, nil
}

// RequestBotMove - one bot turn outside the human-move path, used as a
// fallback trigger. Rejected unless the bot actually holds the turn.
func (that *Coordinator) RequestBotMove(ctx context.Context) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.game.IsBotTurn() {
		if err := that.game.ConfirmActiveState(); err != nil {
			return nil, err
		}

		return nil, apperror.ErrNotYourTurn
	}

	if err := that.applyBotMove(); err != nil {
		return nil, fmt.Errorf("bot failed to make turn: %w", err)
	}

	if err := that.saveGame(ctx); err != nil {
		return nil, err
	}

	snapshot := that.snapshot()
	that.broadcast(snapshot)

	return snapshot, nil
}

// Detach - drops a connection; the slot binding survives for rejoin, only
// its liveness flag changes.
func (that *Coordinator) Detach(conn Conn) {
	that.mu.Lock()
	defer that.mu.Unlock()

	number, ok := that.conns[conn]
	if !ok {
		return
	}

	delete(that.conns, conn)

	if that.hasLiveConn(number) {
		return
	}

	if boundSlot := that.slots[number]; boundSlot != nil {
		boundSlot.connected = false
		that.logger.Info("player disconnected", "player", number)
	}
}

// IsConnected - liveness of a slot, independent of game status.
func (that *Coordinator) IsConnected(number entity.Cell) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	boundSlot := that.slots[number]

	return boundSlot != nil && boundSlot.connected
}

// Snapshot - a copy of the current game state for read-only callers.
func (that *Coordinator) Snapshot() *entity.Game {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.snapshot()
}

func (that *Coordinator) bindCreator(ctx context.Context, identity, name string, conn Conn) (entity.Cell, string, error) {
	if that.slots[entity.CellPlayer1] != nil {
		return 0, "", apperror.ErrSessionFull
	}

	identity = that.ensureIdentity(identity)

	that.game.Player1Name = name
	that.game.Player1Token = identity
	that.slots[entity.CellPlayer1] = &slot{identity: identity, name: name}
	that.attach(conn, entity.CellPlayer1)

	if err := that.saveGame(ctx); err != nil {
		return 0, "", err
	}

	that.logger.Info("player joined", "player", entity.CellPlayer1, "name", name)

	return entity.CellPlayer1, identity, nil
}

func (that *Coordinator) bindSecondPlayer(ctx context.Context, identity, name string, conn Conn) (entity.Cell, string, error) {
	// the bot owns slot 2 for the whole pva game
	if that.game.IsWithBot() {
		return 0, "", apperror.ErrSessionFull
	}

	if that.slots[entity.CellPlayer2] != nil {
		return 0, "", apperror.ErrSessionFull
	}

	if err := sidestacker.AssignPlayerTwo(that.game, name); err != nil {
		return 0, "", err
	}

	identity = that.ensureIdentity(identity)

	that.game.Player2Token = identity
	that.slots[entity.CellPlayer2] = &slot{identity: identity, name: name}
	that.attach(conn, entity.CellPlayer2)

	if err := that.saveGame(ctx); err != nil {
		return 0, "", err
	}

	that.logger.Info("player joined", "player", entity.CellPlayer2, "name", name)

	// the joining connection gets its snapshot from the join reply
	snapshot := that.snapshot()
	that.broadcastExcept(snapshot, conn)

	return entity.CellPlayer2, identity, nil
}

// applyBotMove - must run inside the critical section, between the human
// move and the save.
func (that *Coordinator) applyBotMove() error {
	strategy := that.strategies.ForDifficulty(that.game.Difficulty)

	move, err := strategy.ChooseMove(&that.game.Board, entity.BotPlayer)
	if err != nil {
		return err
	}

	return sidestacker.ApplyMove(that.game, move)
}

func (that *Coordinator) saveGame(ctx context.Context) error {
	if err := that.store.CreateOrUpdate(ctx, that.game); err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}

	return nil
}

func (that *Coordinator) slotByIdentity(identity string) (entity.Cell, bool) {
	if identity == "" {
		return 0, false
	}

	for number, boundSlot := range that.slots {
		if boundSlot.identity == identity {
			return number, true
		}
	}

	return 0, false
}

func (that *Coordinator) attach(conn Conn, number entity.Cell) {
	if conn != nil {
		that.conns[conn] = number
	}

	if boundSlot := that.slots[number]; boundSlot != nil {
		boundSlot.connected = true
	}
}

func (that *Coordinator) hasLiveConn(number entity.Cell) bool {
	for _, bound := range that.conns {
		if bound == number {
			return true
		}
	}

	return false
}

func (that *Coordinator) ensureIdentity(identity string) string {
	if identity != "" {
		return identity
	}

	return pkg.GenerateIdentityToken()
}

func (that *Coordinator) broadcast(game *entity.Game) {
	that.broadcastExcept(game, nil)
}

func (that *Coordinator) broadcastExcept(game *entity.Game, skip Conn) {
	for conn := range that.conns {
		if conn == skip {
			continue
		}

		if err := conn.SendGameUpdate(game); err != nil {
			that.logger.Error("failed to broadcast game update", "error", err)
		}
	}
}

func (that *Coordinator) snapshot() *entity.Game {
	snapshot := *that.game

	return &snapshot
}
