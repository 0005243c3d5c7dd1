package session

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/rocketscienceinc/sidestacker-backend/internal/apperror"
	"github.com/rocketscienceinc/sidestacker-backend/internal/bot"
	"github.com/rocketscienceinc/sidestacker-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore - in-memory stand-in for the Redis-backed repository.
type memStore struct {
	mu    sync.Mutex
	games map[string]entity.Game
	saves int
}

func newMemStore() *memStore {
	return &memStore{games: make(map[string]entity.Game)}
}

func (that *memStore) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.games[game.ID] = *game
	that.saves++

	return nil
}

// recordingConn - captures every broadcast it receives.
type recordingConn struct {
	mu      sync.Mutex
	updates []entity.Game
}

func (that *recordingConn) SendGameUpdate(game *entity.Game) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.updates = append(that.updates, *game)

	return nil
}

func (that *recordingConn) lastUpdate() *entity.Game {
	that.mu.Lock()
	defer that.mu.Unlock()

	if len(that.updates) == 0 {
		return nil
	}

	game := that.updates[len(that.updates)-1]

	return &game
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestCoordinator(t *testing.T, mode, difficulty string) (*Coordinator, *memStore) {
	t.Helper()

	store := newMemStore()
	game := entity.NewGame("g-1", mode, difficulty)

	if mode == entity.ModePvA {
		game.Player2Name = "AI"
		game.Status = entity.StatusActive
	}

	return NewCoordinator(testLogger(), store, bot.NewSelector(bot.DefaultHardDepth), game), store
}

func TestCoordinator_Join(t *testing.T) {
	t.Run("Two distinct identities get slots 1 and 2 and the game starts", func(t *testing.T) {
		ctx := context.Background()
		coordinator, _ := newTestCoordinator(t, entity.ModePvP, "")

		// Given: two connections with distinct identities
		conn1 := &recordingConn{}
		conn2 := &recordingConn{}

		// When: the creator joins, then a second player
		number1, identity1, err := coordinator.Join(ctx, "", "alice", true, conn1)
		require.NoError(t, err)

		number2, identity2, err := coordinator.Join(ctx, "", "bob", false, conn2)
		require.NoError(t, err)

		// Then: slots are handed out in order and the game is active
		assert.Equal(t, entity.CellPlayer1, number1)
		assert.Equal(t, entity.CellPlayer2, number2)
		assert.NotEqual(t, identity1, identity2)

		game := coordinator.Snapshot()
		assert.Equal(t, entity.StatusActive, game.Status)
		assert.Equal(t, "alice", game.Player1Name)
		assert.Equal(t, "bob", game.Player2Name)
	})

	t.Run("The second join broadcasts the activated game to everyone", func(t *testing.T) {
		ctx := context.Background()
		coordinator, _ := newTestCoordinator(t, entity.ModePvP, "")

		conn1 := &recordingConn{}
		_, _, err := coordinator.Join(ctx, "", "alice", true, conn1)
		require.NoError(t, err)

		_, _, err = coordinator.Join(ctx, "", "bob", false, &recordingConn{})
		require.NoError(t, err)

		// Then: the creator's connection saw the waiting->active transition
		update := conn1.lastUpdate()
		require.NotNil(t, update)
		assert.Equal(t, entity.StatusActive, update.Status)
	})

	t.Run("The joining connection is excluded from its own activation broadcast", func(t *testing.T) {
		ctx := context.Background()
		coordinator, _ := newTestCoordinator(t, entity.ModePvP, "")

		_, _, err := coordinator.Join(ctx, "", "alice", true, &recordingConn{})
		require.NoError(t, err)

		// When: the second player joins; the transport sends the snapshot
		// in its join reply, so the broadcast must skip this connection
		conn2 := &recordingConn{}
		_, _, err = coordinator.Join(ctx, "", "bob", false, conn2)
		require.NoError(t, err)

		// Then: no duplicate game_update frame for the joiner
		assert.Nil(t, conn2.lastUpdate())
	})

	t.Run("A third distinct identity is rejected with ErrSessionFull", func(t *testing.T) {
		ctx := context.Background()
		coordinator, _ := newTestCoordinator(t, entity.ModePvP, "")

		_, _, err := coordinator.Join(ctx, "", "alice", true, &recordingConn{})
		require.NoError(t, err)
		_, _, err = coordinator.Join(ctx, "", "bob", false, &recordingConn{})
		require.NoError(t, err)

		_, _, err = coordinator.Join(ctx, "", "carol", false, &recordingConn{})

		assert.ErrorIs(t, err, apperror.ErrSessionFull)
	})

	t.Run("A known identity joining again keeps its slot", func(t *testing.T) {
		ctx := context.Background()
		coordinator, _ := newTestCoordinator(t, entity.ModePvP, "")

		_, identity, err := coordinator.Join(ctx, "", "alice", true, &recordingConn{})
		require.NoError(t, err)

		number, sameIdentity, err := coordinator.Join(ctx, identity, "alice", true, &recordingConn{})

		require.NoError(t, err)
		assert.Equal(t, entity.CellPlayer1, number)
		assert.Equal(t, identity, sameIdentity)
	})

	t.Run("Joining a pva game as player 2 is rejected", func(t *testing.T) {
		ctx := context.Background()
		coordinator, _ := newTestCoordinator(t, entity.ModePvA, entity.DifficultyEasy)

		_, _, err := coordinator.Join(ctx, "", "alice", true, &recordingConn{})
		require.NoError(t, err)

		_, _, err = coordinator.Join(ctx, "", "bob", false, &recordingConn{})

		assert.ErrorIs(t, err, apperror.ErrSessionFull)
	})
}

func TestCoordinator_Rejoin(t *testing.T) {
	t.Run("Rebinds a known identity to its slot without touching the game", func(t *testing.T) {
		ctx := context.Background()
		coordinator, _ := newTestCoordinator(t, entity.ModePvP, "")

		_, identity, err := coordinator.Join(ctx, "", "alice", true, &recordingConn{})
		require.NoError(t, err)
		before := coordinator.Snapshot()

		number, err := coordinator.Rejoin(identity, &recordingConn{})

		require.NoError(t, err)
		assert.Equal(t, entity.CellPlayer1, number)
		assert.Equal(t, *before, *coordinator.Snapshot())
	})

	t.Run("An unknown identity is rejected with ErrUnrecognized", func(t *testing.T) {
		coordinator, _ := newTestCoordinator(t, entity.ModePvP, "")

		_, err := coordinator.Rejoin("stranger", &recordingConn{})

		assert.ErrorIs(t, err, apperror.ErrUnrecognized)
	})

	t.Run("Disconnect clears liveness, rejoin restores it", func(t *testing.T) {
		ctx := context.Background()
		coordinator, _ := newTestCoordinator(t, entity.ModePvP, "")

		conn := &recordingConn{}
		_, identity, err := coordinator.Join(ctx, "", "alice", true, conn)
		require.NoError(t, err)
		require.True(t, coordinator.IsConnected(entity.CellPlayer1))

		coordinator.Detach(conn)
		assert.False(t, coordinator.IsConnected(entity.CellPlayer1))

		_, err = coordinator.Rejoin(identity, &recordingConn{})
		require.NoError(t, err)
		assert.True(t, coordinator.IsConnected(entity.CellPlayer1))
	})
}

func TestCoordinator_SubmitMove(t *testing.T) {
	startPvP := func(t *testing.T) (*Coordinator, *memStore, string, string, *recordingConn, *recordingConn) {
		t.Helper()

		ctx := context.Background()
		coordinator, store := newTestCoordinator(t, entity.ModePvP, "")

		conn1 := &recordingConn{}
		conn2 := &recordingConn{}

		_, identity1, err := coordinator.Join(ctx, "", "alice", true, conn1)
		require.NoError(t, err)
		_, identity2, err := coordinator.Join(ctx, "", "bob", false, conn2)
		require.NoError(t, err)

		return coordinator, store, identity1, identity2, conn1, conn2
	}

	t.Run("A legal move is applied, saved, and broadcast to all connections", func(t *testing.T) {
		ctx := context.Background()
		coordinator, store, identity1, _, conn1, conn2 := startPvP(t)

		game, err := coordinator.SubmitMove(ctx, identity1, entity.Move{Row: 0, Side: entity.SideLeft})

		require.NoError(t, err)
		assert.Equal(t, entity.CellPlayer1, game.Board[0][0])
		assert.Equal(t, entity.CellPlayer2, game.CurrentPlayer)

		for _, conn := range []*recordingConn{conn1, conn2} {
			update := conn.lastUpdate()
			require.NotNil(t, update)
			assert.Equal(t, 1, update.MoveCount)
		}

		store.mu.Lock()
		saved := store.games["g-1"]
		store.mu.Unlock()
		assert.Equal(t, 1, saved.MoveCount)
	})

	t.Run("The server-held slot binding overrides the claimed player number", func(t *testing.T) {
		ctx := context.Background()
		coordinator, _, identity1, _, _, _ := startPvP(t)

		// When: player 1 claims to be player 2 in the move payload
		game, err := coordinator.SubmitMove(ctx, identity1, entity.Move{Row: 0, Side: entity.SideLeft, Player: entity.CellPlayer2})

		// Then: the move is applied as player 1 regardless
		require.NoError(t, err)
		assert.Equal(t, entity.CellPlayer1, game.Board[0][0])
	})

	t.Run("An unknown identity cannot move", func(t *testing.T) {
		ctx := context.Background()
		coordinator, _, _, _, _, _ := startPvP(t)

		_, err := coordinator.SubmitMove(ctx, "stranger", entity.Move{Row: 0, Side: entity.SideLeft})

		assert.ErrorIs(t, err, apperror.ErrUnrecognized)
	})

	t.Run("Concurrent submissions serialize with no lost updates", func(t *testing.T) {
		ctx := context.Background()
		coordinator, _, identity1, _, _, _ := startPvP(t)

		// When: the same player submits two moves simultaneously
		errs := make(chan error, 2)
		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := coordinator.SubmitMove(ctx, identity1, entity.Move{Row: 0, Side: entity.SideLeft})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		// Then: exactly one succeeds against the pre-move state; the other is
		// evaluated against the post-move state and rejected out of turn
		var failures []error
		for err := range errs {
			if err != nil {
				failures = append(failures, err)
			}
		}

		require.Len(t, failures, 1)
		assert.ErrorIs(t, failures[0], apperror.ErrNotYourTurn)
		assert.Equal(t, 1, coordinator.Snapshot().MoveCount)
	})

	t.Run("In pva the broadcast already includes the bot's reply", func(t *testing.T) {
		ctx := context.Background()
		coordinator, _ := newTestCoordinator(t, entity.ModePvA, entity.DifficultyMedium)

		conn := &recordingConn{}
		_, identity, err := coordinator.Join(ctx, "", "alice", true, conn)
		require.NoError(t, err)

		game, err := coordinator.SubmitMove(ctx, identity, entity.Move{Row: 0, Side: entity.SideLeft})

		require.NoError(t, err)
		assert.Equal(t, 2, game.MoveCount)
		assert.Equal(t, entity.CellPlayer1, game.CurrentPlayer)

		update := conn.lastUpdate()
		require.NotNil(t, update)
		assert.Equal(t, 2, update.MoveCount)
	})

	t.Run("Moves after the game finished are rejected with ErrGameFinished", func(t *testing.T) {
		ctx := context.Background()
		coordinator, _, identity1, identity2, _, _ := startPvP(t)

		// Given: player 1 wins row 0 with four from the left
		moves := []struct {
			identity string
			move     entity.Move
		}{
			{identity1, entity.Move{Row: 0, Side: entity.SideLeft}},
			{identity2, entity.Move{Row: 1, Side: entity.SideLeft}},
			{identity1, entity.Move{Row: 0, Side: entity.SideLeft}},
			{identity2, entity.Move{Row: 1, Side: entity.SideLeft}},
			{identity1, entity.Move{Row: 0, Side: entity.SideLeft}},
			{identity2, entity.Move{Row: 1, Side: entity.SideLeft}},
			{identity1, entity.Move{Row: 0, Side: entity.SideLeft}},
		}

		for _, step := range moves {
			_, err := coordinator.SubmitMove(ctx, step.identity, step.move)
			require.NoError(t, err)
		}

		game := coordinator.Snapshot()
		require.Equal(t, entity.StatusFinished, game.Status)
		require.NotNil(t, game.Winner)
		assert.Equal(t, entity.CellPlayer1, *game.Winner)

		// When: the loser tries another move
		_, err := coordinator.SubmitMove(ctx, identity2, entity.Move{Row: 2, Side: entity.SideLeft})

		// Then: the move is rejected and the state preserved
		assert.ErrorIs(t, err, apperror.ErrGameFinished)
		assert.Equal(t, 7, coordinator.Snapshot().MoveCount)
	})
}

func TestCoordinator_RequestBotMove(t *testing.T) {
	t.Run("Applies one bot turn when the bot holds it", func(t *testing.T) {
		ctx := context.Background()
		coordinator, _ := newTestCoordinator(t, entity.ModePvA, entity.DifficultyEasy)

		conn := &recordingConn{}
		_, _, err := coordinator.Join(ctx, "", "alice", true, conn)
		require.NoError(t, err)

		// Given: the bot holds the turn (forced here; the normal path plays
		// the bot reply inside SubmitMove)
		coordinator.game.CurrentPlayer = entity.BotPlayer

		game, err := coordinator.RequestBotMove(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, game.MoveCount)
		assert.Equal(t, entity.CellPlayer1, game.CurrentPlayer)
		require.NotNil(t, conn.lastUpdate())
	})

	t.Run("Rejected when the human holds the turn", func(t *testing.T) {
		ctx := context.Background()
		coordinator, _ := newTestCoordinator(t, entity.ModePvA, entity.DifficultyEasy)

		_, err := coordinator.RequestBotMove(ctx)

		assert.ErrorIs(t, err, apperror.ErrNotYourTurn)
	})
}
