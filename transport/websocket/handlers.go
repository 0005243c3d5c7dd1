package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/sidestacker-backend/internal/entity"
	"github.com/rocketscienceinc/sidestacker-backend/internal/session"
)

var errNotJoined = errors.New("join the game before making a move")

func (that *Server) handleCreatorJoin(ctx context.Context, coordinator *session.Coordinator, conn *connection, payload json.RawMessage) error {
	return that.join(ctx, coordinator, conn, payload, true, "Player 1")
}

func (that *Server) handleJoinGame(ctx context.Context, coordinator *session.Coordinator, conn *connection, payload json.RawMessage) error {
	return that.join(ctx, coordinator, conn, payload, false, "Player 2")
}

func (that *Server) join(ctx context.Context, coordinator *session.Coordinator, conn *connection, payload json.RawMessage, asCreator bool, defaultName string) error {
	var joinPayload JoinPayload
	if err := json.Unmarshal(payload, &joinPayload); err != nil {
		return fmt.Errorf("failed to unmarshal join payload: %w", err)
	}

	name := joinPayload.PlayerName
	if name == "" {
		name = defaultName
	}

	number, identity, err := coordinator.Join(ctx, joinPayload.PlayerID, name, asCreator, conn)
	if err != nil {
		return err
	}

	conn.identity = identity

	// assignment and snapshot go to the joining connection only; when the
	// join changed state the coordinator broadcast to the others already
	if err = conn.sendAssignment(number, identity); err != nil {
		return fmt.Errorf("failed to send assignment: %w", err)
	}

	return conn.SendGameUpdate(coordinator.Snapshot())
}

func (that *Server) handleRejoinGame(_ context.Context, coordinator *session.Coordinator, conn *connection, payload json.RawMessage) error {
	var joinPayload JoinPayload
	if err := json.Unmarshal(payload, &joinPayload); err != nil {
		return fmt.Errorf("failed to unmarshal rejoin payload: %w", err)
	}

	number, err := coordinator.Rejoin(joinPayload.PlayerID, conn)
	if err != nil {
		return err
	}

	conn.identity = joinPayload.PlayerID

	if err = conn.sendAssignment(number, joinPayload.PlayerID); err != nil {
		return fmt.Errorf("failed to send assignment: %w", err)
	}

	return conn.SendGameUpdate(coordinator.Snapshot())
}

func (that *Server) handleMakeMove(ctx context.Context, coordinator *session.Coordinator, conn *connection, payload json.RawMessage) error {
	if conn.identity == "" {
		return errNotJoined
	}

	var movePayload MovePayload
	if err := json.Unmarshal(payload, &movePayload); err != nil {
		return fmt.Errorf("failed to unmarshal move payload: %w", err)
	}

	move := entity.Move{
		Row:    movePayload.Row,
		Side:   movePayload.Side,
		Player: movePayload.Player,
	}

	// SubmitMove broadcasts the resulting state, bot reply included, to
	// every attached connection; rejections come back to this one only.
	if _, err := coordinator.SubmitMove(ctx, conn.identity, move); err != nil {
		return err
	}

	return nil
}
