package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/sidestacker-backend/internal/entity"
)

const writeTimeout = 10 * time.Second

// connection wraps one client socket. The mutex serializes writes: the read
// loop and the coordinator's broadcasts both write here, and WriteJSON is
// not safe for concurrent use.
type connection struct {
	ws *websocket.Conn

	mu sync.Mutex

	// identity set once the client joins; moves are resolved against it
	identity string
}

func newConnection(ws *websocket.Conn) *connection {
	return &connection{ws: ws}
}

// SendGameUpdate - implements session.Conn for coordinator broadcasts.
func (that *connection) SendGameUpdate(game *entity.Game) error {
	return that.send(Outbound{
		Type:     typeGameUpdate,
		GameData: NewGameResponse(game),
	})
}

func (that *connection) sendAssignment(number entity.Cell, identity string) error {
	return that.send(Outbound{
		Type:         typePlayerAssignment,
		PlayerNumber: number,
		Identity:     identity,
	})
}

func (that *connection) sendError(message string) error {
	return that.send(Outbound{
		Type:    typeError,
		Message: message,
	})
}

func (that *connection) send(message Outbound) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.ws.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}

	return that.ws.WriteJSON(message)
}
