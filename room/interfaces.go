package room

// Broadcaster defines the interface for broadcasting messages to a room.
// This is defined here to break the import cycle between room and broadcast.
type Broadcaster interface {
	BroadcastToRoom(roomID string, v interface{}) error
}

// FinishHandler is invoked exactly once when a battle reaches its terminal
// state, after the battle_end broadcast. winnerID is empty when the battle
// failed to start and nobody won.
type FinishHandler func(roomID, winnerID string)
