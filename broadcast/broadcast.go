// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/wfunc/battleserver/room"
	"github.com/wfunc/battleserver/session"
)

var (
	ErrRoomNotFound = errors.New("room not found")
)

// 广播接口
type Broadcaster interface {
	BroadcastToRoom(roomID string, v interface{}) error
	BroadcastToPlayers(playerIDs []string, v interface{}) error
}

// RoomBroadcaster 基于房间的广播器，发送失败(连接已关闭)时静默跳过
type RoomBroadcaster struct {
	roomManager    *room.Manager
	sessionManager *session.Manager
}

func NewRoomBroadcaster(roomManager *room.Manager, sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		roomManager:    roomManager,
		sessionManager: sessionManager,
	}
}

func (b *RoomBroadcaster) BroadcastToRoom(roomID string, v interface{}) error {
	battleRoom, exists := b.roomManager.GetRoom(roomID)
	if !exists {
		return ErrRoomNotFound
	}

	// Get a thread-safe copy of the sessions
	sessions := battleRoom.GetSessions()

	for _, s := range sessions {
		if err := s.Send(v); err != nil {
			// 对端连接可能已关闭，按约定不视为错误
			continue
		}
	}

	return nil
}

func (b *RoomBroadcaster) BroadcastToPlayers(playerIDs []string, v interface{}) error {
	for _, playerID := range playerIDs {
		if s, exists := b.sessionManager.GetByPlayerID(playerID); exists {
			if err := s.Send(v); err != nil {
				continue
			}
		}
	}
	return nil
}
