// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/wfunc/battleserver/models"
	"github.com/wfunc/battleserver/network"
)

// Session 一条连接及其注册信息。PlayerID 在 register 之前为空。
type Session struct {
	ID            string
	Conn          network.Connection
	PlayerID      string
	WalletAddress string
	Party         []models.CreatureState
	RoomID        string
	CreatedAt     time.Time
	LastActive    time.Time
	mutex         sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

// Register binds the player identity to this connection. Re-registering
// overwrites the previous entry.
func (s *Session) Register(playerID, walletAddress string, party []models.CreatureState) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.PlayerID = playerID
	s.WalletAddress = walletAddress
	s.Party = party
}

// GetPlayerID returns the registered player id, empty before registration.
func (s *Session) GetPlayerID() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.PlayerID
}

// GetParty 返回注册时提交的队伍
func (s *Session) GetParty() []models.CreatureState {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.Party
}

// GetWalletAddress returns the wallet bound at registration, if any.
func (s *Session) GetWalletAddress() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.WalletAddress
}

func (s *Session) GetID() string {
	return s.ID
}

// Send delivers a message to this session's connection, best effort. A dead
// connection is the read loop's problem, not the sender's.
func (s *Session) Send(v interface{}) error {
	s.LastActive = time.Now()
	return s.Conn.SendJSON(v)
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager 会话管理器，同时维护 playerID 索引作为玩家注册表
type Manager struct {
	sessions map[string]*Session // sessionID -> session
	byPlayer map[string]*Session // playerID -> session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		byPlayer: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if session, exists := m.sessions[sessionID]; exists {
		if pid := session.GetPlayerID(); pid != "" && m.byPlayer[pid] == session {
			delete(m.byPlayer, pid)
		}
		delete(m.sessions, sessionID)
	}
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

// IndexPlayer records the playerID -> session mapping after registration.
// A later registration under the same id steals the entry.
func (m *Manager) IndexPlayer(playerID string, session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.byPlayer[playerID] = session
}

// GetByPlayerID looks up the session a player registered on.
func (m *Manager) GetByPlayerID(playerID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.byPlayer[playerID]
	return session, exists
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}
