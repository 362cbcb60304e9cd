package session

import (
	"net"
	"testing"
	"time"

	"github.com/wfunc/battleserver/network"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct{}

func (m *MockConnection) SendJSON(v interface{}) error             { return nil }
func (m *MockConnection) ReadEnvelope() (*network.Envelope, error) { return nil, nil }
func (m *MockConnection) Close() error                             { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                     { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration)      {}

func TestNewManager(t *testing.T) {
	manager := NewManager()
	if manager == nil {
		t.Fatal("NewManager should not return nil")
	}
	if manager.sessions == nil || manager.byPlayer == nil {
		t.Fatal("NewManager should initialize both maps")
	}
}

func TestManager_Add_Get_Remove(t *testing.T) {
	manager := NewManager()
	sessionID := "test_session_1"
	sess := NewSession(sessionID, &MockConnection{})

	manager.Add(sess)
	if manager.Count() != 1 {
		t.Fatalf("Expected session count to be 1, got %d", manager.Count())
	}

	retrievedSess, exists := manager.Get(sessionID)
	if !exists {
		t.Fatal("Get should find the added session")
	}
	if retrievedSess != sess {
		t.Fatal("Get should return the same session instance")
	}

	manager.Remove(sessionID)
	if manager.Count() != 0 {
		t.Fatalf("Expected session count to be 0 after removal, got %d", manager.Count())
	}

	_, exists = manager.Get(sessionID)
	if exists {
		t.Fatal("Get should not find the removed session")
	}
}

func TestManager_PlayerIndex(t *testing.T) {
	manager := NewManager()

	sess := NewSession("session1", &MockConnection{})
	manager.Add(sess)

	sess.Register("player_abc", "0xdead", nil)
	manager.IndexPlayer("player_abc", sess)

	found, exists := manager.GetByPlayerID("player_abc")
	if !exists {
		t.Fatal("GetByPlayerID should find the registered session")
	}
	if found != sess {
		t.Fatal("GetByPlayerID should return the same session instance")
	}

	if _, exists := manager.GetByPlayerID("player_unknown"); exists {
		t.Fatal("GetByPlayerID should not find an unregistered player")
	}
}

func TestManager_RemoveClearsPlayerIndex(t *testing.T) {
	manager := NewManager()

	sess := NewSession("session1", &MockConnection{})
	manager.Add(sess)
	sess.Register("player_abc", "", nil)
	manager.IndexPlayer("player_abc", sess)

	manager.Remove("session1")

	if _, exists := manager.GetByPlayerID("player_abc"); exists {
		t.Fatal("Removing a session should drop its player index entry")
	}
}

func TestManager_ReRegisterStealsIndex(t *testing.T) {
	manager := NewManager()

	sess1 := NewSession("session1", &MockConnection{})
	sess2 := NewSession("session2", &MockConnection{})
	manager.Add(sess1)
	manager.Add(sess2)

	sess1.Register("player_abc", "", nil)
	manager.IndexPlayer("player_abc", sess1)

	// 同一 playerID 在新连接上重新注册，索引指向新会话
	sess2.Register("player_abc", "", nil)
	manager.IndexPlayer("player_abc", sess2)

	found, _ := manager.GetByPlayerID("player_abc")
	if found != sess2 {
		t.Fatal("Re-registration should point the index at the new session")
	}

	// 旧会话断开不应影响新会话的索引
	manager.Remove("session1")
	if _, exists := manager.GetByPlayerID("player_abc"); !exists {
		t.Fatal("Removing the stale session must not clear the new session's index")
	}
}

func TestSession_Register(t *testing.T) {
	sess := NewSession("test_session", &MockConnection{})

	if sess.GetPlayerID() != "" {
		t.Fatal("A fresh session should have no player id")
	}

	sess.Register("player_1", "0xabc", nil)

	if sess.GetPlayerID() != "player_1" {
		t.Errorf("Expected player id player_1, got %s", sess.GetPlayerID())
	}
	if sess.GetWalletAddress() != "0xabc" {
		t.Errorf("Expected wallet 0xabc, got %s", sess.GetWalletAddress())
	}
}
