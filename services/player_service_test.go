package services

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/wfunc/battleserver/network"
	"github.com/wfunc/battleserver/session"
)

type mockConn struct{}

func (m *mockConn) SendJSON(v interface{}) error             { return nil }
func (m *mockConn) ReadEnvelope() (*network.Envelope, error) { return nil, nil }
func (m *mockConn) Close() error                             { return nil }
func (m *mockConn) RemoteAddr() net.Addr                     { return &net.TCPAddr{} }
func (m *mockConn) SetHeartbeat(interval time.Duration)      {}

func TestRegister_GeneratesID(t *testing.T) {
	manager := session.NewManager()
	svc := NewPlayerService(manager)

	sess := session.NewSession("s1", &mockConn{})
	manager.Add(sess)

	id := svc.Register(sess, &network.RegisterRequest{WalletAddress: "0xabc"})
	if !strings.HasPrefix(id, "player_") {
		t.Fatalf("Generated id should have the player_ prefix, got %s", id)
	}
	if sess.GetPlayerID() != id {
		t.Error("Register should bind the id to the session")
	}
	if sess.GetWalletAddress() != "0xabc" {
		t.Error("Register should bind the wallet address")
	}

	found, exists := manager.GetByPlayerID(id)
	if !exists || found != sess {
		t.Error("Register should index the session by player id")
	}
}

func TestRegister_KeepsProvidedID(t *testing.T) {
	manager := session.NewManager()
	svc := NewPlayerService(manager)

	sess := session.NewSession("s1", &mockConn{})
	manager.Add(sess)

	id := svc.Register(sess, &network.RegisterRequest{PlayerID: "alice"})
	if id != "alice" {
		t.Fatalf("A client-chosen id must be kept, got %s", id)
	}
}

func TestRegister_OverwritesPreviousEntry(t *testing.T) {
	manager := session.NewManager()
	svc := NewPlayerService(manager)

	sess1 := session.NewSession("s1", &mockConn{})
	sess2 := session.NewSession("s2", &mockConn{})
	manager.Add(sess1)
	manager.Add(sess2)

	svc.Register(sess1, &network.RegisterRequest{PlayerID: "alice"})
	svc.Register(sess2, &network.RegisterRequest{PlayerID: "alice"})

	found, exists := manager.GetByPlayerID("alice")
	if !exists || found != sess2 {
		t.Error("Re-registration must point the registry at the latest session")
	}
}

func TestGenerateID_Unique(t *testing.T) {
	manager := session.NewManager()
	svc := NewPlayerService(manager)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := svc.generateID()
		if seen[id] {
			t.Fatalf("Duplicate generated id: %s", id)
		}
		seen[id] = true
	}
}
