package server

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/rpc"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/battleserver/battle"
	"github.com/wfunc/battleserver/broadcast"
	"github.com/wfunc/battleserver/logger"
	"github.com/wfunc/battleserver/matchmaking"
	"github.com/wfunc/battleserver/monitor"
	"github.com/wfunc/battleserver/network"
	"github.com/wfunc/battleserver/room"
	battlerpc "github.com/wfunc/battleserver/rpc"
	"github.com/wfunc/battleserver/services"
	"github.com/wfunc/battleserver/session"
	"github.com/wfunc/battleserver/signer"
	"github.com/wfunc/battleserver/timer"
)

// GameServer 会话网关:持有连接、玩家注册表和路由，
// 把协议消息转发给匹配队列和对战房间。
type GameServer struct {
	addr           string
	upgrader       websocket.Upgrader
	queue          *matchmaking.Queue
	roomManager    *room.Manager
	sessionManager *session.Manager
	playerService  *services.PlayerService
	broadcaster    broadcast.Broadcaster
	validator      *battle.Validator
	rewardSigner   *signer.Signer
	rewardAmount   *big.Int
	monitor        *monitor.Monitor
	rpcServer      *battlerpc.Server
	timers         *timer.Manager
	shutdownChan   chan struct{}
}

// NewGameServer wires the gateway. rewardSigner and mon may be nil; the
// server then runs without reward signatures or metrics.
func NewGameServer(addr, rpcAddr string, rewardSigner *signer.Signer, rewardAmount *big.Int, mon *monitor.Monitor) *GameServer {
	s := &GameServer{
		addr:           addr,
		queue:          matchmaking.NewQueue(),
		roomManager:    room.NewRoomManager(),
		sessionManager: session.NewManager(),
		validator:      battle.NewValidator(nil),
		rewardSigner:   rewardSigner,
		rewardAmount:   rewardAmount,
		monitor:        mon,
		timers:         timer.NewManager(),
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	s.playerService = services.NewPlayerService(s.sessionManager)

	// 初始化广播器
	s.broadcaster = broadcast.NewRoomBroadcaster(s.roomManager, s.sessionManager)

	// 初始化RPC服务器
	rpcServer, err := battlerpc.NewServer(rpcAddr)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer

	// 注册RPC服务
	rpc.Register(battlerpc.NewBattleService(s))

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()

	// 周期刷新队列与房间的指标
	s.timers.AddTimer(0, 5*time.Second, func() {
		if s.monitor != nil {
			s.monitor.SetQueueDepth(s.queue.Size())
			s.monitor.SetActiveBattles(s.roomManager.Count())
		}
	})

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Battle server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.rpcServer.Stop()
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(network.NewWSConnection(conn))
}

func (s *GameServer) handleConnection(wsConn network.Connection) {
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	if s.monitor != nil {
		s.monitor.IncOnlinePlayers()
	}

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.handleDisconnect(sess)
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			envelope, err := wsConn.ReadEnvelope()
			if err != nil {
				if errors.Is(err, network.ErrMalformedMessage) {
					// 消息不合法但连接保持
					sess.Send(network.ErrorMessage{Type: network.MsgTypeError, Message: "Invalid message"})
					continue
				}
				return
			}
			s.handleEnvelope(sess, envelope)
		}
	}
}

// handleEnvelope routes one inbound message. Unknown types are ignored.
func (s *GameServer) handleEnvelope(sess *session.Session, envelope *network.Envelope) {
	if s.monitor != nil {
		s.monitor.IncMessagesReceived()
	}

	switch envelope.Type {
	case network.MsgTypeRegister:
		s.handleRegister(sess, envelope)
	case network.MsgTypeJoinQueue:
		s.handleJoinQueue(sess)
	case network.MsgTypeLeaveQueue:
		s.handleLeaveQueue(sess)
	case network.MsgTypeBattleAction:
		s.handleBattleAction(sess, envelope)
	default:
		logger.Log.Debugf("Unknown message type: %q", envelope.Type)
	}
}

func (s *GameServer) handleRegister(sess *session.Session, envelope *network.Envelope) {
	var req network.RegisterRequest
	if err := json.Unmarshal(envelope.Raw, &req); err != nil {
		sess.Send(network.ErrorMessage{Type: network.MsgTypeError, Message: "Invalid message"})
		return
	}

	playerID := s.playerService.Register(sess, &req)
	logger.Log.Infof("Session %s registered as player %s", sess.GetID(), playerID)

	sess.Send(network.RegisteredMessage{Type: network.MsgTypeRegistered, PlayerID: playerID})
}

func (s *GameServer) handleJoinQueue(sess *session.Session) {
	playerID := sess.GetPlayerID()
	if playerID == "" {
		return
	}

	s.queue.Enqueue(playerID, sess.GetParty())

	if match := s.queue.TryMatch(); match != nil {
		s.startBattle(match.Player1, match.Player2)
		return
	}

	sess.Send(network.QueueJoinedMessage{Type: network.MsgTypeQueueJoined, Position: s.queue.Size()})
}

func (s *GameServer) handleLeaveQueue(sess *session.Session) {
	if playerID := sess.GetPlayerID(); playerID != "" {
		s.queue.Remove(playerID)
	}
	sess.Send(network.QueueLeftMessage{Type: network.MsgTypeQueueLeft})
}

func (s *GameServer) handleBattleAction(sess *session.Session, envelope *network.Envelope) {
	playerID := sess.GetPlayerID()
	if playerID == "" {
		return
	}

	var req network.BattleActionRequest
	if err := json.Unmarshal(envelope.Raw, &req); err != nil {
		return
	}

	if battleRoom, exists := s.roomManager.FindByPlayer(playerID); exists {
		battleRoom.HandleAction(playerID, req.Action)
	}
}

// startBattle creates a room for a fresh pairing and starts it. Players that
// vanished between pairing and start simply forfeit the pairing.
func (s *GameServer) startBattle(player1, player2 string) {
	sess1, ok1 := s.sessionManager.GetByPlayerID(player1)
	sess2, ok2 := s.sessionManager.GetByPlayerID(player2)
	if !ok1 || !ok2 {
		logger.Log.Warnf("Pairing %s vs %s dropped: a session disappeared", player1, player2)
		return
	}

	roomID := uuid.New().String()
	battleRoom := s.roomManager.CreateRoom(roomID, s.validator, s.broadcaster, s.onBattleFinish)
	sess1.RoomID = roomID
	sess2.RoomID = roomID

	logger.Log.Infof("Room %s created: %s vs %s", roomID, player1, player2)
	battleRoom.Start(sess1, sess2)
}

// onBattleFinish runs once per room, inside the room's own lock: it must not
// call back into locked room methods.
func (s *GameServer) onBattleFinish(roomID, winnerID string) {
	if battleRoom, exists := s.roomManager.GetRoom(roomID); exists {
		if s.monitor != nil && !battleRoom.StartedAt.IsZero() {
			s.monitor.ObserveBattle(time.Since(battleRoom.StartedAt))
		}
	}
	s.roomManager.RemoveRoom(roomID)

	if winnerID == "" {
		return
	}
	logger.Log.Infof("Room %s finished, winner %s", roomID, winnerID)
	s.sendReward(roomID, winnerID)
}

// sendReward hands the winner a claim signature when they registered a
// wallet address. Best effort: a failure only logs.
func (s *GameServer) sendReward(roomID, winnerID string) {
	if s.rewardSigner == nil || s.rewardAmount == nil {
		return
	}

	winnerSess, exists := s.sessionManager.GetByPlayerID(winnerID)
	if !exists {
		return
	}
	wallet := winnerSess.GetWalletAddress()
	if !common.IsHexAddress(wallet) {
		return
	}

	signature, err := s.rewardSigner.SignBattleReward(
		common.HexToAddress(wallet),
		signer.BattleID(roomID),
		s.rewardAmount,
	)
	if err != nil {
		logger.Log.Errorf("Reward signing for room %s failed: %v", roomID, err)
		return
	}

	winnerSess.Send(network.BattleRewardMessage{
		Type:      network.MsgTypeBattleReward,
		RoomID:    roomID,
		Amount:    s.rewardAmount.String(),
		Signature: signature,
	})
}

// handleDisconnect tears down everything a dropped connection owned: queue
// entry, running battle (forfeited), registry entry.
func (s *GameServer) handleDisconnect(sess *session.Session) {
	if playerID := sess.GetPlayerID(); playerID != "" {
		s.queue.Remove(playerID)
		if battleRoom, exists := s.roomManager.FindByPlayer(playerID); exists {
			battleRoom.HandleDisconnect(playerID)
		}
	}
	s.sessionManager.Remove(sess.GetID())
	if s.monitor != nil {
		s.monitor.DecOnlinePlayers()
	}
}

// --- battlerpc.StatsProvider ---

func (s *GameServer) OnlinePlayers() int {
	return s.sessionManager.Count()
}

func (s *GameServer) QueueDepth() int {
	return s.queue.Size()
}

func (s *GameServer) ActiveBattles() int {
	return s.roomManager.Count()
}

func (s *GameServer) UptimeSeconds() float64 {
	if s.monitor == nil {
		return 0
	}
	return s.monitor.Uptime().Seconds()
}

func (s *GameServer) SignerAddress() string {
	if s.rewardSigner == nil {
		return ""
	}
	return s.rewardSigner.Address().Hex()
}
