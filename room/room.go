// room/room.go
package room

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/wfunc/battleserver/battle"
	"github.com/wfunc/battleserver/logger"
	"github.com/wfunc/battleserver/models"
	"github.com/wfunc/battleserver/network"
	"github.com/wfunc/battleserver/session"
	"github.com/wfunc/battleserver/state"
)

// Combatant 房间内的一名玩家：连接句柄归会话层所有，房间只是借用
type Combatant struct {
	PlayerID string
	Session  *session.Session
	Creature *models.CreatureState
	Ready    bool
}

// GetID implements state.Player.
func (c *Combatant) GetID() string {
	return c.PlayerID
}

// BattleRoom 一场 1v1 对战。created -> active -> finished，finished 不可逆。
// 回合规则:服务端持有唯一的 currentTurn，非持有者提交的动作直接丢弃。
type BattleRoom struct {
	ID          string
	player1     *Combatant
	player2     *Combatant
	currentTurn string
	finished    bool
	winner      string

	machine     state.StateMachine
	validator   *battle.Validator
	broadcaster Broadcaster
	onFinish    FinishHandler
	StartedAt   time.Time

	mutex       sync.Mutex   // 回合与 HP 等战斗状态
	playerMutex sync.RWMutex // 参战者列表
}

// NewBattleRoom 创建房间。validator 为 nil 时使用默认随机源。
func NewBattleRoom(id string, validator *battle.Validator, broadcaster Broadcaster, onFinish FinishHandler) *BattleRoom {
	if validator == nil {
		validator = battle.NewValidator(nil)
	}
	r := &BattleRoom{
		ID:          id,
		validator:   validator,
		broadcaster: broadcaster,
		onFinish:    onFinish,
	}

	created := newCreatedState(r)
	r.machine = state.NewBaseStateMachine(created)
	r.machine.AddTransition(created, newActiveState(r), nil)
	r.machine.AddTransition(created, newFinishedState(r), nil)
	r.machine.AddTransition(newActiveState(r), newFinishedState(r), nil)

	return r
}

// Start builds both combatants from the first creature of each party and
// opens the battle. A player with no usable creature finishes the room on
// the spot, with no winner and no notification.
func (r *BattleRoom) Start(p1, p2 *session.Session) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	c1 := newCombatant(p1)
	c2 := newCombatant(p2)

	if c1 == nil || c2 == nil {
		logger.Log.Warnf("Room %s could not start: a party has no usable creature", r.ID)
		r.finishLocked("")
		return
	}

	r.playerMutex.Lock()
	r.player1 = c1
	r.player2 = c2
	r.playerMutex.Unlock()

	// 先手按速度判定，速度相同时 player1 先手
	if c1.Creature.Speed >= c2.Creature.Speed {
		r.currentTurn = c1.PlayerID
	} else {
		r.currentTurn = c2.PlayerID
	}

	r.StartedAt = time.Now()
	r.machine.ChangeState(newActiveState(r))

	r.sendTo(c1, network.BattleStartMessage{
		Type:             network.MsgTypeBattleStart,
		RoomID:           r.ID,
		YourCreature:     *c1.Creature,
		OpponentCreature: *c2.Creature,
		YourTurn:         r.currentTurn == c1.PlayerID,
	})
	r.sendTo(c2, network.BattleStartMessage{
		Type:             network.MsgTypeBattleStart,
		RoomID:           r.ID,
		YourCreature:     *c2.Creature,
		OpponentCreature: *c1.Creature,
		YourTurn:         r.currentTurn == c2.PlayerID,
	})
}

// HandleAction routes a submitted action to the current state. Anything the
// rules reject is dropped without feedback.
func (r *BattleRoom) HandleAction(playerID string, actionData json.RawMessage) {
	combatant, ok := r.combatant(playerID)
	if !ok {
		return
	}
	if err := r.machine.GetCurrentState().HandleAction(combatant, actionData); err != nil {
		logger.Log.Errorf("Room %s action from %s failed: %v", r.ID, playerID, err)
	}
}

// resolveAction applies one attack. Called from the active state only.
func (r *BattleRoom) resolveAction(attacker *Combatant, actionData json.RawMessage) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	// 状态机切换和动作投递之间可能插入断线结算，这里再确认一次
	if r.finished || attacker.PlayerID != r.currentTurn {
		return nil
	}

	defender := r.opponentOf(attacker.PlayerID)
	if defender == nil {
		return nil
	}

	action := models.ParseAction(actionData)
	if !r.validator.ValidateAction(action, attacker.Creature) {
		logger.Log.Debugf("Room %s dropped invalid action from %s", r.ID, attacker.PlayerID)
		return nil
	}

	skill := attacker.Creature.Skills[*action.SkillIndex]
	result := r.validator.CalculateDamage(attacker.Creature, defender.Creature, skill)

	defender.Creature.HP -= result.Damage
	if defender.Creature.HP < 0 {
		defender.Creature.HP = 0
	}

	r.broadcast(network.TurnResultMessage{
		Type:          network.MsgTypeTurnResult,
		Attacker:      attacker.PlayerID,
		SkillName:     skill.Name,
		Damage:        result.Damage,
		Effectiveness: result.Effectiveness,
		Hit:           result.Hit,
		AttackerHP:    attacker.Creature.HP,
		DefenderHP:    defender.Creature.HP,
	})

	if defender.Creature.HP <= 0 {
		r.finishLocked(attacker.PlayerID)
		return nil
	}

	r.currentTurn = defender.PlayerID
	r.sendTo(attacker, network.TurnChangeMessage{Type: network.MsgTypeTurnChange, YourTurn: false})
	r.sendTo(defender, network.TurnChangeMessage{Type: network.MsgTypeTurnChange, YourTurn: true})
	return nil
}

// HandleDisconnect forfeits the battle to the remaining player. Calling it
// on a finished room is a no-op.
func (r *BattleRoom) HandleDisconnect(playerID string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.finished {
		return
	}

	survivor := r.opponentOf(playerID)
	if survivor == nil {
		return
	}
	r.finishLocked(survivor.PlayerID)
}

// finishLocked 终局:置 finished、广播 battle_end、回调 onFinish。
// 只能在持有 mutex 时调用，且只会生效一次。
func (r *BattleRoom) finishLocked(winnerID string) {
	if r.finished {
		return
	}
	r.finished = true
	r.winner = winnerID
	r.machine.ChangeState(newFinishedState(r))

	if winnerID != "" {
		r.broadcast(network.BattleEndMessage{
			Type:   network.MsgTypeBattleEnd,
			Winner: winnerID,
			RoomID: r.ID,
		})
	}

	if r.onFinish != nil {
		r.onFinish(r.ID, winnerID)
	}
}

// HasPlayer reports whether the player fights in this room.
func (r *BattleRoom) HasPlayer(playerID string) bool {
	_, ok := r.combatant(playerID)
	return ok
}

// IsFinished reports whether the room reached its terminal state.
func (r *BattleRoom) IsFinished() bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.finished
}

// Winner returns the winning player id, empty while active or when the
// battle never started.
func (r *BattleRoom) Winner() string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.winner
}

// CurrentTurn returns the player id allowed to act.
func (r *BattleRoom) CurrentTurn() string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.currentTurn
}

// GetSessions returns the sessions of both combatants (thread-safe).
func (r *BattleRoom) GetSessions() []*session.Session {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()

	sessions := make([]*session.Session, 0, 2)
	if r.player1 != nil {
		sessions = append(sessions, r.player1.Session)
	}
	if r.player2 != nil {
		sessions = append(sessions, r.player2.Session)
	}
	return sessions
}

func (r *BattleRoom) combatant(playerID string) (*Combatant, bool) {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()

	if r.player1 != nil && r.player1.PlayerID == playerID {
		return r.player1, true
	}
	if r.player2 != nil && r.player2.PlayerID == playerID {
		return r.player2, true
	}
	return nil, false
}

func (r *BattleRoom) opponentOf(playerID string) *Combatant {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()

	if r.player1 != nil && r.player1.PlayerID == playerID {
		return r.player2
	}
	if r.player2 != nil && r.player2.PlayerID == playerID {
		return r.player1
	}
	return nil
}

// broadcast 发给双方;单个连接已关闭时静默跳过
func (r *BattleRoom) broadcast(v interface{}) {
	if r.broadcaster != nil {
		r.broadcaster.BroadcastToRoom(r.ID, v)
	}
}

func (r *BattleRoom) sendTo(c *Combatant, v interface{}) {
	if err := c.Session.Send(v); err != nil {
		logger.Log.Debugf("Room %s send to %s failed: %v", r.ID, c.PlayerID, err)
	}
}

func newCombatant(sess *session.Session) *Combatant {
	creature, ok := battle.FirstCreature(sess.GetParty())
	if !ok {
		return nil
	}
	return &Combatant{
		PlayerID: sess.GetPlayerID(),
		Session:  sess,
		Creature: &creature,
		Ready:    true,
	}
}

// --- 房间管理器 ---

// Manager 管理所有对战房间
type Manager struct {
	rooms map[string]*BattleRoom
	mutex sync.RWMutex
}

// NewRoomManager 创建一个新的房间管理器
func NewRoomManager() *Manager {
	return &Manager{
		rooms: make(map[string]*BattleRoom),
	}
}

// CreateRoom 创建一个新房间并添加到管理器
func (m *Manager) CreateRoom(id string, validator *battle.Validator, broadcaster Broadcaster, onFinish FinishHandler) *BattleRoom {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	room := NewBattleRoom(id, validator, broadcaster, onFinish)
	m.rooms[id] = room
	return room
}

// RemoveRoom 从管理器中移除一个房间
func (m *Manager) RemoveRoom(id string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.rooms, id)
}

// GetRoom 从管理器中获取一个房间
func (m *Manager) GetRoom(id string) (*BattleRoom, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	room, exists := m.rooms[id]
	return room, exists
}

// FindByPlayer 查找玩家所在的房间
func (m *Manager) FindByPlayer(playerID string) (*BattleRoom, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, room := range m.rooms {
		if room.HasPlayer(playerID) {
			return room, true
		}
	}
	return nil, false
}

// Count 当前房间数
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}
