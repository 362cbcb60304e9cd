package network

import (
	"encoding/json"

	"github.com/wfunc/battleserver/models"
)

// 入站消息类型
const (
	MsgTypeRegister     = "register"
	MsgTypeJoinQueue    = "join_queue"
	MsgTypeLeaveQueue   = "leave_queue"
	MsgTypeBattleAction = "battle_action"
)

// 出站消息类型
const (
	MsgTypeRegistered   = "registered"
	MsgTypeQueueJoined  = "queue_joined"
	MsgTypeQueueLeft    = "queue_left"
	MsgTypeBattleStart  = "battle_start"
	MsgTypeTurnResult   = "turn_result"
	MsgTypeTurnChange   = "turn_change"
	MsgTypeBattleEnd    = "battle_end"
	MsgTypeBattleReward = "battle_reward"
	MsgTypeError        = "error"
)

// --- client -> server ---

type RegisterRequest struct {
	Type          string                 `json:"type"`
	PlayerID      string                 `json:"playerId,omitempty"`
	WalletAddress string                 `json:"walletAddress,omitempty"`
	Party         []models.CreatureState `json:"party"`
}

type BattleActionRequest struct {
	Type   string          `json:"type"`
	Action json.RawMessage `json:"action"`
}

// --- server -> client ---

type RegisteredMessage struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
}

type QueueJoinedMessage struct {
	Type     string `json:"type"`
	Position int    `json:"position"`
}

type QueueLeftMessage struct {
	Type string `json:"type"`
}

type BattleStartMessage struct {
	Type             string               `json:"type"`
	RoomID           string               `json:"roomId"`
	YourCreature     models.CreatureState `json:"yourCreature"`
	OpponentCreature models.CreatureState `json:"opponentCreature"`
	YourTurn         bool                 `json:"yourTurn"`
}

type TurnResultMessage struct {
	Type          string  `json:"type"`
	Attacker      string  `json:"attacker"`
	SkillName     string  `json:"skillName"`
	Damage        int     `json:"damage"`
	Effectiveness float64 `json:"effectiveness"`
	Hit           bool    `json:"hit"`
	AttackerHP    int     `json:"attackerHp"`
	DefenderHP    int     `json:"defenderHp"`
}

type TurnChangeMessage struct {
	Type     string `json:"type"`
	YourTurn bool   `json:"yourTurn"`
}

type BattleEndMessage struct {
	Type   string `json:"type"`
	Winner string `json:"winner"`
	RoomID string `json:"roomId"`
}

// BattleRewardMessage carries the server signature the winner submits on
// chain to claim the reward.
type BattleRewardMessage struct {
	Type      string `json:"type"`
	RoomID    string `json:"roomId"`
	Amount    string `json:"amount"`
	Signature string `json:"signature"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
