// services/player_service.go
package services

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/wfunc/battleserver/network"
	"github.com/wfunc/battleserver/session"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// PlayerService 处理玩家注册:生成/复用 playerId，绑定钱包与队伍，
// 并维护会话管理器里的玩家索引。重复注册直接覆盖旧条目。
type PlayerService struct {
	sessions *session.Manager
	rng      *rand.Rand
	rngMutex sync.Mutex
}

func NewPlayerService(sessions *session.Manager) *PlayerService {
	return &PlayerService{
		sessions: sessions,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Register binds the request's identity to the session and returns the
// player id, generating one when the client did not supply it.
func (s *PlayerService) Register(sess *session.Session, req *network.RegisterRequest) string {
	playerID := req.PlayerID
	if playerID == "" {
		playerID = s.generateID()
	}

	sess.Register(playerID, req.WalletAddress, req.Party)
	s.sessions.IndexPlayer(playerID, sess)
	return playerID
}

// generateID 生成形如 player_<毫秒时间戳>_<6位随机> 的标识
func (s *PlayerService) generateID() string {
	s.rngMutex.Lock()
	defer s.rngMutex.Unlock()

	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = idAlphabet[s.rng.Intn(len(idAlphabet))]
	}
	return fmt.Sprintf("player_%d_%s", time.Now().UnixMilli(), suffix)
}
