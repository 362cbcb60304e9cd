// matchmaking/matchmaking.go
package matchmaking

import (
	"sync"
	"time"

	"github.com/wfunc/battleserver/models"
)

// entry 队列中的一个等待玩家
type entry struct {
	playerID string
	party    []models.CreatureState
	joinedAt time.Time
}

// Queue 先进先出匹配队列。不做任何实力/区服匹配，最早入队的两人直接配对。
// 所有方法都持锁，入队顺序即匹配顺序。
type Queue struct {
	entries []entry
	mutex   sync.Mutex
}

// NewQueue creates an empty matchmaking queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends the player at the tail. A player already waiting is left
// where they are; the duplicate join is silently discarded.
func (q *Queue) Enqueue(playerID string, party []models.CreatureState) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	for _, e := range q.entries {
		if e.playerID == playerID {
			return
		}
	}
	q.entries = append(q.entries, entry{
		playerID: playerID,
		party:    party,
		joinedAt: time.Now(),
	})
}

// Remove drops any entry for the player; absent players are a no-op.
func (q *Queue) Remove(playerID string) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	filtered := q.entries[:0]
	for _, e := range q.entries {
		if e.playerID != playerID {
			filtered = append(filtered, e)
		}
	}
	q.entries = filtered
}

// TryMatch pops the two oldest entries and pairs them. Player1 is the one
// that queued earlier. Returns nil if fewer than two players are waiting.
func (q *Queue) TryMatch() *models.MatchResult {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if len(q.entries) < 2 {
		return nil
	}

	p1 := q.entries[0]
	p2 := q.entries[1]
	q.entries = q.entries[2:]

	return &models.MatchResult{Player1: p1.playerID, Player2: p2.playerID}
}

// Size returns the current queue length, reported to joining clients as
// their queue position.
func (q *Queue) Size() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.entries)
}
