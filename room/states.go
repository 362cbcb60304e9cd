// room/states.go
package room

import (
	"encoding/json"

	"github.com/wfunc/battleserver/state"
)

// 对战房间的三个状态。created 只在构造期间存在，
// finished 为吸收态:任何动作和断线都不再产生效果。

type createdState struct {
	state.StateBase
	room *BattleRoom
}

func newCreatedState(r *BattleRoom) *createdState {
	return &createdState{StateBase: state.StateBase{ID: "created"}, room: r}
}

type activeState struct {
	state.StateBase
	room *BattleRoom
}

func newActiveState(r *BattleRoom) *activeState {
	return &activeState{StateBase: state.StateBase{ID: "active"}, room: r}
}

// HandleAction resolves an attack for the combatant whose turn it is.
func (s *activeState) HandleAction(player state.Player, actionData json.RawMessage) error {
	combatant, ok := player.(*Combatant)
	if !ok {
		return nil
	}
	return s.room.resolveAction(combatant, actionData)
}

type finishedState struct {
	state.StateBase
	room *BattleRoom
}

func newFinishedState(r *BattleRoom) *finishedState {
	return &finishedState{StateBase: state.StateBase{ID: "finished"}, room: r}
}
