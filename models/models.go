// models/models.go
package models

import "encoding/json"

// Element 技能属性
type Element int

const (
	ElementFire Element = iota
	ElementWater
	ElementGrass
	ElementWind
	ElementEarth
)

func (e Element) String() string {
	switch e {
	case ElementFire:
		return "fire"
	case ElementWater:
		return "water"
	case ElementGrass:
		return "grass"
	case ElementWind:
		return "wind"
	case ElementEarth:
		return "earth"
	}
	return "unknown"
}

// Skill 技能
type Skill struct {
	Name     string  `json:"name"`
	Element  Element `json:"element"`
	Power    float64 `json:"power"`
	Accuracy float64 `json:"accuracy"`
}

// CreatureState 战斗单位的当前状态。不变量: 0 <= HP <= MaxHP
type CreatureState struct {
	SpeciesName string  `json:"speciesName"`
	Level       int     `json:"level"`
	HP          int     `json:"hp"`
	MaxHP       int     `json:"maxHp"`
	Attack      float64 `json:"attack"`
	Defense     float64 `json:"defense"`
	Speed       int     `json:"speed"`
	Skills      []Skill `json:"skills"`
}

// Action 玩家在自己回合提交的操作。SkillIndex 为指针以区分“缺失”和“0”
type Action struct {
	SkillIndex *int `json:"skillIndex"`
}

// ParseAction decodes an action payload. A nil return means the payload was
// not a JSON object; validation of the index itself is the rules engine's job.
func ParseAction(raw json.RawMessage) *Action {
	if len(raw) == 0 {
		return nil
	}
	var a Action
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil
	}
	return &a
}

// DamageResult 规则引擎的一次伤害结算结果
type DamageResult struct {
	Damage        int     `json:"damage"`
	Effectiveness float64 `json:"effectiveness"`
	Hit           bool    `json:"hit"`
}

// MatchResult 匹配队列产出的一对玩家，立即被用来创建战斗房间
type MatchResult struct {
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
}
