// battle/validator.go
package battle

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/wfunc/battleserver/models"
)

// typeChart 属性克制表 (attacker element -> defender element -> multiplier)
var typeChart = map[models.Element]map[models.Element]float64{
	models.ElementFire:  {models.ElementFire: 1.0, models.ElementWater: 0.67, models.ElementGrass: 1.5, models.ElementWind: 1.0, models.ElementEarth: 1.0},
	models.ElementWater: {models.ElementFire: 1.5, models.ElementWater: 1.0, models.ElementGrass: 0.67, models.ElementWind: 1.0, models.ElementEarth: 1.0},
	models.ElementGrass: {models.ElementFire: 0.67, models.ElementWater: 1.5, models.ElementGrass: 1.0, models.ElementWind: 1.0, models.ElementEarth: 1.0},
	models.ElementWind:  {models.ElementFire: 1.0, models.ElementWater: 1.0, models.ElementGrass: 1.0, models.ElementWind: 1.0, models.ElementEarth: 1.5},
	models.ElementEarth: {models.ElementFire: 1.0, models.ElementWater: 1.0, models.ElementGrass: 1.0, models.ElementWind: 0.67, models.ElementEarth: 1.0},
}

// Validator 负责服务端的动作校验和伤害结算。
// 随机源可注入，测试时传入固定种子即可复现命中和浮动。
type Validator struct {
	rng      *rand.Rand
	rngMutex sync.Mutex // 一个 Validator 会被多个房间共用
}

// NewValidator creates a validator. A nil rng falls back to a time-seeded source.
func NewValidator(rng *rand.Rand) *Validator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Validator{rng: rng}
}

// ValidateAction reports whether the action carries a skill index inside the
// caster's skill list. Nothing else is checked.
func (v *Validator) ValidateAction(action *models.Action, creature *models.CreatureState) bool {
	if action == nil || action.SkillIndex == nil {
		return false
	}
	idx := *action.SkillIndex
	return idx >= 0 && idx < len(creature.Skills)
}

// CalculateDamage resolves one attack:
// hit roll -> base = power * atk/def -> effectiveness -> variance [0.85,1.15]
// -> floor(base * eff * variance * 0.5), minimum 1 on a hit.
func (v *Validator) CalculateDamage(attacker, defender *models.CreatureState, skill models.Skill) models.DamageResult {
	hit := v.roll() <= skill.Accuracy
	if !hit {
		return models.DamageResult{Damage: 0, Effectiveness: 1.0, Hit: false}
	}

	base := skill.Power * (attacker.Attack / defender.Defense)
	effectiveness := Effectiveness(skill.Element, models.ElementFire) // TODO: need defender element
	variance := 0.85 + v.roll()*0.3
	damage := int(math.Floor(base * effectiveness * variance * 0.5))
	if damage < 1 {
		damage = 1
	}

	return models.DamageResult{Damage: damage, Effectiveness: effectiveness, Hit: true}
}

func (v *Validator) roll() float64 {
	v.rngMutex.Lock()
	defer v.rngMutex.Unlock()
	return v.rng.Float64()
}

// Effectiveness looks up the type multiplier; unknown pairs are neutral.
func Effectiveness(atk, def models.Element) float64 {
	if row, ok := typeChart[atk]; ok {
		if mult, ok := row[def]; ok {
			return mult
		}
	}
	return 1.0
}
