// battle/defaults.go
package battle

import "github.com/wfunc/battleserver/models"

// 缺省值与客户端提交字段缺失时的兜底一致
const (
	defaultSpecies = "Unknown"
	defaultLevel   = 5
	defaultHP      = 44
	defaultAttack  = 14
	defaultDefense = 8
	defaultSpeed   = 12
)

// NormalizeCreature fills in any missing field of a submitted creature with
// the default loadout. Zero values count as missing, matching the lenient
// client payloads this server has always accepted.
func NormalizeCreature(in models.CreatureState) models.CreatureState {
	out := in
	if out.SpeciesName == "" {
		out.SpeciesName = defaultSpecies
	}
	if out.Level == 0 {
		out.Level = defaultLevel
	}
	if out.HP == 0 {
		out.HP = defaultHP
	}
	if out.MaxHP == 0 {
		out.MaxHP = defaultHP
	}
	if out.Attack == 0 {
		out.Attack = defaultAttack
	}
	if out.Defense == 0 {
		out.Defense = defaultDefense
	}
	if out.Speed == 0 {
		out.Speed = defaultSpeed
	}
	if len(out.Skills) == 0 {
		out.Skills = []models.Skill{
			{Name: "Tackle", Element: models.ElementEarth, Power: 35, Accuracy: 1.0},
		}
	}
	return out
}

// FirstCreature picks the creature a combatant will fight with: the first
// entry of the submitted party, normalized. ok is false for an empty party.
func FirstCreature(party []models.CreatureState) (models.CreatureState, bool) {
	if len(party) == 0 {
		return models.CreatureState{}, false
	}
	return NormalizeCreature(party[0]), true
}
