package assemble

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spaolacci/murmur3"

	"github.com/raidmeter/raidmeter/pkg/types"
)

// Gem raw values map onto a 1..10 level through fixed per-tier tables.
// A value outside its table resolves to level 0, which leaves the skill
// untouched.
var (
	damageGemLevelsTier3 = map[int32]int32{
		300: 1, 600: 2, 900: 3, 1200: 4, 1500: 5,
		1800: 6, 2100: 7, 2400: 8, 3000: 9, 4000: 10,
	}
	damageGemLevelsTier4 = map[int32]int32{
		800: 1, 1200: 2, 1600: 3, 2000: 4, 2400: 5,
		2800: 6, 3200: 7, 3600: 8, 4000: 9, 4400: 10,
	}
	cooldownGemLevelsTier3 = map[int32]int32{
		200: 1, 400: 2, 600: 3, 800: 4, 1000: 5,
		1200: 6, 1400: 7, 1600: 8, 1800: 9, 2000: 10,
	}
	cooldownGemLevelsTier4 = map[int32]int32{
		600: 1, 800: 2, 1000: 3, 1200: 4, 1400: 5,
		1600: 6, 1800: 7, 2000: 8, 2200: 9, 2400: 10,
	}
	supportGemLevels = map[int32]int32{
		100: 1, 200: 2, 300: 3, 400: 4, 500: 5,
		600: 6, 700: 7, 800: 8, 900: 9, 1000: 10,
	}
)

func damageGemLevel(tier, value int32) int32 {
	if tier >= 4 {
		return damageGemLevelsTier4[value]
	}
	return damageGemLevelsTier3[value]
}

func cooldownGemLevel(tier, value int32) int32 {
	if tier >= 4 {
		return cooldownGemLevelsTier4[value]
	}
	return cooldownGemLevelsTier3[value]
}

// overlayGems writes equipped gem levels onto the matching skills of a
// player's breakdown. Damage and cooldown gems target their socketed
// skill directly; support identity and brand gems carry their own level
// table but land on the socketed skill the same way.
func overlayGems(skills map[uint32]*types.Skill, gems []types.GemData) {
	for _, gem := range gems {
		skill, ok := skills[gem.SkillID]
		if !ok {
			continue
		}
		switch gem.GemType {
		case types.GemTypeDamage:
			if level := damageGemLevel(gem.Tier, gem.Value); level > 0 {
				skill.GemDamage = level
			}
		case types.GemTypeCooldown:
			if level := cooldownGemLevel(gem.Tier, gem.Value); level > 0 {
				skill.GemCooldown = level
			}
		case types.GemTypeSupportIdentity, types.GemTypeSupportBrand:
			if level := supportGemLevels[gem.Value]; level > 0 {
				skill.GemDamage = level
			}
		}
	}
}

// classSpecEngravings maps each class's identity engravings to the spec
// they imply. Resolution only trusts the table when exactly one of the
// player's engravings appears in it.
var classSpecEngravings = map[string]map[string]string{
	"Berserker": {"Mayhem": "Mayhem", "Berserker's Technique": "Berserker Technique"},
	"Paladin": {"Judgment": "Judgment", "Blessed Aura": "Blessed Aura"},
	"Gunlancer": {"Combat Readiness": "Combat Readiness", "Lone Knight": "Lone Knight"},
	"Destroyer": {"Gravity Training": "Gravity Training", "Rage Hammer": "Rage Hammer"},
	"Slayer": {"Punisher": "Punisher", "Predator": "Predator"},
	"Arcanist": {"Order of the Emperor": "Order of the Emperor", "Grace of the Empress": "Empress's Grace"},
	"Summoner": {"Master Summoner": "Master Summoner", "Communication Overflow": "Communication Overflow"},
	"Bard": {"True Courage": "True Courage", "Desperate Salvation": "Desperate Salvation"},
	"Sorceress": {"Igniter": "Igniter", "Reflux": "Reflux"},
	"Wardancer": {"Esoteric Skill Enhancement": "Esoteric Skill Enhancement", "First Intention": "First Intention"},
	"Scrapper": {"Ultimate Skill: Taijutsu": "Taijutsu", "Shock Training": "Shock Training"},
	"Soulfist": {"Energy Overflow": "Energy Overflow", "Robust Spirit": "Robust Spirit"},
	"Glaivier": {"Pinnacle": "Pinnacle", "Control": "Control"},
	"Striker": {"Esoteric Flurry": "Esoteric Flurry", "Deathblow": "Deathblow"},
	"Breaker": {"Brawl King Storm": "Brawl King Storm", "Asura's Path": "Asura's Path"},
	"Deathblade": {"Remaining Energy": "Remaining Energy", "Surge": "Surge"},
	"Shadowhunter": {"Demonic Impulse": "Demonic Impulse", "Perfect Suppression": "Perfect Suppression"},
	"Reaper": {"Lunar Voice": "Lunar Voice", "Hunger": "Hunger"},
	"Souleater": {"Night's Edge": "Night's Edge", "Full Moon Harvester": "Full Moon Harvester"},
	"Sharpshooter": {"Loyal Companion": "Loyal Companion", "Death Strike": "Death Strike"},
	"Deadeye": {"Enhanced Weapon": "Enhanced Weapon", "Pistoleer": "Pistoleer"},
	"Artillerist": {"Barrage Enhancement": "Barrage", "Firepower Enhancement": "Firepower Enhancement"},
	"Machinist": {"Evolutionary Legacy": "Evolutionary Legacy", "Arthetinean Skill": "Arthetinean Skill"},
	"Gunslinger": {"Peacemaker": "Peacemaker", "Time to Hunt": "Time to Hunt"},
	"Artist": {"Full Bloom": "Full Bloom", "Recurrence": "Recurrence"},
	"Aeromancer": {"Wind Fury": "Wind Fury", "Drizzle": "Drizzle"},
	"Wildsoul": {"Phantom Beast Awakening": "Phantom Beast Awakening", "Fullmoon Incarnate": "Fullmoon Incarnate"},
}

// arkPassiveSpecNodes maps the first enlightenment node of each spec
// tree to the spec name. A player with an active ark-passive build
// always has exactly one of these invested.
var arkPassiveSpecNodes = map[uint32]string{
	2160000: "Berserker Technique",
	2160010: "Mayhem",
	2170000: "Judgment",
	2170010: "Blessed Aura",
	2180000: "Rage Hammer",
	2180010: "Gravity Training",
	2190000: "Combat Readiness",
	2190010: "Lone Knight",
	2200000: "Punisher",
	2200010: "Predator",
	2210000: "Empress's Grace",
	2210010: "Order of the Emperor",
	2220000: "Master Summoner",
	2220010: "Communication Overflow",
	2230000: "True Courage",
	2230010: "Desperate Salvation",
	2240000: "Igniter",
	2240010: "Reflux",
	2250000: "Esoteric Skill Enhancement",
	2250010: "First Intention",
	2260000: "Taijutsu",
	2260010: "Shock Training",
	2270000: "Energy Overflow",
	2270010: "Robust Spirit",
	2280000: "Pinnacle",
	2280010: "Control",
	2290000: "Esoteric Flurry",
	2290010: "Deathblow",
	2300000: "Brawl King Storm",
	2300010: "Asura's Path",
	2310000: "Remaining Energy",
	2310010: "Surge",
	2320000: "Demonic Impulse",
	2320010: "Perfect Suppression",
	2330000: "Lunar Voice",
	2330010: "Hunger",
	2340000: "Night's Edge",
	2340010: "Full Moon Harvester",
	2350000: "Loyal Companion",
	2350010: "Death Strike",
	2360000: "Enhanced Weapon",
	2360010: "Pistoleer",
	2370000: "Barrage",
	2370010: "Firepower Enhancement",
	2380000: "Evolutionary Legacy",
	2380010: "Arthetinean Skill",
	2390000: "Peacemaker",
	2390010: "Time to Hunt",
	2400000: "Full Bloom",
	2400010: "Recurrence",
	2410000: "Wind Fury",
	2410010: "Drizzle",
	2420000: "Phantom Beast Awakening",
	2420010: "Fullmoon Incarnate",
}

const unknownSpec = "Unknown"

// resolveSpec determines a player's playstyle variant when the capture
// process could not. An ark-passive enlightenment node is authoritative;
// otherwise a single unambiguous class engraving decides. Anything else
// stays unknown.
func resolveSpec(entity *types.Entity) string {
	if entity.Spec != "" && entity.Spec != unknownSpec {
		return entity.Spec
	}

	if entity.ArkPassiveActive != nil && *entity.ArkPassiveActive && entity.ArkPassiveData != nil {
		for _, node := range entity.ArkPassiveData.Enlightenment {
			if spec, ok := arkPassiveSpecNodes[node.ID]; ok {
				return spec
			}
		}
	}

	table := classSpecEngravings[entity.Class]
	var matched string
	for _, engraving := range entity.EngravingData {
		spec, ok := table[engraving]
		if !ok {
			continue
		}
		if matched != "" && matched != spec {
			return unknownSpec
		}
		matched = spec
	}
	if matched != "" {
		return matched
	}
	return unknownSpec
}

// gearFingerprint derives a stable hash of a player's gear snapshot for
// change detection across encounters. Gems are ordered before hashing so
// the fingerprint does not depend on snapshot ordering.
func gearFingerprint(info types.PlayerStats) string {
	gems := make([]types.GemData, len(info.Gems))
	copy(gems, info.Gems)
	sort.Slice(gems, func(i, j int) bool {
		if gems[i].SkillID != gems[j].SkillID {
			return gems[i].SkillID < gems[j].SkillID
		}
		return gems[i].GemType < gems[j].GemType
	})

	var b strings.Builder
	for _, g := range gems {
		fmt.Fprintf(&b, "%d:%d:%d:%d;", g.Tier, g.SkillID, g.GemType, g.Value)
	}
	engravings := make([]string, len(info.Engravings))
	copy(engravings, info.Engravings)
	sort.Strings(engravings)
	b.WriteString(strings.Join(engravings, ";"))

	h1, h2 := murmur3.Sum128([]byte(b.String()))
	return fmt.Sprintf("%016x%016x", h1, h2)
}

// applyPlayerInfo overlays a player's gear snapshot onto the entity:
// gem levels on skills, engraving list, ark-passive data, gear hash,
// and spec resolution. A missing snapshot still resolves the spec from
// whatever the entity already carries.
func applyPlayerInfo(entity *types.Entity, info *types.PlayerStats) {
	if info != nil {
		overlayGems(entity.Skills, info.Gems)
		if len(entity.EngravingData) == 0 {
			entity.EngravingData = info.Engravings
		}
		if entity.ArkPassiveData == nil {
			entity.ArkPassiveData = info.ArkPassive
		}
		if entity.GearHash == "" {
			if info.GearHash != "" {
				entity.GearHash = info.GearHash
			} else if len(info.Gems) > 0 || len(info.Engravings) > 0 {
				entity.GearHash = gearFingerprint(*info)
			}
		}
	}
	entity.Spec = resolveSpec(entity)
}
