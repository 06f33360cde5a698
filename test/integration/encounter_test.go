package integration

import (
	"context"
	"fmt"
	"testing"

	"github.com/raidmeter/raidmeter/internal/app"
	"github.com/raidmeter/raidmeter/internal/assemble"
	"github.com/raidmeter/raidmeter/internal/codec"
	"github.com/raidmeter/raidmeter/internal/config"
	"github.com/raidmeter/raidmeter/pkg/types"
)

const (
	fightStartMS = int64(1_700_000_000_000)
	fightLenMS   = int64(600_000) // ten minutes
)

// raidSnapshot builds a full eight-player raid against a single boss:
// two parties of four, a cleared hard-mode fight, the local player on
// top of the damage chart.
func raidSnapshot() assemble.RawEncounter {
	entities := map[string]*types.Entity{
		"Narok the Butcher": {
			ID:     900,
			NpcID:  485800,
			Name:   "Narok the Butcher",
			Kind:   types.KindBoss,
			MaxHP:  1_000_000,
			IsDead: true,
			DamageStats: types.DamageStats{
				DamageDealt: 50_000,
				DamageTaken: 1_140_000,
			},
		},
	}

	var partyOne, partyTwo []string
	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("Raider%d", i+1)
		dealt := int64(120_000)
		if i == 0 {
			name = "Arcturus"
			dealt = 300_000
		}
		entities[name] = &types.Entity{
			ID:          uint64(100 + i),
			CharacterID: uint64(5000 + i),
			Name:        name,
			Kind:        types.KindPlayer,
			ClassID:     uint32(102 + i),
			Class:       "Berserker",
			GearScore:   1620,
			MaxHP:       200_000,
			CurrentHP:   150_000,
			Skills: map[uint32]*types.Skill{},
			DamageStats: types.DamageStats{
				DamageDealt: dealt,
				DamageTaken: 9_000,
				DPS:         dealt / 600,
			},
		}
		if i < 4 {
			partyOne = append(partyOne, name)
		} else {
			partyTwo = append(partyTwo, name)
		}
	}

	damageLog := make(map[string][]types.DamagePoint)
	for name, e := range entities {
		if e.Kind != types.KindPlayer {
			continue
		}
		step := e.DamageStats.DamageDealt / 60
		for i := int64(0); i < 60; i++ {
			damageLog[name] = append(damageLog[name], types.DamagePoint{
				Time:   fightStartMS + i*10_000,
				Damage: step,
			})
		}
	}

	return assemble.RawEncounter{
		Encounter: types.Encounter{
			FightStart:       fightStartMS,
			LastCombatPacket: fightStartMS + fightLenMS,
			LocalPlayer:      "Arcturus",
			CurrentBossName:  "Narok the Butcher",
			Entities:         entities,
			DamageStats: types.EncounterDamageStats{
				TotalDamageDealt: 1_140_000,
				TopDamageDealt:   300_000,
				TotalDamageTaken: 72_000,
				TopDamageTaken:   9_000,
				MaxStagger:       10_000,
			},
		},
		DamageLog: damageLog,
		BossHPLog: map[string][]types.BossHPLog{
			"Narok the Butcher": {
				{Time: 0, HP: 1_000_000, P: 1},
				{Time: 300, HP: 500_000, P: 0.5},
				{Time: 600, HP: 0, P: 0},
			},
		},
		PartyInfo:      [][]string{partyOne, partyTwo},
		RaidClear:      true,
		RaidDifficulty: "Hard",
		Version:        "1.20.1",
		RdpsValid:      true,
	}
}

func startApp(t *testing.T) *app.App {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Uplink.Enabled = true
	cfg.Uplink.Storage = "local"

	a, err := app.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestRecordAndListEncounter(t *testing.T) {
	a := startApp(t)
	ctx := context.Background()

	records, err := assemble.Assemble(raidSnapshot())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if got := records.Encounter.DPS; got != 1_140_000/600 {
		t.Fatalf("encounter dps = %d, want %d", got, 1_140_000/600)
	}
	if got := records.Preview.MyDPS; got != 300_000/600 {
		t.Fatalf("local player dps = %d, want %d", got, 300_000/600)
	}

	id, err := a.Store().InsertEncounter(ctx, records.Encounter, records.Preview, records.Entities)
	if err != nil {
		t.Fatalf("InsertEncounter: %v", err)
	}
	if id <= 0 {
		t.Fatalf("encounter id = %d", id)
	}

	overview, err := a.Store().ListEncounters(ctx, 1, 10, "", types.SearchFilter{})
	if err != nil {
		t.Fatalf("ListEncounters: %v", err)
	}
	if overview.TotalEncounters != 1 || len(overview.Encounters) != 1 {
		t.Fatalf("overview = %d total, %d rows", overview.TotalEncounters, len(overview.Encounters))
	}

	row := overview.Encounters[0]
	if row.ID != id {
		t.Errorf("row id = %d, want %d", row.ID, id)
	}
	if row.BossName != "Narok the Butcher" {
		t.Errorf("boss = %q", row.BossName)
	}
	if row.Duration != fightLenMS {
		t.Errorf("duration = %d, want %d", row.Duration, fightLenMS)
	}
	if !row.Cleared {
		t.Error("encounter not marked cleared")
	}
	if row.LocalPlayer != "Arcturus" {
		t.Errorf("local player = %q", row.LocalPlayer)
	}
	if len(row.Classes) != 8 || len(row.Names) != 8 {
		t.Fatalf("player list = %d classes, %d names", len(row.Classes), len(row.Names))
	}
	if row.Names[0] != "Arcturus" {
		t.Errorf("top damage player = %q, want Arcturus", row.Names[0])
	}
}

func TestSearchAndFilterRoundTrip(t *testing.T) {
	a := startApp(t)
	ctx := context.Background()

	records, err := assemble.Assemble(raidSnapshot())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if _, err := a.Store().InsertEncounter(ctx, records.Encounter, records.Preview, records.Entities); err != nil {
		t.Fatalf("InsertEncounter: %v", err)
	}

	// Trigram search over the boss name, exercising the sync triggers.
	overview, err := a.Store().ListEncounters(ctx, 1, 10, "butcher", types.SearchFilter{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if overview.TotalEncounters != 1 {
		t.Fatalf("search hits = %d, want 1", overview.TotalEncounters)
	}

	overview, err = a.Store().ListEncounters(ctx, 1, 10, "", types.SearchFilter{
		Cleared:    true,
		Difficulty: "Hard",
		Bosses:     []string{"Narok the Butcher"},
	})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if overview.TotalEncounters != 1 {
		t.Fatalf("filter hits = %d, want 1", overview.TotalEncounters)
	}

	overview, err = a.Store().ListEncounters(ctx, 1, 10, "", types.SearchFilter{MinDuration: 601})
	if err != nil {
		t.Fatalf("duration filter: %v", err)
	}
	if overview.TotalEncounters != 0 {
		t.Fatalf("duration filter hits = %d, want 0", overview.TotalEncounters)
	}
}

func TestUplinkPushAfterPersist(t *testing.T) {
	a := startApp(t)
	ctx := context.Background()

	records, err := assemble.Assemble(raidSnapshot())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	id, err := a.Store().InsertEncounter(ctx, records.Encounter, records.Preview, records.Entities)
	if err != nil {
		t.Fatalf("InsertEncounter: %v", err)
	}

	payload, err := codec.Marshal(records.Preview)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	upstreamID, err := a.Uplink().Push(ctx, id, payload)
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if upstreamID == "" {
		t.Fatal("empty upstream id")
	}

	gotID, failed, err := a.Store().SyncStatus(ctx, id)
	if err != nil {
		t.Fatalf("SyncStatus: %v", err)
	}
	if failed || gotID != upstreamID {
		t.Fatalf("sync status = (%q, %v), want (%q, false)", gotID, failed, upstreamID)
	}
}

func TestDatabaseSurvivesRestart(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	ctx := context.Background()

	a, err := app.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	records, err := assemble.Assemble(raidSnapshot())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if _, err := a.Store().InsertEncounter(ctx, records.Encounter, records.Preview, records.Entities); err != nil {
		t.Fatalf("InsertEncounter: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reopening runs the migration again against the current schema;
	// the stored encounter must come through untouched.
	reopened, err := app.New(cfg)
	if err != nil {
		t.Fatalf("New after restart: %v", err)
	}
	if err := reopened.Start(ctx); err != nil {
		t.Fatalf("Start after restart: %v", err)
	}
	defer reopened.Close()

	overview, err := reopened.Store().ListEncounters(ctx, 1, 10, "", types.SearchFilter{})
	if err != nil {
		t.Fatalf("ListEncounters: %v", err)
	}
	if overview.TotalEncounters != 1 {
		t.Fatalf("encounters after restart = %d, want 1", overview.TotalEncounters)
	}
}
