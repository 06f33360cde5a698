package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	rerrors "github.com/raidmeter/raidmeter/internal/errors"
	"github.com/raidmeter/raidmeter/internal/migrate"
	"github.com/raidmeter/raidmeter/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"), 0)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrate.New(db.Writes()).Run(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db)
}

func TestOpenReadPoolSize(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "pool.db"), 2)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if got := db.Reads().Stats().MaxOpenConnections; got != 2 {
		t.Errorf("read pool size = %d, want 2", got)
	}
	if got := db.Writes().Stats().MaxOpenConnections; got != 1 {
		t.Errorf("write pool size = %d, want 1", got)
	}
}

func TestOpenReadPoolSizeDefaulted(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "pool.db"), 0)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if got := db.Reads().Stats().MaxOpenConnections; got != defaultReadPoolSize {
		t.Errorf("read pool size = %d, want %d", got, defaultReadPoolSize)
	}
}

func testPreview(boss string, fightStart int64) PreviewRecord {
	cleared := true
	return PreviewRecord{
		FightStart:  fightStart,
		BossName:    boss,
		Duration:    600000,
		Players:     "102:Kadan,204:Azena",
		Difficulty:  "Hard",
		LocalPlayer: "Azena",
		MyDPS:       123456,
		Cleared:     &cleared,
	}
}

func testEntities() []EntityRecord {
	return []EntityRecord{
		{Name: "Kadan", Kind: "PLAYER", ClassID: 102, Class: "Berserker", DPS: 200000},
		{Name: "Azena", Kind: "PLAYER", ClassID: 204, Class: "Bard", DPS: 123456},
	}
}

func insertTestEncounter(t *testing.T, s *Store, boss string, fightStart int64) int64 {
	t.Helper()
	id, err := s.InsertEncounter(context.Background(),
		EncounterRecord{LastCombatPacket: fightStart + 600000, Version: 5},
		testPreview(boss, fightStart),
		testEntities(),
	)
	if err != nil {
		t.Fatalf("insert encounter: %v", err)
	}
	return id
}

func TestInsertAndList(t *testing.T) {
	s := openTestStore(t)
	id := insertTestEncounter(t, s, "Narok the Butcher", 1700000000000)

	overview, err := s.ListEncounters(context.Background(), 1, 10, "", types.SearchFilter{})
	if err != nil {
		t.Fatalf("list encounters: %v", err)
	}
	if overview.TotalEncounters != 1 || len(overview.Encounters) != 1 {
		t.Fatalf("overview = %d total, %d rows; want 1, 1",
			overview.TotalEncounters, len(overview.Encounters))
	}

	got := overview.Encounters[0]
	if got.ID != id {
		t.Errorf("id = %d, want %d", got.ID, id)
	}
	if got.BossName != "Narok the Butcher" {
		t.Errorf("boss = %q, want Narok the Butcher", got.BossName)
	}
	if !got.Cleared {
		t.Errorf("cleared = false, want true")
	}
	if got.MyDPS != 123456 {
		t.Errorf("my dps = %d, want 123456", got.MyDPS)
	}
	if !reflect.DeepEqual(got.Classes, []int32{102, 204}) {
		t.Errorf("classes = %v, want [102 204]", got.Classes)
	}
	if !reflect.DeepEqual(got.Names, []string{"Kadan", "Azena"}) {
		t.Errorf("names = %v, want [Kadan Azena]", got.Names)
	}
}

func TestInsertRollsBackOnConstraintViolation(t *testing.T) {
	s := openTestStore(t)

	entities := testEntities()
	entities = append(entities, entities[0]) // duplicate composite key

	_, err := s.InsertEncounter(context.Background(),
		EncounterRecord{LastCombatPacket: 1, Version: 5},
		testPreview("Valtan", 1700000000000),
		entities,
	)
	if err == nil {
		t.Fatalf("expected constraint violation")
	}
	want := rerrors.New(rerrors.ErrCategoryPersistence, rerrors.CodeConstraintViolation, "")
	if !errors.Is(err, want) {
		t.Fatalf("error = %v, want constraint violation", err)
	}

	// Nothing from the failed write may be visible.
	for _, table := range []string{"encounter", "encounter_preview", "entity"} {
		var n int
		if err := s.db.reads.QueryRow("SELECT count(*) FROM " + table).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != 0 {
			t.Errorf("%s has %d rows after rollback, want 0", table, n)
		}
	}
}

func TestListPagination(t *testing.T) {
	s := openTestStore(t)
	for i := int64(0); i < 5; i++ {
		insertTestEncounter(t, s, "Valtan", 1700000000000+i*1000)
	}

	page, err := s.ListEncounters(context.Background(), 2, 2, "", types.SearchFilter{})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if page.TotalEncounters != 5 {
		t.Errorf("total = %d, want 5", page.TotalEncounters)
	}
	if len(page.Encounters) != 2 {
		t.Fatalf("page size = %d, want 2", len(page.Encounters))
	}
	// Default order is fight_start descending, so page 2 holds the
	// third and fourth newest.
	if page.Encounters[0].FightStart != 1700000002000 {
		t.Errorf("first row fight start = %d, want 1700000002000", page.Encounters[0].FightStart)
	}
}

func TestListPageBelowOneReadsFirstPage(t *testing.T) {
	s := openTestStore(t)
	insertTestEncounter(t, s, "Valtan", 1700000000000)
	insertTestEncounter(t, s, "Valtan", 1700000001000)

	for _, page := range []int{0, -3} {
		overview, err := s.ListEncounters(context.Background(), page, 10, "", types.SearchFilter{})
		if err != nil {
			t.Fatalf("list page %d: %v", page, err)
		}
		if len(overview.Encounters) != 2 {
			t.Errorf("page %d rows = %d, want 2", page, len(overview.Encounters))
		}
	}
}

func TestListFullTextSearch(t *testing.T) {
	s := openTestStore(t)
	insertTestEncounter(t, s, "Narok the Butcher", 1700000000000)
	insertTestEncounter(t, s, "Valtan", 1700000001000)

	overview, err := s.ListEncounters(context.Background(), 1, 10, "narok", types.SearchFilter{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if overview.TotalEncounters != 1 {
		t.Fatalf("search total = %d, want 1", overview.TotalEncounters)
	}
	if overview.Encounters[0].BossName != "Narok the Butcher" {
		t.Errorf("search hit = %q, want Narok the Butcher", overview.Encounters[0].BossName)
	}

	// Player names are indexed too.
	overview, err = s.ListEncounters(context.Background(), 1, 10, "kadan", types.SearchFilter{})
	if err != nil {
		t.Fatalf("player search: %v", err)
	}
	if overview.TotalEncounters != 2 {
		t.Errorf("player search total = %d, want 2", overview.TotalEncounters)
	}

	// Embedded quotes are stripped, not interpreted.
	if _, err := s.ListEncounters(context.Background(), 1, 10, `nar"ok`, types.SearchFilter{}); err != nil {
		t.Errorf("quoted search should not error: %v", err)
	}
}

func TestListShortSearchSkipsIndex(t *testing.T) {
	s := openTestStore(t)
	insertTestEncounter(t, s, "Valtan", 1700000000000)

	// At or below the minimum length the index is not consulted and the
	// text does not filter anything.
	overview, err := s.ListEncounters(context.Background(), 1, 10, "xy", types.SearchFilter{})
	if err != nil {
		t.Fatalf("short search: %v", err)
	}
	if overview.TotalEncounters != 1 {
		t.Errorf("short search total = %d, want 1", overview.TotalEncounters)
	}
}

func TestListFilters(t *testing.T) {
	s := openTestStore(t)
	insertTestEncounter(t, s, "Valtan", 1700000000000)
	insertTestEncounter(t, s, "Vykas", 1700000001000)

	overview, err := s.ListEncounters(context.Background(), 1, 10, "",
		types.SearchFilter{Bosses: []string{"Vykas"}})
	if err != nil {
		t.Fatalf("boss filter: %v", err)
	}
	if overview.TotalEncounters != 1 || overview.Encounters[0].BossName != "Vykas" {
		t.Errorf("boss filter returned %d rows", overview.TotalEncounters)
	}

	overview, err = s.ListEncounters(context.Background(), 1, 10, "",
		types.SearchFilter{MinDuration: 700})
	if err != nil {
		t.Fatalf("duration filter: %v", err)
	}
	if overview.TotalEncounters != 0 {
		t.Errorf("duration floor of 700s should exclude 600s fights, got %d", overview.TotalEncounters)
	}

	overview, err = s.ListEncounters(context.Background(), 1, 10, "",
		types.SearchFilter{Difficulty: "Normal"})
	if err != nil {
		t.Fatalf("difficulty filter: %v", err)
	}
	if overview.TotalEncounters != 0 {
		t.Errorf("difficulty filter should exclude Hard fights, got %d", overview.TotalEncounters)
	}
}

func TestListRejectsUnknownSortColumn(t *testing.T) {
	s := openTestStore(t)

	_, err := s.ListEncounters(context.Background(), 1, 10, "",
		types.SearchFilter{Sort: "my_dps; DROP TABLE encounter"})
	if err == nil {
		t.Fatalf("expected sort validation error")
	}
	want := rerrors.New(rerrors.ErrCategoryQuery, rerrors.CodeInvalidSort, "")
	if !errors.Is(err, want) {
		t.Fatalf("error = %v, want invalid sort", err)
	}
}

func TestListSortByDPSAscending(t *testing.T) {
	s := openTestStore(t)
	for i, dps := range []int64{300, 100, 200} {
		cleared := true
		_, err := s.InsertEncounter(context.Background(),
			EncounterRecord{Version: 5},
			PreviewRecord{
				FightStart: 1700000000000 + int64(i),
				BossName:   "Valtan",
				Duration:   600000,
				MyDPS:      dps,
				Cleared:    &cleared,
			},
			nil,
		)
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	overview, err := s.ListEncounters(context.Background(), 1, 10, "",
		types.SearchFilter{Sort: types.SortMyDPS, Order: types.SortAscending})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var got []int64
	for _, e := range overview.Encounters {
		got = append(got, e.MyDPS)
	}
	if !reflect.DeepEqual(got, []int64{100, 200, 300}) {
		t.Errorf("dps order = %v, want ascending", got)
	}
}

func TestParsePreviewPlayers(t *testing.T) {
	cases := []struct {
		name        string
		in          string
		wantClasses []int32
		wantNames   []string
	}{
		{
			name:        "well formed",
			in:          "102:Kadan,204:Azena",
			wantClasses: []int32{102, 204},
			wantNames:   []string{"Kadan", "Azena"},
		},
		{
			name:        "malformed token",
			in:          "102:Kadan,garbage",
			wantClasses: []int32{102, types.UnknownClassID},
			wantNames:   []string{"Kadan", "Unknown"},
		},
		{
			name:        "non numeric class id",
			in:          "abc:Kadan",
			wantClasses: []int32{types.UnknownClassID},
			wantNames:   []string{"Kadan"},
		},
		{
			name:        "empty string",
			in:          "",
			wantClasses: []int32{types.UnknownClassID},
			wantNames:   []string{"Unknown"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			classes, names := ParsePreviewPlayers(tc.in)
			if !reflect.DeepEqual(classes, tc.wantClasses) {
				t.Errorf("classes = %v, want %v", classes, tc.wantClasses)
			}
			if !reflect.DeepEqual(names, tc.wantNames) {
				t.Errorf("names = %v, want %v", names, tc.wantNames)
			}
		})
	}
}

func TestSyncStatus(t *testing.T) {
	s := openTestStore(t)
	id := insertTestEncounter(t, s, "Valtan", 1700000000000)
	ctx := context.Background()

	upstream, failed, err := s.SyncStatus(ctx, id)
	if err != nil {
		t.Fatalf("status before sync: %v", err)
	}
	if upstream != "" || failed {
		t.Errorf("unsynced encounter reported %q/%v", upstream, failed)
	}

	if err := s.RecordSync(ctx, id, "", true); err != nil {
		t.Fatalf("record failed sync: %v", err)
	}
	if _, failed, _ = s.SyncStatus(ctx, id); !failed {
		t.Errorf("failed flag not recorded")
	}

	if err := s.RecordSync(ctx, id, "4be0643f-1d98-573b-97cd-ca98a65347dd", false); err != nil {
		t.Fatalf("record retried sync: %v", err)
	}
	upstream, failed, err = s.SyncStatus(ctx, id)
	if err != nil {
		t.Fatalf("status after retry: %v", err)
	}
	if upstream != "4be0643f-1d98-573b-97cd-ca98a65347dd" || failed {
		t.Errorf("retried sync = %q/%v, want upstream id and no failure", upstream, failed)
	}
}
