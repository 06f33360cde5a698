package store

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"

	rerrors "github.com/raidmeter/raidmeter/internal/errors"
	"github.com/raidmeter/raidmeter/pkg/types"
)

// minSearchLength is the shortest search text that consults the trigram
// index; anything at or below this length scans the preview table alone.
const minSearchLength = 2

// ListEncounters returns one page of encounter previews matching the
// search text and filter, plus the unpaginated total count. Page numbers
// start at 1; anything lower reads as the first page.
func (s *Store) ListEncounters(
	ctx context.Context,
	page, pageSize int,
	search string,
	filter types.SearchFilter,
) (*types.EncountersOverview, error) {
	if page < 1 {
		page = 1
	}

	sortColumn, sortOrder, err := resolveSort(filter)
	if err != nil {
		return nil, err
	}

	base := sq.Select().From("encounter_preview e")
	base = applyFilters(base, search, filter)

	pageQuery, pageArgs, err := base.Columns(
		"e.id",
		"e.fight_start",
		"e.current_boss",
		"e.duration",
		"e.difficulty",
		"e.favorite",
		"e.cleared",
		"e.local_player",
		"e.my_dps",
		"e.players",
	).
		OrderBy("e." + sortColumn + " " + sortOrder).
		Limit(uint64(pageSize)).
		Offset(uint64((page - 1) * pageSize)).
		ToSql()
	if err != nil {
		return nil, rerrors.NewQueryError(rerrors.CodeBuildFailed, "build list query: "+err.Error())
	}

	rows, err := s.db.reads.QueryContext(ctx, pageQuery, pageArgs...)
	if err != nil {
		return nil, rerrors.Wrap(rerrors.ErrCategoryQuery, rerrors.CodeScanFailed, "query encounters", err)
	}
	defer rows.Close()

	var encounters []types.EncounterPreview
	for rows.Next() {
		preview, err := scanPreview(rows)
		if err != nil {
			return nil, rerrors.Wrap(rerrors.ErrCategoryQuery, rerrors.CodeScanFailed, "scan encounter row", err)
		}
		encounters = append(encounters, preview)
	}
	if err := rows.Err(); err != nil {
		return nil, rerrors.Wrap(rerrors.ErrCategoryQuery, rerrors.CodeScanFailed, "iterate encounter rows", err)
	}

	countQuery, countArgs, err := applyFilters(sq.Select("COUNT(*)").From("encounter_preview e"), search, filter).ToSql()
	if err != nil {
		return nil, rerrors.NewQueryError(rerrors.CodeBuildFailed, "build count query: "+err.Error())
	}

	var total int
	if err := s.db.reads.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, rerrors.Wrap(rerrors.ErrCategoryQuery, rerrors.CodeScanFailed, "count encounters", err)
	}

	return &types.EncountersOverview{
		Encounters:      encounters,
		TotalEncounters: total,
	}, nil
}

// applyFilters folds the search join and every active filter predicate,
// each carrying its own bound parameters, into the builder.
func applyFilters(b sq.SelectBuilder, search string, f types.SearchFilter) sq.SelectBuilder {
	if len(search) > minSearchLength {
		b = b.JoinClause("JOIN encounter_search ON encounter_search.rowid = e.id").
			Where("encounter_search MATCH ?", quoteSearch(search))
	}

	b = b.Where("e.duration > ?", f.MinDuration*1000)

	if len(f.Bosses) > 0 {
		b = b.Where(sq.Eq{"e.current_boss": f.Bosses})
	}
	if f.Cleared {
		b = b.Where("e.cleared = 1")
	}
	if f.Favorite {
		b = b.Where("e.favorite = 1")
	}
	if f.BossOnlyDamage {
		b = b.Where("e.boss_only_damage = 1")
	}
	if f.Difficulty != "" {
		b = b.Where(sq.Eq{"e.difficulty": f.Difficulty})
	}

	return b
}

// quoteSearch splits the search text on whitespace and quotes each token,
// stripping embedded quotes, so every token matches as an exact phrase.
func quoteSearch(search string) string {
	words := strings.Fields(search)
	quoted := make([]string, 0, len(words))
	for _, word := range words {
		quoted = append(quoted, `"`+strings.ReplaceAll(word, `"`, "")+`"`)
	}
	return strings.Join(quoted, " ")
}

// resolveSort validates the sort column and direction against the
// enumerated allow-list. An empty sort field defaults to fight_start.
func resolveSort(f types.SearchFilter) (string, string, error) {
	sort := f.Sort
	if sort == "" {
		sort = types.SortFightStart
	}
	if !sort.Valid() {
		return "", "", rerrors.NewQueryError(rerrors.CodeInvalidSort, "invalid sort column: "+string(sort))
	}

	order, err := f.Order.SQL()
	if err != nil {
		return "", "", rerrors.NewQueryError(rerrors.CodeInvalidSort, err.Error())
	}
	return string(sort), order, nil
}

// scanPreview maps one preview row, parsing the comma-joined player
// string back into parallel class and name lists.
func scanPreview(rows *sql.Rows) (types.EncounterPreview, error) {
	var p types.EncounterPreview
	var difficulty, localPlayer, players sql.NullString
	var cleared sql.NullBool
	var myDPS sql.NullInt64

	err := rows.Scan(
		&p.ID,
		&p.FightStart,
		&p.BossName,
		&p.Duration,
		&difficulty,
		&p.Favorite,
		&cleared,
		&localPlayer,
		&myDPS,
		&players,
	)
	if err != nil {
		return types.EncounterPreview{}, err
	}

	p.Difficulty = difficulty.String
	p.LocalPlayer = localPlayer.String
	p.Cleared = cleared.Bool
	p.MyDPS = myDPS.Int64
	p.Classes, p.Names = ParsePreviewPlayers(players.String)
	return p, nil
}

// ParsePreviewPlayers splits the persisted "classId:name" player string
// into parallel class-id and name lists. A malformed token maps to the
// sentinel unknown-class entry instead of failing the row.
func ParsePreviewPlayers(players string) ([]int32, []string) {
	tokens := strings.Split(players, ",")
	classes := make([]int32, 0, len(tokens))
	names := make([]string, 0, len(tokens))

	for _, token := range tokens {
		parts := strings.Split(token, ":")
		if len(parts) != 2 {
			classes = append(classes, types.UnknownClassID)
			names = append(names, "Unknown")
			continue
		}
		classID, err := strconv.ParseInt(parts[0], 10, 32)
		if err != nil {
			classID = types.UnknownClassID
		}
		classes = append(classes, int32(classID))
		names = append(names, parts[1])
	}
	return classes, names
}
