package querybuilder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSelectBuilder(t *testing.T) {
	t.Parallel()

	query, args, err := Select("id", "name").
		From("leagues").
		Where(Eq("is_open", true), ILike("name", "%spurs%"), IsNull("deleted_at")).
		OrderBy("name", "id").
		Limit(20).
		ToSQL()
	require.NoError(t, err)
	require.Equal(t, "SELECT id, name FROM leagues WHERE is_open = $1 AND name ILIKE $2 AND deleted_at IS NULL ORDER BY name, id LIMIT 20", query)
	require.Equal(t, []any{true, "%spurs%"}, args)
}

func TestSelectBuilder_InAndExpr(t *testing.T) {
	t.Parallel()

	query, args, err := Select("*").
		From("fixtures").
		Where(In("round", []any{4, 5}), Expr("(kickoff_at IS NULL OR kickoff_at >= ?)", "2026-08-01")).
		Suffix("FOR UPDATE").
		ToSQL()
	require.NoError(t, err)
	require.Equal(t, "SELECT * FROM fixtures WHERE round IN ($1, $2) AND (kickoff_at IS NULL OR kickoff_at >= $3) FOR UPDATE", query)
	require.Equal(t, []any{4, 5, "2026-08-01"}, args)
}

func TestSelectBuilder_EmptyInMatchesNothing(t *testing.T) {
	t.Parallel()

	query, args, err := Select("id").From("games").Where(In("user_id", nil), Gte("round", 3)).ToSQL()
	require.NoError(t, err)
	require.Equal(t, "SELECT id FROM games WHERE 1=0 AND round >= $1", query)
	require.Equal(t, []any{3}, args)
}

func TestInsertBuilder_OnConflict(t *testing.T) {
	t.Parallel()

	query, args, err := InsertInto("league_week_winners").
		Columns("league_id", "fixture_round", "user_id").
		Values("l1", 7, "u1").
		Values("l1", 7, "u2").
		Suffix("ON CONFLICT DO NOTHING").
		ToSQL()
	require.NoError(t, err)
	require.Equal(t, "INSERT INTO league_week_winners (league_id, fixture_round, user_id) VALUES ($1, $2, $3), ($4, $5, $6) ON CONFLICT DO NOTHING", query)
	require.Len(t, args, 6)
}

func TestInsertBuilder_RowWidthMismatch(t *testing.T) {
	t.Parallel()

	_, _, err := InsertInto("t").Columns("a", "b").Values(1).ToSQL()
	require.Error(t, err)
}

func TestUpdateBuilder(t *testing.T) {
	t.Parallel()

	query, args, err := Update("fixtures").
		Set("home_score", 2).
		SetExpr("updated_at", "NOW()").
		SetExpr("round", "COALESCE(?, round)", 9).
		Where(Eq("id", "f1")).
		ToSQL()
	require.NoError(t, err)
	require.Equal(t, "UPDATE fixtures SET home_score = $1, updated_at = NOW(), round = COALESCE($2, round) WHERE id = $3", query)
	require.Equal(t, []any{2, 9, "f1"}, args)
}

func TestDeleteBuilder(t *testing.T) {
	t.Parallel()

	query, args, err := DeleteFrom("league_memberships").Where(Eq("league_id", "l1"), Eq("user_id", "u1")).ToSQL()
	require.NoError(t, err)
	require.Equal(t, "DELETE FROM league_memberships WHERE league_id = $1 AND user_id = $2", query)
	require.Equal(t, []any{"l1", "u1"}, args)

	_, _, err = DeleteFrom("league_memberships").ToSQL()
	require.Error(t, err)
}

func TestInsertModel(t *testing.T) {
	t.Parallel()

	type row struct {
		ID        string    `db:"id"`
		Name      string    `db:"name"`
		CreatedAt time.Time `db:"created_at"`
		Ignored   string    `db:"-"`
		internal  string    `db:"internal"`
	}
	ts := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	query, args, err := InsertModel("leagues", row{ID: "l1", Name: "Office", CreatedAt: ts, internal: "x"}, "ON CONFLICT (id) DO NOTHING")
	require.NoError(t, err)
	require.Equal(t, "INSERT INTO leagues (id, name, created_at) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING", query)
	require.Equal(t, []any{"l1", "Office", ts}, args)

	_, _, err = InsertModel("leagues", (*row)(nil), "")
	require.Error(t, err)
}
