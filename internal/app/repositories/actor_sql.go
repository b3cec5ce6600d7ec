package repositories

import (
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/alumnet/internal/pkg/apperrors"
)

// psql is the statement builder shared by all repositories
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// rowScanner is implemented by pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// actorJoin resolves the display fields of an actor stored as a kind/id column pair.
// Both principal tables are left-joined and exactly one of them can match.
type actorJoin struct {
	alias   string
	kindCol string
	idCol   string
}

func newActorJoin(alias, kindCol, idCol string) actorJoin {
	return actorJoin{alias: alias, kindCol: kindCol, idCol: idCol}
}

func (j actorJoin) userJoin() string {
	return fmt.Sprintf("users %[1]s_u ON %[2]s = 'user' AND %[1]s_u.id = %[3]s", j.alias, j.kindCol, j.idCol)
}

func (j actorJoin) adminJoin() string {
	return fmt.Sprintf("admins %[1]s_a ON %[2]s = 'admin' AND %[1]s_a.id = %[3]s", j.alias, j.kindCol, j.idCol)
}

// columns returns kind, id, name and avatar select expressions in scan order
func (j actorJoin) columns() []string {
	return []string{
		j.kindCol,
		j.idCol,
		fmt.Sprintf("COALESCE(%[1]s_u.name, %[1]s_a.name, '')", j.alias),
		fmt.Sprintf("COALESCE(%[1]s_u.avatar_url, %[1]s_a.avatar_url, '')", j.alias),
	}
}

// apply adds both joins to a select builder
func (j actorJoin) apply(b squirrel.SelectBuilder) squirrel.SelectBuilder {
	return b.LeftJoin(j.userJoin()).LeftJoin(j.adminJoin())
}

// sqlJoins renders both joins for hand-written queries
func (j actorJoin) sqlJoins() string {
	return "LEFT JOIN " + j.userJoin() + "\n\t\tLEFT JOIN " + j.adminJoin()
}

// notFound maps pgx.ErrNoRows to apperrors.ErrResourceNotFound and wraps anything else
func notFound(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrResourceNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
