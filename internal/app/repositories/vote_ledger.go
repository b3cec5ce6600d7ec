package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yigit/alumnet/internal/app/models"
)

// voteTarget names the counter table and ledger table of a votable entity
type voteTarget struct {
	entity string
	ledger string
	fk     string
}

var (
	postVoteTarget    = voteTarget{entity: "posts", ledger: "post_votes", fk: "post_id"}
	commentVoteTarget = voteTarget{entity: "comments", ledger: "comment_votes", fk: "comment_id"}
)

// applyVote toggles voter's vote on the entity inside tx. The entity row is locked first,
// so concurrent toggles on the same entity serialize and the ledger and the counters
// never drift apart.
func applyVote(ctx context.Context, tx pgx.Tx, t voteTarget, id int64, voter models.ActorRef, dir models.VoteDirection) (*models.VoteOutcome, error) {
	lock := fmt.Sprintf(`SELECT id FROM %s WHERE id = $1 AND is_active = TRUE FOR UPDATE`, t.entity)
	var lockedID int64
	if err := tx.QueryRow(ctx, lock, id).Scan(&lockedID); err != nil {
		return nil, notFound(err, "lock vote target")
	}

	current := fmt.Sprintf(`SELECT value FROM %s WHERE %s = $1 AND voter_kind = $2 AND voter_id = $3`, t.ledger, t.fk)
	var stored int16
	err := tx.QueryRow(ctx, current, id, string(voter.Kind), voter.ID).Scan(&stored)
	hasVote := err == nil
	existing := models.VoteDirection(stored)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("read vote ledger: %w", err)
	}

	var upDelta, downDelta int
	bump := func(d models.VoteDirection, n int) {
		if d == models.VoteUp {
			upDelta += n
		} else {
			downDelta += n
		}
	}

	outcome := &models.VoteOutcome{}
	switch {
	case hasVote && existing == dir:
		// same vote again removes it
		del := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND voter_kind = $2 AND voter_id = $3`, t.ledger, t.fk)
		if _, err := tx.Exec(ctx, del, id, string(voter.Kind), voter.ID); err != nil {
			return nil, fmt.Errorf("remove vote: %w", err)
		}
		bump(dir, -1)
	case hasVote:
		flip := fmt.Sprintf(`UPDATE %s SET value = $4, created_at = NOW() WHERE %s = $1 AND voter_kind = $2 AND voter_id = $3`, t.ledger, t.fk)
		if _, err := tx.Exec(ctx, flip, id, string(voter.Kind), voter.ID, int16(dir)); err != nil {
			return nil, fmt.Errorf("switch vote: %w", err)
		}
		bump(existing, -1)
		bump(dir, 1)
		outcome.Added = true
	default:
		ins := fmt.Sprintf(`INSERT INTO %s (%s, voter_kind, voter_id, value) VALUES ($1, $2, $3, $4)`, t.ledger, t.fk)
		if _, err := tx.Exec(ctx, ins, id, string(voter.Kind), voter.ID, int16(dir)); err != nil {
			return nil, fmt.Errorf("add vote: %w", err)
		}
		bump(dir, 1)
		outcome.Added = true
	}

	counters := fmt.Sprintf(`
		UPDATE %s
		SET upvotes = GREATEST(upvotes + $2, 0), downvotes = GREATEST(downvotes + $3, 0)
		WHERE id = $1
		RETURNING upvotes, downvotes`, t.entity)
	if err := tx.QueryRow(ctx, counters, id, upDelta, downDelta).Scan(&outcome.Upvotes, &outcome.Downvotes); err != nil {
		return nil, fmt.Errorf("update vote counters: %w", err)
	}

	if outcome.Added {
		outcome.HasUpvoted = dir == models.VoteUp
		outcome.HasDownvoted = dir == models.VoteDown
	}
	return outcome, nil
}

// viewerVoteColumn selects the viewer's ledger value (1, -1 or 0) for the row aliased as alias
func viewerVoteColumn(t voteTarget, alias string) string {
	return fmt.Sprintf("COALESCE((SELECT vl.value FROM %s vl WHERE vl.%s = %s.id AND vl.voter_kind = ? AND vl.voter_id = ?), 0)", t.ledger, t.fk, alias)
}

func viewerStateOf(value int16) models.ViewerState {
	return models.ViewerState{
		HasUpvoted:   value == int16(models.VoteUp),
		HasDownvoted: value == int16(models.VoteDown),
	}
}
