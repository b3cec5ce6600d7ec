package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/alumnet/internal/app/models"
	"github.com/yigit/alumnet/internal/db"
)

// CommentRepository handles database operations for comments and their vote ledger
type CommentRepository struct {
	db *pgxpool.Pool
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{db: db}
}

var commentAuthor = newActorJoin("ca", "c.author_kind", "c.author_id")

func (r *CommentRepository) selectComments(viewer models.ActorRef) squirrel.SelectBuilder {
	b := psql.Select(
		"c.id", "c.post_id", "c.parent_comment_id", "c.depth", "c.content", "c.upvotes", "c.downvotes",
		"c.is_active", "c.is_edited", "c.created_at", "c.updated_at",
	).
		Columns(commentAuthor.columns()...).
		Column("(SELECT COUNT(*) FROM comments rc WHERE rc.parent_comment_id = c.id AND rc.is_active = TRUE)").
		Column(viewerVoteColumn(commentVoteTarget, "c"), string(viewer.Kind), viewer.ID).
		From("comments c")
	return commentAuthor.apply(b)
}

func scanComment(row rowScanner) (*models.Comment, error) {
	var c models.Comment
	var kind string
	var vote int16
	err := row.Scan(
		&c.ID, &c.PostID, &c.ParentCommentID, &c.Depth, &c.Content, &c.Upvotes, &c.Downvotes,
		&c.IsActive, &c.IsEdited, &c.CreatedAt, &c.UpdatedAt,
		&kind, &c.Author.ID, &c.Author.Name, &c.Author.AvatarURL,
		&c.RepliesCount,
		&vote,
	)
	if err != nil {
		return nil, err
	}
	c.Author.Kind = models.ActorKind(kind)
	c.ViewerState = viewerStateOf(vote)
	return &c, nil
}

// CreateWithCount inserts the comment and increments the post's comments_count in
// one transaction. Replies count towards the post total as well.
func (r *CommentRepository) CreateWithCount(ctx context.Context, comment *models.Comment) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		query := `
			INSERT INTO comments (post_id, author_kind, author_id, parent_comment_id, depth, content)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, is_active, created_at, updated_at`

		err := tx.QueryRow(ctx, query,
			comment.PostID,
			string(comment.Author.Kind),
			comment.Author.ID,
			comment.ParentCommentID,
			comment.Depth,
			comment.Content,
		).Scan(&comment.ID, &comment.IsActive, &comment.CreatedAt, &comment.UpdatedAt)
		if err != nil {
			return fmt.Errorf("error creating comment: %w", err)
		}

		tag, err := tx.Exec(ctx,
			`UPDATE posts SET comments_count = comments_count + 1 WHERE id = $1 AND is_active = TRUE`,
			comment.PostID)
		if err != nil {
			return fmt.Errorf("error incrementing comments count: %w", err)
		}
		if tag.RowsAffected() == 0 {
			// the post was deleted between the existence check and the insert
			return notFound(pgx.ErrNoRows, "increment comments count")
		}
		return nil
	})
}

// GetByID retrieves an active comment as seen by viewer
func (r *CommentRepository) GetByID(ctx context.Context, id int64, viewer models.ActorRef) (*models.Comment, error) {
	query, args, err := r.selectComments(viewer).
		Where(squirrel.Eq{"c.id": id, "c.is_active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	comment, err := scanComment(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFound(err, "get comment")
	}
	return comment, nil
}

// ListTopLevel returns a page of the post's top-level comments
func (r *CommentRepository) ListTopLevel(ctx context.Context, postID int64, q models.CommentQuery, viewer models.ActorRef) ([]*models.Comment, int64, error) {
	where := squirrel.And{
		squirrel.Eq{"c.post_id": postID, "c.is_active": true},
		squirrel.Expr("c.parent_comment_id IS NULL"),
	}

	dir := "DESC"
	if q.Ascending {
		dir = "ASC"
	}
	var order []string
	if q.Sort == models.CommentSortTop {
		// ties go to the newest comment
		order = []string{"c.upvotes " + dir, "c.created_at DESC", "c.id DESC"}
	} else {
		order = []string{"c.created_at " + dir, "c.id " + dir}
	}

	return r.page(ctx, where, order, q.Offset, q.Limit, viewer)
}

// ListReplies returns a page of direct replies to parentID, oldest first
func (r *CommentRepository) ListReplies(ctx context.Context, parentID int64, offset uint64, limit int, viewer models.ActorRef) ([]*models.Comment, int64, error) {
	where := squirrel.And{squirrel.Eq{"c.parent_comment_id": parentID, "c.is_active": true}}
	return r.page(ctx, where, []string{"c.created_at ASC", "c.id ASC"}, offset, limit, viewer)
}

// ListByPost returns every active comment of the post, oldest first
func (r *CommentRepository) ListByPost(ctx context.Context, postID int64, viewer models.ActorRef) ([]*models.Comment, error) {
	b := r.selectComments(viewer).
		Where(squirrel.Eq{"c.post_id": postID, "c.is_active": true}).
		OrderBy("c.created_at ASC", "c.id ASC")
	return r.query(ctx, b)
}

func (r *CommentRepository) page(ctx context.Context, where squirrel.Sqlizer, order []string, offset uint64, limit int, viewer models.ActorRef) ([]*models.Comment, int64, error) {
	countSQL, countArgs, err := psql.Select("COUNT(*)").From("comments c").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting comments: %w", err)
	}

	b := r.selectComments(viewer).
		Where(where).
		OrderBy(order...).
		Limit(uint64(limit)).
		Offset(offset)

	comments, err := r.query(ctx, b)
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (r *CommentRepository) query(ctx context.Context, b squirrel.SelectBuilder) ([]*models.Comment, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	comments := make([]*models.Comment, 0)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}
	return comments, nil
}

// UpdateContent replaces the content of an active comment and marks it edited
func (r *CommentRepository) UpdateContent(ctx context.Context, id int64, content string) error {
	query := `UPDATE comments SET content = $2, is_edited = TRUE, updated_at = NOW() WHERE id = $1 AND is_active = TRUE`

	tag, err := r.db.Exec(ctx, query, id, content)
	if err != nil {
		return fmt.Errorf("error updating comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(pgx.ErrNoRows, "update comment")
	}
	return nil
}

// SoftDelete deactivates the comment. A top-level comment also decrements the post's
// comments_count, floored at zero, in the same transaction; replies leave it unchanged.
func (r *CommentRepository) SoftDelete(ctx context.Context, comment *models.Comment) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE comments SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active = TRUE`,
			comment.ID)
		if err != nil {
			return fmt.Errorf("error deleting comment: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return notFound(pgx.ErrNoRows, "delete comment")
		}

		if !comment.IsTopLevel() {
			return nil
		}
		if _, err := tx.Exec(ctx,
			`UPDATE posts SET comments_count = GREATEST(comments_count - 1, 0) WHERE id = $1`,
			comment.PostID); err != nil {
			return fmt.Errorf("error decrementing comments count: %w", err)
		}
		return nil
	})
}

// Vote toggles voter's vote on a comment
func (r *CommentRepository) Vote(ctx context.Context, commentID int64, voter models.ActorRef, dir models.VoteDirection) (*models.VoteOutcome, error) {
	var outcome *models.VoteOutcome
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		outcome, err = applyVote(ctx, tx, commentVoteTarget, commentID, voter, dir)
		return err
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}
