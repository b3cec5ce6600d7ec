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

// PostRepository handles database operations for posts, their vote ledger and bookmarks
type PostRepository struct {
	db *pgxpool.Pool
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{db: db}
}

// selectPosts builds the shared projection of posts with the author summary and the
// viewer's vote and bookmark state
func (r *PostRepository) selectPosts(viewer models.ActorRef) squirrel.SelectBuilder {
	// bookmarks belong to users only
	savedBy := int64(0)
	if viewer.Kind == models.ActorUser {
		savedBy = viewer.ID
	}

	b := psql.Select(
		"p.id", "p.author_id", "p.content", "p.category", "p.upvotes", "p.downvotes",
		"p.comments_count", "p.is_active", "p.is_pinned", "p.is_edited", "p.created_at", "p.updated_at",
	).
		Columns("COALESCE(au.name, '')", "COALESCE(au.avatar_url, '')").
		Column(viewerVoteColumn(postVoteTarget, "p"), string(viewer.Kind), viewer.ID).
		Column("EXISTS (SELECT 1 FROM post_saves ps WHERE ps.post_id = p.id AND ps.user_id = ?)", savedBy).
		From("posts p").
		LeftJoin("users au ON au.id = p.author_id")
	return b
}

func scanPost(row rowScanner) (*models.Post, error) {
	var p models.Post
	var vote int16
	err := row.Scan(
		&p.ID, &p.AuthorID, &p.Content, &p.Category, &p.Upvotes, &p.Downvotes,
		&p.CommentsCount, &p.IsActive, &p.IsPinned, &p.IsEdited, &p.CreatedAt, &p.UpdatedAt,
		&p.Author.Name, &p.Author.AvatarURL,
		&vote, &p.IsSaved,
	)
	if err != nil {
		return nil, err
	}
	p.Author.Kind = models.ActorUser
	p.Author.ID = p.AuthorID
	p.ViewerState = viewerStateOf(vote)
	return &p, nil
}

// Create inserts a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (author_id, content, category)
		VALUES ($1, $2, $3)
		RETURNING id, is_active, created_at, updated_at`

	err := r.db.QueryRow(ctx, query, post.AuthorID, post.Content, post.Category).
		Scan(&post.ID, &post.IsActive, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating post: %w", err)
	}
	return nil
}

// GetByID retrieves an active post as seen by viewer
func (r *PostRepository) GetByID(ctx context.Context, id int64, viewer models.ActorRef) (*models.Post, error) {
	query, args, err := r.selectPosts(viewer).
		Where(squirrel.Eq{"p.id": id, "p.is_active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	post, err := scanPost(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFound(err, "get post")
	}
	return post, nil
}

// List returns a page of the feed: pinned posts first, then newest
func (r *PostRepository) List(ctx context.Context, filter models.PostFilter, viewer models.ActorRef) ([]*models.Post, int64, error) {
	where := squirrel.And{squirrel.Eq{"p.is_active": true}}
	if filter.Category != "" {
		where = append(where, squirrel.Eq{"p.category": filter.Category})
	}
	if filter.AuthorID != nil {
		where = append(where, squirrel.Eq{"p.author_id": *filter.AuthorID})
	}

	total, err := r.count(ctx, psql.Select("COUNT(*)").From("posts p").Where(where))
	if err != nil {
		return nil, 0, err
	}

	b := r.selectPosts(viewer).
		Where(where).
		OrderBy("p.is_pinned DESC", "p.created_at DESC", "p.id DESC").
		Limit(uint64(filter.Limit)).
		Offset(filter.Offset)

	posts, err := r.query(ctx, b)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// ListSaved returns the posts userID bookmarked, most recently saved first
func (r *PostRepository) ListSaved(ctx context.Context, userID int64, offset uint64, limit int) ([]*models.Post, int64, error) {
	where := squirrel.And{squirrel.Eq{"p.is_active": true, "sv.user_id": userID}}

	total, err := r.count(ctx, psql.Select("COUNT(*)").
		From("posts p").
		Join("post_saves sv ON sv.post_id = p.id").
		Where(where))
	if err != nil {
		return nil, 0, err
	}

	b := r.selectPosts(models.UserRef(userID)).
		Join("post_saves sv ON sv.post_id = p.id").
		Where(where).
		OrderBy("sv.created_at DESC", "p.id DESC").
		Limit(uint64(limit)).
		Offset(offset)

	posts, err := r.query(ctx, b)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *PostRepository) count(ctx context.Context, b squirrel.SelectBuilder) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("error counting posts: %w", err)
	}
	return total, nil
}

func (r *PostRepository) query(ctx context.Context, b squirrel.SelectBuilder) ([]*models.Post, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	posts := make([]*models.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}
	return posts, nil
}

// UpdateContent replaces the content of an active post and marks it edited
func (r *PostRepository) UpdateContent(ctx context.Context, id int64, content string) error {
	query := `UPDATE posts SET content = $2, is_edited = TRUE, updated_at = NOW() WHERE id = $1 AND is_active = TRUE`

	tag, err := r.db.Exec(ctx, query, id, content)
	if err != nil {
		return fmt.Errorf("error updating post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(pgx.ErrNoRows, "update post")
	}
	return nil
}

// SoftDelete deactivates a post
func (r *PostRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `UPDATE posts SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active = TRUE`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("error deleting post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(pgx.ErrNoRows, "delete post")
	}
	return nil
}

// Vote toggles voter's vote on a post
func (r *PostRepository) Vote(ctx context.Context, postID int64, voter models.ActorRef, dir models.VoteDirection) (*models.VoteOutcome, error) {
	var outcome *models.VoteOutcome
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		outcome, err = applyVote(ctx, tx, postVoteTarget, postID, voter, dir)
		return err
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// ToggleSave bookmarks the post for userID, or removes the bookmark if present
func (r *PostRepository) ToggleSave(ctx context.Context, postID, userID int64) (bool, error) {
	var saved bool
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM post_saves WHERE post_id = $1 AND user_id = $2`, postID, userID)
		if err != nil {
			return fmt.Errorf("remove bookmark: %w", err)
		}
		if tag.RowsAffected() > 0 {
			saved = false
			return nil
		}

		if _, err := tx.Exec(ctx, `INSERT INTO post_saves (post_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, postID, userID); err != nil {
			return fmt.Errorf("add bookmark: %w", err)
		}
		saved = true
		return nil
	})
	return saved, err
}

// TogglePin flips the pinned flag of an active post
func (r *PostRepository) TogglePin(ctx context.Context, id int64) (bool, error) {
	query := `UPDATE posts SET is_pinned = NOT is_pinned, updated_at = NOW() WHERE id = $1 AND is_active = TRUE RETURNING is_pinned`

	var pinned bool
	if err := r.db.QueryRow(ctx, query, id).Scan(&pinned); err != nil {
		return false, notFound(err, "toggle pin")
	}
	return pinned, nil
}

// RecountComments recomputes comments_count from the active comments of the post
func (r *PostRepository) RecountComments(ctx context.Context, id int64) (int, error) {
	query := `
		UPDATE posts p
		SET comments_count = (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id AND c.is_active = TRUE),
		    updated_at = NOW()
		WHERE p.id = $1
		RETURNING comments_count`

	var count int
	if err := r.db.QueryRow(ctx, query, id).Scan(&count); err != nil {
		return 0, notFound(err, "recount comments")
	}
	return count, nil
}
