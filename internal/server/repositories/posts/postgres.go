package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/scribblenest/internal/common"
	"github.com/dmitrijs2005/scribblenest/internal/dbx"
	"github.com/dmitrijs2005/scribblenest/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const postColumns = `id::text, user_id::text, content, likes, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	post := &models.Post{}
	var likes dbx.StringList
	if err := row.Scan(&post.ID, &post.UserID, &post.Content, &likes, &post.CreatedAt, &post.UpdatedAt); err != nil {
		return nil, err
	}
	post.Likes = []string(likes)
	return post, nil
}

func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	if !dbx.ValidUUID(post.UserID) {
		return nil, common.ErrorNotFound
	}

	query :=
		`INSERT INTO posts (user_id, content, likes)
		 VALUES ($1, $2, $3)
		 RETURNING id::text, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, post.UserID, post.Content, dbx.StringList(post.Likes)).
		Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if post.Likes == nil {
		post.Likes = []string{}
	}
	return post, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	if !dbx.ValidUUID(id) {
		return nil, common.ErrorNotFound
	}
	return r.one(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (*models.Post, error) {
	if !dbx.ValidUUID(id) {
		return nil, common.ErrorNotFound
	}
	return r.one(ctx, `DELETE FROM posts WHERE id = $1 RETURNING `+postColumns, id)
}

func (r *PostgresRepository) one(ctx context.Context, query, id string) (*models.Post, error) {
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return post, nil
}

func (r *PostgresRepository) UpdateContent(ctx context.Context, id, content string) error {
	if !dbx.ValidUUID(id) {
		return common.ErrorNotFound
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE posts SET content = $2, updated_at = now() WHERE id = $1`, id, content)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ToggleLike(ctx context.Context, id, userID string) (bool, error) {
	if !dbx.ValidUUID(id) {
		return false, common.ErrorNotFound
	}

	query :=
		`UPDATE posts
		 SET likes = CASE WHEN likes ? $2 THEN likes - $2::text ELSE likes || jsonb_build_array($2::text) END
		 WHERE id = $1
		 RETURNING likes ? $2`

	var liked bool
	if err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&liked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, common.ErrorNotFound
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	return liked, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, userID string) ([]*models.Post, error) {
	if !dbx.ValidUUID(userID) {
		return []*models.Post{}, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	valid := make(dbx.StringList, 0, len(ids))
	for _, id := range ids {
		if dbx.ValidUUID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []string{}, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id::text FROM posts WHERE id::text IN (SELECT jsonb_array_elements_text($1::jsonb))`, valid)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
