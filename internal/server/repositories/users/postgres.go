package users

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

const userColumns = `id::text, username, email, name, age, password_hash, profile_picture, post_ids, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var posts dbx.StringList
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Name, &user.Age,
		&user.PasswordHash, &user.ProfilePicture, &posts, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	user.Posts = []string(posts)
	return user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (username, email, name, age, password_hash, profile_picture, post_ids)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id::text, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.Name, user.Age, user.PasswordHash, user.ProfilePicture,
		dbx.StringList(user.Posts)).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrDuplicateUser
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if user.Posts == nil {
		user.Posts = []string{}
	}
	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if !dbx.ValidUUID(id) {
		return nil, common.ErrorNotFound
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) SetProfilePicture(ctx context.Context, id, filename string) error {
	return r.update(ctx, `UPDATE users SET profile_picture = $2 WHERE id = $1`, id, filename)
}

func (r *PostgresRepository) AddPost(ctx context.Context, id, postID string) error {
	query :=
		`UPDATE users
		 SET post_ids = CASE WHEN post_ids ? $2 THEN post_ids ELSE post_ids || jsonb_build_array($2::text) END
		 WHERE id = $1`
	return r.update(ctx, query, id, postID)
}

func (r *PostgresRepository) RemovePost(ctx context.Context, id, postID string) error {
	return r.update(ctx, `UPDATE users SET post_ids = post_ids - $2::text WHERE id = $1`, id, postID)
}

func (r *PostgresRepository) update(ctx context.Context, query, id, arg string) error {
	if !dbx.ValidUUID(id) {
		return common.ErrorNotFound
	}

	res, err := r.db.ExecContext(ctx, query, id, arg)
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

func (r *PostgresRepository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
