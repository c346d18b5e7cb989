package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-todo-api/internal/model"
)

const todoColumns = `id, owner_id, title, description, completed, created_at, updated_at`

// TodoRepository scopes every statement by owner_id in SQL, so a row owned by
// someone else is never loaded.
type TodoRepository struct {
	pool *pgxpool.Pool
}

func NewTodoRepository(pool *pgxpool.Pool) *TodoRepository {
	return &TodoRepository{pool: pool}
}

func scanTodo(row pgx.Row) (model.Todo, error) {
	var t model.Todo
	err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *TodoRepository) ListByOwner(ctx context.Context, ownerID string, titleFilter string) ([]model.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE owner_id = $1`
	args := []any{ownerID}
	if titleFilter != "" {
		query += ` AND strpos(lower(title), lower($2)) > 0`
		args = append(args, titleFilter)
	}
	query += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	todos := make([]model.Todo, 0)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

func (r *TodoRepository) GetByIDAndOwner(ctx context.Context, id int64, ownerID string) (model.Todo, error) {
	t, err := scanTodo(r.pool.QueryRow(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE id = $1 AND owner_id = $2`, id, ownerID))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Todo{}, model.ErrTodoNotFound
	}
	if err != nil {
		return model.Todo{}, fmt.Errorf("get todo: %w", err)
	}
	return t, nil
}

func (r *TodoRepository) Create(ctx context.Context, t model.Todo) (model.Todo, error) {
	created, err := scanTodo(r.pool.QueryRow(ctx,
		`INSERT INTO todos (owner_id, title, description, completed, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+todoColumns,
		t.OwnerID, t.Title, t.Description, t.Completed, t.CreatedAt, t.UpdatedAt))
	if err != nil {
		return model.Todo{}, fmt.Errorf("create todo: %w", err)
	}
	return created, nil
}

func (r *TodoRepository) Update(ctx context.Context, t model.Todo) (model.Todo, error) {
	updated, err := scanTodo(r.pool.QueryRow(ctx,
		`UPDATE todos SET title = $3, description = $4, completed = $5, updated_at = $6
		 WHERE id = $1 AND owner_id = $2
		 RETURNING `+todoColumns,
		t.ID, t.OwnerID, t.Title, t.Description, t.Completed, t.UpdatedAt))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Todo{}, model.ErrTodoNotFound
	}
	if err != nil {
		return model.Todo{}, fmt.Errorf("update todo: %w", err)
	}
	return updated, nil
}

func (r *TodoRepository) Delete(ctx context.Context, id int64, ownerID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTodoNotFound
	}
	return nil
}
