package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go-todo-api/internal/model"
	"go-todo-api/internal/util"
)

const todoColumns = `id, owner_id, title, description, completed, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

type TodoRepository struct {
	db *sql.DB
}

func NewTodoRepository(db *sql.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

func scanTodo(row rowScanner) (model.Todo, error) {
	var (
		t                    model.Todo
		description          sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &description, &t.Completed, &createdAt, &updatedAt); err != nil {
		return model.Todo{}, err
	}

	t.Description = nullableString(description)

	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Todo{}, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.Todo{}, err
	}
	return t, nil
}

// ListByOwner matches titleFilter case-insensitively through the casefold
// function registered by database.OpenSQLite.
func (r *TodoRepository) ListByOwner(ctx context.Context, ownerID string, titleFilter string) ([]model.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE owner_id = ?`
	args := []any{ownerID}
	if titleFilter != "" {
		query += ` AND instr(casefold(title), ?) > 0`
		args = append(args, util.FoldCase(titleFilter))
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
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
	t, err := scanTodo(r.db.QueryRowContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE id = ? AND owner_id = ?`, id, ownerID))

	if errors.Is(err, sql.ErrNoRows) {
		return model.Todo{}, model.ErrTodoNotFound
	}
	if err != nil {
		return model.Todo{}, fmt.Errorf("get todo: %w", err)
	}
	return t, nil
}

func (r *TodoRepository) Create(ctx context.Context, t model.Todo) (model.Todo, error) {
	created, err := scanTodo(r.db.QueryRowContext(ctx,
		`INSERT INTO todos (owner_id, title, description, completed, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING `+todoColumns,
		t.OwnerID, t.Title, nullableArg(t.Description), boolArg(t.Completed), formatTime(t.CreatedAt), formatTime(t.UpdatedAt)))
	if err != nil {
		return model.Todo{}, fmt.Errorf("create todo: %w", err)
	}
	return created, nil
}

func (r *TodoRepository) Update(ctx context.Context, t model.Todo) (model.Todo, error) {
	updated, err := scanTodo(r.db.QueryRowContext(ctx,
		`UPDATE todos SET title = ?, description = ?, completed = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ?
		 RETURNING `+todoColumns,
		t.Title, nullableArg(t.Description), boolArg(t.Completed), formatTime(t.UpdatedAt), t.ID, t.OwnerID))

	if errors.Is(err, sql.ErrNoRows) {
		return model.Todo{}, model.ErrTodoNotFound
	}
	if err != nil {
		return model.Todo{}, fmt.Errorf("update todo: %w", err)
	}
	return updated, nil
}

func (r *TodoRepository) Delete(ctx context.Context, id int64, ownerID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if affected == 0 {
		return model.ErrTodoNotFound
	}
	return nil
}
