package postgresql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/flowbridge/flowbridge/pkg/models"
	"github.com/flowbridge/flowbridge/pkg/persistence"
)

// UserRepository handles user persistence in PostgreSQL.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, COALESCE(first_name, ''), COALESCE(last_name, ''), role, COALESCE(password, ''), created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var user models.User

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.Password,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (ur *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	return ur.query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
}

func (ur *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := ur.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, &persistence.UserError{Op: "GetByEmail", Email: email, Err: err}
	}

	return user, nil
}

func (ur *UserRepository) ListByRole(ctx context.Context, role models.UserRole) ([]*models.User, error) {
	return ur.query(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY created_at`, string(role))
}

func (ur *UserRepository) query(ctx context.Context, q string, args ...any) ([]*models.User, error) {
	rows, err := ur.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, &persistence.UserError{Op: "query", Err: err}
	}
	defer rows.Close()

	users := make([]*models.User, 0)

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, &persistence.UserError{Op: "query", Err: err}
		}

		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, &persistence.UserError{Op: "query", Err: err}
	}

	return users, nil
}

func (ur *UserRepository) Save(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return &persistence.UserError{Op: "Save", Email: user.Email, Err: errors.New("user ID is required")}
	}

	_, err := ur.db.ExecContext(ctx, `
		INSERT INTO users (id, email, first_name, last_name, role, password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			role = EXCLUDED.role,
			password = EXCLUDED.password,
			updated_at = EXCLUDED.updated_at
	`,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		string(user.Role),
		user.Password,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return &persistence.UserError{Op: "Save", Email: user.Email, Err: err}
	}

	return nil
}

// ProjectRepository handles project persistence in PostgreSQL.
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (pr *ProjectRepository) GetPersonalByOwner(ctx context.Context, ownerID string) (*models.Project, error) {
	row := pr.db.QueryRowContext(ctx, `
		SELECT id, name, type, owner_id, created_at, updated_at
		FROM projects
		WHERE owner_id = $1 AND type = 'personal'
	`, ownerID)

	var project models.Project

	err := row.Scan(
		&project.ID,
		&project.Name,
		&project.Type,
		&project.OwnerID,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return &project, nil
}

func (pr *ProjectRepository) Save(ctx context.Context, project *models.Project) error {
	if project.ID == "" {
		return errors.New("project ID is required")
	}

	_, err := pr.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, type, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			owner_id = EXCLUDED.owner_id,
			updated_at = EXCLUDED.updated_at
	`,
		project.ID,
		project.Name,
		string(project.Type),
		project.OwnerID,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return nil
}
