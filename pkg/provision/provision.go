// Package provision guarantees a usable admin identity in local-mode
// deployments without interactive signup.
package provision

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/flowbridge/flowbridge/pkg/models"
	"github.com/flowbridge/flowbridge/pkg/persistence"
	"github.com/google/uuid"
)

// Provisioner idempotently ensures the local admin user and its personal
// project exist.
type Provisioner struct {
	users    persistence.UserRepository
	projects persistence.ProjectRepository
	logger   *slog.Logger

	localMode       bool
	adminEmail      string
	defaultPassword string
}

// NewProvisioner creates a provisioner. localMode gates all writes; when it
// is off, EnsureLocalAdmin never touches the store.
func NewProvisioner(
	users persistence.UserRepository,
	projects persistence.ProjectRepository,
	logger *slog.Logger,
	localMode bool,
	adminEmail string,
	defaultPassword string,
) *Provisioner {
	return &Provisioner{
		users:           users,
		projects:        projects,
		logger:          logger,
		localMode:       localMode,
		adminEmail:      adminEmail,
		defaultPassword: defaultPassword,
	}
}

// EnsureLocalAdmin converges the store to hold exactly one usable admin
// identity. In order: an existing user with the configured email is
// normalized, else an existing owner-role user is repurposed to the
// configured email, else a new owner is created from scratch. Errors are
// returned to the caller; startup decides whether to continue without the
// admin.
func (p *Provisioner) EnsureLocalAdmin(ctx context.Context) (*models.User, error) {
	if !p.localMode {
		return nil, nil
	}

	existing, err := p.users.GetByEmail(ctx, p.adminEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to look up admin user: %w", err)
	}

	if existing != nil {
		return p.normalize(ctx, existing)
	}

	owners, err := p.users.ListByRole(ctx, models.UserRoleOwner)
	if err != nil {
		return nil, fmt.Errorf("failed to list owner users: %w", err)
	}

	if len(owners) > 0 {
		return p.repurpose(ctx, owners[0])
	}

	return p.create(ctx)
}

// normalize fixes the role of an existing admin-email user and makes sure it
// owns a personal project. Other fields are left alone.
func (p *Provisioner) normalize(ctx context.Context, user *models.User) (*models.User, error) {
	if user.Role != models.UserRoleOwner {
		user.Role = models.UserRoleOwner
		user.UpdatedAt = time.Now().UTC()

		if err := p.users.Save(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to normalize admin role: %w", err)
		}

		p.logger.InfoContext(ctx, "Normalized admin user role", "email", user.Email)
	}

	if err := p.ensurePersonalProject(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// repurpose renames an existing owner to the configured email, preserving its
// other fields. A default password is set only if the user has none.
func (p *Provisioner) repurpose(ctx context.Context, owner *models.User) (*models.User, error) {
	owner.Email = p.adminEmail

	if owner.Password == "" {
		owner.Password = p.defaultPassword
	}

	owner.UpdatedAt = time.Now().UTC()

	if err := p.users.Save(ctx, owner); err != nil {
		return nil, fmt.Errorf("failed to repurpose owner user: %w", err)
	}

	p.logger.InfoContext(ctx, "Repurposed existing owner as local admin", "user_id", owner.ID, "email", owner.Email)

	if err := p.ensurePersonalProject(ctx, owner); err != nil {
		return nil, err
	}

	return owner, nil
}

func (p *Provisioner) create(ctx context.Context) (*models.User, error) {
	now := time.Now().UTC()

	admin := &models.User{
		ID:        uuid.New().String(),
		Email:     p.adminEmail,
		FirstName: "Local",
		LastName:  "Admin",
		Role:      models.UserRoleOwner,
		Password:  p.defaultPassword,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := p.users.Save(ctx, admin); err != nil {
		return nil, fmt.Errorf("failed to create admin user: %w", err)
	}

	p.logger.InfoContext(ctx, "Created local admin user", "user_id", admin.ID, "email", admin.Email)

	if err := p.ensurePersonalProject(ctx, admin); err != nil {
		return nil, err
	}

	return admin, nil
}

func (p *Provisioner) ensurePersonalProject(ctx context.Context, user *models.User) error {
	project, err := p.projects.GetPersonalByOwner(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to look up personal project: %w", err)
	}

	if project != nil {
		return nil
	}

	now := time.Now().UTC()

	project = &models.Project{
		ID:        uuid.New().String(),
		Name:      user.Email,
		Type:      models.ProjectTypePersonal,
		OwnerID:   user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := p.projects.Save(ctx, project); err != nil {
		return fmt.Errorf("failed to create personal project: %w", err)
	}

	p.logger.InfoContext(ctx, "Created personal project", "project_id", project.ID, "owner", user.Email)

	return nil
}
