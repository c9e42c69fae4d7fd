package file_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowbridge/flowbridge/pkg/models"
	"github.com/flowbridge/flowbridge/pkg/persistence/file"
)

func TestUserRepository_GetByEmailCaseInsensitive(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())
	repo := store.UserRepository()

	user := &models.User{
		ID:    uuid.New().String(),
		Email: "Admin@Flowbridge.Local",
		Role:  models.UserRoleOwner,
	}
	require.NoError(t, repo.Save(t.Context(), user))

	loaded, err := repo.GetByEmail(t.Context(), "admin@flowbridge.local")
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, user.ID, loaded.ID)
}

func TestUserRepository_GetByEmailMissingIsNilNil(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())

	loaded, err := store.UserRepository().GetByEmail(t.Context(), "nobody@example.com")

	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestUserRepository_ListByRole(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())
	repo := store.UserRepository()

	owner := &models.User{ID: uuid.New().String(), Email: "owner@example.com", Role: models.UserRoleOwner}
	member := &models.User{ID: uuid.New().String(), Email: "member@example.com", Role: models.UserRoleMember}

	require.NoError(t, repo.Save(t.Context(), owner))
	require.NoError(t, repo.Save(t.Context(), member))

	owners, err := repo.ListByRole(t.Context(), models.UserRoleOwner)
	require.NoError(t, err)

	require.Len(t, owners, 1)
	assert.Equal(t, owner.ID, owners[0].ID)
}

func TestProjectRepository_GetPersonalByOwner(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())
	repo := store.ProjectRepository()

	ownerID := uuid.New().String()
	personal := &models.Project{
		ID:      uuid.New().String(),
		Name:    "owner@example.com",
		Type:    models.ProjectTypePersonal,
		OwnerID: ownerID,
	}
	team := &models.Project{
		ID:      uuid.New().String(),
		Name:    "Shared",
		Type:    models.ProjectTypeTeam,
		OwnerID: ownerID,
	}

	require.NoError(t, repo.Save(t.Context(), personal))
	require.NoError(t, repo.Save(t.Context(), team))

	loaded, err := repo.GetPersonalByOwner(t.Context(), ownerID)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, personal.ID, loaded.ID)
}

func TestProjectRepository_GetPersonalByOwnerMissingIsNilNil(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())

	loaded, err := store.ProjectRepository().GetPersonalByOwner(t.Context(), "nobody")

	require.NoError(t, err)
	assert.Nil(t, loaded)
}
