package user

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/spbuhub/internal/apperrors"
	"github.com/nkiryanov/spbuhub/internal/models"
	"github.com/nkiryanov/spbuhub/internal/repository"
	"github.com/nkiryanov/spbuhub/internal/repository/postgres"
	"github.com/nkiryanov/spbuhub/internal/testutil"
)

func TestUser(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Helper function to create UserService within transaction
	inTx := func(t *testing.T, fn func(s *UserService, owner models.User, stranger models.User)) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)

			create := func(storage repository.Storage, email string) models.User {
				u, err := storage.User().CreateUser(t.Context(), models.User{Name: email, Email: email, HashedPassword: "hash"})
				require.NoError(t, err, "creating user should not fail")
				return u
			}

			fn(NewService(storage), create(storage, "owner@example.com"), create(storage, "stranger@example.com"))
		})
	}

	asUser := func(u models.User) models.Identity { return models.Identity{UserID: u.ID, Role: u.Role} }
	asAdmin := models.Identity{UserID: uuid.New(), Role: models.RoleAdmin}

	t.Run("GetUser and ListUsers", func(t *testing.T) {
		inTx(t, func(s *UserService, owner models.User, stranger models.User) {
			got, err := s.GetUser(t.Context(), owner.ID)
			require.NoError(t, err)
			require.Equal(t, owner, got)

			_, err = s.GetUser(t.Context(), uuid.New())
			require.ErrorIs(t, err, apperrors.ErrUserNotFound)

			users, err := s.ListUsers(t.Context())
			require.NoError(t, err)
			require.Len(t, users, 2)
		})
	})

	t.Run("UpdateUser", func(t *testing.T) {
		profile := models.UserProfile{Name: "Renamed", Email: "renamed@example.com"}

		t.Run("self ok", func(t *testing.T) {
			inTx(t, func(s *UserService, owner models.User, _ models.User) {
				updated, err := s.UpdateUser(t.Context(), asUser(owner), owner.ID, profile)

				require.NoError(t, err)
				require.Equal(t, "Renamed", updated.Name)
			})
		})

		t.Run("admin ok", func(t *testing.T) {
			inTx(t, func(s *UserService, owner models.User, _ models.User) {
				_, err := s.UpdateUser(t.Context(), asAdmin, owner.ID, profile)

				require.NoError(t, err)
			})
		})

		t.Run("someone else forbidden", func(t *testing.T) {
			inTx(t, func(s *UserService, owner models.User, stranger models.User) {
				_, err := s.UpdateUser(t.Context(), asUser(stranger), owner.ID, profile)

				require.ErrorIs(t, err, apperrors.ErrForbidden)
			})
		})

		t.Run("email of other user", func(t *testing.T) {
			inTx(t, func(s *UserService, owner models.User, stranger models.User) {
				_, err := s.UpdateUser(t.Context(), asUser(owner), owner.ID, models.UserProfile{Email: stranger.Email})

				require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
			})
		})
	})

	t.Run("DeleteUser", func(t *testing.T) {
		inTx(t, func(s *UserService, owner models.User, stranger models.User) {
			err := s.DeleteUser(t.Context(), asUser(stranger), owner.ID)
			require.ErrorIs(t, err, apperrors.ErrNotAccountOwner)

			err = s.DeleteUser(t.Context(), asUser(owner), owner.ID)
			require.NoError(t, err)

			_, err = s.GetUser(t.Context(), owner.ID)
			require.ErrorIs(t, err, apperrors.ErrUserNotFound)

			err = s.DeleteUser(t.Context(), asAdmin, owner.ID)
			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("SetRole", func(t *testing.T) {
		inTx(t, func(s *UserService, owner models.User, _ models.User) {
			updated, err := s.SetRole(t.Context(), owner.ID, models.RoleOperator)
			require.NoError(t, err)
			require.Equal(t, models.RoleOperator, updated.Role)

			_, err = s.SetRole(t.Context(), owner.ID, "superuser")
			require.ErrorIs(t, err, apperrors.ErrInvalidRole)

			_, err = s.SetRole(t.Context(), uuid.New(), models.RoleAdmin)
			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})
}
