package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/spbuhub/internal/apperrors"
	"github.com/nkiryanov/spbuhub/internal/models"
	"github.com/nkiryanov/spbuhub/internal/numeric"
	"github.com/nkiryanov/spbuhub/internal/repository"
	"github.com/nkiryanov/spbuhub/internal/testutil"
)

func TestCatalog(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("Brand", func(t *testing.T) {
		inTx(t, pg.Pool, func(_ pgx.Tx, s repository.Storage) {
			brand, err := s.Brand().CreateBrand(t.Context(), models.Brand{Name: "Pertamina", LogoURL: "https://img/pertamina.png"})
			require.NoError(t, err)
			require.NotEqual(t, uuid.Nil, brand.ID)

			got, err := s.Brand().GetBrand(t.Context(), brand.ID)
			require.NoError(t, err)
			assert.Equal(t, brand, got)

			brand.Name = "Pertamina Retail"
			updated, err := s.Brand().UpdateBrand(t.Context(), brand)
			require.NoError(t, err)
			assert.Equal(t, "Pertamina Retail", updated.Name)

			brands, err := s.Brand().ListBrands(t.Context())
			require.NoError(t, err)
			assert.Equal(t, []models.Brand{updated}, brands)

			require.NoError(t, s.Brand().DeleteBrand(t.Context(), brand.ID))
			_, err = s.Brand().GetBrand(t.Context(), brand.ID)
			require.ErrorIs(t, err, apperrors.ErrBrandNotFound)
			require.ErrorIs(t, s.Brand().DeleteBrand(t.Context(), brand.ID), apperrors.ErrBrandNotFound)
		})
	})

	t.Run("Service", func(t *testing.T) {
		inTx(t, pg.Pool, func(_ pgx.Tx, s repository.Storage) {
			svc, err := s.Service().CreateService(t.Context(), models.Service{Name: "Toilet", IconURL: "wc.svg"})
			require.NoError(t, err)

			svc.IconURL = "toilet.svg"
			updated, err := s.Service().UpdateService(t.Context(), svc)
			require.NoError(t, err)
			assert.Equal(t, "toilet.svg", updated.IconURL)

			_, err = s.Service().UpdateService(t.Context(), models.Service{ID: uuid.New(), Name: "Ghost"})
			require.ErrorIs(t, err, apperrors.ErrServiceNotFound)

			require.NoError(t, s.Service().DeleteService(t.Context(), svc.ID))
			_, err = s.Service().GetService(t.Context(), svc.ID)
			require.ErrorIs(t, err, apperrors.ErrServiceNotFound)
		})
	})

	t.Run("Spbu", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, s repository.Storage) {
			brand, err := s.Brand().CreateBrand(t.Context(), models.Brand{Name: "Shell"})
			require.NoError(t, err)

			lat, lon := -6.2, 106.8
			pumps := int32(8)

			t.Run("create and get", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, s repository.Storage) {
					created, err := s.Spbu().CreateSpbu(t.Context(), models.Spbu{
						Name:      "SPBU 34.101",
						Address:   "Jl. Thamrin 1",
						Latitude:  &lat,
						Longitude: &lon,
						BrandID:   &brand.ID,
						PumpCount: &pumps,
					})
					require.NoError(t, err)

					got, err := s.Spbu().GetSpbu(t.Context(), created.ID)
					require.NoError(t, err)
					assert.Equal(t, created, got)
					require.NotNil(t, got.BrandID)
					assert.Equal(t, brand.ID, *got.BrandID)
					assert.Nil(t, got.Rating)
					assert.Nil(t, got.QueueCount)
				})
			})

			t.Run("unknown brand", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, s repository.Storage) {
					unknown := uuid.New()

					_, err := s.Spbu().CreateSpbu(t.Context(), models.Spbu{Name: "SPBU", BrandID: &unknown})

					require.ErrorIs(t, err, apperrors.ErrBrandNotFound)
				})
			})

			t.Run("brand delete unsets brand", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, s repository.Storage) {
					created, err := s.Spbu().CreateSpbu(t.Context(), models.Spbu{Name: "SPBU", BrandID: &brand.ID})
					require.NoError(t, err)

					require.NoError(t, s.Brand().DeleteBrand(t.Context(), brand.ID))

					got, err := s.Spbu().GetSpbu(t.Context(), created.ID)
					require.NoError(t, err)
					assert.Nil(t, got.BrandID)
				})
			})

			t.Run("update", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, s repository.Storage) {
					created := mustCreateSpbu(t, s, "Old name")
					created.Name = "New name"
					created.QueueCount = &pumps

					updated, err := s.Spbu().UpdateSpbu(t.Context(), created)

					require.NoError(t, err)
					assert.Equal(t, "New name", updated.Name)
					require.NotNil(t, updated.QueueCount)
					assert.Equal(t, pumps, *updated.QueueCount)

					_, err = s.Spbu().UpdateSpbu(t.Context(), models.Spbu{ID: uuid.New(), Name: "x"})
					require.ErrorIs(t, err, apperrors.ErrSpbuNotFound)
				})
			})

			t.Run("delete in use", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, s repository.Storage) {
					user := mustCreateUser(t, s, "buyer@example.com")
					spbu := mustCreateSpbu(t, s, "Busy")
					_, err := s.Transaction().CreateTransaction(t.Context(), models.Transaction{
						UserID: user.ID, SpbuID: spbu.ID, FuelType: "pertalite",
						Quantity: numeric.MustParse("1"), PricePerLiter: numeric.MustParse("10000"), TotalPrice: numeric.MustParse("10000.00"),
						PaymentMethod: "cash",
					})
					require.NoError(t, err)

					err = s.Spbu().DeleteSpbu(t.Context(), spbu.ID)

					require.ErrorIs(t, err, apperrors.ErrSpbuInUse)
				})
			})

			t.Run("delete", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, s repository.Storage) {
					spbu := mustCreateSpbu(t, s, "Closed")
					mustSetPrice(t, s, spbu.ID, "pertalite", "10000")

					require.NoError(t, s.Spbu().DeleteSpbu(t.Context(), spbu.ID))

					prices, err := s.FuelPrice().ListFuelPrices(t.Context(), spbu.ID)
					require.NoError(t, err)
					assert.Empty(t, prices, "prices have to be deleted with the station")
					require.ErrorIs(t, s.Spbu().DeleteSpbu(t.Context(), spbu.ID), apperrors.ErrSpbuNotFound)
				})
			})
		})
	})

	t.Run("FuelPrice", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, s repository.Storage) {
			spbu := mustCreateSpbu(t, s, "Priced")

			t.Run("upsert keeps exact value", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, s repository.Storage) {
					fp := mustSetPrice(t, s, spbu.ID, "pertamax", "12500.50")
					assert.Equal(t, "12500.50", fp.Price.String())

					fp = mustSetPrice(t, s, spbu.ID, "pertamax", "13000.00")
					assert.Equal(t, "13000.00", fp.Price.String())

					got, err := s.FuelPrice().GetFuelPrice(t.Context(), spbu.ID, "pertamax")
					require.NoError(t, err)
					assert.Equal(t, "13000.00", got.Price.String())
				})
			})

			t.Run("non positive price", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, s repository.Storage) {
					_, err := s.FuelPrice().UpsertFuelPrice(t.Context(), spbu.ID, "solar", numeric.Zero)

					require.ErrorIs(t, err, apperrors.ErrInvalidPrice)
				})
			})

			t.Run("unknown station", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, s repository.Storage) {
					_, err := s.FuelPrice().UpsertFuelPrice(t.Context(), uuid.New(), "solar", numeric.MustParse("1"))

					require.ErrorIs(t, err, apperrors.ErrSpbuNotFound)
				})
			})

			t.Run("list and delete", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, s repository.Storage) {
					mustSetPrice(t, s, spbu.ID, "solar", "6800")
					mustSetPrice(t, s, spbu.ID, "pertalite", "10000")

					prices, err := s.FuelPrice().ListFuelPrices(t.Context(), spbu.ID)
					require.NoError(t, err)
					require.Len(t, prices, 2)
					assert.Equal(t, "pertalite", prices[0].FuelType)

					require.NoError(t, s.FuelPrice().DeleteFuelPrice(t.Context(), spbu.ID, "solar"))
					_, err = s.FuelPrice().GetFuelPrice(t.Context(), spbu.ID, "solar")
					require.ErrorIs(t, err, apperrors.ErrFuelPriceNotFound)
					require.ErrorIs(t, s.FuelPrice().DeleteFuelPrice(t.Context(), spbu.ID, "solar"), apperrors.ErrFuelPriceNotFound)
				})
			})
		})
	})

	t.Run("SpbuService", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, s repository.Storage) {
			spbu := mustCreateSpbu(t, s, "Linked")
			svc, err := s.Service().CreateService(t.Context(), models.Service{Name: "Car wash"})
			require.NoError(t, err)

			t.Run("link twice", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, s repository.Storage) {
					link, err := s.SpbuService().Link(t.Context(), spbu.ID, svc.ID)
					require.NoError(t, err)
					assert.Equal(t, spbu.ID, link.SpbuID)
					assert.Equal(t, svc.ID, link.ServiceID)

					_, err = s.SpbuService().Link(t.Context(), spbu.ID, svc.ID)
					require.ErrorIs(t, err, apperrors.ErrSpbuServiceExists)
				})
			})

			t.Run("link unknown", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, s repository.Storage) {
					_, err := s.SpbuService().Link(t.Context(), spbu.ID, uuid.New())
					require.ErrorIs(t, err, apperrors.ErrServiceNotFound)
				})
				inTx(t, tx, func(_ pgx.Tx, s repository.Storage) {
					_, err := s.SpbuService().Link(t.Context(), uuid.New(), svc.ID)
					require.ErrorIs(t, err, apperrors.ErrSpbuNotFound)
				})
			})

			t.Run("list both ways and unlink", func(t *testing.T) {
				inTx(t, tx, func(_ pgx.Tx, s repository.Storage) {
					_, err := s.SpbuService().Link(t.Context(), spbu.ID, svc.ID)
					require.NoError(t, err)

					services, err := s.SpbuService().ListServicesOfSpbu(t.Context(), spbu.ID)
					require.NoError(t, err)
					assert.Equal(t, []models.Service{svc}, services)

					stations, err := s.SpbuService().ListSpbuWithService(t.Context(), svc.ID)
					require.NoError(t, err)
					require.Len(t, stations, 1)
					assert.Equal(t, spbu.ID, stations[0].ID)

					require.NoError(t, s.SpbuService().Unlink(t.Context(), spbu.ID, svc.ID))
					require.ErrorIs(t, s.SpbuService().Unlink(t.Context(), spbu.ID, svc.ID), apperrors.ErrSpbuServiceNotFound)
				})
			})
		})
	})
}
