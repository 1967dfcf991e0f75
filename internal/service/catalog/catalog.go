// Package catalog manages the public directory: brands, station services (amenities),
// stations, their fuel prices and which services every station offers.
package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/nkiryanov/spbuhub/internal/apperrors"
	"github.com/nkiryanov/spbuhub/internal/models"
	"github.com/nkiryanov/spbuhub/internal/numeric"
	"github.com/nkiryanov/spbuhub/internal/repository"
)

type CatalogService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *CatalogService {
	return &CatalogService{storage: storage}
}

func (s *CatalogService) CreateBrand(ctx context.Context, b models.Brand) (models.Brand, error) {
	b.ID = uuid.Nil
	return s.storage.Brand().CreateBrand(ctx, b)
}

func (s *CatalogService) GetBrand(ctx context.Context, id uuid.UUID) (models.Brand, error) {
	return s.storage.Brand().GetBrand(ctx, id)
}

func (s *CatalogService) ListBrands(ctx context.Context) ([]models.Brand, error) {
	return s.storage.Brand().ListBrands(ctx)
}

func (s *CatalogService) UpdateBrand(ctx context.Context, b models.Brand) (models.Brand, error) {
	return s.storage.Brand().UpdateBrand(ctx, b)
}

func (s *CatalogService) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	return s.storage.Brand().DeleteBrand(ctx, id)
}

func (s *CatalogService) CreateService(ctx context.Context, svc models.Service) (models.Service, error) {
	svc.ID = uuid.Nil
	return s.storage.Service().CreateService(ctx, svc)
}

func (s *CatalogService) GetService(ctx context.Context, id uuid.UUID) (models.Service, error) {
	return s.storage.Service().GetService(ctx, id)
}

func (s *CatalogService) ListServices(ctx context.Context) ([]models.Service, error) {
	return s.storage.Service().ListServices(ctx)
}

func (s *CatalogService) UpdateService(ctx context.Context, svc models.Service) (models.Service, error) {
	return s.storage.Service().UpdateService(ctx, svc)
}

func (s *CatalogService) DeleteService(ctx context.Context, id uuid.UUID) error {
	return s.storage.Service().DeleteService(ctx, id)
}

func (s *CatalogService) CreateSpbu(ctx context.Context, spbu models.Spbu) (models.Spbu, error) {
	spbu.ID = uuid.Nil
	return s.storage.Spbu().CreateSpbu(ctx, spbu)
}

func (s *CatalogService) GetSpbu(ctx context.Context, id uuid.UUID) (models.Spbu, error) {
	return s.storage.Spbu().GetSpbu(ctx, id)
}

func (s *CatalogService) ListSpbu(ctx context.Context) ([]models.Spbu, error) {
	return s.storage.Spbu().ListSpbu(ctx)
}

func (s *CatalogService) UpdateSpbu(ctx context.Context, spbu models.Spbu) (models.Spbu, error) {
	return s.storage.Spbu().UpdateSpbu(ctx, spbu)
}

func (s *CatalogService) DeleteSpbu(ctx context.Context, id uuid.UUID) error {
	return s.storage.Spbu().DeleteSpbu(ctx, id)
}

// SetFuelPrice creates or replaces the price of the fuel type at the station
func (s *CatalogService) SetFuelPrice(ctx context.Context, spbuID uuid.UUID, fuelType string, price numeric.Decimal) (models.FuelPrice, error) {
	if !price.IsPositive() {
		return models.FuelPrice{}, apperrors.ErrInvalidPrice
	}

	return s.storage.FuelPrice().UpsertFuelPrice(ctx, spbuID, models.NormalizeFuelType(fuelType), price)
}

func (s *CatalogService) GetFuelPrice(ctx context.Context, spbuID uuid.UUID, fuelType string) (models.FuelPrice, error) {
	return s.storage.FuelPrice().GetFuelPrice(ctx, spbuID, models.NormalizeFuelType(fuelType))
}

// ListFuelPrices of the station
// Unknown station is not found rather than an empty list
func (s *CatalogService) ListFuelPrices(ctx context.Context, spbuID uuid.UUID) ([]models.FuelPrice, error) {
	if _, err := s.storage.Spbu().GetSpbu(ctx, spbuID); err != nil {
		return nil, err
	}
	return s.storage.FuelPrice().ListFuelPrices(ctx, spbuID)
}

func (s *CatalogService) DeleteFuelPrice(ctx context.Context, spbuID uuid.UUID, fuelType string) error {
	return s.storage.FuelPrice().DeleteFuelPrice(ctx, spbuID, models.NormalizeFuelType(fuelType))
}

func (s *CatalogService) LinkService(ctx context.Context, spbuID uuid.UUID, serviceID uuid.UUID) (models.SpbuService, error) {
	return s.storage.SpbuService().Link(ctx, spbuID, serviceID)
}

func (s *CatalogService) UnlinkService(ctx context.Context, spbuID uuid.UUID, serviceID uuid.UUID) error {
	return s.storage.SpbuService().Unlink(ctx, spbuID, serviceID)
}

func (s *CatalogService) ListServicesOfSpbu(ctx context.Context, spbuID uuid.UUID) ([]models.Service, error) {
	if _, err := s.storage.Spbu().GetSpbu(ctx, spbuID); err != nil {
		return nil, err
	}
	return s.storage.SpbuService().ListServicesOfSpbu(ctx, spbuID)
}

func (s *CatalogService) ListSpbuWithService(ctx context.Context, serviceID uuid.UUID) ([]models.Spbu, error) {
	if _, err := s.storage.Service().GetService(ctx, serviceID); err != nil {
		return nil, err
	}
	return s.storage.SpbuService().ListSpbuWithService(ctx, serviceID)
}
