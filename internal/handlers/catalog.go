package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/spbuhub/internal/handlers/render"
	"github.com/nkiryanov/spbuhub/internal/logger"
	"github.com/nkiryanov/spbuhub/internal/models"
	"github.com/nkiryanov/spbuhub/internal/numeric"
)

type brandRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	LogoURL string `json:"logo_url" validate:"max=2048"`
}

type brandResponse struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	LogoURL string    `json:"logo_url"`
}

func newBrandResponse(b models.Brand) brandResponse {
	return brandResponse{ID: b.ID, Name: b.Name, LogoURL: b.LogoURL}
}

func handleListBrands(catalog catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		brands, err := catalog.ListBrands(r.Context())
		if err != nil {
			renderError(w, err, l)
			return
		}

		res := make([]brandResponse, 0, len(brands))
		for _, b := range brands {
			res = append(res, newBrandResponse(b))
		}
		render.JSON(w, res)
	})
}

func handleGetBrand(catalog catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}

		brand, err := catalog.GetBrand(r.Context(), id)
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSON(w, newBrandResponse(brand))
	})
}

func handleCreateBrand(catalog catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[brandRequest](w, r)
		if err != nil {
			return
		}

		brand, err := catalog.CreateBrand(r.Context(), models.Brand{Name: data.Name, LogoURL: data.LogoURL})
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSONWithStatus(w, newBrandResponse(brand), http.StatusCreated)
	})
}

func handleUpdateBrand(catalog catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}
		data, err := render.BindAndValidate[brandRequest](w, r)
		if err != nil {
			return
		}

		brand, err := catalog.UpdateBrand(r.Context(), models.Brand{ID: id, Name: data.Name, LogoURL: data.LogoURL})
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSON(w, newBrandResponse(brand))
	})
}

func handleDeleteBrand(catalog catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}

		if err := catalog.DeleteBrand(r.Context(), id); err != nil {
			renderError(w, err, l)
			return
		}
		render.NoContent(w)
	})
}

type serviceRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	IconURL string `json:"icon_url" validate:"max=2048"`
}

type serviceResponse struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	IconURL string    `json:"icon_url"`
}

func newServiceResponse(s models.Service) serviceResponse {
	return serviceResponse{ID: s.ID, Name: s.Name, IconURL: s.IconURL}
}

func newServiceListResponse(services []models.Service) []serviceResponse {
	res := make([]serviceResponse, 0, len(services))
	for _, s := range services {
		res = append(res, newServiceResponse(s))
	}
	return res
}

func handleListServices(catalog catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		services, err := catalog.ListServices(r.Context())
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSON(w, newServiceListResponse(services))
	})
}

func handleGetService(catalog catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}

		service, err := catalog.GetService(r.Context(), id)
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSON(w, newServiceResponse(service))
	})
}

func handleCreateService(catalog catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[serviceRequest](w, r)
		if err != nil {
			return
		}

		service, err := catalog.CreateService(r.Context(), models.Service{Name: data.Name, IconURL: data.IconURL})
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSONWithStatus(w, newServiceResponse(service), http.StatusCreated)
	})
}

func handleUpdateService(catalog catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}
		data, err := render.BindAndValidate[serviceRequest](w, r)
		if err != nil {
			return
		}

		service, err := catalog.UpdateService(r.Context(), models.Service{ID: id, Name: data.Name, IconURL: data.IconURL})
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSON(w, newServiceResponse(service))
	})
}

func handleDeleteService(catalog catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}

		if err := catalog.DeleteService(r.Context(), id); err != nil {
			renderError(w, err, l)
			return
		}
		render.NoContent(w)
	})
}

type spbuRequest struct {
	Name       string     `json:"name" validate:"required,max=255"`
	Address    string     `json:"address" validate:"required,max=1024"`
	Latitude   *float64   `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude  *float64   `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	BrandID    *uuid.UUID `json:"brand_id"`
	PumpCount  *int32     `json:"pump_count" validate:"omitempty,gte=0"`
	QueueCount *int32     `json:"queue_count" validate:"omitempty,gte=0"`
	PhotoURL   string     `json:"photo_url" validate:"max=2048"`
}

func (req spbuRequest) toModel(id uuid.UUID) models.Spbu {
	return models.Spbu{
		ID:         id,
		Name:       req.Name,
		Address:    req.Address,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		BrandID:    req.BrandID,
		PumpCount:  req.PumpCount,
		QueueCount: req.QueueCount,
		PhotoURL:   req.PhotoURL,
	}
}

type spbuResponse struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Address    string     `json:"address"`
	Latitude   *float64   `json:"latitude"`
	Longitude  *float64   `json:"longitude"`
	BrandID    *uuid.UUID `json:"brand_id"`
	Rating     *float64   `json:"rating"`
	PumpCount  *int32     `json:"pump_count"`
	QueueCount *int32     `json:"queue_count"`
	PhotoURL   string     `json:"photo_url"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func newSpbuResponse(s models.Spbu) spbuResponse {
	return spbuResponse{
		ID:         s.ID,
		Name:       s.Name,
		Address:    s.Address,
		Latitude:   s.Latitude,
		Longitude:  s.Longitude,
		BrandID:    s.BrandID,
		Rating:     s.Rating,
		PumpCount:  s.PumpCount,
		QueueCount: s.QueueCount,
		PhotoURL:   s.PhotoURL,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

func newSpbuListResponse(stations []models.Spbu) []spbuResponse {
	res := make([]spbuResponse, 0, len(stations))
	for _, s := range stations {
		res = append(res, newSpbuResponse(s))
	}
	return res
}

func handleListSpbu(catalog catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stations, err := catalog.ListSpbu(r.Context())
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSON(w, newSpbuListResponse(stations))
	})
}

func handleGetSpbu(catalog catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}

		spbu, err := catalog.GetSpbu(r.Context(), id)
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSON(w, newSpbuResponse(spbu))
	})
}

func handleCreateSpbu(catalog catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[spbuRequest](w, r)
		if err != nil {
			return
		}

		spbu, err := catalog.CreateSpbu(r.Context(), data.toModel(uuid.Nil))
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSONWithStatus(w, newSpbuResponse(spbu), http.StatusCreated)
	})
}

func handleUpdateSpbu(catalog catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}
		data, err := render.BindAndValidate[spbuRequest](w, r)
		if err != nil {
			return
		}

		spbu, err := catalog.UpdateSpbu(r.Context(), data.toModel(id))
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSON(w, newSpbuResponse(spbu))
	})
}

func handleDeleteSpbu(catalog catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}

		if err := catalog.DeleteSpbu(r.Context(), id); err != nil {
			renderError(w, err, l)
			return
		}
		render.NoContent(w)
	})
}

type fuelPriceResponse struct {
	SpbuID    uuid.UUID       `json:"spbu_id"`
	FuelType  string          `json:"fuel_type"`
	Price     numeric.Decimal `json:"price"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func newFuelPriceResponse(fp models.FuelPrice) fuelPriceResponse {
	return fuelPriceResponse{SpbuID: fp.SpbuID, FuelType: fp.FuelType, Price: fp.Price, UpdatedAt: fp.UpdatedAt}
}

func handleListFuelPrices(catalog catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		spbuID, ok := pathUUID(w, r, "spbu_id")
		if !ok {
			return
		}

		prices, err := catalog.ListFuelPrices(r.Context(), spbuID)
		if err != nil {
			renderError(w, err, l)
			return
		}

		res := make([]fuelPriceResponse, 0, len(prices))
		for _, fp := range prices {
			res = append(res, newFuelPriceResponse(fp))
		}
		render.JSON(w, res)
	})
}

func handleSetFuelPrice(catalog catalogService, l logger.Logger) http.Handler {
	type request struct {
		Price numeric.Decimal `json:"price" validate:"decimal_gt0"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		spbuID, ok := pathUUID(w, r, "spbu_id")
		if !ok {
			return
		}
		fuelType := r.PathValue("fuel_type")
		if render.ValidateParam(w, "fuel_type", fuelType, "fueltype") != nil {
			return
		}
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		fp, err := catalog.SetFuelPrice(r.Context(), spbuID, fuelType, data.Price)
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSON(w, newFuelPriceResponse(fp))
	})
}

func handleDeleteFuelPrice(catalog catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		spbuID, ok := pathUUID(w, r, "spbu_id")
		if !ok {
			return
		}

		if err := catalog.DeleteFuelPrice(r.Context(), spbuID, r.PathValue("fuel_type")); err != nil {
			renderError(w, err, l)
			return
		}
		render.NoContent(w)
	})
}

func handleLinkService(catalog catalogService, l logger.Logger) http.Handler {
	type request struct {
		ServiceID uuid.UUID `json:"service_id" validate:"required"`
	}
	type response struct {
		SpbuID    uuid.UUID `json:"spbu_id"`
		ServiceID uuid.UUID `json:"service_id"`
		CreatedAt time.Time `json:"created_at"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		spbuID, ok := pathUUID(w, r, "spbu_id")
		if !ok {
			return
		}
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		link, err := catalog.LinkService(r.Context(), spbuID, data.ServiceID)
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSONWithStatus(w, response{SpbuID: link.SpbuID, ServiceID: link.ServiceID, CreatedAt: link.CreatedAt}, http.StatusCreated)
	})
}

func handleUnlinkService(catalog catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		spbuID, ok := pathUUID(w, r, "spbu_id")
		if !ok {
			return
		}
		serviceID, ok := pathUUID(w, r, "service_id")
		if !ok {
			return
		}

		if err := catalog.UnlinkService(r.Context(), spbuID, serviceID); err != nil {
			renderError(w, err, l)
			return
		}
		render.NoContent(w)
	})
}

func handleListServicesOfSpbu(catalog catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		spbuID, ok := pathUUID(w, r, "spbu_id")
		if !ok {
			return
		}

		services, err := catalog.ListServicesOfSpbu(r.Context(), spbuID)
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSON(w, newServiceListResponse(services))
	})
}

func handleListSpbuWithService(catalog catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serviceID, ok := pathUUID(w, r, "service_id")
		if !ok {
			return
		}

		stations, err := catalog.ListSpbuWithService(r.Context(), serviceID)
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSON(w, newSpbuListResponse(stations))
	})
}
