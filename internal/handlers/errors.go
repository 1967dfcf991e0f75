package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/nkiryanov/spbuhub/internal/apperrors"
	"github.com/nkiryanov/spbuhub/internal/handlers/render"
	"github.com/nkiryanov/spbuhub/internal/handlers/userctx"
	"github.com/nkiryanov/spbuhub/internal/logger"
	"github.com/nkiryanov/spbuhub/internal/models"
)

var errorKinds = []struct {
	kind   error
	status int
}{
	{apperrors.ErrInvalidInput, http.StatusBadRequest},
	{apperrors.ErrUnauthenticated, http.StatusUnauthorized},
	{apperrors.ErrForbidden, http.StatusForbidden},
	{apperrors.ErrNotFound, http.StatusNotFound},
	{apperrors.ErrConflict, http.StatusConflict},
}

// Render service error with status chosen by its kind
// Errors of unknown kind are logged and hidden behind 500
func renderError(w http.ResponseWriter, err error, l logger.Logger) {
	for _, k := range errorKinds {
		if !errors.Is(err, k.kind) {
			continue
		}

		message := http.StatusText(k.status)
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			message = appErr.Message
		}
		render.ServiceError(w, message, k.status)
		return
	}

	l.Error("Internal server error", "error", err)
	render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
}

// Parse uuid path value, render 400 if it is not valid
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		render.ServiceError(w, "Invalid "+name, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// Authenticated caller, render 401 if auth middleware was not applied
func caller(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	id, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
	}
	return id, ok
}
