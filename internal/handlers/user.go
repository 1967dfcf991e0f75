package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/spbuhub/internal/handlers/render"
	"github.com/nkiryanov/spbuhub/internal/logger"
	"github.com/nkiryanov/spbuhub/internal/models"
	"github.com/nkiryanov/spbuhub/internal/service/auth"
)

const dateLayout = time.DateOnly

type userResponse struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone"`
	Gender    string      `json:"gender"`
	BirthDate *string     `json:"birth_date"`
	PhotoURL  string      `json:"photo_url"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func newUserResponse(u models.User) userResponse {
	res := userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Gender:    u.Gender,
		PhotoURL:  u.PhotoURL,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.BirthDate != nil {
		d := u.BirthDate.Format(dateLayout)
		res.BirthDate = &d
	}
	return res
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	// Already validated with 'datetime' tag
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &d
}

func handleRegister(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Name      string `json:"name" validate:"required,max=255"`
		Email     string `json:"email" validate:"required,email,max=255"`
		Password  string `json:"password" validate:"required,min=8,max=128"`
		Phone     string `json:"phone" validate:"max=32"`
		Gender    string `json:"gender" validate:"max=16"`
		BirthDate string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
		PhotoURL  string `json:"photo_url" validate:"max=2048"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, err := authService.Register(r.Context(), auth.Registration{
			Name:      data.Name,
			Email:     data.Email,
			Password:  data.Password,
			Phone:     data.Phone,
			Gender:    data.Gender,
			BirthDate: parseDate(data.BirthDate),
			PhotoURL:  data.PhotoURL,
		})
		if err != nil {
			renderError(w, err, l)
			return
		}

		render.JSONWithStatus(w, newUserResponse(user), http.StatusCreated)
	})
}

func handleLogin(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	type response struct {
		ID    uuid.UUID   `json:"id"`
		Email string      `json:"email"`
		Name  string      `json:"name"`
		Role  models.Role `json:"role"`
		Token string      `json:"token"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, token, err := authService.Login(r.Context(), data.Email, data.Password)
		if err != nil {
			renderError(w, err, l)
			return
		}

		render.JSON(w, response{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role, Token: token.Value})
	})
}

func handleForgotPassword(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Email       string `json:"email" validate:"required,email"`
		NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
	}
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		err = authService.ForgotPassword(r.Context(), data.Email, data.NewPassword)
		if err != nil {
			renderError(w, err, l)
			return
		}

		render.JSON(w, response{Message: "Password updated successfully"})
	})
}

func handleListUsers(userService userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		users, err := userService.ListUsers(r.Context())
		if err != nil {
			renderError(w, err, l)
			return
		}

		res := make([]userResponse, 0, len(users))
		for _, u := range users {
			res = append(res, newUserResponse(u))
		}
		render.JSON(w, res)
	})
}

func handleGetUser(userService userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}

		user, err := userService.GetUser(r.Context(), id)
		if err != nil {
			renderError(w, err, l)
			return
		}

		render.JSON(w, newUserResponse(user))
	})
}

func handleUserMe(userService userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		me, ok := caller(w, r)
		if !ok {
			return
		}

		user, err := userService.GetUser(r.Context(), me.UserID)
		if err != nil {
			renderError(w, err, l)
			return
		}

		render.JSON(w, newUserResponse(user))
	})
}

func handleUpdateUser(userService userService, l logger.Logger) http.Handler {
	type request struct {
		Name      string `json:"name" validate:"required,max=255"`
		Email     string `json:"email" validate:"required,email,max=255"`
		Phone     string `json:"phone" validate:"max=32"`
		Gender    string `json:"gender" validate:"max=16"`
		BirthDate string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
		PhotoURL  string `json:"photo_url" validate:"max=2048"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		me, ok := caller(w, r)
		if !ok {
			return
		}
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, err := userService.UpdateUser(r.Context(), me, id, models.UserProfile{
			Name:      data.Name,
			Email:     data.Email,
			Phone:     data.Phone,
			Gender:    data.Gender,
			BirthDate: parseDate(data.BirthDate),
			PhotoURL:  data.PhotoURL,
		})
		if err != nil {
			renderError(w, err, l)
			return
		}

		render.JSON(w, newUserResponse(user))
	})
}

func handleDeleteUser(userService userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		me, ok := caller(w, r)
		if !ok {
			return
		}
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}

		if err := userService.DeleteUser(r.Context(), me, id); err != nil {
			renderError(w, err, l)
			return
		}

		render.NoContent(w)
	})
}

func handleSetRole(userService userService, l logger.Logger) http.Handler {
	type request struct {
		Role string `json:"role" validate:"required,oneof=user operator admin"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, err := userService.SetRole(r.Context(), id, models.Role(data.Role))
		if err != nil {
			renderError(w, err, l)
			return
		}

		l.Info("User role changed", "user_id", id, "role", data.Role)
		render.JSON(w, newUserResponse(user))
	})
}
