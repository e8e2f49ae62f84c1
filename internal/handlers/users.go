package handlers

import (
	"errors"
	"net/http"

	"queueroom/internal/apperr"
	"queueroom/internal/models"
	"queueroom/internal/response"
	"queueroom/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=64"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthResponse возвращается при регистрации и входе.
type AuthResponse struct {
	Message      string       `json:"message"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

var errBadCredentials = apperr.New(apperr.Unauthorized, "Incorrect email or password.")

func (h *Handler) issuePair(user *models.User) (string, string, error) {
	access, err := h.tokens.IssueAccess(user.ID, user.Name)
	if err != nil {
		return "", "", apperr.Wrap(apperr.Internal, err, "Ошибка при генерации access токена")
	}
	refresh, err := h.tokens.IssueRefresh(user.ID, user.Name)
	if err != nil {
		return "", "", apperr.Wrap(apperr.Internal, err, "Ошибка при генерации refresh токена")
	}
	return access, refresh, nil
}

// Register godoc
// @Summary		Регистрация пользователя
// @Description	Регистрация нового пользователя, возвращает пару токенов
// @Tags			users
// @Accept			json
// @Produce		json
// @Param			user	body		RegisterRequest			true	"Данные пользователя"
// @Success		201		{object}	AuthResponse			"Успешная регистрация"
// @Failure		400		{object}	response.ErrorResponse	"Ошибка валидации или пользователь уже существует (INVALID_INPUT)"
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера (INTERNAL)"
// @Router			/api/v1/users/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		response.Error(c, apperr.Wrap(apperr.Internal, err, "Ошибка при хешировании пароля"))
		return
	}

	user := models.NewUser(req.Name, req.Email, string(hashedPassword))
	if err := models.ValidateUser(user); err != nil {
		response.Error(c, apperr.Wrap(apperr.InvalidInput, err, err.Error()))
		return
	}
	if err := h.store.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			response.Error(c, apperr.New(apperr.InvalidInput, "A user with this email already exists."))
			return
		}
		response.Error(c, apperr.Wrap(apperr.Internal, err, "Ошибка при создании пользователя"))
		return
	}

	access, refresh, err := h.issuePair(user)
	if err != nil {
		response.Error(c, err)
		return
	}
	log.Info().Str("module", "users").Str("user_id", user.ID).Msg("user registered")
	c.JSON(http.StatusCreated, AuthResponse{
		Message:      "Registration successful.",
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user,
	})
}

// Login godoc
// @Summary		Авторизация пользователя
// @Description	Авторизация пользователя и получение токенов
// @Tags			users
// @Accept			json
// @Produce		json
// @Param			user	body		LoginRequest			true	"Данные для авторизации"
// @Success		200		{object}	AuthResponse			"Успешная авторизация"
// @Failure		400		{object}	response.ErrorResponse	"Ошибка валидации данных (INVALID_INPUT)"
// @Failure		401		{object}	response.ErrorResponse	"Неверные учетные данные (UNAUTHORIZED)"
// @Router			/api/v1/users/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	user, err := h.store.FindUserByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, storage.ErrNotFound) {
		response.Error(c, errBadCredentials)
		return
	}
	if err != nil {
		response.Error(c, apperr.Wrap(apperr.Internal, err, "Ошибка при поиске пользователя"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		response.Error(c, errBadCredentials)
		return
	}

	access, refresh, err := h.issuePair(user)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, AuthResponse{
		Message:      "Login successful.",
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user,
	})
}

// RefreshToken godoc
// @Summary		Обновление access токена
// @Description	Обновление пары токенов с помощью refresh токена
// @Tags			users
// @Accept			json
// @Produce		json
// @Param			refresh_token	body		RefreshTokenRequest		true	"Refresh токен"
// @Success		200				{object}	response.TokenResponse	"Успешное обновление токенов"
// @Failure		400				{object}	response.ErrorResponse	"Ошибка валидации данных (INVALID_INPUT)"
// @Failure		401				{object}	response.ErrorResponse	"Неверный или просроченный refresh токен (UNAUTHORIZED)"
// @Router			/api/v1/users/refresh [post]
func (h *Handler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	claims, err := h.tokens.ParseRefresh(req.RefreshToken)
	if err != nil {
		response.Error(c, apperr.Wrap(apperr.Unauthorized, err, "Invalid or expired refresh token."))
		return
	}
	user, err := h.store.FindUserByID(c.Request.Context(), claims.Subject)
	if errors.Is(err, storage.ErrNotFound) {
		response.Error(c, apperr.New(apperr.Unauthorized, "User not found."))
		return
	}
	if err != nil {
		response.Error(c, apperr.Wrap(apperr.Internal, err, "Ошибка при поиске пользователя"))
		return
	}

	access, refresh, err := h.issuePair(user)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, response.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	})
}
