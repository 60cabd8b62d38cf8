package handler

import (
	"mime"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-manager-api/internal/repo"
	"github.com/BuzzLyutic/task-manager-api/internal/service"
	"github.com/BuzzLyutic/task-manager-api/pkg/respond"
)

type AccountHandler struct {
	service *service.AccountService
	logger  *zap.Logger
}

func NewAccountHandler(srv *service.AccountService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		service: srv,
		logger:  logger,
	}
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := decodeJSON(w, r, &req); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	u, err := h.service.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, repo.ErrorConflict) {
			respond.Error(w, r, http.StatusConflict, "email already registered")
			return
		}
		handleErrors(w, r, h.logger, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, u)
}

// Login accepts either a JSON body or an OAuth2 password form, where the
// username field carries the email.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginInput

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			handleErrors(w, r, h.logger, invalid("invalid form: %v", err))
			return
		}
		req.Email = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
	} else if err := decodeJSON(w, r, &req); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	token, err := h.service.Login(r.Context(), req)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, token)
}

// Me returns the caller's own account.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		handleErrors(w, r, h.logger, service.ErrUnauthorized)
		return
	}
	respond.JSON(w, r, http.StatusOK, u)
}
