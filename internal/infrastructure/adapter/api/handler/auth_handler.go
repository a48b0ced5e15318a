package handler

import (
	"errors"
	"net/http"

	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles registration, login and logout
type AuthHandler struct {
	accounts           usecase.AccountUseCase
	sessions           usecase.SessionUseCase
	cookie             middleware.SessionCookie
	uniformLoginErrors bool
	logger             coreport.Logger
}

// NewAuthHandler creates a new auth handler instance.
// With uniformLoginErrors set, a wrong password is reported like an unknown email.
func NewAuthHandler(
	accounts usecase.AccountUseCase,
	sessions usecase.SessionUseCase,
	cookie middleware.SessionCookie,
	uniformLoginErrors bool,
	logger coreport.Logger,
) *AuthHandler {
	return &AuthHandler{
		accounts:           accounts,
		sessions:           sessions,
		cookie:             cookie,
		uniformLoginErrors: uniformLoginErrors,
		logger:             logger,
	}
}

// Index handles GET / and renders the register and login forms
func (h *AuthHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, templateIndex, dto.NewIndexPage())
}

// Register handles POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var form dto.RegisterForm
	page := dto.NewIndexPage()

	if err := bindForm(c, &form); err != nil {
		page.Register = form.Redacted()
		page.Errors = toValidationErrors(err).Fields()
		c.HTML(http.StatusOK, templateIndex, page)
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), usecase.RegisterRequest{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		Password:  form.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrEmailInUse):
			page.Errors["Email"] = msgEmailInUse
		case errors.Is(err, errs.ErrPasswordTooLong):
			// 72 characters can still exceed 72 bytes
			page.Errors["Password"] = msgPasswordTooLong
		default:
			middleware.RenderError(c, h.logger, "Registration failed", err)
			return
		}
		page.Register = form.Redacted()
		c.HTML(http.StatusOK, templateIndex, page)
		return
	}

	h.revokePrevious(c)
	if !h.signIn(c, user.ID) {
		return
	}
	c.Redirect(http.StatusFound, "/account")
}

// Login handles POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var form dto.LoginForm
	page := dto.NewIndexPage()

	if err := bindForm(c, &form); err != nil {
		page.Login = form.Redacted()
		page.Errors = toValidationErrors(err).Fields()
		c.HTML(http.StatusOK, templateIndex, page)
		return
	}

	user, err := h.accounts.Authenticate(c.Request.Context(), form.LoginEmail, form.LoginPassword)
	if err != nil {
		if !errors.Is(err, errs.ErrInvalidCredentials) {
			middleware.RenderError(c, h.logger, "Login failed", err)
			return
		}

		page.Login = form.Redacted()
		if errors.Is(err, errs.ErrWrongPassword) && !h.uniformLoginErrors {
			page.Errors["LoginPassword"] = msgInvalidPassword
		} else {
			page.Errors["LoginEmail"] = msgInvalidLogin
		}
		c.HTML(http.StatusOK, templateIndex, page)
		return
	}

	h.revokePrevious(c)
	if !h.signIn(c, user.ID) {
		return
	}
	c.Redirect(http.StatusFound, "/account")
}

// Logout handles GET /logout. It is safe to call without a session.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := h.cookie.Token(c); token != "" {
		if err := h.sessions.End(c.Request.Context(), token); err != nil {
			h.logger.Warn("Failed to delete session on logout", map[string]any{
				"request_id": middleware.GetRequestID(c),
				"error":      err.Error(),
			})
		}
	}

	h.cookie.Clear(c)
	middleware.ForgetSession(c)
	c.Redirect(http.StatusFound, "/")
}

// Success handles GET /success
func (h *AuthHandler) Success(c *gin.Context) {
	session, _ := middleware.CurrentSession(c)
	c.HTML(http.StatusOK, templateSuccess, dto.SuccessPage{UserID: session.UserID})
}

// revokePrevious ends the session the browser still holds, which may belong to another user
func (h *AuthHandler) revokePrevious(c *gin.Context) {
	previous := h.cookie.Token(c)
	if previous == "" {
		return
	}
	if err := h.sessions.End(c.Request.Context(), previous); err != nil {
		h.logger.Warn("Failed to revoke previous session", map[string]any{
			"request_id": middleware.GetRequestID(c),
			"error":      err.Error(),
		})
	}
	middleware.ForgetSession(c)
}

// signIn starts a session and sets its cookie; false means the error page was rendered
func (h *AuthHandler) signIn(c *gin.Context, userID uint64) bool {
	session, err := h.sessions.Start(c.Request.Context(), userID)
	if err != nil {
		middleware.RenderError(c, h.logger, "Failed to start session", err)
		return false
	}

	h.cookie.Set(c, session.Token)
	return true
}
