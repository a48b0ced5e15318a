package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// AccountHandler handles the balance page and balance updates
type AccountHandler struct {
	accounts usecase.AccountUseCase
	ledger   usecase.LedgerUseCase
	sessions usecase.SessionUseCase
	cookie   middleware.SessionCookie
	logger   coreport.Logger
}

// NewAccountHandler creates a new account handler instance
func NewAccountHandler(
	accounts usecase.AccountUseCase,
	ledger usecase.LedgerUseCase,
	sessions usecase.SessionUseCase,
	cookie middleware.SessionCookie,
	logger coreport.Logger,
) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		ledger:   ledger,
		sessions: sessions,
		cookie:   cookie,
		logger:   logger,
	}
}

// Show handles GET /account
func (h *AccountHandler) Show(c *gin.Context) {
	session, _ := middleware.CurrentSession(c)

	// drift is logged by the ledger; the page renders regardless
	if _, err := h.ledger.VerifyBalance(c.Request.Context(), session.UserID); err != nil && !errs.IsUserNotFoundError(err) {
		h.logger.Warn("Ledger verification failed", map[string]any{
			"user_id":    session.UserID,
			"request_id": middleware.GetRequestID(c),
			"error":      err.Error(),
		})
	}

	h.render(c, session, dto.AccountPage{})
}

// Update handles POST /account with a signed Amount
func (h *AccountHandler) Update(c *gin.Context) {
	session, _ := middleware.CurrentSession(c)

	var form dto.AmountForm
	if err := c.ShouldBindWith(&form, formBinding); err != nil {
		form.Amount = ""
	}

	result, err := h.ledger.ApplyTransaction(c.Request.Context(), session.UserID, form.Amount)
	switch {
	case err == nil:
		h.logger.Info("Balance updated", map[string]any{
			"user_id":        session.UserID,
			"transaction_id": result.TransactionID,
			"amount":         result.Amount,
			"request_id":     middleware.GetRequestID(c),
		})
		c.Redirect(http.StatusFound, "/account")
	case errors.Is(err, errs.ErrAmountOverflow):
		message := msgInvalidAmount + " " + fmt.Sprintf(msgAmountLimit, h.ledger.MaxAmount())
		h.render(c, session, dto.AccountPage{ErrorMessage: message, Amount: form.Amount})
	case errs.IsInvalidAmountError(err):
		h.render(c, session, dto.AccountPage{ErrorMessage: msgInvalidAmount, Amount: form.Amount})
	case errs.IsInsufficientFundsError(err):
		h.render(c, session, dto.AccountPage{ErrorMessage: msgInsufficientFunds, Amount: form.Amount})
	case errs.IsUserNotFoundError(err):
		h.revoke(c, session)
	default:
		middleware.RenderError(c, h.logger, "Balance update failed", err)
	}
}

// render loads the account into page and writes the account view with HTTP 200
func (h *AccountHandler) render(c *gin.Context, session *entity.Session, page dto.AccountPage) {
	account, err := h.accounts.GetAccount(c.Request.Context(), session.UserID)
	if err != nil {
		if errs.IsUserNotFoundError(err) {
			h.revoke(c, session)
			return
		}
		middleware.RenderError(c, h.logger, "Failed to load account", err)
		return
	}

	page.Account = account
	c.HTML(http.StatusOK, templateAccount, page)
}

// revoke ends a session whose user no longer exists and sends the browser home
func (h *AccountHandler) revoke(c *gin.Context, session *entity.Session) {
	h.logger.Warn("Session refers to a missing user", map[string]any{
		"user_id":    session.UserID,
		"request_id": middleware.GetRequestID(c),
	})
	if err := h.sessions.End(c.Request.Context(), session.Token); err != nil {
		h.logger.Warn("Failed to delete orphaned session", map[string]any{
			"user_id": session.UserID,
			"error":   err.Error(),
		})
	}

	h.cookie.Clear(c)
	middleware.ForgetSession(c)
	c.Redirect(http.StatusFound, "/")
}
