package handler

import (
	"context"
	"strings"

	"atm-system/internal/adapter/http/dto"
	"atm-system/internal/core/domain"
	"atm-system/internal/core/ports"
	"atm-system/pkg/apperror"
	"atm-system/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type transactFunc func(ctx context.Context, number string, amount decimal.Decimal) (*domain.Account, string, error)

// AccountHandler handles the account endpoints.
type AccountHandler struct {
	svc ports.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc ports.AccountService) *AccountHandler {
	return &AccountHandler{svc: svc}
}

// GetBalance handles GET /accounts/:number/balance. Unknown accounts
// are created on first probe with a zero balance.
func (h *AccountHandler) GetBalance(c *gin.Context) {
	number := strings.TrimSpace(c.Param("number"))
	if number == "" {
		response.Error(c, apperror.Validation("account number is required"))
		return
	}

	account, err := h.svc.GetOrCreate(c.Request.Context(), number)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewBalanceResponse(account))
}

// Deposit handles POST /accounts/:number/deposit.
func (h *AccountHandler) Deposit(c *gin.Context) {
	h.transact(c, h.svc.Deposit)
}

// Withdraw handles POST /accounts/:number/withdraw.
func (h *AccountHandler) Withdraw(c *gin.Context) {
	h.transact(c, h.svc.Withdraw)
}

func (h *AccountHandler) transact(c *gin.Context, op transactFunc) {
	number := strings.TrimSpace(c.Param("number"))
	if number == "" {
		response.Error(c, apperror.Validation("account number is required"))
		return
	}

	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	amount, err := req.Decimal()
	if err != nil {
		response.Error(c, apperror.Validation("amount must be a number"))
		return
	}

	account, message, err := op(c.Request.Context(), number, amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewTransactionResponse(account, message))
}
