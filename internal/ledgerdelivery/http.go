// Package ledgerdelivery manages delivery layer of the ledger.
//
// The wire shapes mirror the public API: money movement endpoints answer with
// a {"status","message"} envelope, balance and transaction queries answer
// with plain JSON values. Amounts cross the boundary as JSON numbers and are
// converted to decimals at the edge.
package ledgerdelivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/jsonresponse"
)

// Service provides service layer interface needed by the ledger delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package ledgerdelivery
type Service interface {
	CreateUser(ctx context.Context, name string, initialBalance decimal.Decimal) (domain.Account, error)
	Balance(ctx context.Context, id int32) (decimal.Decimal, error)
	Deposit(ctx context.Context, id int32, amount decimal.Decimal) (domain.Account, error)
	Withdraw(ctx context.Context, id int32, amount decimal.Decimal) (domain.Account, error)
	Transfer(ctx context.Context, senderID, receiverID int32, amount decimal.Decimal) (domain.TransferResult, error)
	Transactions(ctx context.Context, id int32) ([]domain.Transaction, error)
}

// Handler facilitates ledger delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns a ledger handler.
func NewHandler(s Service) *Handler {
	return &Handler{service: s}
}

// httpStatus maps ledger errors to response status codes.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrNegativeInitialBalance),
		errors.Is(err, domain.ErrNameRequired),
		errors.Is(err, domain.ErrSameAccountTransfer),
		errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusBadRequest
	case errors.Is(err, errorspkg.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicError hides internal error details from clients.
func publicError(err error) error {
	if httpStatus(err) == http.StatusInternalServerError {
		return errorspkg.ErrInternal
	}

	return err
}

func failMessage(err error) string {
	return publicError(err).Error()
}

// bindMessage turns a binding error into a client friendly message,
// naming the first failed field when validation is to blame.
func bindMessage(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		field := ve[0]
		return field.Field() + jsonresponse.GetErrorMsg(field)
	}

	return err.Error()
}

type userIDRequest struct {
	UserID int32 `form:"userId" binding:"required,min=1"`
}

type balanceResponse struct {
	Balance float64 `json:"balance"`
}

// GetBalance handles http request to get the current account balance.
func (h *Handler) GetBalance(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req userIDRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.ErrorMessage(bindMessage(err)))

		return
	}

	balance, err := h.service.Balance(ctx, req.UserID)
	if err != nil {
		gctx.JSON(httpStatus(err), jsonresponse.Error(publicError(err)))
		return
	}

	gctx.JSON(http.StatusOK, balanceResponse{Balance: balance.InexactFloat64()})
}

type depositRequest struct {
	UserID int32   `json:"userId" binding:"required,min=1"`
	Amount float64 `json:"amount"`
}

// Deposit handles http request to credit an account.
func (h *Handler) Deposit(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req depositRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Fail(bindMessage(err)))

		return
	}

	if _, err := h.service.Deposit(ctx, req.UserID, decimal.NewFromFloat(req.Amount)); err != nil {
		gctx.JSON(httpStatus(err), jsonresponse.Fail(failMessage(err)))
		return
	}

	gctx.JSON(http.StatusOK, jsonresponse.Success("Deposit successful"))
}

// Withdraw handles http request to debit an account.
func (h *Handler) Withdraw(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req depositRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Fail(bindMessage(err)))

		return
	}

	if _, err := h.service.Withdraw(ctx, req.UserID, decimal.NewFromFloat(req.Amount)); err != nil {
		gctx.JSON(httpStatus(err), jsonresponse.Fail(failMessage(err)))
		return
	}

	gctx.JSON(http.StatusOK, jsonresponse.Success("Withdrawal successful"))
}

type transferRequest struct {
	SenderID   int32   `json:"senderId" binding:"required,min=1"`
	ReceiverID int32   `json:"receiverId" binding:"required,min=1"`
	Amount     float64 `json:"amount"`
}

// Transfer handles http request to move money between two accounts.
func (h *Handler) Transfer(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req transferRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Fail(bindMessage(err)))

		return
	}

	_, err := h.service.Transfer(ctx, req.SenderID, req.ReceiverID, decimal.NewFromFloat(req.Amount))
	if err != nil {
		gctx.JSON(httpStatus(err), jsonresponse.Fail(failMessage(err)))
		return
	}

	gctx.JSON(http.StatusOK, jsonresponse.Success("Transfer successful"))
}

type transactionItem struct {
	ID        int64     `json:"id"`
	UserID    int32     `json:"userId"`
	Amount    float64   `json:"amount"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// GetTransactions handles http request to list an account's audit trail.
func (h *Handler) GetTransactions(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req userIDRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.ErrorMessage(bindMessage(err)))

		return
	}

	records, err := h.service.Transactions(ctx, req.UserID)
	if err != nil {
		gctx.JSON(httpStatus(err), jsonresponse.Error(publicError(err)))
		return
	}

	items := make([]transactionItem, 0, len(records))
	for _, t := range records {
		items = append(items, transactionItem{
			ID:        t.ID,
			UserID:    t.AccountID,
			Amount:    t.Amount.InexactFloat64(),
			Type:      string(t.Kind),
			Timestamp: t.CreatedAt,
		})
	}

	gctx.JSON(http.StatusOK, items)
}

type createUserRequest struct {
	Name           string  `json:"name" binding:"required"`
	InitialBalance float64 `json:"initialBalance"`
}

// CreateUser handles http request to open a new account.
func (h *Handler) CreateUser(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createUserRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Fail(bindMessage(err)))

		return
	}

	if _, err := h.service.CreateUser(ctx, req.Name, decimal.NewFromFloat(req.InitialBalance)); err != nil {
		gctx.JSON(httpStatus(err), jsonresponse.Fail(failMessage(err)))
		return
	}

	gctx.JSON(http.StatusOK, jsonresponse.Success("User created successfully"))
}
