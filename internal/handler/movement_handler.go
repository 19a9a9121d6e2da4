package handler

import (
	"banksantri/internal/model"
	"banksantri/internal/service"
	"banksantri/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PostMovementRequest is the posting body. Amount is signed: positive
// deposits, negative withdraws or transfers out.
type PostMovementRequest struct {
	AccountNumber      string           `json:"account_number" binding:"required,max=32"`
	TransactionTypeID  int64            `json:"transaction_type_id" binding:"required,gt=0"`
	Amount             *decimal.Decimal `json:"amount" binding:"required"`
	Description        string           `json:"description" binding:"required,max=255"`
	ReferenceNumber    string           `json:"reference_number" binding:"max=64"`
	Channel            string           `json:"channel" binding:"omitempty,oneof=CASH TRANSFER MOBILE"`
	DestinationAccount string           `json:"destination_account" binding:"max=32"`
}

type UpdateMovementRequest struct {
	Description string `json:"description" binding:"required,max=255"`
}

type ListMovementsQuery struct {
	AccountNumber   string `form:"account_number"`
	TransactionType string `form:"transaction_type"`
	StartDate       string `form:"start_date"`
	EndDate         string `form:"end_date"`
	Page            int    `form:"page"`
	PerPage         int    `form:"per_page"`
}

func (q *ListMovementsQuery) toService() service.MovementQuery {
	return service.MovementQuery{
		AccountNumber:   q.AccountNumber,
		TransactionType: q.TransactionType,
		StartDate:       q.StartDate,
		EndDate:         q.EndDate,
		Page:            q.Page,
		PerPage:         q.PerPage,
	}
}

// ListMovements
// GET /api/v1/account-movement
func (h *Handler) ListMovements(c *gin.Context) {
	var q ListMovementsQuery
	if !bindQuery(c, &q) {
		return
	}

	page, err := h.queryService.ListMovements(c.Request.Context(), q.toService())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, response.NewPage(page.Items, page.Page, page.PerPage, page.Total))
}

// PostMovement posts a deposit, withdrawal or transfer.
// POST /api/v1/account-movement
func (h *Handler) PostMovement(c *gin.Context) {
	var req PostMovementRequest
	if !bindJSON(c, &req) {
		return
	}

	movement, err := h.postingService.PostMovement(c.Request.Context(), &service.PostMovementRequest{
		AccountNumber:      req.AccountNumber,
		TransactionTypeID:  req.TransactionTypeID,
		Amount:             *req.Amount,
		Description:        req.Description,
		Channel:            model.Channel(req.Channel),
		ReferenceNumber:    req.ReferenceNumber,
		DestinationAccount: req.DestinationAccount,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, "Account movement created successfully", movement)
}

// GET /api/v1/account-movement/:id
func (h *Handler) GetMovement(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	movement, err := h.queryService.GetMovement(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, movement)
}

// UpdateMovement changes only the description; any other body field is ignored.
// PUT /api/v1/account-movement/:id
func (h *Handler) UpdateMovement(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req UpdateMovementRequest
	if !bindJSON(c, &req) {
		return
	}

	movement, err := h.postingService.UpdateMovement(c.Request.Context(), id, req.Description)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, movement)
}

// DELETE /api/v1/account-movement/:id
func (h *Handler) DeleteMovement(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.postingService.DeleteMovement(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	response.NoContent(c)
}

// AccountHistory
// GET /api/v1/account-movement/account/:account_number/history
func (h *Handler) AccountHistory(c *gin.Context) {
	var q ListMovementsQuery
	if !bindQuery(c, &q) {
		return
	}

	history, err := h.queryService.AccountHistory(c.Request.Context(), c.Param("account_number"), q.toService())
	if err != nil {
		fail(c, err)
		return
	}
	m := history.Movements
	response.Success(c, gin.H{
		"account":   history.Account,
		"movements": response.NewPage(m.Items, m.Page, m.PerPage, m.Total),
		"summary":   history.Summary,
	})
}

// DailySummary
// GET /api/v1/account-movement/daily-summary?start_date=&end_date=
func (h *Handler) DailySummary(c *gin.Context) {
	rows, err := h.queryService.DailySummary(c.Request.Context(), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, rows)
}

// GET /api/v1/transaction-type
func (h *Handler) ListTransactionTypes(c *gin.Context) {
	types, err := h.queryService.ListTransactionTypes(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, types)
}
