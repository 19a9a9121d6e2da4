package handler

import (
	"banksantri/pkg/response"

	"github.com/gin-gonic/gin"
)

type OpenAccountRequest struct {
	CustomerID int64 `json:"customer_id" binding:"required,gt=0"`
	ProductID  int64 `json:"product_id" binding:"required,gt=0"`
}

type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OpenAccount opens the savings account of a student; the account number is
// the student's NIS.
// POST /api/v1/account
func (h *Handler) OpenAccount(c *gin.Context) {
	var req OpenAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	account, err := h.accountService.Open(c.Request.Context(), req.CustomerID, req.ProductID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, "Account opened successfully", account)
}

// GET /api/v1/account/:account_number
func (h *Handler) GetAccount(c *gin.Context) {
	account, err := h.accountService.Get(c.Request.Context(), c.Param("account_number"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, account)
}

// PUT /api/v1/account/:account_number/status
func (h *Handler) SetAccountStatus(c *gin.Context) {
	var req SetStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	account, err := h.accountService.SetStatus(c.Request.Context(), c.Param("account_number"), req.Status)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, account)
}

// ReconcileAccount folds the account's ledger and compares it with the
// cached balance.
// GET /api/v1/account/:account_number/reconcile
func (h *Handler) ReconcileAccount(c *gin.Context) {
	report, err := h.reconcileService.ReconcileAccount(c.Request.Context(), c.Param("account_number"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, report)
}
