package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/kopiaku-backend/models"
	"github.com/yeremiapane/kopiaku-backend/services"
	"github.com/yeremiapane/kopiaku-backend/utils"
)

type TransactionController struct {
	DB      *gorm.DB
	Service *services.TransactionService
}

func NewTransactionController(db *gorm.DB) *TransactionController {
	return &TransactionController{
		DB:      db,
		Service: services.NewTransactionService(db),
	}
}

// GetAllTransactions -> list transaksi beserta line item
func (tc *TransactionController) GetAllTransactions(c *gin.Context) {
	var transactions []models.Transaction
	if err := tc.DB.Preload("MenuItems").Order("transaction_date desc").Find(&transactions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of transactions", transactions)
}

// GetTransactionByID
func (tc *TransactionController) GetTransactionByID(c *gin.Context) {
	transactionID, err := parseIDParam(c, "transaction_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var transaction models.Transaction
	if err := tc.DB.Preload("MenuItems").First(&transaction, transactionID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Transaction detail", transaction)
}

// CreateTransaction -> order baru; userId diambil dari token
func (tc *TransactionController) CreateTransaction(c *gin.Context) {
	userIDInterface, exists := c.Get("user_id")
	if !exists {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}
	userID, ok := userIDInterface.(uint)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid user id in context"))
		return
	}

	var req struct {
		MenuItems []services.TransactionItemInput `json:"menu_items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	transaction, err := tc.Service.CreateTransaction(userID, req.MenuItems)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Transaction created", transaction)
}

// UpdateTransactionStatus -> transisi divalidasi terhadap tabel status
func (tc *TransactionController) UpdateTransactionStatus(c *gin.Context) {
	transactionID, err := parseIDParam(c, "transaction_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	transaction, err := tc.Service.UpdateTransactionStatus(transactionID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Transaction status updated", transaction)
}

// DeleteTransaction -> hard delete administratif, stok tidak dikembalikan
func (tc *TransactionController) DeleteTransaction(c *gin.Context) {
	transactionID, err := parseIDParam(c, "transaction_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := tc.Service.DeleteTransaction(transactionID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Transaction deleted", gin.H{"transaction_id": transactionID})
}

// SyncReconciliation -> feed rekonsiliasi QRIS dari gateway pembayaran
func (tc *TransactionController) SyncReconciliation(c *gin.Context) {
	var req struct {
		Items []services.ReconciliationItemInput `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	applied, err := tc.Service.SyncReconciliation(req.Items)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reconciliation applied", gin.H{
		"applied": applied,
		"total":   len(req.Items),
	})
}
