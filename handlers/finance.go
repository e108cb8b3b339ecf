package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/tpq_backend/models"
)

func ListTransactions(c *gin.Context) {
	if _, ok := requireAdminId(c); !ok {
		return
	}
	txType := models.TransactionType(c.Query("type"))
	results, err := models.ListFinancialTransactions(c.Request.Context(), txType)
	if err != nil {
		respondError(c, "ListTransactions", err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func CreateTransaction(c *gin.Context) {
	if _, ok := requireAdminId(c); !ok {
		return
	}
	var input models.NewFinancialTransaction
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	transaction, err := models.CreateFinancialTransaction(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "CreateTransaction", err)
		return
	}
	c.JSON(http.StatusCreated, transaction)
}

func DeleteTransaction(c *gin.Context) {
	if _, ok := requireAdminId(c); !ok {
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		respondBadRequest(c, "invalid id")
		return
	}
	transaction, err := models.DeleteFinancialTransaction(c.Request.Context(), id)
	if err != nil {
		respondError(c, "DeleteTransaction", err)
		return
	}
	c.JSON(http.StatusOK, transaction)
}

func FinanceSummary(c *gin.Context) {
	if _, ok := requireAdminId(c); !ok {
		return
	}
	summary, err := models.GetFinanceSummary(c.Request.Context())
	if err != nil {
		respondError(c, "FinanceSummary", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
