package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/tpq_backend/config"
	"github.com/mmdatafocus/tpq_backend/utils"
	"github.com/shopspring/decimal"
)

type FinancialTransaction struct {
	ID              int             `gorm:"primary_key" json:"id"`
	AdminId         string          `gorm:"size:36;index;not null" json:"admin_id"`
	TransactionDate time.Time       `gorm:"type:date;not null" json:"transaction_date"`
	Type            TransactionType `gorm:"size:20;not null;index" json:"type"`
	Category        string          `gorm:"size:100" json:"category"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"amount"`
	Description     string          `gorm:"type:text" json:"description"`
	PaymentMethod   string          `gorm:"size:50" json:"payment_method"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewFinancialTransaction struct {
	TransactionDate string          `json:"transaction_date" validate:"required"`
	Type            TransactionType `json:"type" validate:"required,oneof=income expense"`
	Category        string          `json:"category" validate:"max=100"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	PaymentMethod   string          `json:"payment_method" validate:"max=50"`
}

type FinanceSummary struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Balance      decimal.Decimal `json:"balance"`
}

func (input *NewFinancialTransaction) validate() error {
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if input.Amount.IsNegative() {
		return utils.ValidationError("amount must not be negative")
	}
	if _, err := utils.ParseDate(input.TransactionDate); err != nil {
		return utils.ValidationError("invalid transaction_date")
	}
	return nil
}

func CreateFinancialTransaction(ctx context.Context, input *NewFinancialTransaction) (*FinancialTransaction, error) {
	adminId, ok := utils.GetAdminIdFromContext(ctx)
	if !ok || adminId == "" {
		return nil, utils.ErrUnauthorized
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	date, _ := utils.ParseDate(input.TransactionDate)
	db := config.GetDB()
	transaction := FinancialTransaction{
		AdminId:         adminId,
		TransactionDate: date,
		Type:            input.Type,
		Category:        input.Category,
		Amount:          input.Amount,
		Description:     input.Description,
		PaymentMethod:   input.PaymentMethod,
	}
	if err := db.WithContext(ctx).Create(&transaction).Error; err != nil {
		return nil, utils.StorageError("create transaction", err)
	}
	return &transaction, nil
}

// ListFinancialTransactions returns the tenant's transactions, newest first.
// An empty txType lists both kinds.
func ListFinancialTransactions(ctx context.Context, txType TransactionType) ([]*FinancialTransaction, error) {
	adminId, ok := utils.GetAdminIdFromContext(ctx)
	if !ok || adminId == "" {
		return nil, utils.ErrUnauthorized
	}
	if txType != "" && !txType.IsValid() {
		return nil, utils.ValidationError("invalid transaction type")
	}

	var results []*FinancialTransaction
	var err error
	if txType == "" {
		results, err = utils.FetchAllModels[FinancialTransaction](ctx, adminId, "transaction_date DESC, id DESC")
	} else {
		results, err = utils.FetchAllModels[FinancialTransaction](ctx, adminId, "transaction_date DESC, id DESC", "type = ?", txType)
	}
	if err != nil {
		return nil, utils.StorageError("list transactions", err)
	}
	return results, nil
}

func DeleteFinancialTransaction(ctx context.Context, id int) (*FinancialTransaction, error) {
	adminId, ok := utils.GetAdminIdFromContext(ctx)
	if !ok || adminId == "" {
		return nil, utils.ErrUnauthorized
	}

	db := config.GetDB()
	transaction, err := utils.FetchModel[FinancialTransaction](ctx, adminId, id)
	if err != nil {
		if err == utils.ErrorRecordNotFound {
			return nil, utils.NotFoundError("transaction not found")
		}
		return nil, utils.StorageError("get transaction", err)
	}
	if err := db.WithContext(ctx).Delete(transaction).Error; err != nil {
		return nil, utils.StorageError("delete transaction", err)
	}
	return transaction, nil
}

// SumTransactions adds up amounts per type.
func SumTransactions(transactions []*FinancialTransaction) (income decimal.Decimal, expense decimal.Decimal) {
	for _, t := range transactions {
		switch t.Type {
		case TransactionTypeIncome:
			income = income.Add(t.Amount)
		case TransactionTypeExpense:
			expense = expense.Add(t.Amount)
		}
	}
	return income, expense
}

func GetFinanceSummary(ctx context.Context) (*FinanceSummary, error) {
	transactions, err := ListFinancialTransactions(ctx, "")
	if err != nil {
		return nil, err
	}
	income, expense := SumTransactions(transactions)
	return &FinanceSummary{
		TotalIncome:  income,
		TotalExpense: expense,
		Balance:      income.Sub(expense),
	}, nil
}
