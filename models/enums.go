package models

import (
	"encoding/json"
	"errors"
	"strings"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// convert input to enum type
func (t *TransactionType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return errors.New("transaction type must be string")
	}
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "income":
		*t = TransactionTypeIncome
	case "expense":
		*t = TransactionTypeExpense
	default:
		return errors.New("invalid transaction type")
	}
	return nil
}

type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "hadir"
	AttendanceStatusPermit  AttendanceStatus = "izin"
	AttendanceStatusSick    AttendanceStatus = "sakit"
	AttendanceStatusAbsent  AttendanceStatus = "alpha"
)

type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "active"
	MemberStatusInactive MemberStatus = "inactive"
)

type RegistrationStatus string

const (
	RegistrationStatusPending  RegistrationStatus = "pending"
	RegistrationStatusAccepted RegistrationStatus = "accepted"
	RegistrationStatusRejected RegistrationStatus = "rejected"
)

func (s RegistrationStatus) IsValid() bool {
	switch s {
	case RegistrationStatusPending, RegistrationStatusAccepted, RegistrationStatusRejected:
		return true
	}
	return false
}
