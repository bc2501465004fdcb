package core

import (
	"math"
	"strings"
	"time"
)

const (
	PaymentCash PaymentMethodType = "cash"
	PaymentBank PaymentMethodType = "bank"
	PaymentCard PaymentMethodType = "card"

	Expense EntryType = "expense"
	Income  EntryType = "income"

	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"

	PeriodMonthly BudgetPeriod = "monthly"
	PeriodWeekly  BudgetPeriod = "weekly"
)

// Owner field shared by every owned collection.
const OwnerField = "userId"

type (
	PaymentMethodType string

	// EntryType classifies both categories and transactions.
	EntryType string

	Frequency string

	BudgetPeriod string

	UserProfile struct {
		UID       string    `json:"uid" firestore:"uid"`
		Email     string    `json:"email" firestore:"email"`
		Name      string    `json:"name" firestore:"name"`
		Phone     *string   `json:"phone" firestore:"phone"`
		PhotoURL  *string   `json:"photoURL" firestore:"photoURL"`
		CreatedAt Timestamp `json:"createdAt" firestore:"createdAt"`
	}

	PaymentMethod struct {
		ID        string            `json:"id" firestore:"id"`
		UserID    string            `json:"userId" firestore:"userId"`
		Name      string            `json:"name" firestore:"name"`
		Icon      string            `json:"icon" firestore:"icon"`
		Type      PaymentMethodType `json:"type" firestore:"type"`
		Balance   float64           `json:"balance" firestore:"balance"`
		CreatedAt Timestamp         `json:"createdAt" firestore:"createdAt"`
	}

	// PaymentMethodInput is the client-settable part of a payment method.
	// Balance is deliberately absent: it only moves through transactions.
	PaymentMethodInput struct {
		Name string            `json:"name"`
		Icon string            `json:"icon"`
		Type PaymentMethodType `json:"type"`
	}

	Category struct {
		ID        string    `json:"id" firestore:"id"`
		UserID    string    `json:"userId" firestore:"userId"`
		Name      string    `json:"name" firestore:"name"`
		Icon      string    `json:"icon" firestore:"icon"`
		Type      EntryType `json:"type" firestore:"type"`
		CreatedAt Timestamp `json:"createdAt" firestore:"createdAt"`
	}

	CategoryInput struct {
		Name string    `json:"name"`
		Icon string    `json:"icon"`
		Type EntryType `json:"type"`
	}

	Transaction struct {
		ID                 string     `json:"id" firestore:"id"`
		UserID             string     `json:"userId" firestore:"userId"`
		Type               EntryType  `json:"type" firestore:"type"`
		Amount             float64    `json:"amount" firestore:"amount"`
		CategoryID         string     `json:"categoryId" firestore:"categoryId"`
		PaymentMethodID    string     `json:"paymentMethodId" firestore:"paymentMethodId"`
		Description        *string    `json:"description" firestore:"description"`
		Date               string     `json:"date" firestore:"date"`
		IsRecurring        bool       `json:"isRecurring" firestore:"isRecurring"`
		RecurringFrequency *Frequency `json:"recurringFrequency" firestore:"recurringFrequency"`
		CreatedAt          Timestamp  `json:"createdAt" firestore:"createdAt"`
	}

	TransactionInput struct {
		Type               EntryType  `json:"type"`
		Amount             float64    `json:"amount"`
		CategoryID         string     `json:"categoryId"`
		PaymentMethodID    string     `json:"paymentMethodId"`
		Description        *string    `json:"description"`
		Date               *string    `json:"date"`
		IsRecurring        bool       `json:"isRecurring"`
		RecurringFrequency *Frequency `json:"recurringFrequency"`
	}

	Budget struct {
		ID         string       `json:"id" firestore:"id"`
		UserID     string       `json:"userId" firestore:"userId"`
		CategoryID string       `json:"categoryId" firestore:"categoryId"`
		Amount     float64      `json:"amount" firestore:"amount"`
		Period     BudgetPeriod `json:"period" firestore:"period"`
		CreatedAt  Timestamp    `json:"createdAt" firestore:"createdAt"`
	}

	BudgetInput struct {
		CategoryID string       `json:"categoryId"`
		Amount     float64      `json:"amount"`
		Period     BudgetPeriod `json:"period"`
	}
)

// Input is implemented by every client payload.
type Input interface {
	Validate() error
}

const maxDescriptionLen = 500

func (t PaymentMethodType) Valid() bool {
	switch t {
	case PaymentCash, PaymentBank, PaymentCard:
		return true
	}
	return false
}

func (t EntryType) Valid() bool {
	return t == Expense || t == Income
}

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly:
		return true
	}
	return false
}

func (p BudgetPeriod) Valid() bool {
	return p == PeriodMonthly || p == PeriodWeekly
}

func (p UserProfile) Validate() error {
	if blank(p.UID) {
		return invalid("uid", "is required")
	}
	if blank(p.Email) {
		return invalid("email", "is required")
	}
	if blank(p.Name) {
		return invalid("name", "is required")
	}
	return nil
}

func (in PaymentMethodInput) Validate() error {
	if blank(in.Name) {
		return invalid("name", "is required")
	}
	if blank(in.Icon) {
		return invalid("icon", "is required")
	}
	if in.Type != "" && !in.Type.Valid() {
		return invalid("type", "must be one of cash, bank, card")
	}
	return nil
}

// Kind returns the payment method type, defaulting to cash.
func (in PaymentMethodInput) Kind() PaymentMethodType {
	if in.Type == "" {
		return PaymentCash
	}
	return in.Type
}

func (in CategoryInput) Validate() error {
	if blank(in.Name) {
		return invalid("name", "is required")
	}
	if blank(in.Icon) {
		return invalid("icon", "is required")
	}
	if !in.Type.Valid() {
		return invalid("type", "must be one of expense, income")
	}
	return nil
}

func (in TransactionInput) Validate() error {
	if !in.Type.Valid() {
		return invalid("type", "must be one of expense, income")
	}
	if err := validAmount(in.Amount); err != nil {
		return err
	}
	if blank(in.CategoryID) {
		return invalid("categoryId", "is required")
	}
	if blank(in.PaymentMethodID) {
		return invalid("paymentMethodId", "is required")
	}
	if in.Description != nil && len(*in.Description) > maxDescriptionLen {
		return invalid("description", "is too long (max 500 characters)")
	}
	if in.Date != nil && *in.Date != "" {
		if _, err := ParseDate(*in.Date); err != nil {
			return invalid("date", "must be YYYY-MM-DD or RFC 3339")
		}
	}
	if in.RecurringFrequency != nil && !in.RecurringFrequency.Valid() {
		return invalid("recurringFrequency", "must be one of daily, weekly, monthly")
	}
	return nil
}

func (in BudgetInput) Validate() error {
	if blank(in.CategoryID) {
		return invalid("categoryId", "is required")
	}
	if err := validAmount(in.Amount); err != nil {
		return err
	}
	if !in.Period.Valid() {
		return invalid("period", "must be one of monthly, weekly")
	}
	return nil
}

func validAmount(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalid("amount", "must be a finite number")
	}
	if v < 0 {
		return invalid("amount", "must not be negative")
	}
	return nil
}

// ParseDate accepts the calendar dates sent by clients and the
// timestamps the server stamps on transactions.
// Timestamp is an instant stored as RFC 3339 text, so documents written
// with offset strings such as "2024-05-01T10:00:00.123456+00:00" decode
// unchanged on every backend.
type Timestamp string

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.UTC().Format(time.RFC3339Nano))
}

func (ts Timestamp) IsZero() bool {
	return blank(string(ts))
}

func (ts Timestamp) Time() (time.Time, error) {
	return ParseDate(string(ts))
}

func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
