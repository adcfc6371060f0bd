package api

import (
	"github.com/fatali-fataliyev/budget_planner/internal/ledger"
)

// REQUESTS START:
type SaveUserRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}

type UserLoginRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}

type SetBudgetRequest struct {
	Amount string `json:"amount"` // raw text, "5000"
}

type CreateTransactionRequest struct {
	Name   string `json:"name"`
	Amount string `json:"amount"` // keep as string to allow "-3.20"
}

type SetImageRequest struct {
	URL string `json:"url"`
}

//REQUESTS END:

//RESPONSES:

type UserCreatedResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
	Token   string `json:"token"`
}

type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type BudgetResponse struct {
	IsSet  bool   `json:"is_set"`
	Amount *int64 `json:"amount"`
}

type TransactionCreatedResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type TransactionItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Image  string `json:"image"`
}

type TransactionListResponse struct {
	Transactions []TransactionItem `json:"transactions"`
	TotalSpend   int64             `json:"total_spend"`
}

type SummaryResponse struct {
	Budget     *int64 `json:"budget"`
	TotalSpend int64  `json:"total_spend"`
	Remaining  *int64 `json:"remaining"`
	Count      int    `json:"count"`
}

//RESPONSES END:

func TransactionToHttp(t ledger.Transaction) TransactionItem {
	return TransactionItem{
		ID:     t.ID,
		Name:   t.Name,
		Amount: t.Amount.String(),
		Image:  t.Image,
	}
}

func SummaryToHttp(s ledger.Summary) SummaryResponse {
	resp := SummaryResponse{
		TotalSpend: s.TotalSpend,
		Count:      s.Count,
	}
	if s.HasBudget {
		budget := s.Budget
		remaining := s.Remaining
		resp.Budget = &budget
		resp.Remaining = &remaining
	}
	return resp
}
