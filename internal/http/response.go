package http

import (
	"encoding/json"

	"rewards/internal/core"
)

// TransactionRewardResponse is one row of a summary's breakdown.
type TransactionRewardResponse struct {
	TransactionID           int64       `json:"transactionId"`
	TransactionAmount       json.Number `json:"transactionAmount"`
	TransactionDate         string      `json:"transactionDate"`
	TransactionRewardPoints int64       `json:"transactionRewardPoints"`
}

// CustomerRewardResponse is the wire form of a customer's reward summary.
// transactionAmount keeps the stored precision and is emitted as a JSON number.
type CustomerRewardResponse struct {
	CustomerID        int64                       `json:"customerId"`
	CustomerName      string                      `json:"customerName"`
	TotalRewardPoints int64                       `json:"totalRewardPoints"`
	MonthlyRewards    map[string]int64            `json:"monthlyRewards"`
	Transactions      []TransactionRewardResponse `json:"transactions"`
}

func NewCustomerRewardResponse(s core.CustomerRewardSummary) CustomerRewardResponse {
	resp := CustomerRewardResponse{
		CustomerID:        s.CustomerID,
		CustomerName:      s.CustomerName,
		TotalRewardPoints: s.TotalPoints,
		MonthlyRewards:    s.MonthlyRewards,
		Transactions:      make([]TransactionRewardResponse, 0, len(s.Transactions)),
	}
	if resp.MonthlyRewards == nil {
		resp.MonthlyRewards = map[string]int64{}
	}
	for _, tr := range s.Transactions {
		resp.Transactions = append(resp.Transactions, TransactionRewardResponse{
			TransactionID:           tr.TransactionID,
			TransactionAmount:       json.Number(tr.Amount.String()),
			TransactionDate:         tr.Date.String(),
			TransactionRewardPoints: tr.Points,
		})
	}
	return resp
}

func NewCustomerRewardResponses(summaries []core.CustomerRewardSummary) []CustomerRewardResponse {
	out := make([]CustomerRewardResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, NewCustomerRewardResponse(s))
	}
	return out
}
