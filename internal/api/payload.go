package api

import (
	"time"

	"github.com/hance08/paycore/internal/model"
	"github.com/hance08/paycore/internal/service"
	"github.com/hance08/paycore/internal/utils"
	"github.com/shopspring/decimal"
)

type transferRequest struct {
	SourceAccountID  int64           `json:"source_account_id"`
	Amount           decimal.Decimal `json:"amount"`
	Rail             string          `json:"rail"`
	Destination      string          `json:"destination"`
	CounterpartyName string          `json:"counterparty_name"`
	Note             string          `json:"note"`
}

type transferResponse struct {
	TransactionID    string          `json:"transaction_id"`
	Rail             model.Rail      `json:"rail"`
	Amount           decimal.Decimal `json:"amount"`
	SourceAccountID  int64           `json:"source_account_id"`
	Destination      string          `json:"destination"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	CompletedAt      time.Time       `json:"completed_at"`
	Replayed         bool            `json:"replayed"`
}

func newTransferResponse(res *service.TransferResult) transferResponse {
	return transferResponse{
		TransactionID:    res.TransactionID,
		Rail:             res.Rail,
		Amount:           res.Amount,
		SourceAccountID:  res.SourceAccountID,
		Destination:      res.Destination,
		RemainingBalance: res.RemainingBalance,
		CompletedAt:      res.CompletedAt,
		Replayed:         res.Replayed,
	}
}

type sweepRequest struct {
	AsOf   string `json:"as_of"`
	UserID *int64 `json:"user_id"`
}

type sweepFailure struct {
	InstructionID string `json:"instruction_id"`
	Code          string `json:"code"`
	Message       string `json:"message"`
}

type sweepResponse struct {
	AsOf     string         `json:"as_of"`
	Executed int            `json:"executed"`
	Failed   int            `json:"failed"`
	Skipped  int            `json:"skipped"`
	Failures []sweepFailure `json:"failures"`
}

func newSweepResponse(report *service.SweepReport) sweepResponse {
	resp := sweepResponse{
		AsOf:     utils.FormatDate(report.AsOf),
		Executed: report.Executed,
		Failed:   report.Failed,
		Skipped:  report.Skipped,
		Failures: make([]sweepFailure, 0, len(report.Failures)),
	}
	for _, f := range report.Failures {
		resp.Failures = append(resp.Failures, sweepFailure{
			InstructionID: f.InstructionID,
			Code:          string(service.Kind(f.Cause)),
			Message:       service.UserMessage(f.Cause),
		})
	}
	return resp
}

type instructionResponse struct {
	InstructionID     string                  `json:"instruction_id"`
	Name              string                  `json:"name"`
	Status            model.InstructionStatus `json:"status"`
	FromAccount       string                  `json:"from_account"`
	ToAccount         string                  `json:"to_account"`
	Amount            decimal.Decimal         `json:"amount"`
	Frequency         model.Frequency         `json:"frequency"`
	NextExecutionDate string                  `json:"next_execution_date"`
	ExecutionCount    int                     `json:"execution_count"`
	FailureReason     string                  `json:"failure_reason,omitempty"`
}

func newInstructionResponse(si *model.StandingInstruction) instructionResponse {
	return instructionResponse{
		InstructionID:     si.InstructionID,
		Name:              si.Name,
		Status:            si.Status,
		FromAccount:       si.FromAccount,
		ToAccount:         si.ToAccount,
		Amount:            si.Amount,
		Frequency:         si.Frequency,
		NextExecutionDate: utils.FormatDate(si.NextExecutionDate),
		ExecutionCount:    si.ExecutionCount,
		FailureReason:     si.FailureReason,
	}
}

type accountResponse struct {
	ID      int64               `json:"id"`
	Number  string              `json:"number"`
	Type    string              `json:"type"`
	Balance decimal.Decimal     `json:"balance"`
	Status  model.AccountStatus `json:"status"`
}

func newAccountResponse(acc *model.Account) accountResponse {
	return accountResponse{
		ID:      acc.ID,
		Number:  acc.Number,
		Type:    acc.Type,
		Balance: acc.Balance,
		Status:  acc.Status,
	}
}
