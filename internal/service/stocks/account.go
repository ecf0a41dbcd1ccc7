package stocks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/LLkaia/family-budget/internal/domain"
	"github.com/LLkaia/family-budget/internal/logging"
)

type CreateAccountRequest struct {
	OwnerID        uuid.UUID
	Name           string
	Currency       string
	OpeningBalance decimal.Decimal
}

// CreateAccount opens a new stock account. The opening balance is seed state
// recorded directly on the account, not a ledger entry.
func (s *Service) CreateAccount(ctx context.Context, req CreateAccountRequest) (*domain.Account, error) {
	log := logging.FromContext(ctx)

	if req.OwnerID == uuid.Nil {
		return nil, fmt.Errorf("CreateAccount: owner: %w", domain.ErrMissingReference)
	}
	if req.Name == "" {
		return nil, fmt.Errorf("CreateAccount: %w", domain.ErrInvalidName)
	}
	if err := domain.ValidateCurrency(req.Currency); err != nil {
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}
	if req.OpeningBalance.IsNegative() {
		return nil, fmt.Errorf("CreateAccount: opening balance: %w", domain.ErrInvalidAmount)
	}

	account := &domain.Account{
		ID:        uuid.New(),
		OwnerID:   req.OwnerID,
		Name:      req.Name,
		Currency:  req.Currency,
		Balance:   domain.RoundMoney(req.OpeningBalance),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}

	log.Info("account created",
		"account_id", account.ID,
		"owner_id", account.OwnerID,
		"currency", account.Currency,
		"balance", account.Balance,
	)

	return account, nil
}

func (s *Service) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetAccount: %w", err)
	}
	return account, nil
}

func (s *Service) ListAccountsByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Account, error) {
	accounts, err := s.accounts.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("ListAccountsByOwner: %w", err)
	}
	return accounts, nil
}
