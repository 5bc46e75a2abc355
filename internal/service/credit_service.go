package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/scribely/content-api/internal/models"
	"github.com/scribely/content-api/internal/repository"
)

const creditHistoryPageSize = 20

type CreditService interface {
	Balance(ctx context.Context, userID int64) (int64, error)
	Debit(ctx context.Context, userID, amount int64, reason string) (int64, error)
	Credit(ctx context.Context, userID, amount int64, reason string) (int64, error)
	History(ctx context.Context, userID int64, page int) ([]*models.CreditTransaction, error)
}

type creditService struct {
	cr repository.CreditRepository
}

func NewCreditService(cr repository.CreditRepository) CreditService {
	return &creditService{cr: cr}
}

func (s *creditService) Balance(ctx context.Context, userID int64) (int64, error) {
	return s.cr.Balance(ctx, userID)
}

func (s *creditService) Debit(ctx context.Context, userID, amount int64, reason string) (int64, error) {
	if amount <= 0 {
		err := errors.New("debit amount must be positive")
		slog.Info(err.Error())
		return 0, err
	}

	balance, err := s.cr.Debit(ctx, userID, amount, reason)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return 0, ErrInsufficientCredits
		}
		return 0, err
	}
	return balance, nil
}

func (s *creditService) Credit(ctx context.Context, userID, amount int64, reason string) (int64, error) {
	if amount <= 0 {
		err := errors.New("credit amount must be positive")
		slog.Info(err.Error())
		return 0, err
	}
	return s.cr.Credit(ctx, userID, amount, reason)
}

func (s *creditService) History(ctx context.Context, userID int64, page int) ([]*models.CreditTransaction, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * creditHistoryPageSize
	return s.cr.ListByUserID(ctx, userID, creditHistoryPageSize, offset)
}
