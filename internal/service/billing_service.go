package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	config "github.com/scribely/content-api/configs"
	"github.com/scribely/content-api/internal/models"
	"github.com/scribely/content-api/internal/repository"
	"github.com/scribely/content-api/internal/transfer"
)

type BillingService interface {
	HandlePurchase(ctx context.Context, payload *transfer.CreditPurchaseEvent) error
}

type billingService struct {
	cfg config.Config
	u   repository.UserRepository
	cs  CreditService
}

func NewBillingService(cfg config.Config, u repository.UserRepository, cs CreditService) BillingService {
	return &billingService{
		cfg: cfg,
		u:   u,
		cs:  cs,
	}
}

// HandlePurchase grants the purchased credit pack. The customer is keyed
// by email; a purchase from an address with no account creates one, so
// the credits are waiting when the user first signs in.
func (s *billingService) HandlePurchase(ctx context.Context, payload *transfer.CreditPurchaseEvent) error {
	if payload.EventType != "payment.succeeded" {
		return nil
	}

	credits, err := strconv.ParseInt(payload.Object.Product.Metadata.Credits, 10, 64)
	if err != nil || credits <= 0 {
		slog.Info("purchase event without a usable credit amount", "product_id", payload.Object.Product.ID)
		return fmt.Errorf("invalid credit amount in purchase event")
	}

	customerEmail := payload.Object.Customer.Email

	user, isExist, err := s.u.GetByEmail(ctx, customerEmail)
	if err != nil {
		return fmt.Errorf("fetching user by email failed: %w", err)
	}

	var userID int64
	if !isExist {
		userID, err = s.u.Create(ctx, nil, &models.User{
			Email: customerEmail,
			Name:  payload.Object.Customer.Name,
		})
		if err != nil {
			return err
		}
	} else {
		userID = user.ID
	}

	reason := fmt.Sprintf("credit pack purchase %s", payload.Object.LastTransactionID)
	if _, err := s.cs.Credit(ctx, userID, credits, reason); err != nil {
		return err
	}

	return nil
}
