package purchase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"
	"github.com/google/uuid"
)

// PaddleConfig holds configuration for the Paddle purchase source.
type PaddleConfig struct {
	APIKey      string `env:"PADDLE_API_KEY,required"`
	Environment string `env:"PADDLE_ENVIRONMENT" envDefault:"production"`
}

// CustomerIDFunc maps an internal account ID to the billing provider's
// customer ID. The default mapping uses the account UUID string, which
// assumes the checkout flow stored it as the provider's customer reference.
type CustomerIDFunc func(ctx context.Context, accountID uuid.UUID) (string, error)

// PaddleSource implements Source by reading subscriptions and completed
// one-time transactions straight from the Paddle API. Intended for
// deployments that do not mirror purchase records into local storage;
// pair it with a cache when used on the hot path.
type PaddleSource struct {
	client     *paddle.SDK
	customerID CustomerIDFunc
}

// NewPaddleSource creates a purchase Source backed by the Paddle API.
func NewPaddleSource(config PaddleConfig, customerID CustomerIDFunc) (*PaddleSource, error) {
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	var client *paddle.SDK
	var err error

	switch strings.ToLower(config.Environment) {
	case "sandbox":
		client, err = paddle.NewSandbox(config.APIKey)
	case "production", "":
		client, err = paddle.New(config.APIKey)
	default:
		return nil, errors.Join(ErrInvalidEnvironment, fmt.Errorf("environment %q", config.Environment))
	}
	if err != nil {
		return nil, errors.Join(ErrProviderError, err)
	}

	if customerID == nil {
		customerID = func(_ context.Context, accountID uuid.UUID) (string, error) {
			return accountID.String(), nil
		}
	}

	return &PaddleSource{client: client, customerID: customerID}, nil
}

// ListByAccount returns the account's subscriptions and completed one-time
// transactions as purchase records.
func (s *PaddleSource) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]Purchase, error) {
	customerID, err := s.customerID(ctx, accountID)
	if err != nil {
		return nil, errors.Join(ErrFailedToListPurchases, err)
	}

	var purchases []Purchase

	subs, err := s.client.SubscriptionsClient.ListSubscriptions(ctx, &paddle.ListSubscriptionsRequest{
		CustomerID: []string{customerID},
	})
	if err != nil {
		return nil, errors.Join(ErrFailedToListPurchases, err)
	}
	err = subs.Iter(ctx, func(sub *paddle.Subscription) (bool, error) {
		p := Purchase{
			ID:             sub.ID,
			AccountID:      accountID,
			Type:           TypeSubscription,
			PlanID:         firstSubscriptionPriceID(sub),
			Status:         mapPaddleSubscriptionStatus(string(sub.Status)),
			SubscriptionID: sub.ID,
			CreatedAt:      parsePaddleTime(sub.CreatedAt),
		}
		purchases = append(purchases, p)
		return true, nil
	})
	if err != nil {
		return nil, errors.Join(ErrFailedToListPurchases, err)
	}

	txns, err := s.client.TransactionsClient.ListTransactions(ctx, &paddle.ListTransactionsRequest{
		CustomerID: []string{customerID},
	})
	if err != nil {
		return nil, errors.Join(ErrFailedToListPurchases, err)
	}
	err = txns.Iter(ctx, func(txn *paddle.Transaction) (bool, error) {
		// Transactions attached to a subscription are already represented
		// by the subscription record above.
		if txn.SubscriptionID != nil && *txn.SubscriptionID != "" {
			return true, nil
		}
		if txn.Status != paddle.TransactionStatusCompleted {
			return true, nil
		}
		p := Purchase{
			ID:        txn.ID,
			AccountID: accountID,
			Type:      TypeOneTime,
			PlanID:    firstTransactionPriceID(txn),
			Status:    StatusActive,
			CreatedAt: parsePaddleTime(txn.CreatedAt),
		}
		purchases = append(purchases, p)
		return true, nil
	})
	if err != nil {
		return nil, errors.Join(ErrFailedToListPurchases, err)
	}

	return purchases, nil
}

// mapPaddleSubscriptionStatus maps Paddle subscription statuses onto the
// engine's closed status set.
func mapPaddleSubscriptionStatus(status string) Status {
	switch strings.ToLower(status) {
	case "active", "trialing", "past_due":
		return StatusActive
	case "canceled", "cancelled", "paused":
		return StatusCanceled
	default:
		return StatusExpired
	}
}

func firstSubscriptionPriceID(sub *paddle.Subscription) string {
	for _, item := range sub.Items {
		if item.Price.ID != "" {
			return item.Price.ID
		}
	}
	return ""
}

func firstTransactionPriceID(txn *paddle.Transaction) string {
	for _, item := range txn.Items {
		if item.Price.ID != "" {
			return item.Price.ID
		}
	}
	return ""
}

func parsePaddleTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
