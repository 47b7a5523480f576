package purchase

import "errors"

var (
	ErrFailedToListPurchases = errors.New("failed to list purchases")
	ErrProviderError         = errors.New("billing provider error")
	ErrMissingAPIKey         = errors.New("billing provider API key is required")
	ErrInvalidEnvironment    = errors.New("invalid billing provider environment")
)
