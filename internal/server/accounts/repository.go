package accounts

import "context"

// Repository persists accounts. GetByID returns common.ErrNotFound for an
// unknown account.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Account, error)
	Create(ctx context.Context, account *Account) error
}
