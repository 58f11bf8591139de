package account

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

type contextKey string

const accountKey contextKey = "account"

var ErrNoAccount = errors.New("account not found in context")

func CurrentAccount(ctx context.Context) (Account, error) {
	acc, ok := ctx.Value(accountKey).(Account)
	if !ok {
		log.Trace("account not found in context")
		return Account{}, ErrNoAccount
	}
	return acc, nil
}

func WithAccount(ctx context.Context, acc Account) context.Context {
	return context.WithValue(ctx, accountKey, acc)
}
