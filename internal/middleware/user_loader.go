package middleware

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/reviewcash/internal/domain"
	"github.com/set-night/reviewcash/internal/service"
)

type ctxKey string

const UserKey ctxKey = "user"

// GetUser extracts the account loaded for the current update.
func GetUser(ctx context.Context) *domain.User {
	u, ok := ctx.Value(UserKey).(*domain.User)
	if !ok {
		return nil
	}
	return u
}

// UserLoader returns middleware that resolves the sender to a marketplace
// account and stores it in the context. Unknown senders are registered on
// first contact.
func UserLoader(accounts *service.AccountService) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			var from *models.User

			if update.Message != nil {
				from = update.Message.From
			} else if update.CallbackQuery != nil {
				from = &update.CallbackQuery.From
			}

			if from == nil {
				next(ctx, b, update)
				return
			}

			user, err := accounts.GetOrCreate(ctx, from.ID, from.Username)
			if err == nil && user != nil {
				ctx = context.WithValue(ctx, UserKey, user)
			}

			next(ctx, b, update)
		}
	}
}
