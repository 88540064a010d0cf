package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/AMICLONE1/powernetpro/internal/apperrors"
	"github.com/AMICLONE1/powernetpro/internal/models"
	"github.com/AMICLONE1/powernetpro/internal/repository"
	"github.com/AMICLONE1/powernetpro/internal/testutil"
)

func TestSubscriptions(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	withTx := func(t *testing.T, tx DBTX, fn func(pgx.Tx, repository.Storage)) {
		testutil.WithTx(tx, t, func(ttx pgx.Tx) {
			fn(ttx, NewStorage(ttx))
		})
	}

	subParams := func(user models.User) repository.CreateSubscriptionParams {
		return repository.CreateSubscriptionParams{
			UserID:         user.ID,
			Project:        "Sunfield-1",
			CapacityKW:     decimal.RequireFromString("3.5"),
			ConsumerNumber: "CN-42",
			Discom:         "MSEDCL",
		}
	}

	t.Run("CreateSubscription", func(t *testing.T) {
		withTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			user, err := storage.User().CreateUser(t.Context(), "subuser", "hashedpassword")
			require.NoError(t, err)

			t.Run("create ok", func(t *testing.T) {
				withTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					sub, err := storage.Subscription().CreateSubscription(t.Context(), subParams(user))

					require.NoError(t, err, "subscription has to be created ok")

					require.NotZero(t, sub.ID)
					require.Equal(t, user.ID, sub.UserID)
					require.Equal(t, "Sunfield-1", sub.Project)
					require.Equal(t, "CN-42", sub.ConsumerNumber)
					require.Equal(t, models.SubscriptionActive, sub.Status, "new subscriptions start active")
					require.True(t, sub.CapacityKW.Equal(decimal.RequireFromString("3.5")))
					require.WithinDuration(t, time.Now(), sub.CreatedAt, time.Second)
				})
			})

			t.Run("create twice", func(t *testing.T) {
				withTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					_, err := storage.Subscription().CreateSubscription(t.Context(), subParams(user))
					require.NoError(t, err)

					_, err = storage.Subscription().CreateSubscription(t.Context(), subParams(user))

					require.Error(t, err, "same consumer number and discom must fail")
					require.ErrorIs(t, err, apperrors.ErrSubscriptionExists, "should return well known error")
				})
			})

			t.Run("same consumer at another discom ok", func(t *testing.T) {
				withTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					_, err := storage.Subscription().CreateSubscription(t.Context(), subParams(user))
					require.NoError(t, err)

					other := subParams(user)
					other.Discom = "BESCOM"

					_, err = storage.Subscription().CreateSubscription(t.Context(), other)
					require.NoError(t, err)
				})
			})
		})
	})

	t.Run("ListActive", func(t *testing.T) {
		withTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			user, err := storage.User().CreateUser(t.Context(), "activeuser", "hashedpassword")
			require.NoError(t, err)

			_, err = storage.Subscription().CreateSubscription(t.Context(), subParams(user))
			require.NoError(t, err)

			subs, err := storage.Subscription().ListActive(t.Context())

			require.NoError(t, err)
			require.Len(t, subs, 1)
			require.Equal(t, "CN-42", subs[0].ConsumerNumber)
		})
	})

	t.Run("ListSubscriptions", func(t *testing.T) {
		withTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			user, err := storage.User().CreateUser(t.Context(), "listsubuser", "hashedpassword")
			require.NoError(t, err)

			first := subParams(user)
			second := subParams(user)
			second.ConsumerNumber = "CN-43"

			_, err = storage.Subscription().CreateSubscription(t.Context(), first)
			require.NoError(t, err)
			_, err = storage.Subscription().CreateSubscription(t.Context(), second)
			require.NoError(t, err)

			subs, err := storage.Subscription().ListSubscriptions(t.Context(), user.ID)

			require.NoError(t, err)
			require.Len(t, subs, 2)
			require.Equal(t, "CN-43", subs[0].ConsumerNumber, "newest first")
		})
	})
}
