package subscription

import (
	"database/sql"
	"time"

	"github.com/makkenzo/feedbackhub-api/internal/ierr"
)

// Subscription is a user's billing record. Rows are created lazily on the
// first payment interaction.
type Subscription struct {
	ID                   int64          `db:"id"`
	UserID               string         `db:"user_id"`
	StripeCustomerID     sql.NullString `db:"stripe_customer_id"`
	StripeSubscriptionID sql.NullString `db:"stripe_subscription_id"`
	Subscribed           sql.NullBool   `db:"subscribed"`
	CreatedAt            time.Time      `db:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at"`
}

// Active reports the subscribed flag. An unset flag is an integrity fault,
// not a silent false.
func (s *Subscription) Active() (bool, error) {
	if !s.Subscribed.Valid {
		return false, ierr.Integrity("subscription status is unset for user %s", s.UserID)
	}
	return s.Subscribed.Bool, nil
}
