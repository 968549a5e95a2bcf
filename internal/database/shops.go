package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Tier constants for shop subscription levels.
const (
	TierFree       = "free"
	TierTeam       = "team"
	TierEnterprise = "enterprise"
)

// User represents a technician account.
type User struct {
	ID        uuid.UUID
	AuthID    string
	Email     string
	CreatedAt time.Time
}

// Shop represents a repair shop subscribing to the service.
type Shop struct {
	ID                   uuid.UUID
	Name                 string
	OwnerUserID          uuid.UUID
	Tier                 string
	StripeCustomerID     *string
	StripeSubscriptionID *string
	CreatedAt            time.Time
}

// CreateUser creates a new user.
func (db *DB) CreateUser(ctx context.Context, authID, email string) (*User, error) {
	var user User
	err := db.pool.QueryRow(ctx,
		`INSERT INTO users (auth_id, email)
		 VALUES ($1, $2)
		 RETURNING id, auth_id, email, created_at`,
		authID, email,
	).Scan(&user.ID, &user.AuthID, &user.Email, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByAuthID retrieves a user by their auth provider subject ID.
func (db *DB) GetUserByAuthID(ctx context.Context, authID string) (*User, error) {
	var user User
	err := db.pool.QueryRow(ctx,
		`SELECT id, auth_id, email, created_at
		 FROM users WHERE auth_id = $1`,
		authID,
	).Scan(&user.ID, &user.AuthID, &user.Email, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetOrCreateUser returns the user with the given auth ID, creating one if
// necessary.
func (db *DB) GetOrCreateUser(ctx context.Context, authID, email string) (*User, error) {
	user, err := db.GetUserByAuthID(ctx, authID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}
	return db.CreateUser(ctx, authID, email)
}

// DeleteUser deletes a user by ID.
func (db *DB) DeleteUser(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`DELETE FROM users WHERE id = $1`,
		id,
	)
	return err
}

// CreateShop creates a new shop owned by the given user.
func (db *DB) CreateShop(ctx context.Context, name string, ownerUserID uuid.UUID) (*Shop, error) {
	var shop Shop
	err := db.pool.QueryRow(ctx,
		`INSERT INTO shops (name, owner_user_id)
		 VALUES ($1, $2)
		 RETURNING id, name, owner_user_id, tier, stripe_customer_id, stripe_subscription_id, created_at`,
		name, ownerUserID,
	).Scan(&shop.ID, &shop.Name, &shop.OwnerUserID, &shop.Tier,
		&shop.StripeCustomerID, &shop.StripeSubscriptionID, &shop.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

// GetShopByID retrieves a shop by ID.
func (db *DB) GetShopByID(ctx context.Context, id uuid.UUID) (*Shop, error) {
	var shop Shop
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, owner_user_id, tier, stripe_customer_id, stripe_subscription_id, created_at
		 FROM shops WHERE id = $1`,
		id,
	).Scan(&shop.ID, &shop.Name, &shop.OwnerUserID, &shop.Tier,
		&shop.StripeCustomerID, &shop.StripeSubscriptionID, &shop.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

// GetShopByStripeCustomer retrieves a shop by its Stripe customer ID.
func (db *DB) GetShopByStripeCustomer(ctx context.Context, customerID string) (*Shop, error) {
	var shop Shop
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, owner_user_id, tier, stripe_customer_id, stripe_subscription_id, created_at
		 FROM shops WHERE stripe_customer_id = $1`,
		customerID,
	).Scan(&shop.ID, &shop.Name, &shop.OwnerUserID, &shop.Tier,
		&shop.StripeCustomerID, &shop.StripeSubscriptionID, &shop.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

// ListUserShops returns all shops owned by a user.
func (db *DB) ListUserShops(ctx context.Context, userID uuid.UUID) ([]Shop, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, name, owner_user_id, tier, stripe_customer_id, stripe_subscription_id, created_at
		 FROM shops WHERE owner_user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shops []Shop
	for rows.Next() {
		var s Shop
		if err := rows.Scan(&s.ID, &s.Name, &s.OwnerUserID, &s.Tier,
			&s.StripeCustomerID, &s.StripeSubscriptionID, &s.CreatedAt); err != nil {
			return nil, err
		}
		shops = append(shops, s)
	}
	return shops, rows.Err()
}

// UpdateShopStripe updates Stripe identifiers and tier after a subscription
// change.
func (db *DB) UpdateShopStripe(ctx context.Context, id uuid.UUID, customerID, subscriptionID, tier string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE shops SET stripe_customer_id = $1, stripe_subscription_id = $2, tier = $3 WHERE id = $4`,
		customerID, subscriptionID, tier, id,
	)
	return err
}

// UpdateShopTier updates the subscription tier.
func (db *DB) UpdateShopTier(ctx context.Context, id uuid.UUID, tier string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE shops SET tier = $1 WHERE id = $2`,
		tier, id,
	)
	return err
}

// DeleteShop deletes a shop by ID.
func (db *DB) DeleteShop(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`DELETE FROM shops WHERE id = $1`,
		id,
	)
	return err
}
