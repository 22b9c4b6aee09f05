package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"Kinolog/apperr"
	"Kinolog/models"

	"golang.org/x/crypto/bcrypt"
)

type Auth struct {
	db *sql.DB
}

func NewAuth(db *sql.DB) *Auth {
	return &Auth{db: db}
}

// NormalizeUsername lowercases a username and strips whitespace and a
// leading "@", so lookups stay case-insensitive.
func NormalizeUsername(username string) string {
	u := strings.TrimSpace(username)
	u = strings.TrimPrefix(u, "@")
	return strings.ToLower(u)
}

func (a *Auth) AuthenticateAdmin(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := a.db.QueryRowContext(ctx,
		"SELECT id, username, email, password_hash, is_admin, created_at, updated_at FROM users WHERE username = $1",
		username,
	).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("invalid credentials")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	return &user, nil
}

// AuthenticateContributor checks the plaintext credential (explicit product
// requirement) and rejects deactivated accounts.
func (a *Auth) AuthenticateContributor(ctx context.Context, username, password string) (*models.Contributor, error) {
	c, err := a.getContributorByUsername(ctx, NormalizeUsername(username))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("invalid credentials")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !c.Active || c.Password != password {
		return nil, fmt.Errorf("invalid credentials")
	}
	return c, nil
}

func (a *Auth) getContributorByUsername(ctx context.Context, username string) (*models.Contributor, error) {
	var c models.Contributor
	err := a.db.QueryRowContext(ctx,
		"SELECT id, username, password, display_name, active, seen_guide, created_at FROM contributors WHERE username = $1",
		username,
	).Scan(&c.ID, &c.Username, &c.Password, &c.DisplayName, &c.Active, &c.SeenGuide, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (a *Auth) GetContributorByID(ctx context.Context, id int) (*models.Contributor, error) {
	var c models.Contributor
	err := a.db.QueryRowContext(ctx,
		"SELECT id, username, password, display_name, active, seen_guide, created_at FROM contributors WHERE id = $1",
		id,
	).Scan(&c.ID, &c.Username, &c.Password, &c.DisplayName, &c.Active, &c.SeenGuide, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("contributor", id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &c, nil
}

func (a *Auth) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	err := a.db.QueryRowContext(ctx,
		"SELECT id, username, email, password_hash, is_admin, created_at, updated_at FROM users WHERE id = $1",
		userID,
	).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

// CreateContributor registers a contributor account. Admin-only at the HTTP
// boundary.
func (a *Auth) CreateContributor(ctx context.Context, username, password, displayName string) (*models.Contributor, error) {
	username = NormalizeUsername(username)
	if username == "" {
		return nil, apperr.Validation("username is required")
	}
	if password == "" {
		return nil, apperr.Validation("password is required")
	}

	var count int
	if err := a.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM contributors WHERE username = $1", username).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to check for existing contributor: %w", err)
	}
	if count > 0 {
		return nil, apperr.Validation("username %q is already taken", username)
	}

	c := &models.Contributor{
		Username:    username,
		Password:    password,
		DisplayName: displayName,
		Active:      true,
	}
	err := a.db.QueryRowContext(ctx, `
		INSERT INTO contributors (username, password, display_name, active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING id, created_at
	`, username, password, displayName).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create contributor: %w", err)
	}
	return c, nil
}

// DeactivateContributor blocks future logins. Existing ledger entries keep
// their denormalized username.
func (a *Auth) DeactivateContributor(ctx context.Context, id int) error {
	res, err := a.db.ExecContext(ctx, "UPDATE contributors SET active = FALSE WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to deactivate contributor %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("contributor", id)
	}
	return nil
}

// MarkGuideSeen flips the one-time onboarding flag.
func (a *Auth) MarkGuideSeen(ctx context.Context, id int) error {
	res, err := a.db.ExecContext(ctx, "UPDATE contributors SET seen_guide = TRUE WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to mark guide seen for contributor %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("contributor", id)
	}
	return nil
}
