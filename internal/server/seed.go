package server

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/moontide/werebot/internal/store"
)

// SeedAdmin creates the operator account from configuration on first boot.
// Idempotent: an existing account with the same email is left as is.
func SeedAdmin(ctx context.Context, logger *slog.Logger, st *store.SQLiteStore, email, password string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := st.EnsureAdmin(ctx, email, string(hash)); err != nil {
		return err
	}
	logger.Info("admin account ensured", "email", email)
	return nil
}
