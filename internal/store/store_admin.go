package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/moontide/werebot/internal/game"
)

type AdminSession struct {
	AdminID string
	Email   string
}

func (s *SQLiteStore) AdminByEmail(ctx context.Context, email string) (id, passwordHash string, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT id, password_hash FROM admins WHERE email = ?
	`, email).Scan(&id, &passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", game.ErrNotFound
	}
	return id, passwordHash, err
}

// EnsureAdmin seeds the admin account on first boot; an existing email is
// left untouched.
func (s *SQLiteStore) EnsureAdmin(ctx context.Context, email, passwordHash string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admins (email, password_hash)
		VALUES (?, ?)
		ON CONFLICT (email) DO NOTHING
	`, email, passwordHash)
	return err
}

func (s *SQLiteStore) CreateAdminSession(ctx context.Context, adminID string) (string, error) {
	var sessionID string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO admin_sessions (admin_id)
		VALUES (?)
		RETURNING id
	`, adminID).Scan(&sessionID)
	return sessionID, err
}

func (s *SQLiteStore) AdminFromSession(ctx context.Context, sessionID string) (AdminSession, error) {
	var sess AdminSession
	err := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.email
		FROM admin_sessions s
		JOIN admins a ON a.id = s.admin_id
		WHERE s.id = ?
	`, sessionID).Scan(&sess.AdminID, &sess.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return AdminSession{}, game.ErrNotFound
	}
	return sess, err
}

func (s *SQLiteStore) DeleteAdminSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE id = ?`, sessionID)
	return err
}
