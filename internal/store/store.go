package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/moontide/werebot/internal/game"
)

// SQLiteStore persists rooms, archives and profiles as JSON snapshots. The
// engine's in-memory state is authoritative; each mutating command writes
// through here before it returns.
type SQLiteStore struct {
	db *sql.DB
}

func New(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) PutRoom(ctx context.Context, r *game.Room) error {
	state, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding room %s: %w", r.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO rooms (id, group_id, phase, state)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			group_id = excluded.group_id,
			phase = excluded.phase,
			state = excluded.state,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
	`, r.ID, r.GroupID, string(r.Phase), string(state))
	return err
}

func (s *SQLiteStore) GetRoom(ctx context.Context, id string) (*game.Room, error) {
	var state string
	err := s.db.QueryRowContext(ctx, `
		SELECT state FROM rooms WHERE id = ?
	`, id).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, game.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeRoom(state)
}

func (s *SQLiteStore) DeleteRoom(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) ListRooms(ctx context.Context) ([]*game.Room, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT state FROM rooms`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []*game.Room
	for rows.Next() {
		var state string
		if err := rows.Scan(&state); err != nil {
			return nil, err
		}
		r, err := decodeRoom(state)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

// ArchiveRoom moves the finished room into the archive table and drops the
// live record, in one transaction. Re-archiving the same code is a no-op.
func (s *SQLiteStore) ArchiveRoom(ctx context.Context, r *game.Room) error {
	state, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding room %s: %w", r.ID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO archives (code, room_id, winner, state)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (code) DO NOTHING
	`, r.ArchiveCode, r.ID, r.Winner, string(state)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, r.ID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetArchive(ctx context.Context, code string) (*game.Room, error) {
	var state string
	err := s.db.QueryRowContext(ctx, `
		SELECT state FROM archives WHERE code = ?
	`, code).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, game.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeRoom(state)
}

func (s *SQLiteStore) GetProfile(ctx context.Context, playerID string) (*game.Profile, error) {
	var state string
	err := s.db.QueryRowContext(ctx, `
		SELECT state FROM profiles WHERE player_id = ?
	`, playerID).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, game.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var p game.Profile
	if err := json.Unmarshal([]byte(state), &p); err != nil {
		return nil, fmt.Errorf("decoding profile %s: %w", playerID, err)
	}
	return &p, nil
}

func (s *SQLiteStore) PutProfile(ctx context.Context, p *game.Profile) error {
	state, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding profile %s: %w", p.PlayerID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (player_id, state)
		VALUES (?, ?)
		ON CONFLICT (player_id) DO UPDATE SET
			state = excluded.state,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
	`, p.PlayerID, string(state))
	return err
}

func decodeRoom(state string) (*game.Room, error) {
	var r game.Room
	if err := json.Unmarshal([]byte(state), &r); err != nil {
		return nil, fmt.Errorf("decoding room snapshot: %w", err)
	}
	return &r, nil
}

// ArchiveSummary is one row of the admin archive listing.
type ArchiveSummary struct {
	Code       string `json:"code"`
	RoomID     string `json:"roomId"`
	Winner     string `json:"winner"`
	ArchivedAt string `json:"archivedAt"`
}

// ListArchives returns finished games, newest first.
func (s *SQLiteStore) ListArchives(ctx context.Context, limit int) ([]ArchiveSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, room_id, winner, archived_at
		FROM archives
		ORDER BY archived_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ArchiveSummary
	for rows.Next() {
		var a ArchiveSummary
		if err := rows.Scan(&a.Code, &a.RoomID, &a.Winner, &a.ArchivedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
