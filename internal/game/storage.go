package game

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Store lookups for unknown keys.
var ErrNotFound = errors.New("not found")

// Store is the durable snapshot contract. Live rooms, archived games and
// player profiles live in separate namespaces; the concrete engine behind
// them is an implementation choice.
type Store interface {
	PutRoom(ctx context.Context, r *Room) error
	GetRoom(ctx context.Context, id string) (*Room, error)
	DeleteRoom(ctx context.Context, id string) error
	ListRooms(ctx context.Context) ([]*Room, error)

	// ArchiveRoom moves the room's snapshot into the archived namespace
	// under r.ArchiveCode and removes the live record.
	ArchiveRoom(ctx context.Context, r *Room) error
	GetArchive(ctx context.Context, code string) (*Room, error)

	GetProfile(ctx context.Context, playerID string) (*Profile, error)
	PutProfile(ctx context.Context, p *Profile) error
}
