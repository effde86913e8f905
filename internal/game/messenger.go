package game

import "context"

// Messenger delivers engine output. Group broadcasts go to the room's
// originating chat; whispers must reach only the targeted identity (seer and
// spiritualist results, witch candidate lists, role briefings).
type Messenger interface {
	Broadcast(ctx context.Context, groupID, text string) error
	Whisper(ctx context.Context, playerID, text string) error
}
