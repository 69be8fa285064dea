package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"quiz-room-service/internal/domain"
)

// RoomRow maps the rooms table for writes through bun.
type RoomRow struct {
	bun.BaseModel `bun:"table:rooms"`

	Pin         string      `bun:"pin,pk"`
	Title       string      `bun:"title,notnull"`
	OwnerSecret string      `bun:"owner_secret,notnull"`
	Quiz        domain.Quiz `bun:"quiz,type:jsonb"`
	CreatedAt   time.Time   `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time   `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// RoomWriter creates or replaces rooms; the running server only reads them.
type RoomWriter struct {
	db *bun.DB
}

func NewRoomWriter(db *bun.DB) *RoomWriter {
	return &RoomWriter{db: db}
}

func (w *RoomWriter) SaveRoom(ctx context.Context, room domain.Room) error {
	row := &RoomRow{
		Pin:         room.Pin,
		Title:       room.Title,
		OwnerSecret: room.OwnerSecret,
		Quiz:        room.Quiz,
		UpdatedAt:   time.Now().UTC(),
	}
	_, err := w.db.NewInsert().
		Model(row).
		On("CONFLICT (pin) DO UPDATE").
		Set("title = EXCLUDED.title").
		Set("owner_secret = EXCLUDED.owner_secret").
		Set("quiz = EXCLUDED.quiz").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save room %s: %w", room.Pin, err)
	}
	return nil
}
