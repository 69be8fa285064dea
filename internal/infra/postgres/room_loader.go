package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-room-service/internal/domain"
)

// RoomLoader loads room rows, with the quiz stored as JSONB, from Postgres.
type RoomLoader struct {
	pool *pgxpool.Pool
}

func NewRoomLoader(pool *pgxpool.Pool) *RoomLoader {
	return &RoomLoader{pool: pool}
}

func (l *RoomLoader) LoadRoom(ctx context.Context, pin string) (domain.Room, error) {
	room := domain.Room{Pin: pin}
	var raw []byte
	err := l.pool.QueryRow(ctx,
		`SELECT title, owner_secret, quiz FROM rooms WHERE pin=$1`, pin,
	).Scan(&room.Title, &room.OwnerSecret, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	if err != nil {
		return domain.Room{}, fmt.Errorf("load room: %w", err)
	}
	if err := json.Unmarshal(raw, &room.Quiz); err != nil {
		return domain.Room{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return room, nil
}
