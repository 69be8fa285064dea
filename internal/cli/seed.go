package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"quiz-room-service/internal/domain"
	"quiz-room-service/internal/infra/memory"
	"quiz-room-service/internal/infra/postgres"
)

// NewSeedCmd writes rooms into Postgres: the bundled demo room, or every room
// in a YAML rooms file.
func NewSeedCmd(configPath *string) *cobra.Command {
	var roomsFile string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert or replace rooms in Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			rooms := sampleRooms()
			if roomsFile != "" {
				if rooms, err = memory.LoadRoomsFile(roomsFile); err != nil {
					return err
				}
			}

			db, err := openBun(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			writer := postgres.NewRoomWriter(db)
			for _, room := range rooms {
				if err := writer.SaveRoom(cmd.Context(), room); err != nil {
					return err
				}
				log.Info().Str("pin", room.Pin).Str("title", room.Title).Msg("room seeded")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d room(s)\n", len(rooms))
			return nil
		},
	}
	cmd.Flags().StringVar(&roomsFile, "rooms", "", "YAML file with a rooms: list")
	return cmd
}

// sampleRooms is the demo room served when no other source is configured.
func sampleRooms() map[string]domain.Room {
	return map[string]domain.Room{
		"123456": {
			Pin:         "123456",
			Title:       "Demo room",
			OwnerSecret: "letmein",
			Quiz: domain.Quiz{
				Topic: "General knowledge",
				Questions: []domain.Question{
					{
						Text:               "What is 2 + 2?",
						Choices:            [domain.ChoiceCount]string{"3", "4", "5", "22"},
						CorrectChoiceIndex: 1,
						TimerSeconds:       15,
					},
					{
						Text:               "Which planet is known as the red planet?",
						Choices:            [domain.ChoiceCount]string{"Venus", "Jupiter", "Mars", "Mercury"},
						CorrectChoiceIndex: 2,
					},
					{
						Text:               "How many sides does a hexagon have?",
						Choices:            [domain.ChoiceCount]string{"5", "6", "7", "8"},
						CorrectChoiceIndex: 1,
						TimerSeconds:       10,
					},
				},
			},
		},
	}
}
