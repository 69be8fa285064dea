package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"quiz-room-service/internal/app"
	"quiz-room-service/internal/config"
	"quiz-room-service/internal/infra/memory"
	pgloader "quiz-room-service/internal/infra/postgres"
	rediscache "quiz-room-service/internal/infra/redis"
	transport "quiz-room-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz room server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return err
		}
	}
	redisTTL := config.Duration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	loader, err := roomLoader(cfg, pool)
	if err != nil {
		return err
	}

	roomTTL := config.Duration(cfg.Rooms.TTL, 30*time.Second)
	var catalog app.RoomCatalog
	var games app.GameRepository
	if redisClient != nil {
		catalog = rediscache.NewRoomRepository(redisClient, loader, roomTTL)
		games = rediscache.NewGameStore(redisClient, redisTTL)
	} else {
		catalog = memory.NewRoomRepository(loader, roomTTL)
		games = memory.NewGameStore()
	}

	engine := app.NewEngine(catalog, games, app.NewRegistry(), nil, timing(cfg))
	defer engine.Shutdown()

	router := httprouter.New()
	transport.NewWSHandler(engine).Register(router)

	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", finalPort).
			Bool("redis", redisClient != nil).
			Bool("postgres", pool != nil).
			Msg("starting quiz room server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		log.Info().Msg("shutting down server...")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server...")
	case err := <-errs:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// roomLoader picks the room source: Postgres when configured, else a YAML
// rooms file, else the bundled demo room.
func roomLoader(cfg config.Config, pool *pgxpool.Pool) (memory.RoomLoader, error) {
	if pool != nil {
		return pgloader.NewRoomLoader(pool), nil
	}
	if cfg.Rooms.File != "" {
		rooms, err := memory.LoadRoomsFile(cfg.Rooms.File)
		if err != nil {
			return nil, err
		}
		log.Info().Str("file", cfg.Rooms.File).Int("rooms", len(rooms)).Msg("loaded rooms file")
		return memory.NewStaticRoomLoader(rooms), nil
	}
	log.Warn().Msg("no room source configured, serving demo room 123456")
	return memory.NewStaticRoomLoader(sampleRooms()), nil
}

func timing(cfg config.Config) app.Timing {
	def := app.DefaultTiming()
	t := app.Timing{
		StartDelay:      config.Duration(cfg.Game.StartDelay, def.StartDelay),
		Intermission:    config.Duration(cfg.Game.Intermission, def.Intermission),
		Grace:           config.Duration(cfg.Game.Grace, def.Grace),
		MinQuestion:     config.Duration(cfg.Game.MinQuestion, def.MinQuestion),
		MaxQuestion:     config.Duration(cfg.Game.MaxQuestion, def.MaxQuestion),
		DefaultQuestion: config.Duration(cfg.Game.DefaultQuestion, def.DefaultQuestion),
		NameMaxLength:   cfg.Game.NameMaxLength,
		NameProbes:      cfg.Game.NameProbes,
	}
	if t.NameMaxLength <= 0 {
		t.NameMaxLength = def.NameMaxLength
	}
	if t.NameProbes <= 0 {
		t.NameProbes = def.NameProbes
	}
	return t
}
