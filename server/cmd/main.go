package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"skirmish/server"
	"skirmish/server/application"
	"skirmish/server/application/config"
	"skirmish/server/application/replication"
	"skirmish/server/application/world"
	"skirmish/server/domain"
	"skirmish/server/handler"
	"skirmish/utils"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: utils.LogLevel("LOG_LEVEL")}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := utils.GetEnvDefault("ADDR", "localhost")
	port := utils.GetEnvDefault("PORT", "9090")

	level, err := loadLevel(utils.GetEnvDefault("LEVEL", ""))
	if err != nil {
		slog.Error("failed to load level", "err", err)
		os.Exit(1)
	}
	seedStr := utils.GetEnvDefault("SEED", strconv.FormatInt(time.Now().UnixNano(), 10))
	seed, err := strconv.ParseUint(seedStr, 10, 64)
	if err != nil {
		slog.Error("invalid SEED", "value", seedStr)
		os.Exit(1)
	}

	sim, err := application.NewSimulation(application.Options{
		Level:   level,
		Mode:    replication.ModeHost,
		Visuals: application.LogVisuals{Logger: logger.With("component", "visuals")},
		Seed:    seed,
	})
	if err != nil {
		slog.Error("failed to build simulation", "err", err)
		os.Exit(1)
	}
	app, err := application.NewCombatApplication(sim, level.SnapshotInterval)
	if err != nil {
		slog.Error("failed to build application", "err", err)
		os.Exit(1)
	}
	if utils.GetEnvDefault("AUTOPILOT", "") != "" {
		app.SetPilot(world.SlotLocal, application.NewAutoPilot(rand.New(rand.NewPCG(seed, seed+1))))
	}
	// 分割画面の 2 人目は入力レイヤを持たないので AI が操作する
	if utils.GetEnvDefault("SPLIT", "") != "" {
		sim.SetAvatarPresent(world.SlotSplit, true)
		sim.SetAvatarPosition(world.SlotSplit, world.Vec3{X: 2})
		app.SetPilot(world.SlotSplit, application.NewAutoPilot(rand.New(rand.NewPCG(seed+2, seed+3))))
	}

	// PubSub初期化
	pubsub := domain.NewSimplePubSub()

	// デフォルトルーム設定
	roomID := domain.RoomID(utils.GetEnvDefault("ROOM", "default"))
	roomManager := domain.NewSimpleRoomManager(roomID)

	room := domain.NewRoom(roomID, pubsub, app, level.Tick)
	go func() {
		if err := room.Run(ctx); err != nil {
			slog.ErrorContext(ctx, "room error", "err", err)
		}
	}()
	go reportStats(ctx, app, utils.GetEnvDuration("STATS_INTERVAL", 30*time.Second))

	status := func() handler.Status {
		st := app.Published()
		return handler.Status{
			Mode:      replication.ModeHost.String(),
			Connected: st.Connected,
			Entities:  st.Entities,
			Kills:     st.Kills,
			Ticks:     st.Ticks,
		}
	}
	s := server.NewServer(fmt.Sprintf("%s:%s", addr, port), server.Route(pubsub, roomManager, status))

	go func() {
		if err := s.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()
	slog.InfoContext(ctx, "server listening", "addr", addr+":"+port, "level", level.Name, "seed", seed)

	<-ctx.Done()
	slog.InfoContext(ctx, "shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(ctx, "graceful shutdown failed", "error", err)
		if err := s.Close(); err != nil {
			slog.ErrorContext(ctx, "forced close failed", "error", err)
		}
	}
	slog.InfoContext(ctx, "server shutdown complete")
}

// loadLevel は path が空なら既定レベルを返します。
func loadLevel(path string) (*config.Level, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func reportStats(ctx context.Context, app *application.CombatApplication, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := app.Published()
			slog.InfoContext(ctx, "simulation stats",
				"ticks", st.Ticks, "kills", st.Kills, "entities", st.Entities,
				"active", st.Active, "stale", st.Stale, "dropped", st.Dropped, "connected", st.Connected)
		}
	}
}
