package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"golang.org/x/sync/errgroup"

	"skirmish/server/application"
	"skirmish/server/application/config"
	"skirmish/server/application/replication"
	"skirmish/server/domain"
	"skirmish/utils"
)

const (
	reconnectDelay = 2 * time.Second
	maxFrameSize   = domain.HeaderSize + domain.PayloadHeaderSize + domain.MaxBodySize
)

type peerConfig struct {
	hostURL   string
	room      domain.RoomID
	level     *config.Level
	seed      uint64
	autopilot bool
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: utils.LogLevel("LOG_LEVEL")}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := peerConfig{
		hostURL:   utils.GetEnvDefault("HOST_URL", "ws://localhost:9090/ws"),
		room:      domain.RoomID(utils.GetEnvDefault("ROOM", "")),
		autopilot: utils.GetEnvDefault("AUTOPILOT", "1") != "",
	}
	var err error
	if path := utils.GetEnvDefault("LEVEL", ""); path != "" {
		cfg.level, err = config.Load(path)
	} else {
		cfg.level = config.Default()
	}
	if err != nil {
		slog.Error("failed to load level", "err", err)
		os.Exit(1)
	}
	seedStr := utils.GetEnvDefault("SEED", strconv.FormatInt(time.Now().UnixNano(), 10))
	cfg.seed, err = strconv.ParseUint(seedStr, 10, 64)
	if err != nil {
		slog.Error("invalid SEED", "value", seedStr)
		os.Exit(1)
	}
	peerCountStr := utils.GetEnvDefault("PEER_COUNT", "1")
	peerCount, err := strconv.Atoi(peerCountStr)
	if err != nil || peerCount < 1 {
		slog.Error("invalid PEER_COUNT", "value", peerCountStr)
		os.Exit(1)
	}

	slog.Info("starting peers", "count", peerCount, "host", cfg.hostURL)

	var wg sync.WaitGroup
	for i := range peerCount {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runPeer(ctx, cfg, id)
		}(i)
	}

	wg.Wait()
	slog.Info("all peers stopped")
}

// runPeer は切断されても同じシミュレーションのまま再接続します。再参加時はスナップショットで置き換わります。
func runPeer(ctx context.Context, cfg peerConfig, id int) {
	logger := slog.With("peerID", id)
	seed := cfg.seed + uint64(id)

	sim, err := application.NewSimulation(application.Options{
		Level:   cfg.level,
		Mode:    replication.ModeClient,
		Visuals: application.LogVisuals{Logger: logger},
		Seed:    seed,
	})
	if err != nil {
		logger.Error("failed to build simulation", "err", err)
		return
	}
	link, err := application.NewPeerLink(sim, cfg.room)
	if err != nil {
		logger.Error("failed to build peer link", "err", err)
		return
	}
	if cfg.autopilot {
		link.SetPilot(application.NewAutoPilot(rand.New(rand.NewPCG(seed, seed+1))))
	}

	for {
		if ctx.Err() != nil {
			st := sim.Stats()
			logger.Info("peer stopped", "ticks", st.Ticks, "stale", st.Stale, "entities", st.Entities)
			return
		}
		err := peerSession(ctx, cfg.hostURL, link, cfg.level.Tick, logger)
		link.Disconnect()
		if err != nil && ctx.Err() == nil {
			logger.Warn("peer session ended, reconnecting", "err", err)
			select {
			case <-ctx.Done():
			case <-time.After(reconnectDelay):
			}
		}
	}
}

func peerSession(ctx context.Context, hostURL string, link *application.PeerLink, tick time.Duration, logger *slog.Logger) error {
	conn, _, err := websocket.Dial(ctx, hostURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.CloseNow()
	conn.SetReadLimit(maxFrameSize)

	logger.Info("connected")

	g, gctx := errgroup.WithContext(ctx)
	frames := make(chan []byte, 256)

	// 受信ループ
	g.Go(func() error {
		defer close(frames)
		for {
			_, data, err := conn.Read(gctx)
			if err != nil {
				return fmt.Errorf("read: %w", err)
			}
			select {
			case frames <- data:
			case <-gctx.Done():
				return nil
			}
		}
	})

	// シミュレーションループ。link はこのゴルーチンだけが触る
	g.Go(func() error {
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		write := func(data []byte) error {
			if err := conn.Write(gctx, websocket.MessageBinary, data); err != nil {
				return fmt.Errorf("write: %w", err)
			}
			return nil
		}
		for {
			select {
			case <-gctx.Done():
				conn.Close(websocket.StatusNormalClosure, "shutdown")
				return nil
			case data, ok := <-frames:
				if !ok {
					return nil
				}
				replies, err := link.HandleFrame(data)
				if err != nil {
					logger.Debug("frame dropped", "err", err)
					continue
				}
				for _, r := range replies {
					if err := write(r); err != nil {
						return err
					}
				}
			case <-ticker.C:
				for _, out := range link.Tick() {
					if err := write(out); err != nil {
						return err
					}
				}
			}
		}
	})

	return g.Wait()
}
