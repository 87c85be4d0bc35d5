package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"polymarket-hunter/internal/alert"
	"polymarket-hunter/internal/cooldown"
	"polymarket-hunter/internal/hunter"
	"polymarket-hunter/internal/ledger"
	"polymarket-hunter/internal/market"
	"polymarket-hunter/internal/oracle"
	"polymarket-hunter/internal/polymarket/clob"
	"polymarket-hunter/internal/polymarket/gamma"
	"polymarket-hunter/internal/polymarket/price"
	"polymarket-hunter/internal/scanner"
	"polymarket-hunter/internal/store"
	"polymarket-hunter/internal/strategy"
	"polymarket-hunter/internal/subscription"
)

func main() {
	configPath := flag.String("config", "configs/hunter/config.yaml", "path to config file")
	flag.Parse()

	if err := run(configPath); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "hunter: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath *string) error {
	cfg, err := readConfig(configPath)
	if err != nil {
		return fmt.Errorf("couldn't read config: %w", err)
	}

	log := newLogger(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var trades *store.Store
	if cfg.Database.Host != "" {
		pool, err := store.NewPool(ctx, store.PoolConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Database: cfg.Database.Database,
			PoolSize: cfg.Database.PoolSize,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			return fmt.Errorf("couldn't connect to database: %w", err)
		}
		trades = store.New(pool)
		defer trades.Close()
		if err := trades.EnsureSchema(ctx); err != nil {
			return err
		}
		log.Info("connected to database", "host", cfg.Database.Host)
	} else {
		log.Info("running without database persistence")
	}

	// The venue rejects requests without a browser-ish User-Agent.
	header := http.Header{}
	header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")

	gammaClient := gamma.New(cfg.Platform.GammaURL, header)
	clobClient := clob.New(cfg.Platform.ClobURL)
	binance := oracle.New(cfg.Oracle.BinanceURL)
	notifier := alert.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.APIBase, log)

	markets := market.NewStore()
	cd := cooldown.New(cooldown.DefaultCapacity)

	crypto := newDomain(domainDeps{
		strat:    strategy.NewCrypto(strategyTuning(cfg.Strategies.Crypto), binance, log),
		cfg:      cfg,
		scanCfg:  cfg.Strategies.Crypto,
		ledger:   cfg.Files.CryptoLog,
		markets:  markets,
		cooldown: cd,
		notifier: notifier,
		gamma:    gammaClient,
		trades:   trades,
		log:      log,
	})
	sports := newDomain(domainDeps{
		strat:    strategy.NewSports(strategyTuning(cfg.Strategies.Sports), clobClient, log),
		cfg:      cfg,
		scanCfg:  cfg.Strategies.Sports,
		ledger:   cfg.Files.SportsLog,
		markets:  markets,
		cooldown: cd,
		notifier: notifier,
		gamma:    gammaClient,
		trades:   trades,
		log:      log,
	})

	log.Info("starting hunters")
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return crypto.Run(ctx) })
	g.Go(func() error { return sports.Run(ctx) })
	return g.Wait()
}

type domainDeps struct {
	strat    strategy.Strategy
	cfg      *config
	scanCfg  strategyConfig
	ledger   string
	markets  *market.Store
	cooldown *cooldown.Cache
	notifier alert.Notifier
	gamma    *gamma.Client
	trades   *store.Store
	log      *slog.Logger
}

// newDomain assembles one domain's scanner, subscription manager and
// hunter around the shared state store and cooldown cache.
func newDomain(d domainDeps) *hunter.Hunter {
	sc := scanner.New(d.gamma, d.markets, d.strat, d.trades, d.log)

	// The handler closes over h, assigned below; ticks only start to
	// flow once h.Run calls subs.Start.
	var h *hunter.Hunter
	subs := subscription.New(subscription.Config{
		URL:    d.cfg.Platform.WSURL,
		Domain: d.strat.Domain(),
	}, func(ctx context.Context, tokenID string, p price.Price) {
		h.HandleTick(ctx, tokenID, p)
	}, d.log)

	h = hunter.New(d.strat, sc, subs, d.markets, d.cooldown, d.notifier,
		ledger.New(d.ledger, d.log), d.trades, d.scanCfg.ScanPeriod.Duration(), d.log)
	return h
}

func strategyTuning(s strategyConfig) strategy.Config {
	return strategy.Config{
		TargetTags:        s.TargetTags,
		MinVolume:         s.MinVolume,
		PriceMin:          s.PriceMin,
		PriceMax:          s.PriceMax,
		EndingWithinHours: s.EndingWithinHours,
		ScanPeriod:        s.ScanPeriod.Duration(),
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
