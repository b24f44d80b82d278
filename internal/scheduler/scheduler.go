package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"StockWatch/internal/calculator"
	"StockWatch/internal/collector"
	"StockWatch/internal/favorites"
	"StockWatch/internal/notifier"
	"StockWatch/internal/strategy"
)

// rangeWindow is the number of candles the digest range covers.
const rangeWindow = 20

// Sender delivers a formatted message.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the watchlist digest on a cron and answers chat commands.
type Scheduler struct {
	Cron        *cron.Cron
	Collector   *collector.Collector
	Analyzer    *strategy.Analyzer
	Favorites   favorites.Store
	Notifier    Sender
	HistoryDays int
	Ctx         context.Context
	now         func() time.Time
	log         zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, an *strategy.Analyzer, store favorites.Store, sender Sender, historyDays int, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:        cron.New(cron.WithSeconds()),
		Collector:   col,
		Analyzer:    an,
		Favorites:   store,
		Notifier:    sender,
		HistoryDays: historyDays,
		Ctx:         ctx,
		now:         time.Now,
		log:         log,
	}
}

// RegisterDigest schedules the watchlist digest.
func (s *Scheduler) RegisterDigest(digestCron string) error {
	if _, err := s.Cron.AddFunc(digestCron, s.digestTask); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running digest to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunDigestNow executes the digest immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunDigestNow() {
	s.digestTask()
}

func (s *Scheduler) digestTask() {
	s.log.Info().Msg("running watchlist digest")
	text, err := s.BuildDigest(s.Ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("build digest")
		s.trySend(fmt.Sprintf("❌ 自选股日报生成失败: %v", err))
		return
	}
	s.trySend(text)
}

// BuildDigest fetches, analyzes and formats every favorite. A failing
// ticker is reported inline and does not abort the digest.
func (s *Scheduler) BuildDigest(ctx context.Context) (string, error) {
	list, err := s.Favorites.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list favorites: %w", err)
	}

	items := make([]notifier.DigestItem, 0, len(list))
	for _, f := range list {
		item := notifier.DigestItem{Entry: f}
		q, history, err := s.Collector.Snapshot(ctx, f.Code, s.HistoryDays)
		if err != nil {
			s.log.Warn().Err(err).Str("code", f.Code).Msg("digest quote failed")
			item.Err = err
			items = append(items, item)
			continue
		}
		item.Quote = q
		item.Analysis = s.Analyzer.Analyze(ctx, q, history)
		if high, low, err := calculator.PriceRange(history, rangeWindow); err == nil {
			item.High, item.Low = high, low
			item.Position = calculator.RangePosition(q.Price, high, low)
		}
		items = append(items, item)
	}
	return notifier.FormatDigest(items, s.now()), nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	// Strip the "@botname" suffix Telegram appends in group chats.
	cmd, _, _ := strings.Cut(fields[0], "@")

	switch cmd {
	case "/watchlist", "自选":
		list, err := s.Favorites.List(ctx)
		if err != nil {
			return fmt.Sprintf("❌ 读取自选列表失败: %v", err)
		}
		return notifier.FormatWatchlist(list)
	case "/digest", "日报":
		text, err := s.BuildDigest(ctx)
		if err != nil {
			return fmt.Sprintf("❌ 自选股日报生成失败: %v", err)
		}
		return text
	case "/quote", "行情":
		if len(fields) < 2 {
			return "用法: /quote <股票代码>"
		}
		q, err := s.Collector.Quote(ctx, fields[1])
		if err != nil {
			return fmt.Sprintf("❌ 获取 %s 行情失败: %v", fields[1], err)
		}
		return notifier.FormatQuote(q)
	case "/analyze", "分析":
		if len(fields) < 2 {
			return "用法: /analyze <股票代码>"
		}
		q, history, err := s.Collector.Snapshot(ctx, fields[1], s.HistoryDays)
		if err != nil {
			return fmt.Sprintf("❌ 获取 %s 行情失败: %v", fields[1], err)
		}
		return notifier.FormatAnalysis(q, s.Analyzer.Analyze(ctx, q, history))
	default:
		return "可用命令:\n• /watchlist 查看自选\n• /digest 自选股日报\n• /quote <代码> 查看行情\n• /analyze <代码> 分析股票"
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.Error().Err(err).Msg("send notification")
	}
}
