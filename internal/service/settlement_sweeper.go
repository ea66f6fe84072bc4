package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"botfolio/internal/config"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const defaultSweepIntervalSeconds = 5

// SettlementSweeper 结算调度器。
// 周期性扫描到期未结算的交易并触发结算；同一笔交易同一时刻
// 只允许一个结算调用在途。没有未结算交易时调度器自行停止，
// 下一次开仓时再被唤醒。
type SettlementSweeper struct {
	logger       *zap.Logger
	tradeService *BotTradeService
	interval     time.Duration

	mu        sync.Mutex
	cron      *cron.Cron
	isRunning bool
	wakes     uint64

	settling sync.WaitGroup

	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

// NewSettlementSweeper 创建结算调度器
func NewSettlementSweeper(conf *config.Config, tradeService *BotTradeService, logger *zap.Logger) *SettlementSweeper {
	seconds := conf.Bot.SweepIntervalSeconds
	if seconds <= 0 {
		seconds = defaultSweepIntervalSeconds
	}
	return &SettlementSweeper{
		logger:       logger,
		tradeService: tradeService,
		interval:     time.Duration(seconds) * time.Second,
		inflight:     make(map[string]struct{}),
	}
}

// EnsureRunning 启动调度器，已在运行时只记一次唤醒。
// 唤醒计数用于取消扫描后、停止前这个窗口内的自动停止。
func (s *SettlementSweeper) EnsureRunning() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wakes++

	if s.isRunning {
		return
	}

	c := cron.New()
	spec := fmt.Sprintf("@every %s", s.interval)
	_, err := c.AddFunc(spec, func() {
		s.Sweep(context.Background())
	})
	if err != nil {
		s.logger.Error("failed to schedule settlement sweep", zap.Error(err))
		return
	}

	c.Start()
	s.cron = c
	s.isRunning = true

	s.logger.Info("settlement sweeper started", zap.Duration("interval", s.interval))

	// 启动后立即扫一次，回收停机期间到期的交易
	go s.Sweep(context.Background())
}

// Stop 停止调度器，等待在途的结算完成
func (s *SettlementSweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *SettlementSweeper) stopLocked() {
	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.settling.Wait()
	s.cron = nil
	s.isRunning = false

	s.logger.Info("settlement sweeper stopped")
}

// stopIfIdle 在扫描判定空闲之后执行自动停止。
// 判定与停止之间到达的开仓会推进唤醒计数，此时放弃停止，
// 保证新交易仍然有下一轮扫描。
func (s *SettlementSweeper) stopIfIdle(wakes uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wakes != wakes {
		return
	}
	s.stopLocked()
}

func (s *SettlementSweeper) currentWakes() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wakes
}

// IsRunning 检查是否正在运行
func (s *SettlementSweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// Sweep 执行一轮扫描。结算失败只记录日志，交易保持 active，
// 下一轮扫描自动重试。
func (s *SettlementSweeper) Sweep(ctx context.Context) {
	wakes := s.currentWakes()

	active, err := s.tradeService.CountActive(ctx)
	if err != nil {
		s.logger.Error("sweep: failed to count active trades", zap.Error(err))
		return
	}
	if active == 0 {
		// 没有待结算的交易，停掉调度，等待下一次开仓唤醒
		go s.stopIfIdle(wakes)
		return
	}

	due, err := s.tradeService.FindDue(ctx, time.Now())
	if err != nil {
		s.logger.Error("sweep: failed to find due trades", zap.Error(err))
		return
	}

	for i := range due {
		trade := due[i]
		if !s.acquire(trade.ID) {
			continue
		}

		s.settling.Add(1)
		go func() {
			defer s.settling.Done()
			defer s.release(trade.ID)

			if _, err := s.tradeService.Settle(ctx, trade.ID); err != nil {
				s.logger.Error("sweep: settlement failed, will retry next sweep",
					zap.String("trade_id", trade.ID),
					zap.Error(err))
			}
		}()
	}
}

func (s *SettlementSweeper) acquire(tradeID string) bool {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	if _, ok := s.inflight[tradeID]; ok {
		return false
	}
	s.inflight[tradeID] = struct{}{}
	return true
}

func (s *SettlementSweeper) release(tradeID string) {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	delete(s.inflight, tradeID)
}

// Status 调度器状态
func (s *SettlementSweeper) Status(ctx context.Context) map[string]interface{} {
	active, err := s.tradeService.CountActive(ctx)
	if err != nil {
		s.logger.Error("failed to count active trades", zap.Error(err))
	}
	return map[string]interface{}{
		"is_running":       s.IsRunning(),
		"interval_seconds": int(s.interval.Seconds()),
		"active_trades":    active,
	}
}
