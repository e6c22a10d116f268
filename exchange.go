package main

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/paperhand/pump.one/cache"
	"github.com/paperhand/pump.one/curve"
	"github.com/paperhand/pump.one/persistence"
)

const (
	PollInterval = 500 * time.Millisecond

	CheckpointSwapActions = "swap-actions-checkpoint"
)

type PoolQueue struct {
	store   *persistence.Pool
	actions chan *persistence.SwapAction
}

// Exchange serializes swap actions per pool: each pool has exactly one
// goroutine applying actions, which gives the engine the exclusive access it
// assumes for the whole Validate to Settle sequence.
type Exchange struct {
	mutex sync.Mutex
	pools map[string]*PoolQueue
}

func (ex *Exchange) poolQueue(poolId string) *PoolQueue {
	ex.mutex.Lock()
	defer ex.mutex.Unlock()
	return ex.pools[poolId]
}

func NewExchange() *Exchange {
	return &Exchange{
		pools: make(map[string]*PoolQueue),
	}
}

func (ex *Exchange) Run(ctx context.Context) {
	configuration, err := persistence.ReadConfiguration(ctx)
	if err != nil {
		log.Panicln(err)
	}
	if configuration == nil {
		log.Panicln("curve configuration not initialized")
	}

	go ex.PollPools(ctx)
	ex.PollSwapActions(ctx)
}

// PollPools attaches pools provisioned after startup, so a freshly launched
// asset starts trading without a restart.
func (ex *Exchange) PollPools(ctx context.Context) {
	for {
		pools, err := persistence.AllPools(ctx)
		if err != nil {
			log.Println("PollPools", err)
			time.Sleep(PollInterval)
			continue
		}
		for _, p := range pools {
			if ex.poolQueue(p.PoolId) == nil {
				ex.AttachPool(ctx, p)
			}
		}
		time.Sleep(5 * time.Second)
	}
}

func (ex *Exchange) AttachPool(ctx context.Context, p *persistence.Pool) {
	pq := &PoolQueue{
		store:   p,
		actions: make(chan *persistence.SwapAction, 1024),
	}
	ex.mutex.Lock()
	ex.pools[p.PoolId] = pq
	ex.mutex.Unlock()
	go ex.LoopPoolQueue(ctx, pq)
}

func (ex *Exchange) PollSwapActions(ctx context.Context) {
	checkpoint, err := persistence.ReadPropertyAsTime(ctx, CheckpointSwapActions)
	if err != nil {
		log.Panicln(err)
	}
	limit := 500
	filter := make(map[string]bool)
	for {
		actions, err := persistence.ListPendingSwapActions(ctx, checkpoint, limit)
		if err != nil {
			log.Println("ListPendingSwapActions", err)
			time.Sleep(PollInterval)
			continue
		}
		for _, a := range actions {
			checkpoint = a.CreatedAt
			if filter[a.ActionId] {
				continue
			}
			filter[a.ActionId] = true
			pq := ex.poolQueue(a.PoolId)
			if pq == nil {
				ex.refundSwapAction(ctx, a)
				continue
			}
			pq.actions <- a
		}
		err = persistence.WriteTimeProperty(ctx, CheckpointSwapActions, checkpoint)
		if err != nil {
			log.Println("WriteTimeProperty", err)
		}
		if len(actions) < limit {
			filter = make(map[string]bool)
			time.Sleep(PollInterval)
		}
	}
}

func (ex *Exchange) LoopPoolQueue(ctx context.Context, pq *PoolQueue) {
	for {
		select {
		case <-ctx.Done():
			return
		case a := <-pq.actions:
			ex.ensureSwapAction(ctx, a)
		}
	}
}

func (ex *Exchange) ensureSwapAction(ctx context.Context, a *persistence.SwapAction) {
	for {
		receipt, err := persistence.ExecuteSwap(ctx, a)
		if err == nil {
			if receipt != nil {
				ex.publishReceipt(ctx, a, receipt)
			}
			return
		}
		if _, ok := err.(*curve.Error); ok {
			log.Println("swap rejected", a.ActionId, err)
			ex.refundSwapAction(ctx, a)
			return
		}
		log.Println("ensureSwapAction", err)
		time.Sleep(100 * time.Millisecond)
	}
}

func (ex *Exchange) refundSwapAction(ctx context.Context, a *persistence.SwapAction) {
	assetId := persistence.SettlementAssetId
	if a.Action == persistence.ActionSwapSell {
		assetId = a.PoolId
	}
	for {
		err := persistence.CreateRefundTransfer(ctx, a.UserId, assetId, a.Amount, a.TraceId)
		if err == nil {
			break
		}
		log.Println("CreateRefundTransfer", err)
		time.Sleep(100 * time.Millisecond)
	}
	for {
		err := persistence.ExpireSwapAction(ctx, a)
		if err == nil {
			break
		}
		log.Println("ExpireSwapAction", err)
		time.Sleep(100 * time.Millisecond)
	}
}

func (ex *Exchange) publishReceipt(ctx context.Context, a *persistence.SwapAction, receipt *curve.Receipt) {
	side := "buy"
	if receipt.Side == curve.SideSell {
		side = "sell"
	}
	events := []*cache.Event{
		{
			PoolId:   a.PoolId,
			Category: cache.EventCategoryTrade,
			Data: map[string]interface{}{
				"user":       a.UserId,
				"side":       side,
				"amount_in":  receipt.AmountIn,
				"amount_out": receipt.AmountOut,
			},
			CreatedAt: time.Now(),
		},
	}
	if receipt.Loss {
		events = append(events, &cache.Event{
			PoolId:   a.PoolId,
			Category: cache.EventCategoryTax,
			Data: map[string]interface{}{
				"user":                a.UserId,
				"proceeds_before_tax": receipt.AmountOut,
				"cost_basis":          receipt.CostBasis,
				"tax":                 receipt.Tax,
				"net_to_user":         receipt.NetToUser,
			},
			CreatedAt: time.Now(),
		})
	}
	events = append(events, &cache.Event{
		PoolId:   a.PoolId,
		Category: cache.EventCategoryPosition,
		Data: map[string]interface{}{
			"user":         a.UserId,
			"total_tokens": receipt.TotalTokens,
			"total_sol":    receipt.TotalSol,
		},
		CreatedAt: time.Now(),
	})
	for _, e := range events {
		err := cache.PublishEvent(ctx, e)
		if err != nil {
			log.Println("PublishEvent", err)
		}
	}
}
