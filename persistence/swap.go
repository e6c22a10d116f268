package persistence

import (
	"context"
	"strconv"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/paperhand/pump.one/curve"
	"google.golang.org/api/iterator"
)

// SettlementAssetId identifies the settlement asset in transfer instructions.
// The traded asset of a pool is identified by its pool id.
const SettlementAssetId = "b91e18ff-a9ae-3dc7-8679-e935d9a4b34b"

// ErrPoolNotFound aborts an action referencing an unprovisioned pool; the
// caller refunds it like any other engine rejection.
var ErrPoolNotFound = &curve.Error{Code: 30001, Description: "pool not found"}

// ExecuteSwap runs one swap action against its pool inside a single
// read-write transaction: the reserve update, position update, trade record
// and transfer instructions commit together or not at all. The configuration
// row is read in the same transaction, so fee and treasury updates take
// effect on the next committed swap. Engine failures propagate unwrapped so
// the caller can refund the action.
func ExecuteSwap(ctx context.Context, a *SwapAction) (*curve.Receipt, error) {
	amount, err := strconv.ParseUint(a.Amount, 10, 64)
	if err != nil {
		return nil, curve.ErrInvalidAmount
	}
	side := curve.SideBuy
	if a.Action == ActionSwapSell {
		side = curve.SideSell
	}

	var receipt *curve.Receipt
	_, err = Spanner(ctx).ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		exist, err := checkSwapActionExistence(ctx, txn, a.ActionId)
		if err != nil {
			return err
		} else if !exist {
			// already executed by a previous attempt
			return nil
		}

		config, err := readConfigurationForUpdate(ctx, txn)
		if err != nil {
			return err
		}
		pool, err := readPoolForUpdate(ctx, txn, a.PoolId)
		if err != nil {
			return err
		}
		lp, err := pool.Curve()
		if err != nil {
			return err
		}
		position, err := readPosition(ctx, txn, a.PoolId, a.UserId)
		if err != nil {
			return err
		}
		up, err := position.Curve()
		if err != nil {
			return err
		}

		engine := curve.NewSwapEngine(config.Curve(), lp, up)
		receipt, err = engine.Swap(amount, side)
		if err != nil {
			return err
		}

		mutations := []*spanner.Mutation{
			poolReservesMutation(a.PoolId, lp),
			positionMutation(a.PoolId, a.UserId, up),
			spanner.Delete("swap_actions", spanner.Key{a.ActionId}),
		}
		trade, err := makeTradeMutation(a, receipt)
		if err != nil {
			return err
		}
		mutations = append(mutations, trade)

		if receipt.NetToUser > 0 {
			payoutAsset := SettlementAssetId
			if side == curve.SideBuy {
				payoutAsset = a.PoolId
			}
			payout, err := makeTransferMutation(TransferSourceTradePayout, a.TraceId, payoutAsset, a.UserId, receipt.NetToUser, "PAYOUT")
			if err != nil {
				return err
			}
			mutations = append(mutations, payout)
		}
		if receipt.Tax > 0 {
			tax, err := makeTransferMutation(TransferSourceTaxTreasury, a.TraceId, SettlementAssetId, config.Treasury, receipt.Tax, "TAX")
			if err != nil {
				return err
			}
			mutations = append(mutations, tax)
		}
		return txn.BufferWrite(mutations)
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func readPoolForUpdate(ctx context.Context, txn *spanner.ReadWriteTransaction, poolId string) (*Pool, error) {
	it := txn.Read(ctx, "pools", spanner.Key{poolId}, []string{"pool_id", "name", "symbol", "uri", "decimals", "reserve_base", "reserve_quote", "total_supply", "created_at"})
	defer it.Stop()

	row, err := it.Next()
	if err == iterator.Done {
		return nil, ErrPoolNotFound
	} else if err != nil {
		return nil, err
	}
	var pool Pool
	err = row.ToStruct(&pool)
	if err != nil {
		return nil, err
	}
	return &pool, nil
}

func makeTradeMutation(a *SwapAction, receipt *curve.Receipt) (*spanner.Mutation, error) {
	side, token, sol := TradeSideBuy, receipt.AmountOut, receipt.AmountIn
	if receipt.Side == curve.SideSell {
		side, token, sol = TradeSideSell, receipt.AmountIn, receipt.NetToUser
	}
	trade := &Trade{
		TradeId:     getSettlementId(a.TraceId, "TRADE"),
		PoolId:      a.PoolId,
		UserId:      a.UserId,
		Side:        side,
		TokenAmount: strconv.FormatUint(token, 10),
		SolAmount:   strconv.FormatUint(sol, 10),
		Tax:         strconv.FormatUint(receipt.Tax, 10),
		CreatedAt:   time.Now(),
	}
	return spanner.InsertStruct("trades", trade)
}
