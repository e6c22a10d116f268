package persistence

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"
)

const (
	TradeSideSell = "SELL"
	TradeSideBuy  = "BUY"
)

type Trade struct {
	TradeId     string    `spanner:"trade_id"`
	PoolId      string    `spanner:"pool_id"`
	UserId      string    `spanner:"user_id"`
	Side        string    `spanner:"side"`
	TokenAmount string    `spanner:"token_amount"`
	SolAmount   string    `spanner:"sol_amount"`
	Tax         string    `spanner:"tax"`
	CreatedAt   time.Time `spanner:"created_at"`
}

func PoolTrades(ctx context.Context, poolId string, offset time.Time, limit int) ([]*Trade, error) {
	it := Spanner(ctx).Single().Query(ctx, spanner.Statement{
		SQL:    fmt.Sprintf("SELECT * FROM trades@{FORCE_INDEX=trades_by_pool_created} WHERE pool_id=@pool_id AND created_at<@offset ORDER BY created_at DESC LIMIT %d", limit),
		Params: map[string]interface{}{"pool_id": poolId, "offset": offset},
	})
	defer it.Stop()

	trades := make([]*Trade, 0)
	for {
		row, err := it.Next()
		if err == iterator.Done {
			return trades, nil
		} else if err != nil {
			return trades, err
		}
		var trade Trade
		err = row.ToStruct(&trade)
		if err != nil {
			return trades, err
		}
		trades = append(trades, &trade)
	}
}
