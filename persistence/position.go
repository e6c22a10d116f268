package persistence

import (
	"context"
	"strconv"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/paperhand/pump.one/curve"
	"google.golang.org/api/iterator"
)

type Position struct {
	PoolId      string    `spanner:"pool_id"`
	UserId      string    `spanner:"user_id"`
	TotalTokens string    `spanner:"total_tokens"`
	TotalSol    string    `spanner:"total_sol"`
	UpdatedAt   time.Time `spanner:"updated_at"`
}

func (p *Position) Curve() (*curve.UserPosition, error) {
	tokens, err := strconv.ParseUint(p.TotalTokens, 10, 64)
	if err != nil {
		return nil, err
	}
	sol, err := strconv.ParseUint(p.TotalSol, 10, 64)
	if err != nil {
		return nil, err
	}
	return &curve.UserPosition{TotalTokens: tokens, TotalSol: sol}, nil
}

// readPosition returns the persisted position or a zero one; the record is
// created lazily on the user's first buy.
func readPosition(ctx context.Context, txn *spanner.ReadWriteTransaction, poolId, userId string) (*Position, error) {
	it := txn.Read(ctx, "positions", spanner.Key{poolId, userId}, []string{"pool_id", "user_id", "total_tokens", "total_sol", "updated_at"})
	defer it.Stop()

	row, err := it.Next()
	if err == iterator.Done {
		return &Position{PoolId: poolId, UserId: userId, TotalTokens: "0", TotalSol: "0"}, nil
	} else if err != nil {
		return nil, err
	}
	var position Position
	err = row.ToStruct(&position)
	if err != nil {
		return nil, err
	}
	return &position, nil
}

func ReadPosition(ctx context.Context, poolId, userId string) (*Position, error) {
	it := Spanner(ctx).Single().Read(ctx, "positions", spanner.Key{poolId, userId}, []string{"pool_id", "user_id", "total_tokens", "total_sol", "updated_at"})
	defer it.Stop()

	row, err := it.Next()
	if err == iterator.Done {
		return &Position{PoolId: poolId, UserId: userId, TotalTokens: "0", TotalSol: "0"}, nil
	} else if err != nil {
		return nil, err
	}
	var position Position
	err = row.ToStruct(&position)
	if err != nil {
		return nil, err
	}
	return &position, nil
}

func positionMutation(poolId, userId string, up *curve.UserPosition) *spanner.Mutation {
	return spanner.InsertOrUpdate("positions",
		[]string{"pool_id", "user_id", "total_tokens", "total_sol", "updated_at"},
		[]interface{}{
			poolId,
			userId,
			strconv.FormatUint(up.TotalTokens, 10),
			strconv.FormatUint(up.TotalSol, 10),
			time.Now(),
		})
}
