package persistence

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"
)

const (
	ActionSwapSell = "SWAP_SELL"
	ActionSwapBuy  = "SWAP_BUY"
)

// SwapAction is one pending trade request. The engine polls these by
// checkpoint and serializes them per pool.
type SwapAction struct {
	ActionId  string    `spanner:"action_id"`
	PoolId    string    `spanner:"pool_id"`
	Action    string    `spanner:"action"`
	Amount    string    `spanner:"amount"`
	UserId    string    `spanner:"user_id"`
	TraceId   string    `spanner:"trace_id"`
	CreatedAt time.Time `spanner:"created_at"`
}

func ListPendingSwapActions(ctx context.Context, checkpoint time.Time, limit int) ([]*SwapAction, error) {
	txn := Spanner(ctx).Single()
	defer txn.Close()

	it := txn.Query(ctx, spanner.Statement{
		SQL:    fmt.Sprintf("SELECT * FROM swap_actions@{FORCE_INDEX=swap_actions_by_created} WHERE created_at>=@checkpoint ORDER BY created_at LIMIT %d", limit),
		Params: map[string]interface{}{"checkpoint": checkpoint},
	})
	defer it.Stop()

	actions := make([]*SwapAction, 0)
	for {
		row, err := it.Next()
		if err == iterator.Done {
			break
		} else if err != nil {
			return actions, err
		}
		var action SwapAction
		err = row.ToStruct(&action)
		if err != nil {
			return actions, err
		}
		actions = append(actions, &action)
	}

	return actions, nil
}

func WriteSwapAction(ctx context.Context, a *SwapAction) error {
	_, err := Spanner(ctx).ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		exist, err := checkSwapActionExistence(ctx, txn, a.ActionId)
		if err != nil || exist {
			return err
		}
		a.CreatedAt = time.Now()
		mutation, err := spanner.InsertStruct("swap_actions", a)
		if err != nil {
			return err
		}
		return txn.BufferWrite([]*spanner.Mutation{mutation})
	})
	return err
}

func ExpireSwapAction(ctx context.Context, a *SwapAction) error {
	_, err := Spanner(ctx).Apply(ctx, []*spanner.Mutation{
		spanner.Delete("swap_actions", spanner.Key{a.ActionId}),
	})
	return err
}

func CountPendingSwapActions(ctx context.Context) (int64, error) {
	it := Spanner(ctx).Single().Query(ctx, spanner.Statement{
		SQL: "SELECT COUNT(*) FROM swap_actions",
	})
	defer it.Stop()

	row, err := it.Next()
	if err != nil {
		return 0, err
	}
	var count int64
	err = row.Columns(&count)
	return count, err
}

func checkSwapActionExistence(ctx context.Context, txn *spanner.ReadWriteTransaction, actionId string) (bool, error) {
	it := txn.Read(ctx, "swap_actions", spanner.Key{actionId}, []string{"created_at"})
	defer it.Stop()

	_, err := it.Next()
	if err == iterator.Done {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}
