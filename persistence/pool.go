package persistence

import (
	"context"
	"strconv"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/gofrs/uuid/v5"
	"github.com/paperhand/pump.one/curve"
	"google.golang.org/api/iterator"
)

type Pool struct {
	PoolId       string    `spanner:"pool_id"`
	Name         string    `spanner:"name"`
	Symbol       string    `spanner:"symbol"`
	URI          string    `spanner:"uri"`
	Decimals     int64     `spanner:"decimals"`
	ReserveBase  string    `spanner:"reserve_base"`
	ReserveQuote string    `spanner:"reserve_quote"`
	TotalSupply  string    `spanner:"total_supply"`
	CreatedAt    time.Time `spanner:"created_at"`
}

// Curve builds the in-memory pool state from the persisted record. Amounts
// are stored as decimal strings because they may exceed the signed 64-bit
// column range.
func (p *Pool) Curve() (*curve.LiquidityPool, error) {
	base, err := strconv.ParseUint(p.ReserveBase, 10, 64)
	if err != nil {
		return nil, err
	}
	quote, err := strconv.ParseUint(p.ReserveQuote, 10, 64)
	if err != nil {
		return nil, err
	}
	supply, err := strconv.ParseUint(p.TotalSupply, 10, 64)
	if err != nil {
		return nil, err
	}
	return &curve.LiquidityPool{
		ReserveBase:  base,
		ReserveQuote: quote,
		TotalSupply:  supply,
		Decimals:     byte(p.Decimals),
	}, nil
}

func AllPools(ctx context.Context) ([]*Pool, error) {
	it := Spanner(ctx).Single().Query(ctx, spanner.Statement{SQL: "SELECT * FROM pools"})
	defer it.Stop()

	var pools []*Pool
	for {
		row, err := it.Next()
		if err == iterator.Done {
			return pools, nil
		} else if err != nil {
			return pools, err
		}
		var p Pool
		err = row.ToStruct(&p)
		if err != nil {
			return pools, err
		}
		pools = append(pools, &p)
	}
}

func ReadPool(ctx context.Context, poolId string) (*Pool, error) {
	it := Spanner(ctx).Single().Query(ctx, spanner.Statement{
		SQL:    "SELECT * FROM pools WHERE pool_id=@pool_id",
		Params: map[string]interface{}{"pool_id": poolId},
	})
	defer it.Stop()

	row, err := it.Next()
	if err == iterator.Done {
		return nil, nil
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

// MakePool provisions the pool record for a freshly launched asset. The mint
// and metadata creation happen outside this engine; the record starts with
// the full supply on the base side and the caller-chosen settlement reserve.
func MakePool(ctx context.Context, name, symbol, uri string, decimals byte, initialSupply, initialReserve uint64) (*Pool, error) {
	if len(name) == 0 || len(name) > 32 {
		return nil, curve.ErrInvalidTokenName
	}
	if len(symbol) == 0 || len(symbol) > 10 {
		return nil, curve.ErrInvalidTokenSymbol
	}
	if len(uri) > 200 {
		return nil, curve.ErrInvalidTokenURI
	}
	lp, err := curve.BuildLiquidityPool(initialSupply, initialReserve, decimals)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	pool := &Pool{
		PoolId:       id.String(),
		Name:         name,
		Symbol:       symbol,
		URI:          uri,
		Decimals:     int64(decimals),
		ReserveBase:  strconv.FormatUint(lp.ReserveBase, 10),
		ReserveQuote: strconv.FormatUint(lp.ReserveQuote, 10),
		TotalSupply:  strconv.FormatUint(lp.TotalSupply, 10),
		CreatedAt:    time.Now(),
	}
	mutation, err := spanner.InsertStruct("pools", pool)
	if err != nil {
		return nil, err
	}
	_, err = Spanner(ctx).Apply(ctx, []*spanner.Mutation{mutation})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

func poolReservesMutation(poolId string, lp *curve.LiquidityPool) *spanner.Mutation {
	return spanner.Update("pools", []string{"pool_id", "reserve_base", "reserve_quote"}, []interface{}{
		poolId,
		strconv.FormatUint(lp.ReserveBase, 10),
		strconv.FormatUint(lp.ReserveQuote, 10),
	})
}
