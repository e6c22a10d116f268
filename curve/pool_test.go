package curve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildLiquidityPool(t *testing.T) {
	assert := assert.New(t)

	pool, err := BuildLiquidityPool(1000000, 100000, 9)
	assert.Nil(err)
	assert.Equal(uint64(1000000), pool.ReserveBase)
	assert.Equal(uint64(100000), pool.ReserveQuote)
	assert.Equal(uint64(1000000), pool.TotalSupply)

	pool, err = BuildLiquidityPool(0, 100000, 9)
	assert.Nil(pool)
	assert.Equal(ErrInvalidSupply, err)

	pool, err = BuildLiquidityPool(1000000, 0, 9)
	assert.Nil(pool)
	assert.Equal(ErrInvalidReserve, err)
}

func TestPoolQuote(t *testing.T) {
	assert := assert.New(t)

	pool := &LiquidityPool{ReserveBase: 1000000, ReserveQuote: 100000, Decimals: 9}

	out, err := pool.QuoteSell(9900)
	assert.Nil(err)
	assert.Equal(uint64(980), out)

	out, err = pool.QuoteBuy(9900)
	assert.Nil(err)
	assert.Equal(uint64(90081), out)

	// quoting never mutates
	assert.Equal(uint64(1000000), pool.ReserveBase)
	assert.Equal(uint64(100000), pool.ReserveQuote)

	pool.Decimals = 6
	out, err = pool.QuoteSell(10000)
	assert.Nil(err)
	assert.Equal(uint64(990), out)

	pool = &LiquidityPool{ReserveBase: math.MaxUint64, ReserveQuote: 100000, Decimals: 9}
	out, err = pool.QuoteSell(1)
	assert.Equal(ErrOverflowOrUnderflowOccurred, err)
	assert.Equal(uint64(0), out)
}

func TestPoolApply(t *testing.T) {
	assert := assert.New(t)

	pool := &LiquidityPool{ReserveBase: 1000000, ReserveQuote: 100000, Decimals: 9}

	err := pool.ApplySell(10000, 980)
	assert.Nil(err)
	assert.Equal(uint64(1010000), pool.ReserveBase)
	assert.Equal(uint64(99020), pool.ReserveQuote)

	err = pool.ApplyBuy(90081, 9900)
	assert.Nil(err)
	assert.Equal(uint64(919919), pool.ReserveBase)
	assert.Equal(uint64(108920), pool.ReserveQuote)

	// a payout exceeding the quote reserve fails before either side is written
	err = pool.ApplySell(1, 200000)
	assert.Equal(ErrOverflowOrUnderflowOccurred, err)
	assert.Equal(uint64(919919), pool.ReserveBase)
	assert.Equal(uint64(108920), pool.ReserveQuote)

	err = pool.ApplyBuy(1000000, 1)
	assert.Equal(ErrOverflowOrUnderflowOccurred, err)
	assert.Equal(uint64(919919), pool.ReserveBase)
	assert.Equal(uint64(108920), pool.ReserveQuote)

	pool.ReserveBase = math.MaxUint64
	err = pool.ApplySell(1, 0)
	assert.Equal(ErrOverflowOrUnderflowOccurred, err)
	assert.Equal(uint64(math.MaxUint64), pool.ReserveBase)
}

func TestPoolConstantProduct(t *testing.T) {
	assert := assert.New(t)

	pool := &LiquidityPool{ReserveBase: 1000000, ReserveQuote: 100000, Decimals: 9}
	k := pool.ReserveBase * pool.ReserveQuote

	out, err := pool.QuoteBuy(9900)
	assert.Nil(err)
	err = pool.ApplyBuy(out, 10000)
	assert.Nil(err)
	assert.True(pool.ReserveBase*pool.ReserveQuote >= k)

	k = pool.ReserveBase * pool.ReserveQuote
	out, err = pool.QuoteSell(4950)
	assert.Nil(err)
	err = pool.ApplySell(5000, out)
	assert.Nil(err)
	assert.True(pool.ReserveBase*pool.ReserveQuote >= k)
}
