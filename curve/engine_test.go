package curve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildTestEngine(assert *assert.Assertions) *SwapEngine {
	config, err := NewCurveConfiguration(1, 5000, "treasury")
	assert.Nil(err)
	pool, err := BuildLiquidityPool(1000000, 100000, 9)
	assert.Nil(err)
	return NewSwapEngine(config, pool, &UserPosition{})
}

func TestSwapEngineBuy(t *testing.T) {
	assert := assert.New(t)
	engine := buildTestEngine(assert)

	receipt, err := engine.Swap(10000, SideBuy)
	assert.Nil(err)
	assert.Equal(uint64(90081), receipt.AmountOut)
	assert.Equal(uint64(90081), receipt.NetToUser)
	assert.Equal(uint64(0), receipt.Tax)
	assert.False(receipt.Loss)
	assert.Equal(uint64(909919), receipt.ReserveBase)
	assert.Equal(uint64(110000), receipt.ReserveQuote)
	assert.Equal(uint64(90081), receipt.TotalTokens)
	assert.Equal(uint64(10000), receipt.TotalSol)
	assert.Len(receipt.Transfers, 2)
	assert.Equal(Transfer{From: AccountPool, To: AccountUser, Asset: AssetBase, Amount: 90081}, receipt.Transfers[0])
	assert.Equal(Transfer{From: AccountUser, To: AccountPool, Asset: AssetQuote, Amount: 10000}, receipt.Transfers[1])

	receipt, err = engine.Swap(20000, SideBuy)
	assert.Nil(err)
	assert.Equal(uint64(138801), receipt.AmountOut)
	assert.Equal(uint64(771118), receipt.ReserveBase)
	assert.Equal(uint64(130000), receipt.ReserveQuote)
	assert.Equal(uint64(228882), receipt.TotalTokens)
	assert.Equal(uint64(30000), receipt.TotalSol)
}

func TestSwapEngineProfitableSell(t *testing.T) {
	assert := assert.New(t)
	engine := buildTestEngine(assert)

	_, err := engine.Swap(10000, SideBuy)
	assert.Nil(err)
	_, err = engine.Swap(20000, SideBuy)
	assert.Nil(err)

	receipt, err := engine.Swap(50000, SideSell)
	assert.Nil(err)
	assert.Equal(uint64(7841), receipt.AmountOut)
	assert.Equal(uint64(6553), receipt.CostBasis)
	assert.False(receipt.Loss)
	assert.Equal(uint64(0), receipt.Tax)
	assert.Equal(uint64(7841), receipt.NetToUser)
	assert.Equal(uint64(821118), receipt.ReserveBase)
	assert.Equal(uint64(122159), receipt.ReserveQuote)
	assert.Equal(uint64(178882), receipt.TotalTokens)
	assert.Equal(uint64(23447), receipt.TotalSol)
	assert.Len(receipt.Transfers, 2)
}

func TestSwapEngineLossSellTaxed(t *testing.T) {
	assert := assert.New(t)
	engine := buildTestEngine(assert)

	_, err := engine.Swap(10000, SideBuy)
	assert.Nil(err)

	// the fee makes an immediate round trip a realized loss
	receipt, err := engine.Swap(90081, SideSell)
	assert.Nil(err)
	assert.Equal(uint64(9818), receipt.AmountOut)
	assert.Equal(uint64(10000), receipt.CostBasis)
	assert.True(receipt.Loss)
	assert.Equal(uint64(4909), receipt.Tax)
	assert.Equal(uint64(4909), receipt.NetToUser)
	assert.Equal(uint64(1000000), receipt.ReserveBase)
	assert.Equal(uint64(100182), receipt.ReserveQuote)
	assert.Equal(uint64(0), receipt.TotalTokens)
	assert.Equal(uint64(0), receipt.TotalSol)
	assert.Len(receipt.Transfers, 3)
	assert.Equal(Transfer{From: AccountUser, To: AccountPool, Asset: AssetBase, Amount: 90081}, receipt.Transfers[0])
	assert.Equal(Transfer{From: AccountPool, To: AccountUser, Asset: AssetQuote, Amount: 4909}, receipt.Transfers[1])
	assert.Equal(Transfer{From: AccountPool, To: AccountTreasury, Asset: AssetQuote, Amount: 4909}, receipt.Transfers[2])
}

func TestSwapEngineFailures(t *testing.T) {
	assert := assert.New(t)
	engine := buildTestEngine(assert)

	receipt, err := engine.Swap(0, SideBuy)
	assert.Nil(receipt)
	assert.Equal(ErrInvalidAmount, err)

	receipt, err = engine.Swap(0, SideSell)
	assert.Nil(receipt)
	assert.Equal(ErrInvalidAmount, err)

	// selling without any tracked buys
	receipt, err = engine.Swap(100, SideSell)
	assert.Nil(receipt)
	assert.Equal(ErrInsufficientPosition, err)
	assert.Equal(uint64(1000000), engine.Pool.ReserveBase)
	assert.Equal(uint64(100000), engine.Pool.ReserveQuote)

	_, err = engine.Swap(10000, SideBuy)
	assert.Nil(err)

	// selling more than the tracked position leaves every record untouched
	receipt, err = engine.Swap(90082, SideSell)
	assert.Nil(receipt)
	assert.Equal(ErrInsufficientPosition, err)
	assert.Equal(uint64(909919), engine.Pool.ReserveBase)
	assert.Equal(uint64(110000), engine.Pool.ReserveQuote)
	assert.Equal(uint64(90081), engine.Position.TotalTokens)
	assert.Equal(uint64(10000), engine.Position.TotalSol)
}

func TestSwapEngineObservesConfigurationUpdate(t *testing.T) {
	assert := assert.New(t)
	engine := buildTestEngine(assert)

	_, err := engine.Swap(10000, SideBuy)
	assert.Nil(err)

	fee := 5.0
	err = engine.Config.Update("vault", &fee)
	assert.Nil(err)

	// the raised fee prices the very next swap
	receipt, err := engine.Swap(10000, SideBuy)
	assert.Nil(err)
	assert.Equal(uint64(72336), receipt.AmountOut)
	assert.Equal(uint64(837583), receipt.ReserveBase)
	assert.Equal(uint64(120000), receipt.ReserveQuote)
	assert.Equal(uint64(162417), receipt.TotalTokens)
	assert.Equal(uint64(20000), receipt.TotalSol)
}

func TestSwapEngineZeroTaxRate(t *testing.T) {
	assert := assert.New(t)

	config, err := NewCurveConfiguration(1, 0, "treasury")
	assert.Nil(err)
	pool, err := BuildLiquidityPool(1000000, 100000, 9)
	assert.Nil(err)
	engine := NewSwapEngine(config, pool, &UserPosition{})

	_, err = engine.Swap(10000, SideBuy)
	assert.Nil(err)
	receipt, err := engine.Swap(90081, SideSell)
	assert.Nil(err)
	assert.True(receipt.Loss)
	assert.Equal(uint64(0), receipt.Tax)
	assert.Equal(receipt.AmountOut, receipt.NetToUser)
	assert.Len(receipt.Transfers, 2)
}
