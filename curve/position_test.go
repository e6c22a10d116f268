package curve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionRecordBuy(t *testing.T) {
	assert := assert.New(t)

	position := &UserPosition{}
	err := position.RecordBuy(90081, 10000)
	assert.Nil(err)
	assert.Equal(uint64(90081), position.TotalTokens)
	assert.Equal(uint64(10000), position.TotalSol)

	err = position.RecordBuy(138801, 20000)
	assert.Nil(err)
	assert.Equal(uint64(228882), position.TotalTokens)
	assert.Equal(uint64(30000), position.TotalSol)

	err = position.RecordBuy(math.MaxUint64, 1)
	assert.Equal(ErrMathOverflow, err)
	assert.Equal(uint64(228882), position.TotalTokens)
	assert.Equal(uint64(30000), position.TotalSol)

	err = position.RecordBuy(1, math.MaxUint64)
	assert.Equal(ErrMathOverflow, err)
	assert.Equal(uint64(228882), position.TotalTokens)
	assert.Equal(uint64(30000), position.TotalSol)
}

func TestPositionCostBasis(t *testing.T) {
	assert := assert.New(t)

	position := &UserPosition{}
	basis, err := position.CostBasisForSale(100)
	assert.Equal(ErrPositionNotInitialized, err)
	assert.Equal(uint64(0), basis)

	position = &UserPosition{TotalTokens: 228882, TotalSol: 30000}
	basis, err = position.CostBasisForSale(300000)
	assert.Equal(ErrInsufficientPosition, err)
	assert.Equal(uint64(0), basis)

	basis, err = position.CostBasisForSale(50000)
	assert.Nil(err)
	assert.Equal(uint64(6553), basis)

	basis, err = position.CostBasisForSale(228882)
	assert.Nil(err)
	assert.Equal(uint64(30000), basis)

	// the intermediate product exceeds 64 bits
	position = &UserPosition{TotalTokens: math.MaxUint64, TotalSol: math.MaxUint64}
	basis, err = position.CostBasisForSale(math.MaxUint64 / 2)
	assert.Nil(err)
	assert.Equal(uint64(math.MaxUint64/2), basis)
}

func TestPositionRecordSell(t *testing.T) {
	assert := assert.New(t)

	position := &UserPosition{TotalTokens: 228882, TotalSol: 30000}
	err := position.RecordSell(300000, 0)
	assert.Equal(ErrInsufficientPosition, err)

	basis, err := position.CostBasisForSale(50000)
	assert.Nil(err)
	err = position.RecordSell(50000, basis)
	assert.Nil(err)
	assert.Equal(uint64(178882), position.TotalTokens)
	assert.Equal(uint64(23447), position.TotalSol)

	// full liquidation resets both sums
	basis, err = position.CostBasisForSale(178882)
	assert.Nil(err)
	err = position.RecordSell(178882, basis)
	assert.Nil(err)
	assert.Equal(uint64(0), position.TotalTokens)
	assert.Equal(uint64(0), position.TotalSol)
}

func TestPositionAveragePriceConservation(t *testing.T) {
	assert := assert.New(t)

	position := &UserPosition{}
	assert.Nil(position.RecordBuy(1000000, 250000))
	assert.Nil(position.RecordBuy(500000, 200000))

	for _, amount := range []uint64{1, 137, 10000, 499999} {
		before := float64(position.TotalSol) / float64(position.TotalTokens)
		basis, err := position.CostBasisForSale(amount)
		assert.Nil(err)
		assert.Nil(position.RecordSell(amount, basis))
		after := float64(position.TotalSol) / float64(position.TotalTokens)
		assert.InDelta(before, after, 0.001)
	}
}
