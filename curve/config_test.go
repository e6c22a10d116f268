package curve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurveConfiguration(t *testing.T) {
	assert := assert.New(t)

	config, err := NewCurveConfiguration(1, 5000, "treasury")
	assert.Nil(err)
	assert.Equal(float64(1), config.FeePercent)
	assert.Equal(uint16(5000), config.TaxBps)
	assert.Equal("treasury", config.Treasury)

	config, err = NewCurveConfiguration(150, 5000, "treasury")
	assert.Nil(config)
	assert.Equal(ErrInvalidFee, err)

	config, err = NewCurveConfiguration(-1, 5000, "treasury")
	assert.Nil(config)
	assert.Equal(ErrInvalidFee, err)

	config, err = NewCurveConfiguration(1, 10001, "treasury")
	assert.Nil(config)
	assert.Equal(ErrInvalidTaxBps, err)
}

func TestCurveConfigurationUpdate(t *testing.T) {
	assert := assert.New(t)

	config, err := NewCurveConfiguration(1, 5000, "treasury")
	assert.Nil(err)

	err = config.Update("vault", nil)
	assert.Nil(err)
	assert.Equal("vault", config.Treasury)
	assert.Equal(float64(1), config.FeePercent)

	fee := 2.5
	err = config.Update("vault", &fee)
	assert.Nil(err)
	assert.Equal(2.5, config.FeePercent)

	bad := 150.0
	err = config.Update("other", &bad)
	assert.Equal(ErrInvalidFee, err)
	assert.Equal("vault", config.Treasury)
	assert.Equal(2.5, config.FeePercent)
}

func TestAdjustedAmount(t *testing.T) {
	assert := assert.New(t)

	config, err := NewCurveConfiguration(1, 5000, "treasury")
	assert.Nil(err)
	assert.Equal(uint64(9900), config.AdjustedAmount(10000, 9))
	assert.Equal(uint64(9900), config.AdjustedAmount(10000, 6))
	assert.Equal(uint64(0), config.AdjustedAmount(1, 9))

	config, err = NewCurveConfiguration(0, 5000, "treasury")
	assert.Nil(err)
	assert.Equal(uint64(10000), config.AdjustedAmount(10000, 9))

	config, err = NewCurveConfiguration(2.5, 5000, "treasury")
	assert.Nil(err)
	assert.Equal(uint64(12036), config.AdjustedAmount(12345, 9))
}