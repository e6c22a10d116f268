package curve

// CurveConfiguration holds the global trading parameters, one record per
// deployment. TaxBps is immutable after initialization.
type CurveConfiguration struct {
	FeePercent float64
	TaxBps     uint16
	Treasury   string
}

func NewCurveConfiguration(feePercent float64, taxBps uint16, treasury string) (*CurveConfiguration, error) {
	if feePercent < 0 || feePercent > 100 {
		return nil, ErrInvalidFee
	}
	if taxBps > 10000 {
		return nil, ErrInvalidTaxBps
	}
	return &CurveConfiguration{
		FeePercent: feePercent,
		TaxBps:     taxBps,
		Treasury:   treasury,
	}, nil
}

// Update changes the treasury unconditionally and the fee only when supplied.
func (c *CurveConfiguration) Update(newTreasury string, newFeePercent *float64) error {
	if newFeePercent != nil {
		if *newFeePercent < 0 || *newFeePercent > 100 {
			return ErrInvalidFee
		}
		c.FeePercent = *newFeePercent
	}
	c.Treasury = newTreasury
	return nil
}

// AdjustedAmount applies the trading fee as a pricing discount, converting
// through the real intermediate the way the pool pricing does.
func (c *CurveConfiguration) AdjustedAmount(amount uint64, decimals byte) uint64 {
	adjusted := ToFloat(amount, decimals) / 100 * (100 - c.FeePercent)
	return FromFloat(adjusted, decimals)
}
