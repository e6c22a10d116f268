package curve

// LiquidityPool is the per-pair reserve state. ReserveBase is denominated in
// the traded asset's smallest unit, ReserveQuote in the settlement asset's.
type LiquidityPool struct {
	ReserveBase  uint64
	ReserveQuote uint64
	TotalSupply  uint64
	Decimals     byte
}

func BuildLiquidityPool(supply, reserve uint64, decimals byte) (*LiquidityPool, error) {
	if supply == 0 {
		return nil, ErrInvalidSupply
	}
	if reserve == 0 {
		return nil, ErrInvalidReserve
	}
	return &LiquidityPool{
		ReserveBase:  supply,
		ReserveQuote: reserve,
		TotalSupply:  supply,
		Decimals:     decimals,
	}, nil
}

// amountOut prices a fee-adjusted input against the constant-product formula
// through the real-valued intermediate: ratio = (rin+dx)/dx, out = rout/ratio.
// It never mutates the reserves.
func (p *LiquidityPool) amountOut(rin, rout, dx uint64) (uint64, error) {
	sum, err := checkedAdd(rin, dx)
	if err != nil {
		return 0, err
	}
	ratio := ToFloat(sum, p.Decimals) / ToFloat(dx, p.Decimals)
	return FromFloat(ToFloat(rout, QuoteDecimals)/ratio, QuoteDecimals), nil
}

// QuoteSell returns the settlement amount paid out for a fee-adjusted base
// input entering the base reserve.
func (p *LiquidityPool) QuoteSell(adjusted uint64) (uint64, error) {
	return p.amountOut(p.ReserveBase, p.ReserveQuote, adjusted)
}

// QuoteBuy returns the base amount paid out for a fee-adjusted settlement
// input entering the quote reserve.
func (p *LiquidityPool) QuoteBuy(adjusted uint64) (uint64, error) {
	return p.amountOut(p.ReserveQuote, p.ReserveBase, adjusted)
}

// ApplySell credits the gross sold amount to the base reserve and debits the
// pre-tax proceeds from the quote reserve, both checked before either side is
// written.
func (p *LiquidityPool) ApplySell(grossIn, preTaxOut uint64) error {
	base, err := checkedAdd(p.ReserveBase, grossIn)
	if err != nil {
		return err
	}
	quote, err := checkedSub(p.ReserveQuote, preTaxOut)
	if err != nil {
		return err
	}
	p.ReserveBase, p.ReserveQuote = base, quote
	return nil
}

// ApplyBuy debits the purchased tokens from the base reserve and credits the
// gross settlement amount to the quote reserve.
func (p *LiquidityPool) ApplyBuy(tokensOut, grossIn uint64) error {
	base, err := checkedSub(p.ReserveBase, tokensOut)
	if err != nil {
		return err
	}
	quote, err := checkedAdd(p.ReserveQuote, grossIn)
	if err != nil {
		return err
	}
	p.ReserveBase, p.ReserveQuote = base, quote
	return nil
}
