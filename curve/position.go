package curve

// UserPosition is the weighted-average cost-basis ledger for one user in one
// pool. TotalSol over TotalTokens is the average entry price; the running sums
// make every sale price at the current average without per-lot tracking.
type UserPosition struct {
	TotalTokens uint64
	TotalSol    uint64
}

func (up *UserPosition) RecordBuy(tokensAcquired, solSpent uint64) error {
	tokens, err := checkedAdd(up.TotalTokens, tokensAcquired)
	if err != nil {
		return ErrMathOverflow
	}
	sol, err := checkedAdd(up.TotalSol, solSpent)
	if err != nil {
		return ErrMathOverflow
	}
	up.TotalTokens, up.TotalSol = tokens, sol
	return nil
}

// CostBasisForSale returns the pro-rata share of the accumulated cost for the
// tokens being sold: TotalSol * tokensToSell / TotalTokens, truncated down.
func (up *UserPosition) CostBasisForSale(tokensToSell uint64) (uint64, error) {
	if up.TotalTokens == 0 {
		return 0, ErrPositionNotInitialized
	}
	if tokensToSell > up.TotalTokens {
		return 0, ErrInsufficientPosition
	}
	return mulDiv(up.TotalSol, tokensToSell, up.TotalTokens)
}

// RecordSell shrinks the position by the sold tokens and the basis previously
// computed for them, leaving the average price of the remainder unchanged.
func (up *UserPosition) RecordSell(tokensSold, basisConsumed uint64) error {
	if tokensSold > up.TotalTokens {
		return ErrInsufficientPosition
	}
	sol, err := checkedSub(up.TotalSol, basisConsumed)
	if err != nil {
		return err
	}
	up.TotalTokens -= tokensSold
	up.TotalSol = sol
	return nil
}
