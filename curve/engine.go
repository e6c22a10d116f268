package curve

type Side byte

const (
	SideSell Side = 1
	SideBuy  Side = 2
)

const (
	AssetBase  = "BASE"
	AssetQuote = "QUOTE"

	AccountUser     = "USER"
	AccountPool     = "POOL"
	AccountTreasury = "TREASURY"
)

// Transfer is one settlement instruction emitted by a swap. The engine names
// endpoints symbolically; the settlement layer binds them to real accounts.
type Transfer struct {
	From   string
	To     string
	Asset  string
	Amount uint64
}

// Receipt describes every effect of a completed swap: the realized amounts,
// the tax withheld, the updated reserves and position, and the transfer set.
type Receipt struct {
	Side         Side
	AmountIn     uint64
	AmountOut    uint64
	CostBasis    uint64
	Loss         bool
	Tax          uint64
	NetToUser    uint64
	ReserveBase  uint64
	ReserveQuote uint64
	TotalTokens  uint64
	TotalSol     uint64
	Transfers    []Transfer
}

// SwapEngine orchestrates one swap against a pool and a position under the
// deployment configuration. It holds no state of its own; the caller
// guarantees exclusive access to the pool and position for the duration of
// the call, and every failure aborts before any mutation.
type SwapEngine struct {
	Config   *CurveConfiguration
	Pool     *LiquidityPool
	Position *UserPosition
}

func NewSwapEngine(config *CurveConfiguration, pool *LiquidityPool, position *UserPosition) *SwapEngine {
	return &SwapEngine{
		Config:   config,
		Pool:     pool,
		Position: position,
	}
}

func (e *SwapEngine) Swap(amount uint64, side Side) (*Receipt, error) {
	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	adjusted := e.Config.AdjustedAmount(amount, e.Pool.Decimals)
	if side == SideSell {
		return e.sell(amount, adjusted)
	}
	return e.buy(amount, adjusted)
}

func (e *SwapEngine) sell(amount, adjusted uint64) (*Receipt, error) {
	preTaxOut, err := e.Pool.QuoteSell(adjusted)
	if err != nil {
		return nil, err
	}
	if e.Position.TotalTokens < amount {
		return nil, ErrInsufficientPosition
	}
	basis, err := e.Position.CostBasisForSale(amount)
	if err != nil {
		return nil, err
	}

	// The tax is a flat penalty on the full pre-tax proceeds of any
	// loss-making exit, not a levy on the loss amount.
	loss, tax, net := false, uint64(0), preTaxOut
	if preTaxOut < basis {
		loss = true
		tax, err = mulDiv(preTaxOut, uint64(e.Config.TaxBps), 10000)
		if err != nil {
			return nil, err
		}
		net, err = checkedSub(preTaxOut, tax)
		if err != nil {
			return nil, err
		}
	}

	if err := e.Pool.ApplySell(amount, preTaxOut); err != nil {
		return nil, err
	}
	// Guarded above, so this cannot fail after the reserves moved.
	if err := e.Position.RecordSell(amount, basis); err != nil {
		return nil, err
	}

	transfers := []Transfer{
		{From: AccountUser, To: AccountPool, Asset: AssetBase, Amount: amount},
		{From: AccountPool, To: AccountUser, Asset: AssetQuote, Amount: net},
	}
	if tax > 0 {
		transfers = append(transfers, Transfer{From: AccountPool, To: AccountTreasury, Asset: AssetQuote, Amount: tax})
	}
	return &Receipt{
		Side:         SideSell,
		AmountIn:     amount,
		AmountOut:    preTaxOut,
		CostBasis:    basis,
		Loss:         loss,
		Tax:          tax,
		NetToUser:    net,
		ReserveBase:  e.Pool.ReserveBase,
		ReserveQuote: e.Pool.ReserveQuote,
		TotalTokens:  e.Position.TotalTokens,
		TotalSol:     e.Position.TotalSol,
		Transfers:    transfers,
	}, nil
}

func (e *SwapEngine) buy(amount, adjusted uint64) (*Receipt, error) {
	tokensOut, err := e.Pool.QuoteBuy(adjusted)
	if err != nil {
		return nil, err
	}

	// Prove the position accumulation cannot overflow before the reserves
	// move, so the whole call stays all-or-nothing.
	if _, err := checkedAdd(e.Position.TotalTokens, tokensOut); err != nil {
		return nil, ErrMathOverflow
	}
	if _, err := checkedAdd(e.Position.TotalSol, amount); err != nil {
		return nil, ErrMathOverflow
	}

	if err := e.Pool.ApplyBuy(tokensOut, amount); err != nil {
		return nil, err
	}
	if err := e.Position.RecordBuy(tokensOut, amount); err != nil {
		return nil, err
	}

	return &Receipt{
		Side:         SideBuy,
		AmountIn:     amount,
		AmountOut:    tokensOut,
		NetToUser:    tokensOut,
		ReserveBase:  e.Pool.ReserveBase,
		ReserveQuote: e.Pool.ReserveQuote,
		TotalTokens:  e.Position.TotalTokens,
		TotalSol:     e.Position.TotalSol,
		Transfers: []Transfer{
			{From: AccountPool, To: AccountUser, Asset: AssetBase, Amount: tokensOut},
			{From: AccountUser, To: AccountPool, Asset: AssetQuote, Amount: amount},
		},
	}, nil
}
