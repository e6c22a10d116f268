package curve

import "encoding/json"

var (
	ErrInvalidAmount               = &Error{10001, "invalid amount to swap"}
	ErrInvalidFee                  = &Error{10002, "invalid fee"}
	ErrInvalidTaxBps               = &Error{10003, "invalid tax basis points"}
	ErrInvalidTokenName            = &Error{10004, "invalid token name"}
	ErrInvalidTokenSymbol          = &Error{10005, "invalid token symbol"}
	ErrInvalidTokenURI             = &Error{10006, "invalid token uri"}
	ErrInvalidSupply               = &Error{10007, "invalid initial supply"}
	ErrInvalidReserve              = &Error{10008, "invalid initial reserve"}
	ErrInsufficientPosition        = &Error{20001, "insufficient position"}
	ErrPositionNotInitialized      = &Error{20002, "position not initialized"}
	ErrOverflowOrUnderflowOccurred = &Error{20003, "overflow or underflow occurred"}
	ErrMathOverflow                = &Error{20004, "math overflow occurred"}
)

type Error struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
}

func (e *Error) Error() string {
	eb, _ := json.Marshal(e)
	return string(eb)
}
