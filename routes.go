package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/MixinNetwork/go-number"
	"github.com/bugsnag/bugsnag-go/errors"
	"github.com/dimfeld/httptreemux"
	"github.com/gofrs/uuid/v5"
	"github.com/paperhand/pump.one/curve"
	"github.com/paperhand/pump.one/persistence"
	"github.com/unrolled/render"
)

type R struct{}

func NewRouter() *httptreemux.TreeMux {
	router, impl := httptreemux.New(), &R{}
	router.GET("/configuration", impl.configuration)
	router.POST("/configuration", impl.initializeConfiguration)
	router.PUT("/configuration", impl.updateConfiguration)
	router.GET("/pools", impl.pools)
	router.POST("/pools", impl.launchPool)
	router.GET("/pools/:id", impl.pool)
	router.GET("/pools/:id/trades", impl.poolTrades)
	router.GET("/pools/:id/positions/:user", impl.poolPosition)
	router.POST("/pools/:id/swaps", impl.createSwap)
	registerHandlers(router)
	return router
}

func (impl *R) configuration(w http.ResponseWriter, r *http.Request, params map[string]string) {
	configuration, err := persistence.ReadConfiguration(r.Context())
	if err != nil {
		renderError(w, err)
		return
	}
	if configuration == nil {
		render.New().JSON(w, http.StatusNotFound, map[string]interface{}{})
		return
	}
	render.New().JSON(w, http.StatusOK, map[string]interface{}{"data": configurationView(configuration)})
}

func (impl *R) initializeConfiguration(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var body struct {
		FeePercent float64 `json:"fee_percent"`
		TaxBps     uint16  `json:"tax_bps"`
		Treasury   string  `json:"treasury"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		render.New().JSON(w, http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
		return
	}
	configuration, err := persistence.MakeConfiguration(r.Context(), body.FeePercent, body.TaxBps, body.Treasury)
	if err != nil {
		renderError(w, err)
		return
	}
	render.New().JSON(w, http.StatusOK, map[string]interface{}{"data": configurationView(configuration)})
}

func (impl *R) updateConfiguration(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var body struct {
		Treasury   string   `json:"treasury"`
		FeePercent *float64 `json:"fee_percent"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		render.New().JSON(w, http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
		return
	}
	configuration, err := persistence.UpdateConfiguration(r.Context(), body.Treasury, body.FeePercent)
	if err != nil {
		renderError(w, err)
		return
	}
	render.New().JSON(w, http.StatusOK, map[string]interface{}{"data": configurationView(configuration)})
}

func (impl *R) pools(w http.ResponseWriter, r *http.Request, params map[string]string) {
	pools, err := persistence.AllPools(r.Context())
	if err != nil {
		renderError(w, err)
		return
	}
	data := make([]map[string]interface{}, 0)
	for _, p := range pools {
		data = append(data, poolView(p))
	}
	render.New().JSON(w, http.StatusOK, map[string]interface{}{"data": data})
}

func (impl *R) launchPool(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var body struct {
		Name           string `json:"name"`
		Symbol         string `json:"symbol"`
		URI            string `json:"uri"`
		Decimals       byte   `json:"decimals"`
		InitialSupply  string `json:"initial_supply"`
		InitialReserve string `json:"initial_reserve"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		render.New().JSON(w, http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
		return
	}
	supply, err := strconv.ParseUint(body.InitialSupply, 10, 64)
	if err != nil {
		renderError(w, curve.ErrInvalidSupply)
		return
	}
	reserve, err := strconv.ParseUint(body.InitialReserve, 10, 64)
	if err != nil {
		renderError(w, curve.ErrInvalidReserve)
		return
	}
	pool, err := persistence.MakePool(r.Context(), body.Name, body.Symbol, body.URI, body.Decimals, supply, reserve)
	if err != nil {
		renderError(w, err)
		return
	}
	render.New().JSON(w, http.StatusOK, map[string]interface{}{"data": poolView(pool)})
}

func (impl *R) pool(w http.ResponseWriter, r *http.Request, params map[string]string) {
	pool, err := persistence.ReadPool(r.Context(), params["id"])
	if err != nil {
		renderError(w, err)
		return
	}
	if pool == nil {
		render.New().JSON(w, http.StatusNotFound, map[string]interface{}{})
		return
	}
	render.New().JSON(w, http.StatusOK, map[string]interface{}{"data": poolView(pool)})
}

func (impl *R) poolTrades(w http.ResponseWriter, r *http.Request, params map[string]string) {
	trades, err := persistence.PoolTrades(r.Context(), params["id"], time.Now(), 100)
	if err != nil {
		renderError(w, err)
		return
	}
	data := make([]map[string]interface{}, 0)
	for _, t := range trades {
		data = append(data, map[string]interface{}{
			"trade_id":     t.TradeId,
			"pool_id":      t.PoolId,
			"user_id":      t.UserId,
			"side":         t.Side,
			"token_amount": t.TokenAmount,
			"sol_amount":   t.SolAmount,
			"tax":          t.Tax,
			"created_at":   t.CreatedAt,
		})
	}
	render.New().JSON(w, http.StatusOK, map[string]interface{}{"data": data})
}

func (impl *R) poolPosition(w http.ResponseWriter, r *http.Request, params map[string]string) {
	position, err := persistence.ReadPosition(r.Context(), params["id"], params["user"])
	if err != nil {
		renderError(w, err)
		return
	}
	data := map[string]interface{}{
		"pool_id":      position.PoolId,
		"user_id":      position.UserId,
		"total_tokens": position.TotalTokens,
		"total_sol":    position.TotalSol,
	}
	up, err := position.Curve()
	if err == nil && up.TotalTokens > 0 {
		price := number.FromString(position.TotalSol).Div(number.FromString(position.TotalTokens))
		data["average_price"] = price.RoundFloor(9).Persist()
	}
	render.New().JSON(w, http.StatusOK, map[string]interface{}{"data": data})
}

func (impl *R) createSwap(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var body struct {
		UserId  string `json:"user_id"`
		Side    string `json:"side"`
		Amount  string `json:"amount"`
		TraceId string `json:"trace_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		render.New().JSON(w, http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
		return
	}
	action := persistence.ActionSwapBuy
	if body.Side == "sell" {
		action = persistence.ActionSwapSell
	}
	if amount, err := strconv.ParseUint(body.Amount, 10, 64); err != nil || amount == 0 {
		renderError(w, curve.ErrInvalidAmount)
		return
	}
	if body.TraceId == "" {
		id, err := uuid.NewV4()
		if err != nil {
			renderError(w, err)
			return
		}
		body.TraceId = id.String()
	}
	a := &persistence.SwapAction{
		ActionId: body.TraceId,
		PoolId:   params["id"],
		Action:   action,
		Amount:   body.Amount,
		UserId:   body.UserId,
		TraceId:  body.TraceId,
	}
	err := persistence.WriteSwapAction(r.Context(), a)
	if err != nil {
		renderError(w, err)
		return
	}
	render.New().JSON(w, http.StatusOK, map[string]interface{}{"data": map[string]interface{}{
		"action_id": a.ActionId,
		"pool_id":   a.PoolId,
		"action":    a.Action,
		"amount":    a.Amount,
		"user_id":   a.UserId,
		"trace_id":  a.TraceId,
	}})
}

func configurationView(c *persistence.Configuration) map[string]interface{} {
	return map[string]interface{}{
		"fee_percent": c.FeePercent,
		"tax_bps":     c.TaxBps,
		"treasury":    c.Treasury,
		"updated_at":  c.UpdatedAt,
	}
}

func poolView(p *persistence.Pool) map[string]interface{} {
	data := map[string]interface{}{
		"pool_id":       p.PoolId,
		"name":          p.Name,
		"symbol":        p.Symbol,
		"uri":           p.URI,
		"decimals":      p.Decimals,
		"reserve_base":  p.ReserveBase,
		"reserve_quote": p.ReserveQuote,
		"total_supply":  p.TotalSupply,
		"created_at":    p.CreatedAt,
	}
	lp, err := p.Curve()
	if err == nil && lp.ReserveBase > 0 {
		price := strconv.FormatFloat(curve.ToFloat(lp.ReserveQuote, curve.QuoteDecimals)/curve.ToFloat(lp.ReserveBase, lp.Decimals), 'f', -1, 64)
		data["price"] = number.FromString(price).RoundFloor(12).Persist()
	}
	return data
}

func renderError(w http.ResponseWriter, err error) {
	if ce, ok := err.(*curve.Error); ok {
		render.New().JSON(w, http.StatusBadRequest, map[string]interface{}{"error": ce})
		return
	}
	render.New().JSON(w, http.StatusInternalServerError, map[string]interface{}{"error": err.Error()})
}

func registerHandlers(router *httptreemux.TreeMux) {
	router.MethodNotAllowedHandler = func(w http.ResponseWriter, r *http.Request, _ map[string]httptreemux.HandlerFunc) {
		render.New().JSON(w, http.StatusNotFound, map[string]interface{}{})
	}
	router.NotFoundHandler = func(w http.ResponseWriter, r *http.Request) {
		render.New().JSON(w, http.StatusNotFound, map[string]interface{}{})
	}
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, rcv interface{}) {
		err := fmt.Errorf(string(errors.New(rcv, 2).Stack()))
		render.New().JSON(w, http.StatusInternalServerError, map[string]interface{}{"error": err.Error()})
	}
}
