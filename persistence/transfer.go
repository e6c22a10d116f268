package persistence

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"strconv"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/MixinNetwork/go-number"
	"github.com/gofrs/uuid/v5"
	"google.golang.org/api/iterator"
)

const (
	TransferSourceTradePayout  = "TRADE_PAYOUT"
	TransferSourceTaxTreasury  = "TAX_TREASURY"
	TransferSourceActionRefund = "ACTION_REFUND"
)

// Transfer is one settlement instruction awaiting execution by the external
// transfer subsystem. Amounts are decimal strings in smallest units.
type Transfer struct {
	TransferId string    `spanner:"transfer_id"`
	Source     string    `spanner:"source"`
	Detail     string    `spanner:"detail"`
	AssetId    string    `spanner:"asset_id"`
	Amount     string    `spanner:"amount"`
	CreatedAt  time.Time `spanner:"created_at"`
	UserId     string    `spanner:"user_id"`
}

func ListPendingTransfers(ctx context.Context, limit int) ([]*Transfer, error) {
	it := Spanner(ctx).Single().Query(ctx, spanner.Statement{
		SQL: fmt.Sprintf("SELECT * FROM transfers@{FORCE_INDEX=transfers_by_created} ORDER BY created_at LIMIT %d", limit),
	})
	defer it.Stop()

	transfers := make([]*Transfer, 0)
	for {
		row, err := it.Next()
		if err == iterator.Done {
			return transfers, nil
		} else if err != nil {
			return transfers, err
		}
		var transfer Transfer
		err = row.ToStruct(&transfer)
		if err != nil {
			return transfers, err
		}
		transfers = append(transfers, &transfer)
	}
}

func ExpireTransfers(ctx context.Context, transfers []*Transfer) error {
	var set []spanner.KeySet
	for _, t := range transfers {
		set = append(set, spanner.Key{t.TransferId})
	}
	_, err := Spanner(ctx).Apply(ctx, []*spanner.Mutation{
		spanner.Delete("transfers", spanner.KeySets(set...)),
	})
	return err
}

func CountPendingTransfers(ctx context.Context) (int64, error) {
	it := Spanner(ctx).Single().Query(ctx, spanner.Statement{
		SQL: "SELECT COUNT(*) FROM transfers",
	})
	defer it.Stop()

	row, err := it.Next()
	if err != nil {
		return 0, err
	}
	var count int64
	err = row.Columns(&count)
	return count, err
}

// CreateRefundTransfer returns the full deposit of an invalid action to its
// sender.
func CreateRefundTransfer(ctx context.Context, userId, assetId, amount, trace string) error {
	if number.FromString(amount).Exhausted() {
		return nil
	}
	transfer := &Transfer{
		TransferId: getSettlementId(trace, "REFUND"),
		Source:     TransferSourceActionRefund,
		Detail:     trace,
		AssetId:    assetId,
		Amount:     amount,
		CreatedAt:  time.Now(),
		UserId:     userId,
	}
	mutation, err := spanner.InsertStruct("transfers", transfer)
	if err != nil {
		return err
	}
	_, err = Spanner(ctx).Apply(ctx, []*spanner.Mutation{mutation})
	return err
}

func makeTransferMutation(source, detail, assetId, userId string, amount uint64, modifier string) (*spanner.Mutation, error) {
	transfer := &Transfer{
		TransferId: getSettlementId(detail, modifier),
		Source:     source,
		Detail:     detail,
		AssetId:    assetId,
		Amount:     strconv.FormatUint(amount, 10),
		CreatedAt:  time.Now(),
		UserId:     userId,
	}
	return spanner.InsertStruct("transfers", transfer)
}

// getSettlementId derives a deterministic transfer id from the trace id and a
// modifier so retried settlements stay idempotent.
func getSettlementId(id, modifier string) string {
	h := md5.New()
	io.WriteString(h, id)
	io.WriteString(h, modifier)
	sum := h.Sum(nil)
	sum[6] = (sum[6] & 0x0f) | 0x30
	sum[8] = (sum[8] & 0x3f) | 0x80
	return uuid.FromBytesOrNil(sum).String()
}
