package persistence

import (
	"context"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/paperhand/pump.one/curve"
	"google.golang.org/api/iterator"
)

// ConfigurationId is the well-known key of the single configuration row per
// deployment.
const ConfigurationId = "CURVE-CONFIGURATION"

type Configuration struct {
	ConfigurationId string    `spanner:"configuration_id"`
	FeePercent      float64   `spanner:"fee_percent"`
	TaxBps          int64     `spanner:"tax_bps"`
	Treasury        string    `spanner:"treasury"`
	UpdatedAt       time.Time `spanner:"updated_at"`
}

func (c *Configuration) Curve() *curve.CurveConfiguration {
	config, err := curve.NewCurveConfiguration(c.FeePercent, uint16(c.TaxBps), c.Treasury)
	if err != nil {
		panic(err)
	}
	return config
}

func ReadConfiguration(ctx context.Context) (*Configuration, error) {
	it := Spanner(ctx).Single().Query(ctx, spanner.Statement{
		SQL:    "SELECT * FROM configurations WHERE configuration_id=@configuration_id",
		Params: map[string]interface{}{"configuration_id": ConfigurationId},
	})
	defer it.Stop()

	row, err := it.Next()
	if err == iterator.Done {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	var config Configuration
	err = row.ToStruct(&config)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

func MakeConfiguration(ctx context.Context, feePercent float64, taxBps uint16, treasury string) (*Configuration, error) {
	cc, err := curve.NewCurveConfiguration(feePercent, taxBps, treasury)
	if err != nil {
		return nil, err
	}
	config := &Configuration{
		ConfigurationId: ConfigurationId,
		FeePercent:      cc.FeePercent,
		TaxBps:          int64(cc.TaxBps),
		Treasury:        cc.Treasury,
		UpdatedAt:       time.Now(),
	}
	_, err = Spanner(ctx).ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		exist, err := checkConfigurationExistence(ctx, txn)
		if err != nil || exist {
			return err
		}
		mutation, err := spanner.InsertStruct("configurations", config)
		if err != nil {
			return err
		}
		return txn.BufferWrite([]*spanner.Mutation{mutation})
	})
	return config, err
}

// UpdateConfiguration changes the treasury unconditionally and the fee only
// when supplied. The tax rate is immutable after initialization.
func UpdateConfiguration(ctx context.Context, newTreasury string, newFeePercent *float64) (*Configuration, error) {
	var config Configuration
	_, err := Spanner(ctx).ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		it := txn.Read(ctx, "configurations", spanner.Key{ConfigurationId}, []string{"configuration_id", "fee_percent", "tax_bps", "treasury", "updated_at"})
		defer it.Stop()

		row, err := it.Next()
		if err != nil {
			return err
		}
		err = row.ToStruct(&config)
		if err != nil {
			return err
		}
		cc := config.Curve()
		err = cc.Update(newTreasury, newFeePercent)
		if err != nil {
			return err
		}
		config.FeePercent = cc.FeePercent
		config.Treasury = cc.Treasury
		config.UpdatedAt = time.Now()
		mutation, err := spanner.UpdateStruct("configurations", &config)
		if err != nil {
			return err
		}
		return txn.BufferWrite([]*spanner.Mutation{mutation})
	})
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// readConfigurationForUpdate reads the configuration row inside the swap
// transaction, so a fee or treasury update applies to every swap committed
// after it.
func readConfigurationForUpdate(ctx context.Context, txn *spanner.ReadWriteTransaction) (*Configuration, error) {
	it := txn.Read(ctx, "configurations", spanner.Key{ConfigurationId}, []string{"configuration_id", "fee_percent", "tax_bps", "treasury", "updated_at"})
	defer it.Stop()

	row, err := it.Next()
	if err != nil {
		return nil, err
	}
	var config Configuration
	err = row.ToStruct(&config)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

func checkConfigurationExistence(ctx context.Context, txn *spanner.ReadWriteTransaction) (bool, error) {
	it := txn.Read(ctx, "configurations", spanner.Key{ConfigurationId}, []string{"updated_at"})
	defer it.Stop()

	_, err := it.Next()
	if err == iterator.Done {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}
