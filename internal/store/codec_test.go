package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopos/backend/internal/domain"
)

func TestEncodeDecodeIsByteStable(t *testing.T) {
	at := domain.Stamp(time.Date(2025, 1, 2, 15, 4, 5, 123456789, time.FixedZone("WAT", 3600)))
	sale := domain.NewSale("s-1", domain.SaleTypeCredit, domain.PaymentBankTransfer, "Mama Uche & Sons", at, []domain.CartLine{
		{LineID: "c-1", ProductID: "p1", Name: "Indomie <Noodles>", SellPrice: 500, BuyPrice: 400, Quantity: 3},
	})
	debtor := domain.NewDebtor("debtor-1", "Mama Uche & Sons", domain.NewDebtEntry("d-1", sale)).
		Apply(domain.NewPaymentEntry("pay-1", 200, at.Add(time.Hour)))

	salesDoc, err := Encode([]domain.Sale{sale})
	require.NoError(t, err)
	decodedSales, migrated, err := DecodeSales(salesDoc)
	require.NoError(t, err)
	assert.False(t, migrated)
	again, err := Encode(decodedSales)
	require.NoError(t, err)
	assert.Equal(t, string(salesDoc), string(again))

	debtorDoc, err := Encode([]domain.Debtor{debtor})
	require.NoError(t, err)
	decodedDebtors, _, err := DecodeDebtors(debtorDoc)
	require.NoError(t, err)
	again, err = Encode(decodedDebtors)
	require.NoError(t, err)
	assert.Equal(t, string(debtorDoc), string(again))

	productDoc, err := Encode(SeedProducts())
	require.NoError(t, err)
	decodedProducts, _, err := DecodeProducts(productDoc)
	require.NoError(t, err)
	again, err = Encode(decodedProducts)
	require.NoError(t, err)
	assert.Equal(t, string(productDoc), string(again))
}

func TestEncodeEmptyCollection(t *testing.T) {
	body, err := Encode[string](nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":2,"items":[]}`, string(body))

	names, _, err := DecodeCustomers(body)
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.NotNil(t, names)
}

func TestDecodeRejectsCorruptDocuments(t *testing.T) {
	cases := map[string]string{
		"empty":          "  ",
		"truncated":      `{"version":2,"items":[`,
		"future version": `{"version":9,"items":[]}`,
		"bad legacy":     `[{"id":"p1","stock":"many"}]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := DecodeProducts([]byte(body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrCorrupt))
		})
	}
}

func TestDecodeMigratesLegacyArrays(t *testing.T) {
	products, migrated, err := DecodeProducts([]byte(`[
		{"id":"p1","name":"Indomie Noodles","sellPrice":500,"buyPrice":400,"stock":198,"image":"/products/indomie.png"}
	]`))
	require.NoError(t, err)
	assert.True(t, migrated)
	assert.Equal(t, []domain.Product{{ID: "p1", Name: "Indomie Noodles", SellPrice: 500, BuyPrice: 400, Stock: 198}}, products)

	sales, migrated, err := DecodeSales([]byte(`[
		{"id":"s-1700000000000","type":"cash","customerName":"Regular A","date":"2024-11-14T22:13:20.000Z",
		 "totalRevenue":1000,"totalCost":800,"profit":200,"cart":[{"name":"Indomie Noodles","quantity":2,"price":500,"cost":400}]}
	]`))
	require.NoError(t, err)
	assert.True(t, migrated)
	require.Len(t, sales, 1)
	assert.Equal(t, domain.PaymentCash, sales[0].PaymentMethod)
	assert.Equal(t, time.Date(2024, 11, 14, 22, 13, 20, 0, time.UTC), sales[0].CreatedAt)
	assert.Equal(t, []domain.SaleItem{{Name: "Indomie Noodles", Quantity: 2, Price: 500, Cost: 400}}, sales[0].Items)

	debtors, migrated, err := DecodeDebtors([]byte(`[
		{"id":"debtor-1","name":"Mr. Tunde","balance":400,"mobile":"0803",
		 "history":[
			{"id":"p-2","type":"payment","amount":600,"date":"2024-11-15T08:00:00.000Z"},
			{"id":"s-1","type":"credit","paymentMethod":"cash","customerName":"Mr. Tunde","date":"2024-11-14T08:00:00.000Z",
			 "totalRevenue":1000,"totalCost":800,"profit":200,"cart":[{"name":"Egg","quantity":2,"price":500,"cost":400}]}
		 ]}
	]`))
	require.NoError(t, err)
	assert.True(t, migrated)
	require.Len(t, debtors, 1)
	history := debtors[0].History
	require.Len(t, history, 2)
	assert.Equal(t, domain.EntryPayment, history[0].Type)
	assert.Equal(t, domain.EntryDebt, history[1].Type)
	assert.Equal(t, int64(1000), history[1].Amount)
	assert.Equal(t, "s-1", history[1].SaleID)
	assert.Equal(t, int64(400), domain.ReplayBalance(history))

	names, migrated, err := DecodeCustomers([]byte(`["Regular A","Mama Uche"]`))
	require.NoError(t, err)
	assert.True(t, migrated)
	assert.Equal(t, []string{"Regular A", "Mama Uche"}, names)
}
