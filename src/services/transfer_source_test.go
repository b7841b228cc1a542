package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/cryptogains/src/database"
)

func seedTransferStore(t *testing.T) {
	t.Helper()
	database.InitDB(filepath.Join(t.TempDir(), "transfers.db"))

	_, err := database.DB.Exec(
		`INSERT INTO addresses (address_id, chainid, address, is_contract) VALUES (1, 1, ?, 1)`,
		testVault)
	require.NoError(t, err)
	_, err = database.DB.Exec(
		`INSERT INTO tokens (token_id, symbol, name, decimals, address_id) VALUES (1, 'YFI', 'yearn.finance', 18, 1)`)
	require.NoError(t, err)

	insert := `INSERT INTO user_txs
		(timestamp, block, hash, log_index, token_id, type, from_address, to_address, amount, price, value_usd, gas_used, gas_price)
		VALUES (?, ?, ?, ?, 1, 'transfer', ?, ?, ?, ?, ?, '21000.0', '30000000000.0')`
	rows := []struct {
		timestamp, block int64
		hash             string
		logIndex         int64
		from, to         string
		amount, price    string
		valueUSD         string
	}{
		{1_600_000_100, 100, "0xin1", 1, "0xaa", testWallet, "10.000000000000000000", "1.000000000000000000", "10.000000000000000000"},
		{1_600_000_200, 200, "0xout1", 3, testWallet, "0xbb", "6.000000000000000000", "2.000000000000000000", "12.000000000000000000"},
		{1_600_000_200, 200, "0xout1", 1, testWallet, "0xbb", "1.000000000000000000", "2.000000000000000000", "2.000000000000000000"},
		{1_600_000_300, 300, "0xother", 1, "0xaa", "0xcc", "9.000000000000000000", "1.000000000000000000", "9.000000000000000000"},
	}
	for _, r := range rows {
		_, err = database.DB.Exec(insert, r.timestamp, r.block, r.hash, r.logIndex, r.from, r.to, r.amount, r.price, r.valueUSD)
		require.NoError(t, err)
	}
}

func TestFetchTransfersSplitsInboundAndOutbound(t *testing.T) {
	seedTransferStore(t)
	source := NewSQLiteTransferSource(database.DB)

	inbound, outbound, err := source.FetchTransfers([]string{testWallet})
	require.NoError(t, err)

	require.Len(t, inbound, 1)
	assert.Equal(t, "0xin1", inbound[0].Hash)
	assert.Equal(t, "YFI", inbound[0].Symbol)
	assert.Equal(t, testVault, inbound[0].Vault)
	assert.Equal(t, "10", inbound[0].Amount.String())

	// Same block ties resolve on log index.
	require.Len(t, outbound, 2)
	assert.Equal(t, int64(1), outbound[0].LogIndex)
	assert.Equal(t, int64(3), outbound[1].LogIndex)
}

func TestFetchTransfersMatchesCaseInsensitively(t *testing.T) {
	seedTransferStore(t)
	source := NewSQLiteTransferSource(database.DB)

	inbound, _, err := source.FetchTransfers([]string{"0X1111111111111111111111111111111111111111"})
	require.NoError(t, err)
	assert.Len(t, inbound, 1)
}

func TestFetchTransfersEmptyAddressSet(t *testing.T) {
	seedTransferStore(t)
	source := NewSQLiteTransferSource(database.DB)

	inbound, outbound, err := source.FetchTransfers(nil)
	require.NoError(t, err)
	assert.Empty(t, inbound)
	assert.Empty(t, outbound)
}
