package services

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/cryptogains/src/models"
)

// sqliteTransferSource reads transfer history from the user_txs table.
type sqliteTransferSource struct {
	db *sql.DB
}

func NewSQLiteTransferSource(db *sql.DB) TransferSource {
	return &sqliteTransferSource{db: db}
}

const transferSelect = `
	SELECT t.timestamp, t.block, t.hash, t.log_index, a.chainid, tk.symbol,
	       a.address, t.type, t.from_address, t.to_address,
	       t.amount, t.price, t.value_usd, t.gas_used, t.gas_price
	FROM user_txs t
	JOIN tokens tk ON tk.token_id = t.token_id
	JOIN addresses a ON a.address_id = tk.address_id
	WHERE LOWER(t.%s) IN (%s)
	ORDER BY t.block ASC, t.log_index ASC`

func (s *sqliteTransferSource) FetchTransfers(addresses []string) (inbound, outbound []models.TransferRecord, err error) {
	if len(addresses) == 0 {
		return nil, nil, nil
	}

	inbound, err = s.queryTransfers("to_address", addresses)
	if err != nil {
		return nil, nil, fmt.Errorf("querying inbound transfers: %w", err)
	}
	outbound, err = s.queryTransfers("from_address", addresses)
	if err != nil {
		return nil, nil, fmt.Errorf("querying outbound transfers: %w", err)
	}
	return inbound, outbound, nil
}

func (s *sqliteTransferSource) queryTransfers(addressColumn string, addresses []string) ([]models.TransferRecord, error) {
	placeholders := make([]string, len(addresses))
	args := make([]interface{}, len(addresses))
	for i, address := range addresses {
		placeholders[i] = "?"
		args[i] = strings.ToLower(address)
	}
	query := fmt.Sprintf(transferSelect, addressColumn, strings.Join(placeholders, ", "))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []models.TransferRecord
	for rows.Next() {
		var t models.TransferRecord
		var amount, price, valueUSD, gasUsed, gasPrice string
		if err := rows.Scan(
			&t.Timestamp, &t.Block, &t.Hash, &t.LogIndex, &t.ChainID, &t.Symbol,
			&t.Vault, &t.Type, &t.FromAddress, &t.ToAddress,
			&amount, &price, &valueUSD, &gasUsed, &gasPrice); err != nil {
			return nil, fmt.Errorf("scanning transfer row: %w", err)
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parsing amount for tx %s: %w", t.Hash, err)
		}
		if t.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parsing price for tx %s: %w", t.Hash, err)
		}
		if t.ValueUSD, err = decimal.NewFromString(valueUSD); err != nil {
			return nil, fmt.Errorf("parsing value_usd for tx %s: %w", t.Hash, err)
		}
		if t.GasUsed, err = decimal.NewFromString(gasUsed); err != nil {
			return nil, fmt.Errorf("parsing gas_used for tx %s: %w", t.Hash, err)
		}
		if t.GasPrice, err = decimal.NewFromString(gasPrice); err != nil {
			return nil, fmt.Errorf("parsing gas_price for tx %s: %w", t.Hash, err)
		}
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return transfers, nil
}
