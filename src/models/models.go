package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferRecord is a single asset transfer touching a tracked address, as
// stored in the user_txs table. Amounts, prices and USD values carry 18
// fractional digits; gas fields carry 1. Records are immutable once
// classified.
type TransferRecord struct {
	Timestamp   int64           `json:"timestamp"`
	Block       int64           `json:"block"`
	Hash        string          `json:"hash"`
	LogIndex    int64           `json:"log_index"`
	ChainID     int64           `json:"chainid"`
	Symbol      string          `json:"symbol"`
	Vault       string          `json:"vault"` // asset contract address
	Type        string          `json:"type"`
	FromAddress string          `json:"from_address"`
	ToAddress   string          `json:"to_address"`
	Amount      decimal.Decimal `json:"amount"`
	Price       decimal.Decimal `json:"price"`     // unit price in USD at transfer time
	ValueUSD    decimal.Decimal `json:"value_usd"` // total USD value at transfer time
	GasUsed     decimal.Decimal `json:"gas_used"`
	GasPrice    decimal.Decimal `json:"gas_price"`
}

// Lot is the remaining, trackable portion of one acquisition. It is created
// one-to-one from an inbound TransferRecord and mutated only by the matching
// engine: reduced in place on partial consumption, removed from its ledger on
// full consumption, never recreated.
type Lot struct {
	ChainID     int64
	Symbol      string
	Vault       string
	Type        string
	FromAddress string
	ToAddress   string
	Block       int64
	Timestamp   int64
	Hash        string
	Amount      decimal.Decimal
	Price       decimal.Decimal // unit acquisition price, never mutated
	ValueUSD    decimal.Decimal // remaining cost basis
	GasUsed     decimal.Decimal
	GasPrice    decimal.Decimal
}

// NewLot creates a Lot from a classified acquisition.
func NewLot(t TransferRecord) *Lot {
	return &Lot{
		ChainID:     t.ChainID,
		Symbol:      t.Symbol,
		Vault:       t.Vault,
		Type:        t.Type,
		FromAddress: t.FromAddress,
		ToAddress:   t.ToAddress,
		Block:       t.Block,
		Timestamp:   t.Timestamp,
		Hash:        t.Hash,
		Amount:      t.Amount,
		Price:       t.Price,
		ValueUSD:    t.ValueUSD,
		GasUsed:     t.GasUsed,
		GasPrice:    t.GasPrice,
	}
}

// Holding period classifications.
const (
	PeriodShort = "short"
	PeriodLong  = "long"
)

// TaxableEvent is one realized match between a disposal portion and a lot
// portion. All monetary fields are exact decimals; display rounding happens
// in the report formatter, never here.
type TaxableEvent struct {
	ChainID        int64
	Vault          string
	Symbol         string
	EntryBlock     int64
	EntryTimestamp int64
	EntryHash      string
	EntryPrice     decimal.Decimal
	ExitBlock      int64
	ExitTimestamp  int64
	ExitHash       string
	ExitPrice      decimal.Decimal
	Amount         decimal.Decimal
	CostBasis      decimal.Decimal
	Proceeds       decimal.Decimal
	GainLoss       decimal.Decimal
	Duration       time.Duration
	Period         string // PeriodShort or PeriodLong
	EntryGasCost   decimal.Decimal
	ExitGasCost    decimal.Decimal
}

// TaxableEventExport is the display shape of a TaxableEvent. USD fields are
// currency strings rounded to 2 decimals, prices to 6, gas costs to 6.
type TaxableEventExport struct {
	ChainID        int64           `json:"chainid"`
	Vault          string          `json:"vault"`
	Symbol         string          `json:"symbol"`
	EntryBlock     int64           `json:"entry_block"`
	EntryTimestamp string          `json:"entry_timestamp"`
	EntryHash      string          `json:"entry_hash"`
	EntryPrice     string          `json:"entry_price"`
	ExitBlock      int64           `json:"exit_block"`
	ExitTimestamp  string          `json:"exit_timestamp"`
	ExitHash       string          `json:"exit_hash"`
	ExitPrice      string          `json:"exit_price"`
	Duration       string          `json:"duration"`
	Amount         decimal.Decimal `json:"amount"`
	CostBasis      string          `json:"cost_basis"`
	Proceeds       string          `json:"proceeds"`
	GainLoss       string          `json:"pnl"`
	Period         string          `json:"period"`
	EntryGasCost   decimal.Decimal `json:"gas_to_enter"`
	ExitGasCost    decimal.Decimal `json:"gas_to_exit"`
}

// LotExport is the display shape of a residual unconsumed lot. The raw
// gas_used/gas_price pair is collapsed into a derived gas cost.
type LotExport struct {
	EntryBlock     int64           `json:"entry_block"`
	EntryTimestamp string          `json:"entry_timestamp"`
	EntryHash      string          `json:"entry_hash"`
	Type           string          `json:"type"`
	ChainID        int64           `json:"chainid"`
	FromAddress    string          `json:"from_address"`
	ToAddress      string          `json:"to_address"`
	Symbol         string          `json:"symbol"`
	Vault          string          `json:"vault"`
	Amount         decimal.Decimal `json:"amount"`
	Price          decimal.Decimal `json:"price"`
	ValueUSD       decimal.Decimal `json:"value_usd"`
	GasCost        decimal.Decimal `json:"gas_cost"`
}

// TransferExport is the display shape of one transfer in the annotated
// transfer list.
type TransferExport struct {
	Block       int64           `json:"block"`
	Timestamp   string          `json:"timestamp"`
	Hash        string          `json:"hash"`
	Type        string          `json:"type"`
	ChainID     int64           `json:"chainid"`
	FromAddress string          `json:"from_address"`
	ToAddress   string          `json:"to_address"`
	Symbol      string          `json:"symbol"`
	Vault       string          `json:"vault"`
	Amount      decimal.Decimal `json:"amount"`
	Price       decimal.Decimal `json:"price"`
	ValueUSD    decimal.Decimal `json:"value_usd"`
	GasCost     decimal.Decimal `json:"gas_cost"`
}

// Report is the full response body for one report request.
type Report struct {
	TaxableEvents []TaxableEventExport `json:"taxable_events"`
	UnspentLots   []LotExport          `json:"unspent_lots"`
	Transactions  []TransferExport     `json:"transactions"`
	Failures      []string             `json:"failures"`
}
