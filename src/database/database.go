package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/cryptogains/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

// InitDB opens the transfer store and ensures its schema. The store mirrors
// the upstream indexer's shape: addresses and tokens describe each tracked
// vault, user_txs holds one row per transfer touching a user address.
// Decimal columns are stored as TEXT so 18-fractional-digit amounts survive
// round-tripping without float conversion.
func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Checking database migrations", "databasePath", databasePath)
	} else {
		stdlog.Println("Checking database migrations for:", databasePath)
	}
	migrateDatabase()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS addresses (
		address_id INTEGER PRIMARY KEY AUTOINCREMENT,
		chainid INTEGER NOT NULL,
		address TEXT NOT NULL,
		is_contract BOOLEAN NOT NULL,
		nickname TEXT,
		UNIQUE(chainid, address)
	);

	CREATE TABLE IF NOT EXISTS tokens (
		token_id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		name TEXT NOT NULL,
		decimals INTEGER NOT NULL,
		address_id INTEGER NOT NULL,
		FOREIGN KEY(address_id) REFERENCES addresses(address_id)
	);

	CREATE TABLE IF NOT EXISTS user_txs (
		user_tx_id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp INTEGER NOT NULL,
		block INTEGER NOT NULL,
		hash TEXT NOT NULL,
		log_index INTEGER NOT NULL,
		token_id INTEGER NOT NULL,
		type TEXT NOT NULL,
		from_address TEXT NOT NULL,
		to_address TEXT NOT NULL,
		amount TEXT NOT NULL,
		price TEXT NOT NULL,
		value_usd TEXT NOT NULL,
		gas_used TEXT NOT NULL,
		gas_price TEXT NOT NULL,
		FOREIGN KEY(token_id) REFERENCES tokens(token_id),
		UNIQUE(hash, log_index)
	);

	CREATE INDEX IF NOT EXISTS idx_user_txs_from ON user_txs(from_address);
	CREATE INDEX IF NOT EXISTS idx_user_txs_to ON user_txs(to_address);
	CREATE INDEX IF NOT EXISTS idx_user_txs_block ON user_txs(block);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

// migrateDatabase brings pre-existing user_txs tables up to the current
// schema. Older snapshots of the store predate the log_index column.
func migrateDatabase() {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='user_txs'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			if logger.L != nil {
				logger.L.Info("user_txs table does not exist, no migration needed as table will be created.")
			} else {
				stdlog.Println("user_txs table does not exist, no migration needed as table will be created.")
			}
			return
		}
		if logger.L != nil {
			logger.L.Error("Error checking for user_txs table", "error", err)
		} else {
			stdlog.Printf("Error checking for user_txs table: %v", err)
		}
		return
	}

	rows, err := DB.Query("PRAGMA table_info(user_txs)")
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error querying table schema for user_txs", "error", err)
		} else {
			stdlog.Printf("Error querying table schema: %v", err)
		}
		return
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}

		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			if logger.L != nil {
				logger.L.Error("Error scanning column info", "error", err)
			} else {
				stdlog.Printf("Error scanning column info: %v", err)
			}
			return
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		if logger.L != nil {
			logger.L.Error("Error iterating over column info", "error", err)
		} else {
			stdlog.Printf("Error iterating over column info: %v", err)
		}
		return
	}

	if _, ok := columnExists["log_index"]; !ok {
		_, err := DB.Exec("ALTER TABLE user_txs ADD COLUMN log_index INTEGER NOT NULL DEFAULT 0")
		if err != nil {
			if logger.L != nil {
				logger.L.Error("Error adding log_index column", "error", err)
			} else {
				stdlog.Printf("Error adding log_index column: %v", err)
			}
		} else {
			if logger.L != nil {
				logger.L.Info("Added log_index column to user_txs table")
			} else {
				stdlog.Println("Added log_index column to user_txs table")
			}
		}
	}
}
