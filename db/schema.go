package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = `
CREATE TABLE IF NOT EXISTS booking_intents (
	order_id VARCHAR(255) PRIMARY KEY,
	user_id VARCHAR(255) NOT NULL,
	product_id VARCHAR(255) NOT NULL,
	selected_date DATE NOT NULL,
	participants INT NOT NULL,
	total_price NUMERIC(10, 2) NOT NULL,
	tax NUMERIC(10, 2) NOT NULL DEFAULT 0,
	discount NUMERIC(10, 2) NOT NULL DEFAULT 0,
	currency CHAR(3) NOT NULL,
	status VARCHAR(32) NOT NULL DEFAULT 'PENDING',
	ticket_number VARCHAR(64),
	failure_reason VARCHAR(255),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tickets (
	ticket_number VARCHAR(64) PRIMARY KEY,
	order_id VARCHAR(255) NOT NULL UNIQUE,
	payment_id VARCHAR(255) NOT NULL DEFAULT '',
	user_id VARCHAR(255) NOT NULL,
	product_id VARCHAR(255) NOT NULL,
	selected_date DATE NOT NULL,
	participants INT NOT NULL,
	total_price NUMERIC(10, 2) NOT NULL,
	tax NUMERIC(10, 2) NOT NULL DEFAULT 0,
	discount NUMERIC(10, 2) NOT NULL DEFAULT 0,
	currency CHAR(3) NOT NULL,
	status VARCHAR(32) NOT NULL DEFAULT 'active',
	payment_status VARCHAR(32) NOT NULL DEFAULT 'PAID',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS manual_refund_requests (
	order_id VARCHAR(255) PRIMARY KEY,
	ticket_number VARCHAR(64) NOT NULL,
	payout_id VARCHAR(255) NOT NULL,
	amount NUMERIC(10, 2) NOT NULL,
	currency CHAR(3) NOT NULL,
	requested_by VARCHAR(255) NOT NULL,
	requested_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func InitializeDatabaseSchema(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("could not initialize database schema: %w", err)
	}
	return nil
}
