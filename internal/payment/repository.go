package payment

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
)

// CallbackLog keeps an audit trail of settled callbacks. Replayed deliveries
// with an identical payload are reported as duplicates.
type CallbackLog interface {
	RecordCallback(ctx context.Context, alias string, result *Result) (id int64, duplicate bool, err error)
}

type callbackRepository struct {
	db *sql.DB
}

func NewCallbackRepository(db *sql.DB) CallbackLog {
	return &callbackRepository{db: db}
}

func (r *callbackRepository) RecordCallback(ctx context.Context, alias string, result *Result) (int64, bool, error) {
	const q = `
	INSERT INTO payment_callbacks (
		alias,
		transaction_id,
		payload_hash,
		status,
		previous_status,
		verified,
		changed,
		message,
		payload
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (alias, transaction_id, payload_hash)
	DO NOTHING
	RETURNING id;
	`

	payload := result.Response.Raw
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	sum := sha256.Sum256(payload)

	var id int64
	err := r.db.QueryRowContext(ctx, q,
		alias,
		result.Transaction.ID,
		hex.EncodeToString(sum[:]),
		string(result.Transaction.Status),
		string(result.Previous),
		result.Response.Verified,
		result.Changed,
		result.Message(),
		[]byte(payload),
	).Scan(&id)
	if err != nil {
		// Same payload already recorded
		if errors.Is(err, sql.ErrNoRows) {
			return 0, true, nil
		}
		return 0, false, err
	}
	return id, false, nil
}
