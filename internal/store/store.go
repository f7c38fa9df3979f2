package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"chronikwatch/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	Pool *pgxpool.Pool
}

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	return pgxpool.NewWithConfig(ctx, cfg)
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

func (s *Store) NextDerivationIndex(ctx context.Context) (int64, error) {
	var idx int64
	err := s.Pool.QueryRow(ctx, "SELECT nextval('watch_derivation_index_seq')").Scan(&idx)
	return idx, err
}

func (s *Store) CreateWatch(ctx context.Context, watch *models.Watch) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO watches (
			watch_id, label, script_type, payload_hex, derivation_index,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		watch.WatchID,
		watch.Label,
		watch.ScriptType,
		watch.PayloadHex,
		watch.DerivationIndex,
		watch.CreatedAt,
		watch.UpdatedAt,
	)
	return err
}

func (s *Store) GetWatch(ctx context.Context, watchID string) (*models.Watch, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT watch_id, label, script_type, payload_hex, derivation_index,
			created_at, updated_at
		FROM watches WHERE watch_id=$1
	`, watchID)
	return scanWatch(row)
}

func (s *Store) GetWatchByScript(ctx context.Context, scriptType, payloadHex string) (*models.Watch, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT watch_id, label, script_type, payload_hex, derivation_index,
			created_at, updated_at
		FROM watches WHERE script_type=$1 AND payload_hex=$2
	`, scriptType, payloadHex)
	return scanWatch(row)
}

func (s *Store) ListWatches(ctx context.Context) ([]*models.Watch, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT watch_id, label, script_type, payload_hex, derivation_index,
			created_at, updated_at
		FROM watches
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var watches []*models.Watch
	for rows.Next() {
		watch, err := scanWatch(rows)
		if err != nil {
			return nil, err
		}
		watches = append(watches, watch)
	}
	return watches, rows.Err()
}

func scanWatch(row pgx.Row) (*models.Watch, error) {
	var watch models.Watch
	var derivationIndex sql.NullInt64
	err := row.Scan(
		&watch.WatchID,
		&watch.Label,
		&watch.ScriptType,
		&watch.PayloadHex,
		&derivationIndex,
		&watch.CreatedAt,
		&watch.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if derivationIndex.Valid {
		watch.DerivationIndex = &derivationIndex.Int64
	}
	return &watch, nil
}

// UpsertWatchTx records a transaction for a watch, updating delta,
// status and block placement when the row already exists.
func (s *Store) UpsertWatchTx(ctx context.Context, tx *models.WatchTx) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO watch_txs (
			txid, watch_id, delta_sats, status, block_height, block_hash,
			first_seen_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (txid, watch_id) DO UPDATE
		SET delta_sats=EXCLUDED.delta_sats,
			status=EXCLUDED.status,
			block_height=EXCLUDED.block_height,
			block_hash=EXCLUDED.block_hash,
			updated_at=EXCLUDED.updated_at
	`,
		tx.Txid,
		tx.WatchID,
		tx.DeltaSats,
		tx.Status,
		tx.BlockHeight,
		tx.BlockHash,
		tx.FirstSeenAt,
		tx.UpdatedAt,
	)
	return err
}

// DeleteSeenTx drops the provisional rows of a mempool transaction the
// node evicted. Confirmed rows are left alone.
func (s *Store) DeleteSeenTx(ctx context.Context, txid string) error {
	_, err := s.Pool.Exec(ctx, `
		DELETE FROM watch_txs WHERE txid=$1 AND status=$2
	`, txid, models.TxSeen)
	return err
}

func (s *Store) ListWatchTxs(ctx context.Context, watchID string) ([]*models.WatchTx, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT txid, watch_id, delta_sats, status, block_height, block_hash,
			first_seen_at, updated_at
		FROM watch_txs
		WHERE watch_id=$1
		ORDER BY first_seen_at
	`, watchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []*models.WatchTx
	for rows.Next() {
		var tx models.WatchTx
		var blockHeight sql.NullInt32
		var blockHash sql.NullString
		if err := rows.Scan(
			&tx.Txid,
			&tx.WatchID,
			&tx.DeltaSats,
			&tx.Status,
			&blockHeight,
			&blockHash,
			&tx.FirstSeenAt,
			&tx.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if blockHeight.Valid {
			tx.BlockHeight = &blockHeight.Int32
		}
		if blockHash.Valid {
			tx.BlockHash = &blockHash.String
		}
		txs = append(txs, &tx)
	}
	return txs, rows.Err()
}

// MarkFinalizedBelow promotes confirmed transactions whose block is at
// or below the given height.
func (s *Store) MarkFinalizedBelow(ctx context.Context, height int32) (int64, error) {
	res, err := s.Pool.Exec(ctx, `
		UPDATE watch_txs
		SET status=$2, updated_at=now()
		WHERE status=$3 AND block_height IS NOT NULL AND block_height <= $1
	`, height, models.TxFinalized, models.TxConfirmed)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

func (s *Store) GetSyncTip(ctx context.Context) (int32, error) {
	row := s.Pool.QueryRow(ctx, "SELECT value FROM sync_state WHERE key='last_tip_height'")
	var v string
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	tip, err := strconv.ParseInt(v, 10, 32)
	return int32(tip), err
}

func (s *Store) SetSyncTip(ctx context.Context, height int32) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO sync_state (key, value)
		VALUES ('last_tip_height', $1)
		ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value
	`, strconv.FormatInt(int64(height), 10))
	return err
}
