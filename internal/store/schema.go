package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	_ "embed"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

const versionKey = "schema_version"

// migrate applies the schema and stamps the metadata version. It refuses a
// database written by a newer blogcast.
func migrate(ctx context.Context, db *sql.DB) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	version, found, err := readVersion(ctx, tx)
	if err != nil {
		return err
	}
	switch {
	case !found:
		_, err = tx.ExecContext(ctx, "INSERT INTO metadata(key, value) VALUES(?, ?)", versionKey, strconv.Itoa(schemaVersion))
	case version > schemaVersion:
		err = fmt.Errorf("database schema version %d is newer than supported %d", version, schemaVersion)
		return err
	case version < schemaVersion:
		_, err = tx.ExecContext(ctx, "UPDATE metadata SET value = ? WHERE key = ?", strconv.Itoa(schemaVersion), versionKey)
	}
	if err != nil {
		return fmt.Errorf("write schema version: %w", err)
	}

	return tx.Commit()
}

func readVersion(ctx context.Context, tx *sql.Tx) (int, bool, error) {
	var raw string
	err := tx.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", versionKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	version, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("parse schema version %q: %w", raw, err)
	}
	return version, true, nil
}
