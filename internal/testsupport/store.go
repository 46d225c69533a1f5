package testsupport

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"clipflow/internal/config"
	"clipflow/internal/store"
)

// MustOpenStore opens a store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// InsertClip records a downloaded clip for tests.
func InsertClip(t testing.TB, st *store.Store, clip *store.DownloadedClip) *store.DownloadedClip {
	t.Helper()

	record, err := st.InsertClip(context.Background(), clip)
	if err != nil {
		t.Fatalf("store.InsertClip: %v", err)
	}
	return record
}

// BackdateClip rewrites a clip's download timestamp so retention tests can
// age rows without waiting.
func BackdateClip(t testing.TB, cfg *config.Config, clipID string, downloadedAt time.Time) {
	t.Helper()

	db, err := sql.Open("sqlite", cfg.DatabasePath())
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	defer db.Close()

	res, err := db.Exec(
		`UPDATE downloaded_clips SET downloaded_at = ? WHERE clip_id = ?`,
		downloadedAt.UTC().Format(time.RFC3339Nano),
		clipID,
	)
	if err != nil {
		t.Fatalf("backdate clip: %v", err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		t.Fatalf("backdate clip %s: %d rows affected", clipID, n)
	}
}
