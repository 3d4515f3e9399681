package semantic

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// CacheKey addresses one cached embedding. Any change to the underlying
// content, candidate profile, or normalization algorithm produces a new key,
// so entries never need updating in place.
type CacheKey struct {
	JobID       string
	ContentHash string
	ProfileHash string
	NormVersion string
}

// Cache is the SQLite-backed embedding cache. It stores vectors and metadata
// only, never raw posting text. Entries are immutable once written.
type Cache struct {
	db *sql.DB
}

// OpenCache opens (or creates) the embedding cache database in dataDir.
// Pass ":memory:" as dataDir for an in-memory cache (used by tests).
func OpenCache(dataDir string) (*Cache, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "semantic_cache.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging cache database: %w", err)
	}

	// Single connection avoids "database is locked" under the pipeline's
	// bounded embedding workers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS embeddings (
		job_id TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		profile_hash TEXT NOT NULL,
		norm_version TEXT NOT NULL,
		model_id TEXT NOT NULL,
		vector BLOB NOT NULL,
		dim INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (job_id, content_hash, profile_hash, norm_version)
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating embeddings table: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached vector for key, if present.
func (c *Cache) Get(key CacheKey) ([]float32, bool, error) {
	var blob []byte
	var dim int
	err := c.db.QueryRow(`
		SELECT vector, dim FROM embeddings
		WHERE job_id = ? AND content_hash = ? AND profile_hash = ? AND norm_version = ?`,
		key.JobID, key.ContentHash, key.ProfileHash, key.NormVersion,
	).Scan(&blob, &dim)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	vec, err := decodeVector(blob, dim)
	if err != nil {
		return nil, false, fmt.Errorf("decoding cached vector for %s: %w", key.JobID, err)
	}
	return vec, true, nil
}

// Put stores a vector under key. Existing entries are never overwritten;
// a duplicate Put is a no-op by design (immutability).
func (c *Cache) Put(key CacheKey, modelID string, vec []float32) error {
	_, err := c.db.Exec(`
		INSERT OR IGNORE INTO embeddings (job_id, content_hash, profile_hash, norm_version, model_id, vector, dim, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		key.JobID, key.ContentHash, key.ProfileHash, key.NormVersion,
		modelID, encodeVector(vec), len(vec), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Count returns the number of cached embeddings.
func (c *Cache) Count() (int, error) {
	var n int
	err := c.db.QueryRow("SELECT COUNT(*) FROM embeddings").Scan(&n)
	return n, err
}

func encodeVector(vec []float32) []byte {
	blob := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

func decodeVector(blob []byte, dim int) ([]float32, error) {
	if len(blob) != 4*dim {
		return nil, fmt.Errorf("vector blob is %d bytes, want %d", len(blob), 4*dim)
	}
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec, nil
}
