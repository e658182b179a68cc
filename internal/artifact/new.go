package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/nguyentantai21042004/study-flow/internal/logger"
)

var bucketName = []byte("artifacts")

type implStore struct {
	baseDir string
	db      *bolt.DB
	logger  logger.Logger
	now     func() time.Time
}

// New opens a Store rooted at baseDir with its lineage index at dbPath.
func New(baseDir, dbPath string, log logger.Logger) (Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create base dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create directory for lineage db: %w", err)
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open lineage db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &implStore{
		baseDir: baseDir,
		db:      db,
		logger:  log,
		now:     time.Now,
	}, nil
}
