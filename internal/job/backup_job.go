package job

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/notetool/internal/filestore"
	"github.com/xxxsen/notetool/internal/remotestore"
)

// Backup is one namespace at one point in time. The namespace itself is
// never written out, only its digest.
type Backup struct {
	Namespace string              `json:"namespace"`
	TakenAt   int64               `json:"taken_at"`
	Entries   []remotestore.Entry `json:"entries"`
}

type BackupJob struct {
	source remotestore.Backend
	store  filestore.Store
	now    func() time.Time
}

func NewBackupJob(source remotestore.Backend, store filestore.Store) *BackupJob {
	return &BackupJob{source: source, store: store, now: time.Now}
}

func (j *BackupJob) Name() string {
	return "snapshot_backup"
}

// NamespaceDigest hides a token behind a stable hex SHA-256.
func NamespaceDigest(namespace string) string {
	sum := sha256.Sum256([]byte(namespace))
	return hex.EncodeToString(sum[:])
}

func BackupKey(stamp time.Time, namespace string) string {
	return stamp.UTC().Format("20060102T150405Z") + "-" + NamespaceDigest(namespace) + ".json"
}

// Run writes every namespace. A failing namespace does not stop the others;
// all failures are reported together.
func (j *BackupJob) Run(ctx context.Context) error {
	if j.source == nil || j.store == nil {
		return nil
	}
	namespaces, err := j.source.Namespaces(ctx)
	if err != nil {
		return fmt.Errorf("list namespaces: %w", err)
	}
	stamp := j.now()
	var errs []error
	saved := 0
	for _, namespace := range namespaces {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := j.backup(ctx, stamp, namespace); err != nil {
			errs = append(errs, fmt.Errorf("namespace %s: %w", NamespaceDigest(namespace)[:12], err))
			continue
		}
		saved++
	}
	logutil.GetLogger(ctx).Info("snapshot backup done",
		zap.Int("namespaces", len(namespaces)),
		zap.Int("saved", saved),
		zap.String("store", j.store.Type()),
	)
	return errors.Join(errs...)
}

func (j *BackupJob) backup(ctx context.Context, stamp time.Time, namespace string) error {
	entries, err := j.source.Snapshot(ctx, namespace)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []remotestore.Entry{}
	}
	data, err := json.Marshal(Backup{
		Namespace: NamespaceDigest(namespace),
		TakenAt:   stamp.UnixMilli(),
		Entries:   entries,
	})
	if err != nil {
		return err
	}
	return j.store.Save(ctx, BackupKey(stamp, namespace), bytes.NewReader(data), int64(len(data)))
}
