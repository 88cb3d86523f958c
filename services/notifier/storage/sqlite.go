package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/iulianpascalau/ui-email-notification/commonGo"
	"github.com/iulianpascalau/ui-email-notification/services/notifier/common"
	_ "github.com/mattn/go-sqlite3"
	logger "github.com/multiversx/mx-chain-logger-go"
)

const minCleanupIntervalInSeconds = 60

var log = logger.GetOrCreate("storage")

// ErrNotificationNotFound signals an unknown notification id
var ErrNotificationNotFound = errors.New("notification not found")

// sqliteStorage is the sqlite implementation of the notification log
type sqliteStorage struct {
	db               *sql.DB
	retentionSeconds int
	cancelFunc       context.CancelFunc
	closeOnce        sync.Once
}

// NewSQLiteStorage creates the database, schema, and starts the retention cleaner
func NewSQLiteStorage(dbPath string, retentionSeconds int) (*sqliteStorage, error) {
	err := prepareDirectories(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial empty DB file: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every new connection would see its own empty in-memory database
		db.SetMaxOpenConns(1)
	}

	err = createSchema(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &sqliteStorage{
		db:               db,
		retentionSeconds: retentionSeconds,
		cancelFunc:       cancel,
	}

	s.startRetentionCleaner(ctx)

	return s, nil
}

func prepareDirectories(dbPath string) error {
	return os.MkdirAll(filepath.Dir(dbPath), os.ModePerm)
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS notifications (
		id          TEXT    NOT NULL PRIMARY KEY,
		test_name   TEXT    NOT NULL,
		report_id   TEXT    NOT NULL,
		subject     TEXT    NOT NULL,
		recipients  TEXT    NOT NULL,
		body        TEXT    NOT NULL,
		status      TEXT    NOT NULL,
		error       TEXT    NOT NULL DEFAULT '',
		created_at  INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_notifications_created_at ON notifications(created_at);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// SaveNotification inserts or replaces a notification log entry
func (s *sqliteStorage) SaveNotification(ctx context.Context, record common.NotificationRecord) error {
	recipients, err := json.Marshal(record.Recipients)
	if err != nil {
		return fmt.Errorf("failed to encode recipients: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, test_name, report_id, subject, recipients, body, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			subject=excluded.subject,
			recipients=excluded.recipients,
			body=excluded.body,
			status=excluded.status,
			error=excluded.error
	`, record.ID, record.TestName, record.ReportID, record.Subject, string(recipients), record.Body,
		string(record.Status), record.Error, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}

	return nil
}

// GetNotifications returns the newest notification log entries, without their bodies
func (s *sqliteStorage) GetNotifications(ctx context.Context, limit int) ([]common.NotificationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, test_name, report_id, subject, recipients, '', status, error, created_at
		FROM notifications
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	results := make([]common.NotificationRecord, 0)
	for rows.Next() {
		record, errScan := scanRecord(rows)
		if errScan != nil {
			return nil, errScan
		}

		results = append(results, *record)
	}

	return results, rows.Err()
}

// GetNotification returns one notification log entry, including its body
func (s *sqliteStorage) GetNotification(ctx context.Context, id string) (*common.NotificationRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, test_name, report_id, subject, recipients, body, status, error, created_at
		FROM notifications
		WHERE id = ?
	`, id)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotificationNotFound
	}

	return record, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*common.NotificationRecord, error) {
	var record common.NotificationRecord
	var recipients string
	var status string

	err := sc.Scan(&record.ID, &record.TestName, &record.ReportID, &record.Subject, &recipients,
		&record.Body, &status, &record.Error, &record.CreatedAt)
	if err != nil {
		return nil, err
	}

	err = json.Unmarshal([]byte(recipients), &record.Recipients)
	if err != nil {
		return nil, fmt.Errorf("failed to decode recipients of notification %s: %w", record.ID, err)
	}
	record.Status = common.NotificationStatus(status)

	return &record, nil
}

// cleanRetainedNotifications executes the retention cleanup query synchronously
func (s *sqliteStorage) cleanRetainedNotifications(ctx context.Context) error {
	cutoff := time.Now().Unix() - int64(s.retentionSeconds)
	_, err := s.db.ExecContext(ctx, "DELETE FROM notifications WHERE created_at < ?", cutoff)
	return err
}

func (s *sqliteStorage) startRetentionCleaner(ctx context.Context) {
	// max(RetentionSeconds/10, 60)
	intervalSec := s.retentionSeconds / 10
	if intervalSec < minCleanupIntervalInSeconds {
		intervalSec = minCleanupIntervalInSeconds
	}

	commonGo.CronJobStarter(ctx, func(ctx context.Context) {
		log.Debug("running retention cleanup")

		err := s.cleanRetainedNotifications(ctx)
		if err != nil && ctx.Err() == nil {
			log.Warn("failed to cleanup retained notifications", "error", err)
		}
	}, time.Duration(intervalSec)*time.Second)
}

// Close closes the database and stops background routines
func (s *sqliteStorage) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.cancelFunc()
		err = s.db.Close()
	})

	return err
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *sqliteStorage) IsInterfaceNil() bool {
	return s == nil
}
