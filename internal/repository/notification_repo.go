package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"notifyhub/internal/model"
	"notifyhub/pkg/metrics"
)

var ErrNotFound = errors.New("notification not found")

type NotificationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewNotificationRepository(db *pgxpool.Pool, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

// Insert stores a single notification and returns it with its generated
// ID, sequence number and timestamps filled in.
func (r *NotificationRepository) Insert(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	start := time.Now()

	query := `
        INSERT INTO notifications (title, content, meta_data, recipient_id, created_by)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, idx, read, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		n.Title, n.Content, n.MetaData, n.RecipientID, n.CreatedBy,
	).Scan(&n.ID, &n.Idx, &n.Read, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert notification",
			zap.String("recipient_id", n.RecipientID),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.RecordDBQueryDuration("insert", "notifications", time.Since(start))
	return n, nil
}

// InsertMany stores a batch of notifications in one statement. An empty
// batch is a no-op. The insert is all-or-nothing; no partial rows remain
// on failure.
func (r *NotificationRepository) InsertMany(ctx context.Context, ns []*model.Notification) error {
	if len(ns) == 0 {
		return nil
	}

	start := time.Now()

	var sb strings.Builder
	sb.WriteString("INSERT INTO notifications (title, content, meta_data, recipient_id, created_by) VALUES ")
	args := make([]any, 0, len(ns)*5)
	for i, n := range ns {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 5
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5)
		args = append(args, n.Title, n.Content, n.MetaData, n.RecipientID, n.CreatedBy)
	}

	if _, err := r.db.Exec(ctx, sb.String(), args...); err != nil {
		r.logger.Error("Failed to bulk insert notifications",
			zap.Int("count", len(ns)),
			zap.Error(err),
		)
		return err
	}

	metrics.RecordDBQueryDuration("insert_many", "notifications", time.Since(start))
	r.logger.Info("Notifications inserted",
		zap.Int("count", len(ns)),
	)
	return nil
}

const notificationColumns = `n.id, n.idx, n.title, n.content, n.read, n.meta_data, n.recipient_id, n.created_by, n.created_at, n.updated_at`

const creatorColumns = `u.id, u.first_name, u.last_name, u.avatar`

// FindAll returns one recipient's notifications newest first, plus the
// total row count for pagination. Ties on created_at fall back to the
// sequence number so the order is total and stable.
func (r *NotificationRepository) FindAll(ctx context.Context, recipientID string, offset, limit int, profile model.FetchProfile) ([]model.Notification, int, error) {
	start := time.Now()

	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var query string
	if profile == model.NotificationWithCreator {
		query = fmt.Sprintf(`
            SELECT %s, %s
            FROM notifications n
            LEFT JOIN users u ON u.id = n.created_by
            WHERE n.recipient_id = $1
            ORDER BY n.created_at DESC, n.idx DESC
            OFFSET $2 LIMIT $3
        `, notificationColumns, creatorColumns)
	} else {
		query = fmt.Sprintf(`
            SELECT %s
            FROM notifications n
            WHERE n.recipient_id = $1
            ORDER BY n.created_at DESC, n.idx DESC
            OFFSET $2 LIMIT $3
        `, notificationColumns)
	}

	rows, err := r.db.Query(ctx, query, recipientID, offset, limit)
	if err != nil {
		r.logger.Error("Failed to query notifications", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows, profile)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1`
	if err := r.db.QueryRow(ctx, countQuery, recipientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	metrics.RecordDBQueryDuration("find_all", "notifications", time.Since(start))
	return out, total, nil
}

// FindOne returns a single notification scoped to its recipient.
// Asking for another user's notification yields ErrNotFound.
func (r *NotificationRepository) FindOne(ctx context.Context, recipientID, notificationID string, profile model.FetchProfile) (*model.Notification, error) {
	start := time.Now()

	var query string
	if profile == model.NotificationWithCreator {
		query = fmt.Sprintf(`
            SELECT %s, %s
            FROM notifications n
            LEFT JOIN users u ON u.id = n.created_by
            WHERE n.id = $1 AND n.recipient_id = $2
        `, notificationColumns, creatorColumns)
	} else {
		query = fmt.Sprintf(`
            SELECT %s
            FROM notifications n
            WHERE n.id = $1 AND n.recipient_id = $2
        `, notificationColumns)
	}

	row := r.db.QueryRow(ctx, query, notificationID, recipientID)
	n, err := scanNotification(row, profile)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Failed to query notification",
			zap.String("notification_id", notificationID),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.RecordDBQueryDuration("find_one", "notifications", time.Since(start))
	return n, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID string) (int, error) {
	start := time.Now()

	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND read = FALSE`
	if err := r.db.QueryRow(ctx, query, recipientID).Scan(&count); err != nil {
		r.logger.Error("Failed to count unread notifications", zap.Error(err))
		return 0, err
	}

	metrics.RecordDBQueryDuration("count_unread", "notifications", time.Since(start))
	return count, nil
}

// MarkRead marks one notification read. Marking an already-read or
// nonexistent notification is a zero-row update, not an error.
func (r *NotificationRepository) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	start := time.Now()

	query := `UPDATE notifications SET read = TRUE, updated_at = NOW() WHERE id = $1 AND recipient_id = $2 AND read = FALSE`
	if _, err := r.db.Exec(ctx, query, notificationID, recipientID); err != nil {
		r.logger.Error("Failed to mark notification read",
			zap.String("notification_id", notificationID),
			zap.Error(err),
		)
		return err
	}

	metrics.RecordDBQueryDuration("mark_read", "notifications", time.Since(start))
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID string) error {
	start := time.Now()

	query := `UPDATE notifications SET read = TRUE, updated_at = NOW() WHERE recipient_id = $1 AND read = FALSE`
	if _, err := r.db.Exec(ctx, query, recipientID); err != nil {
		r.logger.Error("Failed to mark all notifications read",
			zap.String("recipient_id", recipientID),
			zap.Error(err),
		)
		return err
	}

	metrics.RecordDBQueryDuration("mark_all_read", "notifications", time.Since(start))
	return nil
}

// DeleteAll removes every notification for one user. Used on account
// deletion.
func (r *NotificationRepository) DeleteAll(ctx context.Context, recipientID string) error {
	start := time.Now()

	query := `DELETE FROM notifications WHERE recipient_id = $1`
	if _, err := r.db.Exec(ctx, query, recipientID); err != nil {
		r.logger.Error("Failed to delete notifications",
			zap.String("recipient_id", recipientID),
			zap.Error(err),
		)
		return err
	}

	metrics.RecordDBQueryDuration("delete_all", "notifications", time.Since(start))
	return nil
}

func scanNotification(row pgx.Row, profile model.FetchProfile) (*model.Notification, error) {
	var n model.Notification

	if profile == model.NotificationWithCreator {
		var creatorID, firstName, lastName, avatar *string
		err := row.Scan(
			&n.ID, &n.Idx, &n.Title, &n.Content, &n.Read, &n.MetaData,
			&n.RecipientID, &n.CreatedBy, &n.CreatedAt, &n.UpdatedAt,
			&creatorID, &firstName, &lastName, &avatar,
		)
		if err != nil {
			return nil, err
		}
		if creatorID != nil {
			n.Creator = &model.User{ID: *creatorID}
			if firstName != nil {
				n.Creator.FirstName = *firstName
			}
			if lastName != nil {
				n.Creator.LastName = *lastName
			}
			if avatar != nil {
				n.Creator.Avatar = *avatar
			}
		}
		return &n, nil
	}

	err := row.Scan(
		&n.ID, &n.Idx, &n.Title, &n.Content, &n.Read, &n.MetaData,
		&n.RecipientID, &n.CreatedBy, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
