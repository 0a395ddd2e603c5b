package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"notifyhub/internal/model"
	"notifyhub/pkg/metrics"
)

type FcmTokenRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewFcmTokenRepository(db *pgxpool.Pool, logger *zap.Logger) *FcmTokenRepository {
	return &FcmTokenRepository{
		db:     db,
		logger: logger,
	}
}

const fcmTokenColumns = `uid, web, android, ios, created_at, updated_at`

// FindByUserIDs returns the registration rows for the given users in one
// query. Users without a row are simply absent from the result.
func (r *FcmTokenRepository) FindByUserIDs(ctx context.Context, userIDs []string) ([]model.FcmToken, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	start := time.Now()

	query := fmt.Sprintf(`SELECT %s FROM fcm_tokens WHERE uid = ANY($1)`, fcmTokenColumns)
	rows, err := r.db.Query(ctx, query, userIDs)
	if err != nil {
		r.logger.Error("Failed to query fcm tokens", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []model.FcmToken
	for rows.Next() {
		var t model.FcmToken
		if err := rows.Scan(&t.UID, &t.Web, &t.Android, &t.IOS, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	metrics.RecordDBQueryDuration("find_by_user_ids", "fcm_tokens", time.Since(start))
	return out, nil
}

func (r *FcmTokenRepository) FindByUserID(ctx context.Context, userID string) (*model.FcmToken, error) {
	query := fmt.Sprintf(`SELECT %s FROM fcm_tokens WHERE uid = $1`, fcmTokenColumns)

	var t model.FcmToken
	err := r.db.QueryRow(ctx, query, userID).Scan(&t.UID, &t.Web, &t.Android, &t.IOS, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Upsert registers tokens for a user. Only the platforms present in the
// request are overwritten; the others keep their current value. Last
// write wins when the same user registers concurrently.
func (r *FcmTokenRepository) Upsert(ctx context.Context, userID string, web, android, ios *string) (*model.FcmToken, error) {
	start := time.Now()

	query := fmt.Sprintf(`
        INSERT INTO fcm_tokens (uid, web, android, ios)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (uid) DO UPDATE SET
            web = COALESCE($2, fcm_tokens.web),
            android = COALESCE($3, fcm_tokens.android),
            ios = COALESCE($4, fcm_tokens.ios),
            updated_at = NOW()
        RETURNING %s
    `, fcmTokenColumns)

	var t model.FcmToken
	err := r.db.QueryRow(ctx, query, userID, web, android, ios).
		Scan(&t.UID, &t.Web, &t.Android, &t.IOS, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to upsert fcm token",
			zap.String("uid", userID),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.RecordDBQueryDuration("upsert", "fcm_tokens", time.Since(start))
	return &t, nil
}

// RemovePlatform clears one platform slot, e.g. on sign-out. Clearing a
// slot that is already empty is a no-op.
func (r *FcmTokenRepository) RemovePlatform(ctx context.Context, userID string, platform model.Platform) error {
	if !platform.Valid() {
		return fmt.Errorf("invalid platform %q", platform)
	}

	start := time.Now()

	// Column name comes from the validated platform enum, never from input.
	query := fmt.Sprintf(`UPDATE fcm_tokens SET %s = NULL, updated_at = NOW() WHERE uid = $1`, string(platform))
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		r.logger.Error("Failed to remove fcm token",
			zap.String("uid", userID),
			zap.String("platform", string(platform)),
			zap.Error(err),
		)
		return err
	}

	metrics.RecordDBQueryDuration("remove_platform", "fcm_tokens", time.Since(start))
	return nil
}
