package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Store is the per-user notification inbox.
//
// MarkRead is idempotent and never overwrites an existing ReadAt. MarkClicked
// increments the click counter atomically, refreshes ClickedAt on every call
// and forces the read state (preserving an earlier ReadAt). Delete is
// idempotent; deleting an unknown id is not an error. MarkRead and
// MarkClicked on an unknown id return ErrNotFound.
type Store interface {
	Create(ctx context.Context, n Notification) (Notification, error)
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkClicked(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
}

// PGStore is the Postgres-backed Store. All mutations are single-row atomic
// updates; the click counter increments in SQL so concurrent clicks never
// lose updates.
type PGStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPGStore(pool *pgxpool.Pool, logger *zap.Logger) *PGStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PGStore{pool: pool, logger: logger}
}

const notificationCols = `id, user_id, title, message, type, priority,
	is_read, is_clicked, click_count, message_url, related_id, related_type,
	expires_at, read_at, clicked_at, created_at`

func scanNotification(scan func(dest ...interface{}) error) (Notification, error) {
	var n Notification
	var messageURL, relatedType *string

	err := scan(
		&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.Priority,
		&n.IsRead, &n.IsClicked, &n.ClickCount, &messageURL, &n.RelatedID, &relatedType,
		&n.ExpiresAt, &n.ReadAt, &n.ClickedAt, &n.CreatedAt,
	)
	if err != nil {
		return n, err
	}
	if messageURL != nil {
		n.MessageURL = *messageURL
	}
	if relatedType != nil {
		n.RelatedType = *relatedType
	}
	return n, nil
}

func (s *PGStore) Create(ctx context.Context, n Notification) (Notification, error) {
	if err := n.Validate(); err != nil {
		return Notification{}, err
	}

	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO notifications (user_id, title, message, type, priority,
			message_url, related_id, related_type, expires_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, NULLIF($8, ''), $9)
		RETURNING %s
	`, notificationCols),
		n.UserID, n.Title, n.Message, n.Type, n.Priority,
		n.MessageURL, n.RelatedID, n.RelatedType, n.ExpiresAt,
	)

	created, err := scanNotification(row.Scan)
	if err != nil {
		s.logger.Error("notification insert failed", zap.Error(err))
		return Notification{}, fmt.Errorf("insert notification: %w", err)
	}
	return created, nil
}

func (s *PGStore) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]Notification, error) {
	sql := fmt.Sprintf("SELECT %s FROM notifications WHERE user_id = $1", notificationCols)
	if unreadOnly {
		sql += " AND is_read = false"
	}
	sql += " ORDER BY created_at DESC"

	rows, err := s.pool.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := []Notification{}
	for rows.Next() {
		n, err := scanNotification(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

func (s *PGStore) MarkRead(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE notifications
		SET is_read = true, read_at = NOW()
		WHERE id = $1 AND is_read = false
	`, id)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Zero rows means either already read (fine) or unknown id.
	var exists bool
	if err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM notifications WHERE id = $1)", id).Scan(&exists); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) MarkClicked(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE notifications
		SET is_clicked = true,
			clicked_at = NOW(),
			click_count = click_count + 1,
			is_read = true,
			read_at = COALESCE(read_at, NOW())
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("mark clicked: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM notifications WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

func (s *PGStore) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = false", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("unread count: %w", err)
	}
	return count, nil
}
