package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "go-inbox/internal/pkg/chat/application/domain"
	repository "go-inbox/internal/pkg/chat/persistence/repository/port"
)

var errNilPool = errors.New("PgChatRepository: nil pool")

type PgChatRepository struct {
	pool *pgxpool.Pool
}

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool}
}

var _ repository.ChatRepository = (*PgChatRepository)(nil)

func (r *PgChatRepository) CreateConversation(ctx context.Context, c chat.Conversation, members []chat.Participant) (string, error) {
	if r == nil || r.pool == nil {
		return "", errNilPool
	}
	for _, p := range members {
		if _, err := uuid.Parse(p.UserID); err != nil {
			return "", chat.ErrUnknownUser
		}
	}

	var id string
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			"INSERT INTO chat.conversation (name, kind, created_at) VALUES ($1, $2, $3) RETURNING id::text",
			c.Name, string(c.Kind), c.CreatedAt,
		).Scan(&id); err != nil {
			return err
		}
		for _, p := range members {
			if _, err := tx.Exec(ctx, `
				INSERT INTO chat.participant (conversation_id, user_id, role, joined_at)
				VALUES ($1::uuid, $2::uuid, $3, COALESCE($4, now()))
				ON CONFLICT (conversation_id, user_id) DO NOTHING
			`, id, p.UserID, p.Role, nullTime(p.JoinedAt)); err != nil {
				return err
			}
		}
		return nil
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
		return "", chat.ErrUnknownUser
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *PgChatRepository) ListConversationsByUser(ctx context.Context, userID string) ([]chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	rows, err := r.pool.Query(ctx, `
		SELECT c.id::text, c.name, c.kind, c.created_at
		FROM chat.participant p
		JOIN chat.conversation c ON c.id = p.conversation_id
		WHERE p.user_id = $1::uuid
		ORDER BY p.joined_at ASC, c.created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	convs := make([]chat.Conversation, 0)
	for rows.Next() {
		var c chat.Conversation
		if err := rows.Scan(&c.ID, &c.Name, &c.Kind, &c.CreatedAt); err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

func (r *PgChatRepository) GetConversation(ctx context.Context, conversationID string) (*chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	var c chat.Conversation
	err := r.pool.QueryRow(ctx,
		"SELECT id::text, name, kind, created_at FROM chat.conversation WHERE id = $1::uuid",
		conversationID,
	).Scan(&c.ID, &c.Name, &c.Kind, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, chat.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PgChatRepository) IsParticipant(ctx context.Context, conversationID string, userID string) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errNilPool
	}
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM chat.participant WHERE conversation_id = $1::uuid AND user_id = $2::uuid
		)
	`, conversationID, userID).Scan(&ok)
	return ok, err
}

func (r *PgChatRepository) ListParticipantIDs(ctx context.Context, conversationID string) ([]string, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	rows, err := r.pool.Query(ctx,
		"SELECT user_id::text FROM chat.participant WHERE conversation_id = $1::uuid ORDER BY joined_at",
		conversationID,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

const messageColumns = "id::text, conversation_id::text, sender_id::text, sender_name, body, kind, client_id, created_at"

func scanMessage(row pgx.Row) (chat.Message, error) {
	var m chat.Message
	err := row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.SenderName, &m.Body, &m.Kind, &m.ClientID, &m.CreatedAt)
	return m, err
}

func (r *PgChatRepository) SaveMessage(ctx context.Context, m chat.Message) (chat.Message, bool, error) {
	if r == nil || r.pool == nil {
		return chat.Message{}, false, errNilPool
	}
	stored, err := scanMessage(r.pool.QueryRow(ctx, `
		INSERT INTO chat.message (conversation_id, sender_id, sender_name, body, kind, client_id, created_at)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7)
		ON CONFLICT (conversation_id, sender_id, client_id) WHERE client_id IS NOT NULL DO NOTHING
		RETURNING `+messageColumns,
		m.ConversationID, m.SenderID, m.SenderName, m.Body, string(m.Kind), m.ClientID, m.CreatedAt,
	))
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) || m.ClientID == nil {
		return chat.Message{}, false, err
	}

	// conflict on the sender's client_id: hand back the row the first attempt stored
	stored, err = scanMessage(r.pool.QueryRow(ctx,
		"SELECT "+messageColumns+" FROM chat.message WHERE conversation_id = $1::uuid AND sender_id = $2::uuid AND client_id = $3",
		m.ConversationID, m.SenderID, *m.ClientID,
	))
	if err != nil {
		return chat.Message{}, false, err
	}
	return stored, false, nil
}

func (r *PgChatRepository) GetMessagesByConversation(ctx context.Context, conversationID string) ([]chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM chat.message
		WHERE conversation_id = $1::uuid
		ORDER BY created_at ASC, id ASC
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := make([]chat.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
