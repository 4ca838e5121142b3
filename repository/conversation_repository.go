package repository

import (
	"context"

	"disputedesk-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ConversationRepository handles database operations for chat
// conversations and their messages
type ConversationRepository struct {
	db *pgxpool.Pool
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create creates a new conversation for a dispute
func (r *ConversationRepository) Create(ctx context.Context, conv *models.Conversation) error {
	query := `
		INSERT INTO chat_conversations (dispute_id, user_id)
		VALUES ($1, $2)
		RETURNING id, created_at, last_message_at`

	err := r.db.QueryRow(ctx, query, conv.DisputeID, conv.UserID).
		Scan(&conv.ID, &conv.CreatedAt, &conv.LastMessageAt)

	return err
}

// GetByID retrieves a conversation by ID
func (r *ConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	conv := &models.Conversation{}
	query := `
		SELECT id, dispute_id, user_id, created_at, last_message_at
		FROM chat_conversations
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&conv.ID,
		&conv.DisputeID,
		&conv.UserID,
		&conv.CreatedAt,
		&conv.LastMessageAt,
	)

	if err != nil {
		return nil, err
	}

	return conv, nil
}

// GetOrCreate returns the most recently active conversation for a
// dispute, creating one when none exists
func (r *ConversationRepository) GetOrCreate(ctx context.Context, disputeID, userID uuid.UUID) (*models.Conversation, error) {
	conv := &models.Conversation{}
	query := `
		SELECT id, dispute_id, user_id, created_at, last_message_at
		FROM chat_conversations
		WHERE dispute_id = $1
		ORDER BY last_message_at DESC
		LIMIT 1`

	err := r.db.QueryRow(ctx, query, disputeID).Scan(
		&conv.ID,
		&conv.DisputeID,
		&conv.UserID,
		&conv.CreatedAt,
		&conv.LastMessageAt,
	)

	if err == pgx.ErrNoRows {
		conv = &models.Conversation{DisputeID: disputeID, UserID: userID}
		if err := r.Create(ctx, conv); err != nil {
			return nil, err
		}
		return conv, nil
	}
	if err != nil {
		return nil, err
	}

	return conv, nil
}

// ListByDisputeID retrieves conversations for a dispute, most recently
// active first
func (r *ConversationRepository) ListByDisputeID(ctx context.Context, disputeID uuid.UUID) ([]*models.Conversation, error) {
	query := `
		SELECT id, dispute_id, user_id, created_at, last_message_at
		FROM chat_conversations
		WHERE dispute_id = $1
		ORDER BY last_message_at DESC`

	rows, err := r.db.Query(ctx, query, disputeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []*models.Conversation
	for rows.Next() {
		conv := &models.Conversation{}
		err := rows.Scan(
			&conv.ID,
			&conv.DisputeID,
			&conv.UserID,
			&conv.CreatedAt,
			&conv.LastMessageAt,
		)
		if err != nil {
			return nil, err
		}
		convs = append(convs, conv)
	}

	return convs, rows.Err()
}

// AppendMessage appends a message to its conversation and touches the
// conversation's last-activity timestamp
func (r *ConversationRepository) AppendMessage(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO chat_messages (
			conversation_id, dispute_id, user_id, role, content, sources
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		msg.ConversationID,
		msg.DisputeID,
		msg.UserID,
		msg.Role,
		msg.Content,
		msg.Sources,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx,
		`UPDATE chat_conversations SET last_message_at = NOW() WHERE id = $1`,
		msg.ConversationID,
	)
	return err
}

// ListMessages retrieves a conversation's messages in creation order
func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]*models.Message, error) {
	query := `
		SELECT id, conversation_id, dispute_id, user_id, role, content, sources, created_at
		FROM chat_messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		msg := &models.Message{}
		err := rows.Scan(
			&msg.ID,
			&msg.ConversationID,
			&msg.DisputeID,
			&msg.UserID,
			&msg.Role,
			&msg.Content,
			&msg.Sources,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}
