package repo

import (
	"context"
	"database/sql"

	"github.com/askthebridge/bridge/internal/model"
)

type TurnRepo struct {
	db *sql.DB
}

func NewTurnRepo(db *sql.DB) *TurnRepo {
	return &TurnRepo{db: db}
}

// Append persists a turn with a store-assigned sequence number. The seq is
// derived inside the INSERT so concurrent writers never hand out the same
// position twice in distinct transactions.
func (r *TurnRepo) Append(ctx context.Context, turn *model.ConversationTurn) error {
	const query = `
		INSERT INTO conversation_turns (conversation_id, role, content, source, author_email, seq, ctime)
		SELECT $1, $2, $3, $4, $5, COALESCE(MAX(seq), 0) + 1, $6
		FROM conversation_turns
		WHERE conversation_id = $1
		RETURNING id, seq
	`
	row := r.db.QueryRowContext(ctx, query,
		turn.ConversationID,
		turn.Role,
		turn.Content,
		turn.Source,
		turn.AuthorEmail,
		turn.Ctime,
	)
	return row.Scan(&turn.ID, &turn.Seq)
}

// ListByConversation returns turns in conversational order. The id tiebreak
// keeps the order stable if two turns ever share a seq.
func (r *TurnRepo) ListByConversation(ctx context.Context, conversationID string) ([]*model.ConversationTurn, error) {
	const query = `
		SELECT id, conversation_id, role, content, source, author_email, seq, ctime
		FROM conversation_turns
		WHERE conversation_id = $1
		ORDER BY seq ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var turns []*model.ConversationTurn
	for rows.Next() {
		var turn model.ConversationTurn
		if err := rows.Scan(&turn.ID, &turn.ConversationID, &turn.Role, &turn.Content,
			&turn.Source, &turn.AuthorEmail, &turn.Seq, &turn.Ctime); err != nil {
			return nil, err
		}
		turns = append(turns, &turn)
	}
	return turns, rows.Err()
}

// ListRecent returns the newest limit turns, oldest first.
func (r *TurnRepo) ListRecent(ctx context.Context, conversationID string, limit int) ([]*model.ConversationTurn, error) {
	const query = `
		SELECT id, conversation_id, role, content, source, author_email, seq, ctime
		FROM (
			SELECT id, conversation_id, role, content, source, author_email, seq, ctime
			FROM conversation_turns
			WHERE conversation_id = $1
			ORDER BY seq DESC, id DESC
			LIMIT $2
		) recent
		ORDER BY seq ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, conversationID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var turns []*model.ConversationTurn
	for rows.Next() {
		var turn model.ConversationTurn
		if err := rows.Scan(&turn.ID, &turn.ConversationID, &turn.Role, &turn.Content,
			&turn.Source, &turn.AuthorEmail, &turn.Seq, &turn.Ctime); err != nil {
			return nil, err
		}
		turns = append(turns, &turn)
	}
	return turns, rows.Err()
}

func (r *TurnRepo) CountByConversation(ctx context.Context, conversationID string) (int64, error) {
	const query = `SELECT COUNT(1) FROM conversation_turns WHERE conversation_id = $1`
	var count int64
	if err := r.db.QueryRowContext(ctx, query, conversationID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
