package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/battleship-backend/internal/battleship"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

var ErrMatchNotFound = errors.New("match not found")

// MatchRepository archives finished games.
type MatchRepository interface {
	Save(ctx context.Context, match *entity.Match) error
	GetByID(ctx context.Context, id string) (*entity.Match, error)
	ListByPlayer(ctx context.Context, playerID string) ([]*entity.Match, error)
}

type matchRepository struct {
	conn *sql.DB
}

func NewMatchRepository(conn *sql.DB) MatchRepository {
	return &matchRepository{
		conn: conn,
	}
}

// Save archives a match. A match id is written once; saving it again keeps the first record.
func (that *matchRepository) Save(ctx context.Context, match *entity.Match) error {
	query := `INSERT INTO matches (id, game_type, winner_id, loser_id, winner_role, guesses, state, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`

	state, err := json.Marshal(match.State)
	if err != nil {
		return fmt.Errorf("can't marshal match state: %w", err)
	}

	_, err = that.conn.ExecContext(ctx, query,
		match.ID, match.Type, match.WinnerID, match.LoserID, string(match.WinnerRole), match.Guesses, string(state), match.FinishedAt)
	if err != nil {
		return fmt.Errorf("can't save match: %w", err)
	}

	return nil
}

func (that *matchRepository) GetByID(ctx context.Context, id string) (*entity.Match, error) {
	query := `SELECT id, game_type, winner_id, loser_id, winner_role, guesses, state, finished_at
		FROM matches WHERE id = ?`

	match, err := scanMatch(that.conn.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't find match: %w", err)
	}

	return match, nil
}

func (that *matchRepository) ListByPlayer(ctx context.Context, playerID string) ([]*entity.Match, error) {
	query := `SELECT id, game_type, winner_id, loser_id, winner_role, guesses, state, finished_at
		FROM matches WHERE winner_id = ? OR loser_id = ? ORDER BY finished_at DESC`

	rows, err := that.conn.QueryContext(ctx, query, playerID, playerID)
	if err != nil {
		return nil, fmt.Errorf("can't list matches: %w", err)
	}
	defer rows.Close()

	var matches []*entity.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("can't read match: %w", err)
		}
		matches = append(matches, match)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't list matches: %w", err)
	}

	return matches, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (*entity.Match, error) {
	var (
		match      entity.Match
		winnerRole string
		state      string
	)

	err := row.Scan(&match.ID, &match.Type, &match.WinnerID, &match.LoserID, &winnerRole, &match.Guesses, &state, &match.FinishedAt)
	if err != nil {
		return nil, err
	}

	match.WinnerRole = battleship.Player(winnerRole)
	if err = json.Unmarshal([]byte(state), &match.State); err != nil {
		return nil, fmt.Errorf("can't unmarshal match state: %w", err)
	}

	return &match, nil
}
