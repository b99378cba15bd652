package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wrenn/capitolwatch/internal/contracts"
)

// MemberRepository implements contracts.MemberRepository.
type MemberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository creates a new member repository.
func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{pool: pool}
}

// GetOrCreate returns the id for (name, chamber), inserting the member
// if needed. Descriptive fields are only updated when the incoming
// value is non-empty, so a sparse source never erases a richer one.
func (r *MemberRepository) GetOrCreate(ctx context.Context, m *contracts.Member) (int64, error) {
	query := `
		INSERT INTO members (name, chamber, party, state, district)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name, chamber) DO UPDATE SET
			party = COALESCE(NULLIF(EXCLUDED.party, ''), members.party),
			state = COALESCE(NULLIF(EXCLUDED.state, ''), members.state),
			district = COALESCE(NULLIF(EXCLUDED.district, ''), members.district)
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query, m.Name, m.Chamber, m.Party, m.State, m.District).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("get or create member: %w", err)
	}
	return id, nil
}

// ByName returns the member with an exact name match, or nil.
func (r *MemberRepository) ByName(ctx context.Context, name string) (*contracts.Member, error) {
	query := `
		SELECT id, name, chamber, party, state, district
		FROM members
		WHERE name = $1
		LIMIT 1
	`

	var m contracts.Member
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&m.ID, &m.Name, &m.Chamber, &m.Party, &m.State, &m.District,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SearchByName returns the first member whose name contains the given
// fragment (case-insensitive), or nil.
func (r *MemberRepository) SearchByName(ctx context.Context, name string) (*contracts.Member, error) {
	query := `
		SELECT id, name, chamber, party, state, district
		FROM members
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT 1
	`

	var m contracts.Member
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&m.ID, &m.Name, &m.Chamber, &m.Party, &m.State, &m.District,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
