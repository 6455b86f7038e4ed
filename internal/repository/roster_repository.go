package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/election-tally/internal/model"
)

// RosterRepo reads areas, parties, candidates and voters.  These tables
// are maintained by the administration tooling; the election service only
// reads them.
type RosterRepo struct{ db *sql.DB }

func NewRosterRepo(db *sql.DB) *RosterRepo { return &RosterRepo{db: db} }

func (r *RosterRepo) Area(ctx context.Context, id uint64) (model.Area, error) {
	var a model.Area
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, population, voters FROM areas WHERE id = ?`, id).
		Scan(&a.ID, &a.Name, &a.Description, &a.Population, &a.Voters)
	if err != nil {
		return model.Area{}, notFound(err)
	}
	return a, nil
}

func (r *RosterRepo) Party(ctx context.Context, id uint64) (model.Party, error) {
	var p model.Party
	err := r.db.QueryRowContext(ctx, `SELECT id, name, quote FROM parties WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Quote)
	if err != nil {
		return model.Party{}, notFound(err)
	}
	return p, nil
}

// Parties returns every party ordered by id.
func (r *RosterRepo) Parties(ctx context.Context) ([]model.Party, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, quote FROM parties ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Party
	for rows.Next() {
		var p model.Party
		if err := rows.Scan(&p.ID, &p.Name, &p.Quote); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const candidateColumns = `id, user_id, name, description, area_id, party_id`

func scanCandidate(row interface{ Scan(...any) error }) (model.Candidate, error) {
	var c model.Candidate
	var userID, area, party sql.NullInt64
	if err := row.Scan(&c.ID, &userID, &c.Name, &c.Description, &area, &party); err != nil {
		return model.Candidate{}, err
	}
	c.UserID, c.AreaID, c.PartyID = nullID(userID), nullID(area), nullID(party)
	return c, nil
}

func (r *RosterRepo) Candidate(ctx context.Context, id uint64) (model.Candidate, error) {
	c, err := scanCandidate(r.db.QueryRowContext(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = ?`, id))
	if err != nil {
		return model.Candidate{}, notFound(err)
	}
	return c, nil
}

// CandidatesInArea returns the candidates standing in an area ordered by id.
func (r *RosterRepo) CandidatesInArea(ctx context.Context, areaID uint64) ([]model.Candidate, error) {
	return r.queryCandidates(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE area_id = ? ORDER BY id`, areaID)
}

// Candidates returns every candidate ordered by id.
func (r *RosterRepo) Candidates(ctx context.Context) ([]model.Candidate, error) {
	return r.queryCandidates(ctx, `SELECT `+candidateColumns+` FROM candidates ORDER BY id`)
}

func (r *RosterRepo) queryCandidates(ctx context.Context, q string, args ...any) ([]model.Candidate, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Voter loads the voting view of a user.
func (r *RosterRepo) Voter(ctx context.Context, id uint64) (model.Voter, error) {
	var (
		v    model.Voter
		area sql.NullInt64
		role string
	)
	err := r.db.QueryRowContext(ctx, `SELECT id, area_id, role FROM users WHERE id = ?`, id).
		Scan(&v.ID, &area, &role)
	if err != nil {
		return model.Voter{}, notFound(err)
	}
	v.AreaID = nullID(area)
	v.IsStaff = role == model.RoleStaff
	return v, nil
}
