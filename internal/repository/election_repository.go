package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/election-tally/internal/model"
)

// ElectionRepo reads and writes the elections table.
type ElectionRepo struct{ db *sql.DB }

func NewElectionRepo(db *sql.DB) *ElectionRepo { return &ElectionRepo{db: db} }

const electionColumns = `id, name, description, start_date, end_date, created_at, updated_at`

func scanElection(row interface{ Scan(...any) error }) (model.Election, error) {
	var e model.Election
	err := row.Scan(&e.ID, &e.Name, &e.Description, &e.StartDate, &e.EndDate, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// Election fetches one election by id.
func (r *ElectionRepo) Election(ctx context.Context, id uint64) (model.Election, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+electionColumns+` FROM elections WHERE id = ?`, id)
	e, err := scanElection(row)
	if err != nil {
		return model.Election{}, notFound(err)
	}
	return e, nil
}

// ListElections returns every election ordered by id.
func (r *ElectionRepo) ListElections(ctx context.Context) ([]model.Election, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+electionColumns+` FROM elections ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Election
	for rows.Next() {
		e, err := scanElection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CreateElection inserts e and fills in ID and timestamps.
func (r *ElectionRepo) CreateElection(ctx context.Context, e *model.Election) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO elections (name, description, start_date, end_date, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.Name, e.Description, e.StartDate, e.EndDate, now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	e.CreatedAt, e.UpdatedAt = now, now
	return nil
}

// UpdateElectionDetails changes name and description.  The schedule
// columns are never touched.
func (r *ElectionRepo) UpdateElectionDetails(ctx context.Context, id uint64, name, description string) (model.Election, error) {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE elections SET name = ?, description = ? WHERE id = ?`, name, description, id); err != nil {
		return model.Election{}, err
	}
	// affected rows is zero for unchanged values, so existence is decided
	// by the re-read
	return r.Election(ctx, id)
}
