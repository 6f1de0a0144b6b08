package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"immodash/internal/domain"
)

func valStr(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

func (r *Repo) FetchProperties(ctx context.Context) ([]domain.RawRecord, error) {
	return r.records(ctx, "locaux", selectPropertiesSQL)
}

func (r *Repo) FetchVisits(ctx context.Context) ([]domain.RawRecord, error) {
	return r.records(ctx, "visite_programmee", selectVisitsSQL)
}

// FetchPublications returns the newest limit messages.
func (r *Repo) FetchPublications(ctx context.Context, limit int) ([]domain.RawRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	return r.records(ctx, "publications", selectPublicationsSQL, limit)
}

// FetchImages returns up to 2000 photo rows grouped by publication.
func (r *Repo) FetchImages(ctx context.Context) ([]domain.RawRecord, error) {
	return r.records(ctx, "images", selectImagesSQL)
}

func (r *Repo) FetchPipelineStages(ctx context.Context) (map[string]domain.Stage, error) {
	rows, err := r.db.QueryContext(ctx, selectPipelineSQL)
	if err != nil {
		return nil, fmt.Errorf("pipeline_status: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.Stage)
	for rows.Next() {
		var id, stage string
		if err := rows.Scan(&id, &stage); err != nil {
			return nil, err
		}
		// unknown stages left by older clients are ignored; the card falls back to its derived column
		if st := domain.Stage(stage); st.Valid() {
			out[id] = st
		}
	}
	return out, rows.Err()
}

func (r *Repo) UpdatePipelineStatus(ctx context.Context, id string, stage domain.Stage) error {
	if !stage.Valid() {
		return domain.ErrInvalidStage
	}
	if strings.TrimSpace(id) == "" {
		return domain.ErrUnknownCard
	}
	_, err := r.db.ExecContext(ctx, upsertPipelineSQL, id, string(stage))
	return err
}

// FetchGroupNames maps WhatsApp group ids to their display names.
func (r *Repo) FetchGroupNames(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, selectGroupsSQL)
	if err != nil {
		return nil, fmt.Errorf("whatsapp_groups: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var jid, name string
		if err := rows.Scan(&jid, &name); err != nil {
			return nil, err
		}
		out[jid] = name
	}
	return out, rows.Err()
}

func (r *Repo) UpsertGroup(ctx context.Context, jid, name string) error {
	_, err := r.db.ExecContext(ctx, upsertGroupSQL, jid, valStr(name))
	return err
}

func (r *Repo) FindUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, findUserSQL, strings.ToLower(strings.TrimSpace(email)))

	var u domain.User
	var id int64
	var name, role, hash sql.NullString
	if err := row.Scan(&id, &u.Email, &name, &role, &hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	u.ID = fmt.Sprint(id)
	if name.Valid {
		u.Name = name.String
	}
	if role.Valid {
		u.Role = domain.Role(role.String)
	}
	if hash.Valid {
		u.PasswordHash = hash.String
	}
	return u, nil
}

// UpsertUser creates or updates an account. An empty hash keeps the stored one.
func (r *Repo) UpsertUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, upsertUserSQL,
		strings.ToLower(strings.TrimSpace(u.Email)),
		valStr(u.Name),
		valStr(string(u.Role)),
		valStr(u.PasswordHash),
	)
	return err
}

// records scans every column of every row into a RawRecord.
func (r *Repo) records(ctx context.Context, table, query string, args ...any) ([]domain.RawRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []domain.RawRecord
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%s: %w", table, err)
		}
		rec := make(domain.RawRecord, len(cols))
		for i, c := range cols {
			// the driver hands text columns back as []byte
			if b, ok := vals[i].([]byte); ok {
				rec[c] = string(b)
				continue
			}
			rec[c] = vals[i]
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", table, err)
	}
	return out, nil
}
