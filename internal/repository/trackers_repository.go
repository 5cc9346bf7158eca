package repository

import (
	"context"
	"errors"
	"log"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	errorvalues "github.com/rgoulart/respectpill/internal/error_values"
	"github.com/rgoulart/respectpill/pkg/entity"
)

// TrackersRepository stores tracker entries. The value and metadata
// payloads live in jsonb columns and round-trip through the EntryValue
// union codec.
type TrackersRepository struct {
	conn PgConnection
}

func NewTrackersRepo(cfg DBConfig) *TrackersRepository {
	return &TrackersRepository{
		conn: newPool(cfg, "trackersRepo"),
	}
}

func NewTrackersRepoWithConn(conn PgConnection) *TrackersRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for trackersRepo: " + err.Error())
	}
	return &TrackersRepository{
		conn: conn,
	}
}

func (tr *TrackersRepository) Create(ctx context.Context, e *entity.Entry) (uuid.UUID, error) {
	value, metadata, err := marshalPayload(e)
	if err != nil {
		return uuid.UUID{}, err
	}
	var id uuid.UUID
	row := tr.conn.QueryRow(ctx, `INSERT INTO trackers (user_id, type, date, value, metadata) VALUES ($1, $2, $3, $4, $5) RETURNING id;`,
		e.UserID,
		string(e.Type),
		e.Date,
		value,
		metadata,
	)
	if err := row.Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// FK violation
			case "23503":
				return uuid.UUID{}, errorvalues.ErrOwnerNotFound
			}
		}
		return uuid.UUID{}, errors.New("creating tracker db error: " + err.Error())
	}
	return id, nil
}

func (tr *TrackersRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Entry, error) {
	row := tr.conn.QueryRow(ctx, `SELECT id, user_id, type, date, value, metadata, created_at, updated_at FROM trackers WHERE id = $1;`, id)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrTrackerNotFound
		}
		return nil, errors.New("getting tracker by id error: " + err.Error())
	}
	return e, nil
}

func (tr *TrackersRepository) GetByUserID(ctx context.Context, uid uuid.UUID, filter ListFilter) ([]*entity.Entry, error) {
	entries := make([]*entity.Entry, 0)
	rows, err := tr.conn.Query(ctx, `SELECT id, user_id, type, date, value, metadata, created_at, updated_at
		FROM trackers WHERE user_id = $1 AND ($2 = '' OR type = $2) AND ($3 = '' OR date >= $3) AND ($4 = '' OR date <= $4)
		ORDER BY date DESC;`, uid, string(filter.Type), filter.From, filter.To)
	if err != nil {
		return nil, errors.New("getting trackers by uid error: " + err.Error())
	}
	defer rows.Close()
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, errors.New("unmarshalling tracker error: " + err.Error())
		}
		entries = append(entries, e)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected error after scanning: " + rows.Err().Error())
	}
	return entries, nil
}

func (tr *TrackersRepository) FindDaily(ctx context.Context, uid uuid.UUID, date string, t entity.TrackerType) (*entity.Entry, error) {
	row := tr.conn.QueryRow(ctx, `SELECT id, user_id, type, date, value, metadata, created_at, updated_at
		FROM trackers WHERE user_id = $1 AND date = $2 AND type = $3;`, uid, date, string(t))
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrTrackerNotFound
		}
		return nil, errors.New("searching daily tracker error: " + err.Error())
	}
	return e, nil
}

func (tr *TrackersRepository) FindWeekly(ctx context.Context, uid uuid.UUID, weekNum, year int, metricID string) (*entity.Entry, error) {
	row := tr.conn.QueryRow(ctx, `SELECT id, user_id, type, date, value, metadata, created_at, updated_at
		FROM trackers WHERE user_id = $1 AND type = 'weekly_metric'
		AND (metadata->>'weekNum')::int = $2 AND (metadata->>'year')::int = $3 AND metadata->>'metricId' = $4;`,
		uid, weekNum, year, metricID)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrTrackerNotFound
		}
		return nil, errors.New("searching weekly tracker error: " + err.Error())
	}
	return e, nil
}

func (tr *TrackersRepository) Update(ctx context.Context, e *entity.Entry) error {
	value, metadata, err := marshalPayload(e)
	if err != nil {
		return err
	}
	ct, err := tr.conn.Exec(ctx, `UPDATE trackers SET date = $1, value = $2, metadata = $3, updated_at = NOW() WHERE id = $4;`,
		e.Date, value, metadata, e.ID,
	)
	if err != nil {
		return errors.New("error updating tracker: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrTrackerNotFound
	}
	return nil
}

func (tr *TrackersRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := tr.conn.Exec(ctx, `DELETE FROM trackers WHERE id = $1;`, id)
	if err != nil {
		return errors.New("error deleting tracker: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrTrackerNotFound
	}
	return nil
}

func marshalPayload(e *entity.Entry) ([]byte, []byte, error) {
	value, err := sonic.Marshal(e.Value)
	if err != nil {
		return nil, nil, errors.New("marshalling tracker value error: " + err.Error())
	}
	metadata, err := sonic.Marshal(e.Metadata)
	if err != nil {
		return nil, nil, errors.New("marshalling tracker metadata error: " + err.Error())
	}
	return value, metadata, nil
}

func scanEntry(row pgx.Row) (*entity.Entry, error) {
	var e entity.Entry
	var typ string
	var value, metadata []byte
	if err := row.Scan(&e.ID, &e.UserID, &typ, &e.Date, &value, &metadata, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Type = entity.TrackerType(typ)
	if len(value) > 0 {
		if err := sonic.Unmarshal(value, &e.Value); err != nil {
			return nil, errors.New("unmarshalling tracker value error: " + err.Error())
		}
	}
	if len(metadata) > 0 {
		if err := sonic.Unmarshal(metadata, &e.Metadata); err != nil {
			return nil, errors.New("unmarshalling tracker metadata error: " + err.Error())
		}
	}
	return &e, nil
}
