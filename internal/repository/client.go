package repository

import (
	"context"
	"errors"
	"fmt"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
	apperrors "github.com/umalmyha/leads/internal/errors"
	"github.com/umalmyha/leads/internal/model"
	"github.com/umalmyha/leads/pkg/db/transactor"
	"time"
)

const pgUniqueViolationCode = "23505"

type ClientRepository interface {
	ExistsByPhoneNumber(context.Context, string) (bool, error)
	Create(context.Context, *model.Client) error
	FindAll(context.Context) ([]*model.Client, error)
	Ping(context.Context) error
}

type postgresClientRepository struct {
	trx transactor.PgxWithinTransactionExecutor
}

func NewPostgresClientRepository(trx transactor.PgxWithinTransactionExecutor) ClientRepository {
	return &postgresClientRepository{trx: trx}
}

func (r *postgresClientRepository) ExistsByPhoneNumber(ctx context.Context, phone string) (bool, error) {
	q := "SELECT EXISTS(SELECT 1 FROM clients WHERE phone_number = $1)"

	var exists bool
	if err := r.trx.Executor(ctx).QueryRow(ctx, q, phone).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Create inserts client and assigns generated lead id, unique violation on phone number is reported as ErrDuplicateLead
func (r *postgresClientRepository) Create(ctx context.Context, c *model.Client) error {
	optInDate, err := toPgDate(c.OptInDate)
	if err != nil {
		return err
	}

	preferredTime, err := toPgTime(c.PreferredTime)
	if err != nil {
		return err
	}

	q := `INSERT INTO clients(title, name, surname, phone_number, id_number, email, notes, optindate, preferred_time, offer_id)
          VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING lead_id`

	row := r.trx.Executor(ctx).QueryRow(
		ctx, q, c.Title, c.Name, c.Surname, c.PhoneNumber, c.IDNumber, c.Email, c.Notes, optInDate, preferredTime, c.OfferID,
	)

	var leadID int64
	if err := row.Scan(&leadID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			return apperrors.ErrDuplicateLead
		}
		return err
	}

	c.LeadID = leadID
	return nil
}

func (r *postgresClientRepository) FindAll(ctx context.Context) ([]*model.Client, error) {
	q := `SELECT lead_id, title, name, surname, phone_number, id_number, email, notes, optindate, preferred_time, offer_id
          FROM clients ORDER BY lead_id`

	rows, err := r.trx.Executor(ctx).Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := make([]*model.Client, 0)
	for rows.Next() {
		c, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *postgresClientRepository) Ping(ctx context.Context) error {
	var one int
	return r.trx.Executor(ctx).QueryRow(ctx, "SELECT 1").Scan(&one)
}

func (r *postgresClientRepository) scanRow(row pgx.Row) (*model.Client, error) {
	var c model.Client
	var optInDate pgtype.Date
	var preferredTime pgtype.Time

	err := row.Scan(
		&c.LeadID, &c.Title, &c.Name, &c.Surname, &c.PhoneNumber, &c.IDNumber, &c.Email,
		&c.Notes, &optInDate, &preferredTime, &c.OfferID,
	)
	if err != nil {
		return nil, err
	}

	c.OptInDate = fromPgDate(optInDate)
	c.PreferredTime = fromPgTime(preferredTime)
	return &c, nil
}

func toPgDate(s *string) (pgtype.Date, error) {
	if s == nil {
		return pgtype.Date{Status: pgtype.Null}, nil
	}

	t, err := time.Parse(model.DateLayout, *s)
	if err != nil {
		return pgtype.Date{}, fmt.Errorf("invalid opt-in date %q - %w", *s, err)
	}
	return pgtype.Date{Time: t, Status: pgtype.Present}, nil
}

func fromPgDate(d pgtype.Date) *string {
	if d.Status != pgtype.Present {
		return nil
	}
	s := d.Time.Format(model.DateLayout)
	return &s
}

func toPgTime(s *string) (pgtype.Time, error) {
	if s == nil {
		return pgtype.Time{Status: pgtype.Null}, nil
	}

	t, err := time.Parse(model.ClockLayout, *s)
	if err != nil {
		return pgtype.Time{}, fmt.Errorf("invalid preferred time %q - %w", *s, err)
	}

	sinceMidnight := time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second
	return pgtype.Time{Microseconds: sinceMidnight.Microseconds(), Status: pgtype.Present}, nil
}

func fromPgTime(t pgtype.Time) *string {
	if t.Status != pgtype.Present {
		return nil
	}

	d := time.Duration(t.Microseconds) * time.Microsecond
	s := time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).Add(d).Format(model.ClockLayout)
	return &s
}
