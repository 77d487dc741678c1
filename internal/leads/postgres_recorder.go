package leads

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRecorder writes leads straight into the centralized leads table when
// the intake service itself is the system of record (RECORD_BACKEND=postgres).
type PostgresRecorder struct {
	db execer
}

// NewPostgresRecorder initializes a recorder backed by pgxpool.
func NewPostgresRecorder(pool *pgxpool.Pool) *PostgresRecorder {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRecorder{db: pool}
}

func newPostgresRecorderWithExec(db execer) *PostgresRecorder {
	if db == nil {
		panic("leads: exec required")
	}
	return &PostgresRecorder{db: db}
}

const insertLeadSQL = `
	INSERT INTO leads (
		created_at, website_source, form_type, first_name, last_name, email, phone,
		company, service_interest, message, status, assigned_to,
		organization_name, title, organization_type, potential_users,
		website, region, preferred_contact_method, best_time_to_contact
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		$13, $14, $15, $16, $17, $18, $19, $20
	)
`

// Record inserts one row. The table's id is an identity column; the record's
// client-side id is not a persistence key.
func (r *PostgresRecorder) Record(ctx context.Context, sub Submission) error {
	lead := sub.Lead
	p := sub.Payload.Lead
	_, err := r.db.Exec(ctx, insertLeadSQL,
		lead.CreatedAt,
		lead.Source,
		string(lead.FormType),
		p.FirstName,
		p.LastName,
		lead.Email,
		lead.Phone,
		lead.Company,
		optional(lead.ServiceInterest),
		lead.Message,
		string(lead.Status),
		lead.AssignedTo,
		optional(lead.OrganizationName),
		optional(lead.Title),
		optional(lead.OrganizationType),
		optional(lead.PotentialUsers),
		optional(lead.Website),
		optional(lead.Region),
		optional(lead.PreferredContactMethod),
		optional(lead.BestTimeToContact),
	)
	if err != nil {
		return &RecordError{Err: fmt.Errorf("leads: insert failed: %w", err)}
	}
	return nil
}

var _ Recorder = (*PostgresRecorder)(nil)
