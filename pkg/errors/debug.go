package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrorDump is the log-only view of a failed request. Nothing in it is sent
// to clients.
type ErrorDump struct {
	Message string
	Code    Code
	Chain   []string
	DB      *DBError
}

// DBError holds what the database driver reported, when it reported anything.
type DBError struct {
	Driver     string
	Code       string
	Constraint string
	Table      string
	Column     string
	Detail     string
	Message    string
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}
	d := ErrorDump{Message: err.Error(), Code: CodeInternal, DB: dbError(err)}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	return d
}

// Fields flattens the dump for structured logging.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{
		"error":       d.Message,
		"error_code":  string(d.Code),
		"error_chain": d.Chain,
	}
	if db := d.DB; db != nil {
		fields["db_driver"] = db.Driver
		fields["db_code"] = db.Code
		fields["db_message"] = db.Message
		for key, value := range map[string]string{
			"db_constraint": db.Constraint,
			"db_table":      db.Table,
			"db_column":     db.Column,
			"db_detail":     db.Detail,
		} {
			if value != "" {
				fields[key] = value
			}
		}
	}
	return fields
}

func dbError(err error) *DBError {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return &DBError{
			Driver:     "pgx",
			Code:       pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &DBError{
			Driver:     "pq",
			Code:       string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}
	}

	// sqlite errors only carry text, e.g. "UNIQUE constraint failed: stores.supplier_id".
	for e := err; e != nil; e = errors.Unwrap(e) {
		msg := e.Error()
		if idx := strings.Index(msg, " constraint failed: "); idx > 0 {
			return &DBError{
				Driver:     "sqlite",
				Code:       strings.TrimSpace(msg[:idx]),
				Constraint: strings.TrimSpace(msg[idx+len(" constraint failed: "):]),
				Message:    msg,
			}
		}
	}
	return nil
}
