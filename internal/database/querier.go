package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"kaizen-online/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrEmployeeNotFound = errors.New("employee not found")

const eventPageSize = 100

type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type CreateEmployeeParams struct {
	EmployeeCode string
	PasswordHash string
	DisplayName  *string
	Department   *string
	Role         string
}

func (q *Queries) CreateEmployee(ctx context.Context, arg CreateEmployeeParams) (*models.Employee, error) {
	role := arg.Role
	if role == "" {
		role = "employee"
	}

	query := `
		INSERT INTO employees (employee_code, password_hash, display_name, department, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, employee_code, password_hash, display_name, department, role, created_at
	`
	var e models.Employee
	err := q.db.QueryRow(ctx, query, arg.EmployeeCode, arg.PasswordHash, arg.DisplayName, arg.Department, role).Scan(
		&e.ID, &e.EmployeeCode, &e.PasswordHash, &e.DisplayName, &e.Department, &e.Role, &e.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create employee %s: %w", arg.EmployeeCode, err)
	}
	return &e, nil
}

func (q *Queries) GetEmployeeByCode(ctx context.Context, code string) (*models.Employee, error) {
	query := `
		SELECT
			id,
			employee_code,
			password_hash,
			display_name,
			department,
			role,
			created_at
		FROM employees
		WHERE employee_code = $1
	`
	var e models.Employee

	err := q.db.QueryRow(ctx, query, code).Scan(
		&e.ID,
		&e.EmployeeCode,
		&e.PasswordHash,
		&e.DisplayName,
		&e.Department,
		&e.Role,
		&e.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}

	return &e, nil
}

type LogSessionEventParams struct {
	EmployeeCode string
	ClientID     string
	SessionID    string
	EventType    string
	Payload      interface{}
}

func (q *Queries) LogSessionEvent(ctx context.Context, arg LogSessionEventParams) error {
	payload, err := json.Marshal(arg.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	query := `
		INSERT INTO session_events (employee_code, client_id, session_id, event_type, payload)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = q.db.Exec(ctx, query, arg.EmployeeCode, arg.ClientID, arg.SessionID, arg.EventType, payload)
	return err
}

// GetEventsSince pages through an employee's journal in id order.
func (q *Queries) GetEventsSince(ctx context.Context, employeeCode string, sinceID int64) ([]models.SessionEvent, error) {
	query := `
		SELECT id, employee_code, client_id, session_id, event_type, event_time, payload
		FROM session_events
		WHERE employee_code = $1 AND id > $2
		ORDER BY id ASC
		LIMIT $3
	`
	rows, err := q.db.Query(ctx, query, employeeCode, sinceID, eventPageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.SessionEvent
	for rows.Next() {
		var event models.SessionEvent
		err := rows.Scan(
			&event.ID,
			&event.EmployeeCode,
			&event.ClientID,
			&event.SessionID,
			&event.EventType,
			&event.EventTime,
			&event.Payload,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if events == nil {
		return []models.SessionEvent{}, nil
	}

	return events, nil
}
