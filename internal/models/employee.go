package models

import "time"

type Employee struct {
	ID           int64     `json:"id" db:"id"`
	EmployeeCode string    `json:"employee_code" db:"employee_code"`
	PasswordHash string    `json:"-" db:"password_hash"`
	DisplayName  *string   `json:"display_name,omitempty" db:"display_name"`
	Department   *string   `json:"department,omitempty" db:"department"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
