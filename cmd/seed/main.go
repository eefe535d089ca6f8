// seed creates an employee account; go run ./cmd/seed -code E001 -password secret
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"kaizen-online/internal/auth"
	"kaizen-online/internal/config"
	"kaizen-online/internal/database"
)

func main() {
	code := flag.String("code", "", "Employee code, e.g. E001")
	password := flag.String("password", "", "Initial password")
	name := flag.String("name", "", "Display name")
	department := flag.String("department", "", "Department")
	role := flag.String("role", "employee", "Role")
	flag.Parse()

	if *code == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "seed: -code and -password are required")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DB.Source)
	if err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
	defer pool.Close()

	hash, err := auth.HashPassword(*password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}

	employee, err := database.NewStore(pool).CreateEmployee(ctx, database.CreateEmployeeParams{
		EmployeeCode: *code,
		PasswordHash: hash,
		DisplayName:  optional(*name),
		Department:   optional(*department),
		Role:         *role,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
	fmt.Printf("seed: created employee %s (id %d)\n", employee.EmployeeCode, employee.ID)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
