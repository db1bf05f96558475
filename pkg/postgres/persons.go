package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/camp-signup/pkg/core/model"
	"github.com/jakechorley/camp-signup/pkg/db"
)

const personColumns = `id::text, email, name, surname, group_name, age, is_leader`

func scanPerson(row pgx.Row) (model.Person, error) {
	var p model.Person
	var age *int32
	if err := row.Scan(&p.ID, &p.Email, &p.Name, &p.Surname, &p.Group, &age, &p.IsLeader); err != nil {
		return p, err
	}
	if age != nil {
		v := int(*age)
		p.Age = &v
	}
	return p, nil
}

func (d *DB) queryPersons(ctx context.Context, query string, args ...any) ([]model.Person, error) {
	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query persons: %w", err)
	}
	defer rows.Close()

	var persons []model.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		persons = append(persons, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating persons: %w", err)
	}

	return persons, nil
}

// GetPerson retrieves a person by id
func (d *DB) GetPerson(ctx context.Context, id string) (*model.Person, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+personColumns+` FROM person WHERE id = $1`, id)
	p, err := scanPerson(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("person %s: %w", id, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return &p, nil
}

// GetPersons retrieves every person ordered by surname, name
func (d *DB) GetPersons(ctx context.Context) ([]model.Person, error) {
	return d.queryPersons(ctx, `
		SELECT `+personColumns+`
		FROM person
		ORDER BY surname, name, id
	`)
}

// GetGroupMembers retrieves the members of a group
func (d *DB) GetGroupMembers(ctx context.Context, group string) ([]model.Person, error) {
	if group == "" {
		return nil, nil
	}
	return d.queryPersons(ctx, `
		SELECT `+personColumns+`
		FROM person
		WHERE group_name = $1
		ORDER BY surname, name, id
	`, group)
}
