// Package store implements the relational persistence layer on MySQL via
// sqlx. Every contact read and write is filtered by both the record id and
// the owning user id, so a row owned by somebody else is indistinguishable
// from a row that does not exist.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gitlab.com/dirk.krummacker/birthday-assistant/internal/model"
)

// ErrNotFound is returned when a row is absent or owned by a different user.
var ErrNotFound = errors.New("not found")

// Store wraps the database handle and the prepared statements for the hot
// paths. Prepared statements offer a significant speed increase if executed
// many times.
type Store struct {
	db *sqlx.DB

	insertContact        *sqlx.NamedStmt
	selectContact        *sqlx.Stmt
	selectContacts       *sqlx.Stmt
	deleteContact        *sqlx.Stmt
	selectUserByExternal *sqlx.Stmt
}

// New initializes the sqlx wrapper around the specified sql database and
// prepares all statements. The database argument can be a real connection
// pool for production use or a mock database within unit tests.
func New(sqlDB *sql.DB) (*Store, error) {
	db := sqlx.NewDb(sqlDB, "mysql")
	s := &Store{db: db}

	var err error
	s.insertContact, err = db.PrepareNamed(`
		INSERT INTO contacts (id, user_id, name, birthday_month, birthday_day, birthday_year, notes)
		VALUES (:id, :user_id, :name, :birthday_month, :birthday_day, :birthday_year, :notes)
	`)
	if err != nil {
		return nil, fmt.Errorf("preparing contact insert: %w", err)
	}
	s.selectContact, err = db.Preparex(`
		SELECT * FROM contacts WHERE id = ? AND user_id = ?
	`)
	if err != nil {
		return nil, fmt.Errorf("preparing contact select: %w", err)
	}
	s.selectContacts, err = db.Preparex(`
		SELECT * FROM contacts WHERE user_id = ? ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("preparing contact listing: %w", err)
	}
	s.deleteContact, err = db.Preparex(`
		DELETE FROM contacts WHERE id = ? AND user_id = ?
	`)
	if err != nil {
		return nil, fmt.Errorf("preparing contact delete: %w", err)
	}
	s.selectUserByExternal, err = db.Preparex(`
		SELECT * FROM users WHERE external_id = ?
	`)
	if err != nil {
		return nil, fmt.Errorf("preparing user select: %w", err)
	}
	return s, nil
}

// Close releases the prepared statements and the underlying pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertUser creates a user row for the external identity or, when one
// already exists, refreshes its email and update timestamp. The operation is
// idempotent: the users table is unique on external_id, so repeated syncs
// touch the same row.
func (s *Store) UpsertUser(ctx context.Context, externalId string, email *string) (model.User, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, external_id, email)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE email = VALUES(email), updated_at = CURRENT_TIMESTAMP
	`, uuid.NewString(), externalId, email)
	if err != nil {
		return model.User{}, fmt.Errorf("upserting user: %w", err)
	}
	return s.UserByExternalId(ctx, externalId)
}

// UserByExternalId resolves the internal user record for an identity
// provider subject. Returns ErrNotFound if the identity was never synced.
func (s *Store) UserByExternalId(ctx context.Context, externalId string) (model.User, error) {
	var user model.User
	err := s.selectUserByExternal.GetContext(ctx, &user, externalId)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("selecting user: %w", err)
	}
	return user, nil
}

// CreateContact inserts a contact for the owning user and returns the stored
// row including its assigned id and timestamps.
func (s *Store) CreateContact(ctx context.Context, contact model.Contact) (model.Contact, error) {
	contact.Id = uuid.NewString()
	if _, err := s.insertContact.ExecContext(ctx, contact); err != nil {
		return model.Contact{}, fmt.Errorf("inserting contact: %w", err)
	}
	return s.ContactById(ctx, contact.UserId, contact.Id)
}

// ContactsByUser returns all contacts owned by the user, ordered by name.
func (s *Store) ContactsByUser(ctx context.Context, userId string) ([]model.Contact, error) {
	contacts := []model.Contact{}
	if err := s.selectContacts.SelectContext(ctx, &contacts, userId); err != nil {
		return nil, fmt.Errorf("selecting contacts: %w", err)
	}
	return contacts, nil
}

// ContactById returns a single contact, filtered by id and owning user.
func (s *Store) ContactById(ctx context.Context, userId, id string) (model.Contact, error) {
	var contact model.Contact
	err := s.selectContact.GetContext(ctx, &contact, id, userId)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Contact{}, ErrNotFound
	}
	if err != nil {
		return model.Contact{}, fmt.Errorf("selecting contact: %w", err)
	}
	return contact, nil
}

// UpdateContact applies the non-nil fields of the patch to the contact and
// returns the new version of the row. The row is looked up scoped to the
// owner first so that updating somebody else's contact reports ErrNotFound,
// exactly like a missing row.
func (s *Store) UpdateContact(ctx context.Context, userId, id string, patch model.ContactPatch) (model.Contact, error) {
	if _, err := s.ContactById(ctx, userId, id); err != nil {
		return model.Contact{}, err
	}

	var assignments []string
	var args []interface{}
	if patch.Name != nil {
		assignments = append(assignments, "name=?")
		args = append(args, *patch.Name)
	}
	if patch.BirthdayMonth != nil {
		assignments = append(assignments, "birthday_month=?")
		args = append(args, *patch.BirthdayMonth)
	}
	if patch.BirthdayDay != nil {
		assignments = append(assignments, "birthday_day=?")
		args = append(args, *patch.BirthdayDay)
	}
	if patch.BirthdayYear != nil {
		assignments = append(assignments, "birthday_year=?")
		args = append(args, *patch.BirthdayYear)
	}
	if patch.Notes != nil {
		assignments = append(assignments, "notes=?")
		args = append(args, *patch.Notes)
	}
	if len(assignments) == 0 {
		return s.ContactById(ctx, userId, id)
	}

	query := "UPDATE contacts SET " + strings.Join(assignments, ", ") + " WHERE id=? AND user_id=?"
	args = append(args, id, userId)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return model.Contact{}, fmt.Errorf("updating contact: %w", err)
	}
	return s.ContactById(ctx, userId, id)
}

// DeleteContact removes the contact. Returns ErrNotFound when no row matched
// the id and owner.
func (s *Store) DeleteContact(ctx context.Context, userId, id string) error {
	result, err := s.deleteContact.ExecContext(ctx, id, userId)
	if err != nil {
		return fmt.Errorf("deleting contact: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting contact: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
