package model

import "time"

// User is an account resolved from the external identity provider. A row is
// created on the first /api/users/sync call and refreshed on every later one.
type User struct {
	Id         string    `json:"id"              db:"id"`
	ExternalId string    `json:"externalId"      db:"external_id"`
	Email      *string   `json:"email,omitempty" db:"email"`
	CreatedAt  time.Time `json:"createdAt"       db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt"       db:"updated_at"`
}

// Contact is a person whose birthday the owning user wants to remember.
// Month and day are range-checked independently; the day is deliberately not
// validated against the length of the month.
type Contact struct {
	Id            string    `json:"id"                     db:"id"`
	UserId        string    `json:"-"                      db:"user_id"`
	Name          string    `json:"name"                   db:"name"`
	BirthdayMonth int       `json:"birthdayMonth"          db:"birthday_month"`
	BirthdayDay   int       `json:"birthdayDay"            db:"birthday_day"`
	BirthdayYear  *int      `json:"birthdayYear,omitempty" db:"birthday_year"`
	Notes         *string   `json:"notes,omitempty"        db:"notes"`
	CreatedAt     time.Time `json:"createdAt"              db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt"              db:"updated_at"`
}

// ContactPatch holds the fields of a partial contact update. Nil pointers
// mean "leave unchanged".
type ContactPatch struct {
	Name          *string
	BirthdayMonth *int
	BirthdayDay   *int
	BirthdayYear  *int
	Notes         *string
}

// IsEmpty reports whether the patch contains no values to update.
func (p ContactPatch) IsEmpty() bool {
	return p.Name == nil && p.BirthdayMonth == nil && p.BirthdayDay == nil &&
		p.BirthdayYear == nil && p.Notes == nil
}
