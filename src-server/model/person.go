package model

import (
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

type Person struct {
	bun.BaseModel `bun:"table:person"`

	ID      int64  `bun:"id,pk,autoincrement" json:"id"` // assigned by PersonStore.Create
	Name    string `bun:"name,notnull" json:"name"`      // required
	Email   string `bun:"email,notnull" json:"email"`    // required
	Note    string `bun:"note" json:"note,omitempty"`
	Version int64  `bun:"version,notnull" json:"version"`
}

// Equal reports whether both values identify the same persisted person.
func (p *Person) Equal(other *Person) bool {
	if p == nil || other == nil {
		return false
	}
	return p.ID != 0 && p.ID == other.ID
}

func (p *Person) String() string {
	if p == nil {
		return "<nil person>"
	}
	return fmt.Sprintf("person{id=%d name=%q email=%q}", p.ID, p.Name, p.Email)
}

func (p *Person) validate(op string) error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return invalidArg(op, "person name is blank")
	case strings.TrimSpace(p.Email) == "":
		return invalidArg(op, "person email is blank")
	}
	return nil
}
