package contacts

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyQuery is returned when a query names no field to search by.
var ErrEmptyQuery = errors.New("contact query needs a name, phone or email")

// Labeled is a phone number or email address with its address-book label.
type Labeled struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Contact is an address-book entry as returned by the resolver.
type Contact struct {
	FullName string    `json:"fullName"`
	Phones   []Labeled `json:"phones"`
	Emails   []Labeled `json:"emails"`
}

// Query selects contacts by exactly one of its fields.
type Query struct {
	Name  string
	Phone string
	Email string
}

// Validate checks that exactly one field is set.
func (q Query) Validate() error {
	set := 0
	for _, v := range []string{q.Name, q.Phone, q.Email} {
		if strings.TrimSpace(v) != "" {
			set++
		}
	}
	switch set {
	case 0:
		return ErrEmptyQuery
	case 1:
		return nil
	default:
		return errors.New("contact query must set only one of name, phone or email")
	}
}

// Resolver looks contacts up in the device address book.
type Resolver interface {
	Resolve(ctx context.Context, q Query) ([]Contact, error)
}

// Identifiers returns every phone number and email across the given
// contacts, in order, without duplicates.
func Identifiers(found []Contact) (phones, emails []string) {
	seen := make(map[string]bool)
	for _, c := range found {
		for _, p := range c.Phones {
			v := strings.TrimSpace(p.Value)
			if v == "" || seen["p:"+v] {
				continue
			}
			seen["p:"+v] = true
			phones = append(phones, v)
		}
		for _, e := range c.Emails {
			v := strings.ToLower(strings.TrimSpace(e.Value))
			if v == "" || seen["e:"+v] {
				continue
			}
			seen["e:"+v] = true
			emails = append(emails, v)
		}
	}
	return phones, emails
}
