package domain

import "time"

// User is a marketplace account, keyed by campus email.
type User struct {
	ID        string
	Email     string
	Name      string
	Phone     string
	CreatedAt time.Time
}
