package domain

import "time"

type User struct {
	Login     string    `db:"login" json:"login"`
	Password  string    `db:"password" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}
