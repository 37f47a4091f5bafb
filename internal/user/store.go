package user

import (
	"context"
	"errors"
)

var (
	ErrEmailExists = errors.New("email already exists")
	ErrNotFound    = errors.New("user not found")
)

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u User) RecordID() int64 { return u.ID }

// Input is the body of create and update requests.
type Input struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
}

type Store interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id int64) (User, bool, error)
	Create(ctx context.Context, in Input) (User, error)
	Update(ctx context.Context, id int64, in Input) (User, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}
