package product

import (
	"context"
	"errors"
)

var (
	ErrNameExists = errors.New("product name already exists")
	ErrNotFound   = errors.New("product not found")
)

type Product struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func (p Product) RecordID() int64 { return p.ID }

// Input is the body of create and update requests. Price is a pointer so
// that an absent price fails validation while 0 is accepted.
type Input struct {
	Name  string   `json:"name" validate:"required"`
	Price *float64 `json:"price" validate:"required"`
}

type Store interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, bool, error)
	Create(ctx context.Context, in Input) (Product, error)
	Update(ctx context.Context, id int64, in Input) (Product, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}
