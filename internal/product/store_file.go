package product

import (
	"context"
	"slices"

	"FlatAPI/internal/jsonstore"
)

var _ Store = (*FileStore)(nil)

type FileStore struct {
	col *jsonstore.Collection[Product]
}

func NewFileStore(path string) *FileStore {
	return &FileStore{col: jsonstore.New[Product](path)}
}

func (s *FileStore) Ping(ctx context.Context) error {
	return s.col.Ping(ctx)
}

func (s *FileStore) List(ctx context.Context) ([]Product, error) {
	return s.col.Load(ctx)
}

func (s *FileStore) Get(ctx context.Context, id int64) (Product, bool, error) {
	products, err := s.col.Load(ctx)
	if err != nil {
		return Product{}, false, err
	}

	i := jsonstore.Index(products, id)
	if i < 0 {
		return Product{}, false, nil
	}
	return products[i], true, nil
}

func (s *FileStore) Create(ctx context.Context, in Input) (Product, error) {
	var created Product

	err := s.col.Update(ctx, func(products []Product) ([]Product, error) {
		if nameTaken(products, in.Name, 0) {
			return nil, ErrNameExists
		}

		created = Product{
			ID:    s.col.NextID(products),
			Name:  in.Name,
			Price: *in.Price,
		}
		return append(products, created), nil
	})
	if err != nil {
		return Product{}, err
	}
	return created, nil
}

func (s *FileStore) Update(ctx context.Context, id int64, in Input) (Product, error) {
	var updated Product

	err := s.col.Update(ctx, func(products []Product) ([]Product, error) {
		i := jsonstore.Index(products, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		if nameTaken(products, in.Name, id) {
			return nil, ErrNameExists
		}

		products[i].Name = in.Name
		products[i].Price = *in.Price
		updated = products[i]
		return products, nil
	})
	if err != nil {
		return Product{}, err
	}
	return updated, nil
}

func (s *FileStore) Delete(ctx context.Context, id int64) error {
	return s.col.Update(ctx, func(products []Product) ([]Product, error) {
		i := jsonstore.Index(products, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		return slices.Delete(products, i, i+1), nil
	})
}

func nameTaken(products []Product, name string, self int64) bool {
	return slices.ContainsFunc(products, func(p Product) bool {
		return p.Name == name && p.ID != self
	})
}
