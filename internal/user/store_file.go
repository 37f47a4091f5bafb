package user

import (
	"context"
	"slices"

	"FlatAPI/internal/jsonstore"
)

var _ Store = (*FileStore)(nil)

// FileStore keeps users in a single JSON array file.
type FileStore struct {
	col *jsonstore.Collection[User]
}

func NewFileStore(path string) *FileStore {
	return &FileStore{col: jsonstore.New[User](path)}
}

func (s *FileStore) Ping(ctx context.Context) error {
	return s.col.Ping(ctx)
}

func (s *FileStore) List(ctx context.Context) ([]User, error) {
	return s.col.Load(ctx)
}

func (s *FileStore) Get(ctx context.Context, id int64) (User, bool, error) {
	users, err := s.col.Load(ctx)
	if err != nil {
		return User{}, false, err
	}

	i := jsonstore.Index(users, id)
	if i < 0 {
		return User{}, false, nil
	}
	return users[i], true, nil
}

func (s *FileStore) Create(ctx context.Context, in Input) (User, error) {
	var created User

	err := s.col.Update(ctx, func(users []User) ([]User, error) {
		if emailTaken(users, in.Email, 0) {
			return nil, ErrEmailExists
		}

		created = User{
			ID:    s.col.NextID(users),
			Name:  in.Name,
			Email: in.Email,
		}
		return append(users, created), nil
	})
	if err != nil {
		return User{}, err
	}
	return created, nil
}

func (s *FileStore) Update(ctx context.Context, id int64, in Input) (User, error) {
	var updated User

	err := s.col.Update(ctx, func(users []User) ([]User, error) {
		i := jsonstore.Index(users, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		if emailTaken(users, in.Email, id) {
			return nil, ErrEmailExists
		}

		users[i].Name = in.Name
		users[i].Email = in.Email
		updated = users[i]
		return users, nil
	})
	if err != nil {
		return User{}, err
	}
	return updated, nil
}

func (s *FileStore) Delete(ctx context.Context, id int64) error {
	return s.col.Update(ctx, func(users []User) ([]User, error) {
		i := jsonstore.Index(users, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		return slices.Delete(users, i, i+1), nil
	})
}

// emailTaken reports whether another user than self already owns email.
// Ids start well above zero, so 0 means "no self".
func emailTaken(users []User, email string, self int64) bool {
	return slices.ContainsFunc(users, func(u User) bool {
		return u.Email == email && u.ID != self
	})
}
