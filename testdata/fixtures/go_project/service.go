package sample

import "fmt"

// UserService wraps a Repository with validation.
type UserService struct {
	repo Repository
}

func NewUserService(repo Repository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetUser(id int) (*User, error) {
	u, err := s.repo.Get(id)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

func (s *UserService) CreateUser(name string) (*User, error) {
	u := newUser(name)
	if err := s.repo.Put(u); err != nil {
		return nil, fmt.Errorf("create user %q: %w", name, err)
	}
	return u, nil
}
