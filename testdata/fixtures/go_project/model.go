package sample

// User is an account record.
type User struct {
	ID   int
	Name string
}

// Repository loads and stores users.
type Repository interface {
	Get(id int) (*User, error)
	Put(u *User) error
}

func newUser(name string) *User {
	return &User{Name: name}
}
