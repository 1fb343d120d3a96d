package person

import "fmt"

var (
	ErrNotFound   = fmt.Errorf("person not found")
	ErrEmailTaken = fmt.Errorf("email already registered for this company")
)
