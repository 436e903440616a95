package shared

// Actor identifies the user on whose behalf a workflow runs.
// The zero value is an anonymous actor; workflows stamp audit fields from it
// but never authenticate it.
type Actor struct {
	UserID   string
	UserName string
}

// IsAnonymous reports whether no user is attached
func (a Actor) IsAnonymous() bool {
	return a.UserID == ""
}

// UserIDPtr returns the user id or nil for anonymous actors
func (a Actor) UserIDPtr() *string {
	if a.UserID == "" {
		return nil
	}
	id := a.UserID
	return &id
}
