package models

// Actor is the already-authenticated user on whose behalf an operation runs.
type Actor struct {
	ID        int64
	Name      string
	IP        string
	UserAgent string
}
