package user

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
	ErrSnapshotNotFound   = errors.New("users snapshot not found")
	ErrSnapshotCorrupt    = errors.New("users snapshot corrupt")
)
