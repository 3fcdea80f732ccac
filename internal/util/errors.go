package util

import "errors"

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrExamNotFound     = errors.New("Exam not found")
	ErrInvalidStatus    = errors.New("invalid exam status")
	ErrSyncBusy         = errors.New("assignment sync already in progress")
	ErrNoMatchingUsers  = errors.New("No valid users found for the provided emails")
)
