package repository

import "errors"

// Common repository errors
var (
	// ErrTaskNotFound is returned when a task is not found
	ErrTaskNotFound = errors.New("task not found")

	// ErrSharedTaskNotFound is returned when a shared task is not found
	ErrSharedTaskNotFound = errors.New("shared task not found")

	// ErrNotificationNotFound is returned when a notification is not found
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrFriendRequestNotFound is returned when there is no pending request to accept
	ErrFriendRequestNotFound = errors.New("friend request not found")
)
