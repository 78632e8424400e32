package repo

import "errors"

// Ошибки репозиториев.
var (
	// ErrInvalidLimit — limit должен быть положительным.
	ErrInvalidLimit = errors.New("limit must be positive")

	// ErrEmptyTopic — у события outbox нет topic.
	ErrEmptyTopic = errors.New("outbox topic is required")
)
