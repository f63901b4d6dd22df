package router

import "github.com/iliyamo/sentiment-analyzer/internal/repository"

var (
	errNotFound  = repository.ErrNotFound
	errDuplicate = repository.ErrDuplicate
)
