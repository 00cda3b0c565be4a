package repository

import (
	"errors"

	"github.com/okian/mergington/internal/domain/model"
)

// Sentinel kinds for catalog and journal errors.
var (
	ErrNotFound          = model.ErrActivityNotFound
	ErrInvalidSeed       = errors.New("invalid seed catalog")
	ErrDuplicateActivity = errors.New("duplicate activity name")
	ErrLoadSeed          = errors.New("load seed catalog failed")
	ErrInvalidLimit      = errors.New("invalid change limit")
)
