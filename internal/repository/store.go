package repository

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicate        = errors.New("duplicate key")
	ErrSeatTaken        = errors.New("seat already reserved")
	ErrAlreadyCancelled = errors.New("booking already cancelled")
)

// RouteFilter narrows a route listing. Zero values disable a condition.
type RouteFilter struct {
	Source        string
	Destination   string
	DepartureFrom *time.Time
	DepartureTo   *time.Time
	Limit         int
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern that matches value as a literal substring.
func containsPattern(value string) string {
	return "%" + likeEscaper.Replace(value) + "%"
}
