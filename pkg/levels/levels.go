// Package levels maps severity level names to their integer codes and back.
//
// The level set is closed and fixed at startup; both lookup directions are
// plain map lookups. Equality of levels is equality of the integer code.
package levels

import (
	"fmt"
	"sort"
)

// LevelInfo describes one registered severity level.
type LevelInfo struct {
	Name string `json:"name"`
	Code int    `json:"code"`
}

// Errors returned by registry lookups
var (
	ErrEmptyName    = &LevelError{"empty level name"}
	ErrUnknownLevel = &LevelError{"unknown level name"}
	ErrInvalidLevel = &LevelError{"invalid level code"}
)

// LevelError represents a level registry lookup failure
type LevelError struct {
	Message string
}

func (e *LevelError) Error() string {
	return e.Message
}

// registered is the full severity table. Codes follow the error levels of the
// environment the buffer collects from; gaps are intentional.
var registered = []LevelInfo{
	{"DEBUG5", 10},
	{"DEBUG4", 11},
	{"DEBUG3", 12},
	{"DEBUG2", 13},
	{"DEBUG1", 14},
	{"LOG", 15},
	{"COMMERROR", 16},
	{"INFO", 17},
	{"NOTICE", 18},
	{"WARNING", 19},
	{"ERROR", 20},
	{"FATAL", 21},
	{"PANIC", 22},
}

var (
	byName = make(map[string]int, len(registered))
	byCode = make(map[int]string, len(registered))
)

func init() {
	for _, l := range registered {
		byName[l.Name] = l.Code
		byCode[l.Code] = l.Name
	}
}

// FromText resolves a level name to its integer code. Matching is
// case-sensitive and exact.
func FromText(name string) (int, error) {
	if len(name) == 0 {
		return 0, ErrEmptyName
	}
	code, ok := byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownLevel, name)
	}
	return code, nil
}

// ToText resolves a level code to its registered name. Codes can arrive from
// outside the registry (for example decoded from raw buffer bytes), so the
// reverse lookup is checked even though FromText never produces a bad code.
func ToText(code int) (string, error) {
	name, ok := byCode[code]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrInvalidLevel, code)
	}
	return name, nil
}

// Levels returns all registered levels ordered by code.
func Levels() []LevelInfo {
	out := make([]LevelInfo, len(registered))
	copy(out, registered)
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
