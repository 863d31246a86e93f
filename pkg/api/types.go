package api

import (
	"github.com/segmentio/ksuid"

	"github.com/ssargent/ringlog/pkg/codec"
	"github.com/ssargent/ringlog/pkg/ring"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// AppendRequest represents a log record append request. Level accepts either
// a registered level name or a raw numeric code.
type AppendRequest struct {
	Level   interface{} `json:"level"`
	Errno   int32       `json:"errno,omitempty"`
	Message string      `json:"message"`
	Detail  string      `json:"detail,omitempty"`
	Hint    string      `json:"hint,omitempty"`
}

// AppendResponse reports where the appended record landed.
type AppendResponse struct {
	Position int `json:"position"`
}

// RecordResponse is the drained form of one log record.
type RecordResponse struct {
	Level     uint8  `json:"level"`
	LevelName string `json:"level_name,omitempty"`
	Errno     int32  `json:"errno"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	Hint      string `json:"hint,omitempty"`
	Position  int    `json:"position"`
}

// DrainResponse carries one drain session's records.
type DrainResponse struct {
	Records  []RecordResponse `json:"records"`
	Count    int              `json:"count"`
	Archived int              `json:"archived,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port       int
	Bind       string
	APIKey     string
	ArchiveDir string // Directory for the drain archive ("" disables archiving)
}

// IRingStore defines the interface for the log buffer operations the API
// serves
type IRingStore interface {
	Append(level uint8, savedErrno int32, message, detail, hint []byte) (int, error)
	Drain() ([]ring.DrainedRecord, error)
	Reset() error
	Stats() ring.RingStats
}

// IArchive defines the archive sink the drain handler writes to.
type IArchive interface {
	Store(rec *codec.Record, position int) (*ksuid.KSUID, error)
}
