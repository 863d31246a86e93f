package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ssargent/ringlog/pkg/levels"
	"github.com/ssargent/ringlog/pkg/ring"
)

// Server holds the API server state
type Server struct {
	store   IRingStore
	archive IArchive
	config  ServerConfig
	metrics *Metrics
}

// NewServer creates a new API server. The archive may be nil, in which case
// drain requests asking for archiving are rejected.
func NewServer(store IRingStore, archive IArchive, config ServerConfig, metrics *Metrics) *Server {
	return &Server{
		store:   store,
		archive: archive,
		config:  config,
		metrics: metrics,
	}
}

// resolveLevel turns the request's level field into a numeric code. Strings
// go through the level registry; JSON numbers arrive as float64 and only need
// a range check.
func resolveLevel(raw interface{}) (uint8, error) {
	switch v := raw.(type) {
	case nil:
		return 0, fmt.Errorf("level is required")
	case string:
		code, err := levels.FromText(v)
		if err != nil {
			return 0, err
		}
		return uint8(code), nil
	case float64:
		if v != float64(int(v)) || v < 0 || v > 255 {
			return 0, fmt.Errorf("level code %v out of range", v)
		}
		return uint8(v), nil
	default:
		return 0, fmt.Errorf("level must be a name or a numeric code")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.metrics != nil {
		s.metrics.RecordHealthCheck(true)
	}
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleAppend appends one record to the buffer.
func (s *Server) handleAppend(w http.ResponseWriter, r *http.Request) {
	var req AppendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		sendError(w, "Message is required", http.StatusBadRequest)
		return
	}

	level, err := resolveLevel(req.Level)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var detail, hint []byte
	if req.Detail != "" {
		detail = []byte(req.Detail)
	}
	if req.Hint != "" {
		hint = []byte(req.Hint)
	}

	position, err := s.store.Append(level, req.Errno, []byte(req.Message), detail, hint)
	if err == ring.ErrRecordTooLarge {
		if s.metrics != nil {
			s.metrics.RecordDrop()
		}
		sendError(w, "Record larger than buffer capacity", http.StatusRequestEntityTooLarge)
		return
	}
	if err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if s.metrics != nil {
		name, nameErr := levels.ToText(int(level))
		if nameErr != nil {
			name = fmt.Sprintf("%d", level)
		}
		s.metrics.RecordAppend(name)
		stats := s.store.Stats()
		s.metrics.UpdateRingStats(stats.Capacity, stats.WritePos, stats.ReadPos)
	}
	sendSuccess(w, AppendResponse{Position: position})
}

// handleDrain runs one drain session and returns its records. With
// ?archive=true each drained record is also persisted to the archive.
func (s *Server) handleDrain(w http.ResponseWriter, r *http.Request) {
	wantArchive := r.URL.Query().Get("archive") == "true"
	if wantArchive && s.archive == nil {
		sendError(w, "Archiving is not configured", http.StatusBadRequest)
		return
	}

	drained, err := s.store.Drain()
	if err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := DrainResponse{Records: make([]RecordResponse, 0, len(drained)), Count: len(drained)}
	for _, d := range drained {
		rr := RecordResponse{
			Level:    d.Record.Level,
			Errno:    d.Record.SavedErrno,
			Message:  string(d.Record.Message),
			Detail:   string(d.Record.Detail),
			Hint:     string(d.Record.Hint),
			Position: d.Position,
		}
		if name, err := levels.ToText(int(d.Record.Level)); err == nil {
			rr.LevelName = name
		}
		resp.Records = append(resp.Records, rr)

		if wantArchive {
			if _, err := s.archive.Store(d.Record, d.Position); err != nil {
				sendError(w, fmt.Sprintf("Failed to archive record: %v", err), http.StatusInternalServerError)
				return
			}
			resp.Archived++
		}
	}

	if s.metrics != nil {
		s.metrics.RecordDrain(resp.Count, resp.Archived)
		stats := s.store.Stats()
		s.metrics.UpdateRingStats(stats.Capacity, stats.WritePos, stats.ReadPos)
	}
	sendSuccess(w, resp)
}

// handleFlush empties the buffer.
func (s *Server) handleFlush(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Reset(); err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if s.metrics != nil {
		s.metrics.RecordFlush()
		stats := s.store.Stats()
		s.metrics.UpdateRingStats(stats.Capacity, stats.WritePos, stats.ReadPos)
	}
	sendSuccess(w, map[string]string{"status": "flushed"})
}

// handleLevels lists the level registry in code order.
func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, levels.Levels())
}

// handleLevelLookup resolves one level name to its code.
func (s *Server) handleLevelLookup(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	code, err := levels.FromText(name)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	sendSuccess(w, levels.LevelInfo{Name: name, Code: code})
}

// handleStats reports the cursor snapshot.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.store.Stats()
	if s.metrics != nil {
		s.metrics.UpdateRingStats(stats.Capacity, stats.WritePos, stats.ReadPos)
	}
	sendSuccess(w, stats)
}

// startMetricsUpdater refreshes the cursor gauges in the background so the
// scrape reflects producers outside this process.
func (s *Server) startMetricsUpdater() {
	if s.metrics == nil {
		return
	}
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		stats := s.store.Stats()
		s.metrics.UpdateRingStats(stats.Capacity, stats.WritePos, stats.ReadPos)
	}
}
