package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/campus-acc/campus-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const pgBatchSize = 50

// PGHandler batches ERROR+ records into system_logs. Known attributes get
// their own columns; the rest are kept as JSON.
type PGHandler struct {
	sink  *pgSink
	attrs []slog.Attr
}

type pgSink struct {
	db     *gorm.DB
	mu     sync.Mutex
	buffer []models.SystemLog
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func NewPGHandler(db *gorm.DB) *PGHandler {
	sink := &pgSink{
		db:     db,
		buffer: make([]models.SystemLog, 0, pgBatchSize),
		ticker: time.NewTicker(5 * time.Second),
		done:   make(chan struct{}),
	}
	go sink.loop()
	return &PGHandler{sink: sink}
}

func (s *pgSink) loop() {
	for {
		select {
		case <-s.ticker.C:
			s.flush()
		case <-s.done:
			s.flush()
			return
		}
	}
}

func (s *pgSink) flush() {
	s.mu.Lock()
	if len(s.buffer) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.buffer
	s.buffer = make([]models.SystemLog, 0, pgBatchSize)
	s.mu.Unlock()

	// Logged through the default logger this would loop back into the sink.
	if err := s.db.CreateInBatches(batch, pgBatchSize).Error; err != nil {
		slog.Warn("failed to flush system logs", "error", err.Error(), "count", len(batch))
	}
}

func (s *pgSink) add(entry models.SystemLog) {
	s.mu.Lock()
	s.buffer = append(s.buffer, entry)
	full := len(s.buffer) >= pgBatchSize
	s.mu.Unlock()
	if full {
		go s.flush()
	}
}

// Flush writes buffered entries now.
func (h *PGHandler) Flush() {
	h.sink.flush()
}

// Stop flushes pending entries and ends the background loop.
func (h *PGHandler) Stop() {
	h.sink.once.Do(func() {
		h.sink.ticker.Stop()
		close(h.sink.done)
	})
}

// Enabled only handles ERROR and above.
func (h *PGHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *PGHandler) Handle(_ context.Context, record slog.Record) error {
	entry := models.SystemLog{
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
	}

	extra := make(map[string]interface{})
	apply := func(a slog.Attr) bool {
		v := a.Value.Resolve()
		switch a.Key {
		case "trace_id", "request_id":
			entry.TraceID = v.String()
		case "user_id":
			s := v.String()
			entry.UserID = &s
		case "property_id":
			entry.PropertyID = uintValue(v)
		case "booking_id":
			entry.BookingID = uintValue(v)
		case "action":
			entry.Action = v.String()
		case "error":
			entry.Error = v.String()
		default:
			extra[a.Key] = v.Any()
		}
		return true
	}
	for _, a := range h.attrs {
		apply(a)
	}
	record.Attrs(apply)

	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}
	h.sink.add(entry)
	return nil
}

func uintValue(v slog.Value) *uint {
	var n uint
	switch v.Kind() {
	case slog.KindUint64:
		n = uint(v.Uint64())
	case slog.KindInt64:
		if v.Int64() < 0 {
			return nil
		}
		n = uint(v.Int64())
	default:
		return nil
	}
	return &n
}

func (h *PGHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &PGHandler{sink: h.sink, attrs: merged}
}

// WithGroup is ignored; system_logs has a flat layout.
func (h *PGHandler) WithGroup(string) slog.Handler {
	return h
}
