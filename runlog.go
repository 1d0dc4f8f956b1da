package cartsync

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// RunLogger is the interface for per-run stage logging.
type RunLogger interface {
	LogStage(stage StageLog) error
}

// NewRunLogFilePath returns a file path based on the list name so logs for
// different lists are easy to tell apart.
func NewRunLogFilePath(listName string) string {
	return fmt.Sprintf(
		"./logs/%d.%s.json",
		time.Now().Unix(),
		strings.ReplaceAll(strings.ToLower(listName), " ", "_"),
	)
}

// StageLog records one orchestrator stage transition.
type StageLog struct {
	RunID     string         `json:"run_id"`
	Stage     string         `json:"stage"`
	Timestamp time.Time      `json:"timestamp"`
	Items     int            `json:"items,omitempty"`
	Detail    map[string]any `json:"detail,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// FileRunLogger logs to a file, accumulating stages and flushing at the end.
type FileRunLogger struct {
	stages []StageLog
	writer io.Writer
}

// NewFileRunLogger creates a new file-based run logger.
func NewFileRunLogger(writer io.Writer) *FileRunLogger {
	return &FileRunLogger{
		stages: make([]StageLog, 0),
		writer: writer,
	}
}

// LogStage appends a stage to the buffer (does not flush immediately).
func (l *FileRunLogger) LogStage(stage StageLog) error {
	l.stages = append(l.stages, stage)
	return nil
}

// Flush writes all accumulated stages to the writer.
func (l *FileRunLogger) Flush() error {
	if l.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"sync_run": map[string]any{
			"timestamp": time.Now(),
			"stages":    l.stages,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run log: %w", err)
	}

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write run log: %w", err)
	}

	l.stages = l.stages[:0]
	return nil
}

// NoOpRunLogger discards all log entries.
type NoOpRunLogger struct{}

func NewNoOpRunLogger() *NoOpRunLogger { return &NoOpRunLogger{} }

func (NoOpRunLogger) LogStage(stage StageLog) error { return nil }

// StdoutRunLogger writes each stage as a JSON line to stdout (for Lambda /
// CloudWatch).
type StdoutRunLogger struct{}

func NewStdoutRunLogger() *StdoutRunLogger { return &StdoutRunLogger{} }

func (StdoutRunLogger) LogStage(stage StageLog) error {
	data, err := json.Marshal(stage)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}
