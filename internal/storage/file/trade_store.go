package file

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/PxPatel/matching-core/internal/types"
)

// FileTradeStore appends trades to a JSON-lines audit file. Read operations
// return empty; pair it with an in-memory store inside a CompositeTradeStore.
type FileTradeStore struct {
	path    string
	file    *os.File
	writer  *bufio.Writer
	encoder *json.Encoder
	mutex   sync.Mutex
}

// NewFileTradeStore opens (or creates) the trade log at filePath for appending
func NewFileTradeStore(filePath string) (*FileTradeStore, error) {
	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open trade log: %w", err)
	}

	writer := bufio.NewWriter(file)
	return &FileTradeStore{
		path:    filePath,
		file:    file,
		writer:  writer,
		encoder: json.NewEncoder(writer),
	}, nil
}

func (s *FileTradeStore) Save(trade types.Trade) error {
	return s.SaveBatch([]types.Trade{trade})
}

// SaveBatch writes the whole batch and flushes once
func (s *FileTradeStore) SaveBatch(trades []types.Trade) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, trade := range trades {
		if err := s.encoder.Encode(trade); err != nil {
			return fmt.Errorf("failed to encode trade %d: %w", trade.Seq, err)
		}
	}
	if err := s.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush trade log: %w", err)
	}
	return nil
}

func (s *FileTradeStore) GetRecent(limit int) ([]types.Trade, error) {
	// File store is write-only, no read support
	return []types.Trade{}, nil
}

// LastSeq scans the log for the highest sequence written so far
func (s *FileTradeStore) LastSeq() (uint64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.file != nil {
		if err := s.writer.Flush(); err != nil {
			return 0, fmt.Errorf("failed to flush trade log: %w", err)
		}
	}

	f, err := os.Open(s.path)
	if err != nil {
		return 0, fmt.Errorf("failed to open trade log: %w", err)
	}
	defer f.Close()

	var last uint64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var trade types.Trade
		if err := json.Unmarshal(scanner.Bytes(), &trade); err != nil {
			return 0, fmt.Errorf("corrupt trade log line: %w", err)
		}
		if trade.Seq > last {
			last = trade.Seq
		}
	}
	return last, scanner.Err()
}

func (s *FileTradeStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.file == nil {
		return nil
	}
	flushErr := s.writer.Flush()
	closeErr := s.file.Close()
	s.file = nil
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
