package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	errs "catalogscraper/pkg/errors"
	"catalogscraper/pkg/logger"
	"catalogscraper/pkg/models"
)

// JSONStore keeps the collection in a single indented JSON array file
type JSONStore struct {
	path   string
	logger logger.Logger
}

// NewJSONStore creates a store backed by the file at path
func NewJSONStore(path string, log logger.Logger) *JSONStore {
	if log == nil {
		log = logger.GetLogger()
	}
	return &JSONStore{
		path:   path,
		logger: log.WithField("store", path),
	}
}

// Location returns the snapshot file path
func (s *JSONStore) Location() string {
	return s.path
}

// Load reads the snapshot file
func (s *JSONStore) Load(ctx context.Context) models.Collection {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("No prior snapshot, starting fresh")
		} else {
			s.logger.WithError(err).Warn("Snapshot unreadable, starting fresh")
		}
		return models.Collection{}
	}

	c, err := DecodeSnapshot(data)
	if err != nil {
		s.logger.WithError(err).Warn("Snapshot corrupt, starting fresh")
		return models.Collection{}
	}

	s.logger.WithField("records", len(c)).Info("Snapshot loaded")
	return c
}

// Save rewrites the whole snapshot atomically
func (s *JSONStore) Save(ctx context.Context, c models.Collection) error {
	data, err := EncodeSnapshot(c)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, err, "encode snapshot")
	}

	if err := WriteFileAtomic(s.path, data, 0644); err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, err, "write snapshot")
	}

	s.logger.DebugWithFields("Snapshot saved", map[string]interface{}{
		"records": len(c),
		"bytes":   len(data),
	})
	return nil
}

// Close is a no-op for file snapshots
func (s *JSONStore) Close() error {
	return nil
}

// EncodeSnapshot renders c as a 4-space indented JSON array without HTML escaping
func EncodeSnapshot(c models.Collection) ([]byte, error) {
	if c == nil {
		c = models.Collection{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// DecodeSnapshot parses a snapshot document. Anything other than a valid
// JSON array of objects is reported as corrupt.
func DecodeSnapshot(data []byte) (models.Collection, error) {
	if !gjson.ValidBytes(data) {
		return nil, errs.New(errs.ErrorTypeParsing, 0, "snapshot is not valid JSON")
	}
	if !gjson.ParseBytes(data).IsArray() {
		return nil, errs.New(errs.ErrorTypeParsing, 0, "snapshot is not a JSON array")
	}

	var c models.Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeParsing, err, "decode snapshot")
	}
	if c == nil {
		c = models.Collection{}
	}
	return c, nil
}

// String implements fmt.Stringer
func (s *JSONStore) String() string {
	return fmt.Sprintf("json:%s", s.path)
}
