package timer

import (
	"context"
	"os"
	"sync"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"gopkg.in/yaml.v3"
)

// FileStore is a Store backed by a single YAML file on disk, one entry per
// timer name. It's meant for a single-instance host that wants status to
// survive a restart without standing up a database; concurrent hosts
// sharing one FileStore will race on the file, same as the host's own
// /tmp/timerhost.pid lock assumes a single instance.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a FileStore persisting to path. The file is created
// on first UpdateStatus if it doesn't already exist.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// NewFileMonitor builds a FileStore at path and composes it with the shared
// CheckPastDue algorithm via NewMonitor.
func NewFileMonitor(path string) ScheduleMonitor {
	return NewMonitor(NewFileStore(path))
}

type fileStoreDocument struct {
	Timers map[string]ScheduleStatus `yaml:"timers"`
}

func (f *FileStore) load() (fileStoreDocument, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return fileStoreDocument{Timers: make(map[string]ScheduleStatus)}, nil
	}
	if err != nil {
		return fileStoreDocument{}, errors.Wrap(ErrMonitorTransient, "read timer status file", j.KV("path", f.path))
	}

	var doc fileStoreDocument
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return fileStoreDocument{}, errors.Wrap(ErrMonitorTransient, "decode timer status file", j.KV("path", f.path))
	}
	if doc.Timers == nil {
		doc.Timers = make(map[string]ScheduleStatus)
	}
	return doc, nil
}

func (f *FileStore) save(doc fileStoreDocument) error {
	b, err := yaml.Marshal(doc)
	if err != nil {
		return errors.Wrap(ErrMonitorTransient, "encode timer status file", j.KV("path", f.path))
	}
	if err := os.WriteFile(f.path, b, 0o644); err != nil {
		return errors.Wrap(ErrMonitorTransient, "write timer status file", j.KV("path", f.path))
	}
	return nil
}

func (f *FileStore) GetStatus(_ context.Context, timerName string) (*ScheduleStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return nil, err
	}
	s, ok := doc.Timers[timerName]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *FileStore) UpdateStatus(_ context.Context, timerName string, status ScheduleStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}
	doc.Timers[timerName] = status
	return f.save(doc)
}
