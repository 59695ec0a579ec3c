package selection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// envelope mirrors the browser storage layout the dashboard used: each key
// maps to {"state":{"repositories":[...]},"version":0}.
type envelope struct {
	State struct {
		Repositories []string `json:"repositories"`
	} `json:"state"`
	Version int `json:"version"`
}

// FilePersister keeps every key in a single JSON document on disk.
type FilePersister struct {
	mu   sync.Mutex
	path string
}

// NewFilePersister stores selections in the file at path.
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

// Load returns the list under key. A missing file or key is an empty list.
func (p *FilePersister) Load(_ context.Context, key string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	doc, err := p.read()
	if err != nil {
		return nil, err
	}
	env, ok := doc[key]
	if !ok {
		return []string{}, nil
	}
	if env.State.Repositories == nil {
		return []string{}, nil
	}
	return env.State.Repositories, nil
}

// Save replaces the list under key, leaving other keys untouched.
func (p *FilePersister) Save(_ context.Context, key string, repos []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	doc, err := p.read()
	if err != nil {
		return err
	}
	var env envelope
	env.State.Repositories = repos
	if env.State.Repositories == nil {
		env.State.Repositories = []string{}
	}
	doc[key] = env

	return p.write(doc)
}

func (p *FilePersister) read() (map[string]envelope, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]envelope{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p.path, err)
	}
	doc := map[string]envelope{}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", p.path, err)
	}
	return doc, nil
}

// write goes through a temp file in the same directory so readers never see
// a half-written document.
func (p *FilePersister) write(doc map[string]envelope) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(p.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p.path)
}
