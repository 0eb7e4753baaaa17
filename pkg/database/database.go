// Package database keeps a catalog of named keyed containers and exposes
// them through REPL commands.
package database

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	"keyedkit/pkg/hash"
	"keyedkit/pkg/keyed"
	"keyedkit/pkg/logging"
	"keyedkit/pkg/record"
)

var (
	ErrBadName      = errors.New("container name must be alphanumeric")
	ErrExists       = errors.New("container already exists")
	ErrNotFound     = errors.New("container not found")
	ErrNotOrdered   = errors.New("container is unordered")
	ErrKeyNotFound  = errors.New("not found")
	nonAlphanumeric = regexp.MustCompile(`\W`)
)

// Database is a catalog of containers keyed and valued by int64. It is not
// safe for concurrent use; the REPL serialises access.
type Database struct {
	containers map[string]keyed.Container
}

// New returns an empty catalog.
func New() *Database {
	return &Database{containers: make(map[string]keyed.Container)}
}

// Close destroys every container in the catalog.
func (db *Database) Close() {
	for name, c := range db.containers {
		c.Destroy()
		delete(db.containers, name)
	}
}

// CreateContainer adds an empty container of the given kind. hasherName
// selects the hasher for hash-backed kinds and must be empty otherwise.
func (db *Database) CreateContainer(name string, kind keyed.Kind, hasherName string) (keyed.Container, error) {
	if name == "" || nonAlphanumeric.MatchString(name) {
		return nil, ErrBadName
	}
	if _, exists := db.containers[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrExists, name)
	}
	var hasher hash.Hasher
	if kind.IsHashed() {
		var err error
		if hasher, err = hash.HasherByName(hasherName); err != nil {
			return nil, err
		}
	} else if hasherName != "" {
		return nil, fmt.Errorf("%s does not take a hasher", kind)
	}
	keySize := record.Int64.Size()
	c := keyed.New(kind, name, keySize, keySize, record.Bytes, hasher)
	db.containers[name] = c
	logging.WithContainer(name).Debug("container created", "kind", kind.String())
	return c, nil
}

// GetContainer returns the named container.
func (db *Database) GetContainer(name string) (keyed.Container, error) {
	c, ok := db.containers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return c, nil
}

// DropContainer destroys the named container and removes it from the catalog.
func (db *Database) DropContainer(name string) error {
	c, err := db.GetContainer(name)
	if err != nil {
		return err
	}
	c.Destroy()
	delete(db.containers, name)
	logging.WithContainer(name).Debug("container dropped")
	return nil
}

// GetContainers returns the catalog.
func (db *Database) GetContainers() map[string]keyed.Container {
	return db.containers
}

// Names returns the container names in sorted order.
func (db *Database) Names() []string {
	names := make([]string, 0, len(db.containers))
	for name := range db.containers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
