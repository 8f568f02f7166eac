package model

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrPanic marks a load whose decoder panicked.
var ErrPanic = errors.New("model: decoder panicked")

// Loader reads models in the background. Each load reports through exactly one
// of its callbacks, on the loader's goroutine; callers hand results back to
// their own goroutine.
type Loader struct {
	root string
	read func(path string) (*Model, error)
	log  logrus.FieldLogger
	wg   sync.WaitGroup
}

// NewLoader resolves asset names relative to root.
func NewLoader(root string, log logrus.FieldLogger) *Loader {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Loader{root: root, read: Read, log: log}
}

// Load starts reading name and returns the id used to tag its log lines.
// A cancelled ctx turns a finished load into an error report.
func (l *Loader) Load(ctx context.Context, name string, onLoad func(*Model), onError func(error)) uuid.UUID {
	id := uuid.New()
	entry := l.log.WithFields(logrus.Fields{"load": id.String(), "asset": name})
	entry.Debug("load started")

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		m, err := l.safeRead(l.resolve(name))
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			entry.WithError(err).Error("load failed")
			if onError != nil {
				onError(err)
			}
			return
		}
		entry.WithField("triangles", m.Geometry.Triangles()).Info("load finished")
		if onLoad != nil {
			onLoad(m)
		}
	}()
	return id
}

// safeRead reports a decoder panic as ErrPanic.
func (l *Loader) safeRead(path string) (m *Model, err error) {
	defer func() {
		if r := recover(); r != nil {
			m, err = nil, fmt.Errorf("%w reading %s: %v", ErrPanic, path, r)
		}
	}()
	return l.read(path)
}

// Wait blocks until every started load has reported.
func (l *Loader) Wait() {
	l.wg.Wait()
}

func (l *Loader) resolve(name string) string {
	if filepath.IsAbs(name) || l.root == "" {
		return name
	}
	return filepath.Join(l.root, name)
}
