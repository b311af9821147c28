package storage

import (
	"context"
	"time"

	"github.com/metaforge/modelvc/pkg/model"
	"go.uber.org/zap"
)

// Logged wraps a provider with debug logging on every SPI call
func Logged(wrapped Provider, l *zap.Logger) Provider {
	if l == nil {
		l = zap.NewNop()
	}
	return &loggedProvider{wrapped: wrapped, l: l}
}

type loggedProvider struct {
	wrapped Provider
	l       *zap.Logger
}

func (s *loggedProvider) String() string {
	return s.wrapped.String()
}

func (s *loggedProvider) trace(op string, start time.Time, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("provider", s.wrapped.String()), zap.Duration("took", time.Since(start)))
	if err != nil {
		fields = append(fields, zap.Error(err))
		s.l.Debug(op+" failed", fields...)
		return
	}
	s.l.Debug(op, fields...)
}

func (s *loggedProvider) ReadEntities(ctx context.Context, pointer string, revision model.RevisionID) (model.Entities, error) {
	start := time.Now()
	entities, err := s.wrapped.ReadEntities(ctx, pointer, revision)
	s.trace("read entities", start, err, zap.String("pointer", pointer), zap.Stringer("revision", revision))
	return entities, err
}

func (s *loggedProvider) Commit(ctx context.Context, pointer string, base model.RevisionID, changes []model.EntityChange,
	author model.Contributor, message string) (model.Revision, error) {
	start := time.Now()
	revision, err := s.wrapped.Commit(ctx, pointer, base, changes, author, message)
	s.trace("commit", start, err,
		zap.String("pointer", pointer), zap.Stringer("base", base), zap.Int("changes", len(changes)))
	return revision, err
}

func (s *loggedProvider) Access(ctx context.Context, pointer string) (AccessContext, error) {
	start := time.Now()
	access, err := s.wrapped.Access(ctx, pointer)
	s.trace("access", start, err, zap.String("pointer", pointer))
	return access, err
}

func (s *loggedProvider) Pointer(ctx context.Context, name string) (PointerInfo, error) {
	start := time.Now()
	info, err := s.wrapped.Pointer(ctx, name)
	s.trace("get pointer", start, err, zap.String("name", name))
	return info, err
}

func (s *loggedProvider) ListPointers(ctx context.Context, prefix string) ([]PointerInfo, error) {
	start := time.Now()
	infos, err := s.wrapped.ListPointers(ctx, prefix)
	s.trace("list pointers", start, err, zap.String("prefix", prefix), zap.Int("count", len(infos)))
	return infos, err
}

func (s *loggedProvider) CreatePointer(ctx context.Context, name string, from model.RevisionID, annotation string) error {
	start := time.Now()
	err := s.wrapped.CreatePointer(ctx, name, from, annotation)
	s.trace("create pointer", start, err, zap.String("name", name), zap.Stringer("from", from))
	return err
}

func (s *loggedProvider) DeletePointer(ctx context.Context, name string) error {
	start := time.Now()
	err := s.wrapped.DeletePointer(ctx, name)
	s.trace("delete pointer", start, err, zap.String("name", name))
	return err
}

func (s *loggedProvider) RenamePointer(ctx context.Context, oldName, newName string) error {
	start := time.Now()
	err := s.wrapped.RenamePointer(ctx, oldName, newName)
	s.trace("rename pointer", start, err, zap.String("old", oldName), zap.String("new", newName))
	return err
}

func (s *loggedProvider) ThreeWayMerge(ctx context.Context, req MergeRequest) (MergeResult, error) {
	start := time.Now()
	result, err := s.wrapped.ThreeWayMerge(ctx, req)
	s.trace("three-way merge", start, err,
		zap.String("target", req.TargetPointer), zap.String("upstream", req.UpstreamPointer),
		zap.Int("conflicts", len(result.Conflicts)))
	return result, err
}
