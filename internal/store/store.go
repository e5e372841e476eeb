package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/flock"
	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	"github.com/roach88/teachsync/internal/document"
	"github.com/roach88/teachsync/internal/model"
)

// DefaultLockTimeout bounds how long a mutation waits for the writer lock.
const DefaultLockTimeout = 5 * time.Second

// DefaultActor is recorded in audit entries when no actor is configured.
const DefaultActor = "system"

// Clock supplies wall time for audit timestamps, default dates and backup
// names.
type Clock interface {
	Now() time.Time
}

// IDGenerator supplies audit entry ids.
type IDGenerator interface {
	Generate() string
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Config configures a Store.
type Config struct {
	// DocumentPath is the YAML document. Required.
	DocumentPath string

	// WorkbookPath is the tabular mirror (.xlsx, .db, .sqlite, .sqlite3).
	// Optional; sync operations fail without it.
	WorkbookPath string

	// BackupDir receives backups. Defaults to the document's directory.
	BackupDir string

	// Actor is recorded in audit entries unless overridden with WithActor.
	Actor string

	LockTimeout time.Duration

	// Logger defaults to a disabled logger.
	Logger *zerolog.Logger

	// Clock defaults to the system clock.
	Clock Clock

	// IDs defaults to UUIDv7.
	IDs IDGenerator

	// Metrics is optional.
	Metrics *Metrics
}

// writeFileFunc matches renameio.WriteFile.
type writeFileFunc func(path string, data []byte, perm os.FileMode, opts ...renameio.Option) error

// Store applies audited mutations to one document.
//
// Thread-safety: Store is safe for concurrent use. Mutations are serialized
// by the writer lock; reads load their own snapshot.
type Store struct {
	cfg      Config
	log      zerolog.Logger
	clock    Clock
	ids      IDGenerator
	metrics  *Metrics
	validate *validator.Validate

	mu    sync.Mutex
	flock *flock.Flock

	// writeFile is swapped in tests to simulate I/O failures.
	writeFile writeFileFunc

	debounce time.Duration
}

// Open creates a Store for cfg. The document does not need to exist yet;
// see Init.
func Open(cfg Config) (*Store, error) {
	if cfg.DocumentPath == "" {
		return nil, model.Errorf(model.CodeValidationFailed, "open", "document path is required")
	}
	if cfg.BackupDir == "" {
		cfg.BackupDir = filepath.Dir(cfg.DocumentPath)
	}
	if cfg.Actor == "" {
		cfg.Actor = DefaultActor
	}
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = DefaultLockTimeout
	}

	s := &Store{
		cfg:       cfg,
		log:       zerolog.Nop(),
		clock:     cfg.Clock,
		ids:       cfg.IDs,
		metrics:   cfg.Metrics,
		validate:  newValidator(),
		flock:     flock.New(cfg.DocumentPath + ".lock"),
		writeFile: renameio.WriteFile,
		debounce:  DefaultWatchDebounce,
	}
	if cfg.Logger != nil {
		s.log = cfg.Logger.With().Str("component", "store").Logger()
	}
	if s.clock == nil {
		s.clock = systemClock{}
	}
	if s.ids == nil {
		s.ids = UUIDv7Generator{}
	}
	return s, nil
}

// DocumentPath returns the configured document path.
func (s *Store) DocumentPath() string {
	return s.cfg.DocumentPath
}

// WorkbookPath returns the configured workbook path.
func (s *Store) WorkbookPath() string {
	return s.cfg.WorkbookPath
}

// Init writes an empty document if none exists. It reports whether a file
// was created.
func (s *Store) Init(ctx context.Context) (created bool, err error) {
	const op = "init"
	err = s.withWriteLock(ctx, op, func() error {
		if _, statErr := os.Stat(s.cfg.DocumentPath); statErr == nil {
			return nil
		} else if !errors.Is(statErr, fs.ErrNotExist) {
			return model.Wrap(model.CodePersistence, op, statErr, "stat %s", s.cfg.DocumentPath)
		}
		if err := s.persist(op, model.NewDocument()); err != nil {
			return err
		}
		created = true
		return nil
	})
	if created {
		s.log.Info().Str("op", op).Str("path", s.cfg.DocumentPath).Msg("created empty document")
	}
	return created, err
}

type actorKey struct{}

// WithActor overrides the configured actor for mutations run with ctx.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func (s *Store) actor(ctx context.Context) string {
	if a, ok := ctx.Value(actorKey{}).(string); ok && a != "" {
		return a
	}
	return s.cfg.Actor
}

// mutation applies one change to a freshly loaded document and returns the
// audit entry describing it. Id, timestamp and actor are filled in by mutate.
type mutation func(doc *model.Document, now time.Time) (model.AuditEntry, error)

// mutate runs apply under the writer lock and persists the result.
func (s *Store) mutate(ctx context.Context, op string, apply mutation) (err error) {
	began := time.Now()
	var entry model.AuditEntry
	defer func() {
		if r := recover(); r != nil {
			err = model.Wrap(model.CodeInternal, op, fmt.Errorf("panic: %v", r), "unexpected failure")
		}
		s.finish(ctx, op, began, entry, err)
	}()

	return s.withWriteLock(ctx, op, func() error {
		data, doc, err := s.load(op)
		if err != nil {
			return err
		}
		if err := s.backup(op, data); err != nil {
			return err
		}

		now := s.clock.Now()
		entry, err = apply(doc, now)
		if err != nil {
			return err
		}
		entry = s.appendAudit(ctx, doc, entry, now)
		return s.persist(op, doc)
	})
}

// load reads the raw bytes and the decoded document.
func (s *Store) load(op string) ([]byte, *model.Document, error) {
	data, err := document.ReadFile(s.cfg.DocumentPath)
	if err != nil {
		return nil, nil, withOp(err, op)
	}
	doc, err := document.Decode(data)
	if err != nil {
		return nil, nil, withOp(err, op)
	}
	return data, doc, nil
}

// finish records the outcome of an operation in logs and metrics.
func (s *Store) finish(ctx context.Context, op string, began time.Time, entry model.AuditEntry, err error) {
	elapsed := time.Since(began)
	s.metrics.observe(op, err, elapsed)

	var ev *zerolog.Event
	switch code := model.CodeOf(err); code {
	case "":
		ev = s.log.Info()
	case model.CodeInternal, model.CodePersistence:
		ev = s.log.Error().Err(err).Str("code", string(code))
	default:
		ev = s.log.Warn().Err(err).Str("code", string(code))
	}
	ev = ev.Str("op", op).Str("actor", s.actor(ctx)).Dur("duration", elapsed)
	if entry.InstructorID != "" {
		ev = ev.Str("instructor_id", entry.InstructorID)
	}
	if entry.ModuleID != "" {
		ev = ev.Str("module_id", entry.ModuleID)
	}
	if entry.SoftwareName != "" {
		ev = ev.Str("software", entry.SoftwareName)
	}
	ev.Msg("operation finished")
}

// withOp stamps op on a *model.Error produced by a lower layer.
func withOp(err error, op string) error {
	var e *model.Error
	if errors.As(err, &e) {
		cp := *e
		cp.Op = op
		return &cp
	}
	return model.Wrap(model.CodeInternal, op, err, "unexpected failure")
}

func today(now time.Time) string {
	return now.Format("2006-01-02")
}
