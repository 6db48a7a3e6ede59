package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Postgres stores each collection as a table of (id, doc jsonb).
// Field-path updates become jsonb_set/#- expressions inside one
// transaction; subscriptions ride on LISTEN/NOTIFY fired by a row
// trigger.
type Postgres struct {
	pool *pgxpool.Pool

	mu     sync.Mutex
	subs   map[string]map[int]ChangeFunc
	nextID int

	listenCancel context.CancelFunc
	listenDone   chan struct{}
}

const notifyChannel = "doc_change"

// NewPostgres wraps a pool and starts the notification listener.
// Migrate must have been run against the database first.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool) (*Postgres, error) {
	p := &Postgres{
		pool:       pool,
		subs:       map[string]map[int]ChangeFunc{},
		listenDone: make(chan struct{}),
	}
	listenCtx, cancel := context.WithCancel(context.Background())
	p.listenCancel = cancel
	ready := make(chan error, 1)
	go p.listen(listenCtx, ready)
	if err := <-ready; err != nil {
		cancel()
		return nil, err
	}
	return p, nil
}

// Migrate creates the collection tables and the change trigger.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			doc JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS kingdoms (
			id TEXT PRIMARY KEY,
			doc JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE OR REPLACE FUNCTION notify_doc_change() RETURNS trigger AS $$
		BEGIN
			PERFORM pg_notify('doc_change', TG_TABLE_NAME || '/' || NEW.id);
			RETURN NEW;
		END;
		$$ LANGUAGE plpgsql;
		DROP TRIGGER IF EXISTS users_doc_change ON users;
		CREATE TRIGGER users_doc_change
			AFTER INSERT OR UPDATE ON users
			FOR EACH ROW EXECUTE FUNCTION notify_doc_change();
		DROP TRIGGER IF EXISTS kingdoms_doc_change ON kingdoms;
		CREATE TRIGGER kingdoms_doc_change
			AFTER INSERT OR UPDATE ON kingdoms
			FOR EACH ROW EXECUTE FUNCTION notify_doc_change();
	`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("migrate document tables: %w", err)
	}
	return nil
}

func tableFor(coll Collection) (string, error) {
	switch coll {
	case Users:
		return "users", nil
	case Kingdoms:
		return "kingdoms", nil
	default:
		return "", fmt.Errorf("unknown collection %q", coll)
	}
}

// Get implements Store.
func (p *Postgres) Get(ctx context.Context, coll Collection, id string) (Snapshot, error) {
	table, err := tableFor(coll)
	if err != nil {
		return Snapshot{}, err
	}
	var data []byte
	err = p.pool.QueryRow(ctx, `SELECT doc FROM `+table+` WHERE id = $1`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Snapshot{}, ErrNotFound
		}
		return Snapshot{}, fmt.Errorf("get %s/%s: %w", coll, id, err)
	}
	return Snapshot{ID: id, Data: data}, nil
}

// Set implements Store.
func (p *Postgres) Set(ctx context.Context, coll Collection, id string, doc any) error {
	table, err := tableFor(coll)
	if err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", coll, id, err)
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO `+table+` (id, doc) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()
	`, id, data)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", coll, id, err)
	}
	return nil
}

// Apply implements Store.
func (p *Postgres) Apply(ctx context.Context, updates ...DocUpdate) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update batch: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := applyTx(ctx, tx, updates); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit update batch: %w", err)
	}
	return nil
}

// ApplyIfAbsent implements Store.
func (p *Postgres) ApplyIfAbsent(ctx context.Context, guard Guard, updates ...DocUpdate) error {
	table, err := tableFor(guard.Collection)
	if err != nil {
		return err
	}
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin guarded batch: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the guarded row so two writers cannot both pass the check.
	var present bool
	err = tx.QueryRow(ctx, `
		SELECT doc #> $2 IS NOT NULL FROM `+table+` WHERE id = $1 FOR UPDATE
	`, guard.ID, guard.Path).Scan(&present)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s/%s: %w", guard.Collection, guard.ID, ErrNotFound)
		}
		return fmt.Errorf("check guard %s/%s: %w", guard.Collection, guard.ID, err)
	}
	if present {
		return ErrGuardExists
	}

	if err := applyTx(ctx, tx, updates); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit guarded batch: %w", err)
	}
	return nil
}

func applyTx(ctx context.Context, tx pgx.Tx, updates []DocUpdate) error {
	for _, u := range updates {
		table, err := tableFor(u.Collection)
		if err != nil {
			return err
		}
		for _, f := range u.Fields {
			if len(f.Path) == 0 {
				return fmt.Errorf("%s/%s: empty field path", u.Collection, u.ID)
			}
			if f.Remove {
				res, err := tx.Exec(ctx, `
					UPDATE `+table+` SET doc = doc #- $2, updated_at = NOW() WHERE id = $1
				`, u.ID, f.Path)
				if err != nil {
					return fmt.Errorf("remove field %v on %s/%s: %w", f.Path, u.Collection, u.ID, err)
				}
				if res.RowsAffected() == 0 {
					return fmt.Errorf("%s/%s: %w", u.Collection, u.ID, ErrNotFound)
				}
				continue
			}
			value, err := json.Marshal(f.Value)
			if err != nil {
				return fmt.Errorf("%s/%s: marshal field %v: %w", u.Collection, u.ID, f.Path, err)
			}
			res, err := tx.Exec(ctx, `
				UPDATE `+table+` SET doc = jsonb_set(doc, $2, $3, true), updated_at = NOW() WHERE id = $1
			`, u.ID, f.Path, value)
			if err != nil {
				return fmt.Errorf("set field %v on %s/%s: %w", f.Path, u.Collection, u.ID, err)
			}
			if res.RowsAffected() == 0 {
				return fmt.Errorf("%s/%s: %w", u.Collection, u.ID, ErrNotFound)
			}
		}
	}
	return nil
}

// Subscribe implements Store.
func (p *Postgres) Subscribe(_ context.Context, coll Collection, id string, fn ChangeFunc) (func(), error) {
	table, err := tableFor(coll)
	if err != nil {
		return nil, err
	}
	key := table + "/" + id
	p.mu.Lock()
	if p.subs[key] == nil {
		p.subs[key] = map[int]ChangeFunc{}
	}
	token := p.nextID
	p.nextID++
	p.subs[key][token] = fn
	p.mu.Unlock()

	cancel := func() {
		p.mu.Lock()
		delete(p.subs[key], token)
		p.mu.Unlock()
	}
	return cancel, nil
}

// Close stops the notification listener. The pool itself is owned by
// the caller.
func (p *Postgres) Close() {
	p.listenCancel()
	<-p.listenDone
}

// listen holds a dedicated connection on the notify channel and fans
// incoming change payloads out to subscribers.
func (p *Postgres) listen(ctx context.Context, ready chan<- error) {
	defer close(p.listenDone)

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		ready <- fmt.Errorf("acquire listener connection: %w", err)
		return
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `LISTEN `+notifyChannel); err != nil {
		ready <- fmt.Errorf("listen on %s: %w", notifyChannel, err)
		return
	}
	ready <- nil

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Msg("document change listener stopped")
			return
		}
		p.dispatch(ctx, n.Payload)
	}
}

func (p *Postgres) dispatch(ctx context.Context, payload string) {
	table, id, ok := strings.Cut(payload, "/")
	if !ok {
		return
	}
	p.mu.Lock()
	fns := make([]ChangeFunc, 0, len(p.subs[payload]))
	for _, fn := range p.subs[payload] {
		fns = append(fns, fn)
	}
	p.mu.Unlock()
	if len(fns) == 0 {
		return
	}
	snap, err := p.Get(ctx, Collection(table), id)
	if err != nil {
		log.Warn().Err(err).Str("doc", payload).Msg("failed to fetch changed document")
		return
	}
	for _, fn := range fns {
		fn(snap)
	}
}
