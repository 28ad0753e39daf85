package credentials

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/providers"
)

type stubRow struct {
	secret string
	err    error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) > 0 {
		if p, ok := dest[0].(*string); ok {
			*p = r.secret
		}
	}
	return nil
}

type stubSQL struct {
	row      stubRow
	execErr  error
	lastSQL  string
	lastArgs []any
}

func (s *stubSQL) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.lastSQL = query
	s.lastArgs = args
	return pgconn.CommandTag{}, s.execErr
}

func (s *stubSQL) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	s.lastSQL = query
	s.lastArgs = args
	return s.row
}

func (s *stubSQL) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func TestResolveReturnsSecret(t *testing.T) {
	sql := &stubSQL{row: stubRow{secret: "sk-live"}}
	store := NewStore(sql)

	cred, ok, err := store.Resolve(context.Background(), providers.KindDashScope, "tenant-1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !ok || cred.Secret != "sk-live" {
		t.Fatalf("cred = %+v ok = %v", cred, ok)
	}
	if len(sql.lastArgs) != 2 || sql.lastArgs[0] != "dashscope" || sql.lastArgs[1] != "tenant-1" {
		t.Fatalf("query args = %v", sql.lastArgs)
	}
}

func TestResolveMissingRowIsAbsenceNotError(t *testing.T) {
	sql := &stubSQL{row: stubRow{err: pgx.ErrNoRows}}
	store := NewStore(sql)

	cred, ok, err := store.Resolve(context.Background(), providers.KindKling, "tenant-1")
	if err != nil {
		t.Fatalf("missing row must not be an error, got %v", err)
	}
	if ok || !cred.IsZero() {
		t.Fatalf("cred = %+v ok = %v, want absent", cred, ok)
	}
}

func TestResolveBlankSecretIsAbsent(t *testing.T) {
	sql := &stubSQL{row: stubRow{secret: "   "}}
	store := NewStore(sql)
	_, ok, err := store.Resolve(context.Background(), providers.KindLeonardo, "t")
	if err != nil || ok {
		t.Fatalf("ok = %v err = %v, want absent", ok, err)
	}
}

func TestResolveInfrastructureError(t *testing.T) {
	sql := &stubSQL{row: stubRow{err: errors.New("connection refused")}}
	store := NewStore(sql)
	_, _, err := store.Resolve(context.Background(), providers.KindElevenLabs, "t")
	if err == nil {
		t.Fatalf("expected lookup error")
	}
}

func TestResolveDefaultsOwner(t *testing.T) {
	sql := &stubSQL{row: stubRow{secret: "k"}}
	store := NewStore(sql)
	if _, _, err := store.Resolve(context.Background(), providers.KindDashScope, "  "); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if sql.lastArgs[1] != "default" {
		t.Fatalf("owner = %v, want default", sql.lastArgs[1])
	}
}

func TestSetRejectsEmptySecret(t *testing.T) {
	store := NewStore(&stubSQL{})
	if err := store.Set(context.Background(), providers.KindKling, "t", "  "); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestSetUpserts(t *testing.T) {
	sql := &stubSQL{}
	store := NewStore(sql)
	if err := store.Set(context.Background(), providers.KindKling, "", "a,b"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if len(sql.lastArgs) != 3 || sql.lastArgs[0] != "kling" || sql.lastArgs[1] != "default" || sql.lastArgs[2] != "a,b" {
		t.Fatalf("exec args = %v", sql.lastArgs)
	}
}

func TestStaticResolver(t *testing.T) {
	static := NewStatic(map[providers.Kind]string{
		providers.KindDashScope: "sk-1",
		providers.KindKling:     "   ",
	})
	cred, ok, err := static.Resolve(context.Background(), providers.KindDashScope, "anyone")
	if err != nil || !ok || cred.Secret != "sk-1" {
		t.Fatalf("cred = %+v ok = %v err = %v", cred, ok, err)
	}
	if _, ok, _ := static.Resolve(context.Background(), providers.KindKling, "anyone"); ok {
		t.Fatalf("blank seeded value must be absent")
	}
	if _, ok, _ := static.Resolve(context.Background(), providers.KindLeonardo, "anyone"); ok {
		t.Fatalf("unseeded provider must be absent")
	}
}
