/*
Package sqlite provides the SQLite-backed persistence layer.

PURPOSE:
  Stores the user's debt portfolio (accounts with their rate buckets, the
  budget, preferences) and generated plans. The store is a plain data
  provider: it hands back the same structures it was given and carries no
  planning behavior of its own.

KEY TABLES:
  accounts:    one row per debt account
  buckets:     rate buckets, owned by their account (replaced on save)
  budget:      single-row budget snapshot (changes/lump sums as JSON)
  preferences: single-row optimization preferences
  plans:       generated plan results (JSON), newest-first retrieval

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/paydown.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - engine/types.go: the domain structures persisted here
  - api/handlers.go: the store's only caller besides the scheduler
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/finlayjack89/PaydownPilot-sub001/engine"
	"github.com/finlayjack89/PaydownPilot-sub001/money"
)

// Store persists portfolios and plans in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a store at the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		lender_name TEXT NOT NULL,
		account_type TEXT NOT NULL,
		balance_cents INTEGER NOT NULL,
		apr_standard_bps INTEGER NOT NULL,
		payment_due_day INTEGER NOT NULL,
		min_fixed_cents INTEGER NOT NULL DEFAULT 0,
		min_percentage_bps INTEGER NOT NULL DEFAULT 0,
		min_includes_interest BOOLEAN NOT NULL DEFAULT FALSE,
		promo_expiry_month INTEGER NOT NULL DEFAULT 0,
		opened_at TEXT,
		notes TEXT,
		position INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Buckets belong to their account and are replaced wholesale on save.
	CREATE TABLE IF NOT EXISTS buckets (
		account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		kind TEXT NOT NULL,
		label TEXT,
		balance_cents INTEGER NOT NULL,
		annual_rate_bps INTEGER NOT NULL,
		promo BOOLEAN NOT NULL DEFAULT FALSE,
		promo_expiry_month INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (account_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_buckets_account
		ON buckets(account_id);

	-- Single-row snapshots keyed by id = 1.
	CREATE TABLE IF NOT EXISTS budget (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		monthly_cents INTEGER NOT NULL,
		changes_json TEXT NOT NULL DEFAULT '[]',
		lump_sums_json TEXT NOT NULL DEFAULT '[]',
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS preferences (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		strategy TEXT NOT NULL,
		payment_shape TEXT NOT NULL,
		tie_break TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS plans (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		start_date TEXT NOT NULL,
		result_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_plans_created_at
		ON plans(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ACCOUNT STORE
// =============================================================================

// SaveAccount inserts or updates an account and replaces its buckets.
func (s *Store) SaveAccount(ctx context.Context, acct engine.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)

	query := `
		INSERT INTO accounts
		(id, lender_name, account_type, balance_cents, apr_standard_bps, payment_due_day,
		 min_fixed_cents, min_percentage_bps, min_includes_interest, promo_expiry_month,
		 opened_at, notes, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			COALESCE((SELECT position FROM accounts WHERE id = ?),
			         (SELECT COALESCE(MAX(position), -1) + 1 FROM accounts)),
			?, ?)
		ON CONFLICT(id) DO UPDATE SET
			lender_name = excluded.lender_name,
			account_type = excluded.account_type,
			balance_cents = excluded.balance_cents,
			apr_standard_bps = excluded.apr_standard_bps,
			payment_due_day = excluded.payment_due_day,
			min_fixed_cents = excluded.min_fixed_cents,
			min_percentage_bps = excluded.min_percentage_bps,
			min_includes_interest = excluded.min_includes_interest,
			promo_expiry_month = excluded.promo_expiry_month,
			opened_at = excluded.opened_at,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`

	_, err = tx.ExecContext(ctx, query,
		string(acct.ID),
		acct.LenderName,
		string(acct.Type),
		int64(acct.BalanceCents),
		int64(acct.StandardRateBps),
		acct.PaymentDueDay,
		int64(acct.MinPayment.FixedCents),
		int64(acct.MinPayment.PercentageBps),
		acct.MinPayment.IncludesInterest,
		acct.PromoExpiryMonth,
		nullTime(acct.OpenedAt),
		acct.Notes,
		string(acct.ID),
		now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM buckets WHERE account_id = ?", string(acct.ID)); err != nil {
		return fmt.Errorf("failed to clear buckets: %w", err)
	}
	for i, b := range acct.Buckets {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO buckets
			(account_id, position, kind, label, balance_cents, annual_rate_bps, promo, promo_expiry_month)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			string(acct.ID), i, string(b.Kind), b.Label,
			int64(b.BalanceCents), int64(b.AnnualRateBps), b.Promo, b.PromoExpiryMonth,
		)
		if err != nil {
			return fmt.Errorf("failed to save bucket: %w", err)
		}
	}

	return tx.Commit()
}

// GetAccount retrieves an account by ID, nil when absent.
func (s *Store) GetAccount(ctx context.Context, id engine.AccountID) (*engine.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts, err := s.queryAccounts(ctx, "WHERE id = ?", string(id))
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, nil
	}
	return &accounts[0], nil
}

// ListAccounts returns all accounts in their insertion order. Insertion
// order is load-bearing: it is the engine's default tie-break.
func (s *Store) ListAccounts(ctx context.Context) ([]engine.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryAccounts(ctx, "")
}

func (s *Store) queryAccounts(ctx context.Context, where string, args ...any) ([]engine.Account, error) {
	query := `
		SELECT id, lender_name, account_type, balance_cents, apr_standard_bps, payment_due_day,
		       min_fixed_cents, min_percentage_bps, min_includes_interest, promo_expiry_month,
		       opened_at, notes
		FROM accounts ` + where + `
		ORDER BY position ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []engine.Account
	for rows.Next() {
		var (
			a          engine.Account
			id         string
			acctType   string
			balance    int64
			rate       int64
			fixed, pct int64
			openedAt   sql.NullString
			notes      sql.NullString
		)
		if err := rows.Scan(&id, &a.LenderName, &acctType, &balance, &rate, &a.PaymentDueDay,
			&fixed, &pct, &a.MinPayment.IncludesInterest, &a.PromoExpiryMonth,
			&openedAt, &notes); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		a.ID = engine.AccountID(id)
		a.Type = engine.AccountType(acctType)
		a.BalanceCents = money.Cents(balance)
		a.StandardRateBps = money.BasisPoints(rate)
		a.MinPayment.FixedCents = money.Cents(fixed)
		a.MinPayment.PercentageBps = money.BasisPoints(pct)
		a.Notes = notes.String
		if openedAt.Valid {
			a.OpenedAt, _ = time.Parse(time.RFC3339, openedAt.String)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range accounts {
		buckets, err := s.loadBuckets(ctx, accounts[i].ID)
		if err != nil {
			return nil, err
		}
		accounts[i].Buckets = buckets
	}
	return accounts, nil
}

func (s *Store) loadBuckets(ctx context.Context, accountID engine.AccountID) ([]engine.Bucket, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, label, balance_cents, annual_rate_bps, promo, promo_expiry_month
		FROM buckets WHERE account_id = ? ORDER BY position ASC`,
		string(accountID),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query buckets: %w", err)
	}
	defer rows.Close()

	var buckets []engine.Bucket
	for rows.Next() {
		var (
			b       engine.Bucket
			kind    string
			label   sql.NullString
			balance int64
			rate    int64
		)
		if err := rows.Scan(&kind, &label, &balance, &rate, &b.Promo, &b.PromoExpiryMonth); err != nil {
			return nil, fmt.Errorf("failed to scan bucket: %w", err)
		}
		b.Kind = engine.BucketKind(kind)
		b.Label = label.String
		b.BalanceCents = money.Cents(balance)
		b.AnnualRateBps = money.BasisPoints(rate)
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// DeleteAccount removes an account and its buckets.
func (s *Store) DeleteAccount(ctx context.Context, id engine.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", string(id))
	return err
}

// =============================================================================
// BUDGET AND PREFERENCES
// =============================================================================

// SaveBudget replaces the budget snapshot.
func (s *Store) SaveBudget(ctx context.Context, bp engine.BudgetPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changes, err := json.Marshal(bp.Changes)
	if err != nil {
		return fmt.Errorf("failed to encode budget changes: %w", err)
	}
	lumps, err := json.Marshal(bp.LumpSums)
	if err != nil {
		return fmt.Errorf("failed to encode lump sums: %w", err)
	}

	query := `
		INSERT INTO budget (id, monthly_cents, changes_json, lump_sums_json, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			monthly_cents = excluded.monthly_cents,
			changes_json = excluded.changes_json,
			lump_sums_json = excluded.lump_sums_json,
			updated_at = excluded.updated_at
	`
	_, err = s.db.ExecContext(ctx, query,
		int64(bp.MonthlyCents), string(changes), string(lumps),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetBudget returns the stored budget, or a zero budget when none is set.
func (s *Store) GetBudget(ctx context.Context) (engine.BudgetPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		bp      engine.BudgetPlan
		monthly int64
		changes string
		lumps   string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT monthly_cents, changes_json, lump_sums_json FROM budget WHERE id = 1",
	).Scan(&monthly, &changes, &lumps)
	if err == sql.ErrNoRows {
		return engine.BudgetPlan{}, nil
	}
	if err != nil {
		return engine.BudgetPlan{}, err
	}

	bp.MonthlyCents = money.Cents(monthly)
	if err := json.Unmarshal([]byte(changes), &bp.Changes); err != nil {
		return engine.BudgetPlan{}, fmt.Errorf("failed to decode budget changes: %w", err)
	}
	if err := json.Unmarshal([]byte(lumps), &bp.LumpSums); err != nil {
		return engine.BudgetPlan{}, fmt.Errorf("failed to decode lump sums: %w", err)
	}
	return bp, nil
}

// SavePreferences replaces the preferences snapshot.
func (s *Store) SavePreferences(ctx context.Context, prefs engine.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO preferences (id, strategy, payment_shape, tie_break, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			strategy = excluded.strategy,
			payment_shape = excluded.payment_shape,
			tie_break = excluded.tie_break,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		string(prefs.Strategy), string(prefs.Shape), string(prefs.TieBreak),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetPreferences returns stored preferences, defaulting to avalanche with
// month-to-month optimization when none are set.
func (s *Store) GetPreferences(ctx context.Context) (engine.Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var strategy, shape, tieBreak string
	err := s.db.QueryRowContext(ctx,
		"SELECT strategy, payment_shape, tie_break FROM preferences WHERE id = 1",
	).Scan(&strategy, &shape, &tieBreak)
	if err == sql.ErrNoRows {
		return engine.Preferences{
			Strategy: engine.StrategyMinimizeTotalInterest,
			Shape:    engine.ShapeOptimizedMonthToMonth,
			TieBreak: engine.TieBreakInsertionOrder,
		}, nil
	}
	if err != nil {
		return engine.Preferences{}, err
	}

	return engine.Preferences{
		Strategy: engine.Strategy(strategy),
		Shape:    engine.PaymentShape(shape),
		TieBreak: engine.TieBreak(tieBreak),
	}, nil
}

// =============================================================================
// PLAN STORE
// =============================================================================

// PlanRecord is a stored plan computation.
type PlanRecord struct {
	ID        string
	Status    engine.PlanStatus
	StartDate time.Time
	Result    *engine.PlanResult
	CreatedAt time.Time
}

// SavePlan stores a generated plan.
func (s *Store) SavePlan(ctx context.Context, rec PlanRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("failed to encode plan result: %w", err)
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO plans (id, status, start_date, result_json, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Status),
		rec.StartDate.Format(time.RFC3339),
		string(result),
		createdAt.Format(time.RFC3339),
	)
	return err
}

// LatestPlan returns the most recently stored plan, nil when none exists.
func (s *Store) LatestPlan(ctx context.Context) (*PlanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		rec        PlanRecord
		status     string
		startDate  string
		resultJSON string
		createdAt  string
	)
	// created_at has second resolution; rowid breaks same-second ties by
	// insertion order.
	err := s.db.QueryRowContext(ctx, `
		SELECT id, status, start_date, result_json, created_at
		FROM plans ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	).Scan(&rec.ID, &status, &startDate, &resultJSON, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rec.Status = engine.PlanStatus(status)
	rec.StartDate, _ = time.Parse(time.RFC3339, startDate)
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if err := json.Unmarshal([]byte(resultJSON), &rec.Result); err != nil {
		return nil, fmt.Errorf("failed to decode plan result: %w", err)
	}
	return &rec, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing and scenario loading).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"buckets", "accounts", "budget", "preferences", "plans"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339), Valid: true}
}
