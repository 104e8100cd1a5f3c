package store

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// SQLStore implements Store over database/sql. The same squirrel builders
// serve both backends; only the placeholder format and the DDL differ.
type SQLStore struct {
	db *sql.DB
	sb sq.StatementBuilderType
	// idColumn is the only DDL fragment the two backends disagree on.
	idColumn string
}

// NewPostgresStore opens a postgres-backed store.
func NewPostgresStore(dsn string) (*SQLStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &SQLStore{
		db:       db,
		sb:       sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		idColumn: "BIGSERIAL PRIMARY KEY",
	}, nil
}

// NewSQLiteStore opens a sqlite-backed store, creating the file if needed.
func NewSQLiteStore(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &SQLStore{
		db:       db,
		sb:       sq.StatementBuilder.PlaceholderFormat(sq.Question),
		idColumn: "INTEGER PRIMARY KEY AUTOINCREMENT",
	}, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id %s,
		name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		created_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id %s,
		customer_id INTEGER REFERENCES customers(id),
		invoice_number TEXT NOT NULL,
		amount DOUBLE PRECISION NOT NULL,
		issue_date TEXT NOT NULL,
		due_date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending', 'paid', 'payment_scheduled', 'disputed')),
		payment_date TEXT,
		created_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS interactions (
		id %s,
		session_id TEXT,
		interaction_type TEXT,
		data TEXT,
		timestamp TEXT
	)`,
}

// CreateTables creates the schema when it does not exist yet.
func (s *SQLStore) CreateTables() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(fmt.Sprintf(stmt, s.idColumn)); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

func (s *SQLStore) CountPendingAndSum(customerName string) (int, float64, error) {
	var count int
	var total float64
	err := s.sb.Select("COUNT(*)", "COALESCE(SUM(i.amount), 0)").
		From("invoices i").
		Join("customers c ON c.id = i.customer_id").
		Where(sq.Eq{"c.name": customerName, "i.status": StatusPending}).
		RunWith(s.db).
		QueryRow().
		Scan(&count, &total)
	if err != nil {
		return 0, 0, fmt.Errorf("count pending invoices: %w", err)
	}
	return count, total, nil
}

func (s *SQLStore) NearestPendingInvoice(customerName string) (*Invoice, error) {
	var inv Invoice
	var paymentDate sql.NullString
	err := s.sb.Select("i.id", "i.customer_id", "i.invoice_number", "i.amount",
		"i.issue_date", "i.due_date", "i.status", "i.payment_date").
		From("invoices i").
		Join("customers c ON c.id = i.customer_id").
		Where(sq.Eq{"c.name": customerName, "i.status": StatusPending}).
		OrderBy("i.due_date ASC").
		Limit(1).
		RunWith(s.db).
		QueryRow().
		Scan(&inv.ID, &inv.CustomerID, &inv.InvoiceNumber, &inv.Amount,
			&inv.IssueDate, &inv.DueDate, &inv.Status, &paymentDate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("nearest pending invoice: %w", err)
	}
	inv.PaymentDate = paymentDate.String
	return &inv, nil
}

func (s *SQLStore) MarkPaymentScheduled(customerName, paymentDate string) (int64, error) {
	res, err := s.sb.Update("invoices").
		Set("payment_date", paymentDate).
		Set("status", StatusPaymentScheduled).
		Where(sq.Expr("customer_id IN (SELECT id FROM customers WHERE name = ?)", customerName)).
		Where(sq.Eq{"status": StatusPending}).
		Where("payment_date IS NULL").
		RunWith(s.db).
		Exec()
	if err != nil {
		return 0, fmt.Errorf("mark payment scheduled: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLStore) MarkDisputed(customerName string) (int64, error) {
	res, err := s.sb.Update("invoices").
		Set("status", StatusDisputed).
		Where(sq.Expr("customer_id IN (SELECT id FROM customers WHERE name = ?)", customerName)).
		Where(sq.Eq{"status": StatusPending}).
		Where("payment_date IS NULL").
		RunWith(s.db).
		Exec()
	if err != nil {
		return 0, fmt.Errorf("mark disputed: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLStore) LogInteraction(sessionID, interactionType, data string) error {
	_, err := s.sb.Insert("interactions").
		Columns("session_id", "interaction_type", "data", "timestamp").
		Values(sessionID, interactionType, data, nowTimestamp()).
		RunWith(s.db).
		Exec()
	if err != nil {
		return fmt.Errorf("log interaction: %w", err)
	}
	return nil
}

func (s *SQLStore) CreateCustomer(c Customer) (int64, error) {
	// No RETURNING here so the same statement works on both backends; the
	// seed tool looks the row up afterwards.
	_, err := s.sb.Insert("customers").
		Columns("name", "email", "phone", "created_at").
		Values(c.Name, c.Email, c.Phone, nowTimestamp()).
		RunWith(s.db).
		Exec()
	if err != nil {
		return 0, fmt.Errorf("create customer: %w", err)
	}
	var id int64
	err = s.sb.Select("id").
		From("customers").
		Where(sq.Eq{"name": c.Name}).
		OrderBy("id DESC").
		Limit(1).
		RunWith(s.db).
		QueryRow().
		Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create customer: %w", err)
	}
	return id, nil
}

func (s *SQLStore) CreateInvoice(inv Invoice) error {
	cols := []string{"customer_id", "invoice_number", "amount", "issue_date", "due_date", "status", "created_at"}
	vals := []interface{}{inv.CustomerID, inv.InvoiceNumber, inv.Amount, inv.IssueDate, inv.DueDate, inv.Status, nowTimestamp()}
	if inv.PaymentDate != "" {
		cols = append(cols, "payment_date")
		vals = append(vals, inv.PaymentDate)
	}
	_, err := s.sb.Insert("invoices").
		Columns(cols...).
		Values(vals...).
		RunWith(s.db).
		Exec()
	if err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
