// Package portfolio persists holdings, the watchlist, the trade log and
// generated reports.
package portfolio

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"finadvisor/internal/database"
	"finadvisor/internal/domain"
)

// Repository is the data access layer for portfolio records. Symbols are
// normalized to upper case on every write so lookups stay case-insensitive.
type Repository struct {
	db *database.DB
}

// NewRepository creates a repository over an opened database.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// AddHolding inserts a new position and returns its id.
func (r *Repository) AddHolding(symbol, name string, shares, avgCost float64, currency string) (int64, error) {
	if currency == "" {
		currency = "USD"
	}
	res, err := r.db.Conn().Exec(
		`INSERT INTO holdings (symbol, name, shares, avg_cost, currency) VALUES (?, ?, ?, ?, ?)`,
		strings.ToUpper(symbol), name, shares, avgCost, currency)
	if err != nil {
		return 0, fmt.Errorf("failed to add holding: %w", err)
	}
	return res.LastInsertId()
}

// UpdateHolding updates shares and/or average cost of a position. Nil
// arguments leave the column untouched. Returns false when the id does
// not exist or nothing was requested.
func (r *Repository) UpdateHolding(id int64, shares, avgCost *float64) (bool, error) {
	sets := []string{}
	args := []interface{}{}
	if shares != nil {
		sets = append(sets, "shares = ?")
		args = append(args, *shares)
	}
	if avgCost != nil {
		sets = append(sets, "avg_cost = ?")
		args = append(args, *avgCost)
	}
	if len(sets) == 0 {
		return false, nil
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	res, err := r.db.Conn().Exec(
		"UPDATE holdings SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return false, fmt.Errorf("failed to update holding: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteHolding removes a position by id. Returns false when no row matched.
func (r *Repository) DeleteHolding(id int64) (bool, error) {
	res, err := r.db.Conn().Exec(`DELETE FROM holdings WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete holding: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Holdings returns all positions ordered by symbol.
func (r *Repository) Holdings() ([]domain.Holding, error) {
	rows, err := r.db.Conn().Query(
		`SELECT id, symbol, COALESCE(name, ''), shares, avg_cost, currency, created_at, updated_at
		 FROM holdings ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	defer rows.Close()

	var holdings []domain.Holding
	for rows.Next() {
		var h domain.Holding
		if err := rows.Scan(&h.ID, &h.Symbol, &h.Name, &h.Shares, &h.AvgCost, &h.Currency, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

// HoldingBySymbol returns the position for a symbol, or sql.ErrNoRows
// wrapped when none exists.
func (r *Repository) HoldingBySymbol(symbol string) (domain.Holding, error) {
	var h domain.Holding
	err := r.db.Conn().QueryRow(
		`SELECT id, symbol, COALESCE(name, ''), shares, avg_cost, currency, created_at, updated_at
		 FROM holdings WHERE symbol = ?`, strings.ToUpper(symbol)).
		Scan(&h.ID, &h.Symbol, &h.Name, &h.Shares, &h.AvgCost, &h.Currency, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return domain.Holding{}, fmt.Errorf("holding %s: %w", strings.ToUpper(symbol), err)
	}
	return h, nil
}

// AddWatch adds a symbol to the watchlist. Returns false when the symbol
// is already tracked.
func (r *Repository) AddWatch(symbol, name string) (bool, error) {
	_, err := r.db.Conn().Exec(
		`INSERT INTO watchlist (symbol, name) VALUES (?, ?)`,
		strings.ToUpper(symbol), name)
	if err != nil {
		// The UNIQUE constraint on symbol reports duplicates.
		if strings.Contains(err.Error(), "UNIQUE") {
			return false, nil
		}
		return false, fmt.Errorf("failed to add watch symbol: %w", err)
	}
	return true, nil
}

// RemoveWatch removes a symbol from the watchlist. Returns false when the
// symbol was not tracked.
func (r *Repository) RemoveWatch(symbol string) (bool, error) {
	res, err := r.db.Conn().Exec(`DELETE FROM watchlist WHERE symbol = ?`, strings.ToUpper(symbol))
	if err != nil {
		return false, fmt.Errorf("failed to remove watch symbol: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Watchlist returns all tracked symbols ordered by symbol.
func (r *Repository) Watchlist() ([]domain.WatchItem, error) {
	rows, err := r.db.Conn().Query(
		`SELECT id, symbol, COALESCE(name, ''), added_at FROM watchlist ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}
	defer rows.Close()

	var items []domain.WatchItem
	for rows.Next() {
		var w domain.WatchItem
		if err := rows.Scan(&w.ID, &w.Symbol, &w.Name, &w.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watch item: %w", err)
		}
		items = append(items, w)
	}
	return items, rows.Err()
}

// AddTransaction records a trade. Total is derived from shares and price.
func (r *Repository) AddTransaction(symbol, transType string, shares, price float64, currency, note string) (int64, error) {
	if currency == "" {
		currency = "USD"
	}
	res, err := r.db.Conn().Exec(
		`INSERT INTO transactions (symbol, type, shares, price, total, currency, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		strings.ToUpper(symbol), strings.ToUpper(transType), shares, price, shares*price, currency, note)
	if err != nil {
		return 0, fmt.Errorf("failed to add transaction: %w", err)
	}
	return res.LastInsertId()
}

// Transactions returns recent trades, newest first. An empty symbol lists
// all symbols.
func (r *Repository) Transactions(symbol string, limit int) ([]domain.Transaction, error) {
	if limit < 1 {
		limit = 50
	}

	query := `SELECT id, symbol, type, shares, price, total, currency, COALESCE(note, ''), transaction_date
	          FROM transactions`
	args := []interface{}{}
	if symbol != "" {
		query += ` WHERE symbol = ?`
		args = append(args, strings.ToUpper(symbol))
	}
	query += ` ORDER BY transaction_date DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.Symbol, &t.Type, &t.Shares, &t.Price, &t.Total, &t.Currency, &t.Note, &t.Date); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// SaveReport stores a generated report's JSON payload.
func (r *Repository) SaveReport(reportType, content string) (int64, error) {
	res, err := r.db.Conn().Exec(
		`INSERT INTO reports (report_type, content) VALUES (?, ?)`, reportType, content)
	if err != nil {
		return 0, fmt.Errorf("failed to save report: %w", err)
	}
	return res.LastInsertId()
}

// LatestReport returns the most recent report of the given type, or
// sql.ErrNoRows wrapped when none has been generated yet.
func (r *Repository) LatestReport(reportType string) (string, time.Time, error) {
	var content string
	var createdAt time.Time
	err := r.db.Conn().QueryRow(
		`SELECT content, created_at FROM reports WHERE report_type = ?
		 ORDER BY created_at DESC, id DESC LIMIT 1`, reportType).
		Scan(&content, &createdAt)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("latest %s report: %w", reportType, err)
	}
	return content, createdAt, nil
}

// IsNotFound reports whether an error is a missing-row lookup.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
