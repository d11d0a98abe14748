package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"sales_api/internal/sales"
)

// Sale operations. A sale row and its item rows are always written together.

func (s *Storage) CreateSale(ctx context.Context, sale *sales.Sale) error {
	if sale.ID == uuid.Nil {
		return sales.ErrEmptyID
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO sales (
			id, sale_number, sale_date, customer_id, customer_name, customer_email,
			branch_id, branch_name, branch_code, total_amount, is_cancelled, cancelled_at,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sale.ID, sale.SaleNumber, formatTime(sale.SaleDate),
		sale.Customer.ID, sale.Customer.Name, sale.Customer.Email,
		sale.Branch.ID, sale.Branch.Name, sale.Branch.Code,
		sale.TotalAmount.String(), sale.IsCancelled, nullTime(sale.CancelledAt),
		formatTime(sale.CreatedAt), formatTime(sale.UpdatedAt))
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", sales.ErrDuplicateSaleNumber, sale.SaleNumber)
	}
	if err != nil {
		return fmt.Errorf("error saving sale: %w", err)
	}

	return s.insertItems(ctx, sale)
}

func (s *Storage) insertItems(ctx context.Context, sale *sales.Sale) error {
	for pos, item := range sale.Items {
		_, err := s.q.ExecContext(ctx, `
			INSERT INTO sale_items (
				id, sale_id, position, product_id, product_name, product_sku,
				quantity, unit_price, discount, total_amount, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, item.ID, sale.ID, pos, item.ProductID, item.ProductName, item.ProductSKU,
			item.Quantity, item.UnitPrice.String(), item.Discount.String(), item.TotalAmount.String(),
			formatTime(item.CreatedAt), formatTime(item.UpdatedAt))
		if err != nil {
			return fmt.Errorf("error saving sale item: %w", err)
		}
	}
	return nil
}

// UpdateSale rewrites the sale row and replaces its items.
func (s *Storage) UpdateSale(ctx context.Context, sale *sales.Sale) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE sales
		SET total_amount = ?, is_cancelled = ?, cancelled_at = ?, updated_at = ?
		WHERE id = ?
	`, sale.TotalAmount.String(), sale.IsCancelled, nullTime(sale.CancelledAt),
		formatTime(sale.UpdatedAt), sale.ID)
	if err := affectedOne(res, err, "sale"); err != nil {
		return err
	}

	if _, err := s.q.ExecContext(ctx, `DELETE FROM sale_items WHERE sale_id = ?`, sale.ID); err != nil {
		return fmt.Errorf("error replacing sale items: %w", err)
	}
	return s.insertItems(ctx, sale)
}

const saleColumns = `
	id, sale_number, sale_date, customer_id, customer_name, customer_email,
	branch_id, branch_name, branch_code, total_amount, is_cancelled, cancelled_at,
	created_at, updated_at`

func scanSale(row rowScanner) (*sales.Sale, error) {
	var (
		sale                           sales.Sale
		saleDate, createdAt, updatedAt string
		cancelledAt                    sql.NullString
	)
	if err := row.Scan(&sale.ID, &sale.SaleNumber, &saleDate,
		&sale.Customer.ID, &sale.Customer.Name, &sale.Customer.Email,
		&sale.Branch.ID, &sale.Branch.Name, &sale.Branch.Code,
		&sale.TotalAmount, &sale.IsCancelled, &cancelledAt,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if sale.SaleDate, err = parseTime(saleDate); err != nil {
		return nil, err
	}
	if sale.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if sale.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if cancelledAt.Valid {
		at, err := parseTime(cancelledAt.String)
		if err != nil {
			return nil, err
		}
		sale.CancelledAt = &at
	}
	sale.Items = []*sales.SaleItem{}
	return &sale, nil
}

func (s *Storage) GetSale(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = ?`, id)
	sale, err := scanSale(row)
	if err != nil {
		return nil, notFound(err)
	}

	items, err := s.loadItems(ctx, []uuid.UUID{sale.ID})
	if err != nil {
		return nil, err
	}
	sale.Items = append(sale.Items, items[sale.ID]...)
	return sale, nil
}

func (s *Storage) ListSales(ctx context.Context) ([]*sales.Sale, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+saleColumns+` FROM sales ORDER BY created_at DESC, sale_number DESC`)
	if err != nil {
		return nil, fmt.Errorf("error listing sales: %w", err)
	}

	list := make([]*sales.Sale, 0)
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		list = append(list, sale)
		ids = append(ids, sale.ID)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// The single pooled connection must be released before the next query.
	rows.Close()

	items, err := s.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, sale := range list {
		sale.Items = append(sale.Items, items[sale.ID]...)
	}
	return list, nil
}

// loadItems returns the items of the given sales keyed by sale id, in
// insertion order.
func (s *Storage) loadItems(ctx context.Context, saleIDs []uuid.UUID) (map[uuid.UUID][]*sales.SaleItem, error) {
	out := make(map[uuid.UUID][]*sales.SaleItem, len(saleIDs))
	if len(saleIDs) == 0 {
		return out, nil
	}

	args := make([]any, len(saleIDs))
	for i, id := range saleIDs {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(saleIDs)), ",")

	query := `
		SELECT id, sale_id, product_id, product_name, product_sku, quantity,
		       unit_price, discount, total_amount, created_at, updated_at
		FROM sale_items
		WHERE sale_id IN (` + placeholders + `)
		ORDER BY sale_id, position`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error finding sale items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item                 sales.SaleItem
			createdAt, updatedAt string
		)
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.ProductName, &item.ProductSKU,
			&item.Quantity, &item.UnitPrice, &item.Discount, &item.TotalAmount,
			&createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("error scanning sale item: %w", err)
		}
		if item.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if item.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		out[item.SaleID] = append(out[item.SaleID], &item)
	}
	return out, rows.Err()
}

func (s *Storage) CountSalesBetween(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := s.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sales WHERE sale_date >= ? AND sale_date < ?
	`, formatTime(from), formatTime(to)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting sales: %w", err)
	}
	return n, nil
}

// NextSaleSequence reserves the next number for day with one upsert. The
// first reservation of a day starts after the sales already recorded for it.
func (s *Storage) NextSaleSequence(ctx context.Context, day time.Time) (int, error) {
	day = sales.StartOfDay(day)
	var n int
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO sale_sequences (day, last_value)
		VALUES (?, (SELECT COUNT(*) FROM sales WHERE sale_date >= ? AND sale_date < ?) + 1)
		ON CONFLICT(day) DO UPDATE SET last_value = last_value + 1
		RETURNING last_value
	`, day.Format("20060102"), formatTime(day), formatTime(day.AddDate(0, 0, 1))).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error reserving sale sequence: %w", err)
	}
	return n, nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}
