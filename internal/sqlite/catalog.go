package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sales_api/internal/catalog"
)

// Customer operations

func (s *Storage) CreateCustomer(ctx context.Context, c *catalog.Customer) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO customers (id, name, email, phone, document, address, city, state, zip_code, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Email, c.Phone, c.Document, c.Address, c.City, c.State, c.ZipCode,
		c.IsActive, formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	if isUniqueViolation(err) {
		return fmt.Errorf("customer %s: %w", c.ID, catalog.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

const customerColumns = `id, name, email, phone, document, address, city, state, zip_code, is_active, created_at, updated_at`

func scanCustomer(row rowScanner) (*catalog.Customer, error) {
	var (
		c                    catalog.Customer
		createdAt, updatedAt string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Document, &c.Address, &c.City,
		&c.State, &c.ZipCode, &c.IsActive, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Storage) GetCustomer(ctx context.Context, id uuid.UUID) (*catalog.Customer, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
	c, err := scanCustomer(row)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func (s *Storage) ListCustomers(ctx context.Context) ([]*catalog.Customer, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := make([]*catalog.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (s *Storage) UpdateCustomer(ctx context.Context, c *catalog.Customer) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE customers
		SET name = ?, email = ?, phone = ?, document = ?, address = ?, city = ?, state = ?, zip_code = ?,
		    is_active = ?, updated_at = ?
		WHERE id = ?
	`, c.Name, c.Email, c.Phone, c.Document, c.Address, c.City, c.State, c.ZipCode,
		c.IsActive, formatTime(c.UpdatedAt), c.ID)
	return affectedOne(res, err, "customer")
}

func (s *Storage) SetCustomerActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE customers SET is_active = ?, updated_at = ? WHERE id = ?
	`, active, formatTime(time.Now()), id)
	return affectedOne(res, err, "customer")
}

// Branch operations

func (s *Storage) CreateBranch(ctx context.Context, b *catalog.Branch) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO branches (id, name, code, address, city, state, zip_code, phone, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.Name, b.Code, b.Address, b.City, b.State, b.ZipCode, b.Phone,
		b.IsActive, formatTime(b.CreatedAt), formatTime(b.UpdatedAt))
	if isUniqueViolation(err) {
		return fmt.Errorf("branch %s: %w", b.Code, catalog.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to create branch: %w", err)
	}
	return nil
}

const branchColumns = `id, name, code, address, city, state, zip_code, phone, is_active, created_at, updated_at`

func scanBranch(row rowScanner) (*catalog.Branch, error) {
	var (
		b                    catalog.Branch
		createdAt, updatedAt string
	)
	if err := row.Scan(&b.ID, &b.Name, &b.Code, &b.Address, &b.City, &b.State, &b.ZipCode,
		&b.Phone, &b.IsActive, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Storage) GetBranch(ctx context.Context, id uuid.UUID) (*catalog.Branch, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+branchColumns+` FROM branches WHERE id = ?`, id)
	b, err := scanBranch(row)
	if err != nil {
		return nil, notFound(err)
	}
	return b, nil
}

func (s *Storage) ListBranches(ctx context.Context) ([]*catalog.Branch, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+branchColumns+` FROM branches ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	defer rows.Close()

	branches := make([]*catalog.Branch, 0)
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

func (s *Storage) UpdateBranch(ctx context.Context, b *catalog.Branch) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE branches
		SET name = ?, code = ?, address = ?, city = ?, state = ?, zip_code = ?, phone = ?,
		    is_active = ?, updated_at = ?
		WHERE id = ?
	`, b.Name, b.Code, b.Address, b.City, b.State, b.ZipCode, b.Phone,
		b.IsActive, formatTime(b.UpdatedAt), b.ID)
	return affectedOne(res, err, "branch")
}

func (s *Storage) SetBranchActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE branches SET is_active = ?, updated_at = ? WHERE id = ?
	`, active, formatTime(time.Now()), id)
	return affectedOne(res, err, "branch")
}

// Product operations

func (s *Storage) CreateProduct(ctx context.Context, p *catalog.Product) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO products (id, name, sku, description, category, price, stock_quantity, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.SKU, p.Description, p.Category, p.Price.String(), p.StockQuantity,
		p.IsActive, formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	if isUniqueViolation(err) {
		return fmt.Errorf("product %s: %w", p.SKU, catalog.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

const productColumns = `id, name, sku, description, category, price, stock_quantity, is_active, created_at, updated_at`

func scanProduct(row rowScanner) (*catalog.Product, error) {
	var (
		p                    catalog.Product
		createdAt, updatedAt string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.Description, &p.Category, &p.Price,
		&p.StockQuantity, &p.IsActive, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Storage) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (s *Storage) ListProducts(ctx context.Context) ([]*catalog.Product, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY sku`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := make([]*catalog.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// UpdateProduct rewrites the descriptive fields and the flag. The stock
// ledger is only moved by IncrementStock and DecrementStock.
func (s *Storage) UpdateProduct(ctx context.Context, p *catalog.Product) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE products
		SET name = ?, sku = ?, description = ?, category = ?, price = ?,
		    is_active = ?, updated_at = ?
		WHERE id = ?
	`, p.Name, p.SKU, p.Description, p.Category, p.Price.String(),
		p.IsActive, formatTime(p.UpdatedAt), p.ID)
	return affectedOne(res, err, "product")
}

func (s *Storage) SetProductActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE products SET is_active = ?, updated_at = ? WHERE id = ?
	`, active, formatTime(time.Now()), id)
	return affectedOne(res, err, "product")
}

// IncrementStock adds quantity units in a single statement.
func (s *Storage) IncrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: stock adjustment must be greater than zero", catalog.ErrInvalidQuantity)
	}
	res, err := s.q.ExecContext(ctx, `
		UPDATE products SET stock_quantity = stock_quantity + ?, updated_at = ? WHERE id = ?
	`, quantity, formatTime(time.Now()), id)
	return affectedOne(res, err, "product")
}

// DecrementStock removes quantity units only if that many are available; the
// check and the write are the same statement.
func (s *Storage) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: stock adjustment must be greater than zero", catalog.ErrInvalidQuantity)
	}
	res, err := s.q.ExecContext(ctx, `
		UPDATE products SET stock_quantity = stock_quantity - ?, updated_at = ?
		WHERE id = ? AND stock_quantity >= ?
	`, quantity, formatTime(time.Now()), id, quantity)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	var available int
	err = s.q.QueryRowContext(ctx, `SELECT stock_quantity FROM products WHERE id = ?`, id).Scan(&available)
	if err != nil {
		return notFound(err)
	}
	return fmt.Errorf("%w: %d available, %d requested", catalog.ErrInsufficientStock, available, quantity)
}

func affectedOne(res sql.Result, err error, entity string) error {
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", entity, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}
