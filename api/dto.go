package api

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"sales_api/internal/catalog"
	"sales_api/internal/sales"
)

// Requests only carry caller-settable fields; ids, timestamps, prices and
// totals are always assigned by the server.

type createSaleRequest struct {
	CustomerID string                  `json:"customer_id" binding:"required,uuid"`
	BranchID   string                  `json:"branch_id" binding:"required,uuid"`
	Items      []createSaleItemRequest `json:"items" binding:"required,min=1,dive"`
}

type createSaleItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity"`
}

func (r createSaleRequest) toCommand() (sales.CreateSaleCommand, error) {
	customerID, err := uuid.Parse(r.CustomerID)
	if err != nil {
		return sales.CreateSaleCommand{}, fmt.Errorf("%w: customer_id: %v", sales.ErrValidation, err)
	}
	branchID, err := uuid.Parse(r.BranchID)
	if err != nil {
		return sales.CreateSaleCommand{}, fmt.Errorf("%w: branch_id: %v", sales.ErrValidation, err)
	}

	items := make([]sales.CreateSaleItemCommand, 0, len(r.Items))
	for _, item := range r.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return sales.CreateSaleCommand{}, fmt.Errorf("%w: product_id: %v", sales.ErrValidation, err)
		}
		items = append(items, sales.CreateSaleItemCommand{ProductID: productID, Quantity: item.Quantity})
	}

	return sales.CreateSaleCommand{CustomerID: customerID, BranchID: branchID, Items: items}, nil
}

type patchSaleRequest struct {
	Status string `json:"status" binding:"required"`
}

type saleItemResponse struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	ProductSKU  string `json:"product_sku"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Discount    string `json:"discount"`
	TotalAmount string `json:"total_amount"`
}

type saleResponse struct {
	ID            string             `json:"id"`
	SaleNumber    string             `json:"sale_number"`
	SaleDate      time.Time          `json:"sale_date"`
	CustomerID    string             `json:"customer_id"`
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email"`
	BranchID      string             `json:"branch_id"`
	BranchName    string             `json:"branch_name"`
	BranchCode    string             `json:"branch_code"`
	Items         []saleItemResponse `json:"items"`
	TotalAmount   string             `json:"total_amount"`
	IsCancelled   bool               `json:"is_cancelled"`
	CancelledAt   *time.Time         `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func toSaleResponse(s *sales.Sale) saleResponse {
	items := make([]saleItemResponse, 0, len(s.Items))
	for _, i := range s.Items {
		items = append(items, saleItemResponse{
			ID:          i.ID.String(),
			ProductID:   i.ProductID.String(),
			ProductName: i.ProductName,
			ProductSKU:  i.ProductSKU,
			Quantity:    i.Quantity,
			UnitPrice:   money(i.UnitPrice),
			Discount:    money(i.Discount),
			TotalAmount: money(i.TotalAmount),
		})
	}
	return saleResponse{
		ID:            s.ID.String(),
		SaleNumber:    s.SaleNumber,
		SaleDate:      s.SaleDate,
		CustomerID:    s.Customer.ID.String(),
		CustomerName:  s.Customer.Name,
		CustomerEmail: s.Customer.Email,
		BranchID:      s.Branch.ID.String(),
		BranchName:    s.Branch.Name,
		BranchCode:    s.Branch.Code,
		Items:         items,
		TotalAmount:   money(s.TotalAmount),
		IsCancelled:   s.IsCancelled,
		CancelledAt:   s.CancelledAt,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

type cancelSaleResponse struct {
	ID          string     `json:"id"`
	SaleNumber  string     `json:"sale_number"`
	IsCancelled bool       `json:"is_cancelled"`
	CancelledAt *time.Time `json:"cancelled_at"`
}

func toCancelSaleResponse(s *sales.Sale) cancelSaleResponse {
	return cancelSaleResponse{
		ID:          s.ID.String(),
		SaleNumber:  s.SaleNumber,
		IsCancelled: s.IsCancelled,
		CancelledAt: s.CancelledAt,
	}
}

type createCustomerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Document string `json:"document"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zip_code"`
}

func (r createCustomerRequest) toCommand() catalog.CreateCustomerCommand {
	return catalog.CreateCustomerCommand{
		Name:     r.Name,
		Email:    r.Email,
		Phone:    r.Phone,
		Document: r.Document,
		Address:  r.Address,
		City:     r.City,
		State:    r.State,
		ZipCode:  r.ZipCode,
	}
}

type customerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Document  string    `json:"document"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	State     string    `json:"state,omitempty"`
	ZipCode   string    `json:"zip_code,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCustomerResponse(c *catalog.Customer) customerResponse {
	return customerResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Document:  c.Document,
		Address:   c.Address,
		City:      c.City,
		State:     c.State,
		ZipCode:   c.ZipCode,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type createBranchRequest struct {
	Name    string `json:"name"`
	Code    string `json:"code"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Phone   string `json:"phone"`
}

func (r createBranchRequest) toCommand() catalog.CreateBranchCommand {
	return catalog.CreateBranchCommand{
		Name:    r.Name,
		Code:    r.Code,
		Address: r.Address,
		City:    r.City,
		State:   r.State,
		ZipCode: r.ZipCode,
		Phone:   r.Phone,
	}
}

type branchResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	State     string    `json:"state,omitempty"`
	ZipCode   string    `json:"zip_code,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toBranchResponse(b *catalog.Branch) branchResponse {
	return branchResponse{
		ID:        b.ID.String(),
		Name:      b.Name,
		Code:      b.Code,
		Address:   b.Address,
		City:      b.City,
		State:     b.State,
		ZipCode:   b.ZipCode,
		Phone:     b.Phone,
		IsActive:  b.IsActive,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

type createProductRequest struct {
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
}

func (r createProductRequest) toCommand() catalog.CreateProductCommand {
	return catalog.CreateProductCommand{
		Name:          r.Name,
		SKU:           r.SKU,
		Description:   r.Description,
		Category:      r.Category,
		Price:         r.Price,
		StockQuantity: r.StockQuantity,
	}
}

type restockRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

type productResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	SKU           string    `json:"sku"`
	Description   string    `json:"description,omitempty"`
	Category      string    `json:"category,omitempty"`
	Price         string    `json:"price"`
	StockQuantity int       `json:"stock_quantity"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toProductResponse(p *catalog.Product) productResponse {
	return productResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		SKU:           p.SKU,
		Description:   p.Description,
		Category:      p.Category,
		Price:         money(p.Price),
		StockQuantity: p.StockQuantity,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func mapAll[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
