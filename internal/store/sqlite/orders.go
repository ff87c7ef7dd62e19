package sqlite

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shelfmark/bookstore-server/internal/domain"
	"github.com/shelfmark/bookstore-server/internal/store"
)

const orderColumns = `id, user_id, created_at, shipping_address, total, status`

const orderItemColumns = `oi.id, oi.order_id, oi.book_id, oi.quantity, oi.price`

// errOrderItemNotFound is shared by every mismatch of (user, order, item) so a
// caller cannot tell which key was wrong.
const errOrderItemNotFound = "order item not found"

var orderSortColumns = map[string]string{
	"id":         "id",
	"createdAt":  "created_at",
	"created_at": "created_at",
	"orderDate":  "created_at",
	"total":      "CAST(total AS REAL)",
	"status":     "status",
}

var orderItemSortColumns = map[string]string{
	"id":       "oi.id",
	"bookId":   "oi.book_id",
	"book_id":  "oi.book_id",
	"quantity": "oi.quantity",
	"price":    "CAST(oi.price AS REAL)",
}

func scanOrder(scanner interface{ Scan(dest ...any) error }) (*domain.Order, error) {
	var (
		o         domain.Order
		createdAt string
		total     string
		status    string
	)

	err := scanner.Scan(&o.ID, &o.UserID, &createdAt, &o.ShippingAddress, &total, &status)
	if err != nil {
		return nil, err
	}

	if o.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("order %s total %q: %w", o.ID, total, err)
	}
	o.Status = domain.Status(status)

	return &o, nil
}

func scanOrderItem(scanner interface{ Scan(dest ...any) error }) (*domain.OrderItem, error) {
	var (
		item  domain.OrderItem
		price string
	)

	if err := scanner.Scan(&item.ID, &item.OrderID, &item.BookID, &item.Quantity, &price); err != nil {
		return nil, err
	}

	p, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("order item %s price %q: %w", item.ID, price, err)
	}
	item.Price = p
	return &item, nil
}

// CreateOrder inserts an order and all of its items atomically.
func (q *queries) CreateOrder(ctx context.Context, order *domain.Order) error {
	return q.atomic(ctx, func(q *queries) error {
		_, err := q.db.ExecContext(ctx, `
			INSERT INTO orders (id, user_id, created_at, shipping_address, total, status)
			VALUES (?, ?, ?, ?, ?, ?)`,
			order.ID,
			order.UserID,
			formatTime(order.CreatedAt),
			order.ShippingAddress,
			order.Total.String(),
			string(order.Status),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrAlreadyExists.WithMessage("order already exists")
			}
			return fmt.Errorf("insert order: %w", err)
		}

		for _, item := range order.Items {
			_, err := q.db.ExecContext(ctx, `
				INSERT INTO order_items (id, order_id, book_id, quantity, price)
				VALUES (?, ?, ?, ?, ?)`,
				item.ID, order.ID, item.BookID, item.Quantity, item.Price.String(),
			)
			if err != nil {
				return fmt.Errorf("insert order item %s: %w", item.ID, err)
			}
		}
		return nil
	})
}

// GetOrder retrieves an order by ID regardless of owner.
func (q *queries) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	return q.loadOrder(ctx, row)
}

// GetUserOrder retrieves an order only if userID owns it.
func (q *queries) GetUserOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ? AND user_id = ?`, orderID, userID)
	return q.loadOrder(ctx, row)
}

func (q *queries) loadOrder(ctx context.Context, row interface{ Scan(dest ...any) error }) (*domain.Order, error) {
	o, err := scanOrder(row)
	if err != nil {
		return nil, notFound(err, "order not found")
	}
	if err := q.loadOrderItems(ctx, []*domain.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// loadOrderItems fills Items for every order in one query.
func (q *queries) loadOrderItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Order, len(orders))
	args := make([]any, 0, len(orders))
	for _, o := range orders {
		o.Items = []*domain.OrderItem{}
		byID[o.ID] = o
		args = append(args, o.ID)
	}

	rows, err := q.db.QueryContext(ctx,
		`SELECT `+orderItemColumns+` FROM order_items oi WHERE oi.order_id IN (`+placeholders(len(args))+`) ORDER BY oi.rowid`,
		args...)
	if err != nil {
		return fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return err
		}
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return rows.Err()
}

// UpdateOrderStatus overwrites the status of an order.
func (q *queries) UpdateOrderStatus(ctx context.Context, orderID string, status domain.Status) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE orders SET status = ? WHERE id = ?`, string(status), orderID)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return requireAffected(res, "order not found")
}

// ListOrdersByUser returns a page of the user's orders with their items.
func (q *queries) ListOrdersByUser(ctx context.Context, userID string, req store.PageRequest) (*store.Page[*domain.Order], error) {
	req = req.Normalize()
	order, err := orderBy(req.Sort, orderSortColumns, "created_at ASC, id ASC", "id")
	if err != nil {
		return nil, err
	}

	var total int
	err = q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = ?`, userID).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	rows, err := q.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = ?`+order+` LIMIT ? OFFSET ?`,
		userID, req.Size, req.Offset())
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := q.loadOrderItems(ctx, orders); err != nil {
		return nil, err
	}
	return store.NewPage(orders, req, total), nil
}

// ListOrderItems pages through the items of an order owned by userID.
// A missing or foreign order is reported as not found, never as an empty page.
func (q *queries) ListOrderItems(ctx context.Context, userID, orderID string, req store.PageRequest) (*store.Page[*domain.OrderItem], error) {
	req = req.Normalize()
	order, err := orderBy(req.Sort, orderItemSortColumns, "oi.rowid ASC", "oi.id")
	if err != nil {
		return nil, err
	}

	var owned, total int
	err = q.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM orders WHERE id = ? AND user_id = ?),
			(SELECT COUNT(*) FROM order_items oi JOIN orders o ON o.id = oi.order_id
				WHERE oi.order_id = ? AND o.user_id = ?)`,
		orderID, userID, orderID, userID,
	).Scan(&owned, &total)
	if err != nil {
		return nil, fmt.Errorf("count order items: %w", err)
	}
	if owned == 0 {
		return nil, store.ErrNotFound.WithMessage("order not found")
	}

	rows, err := q.db.QueryContext(ctx, `
		SELECT `+orderItemColumns+`
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE oi.order_id = ? AND o.user_id = ?`+order+` LIMIT ? OFFSET ?`,
		orderID, userID, req.Size, req.Offset())
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []*domain.OrderItem
	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return store.NewPage(items, req, total), nil
}

// GetOrderItem resolves one item by (user, order, item) in a single join.
func (q *queries) GetOrderItem(ctx context.Context, userID, orderID, itemID string) (*domain.OrderItem, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+orderItemColumns+`
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE oi.id = ? AND oi.order_id = ? AND o.user_id = ?`,
		itemID, orderID, userID)

	item, err := scanOrderItem(row)
	if err != nil {
		return nil, notFound(err, errOrderItemNotFound)
	}
	return item, nil
}
