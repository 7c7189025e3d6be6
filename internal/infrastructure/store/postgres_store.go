package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/example/dscommerce/internal/auth"
	"github.com/example/dscommerce/internal/domain/category"
	"github.com/example/dscommerce/internal/domain/order"
	"github.com/example/dscommerce/internal/domain/product"
	"github.com/example/dscommerce/internal/domain/user"
)

//go:embed sql/schema.sql
var schemaSQL string

// foreign_key_violation
const pqForeignKeyViolation = "23503"

var sortColumns = map[string]string{
	SortByID:    "id",
	SortByName:  "name",
	SortByPrice: "price",
}

// PostgresStore implements Store on PostgreSQL through lib/pq.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// ConnectPostgres opens and pings a PostgreSQL connection pool
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// Migrate creates the tables if they do not exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Seed inserts fx, skipping rows that already exist, and moves the id
// sequences past the seeded ids.
func (s *PostgresStore) Seed(ctx context.Context, fx *Fixtures) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, c := range fx.Categories {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO tb_category (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
				c.ID, c.Name); err != nil {
				return fmt.Errorf("seed category %d: %w", c.ID, err)
			}
		}
		for _, p := range fx.Products {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO tb_product (id, name, description, price, img_url) VALUES ($1, $2, $3, $4, $5)
				 ON CONFLICT (id) DO NOTHING`,
				p.ID, p.Name, p.Description, p.Price, p.ImgURL); err != nil {
				return fmt.Errorf("seed product %d: %w", p.ID, err)
			}
			for _, c := range p.Categories {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO tb_product_category (product_id, category_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
					p.ID, c.ID); err != nil {
					return fmt.Errorf("seed product %d category: %w", p.ID, err)
				}
			}
		}
		for _, u := range fx.Users {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO tb_user (id, name, email, password, roles) VALUES ($1, $2, $3, $4, $5)
				 ON CONFLICT (id) DO NOTHING`,
				u.ID, u.Name, u.Email, u.PasswordHash, int16(u.Roles)); err != nil {
				return fmt.Errorf("seed user %d: %w", u.ID, err)
			}
		}
		for _, o := range fx.Orders {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO tb_order (id, moment, status, client_id) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
				o.ID, o.Moment, string(o.Status), o.Client.ID); err != nil {
				return fmt.Errorf("seed order %d: %w", o.ID, err)
			}
			if o.Payment != nil {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO tb_payment (order_id, moment) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
					o.ID, o.Payment.Moment); err != nil {
					return fmt.Errorf("seed payment %d: %w", o.ID, err)
				}
			}
			for _, it := range o.Items {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO tb_order_item (order_id, product_id, quantity, price) VALUES ($1, $2, $3, $4)
					 ON CONFLICT DO NOTHING`,
					o.ID, it.ProductID, it.Quantity, it.Price); err != nil {
					return fmt.Errorf("seed order %d item: %w", o.ID, err)
				}
			}
		}
		for _, table := range []string{"tb_category", "tb_product", "tb_user", "tb_order"} {
			q := fmt.Sprintf(`SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 1))`, table, table)
			if _, err := tx.ExecContext(ctx, q); err != nil {
				return fmt.Errorf("reset %s sequence: %w", table, err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) GetProduct(ctx context.Context, id int64) (*product.Product, bool, error) {
	var p product.Product
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, price, img_url FROM tb_product WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImgURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get product %d: %w", id, err)
	}

	cats, err := s.categoriesOf(ctx, s.db, []int64{id})
	if err != nil {
		return nil, false, err
	}
	p.Categories = cats[id]
	return &p, true, nil
}

func (s *PostgresStore) ListProducts(ctx context.Context, f ProductFilter) (*ProductPage, error) {
	const where = `WHERE POSITION(UPPER($1) IN UPPER(name)) > 0`

	page := &ProductPage{Items: []product.Product{}}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tb_product `+where, f.Name).Scan(&page.Total); err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	if page.Total == 0 || f.Size <= 0 {
		return page, nil
	}

	column, ok := sortColumns[f.Sort]
	if !ok {
		column = "id"
	}
	direction := "ASC"
	if f.Desc {
		direction = "DESC"
	}
	q := fmt.Sprintf(`SELECT id, name, description, price, img_url FROM tb_product %s ORDER BY %s %s, id %s LIMIT $2 OFFSET $3`,
		where, column, direction, direction)

	rows, err := s.db.QueryContext(ctx, q, f.Name, f.Size, f.Page*f.Size)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImgURL); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		page.Items = append(page.Items, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	cats, err := s.categoriesOf(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range page.Items {
		page.Items[i].Categories = cats[page.Items[i].ID]
	}
	return page, nil
}

func (s *PostgresStore) CreateProduct(ctx context.Context, in product.Input) (*product.Product, error) {
	p := &product.Product{Name: in.Name, Description: in.Description, Price: in.Price, ImgURL: in.ImgURL}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		cats, err := resolveCategories(ctx, tx, in.CategoryIDs())
		if err != nil {
			return err
		}
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO tb_product (name, description, price, img_url) VALUES ($1, $2, $3, $4) RETURNING id`,
			in.Name, in.Description, in.Price, in.ImgURL).Scan(&p.ID); err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
		p.Categories = cats
		return linkCategories(ctx, tx, p.ID, cats)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostgresStore) UpdateProduct(ctx context.Context, id int64, in product.Input) (*product.Product, bool, error) {
	p := &product.Product{ID: id, Name: in.Name, Description: in.Description, Price: in.Price, ImgURL: in.ImgURL}
	found := true
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE tb_product SET name = $2, description = $3, price = $4, img_url = $5 WHERE id = $1`,
			id, in.Name, in.Description, in.Price, in.ImgURL)
		if err != nil {
			return fmt.Errorf("update product %d: %w", id, err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			found = false
			return nil
		}

		cats, err := resolveCategories(ctx, tx, in.CategoryIDs())
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM tb_product_category WHERE product_id = $1`, id); err != nil {
			return fmt.Errorf("unlink categories of %d: %w", id, err)
		}
		p.Categories = cats
		return linkCategories(ctx, tx, id, cats)
	})
	if err != nil {
		return nil, found, err
	}
	if !found {
		return nil, false, nil
	}
	return p, true, nil
}

// errReferenced aborts the delete transaction; the tx is rolled back and
// the caller sees DeleteReferenced.
var errReferenced = errors.New("product is referenced by an order item")

// TryDeleteProduct locks the product row, so an order item cannot be added
// between the reference check and the delete. A foreign key violation from
// the delete itself is still reported as DeleteReferenced.
func (s *PostgresStore) TryDeleteProduct(ctx context.Context, id int64) (DeleteResult, error) {
	result := Deleted
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var locked int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM tb_product WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if errors.Is(err, sql.ErrNoRows) {
			result = DeleteNotFound
			return nil
		}
		if err != nil {
			return fmt.Errorf("lock product %d: %w", id, err)
		}

		var referenced bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM tb_order_item WHERE product_id = $1)`, id).Scan(&referenced); err != nil {
			return fmt.Errorf("check references of %d: %w", id, err)
		}
		if referenced {
			return errReferenced
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM tb_product WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete product %d: %w", id, err)
		}
		return nil
	})
	return deleteResult(result, err)
}

// deleteResult folds the transaction error of TryDeleteProduct into a
// DeleteResult. Both the explicit reference check and a foreign key
// violation raised by the DELETE end as DeleteReferenced.
func deleteResult(result DeleteResult, err error) (DeleteResult, error) {
	if err == nil {
		return result, nil
	}
	var pqErr *pq.Error
	if errors.Is(err, errReferenced) || (errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation) {
		return DeleteReferenced, nil
	}
	return 0, err
}

func (s *PostgresStore) GetOrder(ctx context.Context, id int64) (*order.Order, bool, error) {
	var (
		o         order.Order
		status    string
		paymentAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT o.id, o.moment, o.status, u.id, u.name, p.moment
		FROM tb_order o
		JOIN tb_user u ON u.id = o.client_id
		LEFT JOIN tb_payment p ON p.order_id = o.id
		WHERE o.id = $1`, id).
		Scan(&o.ID, &o.Moment, &status, &o.Client.ID, &o.Client.Name, &paymentAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get order %d: %w", id, err)
	}
	o.Status = order.Status(status)
	if paymentAt.Valid {
		o.Payment = &order.Payment{ID: o.ID, Moment: paymentAt.Time}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT i.product_id, p.name, p.img_url, i.quantity, i.price
		FROM tb_order_item i
		JOIN tb_product p ON p.id = i.product_id
		WHERE i.order_id = $1
		ORDER BY i.product_id`, id)
	if err != nil {
		return nil, false, fmt.Errorf("get order %d items: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var it order.Item
		if err := rows.Scan(&it.ProductID, &it.Name, &it.ImgURL, &it.Quantity, &it.Price); err != nil {
			return nil, false, fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return &o, true, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	var (
		u     user.User
		roles int16
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password, roles FROM tb_user WHERE LOWER(email) = LOWER($1)`, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &roles)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get user: %w", err)
	}
	u.Roles = auth.Roles(roles)
	return &u, true, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) categoriesOf(ctx context.Context, q querier, productIDs []int64) (map[int64][]category.Category, error) {
	out := make(map[int64][]category.Category, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	rows, err := q.QueryContext(ctx, `
		SELECT pc.product_id, c.id, c.name
		FROM tb_product_category pc
		JOIN tb_category c ON c.id = pc.category_id
		WHERE pc.product_id = ANY($1)
		ORDER BY pc.product_id, c.id`, pq.Array(productIDs))
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			productID int64
			c         category.Category
		)
		if err := rows.Scan(&productID, &c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out[productID] = append(out[productID], c)
	}
	return out, rows.Err()
}

// resolveCategories loads the referenced categories in payload order,
// dropping duplicates. Any missing id fails with ErrUnknownCategory.
func resolveCategories(ctx context.Context, tx *sql.Tx, ids []int64) ([]category.Category, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, name FROM tb_category WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("resolve categories: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]category.Category, len(ids))
	for rows.Next() {
		var c category.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]category.Category, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		c, ok := byID[id]
		if !ok {
			return nil, ErrUnknownCategory
		}
		out = append(out, c)
	}
	return out, nil
}

func linkCategories(ctx context.Context, tx *sql.Tx, productID int64, cats []category.Category) error {
	for _, c := range cats {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tb_product_category (product_id, category_id) VALUES ($1, $2)`, productID, c.ID); err != nil {
			return fmt.Errorf("link category %d to %d: %w", c.ID, productID, err)
		}
	}
	return nil
}

func (s *PostgresStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
