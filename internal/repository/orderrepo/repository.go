package orderrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"govendas/internal/domain"
	apperror "govendas/internal/errors"
	"govendas/internal/pkg/logger"
	"govendas/internal/repository/stockrepo"
)

const pgForeignKeyViolation = "23503"

// StockCache é o contrato de invalidação do cache de estoque. Toda
// transação de pedido que mexe em quantidades descarta as entradas dos
// produtos afetados após o commit.
type StockCache interface {
	InvalidateCache(ctx context.Context, stockIDs ...string)
}

// OrderRepository persiste pedidos e executa a reconciliação de
// estoque: criação, atualização e exclusão de pedidos rodam cada uma em
// uma única transação junto com as escritas do razão de estoque.
type OrderRepository struct {
	DB         *sql.DB
	DBTimeout  time.Duration
	ledger     *stockrepo.Ledger
	stockCache StockCache
	logger     logger.Logger
}

// NewOrderRepository cria uma nova instância do repositório de pedidos.
func NewOrderRepository(db *sql.DB, dbTimeout time.Duration, ledger *stockrepo.Ledger, stockCache StockCache, log logger.Logger) *OrderRepository {
	return &OrderRepository{
		DB:         db,
		DBTimeout:  dbTimeout,
		ledger:     ledger,
		stockCache: stockCache,
		logger:     log,
	}
}

const orderColumns = `id, name, description, status, client_id, user_id, price, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.Name, &o.Description, &o.Status, &o.ClientID, &o.UserID, &o.Price, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// Create insere o pedido, suas linhas e as reservas de estoque em uma
// única transação. Qualquer linha sem saldo aborta tudo: ou o pedido
// inteiro entra, ou nada muda.
func (r *OrderRepository) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Order{}, apperror.NewDBError("falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	// Reserva na ordem de entrada; a primeira linha sem saldo aborta.
	for _, item := range order.Items {
		if err := r.ledger.Reserve(ctxTimeout, tx, item.StockID, item.Quantity); err != nil {
			return domain.Order{}, err
		}
	}

	order.ID = uuid.NewString()
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt

	const orderSQL = `INSERT INTO orders (` + orderColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = tx.ExecContext(ctxTimeout, orderSQL,
		order.ID, order.Name, order.Description, order.Status,
		order.ClientID, order.UserID, order.Price, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isPQCode(err, pgForeignKeyViolation) {
			return domain.Order{}, apperror.NewValidationError("É necessário informar o cliente do pedido.")
		}
		r.logger.Error("falha ao inserir pedido no DB", err)
		return domain.Order{}, apperror.NewDBError("falha ao inserir pedido", err)
	}

	const itemSQL = `INSERT INTO order_items (order_id, stock_id, quantity) VALUES ($1, $2, $3)`
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		if _, err := tx.ExecContext(ctxTimeout, itemSQL, order.ID, order.Items[i].StockID, order.Items[i].Quantity); err != nil {
			r.logger.Error("falha ao inserir linha do pedido no DB", err)
			return domain.Order{}, apperror.NewDBError("falha ao inserir linha do pedido", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Order{}, apperror.NewDBError("falha ao commitar transação", err)
	}

	r.invalidateStocks(ctx, order.Items)
	return order, nil
}

// Update carrega o pedido com suas linhas, reconcilia as quantidades
// pedidas com as reservas atuais e aplica tudo (estoque, linhas e
// campos do pedido) em uma única transação.
func (r *OrderRepository) Update(ctx context.Context, update domain.OrderUpdate) (domain.Order, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Order{}, apperror.NewDBError("falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	order, err := scanOrder(tx.QueryRowContext(ctxTimeout,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, update.ID))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, apperror.NewNotFoundError("Pedido não encontrado.")
	}
	if err != nil {
		r.logger.Error("falha ao buscar pedido para atualização", err)
		return domain.Order{}, apperror.NewDBError("falha ao buscar pedido", err)
	}

	order.Items, err = r.itemsForOrder(ctxTimeout, tx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}

	var touched []domain.OrderItem
	if len(update.Items) > 0 {
		writes, err := PlanItemChanges(order.Items, update.Items)
		if err != nil {
			return domain.Order{}, err
		}

		const itemUpdateSQL = `UPDATE order_items SET quantity = $1 WHERE order_id = $2 AND stock_id = $3`
		for _, w := range writes {
			// Delta positivo reserva mais unidades (falha sem saldo);
			// negativo devolve a diferença ao estoque.
			if err := r.ledger.Adjust(ctxTimeout, tx, w.StockID, -w.Delta); err != nil {
				return domain.Order{}, err
			}
			if _, err := tx.ExecContext(ctxTimeout, itemUpdateSQL, w.NewQuantity, order.ID, w.StockID); err != nil {
				r.logger.Error("falha ao atualizar linha do pedido", err)
				return domain.Order{}, apperror.NewDBError("falha ao atualizar linha do pedido", err)
			}
			touched = append(touched, domain.OrderItem{StockID: w.StockID})
		}
	}

	if err := r.updateOrderFields(ctxTimeout, tx, update); err != nil {
		return domain.Order{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Order{}, apperror.NewDBError("falha ao commitar transação", err)
	}

	r.invalidateStocks(ctx, touched)
	return r.FindByID(ctx, update.ID)
}

// updateOrderFields aplica os campos parciais do pedido (o criador
// nunca muda). Sem campos presentes, apenas atualiza updated_at.
func (r *OrderRepository) updateOrderFields(ctx context.Context, tx *sql.Tx, update domain.OrderUpdate) error {
	sets := []string{}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if update.Name != nil {
		sets = append(sets, "name = "+arg(*update.Name))
	}
	if update.Description != nil {
		sets = append(sets, "description = "+arg(*update.Description))
	}
	if update.Status != nil {
		sets = append(sets, "status = "+arg(*update.Status))
	}
	if update.ClientID != nil {
		sets = append(sets, "client_id = "+arg(*update.ClientID))
	}
	if update.Price != nil {
		sets = append(sets, "price = "+arg(*update.Price))
	}
	sets = append(sets, "updated_at = "+arg(time.Now()))

	query := "UPDATE orders SET " + strings.Join(sets, ", ") + " WHERE id = " + arg(update.ID)

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isPQCode(err, pgForeignKeyViolation) {
			return apperror.NewValidationError("É necessário informar o cliente do pedido.")
		}
		r.logger.Error("falha ao atualizar campos do pedido", err)
		return apperror.NewDBError("falha ao atualizar pedido", err)
	}
	return nil
}

// Delete devolve as reservas de todas as linhas ao estoque e remove o
// pedido (as linhas saem em cascata), tudo em uma transação. Pedido
// inexistente é sucesso: a exclusão é idempotente.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return apperror.NewDBError("falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctxTimeout,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return apperror.NewDBError("falha ao buscar pedido para exclusão", err)
	}
	if !exists {
		return nil
	}

	items, err := r.itemsForOrder(ctxTimeout, tx, id)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := r.ledger.Release(ctxTimeout, tx, item.StockID, item.Quantity); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctxTimeout, `DELETE FROM orders WHERE id = $1`, id); err != nil {
		r.logger.Error("falha ao deletar pedido no DB", err)
		return apperror.NewDBError("falha ao deletar pedido", err)
	}

	if err := tx.Commit(); err != nil {
		return apperror.NewDBError("falha ao commitar transação", err)
	}

	r.invalidateStocks(ctx, items)
	return nil
}

// FindByID busca um pedido com suas linhas.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (domain.Order, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	order, err := scanOrder(r.DB.QueryRowContext(ctxTimeout,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, apperror.NewNotFoundError("Pedido não encontrado.")
	}
	if err != nil {
		r.logger.Error("falha ao buscar pedido no DB", err)
		return domain.Order{}, apperror.NewDBError("falha ao buscar pedido", err)
	}

	rows, err := r.DB.QueryContext(ctxTimeout,
		`SELECT order_id, stock_id, quantity FROM order_items WHERE order_id = $1`, id)
	if err != nil {
		return domain.Order{}, apperror.NewDBError("falha ao buscar linhas do pedido", err)
	}
	defer rows.Close()

	order.Items = []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.OrderID, &item.StockID, &item.Quantity); err != nil {
			return domain.Order{}, apperror.NewDBError("falha ao ler linha do pedido", err)
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return domain.Order{}, apperror.NewDBError("falha ao percorrer linhas do pedido", err)
	}

	return order, nil
}

// FindAll lista todos os pedidos com os nomes do cliente e do criador
// resolvidos e suas linhas agrupadas.
func (r *OrderRepository) FindAll(ctx context.Context) ([]domain.OrderSummary, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
		SELECT o.id, o.name, o.description, o.status, o.client_id, o.user_id, o.price, o.created_at, o.updated_at,
		       c.name, u.name
		FROM orders o
		JOIN clients c ON c.id = o.client_id
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at`

	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("falha ao listar pedidos no DB", err)
		return nil, apperror.NewDBError("falha ao listar pedidos", err)
	}
	defer rows.Close()

	summaries := []domain.OrderSummary{}
	index := map[string]int{}
	for rows.Next() {
		var s domain.OrderSummary
		err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Status, &s.ClientID, &s.UserID,
			&s.Price, &s.CreatedAt, &s.UpdatedAt, &s.ClientName, &s.UserName)
		if err != nil {
			return nil, apperror.NewDBError("falha ao ler pedido", err)
		}
		s.Items = []domain.OrderItem{}
		index[s.ID] = len(summaries)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("falha ao percorrer pedidos", err)
	}

	itemRows, err := r.DB.QueryContext(ctxTimeout, `SELECT order_id, stock_id, quantity FROM order_items`)
	if err != nil {
		return nil, apperror.NewDBError("falha ao buscar linhas dos pedidos", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item domain.OrderItem
		if err := itemRows.Scan(&item.OrderID, &item.StockID, &item.Quantity); err != nil {
			return nil, apperror.NewDBError("falha ao ler linha de pedido", err)
		}
		if i, ok := index[item.OrderID]; ok {
			summaries[i].Items = append(summaries[i].Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, apperror.NewDBError("falha ao percorrer linhas dos pedidos", err)
	}

	return summaries, nil
}

func (r *OrderRepository) itemsForOrder(ctx context.Context, tx *sql.Tx, orderID string) ([]domain.OrderItem, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT order_id, stock_id, quantity FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return nil, apperror.NewDBError("falha ao buscar linhas do pedido", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.OrderID, &item.StockID, &item.Quantity); err != nil {
			return nil, apperror.NewDBError("falha ao ler linha do pedido", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("falha ao percorrer linhas do pedido", err)
	}
	return items, nil
}

func (r *OrderRepository) invalidateStocks(ctx context.Context, items []domain.OrderItem) {
	if len(items) == 0 {
		return
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.StockID)
	}
	r.stockCache.InvalidateCache(ctx, ids...)
}

func isPQCode(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}
