package stockrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/sync/singleflight"

	"govendas/internal/domain"
	apperror "govendas/internal/errors"
	"govendas/internal/pkg/cache"
	"govendas/internal/pkg/logger"
)

const pgForeignKeyViolation = "23503"

// Chaves de cache dos produtos.
const (
	stockCacheKey    = "stock:%s"
	stockAllCacheKey = "stock:all"
)

// StockRepository persiste produtos do estoque no PostgreSQL, com
// cache-aside no Redis para as leituras. Misses simultâneos da mesma
// chave são colapsados em uma única ida ao banco (singleflight).
type StockRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	CacheTTL  time.Duration
	DBTimeout time.Duration
	logger    logger.Logger
	group     singleflight.Group
}

// NewStockRepository cria uma nova instância do repositório de estoque.
func NewStockRepository(db *sql.DB, cacheClient cache.Client, cacheTTL, dbTimeout time.Duration, log logger.Logger) *StockRepository {
	return &StockRepository{
		DB:        db,
		Cache:     cacheClient,
		CacheTTL:  cacheTTL,
		DBTimeout: dbTimeout,
		logger:    log,
	}
}

const stockColumns = `id, name, description, quantity, created_at, updated_at`

func scanStock(row interface{ Scan(...interface{}) error }) (domain.Stock, error) {
	var s domain.Stock
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Quantity, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// Save insere um novo produto no estoque.
func (r *StockRepository) Save(ctx context.Context, stock domain.Stock) (domain.Stock, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	stock.ID = uuid.NewString()
	stock.CreatedAt = time.Now()
	stock.UpdatedAt = stock.CreatedAt

	const query = `INSERT INTO stocks (` + stockColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.DB.ExecContext(ctxTimeout, query,
		stock.ID, stock.Name, stock.Description, stock.Quantity,
		stock.CreatedAt, stock.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("falha ao inserir produto no DB", err)
		return domain.Stock{}, apperror.NewDBError("falha ao inserir produto", err)
	}

	r.invalidate(ctx, stock.ID)
	return stock, nil
}

// FindByID busca um produto pelo ID, com estratégia cache-aside.
func (r *StockRepository) FindByID(ctx context.Context, id string) (domain.Stock, error) {
	key := fmt.Sprintf(stockCacheKey, id)

	if cached, err := r.Cache.Get(ctx, key); err == nil {
		var stock domain.Stock
		if json.Unmarshal([]byte(cached), &stock) == nil {
			return stock, nil
		}
	} else if err != cache.ErrCacheMiss {
		r.logger.Warn("falha ao ler produto do cache", map[string]interface{}{"key": key, "error": err.Error()})
	}

	// singleflight colapsa misses concorrentes da mesma chave em uma
	// única consulta ao banco.
	result, err, _ := r.group.Do(key, func() (interface{}, error) {
		ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
		defer cancel()

		stock, err := scanStock(r.DB.QueryRowContext(ctxTimeout,
			`SELECT `+stockColumns+` FROM stocks WHERE id = $1`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Stock{}, apperror.NewNotFoundError("Produto não encontrado no estoque.")
		}
		if err != nil {
			r.logger.Error("falha ao buscar produto no DB", err)
			return domain.Stock{}, apperror.NewDBError("falha ao buscar produto", err)
		}

		if payload, marshalErr := json.Marshal(stock); marshalErr == nil {
			r.Cache.Set(ctx, key, payload, r.CacheTTL)
		}
		return stock, nil
	})
	if err != nil {
		return domain.Stock{}, err
	}
	return result.(domain.Stock), nil
}

// FindAll lista todos os produtos do estoque, com cache-aside.
func (r *StockRepository) FindAll(ctx context.Context) ([]domain.Stock, error) {
	if cached, err := r.Cache.Get(ctx, stockAllCacheKey); err == nil {
		var stocks []domain.Stock
		if json.Unmarshal([]byte(cached), &stocks) == nil {
			return stocks, nil
		}
	} else if err != cache.ErrCacheMiss {
		r.logger.Warn("falha ao ler listagem de estoque do cache", map[string]interface{}{"error": err.Error()})
	}

	result, err, _ := r.group.Do(stockAllCacheKey, func() (interface{}, error) {
		ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
		defer cancel()

		rows, err := r.DB.QueryContext(ctxTimeout, `SELECT `+stockColumns+` FROM stocks ORDER BY created_at`)
		if err != nil {
			r.logger.Error("falha ao listar estoque no DB", err)
			return nil, apperror.NewDBError("falha ao listar estoque", err)
		}
		defer rows.Close()

		stocks := []domain.Stock{}
		for rows.Next() {
			s, err := scanStock(rows)
			if err != nil {
				return nil, apperror.NewDBError("falha ao ler produto", err)
			}
			stocks = append(stocks, s)
		}
		if err := rows.Err(); err != nil {
			return nil, apperror.NewDBError("falha ao percorrer estoque", err)
		}

		if payload, marshalErr := json.Marshal(stocks); marshalErr == nil {
			r.Cache.Set(ctx, stockAllCacheKey, payload, r.CacheTTL)
		}
		return stocks, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Stock), nil
}

// Update aplica uma atualização parcial a um produto. A quantidade aqui
// é o ajuste administrativo direto do estoque, fora do fluxo de pedidos.
func (r *StockRepository) Update(ctx context.Context, update domain.StockUpdate) (domain.Stock, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

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
	if update.Quantity != nil {
		sets = append(sets, "quantity = "+arg(*update.Quantity))
	}
	if len(sets) == 0 {
		return r.FindByID(ctx, update.ID)
	}
	sets = append(sets, "updated_at = "+arg(time.Now()))

	query := "UPDATE stocks SET " + strings.Join(sets, ", ") +
		" WHERE id = " + arg(update.ID) + " RETURNING " + stockColumns

	stock, err := scanStock(r.DB.QueryRowContext(ctxTimeout, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Stock{}, apperror.NewNotFoundError("Produto não encontrado no estoque.")
	}
	if err != nil {
		r.logger.Error("falha ao atualizar produto no DB", err)
		return domain.Stock{}, apperror.NewDBError("falha ao atualizar produto", err)
	}

	r.invalidate(ctx, update.ID)
	return stock, nil
}

// Delete remove um produto do estoque. Produto referenciado por um
// pedido não pode ser removido.
func (r *StockRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM stocks WHERE id = $1`, id)
	if err != nil {
		if isPQCode(err, pgForeignKeyViolation) {
			return apperror.NewReferentialConflictError("Esse produto está em um pedido!")
		}
		r.logger.Error("falha ao deletar produto no DB", err)
		return apperror.NewDBError("falha ao deletar produto", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return apperror.NewNotFoundError("Produto não encontrado no estoque.")
	}

	r.invalidate(ctx, id)
	return nil
}

// InvalidateCache descarta as entradas de cache dos produtos indicados
// e da listagem. Chamado também pelo repositório de pedidos após
// transações que mexem nas quantidades.
func (r *StockRepository) InvalidateCache(ctx context.Context, stockIDs ...string) {
	keys := []string{stockAllCacheKey}
	for _, id := range stockIDs {
		keys = append(keys, fmt.Sprintf(stockCacheKey, id))
	}
	if err := r.Cache.Delete(ctx, keys...); err != nil {
		r.logger.Warn("falha ao invalidar cache de estoque", map[string]interface{}{"error": err.Error()})
	}
}

func (r *StockRepository) invalidate(ctx context.Context, id string) {
	r.InvalidateCache(ctx, id)
}

func isPQCode(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}
