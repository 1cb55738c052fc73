package clientrepo

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
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// ClientRepository persiste clientes e seus endereços no PostgreSQL.
// Cliente e endereço são sempre gravados e removidos na mesma transação.
type ClientRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewClientRepository cria uma nova instância do repositório de clientes.
func NewClientRepository(db *sql.DB, dbTimeout time.Duration, log logger.Logger) *ClientRepository {
	return &ClientRepository{DB: db, DBTimeout: dbTimeout, logger: log}
}

const clientSelect = `
	SELECT c.id, c.name, c.email, c.cpf, c.phone, c.created_at, c.updated_at,
	       a.id, a.street, a.number, a.complement, a.neighborhood, a.city, a.state, a.zipcode, a.country
	FROM clients c
	JOIN addresses a ON a.id = c.address_id`

func scanClient(row interface{ Scan(...interface{}) error }) (domain.Client, error) {
	var c domain.Client
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.CPF, &c.Phone, &c.CreatedAt, &c.UpdatedAt,
		&c.Address.ID, &c.Address.Street, &c.Address.Number, &c.Address.Complement,
		&c.Address.Neighborhood, &c.Address.City, &c.Address.State,
		&c.Address.Zipcode, &c.Address.Country,
	)
	return c, err
}

// Save insere o cliente e o endereço em uma única transação.
func (r *ClientRepository) Save(ctx context.Context, client domain.Client) (domain.Client, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Client{}, apperror.NewDBError("falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	client.ID = uuid.NewString()
	client.Address.ID = uuid.NewString()
	client.CreatedAt = time.Now()
	client.UpdatedAt = client.CreatedAt

	const addressSQL = `
		INSERT INTO addresses (id, street, number, complement, neighborhood, city, state, zipcode, country)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = tx.ExecContext(ctxTimeout, addressSQL,
		client.Address.ID, client.Address.Street, client.Address.Number,
		client.Address.Complement, client.Address.Neighborhood, client.Address.City,
		client.Address.State, client.Address.Zipcode, client.Address.Country,
	)
	if err != nil {
		r.logger.Error("falha ao inserir endereço no DB", err)
		return domain.Client{}, apperror.NewDBError("falha ao inserir endereço", err)
	}

	const clientSQL = `
		INSERT INTO clients (id, name, email, cpf, phone, address_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = tx.ExecContext(ctxTimeout, clientSQL,
		client.ID, client.Name, client.Email, client.CPF, client.Phone,
		client.Address.ID, client.CreatedAt, client.UpdatedAt,
	)
	if err != nil {
		if isPQCode(err, pgUniqueViolation) {
			return domain.Client{}, apperror.NewConflictError("Email e/ou CPF já cadastrado.")
		}
		r.logger.Error("falha ao inserir cliente no DB", err)
		return domain.Client{}, apperror.NewDBError("falha ao inserir cliente", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Client{}, apperror.NewDBError("falha ao commitar transação", err)
	}
	return client, nil
}

// FindByID busca um cliente (com endereço) pelo ID.
func (r *ClientRepository) FindByID(ctx context.Context, id string) (domain.Client, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	client, err := scanClient(r.DB.QueryRowContext(ctxTimeout, clientSelect+` WHERE c.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Client{}, apperror.NewNotFoundError("Cliente não encontrado.")
	}
	if err != nil {
		r.logger.Error("falha ao buscar cliente no DB", err)
		return domain.Client{}, apperror.NewDBError("falha ao buscar cliente", err)
	}
	return client, nil
}

// FindAll lista todos os clientes com seus endereços.
func (r *ClientRepository) FindAll(ctx context.Context) ([]domain.Client, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, clientSelect+` ORDER BY c.created_at`)
	if err != nil {
		r.logger.Error("falha ao listar clientes no DB", err)
		return nil, apperror.NewDBError("falha ao listar clientes", err)
	}
	defer rows.Close()

	clients := []domain.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, apperror.NewDBError("falha ao ler cliente", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("falha ao percorrer clientes", err)
	}
	return clients, nil
}

// Update aplica uma atualização parcial ao cliente e, quando presente,
// ao endereço, dentro de uma única transação.
func (r *ClientRepository) Update(ctx context.Context, update domain.ClientUpdate) (domain.Client, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Client{}, apperror.NewDBError("falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	var addressID string
	err = tx.QueryRowContext(ctxTimeout, `SELECT address_id FROM clients WHERE id = $1 FOR UPDATE`, update.ID).Scan(&addressID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Client{}, apperror.NewNotFoundError("Cliente não encontrado.")
	}
	if err != nil {
		return domain.Client{}, apperror.NewDBError("falha ao buscar cliente para atualização", err)
	}

	sets := []string{}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if update.Name != nil {
		sets = append(sets, "name = "+arg(*update.Name))
	}
	if update.Email != nil {
		sets = append(sets, "email = "+arg(*update.Email))
	}
	if update.CPF != nil {
		sets = append(sets, "cpf = "+arg(*update.CPF))
	}
	if update.Phone != nil {
		sets = append(sets, "phone = "+arg(*update.Phone))
	}
	if len(sets) > 0 {
		sets = append(sets, "updated_at = "+arg(time.Now()))
		query := "UPDATE clients SET " + strings.Join(sets, ", ") + " WHERE id = " + arg(update.ID)

		if _, err := tx.ExecContext(ctxTimeout, query, args...); err != nil {
			if isPQCode(err, pgUniqueViolation) {
				return domain.Client{}, apperror.NewConflictError("Email e/ou CPF já cadastrado.")
			}
			r.logger.Error("falha ao atualizar cliente no DB", err)
			return domain.Client{}, apperror.NewDBError("falha ao atualizar cliente", err)
		}
	}

	if update.Address != nil {
		if err := r.updateAddress(ctxTimeout, tx, addressID, *update.Address); err != nil {
			return domain.Client{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Client{}, apperror.NewDBError("falha ao commitar transação", err)
	}

	return r.FindByID(ctx, update.ID)
}

func (r *ClientRepository) updateAddress(ctx context.Context, tx *sql.Tx, addressID string, update domain.AddressUpdate) error {
	sets := []string{}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if update.Street != nil {
		sets = append(sets, "street = "+arg(*update.Street))
	}
	if update.Number != nil {
		sets = append(sets, "number = "+arg(*update.Number))
	}
	if update.Complement != nil {
		sets = append(sets, "complement = "+arg(*update.Complement))
	}
	if update.Neighborhood != nil {
		sets = append(sets, "neighborhood = "+arg(*update.Neighborhood))
	}
	if update.City != nil {
		sets = append(sets, "city = "+arg(*update.City))
	}
	if update.State != nil {
		sets = append(sets, "state = "+arg(*update.State))
	}
	if update.Zipcode != nil {
		sets = append(sets, "zipcode = "+arg(*update.Zipcode))
	}
	if update.Country != nil {
		sets = append(sets, "country = "+arg(*update.Country))
	}
	if len(sets) == 0 {
		return nil
	}

	query := "UPDATE addresses SET " + strings.Join(sets, ", ") + " WHERE id = " + arg(addressID)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("falha ao atualizar endereço no DB", err)
		return apperror.NewDBError("falha ao atualizar endereço", err)
	}
	return nil
}

// Delete remove o cliente e o endereço na mesma transação. Cliente
// inexistente é tratado como sucesso (exclusão idempotente); cliente
// referenciado por um pedido não pode ser removido.
func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return apperror.NewDBError("falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	var addressID string
	err = tx.QueryRowContext(ctxTimeout, `SELECT address_id FROM clients WHERE id = $1`, id).Scan(&addressID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return apperror.NewDBError("falha ao buscar cliente para exclusão", err)
	}

	// O cliente referencia o endereço, então sai primeiro.
	if _, err := tx.ExecContext(ctxTimeout, `DELETE FROM clients WHERE id = $1`, id); err != nil {
		if isPQCode(err, pgForeignKeyViolation) {
			return apperror.NewReferentialConflictError("Esse cliente tem um pedido!")
		}
		r.logger.Error("falha ao deletar cliente no DB", err)
		return apperror.NewDBError("falha ao deletar cliente", err)
	}

	if _, err := tx.ExecContext(ctxTimeout, `DELETE FROM addresses WHERE id = $1`, addressID); err != nil {
		r.logger.Error("falha ao deletar endereço no DB", err)
		return apperror.NewDBError("falha ao deletar endereço", err)
	}

	if err := tx.Commit(); err != nil {
		return apperror.NewDBError("falha ao commitar transação", err)
	}
	return nil
}

func isPQCode(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}
