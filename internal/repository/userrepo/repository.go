package userrepo

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

// Códigos de erro do PostgreSQL traduzidos para erros de negócio.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// UserRepository persiste usuários no PostgreSQL.
type UserRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUserRepository cria uma nova instância do repositório de usuários.
func NewUserRepository(db *sql.DB, dbTimeout time.Duration, log logger.Logger) *UserRepository {
	return &UserRepository{DB: db, DBTimeout: dbTimeout, logger: log}
}

const userColumns = `id, name, email, cpf, password_hash, permissions, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.CPF, &u.PasswordHash, &u.Permissions, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Save insere um novo usuário, gerando ID e timestamps.
func (r *UserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	const query = `INSERT INTO users (` + userColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.DB.ExecContext(ctxTimeout, query,
		user.ID, user.Name, user.Email, user.CPF, user.PasswordHash,
		user.Permissions, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isPQCode(err, pgUniqueViolation) {
			return domain.User{}, apperror.NewConflictError("Email e/ou CPF já cadastrado.")
		}
		r.logger.Error("falha ao inserir usuário no DB", err)
		return domain.User{}, apperror.NewDBError("falha ao inserir usuário", err)
	}

	return user, nil
}

// FindByID busca um usuário pelo ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	user, err := scanUser(r.DB.QueryRowContext(ctxTimeout,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, apperror.NewNotFoundError("Usuário não encontrado.")
	}
	if err != nil {
		r.logger.Error("falha ao buscar usuário por id no DB", err)
		return domain.User{}, apperror.NewDBError("falha ao buscar usuário", err)
	}
	return user, nil
}

// FindByEmail busca um usuário pelo email (login).
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	user, err := scanUser(r.DB.QueryRowContext(ctxTimeout,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário com email '%s' não encontrado.", email))
	}
	if err != nil {
		r.logger.Error("falha ao buscar usuário por email no DB", err)
		return domain.User{}, apperror.NewDBError("falha ao buscar usuário por email", err)
	}
	return user, nil
}

// FindAll lista todos os usuários cadastrados.
func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		r.logger.Error("falha ao listar usuários no DB", err)
		return nil, apperror.NewDBError("falha ao listar usuários", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, apperror.NewDBError("falha ao ler usuário", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("falha ao percorrer usuários", err)
	}
	return users, nil
}

// Update aplica uma atualização parcial: apenas os campos não-nulos
// entram no SET. O campo Password já deve chegar com o hash aplicado
// pela camada de serviço.
func (r *UserRepository) Update(ctx context.Context, update domain.UserUpdate) error {
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
	if update.Email != nil {
		sets = append(sets, "email = "+arg(*update.Email))
	}
	if update.CPF != nil {
		sets = append(sets, "cpf = "+arg(*update.CPF))
	}
	if update.Password != nil {
		sets = append(sets, "password_hash = "+arg(*update.Password))
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = "+arg(time.Now()))

	query := "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE id = " + arg(update.ID)

	result, err := r.DB.ExecContext(ctxTimeout, query, args...)
	if err != nil {
		if isPQCode(err, pgUniqueViolation) {
			return apperror.NewConflictError("Email e/ou CPF já cadastrado.")
		}
		r.logger.Error("falha ao atualizar usuário no DB", err)
		return apperror.NewDBError("falha ao atualizar usuário", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return apperror.NewNotFoundError("Usuário não encontrado.")
	}
	return nil
}

// UpdatePermissions substitui o bitmask de permissões do usuário alvo.
func (r *UserRepository) UpdatePermissions(ctx context.Context, targetID string, permissions domain.Permission) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout,
		`UPDATE users SET permissions = $1, updated_at = $2 WHERE id = $3`,
		permissions, time.Now(), targetID)
	if err != nil {
		r.logger.Error("falha ao atualizar permissões no DB", err)
		return apperror.NewDBError("falha ao atualizar permissões", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return apperror.NewNotFoundError("Usuário não encontrado.")
	}
	return nil
}

// Delete remove o usuário. Um usuário com pedidos registrados não pode
// ser removido (restrição de chave estrangeira).
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if isPQCode(err, pgForeignKeyViolation) {
			return apperror.NewReferentialConflictError("Esse usuário tem um pedido!")
		}
		r.logger.Error("falha ao deletar usuário no DB", err)
		return apperror.NewDBError("falha ao deletar usuário", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return apperror.NewNotFoundError("Usuário não encontrado.")
	}
	return nil
}

// Exists confirma se o ID referencia um usuário existente. Usado pelo
// middleware de autenticação a cada requisição.
func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var exists bool
	err := r.DB.QueryRowContext(ctxTimeout,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, apperror.NewDBError("falha ao verificar usuário", err)
	}
	return exists, nil
}

// Permissions relê o bitmask de permissões direto do banco, para que
// revogações tenham efeito imediato sobre sessões já abertas.
func (r *UserRepository) Permissions(ctx context.Context, id string) (domain.Permission, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var permissions domain.Permission
	err := r.DB.QueryRowContext(ctxTimeout,
		`SELECT permissions FROM users WHERE id = $1`, id).Scan(&permissions)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperror.NewNotFoundError("Usuário não encontrado.")
	}
	if err != nil {
		return 0, apperror.NewDBError("falha ao buscar permissões", err)
	}
	return permissions, nil
}

// isPQCode verifica se o erro do driver corresponde ao código indicado.
func isPQCode(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}
