package stockrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	apperror "govendas/internal/errors"
	"govendas/internal/pkg/logger"
)

// Ledger é o razão do estoque: toda reserva, devolução e ajuste de
// quantidade causado por pedidos passa por aqui. As operações rodam na
// transação do chamador e travam a linha do produto (FOR UPDATE) antes
// de qualquer escrita, de modo que duas requisições concorrentes não
// consigam aprovar a mesma quantidade duas vezes.
type Ledger struct {
	logger logger.Logger
}

// NewLedger cria o razão do estoque.
func NewLedger(log logger.Logger) *Ledger {
	return &Ledger{logger: log}
}

// PlanAdjustment aplica um delta com sinal ao saldo atual do produto e
// devolve a nova quantidade. O saldo nunca fica negativo: uma reserva
// maior que o saldo livre falha com estoque insuficiente e nada deve
// ser escrito.
func PlanAdjustment(quantity, delta int) (int, error) {
	newQuantity := quantity + delta
	if newQuantity < 0 {
		return 0, apperror.NewInsufficientStockError("Não há quantidades suficientes do produto no estoque. Verifique o estoque e tente novamente.")
	}
	return newQuantity, nil
}

// Reserve retira amount unidades do produto dentro da transação.
// Falha com estoque insuficiente quando amount excede o saldo livre.
func (l *Ledger) Reserve(ctx context.Context, tx *sql.Tx, stockID string, amount int) error {
	return l.Adjust(ctx, tx, stockID, -amount)
}

// Release devolve amount unidades ao produto dentro da transação.
// Devolver estoque é sempre seguro; não há limite superior.
func (l *Ledger) Release(ctx context.Context, tx *sql.Tx, stockID string, amount int) error {
	return l.Adjust(ctx, tx, stockID, amount)
}

// Adjust aplica um delta com sinal à quantidade do produto: delta
// negativo reserva (com checagem de saldo), delta positivo devolve,
// delta zero não toca a linha.
func (l *Ledger) Adjust(ctx context.Context, tx *sql.Tx, stockID string, delta int) error {
	if delta == 0 {
		return nil
	}

	// A leitura trava a linha até o commit da transação do chamador;
	// a checagem de saldo nunca enxerga uma quantidade desatualizada.
	var quantity int
	err := tx.QueryRowContext(ctx,
		`SELECT quantity FROM stocks WHERE id = $1 FOR UPDATE`, stockID).Scan(&quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NewNotFoundError("Houve um problema com o pedido. Por favor, entre em contato com o administrador do sistema.")
	}
	if err != nil {
		l.logger.Error("falha ao ler quantidade do produto para ajuste", err)
		return apperror.NewDBError("falha ao ler quantidade do produto", err)
	}

	newQuantity, err := PlanAdjustment(quantity, delta)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE stocks SET quantity = $1, updated_at = $2 WHERE id = $3`,
		newQuantity, time.Now(), stockID)
	if err != nil {
		l.logger.Error("falha ao ajustar quantidade do produto", err)
		return apperror.NewDBError("falha ao ajustar quantidade do produto", err)
	}

	return nil
}
