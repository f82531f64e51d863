package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
	codeCheckViolation      = "23514"
)

// IsForeignKeyViolation проверяет, является ли переданная ошибка нарушением внешнего ключа PostgreSQL (SQLSTATE 23503).
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, codeForeignKeyViolation)
}

// IsUniqueViolation reports SQLSTATE 23505.
func IsUniqueViolation(err error) bool {
	return hasCode(err, codeUniqueViolation)
}

// IsCheckViolation reports SQLSTATE 23514.
func IsCheckViolation(err error) bool {
	return hasCode(err, codeCheckViolation)
}

// Message returns the server's own message when err came from PostgreSQL,
// and err.Error() otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Message
	}
	return err.Error()
}

func hasCode(err error, code string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	// errors.As пытается извлечь конкретный тип *pgconn.PgError из всей цепочки ошибок.
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == code
	}

	return false
}
