package e

import (
	"errors"
	"fmt"
)

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Ошибки поиска сущностей
	ErrItemNotFound     = fmt.Errorf("item not found")
	ErrAccountNotFound  = fmt.Errorf("account not found")
	ErrHistoryNotFound  = fmt.Errorf("sync history not found")
	ErrCategoryNotFound = fmt.Errorf("category not found")

	// Ошибки конвертации сырых данных поставщика
	ErrItemIDRequired    = fmt.Errorf("item id is required")
	ErrItemTitleRequired = fmt.Errorf("item title is required")
	ErrNegativePrice     = fmt.Errorf("price must not be negative")
	ErrNoOrderLines      = fmt.Errorf("order has no line items")
	ErrInvalidQuantity   = fmt.Errorf("quantity must be positive")

	// Ошибки состояния
	ErrInvalidTransition = fmt.Errorf("invalid sync history transition")
	ErrAccountUnhealthy  = fmt.Errorf("account is not healthy")
	ErrOrderState        = fmt.Errorf("order state does not allow operation")
	ErrNoToken           = fmt.Errorf("no valid token for account")

	// Итоги запуска этапов конвейера
	ErrPartialFailure = fmt.Errorf("partial failure")
	ErrRunFailed      = fmt.Errorf("run failed")

	// Ошибки внешних сервисов
	ErrUnexpectedStatus = fmt.Errorf("unexpected response status")
	ErrGraphQL          = fmt.Errorf("graphql error")
	ErrMarketRejected   = fmt.Errorf("market rejected update")

	// 400 Bad Request
	ErrStatusBadRequest     = fmt.Errorf("bad request")
	ErrMissingFields        = fmt.Errorf("missing required fields")
	ErrUnsupportedMarket    = fmt.Errorf("unsupported market type")
	ErrUnknownUpdateKind    = fmt.Errorf("unknown market update kind")
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

// StageError описывает неуспешный итог этапа конвейера.
// Message возвращается вызывающей стороне как есть, Kind равен ErrPartialFailure или ErrRunFailed.
type StageError struct {
	Kind    error
	Message string
}

func (s *StageError) Error() string {
	return s.Message
}

func (s *StageError) Unwrap() error {
	return s.Kind
}

// Partial возвращает ошибку частичного успеха: часть единиц работы обработана.
func Partial(msg string) error {
	return &StageError{Kind: ErrPartialFailure, Message: msg}
}

// RunFailed возвращает ошибку запуска, в котором не обработано ни одной единицы работы.
func RunFailed(msg string) error {
	return &StageError{Kind: ErrRunFailed, Message: msg}
}

// IsPartial сообщает, является ли err частичным успехом этапа.
func IsPartial(err error) bool {
	return errors.Is(err, ErrPartialFailure)
}
