package service

import "errors"

// Ошибки бизнес-логики. Обработчики различают их через errors.Is/As и
// переводят в сообщения пользователю; всё остальное считается
// инфраструктурной ошибкой.
var (
	// ErrNotFound: обращение/категория/вопрос больше не существует.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState: статус обращения разошёлся с ожидаемым,
	// его уже обработал кто-то другой.
	ErrInvalidState = errors.New("status no longer matches")

	// ErrConflict: нарушение ограничения. Занятый слот студента,
	// дубликат имени/хештега, категория с привязанными записями.
	ErrConflict = errors.New("conflict")
)

// ValidationError означает некорректный ввод пользователя. Диалог при
// этом сохраняется, чтобы пользователь мог повторить тот же шаг.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
