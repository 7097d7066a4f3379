package errs

import (
	"errors"
	"fmt"
)

// ConfigurationError - некорректная или отсутствующая конфигурация
// (неизвестный тип документа, битый конфиг фасета и т.п.)
type ConfigurationError struct {
	Entity string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Entity, e.Reason)
}

func NewConfiguration(entity, reason string) error {
	return &ConfigurationError{Entity: entity, Reason: reason}
}

// EngineUnavailableError - поисковый движок недоступен (таймаут, обрыв соединения).
// Ошибка восстановимая: вызывающая сторона деградирует до частичного ответа.
type EngineUnavailableError struct {
	Op  string
	Err error
}

func (e *EngineUnavailableError) Error() string {
	return fmt.Sprintf("engine unavailable during %s: %v", e.Op, e.Err)
}

func (e *EngineUnavailableError) Unwrap() error {
	return e.Err
}

func NewEngineUnavailable(op string, err error) error {
	return &EngineUnavailableError{Op: op, Err: err}
}

// ValidationError - некорректный входящий запрос
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Reason)
}

func NewValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError - отсутствующий ресурс (конфиг фасета, документ)
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

func NewNotFound(resource, key string) error {
	return &NotFoundError{Resource: resource, Key: key}
}

// IsConfiguration проверяет, является ли ошибка ошибкой конфигурации
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsEngineUnavailable проверяет, является ли ошибка недоступностью движка
func IsEngineUnavailable(err error) bool {
	var ee *EngineUnavailableError
	return errors.As(err, &ee)
}

// IsValidation проверяет, является ли ошибка ошибкой валидации
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound проверяет, является ли ошибка отсутствием ресурса
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}
