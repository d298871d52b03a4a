package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidSearchURL - пользовательская поисковая ссылка не является
// разбираемым URL. Не восстанавливается, на верхнем уровне конвейера
// превращается в пустой результат.
var ErrInvalidSearchURL = errors.New("invalid search URL")

// UpstreamError - неуспешный HTTP статус от одного из эндпоинтов flatfox.
type UpstreamError struct {
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// TransportError - сетевая ошибка без HTTP статуса (таймаут, обрыв).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
