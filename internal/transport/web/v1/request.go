package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/EgorLis/resume-builder/internal/domain"
)

// MaxJSONBody: предел тела JSON-запроса.
const MaxJSONBody = 2 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// в сообщениях: имена полей из json-тегов
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError: ошибка валидации тела запроса с понятным текстом.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }
func (e *ValidationError) Unwrap() error { return domain.ErrBadParams }

// DecodeJSON читает тело (не больше MaxJSONBody) в dst и валидирует его по тегам validate.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &ValidationError{msg: "request body is empty"}
		}
		return &ValidationError{msg: "malformed json: " + err.Error()}
	}
	return Validate(dst)
}

func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return &ValidationError{msg: err.Error()}
	}
	parts := make([]string, 0, len(ves))
	for _, fe := range ves {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: failed %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s: failed %s", field, fe.Tag()))
		}
	}
	return &ValidationError{msg: strings.Join(parts, "; ")}
}

// UUIDParam: path-параметр chi в виде UUID.
func UUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, &ValidationError{msg: name + " must be a uuid"}
	}
	return id, nil
}

// IntQuery: целый query-параметр со значением по умолчанию.
func IntQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ValidationError{msg: name + " must be an integer"}
	}
	return n, nil
}

// CurrentUser: пользователь из контекста; mw.RequireAuth гарантирует его наличие.
func CurrentUser(r *http.Request) (domain.User, error) {
	u, ok := domain.UserFromCtx(r.Context())
	if !ok {
		return domain.User{}, domain.ErrUnauth
	}
	return u, nil
}
