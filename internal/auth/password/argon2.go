package password

import (
	"errors"

	"github.com/alexedwards/argon2id"

	"github.com/EgorLis/resume-builder/internal/domain"
)

var errNoParams = errors.New("argon2id params not set")

type Hasher struct {
	params *argon2id.Params
}

var _ domain.PasswordHasher = (*Hasher)(nil)

func NewDefault() *Hasher {
	return &Hasher{params: argon2id.DefaultParams}
}

// New: с явными параметрами (в тестах берём облегчённые).
func New(p *argon2id.Params) *Hasher { return &Hasher{params: p} }

// Hash возвращает строку формата $argon2id$v=19$m=..., пригодную для хранения в users.pass_hash.
func (h *Hasher) Hash(plain string) (string, error) {
	if h == nil || h.params == nil {
		return "", errNoParams
	}
	return argon2id.CreateHash(plain, h.params)
}

// Verify сравнивает пароль с сохранённым хэшем. Битый хэш: ошибка, не false.
func (h *Hasher) Verify(plain, encodedHash string) (bool, error) {
	return argon2id.ComparePasswordAndHash(plain, encodedHash)
}
