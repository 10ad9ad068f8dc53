package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"
)

// KeyVersion входит в хэш аргументов: смена формата ключей инвалидирует старые записи.
const KeyVersion = "v1"

// Op описывает кешируемую операцию.
type Op struct {
	Category Category
	Name     string
	TTL      time.Duration // 0: TTL категории
}

// Key: "{category}:{name}:{suffix}".
func (o Op) Key(suffix string) string {
	cat := o.Category
	if cat == "" {
		cat = Generic
	}
	return string(cat) + ":" + o.Name + ":" + suffix
}

// Load: cache-aside: при попадании fn не вызывается, при промахе результат
// кладётся в кеш. Ошибки fn не кешируются. Одновременные промахи по одному ключу
// схлопываются в один вызов fn.
func Load[R any](ctx context.Context, s *Store, cat Category, key string, ttl time.Duration, fn func(context.Context) (R, error)) (R, error) {
	if s == nil {
		return fn(ctx)
	}

	var out R
	if s.Get(ctx, key, &out) {
		s.metrics.CacheHit(string(cat))
		return out, nil
	}
	s.metrics.CacheMiss(string(cat))

	if ttl <= 0 {
		ttl = s.TTL(cat)
	}
	ch := s.sf.DoChan(key, func() (any, error) {
		fctx, cancel := detach(ctx)
		defer cancel()
		r, err := fn(fctx)
		if err != nil {
			return nil, err
		}
		s.Set(fctx, key, r, ttl)
		return r, nil
	})
	select {
	case <-ctx.Done():
		return out, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return out, res.Err
		}
		out, _ = res.Val.(R)
		return out, nil
	}
}

// detach: общий вызов не отменяется вместе с тем, кто его начал, но держит его дедлайн.
// Остальные ждущие уходят по своему ctx.Done().
func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	d := context.WithoutCancel(ctx)
	if dl, ok := ctx.Deadline(); ok {
		return context.WithDeadline(d, dl)
	}
	return context.WithCancel(d)
}

// Wrap возвращает функцию с той же сигнатурой, что и fn, кеширующую результат
// по ключу op.Key(key(arg)).
func Wrap[A, R any](s *Store, op Op, key func(A) string, fn func(context.Context, A) (R, error)) func(context.Context, A) (R, error) {
	return func(ctx context.Context, arg A) (R, error) {
		return Load(ctx, s, op.Category, op.Key(key(arg)), op.TTL, func(ctx context.Context) (R, error) {
			return fn(ctx, arg)
		})
	}
}

// Arg: именованный аргумент для HashArgs.
type Arg struct {
	Name  string
	Value any
}

// HashArgs строит ключ из позиционных и именованных аргументов.
// Именованные сортируются по имени, так что порядок передачи не важен.
func HashArgs(positional []any, named ...Arg) string {
	sorted := make([]Arg, len(named))
	copy(sorted, named)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	h := sha256.New()
	h.Write([]byte(KeyVersion))
	for _, p := range positional {
		h.Write([]byte{0x1e})
		h.Write(Encode(p))
	}
	for _, a := range sorted {
		h.Write([]byte{0x1f})
		h.Write([]byte(a.Name))
		h.Write([]byte{'='})
		h.Write(Encode(a.Value))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// HashKwargs: то же для map (порядок обхода map в Go случаен, сортировка обязательна).
func HashKwargs(kwargs map[string]any) string {
	named := make([]Arg, 0, len(kwargs))
	for k, v := range kwargs {
		named = append(named, Arg{Name: k, Value: v})
	}
	return HashArgs(nil, named...)
}
