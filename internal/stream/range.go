package stream

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/EgorLis/my-videos/internal/domain"
)

// Spec — разобранный заголовок Range (одиночный диапазон).
// HasStart == false означает суффикс "bytes=-N": последние End байт.
type Spec struct {
	Start    int64
	End      int64
	HasStart bool
	HasEnd   bool
}

// Window — включающий диапазон [Start, End] объекта размером Total.
type Window struct {
	Start   int64
	End     int64
	Total   int64
	Partial bool // был заголовок Range -> 206
}

func (w Window) Length() int64 { return w.End - w.Start + 1 }

func (w Window) ContentRange() string {
	return fmt.Sprintf("bytes %d-%d/%d", w.Start, w.End, w.Total)
}

// ParseRange разбирает "bytes=A-B", "bytes=A-" и "bytes=-N".
// Другие единицы и списки диапазонов считаются некорректными.
func ParseRange(header string) (Spec, error) {
	h := strings.TrimSpace(header)
	if len(h) < 6 || !strings.EqualFold(h[:6], "bytes=") {
		return Spec{}, fmt.Errorf("%w: unit must be bytes: %q", domain.ErrMalformedRange, header)
	}
	spec := strings.TrimSpace(h[6:])
	if strings.Contains(spec, ",") {
		return Spec{}, fmt.Errorf("%w: multiple ranges: %q", domain.ErrMalformedRange, header)
	}
	a, b, ok := strings.Cut(spec, "-")
	if !ok {
		return Spec{}, fmt.Errorf("%w: missing '-': %q", domain.ErrMalformedRange, header)
	}
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)

	var out Spec
	switch {
	case a == "" && b == "":
		return Spec{}, fmt.Errorf("%w: empty range: %q", domain.ErrMalformedRange, header)

	// bytes=-N  (последние N байт)
	case a == "":
		n, err := parseOffset(b)
		if err != nil {
			return Spec{}, fmt.Errorf("%w: suffix length: %v", domain.ErrMalformedRange, err)
		}
		out.End, out.HasEnd = n, true

	// bytes=A-  или  bytes=A-B
	default:
		start, err := parseOffset(a)
		if err != nil {
			return Spec{}, fmt.Errorf("%w: start: %v", domain.ErrMalformedRange, err)
		}
		out.Start, out.HasStart = start, true
		if b != "" {
			end, err := parseOffset(b)
			if err != nil {
				return Spec{}, fmt.Errorf("%w: end: %v", domain.ErrMalformedRange, err)
			}
			out.End, out.HasEnd = end, true
		}
	}
	return out, nil
}

// Negotiate вычисляет окно отдачи для объекта размером size.
// Пустой header -> весь объект (200). end >= size мягко обрезается до size-1.
func Negotiate(header string, size int64) (Window, error) {
	if strings.TrimSpace(header) == "" {
		return Window{Start: 0, End: size - 1, Total: size}, nil
	}
	spec, err := ParseRange(header)
	if err != nil {
		return Window{}, err
	}
	unsatisfiable := &domain.UnsatisfiableRangeError{Size: size}
	if size == 0 {
		return Window{}, unsatisfiable
	}

	var start, end int64
	if !spec.HasStart {
		n := spec.End
		if n == 0 {
			return Window{}, unsatisfiable
		}
		if n > size {
			n = size
		}
		start, end = size-n, size-1
	} else {
		start = spec.Start
		if start >= size {
			return Window{}, unsatisfiable
		}
		end = size - 1
		if spec.HasEnd && spec.End < end {
			end = spec.End
		}
		if start > end {
			return Window{}, unsatisfiable
		}
	}
	return Window{Start: start, End: end, Total: size, Partial: true}, nil
}

// parseOffset принимает только десятичные цифры; переполнение трактуется как "очень много".
func parseOffset(s string) (int64, error) {
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("not a number: %q", s)
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return math.MaxInt64, nil
		}
		return 0, err
	}
	return n, nil
}
