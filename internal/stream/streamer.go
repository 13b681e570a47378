package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

const DefaultChunkSize = 256 << 10

// Source — то, что стримеру нужно от хранилища.
type Source interface {
	Stat(ctx context.Context, id string) (int64, error)
	Open(ctx context.Context, id string, start, end int64) (io.ReadCloser, error)
}

type Streamer struct {
	src   Source
	chunk int
}

func New(src Source, chunkSize int) *Streamer {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Streamer{src: src, chunk: chunkSize}
}

// Plan — согласованный ответ: какой объект и какое окно байт отдаём.
type Plan struct {
	ID     string
	Window Window
}

func (p Plan) Status() int {
	if p.Window.Partial {
		return http.StatusPartialContent
	}
	return http.StatusOK
}

// Apply выставляет заголовки ответа. Content-Range только для 206.
func (p Plan) Apply(h http.Header, contentType string) {
	h.Set("Accept-Ranges", "bytes")
	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.FormatInt(p.Window.Length(), 10))
	if p.Window.Partial {
		h.Set("Content-Range", p.Window.ContentRange())
	}
}

// UnsatisfiableHeader — заголовки для 416.
func UnsatisfiableHeader(h http.Header, size int64) {
	h.Set("Accept-Ranges", "bytes")
	h.Set("Content-Range", "bytes */"+strconv.FormatInt(size, 10))
}

// Prepare: размер объекта -> разбор Range -> проверка окна.
func (s *Streamer) Prepare(ctx context.Context, id, rangeHeader string) (Plan, error) {
	size, err := s.src.Stat(ctx, id)
	if err != nil {
		return Plan{}, fmt.Errorf("stat %s: %w", id, err)
	}
	w, err := Negotiate(rangeHeader, size)
	if err != nil {
		return Plan{}, err
	}
	return Plan{ID: id, Window: w}, nil
}

// Copy пишет в dst ровно окно плана сегментами не больше chunk байт.
// Следующий сегмент читается только после того, как dst принял предыдущий.
func (s *Streamer) Copy(ctx context.Context, dst io.Writer, p Plan) (int64, error) {
	remaining := p.Window.Length()
	if remaining <= 0 {
		return 0, nil
	}
	rc, err := s.src.Open(ctx, p.ID, p.Window.Start, p.Window.End)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", p.ID, err)
	}
	defer rc.Close()

	buf := make([]byte, s.chunk)
	var written int64
	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n := int64(len(buf))
		if remaining < n {
			n = remaining
		}
		nr, rerr := io.ReadFull(rc, buf[:n])
		if nr > 0 {
			nw, werr := dst.Write(buf[:nr])
			written += int64(nw)
			if werr != nil {
				return written, fmt.Errorf("write segment: %w", werr)
			}
			if nw != nr {
				return written, io.ErrShortWrite
			}
			remaining -= int64(nr)
		}
		if rerr != nil {
			if remaining == 0 && (errors.Is(rerr, io.EOF) || errors.Is(rerr, io.ErrUnexpectedEOF)) {
				break
			}
			return written, fmt.Errorf("read segment at %d: %w", p.Window.Start+written, rerr)
		}
	}
	return written, nil
}
