package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	mw "acesoftware.in/marketing-web/internal/middleware"
	"acesoftware.in/marketing-web/internal/observability"
	"acesoftware.in/marketing-web/internal/product"
	"acesoftware.in/marketing-web/internal/rotator"
)

// GalleryStreamHandler streams the rotating gallery slide as Server-Sent
// Events. Every event carries the rendered frag_gallery_slide markup so the
// htmx sse extension can swap it in directly. A gallery with at most one
// image yields a single event and the stream ends.
func (a *app) GalleryStreamHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := productID(r)
	lang := mw.Lang(r)
	logger := observability.FromContext(ctx).With(zap.String("product_id", id))

	flusher, ok := w.(http.Flusher)
	if !ok {
		mw.WriteError(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	p, err := a.products.Fetch(ctx, id)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, product.ErrNotFound) {
			status = http.StatusNotFound
		}
		mw.WriteError(w, r, status, product.UserMessage(err))
		return
	}
	slides := buildGallerySlides(a.bundle, lang, p)

	// The server write timeout would cut the stream; lift it for this response.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		logger.Debug("clear write deadline", zap.Error(err))
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if len(slides) == 0 {
		flusher.Flush()
		return
	}
	if err := a.writeSlide(w, slides[0]); err != nil {
		logger.Debug("write slide", zap.Error(err))
		return
	}
	flusher.Flush()
	if len(slides) == 1 {
		return
	}

	// Latest index wins when the writer falls behind the ticker.
	advanced := make(chan int, 1)
	rot := rotator.New(a.cfg.API.GalleryInterval, rotator.WithOnAdvance(func(i int) {
		for {
			select {
			case advanced <- i:
				return
			default:
			}
			select {
			case <-advanced:
			default:
			}
		}
	}))
	defer rot.Close()
	rot.SetLength(len(slides))

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.streams:
			return
		case i := <-advanced:
			if err := a.writeSlide(w, slides[i]); err != nil {
				logger.Debug("write slide", zap.Error(err))
				return
			}
			flusher.Flush()
		}
	}
}

// writeSlide renders one slide and frames it as an SSE "slide" event. Each
// line of markup becomes its own data line.
func (a *app) writeSlide(w http.ResponseWriter, slide GallerySlide) error {
	body, err := a.tmpl.execute("frag_gallery_slide", slide)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "event: slide\nid: %s\n", slideEventID(slide))
	sc := bufio.NewScanner(bytes.NewReader(bytes.TrimSpace(body)))
	for sc.Scan() {
		buf.WriteString("data: ")
		buf.Write(bytes.TrimRight(sc.Bytes(), "\r"))
		buf.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}
