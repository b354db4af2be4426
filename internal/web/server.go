// Package web gin server
package web

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/wordjobs/internal/search"
	"github.com/Laisky/wordjobs/library/log"
)

const (
	htmlContentType = "text/html; charset=utf-8"
	searchPrefix    = "/search"
	notFoundBody    = "<h1>404 Not Found</h1>"
)

// Searcher streams the result page of one search into w.
type Searcher interface {
	Serve(ctx context.Context, w io.Writer, req search.Request) error
}

type engineOptions struct {
	logger  logSDK.Logger
	metrics bool
}

// EngineOption customises NewEngine.
type EngineOption func(*engineOptions)

// WithLogger sets the logger handed to the request logging middleware.
func WithLogger(logger logSDK.Logger) EngineOption {
	return func(o *engineOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics exposes prometheus metrics on the engine.
func WithMetrics() EngineOption {
	return func(o *engineOptions) {
		o.metrics = true
	}
}

// NewEngine builds the http surface: the landing page on "/", searches on
// every path starting with "/search", and a fixed 404 for anything else.
func NewEngine(searcher Searcher, landingPage []byte, opts ...EngineOption) (*gin.Engine, error) {
	if searcher == nil {
		return nil, errors.New("searcher cannot be nil")
	}

	opt := &engineOptions{logger: log.Logger}
	for _, f := range opts {
		f(opt)
	}

	server := gin.New()
	// handlers pass the gin context to upstream calls, it must follow the request's cancellation
	server.ContextWithFallback = true
	server.Use(
		gin.Recovery(),
		gmw.NewLoggerMiddleware(
			gmw.WithLoggerMwColored(),
			gmw.WithLevel(opt.logger.Level().String()),
			gmw.WithLogger(opt.logger.Named("gin")),
		),
	)

	if opt.metrics {
		if err := gmw.EnableMetric(server); err != nil {
			return nil, errors.Wrap(err, "enable metric server")
		}
	}

	server.GET("/health", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "hello, world")
	})
	server.Any("/", landingHandler(landingPage))
	server.NoRoute(dispatch(searchHandler(searcher)))

	return server, nil
}

// RunServer blocks serving engine on addr.
func RunServer(addr string, engine *gin.Engine) error {
	log.Logger.Info("listening on http", zap.String("addr", addr))
	if err := engine.Run(addr); err != nil {
		return errors.Wrapf(err, "serve http on %q", addr)
	}
	return nil
}

// dispatch routes every unmatched path with the search prefix to search,
// anything else gets the fixed 404 page.
func dispatch(search gin.HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, searchPrefix) {
			search(ctx)
			return
		}

		ctx.Data(http.StatusNotFound, htmlContentType, []byte(notFoundBody))
	}
}

func landingHandler(page []byte) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Data(http.StatusOK, htmlContentType, page)
	}
}

// searchHandler commits the 200 status before any upstream answers, then
// streams the fragments as the branches complete.
func searchHandler(searcher Searcher) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		logger := requestLogger(ctx).Named("search")
		req := search.ParseRequest(ctx.Request.URL.Query())

		ctx.Header("Content-Type", htmlContentType)
		ctx.Status(http.StatusOK)
		ctx.Writer.WriteHeaderNow()
		ctx.Writer.Flush()

		if err := searcher.Serve(ctx, ctx.Writer, req); err != nil {
			logger.Warn("serve search", zap.Error(err))
		}
	}
}

func requestLogger(ctx *gin.Context) logSDK.Logger {
	if logger := gmw.GetLogger(ctx); logger != nil {
		return logger
	}
	return log.Logger
}
