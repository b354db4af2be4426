package search

import (
	"context"
	"io"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	appLog "github.com/Laisky/wordjobs/library/log"
)

// CoordinatorOption customises a Coordinator during construction.
type CoordinatorOption func(*Coordinator)

// WithCoordinatorLogger overrides the fallback logger used when no contextual logger is available.
func WithCoordinatorLogger(logger logSDK.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Coordinator runs every source of one search concurrently and joins them
// on a Latch that closes the response stream.
type Coordinator struct {
	sources []Source
	logger  logSDK.Logger
}

// NewCoordinator constructs a Coordinator over the given sources.
func NewCoordinator(sources []Source, opts ...CoordinatorOption) (*Coordinator, error) {
	cleaned := make([]Source, 0, len(sources))
	for _, src := range sources {
		if src != nil {
			cleaned = append(cleaned, src)
		}
	}
	if len(cleaned) == 0 {
		return nil, errors.New("search coordinator requires at least one source")
	}

	c := &Coordinator{
		sources: cleaned,
		logger:  appLog.Logger.Named("search_coordinator"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Serve writes one fragment per source into w, in completion order, and
// returns once the stream has been closed by the last branch.
//
// Every branch writes exactly one fragment: the rendered result, the
// fallback a formatter chose, or an unavailable notice when the upstream
// failed. The returned error only reports failed writes.
func (c *Coordinator) Serve(ctx context.Context, w io.Writer, req Request) error {
	logger := c.logger
	if ctxLogger := gmw.GetLogger(ctx); ctxLogger != nil {
		logger = ctxLogger.Named("search_coordinator")
	}
	logger = logger.With(zap.String("search_id", uuid.NewString()))

	stream := NewStream(w)
	latch := NewLatch(len(c.sources), func() {
		if err := stream.Close(); err != nil {
			logger.Error("close response stream", zap.Error(err))
		}
	})

	logger.Debug("search started",
		zap.String("word", req.Word),
		zap.String("keyword", req.Keyword),
		zap.String("location_name", req.LocationName),
		zap.Duration("delay_dictionary", req.DictionaryDelay),
		zap.Duration("delay_usajobs", req.JobsDelay),
	)

	startAt := time.Now()
	var g errgroup.Group
	for _, src := range c.sources {
		g.Go(func() error {
			defer latch.Done()
			return c.runBranch(ctx, logger, stream, src, req)
		})
	}

	err := g.Wait()
	<-stream.Done()

	logger.Debug("search completed",
		zap.Int("fragments", stream.Writes()),
		zap.Duration("cost", time.Since(startAt)),
	)
	return err
}

func (c *Coordinator) runBranch(ctx context.Context,
	logger logSDK.Logger,
	stream *Stream,
	src Source,
	req Request,
) error {
	logger = logger.With(zap.String("upstream", src.Name()))

	fragment, err := src.Fragment(ctx, req)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			logger.Warn("upstream returned malformed payload", zap.Error(err))
		} else {
			logger.Warn("upstream call failed", zap.Error(err))
		}
		if fragment == "" {
			fragment = UnavailableFragment(src.Name())
		}
	}

	sleep(ctx, src.Delay(req))

	if err := stream.WriteFragment(fragment); err != nil {
		return errors.Wrapf(err, "write %s fragment", src.Name())
	}
	logger.Debug("fragment written")
	return nil
}

// sleep waits d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
