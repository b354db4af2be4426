package search

import (
	"net/http/httptest"
	"testing"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"
)

func TestStreamWritesAndFlushes(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	stream := NewStream(rec)

	require.NoError(t, stream.WriteFragment("<div>a</div>"))
	require.True(t, rec.Flushed)
	require.NoError(t, stream.WriteFragment("<div>b</div>"))
	require.Equal(t, 2, stream.Writes())
	require.Equal(t, "<div>a</div><div>b</div>", rec.Body.String())
}

func TestStreamRejectsWritesAfterClose(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	stream := NewStream(rec)

	require.NoError(t, stream.Close())
	select {
	case <-stream.Done():
	default:
		t.Fatal("done channel should be closed")
	}

	err := stream.WriteFragment("<div>late</div>")
	require.True(t, errors.Is(err, ErrStreamClosed))
	require.Empty(t, rec.Body.String())

	require.True(t, errors.Is(stream.Close(), ErrStreamClosed))
}
