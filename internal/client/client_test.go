package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"svc/internal/api"
	"svc/internal/errors"
	"svc/internal/fsys"
	"svc/internal/logging"
	"svc/internal/middleware"
	"svc/internal/service"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func setupClient(t *testing.T) (afero.Fs, *Client) {
	logger := logging.Wrap(zaptest.NewLogger(t))
	mem, reader := fsys.NewMem()
	svc := service.New(reader, service.Options{Logger: logger.Logger})

	mux := http.NewServeMux()
	api.NewHandler(svc, logger).Register(mux)
	srv := httptest.NewServer(middleware.Chain(mux, middleware.Recover(logger), middleware.Logger(logger), middleware.RequestID))
	t.Cleanup(srv.Close)

	return mem, New(srv.URL + "/")
}

func TestClientRoundTrip(t *testing.T) {
	fs, c := setupClient(t)
	ctx := context.Background()
	require.NoError(t, afero.WriteFile(fs, "a.txt", []byte("A"), 0644))
	require.NoError(t, fs.MkdirAll("sub dir", 0755))
	require.NoError(t, afero.WriteFile(fs, "sub dir/b.txt", []byte("B"), 0644))

	require.NoError(t, c.Health(ctx))

	res, err := c.AddFile(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, uint32(560), res.Fingerprint)

	_, err = c.AddFile(ctx, "sub dir/b.txt")
	require.NoError(t, err)
	_, err = c.RemoveFile(ctx, "sub dir/b.txt")
	require.NoError(t, err)

	cr, err := c.Commit(ctx, "init")
	require.NoError(t, err)
	assert.Equal(t, "de0bef", cr.ID)

	v, err := c.GetCommit(ctx, "de0bef")
	require.NoError(t, err)
	assert.Equal(t, "init", v.Message)

	hist, err := c.History(ctx, "de0bef")
	require.NoError(t, err)
	assert.Empty(t, hist)

	text, err := c.RenderCommit(ctx, "de0bef", false)
	require.NoError(t, err)
	assert.Contains(t, text, "de0bef [master]: init")

	require.NoError(t, c.CreateBranch(ctx, "dev"))
	st, err := c.Checkout(ctx, "dev")
	require.NoError(t, err)
	assert.Equal(t, "dev", st.Branch)

	list, err := c.Branches(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"master", "dev"}, list.Branches)

	dump, err := c.Graph(ctx)
	require.NoError(t, err)
	assert.Contains(t, dump, "Commit[de0bef]: init")

	recs, err := c.Log(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs, "no journal configured")
}

func TestClientDecodesErrors(t *testing.T) {
	_, c := setupClient(t)
	ctx := context.Background()

	_, err := c.GetCommit(ctx, "abcdef")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.Equal(t, errors.ErrorTypeNotFound, errors.TypeOf(err))

	err = c.CreateBranch(ctx, "dev")
	assert.True(t, errors.Is(err, errors.ErrPreconditionFailed))

	_, err = c.Merge(ctx, "ghost", nil)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	text, err := c.RenderCommit(ctx, "abcdef", false)
	require.NoError(t, err)
	assert.Equal(t, "Invalid commit id\n", text)

	_, err = c.Reset(ctx, "")
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}
