package valkey

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valkey-io/valkey-go/mock"
	"go.uber.org/mock/gomock"

	"github.com/samirrijal/geovocab/internal/core/domain"
)

func newMock(t *testing.T) (*Client, *mock.Client) {
	ctrl := gomock.NewController(t)
	m := mock.NewClient(ctrl)
	return NewFromClient(m), m
}

func TestSessionStore_SaveUsesTTL(t *testing.T) {
	c, m := newMock(t)
	ctx := context.Background()

	m.EXPECT().Do(ctx, mock.Match("SET", "geovocab:session:abc", `{"loading":false}`, "EX", "1800")).
		Return(mock.Result(mock.ValkeyString("OK")))

	err := c.Sessions().Save(ctx, "abc", []byte(`{"loading":false}`), 30*time.Minute)
	require.NoError(t, err)
}

func TestSessionStore_Load(t *testing.T) {
	c, m := newMock(t)
	ctx := context.Background()

	m.EXPECT().Do(ctx, mock.Match("GET", "geovocab:session:abc")).
		Return(mock.Result(mock.ValkeyString(`{"panelOpen":true}`)))
	m.EXPECT().Do(ctx, mock.Match("GET", "geovocab:session:gone")).
		Return(mock.Result(mock.ValkeyNil()))
	m.EXPECT().Do(ctx, mock.Match("GET", "geovocab:session:err")).
		Return(mock.ErrorResult(errors.New("boom")))

	got, err := c.Sessions().Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, `{"panelOpen":true}`, string(got))

	_, err = c.Sessions().Load(ctx, "gone")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = c.Sessions().Load(ctx, "err")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStorage_MissingKeyIsNil(t *testing.T) {
	c, m := newMock(t)

	m.EXPECT().Do(gomock.Any(), mock.Match("GET", "geovocab:limiter:1.2.3.4")).
		Return(mock.Result(mock.ValkeyNil()))

	got, err := c.Storage(LimiterPrefix).Get("1.2.3.4")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStorage_SetAndDelete(t *testing.T) {
	c, m := newMock(t)
	s := c.Storage(LimiterPrefix)

	m.EXPECT().Do(gomock.Any(), mock.Match("SET", "geovocab:limiter:k", "v", "EX", "60")).
		Return(mock.Result(mock.ValkeyString("OK")))
	m.EXPECT().Do(gomock.Any(), mock.Match("SET", "geovocab:limiter:short", "v", "EX", "1")).
		Return(mock.Result(mock.ValkeyString("OK")))
	m.EXPECT().Do(gomock.Any(), mock.Match("DEL", "geovocab:limiter:k")).
		Return(mock.Result(mock.ValkeyInt64(1)))

	require.NoError(t, s.Set("k", []byte("v"), time.Minute))
	require.NoError(t, s.Set("short", []byte("v"), 10*time.Millisecond))
	require.NoError(t, s.Set("", []byte("v"), time.Minute))
	require.NoError(t, s.Delete("k"))
}

func TestStorage_Reset(t *testing.T) {
	c, m := newMock(t)

	gomock.InOrder(
		m.EXPECT().Do(gomock.Any(), mock.Match("SCAN", "0", "MATCH", "geovocab:limiter:*", "COUNT", "100")).
			Return(mock.Result(mock.ValkeyArray(
				mock.ValkeyString("7"),
				mock.ValkeyArray(mock.ValkeyString("geovocab:limiter:a"), mock.ValkeyString("geovocab:limiter:b")),
			))),
		m.EXPECT().Do(gomock.Any(), mock.Match("DEL", "geovocab:limiter:a", "geovocab:limiter:b")).
			Return(mock.Result(mock.ValkeyInt64(2))),
		m.EXPECT().Do(gomock.Any(), mock.Match("SCAN", "7", "MATCH", "geovocab:limiter:*", "COUNT", "100")).
			Return(mock.Result(mock.ValkeyArray(mock.ValkeyString("0"), mock.ValkeyArray()))),
	)

	require.NoError(t, c.Storage(LimiterPrefix).Reset())
}
