package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name string `json:"name"`
}

func TestGetOrLoad_Hit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db)

	mock.ExpectGet("k").SetVal(`[{"name":"a"}]`)

	var got []item
	err := c.GetOrLoad(context.Background(), "k", time.Minute, &got, func(context.Context) (any, error) {
		t.Fatal("loader must not run on hit")
		return nil, nil
	})

	require.NoError(t, err)
	assert.Equal(t, []item{{Name: "a"}}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrLoad_MissStores(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db)

	mock.ExpectGet("k").RedisNil()
	mock.ExpectSet("k", `[{"name":"b"}]`, time.Minute).SetVal("OK")

	var got []item
	err := c.GetOrLoad(context.Background(), "k", time.Minute, &got, func(context.Context) (any, error) {
		return []item{{Name: "b"}}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, []item{{Name: "b"}}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrLoad_RedisDownFallsBackToLoader(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db)

	mock.ExpectGet("k").SetErr(errors.New("conn refused"))
	mock.ExpectSet("k", `{"name":"c"}`, time.Minute).SetErr(errors.New("conn refused"))

	var got item
	err := c.GetOrLoad(context.Background(), "k", time.Minute, &got, func(context.Context) (any, error) {
		return item{Name: "c"}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "c", got.Name)
}

func TestGetOrLoad_LoaderError(t *testing.T) {
	c := New(nil)
	boom := errors.New("db down")

	var got item
	err := c.GetOrLoad(context.Background(), "k", time.Minute, &got, func(context.Context) (any, error) {
		return nil, boom
	})

	assert.ErrorIs(t, err, boom)
}

func TestDelete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db)

	mock.ExpectDel(DashboardKey("u1"), DashboardKey("u2")).SetVal(2)
	c.Delete(context.Background(), DashboardKey("u1"), DashboardKey("u2"))

	assert.NoError(t, mock.ExpectationsWereMet())
}
