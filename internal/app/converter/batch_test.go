package converter

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coachpo/baseconv/errs"
	"github.com/coachpo/baseconv/internal/infra/config"
)

func TestConvertBatchPreservesOrder(t *testing.T) {
	cfg := config.Default()
	cfg.Batch.Workers = config.Workers(3)
	svc, _, _ := newTestService(t, cfg)

	reqs := make([]Request, 50)
	for i := range reqs {
		reqs[i] = Request{From: 10, To: 16, Number: Number(strconv.Itoa(i))}
	}
	items := svc.ConvertBatch(context.Background(), reqs)
	require.Len(t, items, len(reqs))
	for i, item := range items {
		require.NoError(t, item.Err)
		require.Equal(t, i, item.Index)
		require.Equal(t, fmt.Sprintf("%X", i), item.Result.Value)
	}
	require.Zero(t, Failed(items))
}

func TestConvertBatchIsolatesFailures(t *testing.T) {
	svc, reader, _ := newTestService(t, config.Default())

	items := svc.ConvertBatch(context.Background(), []Request{
		{From: 2, To: 10, Number: "101"},
		{From: 2, To: 10, Number: "12"},
		{From: 10, To: 2, Number: "0.5"},
	})
	require.Equal(t, "5", items[0].Result.Value)
	require.Equal(t, errs.CodeInvalidDigit, items[1].ErrorCode())
	require.Equal(t, "0.1", items[2].Result.Value)
	require.Equal(t, errs.Code(""), items[2].ErrorCode())
	require.Equal(t, 1, Failed(items))
	require.Equal(t, int64(2), sumCounter(t, reader, "baseconv.conversions"))
}

func TestConvertBatchCancelled(t *testing.T) {
	svc, _, _ := newTestService(t, config.Default())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := svc.ConvertBatch(ctx, []Request{{From: 10, To: 2, Number: "1"}, {From: 10, To: 2, Number: "2"}})
	require.Equal(t, 2, Failed(items))
	for _, item := range items {
		require.ErrorIs(t, item.Err, context.Canceled)
		require.Equal(t, errs.CodeUnavailable, item.ErrorCode())
	}
}

func TestConvertBatchEmpty(t *testing.T) {
	svc, _, _ := newTestService(t, config.Default())
	require.Empty(t, svc.ConvertBatch(context.Background(), nil))
}
