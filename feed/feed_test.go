package feed

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func produce(f *Feed[int], values []int, err error) {
	go func() {
		for _, v := range values {
			if !f.Send(v) {
				f.Finish(nil)
				return
			}
		}
		f.Finish(err)
	}()
}

func collect[T any](t *testing.T, f *Feed[T]) []T {
	var got []T
	timeout := time.After(time.Second)
	for {
		select {
		case v, ok := <-f.Updates():
			if !ok {
				return got
			}
			got = append(got, v)
		case <-timeout:
			t.Fatal("feed did not finish in time")
			return nil
		}
	}
}

func TestFeed_DeliversValuesThenError(t *testing.T) {
	req := require.New(t)
	f := New[int](context.Background(), 0)
	upstream := fmt.Errorf("boom")

	produce(f, []int{1, 2, 3}, upstream)

	req.Equal([]int{1, 2, 3}, collect(t, f))
	req.ErrorIs(f.Err(), upstream)
}

func TestFeed_CloseStopsProducerWithoutError(t *testing.T) {
	req := require.New(t)
	f := New[int](context.Background(), 0)
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		for i := 0; ; i++ {
			if !f.Send(i) {
				f.Finish(fmt.Errorf("must be ignored"))
				return
			}
		}
	}()

	<-f.Updates()
	f.Close()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		req.Fail("producer did not observe the cancellation")
	}
	req.NoError(f.Err())
}

func TestFeed_ParentCancellation(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	f := New[int](ctx, 0)

	cancel()

	req.False(f.Send(1))
	req.Error(f.Context().Err())
}

func TestMap_ProjectsAndSkips(t *testing.T) {
	req := require.New(t)
	src := New[int](context.Background(), 0)
	produce(src, []int{1, 2, 3, 4}, nil)

	dst := Map(src, func(v int) (string, bool) {
		return strconv.Itoa(v * 10), v%2 == 0
	})

	req.Equal([]string{"20", "40"}, collect(t, dst))
	req.NoError(dst.Err())
}

func TestMap_ForwardsUpstreamError(t *testing.T) {
	req := require.New(t)
	src := New[int](context.Background(), 0)
	upstream := fmt.Errorf("stream broken")
	produce(src, []int{7}, upstream)

	dst := Map(src, func(v int) (int, bool) { return v, true })

	req.Equal([]int{7}, collect(t, dst))
	req.ErrorIs(dst.Err(), upstream)
}

func TestMap_CloseReleasesSource(t *testing.T) {
	req := require.New(t)
	src := New[int](context.Background(), 0)
	dst := Map(src, func(v int) (int, bool) { return v, true })

	dst.Close()

	req.Eventually(func() bool {
		return src.Context().Err() != nil
	}, time.Second, 10*time.Millisecond)
}
