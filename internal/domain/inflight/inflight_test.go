package inflight_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/passbet/arena/internal/domain/inflight"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGuard_TryAcquire(t *testing.T) {
	Convey("Given a fresh guard", t, func() {
		g := inflight.NewInMemoryGuard()
		ctx := context.Background()

		Convey("When acquiring a challenge id", func() {
			ok := g.TryAcquire(ctx, "c1")

			Convey("Then the claim succeeds", func() {
				So(ok, ShouldBeTrue)
				So(g.Size(), ShouldEqual, 1)
			})

			Convey("And a second claim for the same id fails", func() {
				So(g.TryAcquire(ctx, "c1"), ShouldBeFalse)
			})

			Convey("And a claim for a different id still succeeds", func() {
				So(g.TryAcquire(ctx, "c2"), ShouldBeTrue)
			})
		})

		Convey("When releasing a claimed id", func() {
			So(g.TryAcquire(ctx, "c1"), ShouldBeTrue)
			g.Release(ctx, "c1")

			Convey("Then the id can be claimed again", func() {
				So(g.TryAcquire(ctx, "c1"), ShouldBeTrue)
				So(g.Size(), ShouldEqual, 1)
			})
		})

		Convey("When releasing an unclaimed id", func() {
			g.Release(ctx, "never-claimed")

			Convey("Then nothing changes", func() {
				So(g.Size(), ShouldEqual, 0)
			})
		})
	})
}

func TestGuard_Concurrent(t *testing.T) {
	Convey("Given many goroutines racing for one id", t, func() {
		g := inflight.NewInMemoryGuard()
		ctx := context.Background()

		const goroutines = 64
		var winners atomic.Int64
		var wg sync.WaitGroup
		wg.Add(goroutines)
		for i := 0; i < goroutines; i++ {
			go func() {
				defer wg.Done()
				if g.TryAcquire(ctx, "c1") {
					winners.Add(1)
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one goroutine wins the claim", func() {
			So(winners.Load(), ShouldEqual, 1)
			So(g.Size(), ShouldEqual, 1)
		})
	})
}
