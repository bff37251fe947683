package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/passbet/arena/internal/adapters/mq/queue"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a queue with a small buffer", t, func() {
		q := queue.NewInMemoryQueue(queue.WithBufferSize(2))
		ctx := context.Background()

		Convey("When enqueuing within capacity", func() {
			So(q.Enqueue(ctx, queue.Job{ChallengeID: "c1"}), ShouldBeTrue)
			So(q.Enqueue(ctx, queue.Job{ChallengeID: "c2"}), ShouldBeTrue)
			So(q.Len(ctx), ShouldEqual, 2)

			Convey("Then a full queue rejects further jobs", func() {
				So(q.Enqueue(ctx, queue.Job{ChallengeID: "c3"}), ShouldBeFalse)
			})

			Convey("And dequeue delivers jobs in order", func() {
				ch := q.Dequeue(ctx)
				first := <-ch
				So(first.ChallengeID, ShouldEqual, "c1")
				second := <-ch
				So(second.ChallengeID, ShouldEqual, "c2")
			})
		})

		Convey("When the queue is closed", func() {
			So(q.Enqueue(ctx, queue.Job{ChallengeID: "c1"}), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)

			Convey("Then enqueue is refused", func() {
				So(q.Enqueue(ctx, queue.Job{ChallengeID: "c2"}), ShouldBeFalse)
			})

			Convey("And the dequeue channel drains then closes", func() {
				ch := q.Dequeue(ctx)
				job, ok := <-ch
				So(ok, ShouldBeTrue)
				So(job.ChallengeID, ShouldEqual, "c1")

				select {
				case _, ok := <-ch:
					So(ok, ShouldBeFalse)
				case <-time.After(time.Second):
					t.Fatal("dequeue channel did not close")
				}
			})

			Convey("And closing again is a no-op", func() {
				So(q.Close(), ShouldBeNil)
			})
		})
	})
}
