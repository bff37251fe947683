package worker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/passbet/arena/internal/adapters/mq/queue"
	"github.com/passbet/arena/internal/adapters/mq/worker"
	"github.com/passbet/arena/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// recordingSettler collects the challenge ids it was asked to settle.
type recordingSettler struct {
	mu      sync.Mutex
	settled []string
	notify  chan string
}

func newRecordingSettler() *recordingSettler {
	return &recordingSettler{notify: make(chan string, 16)}
}

func (s *recordingSettler) Settle(_ context.Context, challengeID string) error {
	s.mu.Lock()
	s.settled = append(s.settled, challengeID)
	s.mu.Unlock()
	s.notify <- challengeID
	return nil
}

func (s *recordingSettler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.settled)
}

func TestPool_ProcessesJobs(t *testing.T) {
	Convey("Given a running pool over an in-memory queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithBufferSize(16))
		settler := newRecordingSettler()
		pool := worker.NewPool(2, q, settler)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)
		defer pool.Stop()

		Convey("When jobs are enqueued", func() {
			So(q.Enqueue(ctx, queue.Job{ChallengeID: "c1"}), ShouldBeTrue)
			So(q.Enqueue(ctx, queue.Job{ChallengeID: "c2"}), ShouldBeTrue)

			Convey("Then each job reaches the settler", func() {
				for i := 0; i < 2; i++ {
					select {
					case <-settler.notify:
					case <-time.After(2 * time.Second):
						t.Fatal("job was not processed")
					}
				}
				So(settler.count(), ShouldEqual, 2)
			})
		})
	})
}

func TestWorker_Shutdown(t *testing.T) {
	Convey("Given a running worker", t, func() {
		q := queue.NewInMemoryQueue(queue.WithBufferSize(4))
		settler := newRecordingSettler()
		w := worker.NewWorker(q, settler)

		ctx := context.Background()
		go w.Run(ctx)

		Convey("When shut down", func() {
			shutdownCtx, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()

			Convey("Then it stops within the deadline", func() {
				So(w.Shutdown(shutdownCtx), ShouldBeNil)
			})
		})
	})
}
