package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/passbet/arena/internal/adapters/assessor"
	"github.com/passbet/arena/internal/adapters/repository"
	"github.com/passbet/arena/internal/app"
	"github.com/passbet/arena/internal/domain/model"
	"github.com/passbet/arena/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// fakeClock is a mutable time source for deterministic deadline tests.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// scriptedAssessor returns canned verdicts keyed by submitted code, or an
// error when failing is set.
type scriptedAssessor struct {
	mu        sync.Mutex
	verdicts  map[string]model.Outcome
	failing   bool
	failCodes map[string]bool
	calls     int
}

func newScriptedAssessor() *scriptedAssessor {
	return &scriptedAssessor{
		verdicts:  make(map[string]model.Outcome),
		failCodes: make(map[string]bool),
	}
}

func (a *scriptedAssessor) script(code string, willPass bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.verdicts[code] = model.Outcome{WillPass: willPass, Reasoning: "scripted verdict"}
}

func (a *scriptedAssessor) fail(v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failing = v
}

func (a *scriptedAssessor) failFor(code string, v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failCodes[code] = v
}

func (a *scriptedAssessor) Assess(_ context.Context, req assessor.AssessmentRequest) (model.Outcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.failing || a.failCodes[req.Code] {
		return model.Outcome{}, assessor.ErrUnavailable
	}
	if v, ok := a.verdicts[req.Code]; ok {
		return v, nil
	}
	return model.Outcome{WillPass: true, Reasoning: "default verdict"}, nil
}

// countingGenerator produces one canned test case and counts calls.
type countingGenerator struct {
	mu    sync.Mutex
	calls int
}

func (g *countingGenerator) GenerateTestCases(_ context.Context, _, _ string) ([]model.TestCase, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return []model.TestCase{{Input: "nums = [2,7], target = 9", ExpectedOutput: "[0,1]"}}, nil
}

// harness bundles a started service with its fakes.
type harness struct {
	svc   *app.Service
	store *repository.Memory
	clock *fakeClock
	judge *scriptedAssessor
	gen   *countingGenerator
}

func newHarness(t *testing.T, opts ...app.Option) *harness {
	t.Helper()
	ctx := context.Background()

	h := &harness{
		store: repository.NewMemory(ctx),
		clock: newFakeClock(),
		judge: newScriptedAssessor(),
		gen:   &countingGenerator{},
	}
	base := []app.Option{
		app.WithStore(h.store),
		app.WithClock(h.clock.Now),
		app.WithAssessor(h.judge),
		app.WithTestCaseGenerator(h.gen),
		app.WithWorkerCount(1),
		app.WithSweepInterval(time.Hour),
	}
	h.svc = app.New(append(base, opts...)...)
	if err := h.svc.Start(ctx); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(h.svc.Stop)
	return h
}

func (h *harness) user(t *testing.T, name string) model.User {
	t.Helper()
	u, err := h.svc.RegisterUser(context.Background(), name)
	if err != nil {
		t.Fatalf("register user: %v", err)
	}
	return u
}

func (h *harness) challenge(t *testing.T, points int, withCases bool) model.Challenge {
	t.Helper()
	c := model.Challenge{
		Title:       "Two Sum",
		Description: "Return indices of the two numbers that add up to target.",
		Language:    "JavaScript",
		Difficulty:  "Easy",
		Points:      points,
		Deadline:    h.clock.Now().Add(time.Hour),
	}
	if withCases {
		c.TestCases = []model.TestCase{{Input: "nums = [2,7], target = 9", ExpectedOutput: "[0,1]"}}
	}
	created, err := h.svc.CreateChallenge(context.Background(), c)
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}
	return created
}

func TestSubmitPrediction(t *testing.T) {
	Convey("Given an open challenge and a registered user", t, func() {
		h := newHarness(t)
		ctx := context.Background()
		u1 := h.user(t, "Alice Coder")
		c := h.challenge(t, 100, true)

		Convey("When the user submits a prediction", func() {
			p, err := h.svc.SubmitPrediction(ctx, u1.ID, c.ID, "function twoSum() {}", true)

			Convey("Then it lands in the ledger unresolved", func() {
				So(err, ShouldBeNil)
				So(p.PredictedWillPass, ShouldBeTrue)
				So(p.Resolved(), ShouldBeFalse)
				So(p.PointsEarned, ShouldEqual, 0)
			})

			Convey("And a second submission for the same challenge is rejected", func() {
				_, err := h.svc.SubmitPrediction(ctx, u1.ID, c.ID, "other code", false)
				So(errors.Is(err, repository.ErrDuplicatePrediction), ShouldBeTrue)

				preds, err := h.svc.PredictionsForChallenge(ctx, c.ID)
				So(err, ShouldBeNil)
				So(len(preds), ShouldEqual, 1)
			})
		})

		Convey("When the deadline has passed", func() {
			h.clock.Advance(2 * time.Hour)

			Convey("Then submission fails with ChallengeNotOpen", func() {
				_, err := h.svc.SubmitPrediction(ctx, u1.ID, c.ID, "late code", true)
				So(errors.Is(err, app.ErrChallengeNotOpen), ShouldBeTrue)
			})
		})

		Convey("When the user is unknown", func() {
			_, err := h.svc.SubmitPrediction(ctx, "ghost", c.ID, "code", true)

			Convey("Then submission fails with NotFound", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestProposeBet(t *testing.T) {
	Convey("Given an open challenge with a prediction by u1", t, func() {
		h := newHarness(t)
		ctx := context.Background()
		u1 := h.user(t, "Alice Coder")
		u2 := h.user(t, "Bob Scripter")
		c := h.challenge(t, 100, true)
		p, err := h.svc.SubmitPrediction(ctx, u1.ID, c.ID, "alice code", true)
		So(err, ShouldBeNil)

		Convey("When u2 proposes a valid bet", func() {
			b, err := h.svc.ProposeBet(ctx, c.ID, u2.ID, u1.ID, p.ID, 10)

			Convey("Then the bet is pending acceptance", func() {
				So(err, ShouldBeNil)
				So(b.Status, ShouldEqual, model.BetPendingAcceptance)
				So(b.Amount, ShouldEqual, 10)
			})
		})

		Convey("When the amount is non-positive", func() {
			_, err := h.svc.ProposeBet(ctx, c.ID, u2.ID, u1.ID, p.ID, 0)

			Convey("Then it fails with InvalidAmount and the ledger is unchanged", func() {
				So(errors.Is(err, app.ErrInvalidAmount), ShouldBeTrue)
				bets, _ := h.svc.BetsForChallenge(ctx, c.ID)
				So(len(bets), ShouldEqual, 0)
			})
		})

		Convey("When a user bets against themselves", func() {
			_, err := h.svc.ProposeBet(ctx, c.ID, u1.ID, u1.ID, p.ID, 10)

			Convey("Then it fails with SelfBet and the ledger is unchanged", func() {
				So(errors.Is(err, app.ErrSelfBet), ShouldBeTrue)
				bets, _ := h.svc.BetsForChallenge(ctx, c.ID)
				So(len(bets), ShouldEqual, 0)
			})
		})

		Convey("When the target prediction does not belong to the target user", func() {
			_, err := h.svc.ProposeBet(ctx, c.ID, u2.ID, u2.ID+"x", p.ID, 10)

			Convey("Then it fails with UnknownPrediction", func() {
				So(errors.Is(err, app.ErrUnknownPrediction), ShouldBeTrue)
			})
		})

		Convey("When the challenge has left the open state", func() {
			So(h.svc.BeginAssessment(ctx, c.ID), ShouldBeNil)
			_, err := h.svc.ProposeBet(ctx, c.ID, u2.ID, u1.ID, p.ID, 10)

			Convey("Then it fails with ChallengeNotOpen", func() {
				So(errors.Is(err, app.ErrChallengeNotOpen), ShouldBeTrue)
			})
		})
	})
}

func TestProposeBet_ScorePolicy(t *testing.T) {
	Convey("Given the allow-negative-score policy is off", t, func() {
		h := newHarness(t, app.WithAllowNegativeScore(false))
		ctx := context.Background()
		u1 := h.user(t, "Alice Coder")
		u2 := h.user(t, "Bob Scripter") // score 0
		c := h.challenge(t, 100, true)
		p, err := h.svc.SubmitPrediction(ctx, u1.ID, c.ID, "alice code", true)
		So(err, ShouldBeNil)

		Convey("When a broke proposer wagers anything", func() {
			_, err := h.svc.ProposeBet(ctx, c.ID, u2.ID, u1.ID, p.ID, 10)

			Convey("Then it fails with InsufficientScore", func() {
				So(errors.Is(err, app.ErrInsufficientScore), ShouldBeTrue)
			})
		})
	})
}

func TestAcceptDeclineBet(t *testing.T) {
	Convey("Given a pending bet from u2 against u1's prediction", t, func() {
		h := newHarness(t)
		ctx := context.Background()
		u1 := h.user(t, "Alice Coder")
		u2 := h.user(t, "Bob Scripter")
		c := h.challenge(t, 100, true)
		p, err := h.svc.SubmitPrediction(ctx, u1.ID, c.ID, "alice code", true)
		So(err, ShouldBeNil)
		b, err := h.svc.ProposeBet(ctx, c.ID, u2.ID, u1.ID, p.ID, 10)
		So(err, ShouldBeNil)

		Convey("When someone other than the target responds", func() {
			err := h.svc.AcceptBet(ctx, u2.ID, b.ID)

			Convey("Then it is rejected", func() {
				So(errors.Is(err, app.ErrNotBetTarget), ShouldBeTrue)
			})
		})

		Convey("When the target accepts", func() {
			So(h.svc.AcceptBet(ctx, u1.ID, b.ID), ShouldBeNil)

			Convey("Then the bet is accepted and re-accepting is a no-op", func() {
				bets, _ := h.svc.BetsForChallenge(ctx, c.ID)
				So(bets[0].Status, ShouldEqual, model.BetAccepted)
				So(h.svc.AcceptBet(ctx, u1.ID, b.ID), ShouldBeNil)
			})

			Convey("And declining afterwards is rejected", func() {
				err := h.svc.DeclineBet(ctx, u1.ID, b.ID)
				So(errors.Is(err, repository.ErrAlreadySettled), ShouldBeTrue)
			})
		})

		Convey("When the target declines", func() {
			So(h.svc.DeclineBet(ctx, u1.ID, b.ID), ShouldBeNil)

			Convey("Then the bet is declined", func() {
				bets, _ := h.svc.BetsForChallenge(ctx, c.ID)
				So(bets[0].Status, ShouldEqual, model.BetDeclined)
			})
		})
	})
}

func TestQueries(t *testing.T) {
	Convey("Given predictions by two users on one challenge", t, func() {
		h := newHarness(t)
		ctx := context.Background()
		u1 := h.user(t, "Alice Coder")
		u2 := h.user(t, "Bob Scripter")
		c := h.challenge(t, 100, true)
		_, err := h.svc.SubmitPrediction(ctx, u1.ID, c.ID, "alice code", true)
		So(err, ShouldBeNil)
		_, err = h.svc.SubmitPrediction(ctx, u2.ID, c.ID, "bob code", false)
		So(err, ShouldBeNil)

		Convey("When asking for other users' predictions", func() {
			others, err := h.svc.PredictionsByOtherUsers(ctx, c.ID, u1.ID)

			Convey("Then only the other user's prediction is returned", func() {
				So(err, ShouldBeNil)
				So(len(others), ShouldEqual, 1)
				So(others[0].UserID, ShouldEqual, u2.ID)
			})
		})

		Convey("When asking for the leaderboard", func() {
			users, err := h.svc.Leaderboard(ctx, 10)

			Convey("Then every user appears", func() {
				So(err, ShouldBeNil)
				So(len(users), ShouldEqual, 2)
			})
		})
	})
}
