package rules_test

import (
	"testing"

	"github.com/passbet/arena/internal/domain/model"
	"github.com/passbet/arena/internal/domain/rules"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResolvePrediction(t *testing.T) {
	Convey("Given a challenge worth 100 points", t, func() {
		const points = 100

		Convey("When the user predicted pass and the solution passes", func() {
			res := rules.ResolvePrediction(true, model.Outcome{WillPass: true}, points)

			Convey("Then the prediction is correct and earns the full reward", func() {
				So(res.IsCorrect, ShouldBeTrue)
				So(res.PointsEarned, ShouldEqual, 100)
			})
		})

		Convey("When the user predicted pass and the solution fails", func() {
			res := rules.ResolvePrediction(true, model.Outcome{WillPass: false}, points)

			Convey("Then the prediction is incorrect and earns nothing", func() {
				So(res.IsCorrect, ShouldBeFalse)
				So(res.PointsEarned, ShouldEqual, 0)
			})
		})

		Convey("When the user predicted fail and the solution fails", func() {
			res := rules.ResolvePrediction(false, model.Outcome{WillPass: false}, points)

			Convey("Then an honest self-doubt still earns the reward", func() {
				So(res.IsCorrect, ShouldBeTrue)
				So(res.PointsEarned, ShouldEqual, 100)
			})
		})
	})
}

func TestSettleBet(t *testing.T) {
	Convey("Given an accepted 10-point bet against a prediction", t, func() {
		bet := &model.ProposedBet{
			ID:         "bet1",
			ProposerID: "u2",
			TargetID:   "u1",
			Amount:     10,
			Status:     model.BetAccepted,
		}

		Convey("When the target's prediction was incorrect", func() {
			res := rules.SettleBet(bet, false)

			Convey("Then the proposer wins and the stake transfers", func() {
				So(res.Status, ShouldEqual, model.BetSettledProposer)
				So(res.Transfer, ShouldEqual, 10)
			})
		})

		Convey("When the target's prediction was correct", func() {
			res := rules.SettleBet(bet, true)

			Convey("Then the target wins and no points move", func() {
				So(res.Status, ShouldEqual, model.BetSettledTarget)
				So(res.Transfer, ShouldEqual, 0)
			})
		})
	})
}
