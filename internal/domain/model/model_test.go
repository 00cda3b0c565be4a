package model_test

import (
	"testing"

	model "github.com/okian/mergington/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestActivity(t *testing.T) {
	convey.Convey("Given an activity with two participants", t, func() {
		a := model.Activity{
			Name:            "Chess Club",
			MaxParticipants: 3,
			Participants:    []string{"michael@mergington.edu", "daniel@mergington.edu"},
		}

		convey.Convey("When cloning it", func() {
			c := a.Clone()
			c.Participants[0] = "changed@example.com"
			c.Participants = append(c.Participants, "new@example.com")

			convey.Convey("Then the original roster is untouched", func() {
				convey.So(a.Participants, convey.ShouldResemble, []string{"michael@mergington.edu", "daniel@mergington.edu"})
			})
		})

		convey.Convey("Then spots left and fullness follow the roster", func() {
			convey.So(a.SpotsLeft(), convey.ShouldEqual, 1)
			convey.So(a.Full(), convey.ShouldBeFalse)

			a.Participants = append(a.Participants, "x@example.com")
			convey.So(a.SpotsLeft(), convey.ShouldEqual, 0)
			convey.So(a.Full(), convey.ShouldBeTrue)
		})

		convey.Convey("When cloning an activity with a nil roster", func() {
			c := model.Activity{Name: "Empty", MaxParticipants: 1}.Clone()

			convey.Convey("Then the clone has an empty, non-nil roster", func() {
				convey.So(c.Participants, convey.ShouldNotBeNil)
				convey.So(c.Participants, convey.ShouldBeEmpty)
			})
		})
	})
}
