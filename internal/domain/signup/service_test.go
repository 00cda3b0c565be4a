package signup_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/mergington/internal/adapters/repository"
	"github.com/okian/mergington/internal/domain/model"
	"github.com/okian/mergington/internal/domain/roster"
	"github.com/okian/mergington/internal/domain/signup"
	"github.com/okian/mergington/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type recordingPublisher struct {
	mu      sync.Mutex
	changes []model.Change
}

func (p *recordingPublisher) Publish(_ context.Context, ch model.Change) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, ch)
}

func (p *recordingPublisher) all() []model.Change {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.Change(nil), p.changes...)
}

func newService(opts ...signup.Option) (*signup.Service, *repository.Catalog) {
	catalog, err := repository.NewCatalog(context.Background(), repository.DefaultActivities())
	if err != nil {
		panic(err)
	}
	return signup.New(catalog, opts...), catalog
}

func participants(svc *signup.Service, name string) []string {
	a, err := svc.Activity(context.Background(), name)
	So(err, ShouldBeNil)
	return a.Participants
}

func TestService_ListActivities(t *testing.T) {
	Convey("Given a service over the default catalog", t, func() {
		svc, _ := newService()
		ctx := context.Background()

		Convey("When listing activities", func() {
			all, err := svc.ListActivities(ctx)

			Convey("Then every seeded activity is present with its seeded roster", func() {
				So(err, ShouldBeNil)
				for _, seeded := range repository.DefaultActivities() {
					got, ok := all[seeded.Name]
					So(ok, ShouldBeTrue)
					So(got.Participants, ShouldResemble, seeded.Participants)
					So(got.MaxParticipants, ShouldEqual, seeded.MaxParticipants)
				}
				So(all, ShouldContainKey, "Chess Club")
			})
		})
	})
}

func TestService_SignUp(t *testing.T) {
	Convey("Given a service over the default catalog", t, func() {
		pub := &recordingPublisher{}
		fixed := time.Date(2026, 9, 1, 15, 30, 0, 0, time.UTC)
		svc, _ := newService(signup.WithPublisher(pub), signup.WithClock(func() time.Time { return fixed }))
		ctx := context.Background()

		Convey("When a new email signs up for Chess Club", func() {
			before := participants(svc, "Chess Club")
			res, err := svc.SignUp(ctx, "Chess Club", "teststudent@example.com")

			Convey("Then it succeeds with a confirmation message", func() {
				So(err, ShouldBeNil)
				So(res.Message, ShouldContainSubstring, "Signed up")
				So(res.Message, ShouldEqual, "Signed up teststudent@example.com for Chess Club")
			})

			Convey("And the email is appended last with prior order intact", func() {
				after := participants(svc, "Chess Club")
				So(len(after), ShouldEqual, len(before)+1)
				So(after[:len(before)], ShouldResemble, before)
				So(after[len(after)-1], ShouldEqual, "teststudent@example.com")
			})

			Convey("And a signup change is published", func() {
				changes := pub.all()
				So(changes, ShouldHaveLength, 1)
				So(changes[0].Kind, ShouldEqual, model.ChangeSignup)
				So(changes[0].Activity, ShouldEqual, "Chess Club")
				So(changes[0].Email, ShouldEqual, "teststudent@example.com")
				So(changes[0].RosterSize, ShouldEqual, len(before)+1)
				So(changes[0].Capacity, ShouldEqual, 12)
				So(changes[0].At, ShouldEqual, fixed)
				So(changes[0].ID, ShouldNotBeBlank)
			})
		})

		Convey("When the email is padded with whitespace", func() {
			_, err := svc.SignUp(ctx, "Chess Club", "  padded@example.com ")

			Convey("Then the trimmed address is stored", func() {
				So(err, ShouldBeNil)
				So(roster.Contains(participants(svc, "Chess Club"), "padded@example.com"), ShouldBeTrue)
			})
		})

		Convey("When a pre-seeded participant signs up again", func() {
			before := participants(svc, "Programming Class")
			_, err := svc.SignUp(ctx, "Programming Class", "emma@mergington.edu")

			Convey("Then it fails with ErrAlreadyRegistered and the roster is unchanged", func() {
				So(errors.Is(err, signup.ErrAlreadyRegistered), ShouldBeTrue)
				So(participants(svc, "Programming Class"), ShouldResemble, before)
				So(pub.all(), ShouldBeEmpty)
			})
		})

		Convey("When signing up for an unknown activity", func() {
			_, err := svc.SignUp(ctx, "Nonexistent", "someone@example.com")

			Convey("Then it fails with ErrActivityNotFound and creates nothing", func() {
				So(errors.Is(err, signup.ErrActivityNotFound), ShouldBeTrue)
				all, _ := svc.ListActivities(ctx)
				So(all, ShouldNotContainKey, "Nonexistent")
				So(len(all), ShouldEqual, len(repository.DefaultActivities()))
			})
		})

		Convey("When the activity name differs only by case", func() {
			_, err := svc.SignUp(ctx, "chess club", "someone@example.com")

			Convey("Then it is not found", func() {
				So(errors.Is(err, signup.ErrActivityNotFound), ShouldBeTrue)
			})
		})

		Convey("When the email is missing or malformed", func() {
			for _, bad := range []string{"", "   ", "not-an-email", "Emma <emma@mergington.edu>"} {
				_, err := svc.SignUp(ctx, "Chess Club", bad)
				So(errors.Is(err, signup.ErrInvalidEmail), ShouldBeTrue)
			}

			Convey("Then nothing is added", func() {
				So(participants(svc, "Chess Club"), ShouldHaveLength, 2)
			})
		})

		Convey("When the activity is unknown and the email already exists elsewhere", func() {
			_, err := svc.SignUp(ctx, "Nonexistent", "emma@mergington.edu")

			Convey("Then the existence check wins", func() {
				So(errors.Is(err, signup.ErrActivityNotFound), ShouldBeTrue)
			})
		})

		Convey("When the same email joins two different activities", func() {
			_, err1 := svc.SignUp(ctx, "Chess Club", "emma@mergington.edu")

			Convey("Then both rosters hold it", func() {
				So(err1, ShouldBeNil)
				So(roster.Contains(participants(svc, "Chess Club"), "emma@mergington.edu"), ShouldBeTrue)
				So(roster.Contains(participants(svc, "Programming Class"), "emma@mergington.edu"), ShouldBeTrue)
			})
		})
	})
}

func TestService_Capacity(t *testing.T) {
	Convey("Given Math Club with capacity 10 and 2 seeded participants", t, func() {
		ctx := context.Background()

		Convey("When capacity is enforced and the roster fills up", func() {
			svc, _ := newService()
			for i := 0; i < 8; i++ {
				_, err := svc.SignUp(ctx, "Math Club", fmt.Sprintf("student%d@example.com", i))
				So(err, ShouldBeNil)
			}
			before := participants(svc, "Math Club")
			_, err := svc.SignUp(ctx, "Math Club", "late@example.com")

			Convey("Then the next signup fails with ErrActivityFull", func() {
				So(errors.Is(err, signup.ErrActivityFull), ShouldBeTrue)
				So(participants(svc, "Math Club"), ShouldResemble, before)
			})

			Convey("And a duplicate on a full roster still reports ErrAlreadyRegistered", func() {
				_, err := svc.SignUp(ctx, "Math Club", "james@mergington.edu")
				So(errors.Is(err, signup.ErrAlreadyRegistered), ShouldBeTrue)
			})

			Convey("And freeing a spot lets the next signup through", func() {
				_, err := svc.Unregister(ctx, "Math Club", "student0@example.com")
				So(err, ShouldBeNil)
				_, err = svc.SignUp(ctx, "Math Club", "late@example.com")
				So(err, ShouldBeNil)
			})
		})

		Convey("When capacity is not enforced", func() {
			svc, _ := newService(signup.WithCapacityEnforcement(false))
			for i := 0; i < 12; i++ {
				_, err := svc.SignUp(ctx, "Math Club", fmt.Sprintf("student%d@example.com", i))
				So(err, ShouldBeNil)
			}

			Convey("Then the roster grows past capacity", func() {
				a, err := svc.Activity(ctx, "Math Club")
				So(err, ShouldBeNil)
				So(len(a.Participants), ShouldEqual, 14)
				So(a.SpotsLeft(), ShouldBeLessThan, 0)
			})
		})
	})
}

func TestService_Unregister(t *testing.T) {
	Convey("Given a service over the default catalog", t, func() {
		pub := &recordingPublisher{}
		svc, _ := newService(signup.WithPublisher(pub))
		ctx := context.Background()

		Convey("When a seeded participant is removed", func() {
			before := participants(svc, "Chess Club")
			res, err := svc.Unregister(ctx, "Chess Club", "michael@mergington.edu")

			Convey("Then it succeeds and the email is gone", func() {
				So(err, ShouldBeNil)
				So(res.Message, ShouldContainSubstring, "Removed")
				So(res.Message, ShouldEqual, "Removed michael@mergington.edu from Chess Club")
				after := participants(svc, "Chess Club")
				So(len(after), ShouldEqual, len(before)-1)
				So(roster.Contains(after, "michael@mergington.edu"), ShouldBeFalse)
				So(after, ShouldResemble, []string{"daniel@mergington.edu"})
			})

			Convey("And an unregister change is published", func() {
				changes := pub.all()
				So(changes, ShouldHaveLength, 1)
				So(changes[0].Kind, ShouldEqual, model.ChangeUnregister)
				So(changes[0].RosterSize, ShouldEqual, 1)
			})
		})

		Convey("When removing someone not on the roster", func() {
			before := participants(svc, "Chess Club")
			_, err := svc.Unregister(ctx, "Chess Club", "noone@example.com")

			Convey("Then it fails with ErrNotRegistered and the roster is unchanged", func() {
				So(errors.Is(err, signup.ErrNotRegistered), ShouldBeTrue)
				So(participants(svc, "Chess Club"), ShouldResemble, before)
				So(pub.all(), ShouldBeEmpty)
			})
		})

		Convey("When removing from an unknown activity", func() {
			_, err := svc.Unregister(ctx, "NoActivity", "someone@example.com")

			Convey("Then it fails with ErrActivityNotFound", func() {
				So(errors.Is(err, signup.ErrActivityNotFound), ShouldBeTrue)
			})
		})

		Convey("When signing up and then unregistering the same email", func() {
			before := participants(svc, "Gym Class")
			_, err := svc.SignUp(ctx, "Gym Class", "roundtrip@example.com")
			So(err, ShouldBeNil)
			_, err = svc.Unregister(ctx, "Gym Class", "roundtrip@example.com")
			So(err, ShouldBeNil)

			Convey("Then the roster is restored exactly", func() {
				So(participants(svc, "Gym Class"), ShouldResemble, before)
			})
		})

		Convey("When removing from the middle of a longer roster", func() {
			for _, e := range []string{"a@example.com", "b@example.com", "c@example.com"} {
				_, err := svc.SignUp(ctx, "Art Club", e)
				So(err, ShouldBeNil)
			}
			_, err := svc.Unregister(ctx, "Art Club", "a@example.com")

			Convey("Then remaining participants keep their relative order", func() {
				So(err, ShouldBeNil)
				So(participants(svc, "Art Club"), ShouldResemble, []string{
					"amelia@mergington.edu", "harper@mergington.edu", "b@example.com", "c@example.com",
				})
			})
		})
	})
}

func TestService_Concurrency(t *testing.T) {
	Convey("Given many goroutines targeting one activity", t, func() {
		svc, _ := newService()
		ctx := context.Background()

		Convey("When they all sign up the same email", func() {
			const n = 100
			var wg sync.WaitGroup
			var mu sync.Mutex
			succeeded := 0
			wg.Add(n)
			for i := 0; i < n; i++ {
				go func() {
					defer wg.Done()
					if _, err := svc.SignUp(ctx, "Drama Club", "racer@example.com"); err == nil {
						mu.Lock()
						succeeded++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			Convey("Then exactly one succeeds and the roster has it once", func() {
				So(succeeded, ShouldEqual, 1)
				So(roster.Duplicates(participants(svc, "Drama Club")), ShouldBeEmpty)
				So(participants(svc, "Drama Club"), ShouldHaveLength, 3)
			})
		})

		Convey("When more distinct emails race for seats than there is capacity", func() {
			const n = 50 // Basketball Team: 15 seats, 2 taken
			var wg sync.WaitGroup
			wg.Add(n)
			for i := 0; i < n; i++ {
				go func(i int) {
					defer wg.Done()
					_, _ = svc.SignUp(ctx, "Basketball Team", fmt.Sprintf("player%d@example.com", i))
				}(i)
			}
			wg.Wait()

			Convey("Then the roster stops exactly at capacity", func() {
				a, err := svc.Activity(ctx, "Basketball Team")
				So(err, ShouldBeNil)
				So(len(a.Participants), ShouldEqual, a.MaxParticipants)
				So(roster.Duplicates(a.Participants), ShouldBeEmpty)
			})
		})
	})
}

// mapCatalog is a Catalog built only on domain types.
type mapCatalog map[string]model.Activity

func (c mapCatalog) Get(_ context.Context, name string) (model.Activity, error) {
	a, ok := c[name]
	if !ok {
		return model.Activity{}, fmt.Errorf("%q: %w", name, model.ErrActivityNotFound)
	}
	return a.Clone(), nil
}

func (c mapCatalog) ListAll(context.Context) (map[string]model.Activity, error) {
	out := make(map[string]model.Activity, len(c))
	for name, a := range c {
		out[name] = a.Clone()
	}
	return out, nil
}

func (c mapCatalog) Update(_ context.Context, name string, fn model.MutateFunc) (model.Activity, error) {
	a, ok := c[name]
	if !ok {
		return model.Activity{}, fmt.Errorf("%q: %w", name, model.ErrActivityNotFound)
	}
	a = a.Clone()
	if err := fn(&a); err != nil {
		return model.Activity{}, err
	}
	c[name] = a
	return a.Clone(), nil
}

func TestService_DomainCatalog(t *testing.T) {
	Convey("Given a signup service over a catalog with no repository behind it", t, func() {
		ctx := context.Background()
		svc := signup.New(mapCatalog{
			"Chess Club": {Name: "Chess Club", MaxParticipants: 2, Participants: []string{"michael@mergington.edu"}},
		})

		Convey("When signing up for an existing activity", func() {
			res, err := svc.SignUp(ctx, "Chess Club", "emma@mergington.edu")

			Convey("Then the roster grows", func() {
				So(err, ShouldBeNil)
				So(res.Activity.Participants, ShouldResemble, []string{"michael@mergington.edu", "emma@mergington.edu"})
			})
		})

		Convey("When the catalog reports model.ErrActivityNotFound", func() {
			_, signErr := svc.SignUp(ctx, "Drama Club", "emma@mergington.edu")
			_, unregErr := svc.Unregister(ctx, "Drama Club", "emma@mergington.edu")

			Convey("Then both operations surface signup.ErrActivityNotFound", func() {
				So(errors.Is(signErr, signup.ErrActivityNotFound), ShouldBeTrue)
				So(errors.Is(unregErr, signup.ErrActivityNotFound), ShouldBeTrue)
			})
		})
	})
}
