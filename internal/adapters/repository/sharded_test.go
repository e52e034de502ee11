package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/vectordraw/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func attempt(exerciseID, studentID string, correct bool) model.Attempt {
	r := model.Result{Correct: correct, Msg: "msg"}
	return model.Attempt{
		ExerciseID: exerciseID,
		StudentID:  studentID,
		Result:     r,
		Score:      model.Score(r),
		MaxScore:   model.MaxScore,
		GradedAt:   time.Now(),
	}
}

func TestShardedStoreAttempts(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty store", t, func() {
		s := NewShardedStore(ctx, WithShardCount(4))
		defer s.Close()
		So(s.Count(ctx), ShouldEqual, 0)
		So(len(s.shards), ShouldEqual, 4)

		Convey("When an attempt is saved", func() {
			So(s.SaveAttempt(ctx, attempt("ex1", "alice", false)), ShouldBeNil)

			Convey("Then it is the latest attempt", func() {
				a, err := s.LatestAttempt(ctx, "ex1", "alice")
				So(err, ShouldBeNil)
				So(a.Result.Correct, ShouldBeFalse)
				So(s.Count(ctx), ShouldEqual, 1)
			})

			Convey("Then a newer attempt replaces it", func() {
				So(s.SaveAttempt(ctx, attempt("ex1", "alice", true)), ShouldBeNil)
				a, err := s.LatestAttempt(ctx, "ex1", "alice")
				So(err, ShouldBeNil)
				So(a.Score, ShouldEqual, 1.0)
				So(s.Count(ctx), ShouldEqual, 1)
			})

			Convey("Then other exercises and students stay separate", func() {
				_, err := s.LatestAttempt(ctx, "ex2", "alice")
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
				_, err = s.LatestAttempt(ctx, "ex1", "bob")
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the attempt has no owner", func() {
			So(errors.Is(s.SaveAttempt(ctx, attempt("", "alice", true)), ErrEmptyKey), ShouldBeTrue)
			So(errors.Is(s.SaveAttempt(ctx, attempt("ex", "", true)), ErrEmptyKey), ShouldBeTrue)
		})
	})
}

func TestShardedStoreSubmissions(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store", t, func() {
		s := NewShardedStore(ctx)
		defer s.Close()

		Convey("When a pending record is replaced by a graded one", func() {
			So(s.PutSubmission(ctx, model.SubmissionRecord{ID: "s1", Status: model.StatusPending}), ShouldBeNil)
			So(s.PutSubmission(ctx, model.SubmissionRecord{ID: "s1", Status: model.StatusGraded, Score: 1}), ShouldBeNil)

			Convey("Then the latest state is returned", func() {
				rec, err := s.Submission(ctx, "s1")
				So(err, ShouldBeNil)
				So(rec.Status, ShouldEqual, model.StatusGraded)
				So(s.SubmissionCount(ctx), ShouldEqual, 1)
			})

			Convey("Then deleting forgets it", func() {
				s.DeleteSubmission(ctx, "s1")
				_, err := s.Submission(ctx, "s1")
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the record has no id", func() {
			So(errors.Is(s.PutSubmission(ctx, model.SubmissionRecord{}), ErrEmptyKey), ShouldBeTrue)
		})
	})
}

func TestShardedStoreConcurrency(t *testing.T) {
	ctx := context.Background()

	Convey("Given concurrent writers across many students", t, func() {
		s := NewShardedStore(ctx, WithShardCount(8), WithMetricsUpdateInterval(time.Millisecond))
		var wg sync.WaitGroup
		for w := range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range 100 {
					_ = s.SaveAttempt(ctx, attempt("ex", fmt.Sprintf("student-%d-%d", w, i), i%2 == 0))
					_ = s.PutSubmission(ctx, model.SubmissionRecord{ID: fmt.Sprintf("sub-%d-%d", w, i)})
				}
			}()
		}
		wg.Wait()
		s.updateMetrics()
		So(s.Close(), ShouldBeNil)
		So(s.Close(), ShouldBeNil)

		Convey("Then every record is stored", func() {
			So(s.Count(ctx), ShouldEqual, 800)
			So(s.SubmissionCount(ctx), ShouldEqual, 800)
		})

		Convey("Then keys spread over more than one shard", func() {
			used := 0
			for _, sh := range s.shards {
				if len(sh.attempts) > 0 {
					used++
				}
			}
			So(used, ShouldBeGreaterThan, 1)
		})
	})
}
