package memory

import (
	"context"
	"sync"

	"growth-hub-quiz/internal/domain"
)

// ProgressStore records completions in memory, mirroring the Postgres recorder.
type ProgressStore struct {
	pointsPerCompletion int

	mu       sync.Mutex
	learners map[string]*learnerProgress
}

type learnerProgress struct {
	points           int
	completedLessons map[string]map[int]bool
	completedCourses map[string]bool
	currentLessons   map[string]int
	badges           map[string]bool
}

func NewProgressStore(pointsPerCompletion int) *ProgressStore {
	return &ProgressStore{
		pointsPerCompletion: pointsPerCompletion,
		learners:            make(map[string]*learnerProgress),
	}
}

// RecordCompletion marks the lesson or course complete. Points are awarded
// only the first time a given quiz is completed.
func (s *ProgressStore) RecordCompletion(_ context.Context, c domain.Completion) (domain.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lp := s.learner(c.LearnerID)
	course := c.Ref.CourseID
	progress := domain.Progress{LearnerID: c.LearnerID}

	switch c.Ref.Kind {
	case domain.KindLesson:
		lessons := lp.completedLessons[course]
		if lessons == nil {
			lessons = make(map[int]bool)
			lp.completedLessons[course] = lessons
		}
		progress.NewlyCompleted = !lessons[c.Ref.Lesson]
		lessons[c.Ref.Lesson] = true
		if c.FinalLesson() {
			lp.completedCourses[course] = true
			delete(lp.currentLessons, course)
		} else if lp.currentLessons[course] <= c.Ref.Lesson {
			lp.currentLessons[course] = c.Ref.Lesson + 1
		}
	case domain.KindCourse:
		progress.NewlyCompleted = !lp.badges[course]
		lp.badges[course] = true
		lp.completedCourses[course] = true
		delete(lp.currentLessons, course)
		progress.BadgeAwarded = true
	default:
		return domain.Progress{}, domain.ErrInvalidArgument
	}

	if progress.NewlyCompleted {
		lp.points += s.pointsPerCompletion
	}
	progress.Points = lp.points
	progress.CourseComplete = lp.completedCourses[course]
	progress.CurrentLesson = lp.currentLessons[course]
	return progress, nil
}

// Points returns the learner's current total.
func (s *ProgressStore) Points(learnerID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lp, ok := s.learners[learnerID]; ok {
		return lp.points
	}
	return 0
}

func (s *ProgressStore) learner(id string) *learnerProgress {
	lp, ok := s.learners[id]
	if !ok {
		lp = &learnerProgress{
			completedLessons: make(map[string]map[int]bool),
			completedCourses: make(map[string]bool),
			currentLessons:   make(map[string]int),
			badges:           make(map[string]bool),
		}
		s.learners[id] = lp
	}
	return lp
}
