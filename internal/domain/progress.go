package domain

import "time"

// Completion is what a finished attempt hands to the progress collaborator.
type Completion struct {
	LearnerID    string
	Ref          QuizRef
	TotalLessons int
	Report       Report
	CompletedAt  time.Time
}

// FinalLesson reports whether the completion closes the course: either the
// end-of-course quiz or the lesson quiz of the last lesson.
func (c Completion) FinalLesson() bool {
	if c.Ref.Kind == KindCourse {
		return true
	}
	return c.TotalLessons > 0 && c.Ref.Lesson >= c.TotalLessons
}

// Progress is the learner state after a completion was recorded.
type Progress struct {
	LearnerID      string `json:"learnerId"`
	Points         int    `json:"points"`
	NewlyCompleted bool   `json:"newlyCompleted"`
	CourseComplete bool   `json:"courseComplete"`
	// BadgeAwarded is set when the end-of-course quiz earned the course badge.
	BadgeAwarded bool `json:"badgeAwarded"`
	// CurrentLesson is the next lesson to take in the course, 0 once the course is complete.
	CurrentLesson int `json:"currentLesson"`
}

// LeaderboardEntry is a snapshot-friendly view of a learner's points.
type LeaderboardEntry struct {
	LearnerID string `json:"learnerId"`
	Points    int    `json:"points"`
	Rank      int    `json:"rank"`
}

// Leaderboard captures the ordered points table.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
