package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"examprep/backend/lock"
	"examprep/backend/metrics"
	"examprep/backend/models"
	"examprep/backend/repository"
	"examprep/backend/utils"
)

const (
	weakTopicThreshold   = 60
	strongTopicThreshold = 80
	strongTopicMinTries  = 3
	maxTopicList         = 10
	maxWeeklyEntries     = 52
	maxAnalyticsRetries  = 5
)

// ErrAnalyticsConflict is returned when every optimistic write lost a race.
var ErrAnalyticsConflict = errors.New("analytics update kept conflicting with concurrent writers")

// MasteryLevel buckets a topic accuracy percentage.
func MasteryLevel(accuracy int) string {
	switch {
	case accuracy >= 90:
		return models.MasteryExpert
	case accuracy >= 75:
		return models.MasteryAdvanced
	case accuracy >= 60:
		return models.MasteryIntermediate
	default:
		return models.MasteryBeginner
	}
}

// FoldAnalytics returns old with one completed attempt applied. Calendar
// days are taken in now's location. old is not modified.
func FoldAnalytics(old models.Analytics, subjectID string, r GradeResult, now time.Time) models.Analytics {
	next := old
	next.SubjectPerformance = append([]models.SubjectPerformance(nil), old.SubjectPerformance...)
	next.TopicMastery = append([]models.TopicMastery(nil), old.TopicMastery...)
	next.WeeklyProgress = append([]models.WeeklyProgress(nil), old.WeeklyProgress...)
	next.Weaknesses = append([]string(nil), old.Weaknesses...)
	next.Strengths = append([]string(nil), old.Strengths...)

	next.AverageScore = runningMean(old.AverageScore, old.TotalTests, r.Percentage)
	next.TotalTests = old.TotalTests + 1
	next.TotalStudyTime = old.TotalStudyTime + r.TimeTaken

	next.CurrentStreak, next.LongestStreak = foldStreak(old.LastStudyDate, old.CurrentStreak, old.LongestStreak, now)
	studied := now
	next.LastStudyDate = &studied

	next.SubjectPerformance = foldSubject(next.SubjectPerformance, subjectID, r.Percentage, now)
	next.TopicMastery = foldMastery(next.TopicMastery, r.TopicPerformance, now)
	next.WeeklyProgress = foldWeek(next.WeeklyProgress, r, now)
	next.Weaknesses = foldWeaknesses(next.Weaknesses, r.TopicPerformance)
	next.Strengths = strengthsOf(next.TopicMastery)

	return next
}

func runningMean(mean float64, n int, value int) float64 {
	return (mean*float64(n) + float64(value)) / float64(n+1)
}

func foldStreak(last *time.Time, current, longest int, now time.Time) (int, int) {
	switch {
	case last == nil:
		current = 1
	default:
		switch gap := calendarDaysBetween(*last, now); {
		case gap == 1:
			current++
		case gap > 1:
			current = 1
		case current == 0:
			// Studied before without a streak on record.
			current = 1
		}
	}
	if current > longest {
		longest = current
	}
	return current, longest
}

// calendarDaysBetween counts midnights crossed from a to b in b's location.
func calendarDaysBetween(a, b time.Time) int {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

func foldSubject(perf []models.SubjectPerformance, subjectID string, percentage int, now time.Time) []models.SubjectPerformance {
	for i := range perf {
		if perf[i].SubjectID == subjectID {
			perf[i].AverageScore = runningMean(perf[i].AverageScore, perf[i].TotalTests, percentage)
			perf[i].TotalTests++
			perf[i].LastTested = now
			return perf
		}
	}
	return append(perf, models.SubjectPerformance{
		SubjectID:    subjectID,
		TotalTests:   1,
		AverageScore: float64(percentage),
		LastTested:   now,
	})
}

func foldMastery(mastery []models.TopicMastery, topics []models.TopicPerformance, now time.Time) []models.TopicMastery {
	index := make(map[string]int, len(mastery))
	for i, m := range mastery {
		index[m.Topic] = i
	}
	for _, tp := range topics {
		i, ok := index[tp.Topic]
		if !ok {
			mastery = append(mastery, models.TopicMastery{Topic: tp.Topic})
			i = len(mastery) - 1
			index[tp.Topic] = i
		}
		m := &mastery[i]
		m.Attempted += tp.Attempted
		m.Correct += tp.Correct
		m.Accuracy = Percentage(m.Correct, m.Attempted)
		m.Level = MasteryLevel(m.Accuracy)
		m.LastTested = now
	}
	return mastery
}

// weekStart is the Monday of now's week, as a date.
func weekStart(now time.Time) string {
	offset := (int(now.Weekday()) + 6) % 7
	return now.AddDate(0, 0, -offset).Format("2006-01-02")
}

func foldWeek(weeks []models.WeeklyProgress, r GradeResult, now time.Time) []models.WeeklyProgress {
	key := weekStart(now)
	found := false
	for i := range weeks {
		if weeks[i].WeekStart == key {
			weeks[i].AverageScore = runningMean(weeks[i].AverageScore, weeks[i].TestsTaken, r.Percentage)
			weeks[i].TestsTaken++
			weeks[i].StudyTime += r.TimeTaken
			found = true
			break
		}
	}
	if !found {
		weeks = append(weeks, models.WeeklyProgress{
			WeekStart:    key,
			TestsTaken:   1,
			AverageScore: float64(r.Percentage),
			StudyTime:    r.TimeTaken,
		})
	}
	if len(weeks) > maxWeeklyEntries {
		weeks = weeks[len(weeks)-maxWeeklyEntries:]
	}
	return weeks
}

// foldWeaknesses moves this attempt's weak topics to the end of the list and
// keeps the most recent entries.
func foldWeaknesses(weaknesses []string, topics []models.TopicPerformance) []string {
	var weak []string
	isWeak := make(map[string]bool)
	for _, tp := range topics {
		if tp.Percentage < weakTopicThreshold && !isWeak[tp.Topic] {
			isWeak[tp.Topic] = true
			weak = append(weak, tp.Topic)
		}
	}
	if len(weak) == 0 {
		return weaknesses
	}

	kept := make([]string, 0, len(weaknesses)+len(weak))
	seen := make(map[string]bool, len(weaknesses))
	for _, w := range weaknesses {
		if isWeak[w] || seen[w] {
			continue
		}
		seen[w] = true
		kept = append(kept, w)
	}
	kept = append(kept, weak...)
	if len(kept) > maxTopicList {
		kept = kept[len(kept)-maxTopicList:]
	}
	return kept
}

func strengthsOf(mastery []models.TopicMastery) []string {
	strong := make([]models.TopicMastery, 0, len(mastery))
	for _, m := range mastery {
		if m.Accuracy >= strongTopicThreshold && m.Attempted >= strongTopicMinTries {
			strong = append(strong, m)
		}
	}
	sort.SliceStable(strong, func(i, j int) bool {
		return strong[i].Accuracy > strong[j].Accuracy
	})
	if len(strong) > maxTopicList {
		strong = strong[:maxTopicList]
	}
	out := make([]string, 0, len(strong))
	for _, m := range strong {
		out = append(out, m.Topic)
	}
	return out
}

// AnalyticsUpdater folds graded attempts into the user's analytics row. Each
// user's updates are serialized by the locker and written with a version
// check, so concurrent submissions never drop one another.
type AnalyticsUpdater struct {
	repo    repository.AnalyticsRepository
	locker  lock.Locker
	metrics *metrics.Metrics
	log     *utils.Logger
	loc     *time.Location
	now     func() time.Time
}

func NewAnalyticsUpdater(
	repo repository.AnalyticsRepository,
	locker lock.Locker,
	loc *time.Location,
	m *metrics.Metrics,
	log *utils.Logger,
) *AnalyticsUpdater {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsUpdater{
		repo:    repo,
		locker:  locker,
		metrics: m,
		log:     log.With("component", "analytics"),
		loc:     loc,
		now:     time.Now,
	}
}

func (u *AnalyticsUpdater) Apply(ctx context.Context, userID, subjectID string, r GradeResult) (*models.Analytics, error) {
	unlock, err := u.locker.Lock(ctx, "analytics:"+userID)
	if err != nil {
		return nil, fmt.Errorf("lock analytics: %w", err)
	}
	defer unlock()

	for attempt := 1; attempt <= maxAnalyticsRetries; attempt++ {
		current, err := u.repo.GetOrCreate(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load analytics: %w", err)
		}

		next := FoldAnalytics(*current, subjectID, r, u.now().In(u.loc))
		ok, err := u.repo.CompareAndSwap(ctx, &next, current.Version)
		if err != nil {
			return nil, fmt.Errorf("write analytics: %w", err)
		}
		if ok {
			return &next, nil
		}

		u.metrics.AnalyticsConflict()
		u.log.Warn("analytics version conflict", "user_id", userID, "attempt", attempt)
	}
	return nil, ErrAnalyticsConflict
}
