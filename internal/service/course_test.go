package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkstudio/studio-api/internal/domain"
)

func TestWeekStart(t *testing.T) {
	// 2026-03-02 is a Monday.
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   time.Time
	}{
		{"monday midnight", monday},
		{"monday evening", monday.Add(22 * time.Hour)},
		{"wednesday", monday.AddDate(0, 0, 2).Add(15 * time.Hour)},
		{"sunday night", monday.AddDate(0, 0, 6).Add(23 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, monday, weekStart(tt.in))
		})
	}
}

func TestSchedule_MaterializesTwoWeeks(t *testing.T) {
	f := newFixture(t)

	// Wednesday noon of the week starting 2026-03-02.
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	f.courseSvc.now = func() time.Time { return now }

	schedule, err := f.courseSvc.Schedule(context.Background())
	require.NoError(t, err)
	require.Len(t, schedule, 12)

	current, next := 0, 0
	for i, instance := range schedule {
		assert.Equal(t, 9, instance.MaxSlots)
		assert.True(t, instance.IsBookable)
		assert.Equal(t, 0, instance.Enrolled)
		nextMonday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, instance.StartsAt.Before(nextMonday), instance.Week == domain.WeekCurrent)
		if instance.Week == domain.WeekCurrent {
			current++
		} else {
			next++
		}
		if i > 0 {
			assert.False(t, instance.StartsAt.Before(schedule[i-1].StartsAt))
		}
	}
	assert.Equal(t, 6, current)
	assert.Equal(t, 6, next)

	// Monday and Tuesday classes of the current week are already past;
	// Wednesday 19:00 and everything later is not.
	assert.True(t, schedule[0].IsPast)
	assert.Equal(t, "Renfo / Pilates", schedule[0].Name)
	assert.True(t, schedule[1].IsPast)
	assert.True(t, schedule[2].IsPast)
	assert.False(t, schedule[3].IsPast)
	assert.Equal(t, "Cross-training / Cardio", schedule[3].Name)

	// A second projection must reuse the same instances, not duplicate them.
	again, err := f.courseSvc.Schedule(context.Background())
	require.NoError(t, err)
	require.Len(t, again, 12)
	assert.Equal(t, schedule[0].ID, again[0].ID)
}

func TestSchedule_IncludesExceptionalInWindow(t *testing.T) {
	f := newFixture(t)

	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	f.courseSvc.now = func() time.Time { return now }
	ctx := context.Background()

	inWindow, err := f.courseSvc.CreateExceptional(ctx, "Open Day", now.AddDate(0, 0, 3), 20)
	require.NoError(t, err)

	_, err = f.courseSvc.CreateExceptional(ctx, "Too Far Out", now.AddDate(0, 0, 21), 20)
	require.NoError(t, err)

	schedule, err := f.courseSvc.Schedule(ctx)
	require.NoError(t, err)
	require.Len(t, schedule, 13)

	var found *domain.CourseInstance
	for i := range schedule {
		if schedule[i].IsExceptional {
			require.Nil(t, found)
			found = &schedule[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, inWindow.ID, found.ID)
	assert.Equal(t, "Open Day", found.Name)
	assert.Equal(t, 20, found.MaxSlots)
	assert.Equal(t, domain.WeekCurrent, found.Week)
}

func TestCreateExceptional_PastRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.courseSvc.CreateExceptional(context.Background(),
		"Yesterday", time.Now().Add(-time.Hour), 9)

	require.ErrorIs(t, err, ErrCoursePast)
}

func TestCreateExceptional_DefaultSlots(t *testing.T) {
	f := newFixture(t)

	course, err := f.courseSvc.CreateExceptional(context.Background(),
		"Open Day", time.Now().Add(time.Hour), 0)
	require.NoError(t, err)

	assert.Equal(t, templateMaxSlots, course.MaxSlots)
}

func TestMemberBookings(t *testing.T) {
	f := newFixture(t)
	member := f.createMember(t, "jane@example.com")
	f.buyPack(t, member.ID, domain.KindCollective, 10)
	course := f.futureCourse(t, 9)
	ctx := context.Background()

	enrollment, err := f.ledgerSvc.Enroll(ctx, member.ID, course.ID, true)
	require.NoError(t, err)

	bookings, err := f.courseSvc.MemberBookings(ctx, member.ID)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, enrollment.ID, bookings[0].EnrollmentID)
	assert.Equal(t, "Special Pilates", bookings[0].CourseName)
	assert.True(t, bookings[0].IsExceptional)
	assert.False(t, bookings[0].IsPast)

	require.NoError(t, f.ledgerSvc.CancelEnrollment(ctx, enrollment.ID))

	bookings, err = f.courseSvc.MemberBookings(ctx, member.ID)
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestEnroll_RegularScheduleInstance(t *testing.T) {
	f := newFixture(t)
	member := f.createMember(t, "jane@example.com")
	f.buyPack(t, member.ID, domain.KindCollective, 10)
	ctx := context.Background()

	schedule, err := f.courseSvc.Schedule(ctx)
	require.NoError(t, err)

	var target *domain.CourseInstance
	for i := range schedule {
		if !schedule[i].IsPast && !schedule[i].IsExceptional {
			target = &schedule[i]
			break
		}
	}
	require.NotNil(t, target)

	_, err = f.ledgerSvc.Enroll(ctx, member.ID, target.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 9, f.balance(t, member.ID).Collective)

	schedule, err = f.courseSvc.Schedule(ctx)
	require.NoError(t, err)
	for _, instance := range schedule {
		if instance.ID == target.ID && !instance.IsExceptional {
			assert.Equal(t, 1, instance.Enrolled)
		}
	}
}
