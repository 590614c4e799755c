package models

import (
	"testing"
	"time"
)

func TestLatestFollowTime(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		level ClientLevel
		want  *time.Time
	}{
		{ClientLevelDeal, nil},
		{ClientLevelFirst, ptrTime(base.Add(24 * time.Hour))},
		{ClientLevelSecond, ptrTime(base.Add(7 * 24 * time.Hour))},
		{ClientLevelThird, ptrTime(base.Add(30 * 24 * time.Hour))},
		{ClientLevelFourth, nil},
		{ClientLevelLost, nil},
	}

	for _, tc := range cases {
		client := Client{Level: tc.level, LastFollowTime: base}
		got := client.LatestFollowTime()
		if tc.want == nil {
			if got != nil {
				t.Errorf("level %d: want no deadline, got %v", tc.level, got)
			}
			continue
		}
		if got == nil || !got.Equal(*tc.want) {
			t.Errorf("level %d: deadline = %v, want %v", tc.level, got, tc.want)
		}
	}
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("deal and lost clients never come due", func(t *testing.T) {
		for _, level := range []ClientLevel{ClientLevelDeal, ClientLevelFourth, ClientLevelLost} {
			client := Client{Level: level, LastFollowTime: now.Add(-90 * 24 * time.Hour)}
			if client.IsOverdue(now) {
				t.Errorf("level %d should never be overdue", level)
			}
		}
	})

	t.Run("followed up today is not overdue", func(t *testing.T) {
		client := Client{Level: ClientLevelFirst, LastFollowTime: now.Add(-2 * time.Hour)}
		if client.IsOverdue(now) {
			t.Error("client followed up this morning should not be overdue")
		}
	})

	t.Run("first level comes due the next day", func(t *testing.T) {
		client := Client{Level: ClientLevelFirst, LastFollowTime: now.Add(-24 * time.Hour)}
		if !client.IsOverdue(now) {
			t.Error("first-level client last followed yesterday should be due")
		}
	})

	t.Run("second level not due after two days", func(t *testing.T) {
		client := Client{Level: ClientLevelSecond, LastFollowTime: now.Add(-2 * 24 * time.Hour)}
		if client.IsOverdue(now) {
			t.Error("second-level client has a week, two days in should not be due")
		}
	})

	t.Run("second level due after a week", func(t *testing.T) {
		client := Client{Level: ClientLevelSecond, LastFollowTime: now.Add(-8 * 24 * time.Hour)}
		if !client.IsOverdue(now) {
			t.Error("second-level client past the week deadline should be due")
		}
	})

	t.Run("third level due after a month", func(t *testing.T) {
		client := Client{Level: ClientLevelThird, LastFollowTime: now.Add(-31 * 24 * time.Hour)}
		if !client.IsOverdue(now) {
			t.Error("third-level client past the month deadline should be due")
		}
	})
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
