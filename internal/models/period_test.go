package models

import (
	"errors"
	"testing"
)

func TestDerivePeriodCoversBookableRange(t *testing.T) {
	t.Parallel()

	counts := map[PeriodID]int{}
	for week := MinWeek; week <= MaxWeek; week++ {
		period, err := DerivePeriod(week)
		if err != nil {
			t.Fatalf("DerivePeriod(%d) unexpected error: %v", week, err)
		}
		counts[period]++
	}

	if counts[PeriodSpring] != 10 || counts[PeriodSummer] != 10 || counts[PeriodFall] != 11 {
		t.Fatalf("unexpected period partition: %#v", counts)
	}
}

func TestDerivePeriodBoundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		week int
		want PeriodID
	}{
		{week: 14, want: PeriodSpring},
		{week: 23, want: PeriodSpring},
		{week: 24, want: PeriodSummer},
		{week: 33, want: PeriodSummer},
		{week: 34, want: PeriodFall},
		{week: 44, want: PeriodFall},
	}

	for _, testCase := range cases {
		got, err := DerivePeriod(testCase.week)
		if err != nil {
			t.Fatalf("DerivePeriod(%d) unexpected error: %v", testCase.week, err)
		}
		if got != testCase.want {
			t.Fatalf("DerivePeriod(%d) = %d, want %d", testCase.week, got, testCase.want)
		}
	}
}

func TestDerivePeriodRejectsWeeksOutsideRange(t *testing.T) {
	t.Parallel()

	for _, week := range []int{-1, 0, 1, 13, 45, 50, 53} {
		if _, err := DerivePeriod(week); !errors.Is(err, ErrInvalidWeek) {
			t.Fatalf("DerivePeriod(%d) error = %v, want ErrInvalidWeek", week, err)
		}
		if err := ValidateWeek(week); !errors.Is(err, ErrInvalidWeek) {
			t.Fatalf("ValidateWeek(%d) error = %v, want ErrInvalidWeek", week, err)
		}
	}
}

func TestPeriodsAreDisjoint(t *testing.T) {
	t.Parallel()

	all := Periods()
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			if all[i].EndWeek >= all[j].StartWeek {
				t.Fatalf("periods %d and %d overlap", all[i].ID, all[j].ID)
			}
		}
	}
	if all[0].StartWeek != MinWeek || all[len(all)-1].EndWeek != MaxWeek {
		t.Fatalf("periods do not span %d-%d", MinWeek, MaxWeek)
	}
}

func TestPeriodNameFallsBackToUnknown(t *testing.T) {
	t.Parallel()

	if got := PeriodName(PeriodSummer); got != "Summer" {
		t.Fatalf("PeriodName(2) = %q, want Summer", got)
	}
	if got := PeriodName(PeriodID(9)); got != "Unknown" {
		t.Fatalf("PeriodName(9) = %q, want Unknown", got)
	}
}

func TestPeriodLabelAndWeeks(t *testing.T) {
	t.Parallel()

	fall, ok := FindPeriod(PeriodFall)
	if !ok {
		t.Fatal("expected fall period")
	}
	if fall.Label() != "Fall (weeks 34-44)" {
		t.Fatalf("unexpected label %q", fall.Label())
	}
	weeks := fall.Weeks()
	if len(weeks) != fall.TotalWeeks() || weeks[0] != 34 || weeks[len(weeks)-1] != 44 {
		t.Fatalf("unexpected weeks %v", weeks)
	}
}

func TestNormalizeUsername(t *testing.T) {
	t.Parallel()

	if got := NormalizeUsername("  Anna "); got != "anna" {
		t.Fatalf("NormalizeUsername() = %q, want anna", got)
	}
}
