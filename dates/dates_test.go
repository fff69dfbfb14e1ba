package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "1990-05-01", want: day(1990, time.May, 1)},
		{in: "2025-7-1", want: day(2025, time.July, 1)},
		{in: " 2030-01-01 ", want: day(2030, time.January, 1)},
		{in: "2030-01-01T10:20:30Z", want: day(2030, time.January, 1)},
		{in: "not-a-date", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
		})
	}
}

func TestCalculateAgeAt(t *testing.T) {
	now := time.Date(2026, time.October, 16, 15, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		dob  time.Time
		want int
	}{
		{"birthday already passed", day(1990, time.May, 1), 36},
		{"birthday today", day(1990, time.October, 16), 36},
		{"birthday tomorrow", day(1990, time.October, 17), 35},
		{"birthday later this year", day(1990, time.December, 1), 35},
		{"leap day", day(2004, time.February, 29), 22},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateAgeAt(tt.dob, now))
		})
	}
}

func TestDaysUntilRenewalAt(t *testing.T) {
	now := time.Date(2026, time.October, 16, 23, 30, 0, 0, time.Local)

	assert.Equal(t, 0, DaysUntilRenewalAt(day(2026, time.October, 16), now))
	assert.Equal(t, 1, DaysUntilRenewalAt(day(2026, time.October, 17), now))
	assert.Equal(t, 7, DaysUntilRenewalAt(day(2026, time.October, 23), now))
	assert.Equal(t, -1, DaysUntilRenewalAt(day(2026, time.October, 15), now))
	assert.Equal(t, 77, DaysUntilRenewalAt(day(2027, time.January, 1), now))
}

func TestIsRenewalDueSoonBoundaries(t *testing.T) {
	now := time.Date(2026, time.October, 16, 9, 0, 0, 0, time.Local)

	assert.True(t, IsRenewalDueSoonAt(now.AddDate(0, 0, 7), now, DefaultDueSoonDays), "7 days out is due soon")
	assert.False(t, IsRenewalDueSoonAt(now.AddDate(0, 0, 8), now, DefaultDueSoonDays), "8 days out is not due soon")
	assert.True(t, IsRenewalDueSoonAt(now, now, DefaultDueSoonDays), "today is due soon")
	assert.False(t, IsRenewalDueSoonAt(now.AddDate(0, 0, -1), now, DefaultDueSoonDays), "overdue is not due soon")
}

func TestAgeGroup(t *testing.T) {
	tests := map[int]string{
		18:  AgeGroup18to24,
		24:  AgeGroup18to24,
		25:  AgeGroup25to34,
		34:  AgeGroup25to34,
		35:  AgeGroup35to44,
		44:  AgeGroup35to44,
		45:  AgeGroup45to54,
		55:  AgeGroup55to64,
		64:  AgeGroup55to64,
		65:  AgeGroup65Plus,
		100: AgeGroup65Plus,
	}
	for age, want := range tests {
		assert.Equal(t, want, AgeGroup(age), "age %d", age)
	}
}

func TestAgeGroupFromBirthDate(t *testing.T) {
	now := time.Date(2026, time.October, 16, 12, 0, 0, 0, time.Local)

	age34 := day(1991, time.October, 17)
	age35 := day(1991, time.October, 16)

	assert.Equal(t, AgeGroup25to34, AgeGroup(CalculateAgeAt(age34, now)))
	assert.Equal(t, AgeGroup35to44, AgeGroup(CalculateAgeAt(age35, now)))
}

func TestDisplayFormats(t *testing.T) {
	d := day(2030, time.January, 1)
	assert.Equal(t, "Jan 1, 2030", FormatDate(d))
	assert.Equal(t, "Jan 2030", MonthKey(d))
	assert.Equal(t, "2030-01-01", Format(d))
}

func TestSameMonthDay(t *testing.T) {
	assert.True(t, SameMonthDay(day(1990, time.May, 1), day(2026, time.May, 1)))
	assert.False(t, SameMonthDay(day(1990, time.May, 1), day(2026, time.May, 2)))
}
