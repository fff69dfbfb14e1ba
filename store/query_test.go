package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/insuretrack/models"
)

func queryStore(t *testing.T) *Store {
	t.Helper()
	ravi := policyFixture("r", models.CategoryCar, models.FrequencyYearly, 8000, "1985-01-01", "2027-02-01")
	ravi.PolicyholderName = "Ravi Kumar"
	ravi.MobileNumber = "9123456789"
	ravi.CreatedAt = testNow.Add(-2 * time.Hour)

	asha := policyFixture("a", models.CategoryLife, models.FrequencyYearly, 12000, "1990-05-01", "2030-01-01")
	asha.PolicyholderName = "Asha Rao"
	asha.CreatedAt = testNow.Add(-1 * time.Hour)

	meera := policyFixture("m", models.CategoryBike, models.FrequencyMonthly, 300, "2000-03-03", "2026-12-01")
	meera.PolicyholderName = "meera iyer"
	meera.CreatedAt = testNow

	s, _ := newTestStore(t, &fakeRepo{stored: []models.Policy{ravi, asha, meera}})
	return s
}

func ids(policies []models.Policy) []string {
	out := make([]string, 0, len(policies))
	for _, p := range policies {
		out = append(out, p.ID)
	}
	return out
}

func TestFindSorts(t *testing.T) {
	s := queryStore(t)

	tests := []struct {
		order SortOrder
		want  []string
	}{
		{SortByName, []string{"a", "m", "r"}},
		{SortByRenewal, []string{"m", "r", "a"}},
		{SortByPremium, []string{"a", "r", "m"}},
		{SortByCategory, []string{"m", "r", "a"}},
		{SortByRecent, []string{"m", "a", "r"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(s.Find(Query{Sort: tt.order})))
		})
	}
}

func TestFindSearch(t *testing.T) {
	s := queryStore(t)

	assert.Equal(t, []string{"a"}, ids(s.Find(Query{Search: "ASHA"})))
	assert.Equal(t, []string{"r"}, ids(s.Find(Query{Search: "polr"})))
	assert.Equal(t, []string{"r"}, ids(s.Find(Query{Search: "912345"})))
	assert.Empty(t, s.Find(Query{Search: "nobody"}))
}

func TestFindCategoryAndLimit(t *testing.T) {
	s := queryStore(t)

	assert.Equal(t, []string{"m"}, ids(s.Find(Query{Category: models.CategoryBike})))
	assert.Len(t, s.Find(Query{Limit: 2}), 2)
}

func TestParseSortOrder(t *testing.T) {
	o, err := ParseSortOrder("")
	require.NoError(t, err)
	assert.Equal(t, SortByName, o)

	o, err = ParseSortOrder("Premium")
	require.NoError(t, err)
	assert.Equal(t, SortByPremium, o)

	_, err = ParseSortOrder("size")
	assert.Error(t, err)
}
