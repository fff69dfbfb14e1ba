// ABOUTME: Versioned record migrations for older stored policy arrays
// ABOUTME: Each step fills a field that earlier versions did not persist
package storage

import (
	"time"

	"github.com/harperreed/insuretrack/models"
)

type migration struct {
	version int
	name    string
	apply   func(p *models.Policy, now time.Time) bool
}

var migrations = []migration{
	{
		version: 1,
		name:    "default renewal frequency",
		apply: func(p *models.Policy, _ time.Time) bool {
			if p.RenewalFrequency != "" {
				return false
			}
			p.RenewalFrequency = models.FrequencyYearly
			return true
		},
	},
	{
		version: 2,
		name:    "default timestamps",
		apply: func(p *models.Policy, now time.Time) bool {
			changed := false
			if p.CreatedAt.IsZero() {
				p.CreatedAt = now
				changed = true
			}
			if p.UpdatedAt.IsZero() {
				p.UpdatedAt = now
				if p.CreatedAt.After(now) {
					p.UpdatedAt = p.CreatedAt
				}
				changed = true
			}
			if p.CreatedAt.After(p.UpdatedAt) {
				p.CreatedAt = p.UpdatedAt
				changed = true
			}
			return changed
		},
	},
}

// Migrate runs every migration over a copy of policies and reports whether any record changed.
func Migrate(policies []models.Policy, now time.Time) ([]models.Policy, bool) {
	out := make([]models.Policy, len(policies))
	copy(out, policies)

	changed := false
	for _, m := range migrations {
		for i := range out {
			if m.apply(&out[i], now) {
				changed = true
			}
		}
	}
	return out, changed
}
