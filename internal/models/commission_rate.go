package models

// CommissionRate is a versioned commission configuration document. Updates
// insert a new row rather than mutating the current one; the engine always
// reads the most recently created version.
type CommissionRate struct {
	Base
	// ForexRewards maps a forex pair to the one-time referral reward (cents)
	// paid the first time a referee opens a position in that pair.
	ForexRewards map[string]int64 `gorm:"serializer:json" json:"forex_rewards"`
	// Daily commission rates per referral level, as fractions of the day's
	// ROI amount (0.10 = 10%).
	DailyLevel1 float64 `gorm:"not null" json:"daily_level1"`
	DailyLevel2 float64 `gorm:"not null" json:"daily_level2"`
	DailyLevel3 float64 `gorm:"not null" json:"daily_level3"`
}

// LevelRate returns the daily commission rate for a referral level (1-3).
// Unknown levels pay nothing.
func (c *CommissionRate) LevelRate(level int) float64 {
	switch level {
	case 1:
		return c.DailyLevel1
	case 2:
		return c.DailyLevel2
	case 3:
		return c.DailyLevel3
	}
	return 0
}
