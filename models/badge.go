package models

// BadgeThreshold awards Badge once a player reaches Level
type BadgeThreshold struct {
	Level int64
	Badge string
}

// BadgeThresholds lists level badges in ascending level order
var BadgeThresholds = []BadgeThreshold{
	{Level: 5, Badge: "Regular"},
	{Level: 10, Badge: "Veteran"},
	{Level: 25, Badge: "Elite"},
	{Level: 50, Badge: "Legend"},
}

// BadgesUpTo returns every badge earned at or below level
func BadgesUpTo(level int64) []string {
	var badges []string
	for _, t := range BadgeThresholds {
		if t.Level <= level {
			badges = append(badges, t.Badge)
		}
	}
	return badges
}
