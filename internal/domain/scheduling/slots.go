package scheduling

// DailySlots is the clinic's fixed daily slot template: half-hour slots in a
// morning and an afternoon block. Every doctor shares the same template.
var DailySlots = []string{
	"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"14:00", "14:30", "15:00", "15:30", "16:00", "16:30",
}

// SlotAvailability is one entry of the slot calendar for a doctor and date.
type SlotAvailability struct {
	Time        string `json:"time"`
	IsAvailable bool   `json:"isAvailable"`
}

// ValidSlot reports whether t is one of the template's slot times.
func ValidSlot(t string) bool {
	for _, s := range DailySlots {
		if s == t {
			return true
		}
	}
	return false
}
