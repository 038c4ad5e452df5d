package model

type ScheduleEntryType string

const (
	ScheduleWork   ScheduleEntryType = "work"
	ScheduleBreak  ScheduleEntryType = "break"
	ScheduleDayOff ScheduleEntryType = "day_off"
)

// ScheduleEntry is one row of a staff member's flat per-day schedule. Day is a
// calendar date (2006-01-02) and the times are local clock times (15:04) with
// no zone attached; they are interpreted in the owning business's timezone
// when ranges for a day are built.
type ScheduleEntry struct {
	ID        string            `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	StaffID   string            `json:"staff_id" bson:"staff_id" validate:"required,mongodb"`
	Type      ScheduleEntryType `json:"type" bson:"type" validate:"required,oneof=work break day_off"`
	Day       string            `json:"day" bson:"day" validate:"required,datetime=2006-01-02"`
	StartTime string            `json:"start_time" bson:"start_time" validate:"required,datetime=15:04"`
	EndTime   string            `json:"end_time" bson:"end_time" validate:"required,datetime=15:04,gtfield=StartTime"`
}
