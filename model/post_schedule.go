package model

import "time"

const (
	ScheduleStatusPending   = "pending"
	ScheduleStatusPublished = "published"
	ScheduleStatusCanceled  = "canceled"
)

/*

PostSchedule is the intent to publish a post at a future time

At most one pending schedule per post is intended. Rescheduling replaces the
previous rows (delete then insert, inside one transaction). An external cron
trigger owns acting on due schedules, this service only stores them.

*/
type PostSchedule struct {
	Id            string `gorm:"primaryKey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	PostId        string `gorm:"index"`
	UserId        string `gorm:"index"`
	ScheduledTime time.Time
	Status        string
}
