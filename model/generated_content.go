package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ContentStatusDraft     = "draft"
	ContentStatusScheduled = "scheduled"
	ContentStatusPublished = "published"
	ContentStatusArchived  = "archived"
)

/*

GeneratedContent is one generation request issued by a user

Id: primary key
UserId: owner
Topic / Tone / Pov: the generation inputs, immutable after creation
WritingSample: optional style anchor text the prompt is built around
StyleAnalysis: JSON blob the model returned describing the writing sample
Status: draft | scheduled | published | archived, the only mutable column

*/
type GeneratedContent struct {
	Id            string `gorm:"primaryKey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	UserId        string `gorm:"index"`
	Topic         string
	Tone          string
	Pov           string
	WritingSample string
	StyleAnalysis datatypes.JSON
	Status        string
}
