package publisher

import (
	Logger "github.com/postpilothq/postpilot/utils/log"
)

// Optional pipeline stages (image generation, media attach) report a
// tri-state outcome instead of an error: the publish continues regardless,
// the caller just gets to see what happened.
type StageStatus string

const (
	StageSuccess StageStatus = "success"
	StageSkipped StageStatus = "skipped"
	StageFailed  StageStatus = "failed"
)

type StageResult struct {
	Name   string
	Status StageStatus
	Err    error
}

func logStage(result StageResult) StageResult {
	switch result.Status {
	case StageFailed:
		Logger.Log.Warnf("publish stage %s failed, continuing: %v", result.Name, result.Err)
	default:
		Logger.Log.Infof("publish stage %s: %s", result.Name, result.Status)
	}
	return result
}
