package queue

import (
	"encoding/json"
	"fmt"
)

type JobType string

const (
	// JobGenerateVariants resizes a completed Upload's blob into the
	// Image variant catalogue.
	JobGenerateVariants JobType = "generate_variants"
	// JobURLFetch downloads a remote primary_image URL referenced by a
	// CSV row so it can be ingested as an Upload.
	JobURLFetch JobType = "url_fetch"
	// JobCleanup sweeps stale pending/uploading Uploads and their chunk
	// directories.
	JobCleanup JobType = "cleanup"
)

// Job is the payload pushed onto the Redis-backed queue. Not every field
// applies to every Type; Attempt/MaxAttempts drive the retry back-off.
type Job struct {
	Type        JobType `json:"type"`
	UploadID    string  `json:"upload_id,omitempty"`
	SourceURL   string  `json:"source_url,omitempty"`
	SourcePath  string  `json:"source_path,omitempty"`
	ProductSKU  string  `json:"product_sku,omitempty"`
	Attempt     int     `json:"attempt"`
	MaxAttempts int     `json:"max_attempts"`
}

func SerializeJob(job Job) (string, error) {
	data, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("serializing job: %w", err)
	}
	return string(data), nil
}

func DeserializeJob(data string) (*Job, error) {
	var job Job
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, fmt.Errorf("deserializing job: %w", err)
	}
	return &job, nil
}

// BackoffFor returns how long to wait before Attempt's retry, per job
// type. URL fetches back off in coarse steps since the remote host may
// be rate-limiting; variant generation backs off linearly since retries
// are usually transient disk/CPU contention.
func BackoffFor(job Job) (seconds int, retry bool) {
	if job.Attempt >= job.MaxAttempts {
		return 0, false
	}

	switch job.Type {
	case JobURLFetch:
		steps := []int{60, 300, 900}
		if job.Attempt-1 < len(steps) {
			return steps[job.Attempt-1], true
		}
		return steps[len(steps)-1], true
	case JobGenerateVariants:
		return 30 * job.Attempt, true
	default:
		return 30, true
	}
}
