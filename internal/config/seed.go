package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/hamed0406/renderwatch/internal/domain"
)

// SeedFile lists jobs to start at boot.
//
//	jobs:
//	  - app_urls: [https://my-app.onrender.com]
//	    webhook_url: https://ping.telex.im/v1/webhooks/...
//	    inactivity_threshold: 15
//	    interval: "*/5 * * * *"
type SeedFile struct {
	Jobs []SeedJob `yaml:"jobs"`
}

type SeedJob struct {
	AppURL              string   `yaml:"app_url"`
	AppURLs             []string `yaml:"app_urls"`
	WebhookURL          string   `yaml:"webhook_url"`
	InactivityThreshold float64  `yaml:"inactivity_threshold"` // minutes
	Interval            string   `yaml:"interval"`
}

// LoadSeed reads and validates a seed file. Jobs are returned in file order
// and are not yet registered.
func LoadSeed(path string) ([]domain.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	return ParseSeed(data)
}

func ParseSeed(data []byte) ([]domain.Job, error) {
	var f SeedFile
	if err := yaml.UnmarshalWithOptions(data, &f, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	jobs := make([]domain.Job, 0, len(f.Jobs))
	for i, sj := range f.Jobs {
		job, err := sj.toJob()
		if err != nil {
			return nil, fmt.Errorf("seed job %d: %w", i, err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (sj SeedJob) toJob() (domain.Job, error) {
	urls := append([]string(nil), sj.AppURLs...)
	if u := strings.TrimSpace(sj.AppURL); u != "" {
		urls = append([]string{u}, urls...)
	}
	for i, u := range urls {
		urls[i] = domain.NormalizeURL(u)
	}
	if sj.InactivityThreshold < 0 {
		return domain.Job{}, fmt.Errorf("%w: inactivity_threshold must not be negative", domain.ErrInvalidJob)
	}
	job := domain.Job{
		URLs:       urls,
		WebhookURL: strings.TrimSpace(sj.WebhookURL),
		Threshold:  time.Duration(sj.InactivityThreshold * float64(time.Minute)),
		Schedule:   strings.TrimSpace(sj.Interval),
	}
	if err := job.Validate(); err != nil {
		return domain.Job{}, err
	}
	return job, nil
}
