// Package localqueue implements the adapter for an asynchronous, job-based
// image rendering backend addressed via submit-then-poll semantics.
package localqueue

import (
	"context"
	"net/http"
	"time"

	"github.com/pixway/pixway/internal/config"
	"github.com/pixway/pixway/internal/imaging"
	"github.com/pixway/pixway/internal/types"
)

// JobStatus tracks a job descriptor through its lifecycle. Transitions are
// monotone: Submitted -> Polling -> Completed or TimedOut.
type JobStatus string

const (
	StatusSubmitted JobStatus = "submitted"
	StatusPolling   JobStatus = "polling"
	StatusCompleted JobStatus = "completed"
	StatusTimedOut  JobStatus = "timed_out"
)

// jobDescriptor is the transient per-submission state. One descriptor per
// submission; never reused across requests.
type jobDescriptor struct {
	templatePath      string
	substitutions     Substitutions
	uploadedAssetName string
	jobID             string
	status            JobStatus
}

// Adapter drives the local queue backend: template substitution, optional
// asset upload, job submission, polling, and artifact retrieval. The only
// multi-step adapter, and the only one that blocks on a poll loop. This
// provider never returns a caption and needs no API credential.
//
// Recognized options: "negative_prompt", "checkpoint", "lora", "denoise".
type Adapter struct {
	cfg    config.LocalQueueConfig
	codec  *imaging.Codec
	client *Client
}

// New creates a local queue adapter.
func New(cfg config.LocalQueueConfig, client *http.Client) *Adapter {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Adapter{
		cfg:    cfg,
		codec:  imaging.New(client),
		client: NewClient(cfg.BaseURL, client),
	}
}

// Name returns the provider identifier.
func (a *Adapter) Name() string { return string(types.ProviderLocalQueue) }

// Generate runs one job through the backend to completion.
func (a *Adapter) Generate(ctx context.Context, req *types.GenerationRequest) (*types.GenerationResult, error) {
	if a.cfg.BaseURL == "" {
		return nil, types.NewConfiguration("local queue base URL is not configured")
	}

	job := &jobDescriptor{templatePath: a.cfg.TextTemplatePath}
	if req.Mode == types.ModeImageToImage {
		job.templatePath = a.cfg.ImageTemplatePath
	}

	// Upload the source image first (image mode only); the server-assigned
	// filename becomes the substitution value for the image placeholder.
	if req.Mode == types.ModeImageToImage {
		img, err := a.codec.Resolve(ctx, req.Source)
		if err != nil {
			return nil, types.AsFailure(err)
		}
		name, err := a.client.UploadImage(ctx, img.Data, img.MimeType)
		if err != nil {
			return nil, types.AsFailure(err)
		}
		job.uploadedAssetName = name
	}

	template, err := LoadTemplate(job.templatePath)
	if err != nil {
		return nil, types.AsFailure(err)
	}

	job.substitutions = buildSubstitutions(req, a.cfg.Checkpoint, a.cfg.Lora, a.cfg.Denoise, job.uploadedAssetName)
	workflow, err := Substitute(template, job.substitutions)
	if err != nil {
		return nil, types.AsFailure(err)
	}

	jobID, err := a.client.SubmitJob(ctx, workflow)
	if err != nil {
		return nil, types.AsFailure(err)
	}
	job.jobID = jobID
	job.status = StatusSubmitted

	job.status = StatusPolling
	ref, err := a.client.PollOutputs(ctx, jobID, a.cfg.PollInterval, a.cfg.PollTimeout)
	if err != nil {
		if f := types.AsFailure(err); f.Kind == types.FailureTimeout {
			job.status = StatusTimedOut
		}
		return nil, types.AsFailure(err)
	}

	img, err := a.client.FetchArtifact(ctx, ref)
	if err != nil {
		return nil, types.AsFailure(err)
	}
	job.status = StatusCompleted

	return &types.GenerationResult{Image: *img}, nil
}
