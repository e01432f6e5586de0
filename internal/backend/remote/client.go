// Package remote is a client for an execution service reachable over HTTP. Jobs are submitted with
// POST {url}/v1/jobs and polled with GET {url}/v1/jobs/{id} until they complete or fail.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/G-Research/qfactor/internal/circuit"
)

const (
	UserHeader = "X-Qfactor-User"
	jobsPath   = "/v1/jobs"
)

type JobStatus string

const (
	JobQueued    JobStatus = "QUEUED"
	JobRunning   JobStatus = "RUNNING"
	JobCompleted JobStatus = "COMPLETED"
	JobFailed    JobStatus = "FAILED"
)

var errJobPending = errors.New("job has not finished")

// JobFailedError is returned when the service reports that a job failed. Polling stops on this error.
type JobFailedError struct {
	JobId   string
	Message string
}

func (err *JobFailedError) Error() string {
	return fmt.Sprintf("job %s failed: %s", err.JobId, err.Message)
}

type Config struct {
	// Base url of the execution service, e.g. https://qpu.example.com
	Url string
	// Bearer token sent with every request
	Token string
	// Account name sent in the X-Qfactor-User header
	User string
	// Name of the device to run on
	Device string
	// Wait between status polls
	PollInterval time.Duration
	// Maximum number of status polls per job
	PollAttempts uint
	// Timeout for each individual HTTP request
	Timeout time.Duration
}

type SubmitJobRequest struct {
	Device  string              `json:"device,omitempty"`
	Shots   int                 `json:"shots"`
	Circuit *circuit.Descriptor `json:"circuit"`
}

type Job struct {
	Id      string         `json:"id"`
	Status  JobStatus      `json:"status"`
	Counts  circuit.Counts `json:"counts,omitempty"`
	Message string         `json:"message,omitempty"`
}

// Client implements gateway.Backend against the remote service.
type Client struct {
	config     Config
	httpClient *http.Client
}

func NewClient(config Config) (*Client, error) {
	if _, err := url.ParseRequestURI(config.Url); err != nil {
		return nil, errors.Wrapf(err, "invalid execution service url %q", config.Url)
	}
	if config.PollAttempts == 0 {
		config.PollAttempts = 1
	}
	config.Url = strings.TrimSuffix(config.Url, "/")
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}, nil
}

// Run submits the circuit and waits for its histogram.
func (c *Client) Run(ctx context.Context, descriptor *circuit.Descriptor, shots int) (circuit.Counts, error) {
	job, err := c.submit(ctx, descriptor, shots)
	if err != nil {
		return nil, err
	}
	log.WithField("job", job.Id).Debugf("Submitted circuit %s", descriptor.Name)
	return c.await(ctx, job.Id)
}

func (c *Client) submit(ctx context.Context, descriptor *circuit.Descriptor, shots int) (*Job, error) {
	body, err := json.Marshal(SubmitJobRequest{
		Device:  c.config.Device,
		Shots:   shots,
		Circuit: descriptor,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	job := &Job{}
	if err := c.do(ctx, http.MethodPost, c.config.Url+jobsPath, body, job); err != nil {
		return nil, errors.WithMessagef(err, "submitting circuit %s", descriptor.Name)
	}
	if job.Id == "" {
		return nil, errors.Errorf("execution service returned no job id for circuit %s", descriptor.Name)
	}
	return job, nil
}

// await polls the job until it completes. Any error other than a reported job failure is retried until the poll
// attempts are used up.
func (c *Client) await(ctx context.Context, jobId string) (circuit.Counts, error) {
	var counts circuit.Counts
	err := retry.Do(
		func() error {
			job := &Job{}
			if err := c.do(ctx, http.MethodGet, c.config.Url+jobsPath+"/"+url.PathEscape(jobId), nil, job); err != nil {
				return err
			}
			switch job.Status {
			case JobCompleted:
				counts = job.Counts
				return nil
			case JobFailed:
				return &JobFailedError{JobId: jobId, Message: job.Message}
			default:
				return errJobPending
			}
		},
		retry.Context(ctx),
		retry.Attempts(c.config.PollAttempts),
		retry.Delay(c.config.PollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var failed *JobFailedError
			return !errors.As(err, &failed)
		}),
	)
	if err != nil {
		return nil, errors.WithMessagef(err, "waiting for job %s", jobId)
	}
	if counts == nil {
		counts = circuit.Counts{}
	}
	return counts, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, into interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return errors.WithStack(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}
	if c.config.User != "" {
		req.Header.Set(UserHeader, c.config.User)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return errors.WithStack(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("%s %s returned %s: %s", method, endpoint, resp.Status, strings.TrimSpace(string(payload)))
	}
	if err := json.Unmarshal(payload, into); err != nil {
		return errors.Wrapf(err, "decoding response of %s %s", method, endpoint)
	}
	return nil
}
