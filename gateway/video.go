package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Desarso/fitcoach/models"
	"github.com/Desarso/fitcoach/models/gemini"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GenerateVideo submits an instructional video job for prompt and polls it to
// completion. A credential rejection triggers one key reselection and one
// retry of the whole cycle. A finished job without a video yields nil.
func (g *Gateway) GenerateVideo(ctx context.Context, prompt string) (ref *models.VideoRef, err error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, invalidInput("video prompt is required")
	}

	start := g.now()
	details := map[string]any{}
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("Video generation panicked", zap.Any("panic", r))
			ref, err = nil, fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			err = &GenerationError{Op: "video", Mode: models.ModeVideo, Err: err}
		}
		g.record("video", models.ModeVideo, g.models.Video, start, details, err)
	}()

	backend, key, err := g.current(ctx)
	if err != nil {
		return nil, err
	}

	op, polls, err := g.runVideoJob(ctx, backend, prompt)
	details["polls"] = polls
	if err != nil && IsCredentialError(err) {
		g.logger.Warn("Video API key invalid, prompting re-selection", zap.Error(err))
		details["reselected"] = true
		backend, key, err = g.reauthenticate(ctx)
		if err != nil {
			return nil, err
		}
		op, polls, err = g.runVideoJob(ctx, backend, prompt)
		details["polls"] = polls
		if err != nil {
			g.logger.Error("Retry failed for video generation", zap.Error(err))
		}
	}
	if err != nil {
		return nil, err
	}

	uri := firstVideoURI(op)
	if uri == "" {
		g.logger.Warn("Video job finished without a video", zap.String("operation", op.Name))
		return nil, nil
	}
	return &models.VideoRef{URI: uri, PlaybackURL: playbackURL(uri, key)}, nil
}

// runVideoJob submits one job and polls until it is done, failed, or over
// its budget. It returns the finished operation and the number of polls.
func (g *Gateway) runVideoJob(ctx context.Context, backend Backend, prompt string) (*genai.GenerateVideosOperation, int, error) {
	ctx, cancel := context.WithTimeout(ctx, g.video.Timeout)
	defer cancel()

	g.logger.Info("Submitting video job", zap.String("model", g.models.Video), zap.Duration("budget", g.video.pollBudget()))
	op, err := backend.GenerateVideos(ctx, g.models.Video, videoPromptPrefix+prompt, nil, &genai.GenerateVideosConfig{
		NumberOfVideos: gemini.VideoCount,
		Resolution:     gemini.VideoResolution,
		AspectRatio:    gemini.VideoAspectRatio,
	})
	if err != nil {
		return nil, 0, err
	}
	if op == nil {
		return nil, 0, fmt.Errorf("video job was not created")
	}

	polls := 0
	for !op.Done {
		if polls >= g.video.MaxPolls {
			return nil, polls, fmt.Errorf("%w: still running after %d polls", ErrVideoTimeout, polls)
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, polls, fmt.Errorf("%w: exceeded %s", ErrVideoTimeout, g.video.Timeout)
			}
			return nil, polls, ctx.Err()
		case <-g.after(g.video.PollInterval):
		}

		next, err := backend.GetVideosOperation(ctx, op, nil)
		polls++
		if err != nil {
			return nil, polls, err
		}
		if next == nil {
			return nil, polls, fmt.Errorf("video job %s disappeared", op.Name)
		}
		op = next
		g.logger.Debug("Polled video job", zap.String("operation", op.Name), zap.Int("polls", polls), zap.Bool("done", op.Done))
	}

	if op.Error != nil {
		return nil, polls, operationError(op.Error)
	}
	return op, polls, nil
}

// operationError turns a failed operation's status payload into an error.
func operationError(status map[string]any) error {
	msg, _ := status["message"].(string)
	if msg == "" {
		msg = fmt.Sprint(status)
	}
	if strings.Contains(msg, gemini.CredentialErrorMessage) {
		return fmt.Errorf("%w: %s", ErrCredentialInvalid, msg)
	}
	return fmt.Errorf("video job failed: %s", msg)
}

func firstVideoURI(op *genai.GenerateVideosOperation) string {
	if op == nil || op.Response == nil {
		return ""
	}
	for _, v := range op.Response.GeneratedVideos {
		if v != nil && v.Video != nil && v.Video.URI != "" {
			return v.Video.URI
		}
	}
	return ""
}

// playbackURL adds the API key to uri so the file can be fetched directly.
func playbackURL(uri, key string) string {
	u, err := url.Parse(uri)
	if err != nil {
		sep := "?"
		if strings.Contains(uri, "?") {
			sep = "&"
		}
		return uri + sep + "key=" + url.QueryEscape(key)
	}
	q := u.Query()
	q.Set("key", key)
	u.RawQuery = q.Encode()
	return u.String()
}

// pollBudget reports how long a job may run at most under the policy.
func (p VideoPolicy) pollBudget() time.Duration {
	byPolls := time.Duration(p.MaxPolls) * p.PollInterval
	if p.Timeout < byPolls {
		return p.Timeout
	}
	return byPolls
}
