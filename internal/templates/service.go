package templates

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"text/template"

	"github.com/rentfold/rentfold/internal/platform/httpx"
	"github.com/rentfold/rentfold/internal/shared"
)

type Service struct {
	repo  Repository
	audit *shared.AuditLogger
}

func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// Upsert validates the body parses before storing, so a broken template can
// never be saved and blow up at send time.
func (s *Service) Upsert(ctx context.Context, req UpsertTemplateRequest, actorID string) (*MessageTemplate, error) {
	if _, err := template.New(req.Key).Parse(req.Body); err != nil {
		return nil, errors.Join(httpx.ErrValidation, err)
	}
	if req.Channel == ChannelEmail && req.Subject != "" {
		if _, err := template.New(req.Key + ".subject").Parse(req.Subject); err != nil {
			return nil, errors.Join(httpx.ErrValidation, err)
		}
	}
	t := &MessageTemplate{
		Key:     req.Key,
		Channel: req.Channel,
		Subject: req.Subject,
		Body:    req.Body,
	}
	if err := s.repo.Upsert(ctx, t); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "template.upsert", t.ID)
	return t, nil
}

func (s *Service) Get(ctx context.Context, key string, channel Channel) (*MessageTemplate, error) {
	return s.repo.FindByKey(ctx, key, channel)
}

func (s *Service) List(ctx context.Context) ([]MessageTemplate, error) {
	return s.repo.List(ctx)
}

func (s *Service) Delete(ctx context.Context, key string, channel Channel, actorID string) error {
	if err := s.repo.Delete(ctx, key, channel); err != nil {
		return err
	}
	if s.audit != nil && actorID != "" {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "template.delete",
			Entity:   "message_template",
			EntityID: key + ":" + string(channel),
		})
	}
	return nil
}

// Render applies vars to the stored template. Missing vars render as an
// error rather than empty output so a half-filled notice never goes out.
func (s *Service) Render(ctx context.Context, key string, channel Channel, vars map[string]string) (*RenderedMessage, error) {
	t, err := s.repo.FindByKey(ctx, key, channel)
	if err != nil {
		return nil, err
	}
	body, err := renderText(t.Key, t.Body, vars)
	if err != nil {
		return nil, errors.Join(httpx.ErrValidation, err)
	}
	out := &RenderedMessage{Channel: t.Channel, Body: body}
	if t.Subject != "" {
		subject, err := renderText(t.Key+".subject", t.Subject, vars)
		if err != nil {
			return nil, errors.Join(httpx.ErrValidation, err)
		}
		out.Subject = subject
	}
	return out, nil
}

func renderText(name, text string, vars map[string]string) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, vars); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (s *Service) recordAudit(ctx context.Context, actorID, action string, id int64) {
	if s.audit == nil || actorID == "" {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "message_template",
		EntityID: strconv.FormatInt(id, 10),
	})
}
