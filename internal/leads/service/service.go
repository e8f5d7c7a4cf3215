package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/events"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/leads/domain"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/leads/repository"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/leads/transport"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/apperr"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/logger"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/metrics"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/phone"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/sanitize"
)

const (
	msgLeadNotFound     = "lead not found"
	msgSaveFailed       = "we could not save your request, please try again"
	msgTrackUnavailable = "this lead has no bank account track"
)

// Repository is the persistence the leads service needs.
type Repository interface {
	Create(ctx context.Context, lead domain.Lead) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	AddAnnotations(ctx context.Context, annotations []domain.Annotation) error
	ListAnnotations(ctx context.Context, leadID uuid.UUID) ([]domain.Annotation, error)
	ApplyTransition(ctx context.Context, u repository.TransitionUpdate) error
	RevertQuote(ctx context.Context, leadID uuid.UUID, track domain.Track, from domain.Stage, at time.Time) error
	SetAssignee(ctx context.Context, id uuid.UUID, track domain.Track, assignee string) error
}

// QuoteIssuer mints the decision token mailed with a quote.
type QuoteIssuer interface {
	Issue(ctx context.Context, leadID uuid.UUID, track domain.Track) (token string, expiresAt time.Time, err error)
}

type Service struct {
	repo     Repository
	eventBus events.Bus
	issuer   QuoteIssuer
	baseURL  string
	log      *logger.Logger
	metrics  *metrics.WorkflowMetrics
	now      func() time.Time
}

func New(repo Repository, eventBus events.Bus, baseURL string, log *logger.Logger, m *metrics.WorkflowMetrics) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		repo:     repo,
		eventBus: eventBus,
		baseURL:  strings.TrimRight(baseURL, "/"),
		log:      log,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetQuoteIssuer injects the decision token issuer.
func (s *Service) SetQuoteIssuer(issuer QuoteIssuer) {
	s.issuer = issuer
}

// DecisionLink builds the prospect-facing URL for a decision token.
func (s *Service) DecisionLink(token string) string {
	return s.baseURL + "/quote/decision?token=" + url.QueryEscape(token)
}

// Submit validates and stores a public form submission.
func (s *Service) Submit(ctx context.Context, req transport.CreateLeadRequest) (transport.CreateLeadResponse, error) {
	fullName := sanitize.Truncate(sanitize.Line(req.FullName), 120)
	if fullName == "" {
		return transport.CreateLeadResponse{}, apperr.Field("fullName", "required")
	}

	normalized := phone.NormalizeE164(req.Whatsapp)
	if !phone.IsValidE164(normalized) {
		return transport.CreateLeadResponse{}, apperr.Field("whatsapp", "phone_e164")
	}

	service := req.ServiceRequired
	if strings.TrimSpace(service) == "" {
		service = req.HelpWith
	}
	if strings.TrimSpace(service) == "" {
		return transport.CreateLeadResponse{}, apperr.Field("serviceRequired", "required")
	}
	setupType, err := domain.ParseSetupType(service)
	if err != nil {
		return transport.CreateLeadResponse{}, apperr.Field("serviceRequired", "oneof")
	}

	now := s.now()
	id := uuid.New()
	lead := domain.Lead{
		ID:               id,
		Ref:              domain.NewLeadRef(now, id),
		FullName:         fullName,
		Phone:            normalized,
		Email:            sanitize.OptionalLine(strings.ToLower(req.Email)),
		Nationality:      sanitize.OptionalLine(req.Nationality),
		ResidenceCountry: sanitize.OptionalLine(req.ResidenceCountry),
		SetupType:        setupType,
		Activity:         sanitize.OptionalLine(req.Activity),
		Emirate:          sanitize.OptionalLine(req.Emirate),
		Shareholders:     req.Shareholders,
		VisaRequirements: sanitize.OptionalLine(req.VisaRequirements),
		NeedsBankAccount: setupType.NeedsBankAccount(),
		Company:          domain.NewTrackState(true),
		Bank:             domain.NewTrackState(setupType.NeedsBankAccount()),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, lead); err != nil {
		s.log.DatabaseError("create lead", err)
		return transport.CreateLeadResponse{}, apperr.Wrap(apperr.KindInternal, msgSaveFailed, err)
	}

	notes := sanitize.Text(req.Notes)
	if err := s.repo.AddAnnotations(ctx, intakeAnnotations(lead, notes, sanitize.Text(req.ServiceDetails), req.AdditionalFields)); err != nil {
		s.log.Warn("lead annotations not stored", "leadId", lead.ID, "error", err)
	}

	s.metrics.ObserveLeadCreated(string(setupType))
	s.eventBus.Publish(ctx, events.LeadSubmitted{
		BaseEvent:        events.NewBaseEvent(),
		LeadID:           lead.ID,
		LeadRef:          lead.Ref,
		FullName:         lead.FullName,
		Phone:            lead.Phone,
		Email:            deref(lead.Email),
		SetupType:        string(lead.SetupType),
		Emirate:          deref(lead.Emirate),
		Activity:         deref(lead.Activity),
		NeedsBankAccount: lead.NeedsBankAccount,
		Notes:            notes,
	})

	return transport.CreateLeadResponse{OK: true, LeadID: lead.ID, LeadRef: lead.Ref}, nil
}

func intakeAnnotations(lead domain.Lead, notes, details string, additional map[string]string) []domain.Annotation {
	items := []domain.Annotation{newAnnotation(lead.ID, domain.AnnotationSystem, "leadRef", lead.Ref, lead.CreatedAt)}
	if notes != "" {
		items = append(items, newAnnotation(lead.ID, domain.AnnotationProspect, "notes", notes, lead.CreatedAt))
	}
	if details != "" {
		items = append(items, newAnnotation(lead.ID, domain.AnnotationProspect, "serviceDetails", details, lead.CreatedAt))
	}

	keys := make([]string, 0, len(additional))
	for k := range additional {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		field := sanitize.Truncate(sanitize.Line(k), 64)
		value := sanitize.Truncate(sanitize.Text(additional[k]), 1000)
		if field == "" || value == "" {
			continue
		}
		items = append(items, newAnnotation(lead.ID, domain.AnnotationForm, field, value, lead.CreatedAt))
	}
	return items
}

func newAnnotation(leadID uuid.UUID, source domain.AnnotationSource, field, value string, at time.Time) domain.Annotation {
	return domain.Annotation{ID: uuid.New(), LeadID: leadID, Source: source, Field: field, Value: value, CreatedAt: at}
}

// GetByID returns the admin view of a lead.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.load(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	annotations, err := s.repo.ListAnnotations(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, fmt.Errorf("list annotations: %w", err)
	}
	return transport.ToLeadResponse(lead, annotations), nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Lead{}, apperr.NotFound(msgLeadNotFound)
	}
	if err != nil {
		return domain.Lead{}, err
	}
	return lead, nil
}

// SetAssignee changes a track's owner.
func (s *Service) SetAssignee(ctx context.Context, id uuid.UUID, trackName string, req transport.AssigneeRequest, actor string) (transport.LeadResponse, error) {
	track, err := domain.ParseTrack(trackName)
	if err != nil {
		return transport.LeadResponse{}, apperr.BadRequest(err.Error())
	}
	lead, err := s.load(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	if lead.StateOf(track).Stage == domain.StageNotApplicable {
		return transport.LeadResponse{}, apperr.Conflict(msgTrackUnavailable)
	}

	assignee := sanitize.Line(req.Assignee)
	if assignee == "" {
		return transport.LeadResponse{}, apperr.Field("assignee", "required")
	}
	if err := s.repo.SetAssignee(ctx, id, track, assignee); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound(msgLeadNotFound)
		}
		return transport.LeadResponse{}, err
	}

	s.annotate(ctx, id, string(track)+".assignedTo", assignee+" by "+actor)
	return s.GetByID(ctx, id)
}

// annotate stores a system annotation. Failures are logged and ignored.
func (s *Service) annotate(ctx context.Context, leadID uuid.UUID, field, value string) {
	item := newAnnotation(leadID, domain.AnnotationSystem, field, value, s.now())
	if err := s.repo.AddAnnotations(ctx, []domain.Annotation{item}); err != nil {
		s.log.Warn("audit annotation not stored", "leadId", leadID, "field", field, "error", err)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
