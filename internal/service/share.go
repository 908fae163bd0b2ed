package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"healthdash/internal/auth"
	"healthdash/internal/model"
)

// ShareTokens signs and verifies share-link tokens.
type ShareTokens interface {
	IssueShare(subject string) (string, time.Time, error)
	ParseShare(token string) (auth.Claims, error)
}

// ShareLink is a read-only link to the medical history.
type ShareLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Snapshot is the read-only view served to a share link.
type Snapshot struct {
	Owner        string                  `json:"owner,omitempty"`
	Events       []model.TimelineEvent   `json:"events"`
	Documents    []model.MedicalDocument `json:"documents"`
	Appointments []model.Appointment     `json:"appointments"`
	ExpiresAt    time.Time               `json:"expires_at"`
}

// ShareService issues and resolves share links.
type ShareService interface {
	Create(ctx context.Context, owner string) (ShareLink, error)
	Resolve(ctx context.Context, token string) (Snapshot, error)
}

type shareService struct {
	records RecordService
	tokens  ShareTokens
	baseURL string
}

// NewShareService constructs a ShareService. Links are rooted at baseURL.
func NewShareService(records RecordService, tokens ShareTokens, baseURL string) ShareService {
	return &shareService{records: records, tokens: tokens, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *shareService) Create(ctx context.Context, owner string) (ShareLink, error) {
	token, exp, err := s.tokens.IssueShare(owner)
	if err != nil {
		return ShareLink{}, err
	}
	return ShareLink{URL: fmt.Sprintf("%s/share/%s", s.baseURL, token), ExpiresAt: exp}, nil
}

func (s *shareService) Resolve(ctx context.Context, token string) (Snapshot, error) {
	claims, err := s.tokens.ParseShare(token)
	if err != nil {
		return Snapshot{}, err
	}
	events, err := s.records.ListEvents(ctx, "", model.RecordTypeAll)
	if err != nil {
		return Snapshot{}, err
	}
	docs, err := s.records.ListDocuments(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	apts, err := s.records.ListAppointments(ctx, false)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Owner:        claims.Subject,
		Events:       events,
		Documents:    docs,
		Appointments: apts,
		ExpiresAt:    claims.ExpiresAt,
	}, nil
}
