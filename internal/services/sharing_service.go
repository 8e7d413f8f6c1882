package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/vytor/brainyflash/internal/access"
	"github.com/vytor/brainyflash/internal/errors"
	"github.com/vytor/brainyflash/internal/logger"
	"github.com/vytor/brainyflash/internal/models"
	"github.com/vytor/brainyflash/internal/repository"
)

// SharingService creates and resolves share links
type SharingService interface {
	CreateLink(ctx context.Context, userID, setID string, expiresAt *time.Time) (*models.ShareLink, error)
	// ResolveLink is open to anonymous callers; userID only decides the reported access level.
	ResolveLink(ctx context.Context, userID, token string) (*models.SharedSet, error)
	ListLinks(ctx context.Context, userID, setID string) ([]models.ShareLink, error)
	RevokeLink(ctx context.Context, userID, token string) error
}

type sharingService struct {
	guard         setGuard
	setRepo       repository.SetRepository
	flashcardRepo repository.FlashcardRepository
	collabRepo    repository.CollaboratorRepository
	linkRepo      repository.ShareLinkRepository
	frontendURL   string
	now           func() time.Time
}

// NewSharingService creates a new SharingService. Share URLs are built on frontendURL.
func NewSharingService(
	setRepo repository.SetRepository,
	flashcardRepo repository.FlashcardRepository,
	collabRepo repository.CollaboratorRepository,
	linkRepo repository.ShareLinkRepository,
	frontendURL string,
) SharingService {
	return &sharingService{
		guard:         setGuard{setRepo: setRepo, collaboratorRepo: collabRepo},
		setRepo:       setRepo,
		flashcardRepo: flashcardRepo,
		collabRepo:    collabRepo,
		linkRepo:      linkRepo,
		frontendURL:   strings.TrimRight(frontendURL, "/"),
		now:           time.Now,
	}
}

func (s *sharingService) CreateLink(ctx context.Context, userID, setID string, expiresAt *time.Time) (*models.ShareLink, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating share link: set_id=%s", setID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if _, _, err := s.guard.require(ctx, userID, setID, models.AccessEditor); err != nil {
		return nil, err
	}

	token, err := gonanoid.New()
	if err != nil {
		log.Error("failed to generate share token: %v", err)
		return nil, errors.NewInternalError(err)
	}
	link := models.ShareLink{
		ID:        uuid.NewString(),
		SetID:     setID,
		CreatedBy: userID,
		Token:     token,
		ExpiresAt: expiresAt,
		IsActive:  true,
		CreatedAt: s.now().UTC(),
	}
	if err := s.linkRepo.Insert(ctx, link); err != nil {
		log.Error("failed to store share link: %v", err)
		return nil, errors.NewInternalError(err)
	}

	link.URL = s.shareURL(token)
	log.Info("created share link for set %s", setID)
	return &link, nil
}

func (s *sharingService) ResolveLink(ctx context.Context, userID, token string) (*models.SharedSet, error) {
	log := logger.FromContext(ctx)
	log.Debug("resolving share link")

	link, err := s.activeLink(ctx, token)
	if err != nil {
		return nil, err
	}
	if link.Expired(s.now()) {
		log.Debug("share link expired: set_id=%s", link.SetID)
		return nil, errors.NewLinkExpiredError()
	}

	set, err := s.setRepo.Get(ctx, link.SetID)
	if err != nil {
		log.Error("failed to load shared set: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if set == nil {
		return nil, errors.NewNotFoundError("share link", token)
	}

	shared := &models.SharedSet{
		Set:             *set,
		CreatorUsername: set.OwnerUsername,
		ExpiresAt:       link.ExpiresAt,
	}
	var grant models.Permission

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cards, err := s.flashcardRepo.ListBySet(gctx, set.ID)
		shared.Flashcards = cards
		return err
	})
	if userID != "" && userID != set.OwnerID {
		g.Go(func() error {
			p, err := s.collabRepo.Grant(gctx, set.ID, userID)
			grant = p
			return err
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("failed to load shared set contents: %v", err)
		return nil, errors.NewInternalError(err)
	}

	shared.UserAccess = access.ShareLevel(userID, *set, grant)
	return shared, nil
}

func (s *sharingService) ListLinks(ctx context.Context, userID, setID string) ([]models.ShareLink, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing share links: set_id=%s", setID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if _, err := s.guard.requireOwner(ctx, userID, setID); err != nil {
		return nil, err
	}
	links, err := s.linkRepo.ListBySet(ctx, setID)
	if err != nil {
		log.Error("failed to list share links: %v", err)
		return nil, errors.NewInternalError(err)
	}
	for i := range links {
		links[i].URL = s.shareURL(links[i].Token)
	}
	return links, nil
}

func (s *sharingService) RevokeLink(ctx context.Context, userID, token string) error {
	log := logger.FromContext(ctx)
	log.Debug("revoking share link")

	if err := requireUser(userID); err != nil {
		return err
	}
	link, err := s.linkRepo.GetByToken(ctx, token)
	if err != nil {
		log.Error("failed to look up share link: %v", err)
		return errors.NewInternalError(err)
	}
	if link == nil {
		return errors.NewNotFoundError("share link", token)
	}
	if _, err := s.guard.requireOwner(ctx, userID, link.SetID); err != nil {
		return err
	}
	if err := s.linkRepo.Deactivate(ctx, token); err != nil {
		log.Error("failed to revoke share link: %v", err)
		return errors.NewInternalError(err)
	}
	log.Info("revoked share link for set %s", link.SetID)
	return nil
}

// activeLink treats revoked links exactly like unknown tokens.
func (s *sharingService) activeLink(ctx context.Context, token string) (*models.ShareLink, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.NewNotFoundError("share link", token)
	}
	link, err := s.linkRepo.GetByToken(ctx, token)
	if err != nil {
		logger.FromContext(ctx).Error("failed to look up share link: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if link == nil || !link.IsActive {
		return nil, errors.NewNotFoundError("share link", token)
	}
	return link, nil
}

func (s *sharingService) shareURL(token string) string {
	return s.frontendURL + "/shared/" + token
}
