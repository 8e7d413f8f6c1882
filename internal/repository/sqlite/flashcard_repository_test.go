package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/brainyflash/internal/models"
	"github.com/vytor/brainyflash/internal/repository"
	"github.com/vytor/brainyflash/internal/repository/sqlite"
	"github.com/vytor/brainyflash/internal/testutil"
)

type FlashcardRepositorySuite struct {
	suite.Suite
	db    *sql.DB
	repo  repository.FlashcardRepository
	setID string
}

func (s *FlashcardRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewFlashcardRepository(s.db)
	owner := testutil.SeedProfile(s.T(), s.db, "owner@example.com")
	s.setID = testutil.SeedSet(s.T(), s.db, owner, "Biology", false)
}

func (s *FlashcardRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *FlashcardRepositorySuite) card(id, term, description string) models.Flashcard {
	now := time.Now()
	return models.Flashcard{ID: id, SetID: s.setID, Term: term, Description: description, CreatedAt: now, UpdatedAt: now}
}

func (s *FlashcardRepositorySuite) TestInsertAndUpdate() {
	ctx := context.Background()
	s.Require().NoError(s.repo.Insert(ctx, s.card("c1", "DNA", "genetic code")))

	got, err := s.repo.Get(ctx, "c1")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Assert().Equal("DNA", got.Term)
	s.Assert().Nil(got.ImageURL)

	url := "http://files/dna.png"
	got.Description = "deoxyribonucleic acid"
	got.ImageURL = &url
	got.UpdatedAt = time.Now()
	s.Require().NoError(s.repo.Update(ctx, *got))

	got, err = s.repo.Get(ctx, "c1")
	s.Require().NoError(err)
	s.Assert().Equal("deoxyribonucleic acid", got.Description)
	s.Require().NotNil(got.ImageURL)
	s.Assert().Equal(url, *got.ImageURL)
}

func (s *FlashcardRepositorySuite) TestGet_NotFound() {
	got, err := s.repo.Get(context.Background(), "missing")
	s.Assert().NoError(err)
	s.Assert().Nil(got)
}

func (s *FlashcardRepositorySuite) TestInsertBatch_KeepsOrder() {
	ctx := context.Background()
	cards := []models.Flashcard{
		s.card("c1", "DNA", "genetic code"),
		s.card("c2", "RNA", "messenger"),
		s.card("c3", "ATP", "energy"),
	}
	s.Require().NoError(s.repo.InsertBatch(ctx, cards))

	listed, err := s.repo.ListBySet(ctx, s.setID)
	s.Require().NoError(err)
	s.Require().Len(listed, 3)
	s.Assert().Equal("c1", listed[0].ID)
	s.Assert().Equal("c2", listed[1].ID)
	s.Assert().Equal("c3", listed[2].ID)
}

func (s *FlashcardRepositorySuite) TestInsertBatch_RollsBackOnFailure() {
	ctx := context.Background()
	cards := []models.Flashcard{
		s.card("c1", "DNA", "genetic code"),
		s.card("c1", "duplicate", "id"),
	}
	s.Require().Error(s.repo.InsertBatch(ctx, cards))

	listed, err := s.repo.ListBySet(ctx, s.setID)
	s.Require().NoError(err)
	s.Assert().Empty(listed)
}

func (s *FlashcardRepositorySuite) TestOtherDescriptions_ExcludesCard() {
	ctx := context.Background()
	s.Require().NoError(s.repo.InsertBatch(ctx, []models.Flashcard{
		s.card("c1", "DNA", "genetic code"),
		s.card("c2", "RNA", "messenger"),
		s.card("c3", "ATP", "energy"),
	}))

	got, err := s.repo.OtherDescriptions(ctx, s.setID, "c1", 10)
	s.Require().NoError(err)
	s.Assert().ElementsMatch([]string{"messenger", "energy"}, got)

	got, err = s.repo.OtherDescriptions(ctx, s.setID, "c1", 1)
	s.Require().NoError(err)
	s.Assert().Len(got, 1)
}

func (s *FlashcardRepositorySuite) TestDelete() {
	ctx := context.Background()
	s.Require().NoError(s.repo.Insert(ctx, s.card("c1", "DNA", "genetic code")))
	s.Require().NoError(s.repo.Delete(ctx, "c1"))

	got, err := s.repo.Get(ctx, "c1")
	s.Require().NoError(err)
	s.Assert().Nil(got)
}

func (s *FlashcardRepositorySuite) TestCountByImageURL_AcrossSets() {
	ctx := context.Background()
	owner := testutil.SeedProfile(s.T(), s.db, "other-owner@example.com")
	otherSet := testutil.SeedSet(s.T(), s.db, owner, "Chemistry", false)
	url := "http://files/images/u/cell.png"

	withImage := func(c models.Flashcard) models.Flashcard {
		c.ImageURL = &url
		return c
	}
	s.Require().NoError(s.repo.Insert(ctx, withImage(s.card("c1", "Cell", "unit of life"))))
	other := withImage(s.card("c2", "Cell", "unit of life"))
	other.SetID = otherSet
	s.Require().NoError(s.repo.Insert(ctx, other))
	s.Require().NoError(s.repo.Insert(ctx, s.card("c3", "DNA", "genetic code")))

	n, err := s.repo.CountByImageURL(ctx, url)
	s.Require().NoError(err)
	s.Assert().Equal(2, n)

	s.Require().NoError(s.repo.Delete(ctx, "c1"))
	n, err = s.repo.CountByImageURL(ctx, url)
	s.Require().NoError(err)
	s.Assert().Equal(1, n)
}

func TestFlashcardRepositorySuite(t *testing.T) {
	suite.Run(t, new(FlashcardRepositorySuite))
}
