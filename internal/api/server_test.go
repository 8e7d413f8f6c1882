package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/vytor/brainyflash/internal/api"
	"github.com/vytor/brainyflash/internal/identity"
	"github.com/vytor/brainyflash/internal/repository/sqlite"
	"github.com/vytor/brainyflash/internal/services"
	"github.com/vytor/brainyflash/internal/testutil"
	"github.com/vytor/brainyflash/internal/testutil/mocks"
)

const testSecret = "test-secret"

type ServerSuite struct {
	suite.Suite
	handler    http.Handler
	jobs       *mocks.MockJobQueue
	completion *mocks.MockCompletionService
	blobs      *mocks.MockBlobStore
	closeDB    func()
}

func (s *ServerSuite) SetupTest() {
	sqlDB := testutil.NewTestDB(s.T())
	s.closeDB = func() { testutil.MustClose(s.T(), sqlDB) }

	s.jobs = &mocks.MockJobQueue{}
	s.completion = &mocks.MockCompletionService{}
	s.blobs = &mocks.MockBlobStore{}

	profiles := sqlite.NewProfileRepository(sqlDB)
	sets := sqlite.NewSetRepository(sqlDB)
	favorites := sqlite.NewFavoriteRepository(sqlDB)
	flashcards := sqlite.NewFlashcardRepository(sqlDB)
	collaborators := sqlite.NewCollaboratorRepository(sqlDB)
	links := sqlite.NewShareLinkRepository(sqlDB)
	study := sqlite.NewStudyRepository(sqlDB)

	srv := &api.Server{
		DB:                  sqlDB,
		Verifier:            identity.NewJWTVerifier(testSecret, ""),
		ProfileService:      services.NewProfileService(profiles),
		SetService:          services.NewSetService(sets, flashcards, favorites, collaborators, s.jobs, s.blobs),
		FlashcardService:    services.NewFlashcardService(sets, collaborators, flashcards, s.jobs, s.blobs),
		CollaboratorService: services.NewCollaboratorService(sets, collaborators, profiles),
		SharingService:      services.NewSharingService(sets, flashcards, collaborators, links, "https://app.example.com"),
		StudyService:        services.NewStudyService(sets, collaborators, flashcards, study, s.completion, time.Second),
		GenerationService:   services.NewGenerationService(sets, collaborators, flashcards, s.completion, time.Second),
		UploadService:       services.NewUploadService(s.blobs, 1024),
		CORSAllowedOrigins:  []string{"http://localhost:3000"},
		MaxUploadBytes:      1024,
	}
	s.handler = srv.Routes()
}

func (s *ServerSuite) TearDownTest() {
	s.closeDB()
}

func (s *ServerSuite) token(userID, email string) string {
	tok, err := identity.Sign(testSecret, "", identity.Identity{UserID: userID, Email: email}, time.Hour)
	s.Require().NoError(err)
	return tok
}

func (s *ServerSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		s.Require().NoError(err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *ServerSuite) decode(rec *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func (s *ServerSuite) errorCode(rec *httptest.ResponseRecorder) string {
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	s.decode(rec, &body)
	return body.Error.Code
}

func (s *ServerSuite) createSet(token string, public bool) string {
	rec := s.do(http.MethodPost, "/sets", token, map[string]any{"title": "Biology", "is_public": public})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var set struct {
		ID string `json:"id"`
	}
	s.decode(rec, &set)
	return set.ID
}

func (s *ServerSuite) TestHealthAndReady() {
	rec := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/ready", "", nil)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *ServerSuite) TestUnknownRoute() {
	rec := s.do(http.MethodGet, "/nope", "", nil)
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("NOT_FOUND", s.errorCode(rec))
}

func (s *ServerSuite) TestAuthentication() {
	rec := s.do(http.MethodGet, "/sets", "", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`[]`, rec.Body.String())

	rec = s.do(http.MethodPost, "/sets", "", map[string]any{"title": "Biology"})
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("UNAUTHENTICATED", s.errorCode(rec))

	rec = s.do(http.MethodGet, "/sets", "not-a-jwt", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)

	expired, err := identity.Sign(testSecret, "", identity.Identity{UserID: "u1"}, -time.Hour)
	s.Require().NoError(err)
	rec = s.do(http.MethodGet, "/auth/profile", expired, nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *ServerSuite) TestProfileCreatedOnFirstRequest() {
	tok := s.token("user-1", "a@example.com")

	rec := s.do(http.MethodGet, "/auth/profile", tok, nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var profile struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	s.decode(rec, &profile)
	s.Equal("user-1", profile.ID)
	s.Equal("a@example.com", profile.Email)

	rec = s.do(http.MethodPut, "/auth/profile", tok, map[string]any{"username": "x"})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("VALIDATION_ERROR", s.errorCode(rec))

	rec = s.do(http.MethodPut, "/auth/profile", tok, map[string]any{"username": "alice"})
	s.Equal(http.StatusOK, rec.Code)
}

func (s *ServerSuite) TestSetVisibilityAndValidation() {
	owner := s.token("owner", "owner@example.com")
	other := s.token("other", "other@example.com")

	rec := s.do(http.MethodPost, "/sets", owner, map[string]any{"description": "no title"})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("VALIDATION_ERROR", s.errorCode(rec))

	rec = s.do(http.MethodPost, "/sets", owner, map[string]any{"title": "Biology", "bogus": true})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("BAD_REQUEST", s.errorCode(rec))

	setID := s.createSet(owner, false)

	rec = s.do(http.MethodGet, "/sets/"+setID, "", nil)
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/sets/"+setID, other, nil)
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/sets/"+setID, owner, nil)
	s.Equal(http.StatusOK, rec.Code)
	var detail struct {
		Access string `json:"access"`
	}
	s.decode(rec, &detail)
	s.Equal("owner", detail.Access)

	rec = s.do(http.MethodPost, "/sets/"+setID+"/collaborators", owner, map[string]any{"email": "other@example.com", "permission": "read"})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPut, "/sets/"+setID, other, map[string]any{"title": "Renamed"})
	s.Equal(http.StatusForbidden, rec.Code)
	s.Equal("FORBIDDEN", s.errorCode(rec))

	rec = s.do(http.MethodDelete, "/sets/"+setID, owner, nil)
	s.Equal(http.StatusNoContent, rec.Code)
}

func (s *ServerSuite) TestFlashcardsAndStudy() {
	owner := s.token("owner", "owner@example.com")
	setID := s.createSet(owner, true)

	rec := s.do(http.MethodPost, "/sets/"+setID+"/flashcards/bulk", owner, map[string]any{
		"flashcards": []map[string]string{
			{"term": "DNA", "description": "genetic code"},
			{"term": "RNA", "description": "messenger"},
		},
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var cards []struct {
		ID string `json:"id"`
	}
	s.decode(rec, &cards)
	s.Require().Len(cards, 2)

	rec = s.do(http.MethodGet, "/sets/"+setID+"/flashcards", "", nil)
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/study/progress", owner, map[string]any{"flashcard_id": cards[0].ID})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/study/progress", owner, map[string]any{"flashcard_id": cards[0].ID, "is_correct": false, "difficulty": "hard"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/study/session/start", owner, map[string]any{"set_id": setID, "mode": "matching"})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var session struct {
		ID string `json:"id"`
	}
	s.decode(rec, &session)

	rec = s.do(http.MethodPut, "/study/session/"+session.ID+"/end", s.token("intruder", "i@example.com"), map[string]any{"cards_studied": 2})
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPut, "/study/session/"+session.ID+"/end", owner, map[string]any{"cards_studied": 2, "correct_answers": 1})
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/study/recommended/"+setID+"?limit=5", owner, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var recommended []json.RawMessage
	s.decode(rec, &recommended)
	s.Len(recommended, 2)

	rec = s.do(http.MethodGet, "/study/stats/"+setID, owner, nil)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *ServerSuite) TestShareLinks() {
	owner := s.token("owner", "owner@example.com")
	setID := s.createSet(owner, false)

	rec := s.do(http.MethodPost, "/sets/"+setID+"/share", owner, nil)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var link struct {
		Token string `json:"token"`
		URL   string `json:"url"`
	}
	s.decode(rec, &link)
	s.Equal("https://app.example.com/shared/"+link.Token, link.URL)

	rec = s.do(http.MethodGet, "/shared/"+link.Token, "", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var shared struct {
		UserAccess string `json:"user_access"`
	}
	s.decode(rec, &shared)
	s.Equal("public", shared.UserAccess)

	rec = s.do(http.MethodDelete, "/share/"+link.Token, owner, nil)
	s.Equal(http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodDelete, "/share/"+link.Token, owner, nil)
	s.Equal(http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/shared/"+link.Token, "", nil)
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPost, "/sets/"+setID+"/share", owner, map[string]any{"expires_at": time.Now().Add(-time.Minute)})
	s.Require().Equal(http.StatusCreated, rec.Code)
	s.decode(rec, &link)

	rec = s.do(http.MethodGet, "/shared/"+link.Token, "", nil)
	s.Equal(http.StatusGone, rec.Code)
	s.Equal("LINK_EXPIRED", s.errorCode(rec))
}

func (s *ServerSuite) TestGenerate() {
	owner := s.token("owner", "owner@example.com")

	rec := s.do(http.MethodPost, "/ai/generate", owner, map[string]any{"text": "DNA: genetic code", "count": 1})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	s.completion.On("Complete", mock.Anything, mock.Anything).Return("", assert.AnError)
	rec = s.do(http.MethodPost, "/ai/generate", owner, map[string]any{"text": "no pairs here"})
	s.Equal(http.StatusBadGateway, rec.Code)
	s.Equal("UPSTREAM_UNAVAILABLE", s.errorCode(rec))

	rec = s.do(http.MethodPost, "/ai/generate", owner, map[string]any{"text": "a: b", "count": 51})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerSuite) TestUploadImage() {
	owner := s.token("owner", "owner@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="a.png"`)
	h.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(h)
	s.Require().NoError(err)
	_, err = part.Write([]byte("\x89PNG fake"))
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	s.blobs.On("Put", mock.Anything, mock.AnythingOfType("string"), mock.Anything, "image/png").
		Return("http://files/images/owner/a.png", nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/uploads/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+owner)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var result struct {
		URL string `json:"url"`
	}
	s.decode(rec, &result)
	s.Equal("http://files/images/owner/a.png", result.URL)
	s.blobs.AssertExpectations(s.T())
}

func (s *ServerSuite) TestCORSPreflight() {
	req := httptest.NewRequest(http.MethodOptions, "/sets", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	s.Equal("http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func TestRequestIDHeader(t *testing.T) {
	srv := &api.Server{}
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc123", rec.Header().Get("X-Request-ID"))
}
