package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"veridoc/internal/domain"
	"veridoc/internal/handler"
	"veridoc/internal/middleware"
	"veridoc/internal/port"
	"veridoc/internal/service"
	"veridoc/mocks"
)

func setAuthContext(c *gin.Context, userID uuid.UUID, role string) {
	c.Set(middleware.ContextKeyUserID, userID)
	c.Set(middleware.ContextKeyRole, role)
	c.Set(middleware.ContextKeyEmail, "user@test.com")
}

func TestDocumentHandler_List_PassesFilter(t *testing.T) {
	mockDocSvc := new(mocks.MockDocumentService)
	h := handler.NewDocumentHandler(mockDocSvc)

	mockDocSvc.On("List", mock.Anything, port.DocumentFilter{
		ApprovalStatus: domain.ApprovalStatusPendingReview,
	}, 0, 20).Return([]domain.Document{}, 0, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/documents?approval_status=pending_review", nil)
	setAuthContext(c, uuid.New(), "reviewer")

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockDocSvc.AssertExpectations(t)
}

func TestDocumentHandler_GetByID_NotFound(t *testing.T) {
	mockDocSvc := new(mocks.MockDocumentService)
	h := handler.NewDocumentHandler(mockDocSvc)

	docID := uuid.New()
	mockDocSvc.On("GetByID", mock.Anything, docID).Return(nil, domain.ErrNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/documents/"+docID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: docID.String()}}
	setAuthContext(c, uuid.New(), "reviewer")

	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDocumentHandler_GetByID_InvalidID(t *testing.T) {
	mockDocSvc := new(mocks.MockDocumentService)
	h := handler.NewDocumentHandler(mockDocSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/documents/not-a-uuid", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
	setAuthContext(c, uuid.New(), "reviewer")

	h.GetByID(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockDocSvc.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestDocumentHandler_Review_Approve(t *testing.T) {
	mockDocSvc := new(mocks.MockDocumentService)
	h := handler.NewDocumentHandler(mockDocSvc)

	docID := uuid.New()
	reviewerID := uuid.New()
	mockDocSvc.On("Review", mock.Anything, &service.ReviewInput{
		DocumentID: docID,
		ReviewerID: reviewerID,
		Approve:    true,
		Notes:      "looks right",
	}).Return(&domain.Document{
		ID:             docID,
		ApprovalStatus: domain.ApprovalStatusApproved,
	}, nil)

	body, _ := json.Marshal(handler.ReviewDocumentRequest{Approve: true, Notes: "looks right"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/documents/"+docID.String()+"/review", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: docID.String()}}
	setAuthContext(c, reviewerID, "reviewer")

	h.Review(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	mockDocSvc.AssertExpectations(t)
}

func TestDocumentHandler_Review_AlreadyReviewed(t *testing.T) {
	mockDocSvc := new(mocks.MockDocumentService)
	h := handler.NewDocumentHandler(mockDocSvc)

	docID := uuid.New()
	mockDocSvc.On("Review", mock.Anything, mock.AnythingOfType("*service.ReviewInput")).
		Return(nil, domain.ErrAlreadyReviewed)

	body, _ := json.Marshal(handler.ReviewDocumentRequest{Approve: false})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/documents/"+docID.String()+"/review", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: docID.String()}}
	setAuthContext(c, uuid.New(), "reviewer")

	h.Review(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDocumentHandler_Review_NotParsed(t *testing.T) {
	mockDocSvc := new(mocks.MockDocumentService)
	h := handler.NewDocumentHandler(mockDocSvc)

	docID := uuid.New()
	mockDocSvc.On("Review", mock.Anything, mock.AnythingOfType("*service.ReviewInput")).
		Return(nil, domain.ErrNotParsed)

	body, _ := json.Marshal(handler.ReviewDocumentRequest{Approve: true})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/documents/"+docID.String()+"/review", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: docID.String()}}
	setAuthContext(c, uuid.New(), "reviewer")

	h.Review(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentHandler_Review_NoAuthContext(t *testing.T) {
	mockDocSvc := new(mocks.MockDocumentService)
	h := handler.NewDocumentHandler(mockDocSvc)

	docID := uuid.New()
	body, _ := json.Marshal(handler.ReviewDocumentRequest{Approve: true})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/documents/"+docID.String()+"/review", bytes.NewReader(body))
	c.Params = gin.Params{{Key: "id", Value: docID.String()}}

	h.Review(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockDocSvc.AssertNotCalled(t, "Review", mock.Anything, mock.Anything)
}

func TestDocumentHandler_ReviewTrail(t *testing.T) {
	mockDocSvc := new(mocks.MockDocumentService)
	h := handler.NewDocumentHandler(mockDocSvc)

	docID := uuid.New()
	mockDocSvc.On("ReviewTrail", mock.Anything, docID, 0, 20).
		Return([]domain.ReviewEvent{
			{ID: uuid.New(), DocumentID: docID, Action: domain.ReviewActionParsed},
			{ID: uuid.New(), DocumentID: docID, Action: domain.ReviewActionFlagged},
		}, 2, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/documents/"+docID.String()+"/events", nil)
	c.Params = gin.Params{{Key: "id", Value: docID.String()}}
	setAuthContext(c, uuid.New(), "reviewer")

	h.ReviewTrail(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotNil(t, resp.Meta)
}
