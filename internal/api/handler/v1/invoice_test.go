package v1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mkstudio/studio-api/internal/api/middleware"
	"github.com/mkstudio/studio-api/internal/domain"
	"github.com/mkstudio/studio-api/internal/pkg/jwthelper"
)

type stubInvoiceService struct {
	doc domain.InvoiceDocument
}

func (s *stubInvoiceService) InvoiceDocument(_ context.Context, _ uint) (domain.InvoiceDocument, error) {
	return s.doc, nil
}

func performGetDocument(t *testing.T, claims *jwthelper.UserClaims, docMemberID uint) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler := NewInvoiceHandler(&stubInvoiceService{
		doc: domain.InvoiceDocument{InvoiceID: 1, MemberID: docMemberID},
	})

	recorder := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(recorder)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/v1/invoices/1/document", nil)
	ctx.Params = gin.Params{{Key: "invoiceID", Value: "1"}}
	ctx.Set(middleware.ClaimsKey, claims)

	handler.HandleGetInvoiceDocument(ctx)

	return recorder
}

func TestHandleGetInvoiceDocument_OwnerAllowed(t *testing.T) {
	memberID := uint(5)
	claims := &jwthelper.UserClaims{Role: domain.RoleAdherent, MemberID: &memberID}

	recorder := performGetDocument(t, claims, 5)

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestHandleGetInvoiceDocument_OtherMemberForbidden(t *testing.T) {
	memberID := uint(6)
	claims := &jwthelper.UserClaims{Role: domain.RoleAdherent, MemberID: &memberID}

	recorder := performGetDocument(t, claims, 5)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestHandleGetInvoiceDocument_AdherentWithoutMemberForbidden(t *testing.T) {
	claims := &jwthelper.UserClaims{Role: domain.RoleAdherent}

	recorder := performGetDocument(t, claims, 5)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestHandleGetInvoiceDocument_AdminAllowed(t *testing.T) {
	claims := &jwthelper.UserClaims{Role: domain.RoleAdmin}

	recorder := performGetDocument(t, claims, 5)

	assert.Equal(t, http.StatusOK, recorder.Code)
}
