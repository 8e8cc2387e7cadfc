package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/quollhaven/wildlife-rehab-api/internal/constants"
	"github.com/quollhaven/wildlife-rehab-api/internal/dto"
	"github.com/quollhaven/wildlife-rehab-api/internal/identity"
	"github.com/quollhaven/wildlife-rehab-api/internal/middleware"
	"github.com/quollhaven/wildlife-rehab-api/internal/models"
	"github.com/quollhaven/wildlife-rehab-api/internal/rbac"
	"github.com/quollhaven/wildlife-rehab-api/internal/repository"
	"github.com/quollhaven/wildlife-rehab-api/internal/services"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeDirectory is an in-memory identity.Client for handler tests.
type fakeDirectory struct {
	tokens      map[string]string
	memberships map[string][]identity.Membership
}

func (f *fakeDirectory) VerifySessionToken(_ context.Context, token string) (string, error) {
	userID, ok := f.tokens[token]
	if !ok {
		return "", identity.ErrInvalidToken
	}
	return userID, nil
}

func (f *fakeDirectory) OrganizationMemberships(_ context.Context, userID string) ([]identity.Membership, error) {
	return f.memberships[userID], nil
}

// MemberHandlerTestSuite defines the test suite for MemberHandler
type MemberHandlerTestSuite struct {
	suite.Suite
	db        *gorm.DB
	directory *fakeDirectory
	audit     *services.AuditService
	router    *gin.Engine
}

// SetupTest runs before each test
func (suite *MemberHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.OrgMember{},
		&models.AuditLog{},
	)
	suite.Require().NoError(err)

	memberRepo := repository.NewOrgMemberRepository(suite.db)
	auditRepo := repository.NewAuditLogRepository(suite.db)

	suite.directory = &fakeDirectory{
		tokens:      map[string]string{},
		memberships: map[string][]identity.Membership{},
	}
	suite.audit = services.NewAuditService(auditRepo)
	memberService := services.NewMemberService(memberRepo, suite.directory, suite.audit)
	handler := NewMemberHandler(memberService)
	auditHandler := NewAuditHandler(suite.audit)

	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	store := cookie.NewStore([]byte("secret"))
	suite.router.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Test-only login that seeds the session directly.
	suite.router.POST("/test/login", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(constants.ContextKeyUserID, c.Query("user"))
		suite.Require().NoError(session.Save())
		c.Status(http.StatusOK)
	})

	orgs := suite.router.Group("/api/orgs")
	orgs.Use(middleware.RequireAuth())
	orgs.POST("/:org_id/provision", handler.Provision)
	org := orgs.Group("/:org_id")
	org.Use(middleware.RequireOrgMember(memberService))
	members := org.Group("/members")
	members.Use(middleware.RequirePermission(rbac.ActionUserManage))
	members.GET("", handler.ListMembers)
	members.PUT("/:user_id/role", handler.AssignRole)
	org.GET("/audit-logs", middleware.RequirePermission(rbac.ActionAuditView), auditHandler.ListAuditLogs)
}

// TearDownTest runs after each test
func (suite *MemberHandlerTestSuite) TearDownTest() {
	suite.audit.Wait()
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *MemberHandlerTestSuite) seedMember(orgID, userID string, role rbac.Role) {
	suite.Require().NoError(suite.db.Create(&models.OrgMember{
		OrgID:  orgID,
		UserID: userID,
		Role:   role,
	}).Error)
}

// request performs an authenticated request as userID.
func (suite *MemberHandlerTestSuite) request(userID, method, url string, payload any) *httptest.ResponseRecorder {
	loginW := httptest.NewRecorder()
	loginReq := httptest.NewRequest(http.MethodPost, "/test/login?user="+userID, nil)
	suite.router.ServeHTTP(loginW, loginReq)
	suite.Require().Equal(http.StatusOK, loginW.Code)

	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		suite.Require().NoError(err)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range loginW.Result().Cookies() {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *MemberHandlerTestSuite) TestProvisionFirstAdmin() {
	suite.directory.memberships["founder"] = []identity.Membership{
		{OrganizationID: "org-1", Role: "owner"},
	}

	w := suite.request("founder", http.MethodPost, "/api/orgs/org-1/provision", nil)
	suite.Equal(http.StatusCreated, w.Code)

	var member dto.OrgMemberDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &member))
	suite.Equal(rbac.RoleAdmin, member.Role)
	suite.Equal("org-1", member.OrgID)
}

func (suite *MemberHandlerTestSuite) TestProvisionTwiceConflicts() {
	suite.directory.memberships["founder"] = []identity.Membership{
		{OrganizationID: "org-1", Role: "owner"},
	}

	w := suite.request("founder", http.MethodPost, "/api/orgs/org-1/provision", nil)
	suite.Equal(http.StatusCreated, w.Code)

	w = suite.request("founder", http.MethodPost, "/api/orgs/org-1/provision", nil)
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *MemberHandlerTestSuite) TestProvisionWithoutDirectoryAdminRole() {
	suite.directory.memberships["member"] = []identity.Membership{
		{OrganizationID: "org-1", Role: "member"},
	}

	w := suite.request("member", http.MethodPost, "/api/orgs/org-1/provision", nil)
	suite.Equal(http.StatusForbidden, w.Code)
	suite.JSONEq(`{"error":"Forbidden"}`, w.Body.String())
}

func (suite *MemberHandlerTestSuite) TestProvisionUnauthenticated() {
	req := httptest.NewRequest(http.MethodPost, "/api/orgs/org-1/provision", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *MemberHandlerTestSuite) TestAssignRole() {
	suite.seedMember("org-1", "admin-1", rbac.RoleAdmin)
	suite.seedMember("org-1", "carer-1", rbac.RoleCarer)
	suite.directory.memberships["carer-1"] = []identity.Membership{
		{OrganizationID: "org-1", Role: "member"},
	}

	w := suite.request("admin-1", http.MethodPut, "/api/orgs/org-1/members/carer-1/role",
		map[string]string{"role": "coordinator"})
	suite.Equal(http.StatusOK, w.Code)

	var member dto.OrgMemberDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &member))
	suite.Equal(rbac.RoleCoordinator, member.Role)
}

func (suite *MemberHandlerTestSuite) TestAssignRoleForbiddenForNonAdmin() {
	suite.seedMember("org-1", "coord-1", rbac.RoleCoordinatorAll)
	suite.seedMember("org-1", "carer-1", rbac.RoleCarer)

	w := suite.request("coord-1", http.MethodPut, "/api/orgs/org-1/members/carer-1/role",
		map[string]string{"role": "admin"})
	suite.Equal(http.StatusForbidden, w.Code)
	suite.JSONEq(`{"error":"Forbidden"}`, w.Body.String())
}

func (suite *MemberHandlerTestSuite) TestAssignRoleSelfConflicts() {
	suite.seedMember("org-1", "admin-1", rbac.RoleAdmin)

	w := suite.request("admin-1", http.MethodPut, "/api/orgs/org-1/members/admin-1/role",
		map[string]string{"role": "carer"})
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *MemberHandlerTestSuite) TestAssignRoleUnknownTarget() {
	suite.seedMember("org-1", "admin-1", rbac.RoleAdmin)

	w := suite.request("admin-1", http.MethodPut, "/api/orgs/org-1/members/ghost/role",
		map[string]string{"role": "carer"})
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *MemberHandlerTestSuite) TestAssignRoleInvalidRole() {
	suite.seedMember("org-1", "admin-1", rbac.RoleAdmin)
	suite.seedMember("org-1", "carer-1", rbac.RoleCarer)

	w := suite.request("admin-1", http.MethodPut, "/api/orgs/org-1/members/carer-1/role",
		map[string]string{"role": "superuser"})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *MemberHandlerTestSuite) TestNonMemberIsForbiddenNotFound() {
	suite.seedMember("org-1", "admin-1", rbac.RoleAdmin)

	// A user with no record in the org gets 403 regardless of whether
	// the org exists, so org ids cannot be enumerated.
	w := suite.request("outsider", http.MethodGet, "/api/orgs/org-1/members", nil)
	suite.Equal(http.StatusForbidden, w.Code)
	suite.JSONEq(`{"error":"Forbidden"}`, w.Body.String())

	w = suite.request("outsider", http.MethodGet, "/api/orgs/no-such-org/members", nil)
	suite.Equal(http.StatusForbidden, w.Code)
	suite.JSONEq(`{"error":"Forbidden"}`, w.Body.String())
}

func (suite *MemberHandlerTestSuite) TestListMembers() {
	suite.seedMember("org-1", "admin-1", rbac.RoleAdmin)
	suite.seedMember("org-1", "carer-1", rbac.RoleCarer)
	suite.seedMember("org-2", "other", rbac.RoleAdmin)

	w := suite.request("admin-1", http.MethodGet, "/api/orgs/org-1/members", nil)
	suite.Equal(http.StatusOK, w.Code)

	var response struct {
		Members []dto.OrgMemberDTO `json:"members"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Len(response.Members, 2)
}

func (suite *MemberHandlerTestSuite) TestAuditLogsAdminOnly() {
	suite.seedMember("org-1", "admin-1", rbac.RoleAdmin)
	suite.seedMember("org-1", "coord-1", rbac.RoleCoordinatorAll)

	w := suite.request("coord-1", http.MethodGet, "/api/orgs/org-1/audit-logs", nil)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request("admin-1", http.MethodGet, "/api/orgs/org-1/audit-logs", nil)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *MemberHandlerTestSuite) TestAuditLogsRecordRoleChanges() {
	suite.seedMember("org-1", "admin-1", rbac.RoleAdmin)
	suite.seedMember("org-1", "carer-1", rbac.RoleCarer)
	suite.directory.memberships["carer-1"] = []identity.Membership{
		{OrganizationID: "org-1", Role: "member"},
	}

	w := suite.request("admin-1", http.MethodPut, "/api/orgs/org-1/members/carer-1/role",
		map[string]string{"role": "carer_all"})
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.audit.Wait()

	w = suite.request("admin-1", http.MethodGet, "/api/orgs/org-1/audit-logs?action=ROLE_CHANGE", nil)
	suite.Equal(http.StatusOK, w.Code)

	var response dto.AuditLogListResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response.Entries, 1)
	suite.Equal("admin-1", response.Entries[0].UserID)
	suite.Equal("carer-1", response.Entries[0].EntityID)
}

func TestMemberHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(MemberHandlerTestSuite))
}
