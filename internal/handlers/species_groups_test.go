package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/quollhaven/wildlife-rehab-api/internal/constants"
	"github.com/quollhaven/wildlife-rehab-api/internal/dto"
	"github.com/quollhaven/wildlife-rehab-api/internal/middleware"
	"github.com/quollhaven/wildlife-rehab-api/internal/models"
	"github.com/quollhaven/wildlife-rehab-api/internal/rbac"
	"github.com/quollhaven/wildlife-rehab-api/internal/repository"
	"github.com/quollhaven/wildlife-rehab-api/internal/services"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type speciesGroupTestEnv struct {
	db     *gorm.DB
	router *gin.Engine
	groups *services.SpeciesGroupService
}

func setupSpeciesGroupTestEnv(t *testing.T) speciesGroupTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.OrgMember{},
		&models.SpeciesGroup{},
		&models.SpeciesGroupEntry{},
		&models.CoordinatorAssignment{},
		&models.AuditLog{},
	)
	require.NoError(t, err)

	memberRepo := repository.NewOrgMemberRepository(db)
	groupRepo := repository.NewSpeciesGroupRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	audit := services.NewAuditService(auditRepo)
	memberService := services.NewMemberService(memberRepo, &fakeDirectory{}, audit)
	groupService := services.NewSpeciesGroupService(groupRepo, memberRepo, audit)
	handler := NewSpeciesGroupHandler(groupService)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	r.POST("/test/login", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(constants.ContextKeyUserID, c.Query("user"))
		require.NoError(t, session.Save())
		c.Status(http.StatusOK)
	})

	org := r.Group("/api/orgs/:org_id")
	org.Use(middleware.RequireAuth(), middleware.RequireOrgMember(memberService))
	groups := org.Group("/species-groups")
	groups.GET("", handler.ListGroups)
	groups.POST("", middleware.RequirePermission(rbac.ActionSpeciesGroupManage), handler.CreateGroup)
	groups.PATCH("/:group_id", middleware.RequirePermission(rbac.ActionSpeciesGroupManage), handler.UpdateGroup)
	groups.DELETE("/:group_id", middleware.RequirePermission(rbac.ActionSpeciesGroupManage), handler.DeleteGroup)
	groups.POST("/:group_id/coordinators/:user_id", middleware.RequirePermission(rbac.ActionCoordinatorAssign), handler.AssignCoordinator)
	groups.DELETE("/:group_id/coordinators/:user_id", middleware.RequirePermission(rbac.ActionCoordinatorAssign), handler.UnassignCoordinator)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		audit.Wait()
		sqlDB.Close()
	})

	return speciesGroupTestEnv{db: db, router: r, groups: groupService}
}

func (env speciesGroupTestEnv) seedMember(t *testing.T, orgID, userID string, role rbac.Role) {
	t.Helper()
	require.NoError(t, env.db.Create(&models.OrgMember{OrgID: orgID, UserID: userID, Role: role}).Error)
}

func (env speciesGroupTestEnv) request(t *testing.T, userID, method, url string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	loginW := httptest.NewRecorder()
	env.router.ServeHTTP(loginW, httptest.NewRequest(http.MethodPost, "/test/login?user="+userID, nil))
	require.Equal(t, http.StatusOK, loginW.Code)

	var data []byte
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, url, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range loginW.Result().Cookies() {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestSpeciesGroupHandler_CreateGroup(t *testing.T) {
	env := setupSpeciesGroupTestEnv(t)
	env.seedMember(t, "org-1", "admin-1", rbac.RoleAdmin)

	w := env.request(t, "admin-1", http.MethodPost, "/api/orgs/org-1/species-groups", map[string]any{
		"slug":    "possums",
		"name":    "Possums",
		"species": []string{"Common Ringtail Possum", "Brushtail Possum"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var group dto.SpeciesGroupDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &group))
	require.Equal(t, "possums", group.Slug)
	require.Len(t, group.Species, 2)
}

func TestSpeciesGroupHandler_CreateRequiresAdmin(t *testing.T) {
	env := setupSpeciesGroupTestEnv(t)
	env.seedMember(t, "org-1", "coord-1", rbac.RoleCoordinatorAll)

	w := env.request(t, "coord-1", http.MethodPost, "/api/orgs/org-1/species-groups", map[string]any{
		"slug":    "possums",
		"name":    "Possums",
		"species": []string{"Common Ringtail Possum"},
	})
	require.Equal(t, http.StatusForbidden, w.Code)
	require.JSONEq(t, `{"error":"Forbidden"}`, w.Body.String())
}

func TestSpeciesGroupHandler_DuplicateSlug(t *testing.T) {
	env := setupSpeciesGroupTestEnv(t)
	env.seedMember(t, "org-1", "admin-1", rbac.RoleAdmin)

	payload := map[string]any{
		"slug":    "possums",
		"name":    "Possums",
		"species": []string{"Common Ringtail Possum"},
	}
	w := env.request(t, "admin-1", http.MethodPost, "/api/orgs/org-1/species-groups", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, "admin-1", http.MethodPost, "/api/orgs/org-1/species-groups", payload)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestSpeciesGroupHandler_ListOpenToMembers(t *testing.T) {
	env := setupSpeciesGroupTestEnv(t)
	env.seedMember(t, "org-1", "admin-1", rbac.RoleAdmin)
	env.seedMember(t, "org-1", "carer-1", rbac.RoleCarer)

	w := env.request(t, "admin-1", http.MethodPost, "/api/orgs/org-1/species-groups", map[string]any{
		"slug":    "birds",
		"name":    "Birds",
		"species": []string{"Australian Magpie"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Any member can read the registry; only admins write it.
	w = env.request(t, "carer-1", http.MethodGet, "/api/orgs/org-1/species-groups", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		SpeciesGroups []dto.SpeciesGroupDTO `json:"species_groups"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.SpeciesGroups, 1)
}

func TestSpeciesGroupHandler_CrossTenantIDReads404(t *testing.T) {
	env := setupSpeciesGroupTestEnv(t)
	env.seedMember(t, "org-1", "admin-1", rbac.RoleAdmin)
	env.seedMember(t, "org-2", "admin-2", rbac.RoleAdmin)

	w := env.request(t, "admin-1", http.MethodPost, "/api/orgs/org-1/species-groups", map[string]any{
		"slug":    "possums",
		"name":    "Possums",
		"species": []string{"Common Ringtail Possum"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var group dto.SpeciesGroupDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &group))

	// org-2's admin presenting org-1's group id gets a 404, same as a
	// made-up id.
	url := fmt.Sprintf("/api/orgs/org-2/species-groups/%d", group.ID)
	w = env.request(t, "admin-2", http.MethodPatch, url, map[string]any{"name": "Stolen"})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.request(t, "admin-2", http.MethodDelete, url, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSpeciesGroupHandler_AssignCoordinator(t *testing.T) {
	env := setupSpeciesGroupTestEnv(t)
	env.seedMember(t, "org-1", "admin-1", rbac.RoleAdmin)
	env.seedMember(t, "org-1", "coord-1", rbac.RoleCoordinator)
	env.seedMember(t, "org-1", "carer-1", rbac.RoleCarer)

	w := env.request(t, "admin-1", http.MethodPost, "/api/orgs/org-1/species-groups", map[string]any{
		"slug":    "possums",
		"name":    "Possums",
		"species": []string{"Common Ringtail Possum"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var group dto.SpeciesGroupDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &group))

	base := fmt.Sprintf("/api/orgs/org-1/species-groups/%d/coordinators", group.ID)

	w = env.request(t, "admin-1", http.MethodPost, base+"/coord-1", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	// Assigning twice conflicts; assigning a carer is a bad request.
	w = env.request(t, "admin-1", http.MethodPost, base+"/coord-1", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	w = env.request(t, "admin-1", http.MethodPost, base+"/carer-1", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.request(t, "admin-1", http.MethodDelete, base+"/coord-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.request(t, "admin-1", http.MethodDelete, base+"/coord-1", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
