package handlers_test

import (
	"net/http"
	"testing"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUpdateProfile(t *testing.T) {
	h := newHarness(t)
	c, _ := h.login("priya@example.com", models.RoleUser)

	rec := c.do(http.MethodPut, "/api/users/me", map[string]interface{}{
		"name":  " Priya S ",
		"phone": "9876543210",
		"preferences": map[string]interface{}{
			"cities":    []string{"Pune", " Pune", "Goa"},
			"budgetMin": 5000000,
			"budgetMax": 9000000,
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Profile updated successfully", decode(t, rec)["message"])

	rec = c.do(http.MethodGet, "/api/users/me", nil)
	me := data(t, rec)
	assert.Equal(t, "Priya S", me["name"])
	assert.Equal(t, "9876543210", me["phone"])
	prefs := me["preferences"].(map[string]interface{})
	assert.Equal(t, []interface{}{"Pune", "Goa"}, prefs["cities"])
	assert.Equal(t, float64(9000000), prefs["budgetMax"])
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestUpdateProfileValidation(t *testing.T) {
	h := newHarness(t)
	c, _ := h.login("priya@example.com", models.RoleUser)

	rec := c.do(http.MethodPut, "/api/users/me", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No valid fields to update", decode(t, rec)["message"])

	rec = c.do(http.MethodPut, "/api/users/me", map[string]interface{}{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []interface{}{"name cannot be empty"}, decode(t, rec)["errors"])

	rec = c.do(http.MethodPut, "/api/users/me", map[string]interface{}{
		"preferences": map[string]interface{}{"budgetMin": 10, "budgetMax": 5},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []interface{}{"preferences budget range is invalid"}, decode(t, rec)["errors"])

	rec = c.do(http.MethodPut, "/api/users/me", map[string]interface{}{"avatar": "not a url"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []interface{}{"avatar must be a valid URL"}, decode(t, rec)["errors"])
}

func TestAdminUserDirectory(t *testing.T) {
	h := newHarness(t)
	admin, adminUser := h.login("admin@example.com", models.RoleAdmin)
	member, memberUser := h.login("member@example.com", models.RoleUser)

	assert.Equal(t, http.StatusForbidden, member.do(http.MethodGet, "/api/users", nil).Code)
	rec := member.do(http.MethodPut, "/api/users/"+adminUser.ID.Hex()+"/role", map[string]string{"role": "user"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = admin.do(http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, list(t, rec), 2)

	path := "/api/users/" + memberUser.ID.Hex() + "/role"
	rec = admin.do(http.MethodPut, path, map[string]string{"role": "agent"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "User role updated successfully", decode(t, rec)["message"])
	assert.Equal(t, "agent", data(t, rec)["role"])

	// The new role applies to the member's existing session.
	rec = member.do(http.MethodGet, "/api/users/me", nil)
	assert.Equal(t, "agent", data(t, rec)["role"])

	rec = admin.do(http.MethodPut, path, map[string]string{"role": "owner"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []interface{}{"role must be one of: user, agent, admin"}, decode(t, rec)["errors"])

	rec = admin.do(http.MethodPut, "/api/users/"+adminUser.ID.Hex()+"/role", map[string]string{"role": "user"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "You cannot change your own role", decode(t, rec)["message"])

	rec = admin.do(http.MethodPut, "/api/users/"+primitive.NewObjectID().Hex()+"/role", map[string]string{"role": "user"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = admin.do(http.MethodPut, "/api/users/bad/role", map[string]string{"role": "user"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
