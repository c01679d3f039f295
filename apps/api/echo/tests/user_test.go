package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core/user"
)

func Test_userApi_login(t *testing.T) {
	usr := createUser(t, "Jay Looh", "jaylooh", "jaylooh@test.cd", "LeP@ssword", user.StudentRoles, true)
	naughty := createUser(t, "N Dog", "ndog", "ndog@test.cd", "LeP@ssword", user.StudentRoles, false)

	tests := []httpTest{
		{
			name: "empty data", body: marchallObj(t, echoapi.LoginRequest{}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown user", body: marchallObj(t, echoapi.LoginRequest{Username: "lol", Password: "lol"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", body: marchallObj(t, echoapi.LoginRequest{Username: usr.Username, Password: "lol"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", body: marchallObj(t, echoapi.LoginRequest{Username: naughty.Username, Password: "LeP@ssword"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{name: "login with username", body: marchallObj(t, echoapi.LoginRequest{Username: usr.Username, Password: "LeP@ssword"}), wantCode: http.StatusOK},
		{name: "login with email", body: marchallObj(t, echoapi.LoginRequest{Username: usr.Email, Password: "LeP@ssword"}), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			var resp echoapi.LoginResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Token)
		})
	}
}

func Test_userApi_create(t *testing.T) {
	student := createUser(t, "Hero", "heroyolo", "heroyolo@test.cd", "", user.StudentRoles, true)
	admin := createUser(t, "Admin", "adminregister", "adminregister@test.cd", "", []string{user.RoleAdmin}, true)

	body := func(uname, email string, roles ...string) []byte {
		return marchallObj(t, user.NewUser{
			Name:            "New User",
			Username:        uname,
			Email:           email,
			Password:        "LeP@ssword",
			PasswordConfirm: "LeP@ssword",
			Roles:           roles,
		})
	}

	tests := []httpTest{
		{
			name: "auth required", body: body("newuser01", "newuser01@test.cd"),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "admin required", body: body("newuser01", "newuser01@test.cd"), token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "cannot grant a higher role", body: body("newuser01", "newuser01@test.cd", user.RoleAdminOwner),
			token: getToken(t, admin), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"roles": "not enough rights to set these roles"}),
		},
		{name: "create", body: body("newuser01", "newuser01@test.cd", user.RoleStudent), token: getToken(t, admin), wantCode: http.StatusCreated},
		{
			name: "duplicate username", body: body("newuser01", "other@test.cd", user.RoleStudent), token: getToken(t, admin),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"username": user.ErrUsernameExists.Error()}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			var usr user.User
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usr))
			assert.Equal(t, "newuser01", usr.Username)
			assert.NotEmpty(t, usr.ID)
		})
	}
}

func Test_userApi_retrieve(t *testing.T) {
	usr := createUser(t, "Self", "selfuser", "selfuser@test.cd", "", user.StudentRoles, true)
	other := createUser(t, "Other", "otheruser", "otheruser@test.cd", "", user.StudentRoles, true)
	admin := createUser(t, "Admin", "adminretrieve", "adminretrieve@test.cd", "", []string{user.RoleAdmin}, true)

	tests := []httpTest{
		{name: "auth required", path: "/v1/users/" + usr.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "own account", path: "/v1/users/" + usr.ID, token: getToken(t, usr), wantCode: http.StatusOK, wantData: marchallObj(t, usr)},
		{
			name: "someone else's account", path: "/v1/users/" + usr.ID, token: getToken(t, other),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{name: "admin can see any account", path: "/v1/users/" + usr.ID, token: getToken(t, admin), wantCode: http.StatusOK, wantData: marchallObj(t, usr)},
		{
			name: "unknown account", path: "/v1/users/lol", token: getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_refreshToken(t *testing.T) {
	usr := createUser(t, "Refresher", "refresher", "refresher@test.cd", "", user.StudentRoles, true)

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/token-refresh")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("refresh", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", getToken(t, usr))
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp echoapi.LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
	})
}
