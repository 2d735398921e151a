package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fashion-shop/internal/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func claimsFor(id uuid.UUID, role model.Role, expires time.Time) Claims {
	return Claims{
		Name: "jane",
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
}

func TestBearerAuth(t *testing.T) {
	userID := uuid.New()
	valid := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), claimsFor(userID, model.RoleCustomer, time.Now().Add(time.Hour)))

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{name: "Valid token", header: "Bearer " + valid, expectedStatus: http.StatusOK},
		{name: "Lower-case scheme", header: "bearer " + valid, expectedStatus: http.StatusOK},
		{name: "Missing header", header: "", expectedStatus: http.StatusUnauthorized},
		{name: "Wrong scheme", header: "Basic " + valid, expectedStatus: http.StatusUnauthorized},
		{
			name:           "Expired token",
			header:         "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), claimsFor(userID, model.RoleCustomer, time.Now().Add(-time.Minute))),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong secret",
			header:         "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other"), claimsFor(userID, model.RoleCustomer, time.Now().Add(time.Hour))),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Unknown role",
			header:         "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), claimsFor(userID, "root", time.Now().Add(time.Hour))),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Unsigned token",
			header:         "Bearer " + signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, claimsFor(userID, model.RoleAdmin, time.Now().Add(time.Hour))),
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got model.Actor
			handler := BearerAuth(testSecret, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = ActorFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/order", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, model.Actor{ID: userID, Name: "jane", Role: model.RoleCustomer}, got)
			} else {
				assert.Contains(t, w.Body.String(), `"message"`)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name           string
		actor          *model.Actor
		expectedStatus int
	}{
		{name: "Staff allowed", actor: &model.Actor{ID: uuid.New(), Role: model.RoleStaff}, expectedStatus: http.StatusOK},
		{name: "Admin allowed", actor: &model.Actor{ID: uuid.New(), Role: model.RoleAdmin}, expectedStatus: http.StatusOK},
		{name: "Customer forbidden", actor: &model.Actor{ID: uuid.New(), Role: model.RoleCustomer}, expectedStatus: http.StatusForbidden},
		{name: "Anonymous", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireRole(model.RoleStaff, model.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/order", nil)
			if tt.actor != nil {
				req = req.WithContext(WithActor(req.Context(), *tt.actor))
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
