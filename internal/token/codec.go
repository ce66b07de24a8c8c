package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hr-portal/internal/model"
)

var (
	ErrExpired          = errors.New("session token expired")
	ErrInvalidSignature = errors.New("session token signature invalid")
)

// Codec mints and verifies HS256 session tokens. It is a pure function of its
// input and the shared secret; revocation is the caller's concern.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Mint issues a token valid for ttl from now. Issued-at and expiration are set
// here; the caller fills every other claim.
func (c *Codec) Mint(claims model.SessionClaims, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	return c.MintWithExpiry(claims, now, now.Add(ttl))
}

// MintWithExpiry issues a token with explicit issued-at/expiration timestamps.
// Used by the employee-linkage refresh, which must not extend the session.
func (c *Codec) MintWithExpiry(claims model.SessionClaims, issuedAt time.Time, expiresAt time.Time) (string, error) {
	mc := jwt.MapClaims{
		"sub":           claims.UserID,
		"email":         claims.Email,
		"jti":           claims.JTI,
		"permissions":   claims.Permissions,
		"last_login_at": claims.LastLoginAt.UTC().Unix(),
		"iat":           issuedAt.UTC().Unix(),
		"exp":           expiresAt.UTC().Unix(),
	}
	if claims.Username != "" {
		mc["username"] = claims.Username
	}
	if claims.Role != nil {
		mc["role"] = *claims.Role
	}
	if claims.Employee != nil {
		emp := map[string]any{
			"id":        claims.Employee.ID,
			"full_name": claims.Employee.FullName,
		}
		if claims.Employee.Department != nil {
			emp["department"] = *claims.Employee.Department
		}
		if claims.Employee.Position != nil {
			emp["position"] = *claims.Employee.Position
		}
		if claims.Employee.EmploymentStatus != nil {
			emp["employment_status"] = *claims.Employee.EmploymentStatus
		}
		mc["employee"] = emp
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString(c.secret)
}

// Verify checks signature and expiration and decodes the claims. It never
// consults the session store; callers cross-check revocation separately.
func (c *Codec) Verify(raw string) (model.SessionClaims, error) {
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.SessionClaims{}, ErrExpired
		}
		return model.SessionClaims{}, ErrInvalidSignature
	}
	if !parsed.Valid {
		return model.SessionClaims{}, ErrInvalidSignature
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return model.SessionClaims{}, ErrInvalidSignature
	}

	claims := model.SessionClaims{}
	claims.UserID, _ = mc["sub"].(string)
	claims.Email, _ = mc["email"].(string)
	claims.Username, _ = mc["username"].(string)
	claims.JTI, _ = mc["jti"].(string)
	if claims.UserID == "" || claims.JTI == "" {
		return model.SessionClaims{}, ErrInvalidSignature
	}

	if role, ok := mc["role"].(string); ok {
		claims.Role = &role
	}
	if perms, ok := mc["permissions"].([]any); ok {
		for _, p := range perms {
			if code, ok := p.(string); ok {
				claims.Permissions = append(claims.Permissions, code)
			}
		}
	}
	if ts, ok := mc["last_login_at"].(float64); ok {
		claims.LastLoginAt = time.Unix(int64(ts), 0).UTC()
	}
	if ts, ok := mc["iat"].(float64); ok {
		claims.IssuedAt = time.Unix(int64(ts), 0).UTC()
	}
	if ts, ok := mc["exp"].(float64); ok {
		claims.ExpiresAt = time.Unix(int64(ts), 0).UTC()
	}
	if emp, ok := mc["employee"].(map[string]any); ok {
		claims.Employee = decodeEmployee(emp)
	}

	return claims, nil
}

func decodeEmployee(m map[string]any) *model.EmployeeSnapshot {
	snapshot := &model.EmployeeSnapshot{}
	if id, ok := m["id"].(float64); ok {
		snapshot.ID = int64(id)
	}
	snapshot.FullName, _ = m["full_name"].(string)
	if v, ok := m["department"].(string); ok {
		snapshot.Department = &v
	}
	if v, ok := m["position"].(string); ok {
		snapshot.Position = &v
	}
	if v, ok := m["employment_status"].(string); ok {
		snapshot.EmploymentStatus = &v
	}
	return snapshot
}
