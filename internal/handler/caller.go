package handler

import (
	"net/http"

	"hr-portal/internal/middleware"
	"hr-portal/internal/model"
	"hr-portal/pkg/apierror"
)

// callerClaims returns the custom-session claims for the request. Routes using
// it sit behind RequireSession, so a miss here means a provider-bridged or
// anonymous caller hit an endpoint that needs a full account.
func callerClaims(r *http.Request) (*model.SessionClaims, error) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok || identity.Kind != model.IdentityCustom {
		return nil, apierror.Forbidden("a portal account session is required")
	}
	return identity.Claims, nil
}

// callerEmployee additionally requires an employee linkage, which self-service
// attendance and leave endpoints cannot work without.
func callerEmployee(r *http.Request) (*model.SessionClaims, *model.EmployeeSnapshot, error) {
	claims, err := callerClaims(r)
	if err != nil {
		return nil, nil, err
	}
	if claims.Employee == nil {
		return nil, nil, apierror.Forbidden("no employee record is linked to this account")
	}
	return claims, claims.Employee, nil
}
