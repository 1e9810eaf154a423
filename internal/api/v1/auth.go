package v1

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/kanban/internal/auth"
	"github.com/gosuda/kanban/internal/domain"
	"github.com/gosuda/kanban/internal/server/middleware"
)

type SignUpInput struct {
	Body struct {
		Email    string `json:"email" minLength:"3" maxLength:"255" doc:"User email"`
		Password string `json:"password" minLength:"6" maxLength:"128" doc:"Password"` //nolint:gosec // G117: login credential DTO
		Name     string `json:"name,omitempty" maxLength:"255" doc:"Display name"`
	}
}

type SignInInput struct {
	Body struct {
		Email    string `json:"email" minLength:"3" maxLength:"255" doc:"User email"`
		Password string `json:"password" minLength:"1" maxLength:"128" doc:"Password"` //nolint:gosec // G117: login credential DTO
	}
}

type RefreshInput struct {
	Body struct {
		RefreshToken string `json:"refresh_token" minLength:"1" doc:"Refresh token"` //nolint:gosec // G117: token refresh DTO
	}
}

type SessionOutput struct {
	Body *auth.Session
}

type OAuthInput struct {
	Provider string `path:"provider" enum:"google,github" doc:"Identity provider"`
}

type OAuthCallbackInput struct {
	Provider         string `path:"provider" enum:"google,github" doc:"Identity provider"`
	State            string `query:"state" doc:"State issued when the flow began"`
	Code             string `query:"code" doc:"Authorization code"`
	Error            string `query:"error" doc:"Error reported by the provider"`
	ErrorDescription string `query:"error_description" doc:"Provider error details"`
}

type RedirectOutput struct {
	Location string `header:"Location"`
}

type CurrentSessionOutput struct {
	Body struct {
		UserID    uuid.UUID `json:"user_id"`
		SessionID string    `json:"session_id"`
	}
}

type UserOutput struct {
	Body *domain.User
}

// RegisterAuthRoutes registers the endpoints reachable without a session.
// appURL is where the browser lands after an OAuth round trip.
func RegisterAuthRoutes(api huma.API, authSvc AuthService, appURL string) {
	huma.Register(api, huma.Operation{
		OperationID:   "sign-up",
		Method:        http.MethodPost,
		Path:          "/auth/signup",
		Summary:       "Create an account with email and password",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *SignUpInput) (*SessionOutput, error) {
		sess, err := authSvc.SignUp(ctx, input.Body.Email, input.Body.Password, input.Body.Name)
		if err != nil {
			if errors.Is(err, auth.ErrUserAlreadyExists) {
				return nil, huma.Error409Conflict("user already exists")
			}
			return nil, problem(err)
		}
		return &SessionOutput{Body: sess}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "sign-in",
		Method:      http.MethodPost,
		Path:        "/auth/signin",
		Summary:     "Sign in with email and password",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *SignInInput) (*SessionOutput, error) {
		sess, err := authSvc.SignIn(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return nil, huma.Error401Unauthorized("invalid email or password")
			}
			return nil, problem(err)
		}
		return &SessionOutput{Body: sess}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "refresh-session",
		Method:      http.MethodPost,
		Path:        "/auth/refresh",
		Summary:     "Exchange a refresh token for a new token pair",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *RefreshInput) (*SessionOutput, error) {
		sess, err := authSvc.RefreshSession(ctx, input.Body.RefreshToken)
		if err != nil {
			if isAuthFailure(err) {
				return nil, huma.Error401Unauthorized("invalid or expired refresh token")
			}
			return nil, problem(err)
		}
		return &SessionOutput{Body: sess}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "oauth-begin",
		Method:        http.MethodGet,
		Path:          "/auth/oauth/{provider}",
		Summary:       "Redirect to an OAuth provider",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusFound,
	}, func(ctx context.Context, input *OAuthInput) (*RedirectOutput, error) {
		target, err := authSvc.BeginOAuth(ctx, input.Provider)
		if err != nil {
			if errors.Is(err, auth.ErrUnknownProvider) {
				return nil, huma.Error404NotFound("oauth provider is not enabled")
			}
			return nil, problem(err)
		}
		return &RedirectOutput{Location: target}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "oauth-callback",
		Method:        http.MethodGet,
		Path:          "/auth/oauth/{provider}/callback",
		Summary:       "Complete an OAuth sign-in",
		Description:   "Redirects to the app with the session, or an error, in the URL fragment.",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusFound,
	}, func(ctx context.Context, input *OAuthCallbackInput) (*RedirectOutput, error) {
		if input.Error != "" {
			return &RedirectOutput{Location: fragmentURL(appURL, url.Values{
				"error":             {input.Error},
				"error_description": {input.ErrorDescription},
			})}, nil
		}

		sess, err := authSvc.CompleteOAuth(ctx, input.Provider, input.State, input.Code)
		if err != nil {
			log.Warn().Err(err).Str("provider", input.Provider).Msg("oauth callback failed")
			description := "Sign-in could not be completed"
			if errors.Is(err, auth.ErrEmailUnavailable) {
				description = "Your account has no verified email address"
			}
			return &RedirectOutput{Location: fragmentURL(appURL, url.Values{
				"error":             {"access_denied"},
				"error_description": {description},
			})}, nil
		}

		return &RedirectOutput{Location: fragmentURL(appURL, url.Values{
			"access_token":  {sess.AccessToken},
			"refresh_token": {sess.RefreshToken},
			"expires_in":    {strconv.Itoa(sess.ExpiresIn)},
			"token_type":    {sess.TokenType},
		})}, nil
	})
}

// RegisterSessionRoutes registers the endpoints that act on the caller's
// own session. They must be mounted behind the auth middleware.
func RegisterSessionRoutes(api huma.API, authSvc AuthService) {
	huma.Register(api, huma.Operation{
		OperationID: "get-session",
		Method:      http.MethodGet,
		Path:        "/auth/session",
		Summary:     "Describe the current session",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, _ *struct{}) (*CurrentSessionOutput, error) {
		p, err := principal(ctx)
		if err != nil {
			return nil, err
		}
		out := &CurrentSessionOutput{}
		out.Body.UserID = p.UserID
		out.Body.SessionID = p.SessionID
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-user",
		Method:      http.MethodGet,
		Path:        "/auth/user",
		Summary:     "Get the signed-in user",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, _ *struct{}) (*UserOutput, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		u, err := authSvc.GetUser(ctx, userID)
		if err != nil {
			if errors.Is(err, auth.ErrUserNotFound) {
				return nil, huma.Error401Unauthorized(msgLoginNeeded)
			}
			return nil, problem(err)
		}
		return &UserOutput{Body: u}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "sign-out",
		Method:        http.MethodPost,
		Path:          "/auth/signout",
		Summary:       "Revoke the current session",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, _ *struct{}) (*struct{}, error) {
		p, err := principal(ctx)
		if err != nil {
			return nil, err
		}

		if err := authSvc.SignOut(ctx, p); err != nil {
			return nil, problem(err)
		}
		return nil, nil
	})
}

func principal(ctx context.Context) (*auth.Principal, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	sessionID, ok := middleware.SessionIDFromContext(ctx)
	if !ok || sessionID == "" {
		return nil, huma.Error401Unauthorized(msgLoginNeeded)
	}
	return &auth.Principal{UserID: userID, SessionID: sessionID}, nil
}

func isAuthFailure(err error) bool {
	return errors.Is(err, auth.ErrInvalidToken) ||
		errors.Is(err, auth.ErrSessionNotFound) ||
		errors.Is(err, auth.ErrUserNotFound)
}

func fragmentURL(base string, v url.Values) string {
	return strings.TrimSuffix(base, "/") + "/#" + v.Encode()
}
