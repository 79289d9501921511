package muspy

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// UserService provides account operations.
type UserService struct {
	client *Client
}

// Get returns a user profile. An empty userID selects the profile of the
// authenticated account.
func (s *UserService) Get(ctx context.Context, userID string) (*UserInfo, error) {
	path := "/user"
	if userID != "" {
		path = joinPath("user", userID)
	}

	var user UserInfo
	err := s.client.callJSON(ctx, request{
		method:       http.MethodGet,
		path:         path,
		requiresAuth: true,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create registers a new account. When sendActivation is set the service
// mails an activation link to email.
func (s *UserService) Create(ctx context.Context, email, password string, sendActivation bool) error {
	if !emailPattern.MatchString(email) {
		return &ValidationError{Field: "email", Err: errInvalidEmail}
	}
	if password == "" {
		return &ValidationError{Field: "password", Err: errEmptyPassword}
	}

	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)
	form.Set("activate", strconv.Itoa(boolInt(sendActivation)))

	_, err := s.client.call(ctx, request{
		method: http.MethodPost,
		path:   "/user",
		form:   form,
	})
	return err
}

// Update changes the fields set in u and returns the updated profile.
// An empty update is rejected locally.
func (s *UserService) Update(ctx context.Context, userID string, u UserUpdate) (*UserInfo, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	var user UserInfo
	err := s.client.callJSON(ctx, request{
		method:       http.MethodPut,
		path:         joinPath("user", userID),
		form:         u.form(),
		requiresAuth: true,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete removes an account. This cannot be undone and asks for no
// confirmation.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	_, err := s.client.call(ctx, request{
		method:       http.MethodDelete,
		path:         joinPath("user", userID),
		requiresAuth: true,
	})
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
