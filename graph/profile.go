package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

type ProfileService struct{ m *Manager }

func NewProfileService(m *Manager) *ProfileService { return &ProfileService{m: m} }

// Get fetches the signed-in user's profile. Mail falls back to the
// user principal name when the mailbox address is not set.
func (s *ProfileService) Get(ctx context.Context, in *GetProfileInput, scopes []string, prompt func(string)) (*Profile, error) {
	cred, err := s.m.Credential(ctx, in.Account.Alias, in.Account.TenantID, scopes, prompt)
	if err != nil {
		return nil, err
	}
	tok, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: scopes})
	if err != nil {
		return nil, err
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, graphBaseURL+"/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("get profile failed: %s", resp.Status)
	}
	var payload struct {
		ID                string `json:"id"`
		DisplayName       string `json:"displayName"`
		Mail              string `json:"mail"`
		UserPrincipalName string `json:"userPrincipalName"`
		JobTitle          string `json:"jobTitle"`
		OfficeLocation    string `json:"officeLocation"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	mail := payload.Mail
	if mail == "" {
		mail = payload.UserPrincipalName
	}
	return &Profile{
		ID:             payload.ID,
		DisplayName:    payload.DisplayName,
		Mail:           mail,
		JobTitle:       payload.JobTitle,
		OfficeLocation: payload.OfficeLocation,
	}, nil
}
