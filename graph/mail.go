package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	neturl "net/url"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

type MailService struct{ m *Manager }

func NewMailService(m *Manager) *MailService { return &MailService{m: m} }

// previewLimit caps the body preview carried into summaries.
const previewLimit = 200

// List fetches messages from a well-known folder, newest first.
func (s *MailService) List(ctx context.Context, in *ListMailInput, scopes []string, prompt func(string)) (*ListMailOutput, error) {
	if in.Top <= 0 {
		in.Top = 10
	}
	folder := in.Folder
	if folder == "" {
		folder = "inbox"
	}
	q := neturl.Values{}
	q.Set("$orderby", "receivedDateTime desc")
	q.Set("$top", fmt.Sprintf("%d", in.Top))
	q.Set("$select", "id,subject,from,receivedDateTime,isRead,bodyPreview,importance")
	if in.UnreadOnly {
		q.Set("$filter", "isRead eq false")
	}
	cred, err := s.m.Credential(ctx, in.Account.Alias, in.Account.TenantID, scopes, prompt)
	if err != nil {
		return nil, err
	}
	tok, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: scopes})
	if err != nil {
		return nil, err
	}
	url := graphBaseURL + "/me/mailFolders/" + neturl.PathEscape(folder) + "/messages?" + q.Encode()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("list messages failed: %s", resp.Status)
	}
	var payload struct {
		Value []struct {
			ID      string `json:"id"`
			Subject string `json:"subject"`
			From    struct {
				EmailAddress struct {
					Name    string `json:"name"`
					Address string `json:"address"`
				} `json:"emailAddress"`
			} `json:"from"`
			ReceivedDateTime string `json:"receivedDateTime"`
			IsRead           bool   `json:"isRead"`
			BodyPreview      string `json:"bodyPreview"`
			Importance       string `json:"importance"`
		} `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	out := &ListMailOutput{}
	for _, msg := range payload.Value {
		out.Messages = append(out.Messages, Email{
			ID:               msg.ID,
			Subject:          msg.Subject,
			From:             msg.From.EmailAddress.Name,
			FromEmail:        msg.From.EmailAddress.Address,
			ReceivedDateTime: msg.ReceivedDateTime,
			IsRead:           msg.IsRead,
			Preview:          truncate(msg.BodyPreview, previewLimit),
			Importance:       msg.Importance,
		})
	}
	return out, nil
}

// truncate caps s at n characters, never splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
