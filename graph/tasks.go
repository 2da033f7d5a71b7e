package graph

import (
	"context"
	"encoding/json"
	"net/http"
	neturl "net/url"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

type TaskService struct{ m *Manager }

func NewTaskService(m *Manager) *TaskService { return &TaskService{m: m} }

// List aggregates tasks across To Do lists, optionally restricted to a
// single list by display name. Lists come from the SDK client, tasks
// from per-list REST calls; a failing list is skipped rather than
// failing the whole aggregation.
func (s *TaskService) List(ctx context.Context, in *ListTasksInput, scopes []string, prompt func(string)) (*ListTasksOutput, error) {
	if in.Top <= 0 {
		in.Top = 20
	}
	client, err := s.m.Client(ctx, in.Account.Alias, in.Account.TenantID, scopes, prompt)
	if err != nil {
		return nil, err
	}
	lists, err := client.Me().Todo().Lists().Get(ctx, nil)
	if err != nil {
		return nil, err
	}
	cred, err := s.m.Credential(ctx, in.Account.Alias, in.Account.TenantID, scopes, prompt)
	if err != nil {
		return nil, err
	}
	tok, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: scopes})
	if err != nil {
		return nil, err
	}
	out := &ListTasksOutput{}
	for _, l := range lists.GetValue() {
		if len(out.Tasks) >= in.Top {
			break
		}
		listName := ptrVal(l.GetDisplayName())
		if in.ListName != "" && listName != in.ListName {
			continue
		}
		lid := ptrVal(l.GetId())
		q := neturl.Values{}
		q.Set("$top", "20")
		q.Set("$orderby", "importance desc,dueDateTime/dateTime asc")
		if !in.IncludeCompleted {
			q.Set("$filter", "status ne 'completed'")
		}
		url := graphBaseURL + "/me/todo/lists/" + neturl.PathEscape(lid) + "/tasks?" + q.Encode()
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		req.Header.Set("Authorization", "Bearer "+tok.Token)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			continue
		}
		s.appendListTasks(out, resp, listName, in.Top)
	}
	return out, nil
}

func (s *TaskService) appendListTasks(out *ListTasksOutput, resp *http.Response, listName string, top int) {
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return
	}
	var payload struct {
		Value []struct {
			ID          string `json:"id"`
			Title       string `json:"title"`
			Status      string `json:"status"`
			Importance  string `json:"importance"`
			DueDateTime struct {
				DateTime string `json:"dateTime"`
			} `json:"dueDateTime"`
			Body struct {
				Content string `json:"content"`
			} `json:"body"`
		} `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return
	}
	for _, t := range payload.Value {
		if len(out.Tasks) >= top {
			break
		}
		out.Tasks = append(out.Tasks, Task{
			ID:         t.ID,
			Title:      t.Title,
			ListName:   listName,
			Status:     t.Status,
			Importance: t.Importance,
			DueDate:    t.DueDateTime.DateTime,
			Body:       truncate(t.Body.Content, previewLimit),
		})
	}
}

func ptrVal[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
