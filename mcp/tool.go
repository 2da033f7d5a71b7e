package mcp

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"

	"github.com/prodhub/mcp-m365/graph"
	"github.com/prodhub/mcp-m365/scheduler"
)

//go:embed tools/m365GetProfile.md
var m365GetProfileDesc string

//go:embed tools/m365ListEvents.md
var m365ListEventsDesc string

//go:embed tools/m365ListMail.md
var m365ListMailDesc string

//go:embed tools/m365ListTasks.md
var m365ListTasksDesc string

//go:embed tools/findAvailableSlots.md
var findAvailableSlotsDesc string

//go:embed tools/prioritizeTasks.md
var prioritizeTasksDesc string

//go:embed tools/summarizeEmails.md
var summarizeEmailsDesc string

//go:embed tools/draftReply.md
var draftReplyDesc string

//go:embed tools/dailyBriefing.md
var dailyBriefingDesc string

// FindSlotsInput bounds a free-slot search for an account's calendar.
type FindSlotsInput struct {
	Account graph.Account `json:"account"`
	scheduler.SlotOptions
}

type FindSlotsOutput struct {
	Slots []scheduler.Slot `json:"slots"`
	Count int              `json:"count"`
}

// PrioritizeTasksInput scores an account's open tasks.
type PrioritizeTasksInput struct {
	Account graph.Account `json:"account"`
	// Criteria is urgency, importance or balanced (default urgency).
	Criteria string `json:"criteria,omitempty" description:"urgency, importance or balanced"`
	ListName string `json:"listName,omitempty" description:"task list display name, all lists when empty"`
	Top      int    `json:"top,omitempty" description:"number of tasks to consider"`
}

type PrioritizeTasksOutput struct {
	Tasks []scheduler.PrioritizedTask `json:"tasks"`
}

// SummarizeEmailsInput triages an account's recent mail.
type SummarizeEmailsInput struct {
	Account graph.Account `json:"account"`
	// Filter is all, unread or important (default all).
	Filter string `json:"filter,omitempty" description:"all, unread or important"`
	Top    int    `json:"top,omitempty" description:"number of messages to consider"`
}

// DraftReplyInput composes a reply for the given message.
type DraftReplyInput struct {
	Email graph.Email `json:"email"`
	// Tone is professional, friendly or brief (default professional).
	Tone string `json:"tone,omitempty" description:"professional, friendly or brief"`
	// Intent is acknowledge, decline, accept or follow_up.
	Intent string `json:"intent,omitempty" description:"acknowledge, decline, accept or follow_up"`
}

// DailyBriefingInput requests the combined morning summary.
type DailyBriefingInput struct {
	Account graph.Account `json:"account"`
}

type DailyBriefingOutput struct {
	Briefing string `json:"briefing"`
}

func registerTools(base *protoserver.DefaultHandler, h *Handler) error {
	svc := h.service
	ops := h.ops

	// Non-blocking OOB launch pointing at the server-side device page.
	startOOB := func(ctx context.Context, alias, tenant string) {
		if ops == nil || !ops.Implements(schema.MethodElicitationCreate) {
			return
		}
		ns, _ := svc.Auth().Namespace(ctx)
		if ns == "" {
			ns = "default"
		}
		id := newUUID()
		svc.Pending().Put(&PendingAuth{UUID: id, Alias: alias, TenantID: tenant, Namespace: ns})
		svc.GraphManager().StartDeviceLogin(ctx, alias, tenant, graph.DefaultScopes(), func() {
			svc.Pending().Complete(id)
		})
		baseURL := strings.TrimRight(svc.BaseURL(), "/")
		url := fmt.Sprintf("%s/m365/auth/device/%s?alias=%s", baseURL, id, alias)
		go func() {
			ctx2, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_, _ = ops.Elicit(ctx2, &jsonrpc.TypedRequest[*schema.ElicitRequest]{Request: &schema.ElicitRequest{
				Params: schema.ElicitRequestParams{ElicitationId: id, Message: "Sign in to Microsoft 365", Mode: string(schema.ElicitRequestParamsModeUrl), Url: url},
			}})
		}()
	}

	ensureAccount := func(ctx context.Context, account *graph.Account) *jsonrpc.Error {
		if account.Alias == "" {
			return jsonrpc.NewError(jsonrpc.InvalidParams, "account.alias is required", nil)
		}
		if account.TenantID == "" {
			account.TenantID = svc.TenantID()
		}
		if svc.GraphManager().NeedsInteractive(ctx, account.Alias, account.TenantID, graph.DefaultScopes()) {
			startOOB(ctx, account.Alias, account.TenantID)
		}
		return nil
	}

	profileSvc := graph.NewProfileService(svc.GraphManager())
	mailSvc := graph.NewMailService(svc.GraphManager())
	calSvc := graph.NewCalendarService(svc.GraphManager())
	taskSvc := graph.NewTaskService(svc.GraphManager())
	sched := svc.Scheduler()

	// Profile
	if err := protoserver.RegisterTool[*graph.GetProfileInput, *graph.Profile](base.Registry, "m365GetProfile", m365GetProfileDesc, func(ctx context.Context, in *graph.GetProfileInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if jErr := ensureAccount(ctx, &in.Account); jErr != nil {
			return nil, jErr
		}
		out, err := profileSvc.Get(ctx, in, graph.DefaultScopes(), nil)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(svc, out)
	}); err != nil {
		return err
	}

	// List events
	if err := protoserver.RegisterTool[*graph.ListEventsInput, *graph.ListEventsOutput](base.Registry, "m365ListEvents", m365ListEventsDesc, func(ctx context.Context, in *graph.ListEventsInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if jErr := ensureAccount(ctx, &in.Account); jErr != nil {
			return nil, jErr
		}
		out, err := calSvc.List(ctx, in, graph.DefaultScopes(), nil)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(svc, out)
	}); err != nil {
		return err
	}

	// List mail
	if err := protoserver.RegisterTool[*graph.ListMailInput, *graph.ListMailOutput](base.Registry, "m365ListMail", m365ListMailDesc, func(ctx context.Context, in *graph.ListMailInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if jErr := ensureAccount(ctx, &in.Account); jErr != nil {
			return nil, jErr
		}
		out, err := mailSvc.List(ctx, in, graph.DefaultScopes(), nil)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(svc, out)
	}); err != nil {
		return err
	}

	// List tasks
	if err := protoserver.RegisterTool[*graph.ListTasksInput, *graph.ListTasksOutput](base.Registry, "m365ListTasks", m365ListTasksDesc, func(ctx context.Context, in *graph.ListTasksInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if jErr := ensureAccount(ctx, &in.Account); jErr != nil {
			return nil, jErr
		}
		out, err := taskSvc.List(ctx, in, graph.DefaultScopes(), nil)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(svc, out)
	}); err != nil {
		return err
	}

	// Find available slots
	if err := protoserver.RegisterTool[*FindSlotsInput, *FindSlotsOutput](base.Registry, "findAvailableSlots", findAvailableSlotsDesc, func(ctx context.Context, in *FindSlotsInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if jErr := ensureAccount(ctx, &in.Account); jErr != nil {
			return nil, jErr
		}
		events, err := calSvc.List(ctx, &graph.ListEventsInput{Account: in.Account, StartDate: in.StartDate, EndDate: in.EndDate, Top: 50}, graph.DefaultScopes(), nil)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		slots := sched.FindAvailableSlots(events.Events, in.SlotOptions)
		return buildSuccessResult(svc, &FindSlotsOutput{Slots: slots, Count: len(slots)})
	}); err != nil {
		return err
	}

	// Prioritize tasks
	if err := protoserver.RegisterTool[*PrioritizeTasksInput, *PrioritizeTasksOutput](base.Registry, "prioritizeTasks", prioritizeTasksDesc, func(ctx context.Context, in *PrioritizeTasksInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if jErr := ensureAccount(ctx, &in.Account); jErr != nil {
			return nil, jErr
		}
		out, err := taskSvc.List(ctx, &graph.ListTasksInput{Account: in.Account, ListName: in.ListName, Top: in.Top}, graph.DefaultScopes(), nil)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		ranked := sched.PrioritizeTasks(out.Tasks, scheduler.Criteria(in.Criteria))
		return buildSuccessResult(svc, &PrioritizeTasksOutput{Tasks: ranked})
	}); err != nil {
		return err
	}

	// Summarize emails
	if err := protoserver.RegisterTool[*SummarizeEmailsInput, *scheduler.EmailSummary](base.Registry, "summarizeEmails", summarizeEmailsDesc, func(ctx context.Context, in *SummarizeEmailsInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if jErr := ensureAccount(ctx, &in.Account); jErr != nil {
			return nil, jErr
		}
		out, err := mailSvc.List(ctx, &graph.ListMailInput{Account: in.Account, Top: in.Top}, graph.DefaultScopes(), nil)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		summary := sched.SummarizeEmails(out.Messages, scheduler.FilterType(in.Filter))
		return buildSuccessResult(svc, &summary)
	}); err != nil {
		return err
	}

	// Draft reply. Operates on the message passed in; no Graph call.
	if err := protoserver.RegisterTool[*DraftReplyInput, *scheduler.ReplyDraft](base.Registry, "draftReply", draftReplyDesc, func(ctx context.Context, in *DraftReplyInput) (*schema.CallToolResult, *jsonrpc.Error) {
		draft := sched.DraftReply(in.Email, scheduler.Tone(in.Tone), scheduler.Intent(in.Intent))
		return buildSuccessResult(svc, &draft)
	}); err != nil {
		return err
	}

	// Daily briefing
	if err := protoserver.RegisterTool[*DailyBriefingInput, *DailyBriefingOutput](base.Registry, "dailyBriefing", dailyBriefingDesc, func(ctx context.Context, in *DailyBriefingInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if jErr := ensureAccount(ctx, &in.Account); jErr != nil {
			return nil, jErr
		}
		text, err := svc.Assistant(in.Account.Alias).DailyBriefing(ctx)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(svc, &DailyBriefingOutput{Briefing: text})
	}); err != nil {
		return err
	}

	return nil
}

// Helpers
func buildErrorResult(message string) (*schema.CallToolResult, *jsonrpc.Error) {
	return nil, jsonrpc.NewError(jsonrpc.InvalidParams, message, nil)
}

func buildSuccessResult(service *Service, payload any) (*schema.CallToolResult, *jsonrpc.Error) {
	if service.UseTextField() {
		b, _ := json.Marshal(payload)
		return &schema.CallToolResult{Content: []schema.CallToolResultContentElem{{Type: "text", Text: string(b)}}}, nil
	}
	return &schema.CallToolResult{StructuredContent: map[string]any{"result": payload}}, nil
}

func newUUID() string { return uuid.New().String() }

func buildToolErrorResult(service *Service, message string) *schema.CallToolResult {
	isErr := true
	if service.UseTextField() {
		return &schema.CallToolResult{IsError: &isErr, Content: []schema.CallToolResultContentElem{{Type: "text", Text: message}}}
	}
	return &schema.CallToolResult{IsError: &isErr, StructuredContent: map[string]any{"error": message}}
}
