package graph

// Tool and service I/O types. Records mirror the Microsoft Graph field
// projections the services request; optional fields stay empty strings.

type Account struct {
	// Alias identifies a stored account (e.g. "work", "personal").
	Alias    string `json:"alias" description:"account name"`
	TenantID string `json:"-" internal:"true"`
}

// Profile is the signed-in user's projection of /me.
type Profile struct {
	ID             string `json:"id"`
	DisplayName    string `json:"displayName"`
	Mail           string `json:"mail"`
	JobTitle       string `json:"jobTitle,omitempty"`
	OfficeLocation string `json:"officeLocation,omitempty"`
}

// Event is a normalized calendar event. Start/End carry the Graph
// dateTime strings verbatim; either may be empty for malformed events.
type Event struct {
	ID        string   `json:"id"`
	Subject   string   `json:"subject"`
	Start     string   `json:"start,omitempty"`
	End       string   `json:"end,omitempty"`
	Location  string   `json:"location,omitempty"`
	Organizer string   `json:"organizer,omitempty"`
	Attendees []string `json:"attendees,omitempty"`
	IsAllDay  bool     `json:"isAllDay,omitempty"`
}

// Task is a normalized To Do task.
type Task struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	ListName   string `json:"listName,omitempty"`
	Status     string `json:"status,omitempty"`
	Importance string `json:"importance,omitempty"` // high, normal, low
	DueDate    string `json:"dueDate,omitempty"`
	Body       string `json:"body,omitempty"`
}

// Email is a normalized mailbox message with a bounded preview.
type Email struct {
	ID               string `json:"id"`
	Subject          string `json:"subject"`
	From             string `json:"from,omitempty"`
	FromEmail        string `json:"fromEmail,omitempty"`
	ReceivedDateTime string `json:"receivedDateTime,omitempty"`
	IsRead           bool   `json:"isRead"`
	Preview          string `json:"preview,omitempty"`
	Importance       string `json:"importance,omitempty"`
}

type GetProfileInput struct {
	Account Account `json:"account"`
}

type ListEventsInput struct {
	Account Account `json:"account"`
	// ISO date (YYYY-MM-DD) bounds; StartDate defaults to today,
	// EndDate to StartDate+7 days.
	StartDate string `json:"startDate,omitempty" description:"start date (YYYY-MM-DD), defaults to today"`
	EndDate   string `json:"endDate,omitempty" description:"end date (YYYY-MM-DD), defaults to 7 days from start"`
	Top       int    `json:"top,omitempty" description:"number of events to return"`
}

type ListEventsOutput struct {
	Events []Event `json:"events,omitempty"`
}

type ListMailInput struct {
	Account Account `json:"account"`
	// Folder is a well-known mail folder: inbox, sentitems or drafts.
	Folder     string `json:"folder,omitempty" description:"mail folder (inbox, sentitems, drafts)"`
	UnreadOnly bool   `json:"unreadOnly,omitempty" description:"only return unread messages"`
	Top        int    `json:"top,omitempty" description:"number of messages to return"`
}

type ListMailOutput struct {
	Messages []Email `json:"messages,omitempty"`
}

type ListTasksInput struct {
	Account Account `json:"account"`
	// ListName restricts results to a single To Do list.
	ListName         string `json:"listName,omitempty" description:"task list display name, all lists when empty"`
	IncludeCompleted bool   `json:"includeCompleted,omitempty" description:"include completed tasks"`
	Top              int    `json:"top,omitempty" description:"number of tasks to return"`
}

type ListTasksOutput struct {
	Tasks []Task `json:"tasks,omitempty"`
}
